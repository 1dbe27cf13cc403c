package course

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/tutor"
)

// Match scoring weights. Subject/grade/location each award their exact XOR partial bonus;
// verified/rating/base are independent flat bonuses layered on top.
const (
	scoreSubjectExact   = 40
	scoreSubjectPartial = 20
	scoreGradeExact     = 30
	scoreGradePartial   = 15
	scoreLocationExact  = 20
	scoreLocationPartial = 10
	scoreVerifiedBonus  = 5
	scoreRatingBonus    = 5

	// scoreBase is added to every course unconditionally, so an unmatched search still
	// surfaces ranked results instead of an empty list. Product choice, not a defect.
	scoreBase = 10

	// minRatingForBonus is the tutor rating at which the rating bonus kicks in.
	minRatingForBonus = 4.0

	// gradePartialWindow is the max distance between the first effective grade level and
	// the requested grade for the partial grade bonus.
	gradePartialWindow = 2

	// DefaultResultLimit bounds ranked results when the caller does not say otherwise.
	DefaultResultLimit = 10

	unknownSubject = "Unknown"
	unknownSchool  = "Unknown School"
	unknownTutor   = "Unknown Tutor"
)

var (
	// "grade 10", "Gr10", "g 7"
	gradeWordRegex = regexp.MustCompile(`(?i)(?:grade|gr|g)\s*(\d{1,2})`)
	bareNumRegex   = regexp.MustCompile(`(\d{1,2})`)
)

// Lookups holds the already-fetched related records a Course needs resolving against,
// keyed by identifier. Matching never queries; missing keys degrade to defaults.
type Lookups struct {
	Subjects map[string]Subject
	Tutors   map[string]tutor.TutorProfile
	Profiles map[string]tutor.Profile
	Reviews  map[string][]review.Review // course id -> reviews
}

// ResolvedAttributes are the fallback-aware display/scoring attributes of one Course,
// as opposed to its raw stored fields.
type ResolvedAttributes struct {
	SubjectName   string  `json:"subject_name"`
	GradeLevels   []int   `json:"grade_levels"`
	SchoolName    string  `json:"school_name"`
	TutorName     string  `json:"tutor_name"`
	Verified      bool    `json:"verified"`
	Rating        float64 `json:"rating"`
	ExperienceYrs int     `json:"experience_years"`
	HourlyRate    float64 `json:"hourly_rate"`
	AvgReview     float64 `json:"avg_review"`
}

// ResolveAttributes derives the effective attributes of one Course. All lookups tolerate
// missing keys: relations here are weak references, never required foreign keys.
func ResolveAttributes(c Course, lk Lookups) ResolvedAttributes {
	attrs := ResolvedAttributes{
		SubjectName: effectiveSubjectName(c, lk.Subjects),
		GradeLevels: effectiveGradeLevels(c, lk.Subjects),
		SchoolName:  unknownSchool,
		TutorName:   unknownTutor,
		AvgReview:   averageReviewRating(lk.Reviews[c.ID]),
	}
	if prof, ok := lk.Profiles[c.TutorID]; ok {
		if prof.SchoolName != "" {
			attrs.SchoolName = prof.SchoolName
		}
		if prof.FirstName != "" && prof.LastName != "" {
			attrs.TutorName = prof.FirstName + " " + prof.LastName
		}
	}
	if tp, ok := lk.Tutors[c.TutorID]; ok {
		attrs.Verified = tp.Verified
		attrs.Rating = tp.Rating
		attrs.ExperienceYrs = tp.ExperienceYrs
		attrs.HourlyRate = tp.HourlyRate
	}
	return attrs
}

// effectiveSubjectName resolves a course's subject with fallbacks, in priority order:
// the explicit subject field, the referenced Subject record, keyword inference from the
// title, and finally "Unknown". Keyword inference is best-effort last-resort logic and
// must never shadow the structured tiers above it.
func effectiveSubjectName(c Course, subjects map[string]Subject) string {
	if c.Subject != "" {
		return c.Subject
	}
	if subj, ok := subjects[c.SubjectID]; ok && subj.Name != "" {
		return subj.Name
	}
	return subjectFromTitle(c.Title)
}

func subjectFromTitle(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "math"), strings.Contains(t, "algebra"):
		return "Mathematics"
	case strings.Contains(t, "science") && strings.Contains(t, "physical"):
		return "Physical Sciences"
	case strings.Contains(t, "english"), strings.Contains(t, "writing"):
		return "English Home Language"
	case strings.Contains(t, "science") && strings.Contains(t, "natural"):
		return "Natural Sciences"
	case strings.Contains(t, "accounting"):
		return "Accounting"
	}
	return unknownSubject
}

// gradeFromTitle extracts a grade hint ("Grade 10", "gr7", "g 9", or a bare 1-12 number)
// from the course title; the title wins over the stored grade level when both exist.
func gradeFromTitle(c Course) int {
	if m := gradeWordRegex.FindStringSubmatch(c.Title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 12 {
			return n
		}
	}
	if m := bareNumRegex.FindStringSubmatch(c.Title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 12 {
			return n
		}
	}
	return c.GradeLevel
}

// effectiveGradeLevels prefers the referenced Subject's grade list; otherwise it degrades
// to a single-element list derived from the title or the stored grade level.
func effectiveGradeLevels(c Course, subjects map[string]Subject) []int {
	if subj, ok := subjects[c.SubjectID]; ok && len(subj.GradeLevels) > 0 {
		return subj.GradeLevels
	}
	return []int{gradeFromTitle(c)}
}

// averageReviewRating is the mean review rating rounded to one decimal place; 0 if none.
func averageReviewRating(reviews []review.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, rev := range reviews {
		sum += rev.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

// Score computes the match score of one resolved course against one set of preferences.
// Pure and deterministic; empty or malformed preference fields are wildcards.
func Score(attrs ResolvedAttributes, prefs SearchPreferences) int {
	score := scoreBase

	if prefs.Subject != "" {
		if attrs.SubjectName == prefs.Subject {
			score += scoreSubjectExact
		} else if strings.Contains(strings.ToLower(attrs.SubjectName), strings.ToLower(prefs.Subject)) {
			score += scoreSubjectPartial
		}
	}

	if want, err := strconv.Atoi(prefs.Grade); prefs.Grade != "" && err == nil {
		if containsInt(attrs.GradeLevels, want) {
			score += scoreGradeExact
		} else if len(attrs.GradeLevels) > 0 && abs(attrs.GradeLevels[0]-want) <= gradePartialWindow {
			// only the first grade level is considered here; kept for compatibility
			// with the shipped behavior even though it may be a latent defect.
			score += scoreGradePartial
		}
	}

	if prefs.Location != "" {
		if attrs.SchoolName == prefs.Location {
			score += scoreLocationExact
		} else if strings.Contains(strings.ToLower(attrs.SchoolName), strings.ToLower(prefs.Location)) {
			score += scoreLocationPartial
		}
	}

	if attrs.Verified {
		score += scoreVerifiedBonus
	}
	if attrs.Rating >= minRatingForBonus {
		score += scoreRatingBonus
	}
	return score
}

// Rank sorts scored courses by score descending (stable: equal scores keep their input
// order) and truncates to `limit` entries. limit <= 0 falls back to DefaultResultLimit.
func Rank(scored []ScoredCourse, limit int) []ScoredCourse {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	ranked := make([]ScoredCourse, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func containsInt(ns []int, want int) bool {
	for _, n := range ns {
		if n == want {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
