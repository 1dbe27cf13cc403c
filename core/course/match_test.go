package course

import (
	"reflect"
	"testing"

	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/tutor"
)

func TestEffectiveSubjectName(t *testing.T) {
	subjects := map[string]Subject{
		"subj-1": {ID: "subj-1", Name: "Physical Sciences", GradeLevels: []int{10, 11, 12}},
		"subj-2": {ID: "subj-2"}, // no name
	}

	tests := []struct {
		name string
		crs  Course
		want string
	}{
		{name: "explicit subject wins", crs: Course{Subject: "Accounting", SubjectID: "subj-1", Title: "math"}, want: "Accounting"},
		{name: "subject lookup", crs: Course{SubjectID: "subj-1", Title: "math"}, want: "Physical Sciences"},
		{name: "nameless subject falls through", crs: Course{SubjectID: "subj-2", Title: "Algebra Club"}, want: "Mathematics"},
		{name: "title: math", crs: Course{Title: "Advanced Maths"}, want: "Mathematics"},
		{name: "title: algebra", crs: Course{Title: "Intro to Algebra"}, want: "Mathematics"},
		{name: "title: physical sciences", crs: Course{Title: "Physical Science Basics"}, want: "Physical Sciences"},
		{name: "title: english", crs: Course{Title: "English for Matric"}, want: "English Home Language"},
		{name: "title: writing", crs: Course{Title: "Creative Writing"}, want: "English Home Language"},
		{name: "title: natural sciences", crs: Course{Title: "Natural Science Fun"}, want: "Natural Sciences"},
		{name: "title: accounting", crs: Course{Title: "Accounting 101"}, want: "Accounting"},
		{name: "no cue", crs: Course{Title: "Chess Club"}, want: "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := effectiveSubjectName(tt.crs, subjects); got != tt.want {
				t.Errorf("effectiveSubjectName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGradeFromTitle(t *testing.T) {
	tests := []struct {
		name string
		crs  Course
		want int
	}{
		{name: "grade word", crs: Course{Title: "Grade 10 Algebra", GradeLevel: 9}, want: 10},
		{name: "gr abbreviation", crs: Course{Title: "Maths gr7 revision", GradeLevel: 5}, want: 7},
		{name: "bare g", crs: Course{Title: "G11 Accounting", GradeLevel: 8}, want: 11},
		{name: "bare number", crs: Course{Title: "Algebra 9 intensive", GradeLevel: 3}, want: 9},
		{name: "number out of range", crs: Course{Title: "Bootcamp 99", GradeLevel: 6}, want: 6},
		{name: "no pattern falls back to stored level", crs: Course{Title: "Piano Basics", GradeLevel: 7}, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gradeFromTitle(tt.crs); got != tt.want {
				t.Errorf("gradeFromTitle() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEffectiveGradeLevels(t *testing.T) {
	subjects := map[string]Subject{
		"subj-1": {ID: "subj-1", Name: "Mathematics", GradeLevels: []int{8, 9, 10, 11, 12}},
		"subj-2": {ID: "subj-2", Name: "Life Skills"}, // empty grade list
	}

	tests := []struct {
		name string
		crs  Course
		want []int
	}{
		{name: "subject grade list wins", crs: Course{SubjectID: "subj-1", Title: "Grade 3 Maths", GradeLevel: 3}, want: []int{8, 9, 10, 11, 12}},
		{name: "empty subject list degrades to title", crs: Course{SubjectID: "subj-2", Title: "Grade 4 Life Skills"}, want: []int{4}},
		{name: "no subject, stored level", crs: Course{Title: "Homework Club", GradeLevel: 6}, want: []int{6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := effectiveGradeLevels(tt.crs, subjects); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("effectiveGradeLevels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveAttributes_defaults(t *testing.T) {
	// course whose tutor_id has no entries anywhere must resolve, not panic
	crs := Course{ID: "crs-1", Title: "Chess Club", GradeLevel: 5, TutorID: "ghost"}
	attrs := ResolveAttributes(crs, Lookups{})

	if attrs.SubjectName != "Unknown" {
		t.Errorf("SubjectName = %q, want %q", attrs.SubjectName, "Unknown")
	}
	if attrs.SchoolName != "Unknown School" {
		t.Errorf("SchoolName = %q, want %q", attrs.SchoolName, "Unknown School")
	}
	if attrs.TutorName != "Unknown Tutor" {
		t.Errorf("TutorName = %q, want %q", attrs.TutorName, "Unknown Tutor")
	}
	if attrs.Verified {
		t.Error("Verified = true, want false")
	}
	if attrs.Rating != 0 || attrs.ExperienceYrs != 0 || attrs.HourlyRate != 0 || attrs.AvgReview != 0 {
		t.Errorf("numeric defaults = %v/%v/%v/%v, want all 0",
			attrs.Rating, attrs.ExperienceYrs, attrs.HourlyRate, attrs.AvgReview)
	}
}

func TestResolveAttributes_lookups(t *testing.T) {
	crs := Course{ID: "crs-1", Title: "Grade 10 Algebra", GradeLevel: 9, TutorID: "tut-1"}
	lk := Lookups{
		Tutors: map[string]tutor.TutorProfile{
			"tut-1": {ID: "tut-1", Verified: true, Rating: 4.5, ExperienceYrs: 6, HourlyRate: 250},
		},
		Profiles: map[string]tutor.Profile{
			"tut-1": {ID: "tut-1", FirstName: "Thabo", LastName: "Mokoena", SchoolName: "Katleho High"},
		},
		Reviews: map[string][]review.Review{
			"crs-1": {{Rating: 5}, {Rating: 4}, {Rating: 4}},
		},
	}

	attrs := ResolveAttributes(crs, lk)
	if attrs.TutorName != "Thabo Mokoena" {
		t.Errorf("TutorName = %q, want %q", attrs.TutorName, "Thabo Mokoena")
	}
	if attrs.SchoolName != "Katleho High" {
		t.Errorf("SchoolName = %q, want %q", attrs.SchoolName, "Katleho High")
	}
	if !attrs.Verified || attrs.Rating != 4.5 || attrs.ExperienceYrs != 6 || attrs.HourlyRate != 250 {
		t.Errorf("tutor fields = %v/%v/%v/%v", attrs.Verified, attrs.Rating, attrs.ExperienceYrs, attrs.HourlyRate)
	}
	if attrs.AvgReview != 4.3 { // (5+4+4)/3 = 4.333 -> 4.3
		t.Errorf("AvgReview = %v, want 4.3", attrs.AvgReview)
	}
}

func TestResolveAttributes_partialNames(t *testing.T) {
	// a single name is not enough for a display name
	crs := Course{ID: "crs-1", TutorID: "tut-1"}
	lk := Lookups{Profiles: map[string]tutor.Profile{"tut-1": {ID: "tut-1", FirstName: "Thabo"}}}
	if attrs := ResolveAttributes(crs, lk); attrs.TutorName != "Unknown Tutor" {
		t.Errorf("TutorName = %q, want %q", attrs.TutorName, "Unknown Tutor")
	}
}

func TestScore(t *testing.T) {
	subjects := map[string]Subject{}
	algebra := Course{ID: "crs-1", Title: "Grade 10 Algebra", GradeLevel: 9, Subject: "Mathematics"}
	noPattern := Course{ID: "crs-2", Title: "Piano Basics", GradeLevel: 7}

	resolve := func(crs Course) ResolvedAttributes {
		return ResolveAttributes(crs, Lookups{Subjects: subjects})
	}

	tests := []struct {
		name  string
		crs   Course
		prefs SearchPreferences
		want  int
	}{
		{
			name:  "subject exact + grade exact from title",
			crs:   algebra,
			prefs: SearchPreferences{Subject: "Mathematics", Grade: "10"},
			want:  40 + 30 + 10,
		},
		{
			name:  "subject partial via substring",
			crs:   algebra,
			prefs: SearchPreferences{Subject: "Math", Grade: "10"},
			want:  20 + 30 + 10,
		},
		{
			name:  "grade partial at window edge (above)",
			crs:   noPattern,
			prefs: SearchPreferences{Grade: "9"},
			want:  15 + 10,
		},
		{
			name:  "grade partial at window edge (below)",
			crs:   noPattern,
			prefs: SearchPreferences{Grade: "5"},
			want:  15 + 10,
		},
		{
			name:  "grade outside window",
			crs:   noPattern,
			prefs: SearchPreferences{Grade: "4"},
			want:  10,
		},
		{
			name:  "empty preferences: base credit only",
			crs:   algebra,
			prefs: SearchPreferences{},
			want:  10,
		},
		{
			name:  "malformed grade is a wildcard",
			crs:   algebra,
			prefs: SearchPreferences{Grade: "ten"},
			want:  10,
		},
		{
			name:  "subject match is case-sensitive for the exact tier",
			crs:   algebra,
			prefs: SearchPreferences{Subject: "mathematics"},
			want:  20 + 10, // falls to the substring tier
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(resolve(tt.crs), tt.prefs); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_locationTiers(t *testing.T) {
	attrs := ResolvedAttributes{SubjectName: "Unknown", GradeLevels: []int{7}, SchoolName: "Katleho High"}

	tests := []struct {
		name     string
		location string
		want     int
	}{
		{name: "exact", location: "Katleho High", want: 20 + 10},
		{name: "partial substring", location: "katleho", want: 10 + 10},
		{name: "no match", location: "Soweto", want: 10},
		{name: "wildcard", location: "", want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(attrs, SearchPreferences{Location: tt.location}); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_bonuses(t *testing.T) {
	base := ResolvedAttributes{SubjectName: "Unknown", GradeLevels: []int{7}, SchoolName: "Unknown School"}

	verified := base
	verified.Verified = true
	if got := Score(verified, SearchPreferences{}); got != 15 {
		t.Errorf("verified Score() = %d, want 15", got)
	}

	rated := base
	rated.Rating = 4.0
	if got := Score(rated, SearchPreferences{}); got != 15 {
		t.Errorf("rating>=4 Score() = %d, want 15", got)
	}

	both := verified
	both.Rating = 4.9
	if got := Score(both, SearchPreferences{}); got != 20 {
		t.Errorf("verified+rated Score() = %d, want 20", got)
	}

	almost := base
	almost.Rating = 3.9
	if got := Score(almost, SearchPreferences{}); got != 10 {
		t.Errorf("rating<4 Score() = %d, want 10", got)
	}
}

// the base credit guarantees every course scores at least 10, for any preferences
func TestScore_baseCreditInvariant(t *testing.T) {
	attrs := []ResolvedAttributes{
		{},
		{SubjectName: "Unknown", GradeLevels: []int{1}, SchoolName: "Unknown School"},
		{SubjectName: "Mathematics", GradeLevels: []int{12}, SchoolName: "X", Rating: 5, Verified: true},
	}
	prefs := []SearchPreferences{
		{},
		{Subject: "Zulu", Grade: "12", Location: "Mars"},
		{Subject: "Mathematics", Grade: "1", Location: "X"},
	}
	for _, a := range attrs {
		for _, p := range prefs {
			if got := Score(a, p); got < 10 {
				t.Errorf("Score(%+v, %+v) = %d, want >= 10", a, p, got)
			}
		}
	}
}

func TestScore_exactSubjectAddsExactly40(t *testing.T) {
	without := ResolvedAttributes{SubjectName: "Unknown", GradeLevels: []int{7}, SchoolName: "Unknown School"}
	with := without
	with.SubjectName = "Accounting"

	prefs := SearchPreferences{Subject: "Accounting", Grade: "7", Location: ""}
	if diff := Score(with, prefs) - Score(without, prefs); diff != 40 {
		t.Errorf("exact-subject delta = %d, want 40", diff)
	}
}

func TestScore_deterministic(t *testing.T) {
	attrs := ResolvedAttributes{SubjectName: "Mathematics", GradeLevels: []int{9, 10}, SchoolName: "Katleho High", Verified: true, Rating: 4.2}
	prefs := SearchPreferences{Subject: "Math", Grade: "10", Location: "katleho"}

	first := Score(attrs, prefs)
	for i := 0; i < 100; i++ {
		if got := Score(attrs, prefs); got != first {
			t.Fatalf("Score() = %d on run %d, want %d", got, i, first)
		}
	}
}

func TestRank(t *testing.T) {
	mk := func(id string, score int) ScoredCourse {
		return ScoredCourse{Course: Course{ID: id}, Score: score}
	}
	ids := func(scored []ScoredCourse) []string {
		out := make([]string, 0, len(scored))
		for _, sc := range scored {
			out = append(out, sc.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		scored []ScoredCourse
		limit  int
		want   []string
	}{
		{
			name:   "stable sort keeps input order on ties",
			scored: []ScoredCourse{mk("c1", 50), mk("c2", 80), mk("c3", 50), mk("c4", 30), mk("c5", 80)},
			limit:  10,
			want:   []string{"c2", "c5", "c1", "c3", "c4"},
		},
		{
			name:   "truncates to limit",
			scored: []ScoredCourse{mk("c1", 10), mk("c2", 20), mk("c3", 30)},
			limit:  2,
			want:   []string{"c3", "c2"},
		},
		{
			name:   "zero limit falls back to default",
			scored: []ScoredCourse{mk("c1", 10), mk("c2", 20)},
			limit:  0,
			want:   []string{"c2", "c1"},
		},
		{name: "empty in, empty out", scored: []ScoredCourse{}, limit: 10, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Rank(tt.scored, tt.limit)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rank() order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRank_doesNotMutateInput(t *testing.T) {
	scored := []ScoredCourse{
		{Course: Course{ID: "c1"}, Score: 10},
		{Course: Course{ID: "c2"}, Score: 90},
	}
	_ = Rank(scored, 10)
	if scored[0].ID != "c1" || scored[1].ID != "c2" {
		t.Errorf("Rank() mutated its input: %v", scored)
	}
}

func TestAverageReviewRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{name: "no reviews", ratings: nil, want: 0},
		{name: "single", ratings: []int{4}, want: 4},
		{name: "rounds to one decimal", ratings: []int{5, 4, 4}, want: 4.3},
		{name: "rounds half up", ratings: []int{4, 5}, want: 4.5},
		{name: "thirds", ratings: []int{1, 1, 2}, want: 1.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revs := make([]review.Review, 0, len(tt.ratings))
			for _, r := range tt.ratings {
				revs = append(revs, review.Review{Rating: r})
			}
			if got := averageReviewRating(revs); got != tt.want {
				t.Errorf("averageReviewRating() = %v, want %v", got, tt.want)
			}
		})
	}
}
