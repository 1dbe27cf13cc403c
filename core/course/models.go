package course

import (
	"time"

	"github.com/katleho/brainhub/core"
)

// Subject is a curriculum subject and the grade levels it is taught at.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	GradeLevels []int  `json:"grade_levels"`
}

// Course is a tutoring offering owned by a tutor. Subject and SubjectID are both optional;
// the effective subject for matching is resolved with fallbacks (see match.go).
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	GradeLevel  int       `json:"grade_level"`
	Subject     string    `json:"subject,omitempty"`
	SubjectID   string    `json:"subject_id,omitempty"`
	TutorID     string    `json:"tutor_id"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// ScoredCourse is a Course plus its match score against one set of search preferences.
type ScoredCourse struct {
	Course
	Score int `json:"score"`
}

// SearchPreferences is a student's transient search criteria. Empty fields are wildcards.
type SearchPreferences struct {
	Subject  string `json:"subject" query:"subject"`
	Grade    string `json:"grade" query:"grade"`
	Location string `json:"location" query:"location"`
}

func (sp *SearchPreferences) Clean() {
	sp.Subject = core.CleanString(sp.Subject)
	sp.Grade = core.CleanString(sp.Grade)
	sp.Location = core.CleanString(sp.Location)
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description"`
	GradeLevel  int          `json:"grade_level" validate:"omitempty,gradelevel"`
	Subject     string       `json:"subject"`
	SubjectID   string       `json:"subject_id" validate:"omitempty,uuid4"`
	TutorID     string       `json:"tutor_id" validate:"required"`
	Price       core.Decimal `json:"price" validate:"gte=0"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Subject = core.CleanString(nc.Subject)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	GradeLevel  *int          `json:"grade_level" validate:"omitempty,gradelevel"`
	Subject     string        `json:"subject"`
	SubjectID   string        `json:"subject_id" validate:"omitempty,uuid4"`
	Price       *core.Decimal `json:"price" validate:"omitempty,gte=0"`
	IsActive    *bool         `json:"is_active"`
}

func (uc *UpdateCourse) Validate(orig Course) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	uc.Subject = core.CleanString(uc.Subject)
	return core.Validate.Struct(uc)
}

type QueryFilter struct {
	Search     string `query:"search"`
	TutorID    string `query:"tutor_id"`
	SubjectID  string `query:"subject_id"`
	GradeLevel int    `query:"grade_level"`
	IsActive   *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.TutorID == "" && qf.SubjectID == "" && qf.GradeLevel == 0 && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
