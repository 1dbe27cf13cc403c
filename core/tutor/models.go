package tutor

import (
	"strings"
	"time"

	"github.com/katleho/brainhub/core"
)

// Profile is the person record behind every account: students, tutors, parents and admins
// all have one. Tutoring-specific fields live on TutorProfile.
type Profile struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	SchoolName string    `json:"school_name,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// FullName joins the first and last names; empty if neither is set.
func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// TutorProfile extends a Profile with tutoring fields. It shares the owning Profile's ID.
type TutorProfile struct {
	ID             string    `json:"id"`
	Qualifications string    `json:"qualifications,omitempty"`
	ExperienceYrs  int       `json:"experience_years"`
	HourlyRate     float64   `json:"hourly_rate"`
	Verified       bool      `json:"verified"`
	Rating         float64   `json:"rating"` // 0 - 5
	TotalSessions  int       `json:"total_sessions"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// NewProfile contains information needed to create a new Profile.
type NewProfile struct {
	ID         string `json:"id" validate:"required"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Role       string `json:"role" validate:"required"`
	SchoolName string `json:"school_name"`
	Bio        string `json:"bio"`
	AvatarURL  string `json:"avatar_url" validate:"omitempty,url"`
}

func (np *NewProfile) Validate() error {
	np.FirstName = core.CleanString(np.FirstName)
	np.LastName = core.CleanString(np.LastName)
	np.SchoolName = core.CleanString(np.SchoolName)
	return core.Validate.Struct(np)
}

// UpdateProfile defines what information may be provided to modify an existing Profile.
type UpdateProfile struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	SchoolName string `json:"school_name"`
	Bio        string `json:"bio"`
	AvatarURL  string `json:"avatar_url" validate:"omitempty,url"`
}

func (up *UpdateProfile) Validate(orig Profile) error {
	if fname := core.CleanString(up.FirstName); fname != "" {
		up.FirstName = fname
	} else {
		up.FirstName = orig.FirstName
	}
	if lname := core.CleanString(up.LastName); lname != "" {
		up.LastName = lname
	} else {
		up.LastName = orig.LastName
	}
	up.SchoolName = core.CleanString(up.SchoolName)
	return core.Validate.Struct(up)
}

// NewTutorProfile contains the tutoring fields a tutor provides when setting up shop.
type NewTutorProfile struct {
	ID             string       `json:"id" validate:"required"`
	Qualifications string       `json:"qualifications"`
	ExperienceYrs  int          `json:"experience_years" validate:"gte=0"`
	HourlyRate     core.Decimal `json:"hourly_rate" validate:"gte=0"`
}

func (nt *NewTutorProfile) Validate() error {
	nt.Qualifications = core.CleanString(nt.Qualifications)
	return core.Validate.Struct(nt)
}

// UpdateTutorProfile defines what a tutor may change on their own TutorProfile.
// Verified, Rating and TotalSessions are system-owned and not accepted here.
type UpdateTutorProfile struct {
	Qualifications string        `json:"qualifications"`
	ExperienceYrs  *int          `json:"experience_years" validate:"omitempty,gte=0"`
	HourlyRate     *core.Decimal `json:"hourly_rate" validate:"omitempty,gte=0"`
}

func (ut *UpdateTutorProfile) Validate() error {
	ut.Qualifications = core.CleanString(ut.Qualifications)
	return core.Validate.Struct(ut)
}

type QueryFilter struct {
	Search        string   `query:"search"`
	Verified      *bool    `query:"verified"`
	MaxHourlyRate *float64 `query:"max_hourly_rate"`

	// Orderings is set by the API layer, not bound from the query string directly.
	// Unknown fields are ignored by repositories.
	Orderings []core.DBOrdering `query:"-" json:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Verified == nil && qf.MaxHourlyRate == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
