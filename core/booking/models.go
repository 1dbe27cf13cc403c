package booking

import (
	"time"

	"github.com/katleho/brainhub/core"
)

// Booking statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var statuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// IsValidStatus reports whether status is one of the known booking statuses.
func IsValidStatus(status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Booking is a tutoring session slot booked by a student on a course.
type Booking struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	TutorID   string    `json:"tutor_id"`
	StartsAt  time.Time `json:"starts_at"` // UTC
	EndsAt    time.Time `json:"ends_at"`   // UTC
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// CanTransitionTo reports whether the status change is legal:
// pending -> confirmed | cancelled; confirmed -> completed | cancelled.
func (b Booking) CanTransitionTo(status string) bool {
	switch b.Status {
	case StatusPending:
		return status == StatusConfirmed || status == StatusCancelled
	case StatusConfirmed:
		return status == StatusCompleted || status == StatusCancelled
	}
	return false
}

// Overlaps reports whether two half-open time ranges [StartsAt, EndsAt) intersect.
func (b Booking) Overlaps(startsAt, endsAt time.Time) bool {
	return b.StartsAt.Before(endsAt) && startsAt.Before(b.EndsAt)
}

// NewBooking contains information needed to create a new Booking.
type NewBooking struct {
	CourseID  string    `json:"course_id" validate:"required"`
	StudentID string    `json:"student_id" validate:"required"`
	TutorID   string    `json:"tutor_id" validate:"required"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	EndsAt    time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Notes     string    `json:"notes"`
}

func (nb *NewBooking) Validate() error {
	nb.Notes = core.CleanString(nb.Notes)
	return core.Validate.Struct(nb)
}

// CompleteBooking carries the optional session rating collected when a booking is marked done.
type CompleteBooking struct {
	Rating float64 `json:"rating" validate:"gte=0,max=5"`
}

func (cb *CompleteBooking) Validate() error {
	return core.Validate.Struct(cb)
}

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	TutorID   string    `query:"tutor_id"`
	CourseID  string    `query:"course_id"`
	Status    string    `query:"status"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.TutorID == "" && qf.CourseID == "" && qf.Status == "" &&
		qf.From.IsZero() && qf.To.IsZero()
}
