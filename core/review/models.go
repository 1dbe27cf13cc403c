package review

import (
	"time"

	"github.com/katleho/brainhub/core"
)

// Review is a student's rating of a course, 1 - 5 stars.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewReview contains information needed to create a new Review.
type NewReview struct {
	UserID   string `json:"user_id" validate:"required"`
	CourseID string `json:"course_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment"`
}

func (nr *NewReview) Validate() error {
	nr.Comment = core.CleanString(nr.Comment)
	return core.Validate.Struct(nr)
}
