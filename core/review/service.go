package review

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/katleho/brainhub/core"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("this course has already been reviewed by this user")
)

type (
	Repository interface {
		CreateReview(ctx context.Context, rev Review, exec ...core.DBExecutor) (Review, error)
		GetReviewByID(ctx context.Context, id string, exec ...core.DBExecutor) (Review, error)
		// QueryReviewsByCourse returns reviews newest first.
		QueryReviewsByCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]Review, error)
		QueryAllReviews(ctx context.Context, exec ...core.DBExecutor) ([]Review, error)
		DeleteReviewsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service interface {
		Create(ctx context.Context, nr NewReview) (Review, error)
		GetByID(ctx context.Context, id string) (Review, error)
		QueryByCourse(ctx context.Context, courseID string) ([]Review, error)
		QueryAll(ctx context.Context) ([]Review, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nr NewReview) (Review, error) {
	// one review per user per course
	existing, err := svc.repo.QueryReviewsByCourse(ctx, nr.CourseID)
	if err != nil {
		return Review{}, err
	}
	for _, rev := range existing {
		if rev.UserID == nr.UserID {
			return Review{}, core.NewValidationError(ErrAlreadyReviewed,
				core.FieldError{Field: "course_id", Error: ErrAlreadyReviewed.Error()})
		}
	}

	rev := Review{
		UserID:    nr.UserID,
		CourseID:  nr.CourseID,
		Rating:    nr.Rating,
		Comment:   nr.Comment,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateReview(ctx, rev)
}

func (svc *service) GetByID(ctx context.Context, id string) (Review, error) {
	return svc.repo.GetReviewByID(ctx, id)
}

func (svc *service) QueryByCourse(ctx context.Context, courseID string) ([]Review, error) {
	return svc.repo.QueryReviewsByCourse(ctx, courseID)
}

func (svc *service) QueryAll(ctx context.Context) ([]Review, error) {
	return svc.repo.QueryAllReviews(ctx)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteReviewsByID(ctx, ids)
}
