package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/review"
)

type reviewRepository struct {
	db *reviewTable
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db.review}
}

func (repo *reviewRepository) query() []review.Review {
	reviews := make([]review.Review, 0, len(repo.db.table))
	for _, rev := range repo.db.table {
		reviews = append(reviews, *rev)
	}
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID < reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews
}

func (repo *reviewRepository) CreateReview(_ context.Context, rev review.Review, _ ...core.DBExecutor) (review.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rev.ID = uuid.New().String()
	repo.db.table[rev.ID] = &rev
	return rev, nil
}

func (repo *reviewRepository) GetReviewByID(_ context.Context, id string, _ ...core.DBExecutor) (review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rev, ok := repo.db.table[id]; ok {
		return *rev, nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) QueryReviewsByCourse(_ context.Context, courseID string, _ ...core.DBExecutor) ([]review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reviews := make([]review.Review, 0)
	for _, rev := range repo.query() {
		if rev.CourseID == courseID {
			reviews = append(reviews, rev)
		}
	}
	return reviews, nil
}

func (repo *reviewRepository) QueryAllReviews(_ context.Context, _ ...core.DBExecutor) ([]review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *reviewRepository) DeleteReviewsByID(_ context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
