package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/review"
)

type reviewRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	CourseID  string      `db:"course_id"`
	Rating    null.Int    `db:"rating"`
	Comment   null.String `db:"comment"`
	CreatedAt null.Time   `db:"created_at"`
}

func (row reviewRow) unpack() review.Review {
	return review.Review{
		ID:        row.ID,
		UserID:    row.UserID,
		CourseID:  row.CourseID,
		Rating:    row.Rating.Int,
		Comment:   row.Comment.String,
		CreatedAt: row.CreatedAt.Time,
	}
}

type reviewRepository struct {
	exec core.DBExecutor
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(exec core.DBExecutor) *reviewRepository {
	return &reviewRepository{exec: exec}
}

func (repo reviewRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo reviewRepository) CreateReview(ctx context.Context, rev review.Review, exec ...core.DBExecutor) (review.Review, error) {
	rev.ID = uuid.New().String()
	q := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO review (id, user_id, course_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		rev.ID, rev.UserID, rev.CourseID, rev.Rating, rev.Comment, rev.CreatedAt.UTC(),
	)
	if err != nil {
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return rev, nil
}

func (repo reviewRepository) GetReviewByID(ctx context.Context, id string, exec ...core.DBExecutor) (review.Review, error) {
	var row reviewRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, `SELECT * FROM review WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return review.Review{}, review.ErrNotFound
		}
		return review.Review{}, errors.Wrap(err, "getting review")
	}
	return row.unpack(), nil
}

func (repo reviewRepository) QueryReviewsByCourse(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]review.Review, error) {
	var rows []reviewRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT * FROM review WHERE course_id = $1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course reviews")
	}
	return unpackReviews(rows), nil
}

func (repo reviewRepository) QueryAllReviews(ctx context.Context, exec ...core.DBExecutor) ([]review.Review, error) {
	var rows []reviewRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, `SELECT * FROM review ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	return unpackReviews(rows), nil
}

func (repo reviewRepository) DeleteReviewsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM review WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "expanding review ids")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return errors.Wrap(err, "deleting reviews")
	}
	return nil
}

func unpackReviews(rows []reviewRow) []review.Review {
	reviews := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.unpack())
	}
	return reviews
}
