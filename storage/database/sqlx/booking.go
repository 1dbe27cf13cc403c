package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/booking"
)

type bookingRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	TutorID   string      `db:"tutor_id"`
	CourseID  null.String `db:"course_id"`
	Status    null.String `db:"status"`
	StartsAt  null.Time   `db:"starts_at"`
	EndsAt    null.Time   `db:"ends_at"`
	Notes     null.String `db:"notes"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (row bookingRow) unpack() booking.Booking {
	return booking.Booking{
		ID:        row.ID,
		StudentID: row.StudentID,
		TutorID:   row.TutorID,
		CourseID:  row.CourseID.String,
		Status:    row.Status.String,
		StartsAt:  row.StartsAt.Time,
		EndsAt:    row.EndsAt.Time,
		Notes:     row.Notes.String,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

type bookingRepository struct {
	exec core.DBExecutor
}

var _ booking.Repository = (*bookingRepository)(nil) // interface compliance check

func NewBookingRepository(exec core.DBExecutor) *bookingRepository {
	return &bookingRepository{exec: exec}
}

func (repo bookingRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to booking.ErrNotFound
func (repo bookingRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return booking.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo bookingRepository) CreateBooking(ctx context.Context, bk booking.Booking, exec ...core.DBExecutor) (booking.Booking, error) {
	bk.ID = uuid.New().String()
	q := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO booking (id, student_id, tutor_id, course_id, status, starts_at, ends_at, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		bk.ID, bk.StudentID, bk.TutorID, null.NewString(bk.CourseID, bk.CourseID != ""),
		bk.Status, bk.StartsAt.UTC(), bk.EndsAt.UTC(), bk.Notes, bk.CreatedAt.UTC(), bk.UpdatedAt.UTC(),
	)
	if err != nil {
		return booking.Booking{}, errors.Wrap(err, "inserting booking")
	}
	return bk, nil
}

func (repo bookingRepository) GetBookingByID(ctx context.Context, id string, exec ...core.DBExecutor) (booking.Booking, error) {
	var row bookingRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, `SELECT * FROM booking WHERE id = $1`, id); err != nil {
		return booking.Booking{}, repo.trapNoRowsErr(err, "getting booking")
	}
	return row.unpack(), nil
}

func (repo bookingRepository) FilterBookings(ctx context.Context, filter booking.QueryFilter, exec ...core.DBExecutor) ([]booking.Booking, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.TutorID != "" {
		where = append(where, "tutor_id = ?")
		args = append(args, filter.TutorID)
	}
	if filter.CourseID != "" {
		where = append(where, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		where = append(where, "starts_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		where = append(where, "starts_at <= ?")
		args = append(args, filter.To.UTC())
	}

	q := `SELECT * FROM booking`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY starts_at"

	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering bookings")
	}
	bookings := make([]booking.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.unpack())
	}
	return bookings, nil
}

func (repo bookingRepository) UpdateBookingStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (booking.Booking, error) {
	q := `UPDATE booking SET status = $1, updated_at = $2 WHERE id = $3 RETURNING *`
	var row bookingRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, status, time.Now().UTC(), id); err != nil {
		return booking.Booking{}, repo.trapNoRowsErr(err, "updating booking status")
	}
	return row.unpack(), nil
}
