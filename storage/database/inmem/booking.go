package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/booking"
)

type bookingRepository struct {
	db *bookingTable
}

var _ booking.Repository = (*bookingRepository)(nil)

func NewBookingRepository(db *DB) booking.Repository {
	return &bookingRepository{db: db.booking}
}

func (repo *bookingRepository) query() []booking.Booking {
	bookings := make([]booking.Booking, 0, len(repo.db.table))
	for _, bk := range repo.db.table {
		bookings = append(bookings, *bk)
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].StartsAt.Equal(bookings[j].StartsAt) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].StartsAt.Before(bookings[j].StartsAt)
	})
	return bookings
}

func (repo *bookingRepository) CreateBooking(_ context.Context, bk booking.Booking, _ ...core.DBExecutor) (booking.Booking, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	bk.ID = uuid.New().String()
	repo.db.table[bk.ID] = &bk
	return bk, nil
}

func (repo *bookingRepository) GetBookingByID(_ context.Context, id string, _ ...core.DBExecutor) (booking.Booking, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if bk, ok := repo.db.table[id]; ok {
		return *bk, nil
	}
	return booking.Booking{}, booking.ErrNotFound
}

func (repo *bookingRepository) FilterBookings(_ context.Context, filter booking.QueryFilter, _ ...core.DBExecutor) ([]booking.Booking, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	bookings := make([]booking.Booking, 0)
	for _, bk := range repo.query() {
		if matchesBookingFilter(bk, filter) {
			bookings = append(bookings, bk)
		}
	}
	return bookings, nil
}

func matchesBookingFilter(bk booking.Booking, filter booking.QueryFilter) bool {
	if filter.StudentID != "" && bk.StudentID != filter.StudentID {
		return false
	}
	if filter.TutorID != "" && bk.TutorID != filter.TutorID {
		return false
	}
	if filter.CourseID != "" && bk.CourseID != filter.CourseID {
		return false
	}
	if filter.Status != "" && bk.Status != filter.Status {
		return false
	}
	if !filter.From.IsZero() && bk.StartsAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && bk.StartsAt.After(filter.To) {
		return false
	}
	return true
}

func (repo *bookingRepository) UpdateBookingStatus(_ context.Context, id, status string, _ ...core.DBExecutor) (booking.Booking, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	bk, ok := repo.db.table[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	bk.Status = status
	bk.UpdatedAt = time.Now().UTC()
	return *bk, nil
}
