package booking

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/tutor"
	"github.com/katleho/brainhub/core/user"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrSlotTaken         = errors.New("the tutor already has a booking in this time slot")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

type (
	Repository interface {
		CreateBooking(ctx context.Context, bk Booking, exec ...core.DBExecutor) (Booking, error)
		GetBookingByID(ctx context.Context, id string, exec ...core.DBExecutor) (Booking, error)
		// FilterBookings applies AND on set QueryFilter fields, ordered by StartsAt ascending.
		FilterBookings(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Booking, error)
		UpdateBookingStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (Booking, error)
	}

	Service interface {
		Create(ctx context.Context, nb NewBooking) (Booking, error)
		GetByID(ctx context.Context, id string) (Booking, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Booking, error)
		Confirm(ctx context.Context, id string) (Booking, error)
		// Complete marks the session done and records it on the tutor's profile,
		// folding a non-zero rating into the running average.
		Complete(ctx context.Context, id string, rating float64) (Booking, error)
		Cancel(ctx context.Context, id string) (Booking, error)
	}

	service struct {
		repo     Repository
		tutorSvc tutor.Service
		userRepo user.Repository
		mailSvc  core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, tutorSvc tutor.Service, userRepo user.Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, tutorSvc: tutorSvc, userRepo: userRepo, mailSvc: mailSvc}
}

func (svc *service) Create(ctx context.Context, nb NewBooking) (Booking, error) {
	// reject double bookings of the tutor's slot
	existing, err := svc.repo.FilterBookings(ctx, QueryFilter{TutorID: nb.TutorID})
	if err != nil {
		return Booking{}, err
	}
	for _, bk := range existing {
		if bk.Status == StatusCancelled {
			continue
		}
		if bk.Overlaps(nb.StartsAt, nb.EndsAt) {
			return Booking{}, core.NewValidationError(ErrSlotTaken,
				core.FieldError{Field: "starts_at", Error: ErrSlotTaken.Error()})
		}
	}

	now := time.Now().UTC()
	bk := Booking{
		CourseID:  nb.CourseID,
		StudentID: nb.StudentID,
		TutorID:   nb.TutorID,
		StartsAt:  nb.StartsAt.UTC(),
		EndsAt:    nb.EndsAt.UTC(),
		Status:    StatusPending,
		Notes:     nb.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBooking(ctx, bk)
}

func (svc *service) GetByID(ctx context.Context, id string) (Booking, error) {
	return svc.repo.GetBookingByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Booking, error) {
	return svc.repo.FilterBookings(ctx, filter)
}

func (svc *service) Confirm(ctx context.Context, id string) (Booking, error) {
	bk, err := svc.transition(ctx, id, StatusConfirmed)
	if err != nil {
		return Booking{}, err
	}
	svc.sendConfirmationMail(ctx, bk)
	return bk, nil
}

func (svc *service) Complete(ctx context.Context, id string, rating float64) (Booking, error) {
	bk, err := svc.transition(ctx, id, StatusCompleted)
	if err != nil {
		return Booking{}, err
	}
	// completed sessions count towards the tutor's totals; a booking may outlive
	// its tutor profile, in which case there is nothing to record
	if _, err := svc.tutorSvc.RecordSession(ctx, bk.TutorID, rating); err != nil &&
		errors.Cause(err) != tutor.ErrTutorNotFound {
		return Booking{}, errors.Wrap(err, "recording session")
	}
	return bk, nil
}

func (svc *service) Cancel(ctx context.Context, id string) (Booking, error) {
	return svc.transition(ctx, id, StatusCancelled)
}

func (svc *service) transition(ctx context.Context, id, status string) (Booking, error) {
	bk, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if !bk.CanTransitionTo(status) {
		return Booking{}, core.NewValidationError(ErrInvalidTransition,
			core.FieldError{Field: "status", Error: ErrInvalidTransition.Error()})
	}
	return svc.repo.UpdateBookingStatus(ctx, id, status)
}

func (svc *service) sendConfirmationMail(ctx context.Context, bk Booking) {
	usr, err := svc.userRepo.GetUserByID(ctx, bk.StudentID)
	if err != nil || usr.Email == "" {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Booking confirmed",
		BodyStr: "Your tutoring session on " + bk.StartsAt.Format(time.RFC1123) + " has been confirmed.",
	}
	svc.mailSvc.SendMessages(msg)
}
