package tutor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/katleho/brainhub/core"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrTutorNotFound   = errors.New("tutor profile not found")
)

type (
	Repository interface {
		CreateProfile(ctx context.Context, prof Profile, exec ...core.DBExecutor) (Profile, error)
		GetProfileByID(ctx context.Context, id string, exec ...core.DBExecutor) (Profile, error)
		QueryProfiles(ctx context.Context, exec ...core.DBExecutor) ([]Profile, error)
		UpdateProfile(ctx context.Context, prof Profile, exec ...core.DBExecutor) (Profile, error)

		CreateTutorProfile(ctx context.Context, tp TutorProfile, exec ...core.DBExecutor) (TutorProfile, error)
		GetTutorProfileByID(ctx context.Context, id string, exec ...core.DBExecutor) (TutorProfile, error)
		// FilterTutorProfiles applies AND on set QueryFilter fields. Search does a
		// case-insensitive match on the owning Profile's names or school.
		FilterTutorProfiles(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]TutorProfile, error)
		QueryTutorProfiles(ctx context.Context, exec ...core.DBExecutor) ([]TutorProfile, error)
		UpdateTutorProfile(ctx context.Context, tp TutorProfile, verified *bool, exec ...core.DBExecutor) (TutorProfile, error)
	}

	Service interface {
		CreateProfile(ctx context.Context, np NewProfile) (Profile, error)
		GetProfile(ctx context.Context, id string) (Profile, error)
		UpdateProfile(ctx context.Context, id string, up UpdateProfile) (Profile, error)

		CreateTutorProfile(ctx context.Context, nt NewTutorProfile) (TutorProfile, error)
		GetTutorProfile(ctx context.Context, id string) (TutorProfile, error)
		Filter(ctx context.Context, filter QueryFilter) ([]TutorProfile, error)
		UpdateTutorProfile(ctx context.Context, id string, ut UpdateTutorProfile) (TutorProfile, error)
		// SetVerified is an admin-only toggle.
		SetVerified(ctx context.Context, id string, verified bool) (TutorProfile, error)
		// RecordSession bumps TotalSessions and folds a session rating into the running average.
		RecordSession(ctx context.Context, id string, rating float64) (TutorProfile, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateProfile(ctx context.Context, np NewProfile) (Profile, error) {
	now := time.Now().UTC()
	prof := Profile{
		ID:         np.ID,
		FirstName:  np.FirstName,
		LastName:   np.LastName,
		Role:       np.Role,
		SchoolName: np.SchoolName,
		Bio:        np.Bio,
		AvatarURL:  np.AvatarURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateProfile(ctx, prof)
}

func (svc *service) GetProfile(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetProfileByID(ctx, id)
}

func (svc *service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (Profile, error) {
	prof := Profile{
		ID:         id,
		FirstName:  up.FirstName,
		LastName:   up.LastName,
		SchoolName: up.SchoolName,
		Bio:        up.Bio,
		AvatarURL:  up.AvatarURL,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpdateProfile(ctx, prof)
}

func (svc *service) CreateTutorProfile(ctx context.Context, nt NewTutorProfile) (TutorProfile, error) {
	// the owning Profile must exist
	if _, err := svc.repo.GetProfileByID(ctx, nt.ID); err != nil {
		return TutorProfile{}, err
	}
	now := time.Now().UTC()
	tp := TutorProfile{
		ID:             nt.ID,
		Qualifications: nt.Qualifications,
		ExperienceYrs:  nt.ExperienceYrs,
		HourlyRate:     float64(nt.HourlyRate),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateTutorProfile(ctx, tp)
}

func (svc *service) GetTutorProfile(ctx context.Context, id string) (TutorProfile, error) {
	return svc.repo.GetTutorProfileByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]TutorProfile, error) {
	filter.Clean()
	return svc.repo.FilterTutorProfiles(ctx, filter)
}

func (svc *service) UpdateTutorProfile(ctx context.Context, id string, ut UpdateTutorProfile) (TutorProfile, error) {
	orig, err := svc.repo.GetTutorProfileByID(ctx, id)
	if err != nil {
		return TutorProfile{}, err
	}
	if ut.Qualifications != "" {
		orig.Qualifications = ut.Qualifications
	}
	if ut.ExperienceYrs != nil {
		orig.ExperienceYrs = *ut.ExperienceYrs
	}
	if ut.HourlyRate != nil {
		orig.HourlyRate = float64(*ut.HourlyRate)
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTutorProfile(ctx, orig, nil)
}

func (svc *service) SetVerified(ctx context.Context, id string, verified bool) (TutorProfile, error) {
	tp, err := svc.repo.GetTutorProfileByID(ctx, id)
	if err != nil {
		return TutorProfile{}, err
	}
	tp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTutorProfile(ctx, tp, &verified)
}

func (svc *service) RecordSession(ctx context.Context, id string, rating float64) (TutorProfile, error) {
	tp, err := svc.repo.GetTutorProfileByID(ctx, id)
	if err != nil {
		return TutorProfile{}, err
	}
	if rating > 0 {
		total := tp.Rating*float64(tp.TotalSessions) + rating
		tp.Rating = total / float64(tp.TotalSessions+1)
	}
	tp.TotalSessions++
	tp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTutorProfile(ctx, tp, nil)
}
