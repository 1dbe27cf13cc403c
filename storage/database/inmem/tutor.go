package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/tutor"
)

type tutorRepository struct {
	db *DB
}

var _ tutor.Repository = (*tutorRepository)(nil)

func NewTutorRepository(db *DB) tutor.Repository {
	return &tutorRepository{db: db}
}

func (repo *tutorRepository) queryProfiles() []tutor.Profile {
	profs := make([]tutor.Profile, 0, len(repo.db.profile.table))
	for _, p := range repo.db.profile.table {
		profs = append(profs, *p)
	}
	sort.Slice(profs, func(i, j int) bool {
		if profs[i].CreatedAt.Equal(profs[j].CreatedAt) {
			return profs[i].ID < profs[j].ID
		}
		return profs[i].CreatedAt.Before(profs[j].CreatedAt)
	})
	return profs
}

func (repo *tutorRepository) queryTutorProfiles() []tutor.TutorProfile {
	tps := make([]tutor.TutorProfile, 0, len(repo.db.tutorProfile.table))
	for _, tp := range repo.db.tutorProfile.table {
		tps = append(tps, *tp)
	}
	sort.Slice(tps, func(i, j int) bool {
		if tps[i].CreatedAt.Equal(tps[j].CreatedAt) {
			return tps[i].ID < tps[j].ID
		}
		return tps[i].CreatedAt.Before(tps[j].CreatedAt)
	})
	return tps
}

func (repo *tutorRepository) CreateProfile(_ context.Context, prof tutor.Profile, _ ...core.DBExecutor) (tutor.Profile, error) {
	repo.db.profile.mutex.Lock()
	defer repo.db.profile.mutex.Unlock()

	repo.db.profile.table[prof.ID] = &prof
	return prof, nil
}

func (repo *tutorRepository) GetProfileByID(_ context.Context, id string, _ ...core.DBExecutor) (tutor.Profile, error) {
	repo.db.profile.mutex.RLock()
	defer repo.db.profile.mutex.RUnlock()

	if prof, ok := repo.db.profile.table[id]; ok {
		return *prof, nil
	}
	return tutor.Profile{}, tutor.ErrProfileNotFound
}

func (repo *tutorRepository) QueryProfiles(_ context.Context, _ ...core.DBExecutor) ([]tutor.Profile, error) {
	repo.db.profile.mutex.RLock()
	defer repo.db.profile.mutex.RUnlock()
	return repo.queryProfiles(), nil
}

func (repo *tutorRepository) UpdateProfile(_ context.Context, prof tutor.Profile, _ ...core.DBExecutor) (tutor.Profile, error) {
	repo.db.profile.mutex.Lock()
	defer repo.db.profile.mutex.Unlock()

	origProf, ok := repo.db.profile.table[prof.ID]
	if !ok {
		return tutor.Profile{}, tutor.ErrProfileNotFound
	}
	origProf.FirstName = prof.FirstName
	origProf.LastName = prof.LastName
	origProf.SchoolName = prof.SchoolName
	origProf.Bio = prof.Bio
	origProf.AvatarURL = prof.AvatarURL
	origProf.UpdatedAt = prof.UpdatedAt

	repo.db.profile.table[prof.ID] = origProf
	return *origProf, nil
}

func (repo *tutorRepository) CreateTutorProfile(_ context.Context, tp tutor.TutorProfile, _ ...core.DBExecutor) (tutor.TutorProfile, error) {
	repo.db.tutorProfile.mutex.Lock()
	defer repo.db.tutorProfile.mutex.Unlock()

	repo.db.tutorProfile.table[tp.ID] = &tp
	return tp, nil
}

func (repo *tutorRepository) GetTutorProfileByID(_ context.Context, id string, _ ...core.DBExecutor) (tutor.TutorProfile, error) {
	repo.db.tutorProfile.mutex.RLock()
	defer repo.db.tutorProfile.mutex.RUnlock()

	if tp, ok := repo.db.tutorProfile.table[id]; ok {
		return *tp, nil
	}
	return tutor.TutorProfile{}, tutor.ErrTutorNotFound
}

func (repo *tutorRepository) FilterTutorProfiles(_ context.Context, filter tutor.QueryFilter, _ ...core.DBExecutor) ([]tutor.TutorProfile, error) {
	repo.db.tutorProfile.mutex.RLock()
	defer repo.db.tutorProfile.mutex.RUnlock()

	tps := make([]tutor.TutorProfile, 0)
	for _, tp := range repo.db.tutorProfile.table {
		if repo.matchesTutorFilter(tp, filter) {
			tps = append(tps, *tp)
		}
	}
	sort.Slice(tps, func(i, j int) bool {
		if tps[i].CreatedAt.Equal(tps[j].CreatedAt) {
			return tps[i].ID < tps[j].ID
		}
		return tps[i].CreatedAt.Before(tps[j].CreatedAt)
	})
	for i := len(filter.Orderings) - 1; i >= 0; i-- {
		sortTutorProfiles(tps, filter.Orderings[i])
	}
	return tps, nil
}

// sortTutorProfiles is a stable sort on a single ordering term; unknown fields are a no-op.
// Applying the terms in reverse keeps the first term as the primary sort key.
func sortTutorProfiles(tps []tutor.TutorProfile, ord core.DBOrdering) {
	key := func(tp tutor.TutorProfile) float64 {
		switch ord.Field {
		case "hourly_rate":
			return tp.HourlyRate
		case "rating":
			return tp.Rating
		case "experience":
			return float64(tp.ExperienceYrs)
		case "total_sessions":
			return float64(tp.TotalSessions)
		case "created_at":
			return float64(tp.CreatedAt.UnixNano())
		}
		return 0
	}
	switch ord.Field {
	case "hourly_rate", "rating", "experience", "total_sessions", "created_at":
	default:
		return
	}
	sort.SliceStable(tps, func(i, j int) bool {
		if ord.Ascending {
			return key(tps[i]) < key(tps[j])
		}
		return key(tps[i]) > key(tps[j])
	})
}

func (repo *tutorRepository) matchesTutorFilter(tp *tutor.TutorProfile, filter tutor.QueryFilter) bool {
	if filter.Verified != nil && tp.Verified != *filter.Verified {
		return false
	}
	if filter.MaxHourlyRate != nil && tp.HourlyRate > *filter.MaxHourlyRate {
		return false
	}
	if filter.Search != "" {
		repo.db.profile.mutex.RLock()
		prof, ok := repo.db.profile.table[tp.ID]
		repo.db.profile.mutex.RUnlock()
		if !ok {
			return false
		}
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(prof.FullName()), search) &&
			!strings.Contains(strings.ToLower(prof.SchoolName), search) {
			return false
		}
	}
	return true
}

func (repo *tutorRepository) QueryTutorProfiles(_ context.Context, _ ...core.DBExecutor) ([]tutor.TutorProfile, error) {
	repo.db.tutorProfile.mutex.RLock()
	defer repo.db.tutorProfile.mutex.RUnlock()
	return repo.queryTutorProfiles(), nil
}

func (repo *tutorRepository) UpdateTutorProfile(_ context.Context, tp tutor.TutorProfile, verified *bool, _ ...core.DBExecutor) (tutor.TutorProfile, error) {
	repo.db.tutorProfile.mutex.Lock()
	defer repo.db.tutorProfile.mutex.Unlock()

	origTp, ok := repo.db.tutorProfile.table[tp.ID]
	if !ok {
		return tutor.TutorProfile{}, tutor.ErrTutorNotFound
	}
	if verified != nil {
		origTp.Verified = *verified
	}
	origTp.Qualifications = tp.Qualifications
	origTp.ExperienceYrs = tp.ExperienceYrs
	origTp.HourlyRate = tp.HourlyRate
	origTp.Rating = tp.Rating
	origTp.TotalSessions = tp.TotalSessions
	origTp.UpdatedAt = tp.UpdatedAt

	repo.db.tutorProfile.table[tp.ID] = origTp
	return *origTp, nil
}
