package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/tutor"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrSubjectNotFound = errors.New("subject not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		GetCourseByID(ctx context.Context, id string, exec ...core.DBExecutor) (Course, error)
		// FilterCourses applies AND on set QueryFilter fields. Search does a case-insensitive
		// match on Course.Title or Course.Description.
		FilterCourses(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course, isActive *bool, exec ...core.DBExecutor) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error

		QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, ids ...string) error
		Subjects(ctx context.Context) ([]Subject, error)
		// Match scores every active course against the preferences and returns the
		// top-ranked results (bounded by config matchResultLimit).
		Match(ctx context.Context, prefs SearchPreferences) ([]ScoredCourse, error)
	}

	service struct {
		repo       Repository
		tutorRepo  tutor.Repository
		reviewRepo review.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, tutorRepo tutor.Repository, reviewRepo review.Repository) Service {
	return &service{repo: repo, tutorRepo: tutorRepo, reviewRepo: reviewRepo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if nc.SubjectID != "" {
		if _, err := svc.repo.GetSubjectByID(ctx, nc.SubjectID); err != nil {
			return Course{}, core.NewValidationError(err,
				core.FieldError{Field: "subject_id", Error: ErrSubjectNotFound.Error()})
		}
	}
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		GradeLevel:  nc.GradeLevel,
		Subject:     nc.Subject,
		SubjectID:   nc.SubjectID,
		TutorID:     nc.TutorID,
		Price:       float64(nc.Price),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Course, error) {
	filter.Clean()
	return svc.repo.FilterCourses(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.Subject != "" {
		crs.Subject = uc.Subject
	}
	if uc.SubjectID != "" {
		if _, err := svc.repo.GetSubjectByID(ctx, uc.SubjectID); err != nil {
			return Course{}, core.NewValidationError(err,
				core.FieldError{Field: "subject_id", Error: ErrSubjectNotFound.Error()})
		}
		crs.SubjectID = uc.SubjectID
	}
	if uc.GradeLevel != nil {
		crs.GradeLevel = *uc.GradeLevel
	}
	if uc.Price != nil {
		crs.Price = float64(*uc.Price)
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs, uc.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids)
}

func (svc *service) Subjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *service) Match(ctx context.Context, prefs SearchPreferences) ([]ScoredCourse, error) {
	prefs.Clean()

	// fan out the lookup fetches; matching itself is pure over the materialized data
	var (
		courses  []Course
		subjects []Subject
		tutors   []tutor.TutorProfile
		profiles []tutor.Profile
		reviews  []review.Review
	)
	active := true
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = svc.repo.FilterCourses(gctx, QueryFilter{IsActive: &active})
		return errors.Wrap(err, "querying courses")
	})
	g.Go(func() (err error) {
		subjects, err = svc.repo.QuerySubjects(gctx)
		return errors.Wrap(err, "querying subjects")
	})
	g.Go(func() (err error) {
		tutors, err = svc.tutorRepo.QueryTutorProfiles(gctx)
		return errors.Wrap(err, "querying tutor profiles")
	})
	g.Go(func() (err error) {
		profiles, err = svc.tutorRepo.QueryProfiles(gctx)
		return errors.Wrap(err, "querying profiles")
	})
	g.Go(func() (err error) {
		reviews, err = svc.reviewRepo.QueryAllReviews(gctx)
		return errors.Wrap(err, "querying reviews")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lk := Lookups{
		Subjects: make(map[string]Subject, len(subjects)),
		Tutors:   make(map[string]tutor.TutorProfile, len(tutors)),
		Profiles: make(map[string]tutor.Profile, len(profiles)),
		Reviews:  make(map[string][]review.Review),
	}
	for _, subj := range subjects {
		lk.Subjects[subj.ID] = subj
	}
	for _, tp := range tutors {
		lk.Tutors[tp.ID] = tp
	}
	for _, prof := range profiles {
		lk.Profiles[prof.ID] = prof
	}
	for _, rev := range reviews {
		lk.Reviews[rev.CourseID] = append(lk.Reviews[rev.CourseID], rev)
	}

	scored := make([]ScoredCourse, 0, len(courses))
	for _, crs := range courses {
		attrs := ResolveAttributes(crs, lk)
		scored = append(scored, ScoredCourse{Course: crs, Score: Score(attrs, prefs)})
	}
	return Rank(scored, core.Conf.Matching.ResultLimit), nil
}
