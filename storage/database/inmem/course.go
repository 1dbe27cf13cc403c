package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.course.table))
	for _, crs := range repo.db.course.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})
	return courses
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.mutex.Lock()
	defer repo.db.course.mutex.Unlock()

	crs.ID = uuid.New().String()
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.mutex.RLock()
	defer repo.db.course.mutex.RUnlock()

	if crs, ok := repo.db.course.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) FilterCourses(_ context.Context, filter course.QueryFilter, _ ...core.DBExecutor) ([]course.Course, error) {
	repo.db.course.mutex.RLock()
	defer repo.db.course.mutex.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.query() {
		if matchesCourseFilter(crs, filter) {
			courses = append(courses, crs)
		}
	}
	return courses, nil
}

func matchesCourseFilter(crs course.Course, filter course.QueryFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(crs.Title), search) &&
			!strings.Contains(strings.ToLower(crs.Description), search) {
			return false
		}
	}
	if filter.TutorID != "" && crs.TutorID != filter.TutorID {
		return false
	}
	if filter.SubjectID != "" && crs.SubjectID != filter.SubjectID {
		return false
	}
	if filter.GradeLevel != 0 && crs.GradeLevel != filter.GradeLevel {
		return false
	}
	if filter.IsActive != nil && crs.IsActive != *filter.IsActive {
		return false
	}
	return true
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course, isActive *bool, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.course.mutex.Lock()
	defer repo.db.course.mutex.Unlock()

	origCrs, ok := repo.db.course.table[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if isActive != nil {
		origCrs.IsActive = *isActive
	}
	origCrs.Title = crs.Title
	origCrs.Description = crs.Description
	origCrs.GradeLevel = crs.GradeLevel
	origCrs.Subject = crs.Subject
	origCrs.SubjectID = crs.SubjectID
	origCrs.Price = crs.Price
	origCrs.UpdatedAt = crs.UpdatedAt

	repo.db.course.table[crs.ID] = origCrs
	return *origCrs, nil
}

func (repo *courseRepository) DeleteCoursesByID(_ context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.db.course.mutex.Lock()
	defer repo.db.course.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.course.table, id)
	}
	return nil
}

func (repo *courseRepository) QuerySubjects(_ context.Context, _ ...core.DBExecutor) ([]course.Subject, error) {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()

	subjects := make([]course.Subject, 0, len(repo.db.subject.table))
	for _, subj := range repo.db.subject.table {
		subjects = append(subjects, *subj)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *courseRepository) GetSubjectByID(_ context.Context, id string, _ ...core.DBExecutor) (course.Subject, error) {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()

	if subj, ok := repo.db.subject.table[id]; ok {
		return *subj, nil
	}
	return course.Subject{}, course.ErrSubjectNotFound
}

// SeedSubject is not part of course.Repository; subjects are seeded by
// migrations in production. Tests use it to populate lookups.
func (db *DB) SeedSubject(subj course.Subject) course.Subject {
	db.subject.mutex.Lock()
	defer db.subject.mutex.Unlock()

	if subj.ID == "" {
		subj.ID = uuid.New().String()
	}
	db.subject.table[subj.ID] = &subj
	return subj
}
