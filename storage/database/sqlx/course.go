package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/course"
)

type courseRow struct {
	ID          string       `db:"id"`
	Title       null.String  `db:"title"`
	Description null.String  `db:"description"`
	GradeLevel  null.Int     `db:"grade_level"`
	Subject     null.String  `db:"subject"`
	SubjectID   null.String  `db:"subject_id"`
	TutorID     null.String  `db:"tutor_id"`
	Price       null.Float64 `db:"price"`
	IsActive    null.Bool    `db:"is_active"`
	CreatedAt   null.Time    `db:"created_at"`
	UpdatedAt   null.Time    `db:"updated_at"`
}

func (row courseRow) unpack() course.Course {
	return course.Course{
		ID:          row.ID,
		Title:       row.Title.String,
		Description: row.Description.String,
		GradeLevel:  row.GradeLevel.Int,
		Subject:     row.Subject.String,
		SubjectID:   row.SubjectID.String,
		TutorID:     row.TutorID.String,
		Price:       row.Price.Float64,
		IsActive:    row.IsActive.Bool,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

type subjectRow struct {
	ID          string        `db:"id"`
	Name        null.String   `db:"name"`
	GradeLevels pq.Int64Array `db:"grade_levels"`
}

func (row subjectRow) unpack() course.Subject {
	levels := make([]int, 0, len(row.GradeLevels))
	for _, lvl := range row.GradeLevels {
		levels = append(levels, int(lvl))
	}
	return course.Subject{ID: row.ID, Name: row.Name.String, GradeLevels: levels}
}

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo courseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to course.ErrNotFound
func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	crs.ID = uuid.New().String()
	q := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO course (id, title, description, grade_level, subject, subject_id, tutor_id, price, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		crs.ID, crs.Title, crs.Description, crs.GradeLevel, crs.Subject,
		null.NewString(crs.SubjectID, crs.SubjectID != ""), null.NewString(crs.TutorID, crs.TutorID != ""),
		crs.Price, crs.IsActive, crs.CreatedAt.UTC(), crs.UpdatedAt.UTC(),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Course, error) {
	var row courseRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "getting course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, exec ...core.DBExecutor) ([]course.Course, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Search != "" {
		where = append(where, "(title ILIKE ? OR description ILIKE ?)")
		val := "%" + filter.Search + "%"
		args = append(args, val, val)
	}
	if filter.TutorID != "" {
		where = append(where, "tutor_id = ?")
		args = append(args, filter.TutorID)
	}
	if filter.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.GradeLevel != 0 {
		where = append(where, "grade_level = ?")
		args = append(args, filter.GradeLevel)
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.IsActive)
	}

	q := `SELECT * FROM course`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []courseRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unpack())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, isActive *bool, exec ...core.DBExecutor) (course.Course, error) {
	set := []string{"title = ?", "description = ?", "grade_level = ?", "subject = ?", "subject_id = ?", "price = ?", "updated_at = ?"}
	args := []interface{}{
		crs.Title, crs.Description, crs.GradeLevel, crs.Subject,
		null.NewString(crs.SubjectID, crs.SubjectID != ""), crs.Price, crs.UpdatedAt.UTC(),
	}
	if isActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, *isActive)
	}
	args = append(args, crs.ID)

	q := sqlx.Rebind(sqlx.DOLLAR, `UPDATE course SET `+strings.Join(set, ", ")+` WHERE id = ? RETURNING *`)
	var row courseRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, args...); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "updating course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM course WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "expanding course ids")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo courseRepository) QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]course.Subject, error) {
	var rows []subjectRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, `SELECT * FROM subject ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]course.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.unpack())
	}
	return subjects, nil
}

func (repo courseRepository) GetSubjectByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Subject, error) {
	var row subjectRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Subject{}, course.ErrSubjectNotFound
		}
		return course.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.unpack(), nil
}
