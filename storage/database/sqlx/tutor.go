package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/tutor"
)

type profileRow struct {
	ID         string      `db:"id"`
	FirstName  null.String `db:"first_name"`
	LastName   null.String `db:"last_name"`
	Role       null.String `db:"role"`
	SchoolName null.String `db:"school_name"`
	Bio        null.String `db:"bio"`
	AvatarURL  null.String `db:"avatar_url"`
	CreatedAt  null.Time   `db:"created_at"`
	UpdatedAt  null.Time   `db:"updated_at"`
}

func (row profileRow) unpack() tutor.Profile {
	return tutor.Profile{
		ID:         row.ID,
		FirstName:  row.FirstName.String,
		LastName:   row.LastName.String,
		Role:       row.Role.String,
		SchoolName: row.SchoolName.String,
		Bio:        row.Bio.String,
		AvatarURL:  row.AvatarURL.String,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

type tutorProfileRow struct {
	ID             string       `db:"id"`
	Qualifications null.String  `db:"qualifications"`
	ExperienceYrs  null.Int     `db:"experience_yrs"`
	HourlyRate     null.Float64 `db:"hourly_rate"`
	Verified       null.Bool    `db:"verified"`
	Rating         null.Float64 `db:"rating"`
	TotalSessions  null.Int     `db:"total_sessions"`
	CreatedAt      null.Time    `db:"created_at"`
	UpdatedAt      null.Time    `db:"updated_at"`
}

func (row tutorProfileRow) unpack() tutor.TutorProfile {
	return tutor.TutorProfile{
		ID:             row.ID,
		Qualifications: row.Qualifications.String,
		ExperienceYrs:  row.ExperienceYrs.Int,
		HourlyRate:     row.HourlyRate.Float64,
		Verified:       row.Verified.Bool,
		Rating:         row.Rating.Float64,
		TotalSessions:  row.TotalSessions.Int,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

type tutorRepository struct {
	exec core.DBExecutor
}

var _ tutor.Repository = (*tutorRepository)(nil) // interface compliance check

func NewTutorRepository(exec core.DBExecutor) *tutorRepository {
	return &tutorRepository{exec: exec}
}

func (repo tutorRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo tutorRepository) CreateProfile(ctx context.Context, prof tutor.Profile, exec ...core.DBExecutor) (tutor.Profile, error) {
	q := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO profile (id, first_name, last_name, role, school_name, bio, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		prof.ID, prof.FirstName, prof.LastName, prof.Role, prof.SchoolName,
		prof.Bio, prof.AvatarURL, prof.CreatedAt.UTC(), prof.UpdatedAt.UTC(),
	)
	if err != nil {
		return tutor.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return prof, nil
}

func (repo tutorRepository) GetProfileByID(ctx context.Context, id string, exec ...core.DBExecutor) (tutor.Profile, error) {
	var row profileRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, `SELECT * FROM profile WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return tutor.Profile{}, tutor.ErrProfileNotFound
		}
		return tutor.Profile{}, errors.Wrap(err, "getting profile")
	}
	return row.unpack(), nil
}

func (repo tutorRepository) QueryProfiles(ctx context.Context, exec ...core.DBExecutor) ([]tutor.Profile, error) {
	var rows []profileRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, `SELECT * FROM profile ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	profs := make([]tutor.Profile, 0, len(rows))
	for _, row := range rows {
		profs = append(profs, row.unpack())
	}
	return profs, nil
}

func (repo tutorRepository) UpdateProfile(ctx context.Context, prof tutor.Profile, exec ...core.DBExecutor) (tutor.Profile, error) {
	q := sqlx.Rebind(sqlx.DOLLAR, `
		UPDATE profile
		SET first_name = ?, last_name = ?, school_name = ?, bio = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?
		RETURNING *`)
	var row profileRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q,
		prof.FirstName, prof.LastName, prof.SchoolName, prof.Bio, prof.AvatarURL, prof.UpdatedAt.UTC(), prof.ID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return tutor.Profile{}, tutor.ErrProfileNotFound
		}
		return tutor.Profile{}, errors.Wrap(err, "updating profile")
	}
	return row.unpack(), nil
}

func (repo tutorRepository) CreateTutorProfile(ctx context.Context, tp tutor.TutorProfile, exec ...core.DBExecutor) (tutor.TutorProfile, error) {
	q := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO tutor_profile (id, qualifications, experience_yrs, hourly_rate, verified, rating, total_sessions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		tp.ID, tp.Qualifications, tp.ExperienceYrs, tp.HourlyRate, tp.Verified,
		tp.Rating, tp.TotalSessions, tp.CreatedAt.UTC(), tp.UpdatedAt.UTC(),
	)
	if err != nil {
		return tutor.TutorProfile{}, errors.Wrap(err, "inserting tutor profile")
	}
	return tp, nil
}

func (repo tutorRepository) GetTutorProfileByID(ctx context.Context, id string, exec ...core.DBExecutor) (tutor.TutorProfile, error) {
	var row tutorProfileRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, `SELECT * FROM tutor_profile WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return tutor.TutorProfile{}, tutor.ErrTutorNotFound
		}
		return tutor.TutorProfile{}, errors.Wrap(err, "getting tutor profile")
	}
	return row.unpack(), nil
}

func (repo tutorRepository) FilterTutorProfiles(ctx context.Context, filter tutor.QueryFilter, exec ...core.DBExecutor) ([]tutor.TutorProfile, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Search != "" {
		// match the full display name so "thabo mokoena" finds the tutor too
		where = append(where, "((p.first_name || ' ' || p.last_name) ILIKE ? OR p.school_name ILIKE ?)")
		val := "%" + filter.Search + "%"
		args = append(args, val, val)
	}
	if filter.Verified != nil {
		where = append(where, "tp.verified = ?")
		args = append(args, *filter.Verified)
	}
	if filter.MaxHourlyRate != nil {
		where = append(where, "tp.hourly_rate <= ?")
		args = append(args, *filter.MaxHourlyRate)
	}

	q := `SELECT tp.* FROM tutor_profile tp JOIN profile p ON p.id = tp.id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + tutorOrderBy(filter.Orderings)

	var rows []tutorProfileRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering tutor profiles")
	}
	return unpackTutorProfiles(rows), nil
}

func (repo tutorRepository) QueryTutorProfiles(ctx context.Context, exec ...core.DBExecutor) ([]tutor.TutorProfile, error) {
	var rows []tutorProfileRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, `SELECT * FROM tutor_profile ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying tutor profiles")
	}
	return unpackTutorProfiles(rows), nil
}

func (repo tutorRepository) UpdateTutorProfile(ctx context.Context, tp tutor.TutorProfile, verified *bool, exec ...core.DBExecutor) (tutor.TutorProfile, error) {
	set := []string{"qualifications = ?", "experience_yrs = ?", "hourly_rate = ?", "rating = ?", "total_sessions = ?", "updated_at = ?"}
	args := []interface{}{tp.Qualifications, tp.ExperienceYrs, tp.HourlyRate, tp.Rating, tp.TotalSessions, tp.UpdatedAt.UTC()}
	if verified != nil {
		set = append(set, "verified = ?")
		args = append(args, *verified)
	}
	args = append(args, tp.ID)

	q := sqlx.Rebind(sqlx.DOLLAR, `UPDATE tutor_profile SET `+strings.Join(set, ", ")+` WHERE id = ? RETURNING *`)
	var row tutorProfileRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return tutor.TutorProfile{}, tutor.ErrTutorNotFound
		}
		return tutor.TutorProfile{}, errors.Wrap(err, "updating tutor profile")
	}
	return row.unpack(), nil
}

// tutorSortColumns maps API ordering fields to tutor_profile columns.
// Anything else never reaches the query.
var tutorSortColumns = map[string]string{
	"hourly_rate":    "tp.hourly_rate",
	"rating":         "tp.rating",
	"experience":     "tp.experience_yrs",
	"total_sessions": "tp.total_sessions",
	"created_at":     "tp.created_at",
}

func tutorOrderBy(orderings []core.DBOrdering) string {
	var terms []string
	for _, ord := range orderings {
		col, ok := tutorSortColumns[ord.Field]
		if !ok {
			continue
		}
		terms = append(terms, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(terms) == 0 {
		return "tp.created_at"
	}
	return strings.Join(terms, ", ")
}

func unpackTutorProfiles(rows []tutorProfileRow) []tutor.TutorProfile {
	tps := make([]tutor.TutorProfile, 0, len(rows))
	for _, row := range rows {
		tps = append(tps, row.unpack())
	}
	return tps
}
