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
	"github.com/katleho/brainhub/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (row userRow) unpack() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive.Ptr(),
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) getUserWhere(ctx context.Context, exec []core.DBExecutor, where string, args ...interface{}) (user.User, error) {
	q := sqlx.Rebind(sqlx.DOLLAR, `SELECT * FROM "user" WHERE `+where)
	var row userRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.unpack(), nil
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	q := `SELECT * FROM "user" WHERE (username = ? OR email = ?)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		var err error
		if q, args, err = sqlx.In(q+" AND id NOT IN (?)", username, email, ids); err != nil {
			return errors.Wrap(err, "expanding excluded users")
		}
	}

	var rows []userRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if row.Username.String == username {
			return user.ErrUsernameExists
		}
		if row.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	q := sqlx.Rebind(sqlx.DOLLAR, `
		INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	isActive := true
	if usr.IsActive != nil {
		isActive = *usr.IsActive
	}
	_, err := repo.getExec(exec).ExecContext(ctx, q,
		usr.ID, usr.Name, usr.Username, usr.Email, isActive,
		pq.StringArray(usr.Roles), usr.PasswordHash, usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.IsActive = &isActive
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context, exec ...core.DBExecutor) ([]user.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUserWhere(ctx, exec, "id = ?", id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUserWhere(ctx, exec, "username = ?", username)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUserWhere(ctx, exec, "email = ?", email)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getUserWhere(ctx, exec, "username = ? OR email = ?", username, username)
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, exec ...core.DBExecutor) ([]user.User, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Search != "" {
		where = append(where, "(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)")
		val := "%" + filter.Search + "%"
		args = append(args, val, val, val)
	}
	if len(filter.Roles) > 0 {
		// a group role ("admin:") matches all roles under that group
		patterns := make(pq.StringArray, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			patterns = append(patterns, role+"%")
		}
		where = append(where, "EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE ANY (?))")
		args = append(args, patterns)
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, filter.CreatedTo.UTC())
	}

	q := `SELECT * FROM "user"`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []userRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	// only save set fields
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	if usr.Name != "" {
		set = append(set, "name = ?")
		args = append(args, usr.Name)
	}
	if usr.Username != "" {
		set = append(set, "username = ?")
		args = append(args, usr.Username)
	}
	if usr.Email != "" {
		set = append(set, "email = ?")
		args = append(args, usr.Email)
	}
	if !usr.UpdatedAt.IsZero() {
		set = append(set, "updated_at = ?")
		args = append(args, usr.UpdatedAt.UTC())
	}
	if usr.Roles != nil {
		set = append(set, "roles = ?")
		args = append(args, pq.StringArray(usr.Roles))
	}
	if usr.PasswordHash != nil {
		set = append(set, "password_hash = ?")
		args = append(args, usr.PasswordHash)
	}
	if isActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, *isActive)
	}
	if !usr.LastLogin.IsZero() {
		set = append(set, "last_login = ?")
		args = append(args, usr.LastLogin.UTC())
	}
	if len(set) == 0 {
		return repo.GetUserByID(ctx, usr.ID, exec...)
	}
	args = append(args, usr.ID)

	q := sqlx.Rebind(sqlx.DOLLAR, `UPDATE "user" SET `+strings.Join(set, ", ")+` WHERE id = ? RETURNING *`)
	var row userRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return row.unpack(), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "expanding user ids")
	}
	if _, err = repo.getExec(exec).ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func unpackUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users
}
