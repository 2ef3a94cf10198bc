package user

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eldercare/eldercare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const userCols = `id, username, password_hash, email, first_name, second_name,
	primary_location, secondary_location, phone_number, role, privileges,
	created_at, updated_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email,
		&u.FirstName, &u.SecondName,
		&u.PrimaryLocation, &u.SecondaryLocation, &u.PhoneNumber,
		&u.Role, &u.Privileges, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// uniqueViolation translates the unique constraints of app_user into the
// package's duplicate errors.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "app_user_username_key":
		return ErrDuplicateUsername
	case "app_user_email_key":
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO app_user (id, username, password_hash, email, first_name, second_name,
			primary_location, secondary_location, phone_number, role, privileges)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		u.ID, u.Username, u.PasswordHash, u.Email, u.FirstName, u.SecondName,
		u.PrimaryLocation, u.SecondaryLocation, u.PhoneNumber, u.Role, u.Privileges,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return uniqueViolation(err)
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE username = $1`, username))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE app_user SET email=$2, primary_location=$3, secondary_location=$4,
			phone_number=$5, role=$6, privileges=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Email, u.PrimaryLocation, u.SecondaryLocation, u.PhoneNumber, u.Role, u.Privileges,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return uniqueViolation(err)
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok)
	return ok, err
}

func (r *userRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM app_user WHERE id = $1`, id)
}

func (r *userRepoPG) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM app_user WHERE username = $1`, username)
}

func (r *userRepoPG) EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM app_user WHERE email = $1 AND id <> $2`, email, exclude)
}

// list runs a filtered, paged query. where must reference its arguments as
// $1..$n; limit and offset are appended after them.
func (r *userRepoPG) list(ctx context.Context, where string, limit, offset int, args ...interface{}) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM app_user WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + userCols + ` FROM app_user WHERE ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *userRepoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, `role = $1`, limit, offset, role)
}

func (r *userRepoPG) ListByPrivileges(ctx context.Context, privileges string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, `privileges = $1`, limit, offset, privileges)
}

func (r *userRepoPG) ListByRoleAndPrivileges(ctx context.Context, role, privileges string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, `role = $1 AND privileges = $2`, limit, offset, role, privileges)
}

func (r *userRepoPG) ListByEmail(ctx context.Context, email string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, `email = $1`, limit, offset, email)
}

func (r *userRepoPG) ListByPrimaryLocation(ctx context.Context, location string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, `primary_location = $1`, limit, offset, location)
}

func (r *userRepoPG) ListBySecondaryLocation(ctx context.Context, location string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx, `secondary_location = $1`, limit, offset, location)
}

func (r *userRepoPG) Search(ctx context.Context, term string, limit, offset int) ([]*User, int, error) {
	return r.list(ctx,
		`(username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%' OR phone_number ILIKE '%' || $1 || '%')`,
		limit, offset, term)
}

func (r *userRepoPG) LookupRole(ctx context.Context, id uuid.UUID) (role string, found bool, err error) {
	err = r.conn(ctx).QueryRow(ctx, `SELECT role FROM app_user WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}
