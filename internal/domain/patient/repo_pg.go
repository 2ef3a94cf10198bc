package patient

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, dob, gender, address, phone_number,
	emergency_contact, emergency_contact_phone, created_at, updated_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DOB, &p.Gender,
		&p.Address, &p.PhoneNumber, &p.EmergencyContact, &p.EmergencyContactPhone,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, first_name, last_name, dob, gender, address, phone_number,
			emergency_contact, emergency_contact_phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.DOB, p.Gender, p.Address, p.PhoneNumber,
		p.EmergencyContact, p.EmergencyContactPhone,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, dob=$4, gender=$5, address=$6,
			phone_number=$7, emergency_contact=$8, emergency_contact_phone=$9, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.DOB, p.Gender, p.Address,
		p.PhoneNumber, p.EmergencyContact, p.EmergencyContactPhone,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *patientRepoPG) collect(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// list runs a filtered, paged query ordered by name. where references its
// arguments as $1..$n.
func (r *patientRepoPG) list(ctx context.Context, where string, limit, offset int, args ...interface{}) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient WHERE `+where+
		` ORDER BY last_name, first_name LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return r.list(ctx, `TRUE`, limit, offset)
}

func (r *patientRepoPG) FindByName(ctx context.Context, firstName, lastName string) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient
		WHERE first_name = $1 AND last_name = $2 ORDER BY created_at`, firstName, lastName)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *patientRepoPG) ListByLastName(ctx context.Context, lastName string, limit, offset int) ([]*Patient, int, error) {
	return r.list(ctx, `last_name = $1`, limit, offset, lastName)
}

func (r *patientRepoPG) Search(ctx context.Context, keyword string, limit, offset int) ([]*Patient, int, error) {
	return r.list(ctx, `(first_name ILIKE '%' || $1 || '%'
		OR last_name ILIKE '%' || $1 || '%'
		OR phone_number LIKE '%' || $1 || '%'
		OR emergency_contact LIKE '%' || $1 || '%')`, limit, offset, keyword)
}

func (r *patientRepoPG) ListByAgeRange(ctx context.Context, minAge, maxAge, limit, offset int) ([]*Patient, int, error) {
	return r.list(ctx,
		`EXTRACT(YEAR FROM CURRENT_DATE)::int - EXTRACT(YEAR FROM dob)::int BETWEEN $1 AND $2`,
		limit, offset, minAge, maxAge)
}
