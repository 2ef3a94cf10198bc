package medication

import (
	"context"
	"errors"
	"strconv"
	"time"

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

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

func (r *medicationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const medCols = `id, medical_record_id, medication_name, dosage, frequency, start_date, end_date, created_at`

func (r *medicationRepoPG) scanMed(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.MedicalRecordID, &m.MedicationName, &m.Dosage, &m.Frequency,
		&m.StartDate, &m.EndDate, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medication (id, medical_record_id, medication_name, dosage, frequency, start_date, end_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		m.ID, m.MedicalRecordID, m.MedicationName, m.Dosage, m.Frequency, m.StartDate, m.EndDate,
	).Scan(&m.CreatedAt)
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return r.scanMed(r.conn(ctx).QueryRow(ctx, `SELECT `+medCols+` FROM medication WHERE id = $1`, id))
}

func (r *medicationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicationRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM medication WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *medicationRepoPG) list(ctx context.Context, where, orderBy string, limit, offset int, args ...interface{}) ([]*Medication, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medication WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+medCols+` FROM medication WHERE `+where+
		` ORDER BY `+orderBy+` LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := r.scanMed(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

const byCreated = `created_at DESC`

func (r *medicationRepoPG) List(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	return r.list(ctx, `TRUE`, byCreated, limit, offset)
}

func (r *medicationRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	return r.list(ctx, `medical_record_id = $1`, `start_date NULLS LAST, created_at`, limit, offset, recordID)
}

func (r *medicationRepoPG) ListActive(ctx context.Context, today time.Time, limit, offset int) ([]*Medication, int, error) {
	return r.list(ctx, `(end_date IS NULL OR end_date >= $1::date)`, `end_date NULLS LAST, medication_name`,
		limit, offset, today)
}

func (r *medicationRepoPG) SearchByName(ctx context.Context, name string, limit, offset int) ([]*Medication, int, error) {
	return r.list(ctx, `medication_name ILIKE '%' || $1 || '%'`, `medication_name`, limit, offset, name)
}

func (r *medicationRepoPG) ListEndingBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]*Medication, int, error) {
	return r.list(ctx, `end_date BETWEEN $1::date AND $2::date`, `end_date, medication_name`, limit, offset, from, to)
}

func (r *medicationRepoPG) ListByRecordStartBetween(ctx context.Context, recordID uuid.UUID, from, to time.Time, limit, offset int) ([]*Medication, int, error) {
	return r.list(ctx, `medical_record_id = $1 AND start_date BETWEEN $2::date AND $3::date`, `start_date`,
		limit, offset, recordID, from, to)
}
