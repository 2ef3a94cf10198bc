package prescription

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

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const rxCols = `p.id, p.medical_record_id, p.medication_id, p.doctor_id, p.instructions, p.issued_date, p.created_at`

func (r *prescriptionRepoPG) scanRx(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.MedicalRecordID, &p.MedicationID, &p.DoctorID,
		&p.Instructions, &p.IssuedDate, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts p. An unset issued date falls back to the column default.
func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (id, medical_record_id, medication_id, doctor_id, instructions, issued_date)
		VALUES ($1,$2,$3,$4,$5,COALESCE($6, CURRENT_DATE))
		RETURNING issued_date, created_at`,
		p.ID, p.MedicalRecordID, p.MedicationID, p.DoctorID, p.Instructions, p.IssuedDate,
	).Scan(&p.IssuedDate, &p.CreatedAt)
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.scanRx(r.conn(ctx).QueryRow(ctx, `SELECT `+rxCols+` FROM prescription p WHERE p.id = $1`, id))
}

func (r *prescriptionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// list pages over "FROM prescription p <join> WHERE <where>".
func (r *prescriptionRepoPG) list(ctx context.Context, join, where string, limit, offset int, args ...interface{}) ([]*Prescription, int, error) {
	from := ` FROM prescription p ` + join + ` WHERE ` + where
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rxCols+from+
		` ORDER BY p.issued_date DESC, p.created_at DESC LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scanRx(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *prescriptionRepoPG) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, "", `TRUE`, limit, offset)
}

func (r *prescriptionRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, "", `p.medical_record_id = $1`, limit, offset, recordID)
}

func (r *prescriptionRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, "", `p.doctor_id = $1`, limit, offset, doctorID)
}

func (r *prescriptionRepoPG) ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, "", `p.medication_id = $1`, limit, offset, medicationID)
}

func (r *prescriptionRepoPG) ListActive(ctx context.Context, today time.Time, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `JOIN medication m ON m.id = p.medication_id`,
		`(m.end_date IS NULL OR m.end_date >= $1::date)`, limit, offset, today)
}

func (r *prescriptionRepoPG) ListIssuedBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, "", `p.issued_date BETWEEN $1::date AND $2::date`, limit, offset, from, to)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `JOIN medical_record mr ON mr.id = p.medical_record_id`,
		`mr.patient_id = $1`, limit, offset, patientID)
}
