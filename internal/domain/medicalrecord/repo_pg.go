package medicalrecord

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

type medicalRecordRepoPG struct{ pool *pgxpool.Pool }

func NewMedicalRecordRepoPG(pool *pgxpool.Pool) MedicalRecordRepository {
	return &medicalRecordRepoPG{pool: pool}
}

func (r *medicalRecordRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, patient_id, doctor_id, date_of_visit, location, diagnosis,
	treatment_plan, notes, created_at`

func (r *medicalRecordRepoPG) scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.DoctorID, &m.DateOfVisit, &m.Location,
		&m.Diagnosis, &m.TreatmentPlan, &m.Notes, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicalRecordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_record (id, patient_id, doctor_id, date_of_visit, location,
			diagnosis, treatment_plan, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		m.ID, m.PatientID, m.DoctorID, m.DateOfVisit, m.Location,
		m.Diagnosis, m.TreatmentPlan, m.Notes,
	).Scan(&m.CreatedAt)
}

func (r *medicalRecordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id))
}

func (r *medicalRecordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_record WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicalRecordRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM medical_record WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *medicalRecordRepoPG) list(ctx context.Context, where string, limit, offset int, args ...interface{}) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_record WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+recordCols+` FROM medical_record WHERE `+where+
		` ORDER BY date_of_visit DESC, created_at DESC LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MedicalRecord
	for rows.Next() {
		m, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *medicalRecordRepoPG) List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `TRUE`, limit, offset)
}

func (r *medicalRecordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `patient_id = $1`, limit, offset, patientID)
}

func (r *medicalRecordRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `doctor_id = $1`, limit, offset, doctorID)
}

func (r *medicalRecordRepoPG) ListByPatientAndDoctor(ctx context.Context, patientID, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `patient_id = $1 AND doctor_id = $2`, limit, offset, patientID, doctorID)
}

func (r *medicalRecordRepoPG) ListByLocation(ctx context.Context, location string, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `location = $1`, limit, offset, location)
}

func (r *medicalRecordRepoPG) ListByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `date_of_visit BETWEEN $1::date AND $2::date`, limit, offset, start, end)
}

func (r *medicalRecordRepoPG) ListByPatientAndDateRange(ctx context.Context, patientID uuid.UUID, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `patient_id = $1 AND date_of_visit BETWEEN $2::date AND $3::date`, limit, offset, patientID, start, end)
}

func (r *medicalRecordRepoPG) ListByDoctorAndDateRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `doctor_id = $1 AND date_of_visit BETWEEN $2::date AND $3::date`, limit, offset, doctorID, start, end)
}

func (r *medicalRecordRepoPG) ListByLocationAndDateRange(ctx context.Context, location string, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `location = $1 AND date_of_visit BETWEEN $2::date AND $3::date`, limit, offset, location, start, end)
}

func (r *medicalRecordRepoPG) SearchText(ctx context.Context, keyword string, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `(diagnosis ILIKE '%' || $1 || '%' OR treatment_plan ILIKE '%' || $1 || '%')`,
		limit, offset, keyword)
}
