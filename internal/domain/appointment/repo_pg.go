package appointment

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

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, appointment_date, location, status, created_at`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Location, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, appointment_date, location, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.Location, a.Status,
	).Scan(&a.CreatedAt)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx,
		`UPDATE appointment SET status = $2 WHERE id = $1 RETURNING `+apptCols, id, status))
}

func (r *appointmentRepoPG) list(ctx context.Context, where, orderBy string, limit, offset int, args ...interface{}) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE `+where+
		` ORDER BY `+orderBy+` LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

const byDate = `appointment_date`

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	if status != "" {
		return r.list(ctx, `doctor_id = $1 AND status = $2`, byDate, limit, offset, doctorID, status)
	}
	return r.list(ctx, `doctor_id = $1`, byDate, limit, offset, doctorID)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	if status != "" {
		return r.list(ctx, `patient_id = $1 AND status = $2`, byDate, limit, offset, patientID, status)
	}
	return r.list(ctx, `patient_id = $1`, byDate, limit, offset, patientID)
}

func (r *appointmentRepoPG) ListByLocation(ctx context.Context, location string, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `location = $1`, byDate, limit, offset, location)
}

func (r *appointmentRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `status = $1`, byDate, limit, offset, status)
}

func (r *appointmentRepoPG) ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `appointment_date BETWEEN $1 AND $2`, byDate, limit, offset, start, end)
}

func (r *appointmentRepoPG) ListUpcoming(ctx context.Context, after time.Time, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `appointment_date > $1 AND status = $2`, byDate, limit, offset, after, StatusScheduled)
}

func (r *appointmentRepoPG) ListDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id = $1 AND appointment_date BETWEEN $2 AND $3`, byDate, limit, offset, doctorID, start, end)
}

func (r *appointmentRepoPG) CountDoctorConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE doctor_id = $1 AND status <> $2
		  AND appointment_date > $3 AND appointment_date < $4`,
		doctorID, StatusCancelled, start, end,
	).Scan(&n)
	return n, err
}

func (r *appointmentRepoPG) LockDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, doctorID.String())
	return err
}
