package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error)
	// ListByDoctor and ListByPatient filter on status when it is non-empty.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	ListByLocation(ctx context.Context, location string, limit, offset int) ([]*Appointment, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error)
	ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]*Appointment, int, error)
	ListUpcoming(ctx context.Context, after time.Time, limit, offset int) ([]*Appointment, int, error)
	ListDoctorBetween(ctx context.Context, doctorID uuid.UUID, start, end time.Time, limit, offset int) ([]*Appointment, int, error)
	// CountDoctorConflicts counts the doctor's non-cancelled appointments
	// strictly inside (start, end).
	CountDoctorConflicts(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (int, error)
	// LockDoctor serialises bookings for one doctor until the surrounding
	// transaction ends.
	LockDoctor(ctx context.Context, doctorID uuid.UUID) error
}
