package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Prescription, int, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	// ListActive returns prescriptions whose medication has not ended by today.
	ListActive(ctx context.Context, today time.Time, limit, offset int) ([]*Prescription, int, error)
	ListIssuedBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]*Prescription, int, error)
	// ListByPatient follows the prescription's medical record to its patient.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
}
