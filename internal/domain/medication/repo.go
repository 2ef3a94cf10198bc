package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Medication, int, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Medication, int, error)
	// ListActive returns courses whose end date is on or after today, or unset.
	ListActive(ctx context.Context, today time.Time, limit, offset int) ([]*Medication, int, error)
	SearchByName(ctx context.Context, name string, limit, offset int) ([]*Medication, int, error)
	ListEndingBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]*Medication, int, error)
	ListByRecordStartBetween(ctx context.Context, recordID uuid.UUID, from, to time.Time, limit, offset int) ([]*Medication, int, error)
}
