package progressreport

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProgressReportRepository interface {
	Create(ctx context.Context, r *ProgressReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProgressReport, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*ProgressReport, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ProgressReport, int, error)
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*ProgressReport, int, error)
	ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]*ProgressReport, int, error)
	Search(ctx context.Context, keyword string, limit, offset int) ([]*ProgressReport, int, error)
	// LatestPerPatient returns the newest report of every patient that has one.
	LatestPerPatient(ctx context.Context, limit, offset int) ([]*ProgressReport, int, error)
}
