package medicalrecord

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MedicalRecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListByPatientAndDoctor(ctx context.Context, patientID, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListByLocation(ctx context.Context, location string, limit, offset int) ([]*MedicalRecord, int, error)
	// Date range lookups are inclusive on both ends.
	ListByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error)
	ListByPatientAndDateRange(ctx context.Context, patientID uuid.UUID, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error)
	ListByDoctorAndDateRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error)
	ListByLocationAndDateRange(ctx context.Context, location string, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error)
	// SearchText matches keyword case-insensitively against diagnosis and
	// treatment plan.
	SearchText(ctx context.Context, keyword string, limit, offset int) ([]*MedicalRecord, int, error)
}
