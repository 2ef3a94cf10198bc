package prescription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound           = errors.New("prescription not found")
	ErrRecordNotFound     = errors.New("medical record not found")
	ErrMedicationNotFound = errors.New("medication not found")
	ErrDoctorNotFound     = errors.New("doctor not found")
)

// ExistenceChecker reports whether a referenced row exists.
type ExistenceChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	rx      PrescriptionRepository
	records ExistenceChecker
	meds    ExistenceChecker
	users   ExistenceChecker
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(rx PrescriptionRepository, records, meds, users ExistenceChecker, logger zerolog.Logger) *Service {
	return &Service{
		rx:      rx,
		records: records,
		meds:    meds,
		users:   users,
		logger:  logger.With().Str("component", "prescription").Logger(),
		now:     time.Now,
	}
}

func (s *Service) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func require(ctx context.Context, c ExistenceChecker, id uuid.UUID, missing error) error {
	ok, err := c.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return missing
	}
	return nil
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.MedicalRecordID == uuid.Nil {
		return fmt.Errorf("medical_record_id is required")
	}
	if p.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	if err := require(ctx, s.records, p.MedicalRecordID, ErrRecordNotFound); err != nil {
		return err
	}
	if err := require(ctx, s.meds, p.MedicationID, ErrMedicationNotFound); err != nil {
		return err
	}
	if p.DoctorID != nil {
		if err := require(ctx, s.users, *p.DoctorID, ErrDoctorNotFound); err != nil {
			return err
		}
	}
	if !p.IssuedDate.Valid {
		p.IssuedDate = pgtype.Date{Time: s.today(), Valid: true}
	}
	if err := s.rx.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info().Str("prescription_id", p.ID.String()).Str("medication_id", p.MedicationID.String()).Msg("prescription issued")
	return nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.rx.GetByID(ctx, id)
}

func (s *Service) DeletePrescription(ctx context.Context, id uuid.UUID) error {
	return s.rx.Delete(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.rx.List(ctx, limit, offset)
}

func (s *Service) ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if err := require(ctx, s.records, recordID, ErrRecordNotFound); err != nil {
		return nil, 0, err
	}
	return s.rx.ListByRecord(ctx, recordID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if err := require(ctx, s.users, doctorID, ErrDoctorNotFound); err != nil {
		return nil, 0, err
	}
	return s.rx.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if err := require(ctx, s.meds, medicationID, ErrMedicationNotFound); err != nil {
		return nil, 0, err
	}
	return s.rx.ListByMedication(ctx, medicationID, limit, offset)
}

func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.rx.ListActive(ctx, s.today(), limit, offset)
}

func (s *Service) ListIssuedBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]*Prescription, int, error) {
	if from.After(to) {
		return nil, 0, fmt.Errorf("start_date must not be after end_date")
	}
	return s.rx.ListIssuedBetween(ctx, from, to, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.rx.ListByPatient(ctx, patientID, limit, offset)
}
