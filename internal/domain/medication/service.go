package medication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound       = errors.New("medication not found")
	ErrRecordNotFound = errors.New("medical record not found")
)

// RecordChecker reports whether a medical record exists.
type RecordChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	meds       MedicationRepository
	records    RecordChecker
	expiryDays int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService builds the medication service. expiryDays is the default
// look-ahead for ExpiringSoon.
func NewService(meds MedicationRepository, records RecordChecker, expiryDays int, logger zerolog.Logger) *Service {
	return &Service{
		meds:       meds,
		records:    records,
		expiryDays: expiryDays,
		logger:     logger.With().Str("component", "medication").Logger(),
		now:        time.Now,
	}
}

func (s *Service) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) requireRecord(ctx context.Context, id uuid.UUID) error {
	ok, err := s.records.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Service) AddMedication(ctx context.Context, m *Medication) error {
	m.MedicationName = strings.TrimSpace(m.MedicationName)
	if m.MedicalRecordID == uuid.Nil {
		return fmt.Errorf("medical_record_id is required")
	}
	if m.MedicationName == "" {
		return fmt.Errorf("medication_name is required")
	}
	if m.StartDate.Valid && m.EndDate.Valid && m.EndDate.Time.Before(m.StartDate.Time) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	if err := s.requireRecord(ctx, m.MedicalRecordID); err != nil {
		return err
	}
	if err := s.meds.Create(ctx, m); err != nil {
		return err
	}
	s.logger.Info().Str("medication_id", m.ID.String()).Str("record_id", m.MedicalRecordID.String()).Msg("medication added")
	return nil
}

func (s *Service) ListMedications(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	return s.meds.List(ctx, limit, offset)
}

func (s *Service) ListByRecord(ctx context.Context, recordID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	if err := s.requireRecord(ctx, recordID); err != nil {
		return nil, 0, err
	}
	return s.meds.ListByRecord(ctx, recordID, limit, offset)
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return s.meds.Delete(ctx, id)
}

func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	return s.meds.ListActive(ctx, s.today(), limit, offset)
}

func (s *Service) SearchByName(ctx context.Context, name string, limit, offset int) ([]*Medication, int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, 0, fmt.Errorf("name is required")
	}
	return s.meds.SearchByName(ctx, name, limit, offset)
}

// ExpiringSoon lists courses ending between today and today+days inclusive.
// days <= 0 selects the configured window.
func (s *Service) ExpiringSoon(ctx context.Context, days, limit, offset int) ([]*Medication, int, error) {
	if days <= 0 {
		days = s.expiryDays
	}
	from := s.today()
	return s.meds.ListEndingBetween(ctx, from, from.AddDate(0, 0, days), limit, offset)
}

func (s *Service) ListByRecordStartRange(ctx context.Context, recordID uuid.UUID, from, to time.Time, limit, offset int) ([]*Medication, int, error) {
	if from.After(to) {
		return nil, 0, fmt.Errorf("start_date must not be after end_date")
	}
	if err := s.requireRecord(ctx, recordID); err != nil {
		return nil, 0, err
	}
	return s.meds.ListByRecordStartBetween(ctx, recordID, from, to, limit, offset)
}
