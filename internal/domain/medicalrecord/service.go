package medicalrecord

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
	ErrNotFound        = errors.New("medical record not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
)

// ExistenceChecker reports whether a row with the given id exists. The
// patient and user repositories satisfy it.
type ExistenceChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	records  MedicalRecordRepository
	patients ExistenceChecker
	users    ExistenceChecker
	logger   zerolog.Logger
}

func NewService(records MedicalRecordRepository, patients, users ExistenceChecker, logger zerolog.Logger) *Service {
	return &Service{
		records:  records,
		patients: patients,
		users:    users,
		logger:   logger.With().Str("component", "medicalrecord").Logger(),
	}
}

func mustExist(ctx context.Context, c ExistenceChecker, id uuid.UUID, missing error) error {
	ok, err := c.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return missing
	}
	return nil
}

// ValidateRange rejects a range whose start is after its end.
func ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("start_date must not be after end_date")
	}
	return nil
}

func (s *Service) AddRecord(ctx context.Context, m *MedicalRecord) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if m.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if !m.DateOfVisit.Valid {
		return fmt.Errorf("date_of_visit is required")
	}
	if err := mustExist(ctx, s.patients, m.PatientID, ErrPatientNotFound); err != nil {
		return err
	}
	if err := mustExist(ctx, s.users, m.DoctorID, ErrDoctorNotFound); err != nil {
		return err
	}
	if err := s.records.Create(ctx, m); err != nil {
		return err
	}
	s.logger.Info().Str("record_id", m.ID.String()).Str("patient_id", m.PatientID.String()).Msg("medical record added")
	return nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByPatientAndDoctor(ctx context.Context, patientID, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.records.ListByPatientAndDoctor(ctx, patientID, doctorID, limit, offset)
}

func (s *Service) ListByLocation(ctx context.Context, location string, limit, offset int) ([]*MedicalRecord, int, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, 0, fmt.Errorf("location is required")
	}
	return s.records.ListByLocation(ctx, location, limit, offset)
}

func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*MedicalRecord, int, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, 0, err
	}
	return s.records.ListByDateRange(ctx, start, end, limit, offset)
}

// Search applies the first rule that the criteria satisfy:
//  1. diagnosis_or_treatment keyword
//  2. patient_id with start and end date
//  3. doctor_id with start and end date
//  4. location with start and end date
//  5. everything
func (s *Service) Search(ctx context.Context, c *SearchCriteria, limit, offset int) ([]*MedicalRecord, int, error) {
	if c.hasRange() {
		if err := ValidateRange(c.StartDate.Time, c.EndDate.Time); err != nil {
			return nil, 0, err
		}
	}
	start, end := c.StartDate.Time, c.EndDate.Time

	switch {
	case c.DiagnosisOrTreatment != nil && strings.TrimSpace(*c.DiagnosisOrTreatment) != "":
		return s.records.SearchText(ctx, strings.TrimSpace(*c.DiagnosisOrTreatment), limit, offset)
	case c.PatientID != nil && c.hasRange():
		return s.records.ListByPatientAndDateRange(ctx, *c.PatientID, start, end, limit, offset)
	case c.DoctorID != nil && c.hasRange():
		return s.records.ListByDoctorAndDateRange(ctx, *c.DoctorID, start, end, limit, offset)
	case c.Location != nil && c.hasRange():
		return s.records.ListByLocationAndDateRange(ctx, *c.Location, start, end, limit, offset)
	default:
		return s.records.List(ctx, limit, offset)
	}
}
