package progressreport

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
	ErrNotFound          = errors.New("progress report not found")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrCaregiverNotFound = errors.New("caregiver not found")
)

// ExistenceChecker reports whether a referenced row exists.
type ExistenceChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	reports  ProgressReportRepository
	patients ExistenceChecker
	users    ExistenceChecker
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(reports ProgressReportRepository, patients, users ExistenceChecker, logger zerolog.Logger) *Service {
	return &Service{
		reports:  reports,
		patients: patients,
		users:    users,
		logger:   logger.With().Str("component", "progressreport").Logger(),
		now:      time.Now,
	}
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

func (s *Service) CreateReport(ctx context.Context, r *ProgressReport) error {
	r.Summary = strings.TrimSpace(r.Summary)
	if r.Summary == "" {
		return fmt.Errorf("summary is required")
	}
	if err := require(ctx, s.patients, r.PatientID, ErrPatientNotFound); err != nil {
		return err
	}
	if err := require(ctx, s.users, r.CaregiverID, ErrCaregiverNotFound); err != nil {
		return err
	}
	if r.Date.IsZero() {
		r.Date = s.now().UTC()
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return err
	}
	s.logger.Info().Str("report_id", r.ID.String()).Str("patient_id", r.PatientID.String()).Msg("progress report filed")
	return nil
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*ProgressReport, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	return s.reports.Delete(ctx, id)
}

func (s *Service) ListReports(ctx context.Context, limit, offset int) ([]*ProgressReport, int, error) {
	return s.reports.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ProgressReport, int, error) {
	if err := require(ctx, s.patients, patientID, ErrPatientNotFound); err != nil {
		return nil, 0, err
	}
	return s.reports.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, limit, offset int) ([]*ProgressReport, int, error) {
	if err := require(ctx, s.users, caregiverID, ErrCaregiverNotFound); err != nil {
		return nil, 0, err
	}
	return s.reports.ListByCaregiver(ctx, caregiverID, limit, offset)
}

func (s *Service) ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]*ProgressReport, int, error) {
	if start.After(end) {
		return nil, 0, fmt.Errorf("start must not be after end")
	}
	return s.reports.ListBetween(ctx, start, end, limit, offset)
}

func (s *Service) Search(ctx context.Context, keyword string, limit, offset int) ([]*ProgressReport, int, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, 0, fmt.Errorf("keyword is required")
	}
	return s.reports.Search(ctx, keyword, limit, offset)
}

func (s *Service) Latest(ctx context.Context, limit, offset int) ([]*ProgressReport, int, error) {
	return s.reports.LatestPerPatient(ctx, limit, offset)
}
