package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldercare/eldercare/internal/platform/auth"
)

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrNotADoctor      = errors.New("user is not a doctor")
	ErrPatientNotFound = errors.New("patient not found")
	ErrConflict        = errors.New("doctor already has an appointment in this slot")
	ErrInvalidStatus   = errors.New("invalid status")
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RoleLookup resolves the role of a user account. found is false when the
// account does not exist.
type RoleLookup interface {
	LookupRole(ctx context.Context, id uuid.UUID) (role string, found bool, err error)
}

// PatientChecker reports whether a patient exists.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	appts    AppointmentRepository
	doctors  RoleLookup
	patients PatientChecker
	tx       Transactor
	slot     time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService builds the appointment service. slot is the minimum distance
// between two live appointments of the same doctor.
func NewService(appts AppointmentRepository, doctors RoleLookup, patients PatientChecker, tx Transactor, slot time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		appts:    appts,
		doctors:  doctors,
		patients: patients,
		tx:       tx,
		slot:     slot,
		logger:   logger.With().Str("component", "appointment").Logger(),
		now:      time.Now,
	}
}

func (s *Service) requireDoctor(ctx context.Context, id uuid.UUID) error {
	role, found, err := s.doctors.LookupRole(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrDoctorNotFound
	}
	if role != auth.RoleDoctor {
		return ErrNotADoctor
	}
	return nil
}

func (s *Service) requirePatient(ctx context.Context, id uuid.UUID) error {
	ok, err := s.patients.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPatientNotFound
	}
	return nil
}

// CreateAppointment books a. The conflict check and insert run under a
// per-doctor lock so two concurrent bookings cannot both pass the check.
func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.AppointmentDate.IsZero() {
		return fmt.Errorf("appointment_date is required")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !ValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	if err := s.requireDoctor(ctx, a.DoctorID); err != nil {
		return err
	}
	if err := s.requirePatient(ctx, a.PatientID); err != nil {
		return err
	}
	if a.AppointmentDate.Before(s.now()) {
		return fmt.Errorf("appointment date cannot be in the past")
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.appts.LockDoctor(ctx, a.DoctorID); err != nil {
			return err
		}
		n, err := s.appts.CountDoctorConflicts(ctx, a.DoctorID, a.AppointmentDate.Add(-s.slot), a.AppointmentDate.Add(s.slot))
		if err != nil {
			return fmt.Errorf("check conflicts: %w", err)
		}
		if n > 0 {
			return ErrConflict
		}
		return s.appts.Create(ctx, a)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.logger.Info().Str("doctor_id", a.DoctorID.String()).Time("at", a.AppointmentDate).Msg("booking rejected: slot taken")
		}
		return err
	}
	s.logger.Info().Str("appointment_id", a.ID.String()).Str("doctor_id", a.DoctorID.String()).Msg("appointment booked")
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.appts.Delete(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	status = strings.TrimSpace(status)
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.appts.UpdateStatus(ctx, id, status)
}

func validFilter(status string) error {
	if status != "" && !ValidStatus(status) {
		return ErrInvalidStatus
	}
	return nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	if err := validFilter(status); err != nil {
		return nil, 0, err
	}
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, 0, err
	}
	return s.appts.ListByDoctor(ctx, doctorID, status, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	if err := validFilter(status); err != nil {
		return nil, 0, err
	}
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.appts.ListByPatient(ctx, patientID, status, limit, offset)
}

func (s *Service) ListByLocation(ctx context.Context, location string, limit, offset int) ([]*Appointment, int, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, 0, fmt.Errorf("location is required")
	}
	return s.appts.ListByLocation(ctx, location, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error) {
	if !ValidStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.appts.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) ListBetween(ctx context.Context, start, end time.Time, limit, offset int) ([]*Appointment, int, error) {
	if start.After(end) {
		return nil, 0, fmt.Errorf("start must not be after end")
	}
	return s.appts.ListBetween(ctx, start, end, limit, offset)
}

func (s *Service) ListUpcoming(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListUpcoming(ctx, s.now(), limit, offset)
}

func (s *Service) ListOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, limit, offset int) ([]*Appointment, int, error) {
	if start.After(end) {
		return nil, 0, fmt.Errorf("start must not be after end")
	}
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, 0, err
	}
	return s.appts.ListDoctorBetween(ctx, doctorID, start, end, limit, offset)
}
