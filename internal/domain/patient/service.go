package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound  = errors.New("patient not found")
	ErrDuplicate = errors.New("patient already exists")
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountDirectory resolves the first and second name stored on a user
// account. It returns ErrNotFound when the account is missing or has no
// name on file.
type AccountDirectory interface {
	NamesOf(ctx context.Context, username string) (first, last string, err error)
}

type Service struct {
	patients PatientRepository
	accounts AccountDirectory
	tx       Transactor
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(patients PatientRepository, accounts AccountDirectory, tx Transactor, logger zerolog.Logger) *Service {
	return &Service{
		patients: patients,
		accounts: accounts,
		tx:       tx,
		logger:   logger.With().Str("component", "patient").Logger(),
		now:      time.Now,
	}
}

func (s *Service) validate(p *Patient) error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if !p.DOB.Valid {
		return fmt.Errorf("dob is required")
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if p.DOB.Time.After(today) {
		return fmt.Errorf("dob cannot be in the future")
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := s.validate(p); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.patients.FindByName(ctx, p.FirstName, p.LastName)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if len(existing) > 0 {
			return ErrDuplicate
		}
		return s.patients.Create(ctx, p)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("patient_id", p.ID.String()).Msg("patient created")
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// UpdatePatient replaces every editable field of patient id.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, p *Patient) error {
	p.ID = id
	if err := s.validate(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("patient_id", id.String()).Msg("patient deleted")
	return nil
}

// Me returns the patient whose name matches the caller's account.
func (s *Service) Me(ctx context.Context, username string) (*Patient, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	first, last, err := s.accounts.NamesOf(ctx, username)
	if err != nil {
		return nil, err
	}
	matches, err := s.patients.FindByName(ctx, first, last)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches[0], nil
}

func (s *Service) SearchByLastName(ctx context.Context, lastName string, limit, offset int) ([]Summary, int, error) {
	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		return nil, 0, fmt.Errorf("last_name is required")
	}
	items, total, err := s.patients.ListByLastName(ctx, lastName, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Summary, 0, len(items))
	for _, p := range items {
		out = append(out, p.Summary())
	}
	return out, total, nil
}

func (s *Service) SearchByKeyword(ctx context.Context, keyword string, limit, offset int) ([]SearchResult, int, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, 0, fmt.Errorf("keyword is required")
	}
	items, total, err := s.patients.Search(ctx, keyword, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return searchResults(items), total, nil
}

func (s *Service) SearchByAgeRange(ctx context.Context, minAge, maxAge, limit, offset int) ([]SearchResult, int, error) {
	if minAge < 0 || maxAge < 0 {
		return nil, 0, fmt.Errorf("ages must not be negative")
	}
	if minAge > maxAge {
		return nil, 0, fmt.Errorf("min_age must not exceed max_age")
	}
	items, total, err := s.patients.ListByAgeRange(ctx, minAge, maxAge, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return searchResults(items), total, nil
}

func searchResults(items []*Patient) []SearchResult {
	out := make([]SearchResult, 0, len(items))
	for _, p := range items {
		out = append(out, p.SearchResult())
	}
	return out
}

// Date builds a DOB value from a calendar date.
func Date(year int, month time.Month, day int) pgtype.Date {
	return pgtype.Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}
