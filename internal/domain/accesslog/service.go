package accesslog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldercare/eldercare/internal/platform/middleware"
)

var ErrInvalidFilter = errors.New("invalid filter")

// Service records API access and serves it back to administrators. It
// satisfies middleware.AuditRecorder.
type Service struct {
	repo   AccessLogRepository
	logger zerolog.Logger
}

func NewService(repo AccessLogRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "accesslog").Logger(),
	}
}

func (s *Service) RecordAccess(ctx context.Context, entry middleware.AuditEntry) error {
	if entry.Resource == "" {
		entry.Resource = "unknown"
	}
	if err := s.repo.RecordAccess(ctx, entry); err != nil {
		s.logger.Debug().Err(err).Str("path", entry.Path).Msg("access log insert failed")
		return fmt.Errorf("record access: %w", err)
	}
	return nil
}

func validateFilter(f Filter) error {
	if f.UserID != "" {
		if _, err := uuid.Parse(f.UserID); err != nil {
			return fmt.Errorf("%w: user_id must be a uuid", ErrInvalidFilter)
		}
	}
	if f.PatientID != "" {
		if _, err := uuid.Parse(f.PatientID); err != nil {
			return fmt.Errorf("%w: patient_id must be a uuid", ErrInvalidFilter)
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	if err := validateFilter(f); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, limit, offset)
}
