package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldercare/eldercare/internal/platform/auth"
	"github.com/eldercare/eldercare/internal/platform/telemetry"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrUnknownUsername   = errors.New("username not found")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrAccessDenied      = errors.New("access denied")
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LoginRecorder counts login outcomes.
type LoginRecorder interface {
	RecordLogin(result string)
}

type Service struct {
	users  UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenIssuer
	tx     Transactor
	logins LoginRecorder
	logger zerolog.Logger
}

func NewService(users UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, tx Transactor, logins LoginRecorder, logger zerolog.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		tx:     tx,
		logins: logins,
		logger: logger.With().Str("component", "user").Logger(),
	}
}

func (s *Service) recordLogin(result string) {
	if s.logins != nil {
		s.logins.RecordLogin(result)
	}
}

func validateRoleAndPrivileges(role, privileges string) error {
	if role == "" {
		return fmt.Errorf("role is required")
	}
	if !auth.ValidRole(role) {
		return fmt.Errorf("invalid role: %s", role)
	}
	if privileges == "" {
		return fmt.Errorf("privileges is required")
	}
	if !auth.ValidPrivilege(privileges) {
		return fmt.Errorf("invalid privileges: %s", privileges)
	}
	return nil
}

// Register creates an account. The uniqueness checks and the insert share a
// transaction; the unique constraints catch anything that slips between them.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if err := validateRoleAndPrivileges(req.Role, req.Privileges); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:          req.Username,
		PasswordHash:      hash,
		Email:             req.Email,
		FirstName:         req.FirstName,
		SecondName:        req.SecondName,
		PrimaryLocation:   req.PrimaryLocation,
		SecondaryLocation: req.SecondaryLocation,
		PhoneNumber:       req.PhoneNumber,
		Role:              req.Role,
		Privileges:        req.Privileges,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		taken, err := s.users.UsernameExists(ctx, u.Username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return ErrDuplicateUsername
		}
		taken, err = s.users.EmailExists(ctx, u.Email, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrDuplicateEmail
		}
		return s.users.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds *Credentials) (*LoginResponse, error) {
	u, err := s.users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, ErrNotFound) {
		s.recordLogin(telemetry.LoginUnknownUser)
		return nil, ErrUnknownUsername
	}
	if err != nil {
		s.recordLogin(telemetry.LoginError)
		return nil, err
	}

	ok, err := s.hasher.Verify(u.PasswordHash, creds.Password)
	if err != nil {
		s.recordLogin(telemetry.LoginError)
		return nil, err
	}
	if !ok {
		s.recordLogin(telemetry.LoginInvalidPassword)
		s.logger.Warn().Str("username", u.Username).Msg("failed login")
		return nil, ErrInvalidPassword
	}

	token, exp, err := s.tokens.Issue(auth.Identity{
		UserID:     u.ID.String(),
		Username:   u.Username,
		Role:       u.Role,
		Privileges: u.Privileges,
	})
	if err != nil {
		s.recordLogin(telemetry.LoginError)
		return nil, err
	}

	s.recordLogin(telemetry.LoginSuccess)
	return &LoginResponse{
		Message:   "login successful",
		Role:      strings.ToLower(u.Role),
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if err := validateRoleAndPrivileges(req.Role, req.Privileges); err != nil {
		return nil, err
	}

	var u *User
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		taken, err := s.users.EmailExists(ctx, req.Email, id)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrDuplicateEmail
		}

		u.Email = req.Email
		u.PrimaryLocation = req.PrimaryLocation
		u.SecondaryLocation = req.SecondaryLocation
		u.PhoneNumber = req.PhoneNumber
		u.Role = req.Role
		u.Privileges = req.Privileges
		return s.users.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the account named in creds after checking its
// password.
func (s *Service) DeleteAccount(ctx context.Context, creds *Credentials) error {
	u, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Verify(u.PasswordHash, creds.Password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidPassword
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	s.logger.Info().Str("username", u.Username).Msg("account deleted")
	return nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *Service) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, role, limit, offset)
}

func (s *Service) ListByPrivileges(ctx context.Context, privileges string, limit, offset int) ([]*User, int, error) {
	return s.users.ListByPrivileges(ctx, privileges, limit, offset)
}

func (s *Service) ListByRoleAndPrivileges(ctx context.Context, role, privileges string, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRoleAndPrivileges(ctx, role, privileges, limit, offset)
}

func (s *Service) ListByEmail(ctx context.Context, email string, limit, offset int) ([]*User, int, error) {
	return s.users.ListByEmail(ctx, email, limit, offset)
}

func (s *Service) ListByPrimaryLocation(ctx context.Context, location string, limit, offset int) ([]*User, int, error) {
	return s.users.ListByPrimaryLocation(ctx, location, limit, offset)
}

func (s *Service) ListBySecondaryLocation(ctx context.Context, location string, limit, offset int) ([]*User, int, error) {
	return s.users.ListBySecondaryLocation(ctx, location, limit, offset)
}

func (s *Service) Search(ctx context.Context, term string, limit, offset int) ([]*User, int, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, 0, fmt.Errorf("search term is required")
	}
	return s.users.Search(ctx, term, limit, offset)
}

// ValidateAccess checks the stored privileges of account id against
// required. It returns ErrAccessDenied when the tier is too low.
func (s *Service) ValidateAccess(ctx context.Context, id uuid.UUID, required string) error {
	if required == "" {
		return fmt.Errorf("required_access is required")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.HasPrivilege(u.Privileges, required) {
		return ErrAccessDenied
	}
	return nil
}
