package user

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// EmailExists reports whether email belongs to any account other than
	// exclude. Pass uuid.Nil to check against every account.
	EmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	// Finders
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
	ListByPrivileges(ctx context.Context, privileges string, limit, offset int) ([]*User, int, error)
	ListByRoleAndPrivileges(ctx context.Context, role, privileges string, limit, offset int) ([]*User, int, error)
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]*User, int, error)
	ListByPrimaryLocation(ctx context.Context, location string, limit, offset int) ([]*User, int, error)
	ListBySecondaryLocation(ctx context.Context, location string, limit, offset int) ([]*User, int, error)
	Search(ctx context.Context, term string, limit, offset int) ([]*User, int, error)
	// LookupRole returns the role of the account with id; found is false
	// when there is no such account.
	LookupRole(ctx context.Context, id uuid.UUID) (role string, found bool, err error)
}
