package patient

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// FindByName matches first and last name exactly.
	FindByName(ctx context.Context, firstName, lastName string) ([]*Patient, error)
	ListByLastName(ctx context.Context, lastName string, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, keyword string, limit, offset int) ([]*Patient, int, error)
	ListByAgeRange(ctx context.Context, minAge, maxAge, limit, offset int) ([]*Patient, int, error)
}
