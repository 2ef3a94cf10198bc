package patient

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Patient maps to the patient table. Dates travel as "2006-01-02".
type Patient struct {
	ID                    uuid.UUID   `db:"id" json:"id"`
	FirstName             string      `db:"first_name" json:"first_name"`
	LastName              string      `db:"last_name" json:"last_name"`
	DOB                   pgtype.Date `db:"dob" json:"dob"`
	Gender                *string     `db:"gender" json:"gender,omitempty"`
	Address               *string     `db:"address" json:"address,omitempty"`
	PhoneNumber           *string     `db:"phone_number" json:"phone_number,omitempty"`
	EmergencyContact      *string     `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyContactPhone *string     `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	CreatedAt             time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at" json:"updated_at"`
}

// Summary is the short form returned by last-name lookups.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
}

// SearchResult is returned by keyword and age searches.
type SearchResult struct {
	ID          uuid.UUID   `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	DOB         pgtype.Date `json:"dob"`
	Gender      *string     `json:"gender,omitempty"`
	PhoneNumber *string     `json:"phone_number,omitempty"`
}

func (p *Patient) Summary() Summary {
	return Summary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, PhoneNumber: p.PhoneNumber}
}

func (p *Patient) SearchResult() SearchResult {
	return SearchResult{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DOB:         p.DOB,
		Gender:      p.Gender,
		PhoneNumber: p.PhoneNumber,
	}
}

// AgeIn returns the age as the difference of calendar years, the same
// arithmetic the age-range search runs in SQL.
func (p *Patient) AgeIn(year int) int {
	return year - p.DOB.Time.Year()
}
