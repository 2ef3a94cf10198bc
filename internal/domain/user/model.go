package user

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the app_user table.
type User struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Username          string    `db:"username" json:"username"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	Email             string    `db:"email" json:"email"`
	FirstName         *string   `db:"first_name" json:"first_name,omitempty"`
	SecondName        *string   `db:"second_name" json:"second_name,omitempty"`
	PrimaryLocation   *string   `db:"primary_location" json:"primary_location,omitempty"`
	SecondaryLocation *string   `db:"secondary_location" json:"secondary_location,omitempty"`
	PhoneNumber       *string   `db:"phone_number" json:"phone_number,omitempty"`
	Role              string    `db:"role" json:"role"`
	Privileges        string    `db:"privileges" json:"privileges"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type RegisterRequest struct {
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	Email             string  `json:"email"`
	FirstName         *string `json:"first_name"`
	SecondName        *string `json:"second_name"`
	PrimaryLocation   *string `json:"primary_location"`
	SecondaryLocation *string `json:"secondary_location"`
	PhoneNumber       *string `json:"phone_number"`
	Role              string  `json:"role"`
	Privileges        string  `json:"privileges"`
}

type UpdateRequest struct {
	Email             string  `json:"email"`
	PrimaryLocation   *string `json:"primary_location"`
	SecondaryLocation *string `json:"secondary_location"`
	PhoneNumber       *string `json:"phone_number"`
	Role              string  `json:"role"`
	Privileges        string  `json:"privileges"`
}

// Credentials is the body of login and self-service delete.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
