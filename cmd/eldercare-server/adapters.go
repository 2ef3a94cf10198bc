package main

import (
	"context"
	"errors"

	"github.com/eldercare/eldercare/internal/domain/patient"
	"github.com/eldercare/eldercare/internal/domain/user"
)

// accountLookup is the part of the user repository the patient directory
// needs.
type accountLookup interface {
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// accountDirectory adapts the user repository to patient.AccountDirectory,
// keeping the patient and user packages independent of each other.
type accountDirectory struct {
	users accountLookup
}

func newAccountDirectory(users accountLookup) *accountDirectory {
	return &accountDirectory{users: users}
}

// NamesOf implements patient.AccountDirectory.
func (d *accountDirectory) NamesOf(ctx context.Context, username string) (string, string, error) {
	u, err := d.users.GetByUsername(ctx, username)
	if errors.Is(err, user.ErrNotFound) {
		return "", "", patient.ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	if u.FirstName == nil || u.SecondName == nil || *u.FirstName == "" || *u.SecondName == "" {
		return "", "", patient.ErrNotFound
	}
	return *u.FirstName, *u.SecondName, nil
}
