package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eldercare/eldercare/internal/config"
	"github.com/eldercare/eldercare/internal/domain/patient"
	"github.com/eldercare/eldercare/internal/domain/user"
)

type stubAccounts map[string]*user.User

func (s stubAccounts) GetByUsername(_ context.Context, username string) (*user.User, error) {
	if username == "broken" {
		return nil, errors.New("connection refused")
	}
	u, ok := s[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func strPtr(s string) *string { return &s }

func TestAccountDirectory_NamesOf(t *testing.T) {
	dir := newAccountDirectory(stubAccounts{
		"mrose":  {Username: "mrose", FirstName: strPtr("Mary"), SecondName: strPtr("Rose")},
		"noname": {Username: "noname"},
		"blank":  {Username: "blank", FirstName: strPtr(""), SecondName: strPtr("Rose")},
	})
	ctx := context.Background()

	first, last, err := dir.NamesOf(ctx, "mrose")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "Mary" || last != "Rose" {
		t.Errorf("got %q %q", first, last)
	}

	for _, name := range []string{"ghost", "noname", "blank"} {
		if _, _, err := dir.NamesOf(ctx, name); !errors.Is(err, patient.ErrNotFound) {
			t.Errorf("%s: expected patient.ErrNotFound, got %v", name, err)
		}
	}

	if _, _, err := dir.NamesOf(ctx, "broken"); err == nil || errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected the repository error to pass through, got %v", err)
	}
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	e.GET("/health", healthHandler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != version {
		t.Errorf("unexpected body %v", body)
	}
}

func TestNewLogger_Level(t *testing.T) {
	l := newLogger(&config.Config{Env: "production", LogLevel: "warn"})
	if l.GetLevel().String() != "warn" {
		t.Errorf("expected warn, got %s", l.GetLevel())
	}
	l = newLogger(&config.Config{Env: "production", LogLevel: "nonsense"})
	if l.GetLevel().String() != "info" {
		t.Errorf("expected fallback to info, got %s", l.GetLevel())
	}
}

func TestMigrateCmd_Subcommands(t *testing.T) {
	cmd := migrateCmd()
	want := map[string]bool{"up": false, "status": false, "down": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing migrate %s", name)
		}
	}
	if cmd.PersistentFlags().Lookup("schema") == nil || cmd.PersistentFlags().Lookup("dir") == nil {
		t.Error("expected --schema and --dir flags")
	}
}
