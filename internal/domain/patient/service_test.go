package patient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repository --

type mockPatientRepo struct {
	store map[uuid.UUID]*Patient
	year  int
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{store: make(map[uuid.UUID]*Patient), year: 2026}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.store[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.store[p.ID]; !ok {
		return ErrNotFound
	}
	m.store[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockPatientRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.store[id]
	return ok, nil
}

func (m *mockPatientRepo) filter(keep func(*Patient) bool, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.store {
		if keep(p) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	return m.filter(func(*Patient) bool { return true }, limit, offset)
}

func (m *mockPatientRepo) FindByName(_ context.Context, first, last string) ([]*Patient, error) {
	items, _, err := m.filter(func(p *Patient) bool {
		return p.FirstName == first && p.LastName == last
	}, len(m.store), 0)
	return items, err
}

func (m *mockPatientRepo) ListByLastName(_ context.Context, last string, limit, offset int) ([]*Patient, int, error) {
	return m.filter(func(p *Patient) bool { return p.LastName == last }, limit, offset)
}

func (m *mockPatientRepo) Search(_ context.Context, keyword string, limit, offset int) ([]*Patient, int, error) {
	kw := strings.ToLower(keyword)
	return m.filter(func(p *Patient) bool {
		return strings.Contains(strings.ToLower(p.FirstName), kw) ||
			strings.Contains(strings.ToLower(p.LastName), kw) ||
			(p.PhoneNumber != nil && strings.Contains(*p.PhoneNumber, keyword)) ||
			(p.EmergencyContact != nil && strings.Contains(*p.EmergencyContact, keyword))
	}, limit, offset)
}

func (m *mockPatientRepo) ListByAgeRange(_ context.Context, minAge, maxAge, limit, offset int) ([]*Patient, int, error) {
	return m.filter(func(p *Patient) bool {
		age := p.AgeIn(m.year)
		return age >= minAge && age <= maxAge
	}, limit, offset)
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// accountNames maps usernames to [first, last].
type accountNames map[string][2]string

func (a accountNames) NamesOf(_ context.Context, username string) (string, string, error) {
	n, ok := a[username]
	if !ok {
		return "", "", ErrNotFound
	}
	return n[0], n[1], nil
}

func newTestService() (*Service, *mockPatientRepo) {
	repo := newMockPatientRepo()
	accounts := accountNames{"edna": {"Edna", "Krabappel"}, "ghost": {"Nobody", "Here"}}
	svc := NewService(repo, accounts, passthroughTx{}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func strPtr(s string) *string { return &s }

func validPatient() *Patient {
	return &Patient{
		FirstName:        "Edna",
		LastName:         "Krabappel",
		DOB:              Date(1941, time.March, 2),
		Gender:           strPtr("female"),
		PhoneNumber:      strPtr("555-0142"),
		EmergencyContact: strPtr("Ned Flanders"),
	}
}

// -- Service Tests --

func TestCreatePatient(t *testing.T) {
	svc, repo := newTestService()
	p := validPatient()
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if len(repo.store) != 1 {
		t.Errorf("expected 1 stored patient, got %d", len(repo.store))
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc, _ := newTestService()
	tests := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"missing first name", func(p *Patient) { p.FirstName = "  " }},
		{"missing last name", func(p *Patient) { p.LastName = "" }},
		{"missing dob", func(p *Patient) { p.DOB.Valid = false }},
		{"future dob", func(p *Patient) { p.DOB = Date(2026, time.October, 16) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatient()
			tt.mutate(p)
			if err := svc.CreatePatient(context.Background(), p); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreatePatient_BornToday(t *testing.T) {
	svc, _ := newTestService()
	p := validPatient()
	p.DOB = Date(2026, time.October, 15)
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("a dob of today is allowed: %v", err)
	}
}

func TestCreatePatient_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	svc.CreatePatient(context.Background(), validPatient())
	err := svc.CreatePatient(context.Background(), validPatient())
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err.Error() != "patient already exists" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestUpdatePatient(t *testing.T) {
	svc, _ := newTestService()
	p := validPatient()
	svc.CreatePatient(context.Background(), p)

	upd := validPatient()
	upd.Address = strPtr("742 Evergreen Terrace")
	if err := svc.UpdatePatient(context.Background(), p.ID, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetPatient(context.Background(), p.ID)
	if got.Address == nil || *got.Address != "742 Evergreen Terrace" {
		t.Errorf("address not updated: %v", got.Address)
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.UpdatePatient(context.Background(), uuid.New(), validPatient()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletePatient(t *testing.T) {
	svc, _ := newTestService()
	p := validPatient()
	svc.CreatePatient(context.Background(), p)
	if err := svc.DeletePatient(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeletePatient(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, _ := newTestService()
	p := validPatient()
	svc.CreatePatient(context.Background(), p)

	got, err := svc.Me(context.Background(), "edna")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("expected %s, got %s", p.ID, got.ID)
	}

	if _, err := svc.Me(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unmatched account: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Me(context.Background(), "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown account: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Me(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("anonymous: expected ErrNotFound, got %v", err)
	}
}

func seedPatients(t *testing.T, svc *Service) {
	t.Helper()
	for _, p := range []*Patient{
		{FirstName: "Abe", LastName: "Simpson", DOB: Date(1930, time.May, 25), PhoneNumber: strPtr("555-0001")},
		{FirstName: "Mona", LastName: "Simpson", DOB: Date(1935, time.January, 1), EmergencyContact: strPtr("Homer")},
		{FirstName: "Jasper", LastName: "Beardly", DOB: Date(1950, time.December, 31)},
	} {
		if err := svc.CreatePatient(context.Background(), p); err != nil {
			t.Fatalf("seed %s: %v", p.FirstName, err)
		}
	}
}

func TestSearchByLastName(t *testing.T) {
	svc, _ := newTestService()
	seedPatients(t, svc)

	items, total, err := svc.SearchByLastName(context.Background(), "Simpson", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 results, got %d/%d", len(items), total)
	}
	if items[0].FirstName != "Abe" {
		t.Errorf("expected ordering by first name, got %s", items[0].FirstName)
	}

	if _, _, err := svc.SearchByLastName(context.Background(), " ", 20, 0); err == nil {
		t.Error("expected error for blank last name")
	}
}

func TestSearchByKeyword(t *testing.T) {
	svc, _ := newTestService()
	seedPatients(t, svc)

	tests := []struct {
		keyword string
		want    int
	}{
		{"simp", 2},
		{"JASPER", 1},
		{"555-0001", 1},
		{"Homer", 1},
		{"homer", 0},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			_, total, err := svc.SearchByKeyword(context.Background(), tt.keyword, 20, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != tt.want {
				t.Errorf("expected %d matches, got %d", tt.want, total)
			}
		})
	}
}

func TestSearchByAgeRange(t *testing.T) {
	svc, _ := newTestService()
	seedPatients(t, svc)

	// 2026-1930 = 96, 2026-1935 = 91, 2026-1950 = 76
	items, total, err := svc.SearchByAgeRange(context.Background(), 90, 100, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 patients aged 90-100, got %d", total)
	}
	for _, r := range items {
		if r.LastName != "Simpson" {
			t.Errorf("unexpected match %s %s", r.FirstName, r.LastName)
		}
	}

	if _, _, err := svc.SearchByAgeRange(context.Background(), 80, 70, 20, 0); err == nil {
		t.Error("expected error when min_age exceeds max_age")
	}
	if _, _, err := svc.SearchByAgeRange(context.Background(), -1, 70, 20, 0); err == nil {
		t.Error("expected error for negative age")
	}
}
