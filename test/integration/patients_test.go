//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eldercare/eldercare/internal/domain/patient"
)

func TestPatientRepository(t *testing.T) {
	ctx := context.Background()
	schema := createSchema(t, ctx, "patient")

	err := withSchemaConn(ctx, schema, func(ctx context.Context) error {
		repo := patient.NewPatientRepoPG(globalDB.Pool)
		year := time.Now().Year()

		mary := seedPatient(t, ctx, "Mary", "Rose", time.Date(year-82, 3, 1, 0, 0, 0, 0, time.UTC))
		seedPatient(t, ctx, "John", "Rose", time.Date(year-70, 6, 1, 0, 0, 0, 0, time.UTC))
		seedPatient(t, ctx, "Ada", "Byron", time.Date(year-90, 12, 10, 0, 0, 0, 0, time.UTC))

		got, err := repo.GetByID(ctx, mary.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.DOB.Time.Year() != year-82 {
			t.Errorf("unexpected dob %v", got.DOB)
		}

		byName, err := repo.FindByName(ctx, "Mary", "Rose")
		if err != nil || len(byName) != 1 {
			t.Errorf("FindByName: %v %v", byName, err)
		}

		roses, total, err := repo.ListByLastName(ctx, "Rose", 10, 0)
		if err != nil || total != 2 || roses[0].FirstName != "John" {
			t.Errorf("ListByLastName: %v %d %v", roses, total, err)
		}

		hits, total, err := repo.Search(ctx, "byr", 10, 0)
		if err != nil || total != 1 || hits[0].LastName != "Byron" {
			t.Errorf("Search: %v %d %v", hits, total, err)
		}

		aged, total, err := repo.ListByAgeRange(ctx, 80, 90, 10, 0)
		if err != nil || total != 2 {
			t.Errorf("ListByAgeRange(80, 90): %d %v", total, err)
		}
		_ = aged

		mary.Address = ptrStr("12 Elm Street")
		if err := repo.Update(ctx, mary); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got, _ := repo.GetByID(ctx, mary.ID); got.Address == nil || *got.Address != "12 Elm Street" {
			t.Errorf("update not persisted: %+v", got)
		}

		if err := repo.Delete(ctx, mary.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := repo.Delete(ctx, mary.ID); !errors.Is(err, patient.ErrNotFound) {
			t.Errorf("second delete: expected ErrNotFound, got %v", err)
		}
		if ok, _ := repo.Exists(ctx, mary.ID); ok {
			t.Error("expected deleted patient to be gone")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
