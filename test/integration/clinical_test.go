//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/eldercare/eldercare/internal/domain/medicalrecord"
	"github.com/eldercare/eldercare/internal/domain/medication"
	"github.com/eldercare/eldercare/internal/domain/patient"
	"github.com/eldercare/eldercare/internal/domain/prescription"
	"github.com/eldercare/eldercare/internal/platform/auth"
)

func TestMedicalRecordRepository(t *testing.T) {
	ctx := context.Background()
	schema := createSchema(t, ctx, "record")

	err := withSchemaConn(ctx, schema, func(ctx context.Context) error {
		repo := medicalrecord.NewMedicalRecordRepoPG(globalDB.Pool)
		doc := seedUser(t, ctx, "drgrey", auth.RoleDoctor)
		p := seedPatient(t, ctx, "Mary", "Rose", time.Date(1944, 3, 1, 0, 0, 0, 0, time.UTC))

		oct1 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		oct10 := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
		seedRecord(t, ctx, p, doc, oct1, "North Wing", "Hypertension")
		seedRecord(t, ctx, p, doc, oct10, "South Wing", "Influenza")

		byPatient, total, err := repo.ListByPatient(ctx, p.ID, 10, 0)
		if err != nil || total != 2 || len(byPatient) != 2 {
			t.Errorf("ListByPatient: %d %v", total, err)
		}

		_, total, err = repo.ListByDateRange(ctx, oct1, oct1, 10, 0)
		if err != nil || total != 1 {
			t.Errorf("ListByDateRange inclusive single day: %d %v", total, err)
		}

		_, total, err = repo.ListByDoctorAndDateRange(ctx, doc.ID, oct1, oct10, 10, 0)
		if err != nil || total != 2 {
			t.Errorf("ListByDoctorAndDateRange: %d %v", total, err)
		}

		_, total, err = repo.ListByLocationAndDateRange(ctx, "South Wing", oct1, oct10, 10, 0)
		if err != nil || total != 1 {
			t.Errorf("ListByLocationAndDateRange: %d %v", total, err)
		}

		hits, total, err := repo.SearchText(ctx, "influ", 10, 0)
		if err != nil || total != 1 || *hits[0].Diagnosis != "Influenza" {
			t.Errorf("SearchText: %d %v", total, err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMedicationAndPrescriptionRepositories(t *testing.T) {
	ctx := context.Background()
	schema := createSchema(t, ctx, "rx")

	err := withSchemaConn(ctx, schema, func(ctx context.Context) error {
		meds := medication.NewMedicationRepoPG(globalDB.Pool)
		rxs := prescription.NewPrescriptionRepoPG(globalDB.Pool)

		doc := seedUser(t, ctx, "drwho", auth.RoleDoctor)
		p := seedPatient(t, ctx, "Ada", "Byron", time.Date(1936, 12, 10, 0, 0, 0, 0, time.UTC))
		rec := seedRecord(t, ctx, p, doc, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), "North Wing", "Arthritis")

		today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
		ongoing := &medication.Medication{
			MedicalRecordID: rec.ID,
			MedicationName:  "Ibuprofen",
			StartDate:       patient.Date(2026, 10, 1),
		}
		ending := &medication.Medication{
			MedicalRecordID: rec.ID,
			MedicationName:  "Amoxicillin",
			StartDate:       patient.Date(2026, 10, 5),
			EndDate:         patient.Date(2026, 10, 18),
		}
		finished := &medication.Medication{
			MedicalRecordID: rec.ID,
			MedicationName:  "Prednisone",
			StartDate:       patient.Date(2026, 9, 1),
			EndDate:         patient.Date(2026, 9, 14),
		}
		for _, m := range []*medication.Medication{ongoing, ending, finished} {
			if err := meds.Create(ctx, m); err != nil {
				t.Fatalf("create medication %s: %v", m.MedicationName, err)
			}
		}

		_, total, err := meds.ListActive(ctx, today, 10, 0)
		if err != nil || total != 2 {
			t.Errorf("ListActive: %d %v", total, err)
		}
		soon, total, err := meds.ListEndingBetween(ctx, today, today.AddDate(0, 0, 7), 10, 0)
		if err != nil || total != 1 || soon[0].ID != ending.ID {
			t.Errorf("ListEndingBetween: %d %v", total, err)
		}
		_, total, err = meds.SearchByName(ctx, "ibu", 10, 0)
		if err != nil || total != 1 {
			t.Errorf("SearchByName: %d %v", total, err)
		}
		_, total, err = meds.ListByRecordStartBetween(ctx, rec.ID, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), today, 10, 0)
		if err != nil || total != 2 {
			t.Errorf("ListByRecordStartBetween: %d %v", total, err)
		}

		active := &prescription.Prescription{MedicalRecordID: rec.ID, MedicationID: ending.ID, DoctorID: &doc.ID}
		stale := &prescription.Prescription{
			MedicalRecordID: rec.ID, MedicationID: finished.ID, DoctorID: &doc.ID,
			IssuedDate: patient.Date(2026, 9, 1),
		}
		for _, rx := range []*prescription.Prescription{active, stale} {
			if err := rxs.Create(ctx, rx); err != nil {
				t.Fatalf("create prescription: %v", err)
			}
		}
		if !active.IssuedDate.Valid {
			t.Error("expected issued date to default on insert")
		}

		current, total, err := rxs.ListActive(ctx, today, 10, 0)
		if err != nil || total != 1 || current[0].ID != active.ID {
			t.Errorf("prescriptions ListActive: %d %v", total, err)
		}
		_, total, err = rxs.ListByPatient(ctx, p.ID, 10, 0)
		if err != nil || total != 2 {
			t.Errorf("prescriptions ListByPatient: %d %v", total, err)
		}
		_, total, err = rxs.ListIssuedBetween(ctx, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), 10, 0)
		if err != nil || total != 1 {
			t.Errorf("prescriptions ListIssuedBetween: %d %v", total, err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
