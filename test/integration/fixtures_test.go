//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/eldercare/eldercare/internal/domain/medicalrecord"
	"github.com/eldercare/eldercare/internal/domain/patient"
	"github.com/eldercare/eldercare/internal/domain/user"
	"github.com/eldercare/eldercare/internal/platform/auth"
)

func seedUser(t *testing.T, ctx context.Context, username, role string) *user.User {
	t.Helper()
	u := &user.User{
		Username:     username,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuuJ0H6C5J3YQX8n2bM2y8b7kX6b2nq1yK",
		Email:        username + "@example.org",
		FirstName:    ptrStr("Test"),
		SecondName:   ptrStr(username),
		Role:         role,
		Privileges:   auth.PrivilegeEditor,
	}
	if err := user.NewUserRepoPG(globalDB.Pool).Create(ctx, u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedPatient(t *testing.T, ctx context.Context, first, last string, dob time.Time) *patient.Patient {
	t.Helper()
	p := &patient.Patient{
		FirstName:   first,
		LastName:    last,
		DOB:         patient.Date(dob.Year(), dob.Month(), dob.Day()),
		PhoneNumber: ptrStr("555-0100"),
	}
	if err := patient.NewPatientRepoPG(globalDB.Pool).Create(ctx, p); err != nil {
		t.Fatalf("seed patient %s %s: %v", first, last, err)
	}
	return p
}

func seedRecord(t *testing.T, ctx context.Context, p *patient.Patient, doctor *user.User, visit time.Time, location, diagnosis string) *medicalrecord.MedicalRecord {
	t.Helper()
	r := &medicalrecord.MedicalRecord{
		PatientID:   p.ID,
		DoctorID:    doctor.ID,
		DateOfVisit: patient.Date(visit.Year(), visit.Month(), visit.Day()),
		Location:    ptrStr(location),
		Diagnosis:   ptrStr(diagnosis),
	}
	if err := medicalrecord.NewMedicalRecordRepoPG(globalDB.Pool).Create(ctx, r); err != nil {
		t.Fatalf("seed medical record: %v", err)
	}
	return r
}
