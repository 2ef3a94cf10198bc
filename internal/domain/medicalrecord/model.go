package medicalrecord

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// MedicalRecord maps to the medical_record table.
type MedicalRecord struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID   `db:"doctor_id" json:"doctor_id"`
	DateOfVisit   pgtype.Date `db:"date_of_visit" json:"date_of_visit"`
	Location      *string     `db:"location" json:"location,omitempty"`
	Diagnosis     *string     `db:"diagnosis" json:"diagnosis,omitempty"`
	TreatmentPlan *string     `db:"treatment_plan" json:"treatment_plan,omitempty"`
	Notes         *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// SearchCriteria selects records for POST /medical-records/search. Only the
// first applicable rule is used; see Service.Search.
type SearchCriteria struct {
	DiagnosisOrTreatment *string     `json:"diagnosis_or_treatment,omitempty"`
	PatientID            *uuid.UUID  `json:"patient_id,omitempty"`
	DoctorID             *uuid.UUID  `json:"doctor_id,omitempty"`
	Location             *string     `json:"location,omitempty"`
	StartDate            pgtype.Date `json:"start_date"`
	EndDate              pgtype.Date `json:"end_date"`
}

func (c *SearchCriteria) hasRange() bool {
	return c.StartDate.Valid && c.EndDate.Valid
}
