package medication

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Medication maps to the medication table. A NULL end date means the course
// has no planned end.
type Medication struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	MedicalRecordID uuid.UUID   `db:"medical_record_id" json:"medical_record_id"`
	MedicationName  string      `db:"medication_name" json:"medication_name"`
	Dosage          *string     `db:"dosage" json:"dosage,omitempty"`
	Frequency       *string     `db:"frequency" json:"frequency,omitempty"`
	StartDate       pgtype.Date `db:"start_date" json:"start_date"`
	EndDate         pgtype.Date `db:"end_date" json:"end_date"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// ActiveOn reports whether the course is still running on day.
func (m *Medication) ActiveOn(day time.Time) bool {
	return !m.EndDate.Valid || !m.EndDate.Time.Before(day)
}
