package progressreport

import (
	"time"

	"github.com/google/uuid"
)

type ProgressReport struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	CaregiverID     uuid.UUID `db:"caregiver_id" json:"caregiver_id"`
	Date            time.Time `db:"report_date" json:"date"`
	Summary         string    `db:"summary" json:"summary"`
	Recommendations *string   `db:"recommendations" json:"recommendations,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
