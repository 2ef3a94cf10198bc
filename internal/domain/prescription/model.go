package prescription

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Prescription struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	MedicalRecordID uuid.UUID   `db:"medical_record_id" json:"medical_record_id"`
	MedicationID    uuid.UUID   `db:"medication_id" json:"medication_id"`
	DoctorID        *uuid.UUID  `db:"doctor_id" json:"doctor_id,omitempty"`
	Instructions    *string     `db:"instructions" json:"instructions,omitempty"`
	IssuedDate      pgtype.Date `db:"issued_date" json:"issued_date"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}
