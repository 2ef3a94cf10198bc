package accesslog

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one persisted API access.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	UserID     *string   `json:"user_id"`
	Username   *string   `json:"username"`
	Role       *string   `json:"role"`
	Resource   string    `json:"resource"`
	PatientID  *string   `json:"patient_id"`
	Action     string    `json:"action"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	RemoteIP   *string   `json:"remote_ip"`
	UserAgent  *string   `json:"user_agent"`
	RequestID  *string   `json:"request_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	UserID    string
	PatientID string
	Resource  string
}
