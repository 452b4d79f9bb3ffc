package domain

import "time"

// Report kinds distinguish what the reporter pointed at.
const (
	ReportKindBlock   = "block"
	ReportKindMessage = "message"
)

// Report is an append-only moderation record, consumed by an out-of-band
// human review workflow. The service writes reports and never reads them.
type Report struct {
	Kind       string    `json:"kind"`
	ReporterID string    `json:"reporter_id"`
	RideID     string    `json:"ride_id,omitempty"`
	SubjectID  string    `json:"subject_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
