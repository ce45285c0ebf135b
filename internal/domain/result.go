package domain

import "time"

// ResultStatus is the verification status of a stored result.
type ResultStatus string

const (
	ResultPending  ResultStatus = "pending"
	ResultVerified ResultStatus = "verified"
	ResultInvalid  ResultStatus = "invalid"
)

// TimingClass distinguishes fully-automatic from hand timing.
type TimingClass string

const (
	TimingFAT  TimingClass = "FAT"
	TimingHand TimingClass = "hand"
)

// Result is a canonical, ranked performance record.
// MarkSecondsAdj is always derived from the other fields and never
// hand-edited.
type Result struct {
	ID             int64        `db:"id" json:"id"`
	AthleteID      string       `db:"athlete_id" json:"athlete_id"`
	Event          string       `db:"event" json:"event"`
	MarkText       string       `db:"mark" json:"mark"`
	MarkSeconds    *float64     `db:"mark_seconds" json:"mark_seconds,omitempty"`
	MarkSecondsAdj *float64     `db:"mark_seconds_adj" json:"mark_seconds_adj,omitempty"`
	MarkMetric     *float64     `db:"mark_metric" json:"mark_metric,omitempty"`
	Timing         *TimingClass `db:"timing" json:"timing,omitempty"`
	Wind           *float64     `db:"wind" json:"wind,omitempty"`
	Season         string       `db:"season" json:"season"`
	MeetName       *string      `db:"meet_name" json:"meet_name,omitempty"`
	MeetDate       *time.Time   `db:"meet_date" json:"meet_date,omitempty"`
	ProofURL       string       `db:"proof_url" json:"proof_url"`
	Status         ResultStatus `db:"status" json:"status"`
	Source         Provider     `db:"source" json:"source"`
	Confidence     float64      `db:"confidence" json:"confidence"`
	Grade          *int         `db:"grade" json:"grade,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
