package recorder

import "time"

// Outcomes recorded for a dashboard query.
const (
	OutcomeOK       = "ok"
	OutcomeNoData   = "no_data"
	OutcomeWarning  = "warning"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// QueryEvent is one dashboard lookup.
type QueryEvent struct {
	RequestID string
	At        time.Time
	Input     string
	Code      string
	Source    string
	Start     string // yyyymmdd, empty when not selected
	End       string
	Rows      int
	Outcome   string
	Message   string
	Duration  time.Duration
}

// Recorder persists query history.
type Recorder interface {
	RecordQuery(evt *QueryEvent) error
	Recent(limit int) ([]QueryEvent, error)
	Close() error
}
