package recorder

import "time"

// QueryEvent is one journaled dashboard invocation.
type QueryEvent struct {
	Timestamp time.Time
	Ticker    string
	StartDate string
	EndDate   string
	Rows      int
	Empty     bool
	Error     string
	Duration  time.Duration
}

// Recorder persists the query journal.
type Recorder interface {
	RecordQuery(evt *QueryEvent) error
	PruneBefore(cutoff time.Time) (int64, error)
	Close() error
}
