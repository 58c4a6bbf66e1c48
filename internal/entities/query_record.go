package entities

import "time"

const (
	OutcomeAnswered = "answered"
	OutcomeFailed   = "failed"
)

// QueryRecord is an operator-facing record of one answered question
type QueryRecord struct {
	ID       string    `json:"id"`
	AskedAt  time.Time `json:"asked_at"`
	Question string    `json:"question"`
	Intent   Intent    `json:"intent"`
	Outcome  string    `json:"outcome"`
	Error    string    `json:"error,omitempty"` // cause of a failed answer
}
