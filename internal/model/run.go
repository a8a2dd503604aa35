package model

import (
	"fmt"
	"time"
)

// Outcome is the observed result of a pipeline run.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// String returns the lower-case outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "pending"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "pending":
		return OutcomePending, nil
	case "success":
		return OutcomeSuccess, nil
	case "failure":
		return OutcomeFailure, nil
	}
	return OutcomePending, fmt.Errorf("unknown outcome %q", s)
}

// Run records one hand-off of a message to the external flash pipeline.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time // zero while pending or when the outcome is not observed
	Command    string    // printable form of the external command
	Message    string
	Outcome    Outcome
	Error      string
}

// Pending reports whether the run has no observed outcome yet.
func (r *Run) Pending() bool {
	return r.Outcome == OutcomePending
}

// Duration returns how long the run took, or 0 if it has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeed marks the run successful at t.
func (r *Run) Succeed(t time.Time) {
	r.Outcome = OutcomeSuccess
	r.FinishedAt = t
	r.Error = ""
}

// Fail marks the run failed at t with err.
func (r *Run) Fail(t time.Time, err error) {
	r.Outcome = OutcomeFailure
	r.FinishedAt = t
	if err != nil {
		r.Error = err.Error()
	}
}

// Status returns "OK", the error text, or the pending marker.
func (r *Run) Status() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return "OK"
	case OutcomeFailure:
		if r.Error != "" {
			return r.Error
		}
		return "failed"
	default:
		return "pending"
	}
}
