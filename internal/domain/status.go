package domain

import (
	"fmt"
	"time"
)

// Freshness of the last successful run.
const (
	StatusNeverRun = "never_run"
	StatusCurrent  = "current"
	StatusWarning  = "warning"
	StatusStale    = "stale"
)

// Default freshness thresholds.
const (
	DefaultWarningAfter = 6 * time.Hour
	DefaultStaleAfter   = 12 * time.Hour
)

// StatusView is what the web and CLI layers see of the scheduler.
type StatusView struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	LastRun *time.Time `json:"last_run"`
	Running bool       `json:"running"`
	Summary *Summary   `json:"summary"`
}

// Freshness classifies the age of the last successful run. Thresholds are
// plain wall-clock durations: a run exactly warningAfter old is still
// current, one exactly staleAfter old is still a warning.
type Freshness struct {
	WarningAfter time.Duration
	StaleAfter   time.Duration
}

// DefaultFreshness returns the 6h/12h thresholds.
func DefaultFreshness() Freshness {
	return Freshness{WarningAfter: DefaultWarningAfter, StaleAfter: DefaultStaleAfter}
}

// Classify returns the status and a human-readable message.
func (f Freshness) Classify(now time.Time, lastRun *time.Time) (string, string) {
	if lastRun == nil {
		return StatusNeverRun, "Validation has never been run"
	}
	since := now.Sub(*lastRun)
	switch {
	case since > f.StaleAfter:
		return StatusStale, fmt.Sprintf("Last validation was %d days ago", int(since.Hours()/24))
	case since > f.WarningAfter:
		return StatusWarning, fmt.Sprintf("Last validation was %d hours ago", int(since.Hours()))
	default:
		return StatusCurrent, fmt.Sprintf("Last validation was %d minutes ago", int(since.Minutes()))
	}
}
