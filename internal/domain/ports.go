package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSourceNotFound is returned when a source id does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrRunInProgress is returned when a run is requested while one is active.
	ErrRunInProgress = errors.New("run already in progress")
	// ErrSchedulerStopped is returned by operations on a stopped scheduler.
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

// SourceRepository is the persistence layer the pipeline reads and repairs.
type SourceRepository interface {
	// ListSources returns every source with its distinct, ascending promise
	// ids, in a stable order.
	ListSources(ctx context.Context) ([]Source, error)
	// GetSource returns one source or ErrSourceNotFound.
	GetSource(ctx context.Context, id int64) (*Source, error)
	// ListRepairCandidates returns every source whose URL is non-empty,
	// joined to the text and category of its linked promises.
	ListRepairCandidates(ctx context.Context) ([]RepairCandidate, error)
	// UpdateSource rewrites a source in place, keeping id and links.
	UpdateSource(ctx context.Context, id int64, u SourceUpdate) error
	// CountBelowReliability counts sources scored under threshold.
	CountBelowReliability(ctx context.Context, threshold float64) (int, error)
	// CountByType returns source counts per type, largest first.
	CountByType(ctx context.Context) ([]TypeCount, error)
}

// LinkChecker performs the bounded network check of a single URL.
// It never fails: every outcome is expressed in the returned LinkCheck.
type LinkChecker interface {
	Check(ctx context.Context, url string) LinkCheck
}

// ResultsStore persists the single latest RunResult.
type ResultsStore interface {
	// Load returns (nil, nil) when nothing has been saved yet.
	Load() (*RunResult, error)
	// Save replaces the stored result wholesale.
	Save(r *RunResult) error
}

// Archive report kinds. Run reports are stamped to the second, weekly
// reports to the day.
const (
	ArchiveRunReport    = "link_validation_report"
	ArchiveWeeklyReport = "weekly_link_report"
)

// ReportArchive keeps timestamped plain-text reports for audit.
type ReportArchive interface {
	// Append writes a new report file named after kind and at; it never
	// overwrites an existing file. It returns the path written.
	Append(kind string, at time.Time, text string) (string, error)
}

// RunLock excludes concurrent runs across every process sharing one
// results artifact.
type RunLock interface {
	// TryAcquire returns an error wrapping ErrRunInProgress when another
	// holder has the lock. release must be called once the run is done.
	TryAcquire() (release func(), err error)
}

// RevisionSource reports the revision of the data the reports describe.
type RevisionSource interface {
	Revision() (string, error)
}

// ValidationControl is the narrow surface the web, CLI and MCP layers use.
type ValidationControl interface {
	RunNow(ctx context.Context) (*RunResult, error)
	Status() StatusView
	LatestReport() *RunResult
	ValidateSource(ctx context.Context, id int64) (*SingleCheck, error)
}
