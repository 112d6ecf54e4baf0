package domain

import "time"

// Result statuses written to the results artifact. NoData and the read
// error shape are produced by readers only, never persisted.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoData  = "no_data"
)

// RunKind distinguishes a standard pass from the weekly comprehensive one.
type RunKind string

const (
	RunStandard      RunKind = "standard"
	RunComprehensive RunKind = "comprehensive"
)

// Summary holds the aggregate counts of one run.
// ValidCount + InvalidCount + PlaceholderCount == TotalCount always.
type Summary struct {
	ValidCount       int        `json:"valid_count"`
	InvalidCount     int        `json:"invalid_count"`
	PlaceholderCount int        `json:"placeholder_count"`
	TotalCount       int        `json:"total_count"`
	ValidationDate   *time.Time `json:"validation_date"`
}

// Add tallies one verdict.
func (s *Summary) Add(v Verdict) {
	switch v.Kind {
	case VerdictValid:
		s.ValidCount++
	case VerdictPlaceholder:
		s.PlaceholderCount++
	default:
		s.InvalidCount++
	}
	s.TotalCount++
}

// SuccessRate is valid/total*100, or 0 for an empty run.
func (s Summary) SuccessRate() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.ValidCount) / float64(s.TotalCount) * 100
}

// Detail is one row per (source, promise) link. Sources without any
// promise link produce a single row with PromiseID 0.
type Detail struct {
	SourceID      int64   `json:"source_id"`
	PromiseID     int64   `json:"promise_id"`
	SourceTitle   string  `json:"source_title"`
	URL           string  `json:"url"`
	IsValid       bool    `json:"is_valid"`
	IsPlaceholder bool    `json:"is_placeholder"`
	StatusCode    int     `json:"status_code"`
	ErrorMessage  *string `json:"error_message"`
}

// SourceOutcome is the per-source verdict kept in memory during a run and
// used to build both the details and the text report.
type SourceOutcome struct {
	Source  Source
	Verdict Verdict
}

// DetailsFor expands one outcome into its per-link rows.
func DetailsFor(o SourceOutcome) []Detail {
	row := Detail{
		SourceID:      o.Source.ID,
		SourceTitle:   o.Source.Title,
		URL:           o.Source.URL,
		IsValid:       o.Verdict.IsValid(),
		IsPlaceholder: o.Verdict.IsPlaceholder(),
		StatusCode:    o.Verdict.StatusCode,
		ErrorMessage:  o.Verdict.ErrorMessage(),
	}
	if len(o.Source.PromiseIDs) == 0 {
		return []Detail{row}
	}
	rows := make([]Detail, 0, len(o.Source.PromiseIDs))
	for _, pid := range o.Source.PromiseIDs {
		r := row
		r.PromiseID = pid
		rows = append(rows, r)
	}
	return rows
}

// SourceAudit is the supplementary output of a comprehensive run.
type SourceAudit struct {
	ReliabilityThreshold float64     `json:"reliability_threshold"`
	LowReliabilityCount  int         `json:"low_reliability_count"`
	SourceTypes          []TypeCount `json:"source_types"`
}

// RunResult is the persisted artifact of one Validation Run.
type RunResult struct {
	RunID        string       `json:"run_id,omitempty"`
	Kind         RunKind      `json:"kind,omitempty"`
	Status       string       `json:"status"`
	Message      string       `json:"message,omitempty"`
	RepairsCount int          `json:"repairs_count"`
	Summary      Summary      `json:"summary"`
	Details      []Detail     `json:"details"`
	Audit        *SourceAudit `json:"audit,omitempty"`
}

// Succeeded reports whether the result came from a completed run.
func (r *RunResult) Succeeded() bool {
	return r != nil && r.Status == ResultSuccess
}

// NewErrorResult builds the all-zero result recorded when a run aborts.
func NewErrorResult(runID string, kind RunKind, msg string) *RunResult {
	return &RunResult{
		RunID:   runID,
		Kind:    kind,
		Status:  ResultError,
		Message: msg,
		Details: []Detail{},
	}
}

// NoDataResult is what readers return when no artifact is available.
func NoDataResult(msg string) *RunResult {
	return &RunResult{
		Status:  ResultNoData,
		Message: msg,
		Details: []Detail{},
	}
}

// SingleCheck is the outcome of an ad hoc check of one source.
type SingleCheck struct {
	SourceID      int64     `json:"source_id"`
	URL           string    `json:"url"`
	IsValid       bool      `json:"is_valid"`
	IsPlaceholder bool      `json:"is_placeholder"`
	StatusCode    int       `json:"status_code"`
	ErrorMessage  *string   `json:"error_message"`
	ValidatedAt   time.Time `json:"validated_at"`
}
