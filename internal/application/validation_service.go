package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/promisetracker/linkwatch/internal/logging"
)

// RunOptions selects what a single Validation Run does.
type RunOptions struct {
	AutoRepair bool
	Kind       domain.RunKind
}

// ValidationService orchestrates one Validation Run:
// repair -> enumerate -> classify -> check -> aggregate -> report -> persist.
type ValidationService struct {
	repo     domain.SourceRepository
	checker  domain.LinkChecker
	results  domain.ResultsStore
	archive  domain.ReportArchive
	revision domain.RevisionSource

	classifier   domain.PlaceholderClassifier
	replacements []domain.Replacement
	requestDelay time.Duration
	threshold    float64

	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

// ServiceOption customizes a ValidationService.
type ServiceOption func(*ValidationService)

// WithArchive appends every run's text report to a.
func WithArchive(a domain.ReportArchive) ServiceOption {
	return func(s *ValidationService) { s.archive = a }
}

// WithRevision stamps reports with the revision reported by r.
func WithRevision(r domain.RevisionSource) ServiceOption {
	return func(s *ValidationService) { s.revision = r }
}

// WithPlaceholderDomains replaces the placeholder denylist.
func WithPlaceholderDomains(domains []string) ServiceOption {
	return func(s *ValidationService) { s.classifier = domain.NewPlaceholderClassifier(domains) }
}

// WithReplacements replaces the auto-repair table.
func WithReplacements(table []domain.Replacement) ServiceOption {
	return func(s *ValidationService) { s.replacements = table }
}

// WithRequestDelay sets the pause between successive network checks.
func WithRequestDelay(d time.Duration) ServiceOption {
	return func(s *ValidationService) { s.requestDelay = d }
}

// WithReliabilityThreshold sets the comprehensive audit cutoff.
func WithReliabilityThreshold(t float64) ServiceOption {
	return func(s *ValidationService) { s.threshold = t }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ServiceOption {
	return func(s *ValidationService) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ValidationService) { s.now = now }
}

// WithRunIDs overrides run id generation.
func WithRunIDs(newID func() string) ServiceOption {
	return func(s *ValidationService) { s.newID = newID }
}

func NewValidationService(
	repo domain.SourceRepository,
	checker domain.LinkChecker,
	results domain.ResultsStore,
	opts ...ServiceOption,
) *ValidationService {
	def := domain.DefaultConfig()
	s := &ValidationService{
		repo:         repo,
		checker:      checker,
		results:      results,
		classifier:   domain.NewPlaceholderClassifier(nil),
		replacements: domain.DefaultReplacements(),
		requestDelay: def.Validator.RequestDelay,
		threshold:    def.Audit.ReliabilityThreshold,
		logger:       logging.Discard(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one Validation Run and persists its result. It never fails:
// any error aborts the run and is recorded as an all-zero error result.
func (s *ValidationService) Run(ctx context.Context, opts RunOptions) *domain.RunResult {
	kind := opts.Kind
	if kind == "" {
		kind = domain.RunStandard
	}
	runID := s.newID()
	logger := s.logger.With("run_id", runID, "kind", kind)
	logger.Info("starting link validation")

	result, err := s.run(ctx, runID, kind, opts.AutoRepair, logger)
	if err == nil {
		if err = s.results.Save(result); err != nil {
			err = fmt.Errorf("saving results: %w", err)
		}
	}
	if err != nil {
		logger.Error("link validation failed", "err", err)
		result = domain.NewErrorResult(runID, kind, err.Error())
		if saveErr := s.results.Save(result); saveErr != nil {
			logger.Error("saving error result", "err", saveErr)
		}
		return result
	}

	logger.Info("link validation complete",
		"valid", result.Summary.ValidCount,
		"invalid", result.Summary.InvalidCount,
		"placeholder", result.Summary.PlaceholderCount,
		"repaired", result.RepairsCount,
	)
	return result
}

func (s *ValidationService) run(ctx context.Context, runID string, kind domain.RunKind, autoRepair bool, logger *log.Logger) (*domain.RunResult, error) {
	// 1. Auto-repair placeholders
	repairs := 0
	if autoRepair {
		n, err := s.Repair(ctx)
		if err != nil {
			return nil, err
		}
		repairs = n
	}

	// 2. Enumerate
	sources, err := s.repo.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	// 3. Classify and check, one request at a time
	pace := newPacer(s.requestDelay)

	var summary domain.Summary
	outcomes := make([]domain.SourceOutcome, 0, len(sources))
	for _, src := range sources {
		verdict := domain.PlaceholderVerdict()
		if !s.classifier.IsPlaceholder(src.URL) {
			if err := pace.Wait(ctx); err != nil {
				return nil, fmt.Errorf("waiting to check source %d: %w", src.ID, err)
			}
			verdict = domain.VerdictFromCheck(s.checker.Check(ctx, src.URL))
			pace.Done()
		}
		logger.Debug("checked source", "source_id", src.ID, "url", src.URL, "verdict", verdict.Kind, "status_code", verdict.StatusCode)
		summary.Add(verdict)
		outcomes = append(outcomes, domain.SourceOutcome{Source: src, Verdict: verdict})
	}

	// 4. Aggregate
	completed := s.now()
	summary.ValidationDate = &completed

	details := make([]domain.Detail, 0, len(outcomes))
	for _, o := range outcomes {
		details = append(details, domain.DetailsFor(o)...)
	}

	result := &domain.RunResult{
		RunID:        runID,
		Kind:         kind,
		Status:       domain.ResultSuccess,
		RepairsCount: repairs,
		Summary:      summary,
		Details:      details,
	}

	if kind == domain.RunComprehensive {
		audit, err := s.audit(ctx)
		if err != nil {
			return nil, err
		}
		result.Audit = audit
	}

	// 5. Report
	s.archiveReport(ReportInput{
		GeneratedAt: completed,
		Revision:    s.currentRevision(),
		Summary:     summary,
		Outcomes:    outcomes,
		Repairs:     repairs,
		Audit:       result.Audit,
	}, kind, logger)

	return result, nil
}

// Repair rewrites placeholder sources whose linked promises mention a
// known topic. It returns the number of sources repaired.
func (s *ValidationService) Repair(ctx context.Context) (int, error) {
	candidates, err := s.repo.ListRepairCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing repair candidates: %w", err)
	}

	repaired := 0
	for _, c := range candidates {
		if !s.classifier.MatchesDomain(c.Source.URL) {
			continue
		}
		r, ok := domain.MatchReplacement(s.replacements, c.Promises)
		if !ok {
			s.logger.Debug("no replacement for placeholder", "source_id", c.Source.ID)
			continue
		}
		if err := s.repo.UpdateSource(ctx, c.Source.ID, r.Update()); err != nil {
			return repaired, fmt.Errorf("repairing source %d: %w", c.Source.ID, err)
		}
		s.logger.Info("repaired placeholder source",
			"source_id", c.Source.ID, "old_url", c.Source.URL, "new_url", r.URL, "keyword", r.Keyword)
		repaired++
	}
	return repaired, nil
}

func (s *ValidationService) audit(ctx context.Context) (*domain.SourceAudit, error) {
	low, err := s.repo.CountBelowReliability(ctx, s.threshold)
	if err != nil {
		return nil, fmt.Errorf("auditing reliability: %w", err)
	}
	types, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("auditing source types: %w", err)
	}
	return &domain.SourceAudit{
		ReliabilityThreshold: s.threshold,
		LowReliabilityCount:  low,
		SourceTypes:          types,
	}, nil
}

// archiveReport writes the run report, plus the weekly report for a
// comprehensive run. Archive failures are logged; the audit trail never
// fails a run.
func (s *ValidationService) archiveReport(in ReportInput, kind domain.RunKind, logger *log.Logger) {
	if s.archive == nil {
		return
	}
	text := BuildTextReport(in)
	kinds := []string{domain.ArchiveRunReport}
	if kind == domain.RunComprehensive {
		kinds = append(kinds, domain.ArchiveWeeklyReport)
	}
	for _, k := range kinds {
		path, err := s.archive.Append(k, in.GeneratedAt, text)
		if err != nil {
			logger.Warn("archiving report", "kind", k, "err", err)
			continue
		}
		logger.Info("report archived", "path", path)
	}
}

func (s *ValidationService) currentRevision() string {
	if s.revision == nil {
		return ""
	}
	rev, err := s.revision.Revision()
	if err != nil {
		return ""
	}
	return rev
}

// ValidateSource checks one source on demand. It bypasses the run
// machinery: nothing is persisted and no lock is taken.
func (s *ValidationService) ValidateSource(ctx context.Context, id int64) (*domain.SingleCheck, error) {
	src, err := s.repo.GetSource(ctx, id)
	if err != nil {
		return nil, err
	}

	verdict := domain.PlaceholderVerdict()
	if !s.classifier.IsPlaceholder(src.URL) {
		verdict = domain.VerdictFromCheck(s.checker.Check(ctx, src.URL))
	}

	return &domain.SingleCheck{
		SourceID:      src.ID,
		URL:           src.URL,
		IsValid:       verdict.IsValid(),
		IsPlaceholder: verdict.IsPlaceholder(),
		StatusCode:    verdict.StatusCode,
		ErrorMessage:  verdict.ErrorMessage(),
		ValidatedAt:   s.now(),
	}, nil
}

// LatestReport reads the persisted artifact. An absent or unreadable
// artifact yields a no_data result.
func (s *ValidationService) LatestReport() *domain.RunResult {
	r, err := s.results.Load()
	if err != nil {
		s.logger.Warn("reading validation results", "err", err)
		return domain.NoDataResult(fmt.Sprintf("Validation results unreadable: %v", err))
	}
	if r == nil {
		return domain.NoDataResult("No validation results available")
	}
	return r
}

// IsNotFound reports whether err means the requested source does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrSourceNotFound)
}
