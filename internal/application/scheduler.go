package application

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/promisetracker/linkwatch/internal/logging"
)

// Runner is the part of ValidationService the Scheduler drives.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) *domain.RunResult
	ValidateSource(ctx context.Context, id int64) (*domain.SingleCheck, error)
	LatestReport() *domain.RunResult
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Triggers     []Trigger
	PollInterval time.Duration
	Freshness    domain.Freshness
	AutoRepair   bool
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the scheduler's logger.
func WithSchedulerLogger(l *log.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithSchedulerClock overrides time.Now for trigger and status decisions.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithRunLock adds a lock shared with other processes. Every run takes it
// after the in-process lock.
func WithRunLock(l domain.RunLock) SchedulerOption {
	return func(s *Scheduler) { s.lock = l }
}

// Scheduler owns recurring validation. At most one run is in flight at any
// time, whether started by a trigger or by RunNow.
type Scheduler struct {
	runner Runner
	cfg    SchedulerConfig
	logger *log.Logger
	now    func() time.Time
	lock   domain.RunLock

	runMu sync.Mutex // held for the duration of a run

	mu          sync.Mutex
	lastSuccess *time.Time
	lastSummary *domain.Summary
	running     bool
	stopped     bool
	cancel      context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

var _ domain.ValidationControl = (*Scheduler)(nil)

func NewScheduler(runner Runner, cfg SchedulerConfig, opts ...SchedulerOption) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.Freshness == (domain.Freshness{}) {
		cfg.Freshness = domain.DefaultFreshness()
	}
	s := &Scheduler{
		runner: runner,
		cfg:    cfg,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background loop: one immediate run, then polling for
// due triggers every PollInterval. It returns without waiting. Calling
// Start more than once has no effect.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		ctx, s.cancel = context.WithCancel(ctx)
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loop(ctx)
		}()
	})
}

// Stop halts the polling loop and waits for an in-flight scheduled run to
// finish. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		cancel := s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
		s.logger.Info("scheduler stopped")
	})
}

func (s *Scheduler) loop(ctx context.Context) {
	// Runs are never interrupted by Stop, only future triggers are.
	runCtx := context.WithoutCancel(ctx)

	s.fire(runCtx, domain.RunStandard, "startup")

	due := make([]time.Time, len(s.cfg.Triggers))
	now := s.now()
	for i, t := range s.cfg.Triggers {
		due[i] = t.Next(now)
		s.logger.Info("trigger scheduled", "trigger", t.Name, "next", due[i])
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			kind, fired := s.collectDue(due, now)
			if fired == "" {
				continue
			}
			s.fire(runCtx, kind, fired)
		}
	}
}

// collectDue advances every trigger that is due and returns the kind of the
// single run to start. Coinciding triggers collapse into one run; a
// comprehensive trigger wins over a standard one.
func (s *Scheduler) collectDue(due []time.Time, now time.Time) (domain.RunKind, string) {
	kind := domain.RunStandard
	fired := ""
	for i, t := range s.cfg.Triggers {
		if now.Before(due[i]) {
			continue
		}
		due[i] = t.Next(now)
		if t.Kind == domain.RunComprehensive {
			kind = domain.RunComprehensive
		}
		if fired == "" {
			fired = t.Name
		} else {
			fired += ", " + t.Name
		}
	}
	return kind, fired
}

func (s *Scheduler) fire(ctx context.Context, kind domain.RunKind, trigger string) {
	if _, err := s.tryRun(ctx, RunOptions{AutoRepair: s.cfg.AutoRepair, Kind: kind}); err != nil {
		s.logger.Warn("skipping scheduled run", "trigger", trigger, "err", err)
	}
}

func (s *Scheduler) tryRun(ctx context.Context, opts RunOptions) (*domain.RunResult, error) {
	if !s.runMu.TryLock() {
		return nil, domain.ErrRunInProgress
	}
	defer s.runMu.Unlock()

	if s.lock != nil {
		release, err := s.lock.TryAcquire()
		if err != nil {
			return nil, err
		}
		defer release()
	}

	s.setRunning(true)
	defer s.setRunning(false)

	result := s.runner.Run(ctx, opts)
	s.record(result)
	return result, nil
}

func (s *Scheduler) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

func (s *Scheduler) record(r *domain.RunResult) {
	if !r.Succeeded() || r.Summary.ValidationDate == nil {
		return
	}
	at := *r.Summary.ValidationDate
	summary := r.Summary

	s.mu.Lock()
	s.lastSuccess = &at
	s.lastSummary = &summary
	s.mu.Unlock()
}

// RunNow performs a standard run synchronously. It fails with
// ErrRunInProgress while another run is active and with
// ErrSchedulerStopped after Stop.
func (s *Scheduler) RunNow(ctx context.Context) (*domain.RunResult, error) {
	return s.Trigger(ctx, RunOptions{AutoRepair: s.cfg.AutoRepair, Kind: domain.RunStandard})
}

// Trigger performs one run with explicit options under the same locks as
// scheduled runs.
func (s *Scheduler) Trigger(ctx context.Context, opts RunOptions) (*domain.RunResult, error) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil, domain.ErrSchedulerStopped
	}
	return s.tryRun(context.WithoutCancel(ctx), opts)
}

// Status classifies the freshness of the last successful run. Before the
// first run in this process it falls back to the persisted artifact.
func (s *Scheduler) Status() domain.StatusView {
	s.mu.Lock()
	last, summary, running := s.lastSuccess, s.lastSummary, s.running
	s.mu.Unlock()

	if last == nil {
		if r := s.runner.LatestReport(); r.Succeeded() && r.Summary.ValidationDate != nil {
			at := *r.Summary.ValidationDate
			sum := r.Summary
			last, summary = &at, &sum
		}
	}

	status, msg := s.cfg.Freshness.Classify(s.now(), last)
	return domain.StatusView{
		Status:  status,
		Message: msg,
		LastRun: last,
		Running: running,
		Summary: summary,
	}
}

// LatestReport returns the persisted artifact or a no_data result.
func (s *Scheduler) LatestReport() *domain.RunResult {
	return s.runner.LatestReport()
}

// ValidateSource checks one source without taking the run lock.
func (s *Scheduler) ValidateSource(ctx context.Context, id int64) (*domain.SingleCheck, error) {
	return s.runner.ValidateSource(ctx, id)
}
