package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/promisetracker/linkwatch/internal/adapters/outbound/config"
	"github.com/promisetracker/linkwatch/internal/adapters/outbound/gitinfo"
	"github.com/promisetracker/linkwatch/internal/adapters/outbound/history"
	"github.com/promisetracker/linkwatch/internal/adapters/outbound/linkcheck"
	"github.com/promisetracker/linkwatch/internal/adapters/outbound/results"
	"github.com/promisetracker/linkwatch/internal/adapters/outbound/sqlite"
	"github.com/promisetracker/linkwatch/internal/application"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/promisetracker/linkwatch/internal/logging"
	"github.com/spf13/cobra"
)

// app holds the wired services for one command invocation.
type app struct {
	dir     string
	cfg     domain.Config
	logger  *log.Logger
	service *application.ValidationService
	store   *results.Store
	closer  io.Closer
}

// openApp loads configuration and wires the validation service. Commands
// that only read the results artifact pass withDB=false so the database
// is never created as a side effect.
func openApp(cmd *cobra.Command, withDB bool) (*app, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.New().Load(absDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

	a := &app{dir: absDir, cfg: cfg, logger: logger}

	var repo domain.SourceRepository
	if withDB {
		r, err := sqlite.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		repo = r
		a.closer = r
	}

	a.store = results.New(cfg.ResultsPath)
	archive := history.New(cfg.ReportsDir)
	logger.Debug("storage", "results", a.store.Path(), "reports", archive.Dir())

	opts := []application.ServiceOption{
		application.WithArchive(archive),
		application.WithPlaceholderDomains(cfg.PlaceholderDomains),
		application.WithReplacements(cfg.AutoRepair.Replacements),
		application.WithRequestDelay(cfg.Validator.RequestDelay),
		application.WithReliabilityThreshold(cfg.Audit.ReliabilityThreshold),
		application.WithLogger(logger.WithPrefix("run")),
	}
	if git := gitinfo.New(absDir); git.IsGitRepo() {
		opts = append(opts, application.WithRevision(git))
	}

	a.service = application.NewValidationService(
		repo,
		linkcheck.New(cfg.Validator.Timeout, cfg.Validator.UserAgent),
		a.store,
		opts...,
	)
	return a, nil
}

// newScheduler builds a Scheduler over the app's service. It is not started.
// Its runs hold the lock file next to the results artifact, so a serve
// process and a one-shot run never validate at the same time.
func (a *app) newScheduler() (*application.Scheduler, error) {
	triggers, err := application.TriggersFor(a.cfg.Schedule)
	if err != nil {
		return nil, err
	}
	lock := a.store.Lock()
	a.logger.Debug("run lock", "path", lock.Path())
	return application.NewScheduler(a.service, application.SchedulerConfig{
		Triggers:     triggers,
		PollInterval: a.cfg.Schedule.PollInterval,
		Freshness:    a.cfg.Status.Freshness(),
		AutoRepair:   a.cfg.AutoRepair.IsEnabled(),
	},
		application.WithSchedulerLogger(a.logger.WithPrefix("scheduler")),
		application.WithRunLock(lock),
	), nil
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
