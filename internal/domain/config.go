package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent is a realistic browser user agent; some government
// hosts reject unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds the link validation settings loaded from .linkwatch.yaml.
type Config struct {
	DatabasePath       string           `yaml:"database_path"       json:"database_path"`
	ResultsPath        string           `yaml:"results_path"        json:"results_path"`
	ReportsDir         string           `yaml:"reports_dir"         json:"reports_dir"`
	LogLevel           string           `yaml:"log_level"           json:"log_level,omitempty"`
	Validator          ValidatorConfig  `yaml:"validator"           json:"validator"`
	PlaceholderDomains []string         `yaml:"placeholder_domains" json:"placeholder_domains"`
	AutoRepair         AutoRepairConfig `yaml:"auto_repair"         json:"auto_repair"`
	Schedule           ScheduleConfig   `yaml:"schedule"            json:"schedule"`
	Status             StatusConfig     `yaml:"status"              json:"status"`
	Audit              AuditConfig      `yaml:"audit"               json:"audit"`
	HTTP               HTTPConfig       `yaml:"http"                json:"http"`
}

// ValidatorConfig tunes the per-URL network check.
type ValidatorConfig struct {
	Timeout      time.Duration `yaml:"timeout"       json:"timeout"`
	UserAgent    string        `yaml:"user_agent"    json:"user_agent"`
	RequestDelay time.Duration `yaml:"request_delay" json:"request_delay"`
}

// AutoRepairConfig controls placeholder replacement. Enabled is a pointer
// so an omitted key keeps the default.
type AutoRepairConfig struct {
	Enabled      *bool         `yaml:"enabled,omitempty"      json:"enabled,omitempty"`
	Replacements []Replacement `yaml:"replacements,omitempty" json:"replacements,omitempty"`
}

// IsEnabled reports whether auto-repair runs before each validation.
func (a AutoRepairConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// ScheduleConfig describes the recurring triggers.
type ScheduleConfig struct {
	Interval     time.Duration `yaml:"interval"      json:"interval"`
	DailyAt      string        `yaml:"daily_at"      json:"daily_at"`
	WeeklyDay    string        `yaml:"weekly_day"    json:"weekly_day"`
	WeeklyAt     string        `yaml:"weekly_at"     json:"weekly_at"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
}

// StatusConfig holds the freshness thresholds.
type StatusConfig struct {
	WarningAfter time.Duration `yaml:"warning_after" json:"warning_after"`
	StaleAfter   time.Duration `yaml:"stale_after"   json:"stale_after"`
}

// Freshness converts the thresholds for classification.
func (s StatusConfig) Freshness() Freshness {
	return Freshness{WarningAfter: s.WarningAfter, StaleAfter: s.StaleAfter}
}

// AuditConfig tunes the comprehensive run.
type AuditConfig struct {
	ReliabilityThreshold float64 `yaml:"reliability_threshold" json:"reliability_threshold"`
}

// HTTPConfig configures the status API served by `linkwatch serve`.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"            json:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins,omitempty"`
}

// DefaultConfig returns the settings the original deployment ran with.
func DefaultConfig() Config {
	return Config{
		DatabasePath: "data/promises.db",
		ResultsPath:  "latest_validation_results.json",
		ReportsDir:   "reports",
		LogLevel:     "info",
		Validator: ValidatorConfig{
			Timeout:      10 * time.Second,
			UserAgent:    DefaultUserAgent,
			RequestDelay: 500 * time.Millisecond,
		},
		PlaceholderDomains: append([]string(nil), DefaultPlaceholderDomains...),
		AutoRepair: AutoRepairConfig{
			Replacements: DefaultReplacements(),
		},
		Schedule: ScheduleConfig{
			Interval:     6 * time.Hour,
			DailyAt:      "09:00",
			WeeklyDay:    "monday",
			WeeklyAt:     "08:00",
			PollInterval: time.Minute,
		},
		Status: StatusConfig{
			WarningAfter: DefaultWarningAfter,
			StaleAfter:   DefaultStaleAfter,
		},
		Audit: AuditConfig{ReliabilityThreshold: 0.7},
		HTTP:  HTTPConfig{Addr: ":8080"},
	}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if strings.TrimSpace(c.ResultsPath) == "" {
		return fmt.Errorf("results_path must not be empty")
	}
	if c.Validator.Timeout < 0 {
		return fmt.Errorf("validator.timeout must not be negative (got %s)", c.Validator.Timeout)
	}
	if c.Validator.RequestDelay < 0 {
		return fmt.Errorf("validator.request_delay must not be negative (got %s)", c.Validator.RequestDelay)
	}

	for i, r := range c.AutoRepair.Replacements {
		if strings.TrimSpace(r.Keyword) == "" {
			return fmt.Errorf("auto_repair.replacements[%d].keyword must not be empty", i)
		}
		if strings.TrimSpace(r.URL) == "" {
			return fmt.Errorf("auto_repair.replacements[%d].url must not be empty", i)
		}
		if r.SourceType != "" && !IsKnownSourceType(string(r.SourceType)) {
			return fmt.Errorf("unknown source_type %q in auto_repair.replacements[%d]", r.SourceType, i)
		}
		if r.ReliabilityScore < 0 || r.ReliabilityScore > 1 {
			return fmt.Errorf("auto_repair.replacements[%d].reliability_score must be between 0 and 1 (got %.2f)", i, r.ReliabilityScore)
		}
	}

	if c.Schedule.Interval < 0 {
		return fmt.Errorf("schedule.interval must not be negative (got %s)", c.Schedule.Interval)
	}
	if c.Schedule.PollInterval < 0 {
		return fmt.Errorf("schedule.poll_interval must not be negative (got %s)", c.Schedule.PollInterval)
	}
	if c.Schedule.DailyAt != "" {
		if _, _, err := ParseClock(c.Schedule.DailyAt); err != nil {
			return fmt.Errorf("schedule.daily_at: %w", err)
		}
	}
	if c.Schedule.WeeklyAt != "" {
		if _, _, err := ParseClock(c.Schedule.WeeklyAt); err != nil {
			return fmt.Errorf("schedule.weekly_at: %w", err)
		}
	}
	if c.Schedule.WeeklyDay != "" {
		if _, err := ParseWeekday(c.Schedule.WeeklyDay); err != nil {
			return fmt.Errorf("schedule.weekly_day: %w", err)
		}
	}

	if c.Status.WarningAfter > 0 && c.Status.StaleAfter > 0 && c.Status.StaleAfter < c.Status.WarningAfter {
		return fmt.Errorf("status.stale_after (%s) must not be shorter than status.warning_after (%s)",
			c.Status.StaleAfter, c.Status.WarningAfter)
	}

	if c.Audit.ReliabilityThreshold < 0 || c.Audit.ReliabilityThreshold > 1 {
		return fmt.Errorf("audit.reliability_threshold must be between 0 and 1 (got %.2f)", c.Audit.ReliabilityThreshold)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// ParseClock parses a 24h "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// ParseWeekday parses an English weekday name, full or three-letter.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
