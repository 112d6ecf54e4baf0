package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/promisetracker/linkwatch/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".linkwatch.yaml"

// EnvDatabasePath overrides database_path when set.
const EnvDatabasePath = "LINKWATCH_DB"

// YAMLLoader reads .linkwatch.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .linkwatch.yaml from dir and decodes it over the defaults:
// keys present in the file win, even when set to a zero value, and lists
// replace wholesale. A missing file yields DefaultConfig. Relative paths
// are resolved against dir.
func (l *YAMLLoader) Load(dir string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return domain.Config{}, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		if err := cfg.Validate(); err != nil {
			return domain.Config{}, fmt.Errorf("invalid %s: %w", FileName, err)
		}
		cfg.LogLevel = strings.ToLower(cfg.LogLevel)
		cfg.AutoRepair.Replacements = normalizeReplacements(cfg.AutoRepair.Replacements)
	}

	if env := strings.TrimSpace(os.Getenv(EnvDatabasePath)); env != "" {
		cfg.DatabasePath = env
	}

	cfg.DatabasePath = resolve(dir, cfg.DatabasePath)
	cfg.ResultsPath = resolve(dir, cfg.ResultsPath)
	cfg.ReportsDir = resolve(dir, cfg.ReportsDir)

	return cfg, nil
}

// normalizeReplacements maps source type spellings onto the canonical
// names and fills the fixed repair reliability when omitted.
func normalizeReplacements(in []domain.Replacement) []domain.Replacement {
	out := make([]domain.Replacement, len(in))
	for i, r := range in {
		if r.SourceType == "" {
			r.SourceType = domain.SourceTypeOfficialStatement
		} else {
			r.SourceType = domain.ParseSourceType(string(r.SourceType))
		}
		if r.ReliabilityScore == 0 {
			r.ReliabilityScore = domain.RepairReliability
		}
		out[i] = r
	}
	return out
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
