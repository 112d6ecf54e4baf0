package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/promisetracker/linkwatch/internal/domain"
)

// DefaultFileName is the artifact name the dashboard reads.
const DefaultFileName = "latest_validation_results.json"

// Store is a file-based implementation of domain.ResultsStore. Saves go
// through a temp file and a rename so readers never see a partial write.
type Store struct {
	path string
}

// New creates a store backed by the file at path.
func New(path string) *Store {
	if path == "" {
		path = DefaultFileName
	}
	return &Store{path: path}
}

// Path returns the artifact location.
func (s *Store) Path() string { return s.path }

// Load reads the latest result. Returns (nil, nil) if no artifact exists.
func (s *Store) Load() (*domain.RunResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no artifact is not an error
		}
		return nil, err
	}

	var result domain.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(s.path), err)
	}
	if result.Details == nil {
		result.Details = []domain.Detail{}
	}
	return &result, nil
}

// Save replaces the artifact wholesale, creating directories as needed.
func (s *Store) Save(result *domain.RunResult) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".linkwatch-results-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
