package application_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/promisetracker/linkwatch/internal/domain"
)

// memRepo is an in-memory SourceRepository.
type memRepo struct {
	mu       sync.Mutex
	sources  map[int64]domain.Source
	promises map[int64]domain.LinkedPromise
	listErr  error
	updates  int
}

func newMemRepo() *memRepo {
	return &memRepo{
		sources:  map[int64]domain.Source{},
		promises: map[int64]domain.LinkedPromise{},
	}
}

func (r *memRepo) addPromise(id int64, text, category string) {
	r.promises[id] = domain.LinkedPromise{ID: id, Text: text, Category: category}
}

func (r *memRepo) addSource(s domain.Source) {
	if s.Type == "" {
		s.Type = domain.SourceTypeOther
	}
	r.sources[s.ID] = s
}

func (r *memRepo) ids() []int64 {
	ids := make([]int64, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *memRepo) ListSources(_ context.Context) ([]domain.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Source, 0, len(r.sources))
	for _, id := range r.ids() {
		out = append(out, r.sources[id])
	}
	return out, nil
}

func (r *memRepo) GetSource(_ context.Context, id int64) (*domain.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("source %d: %w", id, domain.ErrSourceNotFound)
	}
	return &s, nil
}

func (r *memRepo) ListRepairCandidates(_ context.Context) ([]domain.RepairCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RepairCandidate
	for _, id := range r.ids() {
		s := r.sources[id]
		if s.URL == "" || len(s.PromiseIDs) == 0 {
			continue
		}
		c := domain.RepairCandidate{Source: s}
		for _, pid := range s.PromiseIDs {
			c.Promises = append(c.Promises, r.promises[pid])
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memRepo) UpdateSource(_ context.Context, id int64, u domain.SourceUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return domain.ErrSourceNotFound
	}
	s.URL, s.Title, s.Type, s.ReliabilityScore = u.URL, u.Title, u.Type, u.ReliabilityScore
	r.sources[id] = s
	r.updates++
	return nil
}

func (r *memRepo) CountBelowReliability(_ context.Context, threshold float64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sources {
		if s.ReliabilityScore < threshold {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CountByType(_ context.Context) ([]domain.TypeCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.SourceType]int{}
	for _, s := range r.sources {
		counts[s.Type]++
	}
	var out []domain.TypeCount
	for t, n := range counts {
		out = append(out, domain.TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// stubChecker answers from a fixed table; unknown URLs are connection errors.
type stubChecker struct {
	mu      sync.Mutex
	answers map[string]domain.LinkCheck
	calls   []string
}

func (c *stubChecker) Check(_ context.Context, url string) domain.LinkCheck {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, url)
	if a, ok := c.answers[url]; ok {
		return a
	}
	return domain.LinkCheck{Message: domain.MessageConnectionError}
}

func (c *stubChecker) called() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// memResults keeps the artifact as JSON-free pointers.
type memResults struct {
	mu      sync.Mutex
	latest  *domain.RunResult
	saves   int
	saveErr error
	loadErr error
}

func (m *memResults) Load() (*domain.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.latest, nil
}

func (m *memResults) Save(r *domain.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.latest = r
	m.saves++
	return nil
}

type archived struct {
	kind string
	text string
}

type memArchive struct {
	mu      sync.Mutex
	reports []archived
}

func (a *memArchive) Append(kind string, at time.Time, text string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = append(a.reports, archived{kind: kind, text: text})
	return fmt.Sprintf("%s_%d.txt", kind, len(a.reports)), nil
}

type fixedRevision string

func (r fixedRevision) Revision() (string, error) {
	if r == "" {
		return "", errors.New("not a git repository")
	}
	return string(r), nil
}
