package application_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/promisetracker/linkwatch/internal/adapters/outbound/linkcheck"
	"github.com/promisetracker/linkwatch/internal/application"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func newService(repo *memRepo, checker domain.LinkChecker, results *memResults, opts ...application.ServiceOption) *application.ValidationService {
	base := []application.ServiceOption{
		application.WithRequestDelay(0),
		application.WithClock(func() time.Time { return fixedNow }),
		application.WithRunIDs(func() string { return "run-1" }),
	}
	return application.NewValidationService(repo, checker, results, append(base, opts...)...)
}

// closedURL returns a URL nothing is listening on.
func closedURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "http://" + addr + "/"
}

func TestValidationService_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := newMemRepo()
	repo.addSource(domain.Source{ID: 1, URL: "https://example.com/a", Title: "Placeholder", PromiseIDs: []int64{10}})
	repo.addSource(domain.Source{ID: 2, URL: closedURL(t), Title: "Dead host", PromiseIDs: []int64{10, 11}})
	repo.addSource(domain.Source{ID: 3, URL: srv.URL, Title: "Working"})

	results := &memResults{}
	archive := &memArchive{}
	svc := newService(repo, linkcheck.New(2*time.Second, ""), results, application.WithArchive(archive))

	res := svc.Run(context.Background(), application.RunOptions{})

	require.Equal(t, domain.ResultSuccess, res.Status)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, domain.RunStandard, res.Kind)
	assert.Equal(t, 1, res.Summary.ValidCount)
	assert.Equal(t, 1, res.Summary.InvalidCount)
	assert.Equal(t, 1, res.Summary.PlaceholderCount)
	assert.Equal(t, 3, res.Summary.TotalCount)
	require.NotNil(t, res.Summary.ValidationDate)
	assert.Equal(t, fixedNow, *res.Summary.ValidationDate)

	// Source 2 has two promise links, source 3 none.
	require.Len(t, res.Details, 4)
	assert.True(t, res.Details[0].IsPlaceholder)
	require.NotNil(t, res.Details[0].ErrorMessage)
	assert.Equal(t, domain.MessagePlaceholder, *res.Details[0].ErrorMessage)

	assert.False(t, res.Details[1].IsValid)
	assert.Equal(t, 0, res.Details[1].StatusCode)
	assert.Equal(t, int64(10), res.Details[1].PromiseID)
	assert.Equal(t, int64(11), res.Details[2].PromiseID)
	require.NotNil(t, res.Details[1].ErrorMessage)
	assert.Equal(t, domain.MessageConnectionError, *res.Details[1].ErrorMessage)

	assert.True(t, res.Details[3].IsValid)
	assert.Equal(t, http.StatusOK, res.Details[3].StatusCode)
	assert.Equal(t, int64(0), res.Details[3].PromiseID)
	assert.Nil(t, res.Details[3].ErrorMessage)

	assert.Same(t, res, results.latest)
	require.Len(t, archive.reports, 1)
	assert.Equal(t, domain.ArchiveRunReport, archive.reports[0].kind)
	assert.Contains(t, archive.reports[0].text, "Success Rate: 33.3%")
}

func TestValidationService_PlaceholdersSkipNetwork(t *testing.T) {
	repo := newMemRepo()
	repo.addSource(domain.Source{ID: 1, URL: "https://sub.example.com/path"})
	repo.addSource(domain.Source{ID: 2, URL: ""})
	repo.addSource(domain.Source{ID: 3, URL: "https://realsite.gov"})

	checker := &stubChecker{answers: map[string]domain.LinkCheck{
		"https://realsite.gov": {IsValid: true, StatusCode: 200, Message: domain.MessageOK},
	}}
	res := newService(repo, checker, &memResults{}).Run(context.Background(), application.RunOptions{})

	assert.Equal(t, []string{"https://realsite.gov"}, checker.called())
	assert.Equal(t, 2, res.Summary.PlaceholderCount)
	assert.Equal(t, 1, res.Summary.ValidCount)
}

// slowChecker takes d per check and records when each check started and ended.
type slowChecker struct {
	d      time.Duration
	mu     sync.Mutex
	starts []time.Time
	ends   []time.Time
}

func (c *slowChecker) Check(_ context.Context, _ string) domain.LinkCheck {
	c.mu.Lock()
	c.starts = append(c.starts, time.Now())
	c.mu.Unlock()
	time.Sleep(c.d)
	c.mu.Lock()
	c.ends = append(c.ends, time.Now())
	c.mu.Unlock()
	return domain.LinkCheck{IsValid: true, StatusCode: http.StatusOK, Message: domain.MessageOK}
}

func TestValidationService_DelayFollowsEachCheck(t *testing.T) {
	repo := newMemRepo()
	repo.addSource(domain.Source{ID: 1, URL: "https://a.gov/"})
	repo.addSource(domain.Source{ID: 2, URL: "https://example.com/skip"})
	repo.addSource(domain.Source{ID: 3, URL: "https://b.gov/"})
	repo.addSource(domain.Source{ID: 4, URL: "https://c.gov/"})

	delay := 50 * time.Millisecond
	checker := &slowChecker{d: 80 * time.Millisecond}
	res := newService(repo, checker, &memResults{}, application.WithRequestDelay(delay)).
		Run(context.Background(), application.RunOptions{})

	require.Equal(t, domain.ResultSuccess, res.Status)
	require.Len(t, checker.starts, 3, "placeholders are not checked")
	for i := 1; i < len(checker.starts); i++ {
		gap := checker.starts[i].Sub(checker.ends[i-1])
		assert.GreaterOrEqual(t, gap, delay-time.Millisecond,
			"gap between check %d and %d was %s", i, i+1, gap)
	}
}

func TestValidationService_NoDelayConfigured(t *testing.T) {
	repo := newMemRepo()
	repo.addSource(domain.Source{ID: 1, URL: "https://a.gov/"})
	repo.addSource(domain.Source{ID: 2, URL: "https://b.gov/"})

	checker := &slowChecker{}
	start := time.Now()
	newService(repo, checker, &memResults{}).Run(context.Background(), application.RunOptions{})

	assert.Len(t, checker.starts, 2)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestValidationService_TimeoutVerdict(t *testing.T) {
	repo := newMemRepo()
	repo.addSource(domain.Source{ID: 1, URL: "https://slow.gov/", PromiseIDs: []int64{4}})

	checker := &stubChecker{answers: map[string]domain.LinkCheck{
		"https://slow.gov/": {IsValid: false, StatusCode: 0, Message: domain.MessageTimeout},
	}}
	res := newService(repo, checker, &memResults{}).Run(context.Background(), application.RunOptions{})

	require.Equal(t, domain.ResultSuccess, res.Status)
	require.Len(t, res.Details, 1)
	d := res.Details[0]
	assert.False(t, d.IsValid)
	assert.Equal(t, 0, d.StatusCode)
	require.NotNil(t, d.ErrorMessage)
	assert.Equal(t, "Timeout", *d.ErrorMessage)
}

func TestValidationService_AutoRepair(t *testing.T) {
	repo := newMemRepo()
	repo.addPromise(1, "Build the wall and secure the border", "Immigration")
	repo.addPromise(2, "Make America sing again", "Culture")
	repo.addSource(domain.Source{ID: 1, URL: "https://example.com/border", Title: "Old", ReliabilityScore: 0.5, PromiseIDs: []int64{1}})
	untouched := domain.Source{ID: 2, URL: "https://example.com/song", Title: "Song", ReliabilityScore: 0.4, Type: domain.SourceTypeRallySpeech, PromiseIDs: []int64{2}}
	repo.addSource(untouched)

	dhs := "https://www.dhs.gov/topic/border-security"
	checker := &stubChecker{answers: map[string]domain.LinkCheck{
		dhs: {IsValid: true, StatusCode: 200, Message: domain.MessageOK},
	}}
	res := newService(repo, checker, &memResults{}).Run(context.Background(), application.RunOptions{AutoRepair: true})

	assert.Equal(t, 1, res.RepairsCount)
	repaired := repo.sources[1]
	assert.Equal(t, dhs, repaired.URL)
	assert.Equal(t, "Department of Homeland Security - Border Security", repaired.Title)
	assert.Equal(t, domain.SourceTypeOfficialStatement, repaired.Type)
	assert.Equal(t, 0.95, repaired.ReliabilityScore)
	assert.Equal(t, []int64{1}, repaired.PromiseIDs)

	assert.Equal(t, untouched, repo.sources[2])

	// The repaired source is validated in the same run.
	assert.Equal(t, 1, res.Summary.ValidCount)
	assert.Equal(t, 1, res.Summary.PlaceholderCount)
}

func TestValidationService_AutoRepairDisabled(t *testing.T) {
	repo := newMemRepo()
	repo.addPromise(1, "Cut taxes", "Economy")
	repo.addSource(domain.Source{ID: 1, URL: "https://example.com/tax", PromiseIDs: []int64{1}})

	res := newService(repo, &stubChecker{}, &memResults{}).Run(context.Background(), application.RunOptions{})

	assert.Equal(t, 0, res.RepairsCount)
	assert.Equal(t, 0, repo.updates)
}

func TestValidationService_CustomReplacementTable(t *testing.T) {
	repo := newMemRepo()
	repo.addPromise(1, "Expand jobs programs", "Economy")
	repo.addSource(domain.Source{ID: 1, URL: "https://dummy.com/x", PromiseIDs: []int64{1}})

	table := []domain.Replacement{{
		Keyword: "jobs", Title: "BLS", URL: "https://www.bls.gov/",
		SourceType: domain.SourceTypePolicyDocument, ReliabilityScore: 0.9,
	}}
	svc := newService(repo, &stubChecker{}, &memResults{}, application.WithReplacements(table))

	n, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "https://www.bls.gov/", repo.sources[1].URL)
	assert.Equal(t, domain.SourceTypePolicyDocument, repo.sources[1].Type)
}

func TestValidationService_RepositoryErrorBecomesErrorResult(t *testing.T) {
	repo := newMemRepo()
	repo.listErr = errors.New("database is locked")
	results := &memResults{}

	res := newService(repo, &stubChecker{}, results).Run(context.Background(), application.RunOptions{})

	assert.Equal(t, domain.ResultError, res.Status)
	assert.Contains(t, res.Message, "database is locked")
	assert.Equal(t, domain.Summary{}, res.Summary)
	assert.Empty(t, res.Details)
	assert.Same(t, res, results.latest, "error results are persisted")
}

func TestValidationService_SaveFailureBecomesErrorResult(t *testing.T) {
	repo := newMemRepo()
	results := &memResults{saveErr: errors.New("disk full")}

	res := newService(repo, &stubChecker{}, results).Run(context.Background(), application.RunOptions{})

	assert.Equal(t, domain.ResultError, res.Status)
	assert.Contains(t, res.Message, "disk full")
}

func TestValidationService_CountsAlwaysSum(t *testing.T) {
	repo := newMemRepo()
	for i := int64(1); i <= 12; i++ {
		url := "https://site.gov/" + string(rune('a'+i))
		if i%3 == 0 {
			url = "https://placeholder.com/" + string(rune('a'+i))
		}
		repo.addSource(domain.Source{ID: i, URL: url})
	}
	checker := &stubChecker{answers: map[string]domain.LinkCheck{
		"https://site.gov/b": {IsValid: true, StatusCode: 200},
		"https://site.gov/c": {IsValid: true, StatusCode: 301},
		"https://site.gov/f": {IsValid: false, StatusCode: 404, Message: "HTTP 404"},
	}}

	res := newService(repo, checker, &memResults{}).Run(context.Background(), application.RunOptions{})

	s := res.Summary
	assert.Equal(t, s.TotalCount, s.ValidCount+s.InvalidCount+s.PlaceholderCount)
	assert.Equal(t, 12, s.TotalCount)
	assert.Equal(t, 4, s.PlaceholderCount)
}

func TestValidationService_Comprehensive(t *testing.T) {
	repo := newMemRepo()
	repo.addSource(domain.Source{ID: 1, URL: "https://a.gov/", ReliabilityScore: 0.95, Type: domain.SourceTypeOfficialStatement})
	repo.addSource(domain.Source{ID: 2, URL: "https://b.com/", ReliabilityScore: 0.4, Type: domain.SourceTypeInterview})

	archive := &memArchive{}
	svc := newService(repo, &stubChecker{}, &memResults{},
		application.WithArchive(archive),
		application.WithRevision(fixedRevision("abc123def456")),
	)

	res := svc.Run(context.Background(), application.RunOptions{Kind: domain.RunComprehensive})

	require.NotNil(t, res.Audit)
	assert.Equal(t, 0.7, res.Audit.ReliabilityThreshold)
	assert.Equal(t, 1, res.Audit.LowReliabilityCount)
	assert.Len(t, res.Audit.SourceTypes, 2)

	require.Len(t, archive.reports, 2)
	assert.Equal(t, domain.ArchiveRunReport, archive.reports[0].kind)
	assert.Equal(t, domain.ArchiveWeeklyReport, archive.reports[1].kind)
	assert.Contains(t, archive.reports[1].text, "SOURCE AUDIT:")
	assert.Contains(t, archive.reports[1].text, "Revision: abc123def456")
}

func TestValidationService_ValidateSource(t *testing.T) {
	repo := newMemRepo()
	repo.addSource(domain.Source{ID: 1, URL: "https://fake.com/x"})
	repo.addSource(domain.Source{ID: 2, URL: "https://ok.gov/"})

	checker := &stubChecker{answers: map[string]domain.LinkCheck{
		"https://ok.gov/": {IsValid: true, StatusCode: 200, Message: domain.MessageOK},
	}}
	results := &memResults{}
	svc := newService(repo, checker, results)

	check, err := svc.ValidateSource(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, check.IsPlaceholder)
	assert.False(t, check.IsValid)
	assert.Empty(t, checker.called(), "placeholders are never fetched")

	check, err = svc.ValidateSource(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, check.IsValid)
	assert.Nil(t, check.ErrorMessage)
	assert.Equal(t, fixedNow, check.ValidatedAt)

	_, err = svc.ValidateSource(context.Background(), 99)
	assert.True(t, application.IsNotFound(err))

	assert.Equal(t, 0, results.saves, "ad hoc checks persist nothing")
}

func TestValidationService_LatestReport(t *testing.T) {
	results := &memResults{}
	svc := newService(newMemRepo(), &stubChecker{}, results)

	r := svc.LatestReport()
	assert.Equal(t, domain.ResultNoData, r.Status)

	results.loadErr = errors.New("unexpected end of JSON input")
	r = svc.LatestReport()
	assert.Equal(t, domain.ResultNoData, r.Status)
	assert.Contains(t, r.Message, "unexpected end of JSON input")

	results.loadErr = nil
	svc.Run(context.Background(), application.RunOptions{})
	first := svc.LatestReport()
	second := svc.LatestReport()
	assert.Equal(t, first, second)
	assert.Equal(t, domain.ResultSuccess, first.Status)
}
