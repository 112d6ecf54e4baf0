package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/promisetracker/linkwatch/internal/domain"
)

const (
	reportRule      = "============================================================"
	sectionRule     = "----------------------------------------"
	titleWidth      = 50
	workingLinkShow = 5
)

// ReportInput is everything the text report is rendered from.
type ReportInput struct {
	GeneratedAt time.Time
	Revision    string
	Summary     domain.Summary
	Outcomes    []domain.SourceOutcome
	Repairs     int
	Audit       *domain.SourceAudit
}

// BuildTextReport renders the human-readable validation report archived
// after every run.
func BuildTextReport(in ReportInput) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(reportRule)
	line("PROMISE TRACKER - LINK VALIDATION REPORT")
	line(reportRule)
	line("Generated: %s", in.GeneratedAt.Format("2006-01-02 15:04:05"))
	if in.Revision != "" {
		line("Revision: %s", in.Revision)
	}
	line("")

	s := in.Summary
	line("SUMMARY:")
	line("   Total Sources: %d", s.TotalCount)
	line("   Valid Links: %d", s.ValidCount)
	line("   Invalid Links: %d", s.InvalidCount)
	line("   Placeholder Links: %d", s.PlaceholderCount)
	line("   Success Rate: %.1f%%", s.SuccessRate())
	if in.Repairs > 0 {
		line("   Auto-repaired: %d", in.Repairs)
	}
	line("")

	var valid, invalid, placeholder []domain.SourceOutcome
	for _, o := range in.Outcomes {
		switch o.Verdict.Kind {
		case domain.VerdictValid:
			valid = append(valid, o)
		case domain.VerdictPlaceholder:
			placeholder = append(placeholder, o)
		default:
			invalid = append(invalid, o)
		}
	}

	if len(invalid) > 0 {
		line("INVALID LINKS (NEED FIXING):")
		line(sectionRule)
		for _, o := range invalid {
			line("   * %s", truncate(o.Source.Title, titleWidth))
			line("     URL: %s", o.Source.URL)
			line("     Error: %s", o.Verdict.Reason)
			line("     Promises: %s", joinIDs(o.Source.PromiseIDs))
			line("")
		}
	}

	if len(placeholder) > 0 {
		line("PLACEHOLDER LINKS (NEED REPLACEMENT):")
		line(sectionRule)
		for _, o := range placeholder {
			line("   * %s", truncate(o.Source.Title, titleWidth))
			line("     URL: %s", o.Source.URL)
			line("     Promises: %s", joinIDs(o.Source.PromiseIDs))
			line("")
		}
	}

	if len(valid) > 0 {
		line("WORKING LINKS (SAMPLE):")
		line(sectionRule)
		for _, o := range valid[:min(len(valid), workingLinkShow)] {
			line("   * %s", truncate(o.Source.Title, titleWidth))
			line("     URL: %s", o.Source.URL)
			line("     Status: %d", o.Verdict.StatusCode)
			line("")
		}
		if len(valid) > workingLinkShow {
			line("   ... and %d more working links", len(valid)-workingLinkShow)
			line("")
		}
	}

	if a := in.Audit; a != nil {
		line("SOURCE AUDIT:")
		line(sectionRule)
		line("   Sources below %.2f reliability: %d", a.ReliabilityThreshold, a.LowReliabilityCount)
		for _, tc := range a.SourceTypes {
			line("   %s: %d", tc.Type, tc.Count)
		}
		line("")
	}

	line("RECOMMENDATIONS:")
	line(sectionRule)
	for i, rec := range domain.Recommendations(s) {
		line("   %d. %s", i+1, rec)
	}
	line("")
	line(reportRule)

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
