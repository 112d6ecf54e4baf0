package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/promisetracker/linkwatch/internal/domain"
)

// ── Warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	statusColors = map[string]lipgloss.Color{
		domain.StatusCurrent:  success,
		domain.StatusWarning:  warning,
		domain.StatusStale:    danger,
		domain.StatusNeverRun: dim,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

const maxListed = 10

// RenderRunResult formats a validation run for terminal output.
func RenderRunResult(r *domain.RunResult) string {
	var b strings.Builder

	if r.Status != domain.ResultSuccess {
		title := headerStyle.Render("linkwatch")
		msg := errorTagStyle.Render(r.Status)
		if r.Message != "" {
			msg += "  " + dimStyle.Render(r.Message)
		}
		b.WriteString(boxStyle.Render(title + "\n\n" + msg))
		b.WriteString("\n")
		return b.String()
	}

	s := r.Summary
	rate := s.SuccessRate()
	title := headerStyle.Render("linkwatch")
	subtitle := dimStyle.Render("Link Validation")
	rateStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(rateColor(rate)).
		Render(fmt.Sprintf("%.1f%% valid", rate))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + rateStyled))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s %s\n", padRight("Total sources", 20), titleStyle.Render(fmt.Sprint(s.TotalCount)))
	fmt.Fprintf(&b, "  %s %s\n", padRight("Valid", 20), passStyle.Render(fmt.Sprint(s.ValidCount)))
	fmt.Fprintf(&b, "  %s %s\n", padRight("Invalid", 20), failStyle.Render(fmt.Sprint(s.InvalidCount)))
	fmt.Fprintf(&b, "  %s %s\n", padRight("Placeholder", 20), warnStyle.Render(fmt.Sprint(s.PlaceholderCount)))
	if r.RepairsCount > 0 {
		fmt.Fprintf(&b, "  %s %s\n", padRight("Auto-repaired", 20), infoTagStyle.Render(fmt.Sprint(r.RepairsCount)))
	}
	fmt.Fprintf(&b, "  %s %s\n", padRight("Success rate", 20), coloredBar(rate, 20))

	b.WriteString("\n  " + separatorLine + "\n\n")

	problems := problemRows(r.Details)
	if len(problems) == 0 {
		b.WriteString("  " + passStyle.Render("All links resolve.") + "\n")
	} else {
		b.WriteString("  " + titleStyle.Render("Needs attention") + "\n\n")
		for i, d := range problems {
			if i == maxListed {
				fmt.Fprintf(&b, "    %s\n", dimStyle.Render(fmt.Sprintf("... and %d more", len(problems)-maxListed)))
				break
			}
			renderProblem(&b, d)
		}
	}

	if a := r.Audit; a != nil {
		b.WriteString("\n  " + titleStyle.Render("Source audit") + "\n\n")
		fmt.Fprintf(&b, "    %s %s\n",
			padRight(fmt.Sprintf("Below %.2f reliability", a.ReliabilityThreshold), 30),
			warnStyle.Render(fmt.Sprint(a.LowReliabilityCount)))
		for _, tc := range a.SourceTypes {
			fmt.Fprintf(&b, "    %s %s\n", padRight(string(tc.Type), 30), dimStyle.Render(fmt.Sprint(tc.Count)))
		}
	}

	recs := domain.Recommendations(s)
	if len(recs) > 0 {
		b.WriteString("\n  " + titleStyle.Render("Recommendations") + "\n\n")
		for _, rec := range recs {
			fmt.Fprintf(&b, "    %s %s\n", infoTagStyle.Render("→"), rec)
		}
	}

	b.WriteString("\n")
	return b.String()
}

// problemRows returns one row per failing source, dropping the per-promise
// duplicates of the details list.
func problemRows(details []domain.Detail) []domain.Detail {
	seen := make(map[int64]bool)
	var rows []domain.Detail
	for _, d := range details {
		if d.IsValid || seen[d.SourceID] {
			continue
		}
		seen[d.SourceID] = true
		rows = append(rows, d)
	}
	return rows
}

func renderProblem(b *strings.Builder, d domain.Detail) {
	tag := errorTagStyle.Render("invalid")
	if d.IsPlaceholder {
		tag = warnStyle.Bold(true).Render("placeh.")
	}
	reason := ""
	if d.ErrorMessage != nil {
		reason = *d.ErrorMessage
	}
	fmt.Fprintf(b, "    %s %s %s\n", tag, dimStyle.Render(fmt.Sprintf("#%d", d.SourceID)), d.SourceTitle)
	fmt.Fprintf(b, "            %s  %s\n", faintStyle.Render(d.URL), dimStyle.Render(reason))
}

// RenderStatus formats the scheduler status view.
func RenderStatus(v domain.StatusView) string {
	var b strings.Builder

	color, ok := statusColors[v.Status]
	if !ok {
		color = dim
	}
	label := lipgloss.NewStyle().Bold(true).Foreground(color).Render(strings.ReplaceAll(v.Status, "_", " "))

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %s\n", titleStyle.Render("Link validation"), label)
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(v.Message))
	if v.LastRun != nil {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("Last run:"), v.LastRun.Local().Format(time.DateTime))
	}
	if v.Running {
		fmt.Fprintf(&b, "  %s\n", infoTagStyle.Render("A validation run is in progress."))
	}
	if s := v.Summary; s != nil {
		fmt.Fprintf(&b, "\n  %s valid  %s invalid  %s placeholder  %s total\n",
			passStyle.Render(fmt.Sprint(s.ValidCount)),
			failStyle.Render(fmt.Sprint(s.InvalidCount)),
			warnStyle.Render(fmt.Sprint(s.PlaceholderCount)),
			titleStyle.Render(fmt.Sprint(s.TotalCount)),
		)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderSingleCheck formats the result of an ad hoc source check.
func RenderSingleCheck(c *domain.SingleCheck) string {
	var verdict string
	switch {
	case c.IsPlaceholder:
		verdict = warnStyle.Bold(true).Render("placeholder")
	case c.IsValid:
		verdict = passStyle.Bold(true).Render("valid")
	default:
		verdict = errorTagStyle.Render("invalid")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s  %s\n", titleStyle.Render(fmt.Sprintf("Source #%d", c.SourceID)), verdict,
		dimStyle.Render(fmt.Sprintf("HTTP %d", c.StatusCode)))
	fmt.Fprintf(&b, "  %s\n", faintStyle.Render(c.URL))
	if c.ErrorMessage != nil {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(*c.ErrorMessage))
	}
	b.WriteString("\n")
	return b.String()
}

func coloredBar(rate float64, width int) string {
	filled := max(0, min(int(rate)*width/100, width))
	empty := width - filled

	color := rateColor(rate)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func rateColor(rate float64) lipgloss.Color {
	switch {
	case rate >= domain.ExcellentSuccessRate:
		return success
	case rate >= domain.TargetSuccessRate:
		return lipgloss.Color("#A3E635") // lime
	case rate >= 50:
		return warning
	default:
		return danger
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
