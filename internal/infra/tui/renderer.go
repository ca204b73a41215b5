// Package tui renders an analysis result for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	info    = lipgloss.Color("#8B949E")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	badgeColors = map[analysis.Severity]lipgloss.Color{
		analysis.SeverityHigh:   danger,
		analysis.SeverityMedium: warning,
		analysis.SeverityLow:    info,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("─", 64))
)

// Options tune the output. Markdown renders the synthesized report through
// glamour; Style is a glamour style name ("auto" when empty).
type Options struct {
	Markdown bool
	Style    string
	Width    int
}

// SeverityBadge renders High/Medium/Low in their colors. Any other value is
// shown verbatim in a neutral badge.
func SeverityBadge(s analysis.Severity) string {
	label := string(s)
	if label == "" {
		label = "Unknown"
	}
	color, ok := badgeColors[s.Level()]
	if !ok {
		color = dim
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render("[" + label + "]")
}

// RenderResult lays out the four reports in the order they are produced.
func RenderResult(r analysis.AnalysisResult, opts Options) (string, error) {
	var b strings.Builder

	counts := analysis.CountSeverities(r.Bugs.Bugs)
	summary := fmt.Sprintf("%d bugs  %d high  %d medium  %d low  %d vulnerabilities",
		counts.Total, counts.High, counts.Medium, counts.Low, len(r.Vulnerabilities.Vulnerabilities))
	b.WriteString(boxStyle.Render(headerStyle.Render("deepscan") + "\n" + dimStyle.Render(summary)))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Bugs"))
	b.WriteString("\n")
	if len(r.Bugs.Bugs) == 0 {
		b.WriteString(passStyle.Render("  No bugs found"))
		b.WriteString("\n")
	}
	for i, bug := range r.Bugs.Bugs {
		fmt.Fprintf(&b, "  %d. %s %s\n", i+1, SeverityBadge(bug.Severity), bug.Description)
		if bug.Location != "" {
			fmt.Fprintf(&b, "     %s %s\n", dimStyle.Render("at"), bug.Location)
		}
		if bug.Suggestion != "" {
			fmt.Fprintf(&b, "     %s %s\n", dimStyle.Render("fix"), bug.Suggestion)
		}
	}
	b.WriteString(separatorLine + "\n")

	b.WriteString(titleStyle.Render("Security"))
	b.WriteString("\n")
	if len(r.Vulnerabilities.Vulnerabilities) == 0 {
		b.WriteString(passStyle.Render("  No security vulnerabilities found"))
		b.WriteString("\n")
	}
	for _, v := range r.Vulnerabilities.Vulnerabilities {
		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render("!"), v)
	}
	if r.Vulnerabilities.Recommendations != "" {
		fmt.Fprintf(&b, "  %s\n  %s\n", dimStyle.Render("Recommendations"), r.Vulnerabilities.Recommendations)
	}
	b.WriteString(separatorLine + "\n")

	b.WriteString(titleStyle.Render("Optimizations"))
	b.WriteString("\n  " + r.Optimizations.Suggestions + "\n")
	if r.Optimizations.ReferencesUsed != "" {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("References"), r.Optimizations.ReferencesUsed)
	}
	b.WriteString(separatorLine + "\n")

	b.WriteString(titleStyle.Render("Report"))
	b.WriteString("\n")
	report := r.Report.Report
	if opts.Markdown {
		md, err := renderMarkdown(report, opts)
		if err != nil {
			return "", err
		}
		report = md
	}
	b.WriteString(report)
	if !strings.HasSuffix(report, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}

func renderMarkdown(md string, opts Options) (string, error) {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if opts.Style != "" && opts.Style != "auto" {
		style = glamour.WithStylePath(opts.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(md)
}
