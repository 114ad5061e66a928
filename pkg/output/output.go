// Package output renders issues and milestones for the terminal or as JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shurcooL/githubv4"

	"okp4/github-issues/pkg/github"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var Formats = []string{FormatText, FormatJSON}

type Printer interface {
	PrintIssues(issues []github.Issue) error
	PrintMilestones(milestones []github.Milestone) error
	PrintLabels(labels []string) error
}

func NewPrinter(w io.Writer, format string) (Printer, error) {
	switch format {
	case FormatText, "":
		return newTextPrinter(w), nil
	case FormatJSON:
		return &jsonPrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q, must be one of %s", format, strings.Join(Formats, ", "))
	}
}

type jsonPrinter struct {
	w io.Writer
}

func (p *jsonPrinter) encode(v interface{}) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func (p *jsonPrinter) PrintIssues(issues []github.Issue) error {
	return p.encode(issues)
}

func (p *jsonPrinter) PrintMilestones(milestones []github.Milestone) error {
	return p.encode(milestones)
}

func (p *jsonPrinter) PrintLabels(labels []string) error {
	return p.encode(labels)
}

type textPrinter struct {
	w      io.Writer
	number lipgloss.Style
	open   lipgloss.Style
	closed lipgloss.Style
	muted  lipgloss.Style
}

func newTextPrinter(w io.Writer) *textPrinter {
	r := lipgloss.NewRenderer(w)

	return &textPrinter{
		w:      w,
		number: r.NewStyle().Bold(true).Width(8),
		open:   r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Width(8),
		closed: r.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Width(8),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func (p *textPrinter) state(state string) string {
	state = strings.ToLower(state)

	if state == strings.ToLower(string(githubv4.IssueStateOpen)) {
		return p.open.Render(state)
	}

	return p.closed.Render(state)
}

func (p *textPrinter) PrintIssues(issues []github.Issue) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintln(p.w, p.muted.Render("No issues found."))
		return err
	}

	for _, issue := range issues {
		line := p.number.Render(fmt.Sprintf("#%d", issue.Number)) + p.state(string(issue.State)) + issue.Title

		if len(issue.Labels) > 0 {
			line += " " + p.muted.Render("["+strings.Join(issue.Labels, ", ")+"]")
		}

		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}

	return nil
}

func (p *textPrinter) PrintMilestones(milestones []github.Milestone) error {
	if len(milestones) == 0 {
		_, err := fmt.Fprintln(p.w, p.muted.Render("No milestones found."))
		return err
	}

	for _, m := range milestones {
		line := p.number.Render(fmt.Sprintf("#%d", m.Number)) + p.state(string(m.State)) + m.Title
		line += " " + p.muted.Render(fmt.Sprintf("(%d open, %d closed)", m.OpenIssues, m.ClosedIssues))

		if m.DueOn != nil {
			line += " " + p.muted.Render("due "+m.DueOn.Format("2006-01-02"))
		}

		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}

	return nil
}

func (p *textPrinter) PrintLabels(labels []string) error {
	for _, label := range labels {
		if _, err := fmt.Fprintln(p.w, label); err != nil {
			return err
		}
	}

	return nil
}
