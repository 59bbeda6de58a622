package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bobmcallan/lexicon/internal/models"
)

// styles holds the lipgloss styles used for list output. The zero-colour
// variant is used when --no-color is set or output is not a terminal.
type styles struct {
	Heading  lipgloss.Style
	Name     lipgloss.Style
	ID       lipgloss.Style
	Muted    lipgloss.Style
	Category lipgloss.Style
	Count    lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{Heading: plain, Name: plain, ID: plain, Muted: plain, Category: plain, Count: plain}
	}
	return styles{
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		Name:     lipgloss.NewStyle().Bold(true),
		ID:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		Category: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Count:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	}
}

// formatTermList formats a browse result. Grouped results get a heading
// per category.
func formatTermList(result models.BrowseResult, st styles) string {
	var sb strings.Builder

	if result.Total == 0 {
		sb.WriteString(st.Muted.Render("No terms match."))
		sb.WriteString("\n")
		return sb.String()
	}

	if len(result.Groups) > 0 {
		for _, g := range result.Groups {
			sb.WriteString(st.Heading.Render(fmt.Sprintf("%s (%d)", g.Category, len(g.Terms))))
			sb.WriteString("\n")
			for _, t := range g.Terms {
				writeTermLine(&sb, t, st, false)
			}
		}
	} else {
		for _, t := range result.Terms {
			writeTermLine(&sb, t, st, true)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(st.Muted.Render(fmt.Sprintf("%d term(s)", result.Total)))
	sb.WriteString("\n")
	return sb.String()
}

func writeTermLine(sb *strings.Builder, t models.Term, st styles, withCategory bool) {
	sb.WriteString("  ")
	sb.WriteString(st.Name.Render(t.Name))
	sb.WriteString(" ")
	sb.WriteString(st.ID.Render("[" + t.ID + "]"))
	if withCategory {
		sb.WriteString("  ")
		sb.WriteString(st.Category.Render(t.Category))
	}
	if n := len(t.InteractiveTools); n > 0 {
		sb.WriteString(st.Muted.Render(fmt.Sprintf("  %d tool(s)", n)))
	}
	sb.WriteString("\n")
	sb.WriteString("    ")
	sb.WriteString(firstLine(t.Content.SimpleDefinition))
	sb.WriteString("\n")
}

// formatModeCounts renders "all 16 · interactive 5 · ...".
func formatModeCounts(counts []models.ModeCount, st styles) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s %s", c.Mode, st.Count.Render(fmt.Sprint(c.Count))))
	}
	return strings.Join(parts, " · ") + "\n"
}

// formatCategoryCounts renders one category per line with its count.
func formatCategoryCounts(counts []models.CategoryCount, st styles) string {
	width := 0
	for _, c := range counts {
		if l := lipgloss.Width(c.Category); l > width {
			width = l
		}
	}

	var sb strings.Builder
	for _, c := range counts {
		sb.WriteString(st.Category.Render(c.Category))
		sb.WriteString(strings.Repeat(" ", width-lipgloss.Width(c.Category)+2))
		sb.WriteString(st.Count.Render(fmt.Sprintf("%3d", c.Count)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatTermMarkdown formats a single term as markdown for terminal rendering.
func formatTermMarkdown(t models.Term, launches []models.ToolLaunch) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", t.Name))
	sb.WriteString(fmt.Sprintf("*%s* · `%s`\n\n", t.Category, t.ID))
	sb.WriteString(t.Content.SimpleDefinition)
	sb.WriteString("\n\n")

	sections := []struct {
		title string
		body  string
	}{
		{"Analogy", t.Content.Analogy},
		{"Example", t.Content.Example},
		{"Elaboration", t.Content.Elaboration},
		{"Why it matters", t.Content.WhyItMatters},
	}
	for _, s := range sections {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", s.title, strings.TrimSpace(s.body)))
	}

	if len(launches) > 0 {
		sb.WriteString("## Tools\n\n")
		for _, l := range launches {
			sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", l.Label, l.Tool.Type, l.URL))
			if l.Tool.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", l.Tool.Description))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatSubmission formats a term request result.
func formatSubmission(result *models.SubmissionResult) string {
	var sb strings.Builder
	sb.WriteString(result.Message)
	sb.WriteString("\n")
	if result.RequestID != "" {
		sb.WriteString(fmt.Sprintf("Request ID: %s\n", result.RequestID))
	}
	if result.Mailto != "" {
		sb.WriteString(fmt.Sprintf("Email draft: %s\n", result.Mailto))
	}
	return sb.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
