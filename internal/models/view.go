package models

import (
	"fmt"
	"strings"
)

// ViewMode is the top-level display filter of the term browser.
type ViewMode string

// View mode constants.
const (
	ViewModeAll         ViewMode = "all"
	ViewModeInteractive ViewMode = "interactive"
	ViewModeGuides      ViewMode = "guides"
	ViewModeCategory    ViewMode = "category"
)

// ViewModes lists the modes in display order.
var ViewModes = []ViewMode{ViewModeAll, ViewModeInteractive, ViewModeGuides, ViewModeCategory}

// ParseViewMode parses a view mode; empty means all.
func ParseViewMode(s string) (ViewMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ViewModeAll, nil
	}
	for _, m := range ViewModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid view mode %q: must be one of all, interactive, guides, category", s)
}

// ParseViewModeGrouped parses a view mode together with a "group by
// category" switch. Grouping is the category mode, so group may only be
// combined with an empty mode or "category".
func ParseViewModeGrouped(s string, group bool) (ViewMode, error) {
	mode, err := ParseViewMode(s)
	if err != nil || !group {
		return mode, err
	}
	if strings.TrimSpace(s) != "" && mode != ViewModeCategory {
		return "", fmt.Errorf("group cannot be combined with mode %q", mode)
	}
	return ViewModeCategory, nil
}

// ToolTypes returns the tool types a term must carry to be shown in this mode.
// Nil means the mode does not filter on tools.
func (m ViewMode) ToolTypes() []ToolType {
	switch m {
	case ViewModeInteractive:
		return []ToolType{ToolTypeInteractive, ToolTypeExternal}
	case ViewModeGuides:
		return []ToolType{ToolTypeGuide}
	default:
		return nil
	}
}

// Grouped reports whether the mode displays terms grouped by category.
func (m ViewMode) Grouped() bool {
	return m == ViewModeCategory
}

// SortOrder selects the ordering of the display list.
type SortOrder string

// Sort order constants.
const (
	SortByName     SortOrder = "name"
	SortByCategory SortOrder = "category"
)

// ParseSortOrder parses a sort order. "alphabetical" is accepted for name.
// Empty returns def.
func ParseSortOrder(s string, def SortOrder) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "name", "alphabetical", "az", "a-z":
		return SortByName, nil
	case "category":
		return SortByCategory, nil
	default:
		return "", fmt.Errorf("invalid sort %q: must be name or category", s)
	}
}

// ViewState is the per-session browsing state that drives the display list.
type ViewState struct {
	Search   string    `json:"search,omitempty"`
	Category *string   `json:"category,omitempty"`
	Mode     ViewMode  `json:"mode"`
	Sort     SortOrder `json:"sort"`
}

// SelectedCategory returns the selected category and whether one is set.
func (v ViewState) SelectedCategory() (string, bool) {
	if v.Category == nil || *v.Category == "" {
		return "", false
	}
	return *v.Category, true
}

// WithCategory returns a copy of v with the category selected.
func (v ViewState) WithCategory(category string) ViewState {
	c := category
	v.Category = &c
	return v
}

// TermGroup is one category section of a grouped display list.
type TermGroup struct {
	Category string `json:"category"`
	Terms    []Term `json:"terms"`
}

// CategoryCount pairs a category with the number of matching terms.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ModeCount pairs a view mode with the number of matching terms.
type ModeCount struct {
	Mode  ViewMode `json:"mode"`
	Count int      `json:"count"`
}

// BrowseResult is the derived display list for a view state. In grouped
// modes Groups is non-nil, and empty when nothing matches.
type BrowseResult struct {
	State  ViewState   `json:"state"`
	Total  int         `json:"total"`
	Terms  []Term      `json:"terms"`
	Groups []TermGroup `json:"groups"` // set only in grouped modes
}
