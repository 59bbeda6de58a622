package models

import (
	"fmt"
	"strings"
)

// Term is a single glossary entry.
type Term struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	Category         string            `json:"category" yaml:"category"`
	Content          TermContent       `json:"content" yaml:"content"`
	InteractiveTools []InteractiveTool `json:"interactiveTools,omitempty" yaml:"interactiveTools,omitempty"`
}

// TermContent holds the markdown fields of a term. Only SimpleDefinition is required.
type TermContent struct {
	SimpleDefinition string `json:"simpleDefinition" yaml:"simpleDefinition"`
	Analogy          string `json:"analogy,omitempty" yaml:"analogy,omitempty"`
	Example          string `json:"example,omitempty" yaml:"example,omitempty"`
	Elaboration      string `json:"elaboration,omitempty" yaml:"elaboration,omitempty"`
	WhyItMatters     string `json:"whyItMatters,omitempty" yaml:"whyItMatters,omitempty"`
}

// InteractiveTool references a demo or guide associated with a term.
type InteractiveTool struct {
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ToolType `json:"type" yaml:"type"`
}

// HasTools reports whether the term carries at least one tool reference.
func (t *Term) HasTools() bool {
	return len(t.InteractiveTools) > 0
}

// HasToolOf reports whether any of the term's tools has one of the given types.
func (t *Term) HasToolOf(types ...ToolType) bool {
	for _, tool := range t.InteractiveTools {
		for _, tt := range types {
			if tool.Type == tt {
				return true
			}
		}
	}
	return false
}

// ToolType tags how an interactive tool is presented.
type ToolType string

// Tool type constants.
const (
	ToolTypeInteractive ToolType = "interactive"
	ToolTypeGuide       ToolType = "guide"
	ToolTypeExternal    ToolType = "external"
)

// ValidToolTypes is the set of allowed tool type values.
var ValidToolTypes = map[ToolType]bool{
	ToolTypeInteractive: true,
	ToolTypeGuide:       true,
	ToolTypeExternal:    true,
}

// Valid reports whether t is one of the known tool types.
func (t ToolType) Valid() bool {
	return ValidToolTypes[t]
}

// ParseToolType parses a tool type. An empty value means interactive.
func ParseToolType(s string) (ToolType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ToolTypeInteractive, nil
	}
	tt := ToolType(s)
	if !tt.Valid() {
		return "", fmt.Errorf("invalid tool type %q: must be one of interactive, guide, external", s)
	}
	return tt, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so catalog files and
// request bodies can only carry known tool types.
func (t *ToolType) UnmarshalText(b []byte) error {
	tt, err := ParseToolType(string(b))
	if err != nil {
		return err
	}
	*t = tt
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t ToolType) MarshalText() ([]byte, error) {
	if t == "" {
		return []byte(ToolTypeInteractive), nil
	}
	return []byte(t), nil
}

// RenderedContent holds the HTML rendering of a term's markdown fields.
type RenderedContent struct {
	SimpleDefinition string `json:"simpleDefinition"`
	Analogy          string `json:"analogy,omitempty"`
	Example          string `json:"example,omitempty"`
	Elaboration      string `json:"elaboration,omitempty"`
	WhyItMatters     string `json:"whyItMatters,omitempty"`
}

// TermDetail is a term plus optional rendered content and tool launches.
type TermDetail struct {
	Term
	HTML  *RenderedContent `json:"html,omitempty"`
	Tools []ToolLaunch     `json:"tools,omitempty"`
}
