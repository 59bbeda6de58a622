// Package render converts term markdown into HTML.
package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/bobmcallan/lexicon/internal/models"
)

// Markdown renders GitHub-flavoured markdown. Raw HTML in the source is
// not passed through. Safe for concurrent use.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a renderer.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// HTML renders one markdown fragment. Empty input renders as empty output.
func (m *Markdown) HTML(src string) (string, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// Content renders every markdown field of a term.
func (m *Markdown) Content(c models.TermContent) (*models.RenderedContent, error) {
	out := &models.RenderedContent{}
	fields := []struct {
		src string
		dst *string
	}{
		{c.SimpleDefinition, &out.SimpleDefinition},
		{c.Analogy, &out.Analogy},
		{c.Example, &out.Example},
		{c.Elaboration, &out.Elaboration},
		{c.WhyItMatters, &out.WhyItMatters},
	}
	for _, f := range fields {
		h, err := m.HTML(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = h
	}
	return out, nil
}

// Cache memoizes rendered term content by term id. Terms are immutable
// for the life of a catalog, so entries never expire.
type Cache struct {
	md      *Markdown
	mu      sync.RWMutex
	entries map[string]*models.RenderedContent
}

// NewCache creates an empty cache over md.
func NewCache(md *Markdown) *Cache {
	return &Cache{md: md, entries: make(map[string]*models.RenderedContent)}
}

// Term returns the rendered content of t, rendering it on first use.
// Callers must not modify the returned value.
func (c *Cache) Term(t models.Term) (*models.RenderedContent, error) {
	c.mu.RLock()
	rc, ok := c.entries[t.ID]
	c.mu.RUnlock()
	if ok {
		return rc, nil
	}

	rc, err := c.md.Content(t.Content)
	if err != nil {
		return nil, fmt.Errorf("term %s: %w", t.ID, err)
	}
	c.mu.Lock()
	c.entries[t.ID] = rc
	c.mu.Unlock()
	return rc, nil
}

// Len returns the number of cached terms.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
