// Package catalog loads the glossary term catalog and exposes it read-only.
package catalog

import (
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/zeebo/blake3"

	"github.com/bobmcallan/lexicon/internal/models"
)

var (
	ErrDuplicateID       = errors.New("duplicate term id")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrMissingField      = errors.New("missing required field")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// Catalog is the immutable set of terms plus the ordered category list.
// Accessors return copies; nothing handed out aliases internal state.
type Catalog struct {
	categories []string
	terms      []models.Term
	byID       map[string]int
	known      map[string]bool
	version    string
}

// document is the on-disk shape of a catalog file.
type document struct {
	Categories []string      `json:"categories" yaml:"categories"`
	Terms      []models.Term `json:"terms" yaml:"terms"`
}

// New validates and builds a catalog. Terms whose category is not in
// categories are accepted; they just never match a category filter.
func New(categories []string, terms []models.Term) (*Catalog, error) {
	c := &Catalog{
		categories: make([]string, 0, len(categories)),
		terms:      make([]models.Term, 0, len(terms)),
		byID:       make(map[string]int, len(terms)),
		known:      make(map[string]bool, len(categories)),
	}

	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("category name: %w", ErrMissingField)
		}
		if c.known[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
		}
		c.known[name] = true
		c.categories = append(c.categories, name)
	}

	for i, t := range terms {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("term #%d id: %w", i, ErrMissingField)
		}
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("term %q name: %w", t.ID, ErrMissingField)
		}
		if strings.TrimSpace(t.Content.SimpleDefinition) == "" {
			return nil, fmt.Errorf("term %q simpleDefinition: %w", t.ID, ErrMissingField)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, t.ID)
		}

		t = cloneTerm(t)
		for j := range t.InteractiveTools {
			if t.InteractiveTools[j].Type == "" {
				t.InteractiveTools[j].Type = models.ToolTypeInteractive
			}
		}

		c.byID[t.ID] = len(c.terms)
		c.terms = append(c.terms, t)
	}

	digest, err := computeVersion(c.categories, c.terms)
	if err != nil {
		return nil, err
	}
	c.version = digest

	return c, nil
}

// computeVersion hashes the canonical JSON encoding of the catalog.
func computeVersion(categories []string, terms []models.Term) (string, error) {
	data, err := json.Marshal(document{Categories: categories, Terms: terms})
	if err != nil {
		return "", fmt.Errorf("encoding catalog for digest: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}

// Terms returns a copy of all terms in catalog order.
func (c *Catalog) Terms() []models.Term {
	out := make([]models.Term, len(c.terms))
	for i, t := range c.terms {
		out[i] = cloneTerm(t)
	}
	return out
}

// Categories returns the ordered category list.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// Term looks up a term by id.
func (c *Catalog) Term(id string) (models.Term, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Term{}, false
	}
	return cloneTerm(c.terms[i]), true
}

// Len returns the number of terms.
func (c *Catalog) Len() int {
	return len(c.terms)
}

// Version is a content digest that changes whenever any term or category changes.
func (c *Catalog) Version() string {
	return c.version
}

// Names returns the term names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.terms))
	for i, t := range c.terms {
		names[i] = t.Name
	}
	return names
}

// UncategorisedTerms returns the ids of terms whose category is not predefined.
func (c *Catalog) UncategorisedTerms() []string {
	var ids []string
	for _, t := range c.terms {
		if !c.known[t.Category] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func cloneTerm(t models.Term) models.Term {
	if t.InteractiveTools != nil {
		t.InteractiveTools = slices.Clone(t.InteractiveTools)
	}
	return t
}
