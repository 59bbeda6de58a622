// Package browse derives the ordered, optionally grouped display list of
// terms from a view state.
package browse

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bobmcallan/lexicon/internal/interfaces"
	"github.com/bobmcallan/lexicon/internal/models"
)

// Compile-time interface check
var _ interfaces.BrowseService = (*Engine)(nil)

// CategoryOrder selects how categories rank against each other.
type CategoryOrder string

const (
	// CategoryOrderPredefined ranks categories by their position in the catalog list.
	CategoryOrderPredefined CategoryOrder = "predefined"
	// CategoryOrderAlphabetical ranks categories by collated name.
	CategoryOrderAlphabetical CategoryOrder = "alphabetical"
)

// Options configure the engine.
type Options struct {
	Locale                 string
	CategoryOrder          CategoryOrder
	AlphabeticalInCategory bool
	DefaultSort            models.SortOrder
}

// Engine evaluates view states against a term list. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	categories []string
	rank       map[string]int
	tag        language.Tag
	opts       Options
}

// NewEngine creates an engine over the ordered category list.
func NewEngine(categories []string, opts Options) *Engine {
	tag, err := language.Parse(opts.Locale)
	if err != nil || opts.Locale == "" {
		tag = language.English
	}
	if opts.CategoryOrder == "" {
		opts.CategoryOrder = CategoryOrderPredefined
	}
	if opts.DefaultSort == "" {
		opts.DefaultSort = SortDefault
	}

	rank := make(map[string]int, len(categories))
	for i, c := range categories {
		rank[c] = i
	}
	return &Engine{
		categories: slices.Clone(categories),
		rank:       rank,
		tag:        tag,
		opts:       opts,
	}
}

// SortDefault is the ordering used when neither state nor options pick one.
const SortDefault = models.SortByName

// Criteria is the filter half of a view state.
type Criteria struct {
	Category  *string
	Search    string
	ToolTypes []models.ToolType
	// Known, when set, limits the category filter to predefined categories:
	// selecting any other category matches nothing.
	Known func(category string) bool
}

// CriteriaFor extracts the filter criteria from a view state.
func CriteriaFor(state models.ViewState) Criteria {
	c := Criteria{Search: state.Search, ToolTypes: state.Mode.ToolTypes()}
	if name, ok := state.SelectedCategory(); ok {
		c.Category = &name
	}
	return c
}

// Filter returns the terms matching every criterion, in input order.
// The input slice is not modified.
func Filter(terms []models.Term, c Criteria) []models.Term {
	m := newMatcher(c.Search)
	out := make([]models.Term, 0, len(terms))
	for i := range terms {
		t := &terms[i]
		if c.Category != nil && (t.Category != *c.Category || (c.Known != nil && !c.Known(t.Category))) {
			continue
		}
		if len(c.ToolTypes) > 0 && !t.HasToolOf(c.ToolTypes...) {
			continue
		}
		if !m.match(t) {
			continue
		}
		out = append(out, *t)
	}
	return out
}

type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(search string) *matcher {
	if search == "" {
		return &matcher{}
	}
	fold := cases.Fold()
	return &matcher{fold: fold, needle: fold.String(search)}
}

func (m *matcher) match(t *models.Term) bool {
	if m.needle == "" {
		return true
	}
	return m.contains(t.Name) ||
		m.contains(t.Content.SimpleDefinition) ||
		m.contains(t.Content.Elaboration)
}

func (m *matcher) contains(field string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(m.fold.String(field), m.needle)
}

// Sort returns a sorted copy of terms.
func (e *Engine) Sort(terms []models.Term, order models.SortOrder) []models.Term {
	out := slices.Clone(terms)
	if out == nil {
		out = []models.Term{}
	}
	col := collate.New(e.tag)
	byName := func(a, b *models.Term) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	}

	switch order {
	case models.SortByCategory:
		slices.SortStableFunc(out, func(a, b models.Term) int {
			if c := e.compareCategory(col, a.Category, b.Category); c != 0 {
				return c
			}
			return byName(&a, &b)
		})
	default:
		slices.SortStableFunc(out, func(a, b models.Term) int {
			return byName(&a, &b)
		})
	}
	return out
}

// compareCategory ranks known categories by the configured order, then
// any unknown ones after them alphabetically.
func (e *Engine) compareCategory(col *collate.Collator, a, b string) int {
	if a == b {
		return 0
	}
	ra, aKnown := e.rank[a]
	rb, bKnown := e.rank[b]
	switch {
	case aKnown && !bKnown:
		return -1
	case !aKnown && bKnown:
		return 1
	case aKnown && bKnown && e.opts.CategoryOrder == CategoryOrderPredefined:
		return ra - rb
	}
	if c := col.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Group partitions terms by category. Groups follow category order, keep
// the input order within each group and are never empty.
func (e *Engine) Group(terms []models.Term) []models.TermGroup {
	buckets := make(map[string][]models.Term)
	var keys []string
	for _, t := range terms {
		if _, ok := buckets[t.Category]; !ok {
			keys = append(keys, t.Category)
		}
		buckets[t.Category] = append(buckets[t.Category], t)
	}

	col := collate.New(e.tag)
	slices.SortFunc(keys, func(a, b string) int {
		return e.compareCategory(col, a, b)
	})

	groups := make([]models.TermGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, models.TermGroup{Category: k, Terms: buckets[k]})
	}
	return groups
}

// Query filters, sorts and, in category mode, groups terms for a view state.
func (e *Engine) Query(terms []models.Term, state models.ViewState) models.BrowseResult {
	state = e.resolve(state)

	list := e.Sort(Filter(terms, e.criteria(state)), state.Sort)
	result := models.BrowseResult{
		State: state,
		Total: len(list),
		Terms: list,
	}
	if state.Mode.Grouped() {
		result.Groups = e.Group(list)
	}
	return result
}

// criteria is CriteriaFor limited to the engine's predefined categories.
func (e *Engine) criteria(state models.ViewState) Criteria {
	c := CriteriaFor(state)
	c.Known = e.HasCategory
	return c
}

// HasCategory reports whether name is one of the predefined categories.
func (e *Engine) HasCategory(name string) bool {
	_, ok := e.rank[name]
	return ok
}

// resolve fills defaults and applies the ordering rules that depend on
// other parts of the state.
func (e *Engine) resolve(state models.ViewState) models.ViewState {
	if state.Mode == "" {
		state.Mode = models.ViewModeAll
	}
	if state.Sort == "" {
		state.Sort = e.opts.DefaultSort
	}
	if _, ok := state.SelectedCategory(); ok && e.opts.AlphabeticalInCategory {
		state.Sort = models.SortByName
	}
	// Grouped output must concatenate back to the flat list.
	if state.Mode.Grouped() {
		state.Sort = models.SortByCategory
	}
	return state
}

// CategoryCounts counts, per predefined category, the terms matching the
// state's search and mode. The selected category is ignored.
func (e *Engine) CategoryCounts(terms []models.Term, state models.ViewState) []models.CategoryCount {
	c := e.criteria(state)
	c.Category = nil

	counts := make(map[string]int, len(e.categories))
	for _, t := range Filter(terms, c) {
		counts[t.Category]++
	}

	out := make([]models.CategoryCount, 0, len(e.categories))
	for _, name := range e.orderedCategories() {
		out = append(out, models.CategoryCount{Category: name, Count: counts[name]})
	}
	return out
}

// ModeCounts counts the terms each view mode would show under the state's
// search and category.
func (e *Engine) ModeCounts(terms []models.Term, state models.ViewState) []models.ModeCount {
	out := make([]models.ModeCount, 0, len(models.ViewModes))
	for _, mode := range models.ViewModes {
		s := state
		s.Mode = mode
		out = append(out, models.ModeCount{Mode: mode, Count: len(Filter(terms, e.criteria(s)))})
	}
	return out
}

// DefaultSuggestionLimit caps Suggestions when no limit is given.
const DefaultSuggestionLimit = 5

// Suggestions returns names containing query case-insensitively, excluding
// an exact match, collated and capped at limit.
func (e *Engine) Suggestions(names []string, query string, limit int) []string {
	out := []string{}
	if strings.TrimSpace(query) == "" {
		return out
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	fold := cases.Fold()
	needle := fold.String(query)
	for _, n := range names {
		folded := fold.String(n)
		if folded == needle || !strings.Contains(folded, needle) {
			continue
		}
		out = append(out, n)
	}

	col := collate.New(e.tag)
	slices.SortStableFunc(out, func(a, b string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Categories returns the categories in configured order.
func (e *Engine) Categories() []string {
	return e.orderedCategories()
}

func (e *Engine) orderedCategories() []string {
	out := slices.Clone(e.categories)
	if e.opts.CategoryOrder == CategoryOrderAlphabetical {
		col := collate.New(e.tag)
		slices.SortStableFunc(out, func(a, b string) int {
			return col.CompareString(a, b)
		})
	}
	return out
}
