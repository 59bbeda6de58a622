package server

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/bobmcallan/lexicon/internal/models"
	"github.com/bobmcallan/lexicon/internal/render"
)

// maxSuggestionLimit caps the limit query parameter of /api/suggestions.
const maxSuggestionLimit = 50

// catalogResponse is the body of GET /api/catalog.
type catalogResponse struct {
	Version    string        `json:"version"`
	Categories []string      `json:"categories"`
	Terms      []models.Term `json:"terms"`
}

// termsResponse is the body of GET /api/terms. groups is present, possibly
// empty, exactly when the view mode is grouped.
type termsResponse struct {
	models.BrowseResult
	Groups         *[]models.TermGroup    `json:"groups,omitempty"`
	CatalogVersion string                 `json:"catalog_version"`
	CategoryCounts []models.CategoryCount `json:"category_counts"`
	ModeCounts     []models.ModeCount     `json:"mode_counts"`
}

// etagFor derives a strong ETag from the catalog version and the parts of
// the request that shape the response.
func etagFor(parts ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "\x00")))
	return `"` + hex.EncodeToString(sum[:12]) + `"`
}

// parseViewState reads q, category, mode, sort and group into a view state.
func (s *Server) parseViewState(r *http.Request) (models.ViewState, error) {
	q := r.URL.Query()

	mode, err := models.ParseViewModeGrouped(q.Get("mode"), parseBoolParam(r, "group"))
	if err != nil {
		return models.ViewState{}, err
	}

	sort, err := models.ParseSortOrder(q.Get("sort"), "")
	if err != nil {
		return models.ViewState{}, err
	}

	state := models.ViewState{
		Search: q.Get("q"),
		Mode:   mode,
		Sort:   sort,
	}
	if c := q.Get("category"); c != "" {
		state = state.WithCategory(c)
	}
	return state, nil
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	cat := s.app.Catalog
	if notModified(w, r, `"`+cat.Version()+`"`) {
		return
	}
	WriteJSON(w, http.StatusOK, catalogResponse{
		Version:    cat.Version(),
		Categories: s.app.BrowseService.Categories(),
		Terms:      cat.Terms(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	state, err := s.parseViewState(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if notModified(w, r, etagFor(s.app.Catalog.Version(), "categories", r.URL.RawQuery)) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories":    s.app.BrowseService.CategoryCounts(s.app.Catalog.Terms(), state),
		"uncategorised": s.app.Catalog.UncategorisedTerms(),
	})
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	state, err := s.parseViewState(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if notModified(w, r, etagFor(s.app.Catalog.Version(), "chart", r.URL.RawQuery)) {
		return
	}

	counts := s.app.BrowseService.CategoryCounts(s.app.Catalog.Terms(), state)
	png, err := render.RenderCategoryChart(counts)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to render category chart")
		WriteError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(png)
	}
}

func (s *Server) handleTerms(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	state, err := s.parseViewState(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	version := s.app.Catalog.Version()
	if notModified(w, r, etagFor(version, "terms", r.URL.RawQuery)) {
		return
	}

	terms := s.app.Catalog.Terms()
	browse := s.app.BrowseService
	resp := termsResponse{
		BrowseResult:   browse.Query(terms, state),
		CatalogVersion: version,
		CategoryCounts: browse.CategoryCounts(terms, state),
		ModeCounts:     browse.ModeCounts(terms, state),
	}
	if resp.State.Mode.Grouped() {
		groups := resp.BrowseResult.Groups
		if groups == nil {
			groups = []models.TermGroup{}
		}
		resp.Groups = &groups
	}
	WriteJSON(w, http.StatusOK, resp)
}

// handleTermGet handles GET /api/terms/{id}.
func (s *Server) handleTermGet(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	term, ok := s.app.Catalog.Term(id)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Term '%s' not found", id))
		return
	}

	renderHTML := strings.EqualFold(r.URL.Query().Get("render"), "html")
	if notModified(w, r, etagFor(s.app.Catalog.Version(), "term", id, strconv.FormatBool(renderHTML))) {
		return
	}

	detail := models.TermDetail{
		Term:  term,
		Tools: s.app.ToolService.DescribeAll(term.InteractiveTools),
	}
	if renderHTML {
		rendered, err := s.app.Rendered.Term(term)
		if err != nil {
			s.logger.Warn().Err(err).Str("term", id).Msg("Failed to render term markdown")
			WriteError(w, http.StatusInternalServerError, "Failed to render term")
			return
		}
		detail.HTML = rendered
	}

	WriteJSON(w, http.StatusOK, detail)
}

// handleTermTools handles GET /api/terms/{id}/tools.
func (s *Server) handleTermTools(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	term, ok := s.app.Catalog.Term(id)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Term '%s' not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"term":  term.ID,
		"tools": s.app.ToolService.DescribeAll(term.InteractiveTools),
	})
}

// handleToolLaunch handles POST /api/terms/{id}/tools/{index}/launch.
func (s *Server) handleToolLaunch(w http.ResponseWriter, r *http.Request, id, rawIndex string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	term, ok := s.app.Catalog.Term(id)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Term '%s' not found", id))
		return
	}

	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "tool index must be a number")
		return
	}
	if index < 0 || index >= len(term.InteractiveTools) {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Term '%s' has no tool %d", id, index))
		return
	}

	WriteJSON(w, http.StatusOK, s.app.ToolService.Launch(term.Name, term.InteractiveTools[index]))
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	query := r.URL.Query().Get("q")

	limit := parseIntParam(r, "limit", s.app.Config.Browse.SuggestionLimit)
	if limit <= 0 {
		limit = s.app.Config.Browse.SuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":       query,
		"suggestions": s.app.BrowseService.Suggestions(s.app.Catalog.Names(), query, limit),
	})
}
