package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/lexicon/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only). Run drains
// in-flight requests, this one included, before exiting.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	select {
	case s.shutdownChan <- struct{}{}:
	default:
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/endpoints", s.handleEndpointCatalog)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Catalog
	mux.HandleFunc("/api/catalog", s.handleCatalog)
	mux.HandleFunc("/api/categories/chart.png", s.handleCategoryChart)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/terms/", s.routeTerms)
	mux.HandleFunc("/api/terms", s.handleTerms)
	mux.HandleFunc("/api/suggestions", s.handleSuggestions)

	// Outbound collaborators
	mux.HandleFunc("/api/examples", s.handleExamples)
	mux.HandleFunc("/api/term-requests", s.handleTermRequests)
	mux.HandleFunc("/api/events", s.handleEvents)
}

// routeTerms dispatches /api/terms/{id}/* to the appropriate handler.
func (s *Server) routeTerms(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r, "/api/terms/")
	if len(parts) == 0 {
		s.handleTerms(w, r)
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		s.handleTermGet(w, r, id)
	case len(parts) == 2 && parts[1] == "tools":
		s.handleTermTools(w, r, id)
	case len(parts) == 4 && parts[1] == "tools" && parts[3] == "launch":
		s.handleToolLaunch(w, r, id, parts[2])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config

	catalogSource := cfg.Catalog.Path
	if catalogSource == "" {
		catalogSource = "embedded"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":              cfg.Environment,
		"catalog":                  catalogSource,
		"catalog_version":          s.app.Catalog.Version(),
		"terms":                    s.app.Catalog.Len(),
		"locale":                   cfg.Browse.Locale,
		"default_sort":             cfg.Browse.DefaultSort,
		"category_order":           cfg.Browse.CategoryOrder,
		"alphabetical_in_category": cfg.Browse.AlphabeticalInCategory,
		"gemini_configured":        s.app.ExampleService.Available(),
		"gemini_model":             cfg.Clients.Gemini.Model,
		"gemini_api_key":           common.MaskSecret(cfg.Clients.Gemini.APIKey),
		"analytics_provider":       cfg.Analytics.Provider,
		"request_recipient":        cfg.Requests.RecipientEmail,
		"logging_level":            cfg.Logging.Level,
		"uptime":                   time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleEndpointCatalog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, buildEndpointCatalog())
}
