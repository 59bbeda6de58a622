package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/lexicon/internal/app"
	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/models"
	"github.com/bobmcallan/lexicon/internal/services/example"
	"github.com/bobmcallan/lexicon/internal/services/termrequest"
	"github.com/bobmcallan/lexicon/internal/services/tools"
)

// --- Test doubles ---

type trackedEvent struct {
	name   string
	params map[string]string
}

type recordingSink struct {
	mu     sync.Mutex
	events []trackedEvent
}

func (r *recordingSink) Track(event string, params map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, trackedEvent{name: event, params: params})
}

func (r *recordingSink) all() []trackedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]trackedEvent(nil), r.events...)
}

type mockGemini struct {
	generateExample func(ctx context.Context, term string) (string, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockGemini) GenerateExample(ctx context.Context, term string) (string, error) {
	return m.generateExample(ctx, term)
}

type mockSubmitter struct {
	err error
}

func (m *mockSubmitter) Submit(_ context.Context, _ *models.SubmittedTermRequest) error {
	return m.err
}

// --- Helpers ---

func newTestServer(t *testing.T) (*Server, *recordingSink) {
	t.Helper()
	logger := common.NewLoggerFromConfig(common.LoggingConfig{Level: "disabled"})
	cfg := common.NewDefaultConfig()
	cfg.Analytics.Provider = "none"

	a, err := app.NewAppWithConfig(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	sink := &recordingSink{}
	a.Analytics = sink
	a.ToolService = tools.NewService(sink, logger)
	return &Server{app: a, logger: logger, shutdownChan: make(chan struct{}, 1)}, sink
}

func withGemini(srv *Server, gen func(ctx context.Context, term string) (string, error)) {
	srv.app.ExampleService = example.NewService(&mockGemini{generateExample: gen}, srv.app.Analytics, srv.logger)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func termNames(terms []models.Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Name
	}
	return out
}

// --- System ---

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestHandleConfig_MasksAPIKey(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.app.Config.Clients.Gemini.APIKey = "sk-secret-1234"

	rec := httptest.NewRecorder()
	srv.handleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-secret")
	resp := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "****1234", resp["gemini_api_key"])
	assert.Equal(t, "embedded", resp["catalog"])
}

func TestHandleShutdown_ForbiddenInProduction(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.app.Config.Environment = "production"

	rec := httptest.NewRecorder()
	srv.handleShutdown(rec, httptest.NewRequest(http.MethodPost, "/api/shutdown", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleShutdown_SignalsChannel(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleShutdown(rec, httptest.NewRequest(http.MethodPost, "/api/shutdown", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// A second request must not block on the full channel.
	srv.handleShutdown(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/shutdown", nil))

	select {
	case <-srv.ShutdownRequested():
	default:
		t.Fatal("shutdown was not signalled")
	}
}

func TestEndpointCatalog_NamesUniqueAndRoutable(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	seen := map[string]bool{}
	for _, ep := range buildEndpointCatalog() {
		assert.False(t, seen[ep.Name], "duplicate endpoint %s", ep.Name)
		seen[ep.Name] = true

		path := strings.NewReplacer("{id}", "token", "{index}", "0").Replace(ep.Path)
		_, pattern := mux.Handler(httptest.NewRequest(ep.Method, path, nil))
		assert.NotEmpty(t, pattern, "%s %s is not routed", ep.Method, ep.Path)
	}
}

// --- Catalog ---

func TestHandleCatalog_ETag(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleCatalog(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	etag := rec.Header().Get("ETag")
	assert.Equal(t, `"`+srv.app.Catalog.Version()+`"`, etag)
	resp := decode[catalogResponse](t, rec)
	assert.Len(t, resp.Terms, srv.app.Catalog.Len())
	assert.Equal(t, srv.app.Catalog.Categories(), resp.Categories)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	srv.handleCatalog(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestHandleTerms_DefaultListSortedByName(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[termsResponse](t, rec)
	assert.Equal(t, srv.app.Catalog.Len(), resp.Total)
	assert.Equal(t, models.ViewModeAll, resp.State.Mode)
	assert.Equal(t, models.SortByName, resp.State.Sort)
	assert.Equal(t, "AI Agent", resp.Terms[0].Name)
	assert.Nil(t, resp.Groups)
	assert.NotContains(t, rec.Body.String(), `"groups"`)
	assert.Equal(t, srv.app.Catalog.Version(), resp.CatalogVersion)
	assert.Len(t, resp.CategoryCounts, len(srv.app.Catalog.Categories()))
	assert.Len(t, resp.ModeCounts, len(models.ViewModes))
	assert.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestHandleTerms_NoMatchIsEmptyArray(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms?q=xyz-nonexistent", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[map[string]interface{}](t, rec)
	assert.Equal(t, float64(0), resp["total"])
	terms, ok := resp["terms"].([]interface{})
	require.True(t, ok, "terms must be an array, got %T", resp["terms"])
	assert.Empty(t, terms)
}

func TestHandleTerms_ModeInteractive(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms?mode=interactive", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[termsResponse](t, rec)
	assert.Equal(t, []string{"Bias", "Diffusion Model", "Large Language Model (LLM)", "Neural Network", "Token"}, termNames(resp.Terms))
}

func TestHandleTerms_CategoryAndSearch(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/terms?category=Machine+Learning&q=NEURAL", nil)
	rec := httptest.NewRecorder()
	srv.handleTerms(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[termsResponse](t, rec)
	assert.Equal(t, []string{"Neural Network"}, termNames(resp.Terms))
	cat, ok := resp.State.SelectedCategory()
	assert.True(t, ok)
	assert.Equal(t, "Machine Learning", cat)
}

func TestHandleTerms_Grouped(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, query := range []string{"mode=category", "group=true"} {
		t.Run(query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.handleTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms?"+query, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[termsResponse](t, rec)
			require.NotNil(t, resp.Groups)
			groups := *resp.Groups
			require.NotEmpty(t, groups)
			assert.Equal(t, "Foundational Concepts", groups[0].Category)

			var flat []models.Term
			for _, g := range groups {
				assert.NotEmpty(t, g.Terms)
				flat = append(flat, g.Terms...)
			}
			assert.Equal(t, termNames(resp.Terms), termNames(flat))
		})
	}
}

func TestHandleTerms_GroupedNoMatches(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms?mode=category&q=xyz-nonexistent", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	resp := decode[termsResponse](t, rec)
	assert.Equal(t, 0, resp.Total)
	require.NotNil(t, resp.Groups)
	assert.Empty(t, *resp.Groups)
	assert.Contains(t, body, `"groups":[]`)
}

func TestHandleTerms_BadParams(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, query := range []string{"mode=everything", "sort=random", "group=1&mode=guides"} {
		t.Run(query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.handleTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms?"+query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleTerms_ETagVariesWithQuery(t *testing.T) {
	srv, _ := newTestServer(t)

	get := func(target string) string {
		rec := httptest.NewRecorder()
		srv.handleTerms(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec.Header().Get("ETag")
	}
	assert.Equal(t, get("/api/terms?q=token"), get("/api/terms?q=token"))
	assert.NotEqual(t, get("/api/terms?q=token"), get("/api/terms?q=bias"))
}

func TestHandleCategories_CountsIgnoreSelectedCategory(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleCategories(rec, httptest.NewRequest(http.MethodGet, "/api/categories?mode=guides&category=AI+Agents", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []models.CategoryCount `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Categories, 6)

	counts := map[string]int{}
	for _, c := range resp.Categories {
		counts[c.Category] = c.Count
	}
	assert.Equal(t, 1, counts["Machine Learning"])
	assert.Equal(t, 1, counts["Generative AI"])
	assert.Equal(t, 0, counts["AI Agents"])
}

func TestHandleCategoryChart_PNG(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleCategoryChart(rec, httptest.NewRequest(http.MethodGet, "/api/categories/chart.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

// --- Term detail and tools ---

func TestRouteTerms_GetTermWithTools(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.routeTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms/neural-network", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[models.TermDetail](t, rec)
	assert.Equal(t, "Neural Network", detail.Name)
	assert.Nil(t, detail.HTML)
	require.Len(t, detail.Tools, 2)
	assert.Equal(t, models.PresentationEmbedded, detail.Tools[0].Presentation)
	assert.Equal(t, "Launch: TensorFlow Playground", detail.Tools[0].Label)
	assert.Equal(t, models.PresentationNewContext, detail.Tools[1].Presentation)
	assert.Equal(t, "Guide: Neural Networks Explained", detail.Tools[1].Label)
}

func TestRouteTerms_RenderHTML(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.routeTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms/token?render=html", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[models.TermDetail](t, rec)
	require.NotNil(t, detail.HTML)
	assert.Contains(t, detail.HTML.SimpleDefinition, "<p>")
	assert.Equal(t, 1, srv.app.Rendered.Len())
}

func TestRouteTerms_UnknownTerm(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/terms/nope", "/api/terms/nope/tools"} {
		rec := httptest.NewRecorder()
		srv.routeTerms(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Term 'nope' not found")
	}
}

func TestRouteTerms_UnknownSubpath(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.routeTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms/token/history", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteTerms_ListTools(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.routeTerms(rec, httptest.NewRequest(http.MethodGet, "/api/terms/token/tools", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Term  string              `json:"term"`
		Tools []models.ToolLaunch `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "token", resp.Term)
	require.Len(t, resp.Tools, 1)
	assert.Equal(t, models.PresentationNewContext, resp.Tools[0].Presentation)
	assert.Equal(t, "https://platform.openai.com/tokenizer", resp.Tools[0].URL)
}

func TestRouteTerms_LaunchTracksEvent(t *testing.T) {
	srv, sink := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.routeTerms(rec, httptest.NewRequest(http.MethodPost, "/api/terms/neural-network/tools/0/launch", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	launch := decode[models.ToolLaunch](t, rec)
	assert.Equal(t, models.PresentationEmbedded, launch.Presentation)
	assert.Equal(t, "https://playground.tensorflow.org", launch.URL)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventToolLaunchClick, events[0].name)
	assert.Equal(t, "TensorFlow Playground", events[0].params["tool_name"])
	assert.Equal(t, "Neural Network", events[0].params["term"])
}

func TestRouteTerms_LaunchErrors(t *testing.T) {
	srv, sink := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/terms/neural-network/tools/2/launch", http.StatusNotFound},
		{http.MethodPost, "/api/terms/neural-network/tools/-1/launch", http.StatusNotFound},
		{http.MethodPost, "/api/terms/neural-network/tools/first/launch", http.StatusBadRequest},
		{http.MethodPost, "/api/terms/nope/tools/0/launch", http.StatusNotFound},
		{http.MethodGet, "/api/terms/neural-network/tools/0/launch", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.routeTerms(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
	assert.Empty(t, sink.all())
}

func TestHandleSuggestions(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleSuggestions(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions?q=to", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Suggestions, "Token")
	assert.Contains(t, resp.Suggestions, "Tool Use")

	rec = httptest.NewRecorder()
	srv.handleSuggestions(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions?q=to&limit=1", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Suggestions, 1)

	rec = httptest.NewRecorder()
	srv.handleSuggestions(rec, httptest.NewRequest(http.MethodGet, "/api/suggestions", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Suggestions)
	assert.Empty(t, resp.Suggestions)
}

// --- Examples ---

func TestHandleExamples_Unavailable(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleExamples(rec, httptest.NewRequest(http.MethodPost, "/api/examples", jsonBody(t, map[string]string{"term": "Token"})))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, example.FailureMessage, decode[ErrorResponse](t, rec).Error)
}

func TestHandleExamples_Success(t *testing.T) {
	srv, sink := newTestServer(t)
	withGemini(srv, func(ctx context.Context, term string) (string, error) {
		return "A token is like a syllable for " + term, nil
	})

	rec := httptest.NewRecorder()
	srv.handleExamples(rec, httptest.NewRequest(http.MethodPost, "/api/examples", jsonBody(t, map[string]string{"term": " Token "})))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.ExampleResult](t, rec)
	assert.Equal(t, "Token", resp.Term)
	assert.Equal(t, "A token is like a syllable for Token", resp.Example)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventGenerateExample, events[0].name)
}

func TestHandleExamples_UpstreamFailure(t *testing.T) {
	srv, _ := newTestServer(t)
	withGemini(srv, func(ctx context.Context, term string) (string, error) {
		return "", errors.New("quota exceeded")
	})

	rec := httptest.NewRecorder()
	srv.handleExamples(rec, httptest.NewRequest(http.MethodPost, "/api/examples", jsonBody(t, map[string]string{"term": "Token"})))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "quota")
	assert.Equal(t, example.FailureMessage, decode[ErrorResponse](t, rec).Error)
}

func TestHandleExamples_InvalidTerm(t *testing.T) {
	srv, _ := newTestServer(t)
	withGemini(srv, func(ctx context.Context, term string) (string, error) {
		t.Fatal("generation must not be attempted")
		return "", nil
	})

	rec := httptest.NewRecorder()
	srv.handleExamples(rec, httptest.NewRequest(http.MethodPost, "/api/examples", jsonBody(t, map[string]string{"term": "   "})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Term requests ---

func TestHandleTermRequests_MissingName(t *testing.T) {
	srv, sink := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleTermRequests(rec, httptest.NewRequest(http.MethodPost, "/api/term-requests", jsonBody(t, map[string]string{"simpleDefinition": "x"})))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[models.SubmissionResult](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, termrequest.MsgTermNameRequired, resp.Message)
	assert.Empty(t, sink.all())
}

func TestHandleTermRequests_InvalidToolURL(t *testing.T) {
	srv, _ := newTestServer(t)

	body := jsonBody(t, map[string]string{"termName": "Embedding", "interactiveToolUrl": "not a url"})
	rec := httptest.NewRecorder()
	srv.handleTermRequests(rec, httptest.NewRequest(http.MethodPost, "/api/term-requests", body))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, termrequest.MsgInvalidToolURL, decode[models.SubmissionResult](t, rec).Message)
}

func TestHandleTermRequests_Accepted(t *testing.T) {
	srv, sink := newTestServer(t)

	body := jsonBody(t, map[string]string{
		"termName":           "Embedding",
		"simpleDefinition":   "A list of numbers that captures meaning.",
		"interactiveToolUrl": "https://projector.tensorflow.org",
	})
	rec := httptest.NewRecorder()
	srv.handleTermRequests(rec, httptest.NewRequest(http.MethodPost, "/api/term-requests", body))
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := decode[models.SubmissionResult](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, `Thanks! Your request for "Embedding" has been received.`, resp.Message)
	assert.True(t, strings.HasPrefix(resp.RequestID, "req_"))
	assert.True(t, strings.HasPrefix(resp.Mailto, "mailto:"+srv.app.Config.Requests.RecipientEmail+"?"))

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTermRequestSubmit, events[0].name)
	assert.Equal(t, "true", events[0].params["has_tool"])
}

func TestHandleTermRequests_SubmitterFailure(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.app.TermRequestService = termrequest.NewService(&mockSubmitter{err: errors.New("smtp down")}, termrequest.Mailer{}, srv.app.Analytics, srv.logger)

	rec := httptest.NewRecorder()
	srv.handleTermRequests(rec, httptest.NewRequest(http.MethodPost, "/api/term-requests", jsonBody(t, map[string]string{"termName": "Embedding"})))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	resp := decode[models.SubmissionResult](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, submitFailureMessage, resp.Message)
}

// --- Events ---

func TestHandleEvents_Accepted(t *testing.T) {
	srv, sink := newTestServer(t)

	body := jsonBody(t, models.AnalyticsEvent{Event: models.EventSearch, Params: map[string]string{"search_term": "token"}})
	rec := httptest.NewRecorder()
	srv.handleEvents(rec, httptest.NewRequest(http.MethodPost, "/api/events", body))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, decode[map[string]bool](t, rec)["accepted"])

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventSearch, events[0].name)
	assert.Equal(t, "token", events[0].params["search_term"])
}

func TestHandleEvents_Rejected(t *testing.T) {
	srv, sink := newTestServer(t)

	for _, ev := range []string{"", "   ", "purchase", models.EventTermRequestSubmit} {
		rec := httptest.NewRecorder()
		srv.handleEvents(rec, httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, models.AnalyticsEvent{Event: ev})))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "event %q", ev)
	}
	assert.Empty(t, sink.all())
}

func TestSanitizeParams(t *testing.T) {
	params := map[string]string{
		"":                      "dropped",
		strings.Repeat("k", 41): "dropped",
		"long":                  strings.Repeat("é", 150),
		"term":                  "Token",
	}
	for i := 0; i < 30; i++ {
		params[string(rune('a'+i%26))+strings.Repeat("x", i/26)] = "v"
	}

	got := sanitizeParams(params)

	assert.Len(t, got, maxEventParams)
	assert.NotContains(t, got, "")
	assert.Equal(t, []rune(strings.Repeat("é", 100)), []rune(got["long"]))
}

// --- Full stack ---

func TestServerHandler_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := NewServer(srv.app).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/terms?q=token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req = httptest.NewRequest(http.MethodGet, "/api/terms?q=token", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}
