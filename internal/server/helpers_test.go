package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireMethod_SetsAllowHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/terms", nil)
	rec := httptest.NewRecorder()

	ok := RequireMethod(rec, req, http.MethodGet, http.MethodHead)

	assert.False(t, ok)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestDecodeJSON_RejectsEmptyAndMalformedBodies(t *testing.T) {
	var v map[string]string

	rec := httptest.NewRecorder()
	assert.False(t, DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/api/events", nil), &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body is required")

	rec = httptest.NewRecorder()
	assert.False(t, DecodeJSON(rec, httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader("{")), &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON")
}

func TestPathSegments(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/terms/token//tools/", nil)
	assert.Equal(t, []string{"token", "tools"}, pathSegments(req, "/api/terms/"))
	assert.Nil(t, pathSegments(req, "/api/other/"))

	req = httptest.NewRequest(http.MethodGet, "/api/terms/", nil)
	assert.Empty(t, pathSegments(req, "/api/terms/"))
}

func TestParseIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/suggestions?limit=3&bad=x", nil)
	assert.Equal(t, 3, parseIntParam(req, "limit", 8))
	assert.Equal(t, 8, parseIntParam(req, "bad", 8))
	assert.Equal(t, 8, parseIntParam(req, "missing", 8))
}

func TestParseBoolParam(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "true": true, "YES": true, "0": false, "": false, "no": false} {
		req := httptest.NewRequest(http.MethodGet, "/api/terms?group="+raw, nil)
		assert.Equal(t, want, parseBoolParam(req, "group"), "group=%q", raw)
	}
}

func TestNotModified(t *testing.T) {
	etag := `"abc"`

	tests := []struct {
		name        string
		ifNoneMatch string
		want        bool
	}{
		{"no header", "", false},
		{"exact", `"abc"`, true},
		{"weak", `W/"abc"`, true},
		{"list", `"zzz", "abc"`, true},
		{"wildcard", "*", true},
		{"different", `"zzz"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
			if tt.ifNoneMatch != "" {
				req.Header.Set("If-None-Match", tt.ifNoneMatch)
			}
			rec := httptest.NewRecorder()

			got := notModified(rec, req, etag)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, etag, rec.Header().Get("ETag"))
			if tt.want {
				assert.Equal(t, http.StatusNotModified, rec.Code)
			}
		})
	}
}

func TestEtagFor_DependsOnEveryPart(t *testing.T) {
	a := etagFor("v1", "terms", "q=token")
	assert.Equal(t, a, etagFor("v1", "terms", "q=token"))
	assert.NotEqual(t, a, etagFor("v2", "terms", "q=token"))
	assert.NotEqual(t, a, etagFor("v1", "terms", "q=bias"))
	assert.True(t, strings.HasPrefix(a, `"`) && strings.HasSuffix(a, `"`))
}
