package server

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrorResponse is the body written by WriteError.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes data as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// RequireMethod reports whether r uses one of methods, writing a 405 with
// an Allow header when it does not.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	if slices.Contains(methods, r.Method) {
		return true
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON decodes a request body of at most 1MB into v, writing a 400
// and returning false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// pathSegments returns the non-empty segments of the path after prefix,
// or nil when the path does not start with prefix.
func pathSegments(r *http.Request, prefix string) []string {
	rest, ok := strings.CutPrefix(r.URL.Path, prefix)
	if !ok {
		return nil
	}
	var out []string
	for _, seg := range strings.Split(rest, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// parseIntParam reads an integer query parameter, returning def when the
// parameter is absent or malformed.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// parseBoolParam reads a boolean query parameter ("1", "true", "yes").
func parseBoolParam(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// notModified sets the ETag header and reports whether the request's
// If-None-Match already matches it. When it does, a 304 has been written.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}
