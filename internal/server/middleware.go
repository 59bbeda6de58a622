package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"github.com/bobmcallan/lexicon/internal/common"
)

type middleware func(http.Handler) http.Handler

// chain wraps h so that mws run in the order given.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type correlationKey struct{}

// CorrelationID returns the request's correlation ID, or "" outside a request.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// statusRecorder captures the status code and body size for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func recoveryMiddleware(logger *common.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprint(rec)).
						Str("path", r.URL.Path).
						Str("correlation_id", CorrelationID(r.Context())).
						Str("stack", string(debug.Stack())).
						Msg("Panic recovered in HTTP handler")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware allows the listed origins, or any origin when the list is
// empty or contains "*". Preflight requests stop here with 204.
func corsMiddleware(allowed []string) middleware {
	allowAll := len(allowed) == 0 || slices.Contains(allowed, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(allowed, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match, X-Request-ID, X-Correlation-ID")
			h.Set("Access-Control-Expose-Headers", "ETag, X-Correlation-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// correlationIDMiddleware takes X-Request-ID or X-Correlation-ID from the
// request, or makes one up, and echoes it in the response.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = strings.TrimSpace(r.Header.Get("X-Correlation-ID"))
		}
		if id == "" {
			id = uuid.New().String()[:8]
		}
		w.Header().Set("X-Correlation-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), correlationKey{}, id)))
	})
}

// loggingMiddleware logs 5xx at error, 4xx at info and the rest at trace.
func loggingMiddleware(logger *common.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sr, r)

			event := logger.Trace()
			switch {
			case sr.status >= 500:
				event = logger.Error()
			case sr.status >= 400:
				event = logger.Info()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", sr.status).
				Int("bytes", sr.bytes).
				Dur("duration", time.Since(start)).
				Str("correlation_id", CorrelationID(r.Context())).
				Msg("HTTP request")
		})
	}
}

// gzipMiddleware compresses responses for clients that accept gzip. Small
// bodies and already-compressed types such as PNG pass through.
func gzipMiddleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// wrap applies the middleware stack, outermost first.
func (s *Server) wrap(handler http.Handler) http.Handler {
	return chain(handler,
		recoveryMiddleware(s.logger),
		corsMiddleware(s.app.Config.Server.AllowedOrigins),
		correlationIDMiddleware,
		loggingMiddleware(s.logger),
		gzipMiddleware,
	)
}
