package server

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/bobmcallan/lexicon/internal/models"
	"github.com/bobmcallan/lexicon/internal/services/example"
)

// Limits applied to client-reported events before they reach the sink.
const (
	maxEventParams     = 25
	maxEventParamKey   = 40
	maxEventParamValue = 100
)

// submitFailureMessage is returned when a valid term request cannot be handed off.
const submitFailureMessage = "Failed to submit request. Please try again later."

// handleExamples handles POST /api/examples.
func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var body models.ExampleRequest
	if !DecodeJSON(w, r, &body) {
		return
	}

	result, err := s.app.ExampleService.Generate(r.Context(), body.Term)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, result)
	case errors.Is(err, example.ErrInvalidTerm):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, example.ErrUnavailable):
		WriteError(w, http.StatusServiceUnavailable, example.FailureMessage)
	default:
		s.logger.Warn().Err(err).Str("term", body.Term).Str("correlation_id", CorrelationID(r.Context())).Msg("Example generation failed")
		WriteError(w, http.StatusBadGateway, example.FailureMessage)
	}
}

// handleTermRequests handles POST /api/term-requests.
func (s *Server) handleTermRequests(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var body models.TermRequest
	if !DecodeJSON(w, r, &body) {
		return
	}

	result, err := s.app.TermRequestService.Submit(r.Context(), body)
	if err != nil {
		s.logger.Error().Err(err).Str("term_name", body.TermName).Str("correlation_id", CorrelationID(r.Context())).Msg("Term request submission failed")
		WriteJSON(w, http.StatusBadGateway, models.SubmissionResult{Success: false, Message: submitFailureMessage})
		return
	}
	if !result.Success {
		WriteJSON(w, http.StatusBadRequest, result)
		return
	}

	WriteJSON(w, http.StatusAccepted, result)
}

// handleEvents handles POST /api/events. Only known client events are
// forwarded; params are trimmed to what the analytics backend accepts.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var body models.AnalyticsEvent
	if !DecodeJSON(w, r, &body) {
		return
	}

	body.Event = strings.TrimSpace(body.Event)
	if body.Event == "" {
		WriteError(w, http.StatusBadRequest, "event is required")
		return
	}
	if !models.ClientEvents[body.Event] {
		WriteError(w, http.StatusBadRequest, "unknown event: "+body.Event)
		return
	}

	s.app.Analytics.Track(body.Event, sanitizeParams(body.Params))
	WriteJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

// sanitizeParams drops empty or oversized keys, truncates long values and
// keeps at most maxEventParams entries, preferring keys in sorted order.
func sanitizeParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.TrimSpace(k) == "" || len(k) > maxEventParamKey {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if len(out) == maxEventParams {
			break
		}
		out[k] = truncateRunes(params[k], maxEventParamValue)
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
