// Package example generates usage examples for glossary terms
package example

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/interfaces"
	"github.com/bobmcallan/lexicon/internal/models"
)

// MaxTermLength is the longest term name accepted, in runes.
const MaxTermLength = 200

// FailureMessage is shown to visitors whenever generation fails.
const FailureMessage = "Failed to generate example. Please try again later."

var (
	// ErrInvalidTerm is returned for empty or oversized term names.
	ErrInvalidTerm = errors.New("invalid term")
	// ErrUnavailable is returned when no generation backend is configured.
	ErrUnavailable = errors.New("example generation is not available")
	// ErrGeneration wraps any upstream failure.
	ErrGeneration = errors.New("example generation failed")
)

// Compile-time interface check
var _ interfaces.ExampleService = (*Service)(nil)

// Service implements ExampleService. Concurrent requests for the same term
// share one upstream call; nothing is cached, so a failed call can be retried.
type Service struct {
	gemini interfaces.GeminiClient
	sink   interfaces.AnalyticsSink
	logger *common.Logger
	group  singleflight.Group
}

// NewService creates a new example service. gemini may be nil, in which
// case every call returns ErrUnavailable.
func NewService(gemini interfaces.GeminiClient, sink interfaces.AnalyticsSink, logger *common.Logger) *Service {
	return &Service{
		gemini: gemini,
		sink:   sink,
		logger: logger,
	}
}

// Available reports whether a generation backend is configured
func (s *Service) Available() bool {
	return s.gemini != nil
}

// NormalizeTerm trims a term name and checks its length.
func NormalizeTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("%w: term is required", ErrInvalidTerm)
	}
	if utf8.RuneCountInString(term) > MaxTermLength {
		return "", fmt.Errorf("%w: term must be at most %d characters", ErrInvalidTerm, MaxTermLength)
	}
	return term, nil
}

// Generate returns a generated example for the named term
func (s *Service) Generate(ctx context.Context, term string) (*models.ExampleResult, error) {
	term, err := NormalizeTerm(term)
	if err != nil {
		return nil, err
	}
	if s.gemini == nil {
		s.track(term, "unavailable")
		return nil, ErrUnavailable
	}

	// The shared call outlives any one caller; the client's own timeout
	// bounds it. Each caller stops waiting when its own ctx is done.
	ch := s.group.DoChan(term, func() (interface{}, error) {
		return s.gemini.GenerateExample(context.WithoutCancel(ctx), term)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		s.logger.Debug().Str("term", term).Msg("Example request abandoned by caller")
		return nil, ctx.Err()
	}
	if res.Err != nil {
		s.logger.Warn().Err(res.Err).Str("term", term).Msg("Example generation failed")
		s.track(term, "error")
		return nil, fmt.Errorf("%w: %w", ErrGeneration, res.Err)
	}

	s.logger.Info().Str("term", term).Bool("shared", res.Shared).Msg("Example generated")
	s.track(term, "success")
	return &models.ExampleResult{Term: term, Example: res.Val.(string)}, nil
}

func (s *Service) track(term, outcome string) {
	s.sink.Track(models.EventGenerateExample, map[string]string{
		"term":    term,
		"outcome": outcome,
	})
}
