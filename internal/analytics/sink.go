// Package analytics provides fire-and-forget event sinks.
package analytics

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/interfaces"
)

// Provider names accepted in configuration.
const (
	ProviderNone = "none"
	ProviderLog  = "log"
	ProviderGA4  = "ga4"
)

var (
	_ interfaces.AnalyticsSink = NopSink{}
	_ interfaces.AnalyticsSink = (*LogSink)(nil)
	_ interfaces.AnalyticsSink = (*GA4Sink)(nil)
	_ interfaces.AnalyticsSink = MultiSink{}
)

// NopSink discards every event.
type NopSink struct{}

// Track implements AnalyticsSink.
func (NopSink) Track(string, map[string]string) {}

// LogSink writes each event as a debug log line.
type LogSink struct {
	logger *common.Logger
}

// NewLogSink creates a sink that logs events.
func NewLogSink(logger *common.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Track implements AnalyticsSink.
func (s *LogSink) Track(event string, params map[string]string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%s", k, params[k])
	}
	s.logger.Debug().Str("event", event).Str("params", sb.String()).Msg("Analytics event")
}

// MultiSink fans each event out to every member.
type MultiSink []interfaces.AnalyticsSink

// Track implements AnalyticsSink. Each member gets its own copy of params.
func (m MultiSink) Track(event string, params map[string]string) {
	for _, s := range m {
		s.Track(event, maps.Clone(params))
	}
}

// NewFromConfig builds the sink selected by config. The returned close
// function flushes and releases any background worker.
func NewFromConfig(cfg common.AnalyticsConfig, logger *common.Logger) (interfaces.AnalyticsSink, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderNone:
		return NopSink{}, noop, nil
	case ProviderLog:
		return NewLogSink(logger), noop, nil
	case ProviderGA4:
		ga, err := NewGA4Sink(GA4Config{
			MeasurementID: cfg.MeasurementID,
			APISecret:     cfg.APISecret,
			Endpoint:      cfg.Endpoint,
			QueueSize:     cfg.QueueSize,
			Debug:         cfg.Debug,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return MultiSink{NewLogSink(logger), ga}, ga.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown analytics provider %q: must be none, log or ga4", cfg.Provider)
	}
}
