package analytics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/bobmcallan/lexicon/internal/common"
)

const (
	DefaultGA4Endpoint  = "https://www.google-analytics.com/mp/collect"
	DefaultGA4QueueSize = 256
	defaultSendTimeout  = 5 * time.Second
)

// GA4Config configures a Measurement Protocol sink.
type GA4Config struct {
	MeasurementID string
	APISecret     string
	Endpoint      string
	QueueSize     int
	Debug         bool
	ClientID      string
	HTTPClient    *http.Client
}

type ga4Event struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

type ga4Payload struct {
	ClientID string     `json:"client_id"`
	Events   []ga4Event `json:"events"`
}

// GA4Sink posts events to the GA4 Measurement Protocol from a single
// background worker. Events are dropped when the queue is full or the
// sink is closed; delivery errors are logged at debug and otherwise ignored.
type GA4Sink struct {
	endpoint string
	clientID string
	debug    bool
	http     *http.Client
	logger   *common.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan ga4Event
	done   chan struct{}
}

// NewGA4Sink creates the sink and starts its worker.
func NewGA4Sink(cfg GA4Config, logger *common.Logger) (*GA4Sink, error) {
	if cfg.MeasurementID == "" || cfg.APISecret == "" {
		return nil, errors.New("ga4 analytics requires measurement_id and api_secret")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultGA4Endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ga4 endpoint: %w", err)
	}
	q := u.Query()
	q.Set("measurement_id", cfg.MeasurementID)
	q.Set("api_secret", cfg.APISecret)
	u.RawQuery = q.Encode()

	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultGA4QueueSize
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = uuid.New().String()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultSendTimeout}
	}

	s := &GA4Sink{
		endpoint: u.String(),
		clientID: clientID,
		debug:    cfg.Debug,
		http:     httpClient,
		logger:   logger,
		queue:    make(chan ga4Event, size),
		done:     make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Track enqueues an event without blocking.
func (s *GA4Sink) Track(event string, params map[string]string) {
	ev := ga4Event{Name: event, Params: make(map[string]string, len(params)+1)}
	for k, v := range params {
		ev.Params[k] = v
	}
	if s.debug {
		ev.Params["debug_mode"] = "1"
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- ev:
	default:
		s.logger.Debug().Str("event", event).Msg("Analytics queue full, event dropped")
	}
}

// Close stops accepting events, delivers those already queued and waits
// for the worker to exit. It is safe to call more than once.
func (s *GA4Sink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
	return nil
}

func (s *GA4Sink) run() {
	defer close(s.done)
	for ev := range s.queue {
		if err := s.send(ev); err != nil {
			s.logger.Debug().Err(err).Str("event", ev.Name).Msg("Analytics delivery failed")
		}
	}
}

func (s *GA4Sink) send(ev ga4Event) error {
	body, err := json.Marshal(ga4Payload{ClientID: s.clientID, Events: []ga4Event{ev}})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
