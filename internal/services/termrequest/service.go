// Package termrequest validates and forwards requests for new glossary terms
package termrequest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/interfaces"
	"github.com/bobmcallan/lexicon/internal/models"
)

// Validation messages shown to the requester.
const (
	MsgTermNameRequired = "Term name is required."
	MsgInvalidToolURL   = "Tool URL must be a valid URL."
)

const notProvided = "(not provided)"

// Compile-time interface check
var _ interfaces.TermRequestService = (*Service)(nil)

// ValidationError carries a message fit for display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks required fields and URL shape. It returns the trimmed request.
func Validate(req models.TermRequest) (models.TermRequest, error) {
	req.TermName = strings.TrimSpace(req.TermName)
	req.SimpleDefinition = strings.TrimSpace(req.SimpleDefinition)
	req.Elaboration = strings.TrimSpace(req.Elaboration)
	req.WhyItMatters = strings.TrimSpace(req.WhyItMatters)
	req.InteractiveToolName = strings.TrimSpace(req.InteractiveToolName)
	req.InteractiveToolURL = strings.TrimSpace(req.InteractiveToolURL)
	req.InteractiveToolDescription = strings.TrimSpace(req.InteractiveToolDescription)

	if req.TermName == "" {
		return req, &ValidationError{Field: "termName", Message: MsgTermNameRequired}
	}
	if req.InteractiveToolURL != "" && !validHTTPURL(req.InteractiveToolURL) {
		return req, &ValidationError{Field: "interactiveToolUrl", Message: MsgInvalidToolURL}
	}
	return req, nil
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Mailer builds mailto drafts for term requests.
type Mailer struct {
	Recipient     string
	SubjectPrefix string
}

// Subject returns the draft subject line.
func (m Mailer) Subject(req models.TermRequest) string {
	prefix := m.SubjectPrefix
	if prefix == "" {
		prefix = "New AI Term Request"
	}
	return prefix + ": " + req.TermName
}

// Body returns the plain-text draft body.
func (m Mailer) Body(req models.TermRequest) string {
	or := func(s string) string {
		if s == "" {
			return notProvided
		}
		return s
	}

	var sb strings.Builder
	sb.WriteString("A new term has been requested for the AI Lexicon.\n\n")
	fmt.Fprintf(&sb, "Term Name:\n%s\n\n", req.TermName)
	fmt.Fprintf(&sb, "Simple Definition:\n%s\n\n", or(req.SimpleDefinition))
	fmt.Fprintf(&sb, "Elaboration:\n%s\n\n", or(req.Elaboration))
	fmt.Fprintf(&sb, "Why it Matters:\n%s\n\n", or(req.WhyItMatters))
	sb.WriteString("---\nInteractive Tool Details (Optional)\n---\n\n")
	fmt.Fprintf(&sb, "Tool Name: %s\n", or(req.InteractiveToolName))
	fmt.Fprintf(&sb, "Tool URL: %s\n", or(req.InteractiveToolURL))
	fmt.Fprintf(&sb, "Tool Description: %s\n", or(req.InteractiveToolDescription))
	return sb.String()
}

// Link returns a mailto URL with the subject and body percent-encoded.
func (m Mailer) Link(req models.TermRequest) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		m.Recipient, escape(m.Subject(req)), escape(m.Body(req)))
}

// escape percent-encodes like encodeURIComponent, with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Service implements TermRequestService
type Service struct {
	submitter interfaces.TermRequestSubmitter
	mailer    Mailer
	sink      interfaces.AnalyticsSink
	logger    *common.Logger
	now       func() time.Time
}

// NewService creates a new term request service
func NewService(submitter interfaces.TermRequestSubmitter, mailer Mailer, sink interfaces.AnalyticsSink, logger *common.Logger) *Service {
	return &Service{
		submitter: submitter,
		mailer:    mailer,
		sink:      sink,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates a request and hands it to the submitter. Validation
// failures come back as an unsuccessful result with a nil error; the
// submitter is not called for them.
func (s *Service) Submit(ctx context.Context, req models.TermRequest) (*models.SubmissionResult, error) {
	req, err := Validate(req)
	if err != nil {
		return &models.SubmissionResult{Success: false, Message: err.Error()}, nil
	}

	submitted := &models.SubmittedTermRequest{
		ID:          "req_" + uuid.New().String(),
		Request:     req,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.submitter.Submit(ctx, submitted); err != nil {
		return nil, fmt.Errorf("failed to submit term request: %w", err)
	}

	s.sink.Track(models.EventTermRequestSubmit, map[string]string{
		"term_name": req.TermName,
		"has_tool":  fmt.Sprintf("%t", req.HasTool()),
	})

	return &models.SubmissionResult{
		Success:     true,
		Message:     fmt.Sprintf("Thanks! Your request for \"%s\" has been received.", req.TermName),
		RequestID:   submitted.ID,
		Mailto:      s.mailer.Link(req),
		SubmittedAt: submitted.SubmittedAt,
	}, nil
}

// LogSubmitter records each request as a structured log line.
type LogSubmitter struct {
	logger *common.Logger
}

// NewLogSubmitter creates a submitter that logs requests.
func NewLogSubmitter(logger *common.Logger) *LogSubmitter {
	return &LogSubmitter{logger: logger}
}

// Submit implements TermRequestSubmitter.
func (l *LogSubmitter) Submit(_ context.Context, req *models.SubmittedTermRequest) error {
	l.logger.Info().
		Str("request_id", req.ID).
		Str("term_name", req.Request.TermName).
		Str("simple_definition", req.Request.SimpleDefinition).
		Str("elaboration", req.Request.Elaboration).
		Str("why_it_matters", req.Request.WhyItMatters).
		Str("tool_name", req.Request.InteractiveToolName).
		Str("tool_url", req.Request.InteractiveToolURL).
		Str("tool_description", req.Request.InteractiveToolDescription).
		Msg("Term request received")
	return nil
}
