package models

import "time"

// TermRequest is a visitor's proposal for a new glossary term.
type TermRequest struct {
	TermName                   string `json:"termName"`
	SimpleDefinition           string `json:"simpleDefinition,omitempty"`
	Elaboration                string `json:"elaboration,omitempty"`
	WhyItMatters               string `json:"whyItMatters,omitempty"`
	InteractiveToolName        string `json:"interactiveToolName,omitempty"`
	InteractiveToolURL         string `json:"interactiveToolUrl,omitempty"`
	InteractiveToolDescription string `json:"interactiveToolDescription,omitempty"`
}

// HasTool reports whether any proposed-tool field is filled in.
func (r *TermRequest) HasTool() bool {
	return r.InteractiveToolName != "" || r.InteractiveToolURL != "" || r.InteractiveToolDescription != ""
}

// SubmissionResult is returned for every term request, accepted or not.
type SubmissionResult struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	RequestID   string    `json:"request_id,omitempty"`
	Mailto      string    `json:"mailto,omitempty"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
}

// SubmittedTermRequest is a validated request as handed to a submitter.
type SubmittedTermRequest struct {
	ID          string      `json:"id"`
	Request     TermRequest `json:"request"`
	SubmittedAt time.Time   `json:"submitted_at"`
}
