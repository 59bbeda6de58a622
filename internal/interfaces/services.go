package interfaces

import (
	"context"

	"github.com/bobmcallan/lexicon/internal/models"
)

// BrowseService derives display lists from a view state
type BrowseService interface {
	// Query filters, sorts and optionally groups terms
	Query(terms []models.Term, state models.ViewState) models.BrowseResult

	// CategoryCounts counts matching terms per predefined category
	CategoryCounts(terms []models.Term, state models.ViewState) []models.CategoryCount

	// ModeCounts counts matching terms per view mode
	ModeCounts(terms []models.Term, state models.ViewState) []models.ModeCount

	// Suggestions returns term names related to a partial query
	Suggestions(names []string, query string, limit int) []string

	// Categories returns the category list in display order
	Categories() []string
}

// ToolService decides how interactive tools are presented
type ToolService interface {
	// Launch resolves the presentation of a tool and records the launch
	Launch(term string, tool models.InteractiveTool) models.ToolLaunch

	// Describe resolves the presentation of a tool without recording anything
	Describe(tool models.InteractiveTool) models.ToolLaunch

	// DescribeAll resolves every tool in order
	DescribeAll(tools []models.InteractiveTool) []models.ToolLaunch
}

// ExampleService generates usage examples for terms
type ExampleService interface {
	// Generate returns a generated example for the named term
	Generate(ctx context.Context, term string) (*models.ExampleResult, error)

	// Available reports whether a generation backend is configured
	Available() bool
}

// TermRequestSubmitter accepts validated term requests
type TermRequestSubmitter interface {
	Submit(ctx context.Context, req *models.SubmittedTermRequest) error
}

// TermRequestService validates and submits requests for new terms
type TermRequestService interface {
	// Submit validates a request and hands it to the submitter
	Submit(ctx context.Context, req models.TermRequest) (*models.SubmissionResult, error)
}
