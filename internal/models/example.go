package models

// ExampleRequest asks for a generated usage example of a term.
type ExampleRequest struct {
	Term string `json:"term"`
}

// ExampleResult carries a generated example.
type ExampleResult struct {
	Term    string `json:"term"`
	Example string `json:"example"`
}

// AnalyticsEvent is a client-reported analytics event.
type AnalyticsEvent struct {
	Event  string            `json:"event"`
	Params map[string]string `json:"params,omitempty"`
}

// Analytics event names.
const (
	EventToolLaunchClick   = "tool_launch_click"
	EventGenerateExample   = "generate_example"
	EventTermRequestSubmit = "term_request_submit"
	EventSearch            = "search"
	EventCategorySelect    = "category_select"
	EventViewModeChange    = "view_mode_change"
	EventTermExpand        = "term_expand"
	EventSubscribeOpen     = "subscribe_open"
)

// ClientEvents is the set of event names browsers may report.
var ClientEvents = map[string]bool{
	EventToolLaunchClick: true,
	EventGenerateExample: true,
	EventSearch:          true,
	EventCategorySelect:  true,
	EventViewModeChange:  true,
	EventTermExpand:      true,
	EventSubscribeOpen:   true,
}
