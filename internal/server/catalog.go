package server

import "github.com/bobmcallan/lexicon/internal/models"

// buildEndpointCatalog returns the index of public endpoints and their
// parameters. Served by GET /api/endpoints so clients can discover the API.
func buildEndpointCatalog() []models.EndpointDefinition {
	termIDParam := models.ParamDefinition{
		Name:        "id",
		Type:        "string",
		Description: "Term identifier, e.g. neural-network.",
		Required:    true,
		In:          "path",
	}

	return []models.EndpointDefinition{
		// --- System ---
		{
			Name:        "health",
			Description: "Liveness check.",
			Method:      "GET",
			Path:        "/api/health",
		},
		{
			Name:        "version",
			Description: "Server version, build and commit.",
			Method:      "GET",
			Path:        "/api/version",
		},
		{
			Name:        "config",
			Description: "Effective configuration with secrets masked.",
			Method:      "GET",
			Path:        "/api/config",
		},

		// --- Catalog ---
		{
			Name:        "get_catalog",
			Description: "The whole term catalog with its ordered category list and content version.",
			Method:      "GET",
			Path:        "/api/catalog",
		},
		{
			Name:        "list_categories",
			Description: "Ordered categories with the number of terms matching the current search and view mode.",
			Method:      "GET",
			Path:        "/api/categories",
			Params: []models.ParamDefinition{
				{Name: "q", Type: "string", Description: "Search text", In: "query"},
				{Name: "mode", Type: "string", Description: "View mode: all, interactive, guides, category", In: "query"},
			},
		},
		{
			Name:        "category_chart",
			Description: "PNG bar chart of terms per category.",
			Method:      "GET",
			Path:        "/api/categories/chart.png",
			Params: []models.ParamDefinition{
				{Name: "q", Type: "string", Description: "Search text", In: "query"},
				{Name: "mode", Type: "string", Description: "View mode: all, interactive, guides, category", In: "query"},
			},
		},
		{
			Name:        "list_terms",
			Description: "Filter, sort and optionally group terms for a view state.",
			Method:      "GET",
			Path:        "/api/terms",
			Params: []models.ParamDefinition{
				{Name: "q", Type: "string", Description: "Case-insensitive search over name, definition and elaboration", In: "query"},
				{Name: "category", Type: "string", Description: "Exact category to keep", In: "query"},
				{Name: "mode", Type: "string", Description: "View mode: all, interactive, guides, category (default: all)", In: "query"},
				{Name: "sort", Type: "string", Description: "Ordering: name or category", In: "query"},
				{Name: "group", Type: "boolean", Description: "Group by category (same as mode=category)", In: "query"},
			},
		},
		{
			Name:        "get_term",
			Description: "One term with its tool launch decisions.",
			Method:      "GET",
			Path:        "/api/terms/{id}",
			Params: []models.ParamDefinition{
				termIDParam,
				{Name: "render", Type: "string", Description: "Set to html to include rendered markdown", In: "query"},
			},
		},
		{
			Name:        "list_term_tools",
			Description: "Interactive tools of a term with presentation and button label.",
			Method:      "GET",
			Path:        "/api/terms/{id}/tools",
			Params:      []models.ParamDefinition{termIDParam},
		},
		{
			Name:        "launch_tool",
			Description: "Resolve how a tool opens and record the launch.",
			Method:      "POST",
			Path:        "/api/terms/{id}/tools/{index}/launch",
			Params: []models.ParamDefinition{
				termIDParam,
				{Name: "index", Type: "number", Description: "Zero-based tool position", Required: true, In: "path"},
			},
		},
		{
			Name:        "suggestions",
			Description: "Term names containing the query.",
			Method:      "GET",
			Path:        "/api/suggestions",
			Params: []models.ParamDefinition{
				{Name: "q", Type: "string", Description: "Partial term name", Required: true, In: "query"},
				{Name: "limit", Type: "number", Description: "Maximum suggestions", In: "query"},
			},
		},

		// --- Collaborators ---
		{
			Name:        "generate_example",
			Description: "Generate a practical usage example for a term.",
			Method:      "POST",
			Path:        "/api/examples",
			Params: []models.ParamDefinition{
				{Name: "term", Type: "string", Description: "Term name", Required: true, In: "body"},
			},
		},
		{
			Name:        "request_term",
			Description: "Request a new term. Returns a confirmation and a mailto draft.",
			Method:      "POST",
			Path:        "/api/term-requests",
			Params: []models.ParamDefinition{
				{Name: "termName", Type: "string", Description: "Name of the requested term", Required: true, In: "body"},
				{Name: "simpleDefinition", Type: "string", Description: "Suggested definition", In: "body"},
				{Name: "elaboration", Type: "string", Description: "Longer explanation", In: "body"},
				{Name: "whyItMatters", Type: "string", Description: "Why the term matters", In: "body"},
				{Name: "interactiveToolName", Type: "string", Description: "Proposed tool name", In: "body"},
				{Name: "interactiveToolUrl", Type: "string", Description: "Proposed tool URL (absolute http or https)", In: "body"},
				{Name: "interactiveToolDescription", Type: "string", Description: "Proposed tool description", In: "body"},
			},
		},
		{
			Name:        "track_event",
			Description: "Record a client analytics event.",
			Method:      "POST",
			Path:        "/api/events",
			Params: []models.ParamDefinition{
				{Name: "event", Type: "string", Description: "Event name", Required: true, In: "body"},
				{Name: "params", Type: "object", Description: "String key/value parameters", In: "body"},
			},
		},
	}
}
