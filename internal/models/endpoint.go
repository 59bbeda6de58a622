package models

// EndpointDefinition describes one HTTP endpoint for the self-describing index.
type EndpointDefinition struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Params      []ParamDefinition `json:"params,omitempty"`
}

// ParamDefinition describes one endpoint parameter.
type ParamDefinition struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
	In          string `json:"in"` // "path", "query" or "body"
}
