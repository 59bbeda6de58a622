package models

// Presentation is how a launched tool is shown to the visitor.
type Presentation string

// Presentation constants.
const (
	PresentationEmbedded   Presentation = "embedded"
	PresentationNewContext Presentation = "new_context"
)

// ToolLaunch is the resolved launch decision for one tool reference.
type ToolLaunch struct {
	Tool         InteractiveTool `json:"tool"`
	Presentation Presentation    `json:"presentation"`
	URL          string          `json:"url"`
	Label        string          `json:"label"`
}
