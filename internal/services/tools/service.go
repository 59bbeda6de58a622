// Package tools decides how interactive tool references are launched
package tools

import (
	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/interfaces"
	"github.com/bobmcallan/lexicon/internal/models"
)

// Compile-time interface check
var _ interfaces.ToolService = (*Service)(nil)

// Button label prefixes
const (
	LaunchPrefix = "Launch: "
	GuidePrefix  = "Guide: "
)

// Service implements ToolService
type Service struct {
	sink   interfaces.AnalyticsSink
	logger *common.Logger
}

// NewService creates a new tool launch service
func NewService(sink interfaces.AnalyticsSink, logger *common.Logger) *Service {
	return &Service{
		sink:   sink,
		logger: logger,
	}
}

// Describe resolves presentation and label for a tool. Interactive tools
// are embedded; guides and external links open in a new browsing context.
func (s *Service) Describe(tool models.InteractiveTool) models.ToolLaunch {
	if tool.Type == "" {
		tool.Type = models.ToolTypeInteractive
	}

	launch := models.ToolLaunch{
		Tool: tool,
		URL:  tool.URL,
	}
	switch tool.Type {
	case models.ToolTypeGuide:
		launch.Presentation = models.PresentationNewContext
		launch.Label = GuidePrefix + tool.Name
	case models.ToolTypeExternal:
		launch.Presentation = models.PresentationNewContext
		launch.Label = LaunchPrefix + tool.Name
	default:
		launch.Presentation = models.PresentationEmbedded
		launch.Label = LaunchPrefix + tool.Name
	}
	return launch
}

// Launch resolves a tool and records a tool_launch_click event
func (s *Service) Launch(term string, tool models.InteractiveTool) models.ToolLaunch {
	launch := s.Describe(tool)

	s.sink.Track(models.EventToolLaunchClick, map[string]string{
		"tool_name":   launch.Tool.Name,
		"button_type": string(launch.Tool.Type),
		"term":        term,
	})
	s.logger.Debug().Str("term", term).Str("tool", launch.Tool.Name).
		Str("presentation", string(launch.Presentation)).Msg("Tool launched")

	return launch
}

// DescribeAll resolves every tool of a term in order
func (s *Service) DescribeAll(tools []models.InteractiveTool) []models.ToolLaunch {
	out := make([]models.ToolLaunch, 0, len(tools))
	for _, t := range tools {
		out = append(out, s.Describe(t))
	}
	return out
}
