package render

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/lexicon/internal/models"
)

// RenderCategoryChart renders a PNG bar chart of term counts per category,
// in the given order. Returns raw PNG bytes.
func RenderCategoryChart(counts []models.CategoryCount) ([]byte, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("need at least 1 category, got 0")
	}

	maxCount := 0
	bars := make([]chart.Value, len(counts))
	for i, c := range counts {
		bars[i] = chart.Value{
			Label: c.Category,
			Value: float64(c.Count),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("1d4ed8"), // blue-700
				StrokeWidth: 1,
			},
		}
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	width := 160 * len(counts)
	if width < 480 {
		width = 480
	}

	graph := chart.BarChart{
		Title:    "Terms per Category",
		Width:    width,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		// An explicit range keeps all-zero input renderable.
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
