package common

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ternarybob/banner"
)

var lexiconArt = []string{
	` 888      8888888888 Y88b   d88P 8888888  .d8888b.   .d88888b.  888b    888`,
	` 888      888         Y88b d88P    888   d88P  Y88b d88P" "Y88b 8888b   888`,
	` 888      8888888      Y88o88P     888   888        888     888 888Y88b 888`,
	` 888      888          d88P"88b    888   888    888 888     888 888 "Y88888`,
	` 88888888 8888888888  d88P   Y88b 8888888 "Y8888P"   "Y88888P"  888    Y888`,
}

// bannerPrinter writes coloured rules and key/value rows.
type bannerPrinter struct {
	w     io.Writer
	width int
}

func (p bannerPrinter) rule() {
	fmt.Fprintf(p.w, "%s%s%s\n", banner.ColorCyan, strings.Repeat("═", p.width), banner.ColorReset)
}

func (p bannerPrinter) text(s string) {
	fmt.Fprintf(p.w, "%s%s%s\n", banner.ColorBold+banner.ColorWhite, s, banner.ColorReset)
}

func (p bannerPrinter) rows(kv [][2]string) {
	for _, row := range kv {
		p.text(fmt.Sprintf("  %-16s %s", row[0], row[1]))
	}
}

// startupRows lists what the startup banner reports.
func startupRows(config *Config, termCount int) [][2]string {
	catalogSource := config.Catalog.Path
	if catalogSource == "" {
		catalogSource = "embedded"
	}
	examples := "disabled"
	if config.Clients.Gemini.APIKey != "" {
		examples = config.Clients.Gemini.Model
	}
	requests := "log only"
	if config.Requests.RecipientEmail != "" {
		requests = config.Requests.RecipientEmail
	}

	build := CurrentBuild()
	return [][2]string{
		{"Version", build.Version},
		{"Build", build.Build},
		{"Commit", build.Commit},
		{"Environment", config.Environment},
		{"Service URL", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)},
		{"Catalog", catalogSource},
		{"Terms", strconv.Itoa(termCount)},
		{"Examples", examples},
		{"Requests", requests},
		{"Analytics", config.Analytics.Provider},
	}
}

// PrintBanner writes the startup banner to w and logs the same facts.
func PrintBanner(w io.Writer, config *Config, logger *Logger, termCount int) {
	p := bannerPrinter{w: w, width: 76}
	rows := startupRows(config, termCount)

	fmt.Fprintln(w)
	p.rule()
	fmt.Fprintln(w)
	for _, line := range lexiconArt {
		p.text(line)
	}
	fmt.Fprintln(w)
	p.text("  AI Glossary Service")
	fmt.Fprintln(w)
	p.rule()
	fmt.Fprintln(w)
	p.rows(rows)
	fmt.Fprintln(w)
	p.rule()
	fmt.Fprintln(w)

	event := logger.Info()
	for _, row := range rows {
		event = event.Str(strings.ToLower(strings.ReplaceAll(row[0], " ", "_")), row[1])
	}
	event.Msg("Application started")
}

// PrintShutdownBanner writes the shutdown banner to w.
func PrintShutdownBanner(w io.Writer, logger *Logger) {
	p := bannerPrinter{w: w, width: 42}
	fmt.Fprintln(w)
	p.rule()
	p.text("  LEXICON: SHUTTING DOWN")
	p.rule()
	fmt.Fprintln(w)

	logger.Info().Msg("Application shutting down")
}
