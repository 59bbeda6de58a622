package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/lexicon/internal/catalog"
	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/render"
)

// warmCache pre-renders term markdown on startup so the first detail query is fast.
func warmCache(ctx context.Context, cat *catalog.Catalog, cache *render.Cache, logger *common.Logger) int {
	// Check env var override
	if os.Getenv("LEXICON_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via LEXICON_WARM_CACHE=off")
		return 0
	}

	start := time.Now()
	rendered := 0
	for _, t := range cat.Terms() {
		if ctx.Err() != nil {
			logger.Warn().Int("rendered", rendered).Msg("Warm cache: cancelled")
			return rendered
		}
		if _, err := cache.Term(t); err != nil {
			logger.Warn().Err(err).Str("term", t.ID).Msg("Warm cache: render failed")
			continue
		}
		rendered++
	}

	logger.Info().Int("terms", rendered).Dur("elapsed", time.Since(start)).Msg("Warm cache: complete")
	return rendered
}
