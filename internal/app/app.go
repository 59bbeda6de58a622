package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/lexicon/internal/analytics"
	"github.com/bobmcallan/lexicon/internal/catalog"
	"github.com/bobmcallan/lexicon/internal/clients/gemini"
	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/interfaces"
	"github.com/bobmcallan/lexicon/internal/models"
	"github.com/bobmcallan/lexicon/internal/render"
	"github.com/bobmcallan/lexicon/internal/services/browse"
	"github.com/bobmcallan/lexicon/internal/services/example"
	"github.com/bobmcallan/lexicon/internal/services/termrequest"
	"github.com/bobmcallan/lexicon/internal/services/tools"
)

// App holds the loaded catalog and all initialized services and clients.
// It is the shared core used by cmd/lexicon-server and cmd/lexicon.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Catalog            *catalog.Catalog
	GeminiClient       interfaces.GeminiClient
	Analytics          interfaces.AnalyticsSink
	BrowseService      interfaces.BrowseService
	ToolService        interfaces.ToolService
	ExampleService     interfaces.ExampleService
	TermRequestService interfaces.TermRequestService
	Rendered           *render.Cache
	StartupTime        time.Time

	closeAnalytics func() error
	warmCancel     context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: explicit path, LEXICON_CONFIG,
// lexicon.toml beside the binary, then config/lexicon.toml.
func ResolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("LEXICON_CONFIG"); env != "" {
		return env
	}
	candidate := filepath.Join(getBinaryDir(), "lexicon.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return "config/lexicon.toml" // fallback for development
}

// NewApp loads configuration and initializes the App.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	return NewAppWithConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig initializes the App from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	cat, err := catalog.Open(config.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	for _, id := range cat.UncategorisedTerms() {
		logger.Warn().Str("term", id).Msg("Term category is not in the category list; it will never match a category filter")
	}

	sink, closeAnalytics, err := analytics.NewFromConfig(config.Analytics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analytics: %w", err)
	}

	var geminiClient interfaces.GeminiClient
	if config.Clients.Gemini.APIKey == "" {
		logger.Warn().Msg("Gemini API key not configured - example generation will be unavailable")
	} else {
		gc, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = gc
		}
	}

	engine := browse.NewEngine(cat.Categories(), browse.Options{
		Locale:                 config.Browse.Locale,
		CategoryOrder:          browse.CategoryOrder(config.Browse.CategoryOrder),
		AlphabeticalInCategory: config.Browse.AlphabeticalInCategory,
		DefaultSort:            models.SortOrder(config.Browse.DefaultSort),
	})

	mailer := termrequest.Mailer{
		Recipient:     config.Requests.RecipientEmail,
		SubjectPrefix: config.Requests.SubjectPrefix,
	}

	a := &App{
		Config:             config,
		Logger:             logger,
		Catalog:            cat,
		GeminiClient:       geminiClient,
		Analytics:          sink,
		BrowseService:      engine,
		ToolService:        tools.NewService(sink, logger),
		ExampleService:     example.NewService(geminiClient, sink, logger),
		TermRequestService: termrequest.NewService(termrequest.NewLogSubmitter(logger), mailer, sink, logger),
		Rendered:           render.NewCache(render.NewMarkdown()),
		StartupTime:        startupStart,
		closeAnalytics:     closeAnalytics,
	}

	logger.Info().
		Int("terms", cat.Len()).
		Int("categories", len(cat.Categories())).
		Str("catalog_version", cat.Version()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel warm-up, flush analytics.
func (a *App) Close() {
	if a.warmCancel != nil {
		a.warmCancel()
		a.warmCancel = nil
	}
	if a.closeAnalytics != nil {
		if err := a.closeAnalytics(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to flush analytics")
		}
		a.closeAnalytics = nil
	}
}

// StartWarmCache renders every term's markdown in the background so the
// first detail request does not pay for it.
func (a *App) StartWarmCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	a.warmCancel = cancel
	go func() {
		defer cancel()
		warmCache(ctx, a.Catalog, a.Rendered, a.Logger)
	}()
}
