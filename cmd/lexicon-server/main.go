package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bobmcallan/lexicon/internal/app"
	"github.com/bobmcallan/lexicon/internal/common"
	"github.com/bobmcallan/lexicon/internal/server"
)

func main() {
	flags := pflag.NewFlagSet("lexicon-server", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to lexicon.toml (default: $LEXICON_CONFIG, then beside the binary)")
	port := flags.IntP("port", "p", 0, "listen port (overrides config)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		a.Config.Server.Port = *port
	}

	common.PrintBanner(os.Stderr, a.Config, a.Logger, a.Catalog.Len())

	// Start background services
	a.StartWarmCache()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(a)
	a.Logger.Info().
		Str("addr", srv.Addr()).
		Int("terms", a.Catalog.Len()).
		Bool("examples", a.ExampleService.Available()).
		Msg("Server ready")

	if err := srv.Run(ctx, 10*time.Second); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server stopped with error")
	}

	a.Close()
	common.PrintShutdownBanner(os.Stderr, a.Logger)
}
