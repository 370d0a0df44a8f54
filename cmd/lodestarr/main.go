package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ddonindia/lodestarr/internal/aggregator"
	"github.com/ddonindia/lodestarr/internal/api"
	"github.com/ddonindia/lodestarr/internal/api/handlers"
	"github.com/ddonindia/lodestarr/internal/config"
	"github.com/ddonindia/lodestarr/internal/database"
	"github.com/ddonindia/lodestarr/internal/definition"
	"github.com/ddonindia/lodestarr/internal/executor"
	"github.com/ddonindia/lodestarr/internal/metrics"
)

const banner = `
   __           __          __
  / /__  ____/ /__  _____/ /_____ ___________
 / / _ \/ __  / _ \/ ___/ __/ __ '/ ___/ ___/
/ /  __/ /_/ /  __(__  ) /_/ /_/ / /  / /
/_/\___/\__,_/\___/____/\__/\__,_/_/  /_/

    Native Torznab Indexer Engine
`

func main() {
	setupLogging()
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting Lodestarr")

	if err := database.Init(cfg.Database.Path); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.Close()

	if cfg.Metrics.Enabled {
		metrics.Register(prometheus.DefaultRegisterer)
	}

	registry := definition.NewRegistry()
	nativeDir := filepath.Join(cfg.Definitions.Directory, "active", "native")
	if err := registry.Load(nativeDir); err != nil {
		log.Warn().Err(err).Msg("Failed to load native indexer definitions")
	}

	agg := aggregator.New(database.Get(), aggregator.Options{
		MaxConcurrency: int64(cfg.Aggregator.MaxConcurrency),
		CacheTTL:       time.Duration(cfg.Aggregator.CacheTTLSecond) * time.Second,
		ResultLimit:    cfg.Aggregator.ResultLimit,
	})

	var buildMu sync.Mutex
	executors := map[string]*executor.Executor{}

	rebuild := func() {
		buildMu.Lock()
		defer buildMu.Unlock()

		cfg := config.Get()
		opts := executor.Options{
			Timeout:   time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
			ProxyURL:  cfg.HTTPClient.ProxyURL,
			UserAgent: cfg.HTTPClient.UserAgent,
		}

		next := map[string]*executor.Executor{}
		var sources []aggregator.Source
		for _, def := range registry.All() {
			overrides, err := database.GetIndexerSettings(def.ID)
			if err != nil {
				log.Warn().Err(err).Str("indexer", def.ID).Msg("Failed to load indexer settings")
			}
			exec, err := executor.New(def, opts, overrides)
			if err != nil {
				log.Warn().Err(err).Str("indexer", def.ID).Msg("Failed to build executor")
				continue
			}
			next[def.ID] = exec
			sources = append(sources, aggregator.NativeSource{IndexerID: def.ID, Exec: exec})
		}

		for _, p := range cfg.Definitions.Proxied {
			if !p.Enabled {
				continue
			}
			sources = append(sources, aggregator.ProxiedSource{
				IndexerID: p.ID,
				BaseURL:   p.BaseURL,
				APIKey:    p.APIKey,
				Client:    &http.Client{Timeout: opts.Timeout},
			})
		}

		for k := range executors {
			delete(executors, k)
		}
		for k, v := range next {
			executors[k] = v
		}

		agg.SetSources(sources)
		log.Info().Int("native", len(next)).Int("proxied", len(sources)-len(next)).Msg("Indexer sources rebuilt")
	}

	rebuild()

	handlers.SetAggregator(agg)
	handlers.SetRegistry(registry)
	handlers.SetExecutors(executors)
	handlers.SetSourceRebuilder(rebuild)

	router := api.NewRouter(cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", addr).Msg("HTTP server listening")
		log.Info().Msgf("Open http://localhost:%d in your browser", cfg.Server.Port)

		if cfg.Server.APIKey != "" {
			log.Info().Str("api_key", cfg.Server.APIKey[:8]+"...").Msg("API Key (first 8 chars)")
		}

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	if !config.IsSetupCompleted() {
		log.Info().Msg("Setup not complete - complete the setup wizard to start searching")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Lodestarr stopped")
}

func setupLogging() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()

	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
