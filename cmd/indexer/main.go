package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/zenlinkpro/zenlink-indexer/internal/config"
	"github.com/zenlinkpro/zenlink-indexer/internal/ethrpc"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/core"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/loader"
	"github.com/zenlinkpro/zenlink-indexer/internal/modules/zenlinkv2"
	"github.com/zenlinkpro/zenlink-indexer/internal/realtime"
	"github.com/zenlinkpro/zenlink-indexer/internal/store"
)

func main() {
	// Parse command-line flags
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logger
	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", "0.1.0").
		Str("config", configPath).
		Str("chain", cfg.Chain.Name).
		Msg("Starting Zenlink Indexer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.NewPostgresStore(ctx, &store.PostgresConfig{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Name:           cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: cfg.Database.MaxConnections,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer st.Close()

	manifestLoader := loader.NewManifestLoader(logger)
	manifests, err := manifestLoader.LoadFromDirectory(cfg.Modules.Dir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Modules.Dir).Msg("Failed to load module manifests")
	}

	registry := core.NewRegistry(logger)
	for _, manifest := range manifests {
		module, err := zenlinkv2.New(manifest, st, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("manifest", manifest.Name).Msg("Failed to create module")
		}

		if cfg.Chain.RPCEndpoint != "" {
			client, err := ethrpc.Dial(ctx, cfg.Chain.RPCEndpoint, logger)
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to connect to chain RPC")
			}
			defer client.Close()
			module.SetBalanceReader(client)
			module.SetMetadataReader(client)
		}

		if cfg.Realtime.Enabled {
			publisher := realtime.NewPublisher(realtime.PublishConfig{
				APIURL: cfg.Realtime.APIURL,
				APIKey: cfg.Realtime.APIKey,
			}, st, logger)
			defer publisher.Close()
			module.SetPublisher(publisher)
		}

		if err := registry.Register(module); err != nil {
			logger.Fatal().Err(err).Str("module", module.Name()).Msg("Failed to register module")
		}
	}

	if err := registry.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start module registry")
	}

	// Block ingestion is an external concern: a delivery pipeline feeds
	// ordered events into registry.Dispatch. Run until interrupted.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	registry.Stop()
	logger.Info().Msg("Indexer shutdown complete")
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set time format
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Parse log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	// Configure output format
	var logger zerolog.Logger
	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05.000",
		}
		logger = zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
	} else {
		logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Caller().Logger()
	}

	return logger
}
