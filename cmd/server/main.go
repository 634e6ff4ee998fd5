package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/wallwars-go/internal/api"
	"github.com/mcoot/wallwars-go/internal/config"
	"github.com/mcoot/wallwars-go/internal/factory"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:   "wallwars-server",
		Short: "Wall Wars player and game records server",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(run(configPath))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (default ./config.yaml if present)")

	if err := cmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func run(configPath string) int {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("failed to load .env", slog.String("error", err.Error()))
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	logger = newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factoryCfg := factory.Config{
		Logger:       logger,
		StorageType:  cfg.Storage.Type,
		RatingConfig: cfg.Rating.Engine(),
	}
	switch cfg.Storage.Type {
	case config.StorageRedis:
		c := cfg.Storage.Redis.Backend()
		factoryCfg.RedisConfig = &c
	case config.StorageMongo:
		c := cfg.Storage.Mongo.Backend()
		factoryCfg.MongoConfig = &c
	case config.StoragePostgres:
		c := cfg.Storage.Postgres.Backend()
		factoryCfg.PostgresConfig = &c
	}

	// The store connects in the background; the server starts serving straight away
	app, err := factory.New(context.WithoutCancel(ctx), factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return 1
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		PlayerService: app.PlayerService,
		GameService:   app.GameService,
		Availability:  app.Availability,
	})

	serverConfig := cfg.Server.APIServer()
	server := api.NewServer(router, serverConfig, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
	)

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Requests are finished; let background game stores land before the store closes
	closeCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	return exitCode
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	// Validated by config.Load
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

