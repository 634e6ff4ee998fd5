package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/wallwars-go/internal/availability"
	"github.com/mcoot/wallwars-go/internal/dependencies/clock"
	"github.com/mcoot/wallwars-go/internal/dependencies/random"
	"github.com/mcoot/wallwars-go/internal/rating"
	"github.com/mcoot/wallwars-go/internal/services/game"
	"github.com/mcoot/wallwars-go/internal/services/player"
	"github.com/mcoot/wallwars-go/internal/storage"
	"github.com/mcoot/wallwars-go/internal/storage/memory"
	mongostorage "github.com/mcoot/wallwars-go/internal/storage/mongo"
	pgstorage "github.com/mcoot/wallwars-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/wallwars-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeMongo    = "mongo"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage and its connection state
	Storage      storage.Storage
	Availability availability.Checker

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Engine rating.Engine

	// Services
	PlayerService *player.Service
	GameService   *game.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// Backend settings; the one matching StorageType is required
	RedisConfig    *redisstorage.Config
	MongoConfig    *mongostorage.Config
	PostgresConfig *pgstorage.Config
	// RatingConfig tunes the Glicko-2 engine; zero value means defaults
	RatingConfig rating.Config
}

// New creates a new application with all dependencies wired.
// The store connects in the background: New returns at once and the app serves
// empty reads and drops writes until the connection is ready.
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	store, err := newStorage(storageType, cfg)
	if err != nil {
		return nil, err
	}

	handle := availability.New()
	storeLogger := logger.With(slog.String("storage", storageType))
	err = handle.Connect(ctx, func(ctx context.Context) error {
		if err := store.Connect(ctx); err != nil {
			storeLogger.Error("store connection failed, running without persistence", slog.String("error", err.Error()))
			return err
		}
		storeLogger.Info("store connected")
		return nil
	})
	if err != nil {
		return nil, err
	}

	engine := rating.NewGlicko2(cfg.RatingConfig)
	return newWithDependencies(store, handle, engine, clock.New(), random.New(), logger), nil
}

func newStorage(storageType string, cfg Config) (storage.Storage, error) {
	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeMongo:
		if cfg.MongoConfig == nil {
			return nil, errors.New("MongoConfig required when StorageType is mongo")
		}
		return mongostorage.New(*cfg.MongoConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(*cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis, mongo or postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	avail availability.Checker,
	engine rating.Engine,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	playerService := player.New(store, avail, engine, clk, logger.With(slog.String("service", "player")))
	gameService := game.New(store, avail, playerService, engine, rnd, logger.With(slog.String("service", "game")))

	return &App{
		Storage:       store,
		Availability:  avail,
		Clock:         clk,
		Random:        rnd,
		Engine:        engine,
		PlayerService: playerService,
		GameService:   gameService,
		Logger:        logger,
	}
}

// WaitForStore blocks until the store connection attempt has finished.
// It returns the connection error, or nil when availability is not connection-backed.
func (a *App) WaitForStore(ctx context.Context) error {
	w, ok := a.Availability.(interface{ Wait(context.Context) error })
	if !ok {
		return nil
	}
	return w.Wait(ctx)
}

// Close waits for background game stores and then releases the store
func (a *App) Close(ctx context.Context) error {
	drainErr := a.GameService.Drain(ctx)
	if drainErr != nil {
		a.Logger.Warn("background game stores still running at shutdown", slog.String("error", drainErr.Error()))
	}
	return errors.Join(drainErr, a.Storage.Close())
}
