package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/cardroom/cardroom/internal/dependencies/clock"
	"github.com/cardroom/cardroom/internal/dependencies/random"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/services/identity"
	"github.com/cardroom/cardroom/internal/services/membership"
	"github.com/cardroom/cardroom/internal/services/registry"
	"github.com/cardroom/cardroom/internal/services/turn"
	"github.com/cardroom/cardroom/internal/storage"
	"github.com/cardroom/cardroom/internal/storage/memory"
	redisstorage "github.com/cardroom/cardroom/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage
	Bus     *feed.Bus

	Clock  clock.Clock
	Random random.Random

	IdentityService      *identity.Service
	RegistryService      *registry.Service
	MembershipController *membership.Controller
	TurnController       *turn.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// IdentityConfig holds configuration for the identity service (optional)
	IdentityConfig identity.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	identityCfg := cfg.IdentityConfig
	if identityCfg.SessionDuration == 0 {
		identityCfg = identity.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), identityCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, identityCfg identity.Config, logger *slog.Logger) *App {
	bus := feed.NewBus(logger)

	identityService := identity.New(store, clk, identityCfg, logger)
	membershipController := membership.NewController(store, bus, clk, rnd, logger)
	registryService := registry.NewService(store, bus, clk, rnd, logger)
	turnController := turn.NewController(store, bus, clk, logger)

	return &App{
		Storage:              store,
		Bus:                  bus,
		Clock:                clk,
		Random:               rnd,
		IdentityService:      identityService,
		RegistryService:      registryService,
		MembershipController: membershipController,
		TurnController:       turnController,
	}
}
