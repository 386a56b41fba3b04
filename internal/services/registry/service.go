package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cardroom/cardroom/internal/dependencies/clock"
	"github.com/cardroom/cardroom/internal/dependencies/random"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/services/membership"
	"github.com/cardroom/cardroom/internal/storage"
)

const (
	// GameCodeLength is the length of generated game codes
	GameCodeLength = 6
	// GameCodeAlphabet is the characters used in game codes (avoid confusing chars)
	GameCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// maxCodeAttempts bounds code generation; exhaustion surfaces
	// model.ErrContention
	maxCodeAttempts = 5
)

// Service creates game sessions and lists open ones
type Service struct {
	storage storage.Storage
	bus     *feed.Bus
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewService creates a new registry Service
func NewService(
	storage storage.Storage,
	bus *feed.Bus,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		bus:     bus,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// CreateGame allocates a waiting game with the host as the roster's sole
// member and creates the host's player record. The two writes must land
// together: if the record write fails the game is rolled back so no orphaned
// session persists.
func (s *Service) CreateGame(ctx context.Context, host model.PlayerID, displayName string) (*model.Game, error) {
	now := s.clock.Now()

	// Generate unique game code
	var id model.GameID
	for attempt := 1; ; attempt++ {
		id = model.GameID(s.random.String(GameCodeLength, GameCodeAlphabet))
		exists, err := s.storage.GameExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}
		if !exists {
			break
		}
		if attempt == maxCodeAttempts {
			s.logger.Warn("game code space exhausted after retries",
				slog.Int("attempts", attempt))
			return nil, model.ErrContention
		}
	}

	game := &model.Game{
		ID:        id,
		Status:    model.GameStatusWaiting,
		Players:   []model.PlayerID{host},
		Config:    model.DefaultGameConfig(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.CreateGame(ctx, game); err != nil {
		if errors.Is(err, model.ErrGameExists) {
			// Lost a race on the code to another creator
			return nil, model.ErrContention
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	hostRecord := membership.NewPlayerRecord(id, host, displayName, s.clock, s.random)
	if err := s.storage.SavePlayer(ctx, hostRecord); err != nil {
		if delErr := s.storage.DeleteGame(ctx, id); delErr != nil {
			s.logger.Error("rollback of orphaned game failed",
				slog.String("game_id", string(id)),
				slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	s.bus.PublishGame(game)
	s.bus.PublishPlayer(hostRecord)

	s.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.String("host", string(host)))

	return game, nil
}

// GetGame retrieves a game by id
func (s *Service) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.storage.GetGame(ctx, id)
}

// ListOpenGames returns a point-in-time snapshot of games accepting joins,
// oldest first. A live view of the same set is a feed.GamesTopic
// subscription filtered the same way.
func (s *Service) ListOpenGames(ctx context.Context) ([]*model.Game, error) {
	games, err := s.storage.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	open := make([]*model.Game, 0, len(games))
	for _, game := range games {
		if game.Status == model.GameStatusWaiting {
			open = append(open, game)
		}
	}

	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	return open, nil
}
