package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardroom/cardroom/internal/dependencies/clock"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/storage"
)

// maxCommitAttempts bounds the optimistic retry loop, matching the
// membership controller's discipline
const maxCommitAttempts = 5

// StartResult reports the committed state after a start request.
// AlreadyStarted marks the idempotent case: the game was active before this
// call, and the caller observes its current state rather than an error.
type StartResult struct {
	Game           *model.Game
	AlreadyStarted bool
}

// Controller owns the waiting -> active transition. The transition and the
// first-turn assignment commit as one conditional save on the game record,
// so a join racing with a start either lands in the started roster or is
// rejected against the active game.
type Controller struct {
	storage storage.Storage
	bus     *feed.Bus
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new turn Controller
func NewController(
	storage storage.Storage,
	bus *feed.Bus,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		bus:     bus,
		clock:   clock,
		logger:  logger.With(slog.String("component", "turn")),
	}
}

// Start fires the waiting -> active transition: only the host may start,
// the roster needs at least two players, and the first turn goes to the
// roster head. On conflict with a concurrent roster write the transition is
// retried against the refreshed roster, so the committed state always has
// CurrentPlayer equal to the started roster's first entry.
func (c *Controller) Start(ctx context.Context, gameID model.GameID, requester model.PlayerID) (*StartResult, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		game, err := c.storage.GetGame(ctx, gameID)
		if err != nil {
			if errors.Is(err, model.ErrGameNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}

		if game.Status == model.GameStatusActive {
			return &StartResult{Game: game, AlreadyStarted: true}, nil
		}

		if game.Host() != requester {
			return nil, model.ErrNotHost
		}
		if len(game.Players) < model.MinPlayersToStart {
			return nil, model.ErrNotEnoughPlayers
		}

		game.Status = model.GameStatusActive
		game.CurrentPlayer = game.Players[0]
		game.UpdatedAt = c.clock.Now()

		err = c.storage.CompareAndSaveGame(ctx, game)
		if errors.Is(err, model.ErrVersionConflict) {
			c.logger.Debug("start conflicted with concurrent write, retrying",
				slog.String("game_id", string(gameID)),
				slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}

		c.bus.PublishGame(game)

		c.logger.Info("game started",
			slog.String("game_id", string(gameID)),
			slog.String("current_player", string(game.CurrentPlayer)),
			slog.Int("roster_size", len(game.Players)))

		return &StartResult{Game: game}, nil
	}

	return nil, model.ErrContention
}
