package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardroom/cardroom/internal/dependencies/clock"
	"github.com/cardroom/cardroom/internal/dependencies/random"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/storage"
)

const (
	// maxCommitAttempts bounds the optimistic retry loop on the game
	// record; exhaustion surfaces model.ErrContention
	maxCommitAttempts = 5
	// maxRecordAttempts bounds retries of the player sub-record write,
	// which never unwinds a committed roster append
	maxRecordAttempts = 3
)

// JoinResult reports the committed state after a join. AlreadyJoined marks
// the idempotent case: the identity was on the roster before this call.
type JoinResult struct {
	Game          *model.Game
	Player        *model.Player
	AlreadyJoined bool
}

// Controller adds identities to game rosters. All roster mutations go
// through the store's conditional save so concurrent joins serialize
// instead of overwriting each other.
type Controller struct {
	storage storage.Storage
	bus     *feed.Bus
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new membership Controller
func NewController(
	storage storage.Storage,
	bus *feed.Bus,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		bus:     bus,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "membership")),
	}
}

// NewPlayerRecord builds the sub-record created when an identity joins:
// starting coins and a two-card hand dealt from the influence deck. The
// cards are placeholders until the rules engine takes over.
func NewPlayerRecord(gameID model.GameID, id model.PlayerID, name string, clk clock.Clock, rnd random.Random) *model.Player {
	if name == "" {
		name = model.DefaultPlayerName
	}
	cards := make([]model.CardID, model.InitialCards)
	for i := range cards {
		cards[i] = model.InfluenceDeck[rnd.Intn(len(model.InfluenceDeck))]
	}
	return &model.Player{
		GameID:    gameID,
		ID:        id,
		Name:      name,
		Coins:     model.InitialCoins,
		Cards:     cards,
		CreatedAt: clk.Now(),
	}
}

// Join appends the identity to the game's roster exactly once. The
// read-check-append runs as a conditional save retried against fresh state
// on conflict, so two concurrent joins both land and a duplicate join is a
// no-op. Precondition failures reflect the latest committed record, never a
// stale read.
func (c *Controller) Join(ctx context.Context, gameID model.GameID, identity model.PlayerID, displayName string) (*JoinResult, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		game, err := c.storage.GetGame(ctx, gameID)
		if err != nil {
			if errors.Is(err, model.ErrGameNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}

		if game.HasPlayer(identity) {
			player, err := c.ensurePlayerRecord(ctx, game, identity, displayName)
			if err != nil {
				return nil, err
			}
			return &JoinResult{Game: game, Player: player, AlreadyJoined: true}, nil
		}

		if game.Status != model.GameStatusWaiting {
			return nil, model.ErrGameNotJoinable
		}
		if game.IsFull() {
			return nil, model.ErrGameFull
		}

		game.Players = append(game.Players, identity)
		game.UpdatedAt = c.clock.Now()

		err = c.storage.CompareAndSaveGame(ctx, game)
		if errors.Is(err, model.ErrVersionConflict) {
			c.logger.Debug("roster write conflicted, retrying",
				slog.String("game_id", string(gameID)),
				slog.String("player_id", string(identity)),
				slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}

		// Roster is committed; the sub-record follows and is never unwound
		c.bus.PublishGame(game)

		player := NewPlayerRecord(gameID, identity, displayName, c.clock, c.random)
		if err := c.savePlayerRecord(ctx, player); err != nil {
			// The identity stays on the roster; a retried join takes the
			// idempotent path and recreates the record
			return nil, err
		}
		c.bus.PublishPlayer(player)

		c.logger.Info("player joined",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(identity)),
			slog.Int("roster_size", len(game.Players)))

		return &JoinResult{Game: game, Player: player}, nil
	}

	return nil, model.ErrContention
}

// Roster returns the game's player records in roster (turn) order. A roster
// entry whose record has not materialized yet surfaces as a pending
// placeholder rather than an error.
func (c *Controller) Roster(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	records, err := c.storage.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	byID := make(map[model.PlayerID]*model.Player, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	roster := make([]*model.Player, 0, len(game.Players))
	for _, id := range game.Players {
		if record, ok := byID[id]; ok {
			roster = append(roster, record)
			continue
		}
		roster = append(roster, &model.Player{GameID: gameID, ID: id})
	}
	return roster, nil
}

func (c *Controller) savePlayerRecord(ctx context.Context, player *model.Player) error {
	var err error
	for attempt := 1; attempt <= maxRecordAttempts; attempt++ {
		if err = c.storage.SavePlayer(ctx, player); err == nil {
			return nil
		}
	}
	c.logger.Warn("player record write failed after retries",
		slog.String("game_id", string(player.GameID)),
		slog.String("player_id", string(player.ID)),
		slog.String("error", err.Error()))
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}

// ensurePlayerRecord backs the idempotent join path. It also repairs the
// transient roster-entry-without-record state left by an interrupted join.
func (c *Controller) ensurePlayerRecord(ctx context.Context, game *model.Game, identity model.PlayerID, displayName string) (*model.Player, error) {
	player, err := c.storage.GetPlayer(ctx, game.ID, identity)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	player = NewPlayerRecord(game.ID, identity, displayName, c.clock, c.random)
	if err := c.savePlayerRecord(ctx, player); err != nil {
		return nil, err
	}
	c.bus.PublishPlayer(player)

	c.logger.Info("player record repaired",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(identity)))

	return player, nil
}
