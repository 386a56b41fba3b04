package storage

import (
	"context"

	"github.com/cardroom/cardroom/internal/model"
)

// Storage is the Session Store contract: durable keyed records for games,
// per-game player sub-records, and identity data.
//
// CompareAndSaveGame is the conditional write the membership and turn
// controllers build their retry loops on: the write commits only if the
// stored record is still at the Version the caller read, otherwise it fails
// with model.ErrVersionConflict and nothing is written. On success the
// passed game's Version is advanced to the committed revision.
type Storage interface {
	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	CompareAndSaveGame(ctx context.Context, game *model.Game) error
	ListGames(ctx context.Context) ([]*model.Game, error)
	GameExists(ctx context.Context, id model.GameID) (bool, error)
	DeleteGame(ctx context.Context, id model.GameID) error

	// Player sub-records, keyed (game id, player id)
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, gameID model.GameID, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.Player, error)

	// Identity operations
	SaveIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, id model.PlayerID) (*model.Identity, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, playerID model.PlayerID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
}
