package memory

import (
	"context"
	"sync"

	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/storage"
)

// Storage is an in-memory implementation of the storage interface with the
// same versioned conditional-save semantics as the Redis backend. Records
// are deep-copied in and out so callers never alias stored state.
type Storage struct {
	mu sync.RWMutex

	games         map[model.GameID]*model.Game
	players       map[playerKey]*model.Player
	identities    map[model.PlayerID]*model.Identity
	accounts      map[model.PlayerID]*model.Account
	usernameIndex map[string]model.PlayerID
}

type playerKey struct {
	gameID   model.GameID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:         make(map[model.GameID]*model.Game),
		players:       make(map[playerKey]*model.Player),
		identities:    make(map[model.PlayerID]*model.Identity),
		accounts:      make(map[model.PlayerID]*model.Account),
		usernameIndex: make(map[string]model.PlayerID),
	}
}

var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return model.ErrGameExists
	}
	game.Version = 1
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) CompareAndSaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.games[game.ID]
	if !ok {
		return model.ErrGameNotFound
	}
	if current.Version != game.Version {
		return model.ErrVersionConflict
	}
	game.Version++
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, game.Clone())
	}
	return games, nil
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[id]
	return ok, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	for key := range s.players {
		if key.gameID == id {
			delete(s.players, key)
		}
	}
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := playerKey{gameID: player.GameID, playerID: player.ID}
	s.players[key] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, gameID model.GameID, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[playerKey{gameID: gameID, playerID: id}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) ListPlayers(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []*model.Player
	for key, player := range s.players {
		if key.gameID == gameID {
			players = append(players, player.Clone())
		}
	}
	return players, nil
}

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *identity
	s.identities[identity.ID] = &copied
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.PlayerID) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	copied := *identity
	return &copied, nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *account
	s.accounts[account.PlayerID] = &copied
	s.usernameIndex[account.Username] = account.PlayerID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, playerID model.PlayerID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[playerID]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	account, ok := s.accounts[playerID]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	copied := *account
	return &copied, nil
}
