package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/cardroom/cardroom/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GameTTL = time.Hour
	cfg.GuestIdentityTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newGame(id model.GameID, players ...model.PlayerID) *model.Game {
	return &model.Game{
		ID:        id,
		Status:    model.GameStatusWaiting,
		Players:   players,
		Config:    model.DefaultGameConfig(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Game tests

func (s *StorageSuite) TestCreateAndGetGame() {
	game := s.newGame("ABC123", "alice")

	err := s.storage.CreateGame(s.ctx, game)
	s.Require().NoError(err)
	s.Equal(int64(1), game.Version)

	retrieved, err := s.storage.GetGame(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal([]model.PlayerID{"alice"}, retrieved.Players)
	s.Equal(int64(1), retrieved.Version)
}

func (s *StorageSuite) TestCreateGameDuplicate() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("ABC123", "alice")))

	err := s.storage.CreateGame(s.ctx, s.newGame("ABC123", "bob"))
	s.ErrorIs(err, model.ErrGameExists)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGameHasTTL() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("ABC123", "alice")))
	s.True(s.mini.TTL(gameKey("ABC123")) > 0, "Game record should have TTL")
}

func (s *StorageSuite) TestCompareAndSaveGame() {
	game := s.newGame("ABC123", "alice")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	game.Players = append(game.Players, "bob")
	err := s.storage.CompareAndSaveGame(s.ctx, game)
	s.Require().NoError(err)
	s.Equal(int64(2), game.Version)

	retrieved, _ := s.storage.GetGame(s.ctx, "ABC123")
	s.Equal([]model.PlayerID{"alice", "bob"}, retrieved.Players)
	s.Equal(int64(2), retrieved.Version)
}

func (s *StorageSuite) TestCompareAndSaveGameStaleVersion() {
	game := s.newGame("ABC123", "alice")
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	first, _ := s.storage.GetGame(s.ctx, "ABC123")
	second, _ := s.storage.GetGame(s.ctx, "ABC123")

	first.Players = append(first.Players, "bob")
	s.Require().NoError(s.storage.CompareAndSaveGame(s.ctx, first))

	second.Players = append(second.Players, "carol")
	err := s.storage.CompareAndSaveGame(s.ctx, second)
	s.ErrorIs(err, model.ErrVersionConflict)

	retrieved, _ := s.storage.GetGame(s.ctx, "ABC123")
	s.Equal([]model.PlayerID{"alice", "bob"}, retrieved.Players)
}

func (s *StorageSuite) TestCompareAndSaveGameNotFound() {
	game := s.newGame("GHOST", "alice")
	game.Version = 1
	err := s.storage.CompareAndSaveGame(s.ctx, game)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestListGames() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("AAA111", "alice")))
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("BBB222", "bob")))

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Len(games, 2)
}

func (s *StorageSuite) TestListGamesSkipsExpired() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("AAA111", "alice")))
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("BBB222", "bob")))

	// Simulate one record expiring out from under its index entry
	s.mini.FastForward(2 * time.Hour)
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("CCC333", "carol")))

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Len(games, 1)
	s.Equal(model.GameID("CCC333"), games[0].ID)
}

func (s *StorageSuite) TestDeleteGameRemovesRoster() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("ABC123", "alice")))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{
		GameID: "ABC123", ID: "alice", Name: "Alice", Coins: 2,
		Cards: []model.CardID{"duke", "contessa"},
	}))

	s.Require().NoError(s.storage.DeleteGame(s.ctx, "ABC123"))

	_, err := s.storage.GetGame(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.storage.GetPlayer(s.ctx, "ABC123", "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	games, err := s.storage.ListGames(s.ctx)
	s.Require().NoError(err)
	s.Empty(games)
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		GameID: "ABC123",
		ID:     "alice",
		Name:   "Alice",
		Coins:  2,
		Cards:  []model.CardID{"duke", "captain"},
	}

	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	retrieved, err := s.storage.GetPlayer(s.ctx, "ABC123", "alice")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.Name)
	s.Equal(2, retrieved.Coins)
	s.Equal([]model.CardID{"duke", "captain"}, retrieved.Cards)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "ABC123", "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListPlayers() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{GameID: "ABC123", ID: "alice"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{GameID: "ABC123", ID: "bob"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{GameID: "OTHER1", ID: "carol"}))

	players, err := s.storage.ListPlayers(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Len(players, 2)
}

// Identity tests

func (s *StorageSuite) TestGuestIdentityTTL() {
	guest := &model.Identity{ID: "guest-1", IsGuest: true}
	registered := &model.Identity{ID: "reg-1", IsGuest: false}

	s.Require().NoError(s.storage.SaveIdentity(s.ctx, guest))
	s.Require().NoError(s.storage.SaveIdentity(s.ctx, registered))

	s.True(s.mini.TTL(identityKey(guest.ID)) > 0, "Guest identity should have TTL")
	s.Equal(time.Duration(0), s.mini.TTL(identityKey(registered.ID)), "Registered identity should not have TTL")
}

// Account tests

func (s *StorageSuite) TestSaveAndGetAccountByUsername() {
	account := &model.Account{PlayerID: "p-1", Username: "alice", PasswordHash: "hash123"}
	s.Require().NoError(s.storage.SaveAccount(s.ctx, account))

	retrieved, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p-1"), retrieved.PlayerID)
	s.Equal("hash123", retrieved.PasswordHash)

	_, err = s.storage.GetAccountByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}
