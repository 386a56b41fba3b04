package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cardroom/cardroom/internal/dependencies/mocks"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/storage/memory"
	"github.com/cardroom/cardroom/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	bus     *feed.Bus
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.bus = feed.NewBus(logger)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = NewService(s.storage, s.bus, s.clock, s.random, logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreateGame() {
	s.random.QueueString("ABCDEF")

	game, err := s.service.CreateGame(s.ctx, "p_host", "Alice")
	s.Require().NoError(err)
	s.Equal(model.GameID("ABCDEF"), game.ID)
	s.Equal(model.GameStatusWaiting, game.Status)
	s.Equal([]model.PlayerID{"p_host"}, game.Players)
	s.Equal(model.PlayerID("p_host"), game.Host())
	s.Empty(game.CurrentPlayer)
	s.Equal(s.clock.Now(), game.CreatedAt)

	// The host record lands together with the game
	record, err := s.storage.GetPlayer(s.ctx, "ABCDEF", "p_host")
	s.Require().NoError(err)
	s.Equal("Alice", record.Name)
	s.Equal(model.InitialCoins, record.Coins)
}

func (s *ServiceSuite) TestCreateGameRetriesTakenCode() {
	s.random.QueueString("TAKEN1")
	_, err := s.service.CreateGame(s.ctx, "p_first", "First")
	s.Require().NoError(err)

	s.random.QueueString("TAKEN1", "FRESH2")
	game, err := s.service.CreateGame(s.ctx, "p_second", "Second")
	s.Require().NoError(err)
	s.Equal(model.GameID("FRESH2"), game.ID)
}

func (s *ServiceSuite) TestCreateGameGivesUpOnCodeCollisions() {
	s.random.QueueString("TAKEN1")
	_, err := s.service.CreateGame(s.ctx, "p_first", "First")
	s.Require().NoError(err)

	// Every generated code collides; the loop must not spin forever
	s.random.QueueString("TAKEN1", "TAKEN1", "TAKEN1", "TAKEN1", "TAKEN1")
	_, err = s.service.CreateGame(s.ctx, "p_second", "Second")
	s.ErrorIs(err, model.ErrContention)
}

func (s *ServiceSuite) TestCreateGameRollsBackOnRecordFailure() {
	s.random.QueueString("ABCDEF")
	failing := &failingPlayerStorage{Storage: s.storage}
	service := NewService(failing, s.bus, s.clock, s.random, testutil.NopLogger())

	_, err := service.CreateGame(s.ctx, "p_host", "Alice")
	s.ErrorIs(err, model.ErrStoreUnavailable)

	// No orphaned session may survive a failed host record write
	exists, err := s.storage.GameExists(s.ctx, "ABCDEF")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ServiceSuite) TestCreateGamePublishesSnapshots() {
	sub := s.bus.Subscribe(feed.GamesTopic)
	defer sub.Close()

	s.random.QueueString("ABCDEF")
	_, err := s.service.CreateGame(s.ctx, "p_host", "Alice")
	s.Require().NoError(err)

	select {
	case ev := <-sub.Events():
		s.Require().NotNil(ev.Game)
		s.Equal(model.GameID("ABCDEF"), ev.Game.ID)
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for collection snapshot")
	}
}

func (s *ServiceSuite) TestGetGameNotFound() {
	_, err := s.service.GetGame(s.ctx, "NOSUCH")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestListOpenGames() {
	s.random.QueueString("FIRST1")
	first, err := s.service.CreateGame(s.ctx, "p_a", "A")
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	s.random.QueueString("SECND2")
	second, err := s.service.CreateGame(s.ctx, "p_b", "B")
	s.Require().NoError(err)

	// An active game drops out of the open list
	s.clock.Advance(time.Minute)
	s.random.QueueString("THIRD3")
	third, err := s.service.CreateGame(s.ctx, "p_c", "C")
	s.Require().NoError(err)
	third.Players = append(third.Players, "p_d")
	third.Status = model.GameStatusActive
	third.CurrentPlayer = "p_c"
	s.Require().NoError(s.storage.CompareAndSaveGame(s.ctx, third))

	open, err := s.service.ListOpenGames(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(open, 2)
	s.Equal(first.ID, open[0].ID)
	s.Equal(second.ID, open[1].ID)
}

// failingPlayerStorage rejects every player write
type failingPlayerStorage struct {
	*memory.Storage
}

func (f *failingPlayerStorage) SavePlayer(ctx context.Context, player *model.Player) error {
	return errors.New("write refused")
}
