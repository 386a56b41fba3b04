package turn

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cardroom/cardroom/internal/dependencies/mocks"
	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/services/membership"
	"github.com/cardroom/cardroom/internal/storage/memory"
	"github.com/cardroom/cardroom/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	bus        *feed.Bus
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	membership *membership.Controller
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.bus = feed.NewBus(logger)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.membership = membership.NewController(s.storage, s.bus, s.clock, s.random, logger)
	s.controller = NewController(s.storage, s.bus, s.clock, logger)
	s.ctx = context.Background()
}

func (s *ControllerSuite) createWaitingGame(id model.GameID, players ...model.PlayerID) *model.Game {
	game := &model.Game{
		ID:        id,
		Status:    model.GameStatusWaiting,
		Players:   players,
		Config:    model.DefaultGameConfig(),
		CreatedAt: s.clock.Now(),
		UpdatedAt: s.clock.Now(),
	}
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))
	return game
}

func (s *ControllerSuite) TestStart() {
	s.createWaitingGame("ABCDEF", "p_host", "p_bob")

	result, err := s.controller.Start(s.ctx, "ABCDEF", "p_host")
	s.Require().NoError(err)
	s.False(result.AlreadyStarted)
	s.Equal(model.GameStatusActive, result.Game.Status)
	// First turn goes to the roster head, which is always the host here
	s.Equal(model.PlayerID("p_host"), result.Game.CurrentPlayer)

	stored, err := s.storage.GetGame(s.ctx, "ABCDEF")
	s.Require().NoError(err)
	s.Equal(model.GameStatusActive, stored.Status)
	s.Equal(model.PlayerID("p_host"), stored.CurrentPlayer)
}

func (s *ControllerSuite) TestStartGameNotFound() {
	_, err := s.controller.Start(s.ctx, "NOSUCH", "p_host")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestStartRequiresHost() {
	s.createWaitingGame("ABCDEF", "p_host", "p_bob")

	_, err := s.controller.Start(s.ctx, "ABCDEF", "p_bob")
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ControllerSuite) TestStartRequiresEnoughPlayers() {
	s.createWaitingGame("ABCDEF", "p_host")

	_, err := s.controller.Start(s.ctx, "ABCDEF", "p_host")
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
}

func (s *ControllerSuite) TestStartIsIdempotent() {
	s.createWaitingGame("ABCDEF", "p_host", "p_bob")

	_, err := s.controller.Start(s.ctx, "ABCDEF", "p_host")
	s.Require().NoError(err)

	// A repeated start, even from a non-host, observes the active game
	result, err := s.controller.Start(s.ctx, "ABCDEF", "p_bob")
	s.Require().NoError(err)
	s.True(result.AlreadyStarted)
	s.Equal(model.GameStatusActive, result.Game.Status)
}

func (s *ControllerSuite) TestStartPublishesSnapshot() {
	s.createWaitingGame("ABCDEF", "p_host", "p_bob")
	sub := s.bus.Subscribe(feed.GameTopic("ABCDEF"))
	defer sub.Close()

	_, err := s.controller.Start(s.ctx, "ABCDEF", "p_host")
	s.Require().NoError(err)

	select {
	case ev := <-sub.Events():
		s.Require().NotNil(ev.Game)
		s.Equal(model.GameStatusActive, ev.Game.Status)
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for snapshot")
	}
}

// TestStartRacingJoin runs a start and a join concurrently: whoever commits
// second must see the other's write, so the joiner either lands in the
// started roster or is told the game is no longer joinable.
func (s *ControllerSuite) TestStartRacingJoin() {
	s.createWaitingGame("ABCDEF", "p_host", "p_bob")

	var wg sync.WaitGroup
	var startErr, joinErr error
	var joinResult *membership.JoinResult
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, startErr = s.controller.Start(s.ctx, "ABCDEF", "p_host")
	}()
	go func() {
		defer wg.Done()
		joinResult, joinErr = s.membership.Join(s.ctx, "ABCDEF", "p_carol", "Carol")
	}()
	wg.Wait()

	s.Require().NoError(startErr)

	game, err := s.storage.GetGame(s.ctx, "ABCDEF")
	s.Require().NoError(err)
	s.Equal(model.GameStatusActive, game.Status)
	s.Equal(game.Players[0], game.CurrentPlayer)

	if joinErr != nil {
		s.ErrorIs(joinErr, model.ErrGameNotJoinable)
		s.False(game.HasPlayer("p_carol"))
	} else {
		s.True(game.HasPlayer("p_carol"))
		s.NotNil(joinResult)
	}
}
