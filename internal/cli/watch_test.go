package cli

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/projector"
)

func gameFrame(id string, version int64, players ...string) string {
	list := ""
	for i, p := range players {
		if i > 0 {
			list += ","
		}
		list += fmt.Sprintf("%q", p)
	}
	return fmt.Sprintf(`{"id":%q,"status":"waiting","players":[%s],"current_player":null,"max_players":6,"version":%d,"created_at":"2024-01-01T12:00:00Z","updated_at":"2024-01-01T12:00:00Z"}`,
		id, list, version)
}

func TestGameSnapshotDecodesToModel(t *testing.T) {
	current := "p_host"
	wire := Game{
		ID:            "ABCDEF",
		Status:        "active",
		Players:       []string{"p_host", "p_bob"},
		CurrentPlayer: &current,
		MaxPlayers:    6,
		Version:       3,
		CreatedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	game := gameToModel(wire)
	assert.Equal(t, model.GameID("ABCDEF"), game.ID)
	assert.Equal(t, model.GameStatusActive, game.Status)
	assert.Equal(t, []model.PlayerID{"p_host", "p_bob"}, game.Players)
	assert.Equal(t, model.PlayerID("p_host"), game.CurrentPlayer)
	assert.Equal(t, 6, game.Config.MaxPlayers)
	assert.Equal(t, int64(3), game.Version)
}

func TestPlayerSnapshotKeepsPendingState(t *testing.T) {
	joined := playerToModel("ABCDEF", Player{ID: "p_bob", Name: "Bob", Coins: 2, Cards: []string{"duke", "captain"}})
	require.False(t, joined.Pending())
	assert.Equal(t, model.GameID("ABCDEF"), joined.GameID)
	assert.Equal(t, []model.CardID{"duke", "captain"}, joined.Cards)

	pending := playerToModel("ABCDEF", Player{ID: "p_carol", Pending: true})
	assert.True(t, pending.Pending())
	assert.Nil(t, pending.Cards)
}

func TestPublishSnapshotFeedsProjector(t *testing.T) {
	bus := newLocalBus()
	applied := make(chan feed.Event, 16)
	proj := projector.New(
		bus.Subscribe(feed.GameTopic("ABCDEF"), feed.RosterTopic("ABCDEF")),
		func(ev feed.Event) { applied <- ev },
	)
	go proj.Run()
	defer func() {
		proj.Close()
		<-proj.Done()
	}()

	wait := func() {
		select {
		case <-applied:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for snapshot to apply")
		}
	}

	publishSnapshot(bus, "ABCDEF", "connected", `{"identity":"p_host"}`)
	publishSnapshot(bus, "ABCDEF", "game", gameFrame("ABCDEF", 2, "p_host", "p_bob"))
	wait()
	publishSnapshot(bus, "ABCDEF", "player", `{"id":"p_bob","name":"Bob","coins":2,"cards":["duke","captain"]}`)
	wait()
	// A replayed older snapshot must not roll the view back
	publishSnapshot(bus, "ABCDEF", "game", gameFrame("ABCDEF", 1, "p_host"))
	wait()

	game, ok := proj.Game("ABCDEF")
	require.True(t, ok)
	assert.Equal(t, int64(2), game.Version)
	assert.Equal(t, []model.PlayerID{"p_host", "p_bob"}, game.Players)

	roster := proj.Roster("ABCDEF")
	require.Len(t, roster, 2)
	assert.True(t, roster[0].Pending(), "host record has not streamed yet")
	assert.Equal(t, "Bob", roster[1].Name)
}

func TestPublishSnapshotIgnoresMalformedFrame(t *testing.T) {
	bus := newLocalBus()
	sub := bus.Subscribe(feed.GameTopic("ABCDEF"))
	defer sub.Close()

	publishSnapshot(bus, "ABCDEF", "game", `{not json`)

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected delivery: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
