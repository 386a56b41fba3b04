package model

import "testing"

func waitingGame(players ...PlayerID) *Game {
	return &Game{
		ID:      "ABC123",
		Status:  GameStatusWaiting,
		Players: players,
		Config:  DefaultGameConfig(),
	}
}

func TestHost(t *testing.T) {
	g := waitingGame("alice", "bob")
	if g.Host() != "alice" {
		t.Errorf("Host() = %q, want alice", g.Host())
	}

	empty := &Game{}
	if empty.Host() != "" {
		t.Errorf("Host() on empty roster = %q, want empty", empty.Host())
	}
}

func TestHasPlayer(t *testing.T) {
	g := waitingGame("alice", "bob")
	if !g.HasPlayer("bob") {
		t.Error("HasPlayer(bob) = false, want true")
	}
	if g.HasPlayer("carol") {
		t.Error("HasPlayer(carol) = true, want false")
	}
}

func TestJoinable(t *testing.T) {
	tests := []struct {
		name string
		game *Game
		want bool
	}{
		{
			name: "waiting with room",
			game: waitingGame("alice"),
			want: true,
		},
		{
			name: "active game",
			game: &Game{Status: GameStatusActive, Players: []PlayerID{"alice", "bob"}, Config: DefaultGameConfig()},
			want: false,
		},
		{
			name: "full roster",
			game: waitingGame("a", "b", "c", "d", "e", "f"),
			want: false,
		},
		{
			name: "no capacity limit",
			game: &Game{Status: GameStatusWaiting, Players: []PlayerID{"a", "b", "c", "d", "e", "f", "g"}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.game.Joinable(); got != tt.want {
				t.Errorf("Joinable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanStart(t *testing.T) {
	if waitingGame("alice").CanStart() {
		t.Error("CanStart() with one player = true, want false")
	}
	if !waitingGame("alice", "bob").CanStart() {
		t.Error("CanStart() with two players = false, want true")
	}

	active := &Game{Status: GameStatusActive, Players: []PlayerID{"alice", "bob"}}
	if active.CanStart() {
		t.Error("CanStart() on active game = true, want false")
	}
}

func TestCloneDoesNotAliasRoster(t *testing.T) {
	g := waitingGame("alice")
	clone := g.Clone()
	clone.Players = append(clone.Players, "bob")

	if len(g.Players) != 1 {
		t.Errorf("original roster length = %d after mutating clone, want 1", len(g.Players))
	}
}

func TestPlayerPending(t *testing.T) {
	settled := &Player{ID: "alice", Cards: []CardID{"duke", "contessa"}}
	if settled.Pending() {
		t.Error("Pending() with dealt cards = true, want false")
	}

	placeholder := &Player{ID: "bob"}
	if !placeholder.Pending() {
		t.Error("Pending() with nil cards = false, want true")
	}
}
