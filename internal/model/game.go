package model

import "time"

// GameID is a human-readable identifier for joining games
type GameID string

// GameStatus represents the lifecycle phase of a game session
type GameStatus string

const (
	GameStatusWaiting GameStatus = "waiting" // Open for joins
	GameStatusActive  GameStatus = "active"  // Started, roster frozen
)

// MinPlayersToStart is the smallest roster that can begin a game
const MinPlayersToStart = 2

// GameConfig holds configurable settings for a game session
type GameConfig struct {
	MaxPlayers int
}

// DefaultGameConfig returns the default game configuration
func DefaultGameConfig() GameConfig {
	return GameConfig{
		MaxPlayers: 6,
	}
}

// Game is the authoritative session record. Players is the roster in join
// order, which is also turn order. Version is the store revision the record
// was read at; conditional saves reject writes against a stale Version.
type Game struct {
	ID            GameID
	Status        GameStatus
	Players       []PlayerID // roster, ordered, unique
	CurrentPlayer PlayerID   // empty until the game starts
	Config        GameConfig
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Host returns the roster's first entry, the game's creator
func (g *Game) Host() PlayerID {
	if len(g.Players) == 0 {
		return ""
	}
	return g.Players[0]
}

// HasPlayer reports whether the identity is already on the roster
func (g *Game) HasPlayer(id PlayerID) bool {
	for _, p := range g.Players {
		if p == id {
			return true
		}
	}
	return false
}

// IsFull reports whether the roster is at capacity
func (g *Game) IsFull() bool {
	return g.Config.MaxPlayers > 0 && len(g.Players) >= g.Config.MaxPlayers
}

// Joinable reports whether a new identity may be appended to the roster
func (g *Game) Joinable() bool {
	return g.Status == GameStatusWaiting && !g.IsFull()
}

// CanStart reports whether the waiting->active transition may fire
func (g *Game) CanStart() bool {
	return g.Status == GameStatusWaiting && len(g.Players) >= MinPlayersToStart
}

// Clone returns a deep copy so callers can mutate without aliasing the roster
func (g *Game) Clone() *Game {
	clone := *g
	clone.Players = make([]PlayerID, len(g.Players))
	copy(clone.Players, g.Players)
	return &clone
}
