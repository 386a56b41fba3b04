package model

import "time"

// PlayerID is the opaque stable identity issued per connected client
type PlayerID string

// CardID identifies an influence card. The cards themselves are opaque to
// the session layer; the rules engine interprets them.
type CardID string

// InfluenceDeck lists the card kinds a player's starting hand is dealt from
var InfluenceDeck = []CardID{"duke", "assassin", "captain", "ambassador", "contessa"}

const (
	// InitialCoins is every player's starting coin count
	InitialCoins = 2
	// InitialCards is the fixed size of a starting hand
	InitialCards = 2
	// DefaultPlayerName is used when a client supplies no display name
	DefaultPlayerName = "Anonymous"
)

// Player is a per-game participant record, keyed (GameID, ID). It is created
// exactly once at join time and never deleted by the session layer.
type Player struct {
	GameID    GameID
	ID        PlayerID
	Name      string
	Coins     int
	Cards     []CardID
	CreatedAt time.Time
}

// Pending reports whether this is a placeholder for a roster entry whose
// durable record has not materialized yet (join still settling).
func (p *Player) Pending() bool {
	return p.Cards == nil
}

// Clone returns a deep copy of the player record
func (p *Player) Clone() *Player {
	clone := *p
	if p.Cards != nil {
		clone.Cards = make([]CardID, len(p.Cards))
		copy(clone.Cards, p.Cards)
	}
	return &clone
}
