package response

import (
	"time"

	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/services/identity"
)

// Identity represents an identity in API responses
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// IdentityFromModel converts a model.Identity to a response Identity
func IdentityFromModel(i *model.Identity) Identity {
	return Identity{
		ID:          string(i.ID),
		DisplayName: i.DisplayName,
		IsGuest:     i.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Identity     Identity `json:"identity"`
	SessionToken string   `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *identity.Session) AuthResponse {
	return AuthResponse{
		Identity:     IdentityFromModel(&s.Identity),
		SessionToken: s.Token,
	}
}

// Game represents a game in API responses
type Game struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	Players       []string  `json:"players"`
	CurrentPlayer *string   `json:"current_player"`
	MaxPlayers    int       `json:"max_players"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	players := make([]string, len(g.Players))
	for i, id := range g.Players {
		players[i] = string(id)
	}
	var current *string
	if g.CurrentPlayer != "" {
		c := string(g.CurrentPlayer)
		current = &c
	}
	return Game{
		ID:            string(g.ID),
		Status:        string(g.Status),
		Players:       players,
		CurrentPlayer: current,
		MaxPlayers:    g.Config.MaxPlayers,
		Version:       g.Version,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

// GameList is the response for listing games
type GameList struct {
	Games []Game `json:"games"`
}

// GameListFromModel converts a slice of model games
func GameListFromModel(games []*model.Game) GameList {
	out := make([]Game, len(games))
	for i, g := range games {
		out[i] = GameFromModel(g)
	}
	return GameList{Games: out}
}

// Player represents a per-game player record in API responses
type Player struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Coins   int      `json:"coins"`
	Cards   []string `json:"cards,omitempty"`
	Pending bool     `json:"pending,omitempty"`
}

// PlayerFromModel converts a model.Player
func PlayerFromModel(p *model.Player) Player {
	cards := make([]string, len(p.Cards))
	for i, c := range p.Cards {
		cards[i] = string(c)
	}
	return Player{
		ID:      string(p.ID),
		Name:    p.Name,
		Coins:   p.Coins,
		Cards:   cards,
		Pending: p.Pending(),
	}
}

// Roster is the response for a game's roster, in turn order
type Roster struct {
	Players []Player `json:"players"`
}

// RosterFromModel converts a slice of model players
func RosterFromModel(players []*model.Player) Roster {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return Roster{Players: out}
}

// JoinResponse is the response for a join request
type JoinResponse struct {
	Game          Game   `json:"game"`
	Player        Player `json:"player"`
	AlreadyJoined bool   `json:"already_joined"`
}

// StartResponse is the response for a start request
type StartResponse struct {
	Game           Game `json:"game"`
	AlreadyStarted bool `json:"already_started"`
}
