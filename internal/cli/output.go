package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Identity:
		o.printIdentity(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case Roster:
		o.printRoster(v)
	case JoinResult:
		o.printJoinResult(v)
	case StartResult:
		o.printStartResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Identity response type (matches API)
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines identity and token
type AuthResult struct {
	Identity     Identity `json:"identity"`
	SessionToken string   `json:"session_token"`
}

// Game response type
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

// GameList response type
type GameList struct {
	Games []Game `json:"games"`
}

// Player response type
type Player struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Coins   int      `json:"coins"`
	Cards   []string `json:"cards,omitempty"`
	Pending bool     `json:"pending,omitempty"`
}

// Roster response type
type Roster struct {
	Players []Player `json:"players"`
}

// JoinResult response type
type JoinResult struct {
	Game          Game   `json:"game"`
	Player        Player `json:"player"`
	AlreadyJoined bool   `json:"already_joined"`
}

// StartResult response type
type StartResult struct {
	Game           Game `json:"game"`
	AlreadyStarted bool `json:"already_started"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printIdentity(i Identity) {
	guestStr := "no"
	if i.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("Identity: %s (%s)\n", i.DisplayName, i.ID)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printIdentity(a.Identity)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Status: %s\n", g.Status)
	if g.CurrentPlayer != nil {
		fmt.Printf("Current Turn: %s\n", *g.CurrentPlayer)
	}
	fmt.Printf("Players (%d/%d):\n", len(g.Players), g.MaxPlayers)
	for i, id := range g.Players {
		hostStr := ""
		if i == 0 {
			hostStr = " [host]"
		}
		fmt.Printf("  - %s%s\n", id, hostStr)
	}
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		fmt.Println("No open games")
		return
	}
	fmt.Printf("Open games (%d):\n", len(l.Games))
	for _, g := range l.Games {
		fmt.Printf("  %s - %d/%d players, created %s\n",
			g.ID, len(g.Players), g.MaxPlayers, g.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printRoster(r Roster) {
	fmt.Printf("Roster (%d):\n", len(r.Players))
	for _, p := range r.Players {
		if p.Pending {
			fmt.Printf("  - %s (joining...)\n", p.ID)
			continue
		}
		fmt.Printf("  - %s (%s) - %d coins, cards: %s\n",
			p.Name, p.ID, p.Coins, strings.Join(p.Cards, ", "))
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	if j.AlreadyJoined {
		fmt.Println("Already in this game")
	} else {
		fmt.Println("Joined game")
	}
	o.printGame(j.Game)
}

func (o *Output) printStartResult(s StartResult) {
	if s.AlreadyStarted {
		fmt.Println("Game was already started")
	} else {
		fmt.Println("Game started")
	}
	o.printGame(s.Game)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
