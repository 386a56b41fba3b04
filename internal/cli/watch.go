package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
	"github.com/cardroom/cardroom/internal/projector"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [id]",
		Short: "Follow a live view built from snapshot events",
		Long: `Maintain a local read model from the event stream and re-render it on
every committed snapshot.

With a game id, shows that game and its roster. Without one, shows the list
of open games. Unlike 'events', which prints raw frames, 'watch' folds each
snapshot into the view, so duplicates and out-of-order deliveries are
absorbed rather than printed.

Press Ctrl+C to disconnect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return watchGame(model.GameID(args[0]))
			}
			return watchOpenGames()
		},
	}
}

func watchGame(gameID model.GameID) error {
	bus := newLocalBus()
	var proj *projector.Projector
	proj = projector.New(
		bus.Subscribe(feed.GameTopic(gameID), feed.RosterTopic(gameID)),
		func(feed.Event) { renderGameView(proj, gameID) },
	)
	go proj.Run()
	defer func() {
		proj.Close()
		<-proj.Done()
	}()

	onConnect := func() { fmt.Printf("Watching game %s\n", gameID) }
	return streamSSE("/api/v1/games/"+string(gameID)+"/events", onConnect, func(event, data string) {
		publishSnapshot(bus, gameID, event, data)
	})
}

func watchOpenGames() error {
	bus := newLocalBus()
	var proj *projector.Projector
	proj = projector.New(
		bus.Subscribe(feed.GamesTopic),
		func(feed.Event) { renderOpenGamesView(proj) },
	)
	go proj.Run()
	defer func() {
		proj.Close()
		<-proj.Done()
	}()

	onConnect := func() { fmt.Println("Watching open games") }
	return streamSSE("/api/v1/games/events", onConnect, func(event, data string) {
		publishSnapshot(bus, "", event, data)
	})
}

func newLocalBus() *feed.Bus {
	return feed.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// publishSnapshot decodes one stream frame and republishes it on the local
// bus the projector consumes. Frames that are not snapshots, like the
// initial connected event, are ignored.
func publishSnapshot(bus *feed.Bus, gameID model.GameID, event, data string) {
	switch event {
	case "game":
		var g Game
		if err := json.Unmarshal([]byte(data), &g); err != nil {
			return
		}
		bus.PublishGame(gameToModel(g))
	case "player":
		var p Player
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return
		}
		bus.PublishPlayer(playerToModel(gameID, p))
	}
}

func gameToModel(g Game) *model.Game {
	players := make([]model.PlayerID, len(g.Players))
	for i, id := range g.Players {
		players[i] = model.PlayerID(id)
	}
	var current model.PlayerID
	if g.CurrentPlayer != nil {
		current = model.PlayerID(*g.CurrentPlayer)
	}
	return &model.Game{
		ID:            model.GameID(g.ID),
		Status:        model.GameStatus(g.Status),
		Players:       players,
		CurrentPlayer: current,
		Config:        model.GameConfig{MaxPlayers: g.MaxPlayers},
		Version:       g.Version,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func playerToModel(gameID model.GameID, p Player) *model.Player {
	player := &model.Player{
		GameID: gameID,
		ID:     model.PlayerID(p.ID),
		Name:   p.Name,
		Coins:  p.Coins,
	}
	// A pending record keeps nil cards so the placeholder state survives
	// the round trip
	if !p.Pending {
		player.Cards = make([]model.CardID, len(p.Cards))
		for i, c := range p.Cards {
			player.Cards[i] = model.CardID(c)
		}
	}
	return player
}

func modelToGame(g *model.Game) Game {
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

func modelToRoster(players []*model.Player) Roster {
	out := make([]Player, len(players))
	for i, p := range players {
		cards := make([]string, len(p.Cards))
		for j, c := range p.Cards {
			cards[j] = string(c)
		}
		out[i] = Player{
			ID:      string(p.ID),
			Name:    p.Name,
			Coins:   p.Coins,
			Cards:   cards,
			Pending: p.Pending(),
		}
	}
	return Roster{Players: out}
}

func renderGameView(proj *projector.Projector, gameID model.GameID) {
	game, ok := proj.Game(gameID)
	if !ok {
		return
	}
	out := NewOutput(cfg.Output)
	fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
	out.Print(modelToGame(game))
	out.Print(modelToRoster(proj.Roster(gameID)))
}

func renderOpenGamesView(proj *projector.Projector) {
	games := proj.OpenGames()
	list := GameList{Games: make([]Game, len(games))}
	for i, g := range games {
		list.Games[i] = modelToGame(g)
	}
	fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
	NewOutput(cfg.Output).Print(list)
}
