package projector

import (
	"sort"
	"sync"

	"github.com/cardroom/cardroom/internal/feed"
	"github.com/cardroom/cardroom/internal/model"
)

// Projector merges Change Feed deliveries into a local read model. It is
// the only writer of its own state: commands never touch it directly, state
// arrives exclusively as committed snapshots observed back through the
// feed. Each delivery replaces the local copy of that entity wholesale, so
// duplicates and a stray post-cancel delivery are harmless.
type Projector struct {
	sub     *feed.Subscription
	onApply func(feed.Event) // optional, called on the run loop after each apply

	mu      sync.RWMutex
	games   map[model.GameID]*model.Game
	rosters map[model.GameID]map[model.PlayerID]*model.Player

	done chan struct{}
}

// New creates a Projector over a feed subscription. onApply may be nil.
func New(sub *feed.Subscription, onApply func(feed.Event)) *Projector {
	return &Projector{
		sub:     sub,
		onApply: onApply,
		games:   make(map[model.GameID]*model.Game),
		rosters: make(map[model.GameID]map[model.PlayerID]*model.Player),
		done:    make(chan struct{}),
	}
}

// Run consumes deliveries until the subscription closes. It is the
// projector's single event loop; call it from one goroutine.
func (p *Projector) Run() {
	defer close(p.done)
	for ev := range p.sub.Events() {
		p.apply(ev)
		if p.onApply != nil {
			p.onApply(ev)
		}
	}
}

// Close cancels the underlying subscription; Run returns once the delivery
// channel drains.
func (p *Projector) Close() {
	p.sub.Close()
}

// Done is closed when Run has exited
func (p *Projector) Done() <-chan struct{} {
	return p.done
}

func (p *Projector) apply(ev feed.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case ev.Game != nil:
		// Version guards idempotence: replays and duplicates of older
		// snapshots never roll the view backwards
		if current, ok := p.games[ev.Game.ID]; ok && current.Version >= ev.Game.Version {
			return
		}
		p.games[ev.Game.ID] = ev.Game
	case ev.Player != nil:
		roster := p.rosters[ev.Player.GameID]
		if roster == nil {
			roster = make(map[model.PlayerID]*model.Player)
			p.rosters[ev.Player.GameID] = roster
		}
		roster[ev.Player.ID] = ev.Player
	}
}

// Game returns the latest observed snapshot of a game
func (p *Projector) Game(id model.GameID) (*model.Game, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	game, ok := p.games[id]
	return game, ok
}

// OpenGames returns the games currently observed as joinable, oldest first
func (p *Projector) OpenGames() []*model.Game {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var open []*model.Game
	for _, game := range p.games {
		if game.Status == model.GameStatusWaiting {
			open = append(open, game)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	return open
}

// Roster returns the observed player records for a game. When the game
// snapshot is known the result follows roster (turn) order, with pending
// placeholders for entries whose record has not arrived yet; otherwise
// records are ordered by id.
func (p *Projector) Roster(gameID model.GameID) []*model.Player {
	p.mu.RLock()
	defer p.mu.RUnlock()

	records := p.rosters[gameID]
	game, ok := p.games[gameID]
	if !ok {
		out := make([]*model.Player, 0, len(records))
		for _, player := range records {
			out = append(out, player)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out
	}

	out := make([]*model.Player, 0, len(game.Players))
	for _, id := range game.Players {
		if player, ok := records[id]; ok {
			out = append(out, player)
			continue
		}
		out = append(out, &model.Player{GameID: gameID, ID: id})
	}
	return out
}
