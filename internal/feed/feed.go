package feed

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cardroom/cardroom/internal/model"
)

// Topic identifies a subscription scope: one game, the game collection, or
// one game's roster.
type Topic string

// GamesTopic is the collection-level scope covering every game snapshot
const GamesTopic Topic = "games"

// GameTopic returns the scope for a single game's snapshots
func GameTopic(id model.GameID) Topic {
	return Topic("game:" + string(id))
}

// RosterTopic returns the scope for a game's player sub-records
func RosterTopic(id model.GameID) Topic {
	return Topic("roster:" + string(id))
}

// Event is a full-state snapshot delivery. Exactly one of Game or Player is
// set. Consumers must treat each delivery as a total replacement of their
// local copy of that entity, never as a patch.
type Event struct {
	Topic     Topic
	Game      *model.Game
	Player    *model.Player
	Committed time.Time
}

// Bus fans committed snapshots out to subscribers. Deliveries from one
// publisher arrive in the order it published them; there is no ordering
// guarantee across entities. Publishers racing on the same game may have
// their snapshots delivered out of commit order, since the store commit and
// the publish are not one atomic step, so game consumers must gate on
// Game.Version and discard snapshots at or below the version they hold.
// Publishing never blocks on a slow subscriber.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic]map[*Subscription]struct{}
	logger *slog.Logger
}

// NewBus creates a new Bus
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[Topic]map[*Subscription]struct{}),
		logger: logger.With(slog.String("component", "feed")),
	}
}

// Subscribe registers interest in the given topics and returns a live
// subscription. The caller must Close it when done.
func (b *Bus) Subscribe(topics ...Topic) *Subscription {
	sub := &Subscription{
		bus:    b,
		topics: topics,
		ch:     make(chan Event),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	for _, topic := range topics {
		if b.subs[topic] == nil {
			b.subs[topic] = make(map[*Subscription]struct{})
		}
		b.subs[topic][sub] = struct{}{}
	}
	b.mu.Unlock()

	go sub.pump()
	return sub
}

// PublishGame delivers a game snapshot to its single-game scope and to the
// collection scope. The snapshot is copied so later controller mutations
// cannot leak into queued deliveries.
func (b *Bus) PublishGame(game *model.Game) {
	snapshot := game.Clone()
	now := time.Now()
	b.deliver(Event{Topic: GameTopic(game.ID), Game: snapshot, Committed: now})
	b.deliver(Event{Topic: GamesTopic, Game: snapshot, Committed: now})
}

// PublishPlayer delivers a player snapshot to its game's roster scope
func (b *Bus) PublishPlayer(player *model.Player) {
	b.deliver(Event{
		Topic:     RosterTopic(player.GameID),
		Player:    player.Clone(),
		Committed: time.Now(),
	})
}

func (b *Bus) deliver(ev Event) {
	b.mu.RLock()
	for sub := range b.subs[ev.Topic] {
		sub.enqueue(ev)
	}
	b.mu.RUnlock()
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	for _, topic := range sub.topics {
		delete(b.subs[topic], sub)
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
	}
	b.mu.Unlock()
}

// SubscriberCount returns the number of subscribers on a topic
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Subscription is an ordered stream of snapshot events. Events are staged in
// an internal queue drained by a pump goroutine, so publishers never block
// and no committed snapshot is dropped while the subscription is open.
type Subscription struct {
	bus    *Bus
	topics []Topic

	mu     sync.Mutex
	queue  []Event
	closed bool

	wake chan struct{}
	done chan struct{}
	ch   chan Event
}

// Events returns the delivery channel. It is closed after Close, though one
// in-flight delivery may still be received first.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close unregisters the subscription. No new deliveries are queued once
// Close returns; consumers must tolerate a final stray delivery already in
// flight.
func (s *Subscription) Close() {
	s.bus.remove(s)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
}

func (s *Subscription) enqueue(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.ch)
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
			case <-s.done:
			}
			continue
		}
		ev := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- ev:
		case <-s.done:
			return
		}
	}
}
