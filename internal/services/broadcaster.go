package services

import (
	"log/slog"
	"sync"

	"github.com/homehub-dev/homehub/internal/models"
	"github.com/homehub-dev/homehub/internal/types"
)

const EventTypeHub = "hub"

type HubEvent struct {
	Type string            `json:"type"`
	Hub  types.HubResponse `json:"hub"`
}

// Subscriber receives events for one user. Send must be safe to call from
// multiple goroutines.
type Subscriber interface {
	Send(event HubEvent) error
	Close() error
}

// Broadcaster fans hub events out to the subscribers of the hub's owner.
type Broadcaster struct {
	subscribers map[string]map[Subscriber]struct{} // user ID -> subscribers
	mu          sync.RWMutex
	logger      *slog.Logger
}

func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]map[Subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registers sub for userID's events. The returned func removes it
// again and is safe to call more than once.
func (b *Broadcaster) Subscribe(userID string, sub Subscriber) func() {
	b.mu.Lock()
	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[Subscriber]struct{})
	}
	b.subscribers[userID][sub] = struct{}{}
	b.mu.Unlock()

	return func() { b.remove(userID, sub) }
}

// Subscribers returns how many subscribers userID currently has.
func (b *Broadcaster) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[userID])
}

// PublishHub sends the current state of hub to its owner.
func (b *Broadcaster) PublishHub(hub models.Hub) {
	b.Publish(hub.UserID, HubEvent{Type: EventTypeHub, Hub: types.NewHubResponse(hub)})
}

// Publish delivers event to every subscriber of userID. Subscribers that
// fail are removed and closed.
func (b *Broadcaster) Publish(userID string, event HubEvent) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscribers[userID]))
	for sub := range b.subscribers[userID] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Send(event); err != nil {
			b.logger.Warn("dropping subscriber after failed send",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			b.remove(userID, sub)
			_ = sub.Close()
		}
	}
}

func (b *Broadcaster) remove(userID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, exists := b.subscribers[userID]; exists {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subscribers, userID)
		}
	}
}
