package service

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
)

// Listener receives store events synchronously, in registration order.
// A returned error or a panic is logged and never reaches the mutator or other listeners.
type Listener func(evt models.Event) error

type subscription struct {
	id       uint64
	listener Listener
}

// EventBus fans store events out to subscribers.
type EventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *zap.Logger
}

// NewEventBus constructs an empty bus.
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{logger: logger}
}

// Subscribe registers listener and returns its disposer. Calling the disposer twice is harmless.
func (b *EventBus) Subscribe(listener Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: listener})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, sub := range b.subs {
				if sub.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers evt to every current subscriber.
func (b *EventBus) Publish(evt models.Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := b.deliver(sub.listener, evt); err != nil {
			b.logger.Error("store listener failed",
				zap.Uint64("subscription", sub.id),
				zap.String("event", string(evt.Kind)),
				zap.String("entity_id", evt.EntityID),
				zap.Error(err))
		}
	}
}

// Len reports the number of active subscriptions.
func (b *EventBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *EventBus) deliver(listener Listener, evt models.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return listener(evt)
}

// OnKinds wraps listener so it only sees the given event kinds.
func OnKinds(listener Listener, kinds ...models.EventKind) Listener {
	wanted := make(map[models.EventKind]struct{}, len(kinds))
	for _, k := range kinds {
		wanted[k] = struct{}{}
	}
	return func(evt models.Event) error {
		if _, ok := wanted[evt.Kind]; !ok {
			return nil
		}
		return listener(evt)
	}
}
