// internal/app/events.go
package app

import (
	"sync"
	"time"

	"hydration_notification_bot/internal/domain/delivery"
	"hydration_notification_bot/internal/domain/milestone"

	"github.com/sirupsen/logrus"
)

type EventKind string

const (
	EventMilestoneReached EventKind = "milestone_reached"
	EventDelivered        EventKind = "delivered"
	EventDeliveryFailed   EventKind = "delivery_failed"
)

// Event is published by the notification service for presentation subscribers.
type Event struct {
	Kind    EventKind
	UserID  string
	Level   milestone.Level
	Attempt delivery.Attempt
	At      time.Time
}

// EventBus fans events out to subscribers. Publish never blocks; a full
// subscriber buffer drops the event.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	logger logrus.FieldLogger
}

func NewEventBus(logger logrus.FieldLogger) *EventBus {
	return &EventBus{subs: make(map[int]chan Event), logger: logger}
}

// Subscribe returns a channel of events and a function that cancels the
// subscription and closes the channel.
func (b *EventBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.WithFields(logrus.Fields{"event": e.Kind, "user_id": e.UserID}).Warn("Event dropped, subscriber is full")
		}
	}
}
