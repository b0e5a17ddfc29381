package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType classifies auth events carried over the bus.
type EventType string

const (
	EventSignedOut      EventType = "signed_out"
	EventProfileUpdated EventType = "profile_updated"
)

// Event is a broadcast auth-state change. Events arrive outside any request
// call chain, e.g. a logout handled by another API instance.
type Event struct {
	Type   EventType `json:"type"`
	UserID uuid.UUID `json:"user_id"`
}

const eventChannel = "auth:events"

// Bus fans auth events out to every running instance over Redis pub/sub.
// A nil client degrades to a local no-op publisher, which is enough for a
// single-instance deployment and for tests.
type Bus struct {
	rdb *redis.Client
}

func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb}
}

// Publish broadcasts one event.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if b == nil || b.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, eventChannel, payload).Err()
}

// Subscribe opens a subscription and returns the event stream plus a close
// function. The stream ends when the context is cancelled or close is called.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, func() error, error) {
	if b == nil || b.rdb == nil {
		return nil, nil, fmt.Errorf("event bus requires a redis client")
	}

	pubsub := b.rdb.Subscribe(ctx, eventChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close, nil
}
