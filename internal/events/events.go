package events

import (
	"context"
	"encoding/json"
	"time"

	"monitor/config"
	"monitor/internal/database"
	"monitor/internal/logger"

	"github.com/valkey-io/valkey-go"
)

// Event is the payload carried over the notification bus to connected
// clients (task created, report approved, QA comment posted).
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventBus publishes events over valkey pub/sub so every server
// instance can push notifications to its own websocket clients.
type EventBus struct {
	client database.CacheClient
	log    logger.Logger
	cancel context.CancelFunc
}

func New(client database.CacheClient, config config.Config) *EventBus {
	return &EventBus{
		client: client,
		log:    logger.New("events"),
	}
}

func (b *EventBus) Publish(channel string, event Event) error {
	log := b.log.Function("Publish")

	// A nil client means a single-process deployment with no bus.
	if b.client == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "channel", channel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.client.Do(ctx, b.client.B().Publish().Channel(channel).Message(string(payload)).Build()).Error(); err != nil {
		return log.Err("failed to publish event", err, "channel", channel)
	}
	return nil
}

// Subscribe delivers every event published on the channel to handler
// until the bus is closed. Runs in its own goroutine.
func (b *EventBus) Subscribe(channel string, handler func(Event)) {
	log := b.log.Function("Subscribe")

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	go func() {
		err := b.client.Receive(ctx, b.client.B().Subscribe().Channel(channel).Build(), func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel)
				return
			}
			handler(event)
		})
		if err != nil && ctx.Err() == nil {
			log.Er("subscription ended", err, "channel", channel)
		}
	}()
}

func (b *EventBus) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return nil
}
