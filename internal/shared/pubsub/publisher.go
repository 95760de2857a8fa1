package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Envelope wraps every published payload with routing metadata.
type Envelope struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher delivers typed events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType string, payload any) error
}

// NewEnvelope marshals payload and stamps it with a fresh v7 identifier.
func NewEnvelope(topic, eventType string, payload any, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Envelope{
		ID:         id.String(),
		Topic:      topic,
		Type:       eventType,
		OccurredAt: now.UTC(),
		Payload:    raw,
	}, nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

// LogPublisher writes events to the structured log instead of a broker (local development).
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, topic, eventType string, payload any) error {
	env, err := NewEnvelope(topic, eventType, payload, time.Now())
	if err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.InfoContext(ctx, "event published",
			slog.String("topic", env.Topic),
			slog.String("type", env.Type),
			slog.String("eventId", env.ID),
			slog.String("payload", string(env.Payload)),
		)
	}
	return nil
}

// RedisClient is the slice of go-redis the publisher needs; *redis.Client satisfies it.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher publishes JSON envelopes on a Redis channel named after the topic.
type RedisPublisher struct {
	client RedisClient
}

// NewRedisPublisher wraps an existing Redis client.
func NewRedisPublisher(client RedisClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic, eventType string, payload any) error {
	env, err := NewEnvelope(topic, eventType, payload, time.Now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}
