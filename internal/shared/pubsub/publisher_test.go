package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestNewEnvelope(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	env, err := NewEnvelope(TopicUserEvents, "user.synced", map[string]string{"userId": "user_1"}, now)
	if err != nil {
		t.Fatalf("NewEnvelope returned error: %v", err)
	}
	if _, err := uuid.Parse(env.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", env.ID)
	}
	if env.Topic != TopicUserEvents || env.Type != "user.synced" {
		t.Fatalf("unexpected routing metadata: %+v", env)
	}
	if !env.OccurredAt.Equal(now) || env.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", env.OccurredAt)
	}
	var payload map[string]string
	if err := json.Unmarshal(env.Payload, &payload); err != nil || payload["userId"] != "user_1" {
		t.Fatalf("unexpected payload %s (%v)", env.Payload, err)
	}
}

func TestNewEnvelopeRejectsUnmarshalablePayload(t *testing.T) {
	if _, err := NewEnvelope(TopicUserEvents, "bad", make(chan int), time.Now()); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	if err := (LogPublisher{Logger: logger}).Publish(context.Background(), TopicUserEvents, "user.synced", map[string]string{"userId": "u1"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"topic":"user.events"`) {
		t.Fatalf("expected topic in log output, got %s", buf.String())
	}
}

func TestNoopPublisher(t *testing.T) {
	if err := (NoopPublisher{}).Publish(context.Background(), TopicUserEvents, "user.synced", nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

type fakeRedis struct {
	channel string
	message []byte
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel = channel
	f.message, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestRedisPublisherPublishesEnvelope(t *testing.T) {
	client := &fakeRedis{}
	pub := NewRedisPublisher(client)

	if err := pub.Publish(context.Background(), TopicUserEvents, "user.synced", map[string]string{"userId": "u1"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.channel != TopicUserEvents {
		t.Fatalf("expected channel %q, got %q", TopicUserEvents, client.channel)
	}
	var env Envelope
	if err := json.Unmarshal(client.message, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Type != "user.synced" || !strings.Contains(string(env.Payload), "u1") {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRedisPublisherWrapsErrors(t *testing.T) {
	wantErr := errors.New("connection refused")
	pub := NewRedisPublisher(&fakeRedis{err: wantErr})

	if err := pub.Publish(context.Background(), TopicUserEvents, "user.synced", nil); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped %v, got %v", wantErr, err)
	}
}
