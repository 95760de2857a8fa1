package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/focusnest/webhook-service/internal/shared/events"
	"github.com/focusnest/webhook-service/internal/shared/pubsub"
)

type service struct {
	repo      Repository
	publisher pubsub.Publisher
	clock     Clock
	logger    *slog.Logger
}

// NewService wires the user service. A nil publisher disables event publishing.
func NewService(repo Repository, publisher pubsub.Publisher, clock Clock, logger *slog.Logger) Service {
	if publisher == nil {
		publisher = pubsub.NoopPublisher{}
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, publisher: publisher, clock: clock, logger: logger}
}

func (s *service) SyncUser(ctx context.Context, cmd SyncUserCommand) (*User, error) {
	cmd.ClerkID = strings.TrimSpace(cmd.ClerkID)
	cmd.Email = strings.TrimSpace(cmd.Email)
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	u, created, err := s.repo.Upsert(ctx, cmd, now)
	if err != nil {
		return nil, err
	}

	// The write already succeeded; a lost event must not turn it into a failed sync.
	if err := s.publisher.Publish(ctx, pubsub.TopicUserEvents, events.TypeUserSynced, events.UserSynced{
		UserID:      u.ClerkID,
		Email:       u.Email,
		DisplayName: u.Name,
		ImageURL:    u.Image,
		Created:     created,
		SyncedAt:    now,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish user synced event",
			slog.String("userId", u.ClerkID),
			slog.Any("error", err),
		)
	}

	return &u, nil
}

func (s *service) GetUser(ctx context.Context, clerkID string) (*User, error) {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return nil, ErrNotFound
	}
	u, err := s.repo.Get(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
