package user

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users: make(map[string]User),
	}
}

func (r *memoryRepository) Get(_ context.Context, clerkID string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[clerkID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) Upsert(_ context.Context, cmd SyncUserCommand, now time.Time) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[cmd.ClerkID]
	if !exists {
		u = User{ClerkID: cmd.ClerkID, CreatedAt: now}
	}
	u.Email = cmd.Email
	u.Name = cmd.Name
	if cmd.Image != nil {
		u.Image = *cmd.Image
	}
	u.UpdatedAt = now

	r.users[cmd.ClerkID] = u
	return u, !exists, nil
}
