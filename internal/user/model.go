package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is the application record mirrored from the identity provider, keyed by ClerkID.
type User struct {
	ClerkID   string    `json:"clerk_id" firestore:"clerk_id"`
	Email     string    `json:"email" firestore:"email"`
	Name      string    `json:"name" firestore:"name"`
	Image     string    `json:"image,omitempty" firestore:"image,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updated_at"`
}

// SyncUserCommand is the create-or-update request issued for a user.created event.
// A nil Image leaves any stored image untouched.
type SyncUserCommand struct {
	ClerkID string
	Email   string
	Name    string
	Image   *string
}

// Validate ensures the command carries the identifiers the store keys on.
func (c SyncUserCommand) Validate() error {
	var problems []string

	if strings.TrimSpace(c.ClerkID) == "" {
		problems = append(problems, "clerk_id is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		problems = append(problems, "email is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// ErrNotFound indicates the requested user has never been synced.
var ErrNotFound = errors.New("user not found")

// ErrInvalidInput indicates the provided data failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Repository persists synced users.
type Repository interface {
	Get(ctx context.Context, clerkID string) (User, error)
	// Upsert creates or updates the user keyed by cmd.ClerkID and reports whether it was created.
	Upsert(ctx context.Context, cmd SyncUserCommand, now time.Time) (User, bool, error)
}

// Service exposes user synchronization and lookup.
type Service interface {
	SyncUser(ctx context.Context, cmd SyncUserCommand) (*User, error)
	GetUser(ctx context.Context, clerkID string) (*User, error)
}

// Clock delivers the current time; extracted for deterministic testing.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock implementation backed by time.Now.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
