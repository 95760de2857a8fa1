package events

import "time"

// Event type names carried in pubsub envelopes.
const (
	TypeUserSynced = "user.synced"
)

// UserSynced describes the payload produced when a Clerk user is synchronized into the user store.
type UserSynced struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Created     bool      `json:"created"`
	SyncedAt    time.Time `json:"syncedAt"`
}
