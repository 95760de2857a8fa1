package user

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository stores users as documents in the users collection, one per clerk id.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) Get(ctx context.Context, clerkID string) (User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(clerkID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", clerkID, err)
	}

	var u User
	if err := doc.DataTo(&u); err != nil {
		return User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	u.ClerkID = clerkID
	return u, nil
}

func (r *firestoreRepository) Upsert(ctx context.Context, cmd SyncUserCommand, now time.Time) (User, bool, error) {
	docRef := r.client.Collection(usersCollection).Doc(cmd.ClerkID)
	var created bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false
		data := map[string]any{
			"clerk_id":   cmd.ClerkID,
			"email":      cmd.Email,
			"name":       cmd.Name,
			"updated_at": now,
		}
		if cmd.Image != nil {
			data["image"] = *cmd.Image
		}

		if _, err := tx.Get(docRef); status.Code(err) == codes.NotFound {
			data["created_at"] = now
			created = true
		} else if err != nil {
			return err
		}

		return tx.Set(docRef, data, firestore.MergeAll)
	})
	if err != nil {
		return User{}, false, fmt.Errorf("upsert user %s: %w", cmd.ClerkID, err)
	}

	u, err := r.Get(ctx, cmd.ClerkID)
	if err != nil {
		return User{}, false, err
	}
	return u, created, nil
}
