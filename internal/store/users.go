package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridesync/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetUser loads a user document by its application-level id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

// AddNotification appends a history entry for the user and returns the
// generated id.
func (s *Store) AddNotification(ctx context.Context, n *models.Notification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if _, err := s.notifications().InsertOne(ctx, n); err != nil {
		return "", fmt.Errorf("add notification for user %s: %w", n.UserID, err)
	}
	return n.ID, nil
}

// IncrementUnread bumps the user's unread-notification counter.
func (s *Store) IncrementUnread(ctx context.Context, userID string) error {
	res, err := s.users().UpdateOne(ctx, bson.M{"id": userID},
		bson.M{"$inc": bson.M{"unreadNotificationsCount": 1}})
	if err != nil {
		return fmt.Errorf("increment unread for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
