// Package store implements the document-store access layer on MongoDB.
// Collection names mirror the ones the mobile backend already writes:
// users, bookingRequest, cancelledBooking, notifications.
package store

import (
	"context"
	"time"

	"ridesync/internal/config"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

// Store bundles the collections this service reads and writes.
type Store struct {
	db     *mongo.Database
	cols   config.CollectionsConfig
	logger *zerolog.Logger
}

func New(db *mongo.Database, cols config.CollectionsConfig, logger *zerolog.Logger) *Store {
	return &Store{db: db, cols: cols, logger: logger}
}

func (s *Store) bookings() *mongo.Collection {
	return s.db.Collection(s.cols.Bookings)
}

func (s *Store) cancelled() *mongo.Collection {
	return s.db.Collection(s.cols.Cancelled)
}

func (s *Store) users() *mongo.Collection {
	return s.db.Collection(s.cols.Users)
}

func (s *Store) notifications() *mongo.Collection {
	return s.db.Collection(s.cols.Notifications)
}

// withTransaction runs fn inside a session transaction.
func (s *Store) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
