package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridesync/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetBooking loads a live booking by its application-level id.
func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.bookings().FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return &booking, nil
}

// ResetToLive flips a scheduled booking back into the live/unassigned
// pool: pending status, no driver, immediate ride, schedule flag off.
func (s *Store) ResetToLive(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{
		"isBookingConfirmed": models.ConfirmNotAssigned,
		"acceptedBy":         nil,
		"acceptedTime":       nil,
		"status":             models.StatusPendingRequest,
		"startRide":          true,
		"isSchedule":         false,
	}}

	res, err := s.bookings().UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("reset booking %s to live: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// SetConfirmation updates only the driver-confirmation state.
func (s *Store) SetConfirmation(ctx context.Context, id string, state int) error {
	res, err := s.bookings().UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"isBookingConfirmed": state}})
	if err != nil {
		return fmt.Errorf("set confirmation on booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ArchiveBooking copies the booking into the cancelled collection and
// removes the live record, in one transaction so a crash cannot leave
// the booking in both collections or neither.
func (s *Store) ArchiveBooking(ctx context.Context, b *models.Booking, meta models.CancelMeta) error {
	snapshot := models.NewCancelledCopy(b, meta)

	err := s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := s.cancelled().InsertOne(sc, snapshot); err != nil {
			return err
		}
		_, err := s.bookings().DeleteOne(sc, bson.M{"id": b.ID})
		return err
	})
	if err != nil {
		return fmt.Errorf("archive booking %s: %w", b.ID, err)
	}
	return nil
}

// InsertCancelledCopy writes an archive record while the live booking
// stays in place.
func (s *Store) InsertCancelledCopy(ctx context.Context, c *models.CancelledBooking) error {
	if _, err := s.cancelled().InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert cancelled copy %s: %w", c.Booking.ID, err)
	}
	return nil
}

// FindExpiredScheduled lists scheduled bookings whose trigger time has
// passed without a driver accepting them.
func (s *Store) FindExpiredScheduled(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	filter := bson.M{
		"isSchedule":   true,
		"scheduleTime": bson.M{"$lt": now},
		"status":       bson.M{"$lt": models.StatusAccepted},
	}

	cursor, err := s.bookings().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find expired scheduled bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode expired scheduled bookings: %w", err)
	}
	return bookings, nil
}

// ArchiveExpiredBatch submits the whole batch as grouped writes inside
// one transaction: an archive insert and a live delete per booking.
func (s *Store) ArchiveExpiredBatch(ctx context.Context, bookings []*models.Booking, now time.Time) error {
	if len(bookings) == 0 {
		return nil
	}

	inserts, deletes := buildExpiredBatch(bookings, now)

	err := s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := s.cancelled().BulkWrite(sc, inserts); err != nil {
			return err
		}
		_, err := s.bookings().BulkWrite(sc, deletes)
		return err
	})
	if err != nil {
		return fmt.Errorf("archive expired batch: %w", err)
	}
	return nil
}

func buildExpiredBatch(bookings []*models.Booking, now time.Time) (inserts, deletes []mongo.WriteModel) {
	inserts = make([]mongo.WriteModel, 0, len(bookings))
	deletes = make([]mongo.WriteModel, 0, len(bookings))

	for _, b := range bookings {
		inserts = append(inserts, mongo.NewInsertOneModel().
			SetDocument(models.NewExpiredCopy(b, now)))
		deletes = append(deletes, mongo.NewDeleteOneModel().
			SetFilter(bson.M{"id": b.ID}))
	}
	return inserts, deletes
}
