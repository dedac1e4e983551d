package domain

import (
	"context"
	"time"

	"ridesync/internal/models"
)

// BookingStore is the document-store surface the reconciler and the
// sweep need. Archive operations move or copy a booking snapshot into
// the cancelled collection atomically with the related live-record
// mutation.
type BookingStore interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	// ResetToLive flips a booking back to the live/unassigned state:
	// confirmation cleared, accepted-by and accepted-time dropped,
	// status pending, immediate-ride flag set, schedule flag cleared.
	ResetToLive(ctx context.Context, id string) error
	SetConfirmation(ctx context.Context, id string, state int) error
	// ArchiveBooking copies the booking into the cancelled collection
	// and deletes the live record in one transaction.
	ArchiveBooking(ctx context.Context, b *models.Booking, meta models.CancelMeta) error
	// InsertCancelledCopy writes an archive record without touching the
	// live booking.
	InsertCancelledCopy(ctx context.Context, c *models.CancelledBooking) error
	FindExpiredScheduled(ctx context.Context, now time.Time) ([]*models.Booking, error)
	// ArchiveExpiredBatch archives and deletes the given bookings as a
	// single grouped write.
	ArchiveExpiredBatch(ctx context.Context, bookings []*models.Booking, now time.Time) error
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	// AddNotification appends a history entry and returns its id.
	AddNotification(ctx context.Context, n *models.Notification) (string, error)
	IncrementUnread(ctx context.Context, userID string) error
}

// Notifier fans a message out to a user's devices. Implementations
// never fail the caller over delivery problems; the result reports
// tokens the gateway rejected as unknown.
type Notifier interface {
	Send(ctx context.Context, req models.NotificationRequest) (*models.NotificationResult, error)
}

// JobScheduler mutates the externally owned per-booking scheduler job.
type JobScheduler interface {
	UpdateJob(ctx context.Context, bookingID, schedule string) error
	DeleteJob(ctx context.Context, bookingID string) error
}

// PushGateway is the raw push API surface behind the Notifier.
type PushGateway interface {
	AccessToken(ctx context.Context) (string, error)
	// GroupToken merges several device tokens into one group-delivery
	// token; best effort, empty on failure.
	GroupToken(ctx context.Context, accessToken string, tokens []string) (string, error)
	SendToDevice(ctx context.Context, accessToken, token string, msg models.PushMessage) error
}

// Locker provides per-booking mutual exclusion for reconciliation.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
