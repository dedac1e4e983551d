package service

import (
	"context"
	"time"

	"ridesync/internal/domain"
	"ridesync/internal/events"
	"ridesync/internal/i18n"
	"ridesync/internal/metrics"
	"ridesync/internal/models"

	"github.com/rs/zerolog"
)

// SweepSummary reports one sweep run.
type SweepSummary struct {
	Success      bool      `json:"success"`
	CleanedCount int       `json:"cleanedCount"`
	BookingIDs   []string  `json:"bookingIds"`
	Timestamp    time.Time `json:"timestamp"`
}

// Sweeper archives scheduled bookings whose trigger time passed without
// a driver accepting them. The batch mutation is one grouped write;
// customer notifications run afterwards and are independently fallible.
type Sweeper struct {
	bookings domain.BookingStore
	users    domain.UserStore
	notifier domain.Notifier
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewSweeper(bookings domain.BookingStore, users domain.UserStore, notifier domain.Notifier, eventBus domain.EventPublisher, logger *zerolog.Logger) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		users:    users,
		notifier: notifier,
		eventBus: eventBus,
		now:      time.Now,
		logger:   logger,
	}
}

// Run executes one sweep. Any error from the query or the grouped
// write terminates the run; per-booking notification failures do not.
func (s *Sweeper) Run(ctx context.Context) (*SweepSummary, error) {
	now := s.now()
	s.logger.Info().Time("at", now).Msg("Starting cleanup of expired scheduled bookings")

	expired, err := s.bookings.FindExpiredScheduled(ctx, now)
	if err != nil {
		return nil, err
	}

	if len(expired) == 0 {
		s.logger.Info().Msg("No expired scheduled bookings found")
		return &SweepSummary{Success: true, BookingIDs: []string{}, Timestamp: now}, nil
	}

	s.logger.Info().Int("count", len(expired)).Msg("Found expired scheduled bookings to clean up")

	if err := s.bookings.ArchiveExpiredBatch(ctx, expired, now); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(expired))
	for _, booking := range expired {
		ids = append(ids, booking.ID)
		s.notifyExpired(ctx, booking)
		_ = s.eventBus.PublishJSON(events.EventBookingExpired, events.BookingEventPayload{
			BookingID: booking.ID,
			Status:    booking.Status,
			RequestBy: booking.RequestBy,
			Reason:    models.ReasonExpired,
			At:        now,
		})
	}

	metrics.AddSweepCleaned(len(ids))
	s.logger.Info().Strs("booking_ids", ids).Msg("Cleaned up expired bookings")

	return &SweepSummary{
		Success:      true,
		CleanedCount: len(ids),
		BookingIDs:   ids,
		Timestamp:    now,
	}, nil
}

// notifyExpired tells the requester their booking expired. Lookup and
// delivery failures are logged, never propagated.
func (s *Sweeper) notifyExpired(ctx context.Context, booking *models.Booking) {
	customer, err := s.users.GetUser(ctx, booking.RequestBy)
	if err != nil {
		s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("Customer lookup failed for expiry notification")
		return
	}
	if len(customer.DeviceID) == 0 {
		return
	}

	_, err = s.notifier.Send(ctx, models.NotificationRequest{
		Tokens:    customer.DeviceID,
		Title:     i18n.Translate(i18n.KeyBookingCancelled, customer.PreferredLanguage),
		Body:      i18n.Translate(i18n.KeyBookingCancelNotConfirmedInTime, customer.PreferredLanguage),
		BookingID: booking.ID,
		UserID:    customer.ID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("Expiry notification failed")
	}
}
