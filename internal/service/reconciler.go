package service

import (
	"context"
	"errors"
	"time"

	"ridesync/internal/domain"
	"ridesync/internal/events"
	"ridesync/internal/i18n"
	"ridesync/internal/metrics"
	"ridesync/internal/models"
	"ridesync/internal/scheduler"

	"github.com/rs/zerolog"
)

// ErrReconcileInProgress is returned when another invocation already
// holds the booking's reconciliation lock.
var ErrReconcileInProgress = errors.New("reconciliation already in progress")

// Reconciler re-checks a scheduled booking at its trigger time and
// decides whether to cancel it, push the trigger window forward,
// request driver confirmation, or flip it into the live pool. Job and
// notification side effects are advisory; the booking-state write is
// what a run stands or falls on.
type Reconciler struct {
	bookings domain.BookingStore
	users    domain.UserStore
	notifier domain.Notifier
	jobs     domain.JobScheduler
	locks    domain.Locker
	eventBus domain.EventPublisher
	lockTTL  time.Duration
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewReconciler(
	bookings domain.BookingStore,
	users domain.UserStore,
	notifier domain.Notifier,
	jobs domain.JobScheduler,
	locks domain.Locker,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		bookings: bookings,
		users:    users,
		notifier: notifier,
		jobs:     jobs,
		locks:    locks,
		eventBus: eventBus,
		lockTTL:  models.DefaultReconcileLockTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Reconcile processes one booking at its scheduler-triggered time.
func (r *Reconciler) Reconcile(ctx context.Context, bookingID string) error {
	acquired, err := r.locks.Acquire(ctx, bookingID, r.lockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrReconcileInProgress
	}
	defer func() {
		if err := r.locks.Release(ctx, bookingID); err != nil {
			r.logger.Warn().Err(err).Str("booking_id", bookingID).Msg("Lock release failed")
		}
	}()

	booking, err := r.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		// A vanished booking still owns a job; stop it re-triggering.
		r.requestJobDelete(ctx, bookingID)
		metrics.IncReconcile(metrics.OutcomeNotFound)
		return err
	}

	now := r.now()
	secondsUntilSchedule := int64(booking.ScheduleTime.Sub(now).Seconds())
	log := r.logger.With().Str("booking_id", bookingID).
		Int("status", booking.Status).
		Int64("seconds_until_schedule", secondsUntilSchedule).Logger()

	switch {
	case booking.Status == models.StatusPendingRequest && secondsUntilSchedule < models.ReconcileWindowSeconds:
		if secondsUntilSchedule < models.CancelCutoffSeconds {
			return r.cancelUnanswered(ctx, booking, now, &log)
		}
		return r.pushWindowForward(ctx, booking, now, &log)

	case booking.Status == models.StatusAccepted && booking.IsSchedule:
		return r.reconcileAccepted(ctx, booking, now, &log)

	default:
		// Nothing to do for this booking; stop the job re-triggering.
		log.Info().Msg("No reconciliation branch applies, deleting scheduler job")
		r.requestJobDelete(ctx, bookingID)
		metrics.IncReconcile(metrics.OutcomeJobDeleted)
		return nil
	}
}

// cancelUnanswered handles a pending booking too close to its trigger
// time to reschedule safely: notify the customer, archive, stop the job.
func (r *Reconciler) cancelUnanswered(ctx context.Context, booking *models.Booking, now time.Time, log *zerolog.Logger) error {
	customer, err := r.users.GetUser(ctx, booking.RequestBy)
	if err != nil {
		return err
	}

	r.notify(ctx, customer, booking.ID,
		i18n.KeyBookingCancelled, i18n.KeyBookingCancelNoDriver, log)

	err = r.bookings.ArchiveBooking(ctx, booking, models.CancelMeta{
		CancelledBy:       models.CancelledByScheduler,
		CancelledByUserID: models.CancelledByFunction,
		CancelledAt:       now,
	})
	if err != nil {
		return err
	}

	r.requestJobDelete(ctx, booking.ID)
	r.publish(events.EventBookingCancelled, booking, "no response from driver", now)
	metrics.IncReconcile(metrics.OutcomeCancelled)
	log.Info().Msg("Unanswered scheduled booking cancelled and archived")
	return nil
}

// pushWindowForward reschedules the job and returns the booking to the
// live/unassigned pool so drivers see it immediately.
func (r *Reconciler) pushWindowForward(ctx context.Context, booking *models.Booking, now time.Time, log *zerolog.Logger) error {
	newSchedule := scheduler.CronAt(now.Add(models.PendingRescheduleOffset))
	if err := r.jobs.UpdateJob(ctx, booking.ID, newSchedule); err != nil {
		log.Error().Err(err).Str("schedule", newSchedule).Msg("Scheduler update failed")
	}

	if err := r.bookings.ResetToLive(ctx, booking.ID); err != nil {
		return err
	}

	r.publish(events.EventBookingActivated, booking, "", now)
	metrics.IncReconcile(metrics.OutcomeActivated)
	log.Info().Str("schedule", newSchedule).Msg("Booking sent live ahead of schedule")
	return nil
}

func (r *Reconciler) reconcileAccepted(ctx context.Context, booking *models.Booking, now time.Time, log *zerolog.Logger) error {
	driver, err := r.users.GetUser(ctx, booking.AcceptedBy)
	if err != nil {
		return err
	}

	switch booking.IsBookingConfirmed {
	case models.ConfirmNotAssigned:
		r.notify(ctx, driver, booking.ID,
			i18n.KeyBookingConfirmationRequired, i18n.KeyBookingConfirmationRequiredBody, log)

		newSchedule := scheduler.CronAt(now.Add(models.ConfirmRescheduleOffset))
		if err := r.jobs.UpdateJob(ctx, booking.ID, newSchedule); err != nil {
			log.Error().Err(err).Str("schedule", newSchedule).Msg("Scheduler update failed")
		}

		if err := r.bookings.SetConfirmation(ctx, booking.ID, models.ConfirmPending); err != nil {
			return err
		}

		r.publish(events.EventBookingConfirmationRequested, booking, "", now)
		metrics.IncReconcile(metrics.OutcomeConfirmationRequested)
		log.Info().Msg("Driver confirmation requested")
		return nil

	case models.ConfirmPending:
		// Confirmation window elapsed without a driver response.
		r.notify(ctx, driver, booking.ID,
			i18n.KeyBookingCancelled, i18n.KeyBookingCancelNotConfirmedInTime, log)

		r.requestJobDelete(ctx, booking.ID)

		if err := r.bookings.ResetToLive(ctx, booking.ID); err != nil {
			return err
		}

		archive := models.NewCancelledCopyWithFreshID(booking, models.CancelMeta{
			CancelledBy:       models.CancelledByScheduler,
			CancelledByUserID: models.CancelledByFunction,
			Reason:            models.ReasonNotConfirmedInTime,
			CancelledAt:       now,
		})
		if err := r.bookings.InsertCancelledCopy(ctx, archive); err != nil {
			log.Error().Err(err).Msg("Archive record for unconfirmed booking failed")
		}

		r.publish(events.EventBookingNotConfirmed, booking, models.ReasonNotConfirmedInTime, now)
		metrics.IncReconcile(metrics.OutcomeNotConfirmed)
		log.Info().Msg("Unconfirmed booking returned to live pool")
		return nil

	default:
		log.Info().Msg("Booking already confirmed, deleting scheduler job")
		r.requestJobDelete(ctx, booking.ID)
		metrics.IncReconcile(metrics.OutcomeJobDeleted)
		return nil
	}
}

func (r *Reconciler) notify(ctx context.Context, user *models.User, bookingID, titleKey, bodyKey string, log *zerolog.Logger) {
	_, err := r.notifier.Send(ctx, models.NotificationRequest{
		Tokens:    user.DeviceID,
		Title:     i18n.Translate(titleKey, user.PreferredLanguage),
		Body:      i18n.Translate(bodyKey, user.PreferredLanguage),
		BookingID: bookingID,
		UserID:    user.ID,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Notification dispatch failed")
	}
}

func (r *Reconciler) requestJobDelete(ctx context.Context, bookingID string) {
	if err := r.jobs.DeleteJob(ctx, bookingID); err != nil {
		r.logger.Error().Err(err).Str("booking_id", bookingID).Msg("Scheduler job delete failed")
	}
}

func (r *Reconciler) publish(eventType string, booking *models.Booking, reason string, at time.Time) {
	_ = r.eventBus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID: booking.ID,
		Status:    booking.Status,
		RequestBy: booking.RequestBy,
		DriverID:  booking.AcceptedBy,
		Reason:    reason,
		At:        at,
	})
}
