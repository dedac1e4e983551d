package service

import (
	"context"
	"errors"
	"time"

	"ridesync/internal/domain"
	"ridesync/internal/metrics"
	"ridesync/internal/models"
	"ridesync/internal/push"
	"ridesync/internal/scheduler"

	"github.com/rs/zerolog"
)

// NotificationService fans a message out to a user's devices and keeps
// the per-user notification history. Delivery is best effort end to
// end: nothing here may block a booking-state transition, so delivery
// problems surface in the result instead of an error.
type NotificationService struct {
	users   domain.UserStore
	gateway domain.PushGateway
	jobs    domain.JobScheduler
	logger  *zerolog.Logger
}

func NewNotificationService(users domain.UserStore, gateway domain.PushGateway, jobs domain.JobScheduler, logger *zerolog.Logger) *NotificationService {
	return &NotificationService{
		users:   users,
		gateway: gateway,
		jobs:    jobs,
		logger:  logger,
	}
}

// Send records the notification, optionally pushes the booking's
// scheduler job forward, and delivers one push per device token.
// Tokens the gateway reports as unknown are returned in the result.
func (s *NotificationService) Send(ctx context.Context, req models.NotificationRequest) (*models.NotificationResult, error) {
	result := &models.NotificationResult{}

	if req.UserID != "" {
		s.recordHistory(ctx, req, result)
	}

	if req.IsRescheduling && !req.RescheduleTime.IsZero() {
		// Fire and forget: a scheduler hiccup must not hold up delivery.
		expr := scheduler.CronAt(req.RescheduleTime)
		if err := s.jobs.UpdateJob(ctx, req.BookingID, expr); err != nil {
			s.logger.Error().Err(err).Str("booking_id", req.BookingID).
				Str("schedule", expr).Msg("Scheduler update during notification failed")
		}
	}

	if len(req.Tokens) == 0 {
		return result, nil
	}

	accessToken, err := s.gateway.AccessToken(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", req.BookingID).Msg("Push credential unavailable, skipping delivery")
		return result, nil
	}

	if len(req.Tokens) > 1 {
		groupToken, err := s.gateway.GroupToken(ctx, accessToken, req.Tokens)
		if err != nil {
			s.logger.Warn().Err(err).Str("booking_id", req.BookingID).Msg("Device group token unavailable")
		} else {
			result.GroupToken = groupToken
		}
	}

	msg := models.PushMessage{
		Title: req.Title,
		Body:  req.Body,
		Data: map[string]string{
			"id":     result.NotificationID,
			"userId": req.UserID,
		},
	}

	for _, token := range req.Tokens {
		err := s.gateway.SendToDevice(ctx, accessToken, token, msg)
		switch {
		case err == nil:
			metrics.IncPush(metrics.PushSent)
		case errors.Is(err, push.ErrTokenNotFound):
			metrics.IncPush(metrics.PushInvalidToken)
			result.InvalidTokens = append(result.InvalidTokens, token)
			s.logger.Warn().Str("token", token).Str("booking_id", req.BookingID).Msg("Device token rejected as unknown")
		default:
			metrics.IncPush(metrics.PushFailed)
			s.logger.Error().Err(err).Str("token", token).Str("booking_id", req.BookingID).Msg("Push delivery failed")
		}
	}

	return result, nil
}

// recordHistory persists the notification sub-record and bumps the
// unread counter. Failures are logged and swallowed.
func (s *NotificationService) recordHistory(ctx context.Context, req models.NotificationRequest, result *models.NotificationResult) {
	n := &models.Notification{
		UserID: req.UserID,
		Title:  req.Title,
		Body:   req.Body,
		Data: models.NotificationData{
			InnerData: models.InnerData{
				Screen:        "booking",
				BookingID:     req.BookingID,
				ImageAssetURL: req.ImageURL,
				IsPayment:     req.IsPayment,
				IsReview:      req.IsReview,
			},
		},
		CreatedAt: time.Now(),
	}

	id, err := s.users.AddNotification(ctx, n)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to record notification")
		return
	}
	result.NotificationID = id

	if err := s.users.IncrementUnread(ctx, req.UserID); err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to increment unread counter")
	}
}
