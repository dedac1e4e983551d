package service

import (
	"context"
	"time"

	"ridesync/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingStore) ResetToLive(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBookingStore) SetConfirmation(ctx context.Context, id string, state int) error {
	return m.Called(ctx, id, state).Error(0)
}

func (m *mockBookingStore) ArchiveBooking(ctx context.Context, b *models.Booking, meta models.CancelMeta) error {
	return m.Called(ctx, b, meta).Error(0)
}

func (m *mockBookingStore) InsertCancelledCopy(ctx context.Context, c *models.CancelledBooking) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockBookingStore) FindExpiredScheduled(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookingStore) ArchiveExpiredBatch(ctx context.Context, bookings []*models.Booking, now time.Time) error {
	return m.Called(ctx, bookings, now).Error(0)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) AddNotification(ctx context.Context, n *models.Notification) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *mockUserStore) IncrementUnread(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, req models.NotificationRequest) (*models.NotificationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NotificationResult), args.Error(1)
}

type mockJobScheduler struct {
	mock.Mock
}

func (m *mockJobScheduler) UpdateJob(ctx context.Context, bookingID, schedule string) error {
	return m.Called(ctx, bookingID, schedule).Error(0)
}

func (m *mockJobScheduler) DeleteJob(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) AccessToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) GroupToken(ctx context.Context, accessToken string, tokens []string) (string, error) {
	args := m.Called(ctx, accessToken, tokens)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) SendToDevice(ctx context.Context, accessToken, token string, msg models.PushMessage) error {
	return m.Called(ctx, accessToken, token, msg).Error(0)
}

// openLocker always grants the lock.
type openLocker struct{}

func (openLocker) Acquire(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (openLocker) Release(context.Context, string) error                        { return nil }

// closedLocker always reports contention.
type closedLocker struct{}

func (closedLocker) Acquire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}
func (closedLocker) Release(context.Context, string) error { return nil }
