package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ridesync/internal/config"
	"ridesync/internal/models"
	"ridesync/internal/service"
	"ridesync/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Reconcile(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
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

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) UpdateJob(ctx context.Context, bookingID, schedule string) error {
	return m.Called(ctx, bookingID, schedule).Error(0)
}

func (m *mockJobs) DeleteJob(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
}

func newTestServer() (*mockReconciler, *mockNotifier, *mockJobs, http.Handler) {
	logger := zerolog.Nop()
	reconciler := &mockReconciler{}
	notifier := &mockNotifier{}
	jobs := &mockJobs{}
	srv := NewHTTPServer(config.ServerConfig{Port: 0}, config.MonitoringConfig{}, reconciler, notifier, jobs, &logger)
	return reconciler, notifier, jobs, srv.server.Handler
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMainFunctionSuccess(t *testing.T) {
	reconciler, _, _, handler := newTestServer()
	reconciler.On("Reconcile", mock.Anything, "b-1").Return(nil)

	rec := doJSON(t, handler, http.MethodPost, "/mainFunction", map[string]string{"bookingId": "b-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Success"}`, rec.Body.String())
}

func TestMainFunctionBase64Body(t *testing.T) {
	reconciler, _, _, handler := newTestServer()
	reconciler.On("Reconcile", mock.Anything, "b-1").Return(nil)

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"bookingId":"b-1"}`))
	req := httptest.NewRequest(http.MethodPost, "/mainFunction", bytes.NewBufferString(`"`+encoded+`"`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	reconciler.AssertCalled(t, "Reconcile", mock.Anything, "b-1")
}

func TestMainFunctionMissingBookingID(t *testing.T) {
	reconciler, _, _, handler := newTestServer()

	rec := doJSON(t, handler, http.MethodPost, "/mainFunction", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestMainFunctionBookingNotFound(t *testing.T) {
	reconciler, _, _, handler := newTestServer()
	reconciler.On("Reconcile", mock.Anything, "gone").Return(store.ErrBookingNotFound)

	rec := doJSON(t, handler, http.MethodPost, "/mainFunction", map[string]string{"bookingId": "gone"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMainFunctionConflict(t *testing.T) {
	reconciler, _, _, handler := newTestServer()
	reconciler.On("Reconcile", mock.Anything, "busy").Return(service.ErrReconcileInProgress)

	rec := doJSON(t, handler, http.MethodPost, "/mainFunction", map[string]string{"bookingId": "busy"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMainFunctionWrongMethod(t *testing.T) {
	_, _, _, handler := newTestServer()

	rec := doJSON(t, handler, http.MethodGet, "/mainFunction", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUpdateSchedulerJobUpdate(t *testing.T) {
	_, _, jobs, handler := newTestServer()
	jobs.On("UpdateJob", mock.Anything, "b-1", "30 10 14 3 *").Return(nil)

	rec := doJSON(t, handler, http.MethodPost, "/updateSchedulerJob", map[string]any{
		"bookingId":   "b-1",
		"newSchedule": "30 10 14 3 *",
		"jobStatus":   models.JobUpdate,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	jobs.AssertCalled(t, "UpdateJob", mock.Anything, "b-1", "30 10 14 3 *")
}

func TestUpdateSchedulerJobDelete(t *testing.T) {
	_, _, jobs, handler := newTestServer()
	jobs.On("DeleteJob", mock.Anything, "b-1").Return(nil)

	rec := doJSON(t, handler, http.MethodPost, "/updateSchedulerJob", map[string]any{
		"bookingId": "b-1",
		"jobStatus": models.JobDelete,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	jobs.AssertCalled(t, "DeleteJob", mock.Anything, "b-1")
}

func TestUpdateSchedulerJobMissingSchedule(t *testing.T) {
	_, _, jobs, handler := newTestServer()

	rec := doJSON(t, handler, http.MethodPost, "/updateSchedulerJob", map[string]any{
		"bookingId": "b-1",
		"jobStatus": models.JobUpdate,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	jobs.AssertNotCalled(t, "UpdateJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSchedulerJobFailure(t *testing.T) {
	_, _, jobs, handler := newTestServer()
	jobs.On("DeleteJob", mock.Anything, "b-1").Return(errors.New("scheduler unreachable"))

	rec := doJSON(t, handler, http.MethodPost, "/updateSchedulerJob", map[string]any{
		"bookingId": "b-1",
		"jobStatus": models.JobDelete,
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSendNotificationReportsInvalidTokens(t *testing.T) {
	_, notifier, _, handler := newTestServer()
	notifier.On("Send", mock.Anything, mock.Anything).Return(&models.NotificationResult{
		NotificationID: "n-1",
		InvalidTokens:  []string{"stale-token"},
	}, nil)

	rec := doJSON(t, handler, http.MethodPost, "/sendNotificationFunction", map[string]any{
		"title":  "Booking Cancelled",
		"body":   "No driver accepted your request.",
		"tokens": []string{"t-1", "stale-token"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message        string   `json:"message"`
		NotificationID string   `json:"notificationId"`
		InvalidTokens  []string `json:"invalidTokens"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Success", resp.Message)
	assert.Equal(t, "n-1", resp.NotificationID)
	assert.Equal(t, []string{"stale-token"}, resp.InvalidTokens)
}

func TestSendNotificationRequiresTitleAndBody(t *testing.T) {
	_, notifier, _, handler := newTestServer()

	rec := doJSON(t, handler, http.MethodPost, "/sendNotificationFunction", map[string]any{
		"tokens": []string{"t-1"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHealthz(t *testing.T) {
	_, _, _, handler := newTestServer()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := zerolog.Nop()
	srv := NewHTTPServer(config.ServerConfig{RateLimitRPS: 1, RateLimitBurst: 1}, config.MonitoringConfig{}, &mockReconciler{}, &mockNotifier{}, &mockJobs{}, &logger)

	first := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	first.RemoteAddr = "10.0.0.1:4000"
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	second.RemoteAddr = "10.0.0.1:4001"
	rec = httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
