package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"ridesync/internal/models"
	"ridesync/internal/service"
	"ridesync/internal/store"
)

type reconcileRequest struct {
	BookingID string `json:"bookingId"`
}

type jobRequest struct {
	BookingID   string `json:"bookingId"`
	NewSchedule string `json:"newSchedule"`
	JobStatus   int    `json:"jobStatus"`
}

// handleMainFunction runs the reconciliation for one booking. Cloud
// Scheduler delivers the job body base64-encoded, so the payload is
// accepted either as plain JSON or as a base64 wrapping of it.
func (s *HTTPServer) handleMainFunction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var body reconcileRequest
	if err := decodePossiblyEncoded(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.BookingID) == "" {
		writeError(w, http.StatusBadRequest, "bookingId is required")
		return
	}

	err = s.reconciler.Reconcile(r.Context(), body.BookingID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Success"})
	case errors.Is(err, service.ErrReconcileInProgress):
		writeError(w, http.StatusConflict, "reconciliation already in progress")
	case errors.Is(err, store.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		s.logger.Error().Err(err).Str("booking_id", body.BookingID).Msg("Reconciliation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) handleUpdateSchedulerJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body jobRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.BookingID) == "" {
		writeError(w, http.StatusBadRequest, "bookingId is required")
		return
	}

	var err error
	switch body.JobStatus {
	case models.JobUpdate:
		if strings.TrimSpace(body.NewSchedule) == "" {
			writeError(w, http.StatusBadRequest, "newSchedule is required")
			return
		}
		err = s.jobs.UpdateJob(r.Context(), body.BookingID, body.NewSchedule)
	case models.JobDelete:
		err = s.jobs.DeleteJob(r.Context(), body.BookingID)
	default:
		writeError(w, http.StatusBadRequest, "unknown jobStatus")
		return
	}

	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", body.BookingID).Int("job_status", body.JobStatus).Msg("Scheduler job operation failed")
		writeError(w, http.StatusInternalServerError, "scheduler job operation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// handleSendNotification delivers a push to the supplied tokens.
// Delivery problems are reported in the body, not the status code: the
// caller only gets an error when the request itself is malformed.
func (s *HTTPServer) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	result, err := s.notifier.Send(r.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", req.BookingID).Msg("Notification send failed")
		writeError(w, http.StatusInternalServerError, "notification send failed")
		return
	}

	invalid := result.InvalidTokens
	if invalid == nil {
		invalid = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Success",
		"notificationId": result.NotificationID,
		"groupToken":     result.GroupToken,
		"invalidTokens":  invalid,
	})
}

// decodePossiblyEncoded accepts either a JSON object or a base64
// string (optionally JSON-quoted) that decodes to one.
func decodePossiblyEncoded(raw []byte, out any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return errors.New("empty body")
	}

	if strings.HasPrefix(trimmed, "{") {
		return json.Unmarshal([]byte(trimmed), out)
	}

	trimmed = strings.Trim(trimmed, `"`)
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return err
	}
	return json.Unmarshal(decoded, out)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
