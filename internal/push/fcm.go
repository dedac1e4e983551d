// Package push talks to the FCM HTTP APIs: the v1 send endpoint for
// per-device messages and the legacy device-group endpoint that merges
// several tokens into one group-delivery token.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"

	"ridesync/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// ErrTokenNotFound marks a device token the gateway no longer knows.
var ErrTokenNotFound = errors.New("device token not found")

type Client struct {
	projectID  string
	jwtConfig  *jwt.Config
	httpClient *http.Client
	sendURL    string
	groupURL   string
	logger     *zerolog.Logger
}

func NewClient(projectID, credentialsFile string, logger *zerolog.Logger) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	return &Client{
		projectID:  projectID,
		jwtConfig:  cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sendURL:    fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", projectID),
		groupURL:   "https://fcm.googleapis.com/fcm/notification",
		logger:     logger,
	}, nil
}

// AccessToken obtains a bearer credential for the messaging scope.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, err := c.jwtConfig.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("obtain access token: %w", err)
	}
	return token.AccessToken, nil
}

type groupRequest struct {
	Operation           string   `json:"operation"`
	NotificationKeyName string   `json:"notification_key_name"`
	RegistrationIDs     []string `json:"registration_ids"`
}

type groupResponse struct {
	NotificationKey string `json:"notification_key"`
}

// GroupToken merges the device tokens into one group-delivery token.
// Best effort: the caller proceeds with per-device sends either way.
func (c *Client) GroupToken(ctx context.Context, accessToken string, tokens []string) (string, error) {
	body, err := json.Marshal(groupRequest{
		Operation:           "create",
		NotificationKeyName: newNotificationKeyName(),
		RegistrationIDs:     tokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.groupURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("access_token_auth", "true")
	req.Header.Set("project_id", c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create device group: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create device group: status %d", resp.StatusCode)
	}

	var parsed groupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode device group response: %w", err)
	}
	return parsed.NotificationKey, nil
}

type sendRequest struct {
	Message sendMessage `json:"message"`
}

type sendMessage struct {
	Notification sendNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Token        string            `json:"token"`
}

type sendNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SendToDevice delivers one push message to one device token. A 404
// from the gateway is reported as ErrTokenNotFound.
func (c *Client) SendToDevice(ctx context.Context, accessToken, token string, msg models.PushMessage) error {
	body, err := json.Marshal(sendRequest{
		Message: sendMessage{
			Notification: sendNotification{Title: msg.Title, Body: msg.Body},
			Data:         msg.Data,
			Token:        token,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("send push to %s: %w", token, ErrTokenNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send push to %s: status %d: %s", token, resp.StatusCode, detail)
	}
	return nil
}

const keyNameChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// newNotificationKeyName generates the unique group key name: 35 random
// characters plus the current millisecond timestamp.
func newNotificationKeyName() string {
	buf := make([]byte, 35)
	for i := range buf {
		buf[i] = keyNameChars[rand.Intn(len(keyNameChars))]
	}
	return fmt.Sprintf("%s%d", buf, time.Now().UnixMilli())
}
