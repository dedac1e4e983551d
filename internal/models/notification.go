package models

import "time"

// InnerData is the payload the mobile app unpacks to route a tapped
// notification to the right screen.
type InnerData struct {
	Screen        string `bson:"screen" json:"screen"`
	BookingID     string `bson:"bookingId" json:"bookingId"`
	ImageAssetURL string `bson:"imageAssetUrl,omitempty" json:"imageAssetUrl,omitempty"`
	IsPayment     bool   `bson:"isPayment" json:"isPayment"`
	IsReview      bool   `bson:"isReview" json:"isReview"`
}

// NotificationData wraps InnerData under the key the clients expect.
type NotificationData struct {
	InnerData InnerData `bson:"InnerData" json:"InnerData"`
}

// Notification is a per-user history entry (notifications collection).
// Append-only; the unread counter on the user document tracks how many
// are still unseen.
type Notification struct {
	ID        string           `bson:"id" json:"id"`
	UserID    string           `bson:"userId" json:"userId"`
	Title     string           `bson:"title" json:"title"`
	Body      string           `bson:"body" json:"body"`
	Data      NotificationData `bson:"data" json:"data"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
}

// NotificationRequest is the input to the notification dispatcher,
// matching the sendNotificationFunction body.
type NotificationRequest struct {
	Tokens         []string  `json:"tokens"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	BookingID      string    `json:"bookingId"`
	UserID         string    `json:"userId,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	IsPayment      bool      `json:"isPayment,omitempty"`
	IsReview       bool      `json:"isReview,omitempty"`
	IsRescheduling bool      `json:"isRescheduling,omitempty"`
	RescheduleTime time.Time `json:"rescheduleTime,omitempty"`
}

// NotificationResult reports what a dispatch actually did. Invalid
// tokens are informational; nothing prunes them here.
type NotificationResult struct {
	NotificationID string   `json:"notificationId,omitempty"`
	GroupToken     string   `json:"groupToken,omitempty"`
	InvalidTokens  []string `json:"invalidTokens,omitempty"`
}

// PushMessage is a single FCM v1 send.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}
