package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the live ride request document (bookingRequest collection).
// Field names follow the wire format the mobile clients already use,
// including the historical "preferedLanguage"-style spellings.
type Booking struct {
	ID                 string     `bson:"id" json:"id"`
	Status             int        `bson:"status" json:"status"`
	IsBookingConfirmed int        `bson:"isBookingConfirmed" json:"isBookingConfirmed"`
	IsSchedule         bool       `bson:"isSchedule" json:"isSchedule"`
	StartRide          bool       `bson:"startRide" json:"startRide"`
	ScheduleTime       time.Time  `bson:"scheduleTime" json:"scheduleTime"`
	RequestBy          string     `bson:"requestBy" json:"requestBy"`
	AcceptedBy         string     `bson:"acceptedBy,omitempty" json:"acceptedBy,omitempty"`
	AcceptedTime       *time.Time `bson:"acceptedTime,omitempty" json:"acceptedTime,omitempty"`
	CreatedAt          time.Time  `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// CancelMeta records who cancelled a booking and why.
type CancelMeta struct {
	CancelledBy       string
	CancelledByUserID string
	Reason            string
	CancelledAt       time.Time
}

// CancelledBooking is the archived snapshot of a booking plus
// cancellation metadata (cancelledBooking collection). The sweep tags
// its copies with the expiry fields; the reconciler leaves them unset.
type CancelledBooking struct {
	Booking           `bson:",inline"`
	CancelledBy       string     `bson:"cancelledBy" json:"cancelledBy"`
	CancelledByUserID string     `bson:"cancelledByUserId" json:"cancelledByUserId"`
	Reason            string     `bson:"reason,omitempty" json:"reason,omitempty"`
	CancelledAt       time.Time  `bson:"cancelledAt" json:"cancelledAt"`
	IsExpired         bool       `bson:"isExpired,omitempty" json:"isExpired,omitempty"`
	ExpiredAt         *time.Time `bson:"expiredAt,omitempty" json:"expiredAt,omitempty"`
}

// NewCancelledCopy snapshots a booking into an archive record. The copy
// keeps the live booking id so the archive stays addressable by it.
func NewCancelledCopy(b *Booking, meta CancelMeta) *CancelledBooking {
	c := &CancelledBooking{
		Booking:           *b,
		CancelledBy:       meta.CancelledBy,
		CancelledByUserID: meta.CancelledByUserID,
		Reason:            meta.Reason,
		CancelledAt:       meta.CancelledAt,
	}
	return c
}

// NewCancelledCopyWithFreshID is used when the live record survives and
// the archive entry documents the event, so the copy needs its own id.
func NewCancelledCopyWithFreshID(b *Booking, meta CancelMeta) *CancelledBooking {
	c := NewCancelledCopy(b, meta)
	c.Booking.ID = uuid.NewString()
	return c
}

// NewExpiredCopy tags an archive snapshot written by the expired-booking
// sweep. The status is closed out so clients treat it as finished.
func NewExpiredCopy(b *Booking, now time.Time) *CancelledBooking {
	c := &CancelledBooking{
		Booking:     *b,
		CancelledBy: CancelledByCleanup,
		Reason:      ReasonExpired,
		CancelledAt: now,
		IsExpired:   true,
		ExpiredAt:   &now,
	}
	c.Booking.Status = StatusRideComplete
	return c
}
