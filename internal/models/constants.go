package models

import "time"

// Booking lifecycle status, mirrored by the mobile clients.
const (
	StatusPendingRequest     = 0
	StatusAccepted           = 1
	StatusDriverReached      = 2
	StatusRideStarted        = 3
	StatusDestinationReached = 4
	StatusRideComplete       = 5
)

// Driver confirmation state for scheduled bookings.
const (
	ConfirmNotAssigned = 0
	ConfirmPending     = 1
	ConfirmAccepted    = 2
)

// Scheduler job actions accepted by the update endpoint.
const (
	JobUpdate = 0
	JobDelete = 1
)

// Reconciliation policy constants. A booking is only touched when its
// trigger time is inside the outer window; inside the inner cutoff it is
// cancelled instead of rescheduled.
const (
	ReconcileWindowSeconds = 1400
	CancelCutoffSeconds    = 150

	PendingRescheduleOffset = 19 * time.Minute
	ConfirmRescheduleOffset = 15 * time.Minute
)

// Cancellation provenance written into archive copies.
const (
	CancelledByScheduler = "Scheduler"
	CancelledByFunction  = "cloud_function"
	CancelledByCleanup   = "system_cleanup"

	ReasonNotConfirmedInTime = "Booking not confirmed in time"
	ReasonExpired            = "Booking expired - scheduled time passed without acceptance"
)

// DefaultReconcileLockTTL bounds how long a per-booking reconciliation
// lock is held when the process dies before releasing it.
const DefaultReconcileLockTTL = 30 * time.Second
