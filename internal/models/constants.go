package models

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	SessionPractice  = "practice"
	SessionRecording = "recording"
)

const (
	// DateLayout is the storage format for reservation dates.
	DateLayout = "2006-01-02"

	// ClockLayout is the storage format for start/end times.
	ClockLayout = "15:04"
)

const (
	// DefaultSessionTTL is the lifetime of a login session in seconds.
	DefaultSessionTTL = 24 * 60 * 60

	// RateLimitRequests is the number of requests allowed per window.
	RateLimitRequests = 60

	// RateLimitWindow is the rate-limit window in seconds.
	RateLimitWindow = 60

	// WorkerQueueSize caps the in-memory sync queue.
	WorkerQueueSize = 1000

	// ReceiptPrefix is prepended to zero-padded reservation IDs on receipts.
	ReceiptPrefix = "RES-"
)

// ValidStatus reports whether s is one of the reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// ValidSessionType reports whether t is a known session type.
func ValidSessionType(t string) bool {
	switch t {
	case SessionPractice, SessionRecording:
		return true
	}
	return false
}
