package models

import "time"

// SyncTask is a persisted unit of work for the sheets worker.
type SyncTask struct {
	ID            int64
	TaskType      string
	ReservationID int64
	Payload       string
	Status        string
	RetryCount    int
	LastError     string
	CreatedAt     time.Time
	ProcessedAt   *time.Time
	NextRetryAt   *time.Time
}
