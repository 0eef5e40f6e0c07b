package database

import (
	"context"
	"testing"
	"time"

	"jojam/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCreateAndGetReservation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r := newTestReservation(1, testDate, "14:00", "16:00")
	require.NoError(t, db.CreateReservation(ctx, r))
	assert.NotZero(t, r.ID)
	assert.Equal(t, int64(1), r.Version)

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "The Jams", got.BandName)
	assert.Equal(t, "14:00", got.StartTime)
	assert.Equal(t, "16:00", got.EndTime)
	assert.Equal(t, testDate, got.Date)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.ApprovedAt)
}

func TestGetReservation_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetReservation(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountConflicting_HalfOpenIntervals(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	existing := newTestReservation(1, testDate, "10:00", "11:00")
	require.NoError(t, db.CreateReservation(ctx, existing))

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"identical range", "10:00", "11:00", 1},
		{"overlap middle", "10:30", "11:30", 1},
		{"contained", "10:15", "10:45", 1},
		{"containing", "09:00", "12:00", 1},
		{"touching end is free", "11:00", "12:00", 0},
		{"touching start is free", "09:00", "10:00", 0},
		{"disjoint before", "08:00", "09:30", 0},
		{"disjoint after", "12:00", "13:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := db.CountConflicting(ctx, testDate, tt.start, tt.end, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestCountConflicting_OtherDateDoesNotBlock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.CreateReservation(ctx, newTestReservation(1, testDate, "10:00", "11:00")))

	count, err := db.CountConflicting(ctx, testDate.AddDate(0, 0, 1), "10:00", "11:00", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountConflicting_DeclinedDoesNotBlock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	declined := newTestReservation(1, testDate, "10:00", "11:00")
	declined.Status = models.StatusDeclined
	require.NoError(t, db.CreateReservation(ctx, declined))

	count, err := db.CountConflicting(ctx, testDate, "10:00", "11:00", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// pending and accepted both block
	for _, status := range []string{models.StatusPending, models.StatusAccepted} {
		r := newTestReservation(2, testDate.AddDate(0, 0, 1), "10:00", "11:00")
		r.Status = status
		require.NoError(t, db.CreateReservation(ctx, r))

		count, err := db.CountConflicting(ctx, r.Date, "10:30", "11:30", 0)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "status %s should block", status)
	}
}

func TestCountConflicting_ExcludesOwnRow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r := newTestReservation(1, testDate, "10:00", "11:00")
	require.NoError(t, db.CreateReservation(ctx, r))

	count, err := db.CountConflicting(ctx, testDate, "10:00", "11:00", r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFindConflicting(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	a := newTestReservation(1, testDate, "09:00", "10:00")
	b := newTestReservation(2, testDate, "10:30", "12:00")
	require.NoError(t, db.CreateReservation(ctx, a))
	require.NoError(t, db.CreateReservation(ctx, b))

	conflicts, err := db.FindConflicting(ctx, testDate, "09:30", "11:00", 0)
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, a.ID, conflicts[0].ID)
	assert.Equal(t, b.ID, conflicts[1].ID)
}

func TestCreateReservationLocked_Conflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	first := newTestReservation(1, testDate, "09:00", "10:00")
	require.NoError(t, db.CreateReservationLocked(ctx, first))

	second := newTestReservation(2, testDate, "09:30", "10:30")
	err := db.CreateReservationLocked(ctx, second)
	assert.ErrorIs(t, err, ErrSlotConflict)

	// The adjacent slot is still admitted
	third := newTestReservation(3, testDate, "10:00", "11:00")
	assert.NoError(t, db.CreateReservationLocked(ctx, third))
}

func TestUpdateReservationStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r := newTestReservation(1, testDate, "14:00", "16:00")
	require.NoError(t, db.CreateReservation(ctx, r))

	now := time.Now()
	err := db.UpdateReservationStatusWithVersion(ctx, r.ID, r.Version, models.StatusAccepted, &now)
	require.NoError(t, err)

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, int64(2), got.Version)
	require.NotNil(t, got.ApprovedAt)

	// Stale version is rejected
	err = db.UpdateReservationStatusWithVersion(ctx, r.ID, r.Version, models.StatusDeclined, nil)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	// approved_at survives a later non-accept transition
	err = db.UpdateReservationStatusWithVersion(ctx, got.ID, got.Version, models.StatusDeclined, nil)
	require.NoError(t, err)
	got, err = db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, got.Status)
	assert.NotNil(t, got.ApprovedAt)
}

func TestDeleteReservation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	r := newTestReservation(1, testDate, "14:00", "16:00")
	require.NoError(t, db.CreateReservation(ctx, r))

	rows, err := db.DeleteReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = db.DeleteReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)

	_, err = db.GetReservation(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUserReservations(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.CreateReservation(ctx, newTestReservation(1, testDate, "09:00", "10:00")))
	require.NoError(t, db.CreateReservation(ctx, newTestReservation(1, testDate.AddDate(0, 0, 1), "09:00", "10:00")))
	require.NoError(t, db.CreateReservation(ctx, newTestReservation(2, testDate, "11:00", "12:00")))

	mine, err := db.GetUserReservations(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := db.GetAllReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetDailyReservations(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.CreateReservation(ctx, newTestReservation(1, testDate, "09:00", "10:00")))
	require.NoError(t, db.CreateReservation(ctx, newTestReservation(2, testDate, "11:00", "12:00")))
	require.NoError(t, db.CreateReservation(ctx, newTestReservation(3, testDate.AddDate(0, 0, 1), "09:00", "10:00")))

	daily, err := db.GetDailyReservations(ctx, testDate, testDate.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, daily, 2)
	assert.Len(t, daily["2025-03-01"], 2)
	assert.Len(t, daily["2025-03-02"], 1)
}

func TestMonthlyRevenue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	accepted := newTestReservation(1, testDate, "09:00", "10:00")
	accepted.Status = models.StatusAccepted
	accepted.TotalPrice = 500
	require.NoError(t, db.CreateReservation(ctx, accepted))

	accepted2 := newTestReservation(2, testDate.AddDate(0, 0, 10), "11:00", "13:00")
	accepted2.Status = models.StatusAccepted
	accepted2.TotalPrice = 1000
	require.NoError(t, db.CreateReservation(ctx, accepted2))

	// pending revenue does not count
	pending := newTestReservation(3, testDate, "14:00", "15:00")
	pending.TotalPrice = 9999
	require.NoError(t, db.CreateReservation(ctx, pending))

	// other month does not count
	other := newTestReservation(4, testDate.AddDate(0, 1, 0), "09:00", "10:00")
	other.Status = models.StatusAccepted
	other.TotalPrice = 700
	require.NoError(t, db.CreateReservation(ctx, other))

	total, err := db.MonthlyRevenue(ctx, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, total)
}
