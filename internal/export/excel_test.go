package export

import (
	"testing"
	"time"

	"jojam/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	logger := zerolog.Nop()
	return NewExporter(t.TempDir(), &logger)
}

func TestReceiptNumber(t *testing.T) {
	assert.Equal(t, "RES-000007", ReceiptNumber(7))
	assert.Equal(t, "RES-123456", ReceiptNumber(123456))
}

func TestScheduleWorkbook(t *testing.T) {
	e := newTestExporter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	daily := map[string][]*models.Reservation{
		"2025-03-01": {
			{BandName: "The Jams", Type: models.SessionPractice, StartTime: "14:00", EndTime: "16:00", Status: models.StatusAccepted},
			{BandName: "Ghost Band", Type: models.SessionPractice, StartTime: "16:00", EndTime: "17:00", Status: models.StatusDeclined},
		},
		"2025-03-02": {
			{BandName: "Loud Ones", Type: models.SessionRecording, StartTime: "10:00", EndTime: "12:00", Status: models.StatusPending},
		},
	}

	path, err := e.ScheduleWorkbook(start, end, daily)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Schedule", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Period: 01.03.2025 - 03.03.2025", title)

	// 01.03 column holds the accepted slot but not the declined one
	day1, err := f.GetCellValue("Schedule", "B3")
	require.NoError(t, err)
	assert.Contains(t, day1, "14:00-16:00 The Jams")
	assert.NotContains(t, day1, "Ghost Band")

	day2, err := f.GetCellValue("Schedule", "C3")
	require.NoError(t, err)
	assert.Contains(t, day2, "Loud Ones")

	// Empty day shows as free
	day3, err := f.GetCellValue("Schedule", "D3")
	require.NoError(t, err)
	assert.Equal(t, "Free", day3)
}

func TestReceiptWorkbook(t *testing.T) {
	e := newTestExporter(t)
	approvedAt := time.Date(2025, 2, 20, 10, 30, 0, 0, time.UTC)

	r := &models.Reservation{
		ID:         7,
		BandName:   "The Jams",
		Members:    4,
		Type:       models.SessionPractice,
		Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
		EndTime:    "16:00",
		TotalPrice: 1000,
		Status:     models.StatusAccepted,
		ApprovedAt: &approvedAt,
	}
	user := &models.User{Username: "alice"}

	path, err := e.ReceiptWorkbook(r, user)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "receipt_RES-000007.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Receipt", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Receipt RES-000007", header)

	total, err := f.GetCellValue("Receipt", "B10")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", total)
}
