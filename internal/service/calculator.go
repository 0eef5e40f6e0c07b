package service

import (
	"math"
	"time"

	"jojam/internal/models"
)

// parseClock converts an HH:MM string to minutes since midnight.
func parseClock(field, value string) (int, error) {
	t, err := time.Parse(models.ClockLayout, value)
	if err != nil {
		return 0, invalidField(field, "must be in HH:MM format")
	}
	return t.Hour()*60 + t.Minute(), nil
}

func roundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComputeSession derives the billable duration and total price for a slot.
// Duration is fractional hours; only the final total is rounded to cents.
func ComputeSession(start, end string, pricePerHour float64) (hours, total float64, err error) {
	startMin, err := parseClock("start_time", start)
	if err != nil {
		return 0, 0, err
	}
	endMin, err := parseClock("end_time", end)
	if err != nil {
		return 0, 0, err
	}
	if endMin <= startMin {
		return 0, 0, ErrInvalidRange
	}

	hours = float64(endMin-startMin) / 60
	total = roundCents(hours * pricePerHour)
	return hours, total, nil
}

// Overlaps reports whether two half-open [start, end) slots intersect.
// Slots that merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}
