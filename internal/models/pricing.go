package models

import "time"

// PricingEntry maps a session type to its hourly rate. Rate changes are
// not retroactive: reservations keep the total computed at creation time.
type PricingEntry struct {
	Type         string    `yaml:"type" json:"type"`
	PricePerHour float64   `yaml:"price_per_hour" json:"price_per_hour"`
	UpdatedAt    time.Time `yaml:"-" json:"updated_at"`
}
