package models

import "time"

type Reservation struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BandName   string     `json:"band_name"`
	Members    int        `json:"members"`
	Roles      string     `json:"roles"`
	Type       string     `json:"type"` // practice, recording
	Date       time.Time  `json:"date"`
	StartTime  string     `json:"start_time"` // HH:MM, same day as Date
	EndTime    string     `json:"end_time"`
	TotalPrice float64    `json:"total_price"`
	Status     string     `json:"status"` // pending, accepted, declined
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Version    int64      `json:"version"`
}

// Slot returns the reservation interval as "date start-end".
func (r *Reservation) Slot() string {
	return r.Date.Format(DateLayout) + " " + r.StartTime + "-" + r.EndTime
}

type DashboardStats struct {
	TotalUsers        int64   `json:"total_users"`
	TotalReservations int64   `json:"total_reservations"`
	Pending           int64   `json:"pending"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
}
