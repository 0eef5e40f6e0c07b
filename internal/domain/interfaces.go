package domain

import (
	"context"
	"time"

	"jojam/internal/models"
)

type Repository interface {
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	CreateReservationLocked(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, id int64, status string) error
	UpdateReservationStatusWithVersion(ctx context.Context, id int64, version int64, status string, approvedAt *time.Time) error
	DeleteReservation(ctx context.Context, id int64) (int64, error)
	FindConflicting(ctx context.Context, date time.Time, start, end string, excludeID int64) ([]*models.Reservation, error)
	CountConflicting(ctx context.Context, date time.Time, start, end string, excludeID int64) (int, error)
	GetReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error)
	GetUserReservations(ctx context.Context, userID int64) ([]*models.Reservation, error)
	GetAllReservations(ctx context.Context) ([]*models.Reservation, error)
	GetDailyReservations(ctx context.Context, start, end time.Time) (map[string][]*models.Reservation, error)
	CountReservations(ctx context.Context) (int64, error)
	CountReservationsByStatus(ctx context.Context, status string) (int64, error)
	MonthlyRevenue(ctx context.Context, ref time.Time) (float64, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)
	CountUsersByRole(ctx context.Context, role string) (int64, error)
}

type PricingCatalog interface {
	GetRate(ctx context.Context, sessionType string) (float64, error)
	ListPricing(ctx context.Context) ([]*models.PricingEntry, error)
	UpdateRate(ctx context.Context, sessionType string, pricePerHour float64) error
}

type SessionStore interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SheetsWriter interface {
	UpsertReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, reservationID int64, status string) error
	DeleteReservationRow(ctx context.Context, reservationID int64) error
	ReplaceReservationsSheet(ctx context.Context, reservations []*models.Reservation) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, reservationID int64, r *models.Reservation, status string) error
}

type ReservationService interface {
	Create(ctx context.Context, actor models.Actor, req *models.Reservation) (*models.Reservation, error)
	SetStatus(ctx context.Context, actor models.Actor, id int64, version int64, status string) (*models.Reservation, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
	Get(ctx context.Context, actor models.Actor, id int64) (*models.Reservation, error)
	ListForActor(ctx context.Context, actor models.Actor) ([]*models.Reservation, error)
	HasConflict(ctx context.Context, date time.Time, start, end string, excludeID int64) (bool, error)
	DailySchedule(ctx context.Context, start, end time.Time) (map[string][]*models.Reservation, error)
	Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error)
	ResyncSheet(ctx context.Context, actor models.Actor) error
}

type UserService interface {
	Register(ctx context.Context, username, password, bandName, email, contact string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error)
	DeleteUser(ctx context.Context, actor models.Actor, id int64) error
}

type PricingService interface {
	Rates(ctx context.Context) ([]*models.PricingEntry, error)
	RateFor(ctx context.Context, sessionType string) (float64, error)
	SetRate(ctx context.Context, actor models.Actor, sessionType string, pricePerHour float64) error
}
