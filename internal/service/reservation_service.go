package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"jojam/internal/database"
	"jojam/internal/domain"
	"jojam/internal/events"
	"jojam/internal/metrics"
	"jojam/internal/models"

	"github.com/rs/zerolog"
)

type ReservationService struct {
	repo           domain.Repository
	pricing        domain.PricingCatalog
	eventBus       domain.EventPublisher
	sheetsWorker   domain.SyncWorker
	allowReopen    bool
	maxBookingDays int
	logger         *zerolog.Logger
}

func NewReservationService(
	repo domain.Repository,
	pricing domain.PricingCatalog,
	eventBus domain.EventPublisher,
	sheetsWorker domain.SyncWorker,
	allowReopen bool,
	maxBookingDays int,
	logger *zerolog.Logger,
) *ReservationService {
	if maxBookingDays <= 0 {
		maxBookingDays = 365
	}
	return &ReservationService{
		repo:           repo,
		pricing:        pricing,
		eventBus:       eventBus,
		sheetsWorker:   sheetsWorker,
		allowReopen:    allowReopen,
		maxBookingDays: maxBookingDays,
		logger:         logger,
	}
}

// ValidateDate compares calendar days, not instants: today's local date is
// rebuilt in the booking date's location so UTC-parsed dates line up with
// the server's wall clock in any timezone.
func (s *ReservationService) ValidateDate(date time.Time) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, date.Location())
	if date.Before(today) {
		return ErrPastDate
	}
	if date.After(today.AddDate(0, 0, s.maxBookingDays)) {
		return ErrDateTooFar
	}
	return nil
}

func (s *ReservationService) validate(r *models.Reservation) error {
	if strings.TrimSpace(r.BandName) == "" {
		return invalidField("band_name", "must not be empty")
	}
	if r.Members <= 0 {
		return invalidField("members", "must be positive")
	}
	if !models.ValidSessionType(r.Type) {
		return ErrUnknownSessionType
	}
	if r.Date.IsZero() {
		return invalidField("date", "must be set")
	}
	return s.ValidateDate(r.Date)
}

// Create prices the requested slot and inserts it atomically with the
// conflict check. The price is fixed at creation time and does not change
// when the rate table is later edited.
func (s *ReservationService) Create(ctx context.Context, actor models.Actor, req *models.Reservation) (*models.Reservation, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	rate, err := s.pricing.GetRate(ctx, req.Type)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnknownSessionType
		}
		return nil, err
	}

	_, total, err := ComputeSession(req.StartTime, req.EndTime, rate)
	if err != nil {
		return nil, err
	}

	r := *req
	r.UserID = actor.ID
	r.TotalPrice = total
	r.Status = models.StatusPending
	r.ApprovedAt = nil

	if err := s.repo.CreateReservationLocked(ctx, &r); err != nil {
		if errors.Is(err, database.ErrSlotConflict) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}
	metrics.IncReservationCreated()

	s.publishEvent(events.EventReservationCreated, &r, actor)
	s.enqueueSync(ctx, &r, "upsert")

	s.logger.Info().
		Int64("reservation_id", r.ID).
		Int64("user_id", r.UserID).
		Str("slot", r.Slot()).
		Float64("total_price", r.TotalPrice).
		Msg("reservation created")

	return &r, nil
}

// SetStatus moves a reservation through its lifecycle. Only admins may
// transition; setting the current status again is rejected with ErrNoChange.
// Moving a resolved reservation back to pending requires the reopen policy
// to be enabled.
func (s *ReservationService) SetStatus(ctx context.Context, actor models.Actor, id int64, version int64, status string) (*models.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !models.ValidStatus(status) {
		return nil, invalidField("status", "must be pending, accepted or declined")
	}

	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status == status {
		return nil, ErrNoChange
	}

	if status == models.StatusPending && !s.allowReopen {
		return nil, ErrReopenDisabled
	}

	var approvedAt *time.Time
	if status == models.StatusAccepted {
		now := time.Now()
		approvedAt = &now
	}

	if err := s.repo.UpdateReservationStatusWithVersion(ctx, id, version, status, approvedAt); err != nil {
		return nil, err
	}
	metrics.IncStatusTransition(status)

	updated, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(eventForStatus(status), updated, actor)
	s.enqueueSync(ctx, updated, "update_status")

	s.logger.Info().
		Int64("reservation_id", id).
		Str("from", r.Status).
		Str("to", status).
		Int64("admin_id", actor.ID).
		Msg("reservation status changed")

	return updated, nil
}

// Delete removes a reservation. Owners may delete their own, admins any.
func (s *ReservationService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && r.UserID != actor.ID {
		return ErrForbidden
	}

	rows, err := s.repo.DeleteReservation(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return database.ErrNotFound
	}

	s.publishEvent(events.EventReservationDeleted, r, actor)
	s.enqueueSync(ctx, r, "delete")

	s.logger.Info().Int64("reservation_id", id).Int64("actor_id", actor.ID).Msg("reservation deleted")
	return nil
}

// Get returns a reservation visible to the actor.
func (s *ReservationService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Reservation, error) {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && r.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return r, nil
}

// ListForActor returns the admin's full list or the user's own reservations.
func (s *ReservationService) ListForActor(ctx context.Context, actor models.Actor) ([]*models.Reservation, error) {
	if actor.IsAdmin() {
		return s.repo.GetAllReservations(ctx)
	}
	return s.repo.GetUserReservations(ctx, actor.ID)
}

// HasConflict reports whether any blocking reservation intersects the slot.
func (s *ReservationService) HasConflict(ctx context.Context, date time.Time, start, end string, excludeID int64) (bool, error) {
	if _, err := parseClock("start_time", start); err != nil {
		return false, err
	}
	if _, err := parseClock("end_time", end); err != nil {
		return false, err
	}
	count, err := s.repo.CountConflicting(ctx, date, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ReservationService) DailySchedule(ctx context.Context, start, end time.Time) (map[string][]*models.Reservation, error) {
	return s.repo.GetDailyReservations(ctx, start, end)
}

// Stats aggregates the admin dashboard numbers for the current month.
// TotalUsers counts registered band accounts; staff logins are excluded.
func (s *ReservationService) Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	users, err := s.repo.CountUsersByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountReservations(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.CountReservationsByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}

	revenue, err := s.repo.MonthlyRevenue(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalUsers:        users,
		TotalReservations: total,
		Pending:           pending,
		MonthlyRevenue:    revenue,
	}, nil
}

// ResyncSheet queues a full rebuild of the spreadsheet mirror from the
// database. Admin only; fails when no sync worker is configured.
func (s *ReservationService) ResyncSheet(ctx context.Context, actor models.Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if s.sheetsWorker == nil {
		return ErrSyncUnavailable
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, "resync", 0, nil, ""); err != nil {
		return err
	}

	s.logger.Info().Int64("admin_id", actor.ID).Msg("sheet resync queued")
	return nil
}

func eventForStatus(status string) string {
	switch status {
	case models.StatusAccepted:
		return events.EventReservationAccepted
	case models.StatusDeclined:
		return events.EventReservationDeclined
	default:
		return events.EventReservationReopened
	}
}

func (s *ReservationService) publishEvent(eventType string, r *models.Reservation, actor models.Actor) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		UserID:        r.UserID,
		BandName:      r.BandName,
		Type:          r.Type,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		TotalPrice:    r.TotalPrice,
		Status:        r.Status,
		ChangedBy:     actor.Role,
		ChangedByID:   actor.ID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", r.ID).Msg("publish event error")
	}
}

func (s *ReservationService) enqueueSync(ctx context.Context, r *models.Reservation, taskType string) {
	if s.sheetsWorker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = r.Status
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, r.ID, r, status); err != nil {
		s.logger.Error().Err(err).Int64("reservation_id", r.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
