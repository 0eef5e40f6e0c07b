package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jojam/internal/models"
)

const reservationColumns = `id, user_id, band_name, members, roles, type, date,
                 start_time, end_time, total_price, status, created_at,
                 updated_at, approved_at, version`

// FindConflicting returns non-declined reservations on date whose interval
// overlaps [start, end). Intervals are half-open: touching boundaries do not
// overlap. excludeID > 0 removes that reservation from the comparison set.
func (db *DB) FindConflicting(ctx context.Context, date time.Time, start, end string, excludeID int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations
              WHERE date = ? AND status != ? AND start_time < ? AND end_time > ? AND id != ?
              ORDER BY start_time ASC`
	rows, err := db.QueryContext(ctx, query,
		date.Format(models.DateLayout), models.StatusDeclined, end, start, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// CountConflicting is the overlap test used inside the create transaction.
func (db *DB) CountConflicting(ctx context.Context, date time.Time, start, end string, excludeID int64) (int, error) {
	return countConflicting(ctx, db.DB, date.Format(models.DateLayout), start, end, excludeID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func countConflicting(ctx context.Context, q querier, date, start, end string, excludeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM reservations
              WHERE date = ? AND status != ? AND start_time < ? AND end_time > ? AND id != ?`
	var count int
	err := q.QueryRowContext(ctx, query, date, models.StatusDeclined, end, start, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conflicting reservations: %w", err)
	}
	return count, nil
}

// CreateReservation inserts without a conflict check. Callers that admit new
// bookings must use CreateReservationLocked instead.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	query := `INSERT INTO reservations (
				user_id, band_name, members, roles, type, date,
				start_time, end_time, total_price, status, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		r.UserID,
		r.BandName,
		r.Members,
		r.Roles,
		r.Type,
		r.Date.Format(models.DateLayout),
		r.StartTime,
		r.EndTime,
		r.TotalPrice,
		r.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1

	return nil
}

// CreateReservationLocked re-checks the overlap predicate and inserts inside
// one transaction. SQLite serializes writers, so two concurrent requests for
// the same slot cannot both pass the check and commit.
func (db *DB) CreateReservationLocked(ctx context.Context, r *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	count, err := countConflicting(ctx, tx, r.Date.Format(models.DateLayout), r.StartTime, r.EndTime, 0)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if count > 0 {
		return ErrSlotConflict
	}

	query := `INSERT INTO reservations (
				user_id, band_name, members, roles, type, date,
				start_time, end_time, total_price, status, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		r.UserID,
		r.BandName,
		r.Members,
		r.Roles,
		r.Type,
		r.Date.Format(models.DateLayout),
		r.StartTime,
		r.EndTime,
		r.TotalPrice,
		r.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1

	return tx.Commit()
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

func (db *DB) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateReservationStatusWithVersion applies a status change guarded by an
// optimistic version check. approvedAt is stamped only on acceptance.
func (db *DB) UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string, approvedAt *time.Time) error {
	query := `UPDATE reservations
              SET status = ?, approved_at = COALESCE(?, approved_at), version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, approvedAt, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// DeleteReservation removes the record unconditionally and returns the number
// of affected rows.
func (db *DB) DeleteReservation(ctx context.Context, id int64) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reservation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func (db *DB) GetReservationsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations WHERE date >= ? AND date <= ?
              ORDER BY date ASC, start_time ASC`
	rows, err := db.QueryContext(ctx, query,
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations by date range: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

func (db *DB) GetUserReservations(ctx context.Context, userID int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations WHERE user_id = ?
              ORDER BY date DESC, start_time DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

func (db *DB) GetAllReservations(ctx context.Context) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
              FROM reservations ORDER BY date DESC, start_time DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetDailyReservations groups a date range by day key (YYYY-MM-DD).
func (db *DB) GetDailyReservations(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Reservation, error) {
	reservations, err := db.GetReservationsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Reservation)
	for _, r := range reservations {
		key := r.Date.Format(models.DateLayout)
		daily[key] = append(daily[key], r)
	}
	return daily, nil
}

func (db *DB) CountReservations(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (db *DB) CountReservationsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by status: %w", err)
	}
	return count, nil
}

// MonthlyRevenue sums total_price over accepted reservations dated in the
// month containing ref.
func (db *DB) MonthlyRevenue(ctx context.Context, ref time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(total_price), 0) FROM reservations
              WHERE status = ? AND strftime('%Y-%m', date) = ?`
	var total float64
	err := db.QueryRowContext(ctx, query, models.StatusAccepted, ref.Format("2006-01")).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to get monthly revenue: %w", err)
	}
	return total, nil
}

func scanReservation(row *sql.Row) (*models.Reservation, error) {
	r := &models.Reservation{}
	var dateStr string
	var approvedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.UserID, &r.BandName, &r.Members, &r.Roles, &r.Type, &dateStr,
		&r.StartTime, &r.EndTime, &r.TotalPrice, &r.Status, &r.CreatedAt,
		&r.UpdatedAt, &approvedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	return finishReservation(r, dateStr, approvedAt)
}

func scanReservations(rows *sql.Rows) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	for rows.Next() {
		r := &models.Reservation{}
		var dateStr string
		var approvedAt sql.NullTime
		err := rows.Scan(
			&r.ID, &r.UserID, &r.BandName, &r.Members, &r.Roles, &r.Type, &dateStr,
			&r.StartTime, &r.EndTime, &r.TotalPrice, &r.Status, &r.CreatedAt,
			&r.UpdatedAt, &approvedAt, &r.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		if r, err = finishReservation(r, dateStr, approvedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	return reservations, nil
}

func finishReservation(r *models.Reservation, dateStr string, approvedAt sql.NullTime) (*models.Reservation, error) {
	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reservation date %s: %w", dateStr, err)
	}
	r.Date = date
	if approvedAt.Valid {
		t := approvedAt.Time
		r.ApprovedAt = &t
	}
	return r, nil
}
