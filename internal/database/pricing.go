package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jojam/internal/models"
)

// GetRate returns the hourly rate for a session type, or ErrNotFound when
// the type has no pricing entry.
func (db *DB) GetRate(ctx context.Context, sessionType string) (float64, error) {
	var rate float64
	err := db.QueryRowContext(ctx,
		`SELECT price_per_hour FROM pricing WHERE type = ?`, sessionType).Scan(&rate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get rate: %w", err)
	}
	return rate, nil
}

func (db *DB) ListPricing(ctx context.Context) ([]*models.PricingEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT type, price_per_hour, updated_at FROM pricing ORDER BY type ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing: %w", err)
	}
	defer rows.Close()

	var entries []*models.PricingEntry
	for rows.Next() {
		var e models.PricingEntry
		if err := rows.Scan(&e.Type, &e.PricePerHour, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pricing entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pricing: %w", err)
	}
	return entries, nil
}

// UpdateRate changes the hourly rate for an existing session type. The change
// is not retroactive: stored reservations keep their creation-time price.
func (db *DB) UpdateRate(ctx context.Context, sessionType string, pricePerHour float64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE pricing SET price_per_hour = ?, updated_at = ? WHERE type = ?`,
		pricePerHour, time.Now(), sessionType)
	if err != nil {
		return fmt.Errorf("failed to update rate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedPricing inserts entries that do not exist yet. Existing rates are left
// untouched so admin changes survive restarts.
func (db *DB) SeedPricing(ctx context.Context, entries []models.PricingEntry) error {
	query := `INSERT INTO pricing (type, price_per_hour, updated_at)
              VALUES (?, ?, ?)
              ON CONFLICT(type) DO NOTHING`
	for _, e := range entries {
		if _, err := db.ExecContext(ctx, query, e.Type, e.PricePerHour, time.Now()); err != nil {
			return fmt.Errorf("failed to seed pricing for %s: %w", e.Type, err)
		}
	}
	return nil
}
