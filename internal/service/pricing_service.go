package service

import (
	"context"

	"jojam/internal/domain"
	"jojam/internal/events"
	"jojam/internal/models"

	"github.com/rs/zerolog"
)

type PricingService struct {
	catalog  domain.PricingCatalog
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewPricingService(catalog domain.PricingCatalog, eventBus domain.EventPublisher, logger *zerolog.Logger) *PricingService {
	return &PricingService{catalog: catalog, eventBus: eventBus, logger: logger}
}

func (s *PricingService) Rates(ctx context.Context) ([]*models.PricingEntry, error) {
	return s.catalog.ListPricing(ctx)
}

func (s *PricingService) RateFor(ctx context.Context, sessionType string) (float64, error) {
	return s.catalog.GetRate(ctx, sessionType)
}

// SetRate changes the hourly rate for a session type. Existing reservations
// keep the price they were created with.
func (s *PricingService) SetRate(ctx context.Context, actor models.Actor, sessionType string, pricePerHour float64) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if pricePerHour <= 0 {
		return invalidField("price_per_hour", "must be positive")
	}

	if err := s.catalog.UpdateRate(ctx, sessionType, pricePerHour); err != nil {
		return err
	}

	if s.eventBus != nil {
		payload := events.PricingEventPayload{Type: sessionType, PricePerHour: pricePerHour, ChangedByID: actor.ID}
		if err := s.eventBus.PublishJSON(events.EventPricingUpdated, payload); err != nil {
			s.logger.Error().Err(err).Str("type", sessionType).Msg("publish event error")
		}
	}

	s.logger.Info().Str("type", sessionType).Float64("price_per_hour", pricePerHour).Int64("admin_id", actor.ID).Msg("rate updated")
	return nil
}
