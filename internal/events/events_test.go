package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got ReservationEventPayload
	bus.Subscribe(EventReservationCreated, func(event *Event) error {
		return json.Unmarshal(event.Payload, &got)
	})

	payload := ReservationEventPayload{
		ReservationID: 7,
		UserID:        3,
		BandName:      "The Jams",
		Type:          "practice",
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		StartTime:     "14:00",
		EndTime:       "16:00",
		TotalPrice:    1000,
		Status:        "pending",
	}
	require.NoError(t, bus.PublishJSON(EventReservationCreated, payload))

	assert.Equal(t, payload, got)
}

func TestEventBus_OnlyMatchingTypeFires(t *testing.T) {
	bus := NewEventBus()

	var created, declined int
	bus.Subscribe(EventReservationCreated, func(*Event) error { created++; return nil })
	bus.Subscribe(EventReservationDeclined, func(*Event) error { declined++; return nil })

	require.NoError(t, bus.PublishJSON(EventReservationCreated, ReservationEventPayload{ReservationID: 1}))

	assert.Equal(t, 1, created)
	assert.Zero(t, declined)
}

func TestEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	var second bool
	bus.Subscribe(EventPricingUpdated, func(*Event) error { return errors.New("boom") })
	bus.Subscribe(EventPricingUpdated, func(*Event) error { second = true; return nil })

	require.NoError(t, bus.PublishJSON(EventPricingUpdated, PricingEventPayload{Type: "practice", PricePerHour: 650}))
	assert.True(t, second)
}

func TestEventBus_NilBusIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventReservationDeleted, nil))
}
