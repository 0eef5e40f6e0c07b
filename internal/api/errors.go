package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"jojam/internal/database"
	"jojam/internal/service"
)

var errRangeInverted = errors.New("end must not be before start")

func errInvalidDate(field string) error {
	return fmt.Errorf("invalid %s date; expected YYYY-MM-DD", field)
}

// slotConflictMessage is what clients show when a requested slot overlaps
// an existing reservation.
const slotConflictMessage = "This time slot is already booked. Please choose a different time."

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP status codes.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, database.ErrSlotConflict):
		writeError(w, http.StatusConflict, slotConflictMessage)
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "reservation was modified concurrently, refresh and retry")
	case errors.Is(err, database.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, "username is already taken")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "operation not permitted")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many requests")
	case errors.Is(err, service.ErrSyncUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrNoChange),
		errors.Is(err, service.ErrReopenDisabled):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrUnknownSessionType),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
