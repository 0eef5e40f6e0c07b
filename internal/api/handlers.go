package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jojam/internal/export"
	"jojam/internal/models"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		BandName string `json:"band_name"`
		Email    string `json:"email"`
		Contact  string `json:"contact"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return
	}

	user, err := s.users.Register(r.Context(), body.Username, body.Password, body.BandName, body.Email, body.Contact)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	if host == "" {
		host = r.RemoteAddr
	}
	if err := s.sessions.CheckRateLimit(r.Context(), "login:"+host, models.RateLimitRequests, models.RateLimitWindow*time.Second); err != nil {
		s.writeServiceError(w, err)
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return
	}

	user, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	sess, err := s.sessions.Create(r.Context(), user)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   models.DefaultSessionTTL,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"token": sess.Token, "user": user})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := sessionToken(r)
	if token != "" {
		if err := s.sessions.Destroy(r.Context(), token); err != nil {
			s.logger.Warn().Err(err).Msg("failed to destroy session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetUser(r.Context(), actor.ID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handlePricingList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rates, err := s.pricing.Rates(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pricing": rates})
}

func (s *HTTPServer) handlePricingUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionType := strings.TrimPrefix(r.URL.Path, "/api/v1/pricing/")
	if sessionType == "" || strings.Contains(sessionType, "/") {
		writeError(w, http.StatusBadRequest, "session type is required")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	var body struct {
		PricePerHour float64 `json:"price_per_hour"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return
	}

	if err := s.pricing.SetRate(r.Context(), actor, sessionType, body.PricePerHour); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"type": sessionType, "price_per_hour": body.PricePerHour})
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := s.reservations.ListForActor(r.Context(), actor)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": list})

	case http.MethodPost:
		var body struct {
			BandName  string `json:"band_name"`
			Members   int    `json:"members"`
			Roles     string `json:"roles"`
			Type      string `json:"type"`
			Date      string `json:"date"`
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
		}
		if err := decodeBody(w, r, &body); err != nil {
			return
		}

		date, err := time.Parse(models.DateLayout, body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}

		created, err := s.reservations.Create(r.Context(), actor, &models.Reservation{
			BandName:  body.BandName,
			Members:   body.Members,
			Roles:     body.Roles,
			Type:      body.Type,
			Date:      date,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/reservations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "reservation id is required")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "status":
			s.handleSetStatus(w, r, actor, id)
		case "receipt":
			s.handleReceipt(w, r, actor, id)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}
	if len(parts) > 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		res, err := s.reservations.Get(r.Context(), actor, id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case http.MethodDelete:
		if err := s.reservations.Delete(r.Context(), actor, id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleSetStatus(w http.ResponseWriter, r *http.Request, actor models.Actor, id int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Status  string `json:"status"`
		Version int64  `json:"version"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		return
	}
	if body.Version <= 0 {
		writeError(w, http.StatusBadRequest, "version is required and must be positive")
		return
	}

	updated, err := s.reservations.SetStatus(r.Context(), actor, id, body.Version, body.Status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleReceipt(w http.ResponseWriter, r *http.Request, actor models.Actor, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, err := s.reservations.Get(r.Context(), actor, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if res.Status != models.StatusAccepted {
		writeError(w, http.StatusConflict, "receipt is only available for accepted reservations")
		return
	}

	user, err := s.users.GetUser(r.Context(), res.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	path, err := s.exporter.ReceiptWorkbook(res, user)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"receipt_number": export.ReceiptNumber(res.ID),
		"file":           path,
	})
}

func (s *HTTPServer) handleConflicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if _, _, ok := s.requireSession(w, r); !ok {
		return
	}

	q := r.URL.Query()
	dateStr := strings.TrimSpace(q.Get("date"))
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	if dateStr == "" || start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "date, start and end are required")
		return
	}

	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	var excludeID int64
	if raw := strings.TrimSpace(q.Get("exclude_id")); raw != "" {
		excludeID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid exclude_id")
			return
		}
	}

	conflict, err := s.reservations.HasConflict(r.Context(), date, start, end, excludeID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := map[string]any{"conflict": conflict}
	if conflict {
		resp["message"] = slotConflictMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if _, _, ok := s.requireSession(w, r); !ok {
		return
	}

	start, end, err := scheduleRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	daily, err := s.reservations.DailySchedule(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start": start.Format(models.DateLayout),
		"end":   end.Format(models.DateLayout),
		"days":  daily,
	})
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	stats, err := s.reservations.Stats(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	users, err := s.users.ListUsers(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *HTTPServer) handleUserByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/users/"), "/")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !actor.IsAdmin() && actor.ID != id {
			writeError(w, http.StatusForbidden, "operation not permitted")
			return
		}
		user, err := s.users.GetUser(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodDelete:
		if err := s.users.DeleteUser(r.Context(), actor, id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleExportSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		writeError(w, http.StatusForbidden, "operation not permitted")
		return
	}

	start, end, err := scheduleRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	daily, err := s.reservations.DailySchedule(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	path, err := s.exporter.ScheduleWorkbook(start, end, daily)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

// handleExportResync queues a full rebuild of the spreadsheet mirror.
func (s *HTTPServer) handleExportResync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor, _, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if err := s.reservations.ResyncSheet(r.Context(), actor); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// scheduleRange parses start/end query parameters, defaulting to the
// current week.
func scheduleRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	var err error
	if raw := strings.TrimSpace(q.Get("start")); raw != "" {
		start, err = time.Parse(models.DateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidDate("start")
		}
		end = start.AddDate(0, 0, 6)
	}
	if raw := strings.TrimSpace(q.Get("end")); raw != "" {
		end, err = time.Parse(models.DateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidDate("end")
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errRangeInverted
	}
	return start, end, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return err
	}
	return nil
}
