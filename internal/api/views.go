package api

import (
	"bytes"
	"fmt"
	"net/http"

	"facilitybook/internal/calendar"
	"facilitybook/internal/domain"
	"facilitybook/internal/export"
	"facilitybook/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request, actor int64) {
	q := r.URL.Query()
	view, err := calendar.ParseView(q.Get("view"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	period, err := calendar.PeriodFor(view, q.Get("date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	rooms := s.svc.Bookings.Rooms()
	roomID := q.Get("room")
	if roomID != "" {
		room, err := s.svc.Bookings.Room(roomID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		rooms = []models.Room{room}
	}

	bookings, err := s.svc.Bookings.ListBookings(r.Context(), actor, models.BookingFilter{RoomID: roomID})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calendar.Build(period, rooms, bookings))
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request, actor int64) {
	unread, err := s.svc.Notifications.Unread(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": unread})
}

func (s *HTTPServer) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request, actor int64) {
	n, err := s.svc.Notifications.MarkAllRead(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, actor int64) {
	format := export.Format(chi.URLParam(r, "format"))
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := models.ParseDate(date); err != nil {
			s.writeServiceError(w, r, domain.Validation(err.Error()))
			return
		}
	}

	bookings, err := s.svc.Bookings.ListBookings(r.Context(), actor, models.BookingFilter{Date: date})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.svc.Exporter.Write(&buf, format, bookings); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(date)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleReport summarizes one day of bookings. Only roles that see every
// booking may request it.
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request, actor int64) {
	user, err := s.svc.Users.GetUser(r.Context(), actor)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !models.CapabilitiesFor(user.Role).SeesAll {
		s.writeServiceError(w, r, domain.Unauthorized("Only administrators can generate reports."))
		return
	}

	date := r.URL.Query().Get("date")
	summary, err := s.svc.Reports.DailyReport(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": date, "summary": summary})
}
