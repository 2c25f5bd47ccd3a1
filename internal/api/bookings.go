package api

import (
	"net/http"
	"strconv"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"
)

type editTimeRequest struct {
	StartTime int `json:"start_time"`
	EndTime   int `json:"end_time"`
}

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
	Reason string               `json:"reason,omitempty"`
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.svc.Bookings.Rooms()})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request, actor int64) {
	var draft models.BookingDraft
	if err := decodeJSON(r, &draft); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.CreateBooking(r.Context(), actor, draft)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func bookingFilter(r *http.Request) (models.BookingFilter, error) {
	q := r.URL.Query()
	filter := models.BookingFilter{
		RoomID: q.Get("room"),
		Date:   q.Get("date"),
		Status: models.BookingStatus(q.Get("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, domain.Validation("Unknown booking status " + strconv.Quote(string(filter.Status)) + ".")
	}
	if raw := q.Get("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, domain.Validation("invalid user")
		}
		filter.UserID = id
	}
	return filter, nil
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request, actor int64) {
	filter, err := bookingFilter(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookings, err := s.svc.Bookings.ListBookings(r.Context(), actor, filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, actor int64) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.GetBooking(r.Context(), actor, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleEditBookingTime(w http.ResponseWriter, r *http.Request, actor int64) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req editTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.EditBookingTime(r.Context(), actor, id, req.StartTime, req.EndTime)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleSetBookingStatus(w http.ResponseWriter, r *http.Request, actor int64) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.SetBookingStatus(r.Context(), actor, id, req.Status, req.Reason)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
