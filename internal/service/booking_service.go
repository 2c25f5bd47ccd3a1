package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/events"
	"facilitybook/internal/metrics"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
)

// BookingService admits, edits and moves bookings through their lifecycle.
// Every mutation runs validate and commit under one writer lock so the
// conflict check always sees the committed state.
type BookingService struct {
	mu       sync.Mutex
	bookings domain.BookingStore
	users    domain.UserStore
	notifier domain.Notifier
	eventBus domain.EventPublisher
	rooms    []models.Room
	roomByID map[string]models.Room
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(
	bookings domain.BookingStore,
	users domain.UserStore,
	notifier domain.Notifier,
	eventBus domain.EventPublisher,
	rooms []models.Room,
	logger *zerolog.Logger,
) *BookingService {
	byID := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	return &BookingService{
		bookings: bookings,
		users:    users,
		notifier: notifier,
		eventBus: eventBus,
		rooms:    append([]models.Room(nil), rooms...),
		roomByID: byID,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *BookingService) Rooms() []models.Room {
	return append([]models.Room(nil), s.rooms...)
}

func (s *BookingService) Room(id string) (models.Room, error) {
	r, ok := s.roomByID[id]
	if !ok {
		return models.Room{}, domain.NotFound(fmt.Sprintf("Room %q does not exist.", id))
	}
	return r, nil
}

// CreateBooking validates draft for the requester and stores it. Non-Admin
// requests start Pending and every Admin is told about them.
func (s *BookingService) CreateBooking(ctx context.Context, requesterID int64, draft models.BookingDraft) (*models.Booking, error) {
	requester, err := s.users.Get(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Room(draft.RoomID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.bookings.Filter(ctx, models.BookingFilter{RoomID: draft.RoomID, Date: draft.Date, Status: models.StatusApproved})
	if err != nil {
		return nil, err
	}

	booking, err := ValidateBooking(0, draft, existing, RequesterOf(requester))
	if err != nil {
		s.rejected(err, requesterID)
		return nil, err
	}

	now := s.now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	if err := s.bookings.Insert(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated(string(booking.Status))
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("user_id", requesterID).
		Str("room", booking.RoomID).
		Str("date", booking.Date).
		Str("status", string(booking.Status)).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, requesterID)

	if booking.Status == models.StatusPending {
		s.notifyAdmins(ctx, fmt.Sprintf("%s has requested a booking for %s on %s.", requester.Name, booking.RoomID, booking.Date))
	}

	return booking, nil
}

// EditBookingTime moves an active booking to new hours. The booking is
// re-validated with its creation-time requester and never conflicts with itself.
func (s *BookingService) EditBookingTime(ctx context.Context, actorID, bookingID int64, start, end int) (*models.Booking, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !models.CapabilitiesFor(actor.Role).Edits(current.UserRole) {
		return nil, domain.Unauthorized("You are not allowed to edit this booking.")
	}
	if !current.Status.Active() {
		return nil, domain.Validation(fmt.Sprintf("A %s booking can no longer be edited.", current.Status))
	}

	existing, err := s.bookings.Filter(ctx, models.BookingFilter{RoomID: current.RoomID, Date: current.Date, Status: models.StatusApproved})
	if err != nil {
		return nil, err
	}

	draft := draftOf(current)
	draft.StartTime = start
	draft.EndTime = end
	snapshot := Requester{ID: current.UserID, Name: current.UserName, Role: current.UserRole}
	if _, err := ValidateBooking(current.ID, draft, existing, snapshot); err != nil {
		s.rejected(err, actorID)
		return nil, err
	}

	updated := current.Clone()
	updated.StartTime = start
	updated.EndTime = end
	updated.UpdatedAt = s.now().UTC()
	updated.Version++
	if err := s.bookings.Replace(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", bookingID).Int64("actor_id", actorID).Int("start", start).Int("end", end).Msg("booking time edited")
	s.publishEvent(events.EventBookingRescheduled, updated, actorID)
	return updated, nil
}

// SetBookingStatus applies a lifecycle transition and notifies the requester.
func (s *BookingService) SetBookingStatus(ctx context.Context, actorID, bookingID int64, to models.BookingStatus, reason string) (*models.Booking, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, domain.Validation(fmt.Sprintf("Unknown booking status %q.", to))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var existing []*models.Booking
	if to == models.StatusApproved {
		existing, err = s.bookings.Filter(ctx, models.BookingFilter{RoomID: current.RoomID, Date: current.Date, Status: models.StatusApproved})
		if err != nil {
			return nil, err
		}
	}

	res, err := ApplyTransition(TransitionRequest{
		Actor:    Actor{UserID: actor.ID, Role: actor.Role},
		Booking:  current,
		To:       to,
		Reason:   reason,
		Existing: existing,
	})
	if err != nil {
		s.rejected(err, actorID)
		return nil, err
	}

	updated := res.Booking
	updated.UpdatedAt = s.now().UTC()
	updated.Version++
	if err := s.bookings.Replace(ctx, updated); err != nil {
		return nil, err
	}

	metrics.IncTransition(string(to))
	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("actor_id", actorID).
		Str("from", string(current.Status)).
		Str("to", string(to)).
		Msg("booking status changed")
	s.publishEvent(events.EventBookingStatusChanged, updated, actorID)

	if _, err := s.notifier.Notify(ctx, res.Recipient, res.Notice); err != nil {
		s.logger.Error().Err(err).Int64("user_id", res.Recipient).Msg("notify requester error")
	}

	return updated, nil
}

// CancelUserBookings force-cancels every active booking of userID with the
// account-removal reason. No notices are sent.
func (s *BookingService) CancelUserBookings(ctx context.Context, actorID, userID int64) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled, err := s.bookings.CascadeCancel(ctx, userID, models.UserDeletedReason, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, b := range cancelled {
		metrics.IncTransition(string(models.StatusCancelled))
		s.publishEvent(events.EventBookingStatusChanged, b, actorID)
	}
	return cancelled, nil
}

// GetBooking returns a booking the actor is allowed to see.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID int64) (*models.Booking, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, b) {
		return nil, domain.NotFound("Booking not found.")
	}
	return b, nil
}

// ListBookings returns the bookings visible to the actor, ordered by date and
// start hour.
func (s *BookingService) ListBookings(ctx context.Context, actorID int64, filter models.BookingFilter) ([]*models.Booking, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Booking, 0, len(all))
	for _, b := range all {
		if visibleTo(actor, b) {
			out = append(out, b)
		}
	}
	SortBookings(out)
	return out, nil
}

// Snapshot returns copies of every booking matching filter, regardless of
// visibility. Used by read-only consumers such as reports and exports.
func (s *BookingService) Snapshot(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	all, err := s.bookings.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	SortBookings(all)
	return all, nil
}

func visibleTo(actor *models.User, b *models.Booking) bool {
	caps := models.CapabilitiesFor(actor.Role)
	if caps.SeesAll || b.UserID == actor.ID {
		return true
	}
	return caps.Sees(b.UserRole)
}

// SortBookings orders bookings by date, then start hour, then ID.
func SortBookings(bookings []*models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}

func (s *BookingService) notifyAdmins(ctx context.Context, message string) {
	admins, err := s.users.ByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Error().Err(err).Msg("list admins error")
		return
	}
	for _, a := range admins {
		if _, err := s.notifier.Notify(ctx, a.ID, message); err != nil {
			s.logger.Error().Err(err).Int64("user_id", a.ID).Msg("notify admin error")
		}
	}
}

func (s *BookingService) rejected(err error, userID int64) {
	kind := domain.KindOf(err)
	metrics.IncValidationFailure(string(kind))
	s.logger.Debug().Err(err).Str("kind", string(kind)).Int64("user_id", userID).Msg("booking request refused")
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		UserName:    booking.UserName,
		RoomID:      booking.RoomID,
		Status:      string(booking.Status),
		Date:        booking.Date,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Reason:      booking.CancellationReason,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
