package service

import (
	"fmt"
	"strings"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"
)

// Requester is the identity a booking is validated for. On edits it is the
// booking's creation-time snapshot, not the live account.
type Requester struct {
	ID   int64
	Name string
	Role models.Role
}

func RequesterOf(u *models.User) Requester {
	return Requester{ID: u.ID, Name: u.Name, Role: u.Role}
}

// ValidateBooking checks draft against the role rules and the Approved
// bookings in existing, skipping the booking whose ID is selfID. Rules run in
// a fixed order and the first failure is returned. On success the booking
// carries the requester snapshot and its initial status.
func ValidateBooking(selfID int64, draft models.BookingDraft, existing []*models.Booking, requester Requester) (*models.Booking, error) {
	caps := models.CapabilitiesFor(requester.Role)
	rng := models.TimeRange{Date: draft.Date, Start: draft.StartTime, End: draft.EndTime}

	if strings.TrimSpace(draft.Description) == "" {
		return nil, domain.Validation("Description is required.")
	}
	if rng.Start >= rng.End {
		return nil, domain.Validation("End time must be after start time.")
	}
	if !rng.WithinOperatingHours() {
		return nil, domain.Validation(fmt.Sprintf("Booking hours must fall within the %d:00-%d:00 operating window.", models.OpeningHour, models.ClosingHour))
	}
	if rng.Hours() > caps.MaxDuration {
		return nil, domain.Validation(fmt.Sprintf("Your role allows a maximum booking duration of %d hours.", caps.MaxDuration))
	}

	weekend, err := models.IsWeekend(draft.Date)
	if err != nil {
		return nil, domain.Validation(err.Error())
	}
	if weekend && !draft.Justification.Present() {
		return nil, domain.Validation("A justification file is required for weekend bookings.")
	}

	if c := findConflict(selfID, draft.RoomID, rng, existing); c != nil {
		return nil, domain.Conflict("Time slot conflicts with an existing booking.")
	}

	if !caps.AllowsCategory(draft.Category) {
		return nil, domain.Validation(fmt.Sprintf("Category %q is not allowed for your role.", draft.Category))
	}

	status := models.StatusPending
	if caps.AutoApprove {
		status = models.StatusApproved
	}

	return &models.Booking{
		ID:            selfID,
		RoomID:        draft.RoomID,
		UserID:        requester.ID,
		UserName:      requester.Name,
		UserRole:      requester.Role,
		Category:      draft.Category,
		Description:   strings.TrimSpace(draft.Description),
		Date:          draft.Date,
		StartTime:     draft.StartTime,
		EndTime:       draft.EndTime,
		Status:        status,
		Justification: draft.Justification,
	}, nil
}

// findConflict returns the first Approved booking in room overlapping rng,
// ignoring the booking identified by selfID.
func findConflict(selfID int64, room string, rng models.TimeRange, existing []*models.Booking) *models.Booking {
	for _, b := range existing {
		if b.Status != models.StatusApproved || b.RoomID != room {
			continue
		}
		if selfID != 0 && b.ID == selfID {
			continue
		}
		if b.Range().Overlaps(rng) {
			return b
		}
	}
	return nil
}

// draftOf rebuilds the editable draft of an existing booking.
func draftOf(b *models.Booking) models.BookingDraft {
	return models.BookingDraft{
		RoomID:        b.RoomID,
		Category:      b.Category,
		Description:   b.Description,
		Date:          b.Date,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Justification: b.Justification,
	}
}
