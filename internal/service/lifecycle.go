package service

import (
	"fmt"
	"strings"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"
)

// Actor is the user requesting a status change.
type Actor struct {
	UserID int64
	Role   models.Role
}

type transitionKey struct {
	From models.BookingStatus
	To   models.BookingStatus
}

type transitionRule struct {
	verb        string
	allow       func(Actor, *models.Booking) bool
	needsReason bool
	notice      func(b *models.Booking) string
}

func canModerate(a Actor, b *models.Booking) bool {
	return models.CapabilitiesFor(a.Role).Moderates(b.UserRole)
}

func canCancel(a Actor, b *models.Booking) bool {
	return models.CapabilitiesFor(a.Role).CancelsAny || a.UserID == b.UserID
}

func approvedNotice(b *models.Booking) string {
	return fmt.Sprintf("Your booking for %s on %s has been approved.", b.RoomID, b.Date)
}

func rejectedNotice(b *models.Booking) string {
	return fmt.Sprintf("Your booking for %s on %s has been rejected.", b.RoomID, b.Date)
}

func cancelledNotice(b *models.Booking) string {
	return fmt.Sprintf("Your booking for %s on %s has been cancelled. Reason: %s", b.RoomID, b.Date, b.CancellationReason)
}

var transitions = map[transitionKey]transitionRule{
	{models.StatusPending, models.StatusApproved}:   {verb: "approve", allow: canModerate, notice: approvedNotice},
	{models.StatusPending, models.StatusRejected}:   {verb: "reject", allow: canModerate, notice: rejectedNotice},
	{models.StatusPending, models.StatusCancelled}:  {verb: "cancel", allow: canCancel, needsReason: true, notice: cancelledNotice},
	{models.StatusApproved, models.StatusCancelled}: {verb: "cancel", allow: canCancel, needsReason: true, notice: cancelledNotice},
}

// TransitionRequest describes a requested status change. Existing must hold
// the Approved bookings of the same room and date when To is Approved.
type TransitionRequest struct {
	Actor    Actor
	Booking  *models.Booking
	To       models.BookingStatus
	Reason   string
	Existing []*models.Booking
}

// TransitionResult is the updated booking and the notice owed to its requester.
type TransitionResult struct {
	Booking   *models.Booking
	Recipient int64
	Notice    string
}

// ApplyTransition checks a status change against the transition table and
// returns the updated copy of the booking. The input booking is not modified.
func ApplyTransition(req TransitionRequest) (*TransitionResult, error) {
	b := req.Booking
	rule, ok := transitions[transitionKey{From: b.Status, To: req.To}]
	if !ok {
		return nil, domain.Unauthorized(fmt.Sprintf("Cannot change a %s booking to %s.", b.Status, req.To))
	}
	if !rule.allow(req.Actor, b) {
		return nil, domain.Unauthorized(fmt.Sprintf("You are not allowed to %s this booking.", rule.verb))
	}

	reason := strings.TrimSpace(req.Reason)
	if rule.needsReason && reason == "" {
		return nil, domain.Validation("A cancellation reason is required.")
	}

	if req.To == models.StatusApproved {
		if c := findConflict(b.ID, b.RoomID, b.Range(), req.Existing); c != nil {
			return nil, domain.Conflict("Time slot conflicts with an existing booking.")
		}
	}

	updated := b.Clone()
	updated.Status = req.To
	if req.To == models.StatusCancelled {
		updated.CancellationReason = reason
	}

	return &TransitionResult{
		Booking:   updated,
		Recipient: b.UserID,
		Notice:    rule.notice(updated),
	}, nil
}
