package models

import "time"

// Attachment is a justification file uploaded with a booking request.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"type"`
	Content  []byte `json:"content"`
}

// Present reports whether the attachment carries a named, non-empty file.
func (a *Attachment) Present() bool {
	return a != nil && a.Name != "" && len(a.Content) > 0
}

// Booking is a reservation of a room for an hourly range on a calendar day.
// UserName and UserRole are captured when the booking is created and are not
// refreshed when the user changes or is removed.
type Booking struct {
	ID                 int64         `json:"id"`
	RoomID             string        `json:"room_id"`
	UserID             int64         `json:"user_id"`
	UserName           string        `json:"user_name"`
	UserRole           Role          `json:"user_role"`
	Category           Category      `json:"category"`
	Description        string        `json:"description"`
	Date               string        `json:"date"`
	StartTime          int           `json:"start_time"`
	EndTime            int           `json:"end_time"`
	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	Justification      *Attachment   `json:"justification_file,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	Version            int64         `json:"version"`
}

// BookingDraft is the caller-supplied part of a booking request.
type BookingDraft struct {
	RoomID        string      `json:"room_id"`
	Category      Category    `json:"category"`
	Description   string      `json:"description"`
	Date          string      `json:"date"`
	StartTime     int         `json:"start_time"`
	EndTime       int         `json:"end_time"`
	Justification *Attachment `json:"justification_file,omitempty"`
}

// Range returns the booking's occupied time range.
func (b *Booking) Range() TimeRange {
	return TimeRange{Date: b.Date, Start: b.StartTime, End: b.EndTime}
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.Justification != nil {
		att := *b.Justification
		att.Content = append([]byte(nil), b.Justification.Content...)
		c.Justification = &att
	}
	return &c
}

// BookingFilter selects bookings for read views. Zero fields match anything.
type BookingFilter struct {
	RoomID string
	Date   string
	UserID int64
	Status BookingStatus
}

func (f BookingFilter) Match(b *Booking) bool {
	if f.RoomID != "" && b.RoomID != f.RoomID {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.UserID != 0 && b.UserID != f.UserID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}
