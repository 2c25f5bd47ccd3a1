package domain

import (
	"context"
	"time"

	"facilitybook/internal/models"
)

// BookingStore owns every booking of a session.
type BookingStore interface {
	Insert(ctx context.Context, booking *models.Booking) error
	Get(ctx context.Context, id int64) (*models.Booking, error)
	Replace(ctx context.Context, booking *models.Booking) error
	Filter(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	CascadeCancel(ctx context.Context, userID int64, reason string, at time.Time) ([]*models.Booking, error)
	All(ctx context.Context) ([]*models.Booking, error)
	Load(ctx context.Context, bookings []*models.Booking) error
}

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Replace(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	ByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	All(ctx context.Context) ([]*models.User, error)
	Load(ctx context.Context, users []*models.User) error
}

type NotificationStore interface {
	Append(ctx context.Context, n *models.Notification) error
	ForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int, error)
}

// Persistence is the load/save collaborator for user and booking collections.
type Persistence interface {
	LoadUsers(ctx context.Context) ([]*models.User, error)
	SaveUsers(ctx context.Context, users []*models.User) error
	LoadBookings(ctx context.Context) ([]*models.Booking, error)
	SaveBookings(ctx context.Context, bookings []*models.Booking) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ReportGenerator turns a set of bookings into a narrative summary.
type ReportGenerator interface {
	Summarize(ctx context.Context, bookings []*models.Booking) (string, error)
}

// Notifier delivers a message to a user if the user has opted in.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) (bool, error)
}
