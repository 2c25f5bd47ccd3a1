package service

import (
	"context"
	"io"
	"testing"

	"facilitybook/internal/events"
	"facilitybook/internal/models"
	"facilitybook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	users         *repository.MemoryUserStore
	bookings      *repository.MemoryBookingStore
	feed          *repository.MemoryNotificationStore
	bus           *events.EventBus
	notifications *NotificationService
	svc           *BookingService
	userSvc       *UserService

	admin   *models.User
	faculty *models.User
	student *models.User
}

var testRooms = []models.Room{
	{ID: "L201", Name: "Lab 201"},
	{ID: "L202", Name: "Lab 202"},
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	env := &testEnv{
		users:    repository.NewMemoryUserStore(),
		bookings: repository.NewMemoryBookingStore(),
		feed:     repository.NewMemoryNotificationStore(),
		bus:      events.NewEventBus(),
	}
	env.notifications = NewNotificationService(env.users, env.feed, &logger)
	env.svc = NewBookingService(env.bookings, env.users, env.notifications, env.bus, testRooms, &logger)

	var err error
	env.userSvc, err = NewUserService(env.users, env.svc, env.bus, models.DefaultStudentEmailPattern, &logger)
	require.NoError(t, err)

	env.admin = env.addUser(t, &models.User{Name: "Ada Admin", Email: "admin@uic.edu.ph", Password: "root", Role: models.RoleAdmin, NotificationEnabled: true})
	env.faculty = env.addUser(t, &models.User{Name: "Fe Faculty", Email: "fe@uic.edu.ph", Password: "pw", Role: models.RoleFaculty, Department: "CS", NotificationEnabled: true})
	env.student = env.addUser(t, &models.User{Name: "Sam Student", Email: "sam_202400000001@uic.edu.ph", Password: "pw", Role: models.RoleStudent, Section: "BSCS-3A", NotificationEnabled: true})
	return env
}

func (e *testEnv) addUser(t *testing.T, u *models.User) *models.User {
	t.Helper()
	require.NoError(t, e.users.Insert(context.Background(), u))
	return u
}

func (e *testEnv) setOptIn(t *testing.T, u *models.User, enabled bool) {
	t.Helper()
	stored, err := e.users.Get(context.Background(), u.ID)
	require.NoError(t, err)
	stored.NotificationEnabled = enabled
	require.NoError(t, e.users.Replace(context.Background(), stored))
}

func (e *testEnv) unread(t *testing.T, u *models.User) []*models.Notification {
	t.Helper()
	out, err := e.feed.ForUser(context.Background(), u.ID, true)
	require.NoError(t, err)
	return out
}

func draft(room, date string, start, end int, cat models.Category) models.BookingDraft {
	return models.BookingDraft{
		RoomID:      room,
		Category:    cat,
		Description: "Session",
		Date:        date,
		StartTime:   start,
		EndTime:     end,
	}
}
