package repository

import (
	"context"
	"testing"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(room string, user int64, date string, start, end int, status models.BookingStatus) *models.Booking {
	return &models.Booking{
		RoomID:      room,
		UserID:      user,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		Category:    models.CategoryClass,
		Description: "Lecture",
	}
}

func TestMemoryBookingStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()

	first := booking("L201", 1, "2024-06-10", 9, 11, models.StatusApproved)
	second := booking("L202", 2, "2024-06-10", 13, 15, models.StatusPending)
	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.Insert(ctx, second))
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	t.Run("GetReturnsCopy", func(t *testing.T) {
		got, err := store.Get(ctx, 1)
		require.NoError(t, err)
		got.Description = "mutated"

		again, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Lecture", again.Description)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Filter", func(t *testing.T) {
		got, err := store.Filter(ctx, models.BookingFilter{Date: "2024-06-10"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)

		got, err = store.Filter(ctx, models.BookingFilter{RoomID: "L202"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("ReplaceMissing", func(t *testing.T) {
		err := store.Replace(ctx, &models.Booking{ID: 42})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Replace", func(t *testing.T) {
		b, err := store.Get(ctx, 2)
		require.NoError(t, err)
		b.Status = models.StatusApproved
		require.NoError(t, store.Replace(ctx, b))

		got, err := store.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
	})
}

func TestMemoryBookingStoreCascadeCancel(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()

	require.NoError(t, store.Insert(ctx, booking("L201", 5, "2024-06-10", 8, 9, models.StatusPending)))
	require.NoError(t, store.Insert(ctx, booking("L201", 5, "2024-06-10", 9, 10, models.StatusApproved)))
	require.NoError(t, store.Insert(ctx, booking("L201", 5, "2024-06-10", 10, 11, models.StatusRejected)))
	require.NoError(t, store.Insert(ctx, booking("L201", 6, "2024-06-10", 11, 12, models.StatusApproved)))

	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	cancelled, err := store.CascadeCancel(ctx, 5, models.UserDeletedReason, at)
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	for _, b := range cancelled {
		assert.Equal(t, at, b.UpdatedAt)
	}

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, all[0].Status)
	assert.Equal(t, models.UserDeletedReason, all[0].CancellationReason)
	assert.Equal(t, models.StatusCancelled, all[1].Status)
	assert.Equal(t, models.StatusRejected, all[2].Status)
	assert.Empty(t, all[2].CancellationReason)
	assert.Equal(t, models.StatusApproved, all[3].Status)
}

func TestMemoryBookingStoreLoadResumesIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBookingStore()

	loaded := []*models.Booking{
		{ID: 3, RoomID: "L201", Status: models.StatusApproved},
		{ID: 8, RoomID: "L202", Status: models.StatusPending},
	}
	require.NoError(t, store.Load(ctx, loaded))

	b := booking("L203", 1, "2024-06-11", 8, 9, models.StatusPending)
	require.NoError(t, store.Insert(ctx, b))
	assert.Equal(t, int64(9), b.ID)
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()

	admin := &models.User{Name: "Admin", Email: "admin@uic.edu.ph", Role: models.RoleAdmin}
	faculty := &models.User{Name: "Ana", Email: "ana@uic.edu.ph", Role: models.RoleFaculty}
	require.NoError(t, store.Insert(ctx, admin))
	require.NoError(t, store.Insert(ctx, faculty))

	err := store.Insert(ctx, &models.User{Email: "ANA@uic.edu.ph"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := store.GetByEmail(ctx, "Ana@UIC.edu.ph")
	require.NoError(t, err)
	assert.Equal(t, faculty.ID, got.ID)

	admins, err := store.ByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, admin.ID, admins[0].ID)

	require.NoError(t, store.Delete(ctx, faculty.ID))
	_, err = store.Get(ctx, faculty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, faculty.ID), domain.ErrNotFound)
}

func TestMemoryNotificationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNotificationStore()

	require.NoError(t, store.Append(ctx, &models.Notification{ID: "a", UserID: 1, Message: "one"}))
	require.NoError(t, store.Append(ctx, &models.Notification{ID: "b", UserID: 1, Message: "two"}))
	require.NoError(t, store.Append(ctx, &models.Notification{ID: "c", UserID: 2, Message: "other"}))

	unread, err := store.ForUser(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "one", unread[0].Message)

	n, err := store.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	unread, err = store.ForUser(ctx, 1, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := store.ForUser(ctx, 1, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	others, err := store.ForUser(ctx, 2, true)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
