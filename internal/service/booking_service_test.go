package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"facilitybook/internal/domain"
	"facilitybook/internal/events"
	"facilitybook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingConflictScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateBooking(ctx, env.admin.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryClass))
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, first.Status)

	_, err = env.svc.CreateBooking(ctx, env.faculty.ID, draft("L201", "2024-06-10", 10, 12, models.CategoryClass))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	touching, err := env.svc.CreateBooking(ctx, env.faculty.ID, draft("L201", "2024-06-10", 11, 13, models.CategoryClass))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, touching.Status)
	assert.NotEqual(t, first.ID, touching.ID)
}

func TestCreateBookingStudentDuration(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateBooking(context.Background(), env.student.ID, draft("L201", "2024-06-10", 9, 12, models.CategoryStudySession))
	require.Error(t, err)
	assert.EqualError(t, err, "Your role allows a maximum booking duration of 2 hours.")

	all, err := env.bookings.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateBookingWeekendScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d := draft("L201", "2024-06-08", 10, 12, models.CategoryStudySession)
	_, err := env.svc.CreateBooking(ctx, env.student.ID, d)
	assert.EqualError(t, err, "A justification file is required for weekend bookings.")

	d.Justification = &models.Attachment{Name: "approval.pdf", MimeType: "application/pdf", Content: []byte("pdf")}
	b, err := env.svc.CreateBooking(ctx, env.student.ID, d)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, "Sam Student", b.UserName)
	assert.Equal(t, models.RoleStudent, b.UserRole)
}

func TestCreateBookingNotifiesAdminsOfPendingRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	second := env.addUser(t, &models.User{Name: "Second Admin", Email: "admin2@uic.edu.ph", Role: models.RoleAdmin, NotificationEnabled: false})

	_, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L202", "2024-06-11", 13, 15, models.CategoryClubEvent))
	require.NoError(t, err)

	got := env.unread(t, env.admin)
	require.Len(t, got, 1)
	assert.Equal(t, "Sam Student has requested a booking for L202 on 2024-06-11.", got[0].Message)
	assert.False(t, got[0].Read)
	assert.Empty(t, env.unread(t, second))
	assert.Empty(t, env.unread(t, env.student))
}

func TestCreateBookingByAdminIsApprovedWithoutNotice(t *testing.T) {
	env := newTestEnv(t)

	b, err := env.svc.CreateBooking(context.Background(), env.admin.ID, draft("L201", "2024-06-12", 8, 16, models.CategorySeminar))
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, b.Status)
	assert.Empty(t, env.unread(t, env.admin))
	assert.Empty(t, env.unread(t, env.faculty))
	assert.Empty(t, env.unread(t, env.student))
}

func TestCreateBookingUnknownRoomAndUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateBooking(ctx, env.faculty.ID, draft("Z999", "2024-06-10", 9, 10, models.CategoryClass))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.svc.CreateBooking(ctx, 404, draft("L201", "2024-06-10", 9, 10, models.CategoryClass))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetBookingStatusApprovalNotifiesOptedInRequester(t *testing.T) {
	for _, optIn := range []bool{true, false} {
		env := newTestEnv(t)
		ctx := context.Background()
		env.setOptIn(t, env.student, optIn)

		b, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryStudySession))
		require.NoError(t, err)

		updated, err := env.svc.SetBookingStatus(ctx, env.faculty.ID, b.ID, models.StatusApproved, "")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)

		got := env.unread(t, env.student)
		if optIn {
			require.Len(t, got, 1)
			assert.Equal(t, "Your booking for L201 on 2024-06-10 has been approved.", got[0].Message)
		} else {
			assert.Empty(t, got)
		}
	}
}

func TestSetBookingStatusFacultyCannotApproveFaculty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := env.addUser(t, &models.User{Name: "Other Faculty", Email: "of@uic.edu.ph", Role: models.RoleFaculty})

	b, err := env.svc.CreateBooking(ctx, env.faculty.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryClass))
	require.NoError(t, err)

	_, err = env.svc.SetBookingStatus(ctx, other.ID, b.ID, models.StatusApproved, "")
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	stored, err := env.bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestSetBookingStatusTerminalStatesRefuseEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rejected, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryStudySession))
	require.NoError(t, err)
	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, rejected.ID, models.StatusRejected, "")
	require.NoError(t, err)

	cancelled, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L201", "2024-06-10", 13, 15, models.CategoryStudySession))
	require.NoError(t, err)
	_, err = env.svc.SetBookingStatus(ctx, env.student.ID, cancelled.ID, models.StatusCancelled, "Plans changed")
	require.NoError(t, err)

	for _, id := range []int64{rejected.ID, cancelled.ID} {
		for _, to := range []models.BookingStatus{models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCancelled} {
			_, err := env.svc.SetBookingStatus(ctx, env.admin.ID, id, to, "again")
			assert.ErrorIs(t, err, domain.ErrAuthorization)
		}
	}

	stored, err := env.bookings.Get(ctx, cancelled.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plans changed", stored.CancellationReason)
}

func TestSetBookingStatusCancelNotice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.CreateBooking(ctx, env.faculty.ID, draft("L202", "2024-06-10", 9, 11, models.CategoryClass))
	require.NoError(t, err)

	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, b.ID, models.StatusCancelled, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, b.ID, models.StatusCancelled, "Room under repair")
	require.NoError(t, err)

	got := env.unread(t, env.faculty)
	require.Len(t, got, 1)
	assert.Equal(t, "Your booking for L202 on 2024-06-10 has been cancelled. Reason: Room under repair", got[0].Message)
}

func TestSetBookingStatusOptimisticPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryStudySession))
	require.NoError(t, err)
	b, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L201", "2024-06-10", 10, 12, models.CategoryStudySession))
	require.NoError(t, err, "pending requests never block each other")

	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, a.ID, models.StatusApproved, "")
	require.NoError(t, err)

	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, b.ID, models.StatusApproved, "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, b.ID, models.StatusRejected, "")
	assert.NoError(t, err)
}

func TestSetBookingStatusUnknownStatusAndBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.SetBookingStatus(ctx, env.admin.ID, 1, "Archived", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, 999, models.StatusApproved, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditBookingTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryStudySession))
	require.NoError(t, err)
	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, b.ID, models.StatusApproved, "")
	require.NoError(t, err)

	t.Run("SelfExcluded", func(t *testing.T) {
		updated, err := env.svc.EditBookingTime(ctx, env.admin.ID, b.ID, 10, 12)
		require.NoError(t, err)
		assert.Equal(t, 10, updated.StartTime)
		assert.Equal(t, 12, updated.EndTime)
		assert.Equal(t, models.StatusApproved, updated.Status)
	})

	t.Run("SnapshotRoleLimitsDuration", func(t *testing.T) {
		_, err := env.svc.EditBookingTime(ctx, env.admin.ID, b.ID, 9, 13)
		assert.EqualError(t, err, "Your role allows a maximum booking duration of 2 hours.")
	})

	t.Run("ConflictsWithOthers", func(t *testing.T) {
		_, err := env.svc.CreateBooking(ctx, env.admin.ID, draft("L201", "2024-06-10", 14, 16, models.CategoryClass))
		require.NoError(t, err)

		_, err = env.svc.EditBookingTime(ctx, env.admin.ID, b.ID, 15, 17)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("OnlyCapableRolesEdit", func(t *testing.T) {
		_, err := env.svc.EditBookingTime(ctx, env.student.ID, b.ID, 12, 13)
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		_, err = env.svc.EditBookingTime(ctx, env.faculty.ID, b.ID, 12, 13)
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("TerminalNotEditable", func(t *testing.T) {
		_, err := env.svc.SetBookingStatus(ctx, env.admin.ID, b.ID, models.StatusCancelled, "Done")
		require.NoError(t, err)
		_, err = env.svc.EditBookingTime(ctx, env.admin.ID, b.ID, 8, 9)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestListBookingsVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	peer := env.addUser(t, &models.User{Name: "Peer", Email: "peer_202400000002@uic.edu.ph", Role: models.RoleStudent})

	_, err := env.svc.CreateBooking(ctx, env.admin.ID, draft("L201", "2024-06-11", 8, 9, models.CategoryOther))
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(ctx, env.faculty.ID, draft("L201", "2024-06-10", 13, 14, models.CategoryClass))
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(ctx, env.student.ID, draft("L202", "2024-06-10", 9, 10, models.CategoryStudySession))
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(ctx, peer.ID, draft("L202", "2024-06-10", 15, 16, models.CategoryStudySession))
	require.NoError(t, err)

	all, err := env.svc.ListBookings(ctx, env.admin.ID, models.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2024-06-10", all[0].Date)
	assert.Equal(t, 9, all[0].StartTime)
	assert.Equal(t, "2024-06-11", all[3].Date)

	fac, err := env.svc.ListBookings(ctx, env.faculty.ID, models.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, fac, 3)

	own, err := env.svc.ListBookings(ctx, env.student.ID, models.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, env.student.ID, own[0].UserID)

	_, err = env.svc.GetBooking(ctx, env.student.ID, all[3].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingEventsPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []string
	env.bus.Subscribe(func(e *events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		var p events.BookingEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		seen = append(seen, e.Type+":"+p.Status)
		return nil
	}, events.BookingEvents...)

	b, err := env.svc.CreateBooking(ctx, env.student.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryStudySession))
	require.NoError(t, err)
	_, err = env.svc.SetBookingStatus(ctx, env.admin.ID, b.ID, models.StatusApproved, "")
	require.NoError(t, err)
	_, err = env.svc.EditBookingTime(ctx, env.admin.ID, b.ID, 10, 11)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"booking_created:Pending",
		"booking_status_changed:Approved",
		"booking_rescheduled:Approved",
	}, seen)
}

func TestConcurrentCreatesKeepConflictInvariant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = env.svc.CreateBooking(ctx, env.admin.ID, draft("L201", "2024-06-10", 9, 11, models.CategoryClass))
		}()
	}
	wg.Wait()

	approvedCount, err := env.bookings.Filter(ctx, models.BookingFilter{Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Len(t, approvedCount, 1)
}
