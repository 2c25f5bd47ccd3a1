package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"facilitybook/internal/config"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type recordedCall struct {
	method string
	path   string
	body   []byte
}

func setupMockServer(t *testing.T, status int) (*SheetsMirror, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad range"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	logger := zerolog.Nop()
	mirror := newSheetsMirror(srv, config.GoogleConfig{BookingSpreadsheetID: "book_tid"}, []models.Room{{ID: "L201", Name: "Lab 201"}}, &logger)
	return mirror, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestSheetsMirrorSync(t *testing.T) {
	mirror, calls := setupMockServer(t, http.StatusOK)
	bookings := []*models.Booking{
		{ID: 3, RoomID: "L201", Date: "2024-06-10", StartTime: 9, EndTime: 11, Category: models.CategoryClass,
			Description: "Algorithms", UserName: "Fe", UserRole: models.RoleFaculty, Status: models.StatusApproved},
	}

	require.NoError(t, mirror.Sync(context.Background(), nil, bookings))

	got := calls()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPost, got[0].method)
	assert.True(t, strings.HasSuffix(got[0].path, "/values/Bookings!A:Z:clear"), got[0].path)
	assert.Equal(t, http.MethodPut, got[1].method)
	assert.Contains(t, got[1].path, "/spreadsheets/book_tid/values/Bookings!A1")

	var vr sheets.ValueRange
	require.NoError(t, json.Unmarshal(got[1].body, &vr))
	require.Len(t, vr.Values, 2)
	assert.Equal(t, "ID", vr.Values[0][0])
	assert.Equal(t, "Lab 201", vr.Values[1][2])
	assert.Equal(t, "9:00", vr.Values[1][3])
	assert.Equal(t, "Approved", vr.Values[1][9])
}

func TestSheetsMirrorSyncError(t *testing.T) {
	mirror, _ := setupMockServer(t, http.StatusBadRequest)
	err := mirror.Sync(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear bookings sheet")
}

func TestSheetsMirrorTestConnection(t *testing.T) {
	mirror, calls := setupMockServer(t, http.StatusOK)
	require.NoError(t, mirror.TestConnection(context.Background()))
	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodGet, got[0].method)
}

func TestBookingRowValuesUnknownRoom(t *testing.T) {
	logger := zerolog.Nop()
	m := newSheetsMirror(nil, config.GoogleConfig{BookingsSheetName: "Log"}, nil, &logger)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	row := m.bookingRowValues(&models.Booking{
		ID: 9, RoomID: "X1", Date: "2024-06-02", StartTime: 8, EndTime: 20,
		Status: models.StatusCancelled, CancellationReason: models.UserDeletedReason,
		CreatedAt: created, UpdatedAt: created,
	})

	assert.Equal(t, "Log", m.sheetName)
	assert.Equal(t, int64(9), row[0])
	assert.Equal(t, "X1", row[2])
	assert.Equal(t, "20:00", row[4])
	assert.Equal(t, models.UserDeletedReason, row[10])
	assert.Equal(t, "2024-06-01 10:00:00", row[11])
}

func TestServiceAccountEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email":"sync@project.iam.gserviceaccount.com"}`), 0o600))

	email, err := ServiceAccountEmail(path)
	require.NoError(t, err)
	assert.Equal(t, "sync@project.iam.gserviceaccount.com", email)

	_, err = ServiceAccountEmail(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNewSheetsMirrorMissingCredentials(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewSheetsMirror(context.Background(), config.GoogleConfig{CredentialsFile: "/nonexistent/creds.json"}, nil, &logger)
	assert.Error(t, err)
}
