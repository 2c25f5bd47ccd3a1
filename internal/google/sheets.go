package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"facilitybook/internal/config"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var bookingHeaders = []interface{}{
	"ID", "Date", "Room", "Start Time", "End Time", "Category", "Description",
	"User", "Role", "Status", "Cancellation Reason", "Created At", "Updated At",
}

// SheetsMirror replaces a spreadsheet tab with the current booking collection.
type SheetsMirror struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	rooms         map[string]string
	logger        *zerolog.Logger
}

// NewSheetsMirror authenticates with a service account credentials file.
func NewSheetsMirror(ctx context.Context, cfg config.GoogleConfig, rooms []models.Room, logger *zerolog.Logger) (*SheetsMirror, error) {
	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newSheetsMirror(srv, cfg, rooms, logger), nil
}

func newSheetsMirror(srv *sheets.Service, cfg config.GoogleConfig, rooms []models.Room, logger *zerolog.Logger) *SheetsMirror {
	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	sheetName := cfg.BookingsSheetName
	if sheetName == "" {
		sheetName = "Bookings"
	}
	return &SheetsMirror{
		service:       srv,
		spreadsheetID: cfg.BookingSpreadsheetID,
		sheetName:     sheetName,
		rooms:         names,
		logger:        logger,
	}
}

func (s *SheetsMirror) Name() string { return "sheets" }

// TestConnection reads the header cell of the bookings tab.
func (s *SheetsMirror) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Sync clears the tab and rewrites the header plus one row per booking.
func (s *SheetsMirror) Sync(ctx context.Context, _ []*models.User, bookings []*models.Booking) error {
	clearRange := s.sheetName + "!A:Z"
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear bookings sheet: %w", err)
	}

	values := make([][]interface{}, 0, len(bookings)+1)
	values = append(values, bookingHeaders)
	for _, b := range bookings {
		values = append(values, s.bookingRowValues(b))
	}

	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update bookings sheet: %w", err)
	}

	s.logger.Debug().Int("rows", len(bookings)).Msg("bookings sheet updated")
	return nil
}

func (s *SheetsMirror) bookingRowValues(b *models.Booking) []interface{} {
	room := s.rooms[b.RoomID]
	if room == "" {
		room = b.RoomID
	}
	return []interface{}{
		b.ID,
		b.Date,
		room,
		fmt.Sprintf("%d:00", b.StartTime),
		fmt.Sprintf("%d:00", b.EndTime),
		string(b.Category),
		b.Description,
		b.UserName,
		string(b.UserRole),
		string(b.Status),
		b.CancellationReason,
		b.CreatedAt.Format("2006-01-02 15:04:05"),
		b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ServiceAccountEmail returns the client e-mail the spreadsheet must be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}
