package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"facilitybook/internal/models"
)

var csvHeaders = []string{
	"ID", "Date", "Room", "Start Time", "End Time", "Category", "Description", "User", "Status", "Cancellation Reason",
}

// WriteCSV writes one line per booking. Description is always quoted and the
// cancellation reason is quoted when present, with embedded quotes doubled.
func WriteCSV(w io.Writer, bookings []*models.Booking) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeaders, ",")); err != nil {
		return err
	}
	for _, b := range bookings {
		reason := ""
		if b.CancellationReason != "" {
			reason = quote(b.CancellationReason)
		}
		fields := []string{
			strconv.FormatInt(b.ID, 10),
			b.Date,
			b.RoomID,
			strconv.Itoa(b.StartTime) + ":00",
			strconv.Itoa(b.EndTime) + ":00",
			string(b.Category),
			quote(b.Description),
			b.UserName,
			string(b.Status),
			reason,
		}
		if _, err := bw.WriteString("\n" + strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
