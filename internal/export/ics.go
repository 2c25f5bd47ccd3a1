package export

import (
	"fmt"
	"io"
	"time"

	"facilitybook/internal/models"

	ics "github.com/arran4/golang-ical"
)

// WriteICS writes bookings as a published calendar. Rejected bookings are
// omitted; cancelled ones are kept with a CANCELLED status so subscribers
// drop them.
func (e *Exporter) WriteICS(w io.Writer, bookings []*models.Booking) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//facilitybook//bookings//EN")
	cal.SetName("Facility bookings")

	for _, b := range bookings {
		if b.Status == models.StatusRejected {
			continue
		}
		day, err := time.ParseInLocation(models.DateLayout, b.Date, time.UTC)
		if err != nil {
			return fmt.Errorf("booking %d: %w", b.ID, err)
		}

		event := cal.AddEvent(fmt.Sprintf("booking-%d@facilitybook", b.ID))
		event.SetStartAt(day.Add(time.Duration(b.StartTime) * time.Hour))
		event.SetEndAt(day.Add(time.Duration(b.EndTime) * time.Hour))
		stamp := b.UpdatedAt
		if stamp.IsZero() {
			stamp = time.Now()
		}
		event.SetDtStampTime(stamp)
		event.SetSummary(fmt.Sprintf("%s: %s", b.Category, b.Description))
		event.SetLocation(e.roomName(b.RoomID))
		event.SetDescription(fmt.Sprintf("Booked by %s (%s). Status: %s.", b.UserName, b.UserRole, b.Status))
		event.SetStatus(icsStatus(b.Status))
	}

	return cal.SerializeTo(w)
}

func icsStatus(s models.BookingStatus) ics.ObjectStatus {
	switch s {
	case models.StatusApproved:
		return ics.ObjectStatusConfirmed
	case models.StatusCancelled:
		return ics.ObjectStatusCancelled
	}
	return ics.ObjectStatusTentative
}
