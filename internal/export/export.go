// Package export renders booking collections as downloadable documents.
package export

import (
	"fmt"
	"io"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatICS  Format = "ics"
)

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatICS:
		return "text/calendar; charset=utf-8"
	}
	return "application/octet-stream"
}

// FileName returns the download name for a report covering label.
func (f Format) FileName(label string) string {
	if label == "" {
		label = "all"
	}
	return fmt.Sprintf("booking_report_%s.%s", label, f)
}

// Exporter writes bookings in a chosen format, resolving room names from the catalog.
type Exporter struct {
	rooms map[string]string
}

func NewExporter(rooms []models.Room) *Exporter {
	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	return &Exporter{rooms: names}
}

func (e *Exporter) Write(w io.Writer, format Format, bookings []*models.Booking) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, bookings)
	case FormatXLSX:
		return e.WriteXLSX(w, bookings)
	case FormatICS:
		return e.WriteICS(w, bookings)
	}
	return domain.Validation(fmt.Sprintf("Unsupported export format %q.", string(format)))
}

func (e *Exporter) roomName(id string) string {
	if name, ok := e.rooms[id]; ok && name != "" {
		return name
	}
	return id
}
