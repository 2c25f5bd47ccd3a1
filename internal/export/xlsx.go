package export

import (
	"fmt"
	"io"

	"facilitybook/internal/models"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Bookings"

// WriteXLSX writes a single-sheet workbook with a styled header row.
func (e *Exporter) WriteXLSX(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []interface{}{"ID", "Date", "Room", "Start Time", "End Time", "Category", "Description", "User", "Role", "Status", "Cancellation Reason"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(xlsxSheet, "A1", last, style)
	}

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			b.ID,
			b.Date,
			e.roomName(b.RoomID),
			fmt.Sprintf("%d:00", b.StartTime),
			fmt.Sprintf("%d:00", b.EndTime),
			string(b.Category),
			b.Description,
			b.UserName,
			string(b.UserRole),
			string(b.Status),
			b.CancellationReason,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write booking %d: %w", b.ID, err)
		}
	}

	_ = f.SetColWidth(xlsxSheet, "B", "C", 14)
	_ = f.SetColWidth(xlsxSheet, "G", "G", 40)
	_ = f.SetColWidth(xlsxSheet, "K", "K", 30)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
