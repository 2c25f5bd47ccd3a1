// Package calendar computes the date ranges and room occupancy grids behind
// the day, week and month views.
package calendar

import (
	"fmt"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/models"
)

type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// ParseView accepts an empty string as the day view.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewDay:
		return ViewDay, nil
	case ViewWeek:
		return ViewWeek, nil
	case ViewMonth:
		return ViewMonth, nil
	}
	return "", domain.Validation(fmt.Sprintf("Unknown calendar view %q.", s))
}

// Period is an inclusive run of calendar days.
type Period struct {
	View  View     `json:"view"`
	Start string   `json:"start"`
	End   string   `json:"end"`
	Days  []string `json:"days"`
}

func (p Period) Contains(date string) bool {
	return date >= p.Start && date <= p.End
}

// PeriodFor returns the days a view shows around anchor. Weeks run Sunday
// through Saturday on the UTC calendar.
func PeriodFor(view View, anchor string) (Period, error) {
	day, err := models.ParseDate(anchor)
	if err != nil {
		return Period{}, domain.Validation(err.Error())
	}

	var start, end time.Time
	switch view {
	case ViewDay:
		start, end = day, day
	case ViewWeek:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		end = start.AddDate(0, 0, 6)
	case ViewMonth:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	default:
		return Period{}, domain.Validation(fmt.Sprintf("Unknown calendar view %q.", string(view)))
	}

	p := Period{View: view, Start: start.Format(models.DateLayout), End: end.Format(models.DateLayout)}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		p.Days = append(p.Days, d.Format(models.DateLayout))
	}
	return p, nil
}

type Slot struct {
	Hour     int               `json:"hour"`
	Bookings []*models.Booking `json:"bookings"`
}

// RoomDay is one room's hourly occupancy on one day.
type RoomDay struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Date     string `json:"date"`
	Slots    []Slot `json:"slots"`
}

// Busy reports whether any active booking covers hour.
func (d RoomDay) Busy(hour int) bool {
	for _, s := range d.Slots {
		if s.Hour == hour {
			return len(s.Bookings) > 0
		}
	}
	return false
}

type Calendar struct {
	Period Period    `json:"period"`
	Grid   []RoomDay `json:"grid"`
}

// Build lays out active bookings over every room and day of the period. A
// booking appears in each hourly slot it covers. Rejected and cancelled
// bookings are left out.
func Build(period Period, rooms []models.Room, bookings []*models.Booking) *Calendar {
	type cellKey struct {
		room string
		date string
		hour int
	}
	cells := make(map[cellKey][]*models.Booking)
	for _, b := range bookings {
		if !b.Status.Active() || !period.Contains(b.Date) {
			continue
		}
		for h := b.StartTime; h < b.EndTime; h++ {
			k := cellKey{room: b.RoomID, date: b.Date, hour: h}
			cells[k] = append(cells[k], b)
		}
	}

	hours := models.SlotHours()
	cal := &Calendar{Period: period, Grid: make([]RoomDay, 0, len(rooms)*len(period.Days))}
	for _, room := range rooms {
		for _, date := range period.Days {
			rd := RoomDay{RoomID: room.ID, RoomName: room.Name, Date: date, Slots: make([]Slot, 0, len(hours))}
			for _, h := range hours {
				rd.Slots = append(rd.Slots, Slot{Hour: h, Bookings: cells[cellKey{room: room.ID, date: date, hour: h}]})
			}
			cal.Grid = append(cal.Grid, rd)
		}
	}
	return cal
}
