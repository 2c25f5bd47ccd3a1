package models

// Role is the account type of a user. It never changes after registration.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleFaculty Role = "Faculty"
	RoleStudent Role = "Student"
)

func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusApproved  BookingStatus = "Approved"
	StatusRejected  BookingStatus = "Rejected"
	StatusCancelled BookingStatus = "Cancelled"
)

// Active reports whether the booking still occupies (or may occupy) its slot.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Terminal reports whether no further transitions are possible from s.
func (s BookingStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Category string

const (
	CategoryClass        Category = "Class"
	CategorySeminar      Category = "Seminar"
	CategoryDefense      Category = "Defense"
	CategoryClubEvent    Category = "Club Event"
	CategoryStudySession Category = "Study Session"
	CategoryOther        Category = "Other"
)

// AllCategories lists categories in display order.
var AllCategories = []Category{
	CategoryClass,
	CategorySeminar,
	CategoryDefense,
	CategoryClubEvent,
	CategoryStudySession,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	// OpeningHour is the first bookable hour of the day.
	OpeningHour = 8
	// ClosingHour is the last hour a booking may end at.
	ClosingHour = 20

	// DateLayout is the calendar-day format used for booking dates.
	DateLayout = "2006-01-02"

	// UserDeletedReason is stored on bookings cancelled by account removal.
	UserDeletedReason = "User account deleted."

	// DefaultStudentEmailPattern matches institutional student addresses.
	DefaultStudentEmailPattern = `_(\d{12})@uic\.edu\.ph$`

	// DefaultReportTimeout bounds a single report generation call, in seconds.
	DefaultReportTimeout = 60

	// SyncQueueSize is the capacity of the persistence sync queue.
	SyncQueueSize = 16
)

// SlotHours returns the start hours of every bookable hourly slot.
func SlotHours() []int {
	hours := make([]int, 0, ClosingHour-OpeningHour)
	for h := OpeningHour; h < ClosingHour; h++ {
		hours = append(hours, h)
	}
	return hours
}
