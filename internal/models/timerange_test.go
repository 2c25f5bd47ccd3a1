package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRangeOverlaps(t *testing.T) {
	base := TimeRange{Date: "2024-06-10", Start: 9, End: 11}

	tests := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"identical", TimeRange{Date: "2024-06-10", Start: 9, End: 11}, true},
		{"overlap end", TimeRange{Date: "2024-06-10", Start: 10, End: 12}, true},
		{"overlap start", TimeRange{Date: "2024-06-10", Start: 8, End: 10}, true},
		{"contains", TimeRange{Date: "2024-06-10", Start: 8, End: 12}, true},
		{"contained", TimeRange{Date: "2024-06-10", Start: 9, End: 10}, true},
		{"touches end", TimeRange{Date: "2024-06-10", Start: 11, End: 13}, false},
		{"touches start", TimeRange{Date: "2024-06-10", Start: 8, End: 9}, false},
		{"other day", TimeRange{Date: "2024-06-11", Start: 9, End: 11}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestTimeRangeOverlapsMatchesFormula(t *testing.T) {
	for s1 := OpeningHour; s1 < ClosingHour; s1++ {
		for e1 := s1 + 1; e1 <= ClosingHour; e1++ {
			for s2 := OpeningHour; s2 < ClosingHour; s2++ {
				for e2 := s2 + 1; e2 <= ClosingHour; e2++ {
					a := TimeRange{Date: "2024-06-10", Start: s1, End: e1}
					b := TimeRange{Date: "2024-06-10", Start: s2, End: e2}
					want := s1 < e2 && s2 < e1
					if a.Overlaps(b) != want {
						t.Fatalf("overlap(%v, %v) = %v, want %v", a, b, !want, want)
					}
					if e1 == s2 && a.Overlaps(b) {
						t.Fatalf("touching ranges %v and %v must not overlap", a, b)
					}
				}
			}
		}
	}
}

func TestWithinOperatingHours(t *testing.T) {
	assert.True(t, TimeRange{Start: 8, End: 20}.WithinOperatingHours())
	assert.False(t, TimeRange{Start: 7, End: 9}.WithinOperatingHours())
	assert.False(t, TimeRange{Start: 19, End: 21}.WithinOperatingHours())
	assert.Equal(t, 12, len(SlotHours()))
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2024-06-08", true},  // Saturday
		{"2024-06-09", true},  // Sunday
		{"2024-06-10", false}, // Monday
		{"2024-06-14", false}, // Friday
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := IsWeekend(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := IsWeekend("10/06/2024")
	assert.Error(t, err)
}

func TestBookingFilterMatch(t *testing.T) {
	b := &Booking{RoomID: "L201", Date: "2024-06-10", UserID: 3, Status: StatusPending}

	assert.True(t, BookingFilter{}.Match(b))
	assert.True(t, BookingFilter{RoomID: "L201", UserID: 3}.Match(b))
	assert.False(t, BookingFilter{RoomID: "L202"}.Match(b))
	assert.False(t, BookingFilter{Status: StatusApproved}.Match(b))
	assert.False(t, BookingFilter{Date: "2024-06-11"}.Match(b))
}

func TestBookingClone(t *testing.T) {
	b := &Booking{ID: 1, Justification: &Attachment{Name: "letter.pdf", Content: []byte("abc")}}
	c := b.Clone()
	c.Justification.Content[0] = 'x'
	c.ID = 2

	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, "abc", string(b.Justification.Content))
}
