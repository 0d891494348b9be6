package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"7:00 AM", 420},
		{"7:00 PM", 1140},
		{"19:00", 1140},
		{"7:00", 420},
		{"07:30", 450},
		{"12:00 AM", 0},
		{"12:00 PM", 720},
		{"12:30am", 30},
		{"11:59 PM", 1439},
		{"0:00", 0},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "seven", "25:00", "7:60", "13:00 PM", "0:00 AM", "7", "7:0"} {
		_, err := ParseClock(raw)
		require.Error(t, err, raw)
	}
}

func TestParseMeetingTime(t *testing.T) {
	tr, err := ParseMeetingTime("7:00 AM - 8:30 AM")
	require.NoError(t, err)
	require.Equal(t, TimeRange{StartMinutes: 420, EndMinutes: 510}, tr)

	tr, err = ParseMeetingTime("13:00-14:30")
	require.NoError(t, err)
	require.Equal(t, TimeRange{StartMinutes: 780, EndMinutes: 870}, tr)
}

func TestParseMeetingTimeRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"7:00 AM", "7:00 - 8:00 - 9:00", "9:00 - 8:00", "8:00 - 8:00", "junk - 9:00"} {
		_, err := ParseMeetingTime(raw)
		require.Error(t, err, raw)
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	a := TimeRange{StartMinutes: 0, EndMinutes: 60}
	b := TimeRange{StartMinutes: 60, EndMinutes: 120}
	require.False(t, a.Overlaps(b), "touching ranges do not overlap")
	require.False(t, b.Overlaps(a))

	c := TimeRange{StartMinutes: 0, EndMinutes: 90}
	d := TimeRange{StartMinutes: 60, EndMinutes: 120}
	require.True(t, c.Overlaps(d))
	require.True(t, d.Overlaps(c))
}

func TestFormatMinutes(t *testing.T) {
	require.Equal(t, "7:00 AM", FormatMinutes(420))
	require.Equal(t, "12:00 PM", FormatMinutes(720))
	require.Equal(t, "12:05 AM", FormatMinutes(5))
	require.Equal(t, "7:00 PM", FormatMinutes(1140))
}
