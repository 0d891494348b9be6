package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExpandDayCodeComposites(t *testing.T) {
	days, err := ExpandDayCode("TTH")
	require.NoError(t, err)
	require.Equal(t, map[time.Weekday]struct{}{time.Tuesday: {}, time.Thursday: {}}, days)

	days, err = ExpandDayCode("MWF")
	require.NoError(t, err)
	require.Equal(t, map[time.Weekday]struct{}{time.Monday: {}, time.Wednesday: {}, time.Friday: {}}, days)

	days, err = ExpandDayCode("MW")
	require.NoError(t, err)
	require.Len(t, days, 2)
}

func TestExpandDayCodeSlashLists(t *testing.T) {
	days, err := ExpandDayCode("M/W/F")
	require.NoError(t, err)
	require.Equal(t, map[time.Weekday]struct{}{time.Monday: {}, time.Wednesday: {}, time.Friday: {}}, days)

	days, err = ExpandDayCode("t / th")
	require.NoError(t, err)
	require.Equal(t, map[time.Weekday]struct{}{time.Tuesday: {}, time.Thursday: {}}, days)
}

func TestExpandDayCodeSingles(t *testing.T) {
	cases := map[string]time.Weekday{
		"M":        time.Monday,
		"T":        time.Tuesday,
		"W":        time.Wednesday,
		"TH":       time.Thursday,
		"F":        time.Friday,
		"S":        time.Saturday,
		"SU":       time.Sunday,
		"Monday":   time.Monday,
		"thursday": time.Thursday,
	}
	for raw, want := range cases {
		days, err := ExpandDayCode(raw)
		require.NoError(t, err, raw)
		require.Equal(t, map[time.Weekday]struct{}{want: {}}, days, raw)
	}
}

func TestExpandDayCodeRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"X", "WEEKEND", "", "/", "M/X"} {
		_, err := ExpandDayCode(raw)
		require.Error(t, err, raw)
	}
}

func TestDayMatches(t *testing.T) {
	ok, err := DayMatches("TTH", time.Thursday)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = DayMatches("TTH", time.Monday)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = DayMatches("MWF", time.Wednesday)
	require.NoError(t, err)
	require.True(t, ok)
}
