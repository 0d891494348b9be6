package engine

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

// TimeRange is a half-open interval of minutes since midnight.
type TimeRange struct {
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}

// Overlaps reports whether two half-open ranges intersect. Ranges that
// merely touch at an endpoint do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.StartMinutes < other.EndMinutes && other.StartMinutes < r.EndMinutes
}

// Duration returns the range length in minutes.
func (r TimeRange) Duration() int {
	return r.EndMinutes - r.StartMinutes
}

// String renders the range in 12-hour clock form.
func (r TimeRange) String() string {
	return FormatMinutes(r.StartMinutes) + " - " + FormatMinutes(r.EndMinutes)
}

// ParseClock converts a time-of-day string into minutes since midnight.
// Accepted forms: "H:MM", "HH:MM", "H:MM AM", "H:MM PM" (meridiem is
// case-insensitive, space optional). Malformed input is an error; catalog
// data must never silently read as midnight.
func ParseClock(raw string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0, appErrors.Clone(appErrors.ErrTimeParse, "empty time value")
	}

	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	hourPart, minutePart, found := strings.Cut(s, ":")
	if !found {
		return 0, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("time %q is missing a colon", raw))
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrTimeParse.Code, appErrors.ErrTimeParse.Status, fmt.Sprintf("invalid hour in %q", raw))
	}
	if len(minutePart) != 2 {
		return 0, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("minutes in %q must be two digits", raw))
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrTimeParse.Code, appErrors.ErrTimeParse.Status, fmt.Sprintf("invalid minutes in %q", raw))
	}
	if minute < 0 || minute > 59 {
		return 0, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("minutes out of range in %q", raw))
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("hour out of range in %q", raw))
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("hour out of range in %q", raw))
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("hour out of range in %q", raw))
		}
	}

	return hour*60 + minute, nil
}

// ParseMeetingTime splits a stored "start - end" string on a single dash
// and parses both endpoints. The separator may be surrounded by
// whitespace.
func ParseMeetingTime(raw string) (TimeRange, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return TimeRange{}, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("meeting time %q must have exactly one start-end separator", raw))
	}

	start, err := ParseClock(parts[0])
	if err != nil {
		return TimeRange{}, err
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return TimeRange{}, err
	}
	if start >= end {
		return TimeRange{}, appErrors.Clone(appErrors.ErrTimeParse, fmt.Sprintf("meeting time %q must start before it ends", raw))
	}

	return TimeRange{StartMinutes: start, EndMinutes: end}, nil
}

// FormatMinutes renders minutes since midnight as a 12-hour clock string.
func FormatMinutes(total int) string {
	hour := total / 60
	minute := total % 60
	meridiem := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		hour -= 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}
