package engine

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

// dayTable maps every accepted day code to the weekdays it denotes.
// Composite catalog shorthands (TTH, MW, MWF) expand to multiple days.
var dayTable = map[string][]time.Weekday{
	"M":         {time.Monday},
	"MON":       {time.Monday},
	"MONDAY":    {time.Monday},
	"T":         {time.Tuesday},
	"TUE":       {time.Tuesday},
	"TUES":      {time.Tuesday},
	"TUESDAY":   {time.Tuesday},
	"W":         {time.Wednesday},
	"WED":       {time.Wednesday},
	"WEDNESDAY": {time.Wednesday},
	"TH":        {time.Thursday},
	"THU":       {time.Thursday},
	"THUR":      {time.Thursday},
	"THURS":     {time.Thursday},
	"THURSDAY":  {time.Thursday},
	"F":         {time.Friday},
	"FRI":       {time.Friday},
	"FRIDAY":    {time.Friday},
	"S":         {time.Saturday},
	"SAT":       {time.Saturday},
	"SATURDAY":  {time.Saturday},
	"SU":        {time.Sunday},
	"SUN":       {time.Sunday},
	"SUNDAY":    {time.Sunday},

	"TTH": {time.Tuesday, time.Thursday},
	"MW":  {time.Monday, time.Wednesday},
	"MWF": {time.Monday, time.Wednesday, time.Friday},
}

// ExpandDayCode normalizes a stored day code into the set of weekdays it
// denotes. Slash-separated lists ("M/W/F") expand each segment
// independently. Unrecognized codes are an error; the catalog's day
// vocabulary is closed.
func ExpandDayCode(raw string) (map[time.Weekday]struct{}, error) {
	days := make(map[time.Weekday]struct{})
	for _, segment := range strings.Split(raw, "/") {
		code := strings.ToUpper(strings.TrimSpace(segment))
		if code == "" {
			continue
		}
		expanded, ok := dayTable[code]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrUnknownDayCode, fmt.Sprintf("unrecognized day code %q", segment))
		}
		for _, d := range expanded {
			days[d] = struct{}{}
		}
	}
	if len(days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrUnknownDayCode, "empty day code")
	}
	return days, nil
}

// DayMatches reports whether the stored day code covers the target
// weekday. The stored side is expanded; the target is always concrete.
func DayMatches(storedCode string, target time.Weekday) (bool, error) {
	days, err := ExpandDayCode(storedCode)
	if err != nil {
		return false, err
	}
	_, ok := days[target]
	return ok, nil
}
