package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

// SortMode orders ranked reassignment candidates.
type SortMode string

const (
	SortByCompatibility SortMode = "compatibility"
	SortByCapacity      SortMode = "capacity"
	SortByBuilding      SortMode = "building"
	SortByName          SortMode = "name"
)

// ParseSortMode validates a caller-supplied sort mode, defaulting to
// compatibility.
func ParseSortMode(raw string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return SortByCompatibility, nil
	case SortByCompatibility:
		return SortByCompatibility, nil
	case SortByCapacity:
		return SortByCapacity, nil
	case SortByBuilding:
		return SortByBuilding, nil
	case SortByName:
		return SortByName, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown sort mode %q", raw))
	}
}

// RankedRoom annotates one candidate destination room.
type RankedRoom struct {
	Room            models.Room            `json:"room"`
	Compatibility   CompatibilityResult    `json:"compatibility"`
	OccupiedBy      *models.AllocationSlot `json:"occupied_by,omitempty"`
	Selectable      bool                   `json:"selectable"`
	DisabledReasons []string               `json:"disabled_reasons,omitempty"`
}

// RankRooms produces the annotated candidate list for moving one
// allocation to a different room at its current day and time. The room
// the allocation already occupies is excluded. A room is selectable only
// when it is conflict-free on every weekday the allocation meets and no
// mandatory requirement is missing; others are listed but disabled with
// the reasons spelled out.
func RankRooms(
	target models.AllocationSlot,
	rooms []models.Room,
	allocations []models.AllocationSlot,
	requirements []models.CourseRequirement,
	featuresByRoom map[int64][]models.RoomFeature,
	mode SortMode,
) ([]RankedRoom, error) {
	meetingDays, err := ExpandDayCode(target.ScheduleDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnknownDayCode.Code, appErrors.ErrUnknownDayCode.Status, fmt.Sprintf("allocation %d has an invalid day code", target.ID))
	}
	meetingTime, err := ParseMeetingTime(target.ScheduleTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTimeParse.Code, appErrors.ErrTimeParse.Status, fmt.Sprintf("allocation %d has an invalid meeting time", target.ID))
	}

	days := make([]time.Weekday, 0, len(meetingDays))
	for d := range meetingDays {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	ranked := make([]RankedRoom, 0, len(rooms))
	for _, room := range rooms {
		if strings.EqualFold(room.Name, target.Room) && strings.EqualFold(room.Building, target.Building) {
			continue
		}

		entry := RankedRoom{
			Room:          room,
			Compatibility: ScoreRoom(featuresByRoom[room.ID], requirements),
		}

		for _, day := range days {
			hit, err := CheckRoom(allocations, room.Name, room.Building, day, meetingTime, target.ID)
			if err != nil {
				return nil, err
			}
			if hit != nil {
				entry.OccupiedBy = hit
				entry.DisabledReasons = append(entry.DisabledReasons,
					fmt.Sprintf("occupied by %s %s on %s", hit.CourseCode, hit.Section, day))
				break
			}
		}

		for _, req := range entry.Compatibility.MissingMandatory {
			entry.DisabledReasons = append(entry.DisabledReasons,
				fmt.Sprintf("missing required equipment: %s", req.TagName))
		}

		entry.Selectable = entry.OccupiedBy == nil && len(entry.Compatibility.MissingMandatory) == 0
		ranked = append(ranked, entry)
	}

	sortRanked(ranked, mode)
	return ranked, nil
}

func sortRanked(ranked []RankedRoom, mode SortMode) {
	byName := func(i, j int) bool {
		return strings.ToLower(ranked[i].Room.Name) < strings.ToLower(ranked[j].Room.Name)
	}

	switch mode {
	case SortByCapacity:
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Room.Capacity != ranked[j].Room.Capacity {
				return ranked[i].Room.Capacity > ranked[j].Room.Capacity
			}
			return byName(i, j)
		})
	case SortByBuilding:
		sort.SliceStable(ranked, func(i, j int) bool {
			bi := strings.ToLower(ranked[i].Room.Building)
			bj := strings.ToLower(ranked[j].Room.Building)
			if bi != bj {
				return bi < bj
			}
			return byName(i, j)
		})
	case SortByName:
		sort.SliceStable(ranked, byName)
	default:
		// Compatibility: score descending, unrated rooms after scored
		// ones, ties by room name.
		sort.SliceStable(ranked, func(i, j int) bool {
			si, sj := ranked[i].Compatibility.Score, ranked[j].Compatibility.Score
			if si != sj {
				return si > sj
			}
			return byName(i, j)
		})
	}
}
