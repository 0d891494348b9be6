package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

// Candidate is one concrete placement to validate: a room, teacher, and
// section meeting on a single weekday over one time range.
type Candidate struct {
	Room        string
	Building    string
	TeacherName string
	Section     string
	Day         time.Weekday
	Time        TimeRange
}

// ConflictResult aggregates all three conflict dimensions for a single
// candidate placement. Each non-nil slot is the first allocation found
// occupying the contested resource.
type ConflictResult struct {
	HasConflict     bool                   `json:"has_conflict"`
	RoomConflict    *models.AllocationSlot `json:"room_conflict,omitempty"`
	TeacherConflict *models.AllocationSlot `json:"teacher_conflict,omitempty"`
	SectionConflict *models.AllocationSlot `json:"section_conflict,omitempty"`
}

// sectionSuffixes are meeting-kind markers stripped before comparing
// sections, so the lecture and laboratory meetings of one logical section
// conflict with each other.
var sectionSuffixes = []string{"_LABORATORY", "_LECTURE", "_LAB", "_LEC", " LABORATORY", " LECTURE", " LAB", " LEC"}

// SectionKey reduces a section label to its logical section identity.
func SectionKey(section string) string {
	key := strings.ToUpper(strings.TrimSpace(section))
	for _, suffix := range sectionSuffixes {
		if strings.HasSuffix(key, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(key, suffix))
		}
	}
	return key
}

// scanConflicts walks the allocation set and returns a copy of the first
// allocation that matches the predicate, meets on day, and overlaps tr.
// excludeID skips the allocation being edited (0 means none). Rows with
// malformed stored day or time fail the whole check rather than silently
// reading as conflict-free.
func scanConflicts(allocations []models.AllocationSlot, day time.Weekday, tr TimeRange, excludeID int64, match func(*models.AllocationSlot) bool) (*models.AllocationSlot, error) {
	for i := range allocations {
		slot := &allocations[i]
		if excludeID != 0 && slot.ID == excludeID {
			continue
		}
		if !match(slot) {
			continue
		}
		sameDay, err := DayMatches(slot.ScheduleDay, day)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUnknownDayCode.Code, appErrors.ErrUnknownDayCode.Status, fmt.Sprintf("allocation %d has an invalid day code", slot.ID))
		}
		if !sameDay {
			continue
		}
		stored, err := ParseMeetingTime(slot.ScheduleTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrTimeParse.Code, appErrors.ErrTimeParse.Status, fmt.Sprintf("allocation %d has an invalid meeting time", slot.ID))
		}
		if tr.Overlaps(stored) {
			found := *slot
			return &found, nil
		}
	}
	return nil, nil
}

// CheckRoom returns the first allocation occupying the room on the given
// day and time. Rooms are compared by name, and by building when the
// candidate supplies one, so same-numbered rooms across buildings never
// collide.
func CheckRoom(allocations []models.AllocationSlot, room, building string, day time.Weekday, tr TimeRange, excludeID int64) (*models.AllocationSlot, error) {
	return scanConflicts(allocations, day, tr, excludeID, func(slot *models.AllocationSlot) bool {
		if !strings.EqualFold(slot.Room, room) {
			return false
		}
		return building == "" || strings.EqualFold(slot.Building, building)
	})
}

// CheckTeacher returns the first allocation that double-books the
// teacher. An empty teacher name never conflicts: unassigned slots are
// free by definition.
func CheckTeacher(allocations []models.AllocationSlot, teacherName string, day time.Weekday, tr TimeRange, excludeID int64) (*models.AllocationSlot, error) {
	if strings.TrimSpace(teacherName) == "" {
		return nil, nil
	}
	return scanConflicts(allocations, day, tr, excludeID, func(slot *models.AllocationSlot) bool {
		return strings.EqualFold(strings.TrimSpace(slot.TeacherName), strings.TrimSpace(teacherName))
	})
}

// CheckSection returns the first allocation that double-books the logical
// section. Lab and lecture meetings of one section share an identity.
func CheckSection(allocations []models.AllocationSlot, section string, day time.Weekday, tr TimeRange, excludeID int64) (*models.AllocationSlot, error) {
	key := SectionKey(section)
	if key == "" {
		return nil, nil
	}
	return scanConflicts(allocations, day, tr, excludeID, func(slot *models.AllocationSlot) bool {
		return SectionKey(slot.Section) == key
	})
}

// CheckAll runs every conflict dimension for one candidate placement.
func CheckAll(allocations []models.AllocationSlot, cand Candidate, excludeID int64) (ConflictResult, error) {
	result := ConflictResult{}

	roomHit, err := CheckRoom(allocations, cand.Room, cand.Building, cand.Day, cand.Time, excludeID)
	if err != nil {
		return ConflictResult{}, err
	}
	teacherHit, err := CheckTeacher(allocations, cand.TeacherName, cand.Day, cand.Time, excludeID)
	if err != nil {
		return ConflictResult{}, err
	}
	sectionHit, err := CheckSection(allocations, cand.Section, cand.Day, cand.Time, excludeID)
	if err != nil {
		return ConflictResult{}, err
	}

	result.RoomConflict = roomHit
	result.TeacherConflict = teacherHit
	result.SectionConflict = sectionHit
	result.HasConflict = roomHit != nil || teacherHit != nil || sectionHit != nil
	return result, nil
}
