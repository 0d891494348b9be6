package engine

import (
	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

// GridParams bounds the availability grid. Zero values fall back to the
// campus defaults: half-hour starts from 07:00 through 20:00 inclusive.
type GridParams struct {
	StartMinutes int
	EndMinutes   int
	StepMinutes  int
}

func (p GridParams) withDefaults() GridParams {
	if p.StartMinutes <= 0 {
		p.StartMinutes = 7 * 60
	}
	if p.EndMinutes <= 0 {
		p.EndMinutes = 20 * 60
	}
	if p.StepMinutes <= 0 {
		p.StepMinutes = 30
	}
	return p
}

// SlotStatus tags one grid offset with availability per dimension.
type SlotStatus struct {
	Available       bool `json:"available"`
	RoomConflict    bool `json:"room_conflict"`
	TeacherConflict bool `json:"teacher_conflict"`
	SectionConflict bool `json:"section_conflict"`
}

// Grid enumerates every candidate start offset for the day and tags each
// with the conflict dimensions a placement of durationMinutes would hit.
// The map is keyed by start offset in minutes since midnight. Ranking or
// selection is the caller's concern; the grid reports feasibility only.
func Grid(allocations []models.AllocationSlot, cand Candidate, durationMinutes int, excludeID int64, params GridParams) (map[int]SlotStatus, error) {
	if durationMinutes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be positive")
	}
	params = params.withDefaults()

	grid := make(map[int]SlotStatus)
	for offset := params.StartMinutes; offset <= params.EndMinutes; offset += params.StepMinutes {
		cand.Time = TimeRange{StartMinutes: offset, EndMinutes: offset + durationMinutes}
		result, err := CheckAll(allocations, cand, excludeID)
		if err != nil {
			return nil, err
		}
		grid[offset] = SlotStatus{
			Available:       !result.HasConflict,
			RoomConflict:    result.RoomConflict != nil,
			TeacherConflict: result.TeacherConflict != nil,
			SectionConflict: result.SectionConflict != nil,
		}
	}
	return grid, nil
}
