package dto

import "github.com/campus-ops/room-allocation-api/internal/engine"

// RankRoomsQuery selects the ordering for reassignment candidates.
type RankRoomsQuery struct {
	Sort string `form:"sort"`
}

// TeacherMoveCheckRequest validates handing an allocation to a different
// teacher. Eligibility (teaching-load records) is enforced elsewhere;
// the engine's concern is only the time conflict.
type TeacherMoveCheckRequest struct {
	AllocationID int64  `json:"allocation_id" validate:"required"`
	TeacherName  string `json:"teacher_name" validate:"required"`
}

// TeacherMoveCheckResult reports whether the proposed teacher is free at
// every meeting of the allocation.
type TeacherMoveCheckResult struct {
	Free       bool                 `json:"free"`
	ConflictAt *engine.TimeRange    `json:"conflict_at,omitempty"`
	Conflict   *ConflictDescription `json:"conflict,omitempty"`
}

// ConflictDescription is a display-friendly summary of a blocking
// allocation.
type ConflictDescription struct {
	CourseCode string `json:"course_code"`
	Section    string `json:"section"`
	Room       string `json:"room"`
	Day        string `json:"day"`
	Time       string `json:"time"`
}
