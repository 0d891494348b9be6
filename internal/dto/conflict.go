package dto

// ConflictCheckRequest describes one candidate placement to validate
// against a schedule's committed allocations. Day is a concrete weekday
// code ("M", "TH", "Friday"); composite codes are rejected because a
// check always targets a single calendar day. Time uses the stored
// "start - end" form.
type ConflictCheckRequest struct {
	Room        string `json:"room" validate:"required"`
	Building    string `json:"building"`
	TeacherName string `json:"teacher_name"`
	Section     string `json:"section"`
	Day         string `json:"day" validate:"required"`
	Time        string `json:"time" validate:"required"`
	ExcludeID   int64  `json:"exclude_id"`
}

// SlotGridQuery enumerates a full-day availability grid for a candidate
// room/teacher/section combination.
type SlotGridQuery struct {
	Day             string `form:"day" validate:"required"`
	Room            string `form:"room" validate:"required"`
	Building        string `form:"building"`
	TeacherName     string `form:"teacher_name"`
	Section         string `form:"section"`
	DurationMinutes int    `form:"duration_minutes"`
	ExcludeID       int64  `form:"exclude_id"`
}
