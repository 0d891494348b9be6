package dto

// LockScheduleRequest toggles the schedule-wide change-request gate.
// Locked is a pointer so an explicit false is distinguishable from an
// omitted field.
type LockScheduleRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

// ExportQuery selects the allocation table export format.
type ExportQuery struct {
	Format string `form:"format"`
}
