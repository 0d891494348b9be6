package models

import "time"

// AllocationSlot is a committed room/day/time assignment for one course
// section meeting. ScheduleDay and ScheduleTime keep the raw catalog
// strings; the engine normalizes them on demand and never compares raw.
type AllocationSlot struct {
	ID           int64     `db:"id" json:"id"`
	ScheduleID   string    `db:"schedule_id" json:"schedule_id"`
	Room         string    `db:"room" json:"room"`
	Building     string    `db:"building" json:"building"`
	Section      string    `db:"section" json:"section"`
	TeacherName  string    `db:"teacher_name" json:"teacher_name"`
	ScheduleDay  string    `db:"schedule_day" json:"schedule_day"`
	ScheduleTime string    `db:"schedule_time" json:"schedule_time"`
	CourseCode   string    `db:"course_code" json:"course_code"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	Version      int       `db:"version" json:"version"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AllocationFilter describes query params for listing allocations.
type AllocationFilter struct {
	ScheduleID  string
	Room        string
	Building    string
	Section     string
	TeacherName string
	Day         string
}
