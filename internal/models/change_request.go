package models

import "time"

// ChangeRequestStatus captures workflow states for reschedule requests.
// PENDING is the only mutable state; APPROVED and REJECTED are terminal.
type ChangeRequestStatus string

const (
	ChangeRequestStatusPending  ChangeRequestStatus = "PENDING"
	ChangeRequestStatusApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestStatusRejected ChangeRequestStatus = "REJECTED"
)

// ChangeRequest is a faculty-submitted proposal to move an existing
// allocation to a new day/time, subject to admin approval.
type ChangeRequest struct {
	ID           string              `db:"id" json:"id"`
	ScheduleID   string              `db:"schedule_id" json:"schedule_id"`
	AllocationID int64               `db:"allocation_id" json:"allocation_id"`
	RequesterID  string              `db:"requester_id" json:"requester_id"`
	OriginalDay  string              `db:"original_day" json:"original_day"`
	OriginalTime string              `db:"original_time" json:"original_time"`
	NewDay       string              `db:"new_day" json:"new_day"`
	NewTime      string              `db:"new_time" json:"new_time"`
	Reason       string              `db:"reason" json:"reason"`
	Status       ChangeRequestStatus `db:"status" json:"status"`
	AdminNotes   *string             `db:"admin_notes" json:"admin_notes,omitempty"`
	ReviewedBy   *string             `db:"reviewed_by" json:"reviewed_by,omitempty"`
	RequestedAt  time.Time           `db:"requested_at" json:"requested_at"`
	ReviewedAt   *time.Time          `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// ChangeRequestDetail enriches a request with requester and allocation
// presentation fields. This is a read-time join, not workflow state.
type ChangeRequestDetail struct {
	ChangeRequest
	RequesterName string `db:"requester_name" json:"requester_name"`
	CourseCode    string `db:"course_code" json:"course_code"`
	Section       string `db:"section" json:"section"`
	Room          string `db:"room" json:"room"`
}

// ChangeRequestFilter constrains listing queries.
type ChangeRequestFilter struct {
	ScheduleID  string
	RequesterID string
	Status      []ChangeRequestStatus
	Limit       int
	Offset      int
}
