package dto

import "github.com/campus-ops/room-allocation-api/internal/models"

// CreateChangeRequestRequest is the faculty payload proposing a new
// day/time for an existing allocation. The original day/time are
// snapshotted server-side from the live allocation, never trusted from
// the client.
type CreateChangeRequestRequest struct {
	AllocationID int64  `json:"allocation_id" validate:"required"`
	NewDay       string `json:"new_day" validate:"required"`
	NewTime      string `json:"new_time" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
}

// Decision values accepted by DecideChangeRequestRequest.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// DecideChangeRequestRequest captures the administrator's verdict.
type DecideChangeRequestRequest struct {
	Decision   string `json:"decision" validate:"required,oneof=approve reject"`
	AdminNotes string `json:"admin_notes"`
}

// ChangeRequestQuery mirrors supported listing filters.
type ChangeRequestQuery struct {
	ScheduleID  string
	RequesterID string
	Status      []models.ChangeRequestStatus
	Limit       int
	Offset      int
}
