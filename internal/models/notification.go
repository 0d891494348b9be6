package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// NotificationAudience defines who a notification targets.
type NotificationAudience string

const (
	NotificationAudienceAdmin   NotificationAudience = "ADMIN"
	NotificationAudienceFaculty NotificationAudience = "FACULTY"
	NotificationAudienceAll     NotificationAudience = "ALL"
)

// NotificationSeverity orders notification display.
type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "INFO"
	NotificationSeverityWarning NotificationSeverity = "WARNING"
	NotificationSeverityError   NotificationSeverity = "ERROR"
	NotificationSeveritySuccess NotificationSeverity = "SUCCESS"
)

// Notification is a persisted in-app notification record. RecipientID is
// set for direct notifications and empty for audience broadcasts.
type Notification struct {
	ID          string               `db:"id" json:"id"`
	Title       string               `db:"title" json:"title"`
	Message     string               `db:"message" json:"message"`
	Audience    NotificationAudience `db:"audience" json:"audience"`
	Severity    NotificationSeverity `db:"severity" json:"severity"`
	Category    string               `db:"category" json:"category"`
	ScheduleID  *string              `db:"schedule_id" json:"schedule_id,omitempty"`
	RecipientID *string              `db:"recipient_id" json:"recipient_id,omitempty"`
	Metadata    types.JSONText       `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
}

// NotificationFilter constrains notification listing.
type NotificationFilter struct {
	RecipientID string
	Audiences   []NotificationAudience
	Category    string
	Limit       int
	Offset      int
}
