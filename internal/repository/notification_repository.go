package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/room-allocation-api/internal/models"
)

// NotificationRepository persists in-app notification records.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification row.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	if len(notification.Metadata) == 0 {
		notification.Metadata = []byte("{}")
	}
	const query = `INSERT INTO notifications
	(id, title, message, audience, severity, category, schedule_id, recipient_id, metadata, created_at)
	VALUES (:id, :title, :message, :audience, :severity, :category, :schedule_id, :recipient_id, :metadata, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns notifications visible to a recipient, newest first:
// direct notifications plus any matching audience broadcast.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, title, message, audience, severity, category, schedule_id, recipient_id, metadata, created_at
	FROM notifications`)

	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 3)
	if filter.RecipientID != "" {
		args = append(args, filter.RecipientID)
		recipientCond := fmt.Sprintf("recipient_id = $%d", len(args))
		if len(filter.Audiences) > 0 {
			placeholders := make([]string, len(filter.Audiences))
			for i, audience := range filter.Audiences {
				args = append(args, audience)
				placeholders[i] = fmt.Sprintf("$%d", len(args))
			}
			recipientCond = fmt.Sprintf("(%s OR (recipient_id IS NULL AND audience IN (%s)))", recipientCond, strings.Join(placeholders, ","))
		}
		conditions = append(conditions, recipientCond)
	} else if len(filter.Audiences) > 0 {
		placeholders := make([]string, len(filter.Audiences))
		for i, audience := range filter.Audiences {
			args = append(args, audience)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("audience IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
