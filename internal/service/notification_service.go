package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
	"github.com/campus-ops/room-allocation-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
}

// NotificationConfig tunes the delivery worker pool.
type NotificationConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// NotificationService persists in-app notifications through a background
// queue so workflow writes never block on delivery.
type NotificationService struct {
	repo   notificationStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service and its worker queue.
func NewNotificationService(repo notificationStore, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Publish enqueues a notification for persistence. Failures are logged,
// not returned: notifications are best-effort and must never fail the
// workflow that emitted them.
func (s *NotificationService) Publish(notification *models.Notification) {
	if notification == nil {
		return
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if err := s.queue.Enqueue(jobs.Job{
		ID:      notification.ID,
		Type:    "notification.persist",
		Payload: notification,
	}); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("notification_id", notification.ID), zap.Error(err))
	}
}

// List returns notifications visible to the actor: their direct
// notifications plus broadcasts for their role.
func (s *NotificationService) List(ctx context.Context, actor *models.JWTClaims, category string, limit, offset int) ([]models.Notification, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	filter := models.NotificationFilter{
		RecipientID: actor.UserID,
		Category:    category,
		Limit:       limit,
		Offset:      offset,
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		filter.Audiences = []models.NotificationAudience{models.NotificationAudienceAdmin, models.NotificationAudienceAll}
	case models.RoleFaculty:
		filter.Audiences = []models.NotificationAudience{models.NotificationAudienceFaculty, models.NotificationAudienceAll}
	default:
		return nil, appErrors.ErrForbidden
	}

	notifications, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		s.logger.Error("notification job carried unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.repo.Create(ctx, notification)
}
