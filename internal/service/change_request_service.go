package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/engine"
	"github.com/campus-ops/room-allocation-api/internal/models"
	"github.com/campus-ops/room-allocation-api/internal/repository"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type changeRequestStore interface {
	Create(ctx context.Context, request *models.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequestDetail, error)
	Decide(ctx context.Context, params repository.DecideParams) error
}

type requestAllocationReader interface {
	FindByID(ctx context.Context, id int64) (*models.AllocationSlot, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error)
}

type requestScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type workflowNotifier interface {
	Publish(notification *models.Notification)
}

type cacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type decisionMetrics interface {
	RecordDecision(decision string)
}

// ChangeRequestConfig governs the request workflow.
type ChangeRequestConfig struct {
	Enabled         bool
	MaxReasonLength int
}

// ChangeRequestService runs the faculty reschedule workflow: submission
// against an unlocked schedule, role-scoped listing, and the guarded
// approve/reject decision with a live conflict re-check.
type ChangeRequestService struct {
	requests    changeRequestStore
	allocations requestAllocationReader
	schedules   requestScheduleReader
	notifier    workflowNotifier
	cache       cacheInvalidator
	metrics     decisionMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	config      ChangeRequestConfig
}

// NewChangeRequestService constructs the service.
func NewChangeRequestService(
	requests changeRequestStore,
	allocations requestAllocationReader,
	schedules requestScheduleReader,
	notifier workflowNotifier,
	cache cacheInvalidator,
	metrics decisionMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	config ChangeRequestConfig,
) *ChangeRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.MaxReasonLength <= 0 {
		config.MaxReasonLength = 500
	}
	return &ChangeRequestService{
		requests:    requests,
		allocations: allocations,
		schedules:   schedules,
		notifier:    notifier,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		config:      config,
	}
}

// Create submits a new pending request. The original day/time are
// snapshotted from the live allocation, never trusted from the client,
// and a locked schedule refuses the submission outright.
func (s *ChangeRequestService) Create(ctx context.Context, req dto.CreateChangeRequestRequest, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.config.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "change requests are disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change request payload")
	}
	if len(req.Reason) > s.config.MaxReasonLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("reason must not exceed %d characters", s.config.MaxReasonLength))
	}

	if _, err := engine.ExpandDayCode(req.NewDay); err != nil {
		return nil, err
	}
	if _, err := engine.ParseMeetingTime(req.NewTime); err != nil {
		return nil, err
	}

	allocation, err := s.allocations.FindByID(ctx, req.AllocationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}

	if actor.Role == models.RoleFaculty && !strings.EqualFold(strings.TrimSpace(allocation.TeacherName), strings.TrimSpace(actor.FullName)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty may only request changes to their own classes")
	}

	schedule, err := s.schedules.FindByID(ctx, allocation.ScheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if schedule.IsLocked {
		return nil, appErrors.ErrScheduleLocked
	}

	request := &models.ChangeRequest{
		ScheduleID:   allocation.ScheduleID,
		AllocationID: allocation.ID,
		RequesterID:  actor.UserID,
		OriginalDay:  allocation.ScheduleDay,
		OriginalTime: allocation.ScheduleTime,
		NewDay:       req.NewDay,
		NewTime:      req.NewTime,
		Reason:       strings.TrimSpace(req.Reason),
		Status:       models.ChangeRequestStatusPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create change request")
	}

	if s.notifier != nil {
		s.notifier.Publish(&models.Notification{
			Title:      "New schedule change request",
			Message:    fmt.Sprintf("%s requested moving %s %s to %s %s", actor.FullName, allocation.CourseCode, allocation.Section, request.NewDay, request.NewTime),
			Audience:   models.NotificationAudienceAdmin,
			Severity:   models.NotificationSeverityInfo,
			Category:   "change_request",
			ScheduleID: &request.ScheduleID,
		})
	}
	return request, nil
}

// List returns requests visible to the actor. Faculty only see their
// own submissions; admins see everything.
func (s *ChangeRequestService) List(ctx context.Context, query dto.ChangeRequestQuery, actor *models.JWTClaims) ([]models.ChangeRequestDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.ChangeRequestFilter{
		ScheduleID:  query.ScheduleID,
		RequesterID: query.RequesterID,
		Status:      query.Status,
		Limit:       query.Limit,
		Offset:      query.Offset,
	}
	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		// full access
	case models.RoleFaculty:
		filter.RequesterID = actor.UserID
	default:
		return nil, appErrors.ErrForbidden
	}

	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list change requests")
	}
	return requests, nil
}

// Get returns a single request enforcing the same scope as List.
func (s *ChangeRequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}
	if actor.Role == models.RoleFaculty && request.RequesterID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// Decide approves or rejects a pending request. Approval re-checks the
// proposed slot against the live allocation set immediately before
// committing, so a slot taken since submission is refused rather than
// double-booked. The status flip and the allocation rewrite commit in
// one transaction.
func (s *ChangeRequestService) Decide(ctx context.Context, id string, req dto.DecideChangeRequestRequest, reviewer *models.JWTClaims) (*models.ChangeRequest, error) {
	if reviewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}
	if request.Status != models.ChangeRequestStatusPending {
		return nil, appErrors.ErrInvalidState
	}

	allocation, err := s.allocations.FindByID(ctx, request.AllocationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}

	status := models.ChangeRequestStatusRejected
	if req.Decision == dto.DecisionApprove {
		status = models.ChangeRequestStatusApproved
		if err := s.recheckProposedSlot(ctx, request, allocation); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	params := repository.DecideParams{
		ID:                request.ID,
		Status:            status,
		ReviewedBy:        reviewer.UserID,
		ReviewedAt:        now,
		AdminNotes:        optionalString(req.AdminNotes),
		AllocationID:      allocation.ID,
		AllocationVersion: allocation.Version,
		NewDay:            request.NewDay,
		NewTime:           request.NewTime,
	}
	if err := s.requests.Decide(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "request was already reviewed or the allocation changed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize decision")
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(strings.ToLower(string(status)))
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, repository.AllocationsKey(request.ScheduleID)); err != nil {
			s.logger.Warn("failed to invalidate allocation cache", zap.String("schedule_id", request.ScheduleID), zap.Error(err))
		}
	}

	request.Status = status
	request.ReviewedBy = &reviewer.UserID
	request.ReviewedAt = &now
	request.AdminNotes = params.AdminNotes

	if s.notifier != nil {
		severity := models.NotificationSeveritySuccess
		verdict := "approved"
		if status == models.ChangeRequestStatusRejected {
			severity = models.NotificationSeverityWarning
			verdict = "rejected"
		}
		s.notifier.Publish(&models.Notification{
			Title:       fmt.Sprintf("Change request %s", verdict),
			Message:     fmt.Sprintf("Your request to move %s %s to %s %s was %s", allocation.CourseCode, allocation.Section, request.NewDay, request.NewTime, verdict),
			Audience:    models.NotificationAudienceFaculty,
			Severity:    severity,
			Category:    "change_request",
			ScheduleID:  &request.ScheduleID,
			RecipientID: &request.RequesterID,
		})
	}
	return request, nil
}

// recheckProposedSlot validates the request's proposed day/time against
// the current allocation set, on every weekday the new code denotes.
func (s *ChangeRequestService) recheckProposedSlot(ctx context.Context, request *models.ChangeRequest, allocation *models.AllocationSlot) error {
	days, err := engine.ExpandDayCode(request.NewDay)
	if err != nil {
		return err
	}
	tr, err := engine.ParseMeetingTime(request.NewTime)
	if err != nil {
		return err
	}

	allocations, err := s.allocations.ListBySchedule(ctx, request.ScheduleID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}

	ordered := make([]time.Weekday, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, day := range ordered {
		result, err := engine.CheckAll(allocations, engine.Candidate{
			Room:        allocation.Room,
			Building:    allocation.Building,
			TeacherName: allocation.TeacherName,
			Section:     allocation.Section,
			Day:         day,
			Time:        tr,
		}, allocation.ID)
		if err != nil {
			return err
		}
		if result.HasConflict {
			return appErrors.Clone(appErrors.ErrSlotTaken, fmt.Sprintf("proposed slot conflicts on %s", day))
		}
	}
	return nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
