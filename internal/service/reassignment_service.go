package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/engine"
	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type reassignAllocationReader interface {
	FindByID(ctx context.Context, id int64) (*models.AllocationSlot, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error)
}

type roomCatalogReader interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListFeatures(ctx context.Context) (map[int64][]models.RoomFeature, error)
	ListRequirementsByCourse(ctx context.Context, courseID int64) ([]models.CourseRequirement, error)
}

// ReassignmentService builds the ranked candidate list for moving an
// allocation to a different room, and validates teacher handovers.
type ReassignmentService struct {
	allocations reassignAllocationReader
	rooms       roomCatalogReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReassignmentService constructs the service.
func NewReassignmentService(allocations reassignAllocationReader, rooms roomCatalogReader, validate *validator.Validate, logger *zap.Logger) *ReassignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReassignmentService{allocations: allocations, rooms: rooms, validator: validate, logger: logger}
}

// RankRooms annotates every candidate destination room for one
// allocation at its current meeting day and time.
func (s *ReassignmentService) RankRooms(ctx context.Context, allocationID int64, query dto.RankRoomsQuery) ([]engine.RankedRoom, error) {
	mode, err := engine.ParseSortMode(query.Sort)
	if err != nil {
		return nil, err
	}

	allocation, err := s.allocations.FindByID(ctx, allocationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	features, err := s.rooms.ListFeatures(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room features")
	}
	requirements, err := s.rooms.ListRequirementsByCourse(ctx, allocation.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course requirements")
	}
	allocations, err := s.allocations.ListBySchedule(ctx, allocation.ScheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}

	return engine.RankRooms(*allocation, rooms, allocations, requirements, features, mode)
}

// CheckTeacherMove reports whether a proposed teacher is free at every
// meeting of the allocation. Teaching-load eligibility is out of scope
// here; the check is purely temporal.
func (s *ReassignmentService) CheckTeacherMove(ctx context.Context, req dto.TeacherMoveCheckRequest) (*dto.TeacherMoveCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher move payload")
	}

	allocation, err := s.allocations.FindByID(ctx, req.AllocationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "allocation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}

	days, err := engine.ExpandDayCode(allocation.ScheduleDay)
	if err != nil {
		return nil, err
	}
	tr, err := engine.ParseMeetingTime(allocation.ScheduleTime)
	if err != nil {
		return nil, err
	}

	allocations, err := s.allocations.ListBySchedule(ctx, allocation.ScheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}

	ordered := make([]time.Weekday, 0, len(days))
	for d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, day := range ordered {
		hit, err := engine.CheckTeacher(allocations, req.TeacherName, day, tr, allocation.ID)
		if err != nil {
			return nil, err
		}
		if hit != nil {
			return &dto.TeacherMoveCheckResult{
				Free:       false,
				ConflictAt: &tr,
				Conflict: &dto.ConflictDescription{
					CourseCode: hit.CourseCode,
					Section:    hit.Section,
					Room:       hit.Room,
					Day:        day.String(),
					Time:       hit.ScheduleTime,
				},
			}, nil
		}
	}
	return &dto.TeacherMoveCheckResult{Free: true}, nil
}
