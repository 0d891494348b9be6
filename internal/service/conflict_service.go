package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/engine"
	"github.com/campus-ops/room-allocation-api/internal/models"
	"github.com/campus-ops/room-allocation-api/internal/repository"
	"github.com/campus-ops/room-allocation-api/pkg/config"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type conflictAllocationReader interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error)
}

type allocationCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type conflictMetrics interface {
	RecordConflictCheck(dimension string, conflict bool)
	RecordCacheOperation(hit bool, duration time.Duration)
}

// ConflictService answers placement questions against a schedule's
// committed allocations: point checks and full-day availability grids.
// The allocation set is cached per schedule with a short TTL; conflict
// evaluation itself is pure and delegated to the engine.
type ConflictService struct {
	allocations conflictAllocationReader
	cache       allocationCache
	metrics     conflictMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	engineCfg   config.EngineConfig
}

// NewConflictService constructs the service.
func NewConflictService(
	allocations conflictAllocationReader,
	cache allocationCache,
	metrics conflictMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	engineCfg config.EngineConfig,
) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConflictService{
		allocations: allocations,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		engineCfg:   engineCfg,
	}
}

// CheckPlacement validates one candidate placement against every
// committed allocation in the schedule.
func (s *ConflictService) CheckPlacement(ctx context.Context, scheduleID string, req dto.ConflictCheckRequest) (*engine.ConflictResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}

	day, err := singleWeekday(req.Day)
	if err != nil {
		return nil, err
	}
	tr, err := engine.ParseMeetingTime(req.Time)
	if err != nil {
		return nil, err
	}

	allocations, err := s.loadAllocations(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	result, err := engine.CheckAll(allocations, engine.Candidate{
		Room:        req.Room,
		Building:    req.Building,
		TeacherName: req.TeacherName,
		Section:     req.Section,
		Day:         day,
		Time:        tr,
	}, req.ExcludeID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordConflictCheck("room", result.RoomConflict != nil)
		s.metrics.RecordConflictCheck("teacher", result.TeacherConflict != nil)
		s.metrics.RecordConflictCheck("section", result.SectionConflict != nil)
	}
	return &result, nil
}

// SlotGrid enumerates availability for every candidate start offset in
// the bookable day.
func (s *ConflictService) SlotGrid(ctx context.Context, scheduleID string, q dto.SlotGridQuery) (map[int]engine.SlotStatus, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot grid query")
	}

	day, err := singleWeekday(q.Day)
	if err != nil {
		return nil, err
	}

	duration := q.DurationMinutes
	if duration <= 0 {
		duration = s.engineCfg.DefaultSlotDuration
	}

	allocations, err := s.loadAllocations(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	grid, err := engine.Grid(allocations, engine.Candidate{
		Room:        q.Room,
		Building:    q.Building,
		TeacherName: q.TeacherName,
		Section:     q.Section,
		Day:         day,
	}, duration, q.ExcludeID, engine.GridParams{
		StartMinutes: s.engineCfg.GridStartMinutes,
		EndMinutes:   s.engineCfg.GridEndMinutes,
		StepMinutes:  s.engineCfg.GridStepMinutes,
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		free := 0
		for _, status := range grid {
			if status.Available {
				free++
			}
		}
		s.metrics.RecordConflictCheck("grid", free == 0)
	}
	return grid, nil
}

// loadAllocations reads the schedule's allocation set, cache first.
func (s *ConflictService) loadAllocations(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error) {
	key := repository.AllocationsKey(scheduleID)

	if s.cache != nil {
		started := time.Now()
		var cached []models.AllocationSlot
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true, time.Since(started))
			}
			return cached, nil
		}
		if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("allocation cache read failed", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, time.Since(started))
		}
	}

	allocations, err := s.allocations.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocations")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, allocations, s.engineCfg.AllocationCacheTTL); err != nil {
			s.logger.Warn("allocation cache write failed", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
	}
	return allocations, nil
}

// singleWeekday parses a day code that must denote exactly one weekday.
// Composite codes are rejected: a point check targets one calendar day.
func singleWeekday(raw string) (time.Weekday, error) {
	days, err := engine.ExpandDayCode(raw)
	if err != nil {
		return 0, err
	}
	if len(days) != 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %q must denote a single weekday", raw))
	}
	for d := range days {
		return d, nil
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, "empty day code")
}
