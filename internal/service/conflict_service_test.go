package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/models"
	"github.com/campus-ops/room-allocation-api/pkg/config"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type allocReaderStub struct {
	slots []models.AllocationSlot
	err   error
	calls int
}

func (s *allocReaderStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.slots, nil
}

type cacheStub struct {
	entries map[string][]byte
	sets    int
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = make(map[string][]byte)
	}
	s.entries[key] = raw
	s.sets++
	return nil
}

type conflictMetricsStub struct {
	checks map[string]int
	hits   int
	misses int
}

func (s *conflictMetricsStub) RecordConflictCheck(dimension string, conflict bool) {
	if s.checks == nil {
		s.checks = make(map[string]int)
	}
	s.checks[dimension]++
}

func (s *conflictMetricsStub) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		s.hits++
	} else {
		s.misses++
	}
}

func conflictServiceFixture() []models.AllocationSlot {
	return []models.AllocationSlot{
		{ID: 1, ScheduleID: "sched-1", Room: "Room 101", Building: "Main", Section: "BSCS 1A", TeacherName: "Reyes", ScheduleDay: "MWF", ScheduleTime: "7:00AM - 8:30AM", CourseCode: "CS101"},
		{ID: 2, ScheduleID: "sched-1", Room: "Room 102", Building: "Main", Section: "BSCS 1B", TeacherName: "Cruz", ScheduleDay: "TTH", ScheduleTime: "9:00AM - 10:30AM", CourseCode: "CS102"},
	}
}

func newConflictService(repo *allocReaderStub, cache *cacheStub, metrics *conflictMetricsStub) *ConflictService {
	var metricsArg conflictMetrics
	if metrics != nil {
		metricsArg = metrics
	}
	return NewConflictService(repo, cache, metricsArg, validator.New(), zap.NewNop(), config.EngineConfig{
		GridStartMinutes:    420,
		GridEndMinutes:      1200,
		GridStepMinutes:     30,
		AllocationCacheTTL:  time.Minute,
		DefaultSlotDuration: 90,
	})
}

func TestConflictServiceCheckPlacementFindsRoomConflict(t *testing.T) {
	repo := &allocReaderStub{slots: conflictServiceFixture()}
	metrics := &conflictMetricsStub{}
	svc := newConflictService(repo, &cacheStub{}, metrics)

	result, err := svc.CheckPlacement(context.Background(), "sched-1", dto.ConflictCheckRequest{
		Room:    "Room 101",
		Day:     "M",
		Time:    "8:00AM - 9:00AM",
		Section: "BSIT 2A",
	})
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	require.NotNil(t, result.RoomConflict)
	assert.Equal(t, int64(1), result.RoomConflict.ID)
	assert.Nil(t, result.TeacherConflict)
	assert.Equal(t, 1, metrics.checks["room"])
}

func TestConflictServiceCheckPlacementRejectsCompositeDay(t *testing.T) {
	svc := newConflictService(&allocReaderStub{}, &cacheStub{}, nil)

	_, err := svc.CheckPlacement(context.Background(), "sched-1", dto.ConflictCheckRequest{
		Room: "Room 101",
		Day:  "TTH",
		Time: "8:00AM - 9:00AM",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestConflictServiceCachesAllocationSet(t *testing.T) {
	repo := &allocReaderStub{slots: conflictServiceFixture()}
	cache := &cacheStub{}
	metrics := &conflictMetricsStub{}
	svc := newConflictService(repo, cache, metrics)

	req := dto.ConflictCheckRequest{Room: "Room 300", Day: "M", Time: "8:00AM - 9:00AM"}

	_, err := svc.CheckPlacement(context.Background(), "sched-1", req)
	require.NoError(t, err)
	_, err = svc.CheckPlacement(context.Background(), "sched-1", req)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.hits)
}

func TestConflictServiceSlotGridCoversBookableDay(t *testing.T) {
	repo := &allocReaderStub{slots: conflictServiceFixture()}
	svc := newConflictService(repo, &cacheStub{}, nil)

	grid, err := svc.SlotGrid(context.Background(), "sched-1", dto.SlotGridQuery{
		Day:  "M",
		Room: "Room 101",
	})
	require.NoError(t, err)
	// Half-hour starts from 07:00 through 20:00 inclusive.
	assert.Len(t, grid, 27)

	// Room 101 meets 7:00-8:30 on Monday; a 90-minute block starting at
	// 07:00 collides, one starting at 8:30 does not.
	assert.False(t, grid[420].Available)
	assert.True(t, grid[510].Available)
}

func TestConflictServiceSurfacesMalformedStoredRows(t *testing.T) {
	repo := &allocReaderStub{slots: []models.AllocationSlot{
		{ID: 9, ScheduleID: "sched-1", Room: "Room 101", ScheduleDay: "XYZ", ScheduleTime: "7:00AM - 8:30AM"},
	}}
	svc := newConflictService(repo, &cacheStub{}, nil)

	_, err := svc.CheckPlacement(context.Background(), "sched-1", dto.ConflictCheckRequest{
		Room: "Room 101",
		Day:  "M",
		Time: "8:00AM - 9:00AM",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnknownDayCode))
}
