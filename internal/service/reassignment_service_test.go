package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/models"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type reassignAllocStub struct {
	allocations map[int64]*models.AllocationSlot
	slots       []models.AllocationSlot
}

func (s *reassignAllocStub) FindByID(ctx context.Context, id int64) (*models.AllocationSlot, error) {
	allocation, ok := s.allocations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *allocation
	return &cp, nil
}

func (s *reassignAllocStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error) {
	return s.slots, nil
}

type roomCatalogStub struct {
	rooms        []models.Room
	features     map[int64][]models.RoomFeature
	requirements []models.CourseRequirement
}

func (s *roomCatalogStub) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

func (s *roomCatalogStub) ListFeatures(ctx context.Context) (map[int64][]models.RoomFeature, error) {
	return s.features, nil
}

func (s *roomCatalogStub) ListRequirementsByCourse(ctx context.Context, courseID int64) ([]models.CourseRequirement, error) {
	return s.requirements, nil
}

func reassignServiceFixture() (*reassignAllocStub, *roomCatalogStub) {
	target := &models.AllocationSlot{
		ID:           1,
		ScheduleID:   "sched-1",
		Room:         "Room 101",
		Building:     "Main",
		Section:      "BSCS 1A",
		TeacherName:  "Reyes",
		ScheduleDay:  "MWF",
		ScheduleTime: "7:00AM - 8:30AM",
		CourseCode:   "CS101",
		CourseID:     11,
	}
	occupant := models.AllocationSlot{
		ID:           2,
		ScheduleID:   "sched-1",
		Room:         "Room 102",
		Building:     "Main",
		Section:      "BSCS 1B",
		TeacherName:  "Cruz",
		ScheduleDay:  "M",
		ScheduleTime: "7:00AM - 8:30AM",
		CourseCode:   "CS102",
	}
	allocs := &reassignAllocStub{
		allocations: map[int64]*models.AllocationSlot{1: target},
		slots:       []models.AllocationSlot{*target, occupant},
	}
	rooms := &roomCatalogStub{
		rooms: []models.Room{
			{ID: 1, Name: "Room 101", Building: "Main", Capacity: 40},
			{ID: 2, Name: "Room 102", Building: "Main", Capacity: 45},
			{ID: 3, Name: "Room 201", Building: "Annex", Capacity: 50},
		},
		features: map[int64][]models.RoomFeature{},
	}
	return allocs, rooms
}

func TestReassignmentServiceRankRoomsExcludesCurrentAndMarksOccupied(t *testing.T) {
	allocs, rooms := reassignServiceFixture()
	svc := NewReassignmentService(allocs, rooms, validator.New(), zap.NewNop())

	ranked, err := svc.RankRooms(context.Background(), 1, dto.RankRoomsQuery{Sort: "name"})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	for _, entry := range ranked {
		assert.NotEqual(t, "Room 101", entry.Room.Name)
	}

	byName := map[string]int{}
	for i, entry := range ranked {
		byName[entry.Room.Name] = i
	}
	occupied := ranked[byName["Room 102"]]
	assert.False(t, occupied.Selectable)
	require.NotNil(t, occupied.OccupiedBy)
	assert.Equal(t, int64(2), occupied.OccupiedBy.ID)

	free := ranked[byName["Room 201"]]
	assert.True(t, free.Selectable)
}

func TestReassignmentServiceRankRoomsRejectsUnknownSort(t *testing.T) {
	allocs, rooms := reassignServiceFixture()
	svc := NewReassignmentService(allocs, rooms, validator.New(), zap.NewNop())

	_, err := svc.RankRooms(context.Background(), 1, dto.RankRoomsQuery{Sort: "distance"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReassignmentServiceRankRoomsUnknownAllocation(t *testing.T) {
	allocs, rooms := reassignServiceFixture()
	svc := NewReassignmentService(allocs, rooms, validator.New(), zap.NewNop())

	_, err := svc.RankRooms(context.Background(), 99, dto.RankRoomsQuery{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestReassignmentServiceCheckTeacherMove(t *testing.T) {
	allocs, rooms := reassignServiceFixture()
	svc := NewReassignmentService(allocs, rooms, validator.New(), zap.NewNop())

	// Cruz already teaches Monday 7:00-8:30 in Room 102.
	result, err := svc.CheckTeacherMove(context.Background(), dto.TeacherMoveCheckRequest{
		AllocationID: 1,
		TeacherName:  "Cruz",
	})
	require.NoError(t, err)
	assert.False(t, result.Free)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, "CS102", result.Conflict.CourseCode)
	assert.Equal(t, "Monday", result.Conflict.Day)

	result, err = svc.CheckTeacherMove(context.Background(), dto.TeacherMoveCheckRequest{
		AllocationID: 1,
		TeacherName:  "Santos",
	})
	require.NoError(t, err)
	assert.True(t, result.Free)
	assert.Nil(t, result.Conflict)
}
