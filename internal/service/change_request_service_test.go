package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ops/room-allocation-api/internal/dto"
	"github.com/campus-ops/room-allocation-api/internal/models"
	"github.com/campus-ops/room-allocation-api/internal/repository"
	appErrors "github.com/campus-ops/room-allocation-api/pkg/errors"
)

type crStoreStub struct {
	created   *models.ChangeRequest
	requests  map[string]*models.ChangeRequest
	listed    []models.ChangeRequestDetail
	filter    models.ChangeRequestFilter
	decided   *repository.DecideParams
	decideErr error
}

func (s *crStoreStub) Create(ctx context.Context, request *models.ChangeRequest) error {
	request.ID = "req-1"
	request.RequestedAt = time.Now().UTC()
	cp := *request
	s.created = &cp
	return nil
}

func (s *crStoreStub) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *request
	return &cp, nil
}

func (s *crStoreStub) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequestDetail, error) {
	s.filter = filter
	return s.listed, nil
}

func (s *crStoreStub) Decide(ctx context.Context, params repository.DecideParams) error {
	if s.decideErr != nil {
		return s.decideErr
	}
	cp := params
	s.decided = &cp
	return nil
}

type crAllocStub struct {
	allocations map[int64]*models.AllocationSlot
	slots       []models.AllocationSlot
}

func (s *crAllocStub) FindByID(ctx context.Context, id int64) (*models.AllocationSlot, error) {
	allocation, ok := s.allocations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *allocation
	return &cp, nil
}

func (s *crAllocStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error) {
	return s.slots, nil
}

type crScheduleStub struct {
	schedule *models.Schedule
}

func (s *crScheduleStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if s.schedule == nil {
		return nil, sql.ErrNoRows
	}
	cp := *s.schedule
	return &cp, nil
}

type notifierStub struct {
	published []*models.Notification
}

func (s *notifierStub) Publish(notification *models.Notification) {
	s.published = append(s.published, notification)
}

type invalidatorStub struct {
	keys []string
}

func (s *invalidatorStub) Delete(ctx context.Context, key string) error {
	s.keys = append(s.keys, key)
	return nil
}

type decisionMetricsStub struct {
	decisions []string
}

func (s *decisionMetricsStub) RecordDecision(decision string) {
	s.decisions = append(s.decisions, decision)
}

func facultyActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleFaculty, FullName: "Reyes"}
}

func adminActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, FullName: "Dela Cruz"}
}

func changeRequestFixture() (*crStoreStub, *crAllocStub, *crScheduleStub) {
	allocation := &models.AllocationSlot{
		ID:           7,
		ScheduleID:   "sched-1",
		Room:         "Room 101",
		Building:     "Main",
		Section:      "BSCS 1A",
		TeacherName:  "Reyes",
		ScheduleDay:  "MWF",
		ScheduleTime: "7:00AM - 8:30AM",
		CourseCode:   "CS101",
		Version:      3,
	}
	store := &crStoreStub{requests: map[string]*models.ChangeRequest{}}
	allocs := &crAllocStub{
		allocations: map[int64]*models.AllocationSlot{7: allocation},
		slots:       []models.AllocationSlot{*allocation},
	}
	schedules := &crScheduleStub{schedule: &models.Schedule{ID: "sched-1", Term: "AY 2026-2027 1st Sem"}}
	return store, allocs, schedules
}

func newChangeRequestService(store *crStoreStub, allocs *crAllocStub, schedules *crScheduleStub, notifier *notifierStub, cache *invalidatorStub, metrics *decisionMetricsStub) *ChangeRequestService {
	var notifierArg workflowNotifier
	if notifier != nil {
		notifierArg = notifier
	}
	var cacheArg cacheInvalidator
	if cache != nil {
		cacheArg = cache
	}
	var metricsArg decisionMetrics
	if metrics != nil {
		metricsArg = metrics
	}
	return NewChangeRequestService(store, allocs, schedules, notifierArg, cacheArg, metricsArg, validator.New(), zap.NewNop(), ChangeRequestConfig{
		Enabled:         true,
		MaxReasonLength: 500,
	})
}

func TestChangeRequestServiceCreateSnapshotsOriginalMeeting(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	notifier := &notifierStub{}
	svc := newChangeRequestService(store, allocs, schedules, notifier, nil, nil)

	request, err := svc.Create(context.Background(), dto.CreateChangeRequestRequest{
		AllocationID: 7,
		NewDay:       "TTH",
		NewTime:      "1:00PM - 2:30PM",
		Reason:       "room too small",
	}, facultyActor())
	require.NoError(t, err)

	assert.Equal(t, models.ChangeRequestStatusPending, request.Status)
	assert.Equal(t, "MWF", request.OriginalDay)
	assert.Equal(t, "7:00AM - 8:30AM", request.OriginalTime)
	assert.Equal(t, "user-1", request.RequesterID)

	require.Len(t, notifier.published, 1)
	assert.Equal(t, models.NotificationAudienceAdmin, notifier.published[0].Audience)
}

func TestChangeRequestServiceCreateRefusesLockedSchedule(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	schedules.schedule.IsLocked = true
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateChangeRequestRequest{
		AllocationID: 7,
		NewDay:       "TTH",
		NewTime:      "1:00PM - 2:30PM",
		Reason:       "room too small",
	}, facultyActor())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrScheduleLocked))
	assert.Nil(t, store.created)
}

func TestChangeRequestServiceCreateEnforcesOwnership(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, nil)

	actor := &models.JWTClaims{UserID: "user-2", Role: models.RoleFaculty, FullName: "Santos"}
	_, err := svc.Create(context.Background(), dto.CreateChangeRequestRequest{
		AllocationID: 7,
		NewDay:       "TTH",
		NewTime:      "1:00PM - 2:30PM",
		Reason:       "room too small",
	}, actor)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestChangeRequestServiceCreateRejectsUnknownDayCode(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateChangeRequestRequest{
		AllocationID: 7,
		NewDay:       "XYZ",
		NewTime:      "1:00PM - 2:30PM",
		Reason:       "room too small",
	}, facultyActor())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnknownDayCode))
}

func TestChangeRequestServiceListScopesFacultyToOwnRequests(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, nil)

	_, err := svc.List(context.Background(), dto.ChangeRequestQuery{RequesterID: "someone-else"}, facultyActor())
	require.NoError(t, err)
	assert.Equal(t, "user-1", store.filter.RequesterID)
}

func pendingRequest() *models.ChangeRequest {
	return &models.ChangeRequest{
		ID:           "req-1",
		ScheduleID:   "sched-1",
		AllocationID: 7,
		RequesterID:  "user-1",
		OriginalDay:  "MWF",
		OriginalTime: "7:00AM - 8:30AM",
		NewDay:       "TTH",
		NewTime:      "1:00PM - 2:30PM",
		Reason:       "room too small",
		Status:       models.ChangeRequestStatusPending,
	}
}

func TestChangeRequestServiceDecideApprove(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	store.requests["req-1"] = pendingRequest()
	notifier := &notifierStub{}
	cache := &invalidatorStub{}
	metrics := &decisionMetricsStub{}
	svc := newChangeRequestService(store, allocs, schedules, notifier, cache, metrics)

	request, err := svc.Decide(context.Background(), "req-1", dto.DecideChangeRequestRequest{
		Decision:   dto.DecisionApprove,
		AdminNotes: "room is free",
	}, adminActor())
	require.NoError(t, err)

	assert.Equal(t, models.ChangeRequestStatusApproved, request.Status)
	require.NotNil(t, store.decided)
	assert.Equal(t, int64(7), store.decided.AllocationID)
	assert.Equal(t, 3, store.decided.AllocationVersion)
	assert.Equal(t, "TTH", store.decided.NewDay)

	assert.Equal(t, []string{"approved"}, metrics.decisions)
	assert.Equal(t, []string{repository.AllocationsKey("sched-1")}, cache.keys)

	require.Len(t, notifier.published, 1)
	require.NotNil(t, notifier.published[0].RecipientID)
	assert.Equal(t, "user-1", *notifier.published[0].RecipientID)
}

func TestChangeRequestServiceDecideApproveRefusesTakenSlot(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	store.requests["req-1"] = pendingRequest()
	// Another section moved into Room 101 on Thursday afternoon since the
	// request was submitted.
	allocs.slots = append(allocs.slots, models.AllocationSlot{
		ID: 8, ScheduleID: "sched-1", Room: "Room 101", Building: "Main",
		Section: "BSIT 2B", TeacherName: "Cruz", ScheduleDay: "TH",
		ScheduleTime: "1:00PM - 2:30PM", CourseCode: "IT204",
	})
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, nil)

	_, err := svc.Decide(context.Background(), "req-1", dto.DecideChangeRequestRequest{
		Decision: dto.DecisionApprove,
	}, adminActor())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotTaken))
	assert.Nil(t, store.decided)
}

func TestChangeRequestServiceDecideRejectSkipsConflictCheck(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	store.requests["req-1"] = pendingRequest()
	// A conflicting slot must not block a rejection.
	allocs.slots = append(allocs.slots, models.AllocationSlot{
		ID: 8, ScheduleID: "sched-1", Room: "Room 101", Building: "Main",
		Section: "BSIT 2B", ScheduleDay: "TH", ScheduleTime: "1:00PM - 2:30PM",
	})
	metrics := &decisionMetricsStub{}
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, metrics)

	request, err := svc.Decide(context.Background(), "req-1", dto.DecideChangeRequestRequest{
		Decision: dto.DecisionReject,
	}, adminActor())
	require.NoError(t, err)
	assert.Equal(t, models.ChangeRequestStatusRejected, request.Status)
	assert.Equal(t, []string{"rejected"}, metrics.decisions)
}

func TestChangeRequestServiceDecideRequiresPendingState(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	reviewed := pendingRequest()
	reviewed.Status = models.ChangeRequestStatusApproved
	store.requests["req-1"] = reviewed
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, nil)

	_, err := svc.Decide(context.Background(), "req-1", dto.DecideChangeRequestRequest{
		Decision: dto.DecisionReject,
	}, adminActor())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestChangeRequestServiceDecideSurfacesRacedReview(t *testing.T) {
	store, allocs, schedules := changeRequestFixture()
	store.requests["req-1"] = pendingRequest()
	store.decideErr = sql.ErrNoRows
	svc := newChangeRequestService(store, allocs, schedules, nil, nil, nil)

	_, err := svc.Decide(context.Background(), "req-1", dto.DecideChangeRequestRequest{
		Decision: dto.DecisionApprove,
	}, adminActor())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}
