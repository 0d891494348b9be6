package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/room-allocation-api/internal/models"
)

func newChangeRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestChangeRequestRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db, NewAllocationRepository(db))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO change_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.ChangeRequest{
		ScheduleID:   "sched-1",
		AllocationID: 7,
		RequesterID:  "user-1",
		OriginalDay:  "MWF",
		OriginalTime: "7:00AM - 8:30AM",
		NewDay:       "TTH",
		NewTime:      "1:00PM - 2:30PM",
		Reason:       "conflict with department meeting",
	}
	require.NoError(t, repo.Create(context.Background(), request))
	require.NotEmpty(t, request.ID)
	require.Equal(t, models.ChangeRequestStatusPending, request.Status)
	require.False(t, request.RequestedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db, NewAllocationRepository(db))
	rows := sqlmock.NewRows([]string{"id", "schedule_id", "allocation_id", "requester_id", "original_day", "original_time", "new_day", "new_time", "reason", "status", "admin_notes", "reviewed_by", "requested_at", "reviewed_at", "requester_name", "course_code", "section", "room"}).
		AddRow("req-1", "sched-1", int64(7), "user-1", "MWF", "7:00AM - 8:30AM", "TTH", "1:00PM - 2:30PM", "overlap", "PENDING", nil, nil, time.Now(), nil, "Ana Reyes", "CS101", "BSCS 1A", "Room 101")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT cr.id, cr.schedule_id")).
		WithArgs("PENDING", "user-1").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.ChangeRequestFilter{
		Status:      []models.ChangeRequestStatus{models.ChangeRequestStatusPending},
		RequesterID: "user-1",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Ana Reyes", list[0].RequesterName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryDecideApproveCommitsBothWrites(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db, NewAllocationRepository(db))
	now := time.Now()
	notes := "approved, room is free"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests")).
		WithArgs("req-1", models.ChangeRequestStatusApproved, "admin-1", now, &notes, models.ChangeRequestStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE allocation_slots")).
		WithArgs(int64(7), "TTH", "1:00PM - 2:30PM", now, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Decide(context.Background(), DecideParams{
		ID:                "req-1",
		Status:            models.ChangeRequestStatusApproved,
		ReviewedBy:        "admin-1",
		ReviewedAt:        now,
		AdminNotes:        &notes,
		AllocationID:      7,
		AllocationVersion: 3,
		NewDay:            "TTH",
		NewTime:           "1:00PM - 2:30PM",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryDecideRejectSkipsAllocationWrite(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db, NewAllocationRepository(db))
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Decide(context.Background(), DecideParams{
		ID:         "req-1",
		Status:     models.ChangeRequestStatusRejected,
		ReviewedBy: "admin-1",
		ReviewedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRequestRepositoryDecideRacedReviewRollsBack(t *testing.T) {
	db, mock, cleanup := newChangeRequestRepoMock(t)
	defer cleanup()

	repo := NewChangeRequestRepository(db, NewAllocationRepository(db))

	// Request already reviewed: the PENDING guard matches zero rows.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Decide(context.Background(), DecideParams{
		ID:         "req-1",
		Status:     models.ChangeRequestStatusApproved,
		ReviewedBy: "admin-1",
		ReviewedAt: time.Now(),
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())

	// Allocation version moved underneath: the whole decision rolls back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE allocation_slots")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = repo.Decide(context.Background(), DecideParams{
		ID:                "req-1",
		Status:            models.ChangeRequestStatusApproved,
		ReviewedBy:        "admin-1",
		ReviewedAt:        time.Now(),
		AllocationID:      7,
		AllocationVersion: 2,
		NewDay:            "TTH",
		NewTime:           "1:00PM - 2:30PM",
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
