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

func newAllocationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func allocationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "schedule_id", "room", "building", "section", "teacher_name", "schedule_day", "schedule_time", "course_code", "course_id", "version", "created_at", "updated_at"})
}

func TestAllocationRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newAllocationRepoMock(t)
	defer cleanup()

	repo := NewAllocationRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, schedule_id, room")).
		WithArgs(int64(7)).
		WillReturnRows(allocationRows().
			AddRow(int64(7), "sched-1", "Room 101", "Main", "BSCS 1A", "Reyes", "MWF", "7:00AM - 8:30AM", "CS101", int64(11), 3, now, now))

	slot, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Room 101", slot.Room)
	require.Equal(t, 3, slot.Version)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, schedule_id, room")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAllocationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAllocationRepoMock(t)
	defer cleanup()

	repo := NewAllocationRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, schedule_id, room")).
		WithArgs("sched-1", "room 101", "Reyes").
		WillReturnRows(allocationRows().
			AddRow(int64(1), "sched-1", "Room 101", "Main", "BSCS 1A", "Reyes", "MWF", "7:00AM - 8:30AM", "CS101", int64(11), 1, now, now))

	slots, err := repo.List(context.Background(), models.AllocationFilter{
		ScheduleID:  "sched-1",
		Room:        "room 101",
		TeacherName: "Reyes",
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, int64(1), slots[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryUpdateMeetingTxVersionGuard(t *testing.T) {
	db, mock, cleanup := newAllocationRepoMock(t)
	defer cleanup()

	repo := NewAllocationRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE allocation_slots")).
		WithArgs(int64(7), "TTH", "1:00PM - 2:30PM", now, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateMeetingTx(context.Background(), tx, 7, "TTH", "1:00PM - 2:30PM", 3, now))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	// Stale version: zero rows must surface as ErrNoRows.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE allocation_slots")).
		WithArgs(int64(7), "TTH", "1:00PM - 2:30PM", now, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err = db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.UpdateMeetingTx(context.Background(), tx, 7, "TTH", "1:00PM - 2:30PM", 2, now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
