package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/room-allocation-api/internal/models"
)

const allocationColumns = `id, schedule_id, room, building, section, teacher_name, schedule_day, schedule_time, course_code, course_id, version, created_at, updated_at`

// AllocationRepository persists committed class placements.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs the repository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// FindByID fetches one allocation.
func (r *AllocationRepository) FindByID(ctx context.Context, id int64) (*models.AllocationSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM allocation_slots WHERE id = $1`, allocationColumns)
	var slot models.AllocationSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find allocation by id: %w", err)
	}
	return &slot, nil
}

// List returns allocations matching the filter, ordered by room then day.
func (r *AllocationRepository) List(ctx context.Context, filter models.AllocationFilter) ([]models.AllocationSlot, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM allocation_slots`, allocationColumns))

	args := make([]interface{}, 0, 5)
	conditions := make([]string, 0, 5)
	if filter.ScheduleID != "" {
		args = append(args, filter.ScheduleID)
		conditions = append(conditions, fmt.Sprintf("schedule_id = $%d", len(args)))
	}
	if filter.Room != "" {
		args = append(args, filter.Room)
		conditions = append(conditions, fmt.Sprintf("LOWER(room) = LOWER($%d)", len(args)))
	}
	if filter.Building != "" {
		args = append(args, filter.Building)
		conditions = append(conditions, fmt.Sprintf("LOWER(building) = LOWER($%d)", len(args)))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		conditions = append(conditions, fmt.Sprintf("LOWER(section) = LOWER($%d)", len(args)))
	}
	if filter.TeacherName != "" {
		args = append(args, filter.TeacherName)
		conditions = append(conditions, fmt.Sprintf("LOWER(teacher_name) = LOWER($%d)", len(args)))
	}
	if filter.Day != "" {
		args = append(args, filter.Day)
		conditions = append(conditions, fmt.Sprintf("schedule_day = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY building, room, schedule_day, schedule_time")

	var slots []models.AllocationSlot
	if err := r.db.SelectContext(ctx, &slots, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return slots, nil
}

// ListBySchedule returns the full allocation set for one schedule.
func (r *AllocationRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.AllocationSlot, error) {
	return r.List(ctx, models.AllocationFilter{ScheduleID: scheduleID})
}

// UpdateMeetingTx rewrites an allocation's day/time inside a caller-owned
// transaction. The version column is an optimistic token: zero affected
// rows means the allocation moved underneath the caller.
func (r *AllocationRepository) UpdateMeetingTx(ctx context.Context, tx *sqlx.Tx, id int64, day, timeRange string, version int, updatedAt time.Time) error {
	const query = `UPDATE allocation_slots
	SET schedule_day = $2, schedule_time = $3, version = version + 1, updated_at = $4
	WHERE id = $1 AND version = $5`
	result, err := tx.ExecContext(ctx, query, id, day, timeRange, updatedAt, version)
	if err != nil {
		return fmt.Errorf("update allocation meeting: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check allocation update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
