package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/room-allocation-api/internal/models"
)

const changeRequestColumns = `id, schedule_id, allocation_id, requester_id, original_day, original_time, new_day, new_time, reason, status, admin_notes, reviewed_by, requested_at, reviewed_at`

// ChangeRequestRepository persists the reschedule request workflow. It
// holds the allocation repository so an approval can rewrite the target
// allocation inside the same transaction.
type ChangeRequestRepository struct {
	db          *sqlx.DB
	allocations *AllocationRepository
}

// NewChangeRequestRepository constructs the repository.
func NewChangeRequestRepository(db *sqlx.DB, allocations *AllocationRepository) *ChangeRequestRepository {
	return &ChangeRequestRepository{db: db, allocations: allocations}
}

// Create inserts a new pending request.
func (r *ChangeRequestRepository) Create(ctx context.Context, request *models.ChangeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.ChangeRequestStatusPending
	}
	if request.RequestedAt.IsZero() {
		request.RequestedAt = time.Now().UTC()
	}
	const query = `INSERT INTO change_requests
	(id, schedule_id, allocation_id, requester_id, original_day, original_time, new_day, new_time, reason, status, admin_notes, reviewed_by, requested_at, reviewed_at)
	VALUES (:id, :schedule_id, :allocation_id, :requester_id, :original_day, :original_time, :new_day, :new_time, :reason, :status, :admin_notes, :reviewed_by, :requested_at, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create change request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *ChangeRequestRepository) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM change_requests WHERE id = $1`, changeRequestColumns)
	var request models.ChangeRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns enriched requests matching the filter, newest first. The
// requester name and allocation course/section are a read-time join for
// presentation only.
func (r *ChangeRequestRepository) List(ctx context.Context, filter models.ChangeRequestFilter) ([]models.ChangeRequestDetail, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT cr.id, cr.schedule_id, cr.allocation_id, cr.requester_id, cr.original_day, cr.original_time,
       cr.new_day, cr.new_time, cr.reason, cr.status, cr.admin_notes, cr.reviewed_by, cr.requested_at, cr.reviewed_at,
       u.full_name AS requester_name, a.course_code, a.section, a.room
	FROM change_requests cr
	JOIN users u ON u.id = cr.requester_id
	JOIN allocation_slots a ON a.id = cr.allocation_id`)

	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("cr.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ScheduleID != "" {
		args = append(args, filter.ScheduleID)
		conditions = append(conditions, fmt.Sprintf("cr.schedule_id = $%d", len(args)))
	}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		conditions = append(conditions, fmt.Sprintf("cr.requester_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY cr.requested_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.ChangeRequestDetail
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

// DecideParams groups the review outcome for a request.
type DecideParams struct {
	ID         string
	Status     models.ChangeRequestStatus
	ReviewedBy string
	ReviewedAt time.Time
	AdminNotes *string

	// Approval fields: the allocation rewrite committed atomically with
	// the status flip.
	AllocationID      int64
	AllocationVersion int
	NewDay            string
	NewTime           string
}

// Decide finalizes a pending request and, on approval, rewrites the
// target allocation's meeting in the same transaction. The status flip
// is guarded on PENDING and the allocation write on its version, so a
// raced review or a concurrently moved allocation rolls the whole
// decision back with sql.ErrNoRows.
func (r *ChangeRequestRepository) Decide(ctx context.Context, params DecideParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decide tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `UPDATE change_requests
	SET status = $2, reviewed_by = $3, reviewed_at = $4, admin_notes = COALESCE($5, admin_notes)
	WHERE id = $1 AND status = $6`
	result, err := tx.ExecContext(ctx, query, params.ID, params.Status, params.ReviewedBy, params.ReviewedAt, params.AdminNotes, models.ChangeRequestStatusPending)
	if err != nil {
		return fmt.Errorf("update change request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check change request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if params.Status == models.ChangeRequestStatusApproved {
		if err := r.allocations.UpdateMeetingTx(ctx, tx, params.AllocationID, params.NewDay, params.NewTime, params.AllocationVersion, params.ReviewedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decide tx: %w", err)
	}
	return nil
}
