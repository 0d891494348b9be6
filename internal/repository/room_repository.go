package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/room-allocation-api/internal/models"
)

// RoomRepository reads the room catalog, feature inventory, and course
// equipment requirements. These tables are admin-managed and treated as
// read-only by the engine.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListRooms returns the full room catalog.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, building, capacity FROM rooms ORDER BY building, name`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListFeatures returns every room's features joined to tag metadata,
// grouped by room id.
func (r *RoomRepository) ListFeatures(ctx context.Context) (map[int64][]models.RoomFeature, error) {
	const query = `SELECT rf.room_id, rf.feature_tag_id, rf.quantity, ft.tag_name, ft.tag_category
	FROM room_features rf
	JOIN feature_tags ft ON ft.id = rf.feature_tag_id
	ORDER BY rf.room_id, ft.tag_name`
	var features []models.RoomFeature
	if err := r.db.SelectContext(ctx, &features, query); err != nil {
		return nil, fmt.Errorf("list room features: %w", err)
	}
	grouped := make(map[int64][]models.RoomFeature, len(features))
	for _, f := range features {
		grouped[f.RoomID] = append(grouped[f.RoomID], f)
	}
	return grouped, nil
}

// ListRequirementsByCourse returns a course's equipment requirements
// joined to tag names for display.
func (r *RoomRepository) ListRequirementsByCourse(ctx context.Context, courseID int64) ([]models.CourseRequirement, error) {
	const query = `SELECT cr.course_id, cr.feature_tag_id, cr.is_mandatory, cr.min_quantity, ft.tag_name
	FROM course_requirements cr
	JOIN feature_tags ft ON ft.id = cr.feature_tag_id
	WHERE cr.course_id = $1
	ORDER BY cr.is_mandatory DESC, ft.tag_name`
	var requirements []models.CourseRequirement
	if err := r.db.SelectContext(ctx, &requirements, query, courseID); err != nil {
		return nil, fmt.Errorf("list course requirements: %w", err)
	}
	return requirements, nil
}
