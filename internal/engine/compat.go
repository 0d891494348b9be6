package engine

import "github.com/campus-ops/room-allocation-api/internal/models"

// ScoreNotApplicable marks a room scored against a course with no
// requirements: the percentage is meaningless, which is distinct from a
// legitimate zero.
const ScoreNotApplicable = -1

// CompatibilityLevel classifies a score for display and ranking.
type CompatibilityLevel string

const (
	CompatibilityIncompatible CompatibilityLevel = "INCOMPATIBLE"
	CompatibilityPerfect      CompatibilityLevel = "PERFECT_MATCH"
	CompatibilityPartial      CompatibilityLevel = "PARTIAL_MATCH"
	CompatibilityLow          CompatibilityLevel = "LOW_MATCH"
	CompatibilityNotRated     CompatibilityLevel = "NOT_RATED"
)

// CompatibilityResult rates one room against one course's requirements.
type CompatibilityResult struct {
	Score            float64                    `json:"score"`
	Level            CompatibilityLevel         `json:"level"`
	Matched          []models.CourseRequirement `json:"matched,omitempty"`
	MissingMandatory []models.CourseRequirement `json:"missing_mandatory,omitempty"`
	MissingOptional  []models.CourseRequirement `json:"missing_optional,omitempty"`
}

// ScoreRoom rates a room's feature inventory against a course's
// requirements. A requirement is satisfied when some feature carries the
// same tag with at least the required quantity. Any missing mandatory
// requirement makes the room incompatible regardless of the numeric
// score.
func ScoreRoom(features []models.RoomFeature, requirements []models.CourseRequirement) CompatibilityResult {
	if len(requirements) == 0 {
		return CompatibilityResult{Score: ScoreNotApplicable, Level: CompatibilityNotRated}
	}

	quantities := make(map[int64]int, len(features))
	for _, f := range features {
		quantities[f.FeatureTagID] += f.Quantity
	}

	result := CompatibilityResult{}
	for _, req := range requirements {
		if quantities[req.FeatureTagID] >= req.MinQuantity {
			result.Matched = append(result.Matched, req)
			continue
		}
		if req.IsMandatory {
			result.MissingMandatory = append(result.MissingMandatory, req)
		} else {
			result.MissingOptional = append(result.MissingOptional, req)
		}
	}

	result.Score = float64(len(result.Matched)) / float64(len(requirements)) * 100

	switch {
	case len(result.MissingMandatory) > 0:
		result.Level = CompatibilityIncompatible
	case result.Score >= 100:
		result.Level = CompatibilityPerfect
	case result.Score >= 50:
		result.Level = CompatibilityPartial
	default:
		result.Level = CompatibilityLow
	}
	return result
}
