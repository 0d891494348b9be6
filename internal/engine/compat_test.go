package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campus-ops/room-allocation-api/internal/models"
)

func requirement(tagID int64, mandatory bool, minQty int, name string) models.CourseRequirement {
	return models.CourseRequirement{CourseID: 10, FeatureTagID: tagID, IsMandatory: mandatory, MinQuantity: minQty, TagName: name}
}

func feature(tagID int64, qty int) models.RoomFeature {
	return models.RoomFeature{RoomID: 1, FeatureTagID: tagID, Quantity: qty}
}

func TestScoreRoomPerfectMatch(t *testing.T) {
	requirements := []models.CourseRequirement{
		requirement(1, true, 1, "projector"),
		requirement(2, true, 30, "computer"),
		requirement(3, true, 1, "whiteboard"),
		requirement(4, false, 1, "speakers"),
		requirement(5, false, 1, "aircon"),
	}
	features := []models.RoomFeature{
		feature(1, 1), feature(2, 35), feature(3, 2), feature(4, 1), feature(5, 1),
	}

	result := ScoreRoom(features, requirements)
	require.Equal(t, float64(100), result.Score)
	require.Equal(t, CompatibilityPerfect, result.Level)
	require.Len(t, result.Matched, 5)
	require.Empty(t, result.MissingMandatory)
	require.Empty(t, result.MissingOptional)
}

func TestScoreRoomMissingMandatoryIsIncompatible(t *testing.T) {
	requirements := []models.CourseRequirement{
		requirement(1, true, 1, "projector"),
		requirement(2, false, 1, "speakers"),
		requirement(3, false, 1, "aircon"),
	}
	// High numeric score, but the mandatory projector is absent.
	features := []models.RoomFeature{feature(2, 1), feature(3, 1)}

	result := ScoreRoom(features, requirements)
	require.InDelta(t, 66.66, result.Score, 0.1)
	require.Equal(t, CompatibilityIncompatible, result.Level)
	require.Len(t, result.MissingMandatory, 1)
	require.Equal(t, "projector", result.MissingMandatory[0].TagName)
}

func TestScoreRoomQuantityThreshold(t *testing.T) {
	requirements := []models.CourseRequirement{requirement(2, true, 30, "computer")}

	result := ScoreRoom([]models.RoomFeature{feature(2, 29)}, requirements)
	require.Equal(t, CompatibilityIncompatible, result.Level)

	result = ScoreRoom([]models.RoomFeature{feature(2, 30)}, requirements)
	require.Equal(t, CompatibilityPerfect, result.Level)
}

func TestScoreRoomClassificationThresholds(t *testing.T) {
	requirements := []models.CourseRequirement{
		requirement(1, false, 1, "a"),
		requirement(2, false, 1, "b"),
		requirement(3, false, 1, "c"),
		requirement(4, false, 1, "d"),
	}

	result := ScoreRoom([]models.RoomFeature{feature(1, 1), feature(2, 1)}, requirements)
	require.Equal(t, float64(50), result.Score)
	require.Equal(t, CompatibilityPartial, result.Level)

	result = ScoreRoom([]models.RoomFeature{feature(1, 1)}, requirements)
	require.Equal(t, float64(25), result.Score)
	require.Equal(t, CompatibilityLow, result.Level)
}

func TestScoreRoomNoRequirementsSentinel(t *testing.T) {
	result := ScoreRoom([]models.RoomFeature{feature(1, 1)}, nil)
	require.Equal(t, float64(ScoreNotApplicable), result.Score)
	require.Equal(t, CompatibilityNotRated, result.Level)
}
