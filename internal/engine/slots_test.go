package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGridBoundsAndTagging(t *testing.T) {
	allocations := fixtureAllocations()
	cand := Candidate{Room: "101", Building: "Main", TeacherName: "Reyes", Section: "BSCS1A_LEC", Day: time.Monday}

	grid, err := Grid(allocations, cand, 90, 0, GridParams{})
	require.NoError(t, err)

	// Half-hour starts from 07:00 through 20:00 inclusive.
	require.Len(t, grid, 27)
	require.Contains(t, grid, 420)
	require.Contains(t, grid, 1200)
	require.NotContains(t, grid, 1230)

	// 07:00 collides with the 07:00-08:30 meeting on all dimensions.
	status := grid[420]
	require.False(t, status.Available)
	require.True(t, status.RoomConflict)
	require.True(t, status.TeacherConflict)
	require.True(t, status.SectionConflict)

	// 08:30 starts exactly when the meeting ends: free.
	status = grid[510]
	require.True(t, status.Available)

	// 06:30 would overlap 07:00 but is outside the grid anyway; 18:00 is
	// wide open.
	require.True(t, grid[1080].Available)
}

func TestGridExcludesEditedAllocation(t *testing.T) {
	allocations := fixtureAllocations()
	cand := Candidate{Room: "101", Building: "Main", TeacherName: "Reyes", Section: "BSCS1A_LEC", Day: time.Monday}

	grid, err := Grid(allocations, cand, 90, 1, GridParams{})
	require.NoError(t, err)
	require.True(t, grid[420].Available, "the edited slot must not conflict with itself")
}

func TestGridRejectsNonPositiveDuration(t *testing.T) {
	_, err := Grid(nil, Candidate{Day: time.Monday}, 0, 0, GridParams{})
	require.Error(t, err)
}
