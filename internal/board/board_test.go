package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsWrongGoalCount(t *testing.T) {
	_, err := New([]string{"only", "four", "goals", "here"})
	require.Error(t, err)
}

func TestNewDefaultDimensions(t *testing.T) {
	b := NewDefault()

	snapshot := b.Snapshot()
	require.Len(t, snapshot, Height)
	for _, row := range snapshot {
		require.Len(t, row, Width)
		for _, cell := range row {
			assert.NotEmpty(t, cell.Goal)
			assert.Empty(t, cell.Colors)
		}
	}
}

func TestMarkAddsColor(t *testing.T) {
	b := NewDefault()

	changed, err := b.Mark(0, 0, "red")
	require.NoError(t, err)
	assert.True(t, changed)

	cell, err := b.CellAt(0, 0)
	require.NoError(t, err)
	assert.True(t, cell.Has("red"))
}

func TestMarkIsIdempotent(t *testing.T) {
	b := NewDefault()

	_, err := b.Mark(2, 3, "red")
	require.NoError(t, err)

	changed, err := b.Mark(2, 3, "red")
	require.NoError(t, err)
	assert.False(t, changed)

	cell, err := b.CellAt(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []Color{"red"}, cell.Colors)
}

func TestMarkTwoColorsOrderIndependent(t *testing.T) {
	first := NewDefault()
	second := NewDefault()

	_, err := first.Mark(1, 1, "red")
	require.NoError(t, err)
	_, err = first.Mark(1, 1, "blue")
	require.NoError(t, err)

	_, err = second.Mark(1, 1, "blue")
	require.NoError(t, err)
	_, err = second.Mark(1, 1, "red")
	require.NoError(t, err)

	a, err := first.CellAt(1, 1)
	require.NoError(t, err)
	b, err := second.CellAt(1, 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, a.Colors, b.Colors)
	assert.Len(t, a.Colors, 2)
}

func TestUnmarkRemovesOnlyThatColor(t *testing.T) {
	b := NewDefault()

	_, err := b.Mark(4, 4, "red")
	require.NoError(t, err)
	_, err = b.Mark(4, 4, "blue")
	require.NoError(t, err)

	changed, err := b.Unmark(4, 4, "red")
	require.NoError(t, err)
	assert.True(t, changed)

	cell, err := b.CellAt(4, 4)
	require.NoError(t, err)
	assert.False(t, cell.Has("red"))
	assert.True(t, cell.Has("blue"))
}

func TestUnmarkAbsentColorIsNoop(t *testing.T) {
	b := NewDefault()

	_, err := b.Mark(0, 0, "red")
	require.NoError(t, err)

	changed, err := b.Unmark(0, 0, "blue")
	require.NoError(t, err)
	assert.False(t, changed)

	cell, err := b.CellAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Color{"red"}, cell.Colors)
}

func TestOutOfRangeCoordinates(t *testing.T) {
	b := NewDefault()

	cases := []struct{ row, col int }{
		{-1, 0},
		{0, -1},
		{Height, 0},
		{0, Width},
		{100, 100},
	}

	for _, tc := range cases {
		_, err := b.CellAt(tc.row, tc.col)
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = b.Mark(tc.row, tc.col, "red")
		assert.ErrorIs(t, err, ErrOutOfRange)

		_, err = b.Unmark(tc.row, tc.col, "red")
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func TestCellAtReturnsCopy(t *testing.T) {
	b := NewDefault()

	_, err := b.Mark(0, 0, "red")
	require.NoError(t, err)

	cell, err := b.CellAt(0, 0)
	require.NoError(t, err)
	cell.Colors[0] = "green"

	again, err := b.CellAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Color{"red"}, again.Colors)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	b := NewDefault()

	_, err := b.Mark(3, 2, "red")
	require.NoError(t, err)

	snapshot := b.Snapshot()
	snapshot[3][2].Colors[0] = "green"

	cell, err := b.CellAt(3, 2)
	require.NoError(t, err)
	assert.Equal(t, []Color{"red"}, cell.Colors)
}
