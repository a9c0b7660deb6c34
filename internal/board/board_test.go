package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoardIsEmpty(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.Len())
	_, ok := b.At(0, 0)
	assert.False(t, ok)
	assert.Empty(t, b.Cells())
}

func TestPlace(t *testing.T) {
	b := New()
	require.NoError(t, b.Place(-5, 9, X))

	m, ok := b.At(-5, 9)
	require.True(t, ok)
	assert.Equal(t, X, m)
	assert.True(t, b.Occupied(-5, 9))
	assert.False(t, b.Occupied(9, -5))
}

func TestPlaceOccupied(t *testing.T) {
	b := New()
	require.NoError(t, b.Place(1, 1, X))

	err := b.Place(1, 1, O)
	require.ErrorIs(t, err, ErrCellOccupied)

	m, _ := b.At(1, 1)
	assert.Equal(t, X, m, "occupied cell must keep its mark")
	assert.Equal(t, 1, b.Len())
}

func TestPlaceInvalidMark(t *testing.T) {
	b := New()
	assert.Error(t, b.Place(0, 0, None))
	assert.Equal(t, 0, b.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	b := New()
	require.NoError(t, b.Place(0, 0, X))

	c := b.Clone()
	require.NoError(t, c.Place(1, 0, O))

	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 2, c.Len())
	assert.False(t, b.Equal(c))
}

func TestCellsOrdered(t *testing.T) {
	b := New()
	require.NoError(t, b.Place(3, 1, X))
	require.NoError(t, b.Place(-1, 1, O))
	require.NoError(t, b.Place(10, -2, X))

	assert.Equal(t, []Cell{
		{X: 10, Y: -2, Mark: X},
		{X: -1, Y: 1, Mark: O},
		{X: 3, Y: 1, Mark: X},
	}, b.Cells())
}

func TestBoardJSON(t *testing.T) {
	b := New()
	require.NoError(t, b.Place(-2, 4, O))

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"-2:4":"O"}`, string(data))

	var got Board
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, b.Equal(&got))

	assert.Error(t, json.Unmarshal([]byte(`{"nope":"X"}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`{"1:1":"Z"}`), &got))
}

func TestMarkOpponent(t *testing.T) {
	assert.Equal(t, O, X.Opponent())
	assert.Equal(t, X, O.Opponent())
	assert.Equal(t, None, None.Opponent())
}
