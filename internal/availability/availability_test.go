package availability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexOf_CoordinatesOf_RoundTrip(t *testing.T) {
	for day := 0; day < Days; day++ {
		for hour := FirstHour; hour <= LastHour; hour++ {
			idx, err := IndexOf(day, hour)
			require.NoError(t, err)

			d, h, err := CoordinatesOf(idx)
			require.NoError(t, err)
			assert.Equal(t, day, d)
			assert.Equal(t, hour, h)
		}
	}

	for idx := 0; idx < TotalSlots; idx++ {
		day, hour, err := CoordinatesOf(idx)
		require.NoError(t, err)
		back, err := IndexOf(day, hour)
		require.NoError(t, err)
		assert.Equal(t, idx, back)
	}
}

func TestIndexOf_Wednesday2PM(t *testing.T) {
	idx, err := IndexOf(2, 14)
	require.NoError(t, err)
	assert.Equal(t, 30, idx)

	day, hour, err := CoordinatesOf(30)
	require.NoError(t, err)
	assert.Equal(t, 2, day)
	assert.Equal(t, 14, hour)
}

func TestIndexOf_OutOfRange(t *testing.T) {
	cases := []struct {
		name      string
		day, hour int
		field     string
	}{
		{"hour too early", 0, 7, "hour"},
		{"hour too late", 0, 20, "hour"},
		{"negative day", -1, 8, "day"},
		{"sunday", 6, 8, "day"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := IndexOf(tc.day, tc.hour)
			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, tc.field, rangeErr.Field)
		})
	}
}

func TestCoordinatesOf_OutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 72, 1000} {
		_, _, err := CoordinatesOf(idx)
		var rangeErr *RangeError
		assert.True(t, errors.As(err, &rangeErr), "index %d", idx)
	}
}

func TestFromSlice(t *testing.T) {
	g, err := FromSlice(nil)
	require.NoError(t, err)
	assert.Equal(t, Grid{}, g)

	_, err = FromSlice(make([]int, 71))
	assert.ErrorIs(t, err, ErrInvalidGrid)

	bad := make([]int, TotalSlots)
	bad[5] = 2
	_, err = FromSlice(bad)
	assert.ErrorIs(t, err, ErrInvalidGrid)

	values := make([]int, TotalSlots)
	values[0], values[71] = 1, 1
	g, err = FromSlice(values)
	require.NoError(t, err)
	assert.Equal(t, values, g.Slice())
}

func TestSparseAdapters(t *testing.T) {
	g, dupes, err := FromAvailableIndices([]int{3, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, dupes)
	assert.Equal(t, []int{1, 3}, g.AvailableIndices())
	assert.Equal(t, Blocked, g[0])
	assert.Equal(t, Available, g[1])

	_, _, err = FromAvailableIndices([]int{72})
	var rangeErr *RangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestBulkSet(t *testing.T) {
	g, err := BulkSet(ModeAllAvailable)
	require.NoError(t, err)
	available, blocked := Counts(g)
	assert.Equal(t, 72, available)
	assert.Equal(t, 0, blocked)

	g, err = BulkSet(ModeAllBlocked)
	require.NoError(t, err)
	available, blocked = Counts(g)
	assert.Equal(t, 0, available)
	assert.Equal(t, 72, blocked)

	_, err = BulkSet("sometimes")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestToggleAndSet_DoNotMutateInput(t *testing.T) {
	var original Grid

	toggled, err := Toggle(original, 2, 14)
	require.NoError(t, err)
	assert.Equal(t, Available, original[30])
	assert.Equal(t, Blocked, toggled[30])

	back, err := Toggle(toggled, 2, 14)
	require.NoError(t, err)
	assert.Equal(t, original, back)

	set, err := Set(original, 0, 8, false)
	require.NoError(t, err)
	assert.Equal(t, Blocked, set[0])

	_, err = Toggle(original, 0, 20)
	assert.Error(t, err)
}
