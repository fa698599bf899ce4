package sinogram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// span 1, max ring difference 3 on an 8-ring scanner
func mctCounts() []SegmentCount {
	return []SegmentCount{
		{-3, 5}, {-2, 6}, {-1, 7}, {0, 8}, {1, 7}, {2, 6}, {3, 5},
	}
}

func TestReorder(t *testing.T) {
	want := map[int]int{0: 0, 1: 1, -1: 2, 2: 3, -2: 4, 3: 5, -3: 6}
	for seg, r := range want {
		assert.Equal(t, r, Reorder(seg), "segment %d", seg)
	}
}

func TestPhysicalOrder(t *testing.T) {
	var got []int
	for _, c := range PhysicalOrder(mctCounts()) {
		got = append(got, c.Segment)
	}
	assert.Equal(t, []int{0, 1, -1, 2, -2, 3, -3}, got)
	assert.Empty(t, PhysicalOrder(nil))
}

func TestOffsetKnownValues(t *testing.T) {
	counts := mctCounts()
	tests := []struct {
		segment, axial, want int
	}{
		{0, 0, 0},
		{0, 7, 7},
		{1, 0, 8},
		{-1, 0, 15},
		{2, 0, 22},
		{-2, 0, 28},
		{3, 0, 34},
		{-3, 4, 43},
	}
	for _, tt := range tests {
		got, err := Offset(counts, tt.segment, tt.axial)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "(%d, %d)", tt.segment, tt.axial)
	}
}

func TestOffsetBijection(t *testing.T) {
	layouts := map[string][]SegmentCount{
		"span1":  mctCounts(),
		"single": {{0, 15}},
		"span3":  {{-2, 5}, {-1, 11}, {0, 15}, {1, 11}, {2, 5}},
	}
	for name, counts := range layouts {
		t.Run(name, func(t *testing.T) {
			total := Total(counts)
			seen := make([]bool, total)
			for _, c := range counts {
				for a := 0; a < c.NumAxial; a++ {
					off, err := Offset(counts, c.Segment, a)
					require.NoError(t, err)
					require.True(t, off >= 0 && off < total)
					require.False(t, seen[off], "collision at %d", off)
					seen[off] = true

					seg, ax, err := Locate(counts, off)
					require.NoError(t, err)
					assert.Equal(t, c.Segment, seg)
					assert.Equal(t, a, ax)
				}
			}
			for i, s := range seen {
				assert.True(t, s, "offset %d not covered", i)
			}
		})
	}
}

func TestOffsetBounds(t *testing.T) {
	counts := mctCounts()

	_, err := Offset(counts, -4, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Contains(t, err.Error(), "[-3 -2 -1 0 1 2 3]")

	_, err = Offset(counts, 4, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	for _, c := range counts {
		_, err := Offset(counts, c.Segment, c.NumAxial)
		var oor *IndexOutOfRangeError
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, c.NumAxial, oor.NumAxial)

		_, err = Offset(counts, c.Segment, -1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestLocateBounds(t *testing.T) {
	counts := mctCounts()
	_, _, err := Locate(counts, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = Locate(counts, Total(counts))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestIndex(t *testing.T) {
	ix, err := NewIndex(mctCounts())
	require.NoError(t, err)
	assert.Equal(t, 44, ix.Total())
	assert.Equal(t, 3, ix.MaxSegment())

	n, err := ix.NumAxial(-2)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = ix.NumAxial(9)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	off, err := ix.Offset(-1, 2)
	require.NoError(t, err)
	assert.Equal(t, 17, off)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate([]SegmentCount{{0, 1}, {1, 1}}))
	assert.Error(t, Validate([]SegmentCount{{1, 1}, {0, 1}, {-1, 1}}))
	assert.Error(t, Validate([]SegmentCount{{0, -1}}))
	assert.NoError(t, Validate(mctCounts()))

	_, err := NewIndex(nil)
	assert.Error(t, err)
}
