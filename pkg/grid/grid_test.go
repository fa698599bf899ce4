package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHonoursAlignment(t *testing.T) {
	g, err := New([3]int{64, 64, 15}, [3]float64{2.05941, 2.05941, 3.125})
	require.NoError(t, err)

	assert.Equal(t, [3]int{15, 64, 64}, g.Shape())
	assert.InDelta(t, -64*2.05941/2, g.Min[0], 1e-9)
	assert.InDelta(t, 64*2.05941/2, g.Max()[1], 1e-9)
	assert.Equal(t, 0.0, g.Min[2])
	assert.InDelta(t, 15*3.125, g.Max()[2], 1e-9)

	c := g.Center()
	assert.InDelta(t, 0, c[0], 1e-9)
	assert.InDelta(t, 0, c[1], 1e-9)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New([3]int{0, 4, 4}, [3]float64{1, 1, 1})
	assert.Error(t, err)
	_, err = New([3]int{4, 4, 4}, [3]float64{1, -1, 1})
	assert.Error(t, err)
	_, err = FromExtents([3]float64{}, [3]float64{1, 1, 1}, [3]int{1, 0, 1})
	assert.Error(t, err)
}

func TestFromExtents(t *testing.T) {
	g, err := FromExtents([3]float64{-10, -10, 0}, [3]float64{10, 10, 5}, [3]int{20, 10, 5})
	require.NoError(t, err)
	assert.Equal(t, [3]float64{1, 2, 1}, g.Spacing)

	s := g.Space()
	assert.Equal(t, [3]int{5, 10, 20}, s.Shape)
	assert.Equal(t, [3]float64{0, -10, -10}, s.MinPt)
	assert.Equal(t, [3]float64{5, 10, 10}, s.MaxPt)
}

func TestIndexAndVoxelCenter(t *testing.T) {
	g, err := New([3]int{4, 3, 2}, [3]float64{1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, g.Index(0, 0, 0))
	assert.Equal(t, 1, g.Index(1, 0, 0))
	assert.Equal(t, 4, g.Index(0, 1, 0))
	assert.Equal(t, 12, g.Index(0, 0, 1))
	assert.Equal(t, [3]float64{-1.5, -1, 3}, g.VoxelCenter(0, 0, 1))
}

func TestVoxelsRoundTrip(t *testing.T) {
	shapes := [][3]int{{64, 64, 15}, {151, 151, 100}, {5, 7, 3}}
	for _, shape := range shapes {
		g, err := New(shape, [3]float64{2.5, 2.5, 1})
		require.NoError(t, err)

		v := g.ToVoxels()
		assert.Equal(t, 0, v.MinIndices[0])
		assert.Equal(t, shape[2]-1, v.MaxIndices[0])
		assert.Equal(t, shape[0], v.MaxIndices[2]-v.MinIndices[2]+1)

		back, err := FromVoxels(v)
		require.NoError(t, err)
		assert.True(t, g.Equal(back, 1e-12), "%v != %v", g, back)
	}
}

func TestFromVoxelsEmpty(t *testing.T) {
	_, err := FromVoxels(Voxels{MinIndices: [3]int{0, 0, 0}, MaxIndices: [3]int{-1, 1, 1}, VoxelSize: [3]float64{1, 1, 1}})
	assert.Error(t, err)
}
