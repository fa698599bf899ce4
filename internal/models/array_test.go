package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayIndexing(t *testing.T) {
	a := NewArray([3]int{2, 3, 4})
	assert.Equal(t, 24, a.Len())
	assert.Equal(t, 0, a.Index(0, 0, 0))
	assert.Equal(t, 4, a.Index(0, 1, 0))
	assert.Equal(t, 12, a.Index(1, 0, 0))

	a.Set(1, 2, 3, 7)
	assert.Equal(t, float32(7), a.Data[23])
	assert.Equal(t, float32(7), a.At(1, 2, 3))
	assert.Equal(t, float32(7), a.Plane(1)[11])
}

func TestArrayCopy(t *testing.T) {
	a := NewArray([3]int{1, 2, 2})
	a.Fill(3)
	b := a.Clone()
	b.Data[0] = 1
	assert.Equal(t, float32(3), a.Data[0])

	require.NoError(t, a.CopyFrom(b))
	assert.Equal(t, float32(1), a.Data[0])
	assert.Error(t, a.CopyFrom(NewArray([3]int{2, 2, 1})))
}

func TestWrapArray(t *testing.T) {
	_, err := WrapArray([3]int{1, 1, 2}, []float32{1})
	assert.Error(t, err)
	a, err := WrapArray([3]int{1, 1, 2}, []float32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, a.Float64())
}

func TestSpace(t *testing.T) {
	s := Space{Shape: [3]int{2, 2, 4}, MinPt: [3]float64{0, 0, -1}, MaxPt: [3]float64{2, 4, 1}}
	assert.Equal(t, 16, s.Size())
	assert.Equal(t, [3]float64{1, 2, 0.5}, s.CellSides())
	assert.True(t, s.Contains(s.Zero()))
	assert.False(t, s.Contains(NewArray([3]int{4, 2, 2})))

	one := s.One()
	for _, v := range one.Data {
		assert.Equal(t, float32(1), v)
	}

	_, err := s.Element(make([]float32, 3))
	assert.Error(t, err)
}
