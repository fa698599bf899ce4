package models

import (
	"fmt"
)

// Space describes the domain or range of an operator: the array shape and the
// physical extent covered along each axis.
type Space struct {
	Shape  [3]int
	MinPt  [3]float64
	MaxPt  [3]float64
	Labels [3]string
}

// Size is the number of elements of the space.
func (s Space) Size() int { return s.Shape[0] * s.Shape[1] * s.Shape[2] }

// CellSides returns the extent of one cell along each axis.
func (s Space) CellSides() [3]float64 {
	var out [3]float64
	for i := range out {
		if s.Shape[i] > 0 {
			out[i] = (s.MaxPt[i] - s.MinPt[i]) / float64(s.Shape[i])
		}
	}
	return out
}

// Zero returns a new all-zero element.
func (s Space) Zero() *Array { return NewArray(s.Shape) }

// One returns a new element filled with ones.
func (s Space) One() *Array {
	a := NewArray(s.Shape)
	a.Fill(1)
	return a
}

// Element copies data into a new element of the space.
func (s Space) Element(data []float32) (*Array, error) {
	if len(data) != s.Size() {
		return nil, fmt.Errorf("element of %d values does not fit space of shape %v", len(data), s.Shape)
	}
	a := NewArray(s.Shape)
	copy(a.Data, data)
	return a, nil
}

// Contains reports whether a has the shape of the space.
func (s Space) Contains(a *Array) bool {
	return a != nil && a.Shape == s.Shape && len(a.Data) == s.Size()
}
