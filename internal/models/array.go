package models

import (
	"fmt"
)

// Array is a dense 3-D float32 array stored in row-major order: the last axis
// varies fastest. Volumes use (z, y, x) and projection data uses
// (sinogram, view, tangential position).
type Array struct {
	// Shape holds the extent of each axis
	Shape [3]int

	// Data holds Shape[0]*Shape[1]*Shape[2] values
	Data []float32
}

// NewArray allocates a zero-filled array.
func NewArray(shape [3]int) *Array {
	return &Array{Shape: shape, Data: make([]float32, shape[0]*shape[1]*shape[2])}
}

// WrapArray checks that data matches shape and wraps it without copying.
func WrapArray(shape [3]int, data []float32) (*Array, error) {
	if n := shape[0] * shape[1] * shape[2]; n != len(data) {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d values)", len(data), shape, n)
	}
	return &Array{Shape: shape, Data: data}, nil
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Data) }

// Index returns the flat position of (i, j, k).
func (a *Array) Index(i, j, k int) int {
	return (i*a.Shape[1]+j)*a.Shape[2] + k
}

func (a *Array) At(i, j, k int) float32 { return a.Data[a.Index(i, j, k)] }

func (a *Array) Set(i, j, k int, v float32) { a.Data[a.Index(i, j, k)] = v }

// Fill sets every element to v.
func (a *Array) Fill(v float32) {
	for i := range a.Data {
		a.Data[i] = v
	}
}

// CopyFrom overwrites a with the values of src. The shapes must agree.
func (a *Array) CopyFrom(src *Array) error {
	if a.Shape != src.Shape {
		return fmt.Errorf("cannot copy array of shape %v into shape %v", src.Shape, a.Shape)
	}
	copy(a.Data, src.Data)
	return nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	out := &Array{Shape: a.Shape, Data: make([]float32, len(a.Data))}
	copy(out.Data, a.Data)
	return out
}

// Plane returns the 2-D slice at position i of the first axis, sharing storage.
func (a *Array) Plane(i int) []float32 {
	n := a.Shape[1] * a.Shape[2]
	return a.Data[i*n : (i+1)*n]
}

// Float64 returns a float64 copy of the data, for use with gonum.
func (a *Array) Float64() []float64 {
	out := make([]float64, len(a.Data))
	for i, v := range a.Data {
		out[i] = float64(v)
	}
	return out
}
