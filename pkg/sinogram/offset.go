// Package sinogram maps (segment, axial position) coordinates onto flat
// sinogram offsets.
//
// Segments are stored by distance from the direct segment: 0, 1, -1, 2, -2, ...
// Within a segment the axial positions are contiguous. Every offset used to
// address a single sinogram in a projection buffer is computed here.
package sinogram

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is matched by every IndexOutOfRangeError.
var ErrIndexOutOfRange = errors.New("sinogram index out of range")

// IndexOutOfRangeError reports a segment or axial position outside the layout.
type IndexOutOfRangeError struct {
	Segment int
	Axial   int

	// Segments is set when the segment itself is unknown
	Segments []int

	// NumAxial is the axial bound of Segment when the axial position is invalid
	NumAxial int

	// Offset is set (with Total) when an inverse lookup fails
	Offset int
	Total  int

	kind int
}

const (
	badSegment = iota
	badAxial
	badOffset
)

func (e *IndexOutOfRangeError) Error() string {
	switch e.kind {
	case badSegment:
		return fmt.Sprintf("segment %d not in %v", e.Segment, e.Segments)
	case badAxial:
		return fmt.Sprintf("segment %d: axial position violation: 0 <= %d < %d", e.Segment, e.Axial, e.NumAxial)
	default:
		return fmt.Sprintf("sinogram offset %d outside [0, %d)", e.Offset, e.Total)
	}
}

func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrIndexOutOfRange }

// SegmentCount is the number of axial positions stored for one segment.
type SegmentCount struct {
	Segment  int
	NumAxial int
}

// Reorder returns the physical position of a segment: 0 -> 0, s > 0 -> 2s-1,
// s < 0 -> -2s.
func Reorder(segment int) int {
	switch {
	case segment > 0:
		return 2*segment - 1
	case segment < 0:
		return -2 * segment
	}
	return 0
}

// PhysicalOrder returns the counts in storage order. counts must be in natural
// signed order [-S, ..., S].
func PhysicalOrder(counts []SegmentCount) []SegmentCount {
	mid := len(counts) / 2
	out := make([]SegmentCount, 0, len(counts))
	if len(counts) == 0 {
		return out
	}
	out = append(out, counts[mid])
	for k := 1; mid+k < len(counts) && mid-k >= 0; k++ {
		out = append(out, counts[mid+k], counts[mid-k])
	}
	return out
}

// Total is the number of sinograms over all segments.
func Total(counts []SegmentCount) int {
	n := 0
	for _, c := range counts {
		n += c.NumAxial
	}
	return n
}

// Validate checks that counts form a symmetric natural-order layout.
func Validate(counts []SegmentCount) error {
	if len(counts)%2 != 1 {
		return fmt.Errorf("segment layout must have an odd number of segments, got %d", len(counts))
	}
	s := len(counts) / 2
	for i, c := range counts {
		if c.Segment != i-s {
			return fmt.Errorf("segment layout not in natural order: position %d holds segment %d, want %d", i, c.Segment, i-s)
		}
		if c.NumAxial < 0 {
			return fmt.Errorf("segment %d has negative axial count %d", c.Segment, c.NumAxial)
		}
	}
	return nil
}

// SegmentBase returns the offset of the first sinogram stored at physical
// position r.
func SegmentBase(counts []SegmentCount, r int) int {
	if r == 0 {
		return 0
	}
	base := 0
	for i, c := range PhysicalOrder(counts) {
		if i == r {
			break
		}
		base += c.NumAxial
	}
	return base
}

// Offset returns the flat sinogram offset of (segment, axial). counts must be
// in natural signed order.
func Offset(counts []SegmentCount, segment, axial int) (int, error) {
	numAxial, ok := lookup(counts, segment)
	if !ok {
		return 0, &IndexOutOfRangeError{Segment: segment, Axial: axial, Segments: segments(counts), kind: badSegment}
	}
	if axial < 0 || axial >= numAxial {
		return 0, &IndexOutOfRangeError{Segment: segment, Axial: axial, NumAxial: numAxial, kind: badAxial}
	}
	return SegmentBase(counts, Reorder(segment)) + axial, nil
}

// Locate is the inverse of Offset.
func Locate(counts []SegmentCount, offset int) (segment, axial int, err error) {
	total := Total(counts)
	if offset < 0 || offset >= total {
		return 0, 0, &IndexOutOfRangeError{Offset: offset, Total: total, kind: badOffset}
	}
	base := 0
	for _, c := range PhysicalOrder(counts) {
		if offset < base+c.NumAxial {
			return c.Segment, offset - base, nil
		}
		base += c.NumAxial
	}
	return 0, 0, &IndexOutOfRangeError{Offset: offset, Total: total, kind: badOffset}
}

func lookup(counts []SegmentCount, segment int) (int, bool) {
	for _, c := range counts {
		if c.Segment == segment {
			return c.NumAxial, true
		}
	}
	return 0, false
}

func segments(counts []SegmentCount) []int {
	out := make([]int, len(counts))
	for i, c := range counts {
		out[i] = c.Segment
	}
	return out
}
