package sinogram

// Index binds the offset functions to one segment layout. It holds only the
// counts; offsets are computed on every call.
type Index struct {
	counts []SegmentCount
}

// NewIndex validates counts and returns an Index over a private copy.
func NewIndex(counts []SegmentCount) (Index, error) {
	if err := Validate(counts); err != nil {
		return Index{}, err
	}
	c := make([]SegmentCount, len(counts))
	copy(c, counts)
	return Index{counts: c}, nil
}

// Counts returns a copy of the layout in natural order.
func (ix Index) Counts() []SegmentCount {
	c := make([]SegmentCount, len(ix.counts))
	copy(c, ix.counts)
	return c
}

// Offset returns the storage position of (segment, axial).
func (ix Index) Offset(segment, axial int) (int, error) {
	return Offset(ix.counts, segment, axial)
}

// Locate returns the segment and axial position stored at offset.
func (ix Index) Locate(offset int) (int, int, error) {
	return Locate(ix.counts, offset)
}

// Total is the number of sinograms in the layout.
func (ix Index) Total() int { return Total(ix.counts) }

// NumAxial returns the axial count of segment, or an IndexOutOfRangeError.
func (ix Index) NumAxial(segment int) (int, error) {
	n, ok := lookup(ix.counts, segment)
	if !ok {
		return 0, &IndexOutOfRangeError{Segment: segment, Segments: segments(ix.counts), kind: badSegment}
	}
	return n, nil
}

// MaxSegment is S for a layout over [-S, S].
func (ix Index) MaxSegment() int { return len(ix.counts) / 2 }

// Segments returns the segment numbers in natural order.
func (ix Index) Segments() []int { return segments(ix.counts) }
