package engine

import (
	"fmt"

	"petproj/pkg/scanner"
)

// CylindricalLayout returns the segments of a cylindrical scanner for the
// given span and maximum ring difference, in natural order [-S, S] with
// S = maxRingDiff/span.
//
// Segment k merges ring differences k*span-(span-1)/2 .. k*span+(span-1)/2,
// clipped to the maximum ring difference. A segment holding one ring
// difference d has NumRings-|d| axial positions. Merged segments are sampled
// at half the ring spacing, one position per ring sum, which gives
// 2*NumRings-1-2*m positions where m is the smallest |d| in the segment.
func CylindricalLayout(s scanner.Geometry, span, maxRingDiff int) ([]Segment, error) {
	if span <= 0 || span%2 == 0 {
		return nil, fmt.Errorf("span must be a positive odd number, got %d", span)
	}
	if maxRingDiff < 0 || maxRingDiff > s.NumRings-1 {
		return nil, fmt.Errorf("maximum ring difference %d outside [0, %d]", maxRingDiff, s.NumRings-1)
	}

	half := (span - 1) / 2
	maxSeg := maxRingDiff / span
	out := make([]Segment, 0, 2*maxSeg+1)
	for k := -maxSeg; k <= maxSeg; k++ {
		lo := k*span - half
		hi := k*span + half
		if lo < -maxRingDiff {
			lo = -maxRingDiff
		}
		if hi > maxRingDiff {
			hi = maxRingDiff
		}

		var n int
		if lo == hi {
			n = s.NumRings - abs(lo)
		} else {
			n = 2*s.NumRings - 1 - 2*minAbs(lo, hi)
		}
		if n <= 0 {
			return nil, fmt.Errorf("segment %d has no axial positions", k)
		}
		out = append(out, Segment{Segment: k, MinRingDiff: lo, MaxRingDiff: hi, NumAxial: n})
	}
	return out, nil
}

// minAbs returns the smallest |d| for d in [lo, hi].
func minAbs(lo, hi int) int {
	switch {
	case lo <= 0 && hi >= 0:
		return 0
	case lo > 0:
		return lo
	default:
		return -hi
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
