// Package engine holds the numeric projection back end: the interface the
// operators call into, the acquisition geometry it consumes and a reference
// ray-tracing implementation.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"petproj/internal/models"
	"petproj/pkg/grid"
	"petproj/pkg/scanner"
	"petproj/pkg/sinogram"
)

// ErrBufferShape is returned when a buffer does not match the engine geometry.
var ErrBufferShape = errors.New("buffer shape does not match engine geometry")

// Engine computes forward and back projections between a volume buffer and a
// projection buffer. Only views with view%numSubsets == subset take part.
type Engine interface {
	// ForwardProject overwrites dst with the projection of src.
	ForwardProject(dst, src *models.Array, subset, numSubsets int) error

	// BackProject adds the back projection of src to dst, after zeroing dst
	// when clearFirst is set.
	BackProject(dst, src *models.Array, subset, numSubsets int, clearFirst bool) error
}

// Builder builds the shared projection resource for a geometry and grid.
type Builder func(geom Geometry, vol grid.Grid, opts Options) (Engine, error)

// Segment describes the ring differences merged into one segment.
type Segment struct {
	Segment     int
	MinRingDiff int
	MaxRingDiff int
	NumAxial    int
}

// Geometry is everything the engine needs to know about the sampled lines of
// response.
type Geometry struct {
	Scanner        scanner.Geometry
	Span           int
	Views          int
	TangentialBins int
	BinSize        float64
	ArcCorrected   bool
	Segments       []Segment
}

// Counts returns the per-segment axial counts in natural order.
func (g Geometry) Counts() []sinogram.SegmentCount {
	out := make([]sinogram.SegmentCount, len(g.Segments))
	for i, s := range g.Segments {
		out[i] = sinogram.SegmentCount{Segment: s.Segment, NumAxial: s.NumAxial}
	}
	return out
}

// NumSinograms is the total number of sinograms.
func (g Geometry) NumSinograms() int {
	return sinogram.Total(g.Counts())
}

// Shape is the projection buffer shape (sinograms, views, tangential bins).
func (g Geometry) Shape() [3]int {
	return [3]int{g.NumSinograms(), g.Views, g.TangentialBins}
}

// Options configures the ray-tracing engine. The symmetry flags mirror the
// usual matrix caching switches and are fixed by the projector layer.
type Options struct {
	Symmetry90DegreesMinPhi  bool
	Symmetry180DegreesMinPhi bool
	SymmetrySwapS            bool
	SymmetrySwapSegment      bool

	// NumTangentialLORs is the number of rays traced per bin
	NumTangentialLORs int

	// RestrictToCylindricalFOV drops voxels outside the cylinder inscribed in
	// the transaxial extent of the grid
	RestrictToCylindricalFOV bool

	// Workers bounds the parallel matrix build; 0 means GOMAXPROCS
	Workers int `hash:"ignore"`

	Logger *slog.Logger `hash:"ignore"`
}

// DefaultOptions returns the settings used by the projector layer.
func DefaultOptions() Options {
	return Options{
		Symmetry90DegreesMinPhi:  true,
		Symmetry180DegreesMinPhi: true,
		SymmetrySwapS:            true,
		SymmetrySwapSegment:      true,
		NumTangentialLORs:        1,
		RestrictToCylindricalFOV: true,
	}
}

func checkSubset(subset, numSubsets int) error {
	if numSubsets <= 0 {
		return fmt.Errorf("number of subsets must be positive, got %d", numSubsets)
	}
	if subset < 0 || subset >= numSubsets {
		return fmt.Errorf("subset %d outside [0, %d)", subset, numSubsets)
	}
	return nil
}
