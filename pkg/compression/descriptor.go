package compression

import (
	"fmt"
	"math"

	"petproj/internal/models"
	"petproj/pkg/engine"
	"petproj/pkg/grid"
	"petproj/pkg/scanner"
	"petproj/pkg/sinogram"
)

// Descriptor is the frozen layout of a compressed sinogram set: which
// segments exist, how many axial positions each holds and the view and
// tangential sampling shared by every sinogram.
type Descriptor struct {
	scanner      scanner.Geometry
	span         int
	maxRingDiff  int
	views        int
	bins         int
	arcCorrected bool
	binSize      float64
	segments     []engine.Segment
	index        sinogram.Index
}

// Scanner returns the geometry the layout was derived for.
func (d *Descriptor) Scanner() scanner.Geometry { return d.scanner }

// Span returns the axial compression span.
func (d *Descriptor) Span() int { return d.span }

// MaxRingDifference returns the largest ring difference kept.
func (d *Descriptor) MaxRingDifference() int { return d.maxRingDiff }

// Views returns the number of views per sinogram.
func (d *Descriptor) Views() int { return d.views }

// TangentialBins returns the number of tangential bins per view.
func (d *Descriptor) TangentialBins() int { return d.bins }

// ArcCorrected reports whether bins are equally spaced in mm.
func (d *Descriptor) ArcCorrected() bool { return d.arcCorrected }

// BinSize returns the tangential bin width in mm.
func (d *Descriptor) BinSize() float64 { return d.binSize }

// Segments returns the segment numbers in natural order [-S, S].
func (d *Descriptor) Segments() []int { return d.index.Segments() }

// MinSegment is -MaxSegment.
func (d *Descriptor) MinSegment() int { return -d.index.MaxSegment() }

// MaxSegment returns the highest segment number.
func (d *Descriptor) MaxSegment() int { return d.index.MaxSegment() }

// Segment returns the ring differences and axial count of segment.
func (d *Descriptor) Segment(segment int) (engine.Segment, error) {
	if _, err := d.index.NumAxial(segment); err != nil {
		return engine.Segment{}, err
	}
	return d.segments[segment+d.MaxSegment()], nil
}

// NumAxial returns the number of sinograms in segment.
func (d *Descriptor) NumAxial(segment int) (int, error) {
	return d.index.NumAxial(segment)
}

// NumSinograms is the total number of sinograms over all segments.
func (d *Descriptor) NumSinograms() int { return d.index.Total() }

// Shape is the projection array shape (sinograms, views, tangential bins).
func (d *Descriptor) Shape() [3]int {
	return [3]int{d.NumSinograms(), d.views, d.bins}
}

// SegmentCounts returns the per-segment axial counts in natural order.
func (d *Descriptor) SegmentCounts() []sinogram.SegmentCount { return d.index.Counts() }

// Index returns the sinogram offset index of the layout.
func (d *Descriptor) Index() sinogram.Index { return d.index }

// Offset returns the position of sinogram (segment, axial) along the first
// axis of the projection array.
func (d *Descriptor) Offset(segment, axial int) (int, error) {
	return d.index.Offset(segment, axial)
}

// Locate is the inverse of Offset.
func (d *Descriptor) Locate(offset int) (segment, axial int, err error) {
	return d.index.Locate(offset)
}

// Geometry returns the description consumed by projection engines.
func (d *Descriptor) Geometry() engine.Geometry {
	return engine.Geometry{
		Scanner:        d.scanner,
		Span:           d.span,
		Views:          d.views,
		TangentialBins: d.bins,
		BinSize:        d.binSize,
		ArcCorrected:   d.arcCorrected,
		Segments:       append([]engine.Segment(nil), d.segments...),
	}
}

// Space returns the range space of a projector over this layout. The
// tangential axis spans [-radius, radius].
func (d *Descriptor) Space(radius float64) models.Space {
	return models.Space{
		Shape:  d.Shape(),
		MinPt:  [3]float64{0, 0, -radius},
		MaxPt:  [3]float64{float64(d.NumSinograms()), math.Pi, radius},
		Labels: [3]string{"(dz,z)", "phi", "s"},
	}
}

// GridOptions adjusts the grid returned by DefaultGrid.
type GridOptions struct {
	// Zoom scales the transaxial sampling; 0 means 1
	Zoom float64

	// Offset moves the grid corner in mm, (x, y, z) order
	Offset [3]float64

	// Sizes overrides the number of voxels along (x, y, z) when non-zero
	Sizes [3]int
}

// DefaultGrid returns the voxel grid matching the layout: transaxial voxels
// of DefaultBinSize/zoom covering the tangential bins, and axial voxels of
// half the ring spacing covering every plane.
func (d *Descriptor) DefaultGrid(opts GridOptions) (grid.Grid, error) {
	zoom := opts.Zoom
	if zoom == 0 {
		zoom = 1
	}
	if zoom < 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return grid.Grid{}, fmt.Errorf("zoom must be positive, got %g", opts.Zoom)
	}

	nxy := int(math.Ceil(float64(d.bins) * zoom))
	shape := [3]int{nxy, nxy, 2*d.scanner.NumRings - 1}
	for i, n := range opts.Sizes {
		if n < 0 {
			return grid.Grid{}, fmt.Errorf("grid size %v has a negative entry", opts.Sizes)
		}
		if n > 0 {
			shape[i] = n
		}
	}
	xy := d.scanner.DefaultBinSize / zoom
	g, err := grid.New(shape, [3]float64{xy, xy, d.scanner.RingSpacing / 2})
	if err != nil {
		return grid.Grid{}, err
	}
	for i := range g.Min {
		g.Min[i] += opts.Offset[i]
	}
	return g, nil
}
