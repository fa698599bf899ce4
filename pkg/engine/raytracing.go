package engine

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"petproj/internal/models"
	"petproj/pkg/grid"
	"petproj/pkg/sinogram"
)

// Matrix is a ray-tracing system matrix stored row-compressed. Row r is the
// bin (sinogram, view, tangential) at flat position r of the projection
// buffer; columns are flat voxel indices. A built Matrix is read-only and may
// be shared by any number of operators.
type Matrix struct {
	geom Geometry
	vol  grid.Grid
	opts Options

	rowPtr []int
	cols   []int32
	vals   []float32
}

var _ Engine = (*Matrix)(nil)

// RayTracingBuilder adapts RayTracing to the Builder signature.
func RayTracingBuilder(geom Geometry, vol grid.Grid, opts Options) (Engine, error) {
	return RayTracing(geom, vol, opts)
}

// RayTracing traces every line of response of geom through vol and returns
// the resulting system matrix.
func RayTracing(geom Geometry, vol grid.Grid, opts Options) (*Matrix, error) {
	if err := vol.Validate(); err != nil {
		return nil, fmt.Errorf("invalid volume grid: %w", err)
	}
	if geom.Views <= 0 || geom.TangentialBins <= 0 {
		return nil, fmt.Errorf("views and tangential bins must be positive, got %d and %d", geom.Views, geom.TangentialBins)
	}
	if geom.BinSize <= 0 {
		return nil, fmt.Errorf("bin size must be positive, got %g", geom.BinSize)
	}
	counts := geom.Counts()
	if err := sinogram.Validate(counts); err != nil {
		return nil, err
	}
	if opts.NumTangentialLORs <= 0 {
		opts.NumTangentialLORs = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	tr := newTracer(geom, vol, opts)
	numSinos := sinogram.Total(counts)
	perSino := geom.Views * geom.TangentialBins
	parts := make([]rowBlock, numSinos)

	var eg errgroup.Group
	eg.SetLimit(workers)
	for offset := 0; offset < numSinos; offset++ {
		eg.Go(func() error {
			seg, axial, err := sinogram.Locate(counts, offset)
			if err != nil {
				return err
			}
			parts[offset] = tr.sinogramRows(seg, axial)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	m := &Matrix{geom: geom, vol: vol, opts: opts}
	m.rowPtr = make([]int, 0, numSinos*perSino+1)
	m.rowPtr = append(m.rowPtr, 0)
	nnz := 0
	for _, p := range parts {
		nnz += len(p.cols)
	}
	m.cols = make([]int32, 0, nnz)
	m.vals = make([]float32, 0, nnz)
	for _, p := range parts {
		base := len(m.cols)
		for _, end := range p.rowEnd {
			m.rowPtr = append(m.rowPtr, base+end)
		}
		m.cols = append(m.cols, p.cols...)
		m.vals = append(m.vals, p.vals...)
	}

	logger.Debug("built ray-tracing matrix",
		"rows", humanize.Comma(int64(m.NumRows())),
		"nonzeros", humanize.Comma(int64(nnz)),
		"size", humanize.Bytes(uint64(nnz*8+len(m.rowPtr)*8)),
		"elapsed", time.Since(start))
	return m, nil
}

// NumRows is the number of bins.
func (m *Matrix) NumRows() int { return len(m.rowPtr) - 1 }

// NumNonZero is the number of stored weights.
func (m *Matrix) NumNonZero() int { return len(m.cols) }

// Row returns the voxel indices and weights of bin r, sharing storage.
func (m *Matrix) Row(r int) ([]int32, []float32) {
	return m.cols[m.rowPtr[r]:m.rowPtr[r+1]], m.vals[m.rowPtr[r]:m.rowPtr[r+1]]
}

func (m *Matrix) Geometry() Geometry { return m.geom }
func (m *Matrix) Grid() grid.Grid    { return m.vol }
func (m *Matrix) Options() Options   { return m.opts }

func (m *Matrix) checkBuffers(proj, vol *models.Array) error {
	if proj == nil || vol == nil {
		return fmt.Errorf("%w: nil buffer", ErrBufferShape)
	}
	if want := m.geom.Shape(); proj.Shape != want || len(proj.Data) != proj.Shape[0]*proj.Shape[1]*proj.Shape[2] {
		return fmt.Errorf("%w: projection buffer %v, want %v", ErrBufferShape, proj.Shape, want)
	}
	if want := m.vol.Shape(); vol.Shape != want || len(vol.Data) != m.vol.Size() {
		return fmt.Errorf("%w: volume buffer %v, want %v", ErrBufferShape, vol.Shape, want)
	}
	return nil
}

func (m *Matrix) inSubset(row, subset, numSubsets int) bool {
	view := (row / m.geom.TangentialBins) % m.geom.Views
	return view%numSubsets == subset
}

// ForwardProject overwrites dst; bins of views outside the subset are zero.
func (m *Matrix) ForwardProject(dst, src *models.Array, subset, numSubsets int) error {
	if err := checkSubset(subset, numSubsets); err != nil {
		return err
	}
	if err := m.checkBuffers(dst, src); err != nil {
		return err
	}
	for r := 0; r < m.NumRows(); r++ {
		if !m.inSubset(r, subset, numSubsets) {
			dst.Data[r] = 0
			continue
		}
		var sum float64
		for k := m.rowPtr[r]; k < m.rowPtr[r+1]; k++ {
			sum += float64(m.vals[k]) * float64(src.Data[m.cols[k]])
		}
		dst.Data[r] = float32(sum)
	}
	return nil
}

// BackProject accumulates the transpose of the matrix applied to src into dst.
func (m *Matrix) BackProject(dst, src *models.Array, subset, numSubsets int, clearFirst bool) error {
	if err := checkSubset(subset, numSubsets); err != nil {
		return err
	}
	if err := m.checkBuffers(src, dst); err != nil {
		return err
	}
	if clearFirst {
		dst.Fill(0)
	}
	for r := 0; r < m.NumRows(); r++ {
		v := src.Data[r]
		if v == 0 || !m.inSubset(r, subset, numSubsets) {
			continue
		}
		for k := m.rowPtr[r]; k < m.rowPtr[r+1]; k++ {
			dst.Data[m.cols[k]] += m.vals[k] * v
		}
	}
	return nil
}

type rowBlock struct {
	rowEnd []int
	cols   []int32
	vals   []float32
}

// tracer holds the per-build constants of the LOR geometry.
type tracer struct {
	geom     Geometry
	vol      grid.Grid
	opts     Options
	radius   float64
	zShift   float64
	fovMask  []bool
	segments map[int]Segment
}

func newTracer(geom Geometry, vol grid.Grid, opts Options) *tracer {
	t := &tracer{
		geom:     geom,
		vol:      vol,
		opts:     opts,
		radius:   geom.Scanner.EffectiveRadius(),
		segments: make(map[int]Segment, len(geom.Segments)),
	}
	for _, s := range geom.Segments {
		t.segments[s.Segment] = s
	}
	// the scanner's axial centre is placed at the grid's axial centre
	t.zShift = vol.Center()[2] - geom.Scanner.AxialLength()/2

	if opts.RestrictToCylindricalFOV {
		c := vol.Center()
		fov := math.Min(float64(vol.Nx)*vol.Spacing[0], float64(vol.Ny)*vol.Spacing[1]) / 2
		t.fovMask = make([]bool, vol.Nx*vol.Ny)
		for iy := 0; iy < vol.Ny; iy++ {
			for ix := 0; ix < vol.Nx; ix++ {
				p := vol.VoxelCenter(ix, iy, 0)
				dx, dy := p[0]-c[0], p[1]-c[1]
				t.fovMask[iy*vol.Nx+ix] = dx*dx+dy*dy <= fov*fov
			}
		}
	}
	return t
}

// tangential returns the signed distance of the LOR through bin position u
// (in bins, centred on 0) from the scanner axis.
func (t *tracer) tangential(u float64) float64 {
	if t.geom.ArcCorrected {
		return u * t.geom.BinSize
	}
	return t.radius * math.Sin(u*math.Pi/float64(t.geom.Scanner.NumDetectorsPerRing))
}

// axialEnds returns the z coordinates (grid frame) of both LOR ends.
func (t *tracer) axialEnds(seg Segment, axial int) (float64, float64) {
	rs := t.geom.Scanner.RingSpacing
	plane := rs
	if seg.MinRingDiff != seg.MaxRingDiff {
		plane = rs / 2
	}
	mid := t.geom.Scanner.AxialLength()/2 + (float64(axial)-float64(seg.NumAxial-1)/2)*plane
	delta := float64(seg.MinRingDiff+seg.MaxRingDiff) / 2 * rs
	return mid - delta/2 + t.zShift, mid + delta/2 + t.zShift
}

func (t *tracer) sinogramRows(segment, axial int) rowBlock {
	seg := t.segments[segment]
	z1, z2 := t.axialEnds(seg, axial)
	views, bins := t.geom.Views, t.geom.TangentialBins
	nLOR := t.opts.NumTangentialLORs
	unit := 1 / (t.vol.Spacing[0] * float64(nLOR))

	var block rowBlock
	block.rowEnd = make([]int, 0, views*bins)
	acc := make(map[int32]float64)
	order := make([]int32, 0, 64)

	for v := 0; v < views; v++ {
		phi := float64(v) * math.Pi / float64(views)
		cos, sin := math.Cos(phi), math.Sin(phi)
		for b := 0; b < bins; b++ {
			order = order[:0]
			for k := 0; k < nLOR; k++ {
				u := float64(b) - float64(bins-1)/2 + (float64(k)+0.5)/float64(nLOR) - 0.5
				s := t.tangential(u)
				if math.Abs(s) >= t.radius {
					continue
				}
				half := math.Sqrt(t.radius*t.radius - s*s)
				cx, cy := s*cos, s*sin
				p0 := [3]float64{cx + half*sin, cy - half*cos, z1}
				p1 := [3]float64{cx - half*sin, cy + half*cos, z2}
				traverse(t.vol, p0, p1, func(index int, length float64) {
					if t.fovMask != nil && !t.fovMask[index%(t.vol.Nx*t.vol.Ny)] {
						return
					}
					key := int32(index)
					if _, seen := acc[key]; !seen {
						order = append(order, key)
					}
					acc[key] += length * unit
				})
			}
			for _, key := range order {
				block.cols = append(block.cols, key)
				block.vals = append(block.vals, float32(acc[key]))
				delete(acc, key)
			}
			block.rowEnd = append(block.rowEnd, len(block.cols))
		}
	}
	return block
}
