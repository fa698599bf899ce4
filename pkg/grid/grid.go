// Package grid describes the voxel grid of a reconstruction volume.
package grid

import (
	"fmt"
	"math"

	"petproj/internal/models"
)

// Grid is a regular voxel grid. Indices and spacing are given in (x, y, z)
// order; the array shape of the volume is (Nz, Ny, Nx).
type Grid struct {
	Nx, Ny, Nz int

	// Spacing is the voxel size in mm
	Spacing [3]float64

	// Min is the physical corner of voxel (0, 0, 0)
	Min [3]float64
}

// New returns a grid of the given (nx, ny, nz) shape and voxel size that
// follows the scanner alignment convention: x and y are centred on the
// scanner axis and z starts at 0.
func New(shape [3]int, spacing [3]float64) (Grid, error) {
	g := Grid{Nx: shape[0], Ny: shape[1], Nz: shape[2], Spacing: spacing}
	g.Min = [3]float64{
		-float64(shape[0]) * spacing[0] / 2,
		-float64(shape[1]) * spacing[1] / 2,
		0,
	}
	return g, g.Validate()
}

// FromExtents builds a grid from its physical extent and shape.
func FromExtents(min, max [3]float64, shape [3]int) (Grid, error) {
	g := Grid{Nx: shape[0], Ny: shape[1], Nz: shape[2], Min: min}
	for i := 0; i < 3; i++ {
		if shape[i] <= 0 {
			return Grid{}, fmt.Errorf("grid shape must be positive, got %v", shape)
		}
		g.Spacing[i] = (max[i] - min[i]) / float64(shape[i])
	}
	return g, g.Validate()
}

// Validate checks the shape and spacing.
func (g Grid) Validate() error {
	if g.Nx <= 0 || g.Ny <= 0 || g.Nz <= 0 {
		return fmt.Errorf("grid shape must be positive, got %dx%dx%d", g.Nx, g.Ny, g.Nz)
	}
	for i, s := range g.Spacing {
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("grid spacing along axis %d must be positive and finite, got %g", i, s)
		}
	}
	return nil
}

// Max is the far corner of the last voxel.
func (g Grid) Max() [3]float64 {
	return [3]float64{
		g.Min[0] + float64(g.Nx)*g.Spacing[0],
		g.Min[1] + float64(g.Ny)*g.Spacing[1],
		g.Min[2] + float64(g.Nz)*g.Spacing[2],
	}
}

// Center is the physical centre of the grid.
func (g Grid) Center() [3]float64 {
	max := g.Max()
	return [3]float64{(g.Min[0] + max[0]) / 2, (g.Min[1] + max[1]) / 2, (g.Min[2] + max[2]) / 2}
}

// Shape returns the row-major array shape (nz, ny, nx).
func (g Grid) Shape() [3]int { return [3]int{g.Nz, g.Ny, g.Nx} }

// Size is the number of voxels.
func (g Grid) Size() int { return g.Nx * g.Ny * g.Nz }

// Index returns the flat buffer position of voxel (ix, iy, iz).
func (g Grid) Index(ix, iy, iz int) int {
	return (iz*g.Ny+iy)*g.Nx + ix
}

// VoxelCenter returns the physical centre of voxel (ix, iy, iz).
func (g Grid) VoxelCenter(ix, iy, iz int) [3]float64 {
	return [3]float64{
		g.Min[0] + (float64(ix)+0.5)*g.Spacing[0],
		g.Min[1] + (float64(iy)+0.5)*g.Spacing[1],
		g.Min[2] + (float64(iz)+0.5)*g.Spacing[2],
	}
}

// Space returns the operator space of the grid with axes in array order.
func (g Grid) Space() models.Space {
	max := g.Max()
	return models.Space{
		Shape:  g.Shape(),
		MinPt:  [3]float64{g.Min[2], g.Min[1], g.Min[0]},
		MaxPt:  [3]float64{max[2], max[1], max[0]},
		Labels: [3]string{"z", "y", "x"},
	}
}

// Equal compares two grids with a relative tolerance on the physical values.
func (g Grid) Equal(o Grid, tol float64) bool {
	if g.Nx != o.Nx || g.Ny != o.Ny || g.Nz != o.Nz {
		return false
	}
	for i := 0; i < 3; i++ {
		if !near(g.Spacing[i], o.Spacing[i], tol) || !near(g.Min[i], o.Min[i], tol) {
			return false
		}
	}
	return true
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%dx%d voxels of %.4gx%.4gx%.4g mm", g.Nx, g.Ny, g.Nz, g.Spacing[0], g.Spacing[1], g.Spacing[2])
}
