package grid

import (
	"fmt"
)

// Voxels is the index-range representation used by volume files and
// projection engines: integer index bounds, a voxel size and an origin, all
// in (z, y, x) order. The physical coordinate of index i along an axis is
// Origin + i*VoxelSize.
type Voxels struct {
	MinIndices [3]int
	MaxIndices [3]int
	VoxelSize  [3]float64
	Origin     [3]float64
}

// ToVoxels converts the grid. x and y indices are centred around 0 and z
// starts at 0; the origin absorbs any remaining offset so that FromVoxels
// gives back the same grid.
func (g Grid) ToVoxels() Voxels {
	var v Voxels
	n := [3]int{g.Nz, g.Ny, g.Nx}
	size := [3]float64{g.Spacing[2], g.Spacing[1], g.Spacing[0]}
	min := [3]float64{g.Min[2], g.Min[1], g.Min[0]}

	v.MinIndices = [3]int{0, -g.Ny / 2, -g.Nx / 2}
	for i := 0; i < 3; i++ {
		v.MaxIndices[i] = v.MinIndices[i] + n[i] - 1
		v.VoxelSize[i] = size[i]
		v.Origin[i] = min[i] - float64(v.MinIndices[i])*size[i]
	}
	return v
}

// FromVoxels converts an index-range description into a grid.
func FromVoxels(v Voxels) (Grid, error) {
	var n [3]int
	for i := 0; i < 3; i++ {
		n[i] = v.MaxIndices[i] - v.MinIndices[i] + 1
		if n[i] <= 0 {
			return Grid{}, fmt.Errorf("empty index range %d..%d on axis %d", v.MinIndices[i], v.MaxIndices[i], i)
		}
	}
	g := Grid{Nx: n[2], Ny: n[1], Nz: n[0]}
	for i := 0; i < 3; i++ {
		g.Spacing[2-i] = v.VoxelSize[i]
		g.Min[2-i] = v.Origin[i] + float64(v.MinIndices[i])*v.VoxelSize[i]
	}
	return g, g.Validate()
}
