// Package phantom renders simple analytic test objects onto a voxel grid.
package phantom

import (
	"math"

	"petproj/internal/models"
	"petproj/pkg/grid"
)

// Ellipse is an elliptic cylinder parallel to the scanner axis. Lengths and
// centres are relative to the transaxial half-extent of the grid, so the
// unit circle touches the grid edges.
type Ellipse struct {
	Value    float64
	HalfX    float64
	HalfY    float64
	CenterX  float64
	CenterY  float64
	Rotation float64 // radians
}

// Cylinders renders the ellipses on every plane of g. Overlapping values add.
func Cylinders(g grid.Grid, ellipses []Ellipse) *models.Array {
	out := models.NewArray(g.Shape())
	if len(ellipses) == 0 {
		return out
	}
	c := g.Center()
	hx := float64(g.Nx) * g.Spacing[0] / 2
	hy := float64(g.Ny) * g.Spacing[1] / 2

	plane := make([]float32, g.Nx*g.Ny)
	for iy := 0; iy < g.Ny; iy++ {
		for ix := 0; ix < g.Nx; ix++ {
			p := g.VoxelCenter(ix, iy, 0)
			x := (p[0] - c[0]) / hx
			y := (p[1] - c[1]) / hy
			var v float64
			for _, e := range ellipses {
				if e.contains(x, y) {
					v += e.Value
				}
			}
			plane[iy*g.Nx+ix] = float32(v)
		}
	}
	for iz := 0; iz < g.Nz; iz++ {
		copy(out.Plane(iz), plane)
	}
	return out
}

func (e Ellipse) contains(x, y float64) bool {
	if e.HalfX <= 0 || e.HalfY <= 0 {
		return false
	}
	dx, dy := x-e.CenterX, y-e.CenterY
	sin, cos := math.Sincos(e.Rotation)
	u := (dx*cos + dy*sin) / e.HalfX
	v := (-dx*sin + dy*cos) / e.HalfY
	return u*u+v*v <= 1
}

// Cylinder is a filled circular cylinder of the given relative radius.
func Cylinder(g grid.Grid, radius, value float64) *models.Array {
	return Cylinders(g, []Ellipse{{Value: value, HalfX: radius, HalfY: radius}})
}

// derenzoSectors lists the rod radius of each of the six sectors
var derenzoSectors = []float64{0.025, 0.035, 0.045, 0.06, 0.075, 0.095}

// DerenzoSources returns the rods of a Derenzo-like hot rod phantom: six 60
// degree sectors, each filled with a triangular lattice of equal rods whose
// spacing is four times the rod radius.
func DerenzoSources() []Ellipse {
	const (
		inner = 0.1
		outer = 0.85
	)
	var rods []Ellipse
	for k, r := range derenzoSectors {
		mid := float64(k)*math.Pi/3 + math.Pi/6
		dirX, dirY := math.Cos(mid), math.Sin(mid)
		perpX, perpY := -dirY, dirX
		pitch := 4 * r

		for row := 0; ; row++ {
			along := inner + 2*r + float64(row)*pitch*math.Sqrt(3)/2
			if along+r > outer {
				break
			}
			for j := 0; j <= row; j++ {
				across := (float64(j) - float64(row)/2) * pitch
				// the lattice must stay inside its 60 degree wedge
				if math.Abs(across)+r > (along-r)*math.Tan(math.Pi/6) {
					continue
				}
				rods = append(rods, Ellipse{
					Value:   1,
					HalfX:   r,
					HalfY:   r,
					CenterX: along*dirX + across*perpX,
					CenterY: along*dirY + across*perpY,
				})
			}
		}
	}
	return rods
}

// Derenzo renders the Derenzo-like rod phantom on g.
func Derenzo(g grid.Grid) *models.Array {
	return Cylinders(g, DerenzoSources())
}
