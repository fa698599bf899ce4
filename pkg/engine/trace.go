package engine

import (
	"math"

	"petproj/pkg/grid"
)

const parallelEps = 1e-12

// clipToGrid intersects the segment p0 + t*(p1-p0), t in [0, 1], with the
// grid box using the slab method. ok is false when the segment misses.
func clipToGrid(g grid.Grid, p0, dir [3]float64) (tmin, tmax float64, ok bool) {
	tmin, tmax = 0, 1
	max := g.Max()
	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < parallelEps {
			if p0[i] < g.Min[i] || p0[i] > max[i] {
				return 0, 0, false
			}
			continue
		}
		t1 := (g.Min[i] - p0[i]) / dir[i]
		t2 := (max[i] - p0[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}
	if tmin >= tmax {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// traverse walks the voxels crossed by the segment p0 -> p1 in order and calls
// visit with each voxel's flat index and the intersection length in mm.
func traverse(g grid.Grid, p0, p1 [3]float64, visit func(index int, length float64)) {
	var dir [3]float64
	for i := range dir {
		dir[i] = p1[i] - p0[i]
	}
	tmin, tmax, ok := clipToGrid(g, p0, dir)
	if !ok {
		return
	}
	total := math.Sqrt(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])
	n := [3]int{g.Nx, g.Ny, g.Nz}

	var (
		idx    [3]int
		step   [3]int
		tNext  [3]float64
		tDelta [3]float64
	)
	for i := 0; i < 3; i++ {
		pos := p0[i] + dir[i]*tmin
		idx[i] = clampInt(int(math.Floor((pos-g.Min[i])/g.Spacing[i])), 0, n[i]-1)
		switch {
		case dir[i] > parallelEps:
			step[i] = 1
			tNext[i] = (g.Min[i] + float64(idx[i]+1)*g.Spacing[i] - p0[i]) / dir[i]
			tDelta[i] = g.Spacing[i] / dir[i]
		case dir[i] < -parallelEps:
			step[i] = -1
			tNext[i] = (g.Min[i] + float64(idx[i])*g.Spacing[i] - p0[i]) / dir[i]
			tDelta[i] = -g.Spacing[i] / dir[i]
		default:
			tNext[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	t := tmin
	for t < tmax {
		a := 0
		if tNext[1] < tNext[a] {
			a = 1
		}
		if tNext[2] < tNext[a] {
			a = 2
		}
		tEnd := math.Min(tNext[a], tmax)
		if tEnd > t {
			visit(g.Index(idx[0], idx[1], idx[2]), (tEnd-t)*total)
			t = tEnd
		}
		if tEnd >= tmax {
			return
		}
		idx[a] += step[a]
		if idx[a] < 0 || idx[a] >= n[a] {
			return
		}
		tNext[a] += tDelta[a]
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
