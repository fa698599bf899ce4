package projector

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"petproj/internal/models"
	"petproj/pkg/compression"
	"petproj/pkg/grid"
	"petproj/pkg/interfile"
	"petproj/pkg/scanner"
)

// ViewMask reports, per view, whether the forward projection of an all-ones
// volume is positive at the middle tangential bin of the first sinogram. For
// a subset projector it shows which views the subset covers.
func ViewMask(f *Forward) ([]bool, error) {
	out, err := f.Apply(f.Domain().One())
	if err != nil {
		return nil, err
	}
	views, bins := out.Shape[1], out.Shape[2]
	mask := make([]bool, views)
	for v := range mask {
		mask[v] = out.At(0, v, bins/2) > 0
	}
	return mask, nil
}

// AttenuationFactors turns an attenuation map in 1/cm into per-bin survival
// probabilities exp(-line integral). Line integrals come from f in units of
// the transaxial voxel size, which is given in mm.
func AttenuationFactors(f *Forward, mu *models.Array) (*models.Array, error) {
	proj, err := f.Apply(mu)
	if err != nil {
		return nil, err
	}
	pixel := f.Domain().CellSides()[1]
	vals := proj.Float64()
	floats.Scale(-pixel/10, vals)
	for i, v := range vals {
		proj.Data[i] = float32(math.Exp(v))
	}
	return proj, nil
}

// FromPolicy derives the descriptor of p, allocates zeroed buffers for it
// and g and returns the forward projector over them.
func FromPolicy(p *compression.Policy, g grid.Grid, opts ...Option) (*Forward, error) {
	desc, err := p.Descriptor()
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return NewForward(g, desc, models.NewArray(g.Shape()), models.NewArray(desc.Shape()), opts...)
}

// FromFiles loads a volume and projection data and returns the forward
// projector using the loaded arrays as its buffers. The projection header
// names its scanner, which is resolved through catalog.
func FromFiles(volumeHeader, projHeader string, catalog scanner.Catalog, opts ...Option) (*Forward, error) {
	g, vol, err := interfile.ReadVolume(volumeHeader)
	if err != nil {
		return nil, fmt.Errorf("error loading volume: %w", err)
	}
	desc, proj, err := interfile.ReadProjData(projHeader, catalog)
	if err != nil {
		return nil, fmt.Errorf("error loading projection data: %w", err)
	}
	return NewForward(g, desc, vol, proj, opts...)
}
