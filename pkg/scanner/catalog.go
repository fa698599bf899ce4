package scanner

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog looks up scanner geometries by name.
type Catalog interface {
	Names() []string
	Lookup(name string) (Geometry, error)
}

type mapCatalog struct {
	byName map[string]Geometry
	names  []string
}

// NewCatalog returns a read-only catalog of the given geometries, keyed by Name.
// Later entries replace earlier ones with the same name.
func NewCatalog(geometries ...Geometry) Catalog {
	c := &mapCatalog{byName: make(map[string]Geometry, len(geometries))}
	for _, g := range geometries {
		c.byName[g.Name] = g
	}
	for name := range c.byName {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

func (c *mapCatalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *mapCatalog) Lookup(name string) (Geometry, error) {
	g, ok := c.byName[name]
	if !ok {
		return Geometry{}, fmt.Errorf("unknown scanner %q, valid names are %v", name, c.names)
	}
	return g, nil
}

var (
	builtinOnce sync.Once
	builtin     Catalog
)

// Builtin returns the catalog of known scanners. It is built on first use and
// never modified afterwards.
func Builtin() Catalog {
	builtinOnce.Do(func() {
		builtin = NewCatalog(presets()...)
	})
	return builtin
}

// MCT is the small demonstration geometry used throughout the tests.
func MCT() Geometry {
	return Geometry{
		Name:                        "mCT",
		NumRings:                    8,
		NumDetectorsPerRing:         112,
		InnerRingRadius:             57.5,
		RingSpacing:                 6.25,
		AverageDepthOfInteraction:   7.0,
		DefaultBinSize:              1.65,
		DefaultNumArcCorrectedBins:  56,
		MaxNumNonArcCorrectedBins:   56,
		AxialCrystalsPerBlock:       8,
		TransaxialCrystalsPerBlock:  7,
		AxialBlocksPerBucket:        1,
		TransaxialBlocksPerBucket:   16,
		AxialCrystalsPerSinglesUnit: 8,
		NumDetectorLayers:           1,
	}
}

func presets() []Geometry {
	return []Geometry{
		MCT(),
		{
			Name: "ECAT 953", NumRings: 16, NumDetectorsPerRing: 384,
			InnerRingRadius: 382.5, RingSpacing: 6.75, AverageDepthOfInteraction: 7.0,
			DefaultBinSize: 3.129, DefaultNumArcCorrectedBins: 160, MaxNumNonArcCorrectedBins: 192,
			AxialCrystalsPerBlock: 8, TransaxialCrystalsPerBlock: 8,
			AxialBlocksPerBucket: 2, TransaxialBlocksPerBucket: 4,
			AxialCrystalsPerSinglesUnit: 16, TransaxialCrystalsPerSinglesUnit: 32,
			NumDetectorLayers: 1,
		},
		{
			Name: "ECAT 962", NumRings: 32, NumDetectorsPerRing: 576,
			InnerRingRadius: 412.0, RingSpacing: 4.85, AverageDepthOfInteraction: 7.0,
			DefaultBinSize: 2.25, DefaultNumArcCorrectedBins: 288, MaxNumNonArcCorrectedBins: 288,
			AxialCrystalsPerBlock: 8, TransaxialCrystalsPerBlock: 8,
			AxialBlocksPerBucket: 4, TransaxialBlocksPerBucket: 3,
			AxialCrystalsPerSinglesUnit: 8, TransaxialCrystalsPerSinglesUnit: 24,
			NumDetectorLayers: 1,
		},
		{
			Name: "ECAT 966", NumRings: 48, NumDetectorsPerRing: 576,
			InnerRingRadius: 412.0, RingSpacing: 4.85, AverageDepthOfInteraction: 7.0,
			DefaultBinSize: 2.25, DefaultNumArcCorrectedBins: 288, MaxNumNonArcCorrectedBins: 288,
			AxialCrystalsPerBlock: 8, TransaxialCrystalsPerBlock: 8,
			AxialBlocksPerBucket: 6, TransaxialBlocksPerBucket: 2,
			AxialCrystalsPerSinglesUnit: 8, TransaxialCrystalsPerSinglesUnit: 16,
			NumDetectorLayers: 1,
		},
		{
			Name: "GE Advance", NumRings: 18, NumDetectorsPerRing: 672,
			InnerRingRadius: 469.5, RingSpacing: 8.5, AverageDepthOfInteraction: 7.0,
			DefaultBinSize: 1.970177, DefaultNumArcCorrectedBins: 281, MaxNumNonArcCorrectedBins: 281,
			AxialCrystalsPerBlock: 6, TransaxialCrystalsPerBlock: 6,
			AxialBlocksPerBucket: 3, TransaxialBlocksPerBucket: 2,
			NumDetectorLayers: 1,
		},
		{
			Name: "GE Discovery ST", NumRings: 24, NumDetectorsPerRing: 420,
			InnerRingRadius: 443.6, RingSpacing: 6.54, AverageDepthOfInteraction: 7.0,
			DefaultBinSize: 2.35, DefaultNumArcCorrectedBins: 249, MaxNumNonArcCorrectedBins: 249,
			AxialCrystalsPerBlock: 6, TransaxialCrystalsPerBlock: 6,
			AxialBlocksPerBucket: 4, TransaxialBlocksPerBucket: 2,
			AxialCrystalsPerSinglesUnit: 6, TransaxialCrystalsPerSinglesUnit: 12,
			NumDetectorLayers: 1,
		},
		{
			Name: "Siemens mMR", NumRings: 64, NumDetectorsPerRing: 504,
			InnerRingRadius: 328.0, RingSpacing: 4.0625, AverageDepthOfInteraction: 7.0,
			DefaultBinSize: 2.0862, DefaultNumArcCorrectedBins: 344, MaxNumNonArcCorrectedBins: 344,
			AxialCrystalsPerBlock: 8, TransaxialCrystalsPerBlock: 9,
			AxialBlocksPerBucket: 1, TransaxialBlocksPerBucket: 1,
			AxialCrystalsPerSinglesUnit: 8, TransaxialCrystalsPerSinglesUnit: 9,
			NumDetectorLayers: 1, IntrinsicTilt: -0.0523599,
		},
	}
}
