// Package scanner describes ring-detector PET scanners and provides a catalog
// of known scanner geometries.
package scanner

import (
	"fmt"
)

// Geometry is an immutable description of a cylindrical PET scanner.
// Lengths are in mm.
type Geometry struct {
	// Name identifies the scanner in a Catalog
	Name string

	// NumRings is the number of detector rings along the scanner axis
	NumRings int

	// NumDetectorsPerRing is the number of crystals in one ring; always even
	NumDetectorsPerRing int

	// InnerRingRadius is the radius of the crystal surface
	InnerRingRadius float64

	// RingSpacing is the axial distance between two neighbouring rings
	RingSpacing float64

	// AverageDepthOfInteraction is added to the inner radius when computing
	// the position of a line of response
	AverageDepthOfInteraction float64

	// DefaultBinSize is the tangential sampling distance at the centre of the FOV
	DefaultBinSize float64

	DefaultNumArcCorrectedBins int
	MaxNumNonArcCorrectedBins  int

	// Block and bucket structure, used for consistency checking only
	AxialCrystalsPerBlock            int
	TransaxialCrystalsPerBlock       int
	AxialBlocksPerBucket             int
	TransaxialBlocksPerBucket        int
	AxialCrystalsPerSinglesUnit      int
	TransaxialCrystalsPerSinglesUnit int
	NumDetectorLayers                int

	// IntrinsicTilt is the angle of the first detector in radians
	IntrinsicTilt float64
}

// CheckConsistency reports whether the block structure agrees with the ring
// and detector counts. Geometries failing this check must not be used to
// derive projection data.
func (g Geometry) CheckConsistency() bool {
	return g.Consistency() == nil
}

// Consistency returns nil for a consistent geometry, or an error naming the
// first rule that does not hold.
func (g Geometry) Consistency() error {
	switch {
	case g.NumRings <= 0:
		return fmt.Errorf("number of rings must be positive, got %d", g.NumRings)
	case g.NumDetectorsPerRing <= 0 || g.NumDetectorsPerRing%2 != 0:
		return fmt.Errorf("detectors per ring must be positive and even, got %d", g.NumDetectorsPerRing)
	case g.InnerRingRadius <= 0:
		return fmt.Errorf("inner ring radius must be positive, got %g", g.InnerRingRadius)
	case g.RingSpacing <= 0:
		return fmt.Errorf("ring spacing must be positive, got %g", g.RingSpacing)
	case g.DefaultBinSize <= 0:
		return fmt.Errorf("default bin size must be positive, got %g", g.DefaultBinSize)
	case g.DefaultNumArcCorrectedBins <= 0 || g.MaxNumNonArcCorrectedBins <= 0:
		return fmt.Errorf("default bin counts must be positive, got %d/%d",
			g.DefaultNumArcCorrectedBins, g.MaxNumNonArcCorrectedBins)
	case g.AxialCrystalsPerBlock <= 0 || g.TransaxialCrystalsPerBlock <= 0 ||
		g.AxialBlocksPerBucket <= 0 || g.TransaxialBlocksPerBucket <= 0:
		return fmt.Errorf("block and bucket crystal counts must be positive")
	case g.NumDetectorLayers <= 0:
		return fmt.Errorf("number of detector layers must be positive, got %d", g.NumDetectorLayers)
	case g.AxialCrystalsPerSinglesUnit < 0 || g.TransaxialCrystalsPerSinglesUnit < 0:
		return fmt.Errorf("singles unit crystal counts must not be negative")
	}

	axialPerBucket := g.AxialCrystalsPerBlock * g.AxialBlocksPerBucket
	if g.NumRings%axialPerBucket != 0 {
		return fmt.Errorf("%d rings is not a multiple of %d axial crystals per block x %d axial blocks per bucket",
			g.NumRings, g.AxialCrystalsPerBlock, g.AxialBlocksPerBucket)
	}
	transPerBucket := g.TransaxialCrystalsPerBlock * g.TransaxialBlocksPerBucket
	if g.NumDetectorsPerRing%transPerBucket != 0 {
		return fmt.Errorf("%d detectors per ring is not a multiple of %d transaxial crystals per block x %d transaxial blocks per bucket",
			g.NumDetectorsPerRing, g.TransaxialCrystalsPerBlock, g.TransaxialBlocksPerBucket)
	}
	if n := g.AxialCrystalsPerSinglesUnit; n > 0 && g.NumRings%n != 0 {
		return fmt.Errorf("%d rings is not a multiple of %d axial crystals per singles unit", g.NumRings, n)
	}
	if n := g.TransaxialCrystalsPerSinglesUnit; n > 0 && g.NumDetectorsPerRing%n != 0 {
		return fmt.Errorf("%d detectors per ring is not a multiple of %d transaxial crystals per singles unit",
			g.NumDetectorsPerRing, n)
	}
	return nil
}

// Equal reports value equality over all fields.
func (g Geometry) Equal(other Geometry) bool {
	return g == other
}

// NumAxialBuckets is derived from the block structure.
func (g Geometry) NumAxialBuckets() int {
	return g.NumRings / (g.AxialCrystalsPerBlock * g.AxialBlocksPerBucket)
}

// NumTransaxialBuckets is derived from the block structure.
func (g Geometry) NumTransaxialBuckets() int {
	return g.NumDetectorsPerRing / (g.TransaxialCrystalsPerBlock * g.TransaxialBlocksPerBucket)
}

// EffectiveRadius is the ring radius including the average depth of interaction.
func (g Geometry) EffectiveRadius() float64 {
	return g.InnerRingRadius + g.AverageDepthOfInteraction
}

// AxialLength is the distance between the centres of the first and last ring.
func (g Geometry) AxialLength() float64 {
	return float64(g.NumRings-1) * g.RingSpacing
}
