package config

import (
	"fmt"

	"petproj/pkg/scanner"
)

// ScannerConfig names a catalog preset or, when Custom is set, describes
// the scanner explicitly
type ScannerConfig struct {
	Preset string          `yaml:"preset,omitempty" toml:"preset,omitempty"`
	Custom *GeometryConfig `yaml:"custom,omitempty" toml:"custom,omitempty"`
}

// GeometryConfig is the file representation of a scanner geometry
type GeometryConfig struct {
	Name                             string  `yaml:"name" toml:"name"`
	NumRings                         int     `yaml:"numRings" toml:"num_rings"`
	NumDetectorsPerRing              int     `yaml:"numDetectorsPerRing" toml:"num_detectors_per_ring"`
	InnerRingRadius                  float64 `yaml:"innerRingRadius" toml:"inner_ring_radius"`
	RingSpacing                      float64 `yaml:"ringSpacing" toml:"ring_spacing"`
	AverageDepthOfInteraction        float64 `yaml:"averageDepthOfInteraction" toml:"average_depth_of_interaction"`
	DefaultBinSize                   float64 `yaml:"defaultBinSize" toml:"default_bin_size"`
	DefaultNumArcCorrectedBins       int     `yaml:"defaultNumArcCorrectedBins" toml:"default_num_arc_corrected_bins"`
	MaxNumNonArcCorrectedBins        int     `yaml:"maxNumNonArcCorrectedBins" toml:"max_num_non_arc_corrected_bins"`
	AxialCrystalsPerBlock            int     `yaml:"axialCrystalsPerBlock" toml:"axial_crystals_per_block"`
	TransaxialCrystalsPerBlock       int     `yaml:"transaxialCrystalsPerBlock" toml:"transaxial_crystals_per_block"`
	AxialBlocksPerBucket             int     `yaml:"axialBlocksPerBucket" toml:"axial_blocks_per_bucket"`
	TransaxialBlocksPerBucket        int     `yaml:"transaxialBlocksPerBucket" toml:"transaxial_blocks_per_bucket"`
	AxialCrystalsPerSinglesUnit      int     `yaml:"axialCrystalsPerSinglesUnit" toml:"axial_crystals_per_singles_unit"`
	TransaxialCrystalsPerSinglesUnit int     `yaml:"transaxialCrystalsPerSinglesUnit" toml:"transaxial_crystals_per_singles_unit"`
	NumDetectorLayers                int     `yaml:"numDetectorLayers" toml:"num_detector_layers"`
	IntrinsicTilt                    float64 `yaml:"intrinsicTilt" toml:"intrinsic_tilt"`
}

// FromGeometry converts a scanner geometry to its file representation
func FromGeometry(g scanner.Geometry) GeometryConfig {
	return GeometryConfig{
		Name:                             g.Name,
		NumRings:                         g.NumRings,
		NumDetectorsPerRing:              g.NumDetectorsPerRing,
		InnerRingRadius:                  g.InnerRingRadius,
		RingSpacing:                      g.RingSpacing,
		AverageDepthOfInteraction:        g.AverageDepthOfInteraction,
		DefaultBinSize:                   g.DefaultBinSize,
		DefaultNumArcCorrectedBins:       g.DefaultNumArcCorrectedBins,
		MaxNumNonArcCorrectedBins:        g.MaxNumNonArcCorrectedBins,
		AxialCrystalsPerBlock:            g.AxialCrystalsPerBlock,
		TransaxialCrystalsPerBlock:       g.TransaxialCrystalsPerBlock,
		AxialBlocksPerBucket:             g.AxialBlocksPerBucket,
		TransaxialBlocksPerBucket:        g.TransaxialBlocksPerBucket,
		AxialCrystalsPerSinglesUnit:      g.AxialCrystalsPerSinglesUnit,
		TransaxialCrystalsPerSinglesUnit: g.TransaxialCrystalsPerSinglesUnit,
		NumDetectorLayers:                g.NumDetectorLayers,
		IntrinsicTilt:                    g.IntrinsicTilt,
	}
}

// ToGeometry converts the file representation back to a scanner geometry
func (c GeometryConfig) ToGeometry() scanner.Geometry {
	return scanner.Geometry{
		Name:                             c.Name,
		NumRings:                         c.NumRings,
		NumDetectorsPerRing:              c.NumDetectorsPerRing,
		InnerRingRadius:                  c.InnerRingRadius,
		RingSpacing:                      c.RingSpacing,
		AverageDepthOfInteraction:        c.AverageDepthOfInteraction,
		DefaultBinSize:                   c.DefaultBinSize,
		DefaultNumArcCorrectedBins:       c.DefaultNumArcCorrectedBins,
		MaxNumNonArcCorrectedBins:        c.MaxNumNonArcCorrectedBins,
		AxialCrystalsPerBlock:            c.AxialCrystalsPerBlock,
		TransaxialCrystalsPerBlock:       c.TransaxialCrystalsPerBlock,
		AxialBlocksPerBucket:             c.AxialBlocksPerBucket,
		TransaxialBlocksPerBucket:        c.TransaxialBlocksPerBucket,
		AxialCrystalsPerSinglesUnit:      c.AxialCrystalsPerSinglesUnit,
		TransaxialCrystalsPerSinglesUnit: c.TransaxialCrystalsPerSinglesUnit,
		NumDetectorLayers:                c.NumDetectorLayers,
		IntrinsicTilt:                    c.IntrinsicTilt,
	}
}

// Geometry resolves the configured scanner. A custom geometry takes
// precedence over the preset name.
func (c ScannerConfig) Geometry(catalog scanner.Catalog) (scanner.Geometry, error) {
	if c.Custom != nil {
		return c.Custom.ToGeometry(), nil
	}
	if c.Preset == "" {
		return scanner.Geometry{}, fmt.Errorf("no scanner preset or custom geometry configured")
	}
	return catalog.Lookup(c.Preset)
}

// Catalog returns the built-in scanners plus the custom geometry, if one is
// configured. A custom geometry replaces a built-in one of the same name.
func (c ScannerConfig) Catalog() scanner.Catalog {
	builtin := scanner.Builtin()
	if c.Custom == nil {
		return builtin
	}
	var geoms []scanner.Geometry
	for _, name := range builtin.Names() {
		g, err := builtin.Lookup(name)
		if err != nil {
			continue
		}
		geoms = append(geoms, g)
	}
	return scanner.NewCatalog(append(geoms, c.Custom.ToGeometry())...)
}
