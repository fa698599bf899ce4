// Package config provides configuration loading and management for petproj.
// It handles loading configuration from YAML or TOML files and provides
// default values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"petproj/pkg/compression"
	"petproj/pkg/logging"
	"petproj/pkg/scanner"
)

// Config represents the application configuration
type Config struct {
	// Scanner selects the scanner geometry
	Scanner ScannerConfig `yaml:"scanner" toml:"scanner"`

	// Compression parameters
	Compression struct {
		// Span is the axial compression; always odd, 1 means none
		Span int `yaml:"span" toml:"span"`

		// MaxRingDifference is the largest ring difference kept; -1 keeps all
		MaxRingDifference int `yaml:"maxRingDifference" toml:"max_ring_difference"`

		// Views is the number of views; 0 means half the detectors per ring
		Views int `yaml:"views" toml:"views"`

		// TangentialBins is the number of tangential bins; 0 means the scanner default
		TangentialBins int `yaml:"tangentialBins" toml:"tangential_bins"`

		ArcCorrected bool `yaml:"arcCorrected" toml:"arc_corrected"`
	} `yaml:"compression" toml:"compression"`

	// Volume grid parameters
	Volume struct {
		// Zoom scales the transaxial sampling of the default grid
		Zoom float64 `yaml:"zoom" toml:"zoom"`

		// Sizes overrides the number of voxels along x, y and z when non-zero
		Sizes [3]int `yaml:"sizes" toml:"sizes"`

		// Offset moves the grid corner, in mm
		Offset [3]float64 `yaml:"offset" toml:"offset"`
	} `yaml:"volume" toml:"volume"`

	// Projector parameters
	Projector struct {
		Subset     int `yaml:"subset" toml:"subset"`
		NumSubsets int `yaml:"numSubsets" toml:"num_subsets"`

		// TangentialLORs is the number of rays traced per tangential bin
		TangentialLORs int `yaml:"tangentialLORs" toml:"tangential_lors"`

		RestrictToCylindricalFOV bool `yaml:"restrictToCylindricalFOV" toml:"restrict_to_cylindrical_fov"`

		// NumCores bounds the parallel engine build
		NumCores int `yaml:"numCores" toml:"num_cores"`

		// CacheSize is the number of engines kept for reuse
		CacheSize int `yaml:"cacheSize" toml:"cache_size"`
	} `yaml:"projector" toml:"projector"`

	// Output parameters
	Output struct {
		// Verbosity: 0 warnings, 1 info, 2 debug
		Verbosity int `yaml:"verbosity" toml:"verbosity"`

		// LogFormat is "text" or "json"
		LogFormat string `yaml:"logFormat" toml:"log_format"`

		// Compress writes zstd compressed data files
		Compress bool `yaml:"compress" toml:"compress"`

		// Dir is where projections and images are written
		Dir string `yaml:"dir" toml:"dir"`
	} `yaml:"output" toml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Scanner.Preset = scanner.MCT().Name

	cfg.Compression.Span = 1
	cfg.Compression.MaxRingDifference = compression.MaxRingDifferenceAuto
	cfg.Compression.ArcCorrected = false

	cfg.Volume.Zoom = 1.0

	cfg.Projector.Subset = 0
	cfg.Projector.NumSubsets = 1
	cfg.Projector.TangentialLORs = 1
	cfg.Projector.RestrictToCylindricalFOV = true
	cfg.Projector.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Projector.CacheSize = 4

	cfg.Output.Verbosity = 0
	cfg.Output.LogFormat = logging.FormatText
	cfg.Output.Dir = "output"

	return cfg
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by the
// file extension. If the file doesn't exist, it returns the default
// configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if isTOML(configPath) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML or TOML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	if isTOML(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Policy builds the compression policy described by the configuration
func (c *Config) Policy(catalog scanner.Catalog) (*compression.Policy, error) {
	geom, err := c.Scanner.Geometry(catalog)
	if err != nil {
		return nil, err
	}
	p := compression.NewPolicy(geom)

	if err := p.SetSpan(c.Compression.Span); err != nil {
		return nil, err
	}
	if err := p.SetMaxRingDifference(c.Compression.MaxRingDifference); err != nil {
		return nil, err
	}
	if c.Compression.Views != 0 {
		if err := p.SetViews(c.Compression.Views); err != nil {
			return nil, err
		}
	}
	if c.Compression.TangentialBins != 0 {
		if err := p.SetTangentialBins(c.Compression.TangentialBins); err != nil {
			return nil, err
		}
	}
	if err := p.SetArcCorrected(c.Compression.ArcCorrected); err != nil {
		return nil, err
	}
	return p, nil
}

// GridOptions returns the volume settings for Descriptor.DefaultGrid
func (c *Config) GridOptions() compression.GridOptions {
	return compression.GridOptions{
		Zoom:   c.Volume.Zoom,
		Sizes:  c.Volume.Sizes,
		Offset: c.Volume.Offset,
	}
}
