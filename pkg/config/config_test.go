package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petproj/pkg/compression"
	"petproj/pkg/scanner"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petproj.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compression:\n  span: 3\n  maxRingDifference: 5\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Compression.Span)
	assert.Equal(t, 5, cfg.Compression.MaxRingDifference)
	assert.Equal(t, "mCT", cfg.Scanner.Preset, "unset fields keep their defaults")
	assert.Equal(t, 1.0, cfg.Volume.Zoom)
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petproj.toml")
	data := `
[scanner]
preset = "ECAT 953"

[compression]
span = 3
max_ring_difference = 7
arc_corrected = true

[volume]
sizes = [32, 32, 31]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ECAT 953", cfg.Scanner.Preset)
	assert.Equal(t, 3, cfg.Compression.Span)
	assert.Equal(t, 7, cfg.Compression.MaxRingDifference)
	assert.True(t, cfg.Compression.ArcCorrected)
	assert.Equal(t, [3]int{32, 32, 31}, cfg.Volume.Sizes)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bad.yaml", "bad.toml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("compression: [span = \n"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err, name)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Compression.Span = 5
			cfg.Compression.Views = 48
			cfg.Volume.Offset = [3]float64{1.5, -2, 0.25}
			cfg.Output.Compress = true

			path := filepath.Join(t.TempDir(), "nested", "petproj"+ext)
			require.NoError(t, SaveConfig(cfg, path))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

// Every built-in scanner written as a custom geometry must come back equal
// and derive the same projection layout as the preset it came from.
func TestPresetRoundTrip(t *testing.T) {
	catalog := scanner.Builtin()
	for _, name := range catalog.Names() {
		geom, err := catalog.Lookup(name)
		require.NoError(t, err)

		for _, ext := range []string{".yaml", ".toml"} {
			t.Run(name+ext, func(t *testing.T) {
				custom := FromGeometry(geom)
				cfg := DefaultConfig()
				cfg.Scanner = ScannerConfig{Custom: &custom}

				path := filepath.Join(t.TempDir(), "scanner"+ext)
				require.NoError(t, SaveConfig(cfg, path))
				loaded, err := LoadConfig(path)
				require.NoError(t, err)
				require.NotNil(t, loaded.Scanner.Custom)

				got, err := loaded.Scanner.Geometry(catalog)
				require.NoError(t, err)
				assert.True(t, geom.Equal(got), "geometry changed: %+v", got)

				if !geom.CheckConsistency() {
					return
				}
				want, err := compression.NewPolicy(geom).Descriptor()
				require.NoError(t, err)
				p, err := loaded.Policy(catalog)
				require.NoError(t, err)
				desc, err := p.Descriptor()
				require.NoError(t, err)
				assert.Equal(t, want.Shape(), desc.Shape())
				assert.Equal(t, want.Segments(), desc.Segments())
			})
		}
	}
}

func TestScannerGeometry(t *testing.T) {
	catalog := scanner.Builtin()

	g, err := ScannerConfig{Preset: "mCT"}.Geometry(catalog)
	require.NoError(t, err)
	assert.Equal(t, scanner.MCT(), g)

	_, err = ScannerConfig{Preset: "no such scanner"}.Geometry(catalog)
	assert.Error(t, err)

	_, err = ScannerConfig{}.Geometry(catalog)
	assert.Error(t, err)

	custom := FromGeometry(scanner.MCT())
	custom.Name = "bench"
	g, err = ScannerConfig{Preset: "ECAT 953", Custom: &custom}.Geometry(catalog)
	require.NoError(t, err)
	assert.Equal(t, "bench", g.Name, "custom geometry wins over the preset")
}

func TestPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compression.Span = 3
	cfg.Compression.MaxRingDifference = 4
	cfg.Compression.Views = 28
	cfg.Compression.TangentialBins = 40

	p, err := cfg.Policy(scanner.Builtin())
	require.NoError(t, err)
	desc, err := p.Descriptor()
	require.NoError(t, err)
	assert.Equal(t, 3, desc.Span())
	assert.Equal(t, 4, desc.MaxRingDifference())
	assert.Equal(t, 28, desc.Views())
	assert.Equal(t, 40, desc.TangentialBins())

	cfg.Compression.Span = 2
	p, err = cfg.Policy(scanner.Builtin())
	require.NoError(t, err)
	_, err = p.Descriptor()
	assert.ErrorIs(t, err, compression.ErrConfiguration)
}

func TestGridOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Volume.Zoom = 0.5
	cfg.Volume.Sizes = [3]int{2, 3, 4}
	opts := cfg.GridOptions()
	assert.Equal(t, 0.5, opts.Zoom)
	assert.Equal(t, [3]int{2, 3, 4}, opts.Sizes)
}
