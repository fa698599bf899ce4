package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestScannersCommand(t *testing.T) {
	out := run(t, "scanners")
	assert.Contains(t, out, "mCT")
	assert.Contains(t, out, "ECAT 953")
}

func TestInfoCommand(t *testing.T) {
	out := run(t, "info", "--max-ring-difference", "1")
	assert.Contains(t, out, "Segments:                -1 to 1")
	assert.Contains(t, out, "[22 56 56]")
}

func TestOffsetCommand(t *testing.T) {
	// segments are stored 0, 1, -1 with 8, 7 and 7 sinograms
	assert.Equal(t, "21\n", run(t, "offset", "--max-ring-difference", "1", "--", "-1", "6"))
	assert.Equal(t, "segment -1, axial position 0\n", run(t, "offset", "--max-ring-difference", "1", "--locate", "15"))
}

func TestForwardBackCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping projection run in short mode")
	}
	dir := t.TempDir()
	proj := filepath.Join(dir, "p.hs")

	out := run(t, "forward", "--phantom", "cylinder", "--max-ring-difference", "1", "-o", proj, "--check-adjoint")
	assert.Contains(t, out, "projection data [22 56 56]")
	assert.Contains(t, out, "relative difference")
	_, err := os.Stat(proj)
	require.NoError(t, err)

	vol := filepath.Join(dir, "b.hv")
	out = run(t, "back", proj, "-o", vol)
	assert.Contains(t, out, "volume [15 56 56]")
	_, err = os.Stat(vol)
	require.NoError(t, err)
}
