package visualization

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"petproj/internal/models"
	"petproj/pkg/compression"
	"petproj/pkg/scanner"
)

// TestNewViewer verifies that the window spans the volume's values
func TestNewViewer(t *testing.T) {
	vol := models.NewArray([3]int{5, 10, 10})
	for i := range vol.Data {
		vol.Data[i] = float32(i%7) - 2
	}

	viewer := NewViewer(vol)
	lo, hi := viewer.Window()
	if lo != -2 || hi != 4 {
		t.Errorf("Expected window [-2, 4], got [%g, %g]", lo, hi)
	}

	if err := viewer.SetWindow(1, 1); err == nil {
		t.Error("Expected error for empty window, got nil")
	}
	if err := viewer.SetWindow(0, 10); err != nil {
		t.Fatalf("Failed to set window: %v", err)
	}
	if lo, hi := viewer.Window(); lo != 0 || hi != 10 {
		t.Errorf("Expected window [0, 10], got [%g, %g]", lo, hi)
	}
}

// TestExtractSlice verifies that slices are correctly extracted from the volume
func TestExtractSlice(t *testing.T) {
	width, height, depth := 10, 8, 5
	vol := models.NewArray([3]int{depth, height, width})

	// Each slice along Z has a unique value
	for z := 0; z < depth; z++ {
		plane := vol.Plane(z)
		for i := range plane {
			plane[i] = float32(z)
		}
	}

	viewer := NewViewer(vol)

	for z := 0; z < depth; z++ {
		img, err := viewer.ExtractSlice("z", z)
		if err != nil {
			t.Fatalf("Failed to extract Z slice at position %d: %v", z, err)
		}

		bounds := img.Bounds()
		if bounds.Dx() != width || bounds.Dy() != height {
			t.Errorf("Expected Z slice dimensions %dx%d, got %dx%d",
				width, height, bounds.Dx(), bounds.Dy())
		}

		gray16Img, ok := img.(*image.Gray16)
		if !ok {
			t.Fatalf("Expected *image.Gray16, got %T", img)
		}

		expected := int(float64(z) / float64(depth-1) * 65535)
		got := int(gray16Img.Gray16At(width/2, height/2).Y)
		if diff := got - expected; diff > 1 || diff < -1 {
			t.Errorf("Expected Z slice value ~%d at center, got %d", expected, got)
		}
	}

	imgX, err := viewer.ExtractSlice("x", width/2)
	if err != nil {
		t.Fatalf("Failed to extract X slice: %v", err)
	}
	if b := imgX.Bounds(); b.Dx() != depth || b.Dy() != height {
		t.Errorf("Expected X slice dimensions %dx%d, got %dx%d", depth, height, b.Dx(), b.Dy())
	}

	imgY, err := viewer.ExtractSlice("y", height/2)
	if err != nil {
		t.Fatalf("Failed to extract Y slice: %v", err)
	}
	if b := imgY.Bounds(); b.Dx() != width || b.Dy() != depth {
		t.Errorf("Expected Y slice dimensions %dx%d, got %dx%d", width, depth, b.Dx(), b.Dy())
	}

	// The Y slice shows depth along its rows
	gy := imgY.(*image.Gray16)
	if gy.Gray16At(0, 0).Y != 0 || gy.Gray16At(0, depth-1).Y != 65535 {
		t.Errorf("Unexpected Y slice rows: first %d, last %d",
			gy.Gray16At(0, 0).Y, gy.Gray16At(0, depth-1).Y)
	}

	if _, err := viewer.ExtractSlice("invalid", 0); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
	if _, err := viewer.ExtractSlice("z", depth); err == nil {
		t.Error("Expected error for out of bounds position, got nil")
	}
	if _, err := viewer.ExtractSlice("x", -1); err == nil {
		t.Error("Expected error for negative position, got nil")
	}
}

// TestExtractRegion verifies that 3D regions are correctly extracted
func TestExtractRegion(t *testing.T) {
	width, height, depth := 10, 10, 5
	vol := models.NewArray([3]int{depth, height, width})
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				vol.Set(z, y, x, float32(100*z+10*y+x))
			}
		}
	}

	viewer := NewViewer(vol)

	start := [3]int{1, 3, 2}
	size := [3]int{2, 3, 4}
	region, err := viewer.ExtractRegion(start, size)
	if err != nil {
		t.Fatalf("Failed to extract region: %v", err)
	}

	if region.Shape != size {
		t.Errorf("Expected region shape %v, got %v", size, region.Shape)
	}

	for z := 0; z < size[0]; z++ {
		for y := 0; y < size[1]; y++ {
			for x := 0; x < size[2]; x++ {
				want := vol.At(start[0]+z, start[1]+y, start[2]+x)
				if got := region.At(z, y, x); got != want {
					t.Errorf("Region value mismatch at (%d,%d,%d): expected %g, got %g", z, y, x, want, got)
				}
			}
		}
	}

	tests := []struct {
		name        string
		start, size [3]int
	}{
		{"negative start", [3]int{-1, 0, 0}, [3]int{1, 1, 1}},
		{"zero size", [3]int{0, 0, 0}, [3]int{0, 1, 1}},
		{"beyond volume", [3]int{0, 0, width - 1}, [3]int{1, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := viewer.ExtractRegion(tt.start, tt.size); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestSaveSlice verifies that slices can be saved to disk in both formats
func TestSaveSlice(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	tempDir := t.TempDir()

	vol := models.NewArray([3]int{5, 10, 10})
	vol.Fill(0.5)
	viewer := NewViewer(vol)

	img, err := viewer.ExtractSlice("z", 0)
	if err != nil {
		t.Fatalf("Failed to extract slice: %v", err)
	}

	for _, name := range []string{"test_slice.jpg", "test_slice.png"} {
		filename := filepath.Join(tempDir, name)
		if err := SaveSlice(img, filename); err != nil {
			t.Fatalf("Failed to save slice: %v", err)
		}

		file, err := os.Open(filename)
		if err != nil {
			t.Fatalf("Saved file does not exist: %s", filename)
		}
		_, format, err := image.DecodeConfig(file)
		file.Close()
		if err != nil {
			t.Fatalf("Failed to decode %s: %v", filename, err)
		}
		want := map[string]string{".jpg": "jpeg", ".png": "png"}[filepath.Ext(name)]
		if format != want {
			t.Errorf("Expected %s to be %s, got %s", name, want, format)
		}
	}
}

// TestSaveSliceSequence verifies that a sequence of slices can be saved
func TestSaveSliceSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file I/O test in short mode")
	}

	width, height, depth := 5, 5, 3
	vol := models.NewArray([3]int{depth, height, width})
	vol.Fill(0.5)
	viewer := NewViewer(vol)

	outputDir := filepath.Join(t.TempDir(), "slices")
	if err := viewer.SaveSliceSequence("z", outputDir); err != nil {
		t.Fatalf("Failed to save slice sequence: %v", err)
	}

	for z := 0; z < depth; z++ {
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_z_%03d.png", z))
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			t.Errorf("Expected slice file does not exist: %s", filename)
		}
	}

	if err := viewer.SaveSliceSequence("invalid", outputDir); err == nil {
		t.Error("Expected error for invalid axis, got nil")
	}
}

// TestSinogram verifies that the sinogram image picks the right plane
func TestSinogram(t *testing.T) {
	p := compression.NewPolicy(scanner.MCT())
	if err := p.SetMaxRingDifference(1); err != nil {
		t.Fatalf("Failed to set maximum ring difference: %v", err)
	}
	desc, err := p.Descriptor()
	if err != nil {
		t.Fatalf("Failed to derive descriptor: %v", err)
	}

	proj := models.NewArray(desc.Shape())
	off, err := desc.Offset(-1, 2)
	if err != nil {
		t.Fatalf("Failed to locate sinogram: %v", err)
	}
	plane := proj.Plane(off)
	views, bins := proj.Shape[1], proj.Shape[2]
	for v := 0; v < views; v++ {
		plane[v*bins+v%bins] = 1
	}

	img, err := Sinogram(desc, proj, -1, 2)
	if err != nil {
		t.Fatalf("Failed to render sinogram: %v", err)
	}
	if b := img.Bounds(); b.Dx() != bins || b.Dy() != views {
		t.Errorf("Expected sinogram dimensions %dx%d, got %dx%d", bins, views, b.Dx(), b.Dy())
	}
	g := img.(*image.Gray16)
	if g.Gray16At(3, 3).Y != 65535 || g.Gray16At(4, 3).Y != 0 {
		t.Errorf("Unexpected sinogram pixels %d and %d", g.Gray16At(3, 3).Y, g.Gray16At(4, 3).Y)
	}

	if _, err := Sinogram(desc, proj, 5, 0); err == nil {
		t.Error("Expected error for segment outside the layout, got nil")
	}
	if _, err := Sinogram(desc, models.NewArray([3]int{1, 1, 1}), 0, 0); err == nil {
		t.Error("Expected error for shape mismatch, got nil")
	}
}
