// Package visualization renders volumes and projection data as grayscale
// images for inspection.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"petproj/internal/models"
	"petproj/pkg/compression"
	"petproj/pkg/metrics"
)

// Viewer extracts 2D slices from a (z, y, x) volume. Values are mapped
// linearly from [lo, hi] to the full gray range.
type Viewer struct {
	volume *models.Array

	// display window
	lo, hi float64
}

// NewViewer creates a viewer whose window spans the value range of volume
func NewViewer(volume *models.Array) *Viewer {
	lo, hi := metrics.MinMax(volume.Data)
	return &Viewer{volume: volume, lo: lo, hi: hi}
}

// SetWindow overrides the display window
func (v *Viewer) SetWindow(lo, hi float64) error {
	if !(hi > lo) {
		return fmt.Errorf("window upper bound %g must exceed lower bound %g", hi, lo)
	}
	v.lo, v.hi = lo, hi
	return nil
}

// Window returns the display window
func (v *Viewer) Window() (lo, hi float64) { return v.lo, v.hi }

func (v *Viewer) gray(x float32) color.Gray16 {
	if v.hi <= v.lo {
		return color.Gray16{}
	}
	t := (float64(x) - v.lo) / (v.hi - v.lo)
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, t*65535)))}
}

// ExtractSlice extracts a 2D slice from the volume along the specified axis
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	depth, height, width := v.volume.Shape[0], v.volume.Shape[1], v.volume.Shape[2]
	var img *image.Gray16

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		img = image.NewGray16(image.Rect(0, 0, depth, height))
		for y := 0; y < height; y++ {
			for z := 0; z < depth; z++ {
				img.SetGray16(z, y, v.gray(v.volume.At(z, y, position)))
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		img = image.NewGray16(image.Rect(0, 0, width, depth))
		for z := 0; z < depth; z++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, z, v.gray(v.volume.At(z, position, x)))
			}
		}

	case "z", "Z":
		// XY plane
		if position >= depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, depth)
		}
		img = image.NewGray16(image.Rect(0, 0, width, height))
		plane := v.volume.Plane(position)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, y, v.gray(plane[y*width+x]))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// ExtractRegion copies a box of the volume into a new array
func (v *Viewer) ExtractRegion(start, size [3]int) (*models.Array, error) {
	for i := range start {
		if start[i] < 0 {
			return nil, fmt.Errorf("start coordinates must be non-negative")
		}
		if size[i] <= 0 {
			return nil, fmt.Errorf("size dimensions must be positive")
		}
		if start[i]+size[i] > v.volume.Shape[i] {
			return nil, fmt.Errorf("region extends beyond volume boundaries")
		}
	}

	region := models.NewArray(size)
	for z := 0; z < size[0]; z++ {
		for y := 0; y < size[1]; y++ {
			src := v.volume.Index(start[0]+z, start[1]+y, start[2])
			dst := region.Index(z, y, 0)
			copy(region.Data[dst:dst+size[2]], v.volume.Data[src:src+size[2]])
		}
	}
	return region, nil
}

// SaveSlice writes an image as PNG when filename ends in .png and as JPEG
// otherwise
func SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filename), ".png") {
		return png.Encode(file, img)
	}
	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.volume.Shape[2]
	case "y", "Y":
		maxPos = v.volume.Shape[1]
	case "z", "Z":
		maxPos = v.volume.Shape[0]
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}

// Sinogram renders one sinogram of projection data laid out by desc. Views
// run down the image and tangential bins across it. The window spans the
// values of that sinogram.
func Sinogram(desc *compression.Descriptor, proj *models.Array, segment, axial int) (image.Image, error) {
	if proj.Shape != desc.Shape() {
		return nil, fmt.Errorf("projection data shape %v does not match descriptor shape %v", proj.Shape, desc.Shape())
	}
	off, err := desc.Offset(segment, axial)
	if err != nil {
		return nil, err
	}
	plane := proj.Plane(off)
	views, bins := proj.Shape[1], proj.Shape[2]

	lo, hi := metrics.MinMax(plane)
	v := &Viewer{lo: lo, hi: hi}
	img := image.NewGray16(image.Rect(0, 0, bins, views))
	for i := 0; i < views; i++ {
		for j := 0; j < bins; j++ {
			img.SetGray16(j, i, v.gray(plane[i*bins+j]))
		}
	}
	return img, nil
}
