package interfile

import (
	"fmt"

	"petproj/internal/models"
	"petproj/pkg/grid"
)

var axisKeys = [3]string{"[1]", "[2]", "[3]"}

// WriteVolume writes vol on grid g as headerPath plus a ".v" data file.
func WriteVolume(headerPath string, g grid.Grid, vol *models.Array, opts ...WriteOption) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if vol == nil || vol.Shape != g.Shape() {
		return fmt.Errorf("volume does not match grid %v", g.Shape())
	}
	o := applyWriteOptions(opts)
	name := dataName(headerPath, ".v")

	h := NewHeader()
	h.Set("imaging modality", "PT")
	setDataKeys(h, name, o)
	h.Set("number of dimensions", 3)
	n := [3]int{g.Nx, g.Ny, g.Nz}
	for i, k := range axisKeys {
		h.Set("matrix size "+k, n[i])
		h.Set("scaling factor (mm/pixel) "+k, g.Spacing[i])
		h.Set("first pixel offset (mm) "+k, g.Min[i])
	}
	return writeFiles(headerPath, name, h, vol.Data, o)
}

// ReadVolume reads a volume written by WriteVolume.
func ReadVolume(headerPath string) (grid.Grid, *models.Array, error) {
	h, err := readHeader(headerPath)
	if err != nil {
		return grid.Grid{}, nil, err
	}

	var g grid.Grid
	n := [3]*int{&g.Nx, &g.Ny, &g.Nz}
	for i, k := range axisKeys {
		if *n[i], err = h.Int("matrix size " + k); err != nil {
			return grid.Grid{}, nil, err
		}
		if g.Spacing[i], err = h.Float("scaling factor (mm/pixel) " + k); err != nil {
			return grid.Grid{}, nil, err
		}
		if _, ok := h.Get("first pixel offset (mm) " + k); ok {
			if g.Min[i], err = h.Float("first pixel offset (mm) " + k); err != nil {
				return grid.Grid{}, nil, err
			}
		}
	}
	if err := g.Validate(); err != nil {
		return grid.Grid{}, nil, fmt.Errorf("%s: %w", headerPath, err)
	}

	count, err := valueCount(g.Nx, g.Ny, g.Nz)
	if err != nil {
		return grid.Grid{}, nil, fmt.Errorf("%s: %w", headerPath, err)
	}
	data, err := readData(headerPath, h, count)
	if err != nil {
		return grid.Grid{}, nil, err
	}
	vol, err := models.WrapArray(g.Shape(), data)
	if err != nil {
		return grid.Grid{}, nil, err
	}
	return g, vol, nil
}
