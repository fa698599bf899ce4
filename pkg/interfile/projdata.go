package interfile

import (
	"fmt"

	"petproj/internal/models"
	"petproj/pkg/compression"
	"petproj/pkg/scanner"
)

const (
	keySystem      = "originating system"
	keySpan        = "segment span"
	keyMaxRingDiff = "maximum ring difference"
	keyViews       = "number of views"
	keyBins        = "number of tangential positions"
	keyArc         = "arc corrected"
	keySinograms   = "number of sinograms"
)

// WriteProjData writes projection data laid out by desc as headerPath plus a
// ".s" data file. The scanner is recorded by name.
func WriteProjData(headerPath string, desc *compression.Descriptor, data *models.Array, opts ...WriteOption) error {
	if data == nil || data.Shape != desc.Shape() {
		return fmt.Errorf("projection data does not match descriptor shape %v", desc.Shape())
	}
	o := applyWriteOptions(opts)
	name := dataName(headerPath, ".s")

	h := NewHeader()
	h.Set("imaging modality", "PT")
	setDataKeys(h, name, o)
	h.Set(keySystem, desc.Scanner().Name)
	h.Set(keySpan, desc.Span())
	h.Set(keyMaxRingDiff, desc.MaxRingDifference())
	h.Set(keyViews, desc.Views())
	h.Set(keyBins, desc.TangentialBins())
	h.Set(keyArc, desc.ArcCorrected())
	h.Set(keySinograms, desc.NumSinograms())
	return writeFiles(headerPath, name, h, data.Data, o)
}

// ReadProjData reads projection data written by WriteProjData, resolving the
// originating system through catalog.
func ReadProjData(headerPath string, catalog scanner.Catalog) (*compression.Descriptor, *models.Array, error) {
	h, err := readHeader(headerPath)
	if err != nil {
		return nil, nil, err
	}
	system, err := h.String(keySystem)
	if err != nil {
		return nil, nil, err
	}
	policy, err := compression.FromPreset(catalog, system)
	if err != nil {
		return nil, nil, err
	}

	ints := []struct {
		key string
		set func(int) error
	}{
		{keySpan, policy.SetSpan},
		{keyMaxRingDiff, policy.SetMaxRingDifference},
		{keyViews, policy.SetViews},
		{keyBins, policy.SetTangentialBins},
	}
	for _, f := range ints {
		if _, ok := h.Get(f.key); !ok {
			continue
		}
		v, err := h.Int(f.key)
		if err != nil {
			return nil, nil, err
		}
		if err := f.set(v); err != nil {
			return nil, nil, err
		}
	}
	arc, err := h.Bool(keyArc)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.SetArcCorrected(arc); err != nil {
		return nil, nil, err
	}

	desc, err := policy.Descriptor()
	if err != nil {
		return nil, nil, err
	}
	if _, ok := h.Get(keySinograms); ok {
		n, err := h.Int(keySinograms)
		if err != nil {
			return nil, nil, err
		}
		if n != desc.NumSinograms() {
			return nil, nil, fmt.Errorf("%s: header lists %d sinograms, layout has %d", headerPath, n, desc.NumSinograms())
		}
	}

	n, err := valueCount(desc.NumSinograms(), desc.Views(), desc.TangentialBins())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", headerPath, err)
	}
	values, err := readData(headerPath, h, n)
	if err != nil {
		return nil, nil, err
	}
	data, err := models.WrapArray(desc.Shape(), values)
	if err != nil {
		return nil, nil, err
	}
	return desc, data, nil
}
