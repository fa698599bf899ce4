// Package compression turns a scanner description and a few binning
// parameters into the layout of a compressed sinogram set.
package compression

import (
	"fmt"

	"petproj/pkg/engine"
	"petproj/pkg/scanner"
	"petproj/pkg/sinogram"
)

// MaxRingDifferenceAuto selects the largest ring difference the scanner has.
const MaxRingDifferenceAuto = -1

// AxialLayout computes the per-segment ring differences and axial counts for
// a scanner, span and maximum ring difference, in natural segment order.
type AxialLayout func(s scanner.Geometry, span, maxRingDiff int) ([]engine.Segment, error)

// Option configures a Policy.
type Option func(*Policy)

// WithAxialLayout replaces the cylindrical axial layout.
func WithAxialLayout(layout AxialLayout) Option {
	return func(p *Policy) {
		p.layout = layout
	}
}

// Policy holds the binning parameters applied to a scanner. Setters are
// accepted until the first successful call to Descriptor.
type Policy struct {
	scanner      scanner.Geometry
	span         int
	maxRingDiff  int
	views        int
	viewsSet     bool
	bins         int
	binsSet      bool
	arcCorrected bool
	layout       AxialLayout

	desc *Descriptor
}

// NewPolicy returns a span 1 policy using every ring difference, half the
// detectors as views and the scanner's default tangential bin count.
func NewPolicy(s scanner.Geometry, opts ...Option) *Policy {
	p := &Policy{
		scanner:     s,
		span:        1,
		maxRingDiff: MaxRingDifferenceAuto,
		layout:      engine.CylindricalLayout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromPreset looks name up in catalog and returns a default policy for it.
func FromPreset(catalog scanner.Catalog, name string, opts ...Option) (*Policy, error) {
	s, err := catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewPolicy(s, opts...), nil
}

// Scanner returns the geometry the policy compresses.
func (p *Policy) Scanner() scanner.Geometry { return p.scanner }

// Span returns the configured span.
func (p *Policy) Span() int { return p.span }

// ArcCorrected reports whether arc-corrected bins are requested.
func (p *Policy) ArcCorrected() bool { return p.arcCorrected }

// Frozen reports whether a descriptor has been derived.
func (p *Policy) Frozen() bool { return p.desc != nil }

// MaxRingDifference returns the configured value, resolving the automatic
// setting against the scanner.
func (p *Policy) MaxRingDifference() int {
	if p.maxRingDiff == MaxRingDifferenceAuto {
		return p.scanner.NumRings - 1
	}
	return p.maxRingDiff
}

// Views returns the configured or default number of views.
func (p *Policy) Views() int {
	if p.viewsSet {
		return p.views
	}
	return p.scanner.NumDetectorsPerRing / 2
}

// TangentialBins returns the configured or default number of tangential bins.
func (p *Policy) TangentialBins() int {
	switch {
	case p.binsSet:
		return p.bins
	case p.arcCorrected:
		return p.scanner.DefaultNumArcCorrectedBins
	default:
		return p.scanner.MaxNumNonArcCorrectedBins
	}
}

// SetSpan sets the axial compression span. It is validated by Descriptor.
func (p *Policy) SetSpan(span int) error {
	if p.Frozen() {
		return ErrFrozen
	}
	p.span = span
	return nil
}

// SetMaxRingDifference sets the largest ring difference kept;
// MaxRingDifferenceAuto restores the default.
func (p *Policy) SetMaxRingDifference(d int) error {
	if p.Frozen() {
		return ErrFrozen
	}
	p.maxRingDiff = d
	return nil
}

// SetViews overrides the default number of views.
func (p *Policy) SetViews(n int) error {
	if p.Frozen() {
		return ErrFrozen
	}
	p.views, p.viewsSet = n, true
	return nil
}

// SetTangentialBins overrides the default number of tangential bins.
func (p *Policy) SetTangentialBins(n int) error {
	if p.Frozen() {
		return ErrFrozen
	}
	p.bins, p.binsSet = n, true
	return nil
}

// SetArcCorrected selects arc-corrected or uncorrected bins.
func (p *Policy) SetArcCorrected(arc bool) error {
	if p.Frozen() {
		return ErrFrozen
	}
	p.arcCorrected = arc
	return nil
}

// Descriptor derives the projection data descriptor. The first successful
// call freezes the policy; later calls return the same descriptor. Nothing
// is allocated before every parameter has been validated.
func (p *Policy) Descriptor() (*Descriptor, error) {
	if p.desc != nil {
		return p.desc, nil
	}

	if err := p.scanner.Consistency(); err != nil {
		return nil, &ConfigurationError{Field: "scanner", Value: p.scanner.Name, Reason: "inconsistent geometry", Err: err}
	}
	if p.span <= 0 || p.span%2 == 0 {
		return nil, configError("span", p.span, "must be a positive odd number")
	}
	maxRD := p.MaxRingDifference()
	if maxRD < 0 || maxRD > p.scanner.NumRings-1 {
		return nil, configError("maximum ring difference", p.maxRingDiff, fmt.Sprintf("must be in [0, %d]", p.scanner.NumRings-1))
	}
	views := p.Views()
	if views <= 0 {
		return nil, configError("number of views", views, "must be positive")
	}
	bins := p.TangentialBins()
	if bins <= 0 {
		return nil, configError("number of tangential bins", bins, "must be positive")
	}
	if p.layout == nil {
		return nil, configError("axial layout", nil, "not set")
	}

	segments, err := p.layout(p.scanner, p.span, maxRD)
	if err != nil {
		return nil, &ConfigurationError{Field: "axial layout", Value: p.span, Reason: "layout failed", Err: err}
	}
	if want := 2*(maxRD/p.span) + 1; len(segments) != want {
		return nil, configError("axial layout", len(segments), fmt.Sprintf("expected %d segments", want))
	}
	segments = append([]engine.Segment(nil), segments...)
	counts := make([]sinogram.SegmentCount, len(segments))
	for i, s := range segments {
		counts[i] = sinogram.SegmentCount{Segment: s.Segment, NumAxial: s.NumAxial}
	}
	index, err := sinogram.NewIndex(counts)
	if err != nil {
		return nil, &ConfigurationError{Field: "axial layout", Value: p.span, Reason: "invalid segment counts", Err: err}
	}

	p.desc = &Descriptor{
		scanner:      p.scanner,
		span:         p.span,
		maxRingDiff:  maxRD,
		views:        views,
		bins:         bins,
		arcCorrected: p.arcCorrected,
		binSize:      p.scanner.DefaultBinSize,
		segments:     segments,
		index:        index,
	}
	return p.desc, nil
}
