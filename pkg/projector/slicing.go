package projector

import (
	"fmt"

	"petproj/internal/models"
)

// Slice keeps positions [Lo, Hi) of the first axis of its domain. Its
// adjoint, Inject, writes them back into an otherwise zero array.
type Slice struct {
	domain models.Space
	lo, hi int
}

// Inject is the adjoint of Slice.
type Inject struct {
	slice *Slice
}

var (
	_ Operator = (*Slice)(nil)
	_ Operator = (*Inject)(nil)
)

// NewSlice returns the restriction of domain to [lo, hi) along its first
// axis.
func NewSlice(domain models.Space, lo, hi int) (*Slice, error) {
	if lo < 0 || hi > domain.Shape[0] || lo >= hi {
		return nil, fmt.Errorf("slice [%d, %d) outside [0, %d)", lo, hi, domain.Shape[0])
	}
	return &Slice{domain: domain, lo: lo, hi: hi}, nil
}

// SegmentSlice selects the sinograms of one segment from the range of f.
func SegmentSlice(f *Forward, segment int) (*Slice, error) {
	first, err := f.desc.Offset(segment, 0)
	if err != nil {
		return nil, err
	}
	n, err := f.desc.NumAxial(segment)
	if err != nil {
		return nil, err
	}
	return NewSlice(f.Range(), first, first+n)
}

// Bounds returns the selected range of the first axis.
func (s *Slice) Bounds() (lo, hi int) { return s.lo, s.hi }

func (s *Slice) Domain() models.Space { return s.domain }

func (s *Slice) Range() models.Space {
	sp := s.domain
	cell := sp.CellSides()[0]
	sp.Shape[0] = s.hi - s.lo
	sp.MinPt[0] = s.domain.MinPt[0] + float64(s.lo)*cell
	sp.MaxPt[0] = s.domain.MinPt[0] + float64(s.hi)*cell
	return sp
}

func (s *Slice) Apply(x *models.Array) (*models.Array, error) {
	if !s.domain.Contains(x) {
		return nil, inputMismatch(s.domain, x)
	}
	n := x.Shape[1] * x.Shape[2]
	out := models.NewArray(s.Range().Shape)
	copy(out.Data, x.Data[s.lo*n:s.hi*n])
	return out, nil
}

func (s *Slice) Adjoint() Operator { return &Inject{slice: s} }

func (i *Inject) Domain() models.Space { return i.slice.Range() }
func (i *Inject) Range() models.Space  { return i.slice.domain }

func (i *Inject) Apply(x *models.Array) (*models.Array, error) {
	if !i.Domain().Contains(x) {
		return nil, inputMismatch(i.Domain(), x)
	}
	out := i.slice.domain.Zero()
	n := x.Shape[1] * x.Shape[2]
	copy(out.Data[i.slice.lo*n:], x.Data)
	return out, nil
}

func (i *Inject) Adjoint() Operator { return i.slice }
