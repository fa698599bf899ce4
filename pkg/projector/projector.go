// Package projector provides PET forward and back projection as a pair of
// mutually adjoint linear operators.
//
// Both operators of a pair share one volume buffer, one projection buffer
// and one projection engine. Apply copies its input into the shared buffers,
// runs the engine and copies the result out, so the buffers hold scratch
// data after every call and the operators of a pair must not be applied
// concurrently.
package projector

import (
	"errors"
	"fmt"
	"log/slog"

	"petproj/internal/models"
	"petproj/pkg/compression"
	"petproj/pkg/engine"
	"petproj/pkg/grid"
)

// Operator is a linear map between two spaces with a known adjoint.
type Operator interface {
	Domain() models.Space
	Range() models.Space
	Apply(x *models.Array) (*models.Array, error)
	Adjoint() Operator
}

// shared is the state common to both operators of a pair.
type shared struct {
	grid       grid.Grid
	desc       *compression.Descriptor
	volume     *models.Array
	proj       *models.Array
	volSpace   models.Space
	projSpace  models.Space
	engine     engine.Engine
	subset     int
	numSubsets int
	logger     *slog.Logger

	// ownsAdjoint is set on the operator that constructed the other one
	ownsAdjoint bool
}

// Forward maps volumes to projection data.
type Forward struct {
	shared
	adjoint *Back
}

// Back maps projection data to volumes. It is the adjoint of Forward.
type Back struct {
	shared
	adjoint *Forward
}

var (
	_ Operator = (*Forward)(nil)
	_ Operator = (*Back)(nil)
)

// tangentialRadius is the half width of the tangential sampling in mm.
func tangentialRadius(desc *compression.Descriptor) float64 {
	return float64(desc.TangentialBins()) * desc.BinSize() / 2
}

func newShared(g grid.Grid, desc *compression.Descriptor, volume, proj *models.Array, o *options) (shared, error) {
	if desc == nil {
		return shared{}, errors.New("projection data descriptor is nil")
	}
	if err := g.Validate(); err != nil {
		return shared{}, err
	}
	if volume == nil || proj == nil {
		return shared{}, errors.New("volume and projection buffers are required")
	}
	if o.numSubsets <= 0 || o.subset < 0 || o.subset >= o.numSubsets {
		return shared{}, fmt.Errorf("subset %d of %d is invalid", o.subset, o.numSubsets)
	}

	s := shared{
		grid:       g,
		desc:       desc,
		volume:     volume,
		proj:       proj,
		volSpace:   g.Space(),
		projSpace:  desc.Space(tangentialRadius(desc)),
		subset:     o.subset,
		numSubsets: o.numSubsets,
		logger:     o.logger,
	}
	if !s.volSpace.Contains(volume) {
		return shared{}, &ShapeMismatchError{Operand: "domain", Want: s.volSpace.Shape, Got: volume.Shape}
	}
	if !s.projSpace.Contains(proj) {
		return shared{}, &ShapeMismatchError{Operand: "range", Want: s.projSpace.Shape, Got: proj.Shape}
	}
	return s, nil
}

// resolveEngine picks the supplied engine, the adjoint's engine or a newly
// built one, in that order.
func (s *shared) resolveEngine(o *options, adjointEngine engine.Engine) error {
	switch {
	case o.engine != nil:
		s.engine = o.engine
	case adjointEngine != nil:
		s.engine = adjointEngine
	default:
		e, err := buildEngine(s.grid, s.desc, o)
		if err != nil {
			return err
		}
		s.engine = e
	}
	return nil
}

func buildEngine(g grid.Grid, desc *compression.Descriptor, o *options) (engine.Engine, error) {
	if o.builder == nil {
		return nil, &EngineError{Op: "build", Err: errors.New("no engine builder")}
	}
	geom := desc.Geometry()
	eo := o.engineOptions()
	if o.cache != nil {
		e, hit, err := o.cache.GetOrBuild(geom, g, eo, o.builder)
		if err != nil {
			return nil, &EngineError{Op: "build", Err: err}
		}
		o.logger.Debug("projection engine from cache", "hit", hit)
		return e, nil
	}
	e, err := o.builder(geom, g, eo)
	if err != nil {
		return nil, &EngineError{Op: "build", Err: err}
	}
	return e, nil
}

// NewForward builds a forward projector from the volume grid to the
// projection layout of desc, operating on the given shared buffers.
//
// The buffer shapes are checked first. Unless an engine or an adjoint is
// supplied, one engine is built and a Back operator sharing it is created
// alongside; Adjoint returns it. A supplied adjoint must still be unpaired
// (built with WithLazyAdjoint and never asked for its adjoint); it is bound
// to the new operator. A paired one yields ErrAdjointBound and is left as it
// was.
func NewForward(g grid.Grid, desc *compression.Descriptor, volume, proj *models.Array, opts ...Option) (*Forward, error) {
	o := newOptions(opts)
	s, err := newShared(g, desc, volume, proj, o)
	if err != nil {
		return nil, err
	}
	f := &Forward{shared: s}

	var back *Back
	if o.adjoint != nil {
		var ok bool
		if back, ok = o.adjoint.(*Back); !ok {
			return nil, fmt.Errorf("adjoint of a forward projector must be a *Back, got %T", o.adjoint)
		}
		if back.adjoint != nil {
			return nil, ErrAdjointBound
		}
		if err := checkAdjoint(f, back); err != nil {
			return nil, err
		}
	}

	var adjEngine engine.Engine
	if back != nil {
		adjEngine = back.engine
	}
	if err := f.resolveEngine(o, adjEngine); err != nil {
		return nil, err
	}

	switch {
	case back != nil:
		back.adjoint = f
		f.adjoint = back
	case !o.lazyAdjoint:
		f.bind()
	}

	f.logger.Debug("built forward projector",
		"domain", f.Domain().Shape,
		"range", f.Range().Shape,
		"subset", f.subset,
		"subsets", f.numSubsets,
		"ownsAdjoint", f.ownsAdjoint)
	return f, nil
}

// NewBack builds a back projector from the projection layout of desc to the
// volume grid. Construction mirrors NewForward.
func NewBack(desc *compression.Descriptor, g grid.Grid, volume, proj *models.Array, opts ...Option) (*Back, error) {
	o := newOptions(opts)
	s, err := newShared(g, desc, volume, proj, o)
	if err != nil {
		return nil, err
	}
	b := &Back{shared: s}

	var fwd *Forward
	if o.adjoint != nil {
		var ok bool
		if fwd, ok = o.adjoint.(*Forward); !ok {
			return nil, fmt.Errorf("adjoint of a back projector must be a *Forward, got %T", o.adjoint)
		}
		if fwd.adjoint != nil {
			return nil, ErrAdjointBound
		}
		if err := checkAdjoint(b, fwd); err != nil {
			return nil, err
		}
	}

	var adjEngine engine.Engine
	if fwd != nil {
		adjEngine = fwd.engine
	}
	if err := b.resolveEngine(o, adjEngine); err != nil {
		return nil, err
	}

	switch {
	case fwd != nil:
		fwd.adjoint = b
		b.adjoint = fwd
	case !o.lazyAdjoint:
		b.bind()
	}

	b.logger.Debug("built back projector",
		"domain", b.Domain().Shape,
		"range", b.Range().Shape,
		"subset", b.subset,
		"subsets", b.numSubsets,
		"ownsAdjoint", b.ownsAdjoint)
	return b, nil
}

// checkAdjoint verifies that adj maps op's range back onto op's domain.
func checkAdjoint(op, adj Operator) error {
	if got, want := adj.Domain().Shape, op.Range().Shape; got != want {
		return &ShapeMismatchError{Operand: "adjoint", Want: want, Got: got}
	}
	if got, want := adj.Range().Shape, op.Domain().Shape; got != want {
		return &ShapeMismatchError{Operand: "adjoint", Want: want, Got: got}
	}
	return nil
}

func (f *Forward) Domain() models.Space { return f.volSpace }
func (f *Forward) Range() models.Space  { return f.projSpace }

// bind creates the back projector sharing f's buffers and engine.
func (f *Forward) bind() {
	if f.adjoint != nil {
		return
	}
	f.adjoint = &Back{shared: f.shared, adjoint: f}
	f.ownsAdjoint = true
}

// Adjoint returns the back projector of the pair, creating it if needed.
func (f *Forward) Adjoint() Operator { return f.Back() }

// Back is Adjoint with its concrete type.
func (f *Forward) Back() *Back {
	f.bind()
	return f.adjoint
}

func (f *Forward) Grid() grid.Grid                     { return f.grid }
func (f *Forward) Descriptor() *compression.Descriptor { return f.desc }
func (f *Forward) Engine() engine.Engine               { return f.engine }

// Subset returns the subset index and count the operator projects.
func (f *Forward) Subset() (int, int) { return f.subset, f.numSubsets }

// OwnsAdjoint reports whether this operator created its adjoint.
func (f *Forward) OwnsAdjoint() bool { return f.ownsAdjoint }

// Apply forward projects x. The volume buffer is overwritten with x and the
// projection buffer with the result, which is returned as a new array.
func (f *Forward) Apply(x *models.Array) (*models.Array, error) {
	if !f.volSpace.Contains(x) {
		return nil, inputMismatch(f.volSpace, x)
	}
	if err := f.volume.CopyFrom(x); err != nil {
		return nil, err
	}
	if err := f.engine.ForwardProject(f.proj, f.volume, f.subset, f.numSubsets); err != nil {
		return nil, &EngineError{Op: "forward projection", Err: err}
	}
	return f.proj.Clone(), nil
}

func (b *Back) Domain() models.Space { return b.projSpace }
func (b *Back) Range() models.Space  { return b.volSpace }

func (b *Back) bind() {
	if b.adjoint != nil {
		return
	}
	b.adjoint = &Forward{shared: b.shared, adjoint: b}
	b.ownsAdjoint = true
}

// Adjoint returns the forward projector of the pair, creating it if needed.
func (b *Back) Adjoint() Operator { return b.Forward() }

// Forward is Adjoint with its concrete type.
func (b *Back) Forward() *Forward {
	b.bind()
	return b.adjoint
}

func (b *Back) Grid() grid.Grid                     { return b.grid }
func (b *Back) Descriptor() *compression.Descriptor { return b.desc }
func (b *Back) Engine() engine.Engine               { return b.engine }
func (b *Back) Subset() (int, int)                  { return b.subset, b.numSubsets }
func (b *Back) OwnsAdjoint() bool                   { return b.ownsAdjoint }

// Apply back projects y. The volume buffer is zeroed before the engine
// accumulates into it; the result is returned as a new array.
func (b *Back) Apply(y *models.Array) (*models.Array, error) {
	if !b.projSpace.Contains(y) {
		return nil, inputMismatch(b.projSpace, y)
	}
	b.volume.Fill(0)
	if err := b.proj.CopyFrom(y); err != nil {
		return nil, err
	}
	if err := b.engine.BackProject(b.volume, b.proj, b.subset, b.numSubsets, false); err != nil {
		return nil, &EngineError{Op: "back projection", Err: err}
	}
	return b.volume.Clone(), nil
}

func inputMismatch(sp models.Space, x *models.Array) error {
	if x == nil {
		return fmt.Errorf("%w: nil input", ErrShapeMismatch)
	}
	return &ShapeMismatchError{Operand: "input", Want: sp.Shape, Got: x.Shape}
}
