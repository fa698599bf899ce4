package projector

import (
	"log/slog"

	"petproj/pkg/engine"
)

// Option configures operator construction.
type Option func(*options)

type options struct {
	engine         engine.Engine
	adjoint        Operator
	subset         int
	numSubsets     int
	builder        engine.Builder
	cache          *engine.Cache
	logger         *slog.Logger
	restrictFOV    bool
	tangentialLORs int
	workers        int
	lazyAdjoint    bool
}

func newOptions(opts []Option) *options {
	o := &options{
		numSubsets:     1,
		builder:        engine.RayTracingBuilder,
		restrictFOV:    true,
		tangentialLORs: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithEngine supplies an already built engine, skipping the build.
func WithEngine(e engine.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithAdjoint supplies the opposite operator. NewForward expects a *Back and
// NewBack a *Forward. The operator must not be paired yet, see
// WithLazyAdjoint. Its engine is reused unless WithEngine is also given.
func WithAdjoint(op Operator) Option {
	return func(o *options) { o.adjoint = op }
}

// WithLazyAdjoint defers creating the opposite operator until Adjoint is
// first called. Until then the operator can be handed to the other
// constructor with WithAdjoint. The first Adjoint call must not run
// concurrently with another.
func WithLazyAdjoint() Option {
	return func(o *options) { o.lazyAdjoint = true }
}

// WithSubset restricts the operators to views with view%numSubsets == subset.
func WithSubset(subset, numSubsets int) Option {
	return func(o *options) {
		o.subset = subset
		o.numSubsets = numSubsets
	}
}

// WithBuilder replaces the engine builder used when no engine is supplied.
func WithBuilder(b engine.Builder) Option {
	return func(o *options) { o.builder = b }
}

// WithCache takes built engines from c and stores new ones in it.
func WithCache(c *engine.Cache) Option {
	return func(o *options) { o.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRestrictToCylindricalFOV controls whether voxels outside the
// cylindrical field of view take part. Enabled by default.
func WithRestrictToCylindricalFOV(restrict bool) Option {
	return func(o *options) { o.restrictFOV = restrict }
}

// WithTangentialLORs sets the number of rays traced per tangential bin.
func WithTangentialLORs(n int) Option {
	return func(o *options) { o.tangentialLORs = n }
}

// WithWorkers bounds the parallelism of the engine build.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// engineOptions fixes the symmetry flags; only the field of view, the rays
// per bin and the build parallelism are configurable here.
func (o *options) engineOptions() engine.Options {
	eo := engine.DefaultOptions()
	eo.RestrictToCylindricalFOV = o.restrictFOV
	eo.NumTangentialLORs = o.tangentialLORs
	eo.Workers = o.workers
	eo.Logger = o.logger
	return eo
}
