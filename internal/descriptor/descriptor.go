// Package descriptor provides named scalar computations over (ROI, Sequence)
// pairs with event-driven cache invalidation.
package descriptor

import (
	"context"
	"errors"
	"fmt"

	"roilab/internal/roi"
	"roilab/internal/sequence"
)

// Sentinel errors returned by Compute.
var (
	// ErrUnsupported reports a dimensional mismatch: the descriptor's
	// operation is not geometrically meaningful for the ROI (volume of a 2D
	// shape, area of a 3D one).
	ErrUnsupported = errors.New("descriptor not supported for this roi")

	// ErrNilSequence reports a missing sequence where one is required, e.g.
	// for intensity sampling.
	ErrNilSequence = errors.New("descriptor requires a sequence")
)

// Descriptor is a named, stateless computation producing a scalar property
// of a ROI. Descriptors are registered once at startup and never cache their
// results; caching and its invalidation live in Cache.
type Descriptor interface {
	// ID returns the stable identifier used for registry lookup and cache
	// keys.
	ID() string
	// Name returns the human-readable display name.
	Name() string
	// Description explains what the descriptor measures.
	Description() string
	// Unit returns the unit of the result for the given sequence
	// calibration. The sequence may be nil.
	Unit(seq *sequence.Sequence) string
	// Compute evaluates the descriptor. It returns ErrUnsupported on
	// dimensional mismatch and ErrNilSequence when required context is
	// missing.
	Compute(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error)
	// NeedRecompute reports whether a previously computed value is stale
	// after the given ROI event.
	NeedRecompute(ev *roi.Event) bool
}

// Func is a Descriptor assembled from plain functions. The built-in
// descriptors are all Func singletons.
type Func struct {
	id          string
	name        string
	description string
	unit        func(seq *sequence.Sequence) string
	compute     func(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error)
	recompute   func(ev *roi.Event) bool
}

func (f *Func) ID() string          { return f.id }
func (f *Func) Name() string        { return f.name }
func (f *Func) Description() string { return f.description }

func (f *Func) Unit(seq *sequence.Sequence) string {
	if f.unit == nil {
		return ""
	}
	return f.unit(seq)
}

func (f *Func) Compute(ctx context.Context, r roi.ROI, seq *sequence.Sequence) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return f.compute(ctx, r, seq)
}

func (f *Func) NeedRecompute(ev *roi.Event) bool {
	if f.recompute == nil {
		return contentChanged(ev)
	}
	return f.recompute(ev)
}

// contentChanged is the default staleness predicate: geometric results
// survive name and color changes.
func contentChanged(ev *roi.Event) bool {
	return ev.Type == roi.Changed
}

// Registry is an ordered collection of descriptors with ID lookup.
type Registry struct {
	order []Descriptor
	byID  map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Descriptor)}
}

// DefaultRegistry creates a registry with every built-in descriptor
// registered.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, d := range Builtins() {
		// Built-in IDs are unique by construction.
		_ = reg.Register(d)
	}
	return reg
}

// Register adds a descriptor. Registering a duplicate ID is an error.
func (reg *Registry) Register(d Descriptor) error {
	if _, exists := reg.byID[d.ID()]; exists {
		return fmt.Errorf("descriptor %q already registered", d.ID())
	}
	reg.byID[d.ID()] = d
	reg.order = append(reg.order, d)
	return nil
}

// Get returns the descriptor with the given ID, or nil.
func (reg *Registry) Get(id string) Descriptor {
	return reg.byID[id]
}

// All returns the descriptors in registration order.
func (reg *Registry) All() []Descriptor {
	return append([]Descriptor(nil), reg.order...)
}

// Result pairs a descriptor with its computed value.
type Result struct {
	Descriptor Descriptor
	Value      float64
}

// ComputeAll evaluates every registered descriptor for the ROI. Descriptors
// reporting ErrUnsupported or ErrNilSequence are skipped, matching batch
// semantics; any other error aborts, cancellation included.
func (reg *Registry) ComputeAll(ctx context.Context, r roi.ROI, seq *sequence.Sequence) ([]Result, error) {
	var out []Result
	for _, d := range reg.order {
		v, err := d.Compute(ctx, r, seq)
		if errors.Is(err, ErrUnsupported) || errors.Is(err, ErrNilSequence) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("computing %s: %w", d.ID(), err)
		}
		out = append(out, Result{Descriptor: d, Value: v})
	}
	return out, nil
}
