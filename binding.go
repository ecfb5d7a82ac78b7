package tabulon

import (
	"context"
	"fmt"
	"sync"
)

// OutputState tracks where one bound output is in its evaluation cycle.
type OutputState int

const (
	// StateIdle means no evaluation has run yet.
	StateIdle OutputState = iota

	// StateComputing means an evaluation cycle is in flight.
	StateComputing

	// StateReady means the last cycle produced a payload.
	StateReady

	// StateFailed means the last cycle errored. The error replaces the
	// payload; a stale payload is never served in its place.
	StateFailed
)

func (s OutputState) String() string {
	switch s {
	case StateComputing:
		return "computing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// binding is one named output: its renderer, its producer and the result of
// its most recent evaluation cycle.
type binding struct {
	name     string
	renderer TableRenderer
	producer Producer

	state   OutputState
	payload *Payload
	err     error
	dirty   bool
}

// Outputs holds the bound outputs of one session. Binding happens at page
// setup; evaluation happens whenever the host decides an output's inputs
// changed. Evaluations of one output are serialized by the caller (one
// logical evaluation per output per change event); the mutex only guards the
// map and the per-binding bookkeeping.
type Outputs struct {
	mu       sync.Mutex
	bindings map[string]*binding
}

func newOutputs() *Outputs {
	return &Outputs{bindings: make(map[string]*binding)}
}

// Bind registers producer as the value source for name, rendered through r.
// A name can be bound once; rebinding fails with ErrOutputBound.
func (o *Outputs) Bind(name string, r TableRenderer, producer Producer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.bindings[name]; ok {
		return fmt.Errorf("%w: %q", ErrOutputBound, name)
	}
	o.bindings[name] = &binding{
		name:     name,
		renderer: r,
		producer: producer,
		state:    StateIdle,
		dirty:    true,
	}
	return nil
}

// BindTabulator binds producer under name with the tabulator renderer.
func (o *Outputs) BindTabulator(name string, producer Producer) error {
	return o.Bind(name, TabulatorRenderer{}, producer)
}

// Invalidate marks name dirty so the next Evaluate runs a fresh cycle
// instead of serving the cached payload. This is the hook for the host's
// change detection.
func (o *Outputs) Invalidate(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.bindings[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrOutputNotFound, name)
	}
	b.dirty = true
	return nil
}

// State returns the current state of the named output.
func (o *Outputs) State(name string) (OutputState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b, ok := o.bindings[name]
	if !ok {
		return StateIdle, fmt.Errorf("%w: %q", ErrOutputNotFound, name)
	}
	return b.state, nil
}

// Names returns the bound output names.
func (o *Outputs) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	names := make([]string, 0, len(o.bindings))
	for name := range o.bindings {
		names = append(names, name)
	}
	return names
}

// Evaluate runs one evaluation cycle for name and returns its payload. A
// clean Ready output returns the cached payload without calling the
// producer; a dirty or never-evaluated output runs the producer and the
// renderer's transform.
//
// On success the output is Ready and its payload replaced. On any error,
// whether the producer failed or the transform rejected the value, the
// output is Failed, its payload is dropped and the error is returned for the
// host's error-display path. Failures are not retried here; the next
// Invalidate plus Evaluate is a fresh attempt with no residue of the prior
// failure.
func (o *Outputs) Evaluate(ctx context.Context, name string) (Payload, error) {
	o.mu.Lock()
	b, ok := o.bindings[name]
	if !ok {
		o.mu.Unlock()
		return Payload{}, fmt.Errorf("%w: %q", ErrOutputNotFound, name)
	}
	if !b.dirty {
		switch b.state {
		case StateReady:
			p := *b.payload
			o.mu.Unlock()
			return p, nil
		case StateFailed:
			err := b.err
			o.mu.Unlock()
			return Payload{}, err
		}
	}
	b.state = StateComputing
	b.dirty = false
	producer, renderer := b.producer, b.renderer
	o.mu.Unlock()

	var (
		payload Payload
		err     error
	)
	value, perr := producer(ctx)
	if perr != nil {
		err = &ProducerError{Output: name, Err: perr}
	} else {
		payload, err = renderer.Transform(value)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		b.state = StateFailed
		b.payload = nil
		b.err = err
		return Payload{}, err
	}
	b.state = StateReady
	b.payload = &payload
	b.err = nil
	return payload, nil
}
