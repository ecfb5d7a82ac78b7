package tabulon

import (
	"context"

	"github.com/a-h/templ"
)

// Producer computes the value for a bound output. The host page decides when
// an output needs recomputation and calls the producer once per evaluation
// cycle; the returned value is handed to the renderer's Transform.
//
// Producers take only a context: any other inputs they need are captured in
// the closure. An error terminates the cycle and marks the output Failed.
type Producer func(ctx context.Context) (any, error)

// TableRenderer binds a tabular server value to a client-side widget. It is
// the typed counterpart of a dynamically dispatched renderer: the mount
// point emits the placeholder element the client script hydrates, and the
// transform converts a produced value into the wire payload.
//
// Implementations must keep Transform pure; it may run concurrently across
// independent sessions.
type TableRenderer interface {
	// MountPoint emits the placeholder element for an output, with its id
	// resolved through the page's scope and the widget's asset bundle
	// registered on the page.
	MountPoint(p *Page, id string, opts ...MountOption) templ.Component

	// Transform converts the produced value into the wire payload. A value
	// the renderer does not recognize fails with ErrNotTable.
	Transform(v any) (Payload, error)
}
