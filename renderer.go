package tabulon

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// OutputClass is the discovery class the bundled client script scans for to
// find mount points.
const OutputClass = "tabulon-output"

// defaultHeight is applied to mount points that do not override it.
const defaultHeight = "200px"

// MountOption configures a mount point.
type MountOption func(*mountConfig)

type mountConfig struct {
	height string
}

// WithHeight overrides the mount point's inline height (default "200px").
func WithHeight(height string) MountOption {
	return func(c *mountConfig) {
		c.height = height
	}
}

// TabulatorRenderer renders tables with the embedded Tabulator widget. It is
// the concrete TableRenderer this package ships; alternative widgets
// implement the same interface.
type TabulatorRenderer struct{}

var _ TableRenderer = TabulatorRenderer{}

// MountPoint emits the placeholder element for a tabulator output.
func (TabulatorRenderer) MountPoint(p *Page, id string, opts ...MountOption) templ.Component {
	return OutputTabulator(p, id, opts...)
}

// Transform converts a produced *Table into the wire payload.
func (TabulatorRenderer) Transform(v any) (Payload, error) {
	return Transform(v)
}

// UI is the declarative factory for a bound output: it emits the mount
// point for name with default sizing. Use it when the output is declared in
// the page rather than derived from its binding.
func (r TabulatorRenderer) UI(p *Page, name string) templ.Component {
	return r.MountPoint(p, name)
}

// OutputTabulator returns the mount-point element for a tabulator output.
//
// The element carries the id resolved through the page's current scope, the
// fixed discovery class and an inline height. The tabulator asset bundle is
// registered on the page at assembly time, so Head includes its script and
// stylesheet exactly once however many mount points the page holds.
func OutputTabulator(p *Page, id string, opts ...MountOption) templ.Component {
	cfg := mountConfig{height: defaultHeight}
	for _, opt := range opts {
		opt(&cfg)
	}

	p.Require(TabulatorAssets())
	resolved := p.ResolveID(id)

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="%s" class="%s" style="height: %s"></div>`,
			html.EscapeString(resolved), OutputClass, html.EscapeString(cfg.height))
		return err
	})
}
