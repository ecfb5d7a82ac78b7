package tabulon

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// Page is the page-assembly context for one rendered page. It collects the
// asset bundles required by the components on the page and namespaces output
// ids for reusable compositions.
//
// The context is passed explicitly through the render tree; there is no
// process-global bundle registry. Bundles are collected while the tree is
// assembled and emitted once by Head.
type Page struct {
	shared *pageShared
	scope  []string
}

type pageShared struct {
	mu      sync.Mutex
	order   []string
	bundles map[string]AssetBundle
	token   string
}

// NewPage creates an empty page-assembly context at top scope.
func NewPage() *Page {
	return &Page{
		shared: &pageShared{bundles: make(map[string]AssetBundle)},
	}
}

// In returns a view of the page scoped under name. Mount points created
// through the returned view share the page's bundle set but resolve their
// ids inside the nested scope, so a reusable composition can be instantiated
// several times on one page without id collisions.
//
// Entering a scope derives a new view rather than mutating the page; leaving
// the scope is simply dropping the view.
func (p *Page) In(name string) *Page {
	scope := make([]string, len(p.scope), len(p.scope)+1)
	copy(scope, p.scope)
	return &Page{shared: p.shared, scope: append(scope, name)}
}

// ResolveID resolves a raw output id against the page's scope stack. The
// resolution is pure: the same raw id resolved through the same scope always
// yields the same result, and distinct scopes yield distinct results.
func (p *Page) ResolveID(id string) string {
	if len(p.scope) == 0 {
		return id
	}
	return strings.Join(p.scope, "-") + "-" + id
}

// Require records a bundle dependency of the page. Later registrations of
// the same (Name, Version) identity are deduplicated; first registration
// fixes the emission order.
func (p *Page) Require(b AssetBundle) {
	s := p.shared
	s.mu.Lock()
	defer s.mu.Unlock()

	key := b.Key()
	if _, ok := s.bundles[key]; ok {
		return
	}
	s.bundles[key] = b
	s.order = append(s.order, key)
}

// setToken attaches the session token Head emits as a meta tag.
func (p *Page) setToken(token string) {
	p.shared.mu.Lock()
	defer p.shared.mu.Unlock()
	p.shared.token = token
}

// Head returns a component that emits the tags for every required bundle,
// exactly once per bundle identity, in first-required order: stylesheets
// first, then scripts. If the page carries a session token it is emitted as
// a meta tag the client script reads back.
//
// Render Head after the body has been assembled so every mount point has had
// a chance to register its bundle.
func (p *Page) Head() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		s := p.shared
		s.mu.Lock()
		bundles := make([]AssetBundle, 0, len(s.order))
		for _, key := range s.order {
			bundles = append(bundles, s.bundles[key])
		}
		token := s.token
		s.mu.Unlock()

		if token != "" {
			if _, err := fmt.Fprintf(w, `<meta name="tabulon-session" content="%s">`, html.EscapeString(token)); err != nil {
				return err
			}
		}
		for _, b := range bundles {
			for _, css := range b.Stylesheets {
				if _, err := fmt.Fprintf(w, `<link rel="stylesheet" href="%s">`, b.AssetPath(css.Href)); err != nil {
					return err
				}
			}
			for _, js := range b.Scripts {
				var err error
				if js.Type != "" {
					_, err = fmt.Fprintf(w, `<script type="%s" src="%s"></script>`, js.Type, b.AssetPath(js.Src))
				} else {
					_, err = fmt.Fprintf(w, `<script src="%s"></script>`, b.AssetPath(js.Src))
				}
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}
