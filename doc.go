// Package tabulon provides a custom tabular output binding for server-driven
// web UIs: a server-side table value is transformed into a JSON payload and
// delivered to a client-side table widget that hydrates a placeholder element
// emitted by the server.
//
// The package wires three pieces together: a pure transform from a Table to
// the wire payload, an asset bundle descriptor for the client widget's script
// and stylesheet, and a renderer adapter that binds the transform to a named
// output slot which a host page can re-evaluate whenever its inputs change.
//
// # Core Concepts
//
// A Table holds ordered, named columns of homogeneously typed scalars. It is
// built once on the server per evaluation and discarded after serialization:
//
//	t, err := tabulon.NewTable(
//	    tabulon.Col("name", tabulon.KindString, "ampere", "bohr"),
//	    tabulon.Col("score", tabulon.KindFloat, 9.5, 8.25),
//	)
//
// Transform converts a table into the exact payload the client widget parses,
// an object with three keys: data (rows), columns (labels) and type_hints
// (one stable type name per column). Passing anything that is not a *Table
// fails with ErrNotTable; no partial payload is ever produced.
//
// # Pages, Scopes and Mount Points
//
// A Page is an explicit page-assembly context threaded through the render
// tree. Mount points register their asset bundles on the page, and
// Page.Head emits each bundle's script and stylesheet tags exactly once per
// page no matter how many mount points requested it:
//
//	p, err := reg.NewPage(sess)
//	table := tabulon.OutputTabulator(p, "scores", tabulon.WithHeight("400px"))
//	head := p.Head() // one <script>, one <link> for the tabulator bundle
//
// Reusable compositions namespace their output ids through a scope stack.
// Page.In derives a scoped view of the same page; id resolution is pure and
// deterministic, so the same id in the same scope always resolves the same
// way, and the same id in different scopes never collides:
//
//	mod := p.In("panel1")
//	mod.ResolveID("scores") // "panel1-scores"
//
// # Binding Outputs
//
// Each live session owns an Outputs set. A producer is registered under an
// output name; every evaluation cycle calls the producer, runs the renderer's
// transform and either publishes a fresh payload or surfaces the error for
// that cycle:
//
//	sess := reg.NewSession()
//	sess.Outputs().BindTabulator("scores", func(ctx context.Context) (any, error) {
//	    return loadScores(ctx)
//	})
//
// An output moves through Idle, Computing and then Ready or Failed. Failures
// are never retried by this package and never reuse a stale payload; the next
// invalidation gets a clean attempt.
//
// # Delivery
//
// The Registry manages live sessions and exposes an http.Handler that serves
// output payloads as JSON and bundle files verbatim from their embedded
// source directory. Session identity round-trips through the client as a
// signed (optionally encrypted) token minted at page render and emitted by
// Page.Head as a meta tag; the bundled client script reads the token, fetches
// payloads and redraws the widget in place.
//
//	reg := tabulon.NewRegistry(secretKey)
//	http.Handle("/_t/", reg.Handler())
//
// # Design Rationale
//
// The package favors explicit state over ambient machinery:
//   - Explicit page-assembly context (no process-global bundle registry)
//   - Explicit scope stack for id resolution (no mutable global namespace)
//   - A typed TableRenderer interface (no runtime duck typing)
//   - Explicit session registration and teardown
//
// The transform is pure and safe to run concurrently across independent
// sessions; the only shared structure is the per-page bundle set, which is
// written during assembly and read once when the head is rendered.
package tabulon
