package tabulon

import (
	"strings"
	"testing"
)

func TestHeadIncludesBundleOncePerPage(t *testing.T) {
	p := NewPage()

	// Two mount points, one bundle identity.
	_ = OutputTabulator(p, "first")
	_ = OutputTabulator(p, "second")

	head := RenderToString(t, p.Head())

	if got := strings.Count(head, "tableComponent.js"); got != 1 {
		t.Errorf("script included %d times, want 1\nhead: %s", got, head)
	}
	if got := strings.Count(head, "tabulator.min.css"); got != 1 {
		t.Errorf("stylesheet included %d times, want 1\nhead: %s", got, head)
	}
}

func TestHeadEmitsBundlesInFirstRequiredOrder(t *testing.T) {
	other := AssetBundle{
		Name:    "sparkline",
		Version: "1.0.0",
		Scripts: []Script{{Src: "spark.js", Type: "module"}},
	}

	p := NewPage()
	p.Require(other)
	p.Require(TabulatorAssets())
	p.Require(other) // dedup keeps the first position

	head := RenderToString(t, p.Head())
	sparkAt := strings.Index(head, "spark.js")
	tableAt := strings.Index(head, "tableComponent.js")
	if sparkAt == -1 || tableAt == -1 {
		t.Fatalf("head missing bundle tags: %s", head)
	}
	if sparkAt > tableAt {
		t.Errorf("bundle order not preserved: %s", head)
	}
	if got := strings.Count(head, "spark.js"); got != 1 {
		t.Errorf("spark.js included %d times, want 1", got)
	}
}

func TestHeadEmitsSessionMeta(t *testing.T) {
	p := NewPage()
	p.setToken("abc.def")

	head := RenderToString(t, p.Head())
	if !strings.Contains(head, `<meta name="tabulon-session" content="abc.def">`) {
		t.Errorf("head missing session meta: %s", head)
	}
}

func TestResolveID(t *testing.T) {
	p := NewPage()

	tests := []struct {
		name string
		page *Page
		id   string
		want string
	}{
		{"top scope", p, "table", "table"},
		{"one level", p.In("panel"), "table", "panel-table"},
		{"two levels", p.In("panel").In("left"), "table", "panel-left-table"},
		{"sibling scope", p.In("other"), "table", "other-table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.ResolveID(tt.id); got != tt.want {
				t.Errorf("ResolveID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestResolveIDIsIdempotentPerScope(t *testing.T) {
	p := NewPage().In("mod")
	first := p.ResolveID("table")
	for i := 0; i < 10; i++ {
		if got := p.ResolveID("table"); got != first {
			t.Fatalf("ResolveID changed between calls: %q vs %q", got, first)
		}
	}
}

func TestScopesDoNotCollide(t *testing.T) {
	p := NewPage()
	top := p.ResolveID("table")
	nested := p.In("mod").ResolveID("table")
	if top == nested {
		t.Errorf("nested scope resolved to top-scope id %q", top)
	}

	a := p.In("a").ResolveID("table")
	b := p.In("b").ResolveID("table")
	if a == b {
		t.Errorf("distinct scopes resolved to the same id %q", a)
	}
}

func TestScopedViewsShareBundleSet(t *testing.T) {
	p := NewPage()
	_ = OutputTabulator(p.In("a"), "table")
	_ = OutputTabulator(p.In("b"), "table")

	head := RenderToString(t, p.Head())
	if got := strings.Count(head, "tableComponent.js"); got != 1 {
		t.Errorf("script included %d times, want 1", got)
	}
}
