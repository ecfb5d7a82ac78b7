package tabulon

import (
	"embed"
	"path"
)

//go:embed assets/tabulator
var tabulatorFS embed.FS

// assetRoutePrefix is where Registry.Handler serves bundle files.
const assetRoutePrefix = "/_t/assets"

// Script is one script entry point of an asset bundle.
type Script struct {
	Src  string
	Type string // "module" for ES modules, empty for classic scripts
}

// Stylesheet is one stylesheet entry point of an asset bundle.
type Stylesheet struct {
	Href string
}

// AssetBundle declares a versioned set of client-side files backing a
// widget. Identity is (Name, Version); the page-assembly step includes each
// identity exactly once per page regardless of how many mount points
// requested it.
//
// Bundles are declared once at startup and read-only afterwards, so they can
// be shared freely across concurrently rendered pages.
type AssetBundle struct {
	Name        string
	Version     string
	Scripts     []Script
	Stylesheets []Stylesheet

	// AllFiles marks every file under Subdir as servable, not just the
	// declared entry points. Set it when the entry script lazily imports
	// sibling files.
	AllFiles bool

	// Source holds the bundle files; Subdir is the directory inside Source
	// where they live.
	Source embed.FS
	Subdir string
}

// Key returns the bundle identity used for page-level deduplication.
func (b AssetBundle) Key() string {
	return b.Name + "@" + b.Version
}

// AssetPath returns the route a bundle file is served under.
func (b AssetBundle) AssetPath(file string) string {
	return assetRoutePrefix + "/" + b.Name + "/" + file
}

// served reports whether file may be served from this bundle.
func (b AssetBundle) served(file string) bool {
	if b.AllFiles {
		return true
	}
	for _, s := range b.Scripts {
		if s.Src == file {
			return true
		}
	}
	for _, s := range b.Stylesheets {
		if s.Href == file {
			return true
		}
	}
	return false
}

// read returns the raw bytes of a bundle file.
func (b AssetBundle) read(file string) ([]byte, error) {
	return b.Source.ReadFile(path.Join(b.Subdir, file))
}

// TabulatorAssets returns the bundle for the embedded Tabulator build. The
// entry script is an ES module that discovers mount points and redraws them
// from output payloads; AllFiles is set because it lazily imports sibling
// files from the same directory.
func TabulatorAssets() AssetBundle {
	return AssetBundle{
		Name:    "tabulator",
		Version: "5.5.2",
		Scripts: []Script{
			{Src: "tableComponent.js", Type: "module"},
		},
		Stylesheets: []Stylesheet{
			{Href: "tabulator.min.css"},
		},
		AllFiles: true,
		Source:   tabulatorFS,
		Subdir:   "assets/tabulator",
	}
}
