package tabulon

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
)

// Test helpers for exercising renderers, pages and registries without a
// browser. They live in the main package so alternative widget
// implementations can reuse them in their own tests.

// RenderToString renders a component and returns its HTML, failing the test
// on render errors.
func RenderToString(tb testing.TB, c templ.Component) string {
	tb.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		tb.Fatalf("render: %v", err)
	}
	return buf.String()
}

// TestClient drives a registry's HTTP handler against one session the way
// the bundled client script would.
type TestClient struct {
	tb    testing.TB
	srv   *httptest.Server
	token string
}

// NewTestClient starts a test server for the registry and mints a token for
// the session. Callers own the session's bindings; the client only fetches.
func NewTestClient(tb testing.TB, reg *Registry, sess *Session) *TestClient {
	tb.Helper()
	token, err := reg.Token(sess)
	if err != nil {
		tb.Fatalf("mint token: %v", err)
	}
	c := &TestClient{
		tb:    tb,
		srv:   httptest.NewServer(reg.Handler()),
		token: token,
	}
	tb.Cleanup(c.srv.Close)
	return c
}

// Token returns the session token the client sends.
func (c *TestClient) Token() string {
	return c.token
}

// GetOutput fetches one output's payload and returns the response and body.
func (c *TestClient) GetOutput(name string) (*http.Response, []byte) {
	c.tb.Helper()
	return c.get("/_t/output/" + name + "?s=" + c.token)
}

// GetOutputWithToken fetches an output using an explicit token, for
// exercising the token-validation paths.
func (c *TestClient) GetOutputWithToken(name, token string) (*http.Response, []byte) {
	c.tb.Helper()
	return c.get("/_t/output/" + name + "?s=" + token)
}

// GetAsset fetches one bundle file.
func (c *TestClient) GetAsset(bundle, file string) (*http.Response, []byte) {
	c.tb.Helper()
	return c.get("/_t/assets/" + bundle + "/" + file)
}

func (c *TestClient) get(path string) (*http.Response, []byte) {
	c.tb.Helper()
	resp, err := http.Get(c.srv.URL + path)
	if err != nil {
		c.tb.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.tb.Fatalf("read body: %v", err)
	}
	return resp, body
}
