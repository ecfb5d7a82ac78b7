package tabulon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
)

func newBoundSession(t *testing.T, reg *Registry) *Session {
	t.Helper()
	sess := reg.NewSession()
	err := sess.Outputs().BindTabulator("tabulatorTable", func(ctx context.Context) (any, error) {
		tbl, err := NewTable(
			Col("a", KindInt, int64(1), int64(3)),
			Col("b", KindFloat, 2.5, 4.5),
		)
		return tbl, err
	})
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	return sess
}

func TestHandlerServesPayload(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := newBoundSession(t, reg)
	client := NewTestClient(t, reg, sess)

	resp, body := client.GetOutput("tabulatorTable")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	keys := make([]string, 0, len(got))
	for k := range got {
		keys = append(keys, k)
	}
	if len(keys) != 3 {
		t.Errorf("payload has keys %v, want exactly data, columns, type_hints", keys)
	}
	if want := []any{"a", "b"}; !reflect.DeepEqual(got["columns"], want) {
		t.Errorf("columns = %v, want %v", got["columns"], want)
	}
	if want := []any{"int64", "float64"}; !reflect.DeepEqual(got["type_hints"], want) {
		t.Errorf("type_hints = %v, want %v", got["type_hints"], want)
	}
	if want := []any{[]any{1.0, 2.5}, []any{3.0, 4.5}}; !reflect.DeepEqual(got["data"], want) {
		t.Errorf("data = %v, want %v", got["data"], want)
	}
}

func TestHandlerRejectsBadTokens(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := newBoundSession(t, reg)
	client := NewTestClient(t, reg, sess)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered", client.Token() + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := client.GetOutputWithToken("tabulatorTable", tt.token)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", resp.StatusCode, body)
			}
			var got map[string]string
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("error body is not JSON: %s", body)
			}
			if got["error"] == "" {
				t.Errorf("error body missing message: %s", body)
			}
		})
	}
}

func TestHandlerUnknownOutput(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := newBoundSession(t, reg)
	client := NewTestClient(t, reg, sess)

	resp, _ := client.GetOutput("unbound")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandlerClosedSession(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := newBoundSession(t, reg)
	client := NewTestClient(t, reg, sess)

	reg.CloseSession(sess)

	resp, _ := client.GetOutput("tabulatorTable")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after CloseSession = %d, want 404", resp.StatusCode)
	}
}

func TestHandlerProducerFailureBody(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := reg.NewSession()
	err := sess.Outputs().BindTabulator("broken", func(ctx context.Context) (any, error) {
		return nil, errors.New("db is down")
	})
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	client := NewTestClient(t, reg, sess)

	resp, body := client.GetOutput("broken")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("error body is not JSON: %s", body)
	}
	if !strings.Contains(got["error"], "db is down") {
		t.Errorf("error body = %q, want producer failure surfaced", got["error"])
	}
	if strings.Contains(string(body), "data") {
		t.Errorf("error body leaks payload keys: %s", body)
	}
}

func TestHandlerServesBundleAssets(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := reg.NewSession()
	client := NewTestClient(t, reg, sess)

	tests := []struct {
		file     string
		wantType string
	}{
		{"tableComponent.js", "application/javascript"},
		{"formatters.js", "application/javascript"}, // sibling file, AllFiles
		{"tabulator.min.css", "text/css"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			resp, body := client.GetAsset("tabulator", tt.file)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
			if len(body) == 0 {
				t.Error("empty asset body")
			}
		})
	}
}

func TestHandlerAssetNotFound(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := reg.NewSession()
	client := NewTestClient(t, reg, sess)

	tests := []struct {
		name   string
		bundle string
		file   string
	}{
		{"unknown bundle", "nope", "x.js"},
		{"missing file", "tabulator", "missing.js"},
		{"traversal", "tabulator", "../../go.mod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := client.GetAsset(tt.bundle, tt.file)
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("status = %d, want 404", resp.StatusCode)
			}
		})
	}
}

func TestSensitiveTokensAreOpaqueAndRoundTrip(t *testing.T) {
	reg := NewRegistry([]byte("test-key")).Sensitive()
	sess := newBoundSession(t, reg)
	client := NewTestClient(t, reg, sess)

	if strings.Contains(client.Token(), sess.ID().String()) {
		t.Error("encrypted token exposes the session id")
	}

	resp, _ := client.GetOutput("tabulatorTable")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestNewPageCarriesToken(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))
	sess := reg.NewSession()

	page, err := reg.NewPage(sess)
	if err != nil {
		t.Fatalf("NewPage() error: %v", err)
	}
	head := RenderToString(t, page.Head())
	if !strings.Contains(head, `meta name="tabulon-session"`) {
		t.Errorf("head missing session meta: %s", head)
	}
}

func TestServeBundleCollisionPanics(t *testing.T) {
	reg := NewRegistry([]byte("test-key"))

	defer func() {
		if recover() == nil {
			t.Error("ServeBundle() did not panic on version collision")
		}
	}()
	reg.ServeBundle(AssetBundle{Name: "tabulator", Version: "6.0.0"})
}
