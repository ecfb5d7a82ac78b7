package tabulon

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session owns the outputs bound for one live page. It is created when the
// page is set up, addressed by the token the page carries, and torn down
// with CloseSession when the page session ends.
type Session struct {
	id      uuid.UUID
	outputs *Outputs
}

// ID returns the session's identity.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Outputs returns the session's output bindings.
func (s *Session) Outputs() *Outputs {
	return s.outputs
}

// Registry manages live sessions and serves output payloads and bundle
// assets over HTTP.
type Registry struct {
	mu        sync.RWMutex
	encoder   *Encoder
	sensitive bool
	sessions  map[uuid.UUID]*Session
	bundles   map[string]AssetBundle

	// OnError is called when serving an output fails: bad tokens, unknown
	// sessions or outputs, producer failures and transform rejections all
	// land here. Customize it to change how errors reach the client; the
	// default maps the package's error taxonomy to JSON error bodies.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewRegistry creates a registry with the given token key. The tabulator
// bundle is registered for asset serving out of the box.
func NewRegistry(key []byte) *Registry {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("tabulon: failed to create encoder: %v", err))
	}

	reg := &Registry{
		encoder:  enc,
		sessions: make(map[uuid.UUID]*Session),
		bundles:  make(map[string]AssetBundle),
	}
	reg.ServeBundle(TabulatorAssets())

	reg.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		switch {
		case IsTokenError(err):
			writeJSONError(w, http.StatusBadRequest, "invalid session token")
		case errorsIsAny(err, ErrSessionNotFound, ErrOutputNotFound):
			writeJSONError(w, http.StatusNotFound, err.Error())
		default:
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
	}

	return reg
}

// Sensitive switches session tokens from signed to encrypted. Signed tokens
// are inspectable but tamper-proof; encrypted tokens are opaque to clients.
func (reg *Registry) Sensitive() *Registry {
	reg.sensitive = true
	return reg
}

// NewSession creates and registers a session.
func (reg *Registry) NewSession() *Session {
	s := &Session{id: uuid.New(), outputs: newOutputs()}
	reg.mu.Lock()
	reg.sessions[s.id] = s
	reg.mu.Unlock()
	return s
}

// CloseSession tears a session down. Requests carrying its token fail with
// ErrSessionNotFound afterwards.
func (reg *Registry) CloseSession(s *Session) {
	reg.mu.Lock()
	delete(reg.sessions, s.id)
	reg.mu.Unlock()
}

// Session looks a session up by id.
func (reg *Registry) Session(id uuid.UUID) (*Session, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	s, ok := reg.sessions[id]
	return s, ok
}

// Token mints the token that addresses a session from the client.
func (reg *Registry) Token(s *Session) (string, error) {
	return reg.encoder.Encode(map[string]any{"sid": s.id.String()}, reg.sensitive)
}

// NewPage creates a page-assembly context carrying the session's token.
// Page.Head emits the token as a meta tag; the client script sends it back
// with every output request.
func (reg *Registry) NewPage(s *Session) (*Page, error) {
	token, err := reg.Token(s)
	if err != nil {
		return nil, err
	}
	p := NewPage()
	p.setToken(token)
	return p, nil
}

// ServeBundle registers a bundle for asset serving. Re-registering the same
// identity is a no-op; registering a different version under a name already
// taken panics, since bundles are declared once at startup.
func (reg *Registry) ServeBundle(b AssetBundle) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if existing, ok := reg.bundles[b.Name]; ok {
		if existing.Key() != b.Key() {
			panic(fmt.Sprintf("tabulon: bundle collision for %q: %s vs %s", b.Name, existing.Key(), b.Key()))
		}
		return
	}
	reg.bundles[b.Name] = b
}

// Handler returns the HTTP handler for output and asset routes. Mount it at
// "/_t/" in your application.
func (reg *Registry) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /_t/output/{output}", reg.handleOutput)
	mux.HandleFunc("GET /_t/assets/{bundle}/{file...}", reg.handleAsset)
	return mux
}

// handleOutput evaluates one bound output and writes its payload as JSON.
// Errors go through OnError; no partial payload is ever written.
func (reg *Registry) handleOutput(w http.ResponseWriter, r *http.Request) {
	sess, err := reg.sessionFromRequest(r)
	if err != nil {
		reg.OnError(w, r, err)
		return
	}

	payload, err := sess.Outputs().Evaluate(r.Context(), r.PathValue("output"))
	if err != nil {
		reg.OnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// sessionFromRequest resolves the session token carried in the "s" query
// parameter or the Tabulon-Session header.
func (reg *Registry) sessionFromRequest(r *http.Request) (*Session, error) {
	token := r.URL.Query().Get("s")
	if token == "" {
		token = r.Header.Get("Tabulon-Session")
	}
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrInvalidToken)
	}

	claims, err := reg.encoder.Decode(token, reg.sensitive)
	if err != nil {
		return nil, wrapTokenError(err)
	}
	sid, ok := claims["sid"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	id, err := uuid.Parse(sid)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session id", ErrInvalidToken)
	}

	sess, ok := reg.Session(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// handleAsset serves one bundle file verbatim from its embedded source.
func (reg *Registry) handleAsset(w http.ResponseWriter, r *http.Request) {
	reg.mu.RLock()
	b, ok := reg.bundles[r.PathValue("bundle")]
	reg.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	file := path.Clean(r.PathValue("file"))
	if file == "." || strings.HasPrefix(file, "..") || !b.served(file) {
		http.NotFound(w, r)
		return
	}

	data, err := b.read(file)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(file))
	_, _ = w.Write(data)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
