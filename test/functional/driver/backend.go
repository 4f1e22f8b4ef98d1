package driver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// BackendCall is one request received by the fake task-tracking backend.
type BackendCall struct {
	Method  string
	Path    string
	Query   map[string]string
	Body    map[string]any
	Project string
	File    string
}

type cannedResponse struct {
	status int
	body   string
}

// FakeBackend is an in-process task-tracking API. Unknown routes answer with
// an empty success body of the right shape.
type FakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	down     bool
	canned   map[string]cannedResponse
	calls    []BackendCall
	imported int
}

func NewFakeBackend() *FakeBackend {
	backend := &FakeBackend{canned: map[string]cannedResponse{}}
	backend.server = httptest.NewServer(http.HandlerFunc(backend.serve))
	return backend
}

func (b *FakeBackend) URL() string {
	return b.server.URL
}

func (b *FakeBackend) Close() {
	b.server.Close()
}

// SetDown makes every request fail at the transport level.
func (b *FakeBackend) SetDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

// Answer registers the response for "METHOD /path".
func (b *FakeBackend) Answer(route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canned[route] = cannedResponse{status: status, body: body}
}

func (b *FakeBackend) SetImported(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.imported = n
}

func (b *FakeBackend) Calls(route string) []BackendCall {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []BackendCall
	for _, call := range b.calls {
		if call.Method+" "+call.Path == route {
			out = append(out, call)
		}
	}
	return out
}

func (b *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	down := b.down
	b.mu.Unlock()

	if down {
		hijackAndClose(w)
		return
	}

	call := BackendCall{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}}
	for key := range r.URL.Query() {
		call.Query[key] = r.URL.Query().Get(key)
	}

	if r.URL.Path == "/import" {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			call.Project = r.FormValue("project")
			if file, _, err := r.FormFile("file"); err == nil {
				content, _ := io.ReadAll(file)
				call.File = string(content)
			}
		}
	} else if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
		}
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	canned, found := b.canned[r.Method+" "+r.URL.Path]
	imported := b.imported
	b.mu.Unlock()

	if found {
		w.WriteHeader(canned.status)
		_, _ = io.WriteString(w, canned.body)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/elapsed":
		_, _ = io.WriteString(w, `[]`)
	case "/projects":
		_, _ = io.WriteString(w, `{"projects":[]}`)
	case "/report":
		_, _ = io.WriteString(w, `{"report":""}`)
	case "/diff":
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html></html>`)
	case "/import":
		_ = json.NewEncoder(w).Encode(map[string]any{"imported": imported})
	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

func hijackAndClose(w http.ResponseWriter) {
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	conn, _, err := hijacker.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}
