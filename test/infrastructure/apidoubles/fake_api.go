//go:build integration || unit || test

// Package apidoubles provides an in-process stand-in for provider REST APIs.
// Routes are registered per method and decoded path; every request is recorded.
package apidoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// RecordedRequest is a request as the fake API received it.
type RecordedRequest struct {
	Method      string
	Path        string // decoded path
	EscapedPath string // path as sent on the wire
	Query       url.Values
	Header      http.Header
	Body        []byte
}

type route struct {
	status int
	body   string
	header map[string]string
}

// FakeAPI is an httptest server answering canned JSON bodies.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]route
	requests []RecordedRequest
}

// NewFakeAPI starts a server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	api := &FakeAPI{routes: make(map[string]route)}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Close)
	return api
}

// On registers a canned answer for method and decoded path.
func (f *FakeAPI) On(method, path string, status int, body string) *FakeAPI {
	return f.OnWithHeader(method, path, status, body, nil)
}

// OnWithHeader registers a canned answer carrying extra response headers.
func (f *FakeAPI) OnWithHeader(method, path string, status int, body string, header map[string]string) *FakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = route{status: status, body: body, header: header}
	return f
}

// Requests returns every recorded request in arrival order.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestsTo returns the recorded requests matching method and decoded path.
func (f *FakeAPI) RequestsTo(method, path string) []RecordedRequest {
	var matched []RecordedRequest
	for _, req := range f.Requests() {
		if req.Method == method && req.Path == path {
			matched = append(matched, req)
		}
	}
	return matched
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		EscapedPath: r.URL.EscapedPath(),
		Query:       r.URL.Query(),
		Header:      r.Header.Clone(),
		Body:        body,
	})
	answer, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"404 Not Found"}`))
		return
	}

	for key, value := range answer.header {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(answer.status)
	_, _ = w.Write([]byte(answer.body))
}
