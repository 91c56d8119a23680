package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// NotifierCall is one request received by a FakeNotifier.
type NotifierCall struct {
	Path      string
	RequestID string
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// FakeNotifier is an httptest-backed stand-in for the chat service.
type FakeNotifier struct {
	Server *httptest.Server

	mu     sync.Mutex
	calls  []NotifierCall
	status int
	reply  any
}

// NewFakeNotifier starts a notifier that answers 200 with reply encoded as
// JSON (no body when reply is nil). It is closed when the test ends.
func NewFakeNotifier(t *testing.T, reply any) *FakeNotifier {
	t.Helper()

	f := &FakeNotifier{status: http.StatusOK, reply: reply}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to configure the notifier client with.
func (f *FakeNotifier) URL() string {
	return f.Server.URL
}

// SetStatus changes the status code returned for subsequent calls.
func (f *FakeNotifier) SetStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = code
}

// Calls returns a copy of the requests received so far.
func (f *FakeNotifier) Calls() []NotifierCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]NotifierCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeNotifier) serve(w http.ResponseWriter, r *http.Request) {
	var call NotifierCall
	_ = json.NewDecoder(r.Body).Decode(&call)
	call.Path = r.URL.Path
	call.RequestID = r.Header.Get("X-Request-ID")

	f.mu.Lock()
	f.calls = append(f.calls, call)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if reply != nil {
		_ = json.NewEncoder(w).Encode(reply)
	}
}

// UnreachableURL returns a base URL that refuses connections.
func UnreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
