package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	sfhttp "github.com/sparkcrackers/storefront/pkg/http"
)

// MockStep answers outgoing requests whose method and URL prefix match.
// An empty Method or MatchURL matches anything. Times limits how often the
// step answers (0 = unlimited); exhausted steps fall through to the next.
type MockStep struct {
	Method   string          `json:"method"`
	MatchURL string          `json:"matchUrl"`
	Status   int             `json:"status"`
	Body     json.RawMessage `json:"body"`
	Times    int             `json:"times"`
}

// Call records one intercepted request.
type Call struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockTransport is an http.RoundTripper that serves MockSteps instead of
// touching the network. Unmatched requests fail with an error.
type MockTransport struct {
	mu    sync.Mutex
	steps []*mockEntry
	calls []Call
}

type mockEntry struct {
	step  MockStep
	count int
}

func NewMockTransport(steps ...MockStep) *MockTransport {
	mt := &MockTransport{}
	for _, s := range steps {
		mt.steps = append(mt.steps, &mockEntry{step: s})
	}
	return mt
}

// Install swaps pkg/http's DefaultClient transport for mt until the test ends.
func (mt *MockTransport) Install(t testing.TB) *MockTransport {
	t.Helper()
	prev := sfhttp.DefaultClient.Transport
	sfhttp.DefaultClient.Transport = mt
	t.Cleanup(func() { sfhttp.DefaultClient.Transport = prev })
	return mt
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, Call{Method: req.Method, URL: req.URL.String(), Header: req.Header.Clone(), Body: body})

	for _, e := range mt.steps {
		if e.step.Times > 0 && e.count >= e.step.Times {
			continue
		}
		if e.step.Method != "" && !strings.EqualFold(e.step.Method, req.Method) {
			continue
		}
		if e.step.MatchURL != "" && !strings.HasPrefix(req.URL.String(), e.step.MatchURL) {
			continue
		}
		e.count++
		return respond(req, e.step), nil
	}
	return nil, fmt.Errorf("testkit: no mock for %s %s", req.Method, req.URL)
}

// Calls returns every intercepted request in order.
func (mt *MockTransport) Calls() []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]Call(nil), mt.calls...)
}

// Unused returns the steps that never answered a request.
func (mt *MockTransport) Unused() []MockStep {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var out []MockStep
	for _, e := range mt.steps {
		if e.count == 0 {
			out = append(out, e.step)
		}
	}
	return out
}

func respond(req *http.Request, s MockStep) *http.Response {
	code := s.Status
	if code == 0 {
		code = http.StatusOK
	}
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     h,
		Body:       io.NopCloser(bytes.NewReader(s.Body)),
		Request:    req,
	}
}
