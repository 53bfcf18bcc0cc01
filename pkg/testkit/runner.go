package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runner executes flows against one handler and carries variables between
// steps and flows.
type Runner struct {
	handler http.Handler
	vars    map[string]string
}

func NewRunner(handler http.Handler) *Runner {
	return &Runner{handler: handler, vars: map[string]string{}}
}

// Set seeds a variable for {{name}} substitution.
func (r *Runner) Set(name, value string) *Runner {
	r.vars[name] = value
	return r
}

// Var returns a captured variable.
func (r *Runner) Var(name string) string { return r.vars[name] }

// RunFile runs every step of a flow file as a subtest. A failing step stops
// the flow since later steps depend on its state.
func (r *Runner) RunFile(t *testing.T, path string) {
	t.Helper()
	steps, err := LoadFlow(path)
	require.NoError(t, err)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t.Run(name, func(t *testing.T) {
		for _, s := range steps {
			if !t.Run(s.Name, func(t *testing.T) { r.runStep(t, s) }) {
				return
			}
		}
	})
}

// RunDir runs every *.json flow in dir in lexical order.
func (r *Runner) RunDir(t *testing.T, dir string) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "no flow files in %s", dir)
	sort.Strings(files)
	for _, f := range files {
		r.RunFile(t, f)
	}
}

func (r *Runner) runStep(t *testing.T, s *Step) {
	t.Helper()

	raw, err := s.requestBody()
	require.NoError(t, err, "read request body")

	var body *bytes.Reader
	if len(raw) > 0 {
		body = bytes.NewReader([]byte(r.expand(string(raw))))
	} else {
		body = bytes.NewReader(nil)
	}

	if len(s.Mocks) > 0 {
		mt := NewMockTransport(s.Mocks...).Install(t)
		defer func() {
			for _, m := range mt.Unused() {
				assert.Fail(t, fmt.Sprintf("mock %s %s was never called", m.Method, m.MatchURL))
			}
		}()
	}

	req := httptest.NewRequest(strings.ToUpper(s.Method), r.expand(s.URL), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := r.expand(s.Auth); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range s.Header {
		req.Header.Set(k, r.expand(v))
	}

	rec := httptest.NewRecorder()
	r.handler.ServeHTTP(rec, req)

	require.Equal(t, s.ExpectedCode, rec.Code, "%s %s\nbody: %s", s.Method, s.URL, rec.Body.String())

	if exp, err := s.expected(); assert.NoError(t, err) && len(exp) > 0 {
		AssertJSONSubset(t, []byte(r.expand(string(exp))), rec.Body.Bytes(), s.Name)
	}

	if s.ExpectMessage != "" || len(s.Capture) > 0 {
		var decoded interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "decode response")

		if s.ExpectMessage != "" {
			msg, _ := Lookup(decoded, "message")
			assert.Equal(t, s.ExpectMessage, msg)
		}
		for name, path := range s.Capture {
			v, ok := Lookup(decoded, path)
			require.True(t, ok, "capture %s: path %q not in response", name, path)
			r.vars[name] = fmt.Sprint(v)
		}
	}
}

// expand replaces {{name}} placeholders with variables.
func (r *Runner) expand(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	for k, v := range r.vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}
