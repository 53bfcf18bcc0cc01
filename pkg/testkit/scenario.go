// Package testkit drives the sandbox API from JSON scenario files.
//
// A flow file is a JSON array of steps run in order against one handler,
// sharing state (the database behind the handler and captured variables):
//
//	[
//	  {"name": "login", "method": "POST", "url": "/api/auth/login",
//	   "body": {"email": "asha@example.com", "password": "secret1"},
//	   "expectedCode": 200, "capture": {"token": "token"}},
//	  {"name": "add to cart", "method": "POST", "url": "/api/cart",
//	   "auth": "{{token}}", "body": {"productId": "{{productId}}", "quantity": 2},
//	   "expectedCode": 200, "expect": [{"quantity": 2}]}
//	]
//
// "expect" is a subset match: every key present in it must equal the
// response, extra response keys are ignored, arrays must have the same length.
// {{name}} placeholders in url, auth, headers and body are replaced with
// variables captured by earlier steps or seeded with Runner.Set.
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Step is one request in a flow.
type Step struct {
	Name   string            `json:"name"`
	Method string            `json:"method"`
	URL    string            `json:"url"`
	Auth   string            `json:"auth"`
	Header map[string]string `json:"headers"`

	Body     json.RawMessage `json:"body"`
	BodyFile string          `json:"bodyFile"`

	ExpectedCode  int             `json:"expectedCode"`
	Expect        json.RawMessage `json:"expect"`
	ExpectFile    string          `json:"expectFile"`
	ExpectMessage string          `json:"expectMessage"`

	// Capture maps a variable name to a dotted path into the response body
	// ("token", "0.product._id", "items.1.quantity").
	Capture map[string]string `json:"capture"`

	// Mocks intercept outgoing pkg/http calls made while the step runs.
	Mocks []MockStep `json:"mocks"`

	dir string
}

// LoadFlow reads a flow file.
func LoadFlow(path string) ([]*Step, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var steps []*Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	for i, s := range steps {
		s.dir = filepath.Dir(abs)
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %s step %d: %w", filepath.Base(abs), i, err)
		}
	}
	return steps, nil
}

func (s *Step) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("url is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.Method == "" {
		s.Method = "GET"
	}
	if len(s.Body) > 0 && s.BodyFile != "" {
		return fmt.Errorf("body and bodyFile are mutually exclusive")
	}
	return nil
}

func (s *Step) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// requestBody returns the raw body, reading bodyFile when set.
func (s *Step) requestBody() ([]byte, error) {
	if s.BodyFile != "" {
		return os.ReadFile(s.resolve(s.BodyFile))
	}
	return s.Body, nil
}

// expected returns the expected body, reading expectFile when set.
func (s *Step) expected() ([]byte, error) {
	if s.ExpectFile != "" {
		return os.ReadFile(s.resolve(s.ExpectFile))
	}
	return s.Expect, nil
}
