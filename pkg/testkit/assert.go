package testkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// AssertJSONSubset fails t when actual does not contain expected (see the
// package doc for subset rules). The failure shows a go-cmp diff of the
// pruned actual value against expected.
func AssertJSONSubset(t testing.TB, expected, actual []byte, msgAndArgs ...interface{}) bool {
	t.Helper()
	if len(expected) == 0 {
		return true
	}

	var exp, act interface{}
	if err := json.Unmarshal(expected, &exp); err != nil {
		return assert.Fail(t, fmt.Sprintf("expected value is not JSON: %v", err), msgAndArgs...)
	}
	if err := json.Unmarshal(actual, &act); err != nil {
		return assert.Fail(t, fmt.Sprintf("response is not JSON: %v\nbody: %s", err, actual), msgAndArgs...)
	}

	pruned := prune(exp, act)
	if diff := cmp.Diff(exp, pruned); diff != "" {
		return assert.Fail(t, "response mismatch (-expected +actual):\n"+diff, msgAndArgs...)
	}
	return true
}

// prune drops from act every object key exp does not mention.
func prune(exp, act interface{}) interface{} {
	switch e := exp.(type) {
	case map[string]interface{}:
		a, ok := act.(map[string]interface{})
		if !ok {
			return act
		}
		out := make(map[string]interface{}, len(e))
		for k, ev := range e {
			if av, ok := a[k]; ok {
				out[k] = prune(ev, av)
			}
		}
		return out
	case []interface{}:
		a, ok := act.([]interface{})
		if !ok || len(a) != len(e) {
			return act
		}
		out := make([]interface{}, len(a))
		for i := range a {
			out[i] = prune(e[i], a[i])
		}
		return out
	default:
		return act
	}
}

// Lookup walks a dotted path ("items.0.product._id") through decoded JSON.
func Lookup(v interface{}, path string) (interface{}, bool) {
	if path == "" {
		return v, true
	}
	for _, part := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			v = next
		case []interface{}:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}
