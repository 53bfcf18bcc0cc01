package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type line struct {
	id    string
	price float64
	qty   int
}

var lines = []line{{"a", 10, 2}, {"b", 2.5, 4}, {"c", 100, 1}}

func TestSum(t *testing.T) {
	assert.Equal(t, 130.0, Sum(lines, func(l line) float64 { return l.price * float64(l.qty) }))
	assert.Equal(t, 7, Sum(lines, func(l line) int { return l.qty }))
	assert.Equal(t, 0, Sum([]line(nil), func(l line) int { return l.qty }))
}

func TestFilterRejectNeverNil(t *testing.T) {
	out := Reject(lines, func(l line) bool { return true })
	assert.NotNil(t, out)
	assert.Empty(t, out)

	kept := Filter(lines, func(l line) bool { return l.qty > 1 })
	assert.Len(t, kept, 2)
}

func TestSearch(t *testing.T) {
	assert.Equal(t, 1, IndexOf(lines, func(l line) bool { return l.id == "b" }))
	assert.Equal(t, -1, IndexOf(lines, func(l line) bool { return l.id == "z" }))
	assert.True(t, Contains(lines, func(l line) bool { return l.id == "c" }))

	got, ok := First(lines, func(l line) bool { return l.price > 50 })
	assert.True(t, ok)
	assert.Equal(t, "c", got.id)
}

func TestKeyByAndMap(t *testing.T) {
	byID := KeyBy(lines, func(l line) string { return l.id })
	assert.Equal(t, 4, byID["b"].qty)
	assert.Equal(t, []string{"a", "b", "c"}, Map(lines, func(l line) string { return l.id }))
	assert.Equal(t, 7, Reduce(lines, 0, func(n int, l line) int { return n + l.qty }))
}
