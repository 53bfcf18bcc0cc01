// Package collection provides generic helpers for folding and searching
// slices of cart lines, products and content sections.
//
//	total := collection.Sum(items, func(i models.CartItem) float64 { return i.LineTotal() })
//	byID := collection.KeyBy(sections, func(s models.ContentSection) string { return s.ContentID })
package collection

// Number is any type Sum can add up.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Map transforms each element of s with fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements for which keep returns true. The result is
// never nil.
func Filter[T any](s []T, keep func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reject is the inverse of Filter.
func Reject[T any](s []T, drop func(T) bool) []T {
	return Filter(s, func(v T) bool { return !drop(v) })
}

// First returns the first element matching fn.
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// IndexOf returns the index of the first match, or -1.
func IndexOf[T any](s []T, fn func(T) bool) int {
	for i, v := range s {
		if fn(v) {
			return i
		}
	}
	return -1
}

func Contains[T any](s []T, fn func(T) bool) bool {
	return IndexOf(s, fn) >= 0
}

func Reduce[T, R any](s []T, initial R, fn func(carry R, item T) R) R {
	acc := initial
	for _, v := range s {
		acc = fn(acc, v)
	}
	return acc
}

// Sum adds up fn over s; the empty slice sums to 0.
func Sum[T any, N Number](s []T, fn func(T) N) N {
	var total N
	for _, v := range s {
		total += fn(v)
	}
	return total
}

// KeyBy indexes s by fn. Later elements win on duplicate keys.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}
