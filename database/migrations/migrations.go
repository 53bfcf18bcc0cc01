// Package migrations holds the sandbox schema. Each file registers its
// migrations from init, so importing the package for side effects is
// enough for `storefront migrate` to see them.
package migrations
