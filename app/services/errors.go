package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrLoginRequired         = errors.New("Please login to manage your cart")
	ErrWishlistLoginRequired = errors.New("Please login to manage your wishlist")
	ErrEmptyCart             = errors.New("Your cart is empty")
	ErrAdminOnly             = errors.New("Only admins can edit content")
	ErrNotCancellable        = errors.New("This order can no longer be cancelled")
	ErrNotOnPaymentStep      = errors.New("Complete contact and shipping details first")
	ErrCheckoutInProgress    = errors.New("Your order is already being placed")
)

// ValidationError lists the fields that failed local validation, keyed by
// their JSON name. It is never sent to the backend.
type ValidationError struct {
	Fields map[string]string
}

// Error returns the messages in field order, joined.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, " ")
}

func validationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
