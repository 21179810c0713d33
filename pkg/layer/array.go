// Package layer implements the fixed-length container the network
// engine stores its per-layer weights, biases, and scratch buffers
// in: front/back addressing plus a disjoint split-borrow for the two
// indices back-propagation needs live at once.
package layer

import (
	"errors"
	"fmt"
)

// ErrAliased is returned by IndicesMut when both requested indices
// resolve to the same underlying position.
var ErrAliased = errors.New("layer: aliased indices")

// Array is an ordered, fixed-length sequence of T addressable from
// the front or the back. It is never resized after construction.
type Array[T any] struct {
	items []T
}

// New builds an Array of length n, each element its zero value.
func New[T any](n int) Array[T] {
	return Array[T]{items: make([]T, n)}
}

// FromSlice adopts s directly as the Array's backing storage.
func FromSlice[T any](s []T) Array[T] {
	return Array[T]{items: s}
}

// Len returns the number of elements.
func (a *Array[T]) Len() int { return len(a.items) }

// Front returns a pointer to the i-th element from the start.
func (a *Array[T]) Front(i int) *T { return &a.items[i] }

// Back returns a pointer to the i-th element from the end; Back(0) is
// the last element.
func (a *Array[T]) Back(i int) *T { return &a.items[len(a.items)-1-i] }

// IndicesMut returns disjoint mutable references to positions a and
// b (front-indexed). It fails with ErrAliased if they name the same
// position — the Go stand-in for the source's split_at_mut panic.
func (a *Array[T]) IndicesMut(i, j int) (*T, *T, error) {
	if i == j {
		return nil, nil, fmt.Errorf("%w: index %d requested twice", ErrAliased, i)
	}
	return &a.items[i], &a.items[j], nil
}

// BackIndicesMut is IndicesMut addressed from the back — the mode
// back-propagation actually uses, walking err[Back(l)] and
// err[Back(l+1)] simultaneously.
func (a *Array[T]) BackIndicesMut(i, j int) (*T, *T, error) {
	n := len(a.items)
	return a.IndicesMut(n-1-i, n-1-j)
}

// BulkZero resets every element to its zero value via zero, called
// once per element.
func (a *Array[T]) BulkZero(zero func(*T)) {
	for i := range a.items {
		zero(&a.items[i])
	}
}

// Slice exposes the backing storage for range iteration.
func (a *Array[T]) Slice() []T { return a.items }
