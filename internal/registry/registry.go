// Package registry provides immutable name-keyed lookup tables.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrNotFound is returned when a name has no entry in a table.
var ErrNotFound = errors.New("not found in registry")

// Table maps names to values. It is built once and never mutated, so it is
// safe for concurrent reads.
type Table[T any] struct {
	kind    string
	entries map[string]T
}

// New creates a table of the given kind from entries. The map is copied.
func New[T any](kind string, entries map[string]T) *Table[T] {
	return &Table[T]{
		kind:    kind,
		entries: maps.Clone(entries),
	}
}

// Kind returns what the table holds, e.g. "optimizer".
func (t *Table[T]) Kind() string {
	return t.kind
}

// Lookup returns the entry registered under name.
func (t *Table[T]) Lookup(name string) (T, error) {
	v, ok := t.entries[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", t.kind, name, ErrNotFound)
	}

	return v, nil
}

// Has reports whether name is registered.
func (t *Table[T]) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Names returns the registered names in sorted order.
func (t *Table[T]) Names() []string {
	return slices.Sorted(maps.Keys(t.entries))
}
