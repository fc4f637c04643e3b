// Package kv provides a small key-value store interface with hierarchical
// keys. Keys are string segments (e.g. {"archive", "3f2a..."}) joined with a
// separator byte, ':' by default.
//
// Badger is the persistent implementation; Memory backs tests and
// throwaway runs.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path. Segments must not contain the separator.
type Key []string

// String joins the segments with ':'. It is meant for display.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with path-based keys.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key Key) error

	// List yields every entry below prefix in lexicographic key order. An
	// empty prefix lists everything.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet stores several entries at once.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete removes several keys at once.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases the store.
	Close() error
}

// DefaultSeparator joins key segments when no Options are given.
const DefaultSeparator byte = ':'

// Options configures key encoding.
type Options struct {
	// Separator joins key segments. Zero means DefaultSeparator.
	Separator byte
}

func (o *Options) sep() string {
	if o != nil && o.Separator != 0 {
		return string(o.Separator)
	}
	return string(DefaultSeparator)
}

func (o *Options) encode(k Key) string {
	return strings.Join(k, o.sep())
}

func (o *Options) decode(s string) Key {
	return Key(strings.Split(s, o.sep()))
}

// prefix returns the encoded prefix including a trailing separator, so that
// {"a","b"} does not match "a:bc". An empty key yields "".
func (o *Options) prefix(k Key) string {
	if len(k) == 0 {
		return ""
	}
	return o.encode(k) + o.sep()
}
