// Package manifest keeps a record of every archive produced by bz2p.
//
// Records are msgpack-encoded and stored in a kv.Store under
// "archive:<id>".
package manifest

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jzebedee/bz2portable/pkg/kv"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("manifest: record not found")

const keyPrefix = "archive"

// Record describes one produced archive.
type Record struct {
	ID         uuid.UUID `msgpack:"id" json:"id" yaml:"id"`
	Name       string    `msgpack:"name" json:"name" yaml:"name"`
	Source     string    `msgpack:"source" json:"source" yaml:"source"`
	Algorithm  string    `msgpack:"algorithm" json:"algorithm" yaml:"algorithm"`
	Level      int       `msgpack:"level" json:"level" yaml:"level"`
	RawSize    int64     `msgpack:"raw_size" json:"raw_size" yaml:"raw_size"`
	PackedSize int64     `msgpack:"packed_size" json:"packed_size" yaml:"packed_size"`
	CRC32      uint32    `msgpack:"crc32" json:"crc32" yaml:"crc32"`
	CreatedAt  time.Time `msgpack:"created_at" json:"created_at" yaml:"created_at"`
}

// Ratio returns PackedSize/RawSize, or 0 for an empty input.
func (r Record) Ratio() float64 {
	if r.RawSize == 0 {
		return 0
	}
	return float64(r.PackedSize) / float64(r.RawSize)
}

// Manifest stores Records in a kv.Store.
type Manifest struct {
	store kv.Store
	now   func() time.Time
}

// New returns a Manifest over store. The Manifest does not own store.
func New(store kv.Store) *Manifest {
	return &Manifest{store: store, now: time.Now}
}

func recordKey(id uuid.UUID) kv.Key {
	return kv.Key{keyPrefix, id.String()}
}

// Put stores rec. A zero ID is replaced with a new random one and a zero
// CreatedAt with the current time; the stored record is returned.
func (m *Manifest) Put(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now().UTC()
	}
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return Record{}, fmt.Errorf("manifest: encode %s: %w", rec.ID, err)
	}
	if err := m.store.Set(ctx, recordKey(rec.ID), data); err != nil {
		return Record{}, fmt.Errorf("manifest: put %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get returns the record with the given ID.
func (m *Manifest) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	data, err := m.store.Get(ctx, recordKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("manifest: get %s: %w", id, err)
	}
	return decode(data)
}

// Lookup resolves s as a full ID or, failing that, as an archive name.
func (m *Manifest) Lookup(ctx context.Context, s string) (Record, error) {
	if id, err := uuid.Parse(s); err == nil {
		return m.Get(ctx, id)
	}
	recs, err := m.FindByName(ctx, s)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, s)
	}
	return recs[len(recs)-1], nil
}

// List returns all records, oldest first.
func (m *Manifest) List(ctx context.Context) ([]Record, error) {
	var out []Record
	for e, err := range m.store.List(ctx, kv.Key{keyPrefix}) {
		if err != nil {
			return nil, fmt.Errorf("manifest: list: %w", err)
		}
		rec, err := decode(e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

// FindByName returns the records named name, oldest first.
func (m *Manifest) FindByName(ctx context.Context, name string) ([]Record, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(r Record) bool { return r.Name != name }), nil
}

// Delete removes the records with the given IDs. Missing IDs are ignored.
func (m *Manifest) Delete(ctx context.Context, ids ...uuid.UUID) error {
	keys := make([]kv.Key, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}
	if err := m.store.BatchDelete(ctx, keys); err != nil {
		return fmt.Errorf("manifest: delete: %w", err)
	}
	return nil
}

func decode(data []byte) (Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("manifest: decode: %w", err)
	}
	return rec, nil
}
