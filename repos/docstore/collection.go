package docstore

import (
	"context"
	"errors"
	"fmt"
)

// Collection is a typed view of one key. Callers Load a Snapshot, modify
// Data, and Save it back; whether that becomes a Post or a Put is decided
// here and never leaks to the caller.
//
// There is no locking: two callers that Load the same snapshot and both Save
// will silently lose the first write.
type Collection[T any] struct {
	store Store
	key   string
}

// Snapshot is the value read from a Collection plus the identity of the
// document it came from.
type Snapshot[T any] struct {
	Data T
	id   string
}

// Exists reports whether the snapshot was read from (or already written to)
// a stored document.
func (s *Snapshot[T]) Exists() bool {
	return s.id != ""
}

func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Load reads the current document. A missing document yields an empty
// snapshot, not an error.
func (c *Collection[T]) Load(ctx context.Context) (*Snapshot[T], error) {
	var data T
	id, err := c.store.Get(ctx, c.key, &data)
	if errors.Is(err, ErrNoDocument) {
		return &Snapshot[T]{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	return &Snapshot[T]{Data: data, id: id}, nil
}

// Save writes snap back. The first save of an empty snapshot creates the
// document and remembers its id so later saves update the same document.
func (c *Collection[T]) Save(ctx context.Context, snap *Snapshot[T]) error {
	if snap.id == "" {
		id, err := c.store.Post(ctx, c.key, snap.Data)
		if err != nil {
			return fmt.Errorf("create %s: %w", c.key, err)
		}
		snap.id = id
		return nil
	}

	if err := c.store.Put(ctx, c.key, snap.id, snap.Data); err != nil {
		return fmt.Errorf("update %s/%s: %w", c.key, snap.id, err)
	}
	return nil
}
