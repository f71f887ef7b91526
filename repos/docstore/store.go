package docstore

import (
	"context"
	"errors"

	"github.com/planner-api/planner/pkg/apperr"
)

// ErrNoDocument is returned by Get when nothing has been posted under the key.
var ErrNoDocument = errors.New("docstore: no document")

// ErrUnavailable marks transient failures of the backing store.
var ErrUnavailable = apperr.New(apperr.DependencyUnavailable, "Failed to communicate with document store")

// Store is a remote key/blob store. Each key holds at most one document;
// Post creates it and returns the store-assigned id, Put replaces the
// document with that id.
type Store interface {
	Get(ctx context.Context, key string, dst any) (id string, err error)
	Post(ctx context.Context, key string, v any) (id string, err error)
	Put(ctx context.Context, key, id string, v any) error
}
