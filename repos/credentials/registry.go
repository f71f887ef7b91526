package credentials

import (
	"context"

	"github.com/planner-api/planner/repos/docstore"
)

// Key is the document-store key holding the calendar credential registry.
const Key = "users"

// Registry maps usernames to Google refresh tokens. It follows the same
// read-then-write discipline as the events blob.
type Registry struct {
	coll *docstore.Collection[map[string]string]
}

func NewRegistry(store docstore.Store) *Registry {
	return &Registry{coll: docstore.NewCollection[map[string]string](store, Key)}
}

// Login stores refreshToken for username, replacing any previous one.
func (r *Registry) Login(ctx context.Context, username, refreshToken string) error {
	snap, err := r.coll.Load(ctx)
	if err != nil {
		return err
	}
	if snap.Data == nil {
		snap.Data = make(map[string]string)
	}
	snap.Data[username] = refreshToken
	return r.coll.Save(ctx, snap)
}

// Logout forgets username's refresh token. Nothing is written when the user
// has none.
func (r *Registry) Logout(ctx context.Context, username string) error {
	snap, err := r.coll.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := snap.Data[username]; !ok {
		return nil
	}
	delete(snap.Data, username)
	return r.coll.Save(ctx, snap)
}

// Lookup returns username's refresh token, if any.
func (r *Registry) Lookup(ctx context.Context, username string) (string, bool, error) {
	snap, err := r.coll.Load(ctx)
	if err != nil {
		return "", false, err
	}
	token, ok := snap.Data[username]
	return token, ok, nil
}
