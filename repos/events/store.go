package events

import (
	"context"

	"github.com/planner-api/planner/repos/docstore"
)

// Key is the document-store key holding every user's events.
const Key = "events"

// Event is a stored event stub. The owning username is the key it is filed
// under in the collection.
type Event struct {
	ID        string `json:"id" firestore:"id"`
	Timestamp int64  `json:"timestamp" firestore:"timestamp"`
	Synced    bool   `json:"synced" firestore:"synced"`
	Recipe    string `json:"recipe" firestore:"recipe"`
}

// Book is one read of the shared events blob.
type Book struct {
	snap *docstore.Snapshot[map[string][]Event]
}

// For returns a copy of username's events, empty when the user has none.
func (b *Book) For(username string) []Event {
	stored := b.snap.Data[username]
	events := make([]Event, len(stored))
	copy(events, stored)
	return events
}

// Set replaces username's events.
func (b *Book) Set(username string, events []Event) {
	if b.snap.Data == nil {
		b.snap.Data = make(map[string][]Event)
	}
	if events == nil {
		events = []Event{}
	}
	b.snap.Data[username] = events
}

// Store reads and writes the events blob. Every mutation must Load a fresh
// Book immediately before changing it; concurrent mutations of the blob are
// last-writer-wins.
type Store struct {
	coll *docstore.Collection[map[string][]Event]
}

func NewStore(store docstore.Store) *Store {
	return &Store{coll: docstore.NewCollection[map[string][]Event](store, Key)}
}

func (s *Store) Load(ctx context.Context) (*Book, error) {
	snap, err := s.coll.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Book{snap: snap}, nil
}

// Save persists b, creating the blob on the first write.
func (s *Store) Save(ctx context.Context, b *Book) error {
	return s.coll.Save(ctx, b.snap)
}
