package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Documents are kept as JSON so readers never
// share state with writers, matching a remote store.
type Memory struct {
	mu     sync.Mutex
	docs   map[string]memoryDoc
	seq    int
	writes int
}

type memoryDoc struct {
	id   string
	data []byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]memoryDoc)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[key]
	if !ok {
		return "", ErrNoDocument
	}
	if err := json.Unmarshal(doc.data, dst); err != nil {
		return "", err
	}
	return doc.id, nil
}

func (m *Memory) Post(_ context.Context, key string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := fmt.Sprintf("-doc%04d", m.seq)
	m.docs[key] = memoryDoc{id: id, data: data}
	m.writes++
	return id, nil
}

func (m *Memory) Put(_ context.Context, key, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[key]
	if !ok || doc.id != id {
		return fmt.Errorf("%w: %s/%s", ErrNoDocument, key, id)
	}
	m.docs[key] = memoryDoc{id: id, data: data}
	m.writes++
	return nil
}

// Writes counts successful Post and Put calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
