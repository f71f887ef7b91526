package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samborkent/uuidv7"
	"go.etcd.io/bbolt"
)

// Bolt is a single-file Store for local development. Each key is a bucket
// holding one JSON document.
type Bolt struct {
	db *bbolt.DB
}

func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Get(_ context.Context, key string, dst any) (string, error) {
	var id string
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(key))
		if bkt == nil {
			return ErrNoDocument
		}
		k, v := bkt.Cursor().First()
		if k == nil {
			return ErrNoDocument
		}
		id = string(k)
		return json.Unmarshal(v, dst)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (b *Bolt) Post(_ context.Context, key string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	id := uuidv7.New().String()
	err = b.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return err
		}
		return bkt.Put([]byte(id), data)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (b *Bolt) Put(_ context.Context, key, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(key))
		if bkt == nil || bkt.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s/%s", ErrNoDocument, key, id)
		}
		return bkt.Put([]byte(id), data)
	})
}
