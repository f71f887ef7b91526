package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore keeps each key as a collection holding a single document.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) Get(ctx context.Context, key string, dst any) (string, error) {
	iter := s.client.Collection(key).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return "", ErrNoDocument
	}
	if err != nil {
		return "", classify(err)
	}

	if err := doc.DataTo(dst); err != nil {
		// We control both the documents written under key and the shape of
		// dst, so a failure here means the stored data is inconsistent.
		return "", xerrors.Errorf(
			"consistency error. Converting %s/%s failed: %w",
			key,
			doc.Ref.ID,
			err,
		)
	}
	return doc.Ref.ID, nil
}

func (s *Firestore) Post(ctx context.Context, key string, v any) (string, error) {
	ref, _, err := s.client.Collection(key).Add(ctx, v)
	if err != nil {
		return "", classify(err)
	}
	return ref.ID, nil
}

func (s *Firestore) Put(ctx context.Context, key, id string, v any) error {
	_, err := s.client.Collection(key).Doc(id).Set(ctx, v)
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
