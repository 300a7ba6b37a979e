package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/easeaico/gridcare/internal/knowledge"
)

// snapshotDocument is the Firestore document layout.
type snapshotDocument struct {
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// FirestoreSnapshotStore keeps the knowledge graph in one Firestore document.
type FirestoreSnapshotStore struct {
	client     *firestore.Client
	collection string
	docID      string
}

// NewFirestoreSnapshotStore connects to projectID and targets collection/docID.
func NewFirestoreSnapshotStore(ctx context.Context, projectID, collection, docID string) (*FirestoreSnapshotStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &FirestoreSnapshotStore{client: client, collection: collection, docID: docID}, nil
}

func (s *FirestoreSnapshotStore) Load(ctx context.Context) ([]byte, error) {
	doc, err := s.client.Collection(s.collection).Doc(s.docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, knowledge.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	var snap snapshotDocument
	if err := doc.DataTo(&snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return []byte(snap.Payload), nil
}

func (s *FirestoreSnapshotStore) Save(ctx context.Context, data []byte) error {
	_, err := s.client.Collection(s.collection).Doc(s.docID).Set(ctx, snapshotDocument{
		Payload:   string(data),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

// Close releases the Firestore client.
func (s *FirestoreSnapshotStore) Close() error {
	return s.client.Close()
}
