package netlib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/nvandessel/sirsweep/internal/graph"
	"github.com/nvandessel/sirsweep/internal/snapshot"
)

// BoltFileName is the database file name inside a bolt-backed library directory.
const BoltFileName = "library.db"

// BoltStore keeps the whole library in a single bbolt database: one bucket
// per probability index, one compressed value per batch.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the bolt library in dir.
func NewBoltStore(dir string) (*BoltStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}
	db, err := bbolt.Open(filepath.Join(dir, BoltFileName), 0o644, &bbolt.Options{
		Timeout:      5 * time.Second,
		NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
		FreelistType: bbolt.DefaultOptions.FreelistType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt library: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func bucketName(pIndex int) []byte {
	return []byte(fmt.Sprintf("p_%d", pIndex))
}

func batchKey(batch int) []byte {
	return []byte(fmt.Sprintf("batch_%d", batch))
}

// LoadBatch reads one batch from the database.
func (s *BoltStore) LoadBatch(ctx context.Context, pIndex, batch int) ([]*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(pIndex))
		if b == nil {
			return batchNotFound(pIndex, batch)
		}
		v := b.Get(batchKey(batch))
		if v == nil {
			return batchNotFound(pIndex, batch)
		}
		// Values are only valid for the life of the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var payload batchPayload
	if err := snapshot.Decode(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding p_%d batch %d: %w", pIndex, batch, err)
	}
	return decodeBatch(payload, pIndex, batch)
}

// SaveBatch writes one batch, replacing any existing value.
func (s *BoltStore) SaveBatch(ctx context.Context, pIndex, batch int, graphs []*graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := snapshot.Encode(encodeBatch(pIndex, batch, graphs))
	if err != nil {
		return fmt.Errorf("encoding p_%d batch %d: %w", pIndex, batch, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName(pIndex))
		if err != nil {
			return fmt.Errorf("creating bucket p_%d: %w", pIndex, err)
		}
		return b.Put(batchKey(batch), data)
	})
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
