package netlib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/sirsweep/internal/graph"
	"github.com/nvandessel/sirsweep/internal/snapshot"
)

// FileStore keeps one snapshot file per batch under
// <root>/p_<i>/p_<i>st_batch_<b>.snap.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at root. The directory is created
// lazily on the first write.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// BatchPath returns the path of the batch file for (pIndex, batch).
func (s *FileStore) BatchPath(pIndex, batch int) string {
	dir := fmt.Sprintf("p_%d", pIndex)
	name := fmt.Sprintf("p_%dst_batch_%d.snap", pIndex, batch)
	return filepath.Join(s.root, dir, name)
}

// LoadBatch reads and decodes one batch file.
func (s *FileStore) LoadBatch(ctx context.Context, pIndex, batch int) ([]*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.BatchPath(pIndex, batch)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, batchNotFound(pIndex, batch)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var payload batchPayload
	if _, err := snapshot.Read(path, BatchKind, &payload); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return decodeBatch(payload, pIndex, batch)
}

// SaveBatch writes one batch file, replacing any existing one.
func (s *FileStore) SaveBatch(ctx context.Context, pIndex, batch int, graphs []*graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.BatchPath(pIndex, batch)
	meta := map[string]string{
		"p_index": strconv.Itoa(pIndex),
		"batch":   strconv.Itoa(batch),
	}
	if _, err := snapshot.Write(path, BatchKind, len(graphs), meta, encodeBatch(pIndex, batch, graphs)); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
