// Package netlib stores the network library: batches of pre-generated
// contact graphs keyed by (probability index, batch index).
package netlib

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvandessel/sirsweep/internal/graph"
)

// ErrBatchNotFound is returned when the library has no batch for the
// requested (probability index, batch index).
var ErrBatchNotFound = errors.New("network batch not found")

// ErrBatchMismatch is returned when a stored batch records a different
// (p-index, batch) than the one it is stored under.
var ErrBatchMismatch = errors.New("network batch stored under wrong key")

// BatchKind is the snapshot kind of a stored batch.
const BatchKind = "network-batch"

// BatchStore reads and writes network batches.
type BatchStore interface {
	// LoadBatch returns the graphs of one batch in stored order.
	LoadBatch(ctx context.Context, pIndex, batch int) ([]*graph.Graph, error)

	// SaveBatch replaces the batch stored under (pIndex, batch).
	SaveBatch(ctx context.Context, pIndex, batch int, graphs []*graph.Graph) error

	// Close releases any resources held by the store.
	Close() error
}

// graphRecord is the serialized form of one graph.
type graphRecord struct {
	Nodes int      `json:"nodes"`
	Edges [][2]int `json:"edges"`
}

// batchPayload is the serialized form of one batch.
type batchPayload struct {
	PIndex int           `json:"p_index"`
	Batch  int           `json:"batch"`
	Graphs []graphRecord `json:"graphs"`
}

func encodeBatch(pIndex, batch int, graphs []*graph.Graph) batchPayload {
	payload := batchPayload{
		PIndex: pIndex,
		Batch:  batch,
		Graphs: make([]graphRecord, len(graphs)),
	}
	for i, g := range graphs {
		payload.Graphs[i] = graphRecord{Nodes: g.Order(), Edges: g.Edges()}
	}
	return payload
}

// decodeBatch rebuilds the graphs of payload, which must be the batch stored
// for (pIndex, batch).
func decodeBatch(payload batchPayload, pIndex, batch int) ([]*graph.Graph, error) {
	if payload.PIndex != pIndex || payload.Batch != batch {
		return nil, fmt.Errorf("p_%d batch %d holds p_%d batch %d: %w",
			pIndex, batch, payload.PIndex, payload.Batch, ErrBatchMismatch)
	}
	graphs := make([]*graph.Graph, len(payload.Graphs))
	for i, rec := range payload.Graphs {
		g, err := graph.FromEdges(rec.Nodes, rec.Edges)
		if err != nil {
			return nil, fmt.Errorf("graph %d of p_%d batch %d: %w", i, payload.PIndex, payload.Batch, err)
		}
		graphs[i] = g
	}
	return graphs, nil
}

func batchNotFound(pIndex, batch int) error {
	return fmt.Errorf("p_%d batch %d: %w", pIndex, batch, ErrBatchNotFound)
}
