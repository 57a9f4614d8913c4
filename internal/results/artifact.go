package results

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nvandessel/sirsweep/internal/epidemic"
	"github.com/nvandessel/sirsweep/internal/snapshot"
)

// Snapshot kinds for persisted results.
const (
	// ArtifactKind is a per-probability sweep result.
	ArtifactKind = "sweep-results"

	// ConsolidatedKind is the merge of several per-probability results.
	ConsolidatedKind = "consolidated-results"
)

type entryRecord struct {
	Key  ParamSet              `json:"key"`
	Runs []epidemic.Trajectory `json:"runs"`
}

type resultsPayload struct {
	Entries []entryRecord `json:"entries"`
}

// BatchLabel renders a batch index list for file names: "4-7" for an
// ascending contiguous range, otherwise the indices joined by "_".
func BatchLabel(batches []int) string {
	if len(batches) == 0 {
		return "none"
	}
	contiguous := len(batches) > 1
	for i := 1; i < len(batches); i++ {
		if batches[i] != batches[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous {
		return fmt.Sprintf("%d-%d", batches[0], batches[len(batches)-1])
	}
	parts := make([]string, len(batches))
	for i, b := range batches {
		parts[i] = strconv.Itoa(b)
	}
	return strings.Join(parts, "_")
}

// ArtifactName is the file name of the per-probability artifact.
func ArtifactName(pIndex int, batches []int) string {
	return fmt.Sprintf("p_%d_batches_%s.snap", pIndex, BatchLabel(batches))
}

// ConsolidatedName is the file name of the consolidated artifact.
func ConsolidatedName(batches []int) string {
	return fmt.Sprintf("data_batches_%s.snap", BatchLabel(batches))
}

// WriteArtifact persists res to path as a snapshot of the given kind.
func WriteArtifact(path, kind string, res *Results, metadata map[string]string) (*snapshot.Header, error) {
	if kind != ArtifactKind && kind != ConsolidatedKind {
		return nil, fmt.Errorf("unknown results kind %q", kind)
	}
	payload := resultsPayload{Entries: make([]entryRecord, 0, res.Len())}
	for _, key := range res.keys {
		payload.Entries = append(payload.Entries, entryRecord{Key: key, Runs: res.runs[key]})
	}
	h, err := snapshot.Write(path, kind, res.Runs(), metadata, payload)
	if err != nil {
		return nil, fmt.Errorf("writing results artifact: %w", err)
	}
	return h, nil
}

// ReadArtifact loads a results snapshot of either kind.
func ReadArtifact(path string) (*Results, *snapshot.Header, error) {
	var payload resultsPayload
	h, err := snapshot.Read(path, "", &payload)
	if err != nil {
		return nil, nil, fmt.Errorf("reading results artifact: %w", err)
	}
	if !slices.Contains([]string{ArtifactKind, ConsolidatedKind}, h.Kind) {
		return nil, nil, fmt.Errorf("reading results artifact %s: kind %q: %w", path, h.Kind, snapshot.ErrKindMismatch)
	}
	res := New()
	for _, e := range payload.Entries {
		for _, tr := range e.Runs {
			res.Append(e.Key, tr)
		}
	}
	return res, h, nil
}

// Consolidate reads the artifacts at paths and merges them in order.
func Consolidate(ctx context.Context, paths []string) (*Results, error) {
	out := New()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, _, err := ReadArtifact(path)
		if err != nil {
			return nil, err
		}
		out.Merge(res)
	}
	return out, nil
}
