package netlib

import (
	"context"
	"errors"
	"testing"
)

func smallSpec() LibrarySpec {
	return LibrarySpec{
		Nodes:     30,
		Degree:    4,
		BatchSize: 3,
		Indices:   []int{0, 10, 20},
		Batches:   []int{0, 1},
		Tries:     50,
		Seed:      42,
		Workers:   2,
	}
}

func TestLibrarySpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LibrarySpec)
		wantErr bool
	}{
		{"valid", func(*LibrarySpec) {}, false},
		{"zero nodes", func(s *LibrarySpec) { s.Nodes = 0 }, true},
		{"degree too large", func(s *LibrarySpec) { s.Degree = 30 }, true},
		{"zero batch size", func(s *LibrarySpec) { s.BatchSize = 0 }, true},
		{"index out of ladder", func(s *LibrarySpec) { s.Indices = []int{21} }, true},
		{"negative batch", func(s *LibrarySpec) { s.Batches = []int{-1} }, true},
		{"batch past library", func(s *LibrarySpec) { s.Batches = []int{32} }, true},
		{"last batch", func(s *LibrarySpec) { s.Batches = []int{31} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := smallSpec()
			tt.mutate(&spec)
			err := spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLibrarySpec_ValidateFillsDefaults(t *testing.T) {
	spec := DefaultLibrarySpec()
	spec.Tries = 0
	if err := spec.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(spec.Indices) != 21 || spec.Indices[20] != 20 {
		t.Errorf("Indices = %v", spec.Indices)
	}
	if len(spec.Batches) != 32 || spec.Batches[31] != 31 {
		t.Errorf("Batches = %v", spec.Batches)
	}
	if spec.Tries != spec.Nodes {
		t.Errorf("Tries = %d, want %d", spec.Tries, spec.Nodes)
	}
}

func TestBuildBatch_Reproducible(t *testing.T) {
	ctx := context.Background()
	spec := smallSpec()
	a, err := BuildBatch(ctx, spec, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildBatch(ctx, spec, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	assertSameGraphs(t, a, b)
	for i, g := range a {
		if g.Order() != 30 || g.EdgeCount() != 60 {
			t.Errorf("graph %d: order %d edges %d", i, g.Order(), g.EdgeCount())
		}
		if !g.Connected() {
			t.Errorf("graph %d is not connected", i)
		}
	}
}

func TestBuild_FillsStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	spec := smallSpec()
	if err := Build(ctx, store, spec, nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, i := range spec.Indices {
		for _, b := range spec.Batches {
			got, err := store.LoadBatch(ctx, i, b)
			if err != nil {
				t.Fatalf("LoadBatch(%d, %d): %v", i, b, err)
			}
			want, err := BuildBatch(ctx, spec, i, b)
			if err != nil {
				t.Fatal(err)
			}
			assertSameGraphs(t, want, got)
		}
	}
}

func TestBuild_WorkerCountDoesNotChangeLibrary(t *testing.T) {
	ctx := context.Background()
	serial, parallel := NewMemoryStore(), NewMemoryStore()

	spec := smallSpec()
	spec.Workers = 1
	if err := Build(ctx, serial, spec, nil); err != nil {
		t.Fatal(err)
	}
	spec = smallSpec()
	spec.Workers = 4
	if err := Build(ctx, parallel, spec, nil); err != nil {
		t.Fatal(err)
	}

	a, err := serial.LoadBatch(ctx, 20, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := parallel.LoadBatch(ctx, 20, 1)
	if err != nil {
		t.Fatal(err)
	}
	assertSameGraphs(t, a, b)
}

func TestBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Build(ctx, NewMemoryStore(), smallSpec(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
