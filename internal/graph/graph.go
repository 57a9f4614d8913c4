// Package graph provides the immutable undirected contact graph the epidemic
// engine runs on. Nodes are dense integer IDs in [0, N).
package graph

import (
	"fmt"
	"slices"
	"sync"
)

// Graph is an undirected simple graph. It is read-only once built; derived
// per-node metrics are computed lazily and cached.
type Graph struct {
	adj   [][]int
	edges int

	clusteringOnce sync.Once
	clustering     []float64
}

// Builder accumulates edges for a Graph. Self-loops and duplicate edges are
// ignored.
type Builder struct {
	adj   []map[int]struct{}
	edges int
}

// NewBuilder creates a builder for a graph with n nodes and no edges.
func NewBuilder(n int) *Builder {
	adj := make([]map[int]struct{}, n)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	return &Builder{adj: adj}
}

// AddEdge adds the undirected edge u-v. It reports whether the edge was new.
func (b *Builder) AddEdge(u, v int) (bool, error) {
	if u < 0 || u >= len(b.adj) || v < 0 || v >= len(b.adj) {
		return false, fmt.Errorf("edge %d-%d out of range for %d nodes", u, v, len(b.adj))
	}
	if u == v {
		return false, nil
	}
	if _, ok := b.adj[u][v]; ok {
		return false, nil
	}
	b.adj[u][v] = struct{}{}
	b.adj[v][u] = struct{}{}
	b.edges++
	return true, nil
}

// RemoveEdge removes the undirected edge u-v if present.
func (b *Builder) RemoveEdge(u, v int) bool {
	if u < 0 || u >= len(b.adj) || v < 0 || v >= len(b.adj) {
		return false
	}
	if _, ok := b.adj[u][v]; !ok {
		return false
	}
	delete(b.adj[u], v)
	delete(b.adj[v], u)
	b.edges--
	return true
}

// HasEdge reports whether u-v is present.
func (b *Builder) HasEdge(u, v int) bool {
	if u < 0 || u >= len(b.adj) {
		return false
	}
	_, ok := b.adj[u][v]
	return ok
}

// Degree returns the current degree of u.
func (b *Builder) Degree(u int) int {
	return len(b.adj[u])
}

// Order returns the number of nodes.
func (b *Builder) Order() int {
	return len(b.adj)
}

// Build freezes the builder into a Graph. Neighbor lists are sorted so that
// iteration order is deterministic.
func (b *Builder) Build() *Graph {
	adj := make([][]int, len(b.adj))
	for u, set := range b.adj {
		nbrs := make([]int, 0, len(set))
		for v := range set {
			nbrs = append(nbrs, v)
		}
		slices.Sort(nbrs)
		adj[u] = nbrs
	}
	return &Graph{adj: adj, edges: b.edges}
}

// FromEdges builds a graph with n nodes from an edge list.
func FromEdges(n int, edges [][2]int) (*Graph, error) {
	b := NewBuilder(n)
	for _, e := range edges {
		if _, err := b.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Order returns the number of nodes N.
func (g *Graph) Order() int {
	return len(g.adj)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Neighbors returns the sorted neighbors of u. The slice must not be modified.
func (g *Graph) Neighbors(u int) []int {
	return g.adj[u]
}

// Degree returns the degree of u.
func (g *Graph) Degree(u int) int {
	return len(g.adj[u])
}

// Edges returns every edge once as (u, v) with u < v, in ascending order.
func (g *Graph) Edges() [][2]int {
	out := make([][2]int, 0, g.edges)
	for u, nbrs := range g.adj {
		for _, v := range nbrs {
			if u < v {
				out = append(out, [2]int{u, v})
			}
		}
	}
	return out
}

// Clustering returns the local clustering coefficient of every node: the
// fraction of pairs of neighbors that are themselves adjacent. Nodes with
// degree below 2 have coefficient 0. The result is shared and must not be
// modified.
func (g *Graph) Clustering() []float64 {
	g.clusteringOnce.Do(func() {
		g.clustering = g.computeClustering()
	})
	return g.clustering
}

func (g *Graph) computeClustering() []float64 {
	n := len(g.adj)
	cc := make([]float64, n)
	// mark[v] == u+1 when v is a neighbor of the node currently being scored.
	mark := make([]int, n)
	for u, nbrs := range g.adj {
		k := len(nbrs)
		if k < 2 {
			continue
		}
		for _, v := range nbrs {
			mark[v] = u + 1
		}
		links := 0
		for _, v := range nbrs {
			for _, w := range g.adj[v] {
				if w > v && mark[w] == u+1 {
					links++
				}
			}
		}
		cc[u] = 2 * float64(links) / float64(k*(k-1))
	}
	return cc
}

// Connected reports whether every node is reachable from node 0. The empty
// graph is not connected.
func (g *Graph) Connected() bool {
	n := len(g.adj)
	if n == 0 {
		return false
	}
	seen := make([]bool, n)
	queue := []int{0}
	seen[0] = true
	reached := 1
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.adj[u] {
			if !seen[v] {
				seen[v] = true
				reached++
				queue = append(queue, v)
			}
		}
	}
	return reached == n
}
