// Package digraph implements a generic directed graph keyed by ordered keys.
package digraph

import (
	"cmp"
	"slices"
)

type edgeKey[K comparable] struct {
	from K
	to   K
}

// Graph is a directed graph with one payload per node. Node keys are
// ordered so that iteration can be deterministic.
type Graph[K cmp.Ordered, V any] struct {
	nodes map[K]V
	succs map[K][]K
	edges map[edgeKey[K]]struct{}
}

// New creates an empty graph.
func New[K cmp.Ordered, V any]() *Graph[K, V] {
	return &Graph[K, V]{
		nodes: make(map[K]V),
		succs: make(map[K][]K),
		edges: make(map[edgeKey[K]]struct{}),
	}
}

// AddNode inserts a node. Inserting an existing key again keeps the
// original payload.
func (g *Graph[K, V]) AddNode(key K, payload V) {
	if _, exists := g.nodes[key]; exists {
		return
	}
	g.nodes[key] = payload
}

// Node returns the payload stored for key.
func (g *Graph[K, V]) Node(key K) (V, bool) {
	v, ok := g.nodes[key]
	return v, ok
}

// HasNode reports whether key is a node.
func (g *Graph[K, V]) HasNode(key K) bool {
	_, ok := g.nodes[key]
	return ok
}

// AddEdge inserts the directed edge from→to. Missing endpoints are created
// with zero payloads. Duplicate edges are ignored, keeping the insertion
// order of the first occurrence.
func (g *Graph[K, V]) AddEdge(from, to K) {
	var zero V
	g.AddNode(from, zero)
	g.AddNode(to, zero)
	ek := edgeKey[K]{from: from, to: to}
	if _, exists := g.edges[ek]; exists {
		return
	}
	g.edges[ek] = struct{}{}
	g.succs[from] = append(g.succs[from], to)
}

// HasEdge reports whether the directed edge from→to exists.
func (g *Graph[K, V]) HasEdge(from, to K) bool {
	_, ok := g.edges[edgeKey[K]{from: from, to: to}]
	return ok
}

// Nodes returns all node keys in ascending order.
func (g *Graph[K, V]) Nodes() []K {
	keys := make([]K, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Out returns the successors of key in edge insertion order.
func (g *Graph[K, V]) Out(key K) []K {
	return g.succs[key]
}

// Len returns the number of nodes.
func (g *Graph[K, V]) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph[K, V]) EdgeCount() int {
	return len(g.edges)
}
