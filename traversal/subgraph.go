// elCortex: a colored de Bruijn graph store and traversal engine.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elcortex/blob/master/LICENSE.txt>.


package traversal

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
)

// Vertex is a k-mer reached by a traversal, in the orientation it was
// read in.
type Vertex struct {
	Kmer   kmer.Kmer
	Record *cortex.Record
	// Colors holds the configured colors with coverage.
	Colors *bitset.BitSet
	// Distance is the number of steps from the seed.
	Distance int
}

// Bases returns the k-mer as read.
func (v Vertex) Bases() string {
	return v.Kmer.Oriented()
}

// Sequence concatenates a path of vertices: the full k-mer of the
// first vertex, followed by the last base of every other vertex.
func Sequence(path []Vertex) string {
	if len(path) == 0 {
		return ""
	}
	first := path[0].Bases()
	buf := make([]byte, 0, len(first)+len(path)-1)
	buf = append(buf, first...)
	for _, v := range path[1:] {
		bases := v.Bases()
		buf = append(buf, bases[len(bases)-1])
	}
	return string(buf)
}

// Edge connects two vertices of a subgraph in reading direction, in
// one color.
type Edge struct {
	From, To int
	Color    int
	// Weight is the coverage of the target in Color.
	Weight uint32
	// Recruited marks edges of recruitment colors. Their targets are
	// never expanded.
	Recruited bool
}

type edgeKey struct {
	from, to, color int
}

// Subgraph is the result of Explore. Vertices are stored in an arena
// and addressed by index; there is one vertex per canonical k-mer.
type Subgraph struct {
	k        int
	seed     kmer.Kmer
	vertices []Vertex
	index    map[string]int
	edges    []Edge
	edgeSet  map[edgeKey]struct{}
	out, in  map[int][]int
	accepted bool
}

func newSubgraph(k int, seed kmer.Kmer) *Subgraph {
	return &Subgraph{
		k:       k,
		seed:    seed,
		index:   make(map[string]int),
		edgeSet: make(map[edgeKey]struct{}),
		out:     make(map[int][]int),
		in:      make(map[int][]int),
	}
}

func (g *Subgraph) addVertex(v Vertex) int {
	if id, ok := g.index[v.Kmer.String()]; ok {
		return id
	}
	id := len(g.vertices)
	g.vertices = append(g.vertices, v)
	g.index[v.Kmer.String()] = id
	return id
}

func (g *Subgraph) addEdge(e Edge) {
	key := edgeKey{e.From, e.To, e.Color}
	if _, ok := g.edgeSet[key]; ok {
		return
	}
	g.edgeSet[key] = struct{}{}
	index := len(g.edges)
	g.edges = append(g.edges, e)
	g.out[e.From] = append(g.out[e.From], index)
	g.in[e.To] = append(g.in[e.To], index)
}

// KmerSize returns k.
func (g *Subgraph) KmerSize() int { return g.k }

// Seed returns the k-mer the exploration started from.
func (g *Subgraph) Seed() kmer.Kmer { return g.seed }

// Accepted reports whether the stopping rule accepted a vertex.
func (g *Subgraph) Accepted() bool { return g.accepted }

// Len returns the number of vertices.
func (g *Subgraph) Len() int { return len(g.vertices) }

// Vertices returns the vertices in discovery order. The slice must not
// be modified.
func (g *Subgraph) Vertices() []Vertex { return g.vertices }

// Edges returns all edges in discovery order. The slice must not be
// modified.
func (g *Subgraph) Edges() []Edge { return g.edges }

// ID returns the index of the vertex for the canonical form of k.
func (g *Subgraph) ID(k kmer.Kmer) (int, bool) {
	id, ok := g.index[k.String()]
	return id, ok
}

// Vertex returns the vertex for the canonical form of k.
func (g *Subgraph) Vertex(k kmer.Kmer) (Vertex, bool) {
	if id, ok := g.index[k.String()]; ok {
		return g.vertices[id], true
	}
	return Vertex{}, false
}

func (g *Subgraph) collect(indices []int) []Edge {
	result := make([]Edge, len(indices))
	for i, index := range indices {
		result[i] = g.edges[index]
	}
	return result
}

// OutEdges returns the edges leaving vertex id.
func (g *Subgraph) OutEdges(id int) []Edge { return g.collect(g.out[id]) }

// InEdges returns the edges entering vertex id.
func (g *Subgraph) InEdges(id int) []Edge { return g.collect(g.in[id]) }

// Snapshot is a read-only export of a subgraph.
type Snapshot struct {
	ID       uuid.UUID        `json:"id"`
	K        int              `json:"k"`
	Seed     string           `json:"seed"`
	Accepted bool             `json:"accepted"`
	Vertices []SnapshotVertex `json:"vertices"`
	Edges    []SnapshotEdge   `json:"edges"`
}

// SnapshotVertex is the exported form of a Vertex.
type SnapshotVertex struct {
	ID       int      `json:"id"`
	Kmer     string   `json:"kmer"`
	Colors   []uint   `json:"colors"`
	Coverage []uint32 `json:"coverage"`
	Distance int      `json:"distance"`
}

// SnapshotEdge is the exported form of an Edge.
type SnapshotEdge struct {
	From      int    `json:"from"`
	To        int    `json:"to"`
	Color     int    `json:"color"`
	Weight    uint32 `json:"weight"`
	Recruited bool   `json:"recruited,omitempty"`
}

// Snapshot exports the subgraph under a fresh identifier.
func (g *Subgraph) Snapshot() *Snapshot {
	s := &Snapshot{
		ID:       uuid.New(),
		K:        g.k,
		Seed:     g.seed.Oriented(),
		Accepted: g.accepted,
		Vertices: make([]SnapshotVertex, len(g.vertices)),
		Edges:    make([]SnapshotEdge, len(g.edges)),
	}
	for id, v := range g.vertices {
		colors := make([]uint, 0, v.Colors.Count())
		coverage := make([]uint32, 0, v.Colors.Count())
		for c, ok := v.Colors.NextSet(0); ok; c, ok = v.Colors.NextSet(c + 1) {
			colors = append(colors, c)
			coverage = append(coverage, v.Record.Coverage(int(c)))
		}
		s.Vertices[id] = SnapshotVertex{
			ID:       id,
			Kmer:     v.Bases(),
			Colors:   colors,
			Coverage: coverage,
			Distance: v.Distance,
		}
	}
	for i, e := range g.edges {
		s.Edges[i] = SnapshotEdge{From: e.From, To: e.To, Color: e.Color, Weight: e.Weight, Recruited: e.Recruited}
	}
	return s
}

// WriteJSON writes the snapshot as indented JSON.
func (s *Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ReadSnapshot decodes a snapshot written by WriteJSON.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%v, while decoding subgraph snapshot", err)
	}
	return &s, nil
}

var edgeColors = []string{"black", "red", "blue", "darkgreen", "orange", "purple", "brown", "cyan"}

// WriteDot writes the snapshot as a directed Graphviz graph with one
// edge per color.
func (s *Snapshot) WriteDot(w io.Writer) error {
	g := gographviz.NewGraph()
	if err := g.SetName("explore"); err != nil {
		return err
	}
	if err := g.SetDir(true); err != nil {
		return err
	}
	for _, v := range s.Vertices {
		attrs := map[string]string{"label": strconv.Quote(v.Kmer)}
		if v.Distance == 0 {
			attrs["shape"] = "box"
		}
		if err := g.AddNode("explore", "v"+strconv.Itoa(v.ID), attrs); err != nil {
			return err
		}
	}
	for _, e := range s.Edges {
		attrs := map[string]string{
			"label": strconv.Quote(strconv.Itoa(e.Color) + ":" + strconv.FormatUint(uint64(e.Weight), 10)),
			"color": edgeColors[e.Color%len(edgeColors)],
		}
		if e.Recruited {
			attrs["style"] = "dashed"
		}
		if err := g.AddEdge("v"+strconv.Itoa(e.From), "v"+strconv.Itoa(e.To), true, attrs); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, g.String())
	return err
}
