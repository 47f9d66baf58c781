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


package discover

import (
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/traversal"
)

// Component is one connected component of a partition.
type Component struct {
	ID       int
	Seed     kmer.Kmer
	Subgraph *traversal.Subgraph
	// Truncated is set when exploration stopped at the vertex limit.
	// Vertices beyond the limit end up in further components.
	Truncated bool
}

// truncate accepts once a traversal retains maxVertices vertices.
func truncate(maxVertices int) traversal.StoppingRule {
	return traversal.RuleFunc(func(h traversal.History, _ traversal.Vertex) traversal.Decision {
		if maxVertices > 0 && h.Visited >= maxVertices-1 {
			return traversal.AcceptAndStop
		}
		return traversal.Continue
	})
}

// unclaimed stops every branch at a k-mer that another component owns.
func unclaimed(claimed *IndexSet) traversal.StoppingRule {
	return traversal.RuleFunc(func(_ traversal.History, v traversal.Vertex) traversal.Decision {
		if claimed.Contains(v.Kmer) {
			return traversal.StopBranch
		}
		return traversal.Continue
	})
}

// Partition splits the k-mers with coverage in color into disjoint
// connected components, following the edges of that color only. Seeds
// are taken in record order and explored in parallel batches; a
// component found from a seed that an earlier component already
// contains is dropped, and a component that overlaps an earlier one of
// the same batch is explored again. A maxVertices of 0 means no limit.
// Record lookups are cached per batch.
func Partition(g *cortex.Graph, color, maxVertices int) ([]Component, error) {
	if err := checkColors(g, color); err != nil {
		return nil, err
	}
	claimed := roaring.New()
	cfg := traversal.NewConfig(color, traversal.WithStoppingRule(traversal.Chain(
		unclaimed(NewIndexSet(g, claimed)),
		truncate(maxVertices),
	)))
	claim := func(k kmer.Kmer) error {
		i, found, err := g.Index(k)
		if err == nil && found {
			claimed.Add(uint32(i))
		}
		return err
	}

	batchSize := 4 * runtime.GOMAXPROCS(0)
	seeds := make([]kmer.Kmer, 0, batchSize)
	found := make([]*traversal.Subgraph, batchSize)
	errs := make([]error, batchSize)
	var components []Component

	flush := func() error {
		// seeds of one batch often share a component
		e, err := traversal.NewEngine(cortex.NewCache(g), cfg)
		if err != nil {
			return err
		}
		// claimed is only read while the batch is explored
		parallel.Range(0, len(seeds), 0, func(low, high int) {
			for i := low; i < high; i++ {
				found[i], errs[i] = e.Explore(seeds[i])
			}
		})
		for i, seed := range seeds {
			if errs[i] != nil {
				return errs[i]
			}
			index, _, _ := g.Index(seed)
			if claimed.Contains(uint32(index)) || found[i] == nil {
				continue
			}
			sg := found[i]
			for _, v := range sg.Vertices() {
				if j, _, _ := g.Index(v.Kmer); claimed.Contains(uint32(j)) {
					if sg, err = e.Explore(seed); err != nil {
						return err
					}
					break
				}
			}
			if sg == nil {
				continue
			}
			for _, v := range sg.Vertices() {
				if err := claim(v.Kmer); err != nil {
					return err
				}
			}
			components = append(components, Component{
				ID:        len(components),
				Seed:      seed,
				Subgraph:  sg,
				Truncated: sg.Accepted(),
			})
		}
		seeds = seeds[:0]
		return nil
	}

	for i := uint64(0); i < g.Len(); i++ {
		if claimed.Contains(uint32(i)) {
			continue
		}
		rec, err := g.Get(i)
		if err != nil {
			return nil, err
		}
		if !rec.Present(color) {
			continue
		}
		seeds = append(seeds, rec.Kmer)
		if len(seeds) == batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return components, nil
}
