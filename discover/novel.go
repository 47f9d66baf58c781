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


// Package discover runs the traversal engine over whole graphs: it
// finds k-mers private to one sample, assembles them into contigs, and
// partitions a graph into connected components.
package discover

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/traversal"
)

func checkColors(g *cortex.Graph, colors ...int) error {
	for _, c := range colors {
		if err := cortex.CheckColor(g, c); err != nil {
			return err
		}
	}
	if g.Len() > math.MaxUint32 {
		return fmt.Errorf("graph %v has %v records, more than can be indexed", g.Path(), g.Len())
	}
	return nil
}

// NovelKmers returns the indices of the records that have coverage in
// child and no coverage in any of the parents.
func NovelKmers(g *cortex.Graph, child int, parents []int) (*roaring.Bitmap, error) {
	if err := checkColors(g, append([]int{child}, parents...)...); err != nil {
		return nil, err
	}
	result := roaring.New()
	var p pipeline.Pipeline
	p.Source(g.Source())
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			batch := data.(cortex.Batch)
			local := roaring.New()
		records:
			for i, rec := range batch.Records {
				if !rec.Present(child) {
					continue
				}
				for _, parent := range parents {
					if rec.Present(parent) {
						continue records
					}
				}
				local.Add(uint32(batch.Start) + uint32(i))
			}
			return local
		})),
		pipeline.Seq(pipeline.Receive(func(_ int, data interface{}) interface{} {
			result.Or(data.(*roaring.Bitmap))
			return nil
		})),
	)
	p.Run()
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%v, while searching novel k-mers in %v", err, g.Path())
	}
	return result, nil
}

// IndexSet is a traversal.KmerSet of record indices of one graph.
type IndexSet struct {
	graph   *cortex.Graph
	indices *roaring.Bitmap
}

// NewIndexSet wraps a set of record indices of g.
func NewIndexSet(g *cortex.Graph, indices *roaring.Bitmap) *IndexSet {
	return &IndexSet{graph: g, indices: indices}
}

// Contains implements traversal.KmerSet.
func (set *IndexSet) Contains(k kmer.Kmer) bool {
	i, found, err := set.graph.Index(k)
	return err == nil && found && set.indices.Contains(uint32(i))
}

// Remove deletes the record of k from the set.
func (set *IndexSet) Remove(k kmer.Kmer) {
	if i, found, err := set.graph.Index(k); err == nil && found {
		set.indices.Remove(uint32(i))
	}
}

// Contig is a linear run of novel k-mers.
type Contig struct {
	Seed     kmer.Kmer
	Path     []traversal.Vertex
	Sequence string
}

// NovelContigs walks the novel k-mers of child in record order. Every
// walk stays inside the novel k-mers that no earlier contig used, so
// each novel k-mer ends up in exactly one contig.
func NovelContigs(g *cortex.Graph, child int, parents []int) ([]Contig, error) {
	novel, err := NovelKmers(g, child, parents)
	if err != nil {
		return nil, err
	}
	unused := NewIndexSet(g, novel.Clone())
	e, err := traversal.NewEngine(g, traversal.NewConfig(child, traversal.WithStoppingRule(traversal.NovelContinuation(unused))))
	if err != nil {
		return nil, err
	}
	var contigs []Contig
	for it := novel.Iterator(); it.HasNext(); {
		i := it.Next()
		if !unused.indices.Contains(i) {
			continue
		}
		rec, err := g.Get(uint64(i))
		if err != nil {
			return nil, err
		}
		path, err := e.Walk(rec.Kmer)
		if err != nil {
			return nil, err
		}
		for _, v := range path {
			unused.Remove(v.Kmer)
		}
		contigs = append(contigs, Contig{Seed: rec.Kmer, Path: path, Sequence: traversal.Sequence(path)})
	}
	return contigs, nil
}
