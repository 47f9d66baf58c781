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

package cortex

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/exascience/elcortex/kmer"
)

// Collection is a virtual k-way merge of several sources. It presents
// one record per distinct k-mer, with the colors of all sources laid
// out one after the other in source order.
type Collection struct {
	sources []Source
	offsets []int
	header  *Header
	owned   []*Graph
}

// NewCollection combines the given sources. All sources must have the
// same k-mer size.
func NewCollection(sources ...Source) (*Collection, error) {
	if len(sources) == 0 {
		return nil, errors.New("a collection needs at least one source")
	}
	k := sources[0].KmerSize()
	c := &Collection{
		sources: append([]Source(nil), sources...),
		offsets: make([]int, len(sources)),
	}
	var colors []ColorInfo
	for i, src := range sources {
		if src.KmerSize() != k {
			return nil, &MergeError{Source: i, Expected: k, Actual: src.KmerSize()}
		}
		c.offsets[i] = len(colors)
		colors = append(colors, src.Header().Colors...)
	}
	c.header = NewHeader(k, colors)
	return c, nil
}

// OpenCollection opens the given graph files concurrently and combines
// them. Close releases the files.
func OpenCollection(paths ...string) (*Collection, error) {
	graphs := make([]*Graph, len(paths))
	var group errgroup.Group
	for i, path := range paths {
		group.Go(func() (err error) {
			graphs[i], err = Open(path)
			return err
		})
	}
	err := group.Wait()
	if err == nil {
		sources := make([]Source, len(graphs))
		for i, g := range graphs {
			sources[i] = g
		}
		var c *Collection
		if c, err = NewCollection(sources...); err == nil {
			c.owned = graphs
			return c, nil
		}
	}
	for _, g := range graphs {
		if g != nil {
			_ = g.Close()
		}
	}
	return nil, err
}

// Close closes the graph files opened by OpenCollection.
func (c *Collection) Close() (err error) {
	for _, g := range c.owned {
		if nerr := g.Close(); err == nil {
			err = nerr
		}
	}
	c.owned = nil
	return
}

// Header implements Source.
func (c *Collection) Header() *Header { return c.header }

// KmerSize implements Source.
func (c *Collection) KmerSize() int { return int(c.header.KmerSize) }

// NumColors implements Source.
func (c *Collection) NumColors() int { return int(c.header.NumColors) }

// Sources returns the number of combined sources.
func (c *Collection) Sources() int { return len(c.sources) }

// ColorOffset returns the first global color of the given source.
func (c *Collection) ColorOffset(source int) int { return c.offsets[source] }

// ColorOwner maps a global color to its source and the color index
// within that source.
func (c *Collection) ColorOwner(color int) (source, local int, ok bool) {
	if color < 0 || color >= c.NumColors() {
		return -1, -1, false
	}
	for i := len(c.offsets) - 1; i >= 0; i-- {
		if color >= c.offsets[i] {
			return i, color - c.offsets[i], true
		}
	}
	return -1, -1, false
}

// ColorForSample returns the global color of the given sample.
func (c *Collection) ColorForSample(name string) (int, bool) {
	return c.header.ColorForSample(name)
}

// merge places the annotations of the given per-source records into
// one record. Sources without a record contribute zero annotations.
func (c *Collection) merge(k kmer.Kmer, words []uint64, records []*Record) *Record {
	colors := make([]ColorAnnotation, c.NumColors())
	for i, rec := range records {
		if rec != nil {
			copy(colors[c.offsets[i]:], rec.Colors)
		}
	}
	return &Record{Kmer: k.Canonical(), Words: words, Colors: colors}
}

// Find implements Source by looking up k in every source.
func (c *Collection) Find(k kmer.Kmer) (*Record, error) {
	if k.Len() != c.KmerSize() {
		return nil, &KmerSizeError{Expected: c.KmerSize(), Actual: k.Len()}
	}
	records := make([]*Record, len(c.sources))
	var found bool
	for i, src := range c.sources {
		rec, err := src.Find(k)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records[i] = rec
			found = true
		}
	}
	if !found {
		return nil, nil
	}
	return c.merge(k, kmer.Pack(k), records), nil
}

// Records implements Source with a streaming k-way merge. Every call
// restarts all underlying sources.
func (c *Collection) Records() Iterator {
	it := &mergeIterator{
		c:       c,
		iters:   make([]Iterator, len(c.sources)),
		current: make([]*Record, len(c.sources)),
		matched: make([]*Record, len(c.sources)),
	}
	for i, src := range c.sources {
		it.iters[i] = src.Records()
		it.advance(i)
	}
	return it
}

type mergeIterator struct {
	c       *Collection
	iters   []Iterator
	current []*Record
	matched []*Record
	record  *Record
	err     error
	// pending is reported after the record that was merged before it.
	pending error
}

func (it *mergeIterator) advance(i int) {
	if it.iters[i].Next() {
		it.current[i] = it.iters[i].Record()
		return
	}
	it.current[i] = nil
	if err := it.iters[i].Err(); err != nil && it.pending == nil {
		it.pending = err
	}
}

func (it *mergeIterator) Next() bool {
	it.record = nil
	if it.err == nil {
		it.err = it.pending
	}
	if it.err != nil {
		return false
	}
	var least *Record
	for _, rec := range it.current {
		if rec != nil && (least == nil || kmer.CompareWords(rec.Words, least.Words) < 0) {
			least = rec
		}
	}
	if least == nil {
		return false
	}
	for i, rec := range it.current {
		it.matched[i] = nil
		if rec != nil && kmer.CompareWords(rec.Words, least.Words) == 0 {
			it.matched[i] = rec
		}
	}
	it.record = it.c.merge(least.Kmer, least.Words, it.matched)
	for i, rec := range it.matched {
		if rec != nil {
			it.advance(i)
		}
	}
	return true
}

func (it *mergeIterator) Record() *Record { return it.record }

func (it *mergeIterator) Err() error { return it.err }
