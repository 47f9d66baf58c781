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
	"sort"

	"github.com/exascience/elcortex/kmer"
)

// Builder accumulates k-mers from sequences into records. It is not
// safe for concurrent use.
type Builder struct {
	k         int
	colors    []ColorInfo
	sequences []uint64
	records   map[string]*Record
}

// NewBuilder returns a builder for the given k-mer size and colors.
func NewBuilder(k int, colors ...ColorInfo) (*Builder, error) {
	if k <= 0 {
		return nil, kmer.ErrEmptyKmer
	}
	if len(colors) == 0 {
		return nil, errors.New("a graph needs at least one color")
	}
	return &Builder{
		k:         k,
		colors:    append([]ColorInfo(nil), colors...),
		sequences: make([]uint64, len(colors)),
		records:   make(map[string]*Record),
	}, nil
}

// KmerSize returns k.
func (b *Builder) KmerSize() int { return b.k }

// Len returns the number of distinct k-mers added so far.
func (b *Builder) Len() int { return len(b.records) }

// AddSequence adds every k-mer of seq to the given color, incrementing
// coverage and linking consecutive k-mers with edges. Non-nucleotide
// bases split the sequence; k-mers never span them.
func (b *Builder) AddSequence(color int, seq string) error {
	if color < 0 || color >= len(b.colors) {
		return &ColorRangeError{Color: color, NumColors: len(b.colors)}
	}
	b.sequences[color]++
	info := &b.colors[color]
	info.TotalSequence += uint64(len(seq))
	info.MeanReadLength = uint32(info.TotalSequence / b.sequences[color])
	start := -1
	for stop := 0; stop < len(seq); stop++ {
		if !kmer.ValidBase(seq[stop]) {
			if start != -1 && stop-start >= b.k {
				b.addRun(color, seq[start:stop])
			}
			start = -1
		} else if start == -1 {
			start = stop
		}
	}
	if start != -1 && len(seq)-start >= b.k {
		b.addRun(color, seq[start:])
	}
	return nil
}

func (b *Builder) addRun(color int, run string) {
	for i := 0; i+b.k <= len(run); i++ {
		km := kmer.MustNew(run[i : i+b.k])
		rec := b.records[km.String()]
		if rec == nil {
			rec = NewRecord(km, make([]ColorAnnotation, len(b.colors)))
			b.records[km.String()] = rec
		}
		annotation := &rec.Colors[color]
		annotation.Coverage = SaturatingAdd(annotation.Coverage, 1)
		var edges kmer.Edges
		if i > 0 {
			edges = edges.WithIn(run[i-1])
		}
		if i+b.k < len(run) {
			edges = edges.WithOut(run[i+b.k])
		}
		annotation.Edges |= edges.Oriented(km.Orientation())
	}
}

// Header returns the header describing the records built so far.
func (b *Builder) Header() *Header {
	return NewHeader(b.k, b.colors)
}

// Records returns the records in increasing k-mer order.
func (b *Builder) Records() []*Record {
	result := make([]*Record, 0, len(b.records))
	for _, rec := range b.records {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return kmer.CompareWords(result[i].Words, result[j].Words) < 0
	})
	return result
}

// Write stores the records in a new graph file.
func (b *Builder) Write(path string) (funcErr error) {
	w, err := Create(path, b.Header())
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	for _, rec := range b.Records() {
		if err := w.AddRecord(rec); err != nil {
			return err
		}
	}
	return nil
}
