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
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/exascience/elcortex/internal"
	"github.com/exascience/elcortex/kmer"
)

// Graph is an immutable record store backed by a memory-mapped graph
// file. Records are sorted by their packed canonical k-mers and
// contain no duplicates.
type Graph struct {
	path       string
	header     *Header
	file       *os.File
	data       []byte
	records    []byte
	recordSize int
	n          uint64
}

// Open memory-maps a graph file and validates its header against the
// file length.
func Open(path string) (g *Graph, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = file.Close()
		}
	}()
	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() < int64(len(Magic)) {
		return nil, &CorruptHeaderError{Path: path, Reason: "file too short"}
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%v, while mapping graph file %v", err, path)
	}
	defer func() {
		if err != nil {
			_ = unix.Munmap(data)
		}
	}()
	header, headerLen, err := decodeHeader(data)
	if err != nil {
		return nil, &CorruptHeaderError{Path: path, Reason: err.Error()}
	}
	recordSize := header.RecordSize()
	body := len(data) - headerLen
	if body%recordSize != 0 {
		return nil, &CorruptHeaderError{
			Path:   path,
			Reason: fmt.Sprintf("%v record bytes are not a multiple of the record size %v for %v words and %v colors", body, recordSize, header.WordCount, header.NumColors),
		}
	}
	g = &Graph{
		path:       path,
		header:     header,
		file:       file,
		data:       data,
		records:    data[headerLen:],
		recordSize: recordSize,
		n:          uint64(body / recordSize),
	}
	if internal.PedanticMode {
		if err = g.checkOrder(); err != nil {
			return nil, fmt.Errorf("%v, in graph file %v", err, path)
		}
	}
	return g, nil
}

// checkOrder scans all records for the sort order that binary search
// relies on.
func (g *Graph) checkOrder() error {
	wordCount := int(g.header.WordCount)
	previous := make([]uint64, wordCount)
	current := make([]uint64, wordCount)
	for i := uint64(0); i < g.n; i++ {
		recordWords(g.encoded(i), current)
		if i > 0 && kmer.CompareWords(previous, current) >= 0 {
			k := int(g.header.KmerSize)
			prev, _ := kmer.Unpack(previous, k)
			cur, _ := kmer.Unpack(current, k)
			return &OutOfOrderError{Previous: string(prev), Current: string(cur)}
		}
		previous, current = current, previous
	}
	return nil
}

// Close unmaps and closes the graph file.
func (g *Graph) Close() error {
	if g.data == nil {
		return nil
	}
	err := unix.Munmap(g.data)
	g.data, g.records = nil, nil
	if nerr := g.file.Close(); err == nil {
		err = nerr
	}
	g.file = nil
	return err
}

// Path returns the file name the graph was opened from.
func (g *Graph) Path() string { return g.path }

// Header implements Source.
func (g *Graph) Header() *Header { return g.header }

// KmerSize implements Source.
func (g *Graph) KmerSize() int { return int(g.header.KmerSize) }

// NumColors implements Source.
func (g *Graph) NumColors() int { return int(g.header.NumColors) }

// Len returns the number of records.
func (g *Graph) Len() uint64 { return g.n }

// ColorForSample returns the color of the given sample.
func (g *Graph) ColorForSample(name string) (int, bool) {
	return g.header.ColorForSample(name)
}

func (g *Graph) encoded(i uint64) []byte {
	offset := i * uint64(g.recordSize)
	return g.records[offset : offset+uint64(g.recordSize)]
}

// Get returns the record at position i.
func (g *Graph) Get(i uint64) (*Record, error) {
	if i >= g.n {
		return nil, &OutOfRangeError{Index: i, Len: g.n}
	}
	rec, err := decodeRecord(g.encoded(i), g.KmerSize(), int(g.header.WordCount), g.NumColors())
	if err != nil {
		return nil, fmt.Errorf("%v, while decoding record %v of %v", err, i, g.path)
	}
	return rec, nil
}

// Index returns the position of the canonical form of k, or false if
// the graph does not contain it.
func (g *Graph) Index(k kmer.Kmer) (uint64, bool, error) {
	if k.Len() != g.KmerSize() {
		return 0, false, &KmerSizeError{Expected: g.KmerSize(), Actual: k.Len()}
	}
	target := kmer.Pack(k)
	words := make([]uint64, len(target))
	n := int(g.n)
	i := sort.Search(n, func(i int) bool {
		return kmer.CompareWords(recordWords(g.encoded(uint64(i)), words), target) >= 0
	})
	if i < n && kmer.CompareWords(recordWords(g.encoded(uint64(i)), words), target) == 0 {
		return uint64(i), true, nil
	}
	return 0, false, nil
}

// Find implements Source with a binary search over the packed k-mers.
func (g *Graph) Find(k kmer.Kmer) (*Record, error) {
	i, found, err := g.Index(k)
	if err != nil || !found {
		return nil, err
	}
	return g.Get(i)
}

// Records implements Source. Every call starts again at the first
// record.
func (g *Graph) Records() Iterator {
	return &graphIterator{g: g}
}

type graphIterator struct {
	g      *Graph
	next   uint64
	record *Record
	err    error
}

func (it *graphIterator) Next() bool {
	if it.err != nil || it.next >= it.g.n {
		it.record = nil
		return false
	}
	it.record, it.err = it.g.Get(it.next)
	if it.err != nil {
		it.record = nil
		return false
	}
	it.next++
	return true
}

func (it *graphIterator) Record() *Record { return it.record }

func (it *graphIterator) Err() error { return it.err }

// Batch is the unit of data a graph pipeline source produces: a run of
// consecutive records starting at position Start.
type Batch struct {
	Start   uint64
	Records []*Record
}

// Source returns a pargo pipeline source that produces the records of
// the graph in order, in batches of type Batch.
func (g *Graph) Source() *GraphSource {
	return &GraphSource{g: g}
}

// GraphSource implements pipeline.Source for a Graph.
type GraphSource struct {
	g     *Graph
	ctx   context.Context
	next  uint64
	batch Batch
	err   error
}

// Err implements the method of the pipeline.Source interface.
func (src *GraphSource) Err() error {
	return src.err
}

// Prepare implements the method of the pipeline.Source interface.
func (src *GraphSource) Prepare(ctx context.Context) (size int) {
	src.ctx = ctx
	src.next = 0
	return int(src.g.n)
}

// Fetch implements the method of the pipeline.Source interface.
func (src *GraphSource) Fetch(size int) (fetched int) {
	if src.err != nil || src.next >= src.g.n {
		return 0
	}
	if src.ctx != nil {
		select {
		case <-src.ctx.Done():
			return 0
		default:
		}
	}
	end := src.next + uint64(size)
	if end > src.g.n {
		end = src.g.n
	}
	records := make([]*Record, 0, end-src.next)
	for i := src.next; i < end; i++ {
		rec, err := src.g.Get(i)
		if err != nil {
			src.err = err
			return 0
		}
		records = append(records, rec)
	}
	src.batch = Batch{Start: src.next, Records: records}
	src.next = end
	return len(records)
}

// Data implements the method of the pipeline.Source interface.
func (src *GraphSource) Data() interface{} {
	return src.batch
}
