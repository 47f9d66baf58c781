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

import "github.com/exascience/elcortex/kmer"

type (
	// Iterator is a lazy, finite sequence of records in strictly
	// increasing k-mer order.
	Iterator interface {
		// Next advances to the next record and reports whether
		// there is one.
		Next() bool
		// Record returns the current record.
		Record() *Record
		// Err returns the first error that stopped the iteration.
		Err() error
	}

	// Source is the read-only view shared by graphs, collections,
	// and single records. All implementations are safe for
	// concurrent use once constructed.
	Source interface {
		Header() *Header
		KmerSize() int
		NumColors() int
		// Records returns a new iterator positioned before the
		// first record.
		Records() Iterator
		// Find returns the record for the canonical form of k, or
		// nil if the graph does not contain it.
		Find(k kmer.Kmer) (*Record, error)
	}
)

// CheckColor returns a ColorRangeError if color is not a valid color
// index of src.
func CheckColor(src Source, color int) error {
	if color < 0 || color >= src.NumColors() {
		return &ColorRangeError{Color: color, NumColors: src.NumColors()}
	}
	return nil
}

// SingleRecord is a Source that contains exactly one record.
type SingleRecord struct {
	header *Header
	record *Record
}

// NewSingleRecord wraps one record and the colors it is annotated
// with.
func NewSingleRecord(rec *Record, colors []ColorInfo) (*SingleRecord, error) {
	if len(rec.Colors) != len(colors) {
		return nil, &ColorCountError{Expected: len(colors), Actual: len(rec.Colors)}
	}
	return &SingleRecord{header: NewHeader(rec.Kmer.Len(), colors), record: rec}, nil
}

// Header implements Source.
func (s *SingleRecord) Header() *Header { return s.header }

// KmerSize implements Source.
func (s *SingleRecord) KmerSize() int { return int(s.header.KmerSize) }

// NumColors implements Source.
func (s *SingleRecord) NumColors() int { return int(s.header.NumColors) }

// Find implements Source.
func (s *SingleRecord) Find(k kmer.Kmer) (*Record, error) {
	if k.Len() != s.KmerSize() {
		return nil, &KmerSizeError{Expected: s.KmerSize(), Actual: k.Len()}
	}
	if k.Equal(s.record.Kmer) {
		return s.record, nil
	}
	return nil, nil
}

// Records implements Source.
func (s *SingleRecord) Records() Iterator {
	return &sliceIterator{records: []*Record{s.record}, index: -1}
}

type sliceIterator struct {
	records []*Record
	index   int
}

func (it *sliceIterator) Next() bool {
	if it.index+1 >= len(it.records) {
		it.index = len(it.records)
		return false
	}
	it.index++
	return true
}

func (it *sliceIterator) Record() *Record {
	if it.index < 0 || it.index >= len(it.records) {
		return nil
	}
	return it.records[it.index]
}

func (it *sliceIterator) Err() error { return nil }
