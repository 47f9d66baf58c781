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
	"bufio"
	"fmt"
	"os"

	"github.com/exascience/elcortex/kmer"
)

// Writer writes a graph file. Records must be added in strictly
// increasing k-mer order; the file is complete once Close returns.
type Writer struct {
	path   string
	header *Header
	file   *os.File
	out    *bufio.Writer
	buf    []byte
	last   []uint64
	count  uint64
}

// Create creates a graph file and writes its header.
func Create(path string, header *Header) (w *Writer, err error) {
	if err := header.validate(); err != nil {
		return nil, fmt.Errorf("%v, while creating graph file %v", err, path)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w = &Writer{
		path:   path,
		header: header,
		file:   file,
		out:    bufio.NewWriterSize(file, 1<<20),
	}
	if _, err = w.out.Write(header.AppendBinary(nil)); err != nil {
		_ = file.Close()
		return nil, err
	}
	return w, nil
}

// AddRecord appends a record. It rejects records that are not
// strictly greater than the previous one, and records whose k-mer size
// or number of colors does not match the header.
func (w *Writer) AddRecord(rec *Record) error {
	if k := int(w.header.KmerSize); rec.Kmer.Len() != k {
		return &KmerSizeError{Expected: k, Actual: rec.Kmer.Len()}
	}
	if nc := int(w.header.NumColors); len(rec.Colors) != nc {
		return &ColorCountError{Expected: nc, Actual: len(rec.Colors)}
	}
	words := rec.Words
	if words == nil {
		words = kmer.Pack(rec.Kmer)
	}
	if w.last != nil && kmer.CompareWords(w.last, words) >= 0 {
		previous, _ := kmer.Unpack(w.last, int(w.header.KmerSize))
		return &OutOfOrderError{Previous: string(previous), Current: rec.Kmer.String()}
	}
	w.buf = appendRecord(w.buf[:0], &Record{Kmer: rec.Kmer, Words: words, Colors: rec.Colors})
	if _, err := w.out.Write(w.buf); err != nil {
		return fmt.Errorf("%v, while writing to %v", err, w.path)
	}
	w.last = append(w.last[:0], words...)
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() uint64 {
	return w.count
}

// Close flushes and closes the graph file.
func (w *Writer) Close() error {
	err := w.out.Flush()
	if nerr := w.file.Close(); err == nil {
		err = nerr
	}
	return err
}
