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
	"encoding/binary"
	"math"
	"strconv"

	"github.com/exascience/elcortex/kmer"
)

// MaxCoverage is the saturation value for per-color coverage.
const MaxCoverage = math.MaxUint32

// SaturatingAdd adds two coverage counts without exceeding MaxCoverage.
func SaturatingAdd(a, b uint32) uint32 {
	if sum := a + b; sum >= a {
		return sum
	}
	return MaxCoverage
}

// ColorAnnotation is the coverage and edge byte of one color of a
// record.
type ColorAnnotation struct {
	Coverage uint32
	Edges    kmer.Edges
}

// Record is a canonical k-mer together with its annotations for every
// color of a graph. Records are not modified after construction.
type Record struct {
	Kmer   kmer.Kmer
	Words  []uint64
	Colors []ColorAnnotation
}

// NewRecord returns a record for the canonical form of k.
func NewRecord(k kmer.Kmer, colors []ColorAnnotation) *Record {
	k = k.Canonical()
	return &Record{Kmer: k, Words: kmer.Pack(k), Colors: colors}
}

// Coverage returns the coverage of the given color.
func (rec *Record) Coverage(color int) uint32 {
	return rec.Colors[color].Coverage
}

// Edges returns the edges of the given color in canonical orientation.
func (rec *Record) Edges(color int) kmer.Edges {
	return rec.Colors[color].Edges
}

// OrientedEdges returns the edges of the given color as seen from the
// given orientation of the record's k-mer.
func (rec *Record) OrientedEdges(color int, o kmer.Orientation) kmer.Edges {
	return rec.Colors[color].Edges.Oriented(o)
}

// Present reports whether the k-mer has coverage in the given color.
func (rec *Record) Present(color int) bool {
	return rec.Colors[color].Coverage > 0
}

// String formats the record as the k-mer followed by the coverage and
// edges of every color.
func (rec *Record) String() string {
	buf := []byte(rec.Kmer.String())
	for _, c := range rec.Colors {
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(c.Coverage), 10)
	}
	for _, c := range rec.Colors {
		buf = append(buf, ' ')
		buf = append(buf, c.Edges.String()...)
	}
	return string(buf)
}

// appendRecord encodes rec as word count words, coverages, and edges.
func appendRecord(buf []byte, rec *Record) []byte {
	for _, w := range rec.Words {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	for _, c := range rec.Colors {
		buf = binary.LittleEndian.AppendUint32(buf, c.Coverage)
	}
	for _, c := range rec.Colors {
		buf = append(buf, byte(c.Edges))
	}
	return buf
}

// recordWords decodes only the packed k-mer of an encoded record.
func recordWords(data []byte, words []uint64) []uint64 {
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[8*i:])
	}
	return words
}

// decodeRecord decodes a record of the given shape.
func decodeRecord(data []byte, k, wordCount, numColors int) (*Record, error) {
	words := recordWords(data, make([]uint64, wordCount))
	km, err := kmer.FromWords(words, k)
	if err != nil {
		return nil, err
	}
	colors := make([]ColorAnnotation, numColors)
	index := 8 * wordCount
	for i := range colors {
		colors[i].Coverage = binary.LittleEndian.Uint32(data[index:])
		index += 4
	}
	for i := range colors {
		colors[i].Edges = kmer.Edges(data[index])
		index++
	}
	return &Record{Kmer: km, Words: words, Colors: colors}, nil
}
