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
	"errors"
	"fmt"
	"math"

	"github.com/exascience/elcortex/kmer"
)

// Magic is the byte sequence every graph file starts with.
var Magic = []byte("CORTEXG\x01")

// FormatVersion is the version written into new graph files.
const FormatVersion = 7

// ColorInfo is the per-color metadata stored in a graph header.
type ColorInfo struct {
	SampleName     string
	Cleaned        bool
	CleanedAgainst string
	ErrorRate      float64
	MeanReadLength uint32
	TotalSequence  uint64
}

// Header describes the k-mer size and colors of a graph.
type Header struct {
	Version   uint32
	KmerSize  uint32
	WordCount uint32
	NumColors uint32
	Colors    []ColorInfo
}

// NewHeader returns a header for the given k-mer size and colors.
func NewHeader(k int, colors []ColorInfo) *Header {
	return &Header{
		Version:   FormatVersion,
		KmerSize:  uint32(k),
		WordCount: uint32(kmer.WordCount(k)),
		NumColors: uint32(len(colors)),
		Colors:    append([]ColorInfo(nil), colors...),
	}
}

// ColorForSample returns the first color with the given sample name.
func (hdr *Header) ColorForSample(name string) (int, bool) {
	for i, info := range hdr.Colors {
		if info.SampleName == name {
			return i, true
		}
	}
	return -1, false
}

// RecordSize returns the number of bytes of one encoded record.
func (hdr *Header) RecordSize() int {
	return 8*int(hdr.WordCount) + 5*int(hdr.NumColors)
}

func (hdr *Header) validate() error {
	if hdr.KmerSize == 0 {
		return errors.New("k-mer size is 0")
	}
	if wc := uint32(kmer.WordCount(int(hdr.KmerSize))); hdr.WordCount != wc {
		return fmt.Errorf("word count %v inconsistent with k=%v (expected %v)", hdr.WordCount, hdr.KmerSize, wc)
	}
	if hdr.NumColors == 0 {
		return errors.New("no colors")
	}
	if int(hdr.NumColors) != len(hdr.Colors) {
		return fmt.Errorf("%v colors declared, %v described", hdr.NumColors, len(hdr.Colors))
	}
	return nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// AppendBinary appends the encoded header to buf.
func (hdr *Header) AppendBinary(buf []byte) []byte {
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, hdr.Version)
	buf = binary.LittleEndian.AppendUint32(buf, hdr.KmerSize)
	buf = binary.LittleEndian.AppendUint32(buf, hdr.WordCount)
	buf = binary.LittleEndian.AppendUint32(buf, hdr.NumColors)
	for _, info := range hdr.Colors {
		buf = appendString(buf, info.SampleName)
		if info.Cleaned {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = appendString(buf, info.CleanedAgainst)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(info.ErrorRate))
		buf = binary.LittleEndian.AppendUint32(buf, info.MeanReadLength)
		buf = binary.LittleEndian.AppendUint64(buf, info.TotalSequence)
	}
	return buf
}

// headerDecoder reads little-endian fields from a byte slice and
// remembers the first truncation.
type headerDecoder struct {
	data  []byte
	index int
	err   error
}

func (d *headerDecoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.index+n > len(d.data) {
		d.err = errors.New("truncated header")
		return nil
	}
	b := d.data[d.index : d.index+n]
	d.index += n
	return b
}

func (d *headerDecoder) uint32() uint32 {
	if b := d.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (d *headerDecoder) uint64() uint64 {
	if b := d.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *headerDecoder) str() string {
	n := d.uint32()
	if b := d.take(int(n)); b != nil {
		return string(b)
	}
	return ""
}

// decodeHeader parses a header from the start of data and returns it
// together with its encoded length.
func decodeHeader(data []byte) (*Header, int, error) {
	d := &headerDecoder{data: data}
	magic := d.take(len(Magic))
	if d.err != nil {
		return nil, 0, d.err
	}
	if string(magic) != string(Magic) {
		return nil, 0, errors.New("invalid magic byte sequence")
	}
	hdr := &Header{
		Version:   d.uint32(),
		KmerSize:  d.uint32(),
		WordCount: d.uint32(),
		NumColors: d.uint32(),
	}
	if d.err != nil {
		return nil, 0, d.err
	}
	if hdr.Version != FormatVersion {
		return nil, 0, fmt.Errorf("unsupported format version %v", hdr.Version)
	}
	// every color needs at least 29 bytes, which bounds NumColors before allocating
	if uint64(hdr.NumColors)*29 > uint64(len(data)-d.index) {
		return nil, 0, fmt.Errorf("%v colors do not fit in the file", hdr.NumColors)
	}
	hdr.Colors = make([]ColorInfo, hdr.NumColors)
	for i := range hdr.Colors {
		info := &hdr.Colors[i]
		info.SampleName = d.str()
		if b := d.take(1); b != nil {
			info.Cleaned = b[0] != 0
		}
		info.CleanedAgainst = d.str()
		info.ErrorRate = math.Float64frombits(d.uint64())
		info.MeanReadLength = d.uint32()
		info.TotalSequence = d.uint64()
	}
	if d.err != nil {
		return nil, 0, d.err
	}
	if err := hdr.validate(); err != nil {
		return nil, 0, err
	}
	return hdr, d.index, nil
}
