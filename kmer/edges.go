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

package kmer

import "math/bits"

// BaseSet is a 4-bit set of nucleotides: bit 3 is A, bit 2 is C,
// bit 1 is G, and bit 0 is T.
type BaseSet uint8

// SetOf returns the set containing the given bases. Invalid bases are
// ignored.
func SetOf(bases ...byte) (set BaseSet) {
	for _, b := range bases {
		set = set.With(b)
	}
	return
}

func baseBit(base byte) BaseSet {
	if code := baseCodes[base]; code >= 0 {
		return 8 >> uint(code)
	}
	return 0
}

// With returns the set extended by base.
func (s BaseSet) With(base byte) BaseSet {
	return s | baseBit(base)
}

// Contains reports whether base is in the set.
func (s BaseSet) Contains(base byte) bool {
	bit := baseBit(base)
	return bit != 0 && s&bit != 0
}

// Len returns the number of bases in the set.
func (s BaseSet) Len() int {
	return bits.OnesCount8(uint8(s & 0xF))
}

// Bases returns the members of the set in A, C, G, T order.
func (s BaseSet) Bases() []byte {
	result := make([]byte, 0, 4)
	for code, base := range codeBases {
		if s&(8>>uint(code)) != 0 {
			result = append(result, base)
		}
	}
	return result
}

// Intersect returns the bases present in both sets.
func (s BaseSet) Intersect(t BaseSet) BaseSet {
	return s & t
}

// Union returns the bases present in either set.
func (s BaseSet) Union(t BaseSet) BaseSet {
	return s | t
}

// Complement returns the set of complementary bases.
func (s BaseSet) Complement() BaseSet {
	return BaseSet(bits.Reverse8(uint8(s&0xF)) >> 4)
}

func (s BaseSet) String() string {
	return string(s.Bases())
}

// Edges is the per-color edge byte of a record. The high nibble holds
// the incoming bases and the low nibble the outgoing bases, both
// relative to the canonical orientation of the record's k-mer: an
// incoming base b means b+kmer[:k-1] is in the graph, an outgoing base
// b means kmer[1:]+b is in the graph.
type Edges uint8

// NewEdges combines incoming and outgoing base sets.
func NewEdges(in, out BaseSet) Edges {
	return Edges((in&0xF)<<4 | out&0xF)
}

// In returns the incoming bases.
func (e Edges) In() BaseSet {
	return BaseSet(e >> 4)
}

// Out returns the outgoing bases.
func (e Edges) Out() BaseSet {
	return BaseSet(e & 0xF)
}

// WithIn adds an incoming base.
func (e Edges) WithIn(base byte) Edges {
	return e | Edges(baseBit(base))<<4
}

// WithOut adds an outgoing base.
func (e Edges) WithOut(base byte) Edges {
	return e | Edges(baseBit(base))
}

// Flip reinterprets the edges for the reverse complement of the k-mer.
// Reversing all eight bits swaps incoming and outgoing and complements
// every base at the same time.
func (e Edges) Flip() Edges {
	return Edges(bits.Reverse8(uint8(e)))
}

// Oriented returns the edges as seen from the given orientation.
func (e Edges) Oriented(o Orientation) Edges {
	if o == Reverse {
		return e.Flip()
	}
	return e
}

// String formats the edges as eight characters "acgtACGT", lower case
// for incoming and upper case for outgoing bases, '.' for absent ones.
func (e Edges) String() string {
	var buf [8]byte
	for code, base := range codeBases {
		buf[code], buf[code+4] = '.', '.'
		if e.In()&(8>>uint(code)) != 0 {
			buf[code] = base + 'a' - 'A'
		}
		if e.Out()&(8>>uint(code)) != 0 {
			buf[code+4] = base
		}
	}
	return string(buf[:])
}
