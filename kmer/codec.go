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

import "fmt"

// WordCount returns the number of 64-bit words needed to store a k-mer
// of k bases at 2 bits per base.
func WordCount(k int) int {
	return (2*k + 63) >> 6
}

// Pack packs the canonical bases of k into big-endian 64-bit words.
// The last base occupies the two low bits of the last word; unused
// high bits of the first word are zero. Lexicographic comparison of
// packed words therefore matches lexicographic comparison of bases.
func Pack(k Kmer) []uint64 {
	return PackInto(make([]uint64, WordCount(len(k.bases))), k.bases)
}

// PackInto packs bases into words, which must hold exactly
// WordCount(len(bases)) entries. The bases must be valid upper-case
// nucleotides.
func PackInto(words []uint64, bases string) []uint64 {
	for i := range words {
		words[i] = 0
	}
	n, nw := len(bases), len(words)
	for i := 0; i < n; i++ {
		pos := 2 * (n - 1 - i)
		words[nw-1-(pos>>6)] |= uint64(baseCodes[bases[i]]) << uint(pos&63)
	}
	return words
}

// Unpack decodes k bases from their packed words.
func Unpack(words []uint64, k int) ([]byte, error) {
	if k <= 0 {
		return nil, ErrEmptyKmer
	}
	nw := WordCount(k)
	if len(words) != nw {
		return nil, fmt.Errorf("expected %v words for a %v-mer, got %v", nw, k, len(words))
	}
	if used := uint(2*k) & 63; used != 0 && words[0]>>used != 0 {
		return nil, fmt.Errorf("non-zero padding bits in packed %v-mer", k)
	}
	result := make([]byte, k)
	for i := 0; i < k; i++ {
		pos := 2 * (k - 1 - i)
		result[i] = codeBases[(words[nw-1-(pos>>6)]>>uint(pos&63))&3]
	}
	return result, nil
}

// FromWords unpacks words into a canonical Kmer.
func FromWords(words []uint64, k int) (Kmer, error) {
	bases, err := Unpack(words, k)
	if err != nil {
		return Kmer{}, err
	}
	return FromBytes(bases)
}

// CompareWords compares two packed k-mers lexicographically. It
// returns -1, 0, or +1.
func CompareWords(a, b []uint64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
