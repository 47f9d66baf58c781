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

// Package kmer implements canonical k-mers, their packed 2-bit word
// representation, and the per-color edge bytes that connect them.
package kmer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyKmer is returned when a k-mer of length 0 is requested.
var ErrEmptyKmer = errors.New("k-mer must contain at least one base")

// A DecodeError reports a byte that is not one of A, C, G, T.
type DecodeError struct {
	Base     byte
	Position int
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("invalid base %q at position %v in k-mer", err.Base, err.Position)
}

// baseCodes maps nucleotides to their 2-bit codes; -1 marks invalid bytes.
var baseCodes [256]int8

var codeBases = [4]byte{'A', 'C', 'G', 'T'}

var complements [256]byte

func init() {
	for i := range baseCodes {
		baseCodes[i] = -1
	}
	for code, base := range codeBases {
		baseCodes[base] = int8(code)
		baseCodes[base+'a'-'A'] = int8(code)
	}
	for i := range complements {
		complements[i] = 'N'
	}
	complements['A'], complements['C'], complements['G'], complements['T'] = 'T', 'G', 'C', 'A'
	complements['a'], complements['c'], complements['g'], complements['t'] = 'T', 'G', 'C', 'A'
}

// Complement returns the upper-case complement of the given base, or
// 'N' for anything that is not a nucleotide.
func Complement(base byte) byte {
	return complements[base]
}

// ValidBase reports whether base is one of A, C, G, T (in either case).
func ValidBase(base byte) bool {
	return baseCodes[base] >= 0
}

// ReverseComplement returns the reverse complement of the given bases.
func ReverseComplement(bases string) string {
	n := len(bases)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		result[n-1-i] = complements[bases[i]]
	}
	return string(result)
}

// Kmer is a canonical k-mer: the lexicographically smaller of a
// sequence and its reverse complement. The zero value is not a valid
// k-mer.
//
// Equality, ordering and hashing (via String) only consider the
// canonical bases. Flipped records whether the sequence the k-mer was
// created from was the reverse complement of the canonical bases.
type Kmer struct {
	bases   string
	flipped bool
}

// New canonicalizes the given bases.
func New(bases string) (Kmer, error) {
	if len(bases) == 0 {
		return Kmer{}, ErrEmptyKmer
	}
	upper := make([]byte, len(bases))
	for i := 0; i < len(bases); i++ {
		code := baseCodes[bases[i]]
		if code < 0 {
			return Kmer{}, &DecodeError{Base: bases[i], Position: i}
		}
		upper[i] = codeBases[code]
	}
	forward := string(upper)
	reverse := ReverseComplement(forward)
	if reverse < forward {
		return Kmer{bases: reverse, flipped: true}, nil
	}
	return Kmer{bases: forward}, nil
}

// FromBytes is New for a byte slice.
func FromBytes(bases []byte) (Kmer, error) {
	return New(string(bases))
}

// MustNew is New with a panic in place of an error. It is intended for
// constants and tests.
func MustNew(bases string) Kmer {
	k, err := New(bases)
	if err != nil {
		panic(err)
	}
	return k
}

// String returns the canonical bases.
func (k Kmer) String() string {
	return k.bases
}

// Len returns the number of bases.
func (k Kmer) Len() int {
	return len(k.bases)
}

// IsZero reports whether k is the zero Kmer.
func (k Kmer) IsZero() bool {
	return k.bases == ""
}

// Flipped reports whether the originally supplied orientation differs
// from the canonical one.
func (k Kmer) Flipped() bool {
	return k.flipped
}

// Oriented returns the bases in the orientation the k-mer was created
// from.
func (k Kmer) Oriented() string {
	if k.flipped {
		return ReverseComplement(k.bases)
	}
	return k.bases
}

// Canonical returns the same k-mer with the flipped flag cleared.
func (k Kmer) Canonical() Kmer {
	return Kmer{bases: k.bases}
}

// Orientation returns Forward for k-mers given in canonical
// orientation, and Reverse otherwise.
func (k Kmer) Orientation() Orientation {
	if k.flipped {
		return Reverse
	}
	return Forward
}

// Equal compares the canonical bases of two k-mers.
func (k Kmer) Equal(other Kmer) bool {
	return k.bases == other.bases
}

// Compare orders k-mers by their canonical bases. For k-mers of equal
// length this agrees with CompareWords on their packed forms.
func (k Kmer) Compare(other Kmer) int {
	return strings.Compare(k.bases, other.bases)
}

// Orientation is the reading direction of a k-mer relative to its
// canonical bases.
type Orientation uint8

const (
	// Forward reads the canonical bases as stored.
	Forward Orientation = iota
	// Reverse reads the reverse complement of the canonical bases.
	Reverse
)

// Flip returns the opposite orientation.
func (o Orientation) Flip() Orientation {
	return o ^ 1
}

func (o Orientation) String() string {
	if o == Reverse {
		return "R"
	}
	return "F"
}
