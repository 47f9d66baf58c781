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


// Package bubble extracts alleles from pairs of paths that share their
// flanks.
package bubble

import (
	"fmt"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/traversal"
)

// Bubble is a candidate variant: two alleles between common flanks.
type Bubble struct {
	Flank5p, Ref, Alt, Flank3p string
}

// Equal compares the alleles only; bubbles found from different seeds
// usually have different flanks.
func (b Bubble) Equal(other Bubble) bool {
	return b.Ref == other.Ref && b.Alt == other.Alt
}

// IsVariant reports whether the alleles differ.
func (b Bubble) IsVariant() bool {
	return b.Ref != b.Alt
}

func (b Bubble) String() string {
	return fmt.Sprintf("%v[%v/%v]%v", b.Flank5p, b.Ref, b.Alt, b.Flank3p)
}

// ExtractStrings splits two sequences into their longest common
// prefix, the two differing middles, and their longest common suffix.
// The suffix never overlaps the prefix.
func ExtractStrings(s0, s1 string) Bubble {
	n := len(s0)
	if len(s1) < n {
		n = len(s1)
	}
	prefix := 0
	for prefix < n && s0[prefix] == s1[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < n-prefix && s0[len(s0)-1-suffix] == s1[len(s1)-1-suffix] {
		suffix++
	}
	return Bubble{
		Flank5p: s0[:prefix],
		Ref:     s0[prefix : len(s0)-suffix],
		Alt:     s1[prefix : len(s1)-suffix],
		Flank3p: s0[len(s0)-suffix:],
	}
}

// Extract concatenates both paths as traversal.Sequence does and
// splits them with ExtractStrings.
func Extract(path0, path1 []traversal.Vertex) Bubble {
	return ExtractStrings(traversal.Sequence(path0), traversal.Sequence(path1))
}

// Call walks seed once with each configuration and extracts the
// bubble between the two walks. It reports false when either walk
// yields no path or when the alleles are identical.
func Call(graph cortex.Source, seed kmer.Kmer, ref, alt traversal.Config) (Bubble, bool, error) {
	var paths [2][]traversal.Vertex
	for i, cfg := range [2]traversal.Config{ref, alt} {
		e, err := traversal.NewEngine(graph, cfg)
		if err != nil {
			return Bubble{}, false, err
		}
		if paths[i], err = e.Walk(seed); err != nil {
			return Bubble{}, false, fmt.Errorf("%v, while calling a bubble at %v", err, seed.Oriented())
		}
		if paths[i] == nil {
			return Bubble{}, false, nil
		}
	}
	b := Extract(paths[0], paths[1])
	return b, b.IsVariant(), nil
}
