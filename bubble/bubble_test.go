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


package bubble

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/traversal"
)

func TestExtractStrings(t *testing.T) {
	b := ExtractStrings("AAACCCTTT", "AAAGGGTTT")
	assert.Equal(t, Bubble{Flank5p: "AAA", Ref: "CCC", Alt: "GGG", Flank3p: "TTT"}, b)

	// the suffix stops at the prefix boundary
	b = ExtractStrings("ACGTA", "ACGTACGTA")
	assert.Equal(t, "ACGTA", b.Flank5p)
	assert.Equal(t, "", b.Ref)
	assert.Equal(t, "CGTA", b.Alt)
	assert.Equal(t, "", b.Flank3p)

	b = ExtractStrings("ACGT", "ACGT")
	assert.False(t, b.IsVariant())
	assert.Equal(t, "ACGT", b.Flank5p+b.Ref+b.Flank3p)
}

func TestEqualIgnoresFlanks(t *testing.T) {
	a := ExtractStrings("AAACCCTTT", "AAAGGGTTT")
	b := ExtractStrings("TTCCCAA", "TTGGGAA")
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, a, b)
	assert.False(t, a.Equal(ExtractStrings("AAACCCTTT", "AAAGGCTTT")))
	assert.Equal(t, "AAA[CCC/GGG]TTT", a.String())
}

func TestExtractFromPaths(t *testing.T) {
	path := func(bases ...string) (result []traversal.Vertex) {
		for _, b := range bases {
			result = append(result, traversal.Vertex{Kmer: kmer.MustNew(b)})
		}
		return
	}
	b := Extract(path("AAAC", "AACC", "ACCC", "CCCT", "CCTT", "CTTT"), path("AAAG", "AAGG", "AGGG", "GGGT", "GGTT", "GTTT"))
	assert.Equal(t, Bubble{Flank5p: "AAA", Ref: "CCC", Alt: "GGG", Flank3p: "TTT"}, b)
}

func randomSequence(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return string(b)
}

func TestCall(t *testing.T) {
	r := rand.New(rand.NewSource(41))
	left, right := randomSequence(r, 30), randomSequence(r, 30)
	ref, alt := left+"C"+right, left+"G"+right

	b, err := cortex.NewBuilder(11, cortex.ColorInfo{SampleName: "ref"}, cortex.ColorInfo{SampleName: "alt"})
	require.NoError(t, err)
	require.NoError(t, b.AddSequence(0, ref))
	require.NoError(t, b.AddSequence(1, alt))
	path := filepath.Join(t.TempDir(), "bubble.ctx")
	require.NoError(t, b.Write(path))
	g, err := cortex.Open(path)
	require.NoError(t, err)
	defer g.Close()

	seed := kmer.MustNew(left[:11])
	bubble, ok, err := Call(g, seed, traversal.NewConfig(0), traversal.NewConfig(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Bubble{Flank5p: left, Ref: "C", Alt: "G", Flank3p: right}, bubble)

	_, ok, err = Call(g, seed, traversal.NewConfig(0), traversal.NewConfig(0))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Call(g, kmer.MustNew("AAAAAAAAAAA"), traversal.NewConfig(0), traversal.NewConfig(1))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Call(g, seed, traversal.NewConfig(0), traversal.NewConfig(2))
	assert.Error(t, err)
}
