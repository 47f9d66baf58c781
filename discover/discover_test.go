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


package discover

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
)

func randomSequence(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return string(b)
}

func build(t *testing.T, k int, colors ...[]string) *cortex.Graph {
	t.Helper()
	infos := make([]cortex.ColorInfo, len(colors))
	for i := range infos {
		infos[i].SampleName = string(rune('a' + i))
	}
	b, err := cortex.NewBuilder(k, infos...)
	require.NoError(t, err)
	for color, seqs := range colors {
		for _, seq := range seqs {
			require.NoError(t, b.AddSequence(color, seq))
		}
	}
	path := filepath.Join(t.TempDir(), "graph.ctx")
	require.NoError(t, b.Write(path))
	g, err := cortex.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestNovelKmersAndContigs(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	parent := randomSequence(r, 200)
	child := parent[:100] + randomSequence(r, 40) + parent[100:]
	g := build(t, 21, []string{parent}, []string{child})

	novel, err := NovelKmers(g, 1, []int{0})
	require.NoError(t, err)
	assert.Equal(t, uint64(60), novel.GetCardinality())
	for it := novel.Iterator(); it.HasNext(); {
		rec, err := g.Get(uint64(it.Next()))
		require.NoError(t, err)
		assert.True(t, rec.Present(1))
		assert.False(t, rec.Present(0))
	}

	none, err := NovelKmers(g, 0, []int{1})
	require.NoError(t, err)
	assert.True(t, none.IsEmpty())

	contigs, err := NovelContigs(g, 1, []int{0})
	require.NoError(t, err)
	require.Len(t, contigs, 1)
	assert.Len(t, contigs[0].Path, 60)
	expected := child[80:160]
	if contigs[0].Sequence != expected {
		assert.Equal(t, kmer.ReverseComplement(expected), contigs[0].Sequence)
	}

	_, err = NovelKmers(g, 2, nil)
	var colorErr *cortex.ColorRangeError
	assert.True(t, errors.As(err, &colorErr))
}

func TestPartition(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	a, b := randomSequence(r, 100), randomSequence(r, 100)
	g := build(t, 21, []string{a, b}, []string{a})

	components, err := Partition(g, 0, 0)
	require.NoError(t, err)
	require.Len(t, components, 2)
	for i, c := range components {
		assert.Equal(t, i, c.ID)
		assert.Equal(t, 80, c.Subgraph.Len())
		assert.False(t, c.Truncated)
	}

	components, err = Partition(g, 1, 0)
	require.NoError(t, err)
	require.Len(t, components, 1)
	_, ok := components[0].Subgraph.Vertex(kmer.MustNew(a[:21]))
	assert.True(t, ok)

	components, err = Partition(g, 0, 50)
	require.NoError(t, err)
	owners := make(map[string]int)
	var truncated int
	for _, c := range components {
		assert.LessOrEqual(t, c.Subgraph.Len(), 50)
		if c.Truncated {
			truncated++
		}
		for _, v := range c.Subgraph.Vertices() {
			owners[v.Kmer.String()]++
		}
	}
	assert.Equal(t, 160, len(owners))
	for k, n := range owners {
		assert.Equal(t, 1, n, k)
	}
	assert.GreaterOrEqual(t, truncated, 2)
}

func TestPartitionComponentsAreDisjoint(t *testing.T) {
	r := rand.New(rand.NewSource(41))
	g := build(t, 11, []string{randomSequence(r, 200)})

	components, err := Partition(g, 0, 20)
	require.NoError(t, err)
	owners := make(map[string]int)
	var vertices int
	for _, c := range components {
		assert.LessOrEqual(t, c.Subgraph.Len(), 20)
		vertices += c.Subgraph.Len()
		for _, v := range c.Subgraph.Vertices() {
			owners[v.Kmer.String()]++
		}
	}
	assert.Equal(t, int(g.Len()), vertices)
	assert.Equal(t, int(g.Len()), len(owners))
	for k, n := range owners {
		assert.Equal(t, 1, n, k)
	}
}
