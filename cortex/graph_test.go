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
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/exascience/pargo/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcortex/kmer"
)

func randomSequence(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return string(b)
}

func buildGraph(t *testing.T, k int, samples map[string][]string, order ...string) string {
	t.Helper()
	colors := make([]ColorInfo, len(order))
	for i, name := range order {
		colors[i] = ColorInfo{SampleName: name}
	}
	b, err := NewBuilder(k, colors...)
	require.NoError(t, err)
	for i, name := range order {
		for _, seq := range samples[name] {
			require.NoError(t, b.AddSequence(i, seq))
		}
	}
	path := filepath.Join(t.TempDir(), order[0]+".ctx")
	require.NoError(t, b.Write(path))
	return path
}

func openGraph(t *testing.T, path string) *Graph {
	t.Helper()
	g, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestBuildAndOpen(t *testing.T) {
	path := buildGraph(t, 5, map[string][]string{"s": {"ACTGACCTAG"}}, "s")
	g := openGraph(t, path)

	assert.Equal(t, 5, g.KmerSize())
	assert.Equal(t, 1, g.NumColors())
	assert.Equal(t, uint64(6), g.Len())
	color, ok := g.ColorForSample("s")
	assert.True(t, ok)
	assert.Equal(t, 0, color)
	_, ok = g.ColorForSample("missing")
	assert.False(t, ok)

	// GACCT is preceded by T and followed by A; its canonical form is AGGTC
	rec, err := g.Find(kmer.MustNew("GACCT"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "AGGTC", rec.Kmer.String())
	assert.Equal(t, uint32(1), rec.Coverage(0))
	assert.Equal(t, kmer.SetOf('T'), rec.Edges(0).In())
	assert.Equal(t, kmer.SetOf('A'), rec.Edges(0).Out())
	oriented := rec.OrientedEdges(0, kmer.Reverse)
	assert.Equal(t, kmer.SetOf('T'), oriented.In())
	assert.Equal(t, kmer.SetOf('A'), oriented.Out())

	rec, err = g.Find(kmer.MustNew("TTTTT"))
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = g.Find(kmer.MustNew("ACG"))
	var sizeErr *KmerSizeError
	assert.True(t, errors.As(err, &sizeErr))
}

func TestSortInvariantAndBinarySearch(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	var seqs []string
	for i := 0; i < 20; i++ {
		seqs = append(seqs, randomSequence(r, 200))
	}
	g := openGraph(t, buildGraph(t, 31, map[string][]string{"s": seqs}, "s"))

	var previous []uint64
	var count uint64
	for it := g.Records(); it.Next(); {
		rec := it.Record()
		if previous != nil {
			require.Equal(t, -1, kmer.CompareWords(previous, rec.Words))
		}
		previous = rec.Words
		found, err := g.Find(rec.Kmer)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, rec.Colors, found.Colors)
		count++
	}
	assert.Equal(t, g.Len(), count)

	// iteration restarts from the first record
	it := g.Records()
	require.True(t, it.Next())
	first, err := g.Get(0)
	require.NoError(t, err)
	assert.Equal(t, first.Kmer, it.Record().Kmer)
}

func TestGetOutOfRange(t *testing.T) {
	g := openGraph(t, buildGraph(t, 3, map[string][]string{"s": {"ACGTT"}}, "s"))
	_, err := g.Get(g.Len())
	var rangeErr *OutOfRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, g.Len(), rangeErr.Len)
}

func TestWriterRejectsOutOfOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ctx")
	w, err := Create(path, NewHeader(3, []ColorInfo{{SampleName: "s"}}))
	require.NoError(t, err)
	defer w.Close()

	one := []ColorAnnotation{{Coverage: 1}}
	require.NoError(t, w.AddRecord(NewRecord(kmer.MustNew("ACG"), one)))
	err = w.AddRecord(NewRecord(kmer.MustNew("AAA"), one))
	var orderErr *OutOfOrderError
	assert.True(t, errors.As(err, &orderErr))
	err = w.AddRecord(NewRecord(kmer.MustNew("ACG"), one))
	assert.True(t, errors.As(err, &orderErr))
	err = w.AddRecord(NewRecord(kmer.MustNew("CCC"), nil))
	var countErr *ColorCountError
	assert.True(t, errors.As(err, &countErr))
	assert.Equal(t, uint64(1), w.Count())
}

func TestOpenCorruptHeader(t *testing.T) {
	path := buildGraph(t, 5, map[string][]string{"s": {"ACTGACCTAG"}}, "s")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	truncated := filepath.Join(t.TempDir(), "truncated.ctx")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)-3], 0666))
	_, err = Open(truncated)
	var corrupt *CorruptHeaderError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, truncated, corrupt.Path)

	garbage := filepath.Join(t.TempDir(), "garbage.ctx")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a graph"), 0666))
	_, err = Open(garbage)
	assert.True(t, errors.As(err, &corrupt))
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, uint32(5), SaturatingAdd(2, 3))
	assert.Equal(t, uint32(MaxCoverage), SaturatingAdd(MaxCoverage-1, 7))
}

func TestGraphSourcePipeline(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	g := openGraph(t, buildGraph(t, 11, map[string][]string{"s": {randomSequence(r, 3000)}}, "s"))

	var p pipeline.Pipeline
	p.Source(g.Source())
	var total uint64
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		batch := data.(Batch)
		for _, rec := range batch.Records {
			total += uint64(rec.Coverage(0))
		}
		return data
	})))
	p.Run()
	require.NoError(t, p.Err())

	var expected uint64
	for it := g.Records(); it.Next(); {
		expected += uint64(it.Record().Coverage(0))
	}
	assert.Equal(t, expected, total)
	assert.Equal(t, uint64(3000-11+1), total)

	src := g.Source()
	assert.Equal(t, int(g.Len()), src.Prepare(context.Background()))
}
