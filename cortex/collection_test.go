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
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcortex/kmer"
)

func TestCollectionMerge(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	shared := randomSequence(r, 150)
	pathA := buildGraph(t, 15, map[string][]string{
		"a0": {shared, randomSequence(r, 100)},
		"a1": {randomSequence(r, 80)},
	}, "a0", "a1")
	pathB := buildGraph(t, 15, map[string][]string{"b": {shared[40:], randomSequence(r, 90)}}, "b")

	c, err := OpenCollection(pathA, pathB)
	require.NoError(t, err)
	defer c.Close()
	a := openGraph(t, pathA)
	b := openGraph(t, pathB)

	require.Equal(t, 3, c.NumColors())
	source, local, ok := c.ColorOwner(2)
	assert.True(t, ok)
	assert.Equal(t, 1, source)
	assert.Equal(t, 0, local)
	color, ok := c.ColorForSample("b")
	assert.True(t, ok)
	assert.Equal(t, 2, color)

	var previous []uint64
	var count uint64
	for it := c.Records(); it.Next(); {
		rec := it.Record()
		if previous != nil {
			require.Equal(t, -1, kmer.CompareWords(previous, rec.Words))
		}
		previous = rec.Words
		count++

		recA, err := a.Find(rec.Kmer)
		require.NoError(t, err)
		recB, err := b.Find(rec.Kmer)
		require.NoError(t, err)
		require.True(t, recA != nil || recB != nil)
		if recA != nil {
			assert.Equal(t, recA.Colors, rec.Colors[:2])
		} else {
			assert.Equal(t, []ColorAnnotation{{}, {}}, rec.Colors[:2])
		}
		if recB != nil {
			assert.Equal(t, recB.Colors, rec.Colors[2:])
		} else {
			assert.Equal(t, ColorAnnotation{}, rec.Colors[2])
		}

		found, err := c.Find(rec.Kmer)
		require.NoError(t, err)
		assert.Equal(t, rec.Colors, found.Colors)
	}
	assert.Greater(t, count, a.Len())
	assert.Greater(t, count, b.Len())
	assert.Less(t, count, a.Len()+b.Len())
}

func TestCollectionRejectsDifferentK(t *testing.T) {
	pathA := buildGraph(t, 5, map[string][]string{"a": {"ACGTACGTAA"}}, "a")
	pathB := buildGraph(t, 7, map[string][]string{"b": {"ACGTACGTAA"}}, "b")
	_, err := OpenCollection(pathA, pathB)
	var mergeErr *MergeError
	require.True(t, errors.As(err, &mergeErr))
	assert.Equal(t, 1, mergeErr.Source)
}

func TestCollectionWithSingleRecord(t *testing.T) {
	g := openGraph(t, buildGraph(t, 3, map[string][]string{"g": {"AAACA"}}, "g"))
	extra, err := NewSingleRecord(NewRecord(kmer.MustNew("CCC"), []ColorAnnotation{{Coverage: 9}}), []ColorInfo{{SampleName: "x"}})
	require.NoError(t, err)
	c, err := NewCollection(g, extra)
	require.NoError(t, err)

	var kmers []string
	for it := c.Records(); it.Next(); {
		kmers = append(kmers, it.Record().Kmer.String())
	}
	require.NoError(t, c.Records().Err())
	assert.Equal(t, []string{"AAA", "AAC", "ACA", "CCC"}, kmers)

	rec, err := c.Find(kmer.MustNew("GGG"))
	require.NoError(t, err)
	assert.Equal(t, []ColorAnnotation{{}, {Coverage: 9}}, rec.Colors)
}

// failingSource yields the first record of its graph and then fails.
type failingSource struct {
	Source
	err error
}

type failingIterator struct {
	Iterator
	err  error
	done bool
}

func (src failingSource) Records() Iterator {
	return &failingIterator{Iterator: src.Source.Records(), err: src.err}
}

func (it *failingIterator) Next() bool {
	if it.done {
		return false
	}
	it.done = true
	return it.Iterator.Next()
}

func (it *failingIterator) Err() error {
	if it.done {
		return it.err
	}
	return nil
}

func TestCollectionReportsErrorAfterMergedRecord(t *testing.T) {
	g := openGraph(t, buildGraph(t, 3, map[string][]string{"g": {"AAACA"}}, "g"))
	broken := errors.New("truncated record")
	c, err := NewCollection(failingSource{Source: g, err: broken})
	require.NoError(t, err)

	it := c.Records()
	require.True(t, it.Next())
	assert.Equal(t, "AAA", it.Record().Kmer.String())
	assert.NoError(t, it.Err())
	assert.False(t, it.Next())
	assert.Nil(t, it.Record())
	assert.ErrorIs(t, it.Err(), broken)
}
