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


package traversal

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/links"
)

// build writes a graph with one color per sequence list and opens it.
func build(t *testing.T, k int, colors ...[]string) *cortex.Graph {
	t.Helper()
	infos := make([]cortex.ColorInfo, len(colors))
	for i := range infos {
		infos[i].SampleName = "sample" + string(rune('0'+i))
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

func engine(t *testing.T, g cortex.Source, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(g, cfg)
	require.NoError(t, err)
	return e
}

func randomSequence(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return string(b)
}

func TestNewEngineChecksColors(t *testing.T) {
	g := build(t, 5, []string{"ACGTTGCA"})
	for _, cfg := range []Config{
		NewConfig(1),
		NewConfig(0, WithJoiningColors(3)),
		NewConfig(0, WithRecruitmentColors(-1)),
	} {
		_, err := NewEngine(g, cfg)
		var colorErr *cortex.ColorRangeError
		assert.True(t, errors.As(err, &colorErr))
	}
	_, err := NewEngine(g, NewConfig(0, WithLinks(links.NewModel(7))))
	var sizeErr *cortex.KmerSizeError
	assert.True(t, errors.As(err, &sizeErr))
}

func TestCombination(t *testing.T) {
	// TAC has outgoing bases {A,C} in color 0 and {C,G} in color 1
	g := build(t, 3, []string{"TACA", "TACC"}, []string{"TACC", "TACG"})
	seed := kmer.MustNew("TAC")
	rec, err := g.Find(seed)
	require.NoError(t, err)
	forward := step{o: seed.Orientation()}

	and := engine(t, g, NewConfig(0, WithJoiningColors(1), WithCombination(And), WithDirection(Forward)))
	assert.Equal(t, kmer.SetOf('C'), and.candidates(rec, forward))
	or := engine(t, g, NewConfig(0, WithJoiningColors(1), WithCombination(Or), WithDirection(Forward)))
	assert.Equal(t, kmer.SetOf('A', 'C', 'G'), or.candidates(rec, forward))

	sg, err := and.Explore(seed)
	require.NoError(t, err)
	assert.Equal(t, 2, sg.Len())
	_, ok := sg.Vertex(kmer.MustNew("ACC"))
	assert.True(t, ok)
	assert.Len(t, sg.Edges(), 2)

	sg, err = or.Explore(seed)
	require.NoError(t, err)
	assert.Equal(t, 4, sg.Len())
	assert.Len(t, sg.Edges(), 4)
	id, ok := sg.ID(seed)
	require.True(t, ok)
	assert.Len(t, sg.OutEdges(id), 4)
	accID, _ := sg.ID(kmer.MustNew("ACC"))
	for _, e := range sg.InEdges(accID) {
		assert.Equal(t, id, e.From)
		assert.Equal(t, uint32(1), e.Weight)
	}
}

func TestOrWithoutEdgesIsDeadEnd(t *testing.T) {
	g := build(t, 3, []string{"TACA"}, []string{"GGGG"})
	e := engine(t, g, NewConfig(0, WithJoiningColors(1), WithCombination(Or), WithDirection(Forward)))
	path, err := e.Walk(kmer.MustNew("ACA"))
	require.NoError(t, err)
	assert.Len(t, path, 1)
}

func TestWalkIsMaximalLinearExtension(t *testing.T) {
	r := rand.New(rand.NewSource(23))
	seq := randomSequence(r, 200)
	g := build(t, 21, []string{seq})
	e := engine(t, g, NewConfig(0))

	path, err := e.Walk(kmer.MustNew(seq[90:111]))
	require.NoError(t, err)
	require.Len(t, path, 200-21+1)
	assert.Equal(t, seq, Sequence(path))
	assert.Equal(t, 90, path[0].Distance)
	assert.Equal(t, 0, path[90].Distance)

	// the same seed read on the other strand walks the other strand
	path, err = e.Walk(kmer.MustNew(kmer.ReverseComplement(seq[90:111])))
	require.NoError(t, err)
	assert.Equal(t, kmer.ReverseComplement(seq), Sequence(path))

	forward := engine(t, g, NewConfig(0, WithDirection(Forward)))
	path, err = forward.Walk(kmer.MustNew(seq[90:111]))
	require.NoError(t, err)
	assert.Equal(t, seq[90:], Sequence(path))

	reverse := engine(t, g, NewConfig(0, WithDirection(Reverse)))
	path, err = reverse.Walk(kmer.MustNew(seq[90:111]))
	require.NoError(t, err)
	assert.Equal(t, seq[:111], Sequence(path))

	path, err = e.Walk(kmer.MustNew("AAAAAAAAAAAAAAAAAAAAA"))
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestWalkStopsAtBranch(t *testing.T) {
	g := build(t, 5, []string{"GTCAGTTCAGGAT", "GTCAGTTCCTTGA"})
	e := engine(t, g, NewConfig(0, WithDirection(Forward)))
	path, err := e.Walk(kmer.MustNew("GTCAG"))
	require.NoError(t, err)
	assert.Equal(t, "GTCAGTTC", Sequence(path))
}

const cycle = "TTTCCTCATGCAATTCAAAACCATGTCCGT"

func TestCycleSafety(t *testing.T) {
	circular := cycle + cycle[:10]
	g := build(t, 11, []string{circular})
	seed := kmer.MustNew(circular[:11])

	decisions := make(map[expansion]int)
	count := RuleFunc(func(h History, v Vertex) Decision {
		o := v.Kmer.Orientation()
		if h.Direction == Reverse {
			o = o.Flip()
		}
		decisions[expansion{v.Kmer.String(), o}]++
		return Continue
	})
	sg, err := engine(t, g, NewConfig(0, WithStoppingRule(count))).Explore(seed)
	require.NoError(t, err)
	assert.Equal(t, len(cycle), sg.Len())
	assert.Len(t, sg.Edges(), len(cycle))
	assert.LessOrEqual(t, len(decisions), 2*len(cycle))
	for key, n := range decisions {
		assert.Equal(t, 1, n, "%v", key)
	}

	path, err := engine(t, g, NewConfig(0)).Walk(seed)
	require.NoError(t, err)
	assert.Len(t, path, len(cycle))
	assert.Equal(t, circular, Sequence(path))
}

func TestRecruitmentColorsTagWithoutExpanding(t *testing.T) {
	g := build(t, 3, []string{"TACA"}, []string{"TACGG"})
	e := engine(t, g, NewConfig(0, WithRecruitmentColors(1), WithDirection(Forward)))
	sg, err := e.Explore(kmer.MustNew("TAC"))
	require.NoError(t, err)
	require.Equal(t, 3, sg.Len())

	seed, _ := sg.Vertex(kmer.MustNew("TAC"))
	assert.True(t, seed.Colors.Test(0))
	assert.True(t, seed.Colors.Test(1))
	followed, _ := sg.Vertex(kmer.MustNew("ACA"))
	assert.True(t, followed.Colors.Test(0))
	assert.False(t, followed.Colors.Test(1))
	recruited, ok := sg.Vertex(kmer.MustNew("ACG"))
	require.True(t, ok)
	assert.False(t, recruited.Colors.Test(0))
	assert.True(t, recruited.Colors.Test(1))
	_, ok = sg.Vertex(kmer.MustNew("CGG"))
	assert.False(t, ok)

	var recruitedEdges int
	for _, edge := range sg.Edges() {
		if edge.Recruited {
			recruitedEdges++
			assert.Equal(t, 1, edge.Color)
		}
	}
	assert.Equal(t, 1, recruitedEdges)
}

func branchingLinks(t *testing.T, junctions ...links.Junction) *links.Model {
	t.Helper()
	m := links.NewModel(5)
	for _, j := range junctions {
		require.NoError(t, m.Add(kmer.MustNew("GTCAG"), j))
	}
	return m
}

func TestLinksCollapseBranches(t *testing.T) {
	g := build(t, 5, []string{"GTCAGTTCAGGAT", "GTCAGTTCCTTGA"})
	seed := kmer.MustNew("GTCAG")
	choose := func(choice string, coverage uint32) links.Junction {
		return links.Junction{Orientation: kmer.Forward, KmersTraversed: 5, Coverage: []uint32{coverage}, Choices: choice, Positions: []int{3}}
	}

	e := engine(t, g, NewConfig(0, WithDirection(Forward), WithLinks(branchingLinks(t, choose("A", 2)))))
	path, err := e.Walk(seed)
	require.NoError(t, err)
	assert.Equal(t, "GTCAGTTCAGGAT", Sequence(path))
	sg, err := e.Explore(seed)
	require.NoError(t, err)
	assert.Equal(t, 9, sg.Len())

	e = engine(t, g, NewConfig(0, WithDirection(Forward), WithLinks(branchingLinks(t, choose("A", 2), choose("C", 3)))))
	path, err = e.Walk(seed)
	require.NoError(t, err)
	assert.Equal(t, "GTCAGTTCCTTGA", Sequence(path))

	for _, model := range []*links.Model{
		branchingLinks(t, choose("A", 2), choose("C", 2)),
		branchingLinks(t, choose("G", 2)),
	} {
		e = engine(t, g, NewConfig(0, WithDirection(Forward), WithLinks(model)))
		path, err = e.Walk(seed)
		require.NoError(t, err)
		assert.Equal(t, "GTCAGTTC", Sequence(path))
		sg, err = e.Explore(seed)
		require.NoError(t, err)
		assert.Equal(t, 14, sg.Len())
	}
}

func TestStoppingDecisions(t *testing.T) {
	r := rand.New(rand.NewSource(29))
	seq := randomSequence(r, 100)
	g := build(t, 11, []string{seq})
	seed := kmer.MustNew(seq[:11])
	target := kmer.MustNew(seq[5:16])

	sg, err := engine(t, g, NewConfig(0, WithStoppingRule(MaxVertices(10)))).Explore(seed)
	require.NoError(t, err)
	assert.Nil(t, sg)

	sg, err = engine(t, g, NewConfig(0, WithStoppingRule(MaxDepth(4)))).Explore(seed)
	require.NoError(t, err)
	assert.Equal(t, 5, sg.Len())
	assert.False(t, sg.Accepted())

	accept := NewConfig(0, WithDirection(Forward), WithStoppingRule(Destination(NewKmers(target))), WithRequireAccept())
	sg, err = engine(t, g, accept).Explore(seed)
	require.NoError(t, err)
	require.NotNil(t, sg)
	assert.True(t, sg.Accepted())
	assert.Equal(t, 6, sg.Len())
	_, ok := sg.Vertex(target)
	assert.True(t, ok)

	path, err := engine(t, g, accept).Walk(seed)
	require.NoError(t, err)
	assert.Equal(t, seq[:16], Sequence(path))

	missing := NewConfig(0, WithStoppingRule(Destination(NewKmers(kmer.MustNew("AAAAAAAAAAA")))), WithRequireAccept())
	sg, err = engine(t, g, missing).Explore(seed)
	require.NoError(t, err)
	assert.Nil(t, sg)

	abortLate := RuleFunc(func(h History, _ Vertex) Decision {
		if h.Distance == 7 {
			return Abort
		}
		return Continue
	})
	path, err = engine(t, g, NewConfig(0, WithStoppingRule(abortLate))).Walk(seed)
	require.NoError(t, err)
	assert.Nil(t, path)

	novel := NewKmers()
	for i := 0; i+11 <= 40; i++ {
		novel.Add(kmer.MustNew(seq[i : i+11]))
	}
	chained := Chain(MaxDepth(100), NovelContinuation(novel))
	path, err = engine(t, g, NewConfig(0, WithStoppingRule(chained))).Walk(seed)
	require.NoError(t, err)
	assert.Equal(t, seq[:40], Sequence(path))
}

func TestDepthIsMeasuredFromSeedInBothDirections(t *testing.T) {
	r := rand.New(rand.NewSource(31))
	seq := randomSequence(r, 200)
	g := build(t, 21, []string{seq})
	seed := kmer.MustNew(seq[90:111])

	for _, depth := range []int{2, 5} {
		sg, err := engine(t, g, NewConfig(0, WithStoppingRule(MaxDepth(depth)))).Explore(seed)
		require.NoError(t, err)
		require.Equal(t, 2*depth+1, sg.Len())
		for offset := 90 - depth; offset <= 90+depth; offset++ {
			v, ok := sg.Vertex(kmer.MustNew(seq[offset : offset+21]))
			require.True(t, ok, "offset %d", offset)
			want := offset - 90
			if want < 0 {
				want = -want
			}
			assert.Equal(t, want, v.Distance, "offset %d", offset)
		}
	}
}

func TestRecruitedLeavesPassStoppingRule(t *testing.T) {
	g := build(t, 3, []string{"TACA"}, []string{"TACGG"})
	seed := kmer.MustNew("TAC")
	recruit := func(rule StoppingRule) Config {
		return NewConfig(0, WithRecruitmentColors(1), WithDirection(Forward), WithStoppingRule(rule))
	}

	sg, err := engine(t, g, recruit(MaxVertices(2))).Explore(seed)
	require.NoError(t, err)
	assert.Nil(t, sg)

	sg, err = engine(t, g, recruit(MaxVertices(3))).Explore(seed)
	require.NoError(t, err)
	require.NotNil(t, sg)
	assert.Equal(t, 3, sg.Len())

	dropRecruited := RuleFunc(func(_ History, v Vertex) Decision {
		if !v.Colors.Test(0) {
			return StopBranch
		}
		return Continue
	})
	sg, err = engine(t, g, recruit(dropRecruited)).Explore(seed)
	require.NoError(t, err)
	assert.Equal(t, 2, sg.Len())
	_, ok := sg.Vertex(kmer.MustNew("ACG"))
	assert.False(t, ok)
	assert.Len(t, sg.Edges(), 1)
}
