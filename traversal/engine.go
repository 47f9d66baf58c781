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
	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
)

// Engine runs traversals with one configuration over one graph. An
// Engine holds no per-call state, so Explore and Walk can be called
// concurrently.
type Engine struct {
	graph      cortex.Source
	cfg        Config
	followed   []int
	recruiting []int
	rule       StoppingRule
}

// NewEngine checks the colors and links of cfg against the graph.
func NewEngine(graph cortex.Source, cfg Config) (*Engine, error) {
	colors := append(append([]int{cfg.primary}, cfg.joining...), cfg.recruitment...)
	for _, c := range colors {
		if err := cortex.CheckColor(graph, c); err != nil {
			return nil, err
		}
	}
	if cfg.links != nil && cfg.links.KmerSize() != graph.KmerSize() {
		return nil, &cortex.KmerSizeError{Expected: graph.KmerSize(), Actual: cfg.links.KmerSize()}
	}
	e := &Engine{
		graph:      graph,
		cfg:        cfg,
		followed:   cfg.followed(),
		recruiting: cfg.recruiting(),
		rule:       cfg.rule,
	}
	if e.rule == nil {
		e.rule = RuleFunc(func(History, Vertex) Decision { return Continue })
	}
	return e, nil
}

// Config returns the configuration of the engine.
func (e *Engine) Config() Config { return e.cfg }

// Graph returns the graph the engine traverses.
func (e *Engine) Graph() cortex.Source { return e.graph }

// step is the way an extension goes. Extending upstream from a k-mer
// read in orientation o is extending downstream from its reverse
// complement.
type step struct {
	o  kmer.Orientation
	up bool
}

func (s step) effective() kmer.Orientation {
	if s.up {
		return s.o.Flip()
	}
	return s.o
}

func (s step) direction() Direction {
	if s.up {
		return Reverse
	}
	return Forward
}

// bases returns the bases that color c allows from rec in the given
// step.
func bases(rec *cortex.Record, c int, s step) kmer.BaseSet {
	edges := rec.OrientedEdges(c, s.o)
	if s.up {
		return edges.In()
	}
	return edges.Out()
}

// candidates combines the bases of the followed colors. For And,
// every color must allow a base; for Or, one color suffices, and no
// edges in any color leaves no candidates.
func (e *Engine) candidates(rec *cortex.Record, s step) kmer.BaseSet {
	result := bases(rec, e.followed[0], s)
	for _, c := range e.followed[1:] {
		if e.cfg.combination == Or {
			result = result.Union(bases(rec, c, s))
		} else {
			result = result.Intersect(bases(rec, c, s))
		}
	}
	return result
}

// extend returns the k-mer reached from the bases read by adding base.
func extend(read string, base byte, up bool) string {
	k := len(read)
	next := make([]byte, k)
	if up {
		next[0] = base
		copy(next[1:], read[:k-1])
	} else {
		copy(next, read[1:])
		next[k-1] = base
	}
	return string(next)
}

// colorsOf returns the configured colors in which rec has coverage.
func (e *Engine) colorsOf(rec *cortex.Record) *bitset.BitSet {
	set := bitset.New(uint(e.graph.NumColors()))
	for _, c := range e.followed {
		if rec.Present(c) {
			set.Set(uint(c))
		}
	}
	for _, c := range e.recruiting {
		if rec.Present(c) {
			set.Set(uint(c))
		}
	}
	return set
}

func (e *Engine) vertex(k kmer.Kmer, rec *cortex.Record, distance int) Vertex {
	return Vertex{Kmer: k, Record: rec, Colors: e.colorsOf(rec), Distance: distance}
}

// neighbor looks up the k-mer reached from read by adding base. A
// missing record is not an error; graphs may carry edges to k-mers
// that were cleaned away.
func (e *Engine) neighbor(read string, base byte, up bool) (kmer.Kmer, *cortex.Record, error) {
	next := kmer.MustNew(extend(read, base, up))
	rec, err := e.graph.Find(next)
	return next, rec, err
}

func (e *Engine) steps(o kmer.Orientation) []step {
	switch e.cfg.direction {
	case Forward:
		return []step{{o: o}}
	case Reverse:
		return []step{{o: o, up: true}}
	default:
		return []step{{o: o}, {o: o, up: true}}
	}
}

// cursor follows the links of one k-mer passed earlier on the current
// path.
type cursor struct {
	start kmer.Kmer
	o     kmer.Orientation
	at    int
	limit int
}

// enter returns the cursors after passing k at the given distance,
// dropping exhausted ones. The result never shares its backing array
// with cursors.
func (e *Engine) enter(cursors []cursor, k kmer.Kmer, s step, distance int) []cursor {
	if e.cfg.links == nil {
		return nil
	}
	result := make([]cursor, 0, len(cursors)+1)
	for _, c := range cursors {
		if distance-c.at <= c.limit {
			result = append(result, c)
		}
	}
	if entry := e.cfg.links.Entry(k); entry != nil {
		limit := 0
		for _, j := range entry.Junctions {
			if j.KmersTraversed > limit {
				limit = j.KmersTraversed
			}
		}
		result = append(result, cursor{start: k.Canonical(), o: s.effective(), at: distance, limit: limit})
	}
	return result
}

// collapse narrows a branch to the base mandated by the oldest cursor
// that has an opinion. A mandated base that is not a candidate is
// ignored, and the branch is explored in full.
func (e *Engine) collapse(cursors []cursor, candidates kmer.BaseSet, distance int) kmer.BaseSet {
	if e.cfg.links == nil || candidates.Len() < 2 {
		return candidates
	}
	for _, c := range cursors {
		if base, ok := e.cfg.links.Consult(c.start, c.o, distance-c.at); ok {
			if candidates.Contains(base) {
				return kmer.SetOf(base)
			}
			return candidates
		}
	}
	return candidates
}
