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

import "github.com/exascience/elcortex/kmer"

// frame is one pending expansion on the explicit depth-first stack.
type frame struct {
	id       int
	read     string
	step     step
	distance int
	cursors  []cursor
}

// expansion identifies a canonical k-mer expanded in one effective
// orientation.
type expansion struct {
	kmer string
	o    kmer.Orientation
}

// link records the edges between the vertex of f and vertex id.
func link(g *Subgraph, f frame, id, color int, recruited bool) {
	from, to := f.id, id
	if f.step.up {
		from, to = id, f.id
	}
	g.addEdge(Edge{
		From:      from,
		To:        to,
		Color:     color,
		Weight:    g.vertices[to].Record.Coverage(color),
		Recruited: recruited,
	})
}

func (e *Engine) connect(g *Subgraph, f frame, id int, base byte) {
	from := g.vertices[f.id].Record
	for _, c := range e.followed {
		if bases(from, c, f.step).Contains(base) {
			link(g, f, id, c, false)
		}
	}
}

// decide consults the stopping rule for a candidate one step beyond f.
func (e *Engine) decide(h *History, g *Subgraph, f frame, candidate Vertex) Decision {
	h.Direction = f.step.direction()
	h.Distance = f.distance + 1
	h.Visited = g.Len()
	d := e.rule.Decide(*h, candidate)
	switch d {
	case StopBranch:
		h.Rejected++
	case AcceptAndStop:
		h.Accepted++
	}
	return d
}

// recruit adds the neighbors reachable only in recruitment colors as
// leaves of the subgraph. New leaves pass the stopping rule like any
// other candidate; recruit returns Abort or AcceptAndStop when the rule
// ends the traversal.
func (e *Engine) recruit(h *History, g *Subgraph, f frame, followed kmer.BaseSet) (Decision, error) {
	from := g.vertices[f.id].Record
	for _, c := range e.recruiting {
		for _, base := range bases(from, c, f.step).Bases() {
			if followed.Contains(base) {
				continue
			}
			next, rec, err := e.neighbor(f.read, base, f.step.up)
			if err != nil {
				return Continue, err
			}
			if rec == nil {
				continue
			}
			if id, seen := g.ID(next); seen {
				link(g, f, id, c, true)
				continue
			}
			candidate := e.vertex(next, rec, f.distance+1)
			switch d := e.decide(h, g, f, candidate); d {
			case StopBranch:
				continue
			case Abort:
				return d, nil
			case AcceptAndStop:
				link(g, f, g.addVertex(candidate), c, true)
				return d, nil
			default:
				link(g, f, g.addVertex(candidate), c, true)
			}
		}
	}
	return Continue, nil
}

// Explore builds the subgraph reachable from seed. Every candidate
// base of a step is a branch; each canonical k-mer is expanded at most
// once per orientation, so cycles terminate. Explore returns nil when
// the seed is not in the graph, when the stopping rule aborts, and,
// for configurations that require acceptance, when no vertex was
// accepted.
func (e *Engine) Explore(seed kmer.Kmer) (*Subgraph, error) {
	rec, err := e.graph.Find(seed)
	if err != nil || rec == nil {
		return nil, err
	}
	g := newSubgraph(e.graph.KmerSize(), seed)
	g.addVertex(e.vertex(seed, rec, 0))
	h := History{Seed: seed, Visited: 1}
	expanded := make(map[expansion]bool)

	var stack []frame
	push := func(id int, k kmer.Kmer, distance int, cursors []cursor) {
		steps := e.steps(k.Orientation())
		for i := len(steps) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: id, read: k.Oriented(), step: steps[i], distance: distance, cursors: cursors})
		}
	}
	push(0, seed, 0, nil)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		current := g.vertices[f.id]
		key := expansion{current.Kmer.String(), f.step.effective()}
		if expanded[key] {
			continue
		}
		expanded[key] = true

		cursors := e.enter(f.cursors, current.Kmer, f.step, f.distance)
		all := e.candidates(current.Record, f.step)
		candidates := all
		if all.Len() > 1 {
			h.Junctions++
			candidates = e.collapse(cursors, all, f.distance)
		}
		for _, base := range candidates.Bases() {
			next, rec, err := e.neighbor(f.read, base, f.step.up)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				continue
			}
			if id, seen := g.ID(next); seen {
				// a vertex keeps the distance it was first reached at
				e.connect(g, f, id, base)
				nextStep := step{o: next.Orientation(), up: f.step.up}
				if !expanded[expansion{next.String(), nextStep.effective()}] {
					push(id, next, g.vertices[id].Distance, nil)
				}
				continue
			}
			candidate := e.vertex(next, rec, f.distance+1)
			switch e.decide(&h, g, f, candidate) {
			case StopBranch:
			case Abort:
				return nil, nil
			case AcceptAndStop:
				e.connect(g, f, g.addVertex(candidate), base)
				g.accepted = true
				return g, nil
			default:
				id := g.addVertex(candidate)
				e.connect(g, f, id, base)
				push(id, next, f.distance+1, cursors)
			}
		}
		switch d, err := e.recruit(&h, g, f, all); {
		case err != nil:
			return nil, err
		case d == Abort:
			return nil, nil
		case d == AcceptAndStop:
			g.accepted = true
			return g, nil
		}
	}
	if e.cfg.requireAccept {
		return nil, nil
	}
	return g, nil
}
