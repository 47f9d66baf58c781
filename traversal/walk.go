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

// Walk extends seed for as long as there is exactly one candidate
// base, in every configured direction, and returns the path in
// reading order. A walk stops at a dead end, at a branch that links
// do not resolve, when it would revisit a k-mer, or on any decision
// other than Continue. An accepted vertex is the last one of the
// walk; Abort yields a nil path.
func (e *Engine) Walk(seed kmer.Kmer) ([]Vertex, error) {
	rec, err := e.graph.Find(seed)
	if err != nil || rec == nil {
		return nil, err
	}
	path := []Vertex{e.vertex(seed, rec, 0)}
	var upstream []Vertex
	seen := map[string]bool{seed.String(): true}
	h := History{Seed: seed, Visited: 1}

walk:
	for _, s := range e.steps(seed.Orientation()) {
		current := path[0]
		var cursors []cursor
		for {
			cursors = e.enter(cursors, current.Kmer, s, current.Distance)
			candidates := e.candidates(current.Record, s)
			if candidates.Len() > 1 {
				h.Junctions++
				candidates = e.collapse(cursors, candidates, current.Distance)
			}
			if candidates.Len() != 1 {
				break
			}
			next, rec, err := e.neighbor(current.Bases(), candidates.Bases()[0], s.up)
			if err != nil {
				return nil, err
			}
			if rec == nil || seen[next.String()] {
				break
			}
			h.Direction = s.direction()
			h.Distance = current.Distance + 1
			h.Visited = len(path) + len(upstream)
			v := e.vertex(next, rec, current.Distance+1)
			decision := e.rule.Decide(h, v)
			switch decision {
			case Abort:
				return nil, nil
			case StopBranch:
				h.Rejected++
				continue walk
			}
			seen[next.String()] = true
			if s.up {
				upstream = append(upstream, v)
			} else {
				path = append(path, v)
			}
			if decision == AcceptAndStop {
				break walk
			}
			current = v
			s = step{o: next.Orientation(), up: s.up}
		}
	}
	if len(upstream) == 0 {
		return path, nil
	}
	result := make([]Vertex, 0, len(upstream)+len(path))
	for i := len(upstream) - 1; i >= 0; i-- {
		result = append(result, upstream[i])
	}
	return append(result, path...), nil
}
