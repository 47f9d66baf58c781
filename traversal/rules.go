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
	"fmt"

	"github.com/exascience/elcortex/kmer"
)

// Decision is the verdict of a StoppingRule on a candidate vertex.
type Decision uint8

const (
	// Continue adds the candidate and keeps extending from it.
	Continue Decision = iota
	// StopBranch drops the candidate. Other branches carry on.
	StopBranch
	// AcceptAndStop adds the candidate and ends the traversal
	// successfully.
	AcceptAndStop
	// Abort ends the traversal without a result.
	Abort
)

func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case StopBranch:
		return "stop-branch"
	case AcceptAndStop:
		return "accept"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("Decision(%d)", uint8(d))
	}
}

// History summarizes the traversal up to the current candidate. It is
// passed by value, so rules cannot modify the traversal state.
type History struct {
	// Seed is the k-mer the traversal started from.
	Seed kmer.Kmer
	// Direction is Forward or Reverse, the way the current step goes.
	Direction Direction
	// Distance is the number of steps from the seed to the candidate.
	Distance int
	// Visited is the number of vertices retained so far.
	Visited int
	// Junctions is the number of steps that had more than one
	// candidate base.
	Junctions int
	// Accepted and Rejected count earlier AcceptAndStop and
	// StopBranch decisions.
	Accepted, Rejected int
}

// A StoppingRule decides, for every candidate vertex, how a traversal
// proceeds. Implementations must be safe for concurrent use when the
// engine is shared between goroutines.
type StoppingRule interface {
	Decide(h History, v Vertex) Decision
}

// RuleFunc adapts an ordinary function to a StoppingRule.
type RuleFunc func(h History, v Vertex) Decision

// Decide implements StoppingRule.
func (f RuleFunc) Decide(h History, v Vertex) Decision {
	return f(h, v)
}

// KmerSet is a read-only set of canonical k-mers.
type KmerSet interface {
	Contains(k kmer.Kmer) bool
}

// Kmers is a KmerSet backed by a map.
type Kmers map[string]struct{}

// NewKmers returns the set of the canonical forms of the given k-mers.
func NewKmers(kmers ...kmer.Kmer) Kmers {
	set := make(Kmers, len(kmers))
	for _, k := range kmers {
		set.Add(k)
	}
	return set
}

// Add inserts the canonical form of k.
func (set Kmers) Add(k kmer.Kmer) {
	set[k.String()] = struct{}{}
}

// Contains implements KmerSet.
func (set Kmers) Contains(k kmer.Kmer) bool {
	_, ok := set[k.String()]
	return ok
}

// MaxDepth stops every branch that would go more than n steps away
// from the seed.
func MaxDepth(n int) StoppingRule {
	return RuleFunc(func(h History, _ Vertex) Decision {
		if h.Distance > n {
			return StopBranch
		}
		return Continue
	})
}

// MaxVertices aborts a traversal that would retain more than n
// vertices, recruited leaves included.
func MaxVertices(n int) StoppingRule {
	return RuleFunc(func(h History, _ Vertex) Decision {
		if h.Visited >= n {
			return Abort
		}
		return Continue
	})
}

// Destination accepts the first candidate in the given set.
func Destination(targets KmerSet) StoppingRule {
	return RuleFunc(func(_ History, v Vertex) Decision {
		if targets.Contains(v.Kmer) {
			return AcceptAndStop
		}
		return Continue
	})
}

// NovelContinuation keeps a traversal inside a set of novel k-mers.
func NovelContinuation(novel KmerSet) StoppingRule {
	return RuleFunc(func(_ History, v Vertex) Decision {
		if novel.Contains(v.Kmer) {
			return Continue
		}
		return StopBranch
	})
}

// Chain consults the rules in order. The first decision other than
// Continue wins.
func Chain(rules ...StoppingRule) StoppingRule {
	return RuleFunc(func(h History, v Vertex) Decision {
		for _, rule := range rules {
			if d := rule.Decide(h, v); d != Continue {
				return d
			}
		}
		return Continue
	})
}
