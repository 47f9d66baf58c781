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

// Package links reads, writes and consults link files. A link records,
// for a k-mer at which a read entered the graph, which branch choices
// that read made at the junctions it passed afterwards.
package links

import (
	"fmt"
	"sort"
	"strings"

	"github.com/exascience/elcortex/kmer"
)

// Supported link file versions.
const (
	MinVersion = 3
	MaxVersion = 4
)

// UnsupportedVersionError is returned for link files with a version
// outside MinVersion..MaxVersion.
type UnsupportedVersionError struct {
	Path    string
	Version int
}

func (err *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported links version %v in %v (supported versions are %v to %v)", err.Version, err.Path, MinVersion, MaxVersion)
}

// FormatError reports a malformed line in a link file.
type FormatError struct {
	Path   string
	Line   int
	Reason string
}

func (err *FormatError) Error() string {
	return fmt.Sprintf("%v in line %v of links file %v", err.Reason, err.Line, err.Path)
}

// Junction is one link: the branch choices a read made after passing
// the k-mer of its entry in the given orientation.
//
// Choices[i] is the base chosen Positions[i] steps after the link
// start. KmersTraversed is the number of steps the link covers; a
// link is exhausted beyond that.
type Junction struct {
	Orientation    kmer.Orientation
	KmersTraversed int
	Coverage       []uint32
	Choices        string
	Positions      []int
	Sources        []int
}

// TotalCoverage sums the coverage of all colors.
func (j *Junction) TotalCoverage() (total uint64) {
	for _, c := range j.Coverage {
		total += uint64(c)
	}
	return
}

// Choice returns the base chosen exactly distance steps after the
// link start.
func (j *Junction) Choice(distance int) (byte, bool) {
	if distance > j.KmersTraversed {
		return 0, false
	}
	for i, p := range j.Positions {
		if p == distance {
			return j.Choices[i], true
		}
		if p > distance {
			break
		}
	}
	return 0, false
}

func (j *Junction) validate() error {
	if len(j.Choices) == 0 {
		return fmt.Errorf("junction without choices")
	}
	if len(j.Choices) != len(j.Positions) {
		return fmt.Errorf("%v choices but %v positions", len(j.Choices), len(j.Positions))
	}
	for i := 0; i < len(j.Choices); i++ {
		if !kmer.ValidBase(j.Choices[i]) {
			return fmt.Errorf("invalid choice %q", j.Choices[i])
		}
		if i > 0 && j.Positions[i] <= j.Positions[i-1] {
			return fmt.Errorf("positions not strictly increasing")
		}
		if j.Positions[i] < 0 || j.Positions[i] > j.KmersTraversed {
			return fmt.Errorf("position %v outside of the %v traversed k-mers", j.Positions[i], j.KmersTraversed)
		}
	}
	if len(j.Coverage) == 0 {
		return fmt.Errorf("junction without coverage")
	}
	return nil
}

// Entry holds the junctions of one canonical k-mer, in file order.
type Entry struct {
	Kmer      kmer.Kmer
	Junctions []Junction
}

// Model maps canonical k-mers to their link entries. A model is
// read-only once it is returned by Open or Read, and can then be shared
// between goroutines.
type Model struct {
	name    string
	version int
	k       int
	entries map[string]*Entry
}

// NewModel returns an empty model for k-mers of size k.
func NewModel(k int) *Model {
	return &Model{version: MaxVersion, k: k, entries: make(map[string]*Entry)}
}

// Name returns the file the model was read from, if any.
func (m *Model) Name() string { return m.name }

// Version returns the file version the model was read from.
func (m *Model) Version() int { return m.version }

// KmerSize returns k.
func (m *Model) KmerSize() int { return m.k }

// Len returns the number of k-mers with links.
func (m *Model) Len() int { return len(m.entries) }

// Add appends a junction to the entry of k. Junctions given for a
// non-canonical k-mer are stored with their orientation flipped.
func (m *Model) Add(k kmer.Kmer, j Junction) error {
	if k.Len() != m.k {
		return fmt.Errorf("k-mer %v has size %v, while links have size %v", k.Oriented(), k.Len(), m.k)
	}
	if err := j.validate(); err != nil {
		return fmt.Errorf("%v, while adding a link for %v", err, k.Oriented())
	}
	j.Choices = strings.ToUpper(j.Choices)
	if k.Flipped() {
		j.Orientation = j.Orientation.Flip()
	}
	key := k.String()
	entry := m.entries[key]
	if entry == nil {
		entry = &Entry{Kmer: k.Canonical()}
		m.entries[key] = entry
	}
	entry.Junctions = append(entry.Junctions, j)
	return nil
}

// Entry returns the links of the canonical form of k, or nil.
func (m *Model) Entry(k kmer.Kmer) *Entry {
	return m.entries[k.String()]
}

// Kmers returns the linked k-mers in canonical order.
func (m *Model) Kmers() []kmer.Kmer {
	result := make([]kmer.Kmer, 0, len(m.entries))
	for _, entry := range m.entries {
		result = append(result, entry.Kmer)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Compare(result[j]) < 0
	})
	return result
}

// Consult returns the base that the links starting at k mandate
// distance steps after k was passed in orientation o. Only junctions
// with a matching orientation that are not exhausted and record a
// choice at exactly that distance take part. When they disagree, the
// base with the highest summed coverage wins; an exact tie yields no
// hint.
func (m *Model) Consult(k kmer.Kmer, o kmer.Orientation, distance int) (byte, bool) {
	entry := m.entries[k.String()]
	if entry == nil {
		return 0, false
	}
	if k.Flipped() {
		o = o.Flip()
	}
	var votes [4]uint64
	var voted [4]bool
	for i := range entry.Junctions {
		j := &entry.Junctions[i]
		if j.Orientation != o {
			continue
		}
		base, ok := j.Choice(distance)
		if !ok {
			continue
		}
		code := baseIndex(base)
		votes[code] += j.TotalCoverage()
		voted[code] = true
	}
	best, tie := -1, false
	for code := range votes {
		if !voted[code] {
			continue
		}
		switch {
		case best < 0 || votes[code] > votes[best]:
			best, tie = code, false
		case votes[code] == votes[best]:
			tie = true
		}
	}
	if best < 0 || tie {
		return 0, false
	}
	return "ACGT"[best], true
}

func baseIndex(base byte) int {
	switch base {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	default:
		return 3
	}
}
