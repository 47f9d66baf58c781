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

import "fmt"

// A CorruptHeaderError is returned by Open when the header of a graph
// file is truncated or inconsistent with the file length.
type CorruptHeaderError struct {
	Path   string
	Reason string
}

func (err *CorruptHeaderError) Error() string {
	return fmt.Sprintf("%v is not a valid graph file - %v", err.Path, err.Reason)
}

// An OutOfRangeError is returned by Get for record indices past the end.
type OutOfRangeError struct {
	Index, Len uint64
}

func (err *OutOfRangeError) Error() string {
	return fmt.Sprintf("record index %v out of range [0,%v)", err.Index, err.Len)
}

// A KmerSizeError reports a k-mer whose length differs from the k of
// the graph it is used with.
type KmerSizeError struct {
	Expected, Actual int
}

func (err *KmerSizeError) Error() string {
	return fmt.Sprintf("k-mer of length %v used with a graph of k=%v", err.Actual, err.Expected)
}

// A ColorRangeError reports a color index that is not below the number
// of colors of a graph.
type ColorRangeError struct {
	Color, NumColors int
}

func (err *ColorRangeError) Error() string {
	return fmt.Sprintf("color %v out of range for a graph with %v colors", err.Color, err.NumColors)
}

// A ColorCountError reports a record whose number of color annotations
// does not match the header.
type ColorCountError struct {
	Expected, Actual int
}

func (err *ColorCountError) Error() string {
	return fmt.Sprintf("record has %v color annotations, header declares %v", err.Actual, err.Expected)
}

// An OutOfOrderError is returned by Writer.AddRecord when records are
// not added in strictly increasing k-mer order.
type OutOfOrderError struct {
	Previous, Current string
}

func (err *OutOfOrderError) Error() string {
	return fmt.Sprintf("record %v added after %v - records must be strictly increasing", err.Current, err.Previous)
}

// A MergeError is returned when sources with different k-mer sizes are
// combined in a Collection.
type MergeError struct {
	Source           int
	Expected, Actual int
}

func (err *MergeError) Error() string {
	return fmt.Sprintf("cannot merge source %v with k=%v into a collection of k=%v", err.Source, err.Actual, err.Expected)
}
