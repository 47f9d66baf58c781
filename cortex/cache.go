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
	"runtime"

	"github.com/exascience/pargo/sync"

	"github.com/exascience/elcortex/internal"
	"github.com/exascience/elcortex/kmer"
)

type cacheKey string

func (key cacheKey) Hash() uint64 {
	return internal.StringHash(string(key))
}

// lookup also remembers that a k-mer is absent.
type lookup struct {
	record *Record
}

// Cache is a Source that remembers the outcome of every Find on the
// source it wraps. Parallel traversals over overlapping regions of a
// graph then decode each record once. A Cache is safe for concurrent
// use, and grows until it is dropped.
type Cache struct {
	Source
	lookups *sync.Map
}

// NewCache wraps src.
func NewCache(src Source) *Cache {
	return &Cache{
		Source:  src,
		lookups: sync.NewMap(16 * runtime.GOMAXPROCS(0)),
	}
}

// Find implements Source.
func (c *Cache) Find(k kmer.Kmer) (*Record, error) {
	if k.Len() != c.KmerSize() {
		return nil, &KmerSizeError{Expected: c.KmerSize(), Actual: k.Len()}
	}
	key := cacheKey(k.String())
	if entry, ok := c.lookups.Load(key); ok {
		return entry.(*lookup).record, nil
	}
	rec, err := c.Source.Find(k)
	if err != nil {
		return nil, err
	}
	entry, _ := c.lookups.LoadOrStore(key, &lookup{record: rec})
	return entry.(*lookup).record, nil
}
