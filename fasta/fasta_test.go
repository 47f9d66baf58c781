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


package fasta

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) (result []Sequence) {
	t.Helper()
	for r.Next() {
		result = append(result, r.Sequence())
	}
	require.NoError(t, r.Err())
	return
}

func TestReadFasta(t *testing.T) {
	r, err := NewReader(strings.NewReader(">chr1 first contig\nACGT\nacgr\n\n>chr2\nTTTT\n"), "test.fa")
	require.NoError(t, err)
	seqs := readAll(t, r)
	require.Len(t, seqs, 2)
	assert.Equal(t, "chr1", seqs[0].Name)
	assert.Equal(t, "ACGTACGN", string(seqs[0].Bases))
	assert.Equal(t, "chr2", seqs[1].Name)
	assert.Equal(t, "TTTT", string(seqs[1].Bases))
}

func TestReadFastq(t *testing.T) {
	r, err := NewReader(strings.NewReader("@read1\nACGTT\n+\nIIIII\n@read2\nggcc\n+read2\n@@@@\n"), "test.fq")
	require.NoError(t, err)
	seqs := readAll(t, r)
	require.Len(t, seqs, 2)
	assert.Equal(t, "read1", seqs[0].Name)
	assert.Equal(t, "ACGTT", string(seqs[0].Bases))
	assert.Equal(t, "GGCC", string(seqs[1].Bases))

	r, err = NewReader(strings.NewReader("@read1\nACGTT\n+\nIII\n"), "short.fq")
	require.NoError(t, err)
	assert.False(t, r.Next())
	assert.Error(t, r.Err())
}

func TestInvalidHeader(t *testing.T) {
	r, err := NewReader(strings.NewReader("ACGT\n"), "bad.fa")
	require.NoError(t, err)
	assert.False(t, r.Next())
	assert.Error(t, r.Err())

	r, err = NewReader(strings.NewReader(""), "empty.fa")
	require.NoError(t, err)
	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
}

func TestOpenGzipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fa.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(">r\nACGTACGT\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	seqs := readAll(t, r)
	require.Len(t, seqs, 1)
	assert.Equal(t, "ACGTACGT", string(seqs[0].Bases))
}
