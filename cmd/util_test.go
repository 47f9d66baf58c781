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


package cmd

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/links"
	"github.com/exascience/elcortex/traversal"
)

func testGraph(t *testing.T) string {
	t.Helper()
	b, err := cortex.NewBuilder(5, cortex.ColorInfo{SampleName: "mother"}, cortex.ColorInfo{SampleName: "child"})
	require.NoError(t, err)
	require.NoError(t, b.AddSequence(0, "GTCAGTTCAGGAT"))
	require.NoError(t, b.AddSequence(1, "GTCAGTTCCTTGA"))
	path := filepath.Join(t.TempDir(), "family.ctx")
	require.NoError(t, b.Write(path))
	return path
}

func TestSampleName(t *testing.T) {
	assert.Equal(t, "NA12878", sampleName("/data/NA12878.fastq.gz"))
	assert.Equal(t, "ref", sampleName("ref.fa"))
}

func TestSnapshotFormat(t *testing.T) {
	assert.Equal(t, "dot", snapshotFormat("", "out/graph.DOT"))
	assert.Equal(t, "json", snapshotFormat("", "graph.out"))
	assert.Equal(t, "dot", snapshotFormat("DOT", "graph.json"))
}

func TestResolveColors(t *testing.T) {
	src, closer, err := openGraphs(testGraph(t))
	require.NoError(t, err)
	defer closer.Close()

	color, err := resolveColor(src, "child")
	require.NoError(t, err)
	assert.Equal(t, 1, color)
	color, err = resolveColor(src, "0")
	require.NoError(t, err)
	assert.Equal(t, 0, color)
	_, err = resolveColor(src, "2")
	assert.Error(t, err)
	_, err = resolveColor(src, "father")
	assert.Error(t, err)

	colors, err := resolveColors(src, "child,mother")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, colors)
	colors, err = resolveColors(src, "")
	require.NoError(t, err)
	assert.Nil(t, colors)
}

func TestOpenGraphsAsCollection(t *testing.T) {
	first, second := testGraph(t), testGraph(t)
	src, closer, err := openGraphs(first + "," + second)
	require.NoError(t, err)
	defer closer.Close()
	_, ok := src.(*cortex.Collection)
	assert.True(t, ok)
	assert.Equal(t, 4, src.NumColors())
}

func TestTraversalFlags(t *testing.T) {
	input := testGraph(t)
	linksPath := filepath.Join(t.TempDir(), "child.ctp")
	model := links.NewModel(5)
	require.NoError(t, model.Add(kmer.MustNew("GTCAG"), links.Junction{
		Orientation: kmer.Forward, KmersTraversed: 4, Coverage: []uint32{2}, Choices: "C", Positions: []int{3},
	}))
	require.NoError(t, model.WriteFile(linksPath, links.MaxVersion))

	tf := traversalFlags{
		join:        "mother",
		combination: "or",
		direction:   "forward",
		links:       linksPath,
		maxDepth:    20,
		destination: "TCCTT",
	}
	require.True(t, tf.check())

	var command bytes.Buffer
	tf.command(&command)
	assert.Contains(t, command.String(), " --join mother")
	assert.Contains(t, command.String(), " --destination TCCTT")

	var path []traversal.Vertex
	require.NoError(t, withEngine(input, "child", &tf, func(e *traversal.Engine) (err error) {
		cfg := e.Config()
		assert.Equal(t, 1, cfg.Primary())
		assert.Equal(t, []int{0}, cfg.JoiningColors())
		assert.Equal(t, traversal.Forward, cfg.Direction())
		assert.True(t, cfg.RequireAccept())
		path, err = e.Walk(kmer.MustNew("GTCAG"))
		return
	}))
	assert.Equal(t, "GTCAGTTCCTT", traversal.Sequence(path))

	tf.direction = "sideways"
	assert.False(t, tf.check())
}

func TestTraversalFlagDefaults(t *testing.T) {
	input := testGraph(t)
	var tf traversalFlags
	flags := flag.NewFlagSet("walk", flag.ContinueOnError)
	tf.register(flags)
	require.NoError(t, flags.Parse(nil))
	require.True(t, tf.check())

	require.NoError(t, withEngine(input, "child", &tf, func(e *traversal.Engine) error {
		want := traversal.NewConfig(1)
		assert.Equal(t, want.Combination(), e.Config().Combination())
		assert.Equal(t, want.Direction(), e.Config().Direction())
		return nil
	}))
}

func TestWriteFasta(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.fa")
	require.NoError(t, writeFile(filename, func(out io.Writer) error {
		return writeFasta(out, "contig0", "ACGT")
	}))
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, ">contig0\nACGT\n", string(data))
	assert.True(t, strings.HasPrefix(createLogFilename(), "logs/elcortex/elcortex-"))
}
