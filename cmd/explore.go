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
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/traversal"
)

// ExploreHelp is the help string for this command.
const ExploreHelp = "\nexplore parameters:\n" +
	"elcortex explore graph-file[,graph-file...] seed-kmer subgraph-output-file\n" +
	"--sample name\n" +
	traversalHelp +
	"[--format json|dot]\n" +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// snapshotFormat picks the output format from the flag, or else from
// the file extension.
func snapshotFormat(format, output string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if strings.EqualFold(filepath.Ext(output), ".dot") {
		return "dot"
	}
	return "json"
}

func writeSnapshot(out io.Writer, snapshot *traversal.Snapshot, format string) error {
	if format == "dot" {
		return snapshot.WriteDot(out)
	}
	return snapshot.WriteJSON(out)
}

// Explore implements the elcortex explore command: it collects the
// subgraph reachable from a seed k-mer and writes it as JSON or DOT.
func Explore() error {
	var (
		sample, format   string
		tf               traversalFlags
		profile, logPath string
		nrOfThreads      int
		timed            bool
	)

	var flags flag.FlagSet

	flags.StringVar(&sample, "sample", "", "sample whose edges are followed")
	tf.register(&flags)
	flags.StringVar(&format, "format", "", "output format json or dot (default by file extension)")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 5, ExploreHelp)

	input := getFilename(os.Args[2], ExploreHelp)
	seedBases := os.Args[3]
	output := getFilename(os.Args[4], ExploreHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkGraphs("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}
	seed, err := kmer.New(seedBases)
	if err != nil {
		sanityChecksFailed = true
		log.Println("Error: Invalid seed: ", err)
	}
	if sample == "" {
		sanityChecksFailed = true
		log.Println("Error: Missing --sample.")
	}
	format = snapshotFormat(format, output)
	if format != "json" && format != "dot" {
		sanityChecksFailed = true
		log.Println("Error: Invalid format: ", format)
	}
	if !tf.check() {
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ExploreHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " explore ", input, " ", seedBases, " ", output, " --sample ", sample)
	tf.command(&command)
	fmt.Fprint(&command, " --format ", format)
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	return withEngine(input, sample, &tf, func(e *traversal.Engine) error {
		var subgraph *traversal.Subgraph
		if err := timedRun(timed, profile, "Exploring from seed.", 1, func() (err error) {
			subgraph, err = e.Explore(seed)
			return
		}); err != nil {
			return err
		}
		if subgraph == nil {
			log.Printf("Exploration from %v was aborted or did not reach an accepting k-mer.\n", seedBases)
			return fmt.Errorf("no subgraph for seed %v", seedBases)
		}
		snapshot := subgraph.Snapshot()
		log.Printf("Exploration %v from %v retains %v vertices and %v edges.\n", snapshot.ID, seedBases, len(snapshot.Vertices), len(snapshot.Edges))
		return writeFile(output, func(out io.Writer) error {
			return writeSnapshot(out, snapshot, format)
		})
	})
}
