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

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/discover"
	"github.com/exascience/elcortex/internal"
)

// PartitionHelp is the help string for this command.
const PartitionHelp = "\npartition parameters:\n" +
	"elcortex partition graph-file output-directory\n" +
	"--sample name\n" +
	"[--max-vertices n]\n" +
	"[--format json|dot]\n" +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// Partition implements the elcortex partition command: it writes one
// subgraph file per connected component of a sample.
func Partition() (funcErr error) {
	var (
		sample, format   string
		maxVertices      int
		profile, logPath string
		nrOfThreads      int
		timed            bool
	)

	var flags flag.FlagSet

	flags.StringVar(&sample, "sample", "", "sample to partition")
	flags.IntVar(&maxVertices, "max-vertices", 0, "split components that grow beyond this many vertices")
	flags.StringVar(&format, "format", "json", "output format json or dot")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 4, PartitionHelp)

	input := getFilename(os.Args[2], PartitionHelp)
	output := getFilename(os.Args[3], PartitionHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", filepath.Join(output, "component-0."+format)) {
		sanityChecksFailed = true
	}
	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}
	if sample == "" {
		sanityChecksFailed = true
		log.Println("Error: Missing --sample.")
	}
	if format != "json" && format != "dot" {
		sanityChecksFailed = true
		log.Println("Error: Invalid format: ", format)
	}
	if maxVertices < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid max-vertices: ", maxVertices)
	}
	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, PartitionHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " partition ", input, " ", output, " --sample ", sample, " --format ", format)
	if maxVertices > 0 {
		fmt.Fprint(&command, " --max-vertices ", maxVertices)
	}
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

	g, err := cortex.Open(input)
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	color, err := resolveColor(g, sample)
	if err != nil {
		return err
	}

	var components []discover.Component
	if err := timedRun(timed, profile, "Partitioning graph.", 1, func() (err error) {
		components, err = discover.Partition(g, color, maxVertices)
		return
	}); err != nil {
		return err
	}

	internal.MkdirAll(output, 0700)
	var truncated int
	for _, component := range components {
		if component.Truncated {
			truncated++
		}
		filename := filepath.Join(output, fmt.Sprintf("component-%v.%v", component.ID, format))
		snapshot := component.Subgraph.Snapshot()
		if err := writeFile(filename, func(out io.Writer) error {
			return writeSnapshot(out, snapshot, format)
		}); err != nil {
			return err
		}
	}
	log.Printf("Wrote %v components, %v of which were split at %v vertices.\n", len(components), truncated, maxVertices)
	return nil
}
