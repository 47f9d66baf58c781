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
	"runtime"

	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/traversal"
)

// WalkHelp is the help string for this command.
const WalkHelp = "\nwalk parameters:\n" +
	"elcortex walk graph-file[,graph-file...] seed-kmer fasta-output-file\n" +
	"--sample name\n" +
	traversalHelp +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// Walk implements the elcortex walk command: it extends a seed k-mer
// into the maximal unambiguous contig of a sample.
func Walk() error {
	var (
		sample           string
		tf               traversalFlags
		profile, logPath string
		nrOfThreads      int
		timed            bool
	)

	var flags flag.FlagSet

	flags.StringVar(&sample, "sample", "", "sample whose edges are followed")
	tf.register(&flags)
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 5, WalkHelp)

	input := getFilename(os.Args[2], WalkHelp)
	seedBases := os.Args[3]
	output := getFilename(os.Args[4], WalkHelp)

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
	if !tf.check() {
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, WalkHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " walk ", input, " ", seedBases, " ", output, " --sample ", sample)
	tf.command(&command)
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
		var path []traversal.Vertex
		if err := timedRun(timed, profile, "Walking from seed.", 1, func() (err error) {
			path, err = e.Walk(seed)
			return
		}); err != nil {
			return err
		}
		if path == nil {
			log.Printf("Walk from %v was aborted or did not reach an accepting k-mer.\n", seedBases)
			return fmt.Errorf("no contig for seed %v", seedBases)
		}
		log.Printf("Walk from %v yields a contig of %v k-mers.\n", seedBases, len(path))
		return writeFile(output, func(out io.Writer) error {
			return writeFasta(out, fmt.Sprintf("contig seed=%v kmers=%v", seedBases, len(path)), traversal.Sequence(path))
		})
	})
}
