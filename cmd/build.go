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
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/fasta"
)

// BuildHelp is the help string for this command.
const BuildHelp = "\nbuild parameters:\n" +
	"elcortex build input-file[,input-file...] graph-output-file\n" +
	"--kmer-size k\n" +
	"[--samples name[,name...]]\n" +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// sampleName strips the directory and the sequence file extensions.
func sampleName(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Build implements the elcortex build command: every input file of
// FASTA or FASTQ sequences becomes one color of a new graph file.
func Build() error {
	var (
		kmerSize         int
		samples          string
		profile, logPath string
		nrOfThreads      int
		timed            bool
	)

	var flags flag.FlagSet

	flags.IntVar(&kmerSize, "kmer-size", 0, "size of the k-mers in the graph")
	flags.StringVar(&samples, "samples", "", "comma-separated sample names, one per input file")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 4, BuildHelp)

	input := getFilename(os.Args[2], BuildHelp)
	output := getFilename(os.Args[3], BuildHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	inputs := strings.Split(input, ",")
	for _, in := range inputs {
		if !checkExist("", in) {
			sanityChecksFailed = true
		}
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}

	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}

	if kmerSize <= 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid kmer-size: ", kmerSize)
	}

	colors := make([]cortex.ColorInfo, len(inputs))
	if samples == "" {
		for i, in := range inputs {
			colors[i].SampleName = sampleName(in)
		}
	} else if names := strings.Split(samples, ","); len(names) != len(inputs) {
		sanityChecksFailed = true
		log.Printf("Error: %v sample names given for %v input files.\n", len(names), len(inputs))
	} else {
		for i, name := range names {
			colors[i].SampleName = name
		}
	}

	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, BuildHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " build ", input, " ", output, " --kmer-size ", kmerSize)
	if samples != "" {
		fmt.Fprint(&command, " --samples ", samples)
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

	builder, err := cortex.NewBuilder(kmerSize, colors...)
	if err != nil {
		return err
	}

	for color, in := range inputs {
		phase := int64(color + 1)
		if err := timedRun(timed, profile, fmt.Sprintf("Reading sequences of sample %v from %v.", colors[color].SampleName, in), phase, func() error {
			return addSequences(builder, color, in)
		}); err != nil {
			return err
		}
	}

	return timedRun(timed, profile, "Writing graph file.", int64(len(inputs)+1), func() error {
		log.Printf("Writing %v k-mers to %v.\n", builder.Len(), output)
		return builder.Write(output)
	})
}

func addSequences(builder *cortex.Builder, color int, filename string) (funcErr error) {
	reader, err := fasta.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	var count int
	for reader.Next() {
		seq := reader.Sequence()
		if err := builder.AddSequence(color, string(seq.Bases)); err != nil {
			return fmt.Errorf("%v, while adding sequence %v of %v", err, seq.Name, filename)
		}
		count++
	}
	if err := reader.Err(); err != nil {
		return err
	}
	log.Printf("Added %v sequences from %v.\n", count, filename)
	return nil
}
