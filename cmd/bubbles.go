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

	"github.com/exascience/elcortex/bubble"
	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/fasta"
	"github.com/exascience/elcortex/kmer"
)

// BubblesHelp is the help string for this command.
const BubblesHelp = "\nbubbles parameters:\n" +
	"elcortex bubbles graph-file[,graph-file...] seed-fasta-file tsv-output-file\n" +
	"--ref name\n" +
	"--alt name\n" +
	traversalHelp +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

type seedKmer struct {
	name string
	kmer kmer.Kmer
}

// readSeeds takes the first k bases of every sequence in filename.
func readSeeds(filename string, k int) (seeds []seedKmer, funcErr error) {
	reader, err := fasta.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	for reader.Next() {
		seq := reader.Sequence()
		if len(seq.Bases) < k {
			log.Printf("Warning: Seed sequence %v is shorter than %v and is ignored.\n", seq.Name, k)
			continue
		}
		km, err := kmer.FromBytes(seq.Bases[:k])
		if err != nil {
			log.Printf("Warning: Seed sequence %v is ignored: %v.\n", seq.Name, err)
			continue
		}
		seeds = append(seeds, seedKmer{name: seq.Name, kmer: km})
	}
	return seeds, reader.Err()
}

// Bubbles implements the elcortex bubbles command: for every seed it
// walks a reference and an alternative sample and reports where the
// two contigs differ.
func Bubbles() (funcErr error) {
	var (
		ref, alt         string
		tf               traversalFlags
		profile, logPath string
		nrOfThreads      int
		timed            bool
	)

	var flags flag.FlagSet

	flags.StringVar(&ref, "ref", "", "reference sample")
	flags.StringVar(&alt, "alt", "", "alternative sample")
	tf.register(&flags)
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 5, BubblesHelp)

	input := getFilename(os.Args[2], BubblesHelp)
	seedFile := getFilename(os.Args[3], BubblesHelp)
	output := getFilename(os.Args[4], BubblesHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkGraphs("", input) {
		sanityChecksFailed = true
	}
	if !checkExist("", seedFile) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}
	if ref == "" || alt == "" {
		sanityChecksFailed = true
		log.Println("Error: Both --ref and --alt are required.")
	}
	if !tf.check() {
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, BubblesHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " bubbles ", input, " ", seedFile, " ", output, " --ref ", ref, " --alt ", alt)
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

	src, closer, err := openGraphs(input)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	src = cortex.NewCache(src)
	refColor, err := resolveColor(src, ref)
	if err != nil {
		return err
	}
	altColor, err := resolveColor(src, alt)
	if err != nil {
		return err
	}
	refConfig, err := tf.config(src, refColor)
	if err != nil {
		return err
	}
	altConfig, err := tf.config(src, altColor)
	if err != nil {
		return err
	}
	seeds, err := readSeeds(seedFile, src.KmerSize())
	if err != nil {
		return err
	}

	return timedRun(timed, profile, "Calling bubbles.", 1, func() error {
		var called int
		err := writeFile(output, func(out io.Writer) error {
			if _, err := fmt.Fprintln(out, "#seed\tkmer\tflank5p\tref\talt\tflank3p"); err != nil {
				return err
			}
			for _, s := range seeds {
				b, ok, err := bubble.Call(src, s.kmer, refConfig, altConfig)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				called++
				if _, err := fmt.Fprintf(out, "%v\t%v\t%v\t%v\t%v\t%v\n", s.name, s.kmer.Oriented(), b.Flank5p, b.Ref, b.Alt, b.Flank3p); err != nil {
					return err
				}
			}
			return nil
		})
		log.Printf("Called %v bubbles for %v seeds.\n", called, len(seeds))
		return err
	})
}
