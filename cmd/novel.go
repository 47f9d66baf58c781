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

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/discover"
)

// NovelHelp is the help string for this command.
const NovelHelp = "\nnovel parameters:\n" +
	"elcortex novel graph-file fasta-output-file\n" +
	"--child name\n" +
	"--parents name[,name...]\n" +
	"[--kmers-only]\n" +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// Novel implements the elcortex novel command: it writes the k-mers of
// a child sample that none of the parent samples contain, assembled
// into contigs unless only the k-mers are requested.
func Novel() (funcErr error) {
	var (
		child, parents   string
		kmersOnly        bool
		profile, logPath string
		nrOfThreads      int
		timed            bool
	)

	var flags flag.FlagSet

	flags.StringVar(&child, "child", "", "sample in which novel k-mers are searched")
	flags.StringVar(&parents, "parents", "", "comma-separated samples that novel k-mers must be absent from")
	flags.BoolVar(&kmersOnly, "kmers-only", false, "write the novel k-mers instead of contigs")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 4, NovelHelp)

	input := getFilename(os.Args[2], NovelHelp)
	output := getFilename(os.Args[3], NovelHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}
	if child == "" || parents == "" {
		sanityChecksFailed = true
		log.Println("Error: Both --child and --parents are required.")
	}
	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, NovelHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " novel ", input, " ", output, " --child ", child, " --parents ", parents)
	if kmersOnly {
		fmt.Fprint(&command, " --kmers-only")
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
	childColor, err := resolveColor(g, child)
	if err != nil {
		return err
	}
	parentColors, err := resolveColors(g, parents)
	if err != nil {
		return err
	}

	if kmersOnly {
		return timedRun(timed, profile, "Searching novel k-mers.", 1, func() error {
			novel, err := discover.NovelKmers(g, childColor, parentColors)
			if err != nil {
				return err
			}
			log.Printf("Found %v novel k-mers.\n", novel.GetCardinality())
			return writeFile(output, func(out io.Writer) error {
				for it := novel.Iterator(); it.HasNext(); {
					i := it.Next()
					rec, err := g.Get(uint64(i))
					if err != nil {
						return err
					}
					if err := writeFasta(out, fmt.Sprintf("kmer%v coverage=%v", i, rec.Coverage(childColor)), rec.Kmer.String()); err != nil {
						return err
					}
				}
				return nil
			})
		})
	}

	return timedRun(timed, profile, "Assembling novel contigs.", 1, func() error {
		contigs, err := discover.NovelContigs(g, childColor, parentColors)
		if err != nil {
			return err
		}
		log.Printf("Assembled %v novel contigs.\n", len(contigs))
		return writeFile(output, func(out io.Writer) error {
			for i, contig := range contigs {
				if err := writeFasta(out, fmt.Sprintf("contig%v seed=%v kmers=%v", i, contig.Seed, len(contig.Path)), contig.Sequence); err != nil {
					return err
				}
			}
			return nil
		})
	})
}
