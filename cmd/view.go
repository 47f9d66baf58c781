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
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/internal"
)

// ViewHelp is the help string for this command.
const ViewHelp = "\nview parameters:\n" +
	"elcortex view graph-file[,graph-file...]\n" +
	"[--records]\n" +
	"[--output file]\n" +
	"[--nr-of-threads n]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// colorStats summarizes one color of a graph.
type colorStats struct {
	kmers    uint64
	coverage uint64
}

func addStats(into, from []colorStats) {
	for c := range from {
		into[c].kmers += from[c].kmers
		into[c].coverage += from[c].coverage
	}
}

// graphStats counts the k-mers and the coverage of every color. A
// single graph file is scanned in parallel batches.
func graphStats(src cortex.Source) ([]colorStats, uint64, error) {
	total := make([]colorStats, src.NumColors())
	g, ok := src.(*cortex.Graph)
	if !ok {
		var n uint64
		it := src.Records()
		for it.Next() {
			rec := it.Record()
			for c := range total {
				if rec.Present(c) {
					total[c].kmers++
					total[c].coverage += uint64(rec.Coverage(c))
				}
			}
			n++
		}
		return total, n, it.Err()
	}
	var p pipeline.Pipeline
	p.Source(g.Source())
	p.SetVariableBatchSize(1024, 65536)
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			local := make([]colorStats, len(total))
			for _, rec := range data.(cortex.Batch).Records {
				for c := range local {
					if rec.Present(c) {
						local[c].kmers++
						local[c].coverage += uint64(rec.Coverage(c))
					}
				}
			}
			return local
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			addStats(total, data.([]colorStats))
			return nil
		})),
	)
	internal.RunPipeline(&p)
	return total, g.Len(), nil
}

func printGraph(out io.Writer, src cortex.Source, records bool) error {
	stats, n, err := graphStats(src)
	if err != nil {
		return err
	}
	hdr := src.Header()
	fmt.Fprintf(out, "kmer_size\t%v\n", hdr.KmerSize)
	fmt.Fprintf(out, "colors\t%v\n", hdr.NumColors)
	fmt.Fprintf(out, "kmers\t%v\n", n)
	for c, info := range hdr.Colors {
		fmt.Fprintf(out, "color\t%v\t%v\t%v\t%v\n", c, info.SampleName, stats[c].kmers, stats[c].coverage)
	}
	if !records {
		return nil
	}
	it := src.Records()
	for it.Next() {
		if _, err := fmt.Fprintln(out, it.Record()); err != nil {
			return err
		}
	}
	return it.Err()
}

// View implements the elcortex view command.
func View() (funcErr error) {
	var (
		records          bool
		output           string
		profile, logPath string
		nrOfThreads      int
		timed            bool
	)

	var flags flag.FlagSet

	flags.BoolVar(&records, "records", false, "print every record after the summary")
	flags.StringVar(&output, "output", "", "write to the specified file instead of standard output")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 3, ViewHelp)

	input := getFilename(os.Args[2], ViewHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkGraphs("", input) {
		sanityChecksFailed = true
	}
	if output != "" && !checkCreate("--output", output) {
		sanityChecksFailed = true
	}
	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ViewHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " view ", input)
	if records {
		fmt.Fprint(&command, " --records")
	}
	if output != "" {
		fmt.Fprint(&command, " --output ", output)
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

	src, closer, err := openGraphs(input)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); funcErr == nil {
			funcErr = err
		}
	}()

	var out io.Writer = os.Stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer func() {
			if err := file.Close(); funcErr == nil {
				funcErr = err
			}
		}()
		out = file
	}
	buffered := bufio.NewWriter(out)

	return timedRun(timed, profile, "Viewing graph.", 1, func() error {
		if err := printGraph(buffered, src, records); err != nil {
			return err
		}
		return buffered.Flush()
	})
}
