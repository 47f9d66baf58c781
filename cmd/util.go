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
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/exascience/elcortex/cortex"
	"github.com/exascience/elcortex/internal"
	"github.com/exascience/elcortex/kmer"
	"github.com/exascience/elcortex/links"
	"github.com/exascience/elcortex/traversal"
	"github.com/exascience/elcortex/utils"
)

// ProgramMessage is the first line printed when the elcortex binary is
// called.
var ProgramMessage string

func init() {
	ProgramMessage = fmt.Sprint(
		"\n", utils.ProgramName, " version ", utils.ProgramVersion,
		" compiled with ", runtime.Version(), " ", internal.PedanticMessage,
		"- see ", utils.ProgramURL, " for more information.\n",
	)
}

// HelpMessage is printed to show the --help flag.
const HelpMessage = "Print command details:\n" +
	"[--help]\n"

func getFilename(s, help string) string {
	switch s {
	case "-h", "--h", "-help", "--help":
		fmt.Fprint(os.Stderr, help)
		os.Exit(0)
	default:
		if strings.HasPrefix(s, "-") {
			log.Println("Filename(s) in command line missing.")
			fmt.Fprint(os.Stderr, help)
			os.Exit(1)
		}
	}
	return s
}

func parseFlags(flags *flag.FlagSet, requiredArgs int, help string) {
	if len(os.Args) < requiredArgs {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	flags.SetOutput(io.Discard)
	if err := flags.Parse(os.Args[requiredArgs:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			x = 1
		}
		fmt.Fprint(os.Stderr, help)
		os.Exit(x)
	}
	if flags.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Cannot parse remaining parameters:", flags.Args())
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
}

func logCheckFile(parameter, format string, v ...interface{}) {
	if parameter != "" {
		log.Printf(format+" for command line parameter %v.\n", append(v, parameter)...)
	} else {
		log.Printf(format+".\n", v...)
	}
}

func checkExist(parameter, filename string) bool {
	if len(filename) == 0 {
		logCheckFile(parameter, "Error: Missing filename")
		return false
	}
	if filename[0] == '-' {
		logCheckFile(parameter, "Error: Missing filename before %v", filename)
		return false
	}
	if _, err := os.Stat(filename); err == nil {
		return true
	} else if os.IsNotExist(err) {
		logCheckFile(parameter, "Error: File %v does not exist", filename)
		return false
	} else if os.IsPermission(err) {
		logCheckFile(parameter, "Error: No permission to read file %v", filename)
		return false
	} else {
		logCheckFile(parameter, "Error %v when trying to access file %v", err, filename)
		return false
	}
}

func checkCreate(parameter, filename string) bool {
	if len(filename) == 0 {
		logCheckFile(parameter, "Error: Missing filename")
		return false
	}
	if filename[0] == '-' {
		logCheckFile(parameter, "Error: Missing filename before %v", filename)
		return false
	}
	if _, err := os.Stat(filename); err == nil {
		// Assume that the file has been written by previous runs, and can be overwritten.
		return true
	}
	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err == nil {
		err = os.WriteFile(filename, nil, 0666)
	}
	if err != nil {
		if os.IsPermission(err) {
			logCheckFile(parameter, "Error: No permission to create file %v", filename)
		} else {
			logCheckFile(parameter, "Error %v when trying to create file %v", err, filename)
		}
		return false
	}
	_ = os.Remove(filename)
	return true
}

// checkGraphs checks a comma-separated list of graph files.
func checkGraphs(parameter, filenames string) bool {
	ok := true
	for _, filename := range strings.Split(filenames, ",") {
		if !checkExist(parameter, filename) {
			ok = false
		}
	}
	return ok
}

func createLogFilename() string {
	t := time.Now()
	zone, _ := t.Zone()
	return fmt.Sprintf("logs/elcortex/elcortex-%d-%02d-%02d-%02d-%02d-%02d-%09d-%v.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

func setLogOutput(path string) {
	logPath := createLogFilename()
	var fullPath string
	if path == "" {
		fullPath = filepath.Join(os.Getenv("HOME"), logPath)
	} else {
		fullPath = filepath.Join(path, logPath)
	}
	internal.MkdirAll(filepath.Dir(fullPath), 0700)
	f := internal.FileCreate(fullPath)
	fmt.Fprintln(f, ProgramMessage)

	orgStderr, err := unix.Dup(2)
	if err != nil {
		log.Panic(err)
	}
	ferr := os.NewFile(uintptr(orgStderr), "/dev/stderr")
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		log.Panic(err)
	}

	multi := io.MultiWriter(f, ferr)

	log.SetOutput(multi)
	log.Println("Created log file at", fullPath)
	log.Println("Run ID:", uuid.New())
	log.Println("Command line:", os.Args)
}

func timedRun(timed bool, profile, msg string, phase int64, f func() error) error {
	if profile != "" {
		filename := profile + strconv.FormatInt(phase, 10) + ".prof"
		file := internal.FileCreate(filename)
		defer internal.Close(file)
		if err := pprof.StartCPUProfile(file); err != nil {
			log.Panic(err)
		}
		defer pprof.StopCPUProfile()
	}
	if timed {
		log.Println(msg)
		start := time.Now()
		defer func() {
			end := time.Now()
			log.Println("Elapsed time: ", end.Sub(start))
		}()
	}
	return f()
}

// openGraphs opens a single graph, or a collection when given a
// comma-separated list of graph files.
func openGraphs(filenames string) (cortex.Source, io.Closer, error) {
	paths := strings.Split(filenames, ",")
	if len(paths) == 1 {
		g, err := cortex.Open(paths[0])
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	}
	c, err := cortex.OpenCollection(paths...)
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}

// resolveColor accepts a sample name or a color index.
func resolveColor(src cortex.Source, sample string) (int, error) {
	if color, ok := src.Header().ColorForSample(sample); ok {
		return color, nil
	}
	color, err := strconv.Atoi(sample)
	if err != nil {
		return -1, fmt.Errorf("unknown sample %v", sample)
	}
	if err := cortex.CheckColor(src, color); err != nil {
		return -1, err
	}
	return color, nil
}

func resolveColors(src cortex.Source, samples string) (colors []int, err error) {
	if samples == "" {
		return nil, nil
	}
	for _, sample := range strings.Split(samples, ",") {
		color, err := resolveColor(src, sample)
		if err != nil {
			return nil, err
		}
		colors = append(colors, color)
	}
	return colors, nil
}

const traversalHelp = "[--join samples]\n" +
	"[--recruit samples]\n" +
	"[--combination and|or]\n" +
	"[--direction forward|reverse|both]\n" +
	"[--links file]\n" +
	"[--max-depth n]\n" +
	"[--max-vertices n]\n" +
	"[--destination kmer[,kmer...]]\n"

// traversalFlags are the command line options shared by all commands
// that traverse a graph.
type traversalFlags struct {
	join, recruit, combination, direction, links string
	destination                                  string
	maxDepth, maxVertices                        int
}

func (tf *traversalFlags) register(flags *flag.FlagSet) {
	flags.StringVar(&tf.join, "join", "", "comma-separated samples whose edges are followed together with the primary sample")
	flags.StringVar(&tf.recruit, "recruit", "", "comma-separated samples whose edges are recorded but not followed")
	flags.StringVar(&tf.combination, "combination", "and", "combine the edges of followed samples with and/or")
	flags.StringVar(&tf.direction, "direction", "both", "traverse forward, reverse or both")
	flags.StringVar(&tf.links, "links", "", "links file to resolve branches with")
	flags.IntVar(&tf.maxDepth, "max-depth", 0, "stop branches beyond this distance from the seed")
	flags.IntVar(&tf.maxVertices, "max-vertices", 0, "abort traversals that retain this many vertices")
	flags.StringVar(&tf.destination, "destination", "", "comma-separated k-mers; only traversals that reach one of them succeed")
}

func (tf *traversalFlags) check() bool {
	ok := true
	if _, err := traversal.ParseCombination(tf.combination); err != nil {
		log.Println("Error:", err)
		ok = false
	}
	if _, err := traversal.ParseDirection(tf.direction); err != nil {
		log.Println("Error:", err)
		ok = false
	}
	if tf.links != "" && !checkExist("--links", tf.links) {
		ok = false
	}
	if _, err := tf.destinations(); err != nil {
		log.Println("Error: Invalid destination:", err)
		ok = false
	}
	if tf.maxDepth < 0 || tf.maxVertices < 0 {
		log.Println("Error: Invalid traversal limits", tf.maxDepth, tf.maxVertices)
		ok = false
	}
	return ok
}

func (tf *traversalFlags) command(command io.Writer) {
	if tf.join != "" {
		fmt.Fprint(command, " --join ", tf.join)
	}
	if tf.recruit != "" {
		fmt.Fprint(command, " --recruit ", tf.recruit)
	}
	fmt.Fprint(command, " --combination ", tf.combination, " --direction ", tf.direction)
	if tf.links != "" {
		fmt.Fprint(command, " --links ", tf.links)
	}
	if tf.maxDepth > 0 {
		fmt.Fprint(command, " --max-depth ", tf.maxDepth)
	}
	if tf.maxVertices > 0 {
		fmt.Fprint(command, " --max-vertices ", tf.maxVertices)
	}
	if tf.destination != "" {
		fmt.Fprint(command, " --destination ", tf.destination)
	}
}

func (tf *traversalFlags) destinations() (traversal.Kmers, error) {
	if tf.destination == "" {
		return nil, nil
	}
	set := traversal.NewKmers()
	for _, bases := range strings.Split(tf.destination, ",") {
		k, err := kmer.New(bases)
		if err != nil {
			return nil, err
		}
		set.Add(k)
	}
	return set, nil
}

// config builds a traversal configuration. Extra rules are chained
// after the depth and vertex limits.
func (tf *traversalFlags) config(src cortex.Source, primary int, rules ...traversal.StoppingRule) (cfg traversal.Config, err error) {
	joining, err := resolveColors(src, tf.join)
	if err != nil {
		return
	}
	recruitment, err := resolveColors(src, tf.recruit)
	if err != nil {
		return
	}
	combination, err := traversal.ParseCombination(tf.combination)
	if err != nil {
		return
	}
	direction, err := traversal.ParseDirection(tf.direction)
	if err != nil {
		return
	}
	opts := []traversal.Option{
		traversal.WithJoiningColors(joining...),
		traversal.WithRecruitmentColors(recruitment...),
		traversal.WithCombination(combination),
		traversal.WithDirection(direction),
	}
	if tf.links != "" {
		model, err := links.Open(tf.links)
		if err != nil {
			return cfg, err
		}
		log.Printf("Read %v linked k-mers from %v.\n", model.Len(), tf.links)
		opts = append(opts, traversal.WithLinks(model))
	}
	var limits []traversal.StoppingRule
	if tf.maxDepth > 0 {
		limits = append(limits, traversal.MaxDepth(tf.maxDepth))
	}
	if tf.maxVertices > 0 {
		limits = append(limits, traversal.MaxVertices(tf.maxVertices))
	}
	limits = append(limits, rules...)
	destinations, err := tf.destinations()
	if err != nil {
		return
	}
	if destinations != nil {
		limits = append(limits, traversal.Destination(destinations))
		opts = append(opts, traversal.WithRequireAccept())
	}
	if len(limits) > 0 {
		opts = append(opts, traversal.WithStoppingRule(traversal.Chain(limits...)))
	}
	return traversal.NewConfig(primary, opts...), nil
}

// writeFasta writes one sequence on a single line.
func writeFasta(w io.Writer, name, sequence string) error {
	_, err := fmt.Fprintf(w, ">%v\n%v\n", name, sequence)
	return err
}

// withEngine opens the graphs and runs f on an engine that follows the
// given sample.
func withEngine(filenames, sample string, tf *traversalFlags, f func(e *traversal.Engine) error, rules ...traversal.StoppingRule) (funcErr error) {
	src, closer, err := openGraphs(filenames)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	primary, err := resolveColor(src, sample)
	if err != nil {
		return err
	}
	cfg, err := tf.config(src, primary, rules...)
	if err != nil {
		return err
	}
	e, err := traversal.NewEngine(src, cfg)
	if err != nil {
		return err
	}
	return f(e)
}

// writeFile creates filename and passes a buffered writer for it to f.
func writeFile(filename string, f func(out io.Writer) error) (funcErr error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	out := bufio.NewWriter(file)
	if err := f(out); err != nil {
		return err
	}
	return out.Flush()
}
