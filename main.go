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


// elCortex stores colored de Bruijn graphs of sequencing samples in
// sorted memory-mapped record files, and traverses them to assemble
// contigs, collect subgraphs, call bubbles and find novel sequence.
//
// Please see https://github.com/exascience/elcortex for a
// documentation of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/elcortex/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: build, view, walk, explore, bubbles, novel, partition")
	fmt.Fprint(os.Stderr, "\n", cmd.BuildHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.ViewHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.WalkHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.ExploreHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.BubblesHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.NovelHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.PartitionHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprintln(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = cmd.Build()
	case "view":
		err = cmd.View()
	case "walk":
		err = cmd.Walk()
	case "explore":
		err = cmd.Explore()
	case "bubbles":
		err = cmd.Bubbles()
	case "novel":
		err = cmd.Novel()
	case "partition":
		err = cmd.Partition()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
