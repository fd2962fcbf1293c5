// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/gastonlogic/gaston"
)

var (
	dashc     string
	dashtrace string
	dashdfs   bool
	dashprune bool
	dashcont  bool
	dashstats bool
)

func init() {
	flag.StringVar(&dashc, "c", "", "engine config file (YAML)")
	flag.StringVar(&dashtrace, "trace", "", "write a compressed counter trace to this file")
	flag.BoolVar(&dashdfs, "dfs", false, "use DFS worklist order")
	flag.BoolVar(&dashprune, "prune", false, "prune subsumed fixpoint members")
	flag.BoolVar(&dashcont, "cont", false, "defer decided operands behind continuations")
	flag.BoolVar(&dashstats, "stats", false, "log engine counters")
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [options] formula.yaml\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	cfg := &gaston.Config{}
	if dashc != "" {
		var err error
		cfg, err = gaston.LoadConfig(dashc)
		if err != nil {
			log.Fatalf("loading config: %s", err)
		}
	}
	if dashdfs {
		cfg.Search = "dfs"
	}
	if dashprune {
		cfg.PruneFixpoints = true
	}
	if dashcont {
		cfg.UseContinuations = true
	}
	if dashtrace != "" {
		cfg.TracePath = dashtrace
	}

	spec, err := gaston.LoadFormula(flag.Arg(0))
	if err != nil {
		log.Fatalf("loading formula: %s", err)
	}
	engine, err := gaston.BuildEngine(spec, cfg)
	if err != nil {
		log.Fatalf("building automaton: %s", err)
	}

	run := engine.Decide()
	fmt.Println(run.Verdict)

	if dashstats {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		logger, err := zcfg.Build()
		if err != nil {
			log.Fatalf("building logger: %s", err)
		}
		defer logger.Sync()
		run.Log(logger)
	}

	if cfg.TracePath != "" {
		f, err := os.Create(cfg.TracePath)
		if err != nil {
			log.Fatalf("creating trace: %s", err)
		}
		if err := gaston.WriteTrace(f, run); err != nil {
			f.Close()
			log.Fatalf("writing trace: %s", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("closing trace: %s", err)
		}
	}
}
