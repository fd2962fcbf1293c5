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

// Package gaston decides WS1S formulas that have been compiled to
// symbolic automata. The decision procedure evaluates whether a
// satisfying example exists (intersection non-empty on the positive
// formula) and whether a counter-example exists (the same search on
// the complemented formula), then classifies the verdict.
package gaston

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/gastonlogic/gaston/automaton"
	"github.com/gastonlogic/gaston/term"
)

// Verdict is the four-way outcome of a decision run.
type Verdict int

const (
	Satisfiable Verdict = iota
	Unsatisfiable
	Valid
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Satisfiable:
		return "satisfiable"
	case Unsatisfiable:
		return "unsatisfiable"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Engine bundles a compiled automaton tree with the run-scoped state
// needed to decide it.
type Engine struct {
	Root *automaton.Env
	Aut  automaton.Node

	// Ground marks a formula with no free variables, which reports
	// Valid/Invalid instead of Satisfiable/Unsatisfiable.
	Ground bool
}

// Run is the report of one decision.
type Run struct {
	ID      uuid.UUID
	Verdict Verdict
	Elapsed time.Duration

	HasExample        bool
	HasCounterExample bool

	// rendered example/counter-example anchor terms, when the root
	// result exposes them
	Example        string
	CounterExample string

	Counters map[string]uint64
}

// Decide evaluates the engine's automaton against its initial term
// under the zero symbol, once positively and once under complement,
// and classifies the result.
func (e *Engine) Decide() *Run {
	start := time.Now()
	initial := e.Aut.InitialTerm()
	zero := e.Root.Syms.Zero()

	posTerm, hasExample := e.Aut.IntersectNonEmpty(zero, initial, false)
	negTerm, hasCounter := e.Aut.IntersectNonEmpty(zero, initial, true)

	run := &Run{
		ID:                uuid.New(),
		Elapsed:           time.Since(start),
		HasExample:        hasExample,
		HasCounterExample: hasCounter,
		Counters:          make(map[string]uint64),
	}
	run.Verdict = classify(e.Ground, hasExample, hasCounter)
	if posTerm.Tag() == term.TagFixpoint {
		if sat, _ := posTerm.FixpointExamples(); sat != nil {
			run.Example = sat.String()
		}
	}
	if negTerm.Tag() == term.TagFixpoint {
		if sat, _ := negTerm.FixpointExamples(); sat != nil {
			run.CounterExample = sat.String()
		}
	}
	e.Root.Stats.Report(func(name string, value uint64) {
		run.Counters[name] = value
	})
	return run
}

func classify(ground, example, counter bool) Verdict {
	switch {
	case !example:
		if ground {
			return Invalid
		}
		return Unsatisfiable
	case !counter:
		return Valid
	default:
		return Satisfiable
	}
}

// Log renders the run through a structured logger: the verdict at
// info level and every engine counter at debug level.
func (r *Run) Log(l *zap.Logger) {
	l.Info("decision",
		zap.String("run_id", r.ID.String()),
		zap.String("verdict", r.Verdict.String()),
		zap.Duration("elapsed", r.Elapsed),
		zap.Bool("example", r.HasExample),
		zap.Bool("counter_example", r.HasCounterExample),
	)
	names := maps.Keys(r.Counters)
	slices.Sort(names)
	for _, name := range names {
		l.Debug("counter",
			zap.String("run_id", r.ID.String()),
			zap.String("name", name),
			zap.Uint64("value", r.Counters[name]),
		)
	}
}
