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

// Package automaton implements the symbolic-automaton tree that the
// term engine evaluates. The tree mirrors the Boolean structure of a
// formula: base automata at the leaves, intersection/union/complement
// nodes inside, and projection nodes that introduce fixpoint terms.
//
// Every node owns its own result cache, and every node that mints
// terms owns its own term workshop (complement nodes mint none); all
// nodes of one tree share the symbol workshop and the measurement
// counters of the decision run.
package automaton

import (
	"golang.org/x/exp/slices"

	"github.com/gastonlogic/gaston/symbol"
	"github.com/gastonlogic/gaston/term"
)

// Node is one vertex of the symbolic-automaton tree.
type Node interface {
	term.Automaton

	// InitialTerm builds the starting approximation for the backward
	// search rooted at this node.
	InitialTerm() *term.Term

	// Tracks returns the symbol tracks read below this node, sorted.
	Tracks() []int
}

// Env carries the per-run state shared by every node of one tree.
type Env struct {
	Stats *term.Stats
	Syms  *symbol.Workshop

	// Search selects the worklist discipline of fixpoints.
	Search term.SearchOrder
	// UseContinuations defers the right operand of binary nodes when
	// the left operand already decides the epsilon check.
	UseContinuations bool
	// Prune lets base-set membership tests shrink fixpoints.
	Prune bool
}

// NewEnv returns an environment for formulas over the given number
// of tracks.
func NewEnv(tracks int) *Env {
	return &Env{
		Stats: &term.Stats{},
		Syms:  symbol.NewWorkshop(tracks),
	}
}

func (e *Env) workshop() *term.Workshop {
	w := term.NewWorkshop(e.Stats)
	w.PruneFixpoints = e.Prune
	return w
}

// resultCaches is the per-node memo of IntersectNonEmpty results,
// one table per query polarity: the same node answers both the
// membership and the non-membership search of one decision run.
type resultCaches [2]*term.ResultCache

func (e *Env) caches() resultCaches {
	return resultCaches{term.NewResultCache(e.Stats), term.NewResultCache(e.Stats)}
}

func (c resultCaches) forQuery(underComplement bool) *term.ResultCache {
	if underComplement {
		return c[1]
	}
	return c[0]
}

func mergeTracks(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func withoutTrack(tracks []int, v int) []int {
	out := make([]int, 0, len(tracks))
	for _, t := range tracks {
		if t != v {
			out = append(out, t)
		}
	}
	return out
}
