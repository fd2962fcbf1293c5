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

package automaton

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/gastonlogic/gaston/symbol"
	"github.com/gastonlogic/gaston/term"
)

// Edge is one labelled transition of a base automaton. Don't-care
// tracks in the label match both letters.
type Edge struct {
	From  uint32
	Label *symbol.Symbol
	To    uint32
}

// Base is a leaf automaton representing an atomic predicate, with an
// explicit transition relation. The engine walks it backwards: the
// starting approximation is the final-state set and each step
// computes the pre-image under one symbol.
type Base struct {
	env     *Env
	ws      *term.Workshop
	results resultCaches

	tracks     []int
	stateCount uint32
	initial    []uint32
	final      []uint32
	edges      []Edge
}

// NewBase builds a base automaton. tracks lists the symbol tracks the
// predicate reads; edges outside the state range are rejected.
func NewBase(env *Env, tracks []int, stateCount uint32, initial, final []uint32, edges []Edge) (*Base, error) {
	for _, e := range edges {
		if e.From >= stateCount || e.To >= stateCount {
			return nil, fmt.Errorf("automaton: edge %d-%s->%d outside state range %d",
				e.From, e.Label, e.To, stateCount)
		}
	}
	for _, s := range initial {
		if s >= stateCount {
			return nil, fmt.Errorf("automaton: initial state %d outside state range %d", s, stateCount)
		}
	}
	for _, s := range final {
		if s >= stateCount {
			return nil, fmt.Errorf("automaton: final state %d outside state range %d", s, stateCount)
		}
	}
	sorted := make([]int, len(tracks))
	copy(sorted, tracks)
	slices.Sort(sorted)
	return &Base{
		env:        env,
		ws:         env.workshop(),
		results:    env.caches(),
		tracks:     slices.Compact(sorted),
		stateCount: stateCount,
		initial:    initial,
		final:      final,
		edges:      edges,
	}, nil
}

// InitialTerm returns the final-state set of the predicate.
func (b *Base) InitialTerm() *term.Term {
	if len(b.final) == 0 {
		return b.ws.CreateEmpty(false)
	}
	return b.ws.CreateBaseSet(b.final, b.stateCount)
}

// Tracks returns the tracks this predicate reads.
func (b *Base) Tracks() []int { return b.tracks }

// IntersectNonEmpty computes the pre-image of t under s, restricted
// to the tracks this predicate reads. The boolean is the epsilon
// check: whether the image touches the initial states, negated for a
// non-membership query.
func (b *Base) IntersectNonEmpty(s *symbol.Symbol, t *term.Term, underComplement bool) (*term.Term, bool) {
	if t.Tag() == term.TagContinuation {
		t, _ = t.Unfold()
	}
	cache := b.results.forQuery(underComplement)
	if r, v, ok := cache.Lookup(t, s); ok {
		return r, v
	}
	restricted := b.env.Syms.RestrictTo(s, b.tracks)

	var pre []uint32
	if t.Tag() == term.TagBaseSet {
		states := t.States()
		for _, e := range b.edges {
			if !e.Label.Matches(restricted) {
				continue
			}
			if _, ok := slices.BinarySearch(states, e.To); ok {
				pre = append(pre, e.From)
			}
		}
	}

	var r *term.Term
	if len(pre) == 0 {
		r = b.ws.CreateEmpty(false)
	} else {
		r = b.ws.CreateBaseSet(pre, b.stateCount)
	}
	accept := false
	if r.Tag() == term.TagBaseSet {
		for _, q := range b.initial {
			if _, ok := slices.BinarySearch(r.States(), q); ok {
				accept = true
				break
			}
		}
	}
	value := accept != underComplement
	cache.Store(t, s, r, value)
	return r, value
}
