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
	"github.com/gastonlogic/gaston/symbol"
	"github.com/gastonlogic/gaston/term"
)

// Binary is an intersection or union node. Results are Product terms
// over the children's results; epsilon values combine with AND/OR.
type Binary struct {
	env     *Env
	ws      *term.Workshop
	results resultCaches

	kind        term.ProductKind
	left, right Node
	tracks      []int
}

// NewIntersection builds the conjunction of two subtrees.
func NewIntersection(env *Env, left, right Node) *Binary {
	return newBinary(env, term.Intersection, left, right)
}

// NewUnion builds the disjunction of two subtrees.
func NewUnion(env *Env, left, right Node) *Binary {
	return newBinary(env, term.Union, left, right)
}

func newBinary(env *Env, kind term.ProductKind, left, right Node) *Binary {
	return &Binary{
		env:     env,
		ws:      env.workshop(),
		results: env.caches(),
		kind:    kind,
		left:    left,
		right:   right,
		tracks:  mergeTracks(left.Tracks(), right.Tracks()),
	}
}

// InitialTerm pairs the children's starting approximations.
func (n *Binary) InitialTerm() *term.Term {
	return n.ws.CreateProduct(n.left.InitialTerm(), n.right.InitialTerm(), n.kind)
}

// Tracks returns the union of the children's tracks.
func (n *Binary) Tracks() []int { return n.tracks }

// IntersectNonEmpty dispatches to both children and pairs the
// results. Under a non-membership query the value combination
// De-Morganises: an intersection combines with OR, a union with AND.
// When continuations are enabled and the left child already decides
// the combined value, the right child's work is deferred behind a
// continuation instead of being computed.
func (n *Binary) IntersectNonEmpty(s *symbol.Symbol, t *term.Term, underComplement bool) (*term.Term, bool) {
	if t.Tag() == term.TagContinuation {
		t, _ = t.Unfold()
	}
	cache := n.results.forQuery(underComplement)
	if r, v, ok := cache.Lookup(t, s); ok {
		return r, v
	}

	lt, rt := t, t
	if t.Tag() == term.TagProduct {
		lt, rt = t.Left(), t.Right()
	}

	lr, lv := n.left.IntersectNonEmpty(s, lt, underComplement)

	isAnd := (n.kind == term.Intersection) != underComplement
	decided := lv != isAnd // false decides AND, true decides OR

	var rr *term.Term
	var value bool
	if n.env.UseContinuations && decided {
		rr = n.ws.CreateContinuation(n.right, rt, s, underComplement)
		value = lv
	} else {
		var rv bool
		rr, rv = n.right.IntersectNonEmpty(s, rt, underComplement)
		if isAnd {
			value = lv && rv
		} else {
			value = lv || rv
		}
	}

	r := n.ws.CreateProduct(lr, rr, n.kind)
	cache.Store(t, s, r, value)
	return r, value
}
