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

// Projection existentially quantifies one track. Its results are
// fixpoint terms: the child result is closed under both letters of
// the projected track, modulo subsumption by members already found.
type Projection struct {
	env     *Env
	ws      *term.Workshop
	results resultCaches

	child  Node
	track  int
	tracks []int
}

// NewProjection builds ∃track below child.
func NewProjection(env *Env, child Node, track int) *Projection {
	return &Projection{
		env:     env,
		ws:      env.workshop(),
		results: env.caches(),
		child:   child,
		track:   track,
		tracks:  withoutTrack(child.Tracks(), track),
	}
}

// InitialTerm passes the child's starting approximation through.
func (n *Projection) InitialTerm() *term.Term { return n.child.InitialTerm() }

// Tracks returns the child's tracks minus the projected one.
func (n *Projection) Tracks() []int { return n.tracks }

// alphabet is the projected track's two instantiations of s.
func (n *Projection) alphabet(s *symbol.Symbol) []*symbol.Symbol {
	return []*symbol.Symbol{
		n.env.Syms.WithValue(s, n.track, symbol.Zero),
		n.env.Syms.WithValue(s, n.track, symbol.One),
	}
}

// IntersectNonEmpty builds a fixpoint term and drives it to
// exhaustion. On the zero symbol the fixpoint is seeded with the
// child's result and closes over the projected alphabet; on any
// other symbol the argument is an already computed fixpoint and a
// pre-semantics fixpoint pulls members out of it instead.
func (n *Projection) IntersectNonEmpty(s *symbol.Symbol, t *term.Term, underComplement bool) (*term.Term, bool) {
	if t.Tag() == term.TagContinuation {
		t, _ = t.Unfold()
	}
	cache := n.results.forQuery(underComplement)
	if r, v, ok := cache.Lookup(t, s); ok {
		return r, v
	}

	var fp *term.Term
	if t.Tag() == term.TagFixpoint && s != n.env.Syms.Zero() {
		fp = n.ws.CreateFixpointPre(n.child, t, n.alphabet(s), underComplement, n.env.Search)
	} else {
		projected := n.env.Syms.ProjectBy(s, n.track)
		seed, seedVal := n.child.IntersectNonEmpty(projected, t, underComplement)
		fp = n.ws.CreateFixpoint(n.child, seed, n.alphabet(projected), underComplement, seedVal, n.env.Search)
	}

	it := fp.NewIterator()
	for it.Next() != nil {
	}
	fp = n.ws.GetUniqueFixpoint(fp)
	v := fp.Result()
	cache.Store(t, s, fp, v)
	return fp, v
}
