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

// Complement negates its subtree: the membership query flips to a
// non-membership query below and the result term is marked
// complemented. No structural work happens on the term itself.
type Complement struct {
	env     *Env
	results resultCaches
	child   Node
}

// NewComplement wraps a subtree in negation.
func NewComplement(env *Env, child Node) *Complement {
	return &Complement{
		env:     env,
		results: env.caches(),
		child:   child,
	}
}

// InitialTerm passes the child's starting approximation through.
func (n *Complement) InitialTerm() *term.Term { return n.child.InitialTerm() }

// Tracks returns the child's tracks.
func (n *Complement) Tracks() []int { return n.child.Tracks() }

// IntersectNonEmpty queries the child with the query polarity
// flipped. The child already answers for the negated subformula, so
// the epsilon value passes through unchanged; only the term gets its
// complement marker toggled.
func (n *Complement) IntersectNonEmpty(s *symbol.Symbol, t *term.Term, underComplement bool) (*term.Term, bool) {
	cache := n.results.forQuery(underComplement)
	if r, v, ok := cache.Lookup(t, s); ok {
		return r, v
	}
	r, v := n.child.IntersectNonEmpty(s, t, !underComplement)
	r = r.Complement()
	cache.Store(t, s, r, v)
	return r, v
}
