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

package term

import (
	"github.com/gastonlogic/gaston/symbol"
)

// ResultCache memoizes IntersectNonEmpty results per automaton node,
// keyed by the (term, symbol) pair. Terms and symbols are interned,
// so the key compares by pointer.
type ResultCache struct {
	m     map[resultKey]resultValue
	stats *Stats
}

type resultKey struct {
	t *Term
	s *symbol.Symbol
}

type resultValue struct {
	t     *Term
	value bool
}

// NewResultCache returns an empty cache reporting into stats.
func NewResultCache(stats *Stats) *ResultCache {
	return &ResultCache{m: make(map[resultKey]resultValue), stats: stats}
}

// Lookup returns the cached result for (t, s), if present.
func (c *ResultCache) Lookup(t *Term, s *symbol.Symbol) (*Term, bool, bool) {
	v, ok := c.m[resultKey{t, s}]
	if ok {
		c.stats.ResultHits++
		return v.t, v.value, true
	}
	c.stats.ResultMisses++
	return nil, false, false
}

// Store records the result of evaluating (t, s).
func (c *ResultCache) Store(t *Term, s *symbol.Symbol, r *Term, value bool) {
	c.m[resultKey{t, s}] = resultValue{r, value}
}

// SubsumptionCache memoizes subsumption verdicts for term pairs.
// Indefinite verdicts must not be stored: they depend on fixpoint
// content that is still growing.
type SubsumptionCache struct {
	m     map[subsumptionKey]SubsumptionResult
	stats *Stats
}

type subsumptionKey struct {
	a, b *Term
}

// NewSubsumptionCache returns an empty cache reporting into stats.
func NewSubsumptionCache(stats *Stats) *SubsumptionCache {
	return &SubsumptionCache{m: make(map[subsumptionKey]SubsumptionResult), stats: stats}
}

// Lookup returns the cached verdict for a ⊑ b, if present.
func (c *SubsumptionCache) Lookup(a, b *Term) (SubsumptionResult, bool) {
	v, ok := c.m[subsumptionKey{a, b}]
	if ok {
		c.stats.SubsumedByHits++
	}
	return v, ok
}

// Store records a definite verdict for a ⊑ b.
func (c *SubsumptionCache) Store(a, b *Term, r SubsumptionResult) {
	if r == Indefinite {
		panic("term: caching an indefinite subsumption verdict")
	}
	c.m[subsumptionKey{a, b}] = r
}
