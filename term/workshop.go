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
	"encoding/binary"

	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"

	"github.com/gastonlogic/gaston/symbol"
)

const (
	baseHashK0 = 0x7465726d62617365
	baseHashK1 = 0x776f726b73686f70
)

// Workshop mints canonical terms. Each variant has its own keyed
// cache; creation calls with structurally equal keys return the same
// pointer. Workshops are created per automaton node and share the
// Stats of the decision run.
//
// Fixpoints are the exception: their identity depends on content
// computed incrementally, so they are minted fresh and uniqued after
// their first iteration stabilises (GetUniqueFixpoint).
type Workshop struct {
	stats *Stats

	// PruneFixpoints lets base-set membership tests shrink fixpoints
	// by invalidating members subsumed by the candidate.
	PruneFixpoints bool

	empty  *Term
	cEmpty *Term

	bases     map[uint64][]*Term
	products  map[productKey]*Term
	lists     map[listKey]*Term
	conts     map[contKey]*Term
	fixpoints []*Term
}

type productKey struct {
	left, right *Term
	kind        ProductKind
}

type listKey struct {
	head          *Term
	nonMembership bool
}

type contKey struct {
	term            *Term
	sym             *symbol.Symbol
	underComplement bool
}

// NewWorkshop returns a workshop reporting into stats.
func NewWorkshop(stats *Stats) *Workshop {
	w := &Workshop{
		stats:    stats,
		bases:    make(map[uint64][]*Term),
		products: make(map[productKey]*Term),
		lists:    make(map[listKey]*Term),
		conts:    make(map[contKey]*Term),
	}
	w.empty = w.newTerm(TagEmpty)
	w.cEmpty = w.empty.Complement()
	return w
}

// Stats returns the measurement counters of this run.
func (w *Workshop) Stats() *Stats { return w.stats }

func (w *Workshop) newTerm(tag Tag) *Term {
	w.stats.variant(tag).Instances++
	return &Term{
		tag:        tag,
		ws:         w,
		subsumedBy: make(map[*Term]SubsumptionResult),
	}
}

// CreateEmpty returns the unique empty term, or the unique
// complemented empty (the universe) when inComplement is set.
func (w *Workshop) CreateEmpty(inComplement bool) *Term {
	if inComplement {
		return w.cEmpty
	}
	return w.empty
}

// CreateBaseSet returns the canonical base-set term for the given
// states. The input need not be sorted or deduplicated; stateNo is
// the size of the base automaton's state space and bounds the
// bitmask sidecar.
func (w *Workshop) CreateBaseSet(states []uint32, stateNo uint32) *Term {
	sorted := make([]uint32, len(states))
	copy(sorted, states)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	buf := make([]byte, 4*len(sorted))
	for i, s := range sorted {
		binary.LittleEndian.PutUint32(buf[4*i:], s)
	}
	h := siphash.Hash(baseHashK0, baseHashK1, buf)
	for _, t := range w.bases[h] {
		if slices.Equal(t.states, sorted) {
			return t
		}
	}

	t := w.newTerm(TagBaseSet)
	t.states = sorted
	t.mask = makeBitmap(int(stateNo))
	for _, s := range sorted {
		t.mask.set(int(s))
	}
	t.stateSpace = uint32(len(sorted))
	t.stateSpaceApprox = t.stateSpace
	w.bases[h] = append(w.bases[h], t)
	return t
}

// CreateProduct returns the canonical product of two terms.
func (w *Workshop) CreateProduct(left, right *Term, kind ProductKind) *Term {
	key := productKey{left, right, kind}
	if t, ok := w.products[key]; ok {
		return t
	}
	t := w.newTerm(TagProduct)
	t.left = left
	t.right = right
	t.kind = kind
	if left.stateSpace != 0 && right.stateSpace != 0 {
		t.stateSpace = left.stateSpace + right.stateSpace + 1
	}
	t.stateSpaceApprox = left.stateSpaceApprox + right.stateSpaceApprox + 1
	w.products[key] = t
	return t
}

// CreateList returns the canonical single-item list holding first.
// Lists grow by prepending canonicalised heads, so the head is the
// cache key.
func (w *Workshop) CreateList(first *Term, nonMembership bool) *Term {
	key := listKey{first, nonMembership}
	if t, ok := w.lists[key]; ok {
		return t
	}
	t := w.newTerm(TagList)
	t.items = []*Term{first}
	t.nonMembership = nonMembership
	if first.stateSpace != 0 {
		t.stateSpace = first.stateSpace + 1
	}
	t.stateSpaceApprox = first.stateSpaceApprox + 1
	w.lists[key] = t
	return t
}

// CreateContinuation returns the canonical thunk for the deferred
// evaluation of aut.IntersectNonEmpty(s, enclosed, underComplement).
func (w *Workshop) CreateContinuation(aut Automaton, enclosed *Term, s *symbol.Symbol, underComplement bool) *Term {
	key := contKey{enclosed, s, underComplement}
	if t, ok := w.conts[key]; ok {
		return t
	}
	t := w.newTerm(TagContinuation)
	t.cont = &continuation{
		aut:             aut,
		term:            enclosed,
		symbol:          s,
		underComplement: underComplement,
	}
	t.nonMembership = underComplement
	t.stateSpace = 1
	t.stateSpaceApprox = 1
	w.conts[key] = t
	return t
}

// CreateFixpoint mints a fixpoint term seeded with a starting term
// and a symbol alphabet. The worklist is primed with the starting
// term under every symbol; the member list begins with the sentinel
// anchor followed by the starting term.
func (w *Workshop) CreateFixpoint(aut Automaton, start *Term, symbols []*symbol.Symbol, nonMembership, initValue bool, search SearchOrder) *Term {
	t := w.newTerm(TagFixpoint)
	t.nonMembership = nonMembership
	t.stateSpaceApprox = start.stateSpaceApprox + 1
	f := &fixpoint{
		owner:        t,
		aut:          aut,
		members:      []fixpointMember{{nil, true}, {start, true}},
		symbols:      symbols,
		aggregateAnd: nonMembership,
		bValue:       initValue,
		search:       search,
		subsumedBy:   NewSubsumptionCache(w.stats),
	}
	if initValue {
		f.satTerm = start
	} else {
		f.unsatTerm = start
	}
	for _, s := range symbols {
		f.push(workItem{start, s})
	}
	t.fix = f
	w.fixpoints = append(w.fixpoints, t)
	return t
}

// CreateFixpointPre mints a pre-semantics fixpoint over an already
// computed source fixpoint. Each time the worklist runs dry, the
// next member is pulled from the source iterator and expanded under
// every symbol.
func (w *Workshop) CreateFixpointPre(aut Automaton, source *Term, symbols []*symbol.Symbol, nonMembership bool, search SearchOrder) *Term {
	if source.tag != TagFixpoint {
		panic("term: pre fixpoint over " + source.tag.String() + " term")
	}
	w.stats.PreInstances++
	t := w.newTerm(TagFixpoint)
	t.nonMembership = nonMembership
	t.stateSpaceApprox = source.stateSpaceApprox + 1
	f := &fixpoint{
		owner:        t,
		aut:          aut,
		members:      []fixpointMember{{nil, true}},
		symbols:      symbols,
		sourceTerm:   source,
		sourceIter:   source.NewIterator(),
		aggregateAnd: nonMembership,
		bValue:       nonMembership,
		search:       search,
		subsumedBy:   NewSubsumptionCache(w.stats),
	}
	t.fix = f
	w.fixpoints = append(w.fixpoints, t)
	return t
}

// GetUniqueFixpoint merges a stabilised fixpoint with a structurally
// equal one minted earlier, if any. Uniquing is only attempted once
// the fixpoint's own worklist has drained; before that its identity
// is still being computed.
func (w *Workshop) GetUniqueFixpoint(t *Term) *Term {
	if t.tag != TagFixpoint {
		panic("term: GetUniqueFixpoint on " + t.tag.String() + " term")
	}
	if len(t.fix.worklist) != 0 || len(t.fix.postponed) != 0 {
		return t
	}
	t.fix.TestAndSetUpdate()
	// merge toward the earliest stabilised fixpoint with this content
	for _, c := range w.fixpoints {
		if c == t {
			break
		}
		if len(c.fix.worklist) != 0 || len(c.fix.postponed) != 0 {
			continue
		}
		if c.nonMembership == t.nonMembership && c.Equals(t) {
			return c
		}
	}
	return t
}
