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

// SearchOrder selects the worklist discipline of a fixpoint.
type SearchOrder uint8

const (
	BFS SearchOrder = iota // append new work, pop oldest first
	DFS                    // prepend new work, pop newest first
)

// workItem is one pending automaton invocation.
type workItem struct {
	t   *Term
	sym *symbol.Symbol
}

// postponedItem is a computed result whose membership test came back
// indefinite; it is retried once the fixpoint has grown.
type postponedItem struct {
	t     *Term
	value bool
	from  workItem
}

// fixpointMember is one entry of the member list. The first entry is
// always the nil sentinel that iterators use as a stable starting
// anchor. Invalidated members stay in place; iterators skip them.
type fixpointMember struct {
	t     *Term
	valid bool
}

// fixpoint is the payload of a TagFixpoint term: a worklist-driven
// computation whose member set is discovered incrementally. Two
// semantics share the storage: seeded fixpoints close over their own
// symbol alphabet, pre fixpoints pull members from a source iterator
// and do not re-inject symbols.
type fixpoint struct {
	owner *Term
	aut   Automaton

	members   []fixpointMember
	worklist  []workItem
	postponed []postponedItem
	symbols   []*symbol.Symbol

	sourceTerm *Term
	sourceIter *Iterator

	subsumedBy *SubsumptionCache

	aggregateAnd bool // OR when testing membership, AND under complement
	bValue       bool
	search       SearchOrder

	iters   []*Iterator
	updated bool

	satTerm   *Term
	unsatTerm *Term
}

func (f *fixpoint) preSemantics() bool { return f.sourceTerm != nil }

func (f *fixpoint) push(it workItem) {
	if f.search == DFS {
		f.worklist = append([]workItem{it}, f.worklist...)
	} else {
		f.worklist = append(f.worklist, it)
	}
}

func (f *fixpoint) pop() workItem {
	if len(f.worklist) == 0 {
		panic("term: pop from empty fixpoint worklist")
	}
	it := f.worklist[0]
	f.worklist = f.worklist[1:]
	return it
}

// aggregate folds one epsilon-check result into the fixpoint value.
// The fold is monotone: OR only moves false→true, AND only true→false.
func (f *fixpoint) aggregate(v bool) {
	if f.aggregateAnd {
		f.bValue = f.bValue && v
	} else {
		f.bValue = f.bValue || v
	}
}

// advance performs one worklist step: pop an item, invoke the
// automaton, test the result against the current members, and admit
// it if nothing subsumes it. Indefinite membership tests defer the
// result to the postponed queue.
func (f *fixpoint) advance() {
	item := f.pop()
	r, v := f.aut.IntersectNonEmpty(item.sym, item.t, f.owner.nonMembership)
	switch r.isSubsumedByFixpoint(f) {
	case Subsumed:
		return
	case Indefinite:
		f.postponed = append(f.postponed, postponedItem{r, v, item})
		f.owner.ws.stats.PostponedAdmitted++
		return
	}
	f.admit(r, v, item)
}

func (f *fixpoint) admit(r *Term, v bool, from workItem) {
	if from.t != nil {
		r.SetSuccessor(from.t, from.sym)
	}
	f.members = append(f.members, fixpointMember{r, true})
	f.owner.stateSpaceApprox += r.stateSpaceApprox
	f.aggregate(v)
	f.updated = true
	if v && f.satTerm == nil {
		f.satTerm = r
	}
	if !v && f.unsatTerm == nil {
		f.unsatTerm = r
	}
	if !f.preSemantics() {
		for _, s := range f.symbols {
			f.push(workItem{r, s})
		}
	}
}

// processOnePostponed retries the oldest postponed item. It reports
// whether it made progress; an item that is still indefinite goes to
// the back of the queue and counts as no progress, so callers stop
// instead of spinning.
func (f *fixpoint) processOnePostponed() bool {
	if len(f.postponed) == 0 {
		return false
	}
	p := f.postponed[0]
	f.postponed = f.postponed[1:]
	switch p.t.isSubsumedByFixpoint(f) {
	case Subsumed:
		f.owner.ws.stats.PostponedProcessed++
		return true
	case NotSubsumed:
		f.admit(p.t, p.value, p.from)
		f.owner.ws.stats.PostponedProcessed++
		return true
	}
	f.postponed = append(f.postponed, p)
	return false
}

// fullyComputed reports whether no further member can appear.
func (f *fixpoint) fullyComputed() bool {
	if len(f.worklist) != 0 || len(f.postponed) != 0 {
		return false
	}
	if f.preSemantics() {
		return f.sourceIter.done
	}
	return true
}

func (f *fixpoint) validCount() int {
	n := 0
	for _, m := range f.members {
		if m.t != nil && m.valid {
			n++
		}
	}
	return n
}

// invalidate marks member i invalid unless a live iterator currently
// points at it.
func (f *fixpoint) invalidate(i int) {
	for _, it := range f.iters {
		if !it.done && it.pos == i {
			return
		}
	}
	f.members[i].valid = false
}

func (f *fixpoint) removeIter(it *Iterator) {
	for i, cur := range f.iters {
		if cur == it {
			f.iters = append(f.iters[:i], f.iters[i+1:]...)
			return
		}
	}
}

// TestAndSetUpdate returns whether the fixpoint grew since the last
// call, clearing the flag. Delayed uniquing uses this handshake.
func (f *fixpoint) TestAndSetUpdate() bool {
	u := f.updated
	f.updated = false
	return u
}

// Result returns the aggregated epsilon-check value of a fixpoint
// term at its current state of computation.
func (t *Term) Result() bool {
	return t.mustFix("Result").bValue
}

// IsFullyComputed reports whether the fixpoint cannot grow further.
func (t *Term) IsFullyComputed() bool {
	return t.mustFix("IsFullyComputed").fullyComputed()
}

// HasEmptyWorklist reports whether no immediate work is pending.
func (t *Term) HasEmptyWorklist() bool {
	return len(t.mustFix("HasEmptyWorklist").worklist) == 0
}

// IsShared reports whether more than one live iterator walks this
// fixpoint.
func (t *Term) IsShared() bool {
	f := t.mustFix("IsShared")
	if len(f.iters) <= 1 {
		t.ws.stats.NotShared++
		return false
	}
	return true
}

// TestAndSetUpdate exposes the growth handshake of the fixpoint.
func (t *Term) TestAndSetUpdate() bool {
	return t.mustFix("TestAndSetUpdate").TestAndSetUpdate()
}

// Members returns the currently valid member terms, excluding the
// sentinel anchor.
func (t *Term) Members() []*Term {
	f := t.mustFix("Members")
	out := make([]*Term, 0, len(f.members))
	for _, m := range f.members {
		if m.t != nil && m.valid {
			out = append(out, m.t)
		}
	}
	return out
}

// FixpointExamples returns the first satisfying and first
// unsatisfying member admitted so far, for example reconstruction.
func (t *Term) FixpointExamples() (sat, unsat *Term) {
	f := t.mustFix("FixpointExamples")
	return f.satTerm, f.unsatTerm
}

// RemoveSubsumed is the periodic maintenance pass: any member
// subsumed by another is flagged invalid. The aggregated value is
// unaffected (the aggregator is monotone) and members under a live
// iterator cursor are left alone.
func (t *Term) RemoveSubsumed() {
	f := t.mustFix("RemoveSubsumed")
	for i := range f.members {
		if f.members[i].t == nil || !f.members[i].valid {
			continue
		}
		for j := range f.members {
			if i == j || f.members[j].t == nil || !f.members[j].valid {
				continue
			}
			if f.members[i].t.IsSubsumed(f.members[j].t) == Subsumed {
				f.invalidate(i)
				t.ws.stats.variant(f.members[i].t.tag).Pruned++
				break
			}
		}
	}
}

func (t *Term) mustFix(op string) *fixpoint {
	if t.tag != TagFixpoint {
		panic("term: " + op + " on " + t.tag.String() + " term")
	}
	return t.fix
}

// Iterator walks a fixpoint's member list in append order, driving
// the computation forward whenever it reaches the end and work
// remains. Iterators are live resources: the fixpoint counts them
// and keeps its member list append-only while any are outstanding.
type Iterator struct {
	f    *fixpoint
	pos  int // index into members; 0 is the sentinel anchor
	done bool
}

// NewIterator returns a fresh iterator anchored at the sentinel.
func (t *Term) NewIterator() *Iterator {
	f := t.mustFix("NewIterator")
	it := &Iterator{f: f}
	f.iters = append(f.iters, it)
	return it
}

// Next returns the next valid member, or nil when the computation is
// exhausted. Invalidated members are skipped silently. When the
// cursor reaches the end of the member list, Next runs advance steps
// (or pulls from the source, for pre semantics) until a member
// appears or no work can make progress. Postponed items are retried
// one at a time; when a retry is still indefinite, the iterator ends
// and the remaining postponed items stay queued.
func (it *Iterator) Next() *Term {
	f := it.f
	for {
		if it.done {
			return nil
		}
		if it.pos+1 < len(f.members) {
			it.pos++
			m := f.members[it.pos]
			if m.t == nil || !m.valid {
				continue
			}
			return m.t
		}
		if !f.preSemantics() {
			if len(f.worklist) > 0 {
				f.advance()
				continue
			}
			if len(f.postponed) > 0 && f.processOnePostponed() {
				continue
			}
			it.invalidate()
			return nil
		}
		// pre semantics: refill from the source before giving up
		if len(f.worklist) > 0 {
			f.advance()
			continue
		}
		if src := f.sourceIter.Next(); src != nil {
			for _, s := range f.symbols {
				f.push(workItem{src, s})
			}
			continue
		}
		if len(f.postponed) > 0 && f.processOnePostponed() {
			continue
		}
		it.invalidate()
		return nil
	}
}

// Done reports whether the iterator has been exhausted.
func (it *Iterator) Done() bool { return it.done }

func (it *Iterator) invalidate() {
	it.done = true
	it.f.removeIter(it)
}
