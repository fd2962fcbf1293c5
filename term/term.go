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

// Package term implements the lazy term representations of
// macro-state sets that the decision procedure computes with, the
// hash-consing workshop that mints them, the subsumption relation
// that prunes them, and the fixpoint terms whose contents are
// discovered incrementally by worklist iteration.
//
// Terms form a DAG with structural sharing: every term is minted by
// a Workshop and canonical within it, so pointer equality implies
// semantic equality for all variants except continuations (which are
// canonical per enclosed computation, not per denoted set).
package term

import (
	"fmt"
	"strings"

	"github.com/gastonlogic/gaston/symbol"
)

// Tag discriminates the term variants.
type Tag uint8

const (
	TagEmpty Tag = iota
	TagProduct
	TagBaseSet
	TagList
	TagFixpoint
	TagContinuation
	numTags
)

func (t Tag) String() string {
	switch t {
	case TagEmpty:
		return "empty"
	case TagProduct:
		return "product"
	case TagBaseSet:
		return "base"
	case TagList:
		return "list"
	case TagFixpoint:
		return "fixpoint"
	case TagContinuation:
		return "continuation"
	}
	return "unknown"
}

// ProductKind distinguishes intersection from union products.
type ProductKind uint8

const (
	Intersection ProductKind = iota
	Union
)

func (k ProductKind) String() string {
	if k == Intersection {
		return "⊓"
	}
	return "⊔"
}

// Automaton is the single operation the engine invokes on the
// symbolic-automaton tree. The returned term is the image of t under
// the symbol at this node, and the boolean is the epsilon-check
// result of the step.
//
// Implementations must mint all returned terms through a Workshop.
type Automaton interface {
	IntersectNonEmpty(s *symbol.Symbol, t *Term, underComplement bool) (*Term, bool)
}

// continuation is the payload of a TagContinuation term: a deferred
// IntersectNonEmpty call plus its single-assignment unfolding slot.
type continuation struct {
	aut             Automaton
	term            *Term
	symbol          *symbol.Symbol
	underComplement bool

	unfolded      *Term // set at most once, never cleared
	unfoldedValue bool
}

// Term is a tagged union over the six variants. Only the payload
// fields of the variant selected by tag are meaningful. All terms
// are minted by a Workshop; the zero Term is not valid.
type Term struct {
	tag Tag
	ws  *Workshop

	stateSpace       uint32 // exact size, 0 if unknown
	stateSpaceApprox uint32 // upper-bound estimate, grows monotonically
	inComplement     bool
	nonMembership    bool

	// subsumedBy memoizes definite IsSubsumed answers against other
	// terms; indefinite answers are never stored.
	subsumedBy map[*Term]SubsumptionResult

	// compl is the complement twin: same payload, flipped flag.
	// Allocated lazily, at most once.
	compl *Term

	// successor link, recorded as a by-product for example
	// reconstruction
	succ    *Term
	succSym *symbol.Symbol

	// TagBaseSet
	states []uint32
	mask   bitmap

	// TagProduct
	left, right *Term
	kind        ProductKind

	// TagList
	items []*Term

	// TagContinuation
	cont *continuation

	// TagFixpoint
	fix *fixpoint
}

// Tag returns the variant discriminant.
func (t *Term) Tag() Tag { return t.tag }

// InComplement reports whether this occurrence denotes the
// complement of the represented set.
func (t *Term) InComplement() bool { return t.inComplement }

// Complement returns the occurrence of t with the complement flag
// toggled. No structural work happens: the twin shares t's payload
// and is cached, so complementing twice yields t itself and both
// calls are O(1). Subsumption interprets the flag explicitly.
func (t *Term) Complement() *Term {
	if t.compl == nil {
		c := new(Term)
		*c = *t
		c.inComplement = !t.inComplement
		c.subsumedBy = make(map[*Term]SubsumptionResult)
		c.compl = t
		t.compl = c
	}
	return t.compl
}

// StateSpaceApprox returns the cheap upper-bound estimate of the
// term's state space. It never decreases after construction.
func (t *Term) StateSpaceApprox() uint32 { return t.stateSpaceApprox }

// States returns the sorted base states of a TagBaseSet term.
func (t *Term) States() []uint32 {
	if t.tag != TagBaseSet {
		panic("term: States on " + t.tag.String() + " term")
	}
	return t.states
}

// Left returns the left child of a TagProduct term.
func (t *Term) Left() *Term {
	if t.tag != TagProduct {
		panic("term: Left on " + t.tag.String() + " term")
	}
	return t.left
}

// Right returns the right child of a TagProduct term.
func (t *Term) Right() *Term {
	if t.tag != TagProduct {
		panic("term: Right on " + t.tag.String() + " term")
	}
	return t.right
}

// Kind returns the product kind of a TagProduct term.
func (t *Term) Kind() ProductKind {
	if t.tag != TagProduct {
		panic("term: Kind on " + t.tag.String() + " term")
	}
	return t.kind
}

// Items returns the children of a TagList term.
func (t *Term) Items() []*Term {
	if t.tag != TagList {
		panic("term: Items on " + t.tag.String() + " term")
	}
	return t.items
}

// SetSuccessor records the (term, symbol) step that produced t, for
// later example reconstruction.
func (t *Term) SetSuccessor(succ *Term, s *symbol.Symbol) {
	t.succ = succ
	t.succSym = s
}

// Successor returns the recorded predecessor link, if any.
func (t *Term) Successor() (*Term, *symbol.Symbol) { return t.succ, t.succSym }

// IsEmpty reports semantic emptiness of the represented set
// (ignoring the complement flag). Continuations are never empty
// until forced; fixpoints are empty once no work remains and every
// admitted member is empty.
func (t *Term) IsEmpty() bool {
	switch t.tag {
	case TagEmpty:
		return true
	case TagProduct:
		return t.left.IsEmpty() && t.right.IsEmpty()
	case TagBaseSet:
		return len(t.states) == 0
	case TagList:
		for _, it := range t.items {
			if !it.IsEmpty() {
				return false
			}
		}
		return true
	case TagContinuation:
		// pessimistic until forced
		return false
	case TagFixpoint:
		if len(t.fix.worklist) != 0 {
			return false
		}
		for _, m := range t.fix.members {
			if m.t != nil && m.valid && !m.t.IsEmpty() {
				return false
			}
		}
		return true
	}
	panic("term: IsEmpty on invalid term")
}

// MeasureStateSpace returns the exact state-space measure of the
// term. The result is memoized for variants whose content is final;
// fixpoints are remeasured since their content grows.
func (t *Term) MeasureStateSpace() uint32 {
	if t.stateSpace != 0 {
		return t.stateSpace
	}
	n := t.measureCore()
	if t.tag != TagFixpoint {
		t.stateSpace = n
	}
	return n
}

func (t *Term) measureCore() uint32 {
	switch t.tag {
	case TagEmpty:
		return 0
	case TagProduct:
		return t.left.MeasureStateSpace() + t.right.MeasureStateSpace() + 1
	case TagBaseSet:
		return uint32(len(t.states))
	case TagContinuation:
		return 1
	case TagList:
		var n uint32 = 1
		for _, it := range t.items {
			n += it.MeasureStateSpace()
		}
		return n
	case TagFixpoint:
		var n uint32 = 1
		for _, m := range t.fix.members {
			if m.t != nil {
				n += m.t.MeasureStateSpace()
			}
		}
		return n
	}
	panic("term: measure of invalid term")
}

// Equals reports structural equality of two terms. Identity
// short-circuits to true and differing tags to false; otherwise the
// comparison is variant-specific. Products compare the child with
// the smaller state-space estimate first so that mismatches fail
// fast.
func (t *Term) Equals(o *Term) bool {
	if t == o {
		t.ws.stats.variant(t.tag).SamePointer++
		return true
	}
	if o == nil {
		return false
	}
	if t.tag != o.tag {
		t.ws.stats.variant(t.tag).DifferentType++
		return false
	}
	eq := t.eqCore(o)
	if eq {
		t.ws.stats.variant(t.tag).StructuralTrue++
	} else {
		t.ws.stats.variant(t.tag).StructuralFalse++
	}
	return eq
}

func (t *Term) eqCore(o *Term) bool {
	switch t.tag {
	case TagEmpty:
		return true
	case TagProduct:
		if t.kind != o.kind {
			return false
		}
		if t.left.stateSpaceApprox < t.right.stateSpaceApprox {
			return t.left.Equals(o.left) && t.right.Equals(o.right)
		}
		return t.right.Equals(o.right) && t.left.Equals(o.left)
	case TagBaseSet:
		// canonical instances never coincide structurally without
		// coinciding by pointer
		if len(t.states) != len(o.states) {
			return false
		}
		for i := range t.states {
			if t.states[i] != o.states[i] {
				return false
			}
		}
		return true
	case TagList:
		// lists are built by prepending canonicalised heads, so
		// structurally equal lists agree on order
		if len(t.items) != len(o.items) {
			return false
		}
		for i := range t.items {
			if !t.items[i].Equals(o.items[i]) {
				return false
			}
		}
		return true
	case TagContinuation:
		return t.cont.term == o.cont.term && t.cont.symbol == o.cont.symbol
	case TagFixpoint:
		return t.fixpointEq(o)
	}
	panic("term: equality on invalid term")
}

// fixpointEq compares fixpoint contents set-wise over the currently
// valid members.
func (t *Term) fixpointEq(o *Term) bool {
	if t.fix.validCount() != o.fix.validCount() {
		return false
	}
	for _, m := range t.fix.members {
		if m.t == nil || !m.valid {
			continue
		}
		found := false
		for _, om := range o.fix.members {
			if om.t == nil || !om.valid {
				continue
			}
			if m.t.Equals(om.t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// String renders the term tree for diagnostics.
func (t *Term) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t *Term) writeTo(sb *strings.Builder) {
	if t.inComplement {
		sb.WriteByte('~')
	}
	switch t.tag {
	case TagEmpty:
		sb.WriteString("∅")
	case TagProduct:
		sb.WriteByte('{')
		t.left.writeTo(sb)
		sb.WriteByte(' ')
		sb.WriteString(t.kind.String())
		sb.WriteByte(' ')
		t.right.writeTo(sb)
		sb.WriteByte('}')
	case TagBaseSet:
		sb.WriteByte('{')
		for i, s := range t.states {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%d", s)
		}
		sb.WriteByte('}')
	case TagList:
		sb.WriteByte('[')
		for i, it := range t.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			it.writeTo(sb)
		}
		sb.WriteByte(']')
	case TagContinuation:
		sb.WriteByte('?')
		t.cont.term.writeTo(sb)
		sb.WriteByte('\'')
		sb.WriteString(t.cont.symbol.String())
		sb.WriteByte('\'')
		sb.WriteByte('?')
	case TagFixpoint:
		sb.WriteByte('{')
		first := true
		for _, m := range t.fix.members {
			if m.t == nil || !m.valid {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			m.t.writeTo(sb)
		}
		sb.WriteByte('}')
	}
}
