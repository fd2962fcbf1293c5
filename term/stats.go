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

// VariantStats counts per-variant instance creation and the
// comparison outcomes observed for that variant.
type VariantStats struct {
	Instances       uint64
	SamePointer     uint64
	DifferentType   uint64
	StructuralTrue  uint64
	StructuralFalse uint64
	Pruned          uint64
}

// Stats collects the measurement counters of one decision run. One
// instance is shared by every workshop and cache of the run, so
// concurrent runs stay independent.
type Stats struct {
	variants [numTags]VariantStats

	// subsumption memo outcomes
	SubsumptionHits   uint64
	SubsumptionMisses uint64
	SubsumedByHits    uint64

	// continuation unfolding
	Unfoldings          uint64
	UnfoldInSubsumption uint64
	UnfoldInIntersect   uint64

	// postponed work items
	PostponedAdmitted  uint64
	PostponedProcessed uint64

	// result cache
	ResultHits   uint64
	ResultMisses uint64

	// fixpoint bookkeeping
	PreInstances uint64
	NotShared    uint64
}

func (s *Stats) variant(t Tag) *VariantStats {
	return &s.variants[t]
}

// Variant returns the counters for one term variant.
func (s *Stats) Variant(t Tag) VariantStats {
	return s.variants[t]
}

// Report invokes fn once per counter with a stable metric name. The
// engine never formats its own statistics; callers decide how to
// render them.
func (s *Stats) Report(fn func(name string, value uint64)) {
	for tag := Tag(0); tag < numTags; tag++ {
		v := &s.variants[tag]
		fn(tag.String()+".instances", v.Instances)
		fn(tag.String()+".cmp.same_pointer", v.SamePointer)
		fn(tag.String()+".cmp.different_type", v.DifferentType)
		fn(tag.String()+".cmp.structural_true", v.StructuralTrue)
		fn(tag.String()+".cmp.structural_false", v.StructuralFalse)
		fn(tag.String()+".pruned", v.Pruned)
	}
	fn("subsumption.hits", s.SubsumptionHits)
	fn("subsumption.misses", s.SubsumptionMisses)
	fn("subsumption.subsumed_by_hits", s.SubsumedByHits)
	fn("continuation.unfoldings", s.Unfoldings)
	fn("continuation.unfold_in_subsumption", s.UnfoldInSubsumption)
	fn("continuation.unfold_in_intersect", s.UnfoldInIntersect)
	fn("postponed.admitted", s.PostponedAdmitted)
	fn("postponed.processed", s.PostponedProcessed)
	fn("results.hits", s.ResultHits)
	fn("results.misses", s.ResultMisses)
	fn("fixpoint.pre_instances", s.PreInstances)
	fn("fixpoint.not_shared", s.NotShared)
}
