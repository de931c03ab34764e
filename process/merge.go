package process

import (
	"sort"

	"github.com/Weeks-UNC/shapemapper2-core/align"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// mergeMates implements spec.md §4.2 step 1: produce a union read spanning
// both mates, filling single-coverage regions directly and resolving
// overlapping mutation groups by comparing each mate's group-mean quality
// (including a one-base flank), the way pileup/snp/qual.go scored
// conflicting pileup columns before its deletion (DESIGN.md).
func mergeMates(r1 *mutation.Read, ref1 *align.Ref, r2 *mutation.Read, ref2 *align.Ref) *prepared {
	left := r1.Left
	if r2.Left < left {
		left = r2.Left
	}
	right := r1.Right
	if r2.Right > right {
		right = r2.Right
	}
	n := int(right - left + 1)

	seq := make([]byte, n)
	qual := make([]byte, n)
	ref := make([]byte, n)
	for i := range seq {
		seq[i] = '_'
		qual[i] = '~'
		ref[i] = '-'
	}

	copyMate := func(m *mutation.Read, mref *align.Ref, lo, hi int32) {
		for p := lo; p <= hi; p++ {
			if p < m.Left || p > m.Right {
				continue
			}
			off := int(p - left)
			moff := int(p - m.Left)
			seq[off] = m.Seq[moff]
			qual[off] = m.Qual[moff]
			ref[off] = mref.At(p)
		}
	}

	overlapLo, overlapHi := maxI32(r1.Left, r2.Left), minI32(r1.Right, r2.Right)
	hasOverlap := overlapLo <= overlapHi

	// Copy each mate's full span; in the overlap r2's bases overwrite r1's.
	// Only the conflict groups below are re-filled from the winning mate.
	copyMate(r1, ref1, r1.Left, r1.Right)
	copyMate(r2, ref2, r2.Left, r2.Right)

	mutations := append(append([]mutation.Mutation{}, r1.Mutations...), r2.Mutations...)

	if hasOverlap {
		groups := conflictGroups(r1.Mutations, r2.Mutations, overlapLo, overlapHi)
		kept := mutations[:0]
		used := make([]bool, len(mutations))
		for _, g := range groups {
			mean1 := groupMean(r1, g.lo, g.hi)
			mean2 := groupMean(r2, g.lo, g.hi)
			var winner *mutation.Read
			var winnerRef *align.Ref
			if mean1 >= mean2 {
				winner, winnerRef = r1, ref1
			} else {
				winner, winnerRef = r2, ref2
			}
			copyMate(winner, winnerRef, g.lo, g.hi)
			for i := range mutations {
				if used[i] {
					continue
				}
				m := mutations[i]
				if m.Left+1 > g.hi || m.Right-1 < g.lo {
					continue // not part of this group
				}
				used[i] = true
				if belongsTo(m, winner) {
					kept = append(kept, m)
				}
			}
		}
		for i := range mutations {
			if !used[i] {
				kept = append(kept, mutations[i])
			}
		}
		mutations = kept
	}

	sort.Slice(mutations, func(i, j int) bool { return mutations[i].Left < mutations[j].Left })

	merged := &mutation.Read{
		ID:              r1.ID,
		ReadType:        mutation.Merged,
		Strand:          r1.Strand,
		MappingCategory: mutation.Included,
		PrimerPair:      r1.PrimerPair,
		Left:            left,
		Right:           right,
		Seq:             string(seq),
		Qual:            string(qual),
		Mutations:       mutations,
	}
	if merged.PrimerPair < 0 {
		merged.PrimerPair = r2.PrimerPair
	}
	return &prepared{read: merged, ref: ref}
}

func belongsTo(m mutation.Mutation, r *mutation.Read) bool {
	for _, rm := range r.Mutations {
		if rm.Left == m.Left && rm.Right == m.Right && rm.Seq == m.Seq {
			return true
		}
	}
	return false
}

type conflictGroup struct{ lo, hi int32 }

// conflictGroups clusters, by one-base-flank-extended overlap, every
// mutation from either mate that touches the overlapping span.
func conflictGroups(m1, m2 []mutation.Mutation, overlapLo, overlapHi int32) []conflictGroup {
	type span struct{ lo, hi int32 }
	var spans []span
	collect := func(ms []mutation.Mutation) {
		for _, m := range ms {
			lo, hi := m.Left+1-1, m.Right-1+1 // one-base flank on each side
			if hi < overlapLo || lo > overlapHi {
				continue
			}
			spans = append(spans, span{lo, hi})
		}
	}
	collect(m1)
	collect(m2)
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })
	var groups []conflictGroup
	cur := conflictGroup{spans[0].lo, spans[0].hi}
	for _, s := range spans[1:] {
		if s.lo <= cur.hi+1 {
			if s.hi > cur.hi {
				cur.hi = s.hi
			}
			continue
		}
		groups = append(groups, cur)
		cur = conflictGroup{s.lo, s.hi}
	}
	groups = append(groups, cur)
	return groups
}

// groupMean is the phred-arithmetic mean quality a mate contributes over
// [lo, hi], restricted to the portion of that range the mate actually
// covers.
func groupMean(r *mutation.Read, lo, hi int32) float64 {
	lo = maxI32(lo, r.Left)
	hi = minI32(hi, r.Right)
	if lo > hi {
		return -1 // this mate contributes nothing here; always loses
	}
	return phredMean(r.Qual[lo-r.Left : hi-r.Left+1])
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
