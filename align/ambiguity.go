package align

import "github.com/Weeks-UNC/shapemapper2-core/mutation"

// ResolveAmbiguity slides every simple insert and simple gap in read.Mutations
// across repeated reference bases, per spec.md §4.1: a slide is valid when it
// stays within the local reference, doesn't cross another mutation's
// footprint, and the reference base leaving the event equals the one
// entering it. Each valid slide grows the event's bounds and appends the
// picked-up base to its replacement sequence, which is what makes
// Mutation.IsAmbiguous subsequently report true for it. Mismatches that end
// up inside a resolved event's widened span are dropped, since the event now
// accounts for that position.
func ResolveAmbiguity(ref *Ref, read *mutation.Read) {
	muts := read.Mutations
	resolved := make([]bool, len(muts))
	for i := range muts {
		m := &muts[i]
		if !m.IsSimpleGap() && !m.IsSimpleInsert() {
			continue
		}
		if m.IsSimpleGap() && m.RefSpanLen() == 0 {
			continue // not actually an indel (shouldn't occur, defensive)
		}
		var newLeft, newRight int32
		var newSeq string
		var slid bool
		if m.IsSimpleGap() {
			newLeft, newRight, newSeq, slid = slideGap(ref, muts, i, m.Left, m.Right)
		} else {
			newLeft, newRight, newSeq, slid = slideInsert(ref, muts, i, m.Left, m.Right, m.Seq)
		}
		if slid {
			m.Left, m.Right, m.Seq = newLeft, newRight, newSeq
			m.Ambig = true
			resolved[i] = true
		}
	}

	if !anyTrue(resolved) {
		return
	}
	out := muts[:0]
	for i, m := range muts {
		if resolved[i] {
			out = append(out, m)
			continue
		}
		if m.RefSpanLen() == 1 && len(m.Seq) == 1 && swallowedByResolved(muts, resolved, m) {
			continue // mismatch absorbed into a resolved indel's widened span
		}
		out = append(out, m)
	}
	read.Mutations = out
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

func swallowedByResolved(muts []mutation.Mutation, resolved []bool, m mutation.Mutation) bool {
	for i, other := range muts {
		if !resolved[i] {
			continue
		}
		if m.Left > other.Left && m.Right < other.Right {
			return true
		}
	}
	return false
}

// blocked reports whether pos already belongs to another mutation's
// footprint, i.e. sliding across it would silently merge two independent
// events instead of widening one.
func blocked(muts []mutation.Mutation, self int, pos int32) bool {
	for i, other := range muts {
		if i == self {
			continue
		}
		if other.IsSimpleInsert() {
			if pos == other.Left || pos == other.Right {
				return true
			}
			continue
		}
		if pos > other.Left && pos < other.Right {
			return true
		}
	}
	return false
}

func slideGap(ref *Ref, muts []mutation.Mutation, self int, left, right int32) (int32, int32, string, bool) {
	curStart, curEnd := left+1, right-1

	var rightAdds []byte
	for {
		newEnd := curEnd + 1
		if newEnd > ref.Right || blocked(muts, self, newEnd) {
			break
		}
		if ref.At(curStart) != ref.At(newEnd) {
			break
		}
		rightAdds = append(rightAdds, ref.At(newEnd))
		curStart++
		curEnd = newEnd
	}

	curStart, curEnd = left+1, right-1
	var leftAdds []byte
	for {
		newStart := curStart - 1
		if newStart < ref.Left || blocked(muts, self, newStart) {
			break
		}
		if ref.At(curEnd) != ref.At(newStart) {
			break
		}
		leftAdds = append([]byte{ref.At(newStart)}, leftAdds...)
		curEnd--
		curStart = newStart
	}

	if len(leftAdds) == 0 && len(rightAdds) == 0 {
		return left, right, "", false
	}
	newLeft := left - int32(len(leftAdds))
	newRight := right + int32(len(rightAdds))
	seq := string(leftAdds) + string(rightAdds)
	return newLeft, newRight, seq, true
}

func slideInsert(ref *Ref, muts []mutation.Mutation, self int, left, right int32, seq string) (int32, int32, string, bool) {
	cur := []byte(seq)
	newLeft, newRight := left, right

	for {
		if newRight > ref.Right || blocked(muts, self, newRight) {
			break
		}
		flank := ref.At(newRight)
		if flank == 0 || cur[len(cur)-1] != flank {
			break
		}
		cur = append(cur, flank)
		newRight++
	}
	for {
		if newLeft < ref.Left || blocked(muts, self, newLeft) {
			break
		}
		flank := ref.At(newLeft)
		if flank == 0 || cur[0] != flank {
			break
		}
		cur = append([]byte{flank}, cur...)
		newLeft--
	}

	if newLeft == left && newRight == right {
		return left, right, seq, false
	}
	return newLeft, newRight, string(cur), true
}
