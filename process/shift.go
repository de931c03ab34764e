package process

// canonicalAmbigSeq recomputes an ambiguous gap's replacement sequence from
// the local reference, right-aligned when rightAlign is set and left-aligned
// otherwise. An ambiguous insert's seq already holds the read's bases over
// the whole widened span and is returned unchanged.
func canonicalAmbigSeq(ref []byte, readLeft int32, left, right int32, seq string, rightAlign bool) string {
	seqLen := len(seq)
	span := right - left - 1
	if span <= 0 || seqLen == 0 {
		return ""
	}
	var start int32
	if rightAlign {
		start = left + 1
	} else {
		start = right - int32(seqLen)
		if start < left+1 {
			start = left + 1
		}
	}
	// seqLen may exceed span (ambiguous insert): the region can be a tandem
	// repeat of several distinct bases, so keep the read's own sequence
	// rather than index past the window.
	if int32(seqLen) <= span {
		end := start + int32(seqLen)
		if end > right {
			end = right
		}
		return string(ref[start-readLeft : end-readLeft])
	}
	return seq
}

// applyAmbiguityShift implements spec.md §4.2 step 3 (skipped in variant
// mode by its caller). It recomputes each ambiguous gap's placement from
// the local reference rather than trusting whatever order alignment-stage
// sliding left Seq in, which makes the result independent of slide
// direction and idempotent under repeated application; an ambiguous insert
// keeps its Seq. A slide only needs equal flank bases
// (align.ResolveAmbiguity's flank-equality check) and stops at neighboring
// mutations, so the ambiguous region can be a tandem repeat of several
// distinct bases but holds no masked internal mismatch for this step to
// re-emit.
func applyAmbiguityShift(p *prepared, rightAlignDels, rightAlignIns bool) {
	r := p.read
	for i := range r.Mutations {
		m := &r.Mutations[i]
		if !m.Ambig {
			continue
		}
		rightAlign := rightAlignDels
		if m.IsSimpleInsert() || m.RefSpanLen() < int32(len(m.Seq)) {
			rightAlign = rightAlignIns
		}
		m.Seq = canonicalAmbigSeq(p.ref, r.Left, m.Left, m.Right, m.Seq, rightAlign)
	}
}
