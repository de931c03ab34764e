package process

import "github.com/Weeks-UNC/shapemapper2-core/mutation"

// qualityFilterAndAttribute implements spec.md §4.2 step 6: it builds Count
// from Depth, excluding low-quality non-mutation positions and low-quality
// or filtered-class mutations, then attributes each retained mutation to
// its adduct site.
func qualityFilterAndAttribute(p *prepared, cfg Config) {
	r := p.read
	n := int(r.Right - r.Left + 1)
	r.Count = mutation.NewBits(n)

	mutated := make([]bool, n)
	for _, m := range r.Mutations {
		markSpan(mutated, r.Left, m.Left+1, m.Right-1)
	}
	for i := 0; i < n; i++ {
		if !r.Depth[i] || mutated[i] {
			continue
		}
		if qualFails(r, i, cfg.MinQual) {
			r.Depth[i] = false
		}
	}

	kept := r.Mutations[:0]
	for _, m := range r.Mutations {
		if cfg.UseOnlyMutationType != "" && !classMatches(m.Tag, cfg.UseOnlyMutationType) {
			clearSpanAbs(r, m.Left+1, m.Right-1)
			continue
		}
		if mutationFailsQuality(r, m, cfg.MinQual) {
			clearSpanAbs(r, m.Left+1, m.Right-1)
			continue
		}
		kept = append(kept, m)
		attribute(r, m, cfg.VariantMode)
	}
	r.Mutations = kept
}

func markSpan(mutated []bool, readLeft, lo, hi int32) {
	for p := lo; p <= hi; p++ {
		i := int(p - readLeft)
		if i >= 0 && i < len(mutated) {
			mutated[i] = true
		}
	}
}

func qualFails(r *mutation.Read, i int, minQual byte) bool {
	check := func(q byte) bool { return q == '~' || phredOf(q) < int(minQual) }
	if check(r.Qual[i]) {
		return true
	}
	if i > 0 && check(r.Qual[i-1]) {
		return true
	}
	if i < len(r.Qual)-1 && check(r.Qual[i+1]) {
		return true
	}
	return false
}

func mutationFailsQuality(r *mutation.Read, m mutation.Mutation, minQual byte) bool {
	for i := 0; i < len(m.Qual); i++ {
		if phredOf(m.Qual[i]) < int(minQual) {
			return true
		}
	}
	check := func(pos int32) bool {
		if pos < r.Left || pos > r.Right {
			return false
		}
		q := r.Qual[pos-r.Left]
		return q == '~' || phredOf(q) < int(minQual)
	}
	return check(m.Left) || check(m.Right)
}

func clearSpanAbs(r *mutation.Read, lo, hi int32) {
	if lo > hi {
		return
	}
	from, to := int(lo-r.Left), int(hi-r.Left+1)
	r.Depth.ClearRange(from, to)
}

// attribute implements the site-attribution half of step 6: the count
// always lands on right-1, and in normal mode the interior of the span is
// excluded from effective depth while in variant mode it remains included.
func attribute(r *mutation.Read, m mutation.Mutation, variantMode bool) {
	if !variantMode {
		clearSpanAbs(r, m.Left+1, m.Right-2)
	}
	site := m.Right - 1
	if site < r.Left || site > r.Right {
		return
	}
	idx := int(site - r.Left)
	r.Depth.SetRange(idx, idx+1)
	if m.Tag != mutation.NMatch {
		r.Count[idx] = true
	}
}

func classMatches(tag mutation.Class, want string) bool {
	switch want {
	case "mismatch":
		switch tag {
		case mutation.MmAT, mutation.MmAG, mutation.MmAC, mutation.MmTA, mutation.MmTG, mutation.MmTC,
			mutation.MmGA, mutation.MmGT, mutation.MmGC, mutation.MmCA, mutation.MmCT, mutation.MmCG:
			return true
		}
	case "gap":
		switch tag {
		case mutation.DelA, mutation.DelT, mutation.DelG, mutation.DelC:
			return true
		}
	case "insert":
		switch tag {
		case mutation.InsA, mutation.InsT, mutation.InsG, mutation.InsC, mutation.InsN:
			return true
		}
	case "gap_multi":
		return tag == mutation.MultinucDeletion
	case "insert_multi":
		return tag == mutation.MultinucInsertion
	case "complex":
		switch tag {
		case mutation.ComplexDeletion, mutation.ComplexInsertion, mutation.MultinucMismatch:
			return true
		}
	}
	return false
}
