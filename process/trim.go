package process

import "github.com/Weeks-UNC/shapemapper2-core/mutation"

// trimEnds implements spec.md §4.2 step 2. It establishes MappedDepth (the
// read's raw mapped footprint) and Depth (MappedDepth with primer or
// end-trimmed regions zeroed), and drops any mutation whose span falls
// entirely inside the trimmed-away region.
func trimEnds(p *prepared, cfg Config, primers []mutation.PrimerPair) {
	r := p.read
	n := int(r.Right - r.Left + 1)
	r.MappedDepth = mutation.NewBits(n)
	r.MappedDepth.SetAll()
	r.Depth = mutation.NewBits(n)
	r.Depth.SetAll()

	if cfg.TrimPrimers && r.PrimerPair >= 0 && r.PrimerPair < len(primers) {
		pp := primers[r.PrimerPair]
		zeroRange(r, pp.FwLeft, pp.FwRight)
		zeroRange(r, pp.RvLeft, pp.RvRight)
		return
	}
	if cfg.Exclude3Prime <= 0 {
		return
	}
	if r.Strand == mutation.Reverse {
		zeroRange(r, r.Left, r.Left+cfg.Exclude3Prime-1)
	} else {
		zeroRange(r, r.Right-cfg.Exclude3Prime+1, r.Right)
	}
}

// zeroRange clears Depth over the absolute reference range [lo, hi] and
// drops any mutation whose full span lies inside it.
func zeroRange(r *mutation.Read, lo, hi int32) {
	if hi < r.Left || lo > r.Right {
		return
	}
	from := int(maxI32(lo, r.Left) - r.Left)
	to := int(minI32(hi, r.Right) - r.Left + 1)
	r.Depth.ClearRange(from, to)

	kept := r.Mutations[:0]
	for _, m := range r.Mutations {
		if m.Left+1 >= lo && m.Right-1 <= hi && m.Left+1 <= m.Right-1 {
			continue // entirely inside the trimmed window
		}
		if m.IsSimpleInsert() && m.Right >= lo && m.Right <= hi {
			continue
		}
		kept = append(kept, m)
	}
	r.Mutations = kept
}
