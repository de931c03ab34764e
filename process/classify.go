package process

import (
	"fmt"

	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// classify implements spec.md §4.2 step 5, assigning each mutation's Tag
// from the reconstructed local reference via mutation.Classify. A mutation
// whose span indexes outside the reconstructed local reference is dropped
// rather than classified against an empty/truncated substitute, since a
// silently wrong refBases would misclassify it instead of merely failing
// to classify it; this condition is non-fatal to the read (spec.md §7), so
// it is only noted on cfg.DebugTrace when one is configured.
func classify(p *prepared, cfg Config) {
	readLeft := p.read.Left
	kept := p.read.Mutations[:0]
	for _, m := range p.read.Mutations {
		lo, hi := m.Left+1, m.Right-1
		var refBases string
		if lo <= hi {
			from, to := int(lo-readLeft), int(hi-readLeft+1)
			if from < 0 || to > len(p.ref) || from >= to {
				if cfg.DebugTrace != nil {
					err := ferrors.New(ferrors.OutOfRangeMutation,
						"mutation [%d,%d) outside local reference of length %d", lo, hi+1, len(p.ref))
					fmt.Fprintf(cfg.DebugTrace, "step=classify id=%s dropped=%v\n", p.read.ID, err)
				}
				continue
			}
			refBases = string(p.ref[from:to])
		}
		m.Tag = mutation.Classify(refBases, m.Seq)
		kept = append(kept, m)
	}
	p.read.Mutations = kept
}
