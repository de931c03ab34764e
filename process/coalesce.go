package process

import (
	"sort"
	"strings"

	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// coalesce implements spec.md §4.2 step 4: adjacent mutations separated by
// at most maxInternalMatch unchanged reference bases are merged into one,
// except across a mate-pair gap or when either side is an N-bearing
// pseudo-mutation. Each merged (or otherwise unchanged) mutation then has
// matching bases iteratively stripped from both ends, since a shift or
// merge can leave spurious equal flanks.
func coalesce(p *prepared, maxInternalMatch int32) {
	r := p.read
	if len(r.Mutations) == 0 {
		return
	}
	sort.Slice(r.Mutations, func(i, j int) bool { return r.Mutations[i].Left < r.Mutations[j].Left })

	merged := []mutation.Mutation{r.Mutations[0]}
	for _, next := range r.Mutations[1:] {
		cur := &merged[len(merged)-1]
		gap := next.Left - cur.Right + 1
		if gap < 0 {
			gap = 0
		}
		if gap <= maxInternalMatch && canCoalesce(r, *cur, next) {
			between := betweenSlice(r, cur.Right, next.Left)
			cur.Seq = cur.Seq + between.seq + next.Seq
			cur.Qual = cur.Qual + between.qual + next.Qual
			cur.Right = next.Right
			cur.Ambig = cur.Ambig || next.Ambig
			continue
		}
		merged = append(merged, next)
	}

	for i := range merged {
		stripFlanks(p, &merged[i])
	}
	r.Mutations = merged
}

func canCoalesce(r *mutation.Read, a, b mutation.Mutation) bool {
	if strings.ContainsRune(a.Seq, 'N') || strings.ContainsRune(b.Seq, 'N') {
		return false
	}
	for p := a.Right; p <= b.Left; p++ {
		off := p - r.Left
		if off < 0 || int(off) >= len(r.Seq) {
			continue
		}
		if r.Seq[off] == '_' {
			return false
		}
	}
	return true
}

type betweenBases struct{ seq, qual string }

// betweenSlice returns the read's own aligned bases strictly between two
// merge candidates, i.e. the stretch of ordinary matched reference
// positions absorbed into the combined mutation.
func betweenSlice(r *mutation.Read, right, left int32) betweenBases {
	lo, hi := right, left
	if lo > hi {
		return betweenBases{}
	}
	from := int(lo - r.Left)
	to := int(hi - r.Left + 1)
	if from < 0 {
		from = 0
	}
	if to > len(r.Seq) {
		to = len(r.Seq)
	}
	if from >= to {
		return betweenBases{}
	}
	return betweenBases{seq: r.Seq[from:to], qual: r.Qual[from:to]}
}

// stripFlanks removes matching bases from both ends of m's replacement
// sequence against the local reference, shrinking its span accordingly.
func stripFlanks(p *prepared, m *mutation.Mutation) {
	readLeft := p.read.Left
	for len(m.Seq) > 0 {
		pos := m.Left + 1
		if pos < readLeft || int(pos-readLeft) >= len(p.ref) {
			break
		}
		if p.ref[pos-readLeft] != m.Seq[0] {
			break
		}
		m.Left++
		m.Seq = m.Seq[1:]
		if len(m.Qual) > 0 {
			m.Qual = m.Qual[1:]
		}
	}
	for len(m.Seq) > 0 {
		pos := m.Right - 1
		if pos < readLeft || int(pos-readLeft) >= len(p.ref) {
			break
		}
		if p.ref[pos-readLeft] != m.Seq[len(m.Seq)-1] {
			break
		}
		m.Right--
		m.Seq = m.Seq[:len(m.Seq)-1]
		if len(m.Qual) > 0 {
			m.Qual = m.Qual[:len(m.Qual)-1]
		}
	}
}
