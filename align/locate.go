package align

import (
	"github.com/Weeks-UNC/shapemapper2-core/cigar"
	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
	"github.com/Weeks-UNC/shapemapper2-core/mdtag"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
	"github.com/Weeks-UNC/shapemapper2-core/record"
)

// Options controls Locate's handling of a raw record.
type Options struct {
	MinMapq       byte
	ResolveAmbig  bool
	PrimerLookup  func(refName string, left, right int32, reverse bool) int // -1 if none
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Locate runs the joint CIGAR/MD walk over one raw record and returns its
// mutation.Read (mapping category set, mutations populated when Included)
// and the reconstructed local reference (nil for unmapped reads).
func Locate(raw *record.Raw, opt Options) (*mutation.Read, *Ref, error) {
	readType := classifyReadType(raw)
	read := &mutation.Read{ID: raw.Name, ReadType: readType, PrimerPair: -1}
	if raw.Flags&record.Reverse != 0 {
		read.Strand = mutation.Reverse
	} else {
		read.Strand = mutation.Forward
	}

	if raw.IsUnmapped() {
		read.MappingCategory = mutation.Unmapped
		return read, nil, nil
	}
	if raw.MapQ < opt.MinMapq {
		read.MappingCategory = mutation.LowMapq
	} else {
		read.MappingCategory = mutation.Included
	}

	ops, err := cigar.Parse(raw.CigarStr)
	if err != nil {
		return nil, nil, err
	}
	if len(ops) == 0 {
		return nil, nil, ferrors.New(ferrors.MalformedCigar, "record %s: empty cigar for mapped read", raw.Name)
	}
	mdOps, err := mdtag.Parse(raw.MD)
	if err != nil {
		return nil, nil, err
	}

	w := &walker{
		raw:   raw,
		mdOps: mdOps,
		ts:    raw.Pos - 1,
	}
	leftTarget := w.ts
	for _, op := range ops {
		n := op.Len()
		switch op.Type() {
		case cigar.Match, cigar.Equal, cigar.Mismatch:
			if err := w.consumeAligned(n); err != nil {
				return nil, nil, ferrors.Wrap(ferrors.MdCigarMismatch, err, "record %s", raw.Name)
			}
		case cigar.Insertion:
			w.consumeInsertion(n)
		case cigar.Deletion:
			if err := w.consumeDeletion(n); err != nil {
				return nil, nil, ferrors.Wrap(ferrors.MdCigarMismatch, err, "record %s", raw.Name)
			}
		case cigar.Skipped:
			w.consumeSkip(n)
		case cigar.SoftClipped:
			w.qs += n
		case cigar.HardClipped, cigar.Padded:
			// consume neither cursor
		default:
			return nil, nil, ferrors.New(ferrors.MalformedCigar, "record %s: unsupported cigar op %s", raw.Name, op.Type())
		}
	}
	if w.mdIdx < len(w.mdOps) {
		return nil, nil, ferrors.New(ferrors.MdCigarMismatch, "record %s: %d unconsumed md tokens", raw.Name, len(w.mdOps)-w.mdIdx)
	}

	ref := &Ref{Left: leftTarget, Right: w.ts - 1, Seq: string(w.refSeq), Qual: string(w.refQual)}
	read.Left = leftTarget
	read.Right = w.ts - 1
	read.Seq = string(w.readSeq)
	read.Qual = string(w.readQual)
	read.Mutations = w.mutations

	if read.MappingCategory == mutation.Included && opt.PrimerLookup != nil {
		reverse := read.Strand == mutation.Reverse
		read.PrimerPair = opt.PrimerLookup(raw.RefName, read.Left, read.Right, reverse)
	}
	if read.MappingCategory == mutation.Included && opt.ResolveAmbig {
		ResolveAmbiguity(ref, read)
	}
	return read, ref, nil
}

func classifyReadType(raw *record.Raw) mutation.ReadType {
	paired := raw.Flags&record.Paired != 0
	isR1 := raw.Flags&record.Read1 != 0
	isR2 := raw.Flags&record.Read2 != 0
	switch {
	case paired && isR1:
		return mutation.PairedR1
	case paired && isR2:
		return mutation.PairedR2
	case isR1:
		return mutation.UnpairedR1
	case isR2:
		return mutation.UnpairedR2
	default:
		return mutation.Unpaired
	}
}

// walker carries the joint cursor state across the four axes of the
// reconstruction: target position, query position, index of the current MD
// token, and position within that token.
type walker struct {
	raw   *record.Raw
	mdOps []mdtag.Op
	mdIdx int
	mdOff int

	ts int32
	qs int32

	refSeq, refQual   []byte
	readSeq, readQual []byte
	mutations         []mutation.Mutation
}

// consumeAligned walks n reference/query positions of a CIGAR M/=/X run,
// consulting MD for the match/mismatch boundary within it (MD is the
// authority on which bases actually match, independent of which of M/=/X the
// aligner emitted).
func (w *walker) consumeAligned(n int) error {
	remaining := n
	for remaining > 0 {
		if w.mdIdx >= len(w.mdOps) {
			return ferrors.New(ferrors.MdCigarMismatch, "md exhausted mid-alignment-run")
		}
		op := w.mdOps[w.mdIdx]
		switch op.Kind {
		case mdtag.Match:
			avail := op.Len - w.mdOff
			take := min(avail, remaining)
			for k := 0; k < take; k++ {
				b := w.raw.Seq[w.qs]
				q := w.raw.Qual[w.qs]
				w.refSeq = append(w.refSeq, b)
				w.refQual = append(w.refQual, q)
				w.readSeq = append(w.readSeq, b)
				w.readQual = append(w.readQual, q)
				w.ts++
				w.qs++
			}
			w.mdOff += take
			remaining -= take
		case mdtag.Mismatch:
			avail := op.Len - w.mdOff
			take := min(avail, remaining)
			tsStart := w.ts
			queryChunk := w.raw.Seq[w.qs : w.qs+int32(take)]
			qualChunk := w.raw.Qual[w.qs : w.qs+int32(take)]
			refChunk := op.Seq[w.mdOff : w.mdOff+take]
			w.refSeq = append(w.refSeq, refChunk...)
			w.refQual = append(w.refQual, qualChunk...)
			w.readSeq = append(w.readSeq, queryChunk...)
			w.readQual = append(w.readQual, qualChunk...)
			w.ts += int32(take)
			w.qs += int32(take)
			w.mutations = append(w.mutations, mutation.Mutation{
				Left:  tsStart - 1,
				Right: w.ts,
				Seq:   queryChunk,
				Qual:  qualChunk,
			})
			w.mdOff += take
			remaining -= take
		case mdtag.Deletion:
			return ferrors.New(ferrors.MdCigarMismatch, "unexpected md deletion token inside aligned run")
		}
		if w.mdOff == op.Len {
			w.mdIdx++
			w.mdOff = 0
		}
	}
	return nil
}

func (w *walker) consumeInsertion(n int) {
	tsAt := w.ts
	seq := w.raw.Seq[w.qs : w.qs+int32(n)]
	qual := w.raw.Qual[w.qs : w.qs+int32(n)]
	w.mutations = append(w.mutations, mutation.Mutation{Left: tsAt - 1, Right: tsAt, Seq: seq, Qual: qual})
	w.qs += int32(n)
}

func (w *walker) consumeDeletion(n int) error {
	if w.mdIdx >= len(w.mdOps) || w.mdOps[w.mdIdx].Kind != mdtag.Deletion {
		return ferrors.New(ferrors.MdCigarMismatch, "cigar deletion has no matching md deletion token")
	}
	op := w.mdOps[w.mdIdx]
	if op.Len != n {
		return ferrors.New(ferrors.MdCigarMismatch, "cigar deletion length %d does not match md deletion length %d", n, op.Len)
	}
	tsStart := w.ts
	for i := 0; i < n; i++ {
		w.refSeq = append(w.refSeq, op.Seq[i])
		w.refQual = append(w.refQual, '!')
		w.readSeq = append(w.readSeq, '-')
		w.readQual = append(w.readQual, '!')
	}
	w.ts += int32(n)
	w.mutations = append(w.mutations, mutation.Mutation{Left: tsStart - 1, Right: w.ts, Seq: "", Qual: ""})
	w.mdIdx++
	w.mdOff = 0
	return nil
}

func (w *walker) consumeSkip(n int) {
	for i := 0; i < n; i++ {
		w.refSeq = append(w.refSeq, '-')
		w.refQual = append(w.refQual, '!')
		w.readSeq = append(w.readSeq, '-')
		w.readQual = append(w.readQual, '!')
	}
	w.ts += int32(n)
}
