// Package align performs the joint CIGAR/MD walk that turns one alignment
// record into a mutation.Read plus its reconstructed local reference, and
// resolves the placement ambiguity of indels that fall inside repetitive
// reference runs (spec.md §4.1). The cursor-based walk is grounded on the
// teacher's alignRelevantBases in pileup/snp/pileup.go: parallel cursors
// over query and target position, a switch on the current CIGAR op's type,
// and Consumes()-style advance semantics borrowed from
// _examples/biogo-hts/sam/cigar.go.
package align

// Ref is the local reference reconstructed by Locate: the reference bases
// (and synthetic per-base qualities) spanning exactly the read's mapped
// footprint, [Left, Right] inclusive.
type Ref struct {
	Left  int32
	Right int32
	Seq   string
	Qual  string
}

// At returns the reference base at absolute coordinate pos, or 0 if pos
// falls outside [Left, Right].
func (r *Ref) At(pos int32) byte {
	if pos < r.Left || pos > r.Right {
		return 0
	}
	return r.Seq[pos-r.Left]
}

// InBounds reports whether pos lies within [Left, Right].
func (r *Ref) InBounds(pos int32) bool {
	return pos >= r.Left && pos <= r.Right
}
