// Package mdtag tokenizes the MD auxiliary field (spec.md §4.1 "Algorithm —
// MD parse"). Its character-class tokenizer mirrors the digit/op scan used
// by cigar.Parse (itself grounded on biogo/hts's sam.ParseCigar), since MD
// and CIGAR have the same "alternating typed runs" shape.
package mdtag

import (
	"fmt"

	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
)

// OpKind distinguishes the three MD token kinds.
type OpKind uint8

const (
	Match OpKind = iota
	Mismatch
	Deletion
)

// Op is one MD token. Matches carry no sequence; mismatches and deletions
// carry the reference bases they name.
type Op struct {
	Kind OpKind
	Len  int
	Seq  string
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Parse tokenizes an MD string into a sequence of Ops.
//
// A run of digits of length n is a Match(n). A token beginning with '^'
// followed by k reference bases is a Deletion(k, bases). Any other
// non-digit token of length k is a Mismatch(k, bases), where in a valid MD
// string each individual mismatched base is its own one-character token
// (MD never groups adjacent mismatches into a single non-digit run; a
// 0-length digit run of "0" is always written between them). Matches of
// length zero are discarded.
func Parse(s string) ([]Op, error) {
	var ops []Op
	i := 0
	for i < len(s) {
		switch {
		case isDigit(s[i]):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			n := 0
			for k := i; k < j; k++ {
				n = n*10 + int(s[k]-'0')
			}
			if n > 0 {
				ops = append(ops, Op{Kind: Match, Len: n})
			}
			i = j
		case s[i] == '^':
			j := i + 1
			for j < len(s) && !isDigit(s[j]) && s[j] != '^' {
				j++
			}
			if j == i+1 {
				return nil, ferrors.New(ferrors.MalformedMd, "empty deletion token in MD %q at %d", s, i)
			}
			ops = append(ops, Op{Kind: Deletion, Len: j - (i + 1), Seq: s[i+1 : j]})
			i = j
		default:
			// A mismatch token: one non-digit, non-'^' base. MD groups a run
			// of several mismatched bases only when samtools wrote MD in a
			// nonstandard way; to tolerate that while still producing
			// per-base Mismatch lengths that line up with CIGAR M-runs, we
			// consume the whole non-digit, non-'^' run here as a single
			// mismatch token whose Len equals its base count.
			j := i
			for j < len(s) && !isDigit(s[j]) && s[j] != '^' {
				j++
			}
			ops = append(ops, Op{Kind: Mismatch, Len: j - i, Seq: s[i:j]})
			i = j
		}
	}
	return ops, nil
}

func (o Op) String() string {
	switch o.Kind {
	case Match:
		return fmt.Sprintf("%d", o.Len)
	case Deletion:
		return "^" + o.Seq
	default:
		return o.Seq
	}
}
