// Package primer parses the primer-pair input file (spec.md §6):
// whitespace-separated lines of four 0-based integers, skipping header
// lines. The skip convention follows interval.NewBEDUnionFromPath's
// handling of non-data lines (grailbio-bio/interval/bedunion.go, deleted,
// see DESIGN.md), generalized from '>'-only to '>' or a leading letter.
package primer

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// ReadPairs parses every data line from r into a slice of PrimerPairs, in
// file order.
func ReadPairs(r io.Reader) ([]mutation.PrimerPair, error) {
	sc := bufio.NewScanner(r)
	var pairs []mutation.PrimerPair
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || isHeader(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, ferrors.New(ferrors.IncompleteRecord, "primer file line %d: need 4 fields, got %d", lineNo, len(fields))
		}
		vals := make([]int32, 4)
		for i, f := range fields {
			n, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "primer file line %d: malformed integer %q", lineNo, f)
			}
			vals[i] = int32(n)
		}
		pairs = append(pairs, mutation.PrimerPair{FwLeft: vals[0], FwRight: vals[1], RvLeft: vals[2], RvRight: vals[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, ferrors.Wrap(ferrors.IoError, err, "reading primer pair file")
	}
	return pairs, nil
}

func isHeader(line string) bool {
	if strings.HasPrefix(line, ">") {
		return true
	}
	return unicode.IsLetter(rune(line[0]))
}

// Lookup returns the index of the first PrimerPair whose primer lies at the
// read's leading edge within maxOffset, or -1 if none matches. For a forward
// read left is compared with FwLeft; for a reverse read right is compared
// with RvRight. The other edge of the read is not checked.
func Lookup(pairs []mutation.PrimerPair, left, right int32, reverse bool, maxOffset int32) int {
	within := func(v, want int32) bool {
		d := v - want
		if d < 0 {
			d = -d
		}
		return d <= maxOffset
	}
	for i, pp := range pairs {
		if reverse {
			if within(right, pp.RvRight) {
				return i
			}
			continue
		}
		if within(left, pp.FwLeft) {
			return i
		}
	}
	return -1
}
