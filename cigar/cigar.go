// Package cigar tokenizes CIGAR strings. The packed-uint32 Op representation
// and Parse's digit/op scan are a direct, generalized port of
// biogo/hts's sam.CigarOp / sam.ParseCigar (see
// _examples/biogo-hts/sam/cigar.go in the retrieval pack), adapted to parse
// a standalone CIGAR field rather than one embedded in a *sam.Record, and
// trimmed to the operation set spec.md §3 actually names (no CG-style 'B').
package cigar

import (
	"fmt"

	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
)

// OpType is one CIGAR operation code.
type OpType byte

const (
	Match        OpType = iota // M: alignment match (sequence match or mismatch)
	Insertion                  // I: insertion to the reference
	Deletion                   // D: deletion from the reference
	Skipped                    // N: skipped region from the reference
	SoftClipped                // S: soft clip, bases present in SEQ
	HardClipped                // H: hard clip, bases absent from SEQ
	Padded                     // P: padding, silent deletion from padded reference
	Equal                      // =: explicit sequence match
	Mismatch                   // X: explicit sequence mismatch
	lastOpType
)

var opNames = [...]byte{Match: 'M', Insertion: 'I', Deletion: 'D', Skipped: 'N', SoftClipped: 'S', HardClipped: 'H', Padded: 'P', Equal: '=', Mismatch: 'X'}

func (t OpType) String() string {
	if t < lastOpType {
		return string(opNames[t])
	}
	return "?"
}

// Consume describes how many query and reference positions one unit of an
// operation type advances.
type Consume struct {
	Query, Reference int
}

var consume = [...]Consume{
	Match:       {1, 1},
	Insertion:   {1, 0},
	Deletion:    {0, 1},
	Skipped:     {0, 1},
	SoftClipped: {1, 0},
	HardClipped: {0, 0},
	Padded:      {0, 0},
	Equal:       {1, 1},
	Mismatch:    {1, 1},
}

// Consumes returns the query/reference advance for one unit of this op type.
func (t OpType) Consumes() Consume {
	if t < lastOpType {
		return consume[t]
	}
	return Consume{}
}

// Op is a single CIGAR operation: type in the low 4 bits, length in the
// upper 28, exactly as biogo/hts packs it.
type Op uint32

// NewOp returns a CIGAR operation of the given type and length.
func NewOp(t OpType, n int) Op { return Op(t) | (Op(n) << 4) }

// Type returns the operation's type.
func (o Op) Type() OpType { return OpType(o & 0xf) }

// Len returns the operation's length.
func (o Op) Len() int { return int(o >> 4) }

func (o Op) String() string { return fmt.Sprintf("%d%s", o.Len(), o.Type()) }

// Cigar is an ordered sequence of operations.
type Cigar []Op

// Lengths returns the total reference span and query (read) span described
// by the Cigar.
func (c Cigar) Lengths() (ref, read int) {
	for _, op := range c {
		con := op.Type().Consumes()
		ref += op.Len() * con.Reference
		read += op.Len() * con.Query
	}
	return
}

func (c Cigar) String() string {
	if len(c) == 0 {
		return "*"
	}
	s := make([]byte, 0, len(c)*3)
	for _, op := range c {
		s = append(s, op.String()...)
	}
	return string(s)
}

var opTypeLookup [256]OpType

func init() {
	for i := range opTypeLookup {
		opTypeLookup[i] = lastOpType
	}
	for op, b := range opNames {
		opTypeLookup[b] = OpType(op)
	}
}

var powers = [...]int{1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8}

func atoi(b []byte) (int, error) {
	n := 0
	k := len(b) - 1
	if k >= len(powers) {
		return 0, fmt.Errorf("cigar length too long: %q", b)
	}
	for i, v := range b {
		if v < '0' || v > '9' {
			return 0, fmt.Errorf("non-digit in cigar length: %q", b)
		}
		n += int(v-'0') * powers[k-i]
	}
	return n, nil
}

// Parse tokenizes a CIGAR string into alternating length/op pairs
// (spec.md §4.1 Contracts: "Fails with MalformedCigar if the CIGAR string
// cannot be tokenised as alternating length/op pairs").
func Parse(s string) (Cigar, error) {
	if s == "" || s == "*" {
		return nil, nil
	}
	b := []byte(s)
	var c Cigar
	i := 0
	for i < len(b) {
		j := i
		for j < len(b) && b[j] >= '0' && b[j] <= '9' {
			j++
		}
		if j == i || j == len(b) {
			return nil, ferrors.New(ferrors.MalformedCigar, "cannot tokenize %q at offset %d", s, i)
		}
		n, err := atoi(b[i:j])
		if err != nil {
			return nil, ferrors.Wrap(ferrors.MalformedCigar, err, "cannot tokenize %q", s)
		}
		opType := opTypeLookup[b[j]]
		if opType == lastOpType {
			return nil, ferrors.New(ferrors.MalformedCigar, "unknown cigar operation %q in %q", b[j], s)
		}
		c = append(c, NewOp(opType, n))
		i = j + 1
	}
	return c, nil
}
