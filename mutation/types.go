// Package mutation defines the shared data model of the mutation-analysis
// core: Mutation, Read, and the enums that classify them. Reference
// coordinates are 0-based throughout (spec.md §3).
package mutation

import "fmt"

// Mutation is a single deviation from the reference, as described in
// spec.md §3. Left is the last unchanged reference position before the
// event; Right is the first unchanged reference position after it.
type Mutation struct {
	Left  int32
	Right int32
	Seq   string // replacement (read) bases
	Qual  string // PHRED+33 ASCII qualities for Seq
	Tag   Class
	Ambig bool // derived from an ambiguously aligned indel
}

// RefSpanLen returns right-left-1, the number of reference bases the
// mutation replaces (0 for a simple insert, >0 for a gap/mismatch/complex
// event, and may be negative only in the degenerate 0-length case which
// never occurs for a valid Mutation since Right > Left is an invariant).
func (m Mutation) RefSpanLen() int32 { return m.Right - m.Left - 1 }

// IsSimpleInsert reports whether the mutation is an insertion with no
// reference bases removed (spec.md §3: "right-left == 1").
func (m Mutation) IsSimpleInsert() bool { return m.Right-m.Left == 1 }

// IsSimpleGap reports whether the mutation carries no replacement bases
// (spec.md §3: "seq == \"\"").
func (m Mutation) IsSimpleGap() bool { return m.Seq == "" }

// IsAmbiguous reports whether this mutation's seq length doesn't match the
// reference span it covers — the structural encoding of "this indel has
// alternate placements" from spec.md §4.1's closing paragraph and Design
// Note §9 ("Ambiguous indel representation"). It is a query over shape, not
// a stored flag (the Ambig field on Mutation instead records *provenance*:
// whether ambiguity resolution produced this mutation in the first place).
func (m Mutation) IsAmbiguous() bool {
	span := m.RefSpanLen()
	seqLen := int32(len(m.Seq))
	return (seqLen < span && seqLen > 0) || (seqLen > span && span > 0)
}

func (m Mutation) String() string {
	return fmt.Sprintf("{%d %d %q %q %s %t}", m.Left, m.Right, m.Seq, m.Qual, m.Tag, m.Ambig)
}

// ReadType classifies how a processed Read relates to its sequencing mate.
type ReadType uint8

const (
	PairedR1 ReadType = iota
	PairedR2
	UnpairedR1
	UnpairedR2
	Unpaired
	Merged
	Paired
)

var readTypeNames = [...]string{
	PairedR1:   "PairedR1",
	PairedR2:   "PairedR2",
	UnpairedR1: "UnpairedR1",
	UnpairedR2: "UnpairedR2",
	Unpaired:   "Unpaired",
	Merged:     "Merged",
	Paired:     "Paired",
}

func (t ReadType) String() string {
	if int(t) < len(readTypeNames) {
		return readTypeNames[t]
	}
	return "Unknown"
}

// ParseReadType is the inverse of ReadType.String, used by the
// processed-mutation-record deserializer.
func ParseReadType(s string) (ReadType, bool) {
	for i, name := range readTypeNames {
		if name == s {
			return ReadType(i), true
		}
	}
	return 0, false
}

// MappingCategory classifies a Read's overall alignment quality/acceptance.
type MappingCategory uint8

const (
	Included MappingCategory = iota
	LowMapq
	OffTarget
	Unmapped
)

var mappingCategoryNames = [...]string{
	Included:  "Included",
	LowMapq:   "LowMapq",
	OffTarget: "OffTarget",
	Unmapped:  "Unmapped",
}

func (c MappingCategory) String() string {
	if int(c) < len(mappingCategoryNames) {
		return mappingCategoryNames[c]
	}
	return "Unknown"
}

// ParseMappingCategory is the inverse of MappingCategory.String.
func ParseMappingCategory(s string) (MappingCategory, bool) {
	for i, name := range mappingCategoryNames {
		if name == s {
			return MappingCategory(i), true
		}
	}
	return 0, false
}

// StrandType records the strand a Read is aligned to.
type StrandType uint8

const (
	Unspecified StrandType = iota
	Forward
	Reverse
)

var strandNames = [...]string{
	Unspecified: "Unspecified",
	Forward:     "Forward",
	Reverse:     "Reverse",
}

func (s StrandType) String() string {
	if int(s) < len(strandNames) {
		return strandNames[s]
	}
	return "Unknown"
}

// ParseStrandType is the inverse of StrandType.String.
func ParseStrandType(s string) (StrandType, bool) {
	for i, name := range strandNames {
		if name == s {
			return StrandType(i), true
		}
	}
	return 0, false
}

// PrimerPair describes one amplicon's forward/reverse primer footprints, as
// 0-based inclusive reference ranges (spec.md §3, §6).
type PrimerPair struct {
	FwLeft  int32
	FwRight int32
	RvLeft  int32
	RvRight int32
}

// Read is a processed observation ready for the scanning counter (spec.md
// §3, §4.2 step 7). Seq/Qual span [Left, Right] inclusive; MappedDepth,
// Depth, and Count are bitmaps of the same length, one entry per reference
// position in that span.
type Read struct {
	ID              string
	ReadType        ReadType
	Strand          StrandType
	MappingCategory MappingCategory
	PrimerPair      int // index into the primer.Pairs slice, or -1
	Left            int32
	Right           int32
	Seq             string
	Qual            string
	MappedDepth     Bits
	Depth           Bits
	Count           Bits
	Mutations       []Mutation
}

// Len returns the number of reference positions the Read spans
// (Right - Left + 1).
func (r *Read) Len() int32 { return r.Right - r.Left + 1 }
