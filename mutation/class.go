package mutation

// Class is the fixed, closed enum of mutation tags from the on-disk column
// contract. It is a tagged sum type (not an opaque string) per the Design
// Note in spec.md §9 — "Global mutation-class enum" — grounded on the
// teacher's fixed-order lookup arrays (pileup.Seq8ToEnumTable /
// pileup.EnumToASCIITable in pileup/common.go), generalized from a 5-entry
// base enum to the full mutation-tag enum.
type Class uint8

const (
	// None marks a Mutation that has not yet been classified; Classify
	// itself always returns a concrete tag. It never appears in emitted
	// output.
	None Class = iota

	// Simple deletions: single reference base deleted.
	DelA
	DelT
	DelG
	DelC

	// Simple insertions: single base inserted.
	InsA
	InsT
	InsG
	InsC
	InsN

	// Pure single-base mismatches, named Ref-then-Read.
	MmAT
	MmAG
	MmAC
	MmTA
	MmTG
	MmTC
	MmGA
	MmGT
	MmGC
	MmCA
	MmCT
	MmCG

	MultinucDeletion
	MultinucInsertion
	MultinucMismatch
	ComplexDeletion
	ComplexInsertion

	// NMatch is an N in the read aligned to any reference base. Never merged
	// with other mutations and never contributes to counts.
	NMatch
)

// classNames holds the canonical on-disk order and spelling, fixed by the
// external column contract (spec.md §3, §9). AllClasses returns exactly this
// order, skipping None.
var classNames = [...]string{
	None:              "",
	DelA:              "A-",
	DelT:              "T-",
	DelG:              "G-",
	DelC:              "C-",
	InsA:              "-A",
	InsT:              "-T",
	InsG:              "-G",
	InsC:              "-C",
	InsN:              "-N",
	MmAT:              "AT",
	MmAG:              "AG",
	MmAC:              "AC",
	MmTA:              "TA",
	MmTG:              "TG",
	MmTC:              "TC",
	MmGA:              "GA",
	MmGT:              "GT",
	MmGC:              "GC",
	MmCA:              "CA",
	MmCT:              "CT",
	MmCG:              "CG",
	MultinucDeletion:  "multinuc_deletion",
	MultinucInsertion: "multinuc_insertion",
	MultinucMismatch:  "multinuc_mismatch",
	ComplexDeletion:   "complex_deletion",
	ComplexInsertion:  "complex_insertion",
	NMatch:            "N_match",
}

// String returns the canonical on-disk spelling of the tag.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// AllClasses returns every mutation tag in the fixed canonical column order
// (spec.md §3). Callers building output headers must iterate this, not a
// hand-rolled list, so the column contract can't drift from the enum.
func AllClasses() []Class {
	out := make([]Class, 0, len(classNames)-1)
	for c := DelA; int(c) < len(classNames); c++ {
		out = append(out, c)
	}
	return out
}

// classByName supports deserializing a tag string back into a Class, used by
// serialize.ReadProcessed.
var classByName = func() map[string]Class {
	m := make(map[string]Class, len(classNames))
	for c, name := range classNames {
		if name != "" {
			m[name] = Class(c)
		}
	}
	return m
}()

// ParseClass looks up a Class by its canonical tag spelling.
func ParseClass(tag string) (Class, bool) {
	if tag == "" {
		return None, true
	}
	c, ok := classByName[tag]
	return c, ok
}

// simpleDeletionByBase and simpleInsertionByBase map a single reference/read
// base to its simple-event Class, used during classification (process
// package). Index by the ASCII base byte via a small switch rather than a
// 256-entry array, since only A/T/G/C are meaningful here — matching the
// teacher's preference for explicit switches over sparse arrays when the
// index space is mostly unused (see sam.CigarOpType.String()).
func simpleDeletionByBase(refBase byte) Class {
	switch refBase {
	case 'A':
		return DelA
	case 'T':
		return DelT
	case 'G':
		return DelG
	case 'C':
		return DelC
	default:
		return None
	}
}

func simpleInsertionByBase(readBase byte) Class {
	switch readBase {
	case 'A':
		return InsA
	case 'T':
		return InsT
	case 'G':
		return InsG
	case 'C':
		return InsC
	case 'N':
		return InsN
	default:
		return None
	}
}

func simpleMismatchByBases(refBase, readBase byte) Class {
	switch refBase {
	case 'A':
		switch readBase {
		case 'T':
			return MmAT
		case 'G':
			return MmAG
		case 'C':
			return MmAC
		}
	case 'T':
		switch readBase {
		case 'A':
			return MmTA
		case 'G':
			return MmTG
		case 'C':
			return MmTC
		}
	case 'G':
		switch readBase {
		case 'A':
			return MmGA
		case 'T':
			return MmGT
		case 'C':
			return MmGC
		}
	case 'C':
		switch readBase {
		case 'A':
			return MmCA
		case 'T':
			return MmCT
		case 'G':
			return MmCG
		}
	}
	return None
}

// Classify assigns the canonical tag to a mutation given its shape and the
// reconstructed local reference bases it replaces (spec.md §4.2 step 5).
// refBases is the reference slice spanned by [left+1, right-1]; seq is the
// mutation's replacement (read) bases.
func Classify(refBases, seq string) Class {
	for i := 0; i < len(seq); i++ {
		if seq[i] == 'N' {
			return NMatch
		}
	}
	isGap := seq == ""
	isSimpleInsert := len(refBases) == 0 && len(seq) == 1
	switch {
	case isGap:
		if len(refBases) == 1 {
			if c := simpleDeletionByBase(refBases[0]); c != None {
				return c
			}
		}
		if len(refBases) <= 1 {
			return ComplexDeletion
		}
		return MultinucDeletion
	case isSimpleInsert:
		if c := simpleInsertionByBase(seq[0]); c != None {
			return c
		}
		return ComplexInsertion
	case len(refBases) == 0 && len(seq) > 1:
		return MultinucInsertion
	case len(refBases) == len(seq) && len(seq) == 1:
		if c := simpleMismatchByBases(refBases[0], seq[0]); c != None {
			return c
		}
		return ComplexInsertion
	case len(refBases) == len(seq) && len(seq) > 1:
		return MultinucMismatch
	default:
		// Net insertion or deletion of more than one base, or any other
		// shape not covered above: composite event.
		if len(seq) > len(refBases) {
			return ComplexInsertion
		}
		return ComplexDeletion
	}
}
