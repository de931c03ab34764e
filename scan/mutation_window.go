package scan

import (
	"sort"

	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// MutationCell is one reference position's worth of mutation-window
// counters (spec.md §4.3).
type MutationCell struct {
	Counts          [mutation.NMatch + 1]uint64 // indexed by Class; entry at mutation.None unused
	AmbigCounts     [mutation.NMatch + 1]uint64
	ReadDepth       uint64
	EffectiveDepth  uint64
	MappedDepth     uint64
	OffTargetMapped uint64
	LowMapqMapped   uint64
	PrimerMapped    map[int]uint64
}

func newMutationCell() MutationCell {
	return MutationCell{}
}

// MutationWindow is the mutation-class counting aggregator.
type MutationWindow struct {
	win                 *Window[MutationCell]
	separateAmbigCounts bool
	numPrimers          int
}

// NewMutationWindow returns an empty MutationWindow. A read with a primer
// pair assigned (PrimerPair >= 0) adds to its per-primer mapped-depth column
// instead of the generic mapped_depth one; numPrimers is stored but does not
// change ingestion.
func NewMutationWindow(separateAmbigCounts bool, numPrimers int) *MutationWindow {
	return &MutationWindow{
		win:                 NewWindow(newMutationCell),
		separateAmbigCounts: separateAmbigCounts,
		numPrimers:          numPrimers,
	}
}

// Ingest applies one processed read to the window, per spec.md §4.3's
// five-step ingestion recipe.
func (w *MutationWindow) Ingest(read *mutation.Read, sorted bool, emit func(pos int64, cell MutationCell)) {
	w.win.EnsureRight(int64(read.Left))
	w.win.EnsureRight(int64(read.Right))
	if sorted {
		w.win.EmitUpTo(int64(read.Left), emit)
	}

	if read.MappingCategory == mutation.Included {
		for p := read.Left; p <= read.Right; p++ {
			cell := w.win.At(int64(p))
			cell.ReadDepth++
			off := p - read.Left
			if int(off) < len(read.Depth) && read.Depth[off] {
				cell.EffectiveDepth++
			}
			if int(off) < len(read.MappedDepth) && read.MappedDepth[off] {
				if read.PrimerPair >= 0 {
					if cell.PrimerMapped == nil {
						cell.PrimerMapped = make(map[int]uint64)
					}
					cell.PrimerMapped[read.PrimerPair]++
				} else {
					cell.MappedDepth++
				}
			}
		}
	} else if read.MappingCategory == mutation.OffTarget || read.MappingCategory == mutation.LowMapq {
		for p := read.Left; p <= read.Right; p++ {
			cell := w.win.At(int64(p))
			if read.MappingCategory == mutation.OffTarget {
				cell.OffTargetMapped++
			} else {
				cell.LowMapqMapped++
			}
		}
	}

	if read.MappingCategory == mutation.Included {
		for _, m := range read.Mutations {
			site := m.Right - 1
			if site < read.Left || site > read.Right {
				continue
			}
			cell := w.win.At(int64(site))
			cell.Counts[m.Tag]++
			if w.separateAmbigCounts && m.Ambig {
				cell.AmbigCounts[m.Tag]++
			}
		}
	}
}

// UpdateRightBound grows the window to include pos without ingesting a read
// (used for end-of-stream padding to a known reference length).
func (w *MutationWindow) UpdateRightBound(pos int64) { w.win.EnsureRight(pos) }

// FlushAll emits every remaining cell in ascending position order.
func (w *MutationWindow) FlushAll(emit func(pos int64, cell MutationCell)) { w.win.FlushAll(emit) }

// PrimerKeys returns the sorted set of primer-pair indices seen in cell's
// PrimerMapped map, for deterministic column ordering in output.
func PrimerKeys(cell MutationCell) []int {
	keys := make([]int, 0, len(cell.PrimerMapped))
	for k := range cell.PrimerMapped {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
