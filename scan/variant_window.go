package scan

import (
	"fmt"
	"sort"

	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// variantKey identifies a distinct variant by its span and replacement
// sequence, with quality stripped out (spec.md §4.3: "so the same variant
// with different qualities does not fragment").
type variantKey struct {
	left, right int32
	seq         string
}

// VariantCell is one reference position's worth of variant-window state.
type VariantCell struct {
	Depth    uint64
	Variants map[variantKey]uint64
}

func newVariantCell() VariantCell {
	return VariantCell{Variants: make(map[variantKey]uint64)}
}

// VariantWindow is the per-variant counting aggregator.
type VariantWindow struct {
	win *Window[VariantCell]
}

// NewVariantWindow returns an empty VariantWindow.
func NewVariantWindow() *VariantWindow {
	return &VariantWindow{win: NewWindow(newVariantCell)}
}

// Ingest applies one processed read's mutations and effective depth to the
// window.
func (w *VariantWindow) Ingest(read *mutation.Read, sorted bool, emit func(pos int64, cell VariantCell)) {
	if read.MappingCategory != mutation.Included {
		return
	}
	w.win.EnsureRight(int64(read.Left))
	w.win.EnsureRight(int64(read.Right))
	if sorted {
		w.win.EmitUpTo(int64(read.Left), emit)
	}

	for p := read.Left; p <= read.Right; p++ {
		off := p - read.Left
		if int(off) < len(read.Depth) && read.Depth[off] {
			w.win.At(int64(p)).Depth++
		}
	}
	for _, m := range read.Mutations {
		if m.Left < read.Left {
			continue
		}
		cell := w.win.At(int64(m.Left))
		if cell.Variants == nil {
			cell.Variants = make(map[variantKey]uint64)
		}
		cell.Variants[variantKey{m.Left, m.Right, m.Seq}]++
	}
}

// UpdateRightBound grows the window to include pos without ingesting a read.
func (w *VariantWindow) UpdateRightBound(pos int64) { w.win.EnsureRight(pos) }

// FlushAll emits every remaining cell in ascending position order.
func (w *VariantWindow) FlushAll(emit func(pos int64, cell VariantCell)) { w.win.FlushAll(emit) }

// FormatVariants renders a cell's variants in the fixed
// `(left-right, "seq", count)` order used by the per-position variant
// output, sorted for determinism.
func FormatVariants(cell VariantCell) string {
	keys := make([]variantKey, 0, len(cell.Variants))
	for k := range cell.Variants {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].left != keys[j].left {
			return keys[i].left < keys[j].left
		}
		if keys[i].right != keys[j].right {
			return keys[i].right < keys[j].right
		}
		return keys[i].seq < keys[j].seq
	})
	out := ""
	for _, k := range keys {
		out += fmt.Sprintf(" (%d-%d, %q, %d)", k.left, k.right, k.seq, cell.Variants[k])
	}
	return out
}
