// Package scan implements the two sliding-window aggregators that turn a
// stream of processed reads into per-position output (spec.md §4.3). Window
// is the shared ring buffer both aggregators are built on, grounded on
// circular.NextExp2 (kept from the teacher, see DESIGN.md) for its
// power-of-two growth and on pileupMutable's resultRingBuffer discipline in
// the teacher's pileup/snp/pileup.go (deleted, see DESIGN.md) for the
// grow/write/flush shape: a buffer sized to the largest live span, indexed
// by absolute reference coordinate modulo its length, grown by doubling and
// flushed from the left as the caller asserts positions are final.
package scan

import "github.com/Weeks-UNC/shapemapper2-core/circular"

// Window is a ring buffer of per-position cells keyed by absolute reference
// coordinate. Cells are allocated lazily via newCell as the window's right
// bound grows, which lets cell types that need internal initialization
// (a non-nil map, for instance) get it without a separate zero-value pass.
type Window[T any] struct {
	buf     []T
	base    int64
	right   int64
	started bool
	newCell func() T
}

// NewWindow returns an empty Window whose cells are produced by newCell.
func NewWindow[T any](newCell func() T) *Window[T] {
	return &Window[T]{newCell: newCell, buf: make([]T, 16)}
}

func (w *Window[T]) mask() int64 { return int64(len(w.buf) - 1) }

func (w *Window[T]) index(pos int64) int { return int(pos & w.mask()) }

// grow doubles the buffer until it can hold [w.base, pos], preserving the
// live [w.base, w.right) region at its correct positions under the new mask.
func (w *Window[T]) grow(pos int64) {
	for pos-w.base >= int64(len(w.buf)) {
		newLen := circular.NextExp2(len(w.buf))
		newBuf := make([]T, newLen)
		newMask := int64(newLen - 1)
		for p := w.base; p < w.right; p++ {
			newBuf[p&newMask] = w.buf[w.index(p)]
		}
		w.buf = newBuf
	}
}

// EnsureRight grows the window, if necessary, so that pos is a valid,
// initialized cell, and advances the right bound past it.
func (w *Window[T]) EnsureRight(pos int64) {
	if !w.started {
		w.base = pos
		w.right = pos
		w.started = true
	}
	if pos < w.right {
		return
	}
	w.grow(pos)
	for p := w.right; p <= pos; p++ {
		w.buf[w.index(p)] = w.newCell()
	}
	w.right = pos + 1
}

// At returns a pointer to the cell at pos. The caller must have already
// called EnsureRight with a position >= pos.
func (w *Window[T]) At(pos int64) *T {
	return &w.buf[w.index(pos)]
}

// Base returns the window's current left bound (the lowest live position).
func (w *Window[T]) Base() int64 { return w.base }

// Right returns one past the window's current right bound.
func (w *Window[T]) Right() int64 { return w.right }

// EmitUpTo emits and discards every cell strictly left of pos, in
// ascending order.
func (w *Window[T]) EmitUpTo(pos int64, emit func(pos int64, cell T)) {
	for w.base < pos && w.base < w.right {
		emit(w.base, w.buf[w.index(w.base)])
		w.base++
	}
}

// FlushAll emits every remaining live cell, in ascending order.
func (w *Window[T]) FlushAll(emit func(pos int64, cell T)) {
	w.EmitUpTo(w.right, emit)
}
