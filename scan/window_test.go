package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntWindow() *Window[int] {
	return NewWindow(func() int { return -1 })
}

func TestWindowEnsureRightInitializesCells(t *testing.T) {
	w := newIntWindow()
	w.EnsureRight(3)
	assert.Equal(t, int64(3), w.Base())
	assert.Equal(t, int64(4), w.Right())
	for p := int64(3); p < 4; p++ {
		assert.Equal(t, -1, *w.At(p))
	}
}

func TestWindowGrowsPastInitialCapacity(t *testing.T) {
	w := newIntWindow()
	w.EnsureRight(0)
	*w.At(0) = 100
	w.EnsureRight(40) // forces at least one doubling beyond the initial 16 slots
	assert.Equal(t, 100, *w.At(0))
	assert.Equal(t, int64(41), w.Right())
}

func TestWindowEmitUpToOrderAndDiscard(t *testing.T) {
	w := newIntWindow()
	for p := int64(0); p < 5; p++ {
		w.EnsureRight(p)
		*w.At(p) = int(p) * 10
	}
	var emitted []int
	w.EmitUpTo(3, func(pos int64, cell int) {
		emitted = append(emitted, cell)
	})
	assert.Equal(t, []int{0, 10, 20}, emitted)
	assert.Equal(t, int64(3), w.Base())
}

func TestWindowFlushAllEmitsEverythingRemaining(t *testing.T) {
	w := newIntWindow()
	for p := int64(0); p < 3; p++ {
		w.EnsureRight(p)
		*w.At(p) = int(p)
	}
	var emitted []int
	w.FlushAll(func(pos int64, cell int) { emitted = append(emitted, cell) })
	require.Len(t, emitted, 3)
	assert.Equal(t, []int{0, 1, 2}, emitted)
	assert.Equal(t, w.Right(), w.Base())
}

func TestWindowEnsureRightIsIdempotentForPastPositions(t *testing.T) {
	w := newIntWindow()
	w.EnsureRight(5)
	*w.At(2) = 99
	w.EnsureRight(2) // already covered, must not reset the cell
	assert.Equal(t, 99, *w.At(2))
}
