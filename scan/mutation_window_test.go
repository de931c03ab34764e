package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

func includedRead(left, right int32, depthAll bool, mappedAll bool, primerPair int) *mutation.Read {
	n := int(right - left + 1)
	r := &mutation.Read{
		Left: left, Right: right, MappingCategory: mutation.Included, PrimerPair: primerPair,
		Depth: mutation.NewBits(n), MappedDepth: mutation.NewBits(n),
	}
	if depthAll {
		r.Depth.SetAll()
	}
	if mappedAll {
		r.MappedDepth.SetAll()
	}
	return r
}

func TestMutationWindowIngestDepthAndMapped(t *testing.T) {
	w := NewMutationWindow(false, 0)
	r := includedRead(10, 14, true, true, -1)
	var emitted []MutationCell
	w.Ingest(r, false, func(pos int64, cell MutationCell) { emitted = append(emitted, cell) })

	cell := *w.win.At(10)
	assert.Equal(t, uint64(1), cell.ReadDepth)
	assert.Equal(t, uint64(1), cell.EffectiveDepth)
	assert.Equal(t, uint64(1), cell.MappedDepth)
	assert.Empty(t, emitted) // unsorted mode never emits from Ingest
}

func TestMutationWindowIngestMutationCountsAtRightMinusOne(t *testing.T) {
	w := NewMutationWindow(true, 0)
	r := includedRead(10, 14, true, true, -1)
	r.Mutations = []mutation.Mutation{{Left: 11, Right: 13, Seq: "A", Tag: mutation.MmGA, Ambig: true}}
	w.Ingest(r, false, nil)

	cell := *w.win.At(12) // Right-1 == 13-1 == 12
	assert.Equal(t, uint64(1), cell.Counts[mutation.MmGA])
	assert.Equal(t, uint64(1), cell.AmbigCounts[mutation.MmGA])
}

func TestMutationWindowIngestPerPrimerMappedDepth(t *testing.T) {
	w := NewMutationWindow(false, 2)
	r := includedRead(0, 2, true, true, 1)
	w.Ingest(r, false, nil)

	cell := *w.win.At(0)
	assert.Equal(t, uint64(0), cell.MappedDepth)
	assert.Equal(t, uint64(1), cell.PrimerMapped[1])
	assert.Equal(t, []int{1}, PrimerKeys(cell))
}

func TestMutationWindowIngestOffTargetAndLowMapqTallies(t *testing.T) {
	w := NewMutationWindow(false, 0)
	off := &mutation.Read{Left: 5, Right: 5, MappingCategory: mutation.OffTarget}
	low := &mutation.Read{Left: 5, Right: 5, MappingCategory: mutation.LowMapq}
	w.Ingest(off, false, nil)
	w.Ingest(low, false, nil)

	cell := *w.win.At(5)
	assert.Equal(t, uint64(1), cell.OffTargetMapped)
	assert.Equal(t, uint64(1), cell.LowMapqMapped)
	assert.Equal(t, uint64(0), cell.ReadDepth) // neither contributes to read depth
}

func TestMutationWindowSortedModeEmitsUpToIncomingLeft(t *testing.T) {
	w := NewMutationWindow(false, 0)
	var emittedPos []int64
	r1 := includedRead(0, 2, true, true, -1)
	w.Ingest(r1, true, func(pos int64, cell MutationCell) { emittedPos = append(emittedPos, pos) })
	assert.Empty(t, emittedPos) // nothing strictly left of r1.Left(0) yet

	r2 := includedRead(3, 5, true, true, -1)
	w.Ingest(r2, true, func(pos int64, cell MutationCell) { emittedPos = append(emittedPos, pos) })
	require.Equal(t, []int64{0, 1, 2}, emittedPos)
}

func TestMutationWindowUpdateRightBoundPadsWithoutIngesting(t *testing.T) {
	w := NewMutationWindow(false, 0)
	r := includedRead(0, 2, true, true, -1)
	w.Ingest(r, false, nil)
	w.UpdateRightBound(9) // pads the window out to reference length without a read there
	var count int
	w.FlushAll(func(pos int64, cell MutationCell) { count++ })
	assert.Equal(t, 10, count)
}
