package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Weeks-UNC/shapemapper2-core/align"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

func highQual(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'I' // phred 40
	}
	return string(b)
}

func TestProcessSingleAllMatchHighQuality(t *testing.T) {
	read := &mutation.Read{
		Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5),
		MappingCategory: mutation.Included, PrimerPair: -1,
	}
	ref := &align.Ref{Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5)}
	p := &Pipeline{Config: DefaultConfig()}
	out := p.ProcessSingle(read, ref)

	assert.Equal(t, mutation.Included, out.MappingCategory)
	assert.Empty(t, out.Mutations)
	assert.Equal(t, 5, out.Depth.Count())
	assert.Equal(t, 0, out.Count.Count())
}

func TestProcessSingleLowQualityMutationDropped(t *testing.T) {
	lowQ := byte('#') // phred 2
	read := &mutation.Read{
		Left: 0, Right: 4, Seq: "ATCGA", Qual: highQual(5),
		MappingCategory: mutation.Included, PrimerPair: -1,
		Mutations: []mutation.Mutation{
			{Left: 1, Right: 3, Seq: "C", Qual: string(lowQ), Tag: mutation.MmTC},
		},
	}
	ref := &align.Ref{Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5)}
	p := &Pipeline{Config: DefaultConfig()}
	out := p.ProcessSingle(read, ref)

	assert.Empty(t, out.Mutations)
	assert.Equal(t, 0, out.Count.Count())
	assert.False(t, out.Depth[2]) // excluded, not just uncounted
}

func TestProcessSingleMutationRetainedAndAttributed(t *testing.T) {
	read := &mutation.Read{
		Left: 0, Right: 4, Seq: "ATCGA", Qual: highQual(5),
		MappingCategory: mutation.Included, PrimerPair: -1,
		Mutations: []mutation.Mutation{
			{Left: 1, Right: 3, Seq: "C", Qual: highQual(1), Tag: mutation.MmTC},
		},
	}
	ref := &align.Ref{Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5)}
	p := &Pipeline{Config: DefaultConfig()}
	out := p.ProcessSingle(read, ref)

	require.Len(t, out.Mutations, 1)
	assert.True(t, out.Count[2]) // right-1 == 3-1 == 2, offset from Left 0
	assert.True(t, out.Depth[1]) // untouched flanking base stays in depth
}

func TestProcessSingleExcludedWhenNotIncluded(t *testing.T) {
	read := &mutation.Read{MappingCategory: mutation.LowMapq}
	p := &Pipeline{Config: DefaultConfig()}
	out := p.ProcessSingle(read, nil)
	assert.Equal(t, mutation.LowMapq, out.MappingCategory)
}

func TestProcessSingleOffTargetWhenPrimerUnmet(t *testing.T) {
	read := &mutation.Read{
		Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5),
		MappingCategory: mutation.Included, PrimerPair: 0,
	}
	ref := &align.Ref{Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5)}
	cfg := DefaultConfig()
	cfg.RequireForwardPrimerMapped = true
	cfg.MaxPrimerOffset = 0
	primers := []mutation.PrimerPair{{FwLeft: 10, FwRight: 20, RvLeft: 30, RvRight: 40}}
	p := &Pipeline{Config: cfg, Primers: primers}
	out := p.ProcessSingle(read, ref)
	assert.Equal(t, mutation.OffTarget, out.MappingCategory)
}

func TestProcessPairOverlapPicksHigherQualityMate(t *testing.T) {
	// r1 covers [0,5] with a mismatch at position 3, high quality;
	// r2 covers [2,7] with a conflicting (different) mismatch at the same
	// site, but low quality. The merge should keep r1's version.
	r1 := &mutation.Read{
		ID: "frag1", Left: 0, Right: 5, Seq: "ATGCGA", Qual: highQual(6),
		MappingCategory: mutation.Included, PrimerPair: -1,
		Mutations: []mutation.Mutation{{Left: 2, Right: 4, Seq: "C", Qual: highQual(1), Tag: mutation.MmGC}},
	}
	ref1 := &align.Ref{Left: 0, Right: 5, Seq: "ATGGGA", Qual: highQual(6)}

	lowQ := highQualByte('#', 6)
	r2 := &mutation.Read{
		ID: "frag1", Left: 2, Right: 7, Seq: "ATAGAA", Qual: lowQ,
		MappingCategory: mutation.Included, PrimerPair: -1,
		Mutations: []mutation.Mutation{{Left: 2, Right: 4, Seq: "A", Qual: string([]byte{'#'}), Tag: mutation.MmGA}},
	}
	ref2 := &align.Ref{Left: 2, Right: 7, Seq: "GGGAAA", Qual: lowQ}

	p := &Pipeline{Config: DefaultConfig()}
	out := p.ProcessPair(r1, ref1, r2, ref2)

	require.Len(t, out.Mutations, 1)
	assert.Equal(t, "C", out.Mutations[0].Seq)
	assert.Equal(t, mutation.Merged, out.ReadType)
}

func highQualByte(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
