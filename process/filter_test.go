package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Weeks-UNC/shapemapper2-core/align"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

func TestClassMatchesGroupsByRequestedType(t *testing.T) {
	cases := []struct {
		tag  mutation.Class
		want string
		ok   bool
	}{
		{mutation.MmGA, "mismatch", true},
		{mutation.DelA, "gap", true},
		{mutation.InsC, "insert", true},
		{mutation.MultinucDeletion, "gap_multi", true},
		{mutation.MultinucInsertion, "insert_multi", true},
		{mutation.ComplexDeletion, "complex", true},
		{mutation.ComplexInsertion, "complex", true},
		{mutation.MmGA, "gap", false},
		{mutation.DelA, "mismatch", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, classMatches(c.tag, c.want), "tag=%v want=%s", c.tag, c.want)
	}
}

func TestUseOnlyMutationTypeDropsNonMatchingMutations(t *testing.T) {
	read := &mutation.Read{
		Left: 0, Right: 4, Seq: "ATCGA", Qual: highQual(5),
		MappingCategory: mutation.Included, PrimerPair: -1,
		Mutations: []mutation.Mutation{
			{Left: 1, Right: 3, Seq: "C", Qual: highQual(1), Tag: mutation.MmTC},
		},
	}
	ref := &align.Ref{Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5)}
	cfg := DefaultConfig()
	cfg.UseOnlyMutationType = "gap" // the mismatch above doesn't qualify
	p := &Pipeline{Config: cfg}
	out := p.ProcessSingle(read, ref)

	require.Empty(t, out.Mutations)
	assert.Equal(t, 0, out.Count.Count())
	assert.False(t, out.Depth[2]) // cleared via the filtered-class path in qualityFilterAndAttribute
}

func TestVariantModeAttributionKeepsInteriorInDepth(t *testing.T) {
	read := &mutation.Read{
		Left: 0, Right: 4, Seq: "ATCGA", Qual: highQual(5),
		MappingCategory: mutation.Included, PrimerPair: -1,
		Mutations: []mutation.Mutation{
			{Left: 1, Right: 3, Seq: "C", Qual: highQual(1), Tag: mutation.MmTC},
		},
	}
	ref := &align.Ref{Left: 0, Right: 4, Seq: "ATGGA", Qual: highQual(5)}
	cfg := DefaultConfig()
	cfg.VariantMode = true
	p := &Pipeline{Config: cfg}
	out := p.ProcessSingle(read, ref)

	require.Len(t, out.Mutations, 1)
	assert.True(t, out.Depth[2]) // in variant mode the span interior is never cleared
}
