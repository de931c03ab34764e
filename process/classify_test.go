package process

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

func TestClassifyTagsMutationFromLocalReference(t *testing.T) {
	p := &prepared{
		read: &mutation.Read{
			Left: 0,
			Mutations: []mutation.Mutation{
				{Left: 1, Right: 3, Seq: "C"}, // replaces ref base at offset 2: "G"
			},
		},
		ref: []byte("ATGGA"),
	}
	classify(p, DefaultConfig())
	require.Len(t, p.read.Mutations, 1)
	assert.Equal(t, mutation.MmGC, p.read.Mutations[0].Tag)
}

func TestClassifyDropsOutOfRangeMutation(t *testing.T) {
	p := &prepared{
		read: &mutation.Read{
			Left: 0,
			Mutations: []mutation.Mutation{
				{Left: 1, Right: 3, Seq: "C"},   // in range
				{Left: 10, Right: 12, Seq: "C"}, // span falls entirely outside ref
			},
		},
		ref: []byte("ATGGA"),
	}
	classify(p, DefaultConfig())
	require.Len(t, p.read.Mutations, 1)
	assert.Equal(t, int32(1), p.read.Mutations[0].Left)
}

func TestClassifyLogsDroppedMutationToDebugTrace(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.DebugTrace = &buf
	p := &prepared{
		read: &mutation.Read{
			ID:   "r1",
			Left: 0,
			Mutations: []mutation.Mutation{
				{Left: 10, Right: 12, Seq: "C"},
			},
		},
		ref: []byte("ATGGA"),
	}
	classify(p, cfg)
	require.Empty(t, p.read.Mutations)
	assert.Contains(t, buf.String(), "step=classify")
	assert.Contains(t, buf.String(), "OutOfRangeMutation")
}
