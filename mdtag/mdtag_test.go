package mdtag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchesMismatchesDeletions(t *testing.T) {
	ops, err := Parse("10A5^AC3")
	require.NoError(t, err)
	require.Len(t, ops, 5)
	assert.Equal(t, Op{Kind: Match, Len: 10}, ops[0])
	assert.Equal(t, Op{Kind: Mismatch, Len: 1, Seq: "A"}, ops[1])
	assert.Equal(t, Op{Kind: Match, Len: 5}, ops[2])
	assert.Equal(t, Op{Kind: Deletion, Len: 2, Seq: "AC"}, ops[3])
	assert.Equal(t, Op{Kind: Match, Len: 3}, ops[4])
}

func TestParseZeroLengthMatchesDropped(t *testing.T) {
	ops, err := Parse("0A0T0")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, Op{Kind: Mismatch, Len: 1, Seq: "A"}, ops[0])
	assert.Equal(t, Op{Kind: Mismatch, Len: 1, Seq: "T"}, ops[1])
}

func TestParseEmptyDeletionErrors(t *testing.T) {
	_, err := Parse("5^3")
	require.Error(t, err)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "10", Op{Kind: Match, Len: 10}.String())
	assert.Equal(t, "^AC", Op{Kind: Deletion, Seq: "AC"}.String())
	assert.Equal(t, "A", Op{Kind: Mismatch, Seq: "A"}.String())
}
