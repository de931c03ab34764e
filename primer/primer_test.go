package primer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

func TestReadPairsSkipsHeaderAndBlankLines(t *testing.T) {
	input := ">my amplicons\n\n10 30 100 120\n200 220 300 320\n"
	pairs, err := ReadPairs(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, mutation.PrimerPair{FwLeft: 10, FwRight: 30, RvLeft: 100, RvRight: 120}, pairs[0])
	assert.Equal(t, mutation.PrimerPair{FwLeft: 200, FwRight: 220, RvLeft: 300, RvRight: 320}, pairs[1])
}

func TestReadPairsSkipsLetterPrefixedHeader(t *testing.T) {
	input := "name fw_left fw_right rv_left rv_right\n10 30 100 120\n"
	pairs, err := ReadPairs(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
}

func TestReadPairsWrongFieldCountErrors(t *testing.T) {
	_, err := ReadPairs(strings.NewReader("10 30 100\n"))
	require.Error(t, err)
	assert.True(t, ferrors.Is(err, ferrors.IncompleteRecord))
}

func TestReadPairsMalformedIntegerErrors(t *testing.T) {
	_, err := ReadPairs(strings.NewReader("10 30 100 abc\n"))
	require.Error(t, err)
	assert.True(t, ferrors.Is(err, ferrors.IncompleteRecord))
}

func TestLookupForwardWithinOffset(t *testing.T) {
	pairs := []mutation.PrimerPair{
		{FwLeft: 10, FwRight: 30, RvLeft: 100, RvRight: 120},
		{FwLeft: 200, FwRight: 220, RvLeft: 300, RvRight: 320},
	}
	assert.Equal(t, 0, Lookup(pairs, 12, 30, false, 5))
	assert.Equal(t, 1, Lookup(pairs, 202, 220, false, 5))
	assert.Equal(t, -1, Lookup(pairs, 50, 70, false, 5))
}

func TestLookupReverseChecksRightEdge(t *testing.T) {
	pairs := []mutation.PrimerPair{{FwLeft: 10, FwRight: 30, RvLeft: 100, RvRight: 120}}
	assert.Equal(t, 0, Lookup(pairs, 90, 118, true, 5))
	assert.Equal(t, -1, Lookup(pairs, 90, 150, true, 5))
}
