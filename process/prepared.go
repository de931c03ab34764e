package process

import (
	"github.com/Weeks-UNC/shapemapper2-core/align"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// prepared is the pipeline's working representation of a read: the
// mutation.Read plus a byte slice of reconstructed local reference bases
// parallel to its Seq/Qual, spanning [Left, Right].
type prepared struct {
	read *mutation.Read
	ref  []byte
}

func fromSingle(read *mutation.Read, ref *align.Ref) *prepared {
	return &prepared{read: read, ref: []byte(ref.Seq)}
}

func phredOf(q byte) int {
	if q < 33 {
		return 0
	}
	return int(q) - 33
}

func phredMean(qual string) float64 {
	if len(qual) == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < len(qual); i++ {
		sum += phredOf(qual[i])
	}
	return float64(sum) / float64(len(qual))
}
