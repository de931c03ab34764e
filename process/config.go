// Package process implements the seven-step per-read pipeline that turns
// one (or one mate pair of) located reads into a single processed
// mutation.Read ready for the scanning counter (spec.md §4.2). The pipeline
// shape — small, independently testable steps threaded through one
// function — follows addReadPair's structure in the teacher's
// pileup/snp/pileup.go before its deletion (see DESIGN.md).
package process

import "io"

// Config holds the tunables spec.md §6 exposes on the CLI.
type Config struct {
	MinQual             byte
	Exclude3Prime       int32
	MaxInternalMatch    int32
	RightAlignAmbigDels bool
	RightAlignAmbigIns  bool
	VariantMode         bool
	SeparateAmbigCounts bool

	TrimPrimers                bool
	RequireForwardPrimerMapped bool
	RequireReversePrimerMapped bool
	MaxPrimerOffset            int32
	UseOnlyMutationType        string // "", "mismatch", "gap", "insert", "gap_multi", "insert_multi", "complex"

	// DebugTrace, when non-nil, receives one human-readable line per
	// pipeline step for every processed read (spec.md §7/§9's debug
	// channel). It is an explicit sink threaded through Config rather than
	// a package-level logger, so concurrent Pipeline.run calls from
	// traverse.Each never share mutable state.
	DebugTrace io.Writer
}

// DefaultConfig returns the pipeline's out-of-the-box settings.
func DefaultConfig() Config {
	return Config{
		MinQual:          30,
		Exclude3Prime:    0,
		MaxInternalMatch: 0,
	}
}
