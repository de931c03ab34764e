package process

import (
	"fmt"
	"io"

	"github.com/Weeks-UNC/shapemapper2-core/align"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

// Pipeline runs the per-read processing steps against one Config.
type Pipeline struct {
	Config  Config
	Primers []mutation.PrimerPair
}

// ProcessSingle runs the pipeline for an unpaired read.
func (p *Pipeline) ProcessSingle(read *mutation.Read, ref *align.Ref) *mutation.Read {
	if read.MappingCategory != mutation.Included {
		return read
	}
	if !meetsPrimerRequirements(read, p.Primers, p.Config) {
		read.MappingCategory = mutation.OffTarget
		return read
	}
	prep := fromSingle(read, ref)
	return p.run(prep)
}

// ProcessPair runs the pipeline for a mate pair, merging them first.
func (p *Pipeline) ProcessPair(r1 *mutation.Read, ref1 *align.Ref, r2 *mutation.Read, ref2 *align.Ref) *mutation.Read {
	switch {
	case r1.MappingCategory != mutation.Included && r2.MappingCategory != mutation.Included:
		return r1
	case r1.MappingCategory != mutation.Included:
		return p.ProcessSingle(r2, ref2)
	case r2.MappingCategory != mutation.Included:
		return p.ProcessSingle(r1, ref1)
	}
	prep := mergeMates(r1, ref1, r2, ref2)
	if !meetsPrimerRequirements(prep.read, p.Primers, p.Config) {
		prep.read.MappingCategory = mutation.OffTarget
		return prep.read
	}
	return p.run(prep)
}

func (p *Pipeline) run(prep *prepared) *mutation.Read {
	trimEnds(prep, p.Config, p.Primers)
	trace(p.Config.DebugTrace, prep.read, "trimEnds")

	if !p.Config.VariantMode {
		applyAmbiguityShift(prep, p.Config.RightAlignAmbigDels, p.Config.RightAlignAmbigIns)
		trace(p.Config.DebugTrace, prep.read, "applyAmbiguityShift")
	}

	coalesce(prep, p.Config.MaxInternalMatch)
	trace(p.Config.DebugTrace, prep.read, "coalesce")

	classify(prep, p.Config)
	trace(p.Config.DebugTrace, prep.read, "classify")

	qualityFilterAndAttribute(prep, p.Config)
	trace(p.Config.DebugTrace, prep.read, "qualityFilterAndAttribute")

	return prep.read
}

// trace writes one human-readable line describing a read's state after a
// pipeline step, when w is non-nil. A write failure is not fatal to
// processing; debug tracing must never change a read's outcome.
func trace(w io.Writer, r *mutation.Read, step string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "step=%s id=%s left=%d right=%d mutations=%d\n",
		step, r.ID, r.Left, r.Right, len(r.Mutations))
}
