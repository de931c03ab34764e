// Package output writes the two per-position TSVs the scanning counter
// produces (spec.md §6): the mutation-count table (one column per
// mutation.Class plus depth/diagnostic columns) and the variant table. Both
// writers follow the column-header-then-rows shape and the
// github.com/grailbio/base/tsv.Writer usage of pileup/snp/output.go and
// pileup/snp/basestrand.go (deleted, see DESIGN.md).
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"

	"github.com/Weeks-UNC/shapemapper2-core/mutation"
	"github.com/Weeks-UNC/shapemapper2-core/scan"
)

// MutationCountWriter writes the per-position mutation-count TSV.
type MutationCountWriter struct {
	w                   *tsv.Writer
	separateAmbigCounts bool
	primerPairs         int
	classes             []mutation.Class
	wroteHeader         bool
}

// NewMutationCountWriter returns a writer that must be closed via Flush.
func NewMutationCountWriter(w *tsv.Writer, separateAmbigCounts bool, primerPairs int) *MutationCountWriter {
	return &MutationCountWriter{
		w:                   w,
		separateAmbigCounts: separateAmbigCounts,
		primerPairs:         primerPairs,
		classes:             mutation.AllClasses(),
	}
}

func (mw *MutationCountWriter) writeHeader() error {
	mw.w.WriteString("pos")
	for _, c := range mw.classes {
		mw.w.WriteByte('\t')
		mw.w.WriteString(c.String())
		if mw.separateAmbigCounts {
			mw.w.WriteByte('\t')
			mw.w.WriteString(c.String() + "_ambig")
		}
	}
	mw.w.WriteString("\tread_depth\teffective_depth\toff_target_mapped_depth\tlow_mapq_mapped_depth")
	if mw.primerPairs > 0 {
		for i := 0; i < mw.primerPairs; i++ {
			mw.w.WriteByte('\t')
			mw.w.WriteString("primer_pair_" + strconv.Itoa(i) + "_mapped_depth")
		}
	} else {
		mw.w.WriteString("\tmapped_depth")
	}
	mw.wroteHeader = true
	return mw.w.EndLine()
}

// WriteCell appends one reference position's row. pos is the 0-based
// reference coordinate.
func (mw *MutationCountWriter) WriteCell(pos int64, cell scan.MutationCell) error {
	if !mw.wroteHeader {
		if err := mw.writeHeader(); err != nil {
			return err
		}
	}
	mw.w.WriteString(strconv.FormatInt(pos, 10))
	for _, c := range mw.classes {
		mw.w.WriteByte('\t')
		mw.w.WriteUint32(clampUint32(cell.Counts[c]))
		if mw.separateAmbigCounts {
			mw.w.WriteByte('\t')
			mw.w.WriteUint32(clampUint32(cell.AmbigCounts[c]))
		}
	}
	mw.w.WriteByte('\t')
	mw.w.WriteUint32(clampUint32(cell.ReadDepth))
	mw.w.WriteByte('\t')
	mw.w.WriteUint32(clampUint32(cell.EffectiveDepth))
	mw.w.WriteByte('\t')
	mw.w.WriteUint32(clampUint32(cell.OffTargetMapped))
	mw.w.WriteByte('\t')
	mw.w.WriteUint32(clampUint32(cell.LowMapqMapped))
	if mw.primerPairs > 0 {
		for i := 0; i < mw.primerPairs; i++ {
			mw.w.WriteByte('\t')
			mw.w.WriteUint32(clampUint32(cell.PrimerMapped[i]))
		}
	} else {
		mw.w.WriteByte('\t')
		mw.w.WriteUint32(clampUint32(cell.MappedDepth))
	}
	return mw.w.EndLine()
}

// Flush ensures the header is written (even for an all-zero reference with
// no ingested cells) and flushes the underlying tsv.Writer.
func (mw *MutationCountWriter) Flush() error {
	if !mw.wroteHeader {
		if err := mw.writeHeader(); err != nil {
			return err
		}
	}
	return mw.w.Flush()
}

// clampUint32 saturates rather than wraps; real per-position depths never
// approach 2^32, but a wraparound on a corrupt or adversarial input would be
// far more confusing than a saturated count.
func clampUint32(v uint64) uint32 {
	if v > 1<<32-1 {
		return 1<<32 - 1
	}
	return uint32(v)
}

// VariantWriter writes the per-position variant file: one line per
// reference position, `depth (l1-r1, "seq1", c1) (l2-r2, "seq2", c2) ...`
// with no header and no tab columns (spec.md §6). This is plain line-at-a-
// time fmt.Fprintf-shaped output, matching serialize.go's handling of the
// processed-read line rather than the tabular MutationCountWriter above.
type VariantWriter struct {
	w io.Writer
}

// NewVariantWriter returns a writer for the non-tabular variant format.
func NewVariantWriter(w io.Writer) *VariantWriter {
	return &VariantWriter{w: w}
}

// WriteCell appends one reference position's line.
func (vw *VariantWriter) WriteCell(pos int64, cell scan.VariantCell) error {
	_, err := fmt.Fprintf(vw.w, "%d%s\n", clampUint32(cell.Depth), scan.FormatVariants(cell))
	return err
}

// Flush flushes the underlying writer if it buffers (e.g. *bufio.Writer),
// so VariantWriter's call shape matches MutationCountWriter's.
func (vw *VariantWriter) Flush() error {
	if f, ok := vw.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
