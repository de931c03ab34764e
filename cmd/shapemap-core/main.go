/*
shapemap-core reads an aligned, tab-separated alignment stream (SAM-shaped:
QNAME, FLAG, RNAME, POS, MAPQ, CIGAR, RNEXT, PNEXT, TLEN, SEQ, QUAL, then
tags including MD:Z:), locates and classifies the mutations in each read
against its CIGAR/MD trace, resolves ambiguous indel placements and
mate-pair overlaps, and emits per-reference-position mutation-count and
variant tables.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"

	"github.com/Weeks-UNC/shapemapper2-core/align"
	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
	"github.com/Weeks-UNC/shapemapper2-core/output"
	"github.com/Weeks-UNC/shapemapper2-core/primer"
	"github.com/Weeks-UNC/shapemapper2-core/process"
	"github.com/Weeks-UNC/shapemapper2-core/record"
	"github.com/Weeks-UNC/shapemapper2-core/scan"
)

var (
	inPath           = flag.String("in", "", "Input alignment path ('-' for stdin); .gz suffix is decompressed automatically")
	outPath          = flag.String("out", "", "Mutation-count output TSV path (required)")
	variantOutPath   = flag.String("variant-out", "", "Variant output path (optional)")
	refLength        = flag.Int("length", 0, "Reference length, for padding trailing positions with no coverage into the output")
	minMapq          = flag.Int("min-mapq", 0, "Reads with MAPQ below this are excluded from mutation counting but still contribute low_mapq_mapped_depth")
	minQual          = flag.Int("min-qual", 30, "Minimum PHRED quality score for a mutation or flanking base to be counted")
	exclude3Prime    = flag.Int("exclude-3prime", 0, "Number of bases to exclude from the 3' end of each read")
	maxInternalMatch = flag.Int("max-internal-match", 0, "Maximum number of matching bases allowed between two mutations before they are coalesced into one complex event")
	rightAlignDels   = flag.Bool("right-align-ambig-dels", false, "Shift ambiguously placed deletions to the rightmost equivalent position")
	rightAlignIns    = flag.Bool("right-align-ambig-ins", false, "Shift ambiguously placed insertions to the rightmost equivalent position")
	variantMode      = flag.Bool("variant-mode", false, "Disable ambiguous-indel shifting and keep ambiguous-region interior positions in depth (the variant table is written whenever -variant-out is set)")
	separateAmbig    = flag.Bool("separate-ambig-counts", false, "Track ambiguously placed mutations in separate _ambig columns")
	inputIsSorted    = flag.Bool("input-is-sorted", false, "Input is sorted by reference position; enables streaming output emission")
	inputIsUnpaired  = flag.Bool("input-is-unpaired", false, "Treat every record as an unpaired read instead of grouping by QNAME")
	warnOnNoMapped   = flag.Bool("warn-on-no-mapped", false, "Downgrade the no-mapped-reads condition from a fatal error to a warning")
	primersPath      = flag.String("primers", "", "Primer-pair file (spec.md primer format)")
	trimPrimers      = flag.Bool("trim-primers", false, "Exclude primer-binding-site positions from effective depth")
	requireFwPrimer  = flag.Bool("require-forward-primer-mapped", false, "Discard reads whose left edge doesn't fall within max-primer-offset of a primer pair's forward footprint")
	requireRvPrimer  = flag.Bool("require-reverse-primer-mapped", false, "Discard reads whose right edge doesn't fall within max-primer-offset of a primer pair's reverse footprint")
	maxPrimerOffset  = flag.Int("max-primer-offset", 0, "Tolerance, in bases, for the primer-mapped requirements above")
	useOnlyType      = flag.String("use-only-mutation-type", "", "Restrict counted mutations to one class: mismatch, gap, insert, gap_multi, insert_multi, or complex")
	debugTracePath   = flag.String("debug-trace", "", "Write a human-readable per-step trace for every processed read to this path ('-' for stderr)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -in <path> -out <path> [options]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if *inPath == "" || *outPath == "" {
		usage()
		os.Exit(1)
	}
	if err := run(); err != nil {
		if ferrors.Is(err, ferrors.NoMappedReads) && *warnOnNoMapped {
			log.Printf("warning: %v", err)
			return
		}
		log.Fatalf("%v", err)
	}
}

func run() error {
	in, closeIn, err := openInput(*inPath)
	if err != nil {
		return err
	}
	defer closeIn()

	var primers []mutation.PrimerPair
	if *primersPath != "" {
		pf, err := os.Open(*primersPath)
		if err != nil {
			return ferrors.Wrap(ferrors.IoError, err, "opening primer file")
		}
		defer pf.Close()
		primers, err = primer.ReadPairs(pf)
		if err != nil {
			return err
		}
	}

	cfg := process.DefaultConfig()
	cfg.MinQual = byte(*minQual)
	cfg.Exclude3Prime = int32(*exclude3Prime)
	cfg.MaxInternalMatch = int32(*maxInternalMatch)
	cfg.RightAlignAmbigDels = *rightAlignDels
	cfg.RightAlignAmbigIns = *rightAlignIns
	cfg.VariantMode = *variantMode
	cfg.SeparateAmbigCounts = *separateAmbig
	cfg.TrimPrimers = *trimPrimers
	cfg.RequireForwardPrimerMapped = *requireFwPrimer
	cfg.RequireReversePrimerMapped = *requireRvPrimer
	cfg.MaxPrimerOffset = int32(*maxPrimerOffset)
	cfg.UseOnlyMutationType = *useOnlyType

	if *debugTracePath != "" {
		tf, closeTrace, err := openDebugTrace(*debugTracePath)
		if err != nil {
			return err
		}
		defer closeTrace()
		cfg.DebugTrace = tf
	}

	pipeline := &process.Pipeline{Config: cfg, Primers: primers}

	primerLookup := func(refName string, left, right int32, reverse bool) int {
		return primer.Lookup(primers, left, right, reverse, cfg.MaxPrimerOffset)
	}
	locateOpt := align.Options{MinMapq: byte(*minMapq), ResolveAmbig: true, PrimerLookup: primerLookup}

	outFile, err := os.Create(*outPath)
	if err != nil {
		return ferrors.Wrap(ferrors.IoError, err, "creating output file")
	}
	defer outFile.Close()
	countWriter := output.NewMutationCountWriter(tsv.NewWriter(outFile), cfg.SeparateAmbigCounts, len(primers))

	var variantWriter *output.VariantWriter
	if *variantOutPath != "" {
		vf, err := os.Create(*variantOutPath)
		if err != nil {
			return ferrors.Wrap(ferrors.IoError, err, "creating variant output file")
		}
		defer vf.Close()
		variantWriter = output.NewVariantWriter(bufio.NewWriter(vf))
	}

	mutWin := scan.NewMutationWindow(cfg.SeparateAmbigCounts, len(primers))
	var varWin *scan.VariantWindow
	if variantWriter != nil {
		varWin = scan.NewVariantWindow()
	}

	mapped := 0
	ingest := func(r *mutation.Read) {
		if r.MappingCategory == mutation.Included {
			mapped++
		}
		mutWin.Ingest(r, *inputIsSorted, func(pos int64, cell scan.MutationCell) {
			if err := countWriter.WriteCell(pos, cell); err != nil {
				log.Fatalf("writing mutation-count row: %v", err)
			}
		})
		if varWin != nil {
			varWin.Ingest(r, *inputIsSorted, func(pos int64, cell scan.VariantCell) {
				if err := variantWriter.WriteCell(pos, cell); err != nil {
					log.Fatalf("writing variant row: %v", err)
				}
			})
		}
	}

	if err := scanRecords(in, *inputIsUnpaired, locateOpt, pipeline, ingest); err != nil {
		return err
	}

	if *refLength > 0 {
		mutWin.UpdateRightBound(int64(*refLength - 1))
		if varWin != nil {
			varWin.UpdateRightBound(int64(*refLength - 1))
		}
	}
	mutWin.FlushAll(func(pos int64, cell scan.MutationCell) {
		if err := countWriter.WriteCell(pos, cell); err != nil {
			log.Fatalf("writing mutation-count row: %v", err)
		}
	})
	if varWin != nil {
		varWin.FlushAll(func(pos int64, cell scan.VariantCell) {
			if err := variantWriter.WriteCell(pos, cell); err != nil {
				log.Fatalf("writing variant row: %v", err)
			}
		})
	}
	if err := countWriter.Flush(); err != nil {
		return ferrors.Wrap(ferrors.IoError, err, "flushing mutation-count output")
	}
	if variantWriter != nil {
		if err := variantWriter.Flush(); err != nil {
			return ferrors.Wrap(ferrors.IoError, err, "flushing variant output")
		}
	}

	if mapped == 0 {
		return ferrors.New(ferrors.NoMappedReads, "no reads were mapped and included in counting")
	}
	return nil
}

// recordJob is one unit of alignment work: a single record, or a mate pair
// grouped by QNAME.
type recordJob struct {
	raws [2]*record.Raw
	n    int
}

// batchSize bounds how many jobs are located and processed together by
// traverse.Each before their results are ingested into the scanning window,
// the same shard-then-traverse shape as the teacher's pileupSNPMain loop in
// pileup/snp/pileup.go (deleted, see DESIGN.md). Locate and the per-read
// Pipeline carry no shared mutable state, so a batch's jobs can run
// concurrently; window ingestion stays strictly sequential in input order,
// since the sorted-input fast path (scan.Window.EmitUpTo) depends on it.
const batchSize = 4096

// scanRecords locates and processes records from in, grouping mates by QNAME
// unless unpaired is set, and calls ingest with each resulting processed
// Read in the order records were consumed. Jobs are accumulated only up to
// batchSize at a time and run through runBatch as soon as a batch fills, so
// memory is bounded by batchSize plus however many mates are still pending a
// partner, not by the size of the input stream; only the unmatched-mate
// remainder at EOF is flushed as a final batch.
func scanRecords(in io.Reader, unpaired bool, locateOpt align.Options, pipeline *process.Pipeline, ingest func(*mutation.Read)) error {
	sc := record.NewScanner(in)
	pending := make(map[string]*record.Raw)
	batch := make([]recordJob, 0, batchSize)
	for sc.Scan() {
		raw := sc.Record()
		if unpaired {
			batch = append(batch, recordJob{raws: [2]*record.Raw{raw}, n: 1})
		} else if mate, ok := pending[raw.Name]; ok {
			delete(pending, raw.Name)
			batch = append(batch, recordJob{raws: [2]*record.Raw{mate, raw}, n: 2})
		} else {
			pending[raw.Name] = raw
			continue
		}
		if len(batch) >= batchSize {
			if err := runBatch(batch, locateOpt, pipeline, ingest); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	for _, raw := range pending {
		batch = append(batch, recordJob{raws: [2]*record.Raw{raw}, n: 1})
		if len(batch) >= batchSize {
			if err := runBatch(batch, locateOpt, pipeline, ingest); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return runBatch(batch, locateOpt, pipeline, ingest)
}

// runBatch locates and processes a batch of jobs concurrently via
// traverse.Each, then ingests their results strictly in batch order; window
// ingestion must stay sequential for the sorted-input fast path
// (scan.Window.EmitUpTo) to be correct.
func runBatch(batch []recordJob, locateOpt align.Options, pipeline *process.Pipeline, ingest func(*mutation.Read)) error {
	if len(batch) == 0 {
		return nil
	}
	results := make([]*mutation.Read, len(batch))
	if err := traverse.Each(len(batch), func(i int) error {
		r, err := locateAndProcess(batch[i], locateOpt, pipeline)
		if err != nil {
			return err
		}
		results[i] = r
		return nil
	}); err != nil {
		return err
	}
	for _, r := range results {
		ingest(r)
	}
	return nil
}

func locateAndProcess(job recordJob, locateOpt align.Options, pipeline *process.Pipeline) (*mutation.Read, error) {
	read1, ref1, err := align.Locate(job.raws[0], locateOpt)
	if err != nil {
		return nil, err
	}
	if job.n == 1 {
		return pipeline.ProcessSingle(read1, ref1), nil
	}
	read2, ref2, err := align.Locate(job.raws[1], locateOpt)
	if err != nil {
		return nil, err
	}
	return pipeline.ProcessPair(read1, ref1, read2, ref2), nil
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return bufio.NewReader(os.Stdin), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, ferrors.Wrap(ferrors.IoError, err, "opening input file")
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, ferrors.Wrap(ferrors.IoError, err, "opening gzip input")
	}
	return gz, func() error {
		gz.Close()
		return f.Close()
	}, nil
}

// syncWriter serializes writes from the concurrent traverse.Each workers
// that share one Pipeline's Config.DebugTrace, so trace lines from
// different reads never interleave mid-line.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(b)
}

// openDebugTrace opens the destination for process.Config.DebugTrace,
// wrapping it for safe concurrent use.
func openDebugTrace(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return &syncWriter{w: os.Stderr}, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, ferrors.Wrap(ferrors.IoError, err, "creating debug trace file")
	}
	return &syncWriter{w: f}, f.Close, nil
}
