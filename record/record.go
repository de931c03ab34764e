// Package record parses one line of the standard tab-separated alignment
// record format (spec.md §6): header lines are skipped by the caller before
// reaching Parse, and Parse itself tokenizes the eleven mandatory fields
// plus the extended MD tag. Field-splitting mirrors the count-then-convert
// shape of sam.Record.UnmarshalText in biogo/hts
// (_examples/biogo-hts/sam/record.go), generalized to this format's plain
// tab-separated text rather than a packed BAM record.
package record

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
)

// Flag bits used from the bitmask flags field (spec.md §6).
const (
	Paired       uint16 = 1 << 0
	ProperPair   uint16 = 1 << 1
	Unmapped     uint16 = 1 << 2
	MateUnmapped uint16 = 1 << 3
	Reverse      uint16 = 1 << 4
	MateReverse  uint16 = 1 << 5
	Read1        uint16 = 1 << 6
	Read2        uint16 = 1 << 7
)

// Raw is one parsed alignment record, prior to CIGAR/MD reconstruction.
type Raw struct {
	Name        string
	Flags       uint16
	RefName     string
	Pos         int32 // 1-based, as given on the wire
	MapQ        byte
	CigarStr    string
	MateRefName string
	MatePos     int32
	TemplateLen int32
	Seq         string
	Qual        string
	MD          string
	HasMD       bool
}

const minFields = 11

// Parse tokenizes one record line into a Raw. It fails with
// ferrors.IncompleteRecord if the line has fewer than 11 tab fields or lacks
// an MD:Z: tag (spec.md §4.1 Contracts).
func Parse(line string) (*Raw, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return nil, ferrors.New(ferrors.IncompleteRecord, "record has %d fields, need at least %d", len(fields), minFields)
	}
	flags64, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed flags field %q", fields[1])
	}
	pos64, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed pos field %q", fields[3])
	}
	mapq64, err := strconv.ParseUint(fields[4], 10, 8)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed mapq field %q", fields[4])
	}
	matePos64, err := strconv.ParseInt(fields[7], 10, 32)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed mate pos field %q", fields[7])
	}
	tlen64, err := strconv.ParseInt(fields[8], 10, 32)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed template-length field %q", fields[8])
	}

	raw := &Raw{
		Name:        fields[0],
		Flags:       uint16(flags64),
		RefName:     fields[2],
		Pos:         int32(pos64),
		MapQ:        byte(mapq64),
		CigarStr:    fields[5],
		MateRefName: fields[6],
		MatePos:     int32(matePos64),
		TemplateLen: int32(tlen64),
		Seq:         fields[9],
		Qual:        fields[10],
	}
	for _, tag := range fields[minFields:] {
		if strings.HasPrefix(tag, "MD:Z:") {
			raw.MD = tag[len("MD:Z:"):]
			raw.HasMD = true
			break
		}
	}
	if raw.RefName != "*" && !raw.HasMD {
		return nil, ferrors.New(ferrors.IncompleteRecord, "record %s: missing MD:Z tag", raw.Name)
	}
	return raw, nil
}

// IsUnmapped reports whether this record carries no alignment.
func (r *Raw) IsUnmapped() bool {
	return r.RefName == "*" || r.Flags&Unmapped != 0
}

// Scanner reads alignment records from a stream, skipping '@'-prefixed
// header lines, matching the header-skip idiom used throughout the pack for
// line-oriented genomics formats (e.g. interval.NewBEDUnionFromPath's
// '>'-prefixed skip in _examples/grailbio-bio/interval/bedunion.go).
type Scanner struct {
	sc  *bufio.Scanner
	raw *Raw
	err error
}

// NewScanner returns a Scanner over r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Scanner{sc: sc}
}

// Scan advances to the next non-header record. It returns false at EOF or on
// a parse error; callers must check Err afterward.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		line := s.sc.Text()
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		raw, err := Parse(line)
		if err != nil {
			s.err = err
			return false
		}
		s.raw = raw
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = ferrors.Wrap(ferrors.IoError, err, "reading alignment stream")
	}
	return false
}

// Record returns the most recently scanned record.
func (s *Scanner) Record() *Raw { return s.raw }

// Err returns the first error encountered, if any.
func (s *Scanner) Err() error { return s.err }
