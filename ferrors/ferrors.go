// Package ferrors defines the fixed set of error kinds produced by the
// mutation-analysis core, grounded on the teacher's flat, funcName-prefixed
// fmt.Errorf convention (see pileup/snp/pileup.go in the retrieval pack) but
// promoted to a closed, inspectable enum so callers can decide per-kind
// propagation policy instead of string-matching.
package ferrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the fixed error categories the core can raise.
type Kind uint8

const (
	// IoError covers any file open/read/write failure, including empty input.
	IoError Kind = iota
	// IncompleteRecord is raised when a record has too few tab fields or no MD tag.
	IncompleteRecord
	// MalformedCigar is raised when a CIGAR string does not tokenize.
	MalformedCigar
	// MalformedMd is raised when an MD string does not tokenize.
	MalformedMd
	// MdCigarMismatch is raised when CIGAR and MD disagree on an M/=/X/D run.
	MdCigarMismatch
	// OutOfRangeMutation marks a mutation indexing outside the reconstructed
	// local reference. Recovered locally wherever it's raised: the mutation is
	// dropped, not fatal.
	OutOfRangeMutation
	// FieldsSizeException is raised when deserialized mutation fields aren't a
	// multiple of five.
	FieldsSizeException
	// NoMappedReads is raised at end of input with no included records; fatal
	// unless demoted to a warning.
	NoMappedReads
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "IoError"
	case IncompleteRecord:
		return "IncompleteRecord"
	case MalformedCigar:
		return "MalformedCigar"
	case MalformedMd:
		return "MalformedMd"
	case MdCigarMismatch:
		return "MdCigarMismatch"
	case OutOfRangeMutation:
		return "OutOfRangeMutation"
	case FieldsSizeException:
		return "FieldsSizeException"
	case NoMappedReads:
		return "NoMappedReads"
	default:
		return "UnknownError"
	}
}

// Error is a Kind plus an explanatory message and optional wrapped cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's category.
func (e *Error) Kind() Kind { return e.kind }

// New constructs a Kind-tagged error with no wrapped cause.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an existing error with a Kind and explanatory message, preserving
// it as the cause (via github.com/pkg/errors, already a transitive dependency
// of the teacher repo's grailbio/base tree).
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: errors.WithStack(err)}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	fe, ok := err.(*Error)
	return ok && fe.kind == kind
}
