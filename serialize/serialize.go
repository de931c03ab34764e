// Package serialize reads and writes the processed-mutation record format,
// the internal line-oriented wire format between process and scan
// (spec.md §6). Its writer follows the plain fmt.Fprintf-based TSV
// emission style of pileup/snp/output.go (deleted, see DESIGN.md); its
// reader mirrors record.Parse's field-count-then-convert shape.
package serialize

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Weeks-UNC/shapemapper2-core/ferrors"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
)

const fieldsPerMutation = 5

// WriteProcessed writes one processed Read as a single tab-separated line.
func WriteProcessed(w io.Writer, r *mutation.Read) error {
	var muts strings.Builder
	for i, m := range r.Mutations {
		if i > 0 {
			muts.WriteByte(' ')
		}
		fmt.Fprintf(&muts, "%d %d %q %q %q", m.Left, m.Right, m.Seq, m.Qual, m.Tag.String())
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
		r.ReadType, r.ID, r.Left, r.Right, r.MappingCategory, r.PrimerPair,
		r.MappedDepth.String(), r.Depth.String(), r.Count.String(), muts.String())
	return err
}

// ReadProcessed parses one line written by WriteProcessed.
func ReadProcessed(line string) (*mutation.Read, error) {
	fields := strings.Split(strings.TrimRight(line, "\n"), "\t")
	if len(fields) < 10 {
		return nil, ferrors.New(ferrors.IncompleteRecord, "processed record has %d fields, need 10", len(fields))
	}
	readType, ok := mutation.ParseReadType(fields[0])
	if !ok {
		return nil, ferrors.New(ferrors.IncompleteRecord, "unknown read_type %q", fields[0])
	}
	left, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed left %q", fields[2])
	}
	right, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed right %q", fields[3])
	}
	mc, ok := mutation.ParseMappingCategory(fields[4])
	if !ok {
		return nil, ferrors.New(ferrors.IncompleteRecord, "unknown mapping_category %q", fields[4])
	}
	primerPair, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, ferrors.Wrap(ferrors.IncompleteRecord, err, "malformed primer_pair %q", fields[5])
	}

	r := &mutation.Read{
		ReadType:        readType,
		ID:              fields[1],
		Left:            int32(left),
		Right:           int32(right),
		MappingCategory: mc,
		PrimerPair:      primerPair,
		MappedDepth:     mutation.ParseBits(fields[6]),
		Depth:           mutation.ParseBits(fields[7]),
		Count:           mutation.ParseBits(fields[8]),
	}

	muts, err := parseMutations(fields[9])
	if err != nil {
		return nil, err
	}
	r.Mutations = muts
	return r, nil
}

func parseMutations(s string) ([]mutation.Mutation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	tokens, err := splitQuotedFields(s)
	if err != nil {
		return nil, err
	}
	if len(tokens)%fieldsPerMutation != 0 {
		return nil, ferrors.New(ferrors.FieldsSizeException, "mutation field count %d not a multiple of %d", len(tokens), fieldsPerMutation)
	}
	var out []mutation.Mutation
	for i := 0; i < len(tokens); i += fieldsPerMutation {
		left, err := strconv.ParseInt(tokens[i], 10, 32)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.FieldsSizeException, err, "malformed mutation left %q", tokens[i])
		}
		right, err := strconv.ParseInt(tokens[i+1], 10, 32)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.FieldsSizeException, err, "malformed mutation right %q", tokens[i+1])
		}
		tag, _ := mutation.ParseClass(tokens[i+4])
		out = append(out, mutation.Mutation{
			Left:  int32(left),
			Right: int32(right),
			Seq:   tokens[i+2],
			Qual:  tokens[i+3],
			Tag:   tag,
		})
	}
	return out, nil
}

// splitQuotedFields splits a space-separated sequence of tokens, some of
// which are quoted with %q (and may therefore contain escaped characters),
// into the plain numeric tokens and unquoted string tokens.
func splitQuotedFields(s string) ([]string, error) {
	var out []string
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '"' {
			j := i + 1
			for j < len(s) {
				if s[j] == '\\' {
					j += 2
					continue
				}
				if s[j] == '"' {
					break
				}
				j++
			}
			if j >= len(s) {
				return nil, ferrors.New(ferrors.FieldsSizeException, "unterminated quoted field in %q", s)
			}
			unquoted, err := strconv.Unquote(s[i : j+1])
			if err != nil {
				return nil, ferrors.Wrap(ferrors.FieldsSizeException, err, "malformed quoted field %q", s[i:j+1])
			}
			out = append(out, unquoted)
			i = j + 1
			continue
		}
		j := i
		for j < len(s) && s[j] != ' ' {
			j++
		}
		out = append(out, s[i:j])
		i = j
	}
	return out, nil
}
