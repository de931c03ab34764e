package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Weeks-UNC/shapemapper2-core/align"
	"github.com/Weeks-UNC/shapemapper2-core/mutation"
	"github.com/Weeks-UNC/shapemapper2-core/process"
)

func samLine(name string, flags uint16, pos int32, seq, qual, cigar, md string) string {
	return strings.Join([]string{
		name, strconv.Itoa(int(flags)), "chr1", strconv.Itoa(int(pos)), "60", cigar, "=",
		strconv.Itoa(int(pos)), "5", seq, qual, "MD:Z:" + md,
	}, "\t")
}

func TestScanRecordsMergesMatesByQName(t *testing.T) {
	input := strings.Join([]string{
		samLine("frag1", record1Flags(), 1, "ATGGA", "IIIII", "5M", "5"),
		samLine("frag1", record2Flags(), 1, "ATGGA", "IIIII", "5M", "5"),
	}, "\n") + "\n"

	pipeline := &process.Pipeline{Config: process.DefaultConfig()}
	var got []*mutation.Read
	err := scanRecords(strings.NewReader(input), false, align.Options{}, pipeline,
		func(r *mutation.Read) { got = append(got, r) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mutation.Merged, got[0].ReadType)
}

func record1Flags() uint16 { return 0x01 | 0x40 } // paired, first in pair
func record2Flags() uint16 { return 0x01 | 0x80 } // paired, second in pair

func TestScanRecordsUnpairedTreatsEachRecordIndependently(t *testing.T) {
	input := strings.Join([]string{
		samLine("frag1", record1Flags(), 1, "ATGGA", "IIIII", "5M", "5"),
		samLine("frag1", record2Flags(), 1, "ATGGA", "IIIII", "5M", "5"),
	}, "\n") + "\n"

	pipeline := &process.Pipeline{Config: process.DefaultConfig()}
	var got []*mutation.Read
	err := scanRecords(strings.NewReader(input), true, align.Options{}, pipeline,
		func(r *mutation.Read) { got = append(got, r) })
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.NotEqual(t, mutation.Merged, r.ReadType)
	}
}

func TestScanRecordsUnmatchedMateStillProcessedSingly(t *testing.T) {
	input := samLine("lonely", record1Flags(), 1, "ATGGA", "IIIII", "5M", "5") + "\n"

	pipeline := &process.Pipeline{Config: process.DefaultConfig()}
	var got []*mutation.Read
	err := scanRecords(strings.NewReader(input), false, align.Options{}, pipeline,
		func(r *mutation.Read) { got = append(got, r) })
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestScanRecordsPropagatesParseErrors(t *testing.T) {
	pipeline := &process.Pipeline{Config: process.DefaultConfig()}
	err := scanRecords(strings.NewReader("not\ta\tvalid\trecord\n"), true, align.Options{}, pipeline,
		func(r *mutation.Read) {})
	assert.Error(t, err)
}

func TestOpenInputDash(t *testing.T) {
	r, closeFn, err := openInput("-")
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, r)
}

func TestOpenInputPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.tsv")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0644))

	r, closeFn, err := openInput(path)
	require.NoError(t, err)
	defer closeFn()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestOpenInputGzipFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.tsv.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("compressed content\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	r, closeFn, err := openInput(path)
	require.NoError(t, err)
	defer closeFn()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "compressed content\n", string(data))
}

func TestOpenInputMissingFileErrors(t *testing.T) {
	_, _, err := openInput("/nonexistent/path/shapemap-core-test")
	assert.Error(t, err)
}

func TestOpenDebugTraceWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.log")

	w, closeFn, err := openDebugTrace(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("step=trimEnds id=r1 left=0 right=4 mutations=0\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "step=trimEnds")
}

func TestScanRecordsThreadsDebugTrace(t *testing.T) {
	input := samLine("frag1", record1Flags(), 1, "ATGGA", "IIIII", "5M", "5") + "\n"

	var buf bytes.Buffer
	cfg := process.DefaultConfig()
	cfg.DebugTrace = &buf
	pipeline := &process.Pipeline{Config: cfg}

	var got []*mutation.Read
	err := scanRecords(strings.NewReader(input), true, align.Options{}, pipeline,
		func(r *mutation.Read) { got = append(got, r) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, buf.String(), "step=trimEnds")
	assert.Contains(t, buf.String(), "step=qualityFilterAndAttribute")
}
