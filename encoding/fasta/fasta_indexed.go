package fasta

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// faiEntry is one line of a .fai index: the sequence length, the byte offset
// of its first base, and the line geometry needed to skip newlines.
type faiEntry struct {
	length    uint64
	offset    uint64
	lineBases uint64 // bases per full line
	lineBytes uint64 // bytes per full line, newline included
}

// indexedFasta resolves Get calls by seeking into the FASTA file, so only the
// requested bases are ever held in memory.
type indexedFasta struct {
	entries  map[string]faiEntry
	seqNames []string

	mu      sync.Mutex
	r       io.ReadSeeker
	window  []byte // file bytes starting at windowOff
	winOff  int64
	baseBuf []byte // newline-stripped result under construction
}

func parseFaiLine(line string) (name string, ent faiEntry, err error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return "", faiEntry{}, errors.Errorf("malformed index line: %q", line)
	}
	name = fields[0]
	for i, dst := range []*uint64{&ent.length, &ent.offset, &ent.lineBases, &ent.lineBytes} {
		if *dst, err = strconv.ParseUint(fields[i+1], 10, 64); err != nil {
			return "", faiEntry{}, errors.Wrapf(err, "malformed index line: %q", line)
		}
	}
	return name, ent, nil
}

// NewIndexed creates a Fasta backed by the given FASTA data and its .fai
// index.  The data is read lazily, per Get call.
func NewIndexed(fasta io.ReadSeeker, index io.Reader) (Fasta, error) {
	f := &indexedFasta{entries: make(map[string]faiEntry), r: fasta}
	scanner := bufio.NewScanner(index)
	for scanner.Scan() {
		name, ent, err := parseFaiLine(scanner.Text())
		if err != nil {
			return nil, err
		}
		f.entries[name] = ent
		f.seqNames = append(f.seqNames, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(f.seqNames, func(i, j int) bool {
		return f.entries[f.seqNames[i]].offset < f.entries[f.seqNames[j]].offset
	})
	return f, nil
}

// FaiToReferenceLengths reads a .fai index and returns sequence name ->
// length, without touching the FASTA data itself.
func FaiToReferenceLengths(index io.Reader) (map[string]uint64, error) {
	fa, err := NewIndexed(nil, index)
	if err != nil {
		return nil, err
	}
	lengths := make(map[string]uint64)
	for _, name := range fa.SeqNames() {
		n, err := fa.Len(name)
		if err != nil {
			return nil, err
		}
		lengths[name] = n
	}
	return lengths, nil
}

func (f *indexedFasta) Len(seqName string) (uint64, error) {
	ent, ok := f.entries[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found in index: %s", seqName)
	}
	return ent.length, nil
}

// fileRange returns file bytes [off, off+n), refilling the cached window on a
// miss.  Callers must hold f.mu.
func (f *indexedFasta) fileRange(off int64, n int) ([]byte, error) {
	limit := off + int64(n)
	if off < f.winOff || limit > f.winOff+int64(len(f.window)) {
		if pos, err := f.r.Seek(off, io.SeekStart); err != nil || pos != off {
			return nil, errors.Errorf("seek to offset %d failed: %d, %v", off, pos, err)
		}
		want := n
		if want < 8192 {
			want = 8192
		}
		if cap(f.window) < want {
			f.window = make([]byte, want)
		}
		got, err := f.r.Read(f.window[:want])
		if got < n {
			return nil, errors.New("unexpected end of FASTA data (stale index, or missing final newline?)")
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		f.winOff = off
		f.window = f.window[:got]
	}
	return f.window[off-f.winOff : limit-f.winOff], nil
}

func (f *indexedFasta) Get(seqName string, start, end uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if end <= start {
		return "", errors.New("start must be less than end")
	}
	ent, ok := f.entries[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found in index: %s", seqName)
	}
	if end > ent.length {
		return "", errors.Errorf("end is past end of sequence %s: %d", seqName, ent.length)
	}

	// Map base coordinates onto file bytes, accounting for the newline bytes
	// interleaved every lineBases bases.
	sepBytes := ent.lineBytes - ent.lineBases
	byteOff := ent.offset + start + sepBytes*(start/ent.lineBases)
	basesOnFirstLine := ent.lineBases - start%ent.lineBases
	newlines := uint64(0)
	if end-start > basesOnFirstLine {
		newlines = 1 + (end-start-basesOnFirstLine)/ent.lineBases
	}
	raw, err := f.fileRange(int64(byteOff), int(end-start+newlines*sepBytes))
	if err != nil && err != io.EOF {
		return "", err
	}

	// Strip the newline bytes.
	if cap(f.baseBuf) < int(end-start) {
		f.baseBuf = make([]byte, end-start)
	}
	f.baseBuf = f.baseBuf[:end-start]
	linePos := (byteOff - ent.offset) % ent.lineBytes
	nBases := 0
	for _, c := range raw {
		if linePos < ent.lineBases {
			f.baseBuf[nBases] = c
			nBases++
		}
		if linePos++; linePos == ent.lineBytes {
			linePos = 0
		}
	}
	return string(f.baseBuf), nil
}

func (f *indexedFasta) SeqNames() []string {
	return f.seqNames
}
