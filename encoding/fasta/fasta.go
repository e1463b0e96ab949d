// Package fasta provides access to reference sequences stored in FASTA
// format, either fully in memory or through a samtools-style .fai index
// (http://www.htslib.org/doc/faidx.html).  A FASTA file holds named
// sequences whose bases may be split across lines:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// A sequence name runs from the '>' to the first space; anything after the
// space is free-form description and is dropped, so ">chr1 assembled 2019"
// names the sequence "chr1".
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// scanBufSize bounds single-line length when slurping a FASTA file into
// memory.  Whole-chromosome lines occur in the wild.
const scanBufSize = 1024 * 1024 * 300

// Fasta is a set of named sequences.
type Fasta interface {
	// Get returns the bases of seqName in the 0-based half-open interval
	// [start, end).  Get is safe for concurrent use.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the number of bases in seqName.
	Len(seqName string) (uint64, error)

	// SeqNames returns all sequence names in file order.
	SeqNames() []string
}

// memFasta keeps every sequence in memory as one contiguous string.
type memFasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads all FASTA data from r into memory.  Use NewIndexed instead when
// the file is large and access is sparse.
func New(r io.Reader) (Fasta, error) {
	f := &memFasta{seqs: make(map[string]string)}
	var (
		name string
		seq  strings.Builder
	)
	flush := func() error {
		if seq.Len() == 0 {
			return nil
		}
		if name == "" {
			return errors.New("bases before the first sequence header")
		}
		f.seqs[name] = seq.String()
		f.seqNames = append(f.seqNames, name)
		seq.Reset()
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, scanBufSize)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case len(line) == 0:
		case line[0] == '>':
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.SplitN(line[1:], " ", 2)[0]
		default:
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading FASTA data")
	}
	f.seqs[name] = seq.String()
	f.seqNames = append(f.seqNames, name)
	return f, nil
}

func (f *memFasta) Get(seqName string, start, end uint64) (string, error) {
	seq, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", errors.New("start must be less than end")
	}
	if end > uint64(len(seq)) {
		return "", errors.Errorf("range [%d, %d) outside sequence %s of length %d",
			start, end, seqName, len(seq))
	}
	return seq[start:end], nil
}

func (f *memFasta) Len(seqName string) (uint64, error) {
	seq, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(seq)), nil
}

func (f *memFasta) SeqNames() []string {
	return f.seqNames
}
