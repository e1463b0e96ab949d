package fasta

import (
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// Contig is a position/length-addressed view of a single reference sequence,
// the form in which the variant-call core consumes the reference.  Lookups
// one base left of position 0 are tolerated (padded with 'N') so that
// VCF-style anchor bases can be requested at the very start of a contig.
type Contig struct {
	name string
	seq  string
}

// NewContig loads the named sequence from fa into memory.
func NewContig(fa Fasta, seqName string) (*Contig, error) {
	seqLen, err := fa.Len(seqName)
	if err != nil {
		return nil, err
	}
	seq, err := fa.Get(seqName, 0, seqLen)
	if err != nil {
		return nil, errors.Wrapf(err, "loading contig %s", seqName)
	}
	return &Contig{name: seqName, seq: seq}, nil
}

// NewContigFromSeq wraps an already-loaded sequence.
func NewContigFromSeq(seqName, seq string) *Contig {
	return &Contig{name: seqName, seq: seq}
}

// Name returns the contig name.
func (c *Contig) Name() string { return c.name }

// Len returns the contig length.
func (c *Contig) Len() int { return len(c.seq) }

// Substring returns length bases starting at the zero-based position pos.
// Positions left of the contig are rendered as 'N'; a range extending past
// the end of the contig is a caller bug and aborts.
func (c *Contig) Substring(pos, length int) string {
	if length < 0 {
		log.Panicf("fasta.Contig.Substring: negative length %d", length)
	}
	if length == 0 {
		return ""
	}
	pad := 0
	if pos < 0 {
		pad = -pos
		if pad > length {
			pad = length
		}
		pos = 0
		length -= pad
	}
	if pos+length > len(c.seq) {
		log.Panicf("fasta.Contig.Substring: range [%d, %d) exceeds contig %s length %d",
			pos, pos+length, c.name, len(c.seq))
	}
	if pad == 0 {
		return c.seq[pos : pos+length]
	}
	return strings.Repeat("N", pad) + c.seq[pos:pos+length]
}
