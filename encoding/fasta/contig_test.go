package fasta_test

import (
	"strings"
	"testing"

	"github.com/grailbio/germline/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestContigSubstring(t *testing.T) {
	fa, err := fasta.New(strings.NewReader(">chr1\nACGTACGT\nAA\n"))
	assert.NoError(t, err)
	c, err := fasta.NewContig(fa, "chr1")
	assert.NoError(t, err)

	expect.EQ(t, c.Name(), "chr1")
	expect.EQ(t, c.Len(), 10)
	expect.EQ(t, c.Substring(0, 4), "ACGT")
	expect.EQ(t, c.Substring(4, 6), "ACGTAA")
	expect.EQ(t, c.Substring(3, 0), "")

	// Left-of-contig lookups pad with N so an anchor base can always be
	// requested.
	expect.EQ(t, c.Substring(-1, 3), "NAC")
	expect.EQ(t, c.Substring(-2, 2), "NN")
}

func TestContigFromSeq(t *testing.T) {
	c := fasta.NewContigFromSeq("chrM", "GATTACA")
	expect.EQ(t, c.Substring(2, 4), "TTAC")
	expect.EQ(t, c.Len(), 7)
}
