package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// GenerateIndex writes a .fai index for the FASTA data read from in.  The
// output follows the "samtools faidx" format
// (http://www.htslib.org/doc/faidx.html) and can be handed to NewIndexed.
func GenerateIndex(out io.Writer, in io.Reader) (err error) {
	setErr := func(e error) {
		if e != nil && err == nil {
			err = e
		}
	}
	var (
		w    = tsv.NewWriter(out)
		r    = bufio.NewReader(in)
		name string
		ent  faiEntry
		off  int64 // bytes consumed so far
	)
	emit := func() {
		w.WriteString(name)
		w.WriteInt64(int64(ent.length))
		w.WriteInt64(int64(ent.offset))
		w.WriteInt64(int64(ent.lineBases))
		w.WriteInt64(int64(ent.lineBytes))
		setErr(w.EndLine())
	}
	for eof := false; !eof && err == nil; {
		raw, e := r.ReadBytes('\n')
		if e == io.EOF { // raw still holds the final unterminated line
			eof = true
		} else {
			setErr(e)
		}
		off += int64(len(raw))
		line := bytes.TrimRight(raw, "\r\n")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if ent.lineBytes != 0 {
				if name == "" { // bases preceded the first header
					setErr(errors.E("malformed FASTA file"))
				}
				emit()
			}
			name = strings.SplitN(string(line[1:]), " ", 2)[0]
			ent = faiEntry{offset: uint64(off)}
			continue
		}
		if ent.lineBytes == 0 {
			ent.lineBytes = uint64(len(raw))
			ent.lineBases = uint64(len(line))
		}
		ent.length += uint64(len(line))
	}
	emit()
	setErr(w.Flush())
	if off == 0 {
		setErr(errors.E("empty FASTA file"))
	}
	return
}
