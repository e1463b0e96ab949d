// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package gvcf

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/germline/encoding/fasta"
)

// Stream orders indel locus records for emission.  A locus cannot be
// finalized until the next locus is known not to overlap it, so Stream keeps
// a one-locus lookahead: each pushed record either merges into the buffered
// one, or flushes it to the emit callback.
//
// Push must be called in strictly increasing anchor-position order within a
// contig; violating that order is a fatal pipeline error.  Stream is not
// safe for concurrent use.
type Stream struct {
	ref     *fasta.Contig
	emit    func(*IndelLocus)
	pending *IndelLocus
	lastPos int
}

// NewStream returns a Stream that renders merges against ref and hands
// finalized records to emit.
func NewStream(ref *fasta.Contig, emit func(*IndelLocus)) *Stream {
	return &Stream{ref: ref, emit: emit, lastPos: -1}
}

// Push accepts the next indel locus in position order.
func (s *Stream) Push(li *IndelLocus) {
	if li.Pos <= s.lastPos {
		log.Panicf("gvcf.Stream.Push: locus at pos %d pushed after pos %d; input must be position-sorted", li.Pos, s.lastPos)
	}
	s.lastPos = li.Pos

	if s.pending == nil {
		s.pending = li
		return
	}
	if li.Pos > s.pending.End() {
		// No overlap possible; the buffered locus is final.
		s.emit(s.pending)
		s.pending = li
		return
	}

	// Overlap.  Two simple single-allele hets on distinct haplotypes merge
	// into one multi-allelic record; anything else (a third overlapping call,
	// or a hom constituent) cannot be represented and both records are
	// flagged instead.
	if s.pending.Het && li.Het && len(s.pending.Alleles) == 1 && len(li.Alleles) == 1 {
		s.pending = MergeOverlapping(s.ref, s.pending, li)
		return
	}
	s.pending.Filters.Set(FilterIndelConflict)
	li.Filters.Set(FilterIndelConflict)
	s.emit(s.pending)
	s.pending = li
}

// Flush emits any buffered locus.  Call once at end of input (or contig).
func (s *Stream) Flush() {
	if s.pending != nil {
		s.emit(s.pending)
		s.pending = nil
	}
	s.lastPos = -1
}
