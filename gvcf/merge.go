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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MergeOverlapping combines two overlapping heterozygous indel locus records
// into one multi-allelic record.  Both inputs must carry exactly one alt
// allele; the inputs are not modified.
//
// The merged record anchors at a.Pos, renders both alleles against a shared
// extended reference sequence starting one base upstream (for VCF anchor
// compatibility), and re-accumulates the per-base haplotype dosage from both
// alleles' recomputed alignment paths.  Scalar confidence fields combine
// conservatively: the merged call is never more confident than its weaker
// constituent.
//
// Any dosage reaching 2 means the inputs were not simple hets on distinct
// haplotypes; this is an internal-consistency failure and aborts the run.
func MergeOverlapping(ref *fasta.Contig, a, b *IndelLocus) *IndelLocus {
	if len(a.Alleles) != 1 || len(b.Alleles) != 1 {
		log.Panicf("gvcf.MergeOverlapping: input loci must each have exactly one allele (got %d and %d)",
			len(a.Alleles), len(b.Alleles))
	}

	merged := &IndelLocus{
		Pos:       a.Pos,
		Alleles:   []AlleleInfo{a.Alleles[0], b.Alleles[0]},
		Het:       a.Het && b.Het,
		IsOverlap: true,
	}
	firstAllele := &merged.Alleles[0]
	overlapAllele := &merged.Alleles[1]

	indelEndPos := firstAllele.Key.RightPos()
	if rp := overlapAllele.Key.RightPos(); rp > indelEndPos {
		indelEndPos = rp
	}
	// One base upstream of the locus anchor, for VCF REF/ALT compatibility.
	indelBeginPos := merged.Pos - 1

	// The shared extended reference sequence is stored on the surviving
	// (first) allele only.
	firstAllele.Report.VcfRefSeq = ref.Substring(indelBeginPos, indelEndPos-indelBeginPos)

	merged.ploidy = make([]uint32, indelEndPos-merged.Pos)

	// Each call gets a possibly-empty leading fill on the front of its
	// haplotype and a possibly-empty trailing fill on the back.
	munge := func(callPos int, call *AlleleInfo) {
		// The leading sequence starts one base early for VCF compatibility and
		// stops one base short so it concatenates with the alt sequence.
		leadingSeq := ref.Substring(indelBeginPos, (callPos-indelBeginPos)-1)
		trailLen := indelEndPos - call.Key.RightPos()
		trailingSeq := ref.Substring(indelEndPos-trailLen, trailLen)

		call.Report.VcfIndelSeq = leadingSeq + call.Report.VcfIndelSeq + trailingSeq
		call.setHapCigar(len(leadingSeq)+1, len(trailingSeq))

		AddCigarToPloidy(call.Report.Cigar, merged.ploidy)
	}
	munge(a.Pos, firstAllele)
	munge(b.Pos, overlapAllele)

	// Only pairs of simple het indels on distinct haplotypes are merged, so
	// no position may be covered twice.
	for offset, pl := range merged.ploidy {
		if pl >= maxValidPloidy {
			log.Panicf("gvcf.MergeOverlapping: ploidy %d at offset %d contradicts het-haplotype model", pl, offset)
		}
	}

	// Reduce quality fields to the lowest of the pair.
	firstAllele.IndelQphred = minInt(firstAllele.IndelQphred, overlapAllele.IndelQphred)
	firstAllele.MaxGtQphred = minInt(firstAllele.MaxGtQphred, overlapAllele.MaxGtQphred)
	firstAllele.GQ = minInt(firstAllele.GQ, overlapAllele.GQ)
	firstAllele.GQX = minInt(firstAllele.GQX, overlapAllele.GQX)

	merged.Filters = a.Filters.Clone()
	merged.Filters.Merge(&b.Filters)
	merged.EVS = a.EVS.MinCombine(b.EVS)

	return merged
}
