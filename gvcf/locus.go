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
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/germline/pileup"
	"github.com/grailbio/germline/scoring"
	"github.com/grailbio/hts/sam"
)

// maxValidPloidy is the exclusive upper bound on per-base haplotype dosage.
// Only pairs of simple heterozygous indels on distinct haplotypes may be
// merged, so no reference base may ever be covered by two merged calls.
const maxValidPloidy = 2

// Score is an optional empirical variant score.  The zero value is unset.
// It replaces the -1 magic value used by some callers' serialized formats.
type Score struct {
	val   int
	valid bool
}

// NewScore returns a set Score.
func NewScore(val int) Score {
	return Score{val: val, valid: true}
}

// Get returns the score value and whether it has been set.
func (s Score) Get() (int, bool) { return s.val, s.valid }

// IsSet reports whether the score has been set.
func (s Score) IsSet() bool { return s.valid }

// MinCombine merges two optional scores, treating unset as the identity:
// if exactly one side is set the result is that side; if both are set the
// result is the minimum; if neither is set the result is unset.
func (s Score) MinCombine(other Score) Score {
	if !s.valid {
		return other
	}
	if !other.valid {
		return s
	}
	if other.val < s.val {
		return other
	}
	return s
}

// IndelKey identifies an indel by its reference coordinates and inserted
// sequence.  Pos is the zero-based reference position of the first changed
// base; the VCF anchor base sits one position left of it.
type IndelKey struct {
	Pos          int
	DeleteLength int
	InsertSeq    string
}

// RightPos returns the first reference position right of the indel.
func (k IndelKey) RightPos() int { return k.Pos + k.DeleteLength }

// ReportInfo holds the VCF-ready rendering of one indel allele: the
// reference and alt sequences as they will appear in the REF/ALT columns,
// and the allele's haplotype-relative alignment path.
type ReportInfo struct {
	VcfRefSeq   string
	VcfIndelSeq string
	Cigar       sam.Cigar
}

// AlleleInfo describes one alt allele of an indel locus.  It is owned by its
// parent IndelLocus and has no independent lifetime.
type AlleleInfo struct {
	Key    IndelKey
	Report ReportInfo

	// Quality fields, all phred-scaled.
	IndelQphred int
	MaxGtQphred int
	GQ          int
	GQX         int
}

// setHapCigar rebuilds the haplotype-relative alignment path for this allele
// with the given flanking match lengths: M(lead) [I(insert)] [D(delete)]
// [M(trail)].
func (a *AlleleInfo) setHapCigar(leadSize, trailSize int) {
	cigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, leadSize)}
	if len(a.Key.InsertSeq) > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarInsertion, len(a.Key.InsertSeq)))
	}
	if a.Key.DeleteLength > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarDeletion, a.Key.DeleteLength))
	}
	if trailSize > 0 {
		cigar = append(cigar, sam.NewCigarOp(sam.CigarMatch, trailSize))
	}
	a.Report.Cigar = cigar
}

// IndelLocus is a germline diploid indel call record.  It normally carries a
// single alt allele; after an overlap merge it carries two, in insertion
// order (original first, merged-in second).
type IndelLocus struct {
	// Pos is the zero-based anchor position of the locus.
	Pos     int
	Alleles []AlleleInfo

	Filters FilterKeeper
	// EVS is the empirical variant score, when a scoring model has run.
	EVS Score
	// Het records whether the locus was called as a simple heterozygote;
	// only simple hets are candidates for overlap merging.
	Het bool
	// IsOverlap is set when this record is the product of an overlap merge.
	IsOverlap bool

	// ploidy[i] counts the haplotypes covering reference position Pos+i among
	// the calls merged into this record.
	ploidy []uint32
}

// NewIndelLocus returns a single-allele indel locus record with its dosage
// array sized to the allele's reference span.
func NewIndelLocus(pos int, allele AlleleInfo, het bool) *IndelLocus {
	li := &IndelLocus{
		Pos:     pos,
		Alleles: []AlleleInfo{allele},
		Het:     het,
	}
	if span := li.End() - pos; span > 0 {
		li.ploidy = make([]uint32, span)
	}
	return li
}

// End returns the maximum right reference position across all alt alleles.
func (li *IndelLocus) End() int {
	end := 0
	for i := range li.Alleles {
		if rp := li.Alleles[i].Key.RightPos(); rp > end {
			end = rp
		}
	}
	return end
}

// PloidyAt returns the haplotype dosage at the given offset from Pos.  An
// offset outside the computed region indicates a modeling contradiction
// upstream and aborts the run.
func (li *IndelLocus) PloidyAt(offset int) int {
	if offset < 0 || offset >= len(li.ploidy) {
		log.Panicf("gvcf.IndelLocus.PloidyAt: offset '%d' exceeds ploidy region size '%d'", offset, len(li.ploidy))
	}
	return int(li.ploidy[offset])
}

// String renders a compact debugging summary.
func (li *IndelLocus) String() string {
	return fmt.Sprintf("indel pos: %d nAlleles: %d isOverlap: %v ploidy: %v",
		li.Pos+1, len(li.Alleles), li.IsOverlap, li.ploidy)
}

// DiploidGT is a called diploid genotype over the A/C/G/T base enumeration
// (pileup.BaseA..pileup.BaseT).
type DiploidGT struct {
	A0, A1 byte
}

// IsHet reports whether the two called alleles differ.
func (gt DiploidGT) IsHet() bool { return gt.A0 != gt.A1 }

// IsHetAlt reports whether the genotype carries two distinct non-reference
// alleles.
func (gt DiploidGT) IsHetAlt(refBase byte) bool {
	return gt.A0 != gt.A1 && gt.A0 != refBase && gt.A1 != refBase
}

// Carries reports whether the genotype includes the given base.
func (gt DiploidGT) Carries(base byte) bool {
	return gt.A0 == base || gt.A1 == base
}

// SiteLocus is a germline diploid SNV site record, together with the
// evidence aggregates needed for filtering and empirical scoring.  All
// aggregate fields are computed by the upstream pileup collaborator.
type SiteLocus struct {
	// Pos is the zero-based reference position.
	Pos int
	// RefBase is the reference base as a pileup base enum value.
	RefBase byte
	// GT is the called genotype.
	GT DiploidGT

	// SNVQphred is the phred-scaled probability that the site is non-variant.
	SNVQphred int
	GQ        int
	GQX       int

	// StrandBias is the scoring.StrandBias value for the called alt allele.
	StrandBias float64

	// Mapping-quality aggregates over all reads crossing the site.
	MapqRMS       float64
	MapqCount     int
	MapqZeroCount int

	// Basecall usage counts: calls used for genotyping vs filtered out.
	UsedCalls   int
	UnusedCalls int

	// Rank-sum statistics (alt vs ref).
	BaseQRankSum   float64
	MQRankSum      float64
	ReadPosRankSum float64

	// Hpol is the length of the longest homopolymer touching the site.
	Hpol int
	// AvgBaseQ and RawPos describe the alt-supporting basecalls: mean base
	// quality, and mean position within their reads.
	AvgBaseQ float64
	RawPos   float64

	// AlleleCounts is the per-base confident observation count.
	AlleleCounts [pileup.NBase]uint32

	Filters FilterKeeper
	EVS     Score

	// EVSFeatures and EVSDevFeatures are populated by
	// ComputeEmpiricalFeatures; the development set only on request.
	EVSFeatures    *scoring.Features
	EVSDevFeatures *scoring.Features
}

// AltBase returns the alt base of the called genotype: the highest base enum
// value carried by the genotype that differs from the reference (the second
// alt in the het-alt case).  Calling this on a hom-ref genotype indicates an
// upstream modeling error and aborts.
func (si *SiteLocus) AltBase() byte {
	alt := byte(pileup.NBase)
	for b := byte(0); b < pileup.NBase; b++ {
		if b == si.RefBase {
			continue
		}
		if si.GT.Carries(b) {
			alt = b
		}
	}
	if alt == pileup.NBase {
		log.Panicf("gvcf.SiteLocus.AltBase: no alt allele in genotype at pos %d", si.Pos)
	}
	return alt
}
