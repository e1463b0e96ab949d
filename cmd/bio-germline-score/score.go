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
package main

import (
	"io"
	"runtime"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/germline/encoding/fasta"
	"github.com/grailbio/germline/gvcf"
	"github.com/grailbio/germline/interval"
	"github.com/grailbio/germline/pileup"
	"github.com/grailbio/germline/ploidy"
	"github.com/grailbio/germline/scoring"
)

type scoreOpts struct {
	BedPath       string
	Region        string
	PloidyBedPath string
	MinVarFrac    float64
	MinDepth      int
	MinGQX        int
	MaxSNVSB      float64
	MaxSNVHpol    int
	BaseQual      int
	MaxQscore     int
	Parallelism   int
}

var defaultOpts = scoreOpts{
	MinVarFrac: 0.01,
	MinDepth:   3,
	MinGQX:     15,
	MaxSNVSB:   10,
	MaxSNVHpol: -1,
	BaseQual:   30,
	MaxQscore:  40,
}

// scoredSite is one output row.
type scoredSite struct {
	chrom      string
	pos        int64 // one-based, as in the input
	refBase    byte  // ASCII
	altBase    byte  // ASCII
	depth      int64
	refCount   int64
	altCount   int64
	qscore     int
	strandBias float64
	hpol       int
	filters    gvcf.FilterKeeper
}

// scoreRow evaluates one pileup row, returning false when the row holds no
// scorable variant.  ref may be nil when no reference sequence is available
// for the chromosome; homopolymer context is then skipped.
func scoreRow(row *pileup.BaseStrandRow, ref *fasta.Contig, regions *ploidy.Regions, opts *scoreOpts) (scoredSite, bool) {
	refBase := row.RefBase()
	if refBase == pileup.BaseX {
		return scoredSite{}, false
	}
	depth := row.Depth()
	if depth == 0 {
		return scoredSite{}, false
	}

	// The dominant non-reference allele is the SNV candidate.
	altBase := byte(pileup.BaseX)
	altCount := int64(0)
	for base := byte(0); base < pileup.NBase; base++ {
		if base == refBase {
			continue
		}
		if count := row.Count(base); count > altCount {
			altBase = base
			altCount = count
		}
	}
	if altBase == pileup.BaseX {
		return scoredSite{}, false
	}
	if float64(altCount) < opts.MinVarFrac*float64(depth) {
		return scoredSite{}, false
	}

	site := scoredSite{
		chrom:    row.Chr,
		pos:      row.Pos,
		refBase:  pileup.EnumToASCIITable[refBase],
		altBase:  pileup.EnumToASCIITable[altBase],
		depth:    depth,
		refCount: row.Count(refBase),
		altCount: altCount,
	}

	site.qscore = scoring.SequencingErrorQscore(int(altCount), int(depth), opts.BaseQual, opts.MaxQscore)
	site.strandBias = scoring.StrandBias(
		int(row.Fwd(altBase)), int(row.Rev(altBase)),
		int(row.Fwd(refBase)), int(row.Rev(refBase)))
	if ref != nil {
		pos0 := int(row.Pos - 1)
		if got := ref.Substring(pos0, 1); got[0] != site.refBase && got[0] != 'N' {
			log.Panicf("bio-germline-score: REF mismatch at %s:%d: pileup %c, reference %c",
				row.Chr, row.Pos, site.refBase, got[0])
		}
		site.hpol = snvHpolSize(ref, pos0)
	}

	if int(depth) < opts.MinDepth {
		site.filters.Set(gvcf.FilterLowDepth)
	}
	if site.qscore < opts.MinGQX {
		site.filters.Set(gvcf.FilterLowGQX)
	}
	if site.strandBias > opts.MaxSNVSB {
		site.filters.Set(gvcf.FilterHighSNVSB)
	}
	if opts.MaxSNVHpol >= 0 && site.hpol > opts.MaxSNVHpol {
		site.filters.Set(gvcf.FilterHighSNVHPOL)
	}
	if regions != nil {
		if pl, ok := regions.PloidyAt(row.Chr, int(row.Pos-1)); ok && pl == 0 {
			site.filters.Set(gvcf.FilterPloidyConflict)
		}
	}
	return site, true
}

// snvHpolSize returns the length of the longest homopolymer through pos0,
// treating the site itself as matching either neighboring run.
func snvHpolSize(ref *fasta.Contig, pos0 int) int {
	var upBase, dnBase byte
	upCount, dnCount := 0, 0
	if pos0 > 0 {
		upBase = ref.Substring(pos0-1, 1)[0]
		for i := pos0 - 1; i >= 0 && ref.Substring(i, 1)[0] == upBase; i-- {
			upCount++
		}
	}
	if pos0+1 < ref.Len() {
		dnBase = ref.Substring(pos0+1, 1)[0]
		for i := pos0 + 1; i < ref.Len() && ref.Substring(i, 1)[0] == dnBase; i++ {
			dnCount++
		}
	}
	if upCount > 0 && upBase == dnBase {
		return upCount + dnCount + 1
	}
	if dnCount > upCount {
		return dnCount + 1
	}
	return upCount + 1
}

// regionFilter builds the calling-region restriction, if any.
func regionFilter(opts *scoreOpts) (interval.BEDUnion, bool, error) {
	if opts.BedPath != "" {
		u, err := interval.NewBEDUnionFromPath(opts.BedPath, interval.NewBEDOpts{})
		return u, true, err
	}
	if opts.Region != "" {
		entry, err := interval.ParseRegionString(opts.Region)
		if err != nil {
			return interval.BEDUnion{}, false, err
		}
		u, err := interval.NewBEDUnionFromEntries([]interval.Entry{entry}, interval.NewBEDOpts{})
		return u, true, err
	}
	return interval.BEDUnion{}, false, nil
}

func runScore(basestrandPath, faPath, outPath string, opts *scoreOpts) error {
	ctx := vcontext.Background()

	faFile, err := file.Open(ctx, faPath)
	if err != nil {
		return err
	}
	fa, err := fasta.New(faFile.Reader(ctx))
	if cerr := faFile.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	inFile, err := file.Open(ctx, basestrandPath)
	if err != nil {
		return err
	}
	rows, err := pileup.ReadBaseStrandTsv(inFile.Reader(ctx))
	if cerr := inFile.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	callingRegions, haveRegions, err := regionFilter(opts)
	if err != nil {
		return err
	}
	var regions *ploidy.Regions
	if opts.PloidyBedPath != "" {
		loaded, err := ploidy.ReadBedFromPath(opts.PloidyBedPath)
		if err != nil {
			return err
		}
		regions = &loaded
	}

	// Load every needed contig up front so the scoring jobs share immutable
	// state only.
	contigs := make(map[string]*fasta.Contig)
	for i := range rows {
		chrom := rows[i].Chr
		if _, loaded := contigs[chrom]; loaded {
			continue
		}
		contig, err := fasta.NewContig(fa, chrom)
		if err != nil {
			log.Printf("bio-germline-score: no reference sequence for %s; skipping homopolymer context", chrom)
			contig = nil
		}
		contigs[chrom] = contig
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(rows) {
		parallelism = 1
	}
	shardResults := make([][]scoredSite, parallelism)
	err = traverse.Each(parallelism, func(jobIdx int) error {
		shardStart := (len(rows) * jobIdx) / parallelism
		shardEnd := (len(rows) * (jobIdx + 1)) / parallelism
		callingShard := callingRegions.Clone()
		var result []scoredSite
		for i := shardStart; i < shardEnd; i++ {
			row := &rows[i]
			if haveRegions && !callingShard.Contains(row.Chr, interval.PosType(row.Pos-1)) {
				continue
			}
			if site, ok := scoreRow(row, contigs[row.Chr], regions, opts); ok {
				result = append(result, site)
			}
		}
		shardResults[jobIdx] = result
		return nil
	})
	if err != nil {
		return err
	}

	outFile, err := file.Create(ctx, outPath)
	if err != nil {
		return err
	}
	werr := writeScoredSites(shardResults, outFile.Writer(ctx))
	if cerr := outFile.Close(ctx); cerr != nil && werr == nil {
		werr = cerr
	}
	return werr
}

func writeScoredSites(shardResults [][]scoredSite, w io.Writer) error {
	outTSV := tsv.NewWriter(w)
	for _, col := range []string{
		"#CHROM", "POS", "REF", "ALT", "DP", "AD0", "AD1", "QSCORE", "SB", "HPOL", "FILTER",
	} {
		outTSV.WriteString(col)
	}
	if err := outTSV.EndLine(); err != nil {
		return err
	}
	for _, sites := range shardResults {
		for i := range sites {
			site := &sites[i]
			outTSV.WriteString(site.chrom)
			outTSV.WriteInt64(site.pos)
			outTSV.WriteString(string(site.refBase))
			outTSV.WriteString(string(site.altBase))
			outTSV.WriteInt64(site.depth)
			outTSV.WriteInt64(site.refCount)
			outTSV.WriteInt64(site.altCount)
			outTSV.WriteInt64(int64(site.qscore))
			outTSV.WriteFloat64(site.strandBias, 'g', 4)
			outTSV.WriteInt64(int64(site.hpol))
			outTSV.WriteString(site.filters.String())
			if err := outTSV.EndLine(); err != nil {
				return err
			}
		}
	}
	return outTSV.Flush()
}
