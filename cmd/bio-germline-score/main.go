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

/*
bio-germline-score scores candidate germline SNVs from per-position
base/strand observation counts.  For every site with sufficient variant
support it reports a sequencing-error quality score, a strand-bias statistic,
the reference homopolymer context, and the resulting filter labels.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
)

var (
	bedPath       = flag.String("bed", defaultOpts.BedPath, "BED path restricting scoring to the covered regions; mutually exclusive with -region")
	region        = flag.String("region", defaultOpts.Region, "Restrict scoring to the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>; mutually exclusive with -bed")
	ploidyBedPath = flag.String("ploidy-bed", defaultOpts.PloidyBedPath, "4-column BED of expected copy-number regions; sites in zero-copy regions are filtered")
	minVarFrac    = flag.Float64("min-vf", defaultOpts.MinVarFrac, "Minimum variant allele fraction for a site to be scored")
	minDepth      = flag.Int("min-depth", defaultOpts.MinDepth, "Sites with depth below this value get the LowDepth filter")
	minGQX        = flag.Int("min-gqx", defaultOpts.MinGQX, "Sites with quality score below this value get the LowGQX filter")
	maxSNVSB      = flag.Float64("max-snv-sb", defaultOpts.MaxSNVSB, "Sites with strand bias above this value get the HighSNVSB filter")
	maxSNVHpol    = flag.Int("max-snv-hpol", defaultOpts.MaxSNVHpol, "Sites inside homopolymers longer than this get the HighSNVHPOL filter; -1 disables")
	baseQual      = flag.Int("base-qual", defaultOpts.BaseQual, "Phred-scaled basecall error rate assumed by the sequencing-error model")
	maxQscore     = flag.Int("max-qscore", defaultOpts.MaxQscore, "Upper bound on reported quality scores")
	outPath       = flag.String("out", "bio-germline-score.tsv", "Output TSV path")
	parallelism   = flag.Int("parallelism", defaultOpts.Parallelism, "Maximum number of simultaneous scoring jobs; 0 = runtime.NumCPU()")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] basestrandpath fapath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	positionalArgs := flag.Args()
	if len(positionalArgs) != 2 {
		log.Fatalf("Exactly two positional arguments (basestrandpath and fapath) expected; please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
	}
	if *bedPath != "" && *region != "" {
		log.Fatalf("-bed and -region are mutually exclusive")
	}
	opts := scoreOpts{
		BedPath:       *bedPath,
		Region:        *region,
		PloidyBedPath: *ploidyBedPath,
		MinVarFrac:    *minVarFrac,
		MinDepth:      *minDepth,
		MinGQX:        *minGQX,
		MaxSNVSB:      *maxSNVSB,
		MaxSNVHpol:    *maxSNVHpol,
		BaseQual:      *baseQual,
		MaxQscore:     *maxQscore,
		Parallelism:   *parallelism,
	}
	if err := runScore(positionalArgs[0], positionalArgs[1], *outPath, &opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
