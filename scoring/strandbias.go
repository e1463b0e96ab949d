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
package scoring

import (
	"math"

	"github.com/grailbio/base/log"
	"gonum.org/v1/gonum/stat/distuv"
)

// strandErrorRate is the fixed background error rate assumed for the strand
// hypothesized to carry no variant.
const strandErrorRate = 0.005

// binomialLogDensity returns log P(successes | trials, successProb).  Zero
// trials contribute 0 (a neutral term), not an error.
func binomialLogDensity(trials, successes int, successProb float64) float64 {
	if successProb < 0 || successProb > 1 {
		log.Panicf("scoring.binomialLogDensity: success probability %v out of range", successProb)
	}
	if successes > trials {
		log.Panicf("scoring.binomialLogDensity: %d successes exceed %d trials", successes, trials)
	}
	if trials == 0 {
		return 0
	}
	// Degenerate distributions put all mass on one outcome.  distuv.Binomial
	// computes 0*log(0) = NaN here, and a per-strand alt frequency of exactly
	// 0 or 1 is routine input.
	if successProb == 0 {
		if successes == 0 {
			return 0
		}
		return math.Inf(-1)
	}
	if successProb == 1 {
		if successes == trials {
			return 0
		}
		return math.Inf(-1)
	}
	dist := distuv.Binomial{N: float64(trials), P: successProb}
	return dist.LogProb(float64(successes))
}

// StrandBias is a log-likelihood-ratio test for the variant allele frequency
// differing between strands.  The null model pools both strands into a single
// allele frequency; the alternative is the better of "forward strand carries
// the variant, reverse is background error" and its mirror image.  Large
// positive values indicate a likely strand artifact.  Zero total observations
// return 0.
func StrandBias(fwdAlt, revAlt, fwdOther, revOther int) float64 {
	fwdTotal := fwdAlt + fwdOther
	revTotal := revAlt + revOther
	total := fwdTotal + revTotal
	if total == 0 {
		return 0
	}

	fwdAltFreq := SafeFrac(float64(fwdAlt), float64(fwdTotal))
	revAltFreq := SafeFrac(float64(revAlt), float64(revTotal))
	altFreq := SafeFrac(float64(fwdAlt+revAlt), float64(total))

	fwdLnp := binomialLogDensity(fwdTotal, fwdAlt, fwdAltFreq) +
		binomialLogDensity(revTotal, revAlt, strandErrorRate)
	revLnp := binomialLogDensity(fwdTotal, fwdAlt, strandErrorRate) +
		binomialLogDensity(revTotal, revAlt, revAltFreq)
	lnp := binomialLogDensity(fwdTotal, fwdAlt, altFreq) +
		binomialLogDensity(revTotal, revAlt, altFreq)

	if fwdLnp > revLnp {
		return fwdLnp - lnp
	}
	return revLnp - lnp
}
