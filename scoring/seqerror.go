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
	"gonum.org/v1/gonum/mathext"
)

// SequencingErrorProb returns a p-value for the hypothesis that an allele's
// observations were generated purely by sequencing error, modeled as a
// Poisson process with rate totalCount * errorRate(expectedQscore).
//
// alleleCount is the observation count of the allele in question, totalCount
// the observation count of all alleles, and expectedQscore approximates the
// (phred-scaled) error probability shared by all observations.
//
// An alleleCount of 0 is fully explained by chance and returns 1.
func SequencingErrorProb(alleleCount, totalCount int, expectedQscore int) float64 {
	if alleleCount == 0 {
		return 1.0
	}

	expectedErrorRate := PhredToErrorProb(expectedQscore)

	// Expected error count assuming no variant allele is present (the Poisson
	// lambda parameter).
	expectedErrorCount := float64(totalCount) * expectedErrorRate

	// The regularized incomplete gamma function P(k, lambda) is the complement
	// Poisson CDF, i.e. the probability of k or more error observations.
	return mathext.GammaIncReg(float64(alleleCount), expectedErrorCount)
}

// SequencingErrorQscore phred-scales SequencingErrorProb, clamped to
// maxQscore.  A probability that underflows to 0 or below also clamps to
// maxQscore.
func SequencingErrorQscore(alleleCount, totalCount int, expectedQscore, maxQscore int) int {
	errorProb := SequencingErrorProb(alleleCount, totalCount, expectedQscore)
	if errorProb <= 0 {
		return maxQscore
	}
	if qscore := ErrorProbToPhred(errorProb); qscore < maxQscore {
		return qscore
	}
	return maxQscore
}
