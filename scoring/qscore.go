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
)

// This file contains phred-math routines shared by the error model and the
// feature extractor.

// PhredToErrorProb converts a phred-scaled quality score to an error
// probability.  Negative scores are treated as zero.
func PhredToErrorProb(qscore int) float64 {
	if qscore < 0 {
		qscore = 0
	}
	return math.Exp(float64(qscore) * (-0.1 * math.Ln10))
}

// ErrorProbToPhred converts an error probability in (0, 1] to the nearest
// integer phred-scaled quality score.  The result is never negative.
func ErrorProbToPhred(prob float64) int {
	qscore := int(math.Round(math.Log(prob) * (-10.0 * math.Log10E)))
	if qscore < 0 {
		qscore = 0
	}
	return qscore
}

// SafeFrac returns num/denom, or 0 when denom is 0.  Degenerate depth
// denominators are an expected condition, not an error.
func SafeFrac(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}
