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
package scoring_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/germline/scoring"
	"github.com/grailbio/testutil/expect"
)

func TestFeatureSchemas(t *testing.T) {
	expect.EQ(t, scoring.GermlineSNVFeatures.Size(), 9)
	expect.EQ(t, scoring.GermlineSNVDevFeatures.Size(), 13)
	expect.EQ(t, scoring.RNASNVFeatures.Size(), 15)
	expect.EQ(t, scoring.RNASNVDevFeatures.Size(), 12)

	// Spot-check label positions the model files depend on.
	expect.EQ(t, scoring.GermlineSNVFeatures.Labels[scoring.SNVGeno], "GENO")
	expect.EQ(t, scoring.GermlineSNVFeatures.Labels[scoring.SNVGQXExact], "F_GQX_EXACT")
	expect.EQ(t, scoring.RNASNVFeatures.Labels[scoring.RNASNVAlleleDepthRatio], "ADR")
}

func TestFeaturesSetVal(t *testing.T) {
	f := scoring.NewFeatures(scoring.GermlineSNVFeatures)
	expect.False(t, f.IsComplete())

	f.Set(scoring.SNVGeno, 1)
	f.Set(scoring.SNVHpol, 4)
	expect.EQ(t, f.Val(scoring.SNVGeno), 1.0)
	expect.EQ(t, f.Val(scoring.SNVHpol), 4.0)
	expect.False(t, f.IsComplete())

	// Double-set is an extractor bug.
	expect.True(t, panics(func() { f.Set(scoring.SNVGeno, 2) }))
	// So is reading an unset feature.
	expect.True(t, panics(func() { f.Val(scoring.SNVStrandBias) }))

	for i := 0; i < scoring.GermlineSNVFeatures.Size(); i++ {
		if i != scoring.SNVGeno && i != scoring.SNVHpol {
			f.Set(i, float64(i))
		}
	}
	expect.True(t, f.IsComplete())
}

func TestFeaturesWriteTSV(t *testing.T) {
	f := scoring.NewFeatures(scoring.GermlineSNVFeatures)
	for i := 0; i < scoring.GermlineSNVFeatures.Size(); i++ {
		f.Set(i, float64(i)/2)
	}
	var buf bytes.Buffer
	w := tsv.NewWriter(&buf)
	f.WriteTSV(w)
	expect.NoError(t, w.EndLine())
	expect.NoError(t, w.Flush())

	cols := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	expect.EQ(t, len(cols), scoring.GermlineSNVFeatures.Size())
	expect.EQ(t, cols[0], "0")
	expect.EQ(t, cols[1], "0.5")

	// Writing an incomplete vector is an extractor bug.
	g := scoring.NewFeatures(scoring.GermlineSNVFeatures)
	g.Set(scoring.SNVGeno, 1)
	expect.True(t, panics(func() {
		var b bytes.Buffer
		g.WriteTSV(tsv.NewWriter(&b))
	}))
}

func TestAlleleBias(t *testing.T) {
	// Balanced observations show no bias; the two-sided score stays small.
	_, balanced := scoring.AlleleBias(20, 20)
	expect.LE(t, balanced, 1.0)

	// Heavy imbalance against the first allele drives both scores up.
	lower, twoSided := scoring.AlleleBias(5, 35)
	expect.GE(t, twoSided, 5.0)
	expect.GE(t, lower, 5.0)

	// Imbalance favoring the first allele leaves the lower-tail score near 0,
	// but the two-sided score keys on the smaller tail and still fires.
	lower, twoSided = scoring.AlleleBias(35, 5)
	expect.LE(t, lower, 0.1)
	expect.GE(t, twoSided, 5.0)

	// The two-sided score is symmetric in its arguments.
	_, ab := scoring.AlleleBias(30, 10)
	_, ba := scoring.AlleleBias(10, 30)
	expect.EQ(t, ab, ba)
}

func panics(fn func()) (panicked bool) {
	defer func() {
		if recover() != nil {
			panicked = true
		}
	}()
	fn()
	return false
}
