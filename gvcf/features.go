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
	"github.com/grailbio/germline/scoring"
)

// FeatureOpts selects the schema and scope of empirical feature extraction.
type FeatureOpts struct {
	// IsRNA selects the RNA schemas instead of the germline-DNA schemas.
	IsRNA bool
	// IsUniformDepthExpected is false for exome/targeted runs, where relative
	// locus depth carries no signal.
	IsUniformDepthExpected bool
	// ComputeDevFeatures additionally populates the experimental feature set.
	ComputeDevFeatures bool
	// ChromDepth is the expected sequencing depth for the chromosome.
	ChromDepth float64
}

// ComputeEmpiricalFeatures populates the locus's EVS feature vector (and
// optionally its development vector) from the locus aggregates.  Depth
// normalization is feature-specific: each feature divides by the chromosome
// expectation, the filtered local depth, or the raw local depth as its
// schema prescribes.
func (si *SiteLocus) ComputeEmpiricalFeatures(opts FeatureOpts) {
	chromDepthFactor := scoring.SafeFrac(1, opts.ChromDepth)

	filteredLocusDepth := float64(si.UsedCalls)
	locusDepth := float64(si.MapqCount)

	filteredLocusDepthFactor := scoring.SafeFrac(1, filteredLocusDepth)
	locusDepthFactor := scoring.SafeFrac(1, locusDepth)

	altBase := si.AltBase()
	r0 := float64(si.AlleleCounts[si.RefBase])
	r1 := float64(si.AlleleCounts[altBase])

	mapqZeroFraction := scoring.SafeFrac(float64(si.MapqZeroCount), float64(si.MapqCount))
	locusUsedDepthFraction := filteredLocusDepth * locusDepthFactor

	if opts.IsRNA {
		si.computeRNAFeatures(opts, chromDepthFactor, filteredLocusDepthFactor,
			locusUsedDepthFraction, mapqZeroFraction, r0, r1)
		return
	}
	si.computeGermlineFeatures(opts, chromDepthFactor, filteredLocusDepthFactor,
		locusDepthFactor, locusDepth, locusUsedDepthFraction, mapqZeroFraction, r0, r1)
}

func (si *SiteLocus) computeGermlineFeatures(
	opts FeatureOpts,
	chromDepthFactor, filteredLocusDepthFactor, locusDepthFactor float64,
	locusDepth, locusUsedDepthFraction, mapqZeroFraction, r0, r1 float64) {
	features := scoring.NewFeatures(scoring.GermlineSNVFeatures)
	si.EVSFeatures = features

	// Genotype ordinal for the DNA schema: simple het = 0, hom = 1,
	// het-alt (two distinct non-ref alleles) = 2.
	genotype := 0.0
	if si.GT.IsHetAlt(si.RefBase) {
		genotype = 2
	} else if !si.GT.IsHet() {
		genotype = 1
	}
	features.Set(scoring.SNVGeno, genotype)

	features.Set(scoring.SNVMapqRMS, si.MapqRMS)
	features.Set(scoring.SNVHpol, float64(si.Hpol))
	features.Set(scoring.SNVStrandBias, si.StrandBias)
	features.Set(scoring.SNVMQRankSum, si.MQRankSum)
	features.Set(scoring.SNVReadPosRankSum, si.ReadPosRankSum)

	// How surprising is the depth relative to expectation?  Only meaningful
	// when uniform depth is expected, so exome/targeted runs pin it to 1.
	relativeLocusDepth := 1.0
	if opts.IsUniformDepthExpected {
		relativeLocusDepth = locusDepth * chromDepthFactor
	}
	features.Set(scoring.SNVRelativeTotalDepth, relativeLocusDepth)

	// How noisy is the locus?
	features.Set(scoring.SNVUsedDepthFraction, locusUsedDepthFraction)

	features.Set(scoring.SNVGQXExact, float64(si.GQX))

	if !opts.ComputeDevFeatures {
		return
	}
	dev := scoring.NewFeatures(scoring.GermlineSNVDevFeatures)
	si.EVSDevFeatures = dev

	dev.Set(scoring.SNVDevBaseQRankSum, si.BaseQRankSum)

	biasLower, biasTwoSided := scoring.AlleleBias(int(r0), int(r1))
	dev.Set(scoring.SNVDevAlleleBiasLower, biasLower)
	dev.Set(scoring.SNVDevAlleleBias, biasTwoSided)

	dev.Set(scoring.SNVDevRawBaseQ, si.AvgBaseQ)
	dev.Set(scoring.SNVDevRawPos, si.RawPos)
	dev.Set(scoring.SNVDevMapqZeroFraction, mapqZeroFraction)

	// Renormalized features intended to replace the corresponding production
	// features.
	dev.Set(scoring.SNVDevQualNorm, float64(si.SNVQphred)*filteredLocusDepthFactor)
	dev.Set(scoring.SNVDevGQXNorm, float64(si.GQX)*filteredLocusDepthFactor)
	dev.Set(scoring.SNVDevGQNorm, float64(si.GQ)*filteredLocusDepthFactor)

	dev.Set(scoring.SNVDevAD0Norm, r0*filteredLocusDepthFactor)
	dev.Set(scoring.SNVDevQualExact, float64(si.SNVQphred))
	dev.Set(scoring.SNVDevGQExact, float64(si.GQ))
	dev.Set(scoring.SNVDevAD1Norm, r1*filteredLocusDepthFactor)
}

func (si *SiteLocus) computeRNAFeatures(
	opts FeatureOpts,
	chromDepthFactor, filteredLocusDepthFactor float64,
	locusUsedDepthFraction, mapqZeroFraction, r0, r1 float64) {
	features := scoring.NewFeatures(scoring.RNASNVFeatures)
	si.EVSFeatures = features

	// Genotype ordinal for the RNA schema: het = 1, hom = 2.
	genotype := 2.0
	if si.GT.IsHet() || si.GT.IsHetAlt(si.RefBase) {
		genotype = 1.0
	}
	features.Set(scoring.RNASNVGenotype, genotype)

	features.Set(scoring.RNASNVQual, float64(si.SNVQphred)*chromDepthFactor)
	features.Set(scoring.RNASNVUsedDepth, float64(si.UsedCalls)*chromDepthFactor)
	features.Set(scoring.RNASNVUnusedDepth, float64(si.UnusedCalls)*chromDepthFactor)
	features.Set(scoring.RNASNVGQ, float64(si.GQ)*chromDepthFactor)
	features.Set(scoring.RNASNVGQX, float64(si.GQX)*chromDepthFactor)

	features.Set(scoring.RNASNVAvgBaseQ, si.AvgBaseQ)
	features.Set(scoring.RNASNVAvgPos, si.RawPos)

	features.Set(scoring.RNASNVBaseQRankSum, si.BaseQRankSum)
	features.Set(scoring.RNASNVReadPosRankSum, si.ReadPosRankSum)

	features.Set(scoring.RNASNVHpol, float64(si.Hpol))
	features.Set(scoring.RNASNVStrandBias, si.StrandBias)

	features.Set(scoring.RNASNVAD0, r0*chromDepthFactor)
	features.Set(scoring.RNASNVAD1, r1*chromDepthFactor)
	features.Set(scoring.RNASNVAlleleDepthRatio, scoring.SafeFrac(r0, r0+r1))

	if !opts.ComputeDevFeatures {
		return
	}
	dev := scoring.NewFeatures(scoring.RNASNVDevFeatures)
	si.EVSDevFeatures = dev

	dev.Set(scoring.RNASNVDevMapqRMS, si.MapqRMS)
	dev.Set(scoring.RNASNVDevMQRankSum, si.MQRankSum)
	dev.Set(scoring.RNASNVDevMapqZeroFraction, mapqZeroFraction)
	dev.Set(scoring.RNASNVDevUsedDepthFraction, locusUsedDepthFraction)

	dev.Set(scoring.RNASNVDevQualNorm, float64(si.SNVQphred)*filteredLocusDepthFactor)
	dev.Set(scoring.RNASNVDevGQXNorm, float64(si.GQX)*filteredLocusDepthFactor)
	dev.Set(scoring.RNASNVDevGQNorm, float64(si.GQ)*filteredLocusDepthFactor)

	dev.Set(scoring.RNASNVDevAD0Norm, r0*filteredLocusDepthFactor)
	dev.Set(scoring.RNASNVDevAD1Norm, r1*filteredLocusDepthFactor)

	dev.Set(scoring.RNASNVDevQualExact, float64(si.SNVQphred))
	dev.Set(scoring.RNASNVDevGQXExact, float64(si.GQX))
	dev.Set(scoring.RNASNVDevGQExact, float64(si.GQ))
}
