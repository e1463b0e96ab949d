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
	"github.com/grailbio/base/tsv"
	"github.com/willf/bitset"
	"gonum.org/v1/gonum/stat/distuv"
)

// A FeatureSet names an ordered collection of EVS features.  The four
// concrete sets below are mutually exclusive schemas: a site locus is scored
// against either the germline-DNA pair or the RNA pair, never a mix.  Label
// order is fixed; downstream model files index features by position.
type FeatureSet struct {
	Name   string
	Labels []string
}

// Size returns the number of features in the set.
func (s *FeatureSet) Size() int { return len(s.Labels) }

// GermlineSNVFeatures is the production feature schema for germline DNA SNV
// loci.
var GermlineSNVFeatures = &FeatureSet{
	Name: "GermlineSNV",
	Labels: []string{
		"GENO", "I_MQ", "I_SNVHPOL", "I_SNVSB", "I_MQRankSum",
		"I_ReadPosRankSum", "TDP_NORM", "F_DP_NORM", "F_GQX_EXACT",
	},
}

// Index constants for GermlineSNVFeatures, in label order.
const (
	SNVGeno = iota
	SNVMapqRMS
	SNVHpol
	SNVStrandBias
	SNVMQRankSum
	SNVReadPosRankSum
	SNVRelativeTotalDepth
	SNVUsedDepthFraction
	SNVGQXExact
)

// GermlineSNVDevFeatures is the experimental feature schema for germline DNA
// SNV loci, populated only on request.
var GermlineSNVDevFeatures = &FeatureSet{
	Name: "GermlineSNVDev",
	Labels: []string{
		"I_BaseQRankSum", "ABlower", "AB", "I_RawBaseQ", "I_RawPos",
		"mapqZeroFraction", "QUAL_NORM", "F_GQX_NORM", "F_GQ_NORM",
		"AD0_NORM", "QUAL_EXACT", "F_GQ_EXACT", "AD1_NORM",
	},
}

// Index constants for GermlineSNVDevFeatures, in label order.
const (
	SNVDevBaseQRankSum = iota
	SNVDevAlleleBiasLower
	SNVDevAlleleBias
	SNVDevRawBaseQ
	SNVDevRawPos
	SNVDevMapqZeroFraction
	SNVDevQualNorm
	SNVDevGQXNorm
	SNVDevGQNorm
	SNVDevAD0Norm
	SNVDevQualExact
	SNVDevGQExact
	SNVDevAD1Norm
)

// RNASNVFeatures is the production feature schema for RNA SNV loci.
var RNASNVFeatures = &FeatureSet{
	Name: "RNASNV",
	Labels: []string{
		"GT", "QUAL", "F_DP", "F_DPF", "F_GQ", "F_GQX", "I_AvgBaseQ",
		"I_AvgPos", "I_BaseQRankSum", "I_ReadPosRankSum", "I_SNVHPOL",
		"I_SNVSB", "AD0", "AD1", "ADR",
	},
}

// Index constants for RNASNVFeatures, in label order.
const (
	RNASNVGenotype = iota
	RNASNVQual
	RNASNVUsedDepth
	RNASNVUnusedDepth
	RNASNVGQ
	RNASNVGQX
	RNASNVAvgBaseQ
	RNASNVAvgPos
	RNASNVBaseQRankSum
	RNASNVReadPosRankSum
	RNASNVHpol
	RNASNVStrandBias
	RNASNVAD0
	RNASNVAD1
	RNASNVAlleleDepthRatio
)

// RNASNVDevFeatures is the experimental feature schema for RNA SNV loci.
var RNASNVDevFeatures = &FeatureSet{
	Name: "RNASNVDev",
	Labels: []string{
		"I_MQ", "I_MQRankSum", "mapqZeroFraction", "F_DP_NORM",
		"QUAL_NORM", "F_GQX_NORM", "F_GQ_NORM", "AD0_NORM", "AD1_NORM",
		"QUAL_EXACT", "F_GQX_EXACT", "F_GQ_EXACT",
	},
}

// Index constants for RNASNVDevFeatures, in label order.
const (
	RNASNVDevMapqRMS = iota
	RNASNVDevMQRankSum
	RNASNVDevMapqZeroFraction
	RNASNVDevUsedDepthFraction
	RNASNVDevQualNorm
	RNASNVDevGQXNorm
	RNASNVDevGQNorm
	RNASNVDevAD0Norm
	RNASNVDevAD1Norm
	RNASNVDevQualExact
	RNASNVDevGQXExact
	RNASNVDevGQExact
)

// Features is a value vector over one FeatureSet.  Each feature must be set
// exactly once; setting a feature twice, or reading one that was never set,
// indicates an extractor bug and aborts.
type Features struct {
	schema  *FeatureSet
	vals    []float64
	defined *bitset.BitSet
}

// NewFeatures returns an empty vector over the given schema.
func NewFeatures(schema *FeatureSet) *Features {
	return &Features{
		schema:  schema,
		vals:    make([]float64, schema.Size()),
		defined: bitset.New(uint(schema.Size())),
	}
}

// Schema returns the FeatureSet this vector is defined over.
func (f *Features) Schema() *FeatureSet { return f.schema }

// Set assigns a value to the feature at the given schema index.
func (f *Features) Set(index int, val float64) {
	if index < 0 || index >= f.schema.Size() {
		log.Panicf("scoring.Features.Set: feature index %d out of range for schema %s", index, f.schema.Name)
	}
	if f.defined.Test(uint(index)) {
		log.Panicf("scoring.Features.Set: feature %s.%s set twice", f.schema.Name, f.schema.Labels[index])
	}
	f.defined.Set(uint(index))
	f.vals[index] = val
}

// Val returns the value of the feature at the given schema index.
func (f *Features) Val(index int) float64 {
	if !f.defined.Test(uint(index)) {
		log.Panicf("scoring.Features.Val: feature %s.%s read before being set", f.schema.Name, f.schema.Labels[index])
	}
	return f.vals[index]
}

// IsComplete reports whether every feature in the schema has been populated.
func (f *Features) IsComplete() bool {
	return f.defined.Count() == uint(f.schema.Size())
}

// WriteTSV appends all feature values, in schema order, to a tsv row.  All
// features must have been populated.
func (f *Features) WriteTSV(w *tsv.Writer) {
	if !f.IsComplete() {
		log.Panicf("scoring.Features.WriteTSV: schema %s incompletely populated", f.schema.Name)
	}
	for _, v := range f.vals {
		w.WriteFloat64(v, 'g', -1)
	}
}

// AlleleBias derives the two allele-bias features from the dominant allele
// observation counts r0 and r1: a one-sided lower-tail score and a two-sided
// test score, both against a null allele frequency of 0.5 over r0+r1 trials.
// The 1e-30 floor keeps the logarithm finite in extreme cases.
func AlleleBias(r0, r1 int) (lower, twoSided float64) {
	dist := distuv.Binomial{N: float64(r0 + r1), P: 0.5}
	lowerTail := dist.CDF(float64(r0))
	upperTail := dist.CDF(float64(r1))

	lower = -math.Log(lowerTail + 1.e-30)

	minTail := math.Min(lowerTail, upperTail)
	twoSided = -math.Log(math.Min(1, 2*minTail) + 1.e-30)
	return lower, twoSided
}
