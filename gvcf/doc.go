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

// Package gvcf holds the per-locus record model for germline variant calls:
// SNV site and indel locus records, their VCF filter flags, per-base
// haplotype dosage ("ploidy") accumulation, merging of overlapping
// heterozygous indel calls, and empirical-scoring feature extraction.
//
// Records are built by an upstream evidence aggregator in increasing
// genomic-position order, possibly merged, scored, and then handed off to a
// VCF emitter; this package keeps no state across loci other than the
// one-locus lookahead in Stream.
package gvcf
