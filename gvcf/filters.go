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
	"strings"

	"github.com/grailbio/base/log"
	"github.com/willf/bitset"
)

// Filter enumerates the germline VCF FILTER reasons.  The enumeration order
// is the serialization order and must not change; downstream VCF headers
// declare these labels by position.
type Filter int

const (
	// FilterIndelConflict marks a locus in a region with conflicting indel calls.
	FilterIndelConflict Filter = iota
	// FilterSiteConflict marks a site call conflicting with an overlapping indel.
	FilterSiteConflict
	// FilterPloidyConflict marks a genotype call conflicting with the expected
	// ploidy of its region.
	FilterPloidyConflict
	// FilterLowGQX marks a call whose GQX falls below the reporting threshold.
	FilterLowGQX
	// FilterHighBaseFilt marks a site where too large a fraction of basecalls
	// was filtered from input.
	FilterHighBaseFilt
	// FilterHighDepth marks a locus whose depth greatly exceeds chromosome expectation.
	FilterHighDepth
	// FilterLowDepth marks a locus with insufficient depth to genotype.
	FilterLowDepth
	// FilterHighSNVSB marks a SNV with excessive strand bias.
	FilterHighSNVSB
	// FilterHighSNVHPOL marks a SNV inside a long homopolymer.
	FilterHighSNVHPOL
	// FilterHighRefRep marks an indel whose reference context is highly repetitive.
	FilterHighRefRep
	// FilterNotGenotyped marks a locus that could not be genotyped.
	FilterNotGenotyped

	// NFilter is the number of defined filter reasons.
	NFilter int = iota
)

var filterLabels = [...]string{
	"IndelConflict",
	"SiteConflict",
	"PloidyConflict",
	"LowGQX",
	"HighBaseFilt",
	"HighDepth",
	"LowDepth",
	"HighSNVSB",
	"HighSNVHPOL",
	"HighREFREP",
	"NotGenotyped",
}

// String returns the VCF FILTER column label for f.
func (f Filter) String() string {
	if f < 0 || int(f) >= NFilter {
		log.Panicf("gvcf.Filter.String: invalid filter %d", int(f))
	}
	return filterLabels[f]
}

// FilterKeeper is a fixed-width set of filter flags attached to a locus.
// The zero value is an empty set.
type FilterKeeper struct {
	filters *bitset.BitSet
}

func (k *FilterKeeper) init() {
	if k.filters == nil {
		k.filters = bitset.New(uint(NFilter))
	}
}

// Set adds a filter reason to the set.
func (k *FilterKeeper) Set(f Filter) {
	if f < 0 || int(f) >= NFilter {
		log.Panicf("gvcf.FilterKeeper.Set: invalid filter %d", int(f))
	}
	k.init()
	k.filters.Set(uint(f))
}

// Test reports whether the filter reason is in the set.
func (k *FilterKeeper) Test(f Filter) bool {
	if k.filters == nil {
		return false
	}
	return k.filters.Test(uint(f))
}

// Merge unions other's flags into k.  Used when combining overlapping loci.
func (k *FilterKeeper) Merge(other *FilterKeeper) {
	if other.filters == nil {
		return
	}
	k.init()
	k.filters.InPlaceUnion(other.filters)
}

// Clone returns an independent copy of the set.
func (k *FilterKeeper) Clone() FilterKeeper {
	if k.filters == nil {
		return FilterKeeper{}
	}
	return FilterKeeper{filters: k.filters.Clone()}
}

// String renders the set for the VCF FILTER column: "PASS" when empty,
// otherwise the active labels joined by ';' in ascending enumeration order.
func (k *FilterKeeper) String() string {
	if k.filters == nil || k.filters.None() {
		return "PASS"
	}
	var sb strings.Builder
	isSep := false
	for i := 0; i < NFilter; i++ {
		if !k.filters.Test(uint(i)) {
			continue
		}
		if isSep {
			sb.WriteByte(';')
		} else {
			isSep = true
		}
		sb.WriteString(filterLabels[i])
	}
	return sb.String()
}
