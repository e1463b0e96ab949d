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
package gvcf_test

import (
	"testing"

	"github.com/grailbio/germline/gvcf"
	"github.com/grailbio/testutil/expect"
)

func TestFilterLabels(t *testing.T) {
	// The label order is the VCF header declaration order and must stay
	// stable.
	expect.EQ(t, gvcf.FilterIndelConflict.String(), "IndelConflict")
	expect.EQ(t, gvcf.FilterSiteConflict.String(), "SiteConflict")
	expect.EQ(t, gvcf.FilterPloidyConflict.String(), "PloidyConflict")
	expect.EQ(t, gvcf.FilterLowGQX.String(), "LowGQX")
	expect.EQ(t, gvcf.FilterHighBaseFilt.String(), "HighBaseFilt")
	expect.EQ(t, gvcf.FilterHighDepth.String(), "HighDepth")
	expect.EQ(t, gvcf.FilterLowDepth.String(), "LowDepth")
	expect.EQ(t, gvcf.FilterHighSNVSB.String(), "HighSNVSB")
	expect.EQ(t, gvcf.FilterHighSNVHPOL.String(), "HighSNVHPOL")
	expect.EQ(t, gvcf.FilterHighRefRep.String(), "HighREFREP")
	expect.EQ(t, gvcf.FilterNotGenotyped.String(), "NotGenotyped")
	expect.EQ(t, gvcf.NFilter, 11)
}

func TestFilterKeeper(t *testing.T) {
	var k gvcf.FilterKeeper
	expect.EQ(t, k.String(), "PASS")
	expect.False(t, k.Test(gvcf.FilterLowGQX))

	k.Set(gvcf.FilterLowGQX)
	expect.True(t, k.Test(gvcf.FilterLowGQX))
	expect.EQ(t, k.String(), "LowGQX")

	// Setting twice is a no-op.
	k.Set(gvcf.FilterLowGQX)
	expect.EQ(t, k.String(), "LowGQX")

	// Labels render in enumeration order regardless of insertion order.
	k.Set(gvcf.FilterHighSNVSB)
	k.Set(gvcf.FilterIndelConflict)
	expect.EQ(t, k.String(), "IndelConflict;LowGQX;HighSNVSB")
}

func TestFilterKeeperMerge(t *testing.T) {
	var a, b gvcf.FilterKeeper
	a.Set(gvcf.FilterLowGQX)
	b.Set(gvcf.FilterHighDepth)
	b.Set(gvcf.FilterLowGQX)

	a.Merge(&b)
	expect.EQ(t, a.String(), "LowGQX;HighDepth")
	// Merge leaves the argument untouched.
	expect.False(t, b.Test(gvcf.FilterLowDepth))
	expect.EQ(t, b.String(), "LowGQX;HighDepth")

	// Merging an empty set changes nothing, including into an empty set.
	var empty, other gvcf.FilterKeeper
	a.Merge(&empty)
	expect.EQ(t, a.String(), "LowGQX;HighDepth")
	other.Merge(&empty)
	expect.EQ(t, other.String(), "PASS")
}

func TestFilterKeeperClone(t *testing.T) {
	var a gvcf.FilterKeeper
	a.Set(gvcf.FilterNotGenotyped)

	c := a.Clone()
	c.Set(gvcf.FilterLowDepth)
	expect.True(t, c.Test(gvcf.FilterNotGenotyped))
	expect.True(t, c.Test(gvcf.FilterLowDepth))
	expect.False(t, a.Test(gvcf.FilterLowDepth))

	// Clone of the zero value stays independent too.
	var zero gvcf.FilterKeeper
	cz := zero.Clone()
	cz.Set(gvcf.FilterHighBaseFilt)
	expect.EQ(t, zero.String(), "PASS")
}
