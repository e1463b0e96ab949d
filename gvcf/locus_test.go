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
	"github.com/grailbio/germline/pileup"
	"github.com/grailbio/testutil/expect"
)

func TestScoreMinCombine(t *testing.T) {
	set := func(v int) gvcf.Score { return gvcf.NewScore(v) }
	var unset gvcf.Score

	got := set(30).MinCombine(set(20))
	v, ok := got.Get()
	expect.True(t, ok)
	expect.EQ(t, v, 20)

	got = unset.MinCombine(set(15))
	v, ok = got.Get()
	expect.True(t, ok)
	expect.EQ(t, v, 15)

	got = set(10).MinCombine(set(15))
	v, _ = got.Get()
	expect.EQ(t, v, 10)

	got = unset.MinCombine(unset)
	expect.False(t, got.IsSet())
}

func TestIndelKey(t *testing.T) {
	del := gvcf.IndelKey{Pos: 10, DeleteLength: 3}
	expect.EQ(t, del.RightPos(), 13)

	ins := gvcf.IndelKey{Pos: 10, InsertSeq: "ACGT"}
	expect.EQ(t, ins.RightPos(), 10)
}

func TestNewIndelLocus(t *testing.T) {
	del := gvcf.AlleleInfo{Key: gvcf.IndelKey{Pos: 5, DeleteLength: 2}}
	li := gvcf.NewIndelLocus(5, del, true)
	expect.EQ(t, li.End(), 7)
	expect.EQ(t, li.PloidyAt(0), 0)
	expect.EQ(t, li.PloidyAt(1), 0)
	expect.True(t, li.Het)
	expect.False(t, li.IsOverlap)
	expect.EQ(t, li.Filters.String(), "PASS")

	// An insertion spans no reference bases.
	ins := gvcf.AlleleInfo{Key: gvcf.IndelKey{Pos: 5, InsertSeq: "TT"}}
	li = gvcf.NewIndelLocus(5, ins, true)
	expect.EQ(t, li.End(), 5)
}

func TestDiploidGT(t *testing.T) {
	het := gvcf.DiploidGT{A0: pileup.BaseA, A1: pileup.BaseC}
	expect.True(t, het.IsHet())
	expect.False(t, het.IsHetAlt(pileup.BaseA))
	expect.True(t, het.IsHetAlt(pileup.BaseG))
	expect.True(t, het.Carries(pileup.BaseC))
	expect.False(t, het.Carries(pileup.BaseT))

	hom := gvcf.DiploidGT{A0: pileup.BaseG, A1: pileup.BaseG}
	expect.False(t, hom.IsHet())
	expect.False(t, hom.IsHetAlt(pileup.BaseA))
}

func TestSiteLocusAltBase(t *testing.T) {
	si := &gvcf.SiteLocus{
		RefBase: pileup.BaseA,
		GT:      gvcf.DiploidGT{A0: pileup.BaseA, A1: pileup.BaseT},
	}
	expect.EQ(t, si.AltBase(), pileup.BaseT)

	// Het-alt: the higher base enum value wins.
	si.GT = gvcf.DiploidGT{A0: pileup.BaseC, A1: pileup.BaseG}
	expect.EQ(t, si.AltBase(), pileup.BaseG)

	si.GT = gvcf.DiploidGT{A0: pileup.BaseA, A1: pileup.BaseA}
	expect.True(t, panics(func() { si.AltBase() }), "hom-ref genotype has no alt base")
}

// panics reports whether fn panics.  Fatal internal-consistency checks in this
// package are implemented as panics.
func panics(fn func()) (panicked bool) {
	defer func() {
		if recover() != nil {
			panicked = true
		}
	}()
	fn()
	return false
}
