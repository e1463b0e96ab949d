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
package ploidy_test

import (
	"strings"
	"testing"

	"github.com/grailbio/germline/ploidy"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestParseBedRecord(t *testing.T) {
	rec, ok, err := ploidy.ParseBedRecord("chrX\t100\t200\t1")
	assert.NoError(t, err)
	expect.True(t, ok)
	expect.EQ(t, rec, ploidy.Record{RefName: "chrX", Start: 100, End: 200, Ploidy: 1})

	// Three-column lines are valid BED but carry no copy number.
	rec, ok, err = ploidy.ParseBedRecord("chr1\t100\t200")
	assert.NoError(t, err)
	expect.False(t, ok)
	expect.EQ(t, rec.RefName, "chr1")

	for _, bad := range []string{
		"chr1\t100",
		"chr1\tx\t200\t1",
		"chr1\t100\ty\t1",
		"chr1\t200\t100\t1",
		"chr1\t100\t200\ttwo",
		"chr1\t100\t200\t-1",
	} {
		_, _, err := ploidy.ParseBedRecord(bad)
		expect.NotNil(t, err, "line %q", bad)
	}
}

func TestParseBedRecordStrict(t *testing.T) {
	rec, err := ploidy.ParseBedRecordStrict("chrY\t0\t59373566\t0")
	assert.NoError(t, err)
	expect.EQ(t, rec.Ploidy, uint32(0))

	_, err = ploidy.ParseBedRecordStrict("chr1\t100\t200")
	expect.NotNil(t, err)
}

func TestParseVcfRecord(t *testing.T) {
	line := "chr1\t1000\t.\tN\t<DEL>\t.\tPASS\tEND=2000;SVTYPE=DEL\tGT:CN\t0/1:1\t1/1:0"
	recs, err := ploidy.ParseVcfRecord(2, line)
	assert.NoError(t, err)
	expect.EQ(t, len(recs), 2)
	// POS anchors one base before the affected region.
	expect.EQ(t, recs[0], ploidy.Record{RefName: "chr1", Start: 1000, End: 2000, Ploidy: 1})
	expect.EQ(t, recs[1], ploidy.Record{RefName: "chr1", Start: 1000, End: 2000, Ploidy: 0})

	for _, test := range []struct {
		name    string
		samples int
		line    string
	}{
		{"wrongSampleCount", 1, line},
		{"nonSymbolicAlt", 2, strings.Replace(line, "<DEL>", "A", 1)},
		{"missingEnd", 2, strings.Replace(line, "END=2000;", "", 1)},
		{"noCNTag", 2, strings.Replace(line, "GT:CN", "GT", 1)},
		{"badCN", 2, strings.Replace(line, "0/1:1", "0/1:x", 1)},
	} {
		_, err := ploidy.ParseVcfRecord(test.samples, test.line)
		expect.NotNil(t, err, "case %s", test.name)
	}
}

func TestRegionsPloidyAt(t *testing.T) {
	var regions ploidy.Regions
	assert.NoError(t, regions.Add(ploidy.Record{RefName: "chrX", Start: 100, End: 200, Ploidy: 1}))
	assert.NoError(t, regions.Add(ploidy.Record{RefName: "chrY", Start: 0, End: 50, Ploidy: 0}))

	pl, ok := regions.PloidyAt("chrX", 150)
	expect.True(t, ok)
	expect.EQ(t, pl, uint32(1))

	pl, ok = regions.PloidyAt("chrX", 99)
	expect.False(t, ok)
	expect.EQ(t, pl, uint32(ploidy.DefaultPloidy))

	// End is exclusive.
	_, ok = regions.PloidyAt("chrX", 200)
	expect.False(t, ok)

	pl, ok = regions.PloidyAt("chrY", 0)
	expect.True(t, ok)
	expect.EQ(t, pl, uint32(0))

	_, ok = regions.PloidyAt("chr1", 150)
	expect.False(t, ok)
}

func TestRegionsOverlapResolution(t *testing.T) {
	// Overlapping annotations resolve to the smallest copy number.
	var regions ploidy.Regions
	assert.NoError(t, regions.Add(ploidy.Record{RefName: "chr1", Start: 100, End: 300, Ploidy: 3}))
	assert.NoError(t, regions.Add(ploidy.Record{RefName: "chr1", Start: 200, End: 400, Ploidy: 1}))

	pl, ok := regions.PloidyAt("chr1", 250)
	expect.True(t, ok)
	expect.EQ(t, pl, uint32(1))

	pl, ok = regions.PloidyAt("chr1", 150)
	expect.True(t, ok)
	expect.EQ(t, pl, uint32(3))
}

func TestRegionsOverlapsNonDiploid(t *testing.T) {
	var regions ploidy.Regions
	assert.NoError(t, regions.Add(ploidy.Record{RefName: "chr1", Start: 100, End: 200, Ploidy: 2}))
	assert.NoError(t, regions.Add(ploidy.Record{RefName: "chrX", Start: 100, End: 200, Ploidy: 1}))

	expect.False(t, regions.OverlapsNonDiploid("chr1", 150, 160))
	expect.True(t, regions.OverlapsNonDiploid("chrX", 150, 160))
	expect.False(t, regions.OverlapsNonDiploid("chrX", 200, 300))
	expect.False(t, regions.OverlapsNonDiploid("chr2", 0, 1000))
}

func TestReadBed(t *testing.T) {
	bed := "# expected copy number per region\n" +
		"chrX\t0\t2781479\t2\n" +
		"chrX\t2781479\t155701382\t1\n" +
		"chrY\t0\t59373566\t1\n"
	regions, err := ploidy.ReadBed(strings.NewReader(bed))
	assert.NoError(t, err)

	pl, ok := regions.PloidyAt("chrX", 1000000)
	expect.True(t, ok)
	expect.EQ(t, pl, uint32(2))
	pl, ok = regions.PloidyAt("chrX", 50000000)
	expect.True(t, ok)
	expect.EQ(t, pl, uint32(1))

	_, err = ploidy.ReadBed(strings.NewReader("chr1\t100\t200\n"))
	expect.NotNil(t, err)
}
