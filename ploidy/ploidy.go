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

// Package ploidy parses copy-number region annotations and answers
// expected-ploidy queries against them.  Regions where the expected copy
// number differs from 2 change genotyping downstream: haploid regions only
// admit hemizygous calls, and zero-ploidy regions admit none.
//
// Two input encodings are supported: a 4-column BED whose fourth column is
// the expected copy number, and VCF records carrying a symbolic <DEL> allele
// with per-sample FORMAT/CN values.
package ploidy

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one copy-number annotation: a zero-based half-open reference
// interval and the expected copy number inside it.
type Record struct {
	RefName string
	Start   int
	End     int
	Ploidy  uint32
}

// ParseBedRecord parses one line of a ploidy BED.  The fourth column is the
// expected copy number; ok is false when the line has only the three plain
// BED columns.  Malformed lines produce an error.
func ParseBedRecord(line string) (rec Record, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		err = fmt.Errorf("ploidy.ParseBedRecord: %d column(s), expected at least 3", len(fields))
		return
	}
	rec.RefName = fields[0]
	if rec.Start, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if rec.End, err = strconv.Atoi(fields[2]); err != nil {
		return
	}
	if rec.Start < 0 || rec.End <= rec.Start {
		err = fmt.Errorf("ploidy.ParseBedRecord: invalid interval [%d, %d)", rec.Start, rec.End)
		return
	}
	if len(fields) < 4 {
		return rec, false, nil
	}
	var pl int
	if pl, err = strconv.Atoi(fields[3]); err != nil || pl < 0 {
		err = fmt.Errorf("ploidy.ParseBedRecord: invalid copy number %q", fields[3])
		return
	}
	rec.Ploidy = uint32(pl)
	return rec, true, nil
}

// ParseBedRecordStrict is ParseBedRecord with the copy-number column
// required.
func ParseBedRecordStrict(line string) (Record, error) {
	rec, ok, err := ParseBedRecord(line)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, fmt.Errorf("ploidy.ParseBedRecordStrict: missing copy-number column")
	}
	return rec, nil
}

// vcf column layout
const (
	vcfColChrom = iota
	vcfColPos
	vcfColID
	vcfColRef
	vcfColAlt
	vcfColQual
	vcfColFilter
	vcfColInfo
	vcfColFormat
	vcfColFirstSample
)

// ParseVcfRecord parses one VCF data line describing a copy-number region:
// a symbolic <DEL> alt with an INFO END and one FORMAT/CN value per sample.
// The returned records share the region and differ only in Ploidy, one entry
// per sample in column order.  POS names the anchor base before the affected
// region, so the region is [POS, END) in zero-based coordinates.
func ParseVcfRecord(expectedSampleCount int, line string) ([]Record, error) {
	fields := strings.Split(strings.TrimRight(line, "\n"), "\t")
	if len(fields) != vcfColFirstSample+expectedSampleCount {
		return nil, fmt.Errorf("ploidy.ParseVcfRecord: %d column(s), expected %d",
			len(fields), vcfColFirstSample+expectedSampleCount)
	}
	if fields[vcfColAlt] != "<DEL>" {
		return nil, fmt.Errorf("ploidy.ParseVcfRecord: unsupported alt %q", fields[vcfColAlt])
	}

	pos1, err := strconv.Atoi(fields[vcfColPos])
	if err != nil || pos1 < 1 {
		return nil, fmt.Errorf("ploidy.ParseVcfRecord: invalid POS %q", fields[vcfColPos])
	}
	end := -1
	for _, kv := range strings.Split(fields[vcfColInfo], ";") {
		if strings.HasPrefix(kv, "END=") {
			if end, err = strconv.Atoi(kv[len("END="):]); err != nil {
				return nil, fmt.Errorf("ploidy.ParseVcfRecord: invalid INFO END in %q", fields[vcfColInfo])
			}
		}
	}
	if end < pos1 {
		return nil, fmt.Errorf("ploidy.ParseVcfRecord: missing or invalid INFO END")
	}

	cnIdx := -1
	for i, tag := range strings.Split(fields[vcfColFormat], ":") {
		if tag == "CN" {
			cnIdx = i
			break
		}
	}
	if cnIdx == -1 {
		return nil, fmt.Errorf("ploidy.ParseVcfRecord: FORMAT %q lacks CN", fields[vcfColFormat])
	}

	recs := make([]Record, 0, expectedSampleCount)
	for s := 0; s < expectedSampleCount; s++ {
		sampleFields := strings.Split(fields[vcfColFirstSample+s], ":")
		if cnIdx >= len(sampleFields) {
			return nil, fmt.Errorf("ploidy.ParseVcfRecord: sample %d lacks a CN value", s)
		}
		cn, err := strconv.Atoi(sampleFields[cnIdx])
		if err != nil || cn < 0 {
			return nil, fmt.Errorf("ploidy.ParseVcfRecord: sample %d: invalid CN %q", s, sampleFields[cnIdx])
		}
		recs = append(recs, Record{
			RefName: fields[vcfColChrom],
			// POS anchors one base before the affected region.
			Start:  pos1,
			End:    end,
			Ploidy: uint32(cn),
		})
	}
	return recs, nil
}
