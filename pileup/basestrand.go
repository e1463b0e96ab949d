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
package pileup

import (
	"io"

	"github.com/grailbio/base/tsv"
)

// BaseStrandRow represents a single row of a basestrand.tsv file: confident
// observation counts for every (base, strand) tuple at one reference
// position.  Pos is one-based in the text format, matching the upstream
// pileup tool's output.
type BaseStrandRow struct {
	Chr  string `tsv:"#CHROM"` // Chromosome
	Pos  int64  `tsv:"POS"`    // Position in chromosome
	Ref  string `tsv:"REF"`    // Reference base
	FwdA int64  `tsv:"A+"`     // A count on the forward strand
	RevA int64  `tsv:"A-"`     // A count on the reverse strand
	FwdC int64  `tsv:"C+"`     // C count on the forward strand
	RevC int64  `tsv:"C-"`     // C count on the reverse strand
	FwdG int64  `tsv:"G+"`     // G count on the forward strand
	RevG int64  `tsv:"G-"`     // G count on the reverse strand
	FwdT int64  `tsv:"T+"`     // T count on the forward strand
	RevT int64  `tsv:"T-"`     // T count on the reverse strand
}

// Fwd returns the forward-strand count for the given base enum value.
func (r *BaseStrandRow) Fwd(base byte) int64 {
	switch base {
	case BaseA:
		return r.FwdA
	case BaseC:
		return r.FwdC
	case BaseG:
		return r.FwdG
	case BaseT:
		return r.FwdT
	}
	return 0
}

// Rev returns the reverse-strand count for the given base enum value.
func (r *BaseStrandRow) Rev(base byte) int64 {
	switch base {
	case BaseA:
		return r.RevA
	case BaseC:
		return r.RevC
	case BaseG:
		return r.RevG
	case BaseT:
		return r.RevT
	}
	return 0
}

// Count returns the strand-summed count for the given base enum value.
func (r *BaseStrandRow) Count(base byte) int64 {
	return r.Fwd(base) + r.Rev(base)
}

// Depth returns the total confident observation count at the position.
func (r *BaseStrandRow) Depth() int64 {
	total := int64(0)
	for base := byte(0); base < NBase; base++ {
		total += r.Count(base)
	}
	return total
}

// RefBase returns the reference base as a base enum value.
func (r *BaseStrandRow) RefBase() byte {
	if len(r.Ref) != 1 {
		return BaseX
	}
	return CharToBase(r.Ref[0])
}

// ReadBaseStrandTsv reads a basestrand.tsv file from the given io.Reader.
func ReadBaseStrandTsv(r io.Reader) ([]BaseStrandRow, error) {
	tsvReader := tsv.NewReader(r)
	tsvReader.Comment = '#'

	rows := make([]BaseStrandRow, 0)
	for {
		var row BaseStrandRow
		if err := tsvReader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteBaseStrandTsv writes a basestrand.tsv file to the given writer.
func WriteBaseStrandTsv(rows []BaseStrandRow, writer io.Writer) error {
	tsvWriter := tsv.NewRowWriter(writer)
	for i := range rows {
		if err := tsvWriter.Write(&rows[i]); err != nil {
			return err
		}
	}
	return tsvWriter.Flush()
}
