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
	"github.com/grailbio/hts/sam"
)

// isAlignMatch reports whether the op aligns read bases to reference bases.
func isAlignMatch(t sam.CigarOpType) bool {
	return t == sam.CigarMatch || t == sam.CigarEqual || t == sam.CigarMismatch
}

// AddCigarToPloidy walks a haplotype-relative alignment path and increments
// the per-position dosage array for every reference base the haplotype's
// call covers.
//
// The running offset starts at -1 so that the anchor position itself is not
// counted.  Align-match ops increment (once offset is non-negative) and
// advance one position per base; deletions advance without incrementing;
// insertions consume no reference and are not counted.
func AddCigarToPloidy(cigar sam.Cigar, ploidy []uint32) {
	offset := -1
	for _, op := range cigar {
		switch {
		case isAlignMatch(op.Type()):
			for j := 0; j < op.Len(); j++ {
				if offset >= 0 {
					ploidy[offset]++
				}
				offset++
			}
		case op.Type() == sam.CigarDeletion:
			offset += op.Len()
		}
	}
}
