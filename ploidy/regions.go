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
package ploidy

import (
	"bufio"
	"fmt"
	"io"

	biointerval "github.com/biogo/store/interval"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// DefaultPloidy is the copy number assumed outside any annotated region.
const DefaultPloidy = 2

type regionInterval struct {
	start, end int
	uid        uintptr
	ploidy     uint32
}

func (iv regionInterval) Overlap(b biointerval.IntRange) bool {
	return iv.end > b.Start && iv.start < b.End
}

func (iv regionInterval) ID() uintptr { return iv.uid }

func (iv regionInterval) Range() biointerval.IntRange {
	return biointerval.IntRange{Start: iv.start, End: iv.end}
}

// Regions holds copy-number annotations, indexed for point and range lookup.
// The zero value is empty and usable; lookups outside all regions report the
// diploid default.
type Regions struct {
	trees   map[string]*biointerval.IntTree
	nextUID uintptr
}

// Add inserts one annotation.
func (r *Regions) Add(rec Record) error {
	if rec.End <= rec.Start {
		return fmt.Errorf("ploidy.Regions.Add: invalid interval [%d, %d)", rec.Start, rec.End)
	}
	if r.trees == nil {
		r.trees = make(map[string]*biointerval.IntTree)
	}
	tree := r.trees[rec.RefName]
	if tree == nil {
		tree = &biointerval.IntTree{}
		r.trees[rec.RefName] = tree
	}
	iv := regionInterval{start: rec.Start, end: rec.End, uid: r.nextUID, ploidy: rec.Ploidy}
	r.nextUID++
	return tree.Insert(iv, false)
}

// PloidyAt returns the expected copy number at the given zero-based position.
// ok is false when no annotated region covers the position (the returned
// value is then DefaultPloidy).  Overlapping annotations at one position
// resolve to the smallest copy number, the conservative choice for
// genotyping.
func (r *Regions) PloidyAt(refName string, pos int) (ploidy uint32, ok bool) {
	ploidy = DefaultPloidy
	if r.trees == nil {
		return ploidy, false
	}
	tree := r.trees[refName]
	if tree == nil {
		return ploidy, false
	}
	q := regionInterval{start: pos, end: pos + 1}
	for _, hit := range tree.Get(q) {
		hitPloidy := hit.(regionInterval).ploidy
		if !ok || hitPloidy < ploidy {
			ploidy = hitPloidy
		}
		ok = true
	}
	if !ok {
		ploidy = DefaultPloidy
	}
	return ploidy, ok
}

// OverlapsNonDiploid reports whether any annotated region with copy number
// other than 2 intersects [start, end) on the named chromosome.
func (r *Regions) OverlapsNonDiploid(refName string, start, end int) bool {
	if r.trees == nil {
		return false
	}
	tree := r.trees[refName]
	if tree == nil {
		return false
	}
	q := regionInterval{start: start, end: end}
	for _, hit := range tree.Get(q) {
		if hit.(regionInterval).ploidy != DefaultPloidy {
			return true
		}
	}
	return false
}

// ReadBed loads a ploidy BED.  Lines without the copy-number column are
// rejected; blank lines and lines starting with '#' are skipped.
func ReadBed(reader io.Reader) (Regions, error) {
	var regions Regions
	scanner := bufio.NewScanner(reader)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		rec, err := ParseBedRecordStrict(line)
		if err != nil {
			return Regions{}, fmt.Errorf("%v (line %d)", err, lineIdx)
		}
		if err := regions.Add(rec); err != nil {
			return Regions{}, fmt.Errorf("%v (line %d)", err, lineIdx)
		}
	}
	if err := scanner.Err(); err != nil {
		return Regions{}, err
	}
	return regions, nil
}

// ReadBedFromPath is a wrapper for ReadBed that takes a path instead of an
// io.Reader.  Gzipped inputs are transparently decompressed.
func ReadBedFromPath(path string) (regions Regions, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadBed(reader)
}
