package interval

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// PosType is BEDUnion's coordinate type.  int32 matches the coordinate limit
// of the alignment formats the pileup evidence comes from.
type PosType int32

// PosTypeMax is the maximum value representable by a PosType.
const PosTypeMax = math.MaxInt32

// NewBEDOpts defines behavior of this package's BED-loading functions.
type NewBEDOpts struct {
	// Invert causes the complement of the interval-union to be returned.  The
	// complement extends down to position -1 at the beginning of each
	// chromosome, and up to 2^31 - 2 inclusive at the end.  Only chromosomes
	// mentioned in the input are included; a single empty interval qualifies
	// as a mention.
	Invert bool
	// OneBasedInput interprets the interval boundaries as one-based
	// [start, end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// BEDUnion is a set of disjoint genomic intervals, keyed by chromosome name.
// Each chromosome's intervals are stored as a sorted sequence of endpoints
// {start0, end0, start1, end1, ...}; a position is inside the set iff the
// insertion point of (pos+1) in that sequence is odd.  Overlapping and
// touching input intervals are merged on load.
type BEDUnion struct {
	nameMap map[string]([]PosType)

	// Query cache: the endpoints and search index for the most recently
	// queried chromosome.  Sequential position queries within one chromosome
	// then cost an (amortized) exponential search step instead of a full
	// binary search.
	lastRefName   string
	lastEndpoints []PosType
	lastPosPlus1  PosType
	lastIdx       int
	isSequential  bool
}

func searchPosTypes(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// expsearchPosTypes checks a[idx], then a[idx+1], a[idx+3], a[idx+7], etc.,
// then binary-searches the bracketed range.  Better than searchPosTypes when
// the target rarely moves far forward.
func expsearchPosTypes(a []PosType, x PosType, idx int) int {
	nextIncr := 1
	startIdx := idx
	endIdx := len(a)
	for idx < endIdx {
		if a[idx] >= x {
			endIdx = idx
			break
		}
		startIdx = idx + 1
		idx += nextIncr
		nextIncr *= 2
	}
	for startIdx < endIdx {
		midIdx := int(uint(startIdx+endIdx) >> 1)
		if a[midIdx] >= x {
			endIdx = midIdx
		} else {
			startIdx = midIdx + 1
		}
	}
	return startIdx
}

// Contains checks whether the (0-based) position pos on the named chromosome
// is inside the interval set.  Repeated queries on the same chromosome with
// nondecreasing positions are fast.
func (u *BEDUnion) Contains(refName string, pos PosType) bool {
	posPlus1 := pos + 1
	if refName != u.lastRefName {
		u.lastRefName = refName
		u.lastEndpoints = u.nameMap[refName]
		if u.lastEndpoints == nil {
			return false
		}
		u.lastIdx = searchPosTypes(u.lastEndpoints, posPlus1)
		u.lastPosPlus1 = posPlus1
		u.isSequential = true
		return u.lastIdx&1 == 1
	}
	if u.lastEndpoints == nil {
		return false
	}
	if u.isSequential {
		if posPlus1 >= u.lastPosPlus1 {
			u.lastIdx = expsearchPosTypes(u.lastEndpoints, posPlus1, u.lastIdx)
			u.lastPosPlus1 = posPlus1
			return u.lastIdx&1 == 1
		}
		u.isSequential = false
	}
	return searchPosTypes(u.lastEndpoints, posPlus1)&1 == 1
}

// Overlaps checks whether the (0-based) interval [start, end) on the named
// chromosome intersects the interval set.  It does not disturb the
// sequential-query cache.
func (u *BEDUnion) Overlaps(refName string, start, end PosType) bool {
	endpoints := u.nameMap[refName]
	if endpoints == nil || end <= start {
		return false
	}
	idx := searchPosTypes(endpoints, start+1)
	if idx&1 == 1 {
		return true
	}
	return idx != len(endpoints) && endpoints[idx] < end
}

// RefNames returns the names of all chromosomes mentioned by the interval
// set, in sorted order.
func (u *BEDUnion) RefNames() []string {
	names := make([]string, 0, len(u.nameMap))
	for name := range u.nameMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a new BEDUnion sharing the interval set, with its own search
// state.  Use one clone per goroutine.
func (u *BEDUnion) Clone() BEDUnion {
	return BEDUnion{nameMap: u.nameMap}
}

// unionBuilder accumulates sorted, possibly-overlapping intervals one
// chromosome at a time, merging as it goes.
type unionBuilder struct {
	opts      NewBEDOpts
	nameMap   map[string]([]PosType)
	curRef    string
	endpoints []PosType
	// prevStart/prevEnd hold the still-extendable last interval; prevEnd of
	// -1 means the chromosome was mentioned but no interval is open.
	prevStart PosType
	prevEnd   PosType
}

func newUnionBuilder(opts NewBEDOpts) *unionBuilder {
	return &unionBuilder{opts: opts, nameMap: make(map[string]([]PosType))}
}

func (b *unionBuilder) flushRef() {
	if b.curRef == "" {
		return
	}
	if b.prevEnd != -1 {
		b.endpoints = append(b.endpoints, b.prevStart, b.prevEnd)
	}
	if b.opts.Invert {
		b.endpoints = append(b.endpoints, PosTypeMax)
	}
	b.nameMap[b.curRef] = b.endpoints
}

func (b *unionBuilder) add(refName string, start, end PosType) error {
	if start < 0 {
		return fmt.Errorf("interval: negative start coordinate %d", start)
	}
	if end < start || end >= PosTypeMax {
		return fmt.Errorf("interval: invalid coordinate pair [%d, %d)", start, end)
	}
	if refName != b.curRef {
		b.flushRef()
		if _, found := b.nameMap[refName]; found {
			return fmt.Errorf("interval: unsorted input (split chromosome %s)", refName)
		}
		b.curRef = refName
		b.endpoints = []PosType{}
		if b.opts.Invert {
			b.endpoints = append(b.endpoints, -1)
		}
		if end == start {
			// A zero-length interval still marks the chromosome as mentioned.
			b.prevStart = -1
			b.prevEnd = -1
			return nil
		}
		b.prevStart = start
		b.prevEnd = end
		return nil
	}
	if end == start {
		return nil
	}
	if b.prevEnd == -1 || start > b.prevEnd {
		if b.prevEnd != -1 {
			b.endpoints = append(b.endpoints, b.prevStart, b.prevEnd)
		}
		b.prevStart = start
		b.prevEnd = end
		return nil
	}
	if start < b.prevStart {
		return fmt.Errorf("interval: unsorted input on chromosome %s", refName)
	}
	if end > b.prevEnd {
		b.prevEnd = end
	}
	return nil
}

func (b *unionBuilder) finish() BEDUnion {
	b.flushRef()
	return BEDUnion{nameMap: b.nameMap}
}

// NewBEDUnion loads the intervals from a sorted (by start coordinate)
// BED-format reader, merging touching/overlapping intervals and dropping
// empty ones.  Columns past the third are ignored.
func NewBEDUnion(reader io.Reader, opts NewBEDOpts) (BEDUnion, error) {
	builder := newUnionBuilder(opts)
	var startSubtract PosType
	if opts.OneBasedInput {
		startSubtract = 1
	}
	scanner := bufio.NewScanner(reader)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return BEDUnion{}, fmt.Errorf("interval.NewBEDUnion: line %d has fewer than 3 columns", lineIdx)
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return BEDUnion{}, fmt.Errorf("interval.NewBEDUnion: line %d: %v", lineIdx, err)
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return BEDUnion{}, fmt.Errorf("interval.NewBEDUnion: line %d: %v", lineIdx, err)
		}
		if err := builder.add(fields[0], PosType(start)-startSubtract, PosType(end)); err != nil {
			return BEDUnion{}, fmt.Errorf("%v (line %d)", err, lineIdx)
		}
	}
	if err := scanner.Err(); err != nil {
		return BEDUnion{}, err
	}
	return builder.finish(), nil
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.  Gzipped inputs are transparently decompressed.
func NewBEDUnionFromPath(path string, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
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
	return NewBEDUnion(reader, opts)
}

// Entry represents a single interval, with 0-based coordinates.
type Entry struct {
	RefName string
	Start0  PosType
	End     PosType
}

// NewBEDUnionFromEntries initializes a BEDUnion from a sorted []Entry.  It
// ignores opts.OneBasedInput, since Start0 is defined to be zero-based.
func NewBEDUnionFromEntries(entries []Entry, opts NewBEDOpts) (BEDUnion, error) {
	builder := newUnionBuilder(opts)
	for _, entry := range entries {
		if err := builder.add(entry.RefName, entry.Start0, entry.End); err != nil {
			return BEDUnion{}, err
		}
	}
	return builder.finish(), nil
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, PosTypeMax - 1] is returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		result.RefName = region
		result.Start0 = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.RefName = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %s out of range", rangeStr)
			return
		}
		result.Start0 = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1 int
	if start1, err = strconv.Atoi(start1Str); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %s out of range", start1Str)
		return
	}
	var end0 int
	if end0, err = strconv.Atoi(endStr); err != nil {
		return
	}
	// end0 == PosTypeMax is prohibited so the endpoint sequence is guaranteed
	// to contain no repeats.
	if end0 <= start1 || end0 >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %s", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end0)
	return
}
