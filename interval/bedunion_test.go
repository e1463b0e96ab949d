package interval

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestNewBEDUnion(t *testing.T) {
	tests := []struct {
		name                  string
		bed                   string
		invert, oneBasedInput bool
		want                  map[string]([]PosType)
	}{
		{
			name: "disjoint",
			bed: "chr1\t100\t200\n" +
				"chr1\t300\t400\n" +
				"chr2\t50\t60\n",
			want: map[string]([]PosType){
				"chr1": {100, 200, 300, 400},
				"chr2": {50, 60},
			},
		},
		{
			name: "overlapAndTouchMerged",
			bed: "chr1\t100\t200\n" +
				"chr1\t150\t250\n" +
				"chr1\t250\t300\n",
			want: map[string]([]PosType){
				"chr1": {100, 300},
			},
		},
		{
			name: "emptyIntervalDropped",
			bed: "chr1\t100\t100\n" +
				"chr1\t200\t300\n",
			want: map[string]([]PosType){
				"chr1": {200, 300},
			},
		},
		{
			name:          "oneBased",
			bed:           "chr1\t101\t200\n",
			oneBasedInput: true,
			want: map[string]([]PosType){
				"chr1": {100, 200},
			},
		},
		{
			name: "invert",
			bed: "chr1\t100\t200\n" +
				"chr2\t50\t50\n",
			invert: true,
			want: map[string]([]PosType){
				"chr1": {-1, 100, 200, math.MaxInt32},
				"chr2": {-1, math.MaxInt32},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := NewBEDUnion(strings.NewReader(test.bed), NewBEDOpts{
				Invert:        test.invert,
				OneBasedInput: test.oneBasedInput,
			})
			expect.NoError(t, err)
			if !reflect.DeepEqual(result.nameMap, test.want) {
				t.Errorf("Wanted: %v  Got: %v", test.want, result.nameMap)
			}
		})
	}
}

func TestNewBEDUnionErrors(t *testing.T) {
	for _, test := range []struct {
		bed     string
		errText string
	}{
		{"chr1\t100\n", "fewer than 3 columns"},
		{"chr1\t200\t100\n", "invalid coordinate pair"},
		{"chr1\t300\t400\nchr1\t100\t200\n", "unsorted input"},
		{"chr1\t1\t2\nchr2\t1\t2\nchr1\t5\t6\n", "split chromosome"},
	} {
		_, err := NewBEDUnion(strings.NewReader(test.bed), NewBEDOpts{})
		expect.NotNil(t, err)
		expect.True(t, strings.Contains(err.Error(), test.errText), "input %q: %v", test.bed, err)
	}
}

func TestBEDUnionContains(t *testing.T) {
	u, err := NewBEDUnion(strings.NewReader(
		"chr1\t100\t200\nchr1\t300\t400\n"), NewBEDOpts{})
	expect.NoError(t, err)

	// Sequential queries.
	expect.False(t, u.Contains("chr1", 99))
	expect.True(t, u.Contains("chr1", 100))
	expect.True(t, u.Contains("chr1", 199))
	expect.False(t, u.Contains("chr1", 200))
	expect.True(t, u.Contains("chr1", 399))
	expect.False(t, u.Contains("chr1", 400))

	// Backwards query leaves the sequential path but still answers correctly.
	expect.True(t, u.Contains("chr1", 150))
	expect.False(t, u.Contains("chr1", 250))

	expect.False(t, u.Contains("chr3", 150))
	// Back to a known chromosome after a miss.
	expect.True(t, u.Contains("chr1", 300))
}

func TestBEDUnionOverlaps(t *testing.T) {
	u, err := NewBEDUnion(strings.NewReader("chr1\t100\t200\n"), NewBEDOpts{})
	expect.NoError(t, err)

	expect.True(t, u.Overlaps("chr1", 150, 160))
	expect.True(t, u.Overlaps("chr1", 50, 101))
	expect.True(t, u.Overlaps("chr1", 199, 300))
	expect.False(t, u.Overlaps("chr1", 0, 100))
	expect.False(t, u.Overlaps("chr1", 200, 300))
	expect.False(t, u.Overlaps("chr2", 150, 160))
	expect.False(t, u.Overlaps("chr1", 150, 150))
}

func TestBEDUnionClone(t *testing.T) {
	u, err := NewBEDUnion(strings.NewReader("chr1\t100\t200\n"), NewBEDOpts{})
	expect.NoError(t, err)
	expect.True(t, u.Contains("chr1", 150))

	c := u.Clone()
	expect.True(t, c.Contains("chr1", 150))
	expect.EQ(t, c.RefNames(), []string{"chr1"})
}

func TestNewBEDUnionFromEntries(t *testing.T) {
	u, err := NewBEDUnionFromEntries([]Entry{
		{RefName: "chr1", Start0: 100, End: 200},
		{RefName: "chr1", Start0: 150, End: 250},
	}, NewBEDOpts{})
	expect.NoError(t, err)
	expect.EQ(t, u.nameMap["chr1"], []PosType{100, 250})
}

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region  string
		refName string
		start0  PosType
		end     PosType
	}{
		{"chr1:1-1000", "chr1", 0, 1000},
		{"chr1:1000", "chr1", 999, 1000},
		{"chr1", "chr1", 0, math.MaxInt32 - 1},
	}
	for _, test := range tests {
		result, err := ParseRegionString(test.region)
		expect.NoError(t, err)
		expect.EQ(t, test.refName, result.RefName)
		expect.EQ(t, test.start0, result.Start0)
		expect.EQ(t, test.end, result.End)
	}

	for _, bad := range []string{"", ":100", "chr1:0", "chr1:100-50", "chr1:x-y"} {
		_, err := ParseRegionString(bad)
		expect.NotNil(t, err, "region %s", bad)
	}
}
