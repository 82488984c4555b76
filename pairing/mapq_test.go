package pairing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog2ApproxMatchesOriginalTableBitForBit(t *testing.T) {
	// Spot checks against the original hardware table: log2Approx(x) is in
	// units of 1/128, so log2Approx(1)==0 and log2Approx(2)==128 exactly.
	assert.Equal(t, 0, log2Approx(1))
	assert.Equal(t, 128, log2Approx(2))
	assert.Equal(t, 256, log2Approx(4))
	assert.Equal(t, 850, log2Approx(100))
}

func TestMAPQZeroWhenNoGap(t *testing.T) {
	assert.Equal(t, 0, MAPQ(100, 100, 100))
	assert.Equal(t, 0, MAPQ(100, 150, 100), "a worse best score than its competitor should never score positively")
}

func TestMAPQTreatsNegativeSecondAsZero(t *testing.T) {
	a := MAPQ(50, 0, 100)
	b := MAPQ(50, -5, 100)
	assert.Equal(t, a, b)
}

func TestMAPQIsMonotonicInTheGap(t *testing.T) {
	small := MAPQ(100, 99, 100)
	large := MAPQ(100, 97, 100)
	assert.Less(t, small, large)
}

func TestMAPQClampsAtCap(t *testing.T) {
	q := MAPQ(1000, 0, 100)
	assert.Equal(t, MAPQCap, q)
}

func TestXQCanExceedMAPQCapButNotXQCap(t *testing.T) {
	mapq := MAPQ(200, 0, 100)
	xq := XQ(200, 0, 100)
	assert.Equal(t, MAPQCap, mapq)
	assert.GreaterOrEqual(t, xq, mapq)
	assert.LessOrEqual(t, xq, XQCap)
}

func TestAln2MapqScalesDownAsReadLengthGrows(t *testing.T) {
	// A longer read's log2(L) is larger, so the same score gap maps to a
	// smaller MAPQ-scale multiplier (§4.6's length-scaling term).
	short := aln2mapq(defaultSNPCost, 36)
	long := aln2mapq(defaultSNPCost, 300)
	assert.Greater(t, short, long)
}

func TestUniqueMatchScoresMaxMapq(t *testing.T) {
	// A read with no competing alignment (second=0) and a typical score gap
	// should land at the capped maximum, matching the original's "unique
	// match -> MAPQ 60" worked example.
	assert.Equal(t, MAPQCap, MAPQ(36, 0, 36))
}
