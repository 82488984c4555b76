// Package pairing implements the pair builder and single-end picker (§4.6):
// pair enumeration, pair scoring, mapping-quality assignment, and
// primary/secondary selection. Mate rescue and supplementary-alignment
// selection are not implemented.
package pairing

import "github.com/dragen-os/dragen-os/align"

// MAPQCoeff scales the log-odds ratio into the MAPQ integer range (§4.6).
const MAPQCoeff = 152

// MAPQCap is the maximum MAPQ value emitted in the standard MAPQ field
// (§4.6: "clamp to 60").
const MAPQCap = 60

// XQCap bounds the unclamped alternate-quality value surfaced via the XQ
// tag (§9's "XQ tag" supplement): "up to 250".
const XQCap = 250

// defaultSNPCost is the mismatch penalty magnitude aln2mapq scales by,
// matching align/wavefront.DefaultScores().Mismatch (-1): the pairing
// package has no Scores config threaded to it, so it assumes the default.
const defaultSNPCost = 1

// log2ApproxTable is the 128-entry fixed-point log2 fractional lookup from
// the original hardware's log2_approx, indexed by the 7-bit fraction left
// after normalizing an integer into [1,2). Values must match bit-for-bit
// for regression parity with the original aligner's MAPQ output.
var log2ApproxTable = [128]int{
	0, 1, 3, 4, 6, 7, 8, 10, 11, 13, 14, 15, 17, 18, 19, 20,
	22, 23, 24, 26, 27, 28, 29, 31, 32, 33, 34, 35, 37, 38, 39, 40,
	41, 42, 44, 45, 46, 47, 48, 49, 50, 51, 52, 53, 55, 56, 57, 58,
	59, 60, 61, 62, 63, 64, 65, 66, 67, 68, 69, 70, 71, 72, 73, 74,
	75, 76, 77, 78, 79, 80, 81, 81, 82, 83, 84, 85, 86, 87, 88, 89,
	90, 91, 91, 92, 93, 94, 95, 96, 97, 97, 98, 99, 100, 101, 102, 103,
	103, 104, 105, 106, 107, 107, 108, 109, 110, 111, 111, 112, 113, 114, 115, 115,
	116, 117, 118, 118, 119, 120, 121, 121, 122, 123, 124, 124, 125, 126, 127, 127,
}

// log2Approx returns log2(x) in 1/128ths, built the way the original
// hardware does it: find the integer part from the position of the
// top set bit, normalize the remainder into [1,2), and look up the
// fractional part's 7 bits in log2ApproxTable.
func log2Approx(x int) int {
	logInt := 0
	tmp := x
	for {
		tmp >>= 1
		if tmp == 0 {
			break
		}
		logInt++
	}
	norm := (x << 7) >> logInt
	return (logInt << 7) + log2ApproxTable[norm&0x7f]
}

// aln2mapq computes the fixed-point multiplier MAPQ/XQ apply to a
// best/second-best score gap (§4.6): aln2mapq(c, L) =
// (MAPQ_COEFF·5/c) / ((log2(L))² >> 7), scaled by 1<<20.
func aln2mapq(snpCost, readLen int) int64 {
	l := log2Approx(readLen)
	denom := (l * l) >> 7
	if denom == 0 {
		denom = 1
	}
	coeffScaled := float64(MAPQCoeff) * 5.0 / float64(snpCost)
	return int64((coeffScaled / float64(denom)) * float64(int64(1)<<20))
}

// computeMapq implements §4.6's MAPQ = max(0, (s1-s2) × aln2mapq(c,L) >> 13).
func computeMapq(snpCost, best, second, readLen int) int {
	if second < 0 {
		second = 0
	}
	scale := aln2mapq(snpCost, readLen)
	q := (int64(best-second) * scale) >> 13
	if q < 0 {
		return 0
	}
	return int(q)
}

// MAPQ computes the standard, clamped mapping quality for an alignment of
// length readLen whose best score is best and whose best competing
// alignment score is second (second is 0 if there is no competitor),
// per §4.6.
func MAPQ(best, second, readLen int) int {
	q := computeMapq(defaultSNPCost, best, second, readLen)
	if q > MAPQCap {
		return MAPQCap
	}
	return q
}

// XQ computes the unclamped extended mapping quality surfaced via the XQ
// tag (§9 supplement), capped at XQCap rather than MAPQCap.
func XQ(best, second, readLen int) int {
	q := computeMapq(defaultSNPCost, best, second, readLen)
	if q > XQCap {
		return XQCap
	}
	return q
}

// readLenOf recovers the read length an alignment's MAPQ should scale
// against from its CIGAR's query span, since Alignment does not itself
// carry the originating read length.
func readLenOf(a *align.Alignment) int {
	return align.QuerySpan(a.Cigar)
}
