package hashtable

import "github.com/dragen-os/dragen-os/hash"

// SampleMode selects the CRC32C seed value used by Sample, per §4.1's
// "Interval sampling" algorithm.
type SampleMode uint8

const (
	// SingleSample is used for a seed whose probe yields an interval too
	// large to enumerate (§4.1's "1-sample mode").
	SingleSample SampleMode = iota
	// KSample is used for an "extra interval" candidate found via the
	// global best-interval tracker (§4.1's "K-sample mode").
	KSample
)

// SampleParams bundles the inputs to the seeded CRC32C sampling state.
type SampleParams struct {
	Mode          SampleMode
	ReadName      []byte
	ReadPosInTmpl int // 0 or 1
	ReadOffset    int // only used in SingleSample mode
}

// seedState computes the initial CRC32C state S, per §4.1:
//
//	1-sample: S = CRC32C(readName) + (readPosInTemplate<<31) | (1<<30) | (seed.readOffset & 0x3FFFFFFF)
//	K-sample: S = CRC32C(readName) ^ (readPosInTemplate<<31)
func seedState(p SampleParams) uint32 {
	base := hash.CRC32C(p.ReadName)
	posBit := uint32(p.ReadPosInTmpl&1) << 31
	switch p.Mode {
	case SingleSample:
		return (base + posBit) | (1 << 30) | (uint32(p.ReadOffset) & 0x3FFFFFFF)
	default:
		return base ^ posBit
	}
}

// hitBitsetBits is sized for a 14-bit bitset (2^14 bits), per §4.1's "a
// 14-bit hit bitset for SEED + idx's CRC32C is already set".
const hitBitsetBits = 1 << 14

type hitBitset [hitBitsetBits / 64]uint64

func (b *hitBitset) test(i uint32) bool {
	i &= hitBitsetBits - 1
	return b[i/64]&(1<<(i%64)) != 0
}

func (b *hitBitset) set(i uint32) {
	i &= hitBitsetBits - 1
	b[i/64] |= 1 << (i % 64)
}

// RejectFunc reports whether the reference position at a candidate extend
// table index should be rejected, covering §4.1's rejection rule (a) (the
// reference position was already fetched). Rule (b) (ALT-lift incompatible)
// and rule (c), the 14-bit hit bitset, are applied internally by Sample.
type RejectFunc func(extTabIdx uint64, rec Record) (alreadyFetched bool)

// Sample deterministically draws up to k accepted positions from the
// interval [iv.Start, iv.Start+iv.Length), stopping after k acceptances or
// 2^14 rounds, per §4.1. The rule (c) dedup check hashes idx onto the
// CRC32C of the literal "SEED" (see seedRoundBase).
func Sample(ext *ExtendTable, iv Interval, p SampleParams, k int, reject RejectFunc) []uint64 {
	if iv.Length == 0 || k <= 0 {
		return nil
	}
	var bitset hitBitset
	state := seedState(p)
	accepted := make([]uint64, 0, k)
	for x := uint32(0); x < hitBitsetBits; x++ {
		state = hash.CRC32CUpdateUint32(state, x)
		idx := uint64(iv.Length) * uint64(state) >> 32
		extIdx := iv.Start + idx
		rec := ext.At(extIdx)

		roundState := hash.CRC32CUpdateUint32(seedRoundBase(p), idx32(idx))
		if bitset.test(roundState) {
			continue
		}
		if rec.AltLiftIncompatible {
			continue
		}
		if reject != nil && reject(extIdx, rec) {
			continue
		}
		bitset.set(roundState)
		accepted = append(accepted, extIdx)
		if len(accepted) >= k {
			break
		}
	}
	return accepted
}

func idx32(idx uint64) uint32 {
	return uint32(idx)
}

// seedRoundBase computes CRC32C("SEED") folded with the read's template
// position, the base for the per-round dedup check in rule (c).
func seedRoundBase(p SampleParams) uint32 {
	return hash.CRC32C([]byte("SEED")) ^ (uint32(p.ReadPosInTmpl&1) << 31)
}
