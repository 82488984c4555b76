// Package seedmap implements the seed mapper (§4.1): it composes the
// hashtable package's bucket probes with seed extension and interval
// sampling to turn a read into a list of seed positions for the chain
// builder.
package seedmap

import (
	"github.com/dragen-os/dragen-os/hashtable"
	"github.com/dragen-os/dragen-os/seed"
	"github.com/dragen-os/dragen-os/seq"
)

// Config holds the seed-placement and extension parameters named in §4.1.
type Config struct {
	PrimarySeedBases int    // k, typically 21
	SeedPeriod       int    // p
	SeedPattern      uint64 // pattern bitmask
	ForceLastNSeeds  int

	MaxSeedFrequency    int // frequency ceiling for enumerate-vs-sample (§4.1)
	PrimaryMaxSeedFreq  int
	MaxExtIncrement     int // maximum total extension length, in bases
	MinFreqToExtend     int
	HiFreqRandHit       int // not read by Map; HIFREQ records yield no positions
	ExtraIntervalSample int // K used for the K-sample ("extra interval") path
}

// DefaultConfig returns parameters matching the primary seed length and
// cadence named in §4.1 ("k typically 21").
func DefaultConfig() Config {
	return Config{
		PrimarySeedBases:    21,
		SeedPeriod:          2,
		SeedPattern:         0x1,
		ForceLastNSeeds:     0,
		MaxSeedFrequency:    16,
		PrimaryMaxSeedFreq:  2,
		MaxExtIncrement:     12,
		MinFreqToExtend:     2,
		HiFreqRandHit:       4,
		ExtraIntervalSample: 2,
	}
}

// Position is a (seed, reference position, half-extension) tuple (§3's
// "Seed position"), plus the orientation and sampling provenance the chain
// builder needs.
type Position struct {
	Seed           seed.Seed
	RefPos         uint64
	HalfExtension  int
	Orientation    seed.Orientation
	IsRandomSample bool
	Extra          bool // drawn from the global best-interval path
}

// Mapper composes hashtable probes with extension and sampling into seed
// positions for a read.
type Mapper struct {
	cfg     Config
	table   *hashtable.Table
	ext     *hashtable.ExtendTable
	hashers hashtable.Hasher
}

// New constructs a Mapper over a loaded hash table, extend table, and the
// primary/secondary polynomial hashers that address them.
func New(cfg Config, table *hashtable.Table, ext *hashtable.ExtendTable, hashers hashtable.Hasher) *Mapper {
	return &Mapper{cfg: cfg, table: table, ext: ext, hashers: hashers}
}

// bestInterval tracks the single best "extra interval" candidate across all
// seed placements in a read, per §4.1's "Global best interval tracking":
// preferred by (large length, long seed, deeper extension).
type bestInterval struct {
	valid         bool
	interval      hashtable.Interval
	seed          seed.Seed
	seedLength    int
	halfExtension int
}

func (b bestInterval) worseThan(o bestInterval) bool {
	if !b.valid {
		return true
	}
	if o.interval.Length != b.interval.Length {
		return o.interval.Length > b.interval.Length
	}
	if o.seedLength != b.seedLength {
		return o.seedLength > b.seedLength
	}
	return o.halfExtension > b.halfExtension
}

// Map computes the seed positions for read, per §4.1's full control flow:
// placement -> primary probe -> extension -> interval expansion/sampling,
// plus the read-wide global-best-interval fallback sampling pass.
func (m *Mapper) Map(read *seq.Read) []Position {
	placements := seed.Placements(read, m.cfg.PrimarySeedBases, m.cfg.SeedPeriod, m.cfg.SeedPattern, m.cfg.ForceLastNSeeds)

	var out []Position
	var best bestInterval
	longestNonSampleSeedLen := 0
	readPosInTmpl := int(read.Mate) - 1
	if readPosInTmpl < 0 {
		readPosInTmpl = 0
	}

	for _, pl := range placements {
		s := seed.New(read, pl.Offset, pl.Length)
		positions, sampleCandidate, extFailed := m.probeSeed(s, readPosInTmpl)
		_ = extFailed
		for _, p := range positions {
			out = append(out, p)
			if !p.IsRandomSample && p.Seed.Length > longestNonSampleSeedLen {
				longestNonSampleSeedLen = p.Seed.Length
			}
		}
		if sampleCandidate.valid && best.worseThan(sampleCandidate) {
			best = sampleCandidate
		}
	}

	if best.valid {
		nonSampleChains := 0
		for _, p := range out {
			if !p.IsRandomSample {
				nonSampleChains++
			}
		}
		if nonSampleChains == 0 || longestNonSampleSeedLen < best.seedLength {
			out = append(out, m.sampleExtra(best, readPosInTmpl)...)
		}
	}

	return out
}

// probeSeed runs the primary probe and, if needed, the extension loop for a
// single seed placement. It returns any resolved seed positions, a
// candidate for the global best-interval tracker (if the probe yielded an
// over-frequency interval), and whether extension failed outright.
func (m *Mapper) probeSeed(s seed.Seed, readPosInTmpl int) ([]Position, bestInterval, bool) {
	canon := s.PrimaryData()
	hasher := m.hashers.Primary
	word := canon.Word

	curSeed := s
	halfExt := 0
	for {
		h := hasher.Hash64(word)
		res := m.table.Probe(h)

		if len(res.Hits) > 0 {
			return m.hitsToPositions(res.Hits, curSeed, halfExt, canon.Orientation, false, false), bestInterval{}, false
		}

		if len(res.Intervals) > 0 {
			iv := hashtable.CombineIntervalRecords(res.Intervals)
			if int(iv.Length) > 0 && int(iv.Length) <= m.cfg.MaxSeedFrequency {
				return m.enumerateInterval(iv, curSeed, halfExt, canon.Orientation), bestInterval{}, false
			}
			cand := bestInterval{valid: true, interval: iv, seed: curSeed, seedLength: curSeed.Length, halfExtension: halfExt}
			// §4.1's 1-sample mode: also draw one sample immediately after
			// a seed that didn't fit the enumerate ceiling, distinct from
			// the end-of-read K-sample fallback over the globally best
			// interval.
			sampled := m.sampleOne(iv, curSeed, readPosInTmpl)
			return sampled, cand, false
		}

		if res.Extend == nil {
			return nil, bestInterval{}, true
		}

		ext := res.Extend
		if ext.ExtensionLength <= 0 || halfExt+ext.ExtensionLength/2 > m.cfg.MaxExtIncrement {
			return nil, bestInterval{}, true
		}
		extCanon, ok := curSeed.ExtendedData(ext.ExtensionLength / 2)
		if !ok {
			return nil, bestInterval{}, true
		}
		curSeed = seed.New(curSeed.Read, curSeed.Offset-ext.ExtensionLength/2, curSeed.Length+ext.ExtensionLength)
		halfExt += ext.ExtensionLength / 2
		word = extCanon.Word ^ ext.ExtensionID
		canon = extCanon
		hasher = m.hashers.Secondary
	}
}

func (m *Mapper) hitsToPositions(hits []hashtable.Record, s seed.Seed, halfExt int, orient seed.Orientation, sample, extra bool) []Position {
	out := make([]Position, 0, len(hits))
	for _, h := range hits {
		o := orient
		if h.ReverseComplement {
			o = seed.ReverseComplement
		}
		out = append(out, Position{Seed: s, RefPos: h.Position, HalfExtension: halfExt, Orientation: o, IsRandomSample: sample, Extra: extra})
	}
	return out
}

func (m *Mapper) enumerateInterval(iv hashtable.Interval, s seed.Seed, halfExt int, orient seed.Orientation) []Position {
	out := make([]Position, 0, iv.Length)
	for i := uint64(0); i < iv.Length; i++ {
		rec := m.ext.At(iv.Start + i)
		if rec.Type != hashtable.Hit {
			continue
		}
		out = append(out, m.hitsToPositions([]hashtable.Record{rec}, s, halfExt, orient, false, false)...)
	}
	return out
}

// sampleOne draws a single deterministic sample from iv using the 1-sample
// CRC32C seeding mode (§4.1), used after a seed probe yields an
// over-frequency interval.
func (m *Mapper) sampleOne(iv hashtable.Interval, s seed.Seed, readPosInTmpl int) []Position {
	fetched := make(map[uint64]bool)
	idxs := hashtable.Sample(m.ext, iv, hashtable.SampleParams{
		Mode:          hashtable.SingleSample,
		ReadName:      s.Read.Name,
		ReadPosInTmpl: readPosInTmpl,
		ReadOffset:    s.Offset,
	}, 1, func(extIdx uint64, rec hashtable.Record) bool {
		if fetched[rec.Position] {
			return true
		}
		fetched[rec.Position] = true
		return false
	})
	return m.idxsToPositions(idxs, s, 0, true, false)
}

// sampleExtra draws up to ExtraIntervalSample samples from the read-wide
// best interval, marking resulting chains Extra per §4.1's "Global best
// interval tracking".
func (m *Mapper) sampleExtra(b bestInterval, readPosInTmpl int) []Position {
	fetched := make(map[uint64]bool)
	idxs := hashtable.Sample(m.ext, b.interval, hashtable.SampleParams{
		Mode:          hashtable.KSample,
		ReadName:      b.seed.Read.Name,
		ReadPosInTmpl: readPosInTmpl,
	}, m.cfg.ExtraIntervalSample, func(extIdx uint64, rec hashtable.Record) bool {
		if fetched[rec.Position] {
			return true
		}
		fetched[rec.Position] = true
		return false
	})
	return m.idxsToPositions(idxs, b.seed, b.halfExtension, true, true)
}

func (m *Mapper) idxsToPositions(idxs []uint64, s seed.Seed, halfExt int, sample, extra bool) []Position {
	out := make([]Position, 0, len(idxs))
	for _, idx := range idxs {
		rec := m.ext.At(idx)
		if rec.Type != hashtable.Hit {
			continue
		}
		out = append(out, m.hitsToPositions([]hashtable.Record{rec}, s, halfExt, seed.Forward, sample, extra)...)
	}
	return out
}
