// Package chain implements the chain builder (§4.2): grouping seed
// positions sharing an orientation and an approximately constant diagonal
// into candidate alignment regions, then filtering dominated chains.
package chain

import (
	"sort"

	"github.com/dragen-os/dragen-os/seed"
	"github.com/dragen-os/dragen-os/seedmap"
)

// Entry is one seed position folded into a chain, retaining enough of the
// originating seedmap.Position to recompute read-offset span and diagonal.
type Entry struct {
	ReadOffset    int
	SeedLength    int
	RefPos        uint64
	HalfExtension int
	IsSample      bool
}

// Diagonal returns d = refPos - readOffset, the chain-membership axis used
// throughout §4.2.
func (e Entry) Diagonal() int64 { return int64(e.RefPos) - int64(e.ReadOffset) }

// Chain is an ordered list of seed positions on a common diagonal (§3's
// "Seed chain").
type Chain struct {
	Orientation       seed.Orientation
	Entries           []Entry
	Filtered          bool
	Perfect           bool
	OnlyRandomSamples bool
	Extra             bool
}

// Diagonal returns the chain's representative diagonal: that of its first
// entry (subsequent entries are only admitted within tolerance of it).
func (c *Chain) Diagonal() int64 {
	if len(c.Entries) == 0 {
		return 0
	}
	return c.Entries[0].Diagonal()
}

// ReadSpan returns [first read offset, last read offset+length) covered by
// the chain.
func (c *Chain) ReadSpan() (lo, hi int) {
	lo = c.Entries[0].ReadOffset
	hi = c.Entries[0].ReadOffset + c.Entries[0].SeedLength
	for _, e := range c.Entries[1:] {
		if e.ReadOffset < lo {
			lo = e.ReadOffset
		}
		if e.ReadOffset+e.SeedLength > hi {
			hi = e.ReadOffset + e.SeedLength
		}
	}
	return lo, hi
}

// CoveredLength returns the total distinct read length the chain's entries
// span, used to rank chains by §4.2's "decreasing covered read length".
func (c *Chain) CoveredLength() int {
	lo, hi := c.ReadSpan()
	return hi - lo
}

func (c *Chain) lastReadOffset() int {
	last := c.Entries[len(c.Entries)-1]
	return last.ReadOffset
}

// baseTolerance is the diagonal tolerance for a zero-half-extension seed
// position; tolerance grows with half-extension to absorb indels (§4.2).
const baseTolerance = 2

func tolerance(halfExtension int) int64 {
	return int64(baseTolerance + halfExtension)
}

// Builder accumulates seed positions for one read orientation into chains,
// per §4.2. FromPositions creates a fresh pair of Builders (one per
// orientation) on each call; Reset allows a Builder to be reused across
// reads instead (§4.5).
type Builder struct {
	chains         []*Chain
	filterLenRatio float64
}

// NewBuilder constructs an empty Builder.
func NewBuilder() *Builder { return &Builder{filterLenRatio: 1.0} }

// SetFilterConstant configures the dominance filter's length-ratio
// threshold in terms of the primary seed length, matching the original's
// "setFilterConstant(seedLength)" call in Mapper::getPositionChains.
func (b *Builder) SetFilterConstant(seedLength int) {
	if seedLength <= 0 {
		b.filterLenRatio = 1.0
		return
	}
	b.filterLenRatio = 1.0 + 1.0/float64(seedLength)
}

// Reset clears the builder for reuse on the next read, per §4.5's
// reallocation-avoidance requirement.
func (b *Builder) Reset() { b.chains = b.chains[:0] }

// Add inserts one seed position. It chooses an existing chain whose
// diagonal is within tolerance of the new entry's diagonal and whose last
// read offset precedes the new one; otherwise it starts a new chain, per
// §4.2.
func (b *Builder) Add(orient seed.Orientation, e Entry) {
	tol := tolerance(e.HalfExtension)
	d := e.Diagonal()
	for _, c := range b.chains {
		if c.Orientation != orient {
			continue
		}
		if c.lastReadOffset() >= e.ReadOffset {
			continue
		}
		if abs64(c.Diagonal()-d) > tol {
			continue
		}
		c.Entries = append(c.Entries, e)
		if !e.IsSample {
			c.OnlyRandomSamples = false
		}
		c.Perfect = false // a chain with more than one contributing entry is never "perfect"
		return
	}
	nc := &Chain{
		Orientation:       orient,
		Entries:           []Entry{e},
		OnlyRandomSamples: e.IsSample,
	}
	b.chains = append(b.chains, nc)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// MarkPerfect flags c as perfect when it holds exactly one entry and that
// entry has zero half-extension. It does not compare the seed's length with
// the read length or check that the match is exact. FromPositions calls it
// after adding each entry.
func (b *Builder) MarkPerfect(c *Chain) {
	if len(c.Entries) == 1 && c.Entries[0].HalfExtension == 0 {
		c.Perfect = true
	}
}

// Chains returns the builder's current chain list.
func (b *Builder) Chains() []*Chain { return b.chains }

// dominationDiagonalTolerance bounds how close two chains' diagonals must be
// for one to dominate the other (§4.2: "their diagonals differ by at most a
// small constant").
const dominationDiagonalTolerance = 4

// dominates reports whether a dominates b: diagonals close, a's read-offset
// span contains b's, and a's covered length strictly exceeds
// filterLenRatio*b's length.
func dominates(a, b *Chain, filterLenRatio float64) bool {
	if abs64(a.Diagonal()-b.Diagonal()) > dominationDiagonalTolerance {
		return false
	}
	aLo, aHi := a.ReadSpan()
	bLo, bHi := b.ReadSpan()
	if !(aLo <= bLo && aHi >= bHi) {
		return false
	}
	return float64(a.CoveredLength()) > filterLenRatio*float64(b.CoveredLength())
}

// FilterChains sorts chains by decreasing covered length and marks
// dominated chains Filtered, per §4.2. Filtered chains are preserved in
// place (not removed) so the read-pair aligner can later de-filter one that
// becomes a pair candidate.
func (b *Builder) FilterChains() {
	sort.SliceStable(b.chains, func(i, j int) bool {
		return b.chains[i].CoveredLength() > b.chains[j].CoveredLength()
	})
	for i, c := range b.chains {
		if c.Filtered {
			continue
		}
		for j := 0; j < len(b.chains); j++ {
			if i == j || b.chains[j].Filtered {
				continue
			}
			if dominates(c, b.chains[j], b.filterLenRatio) {
				b.chains[j].Filtered = true
			}
		}
	}
}

// Defilter clears a chain's Filtered flag, used when the pair builder
// decides to promote an otherwise-dominated chain into a pair candidate
// (§4.5's "Aligners maintain two chain builders ... ", §4.6's
// "de-filtering chains if needed").
func Defilter(c *Chain) { c.Filtered = false }

// FromPositions groups a slice of seedmap.Position into per-orientation
// chains using two fresh Builders, then filters dominated chains. This is
// the convenience entry point the read-pair aligner calls per read.
func FromPositions(positions []seedmap.Position, primarySeedLength int) (forward, reverse *Builder) {
	forward, reverse = NewBuilder(), NewBuilder()
	forward.SetFilterConstant(primarySeedLength)
	reverse.SetFilterConstant(primarySeedLength)
	for _, p := range positions {
		e := Entry{
			ReadOffset:    p.Seed.Offset,
			SeedLength:    p.Seed.Length,
			RefPos:        p.RefPos,
			HalfExtension: p.HalfExtension,
			IsSample:      p.IsRandomSample,
		}
		b := forward
		if p.Orientation == seed.ReverseComplement {
			b = reverse
		}
		b.Add(p.Orientation, e)
		if len(b.chains) > 0 {
			last := b.chains[len(b.chains)-1]
			if last.Entries[len(last.Entries)-1] == e {
				b.MarkPerfect(last)
			}
		}
		if p.Extra {
			for _, c := range b.chains {
				if c.Entries[len(c.Entries)-1] == e {
					c.Extra = true
				}
			}
		}
	}
	forward.FilterChains()
	reverse.FilterChains()
	return forward, reverse
}
