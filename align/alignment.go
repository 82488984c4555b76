package align

import (
	"github.com/biogo/hts/sam"

	"github.com/dragen-os/dragen-os/seed"
)

// Alignment is one candidate placement of a read against the reference
// (§3's "Alignment" data model), carrying enough state for the pair builder
// to score, rank, and eventually emit it as a SAM/BAM record.
type Alignment struct {
	RefID       int
	Position    uint64 // 0-based genome-wide offset of the first aligned reference base
	Orientation seed.Orientation
	Cigar       sam.Cigar

	Score          int
	PotentialScore int // upper bound usable before running SW (§4.5)
	XS             int // best alternative alignment score seen for this read
	NM             int // edit distance (mismatches + inserted + deleted bases)
	MAPQ           int

	Flags sam.Flags

	MateRefID    int
	MatePosition uint64
	TemplateLen  int

	Perfect           bool // built from a single full-length seed, no SW needed
	SmithWatermanDone bool
	Filtered          bool
	Ineligible        bool // chain started inside a reference hole (§9)

	// SA points at the chimeric supplementary alignment this one links to,
	// if any (§9's "SA tag / chimeric linking" supplement). Nil for the
	// common case.
	SA *Alignment
}

// EndPosition returns the last reference base this alignment's CIGAR
// consumes, per §3's "a.position + a.cigar.referenceSpan - 1 = a.endPosition"
// invariant.
func (a *Alignment) EndPosition() uint64 {
	if len(a.Cigar) == 0 {
		return a.Position
	}
	return a.Position + uint64(ReferenceSpan(a.Cigar)) - 1
}

// Unmapped reports whether a has no reference placement at all.
func (a *Alignment) Unmapped() bool { return a.Flags&sam.Unmapped != 0 }

// Pair is a pair of alignments (one per mate) sharing a fragment, plus the
// pair-level score the pair builder assigns (§4.6).
type Pair struct {
	Mate1, Mate2 *Alignment
	PairScore    int
	Proper       bool
}
