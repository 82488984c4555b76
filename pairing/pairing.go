package pairing

import (
	"sort"

	"github.com/biogo/hts/sam"

	"github.com/dragen-os/dragen-os/align"
	"github.com/dragen-os/dragen-os/insertsize"
	"github.com/dragen-os/dragen-os/seed"
)

// State is the per-read-pair aligner's progress through §4.6's state
// machine.
type State uint8

const (
	New State = iota
	HasChains
	HasUnpairedAlignments
	HasPairCandidates
	PickedBest
	AllUnmapped
)

// Candidate is one candidate pairing of a mate-1 and mate-2 alignment,
// scored against the running insert-size model.
type Candidate struct {
	Mate1, Mate2 *align.Alignment
	PairScore    int
	Proper       bool
}

// scorePair combines both mates' alignment scores with an insert-size
// penalty from the running model (§4.6: "scores pair candidates against a
// running insert-size model").
func scorePair(m1, m2 *align.Alignment, params insertsize.Parameters) Candidate {
	tlen := templateLength(m1, m2)
	proper := params.IsProper(tlen)
	penalty := 0
	if !proper {
		penalty = params.Penalty(tlen)
	}
	return Candidate{
		Mate1:     m1,
		Mate2:     m2,
		PairScore: m1.Score + m2.Score - penalty,
		Proper:    proper,
	}
}

func templateLength(m1, m2 *align.Alignment) int {
	lo, hi := m1.Position, m1.EndPosition()
	if m2.Position < lo {
		lo = m2.Position
	}
	if m2.EndPosition() > hi {
		hi = m2.EndPosition()
	}
	if m1.RefID != m2.RefID {
		return 0
	}
	return int(hi - lo + 1)
}

// BuildCandidates enumerates every (mate1, mate2) alignment pair sharing a
// reference id, scoring each against params (§4.6's pair enumeration). Only
// the alignments passed in are paired; no mate rescue is performed to add
// candidates.
func BuildCandidates(mate1Aligns, mate2Aligns []*align.Alignment, params insertsize.Parameters) []Candidate {
	var out []Candidate
	for _, a := range mate1Aligns {
		for _, b := range mate2Aligns {
			if a.RefID != b.RefID {
				continue
			}
			out = append(out, scorePair(a, b, params))
		}
	}
	return out
}

// PickBest selects the highest-scoring pair candidate, along with the second
// best score (for MAPQ) among candidates that do not share both of the
// winner's alignments, per §4.6.
func PickBest(cands []Candidate) (best *Candidate, secondScore int) {
	if len(cands) == 0 {
		return nil, 0
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].PairScore > cands[j].PairScore })
	best = &cands[0]
	secondScore = 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Mate1 == best.Mate1 && cands[i].Mate2 == best.Mate2 {
			continue
		}
		secondScore = cands[i].PairScore
		break
	}
	return best, secondScore
}

// PickSingle selects the highest-scoring unpaired alignment for a read whose
// mate could not be placed (or has no mate), along with the second-best
// score among the remaining alignments, per §4.6's single-end fallback.
func PickSingle(aligns []*align.Alignment) (best *align.Alignment, secondScore int) {
	if len(aligns) == 0 {
		return nil, 0
	}
	sort.SliceStable(aligns, func(i, j int) bool { return aligns[i].Score > aligns[j].Score })
	best = aligns[0]
	if len(aligns) > 1 {
		secondScore = aligns[1].Score
	}
	return best, secondScore
}

// Finalize assigns MAPQ and the standard pairing flags to a picked pair,
// marking every other candidate alignment secondary. mapq1/mapq2 are
// computed independently per mate against that mate's own second-best
// score, matching the original's per-mate MAPQ assignment even when the
// pair as a whole was chosen jointly.
func Finalize(best *Candidate, secondScore int, allMate1, allMate2 []*align.Alignment) {
	best.Mate1.MAPQ = MAPQ(best.Mate1.Score, secondBestExcluding(allMate1, best.Mate1), readLenOf(best.Mate1))
	best.Mate2.MAPQ = MAPQ(best.Mate2.Score, secondBestExcluding(allMate2, best.Mate2), readLenOf(best.Mate2))
	best.Mate1.XS = secondBestExcluding(allMate1, best.Mate1)
	best.Mate2.XS = secondBestExcluding(allMate2, best.Mate2)

	best.Mate1.Flags |= sam.Paired | sam.Read1
	best.Mate2.Flags |= sam.Paired | sam.Read2
	if best.Proper {
		best.Mate1.Flags |= sam.ProperPair
		best.Mate2.Flags |= sam.ProperPair
	}
	if best.Mate1.Orientation == seed.ReverseComplement {
		best.Mate1.Flags |= sam.Reverse
		best.Mate2.Flags |= sam.MateReverse
	}
	if best.Mate2.Orientation == seed.ReverseComplement {
		best.Mate2.Flags |= sam.Reverse
		best.Mate1.Flags |= sam.MateReverse
	}

	best.Mate1.MateRefID, best.Mate1.MatePosition = best.Mate2.RefID, best.Mate2.Position
	best.Mate2.MateRefID, best.Mate2.MatePosition = best.Mate1.RefID, best.Mate1.Position

	tlen := templateLength(best.Mate1, best.Mate2)
	best.Mate1.TemplateLen, best.Mate2.TemplateLen = tlen, -tlen

	markSecondary(allMate1, best.Mate1)
	markSecondary(allMate2, best.Mate2)
}

func secondBestExcluding(aligns []*align.Alignment, primary *align.Alignment) int {
	second := 0
	for _, a := range aligns {
		if a == primary {
			continue
		}
		if a.Score > second {
			second = a.Score
		}
	}
	return second
}

func markSecondary(aligns []*align.Alignment, primary *align.Alignment) {
	for _, a := range aligns {
		if a != primary {
			a.Flags |= sam.Secondary
			a.Cigar = hardClip(a.Cigar)
		}
	}
}

func hardClip(c sam.Cigar) sam.Cigar {
	out := make(sam.Cigar, len(c))
	copy(out, c)
	for i, op := range out {
		if op.Type() == sam.CigarSoftClipped {
			out[i] = sam.NewCigarOp(sam.CigarHardClipped, op.Len())
		}
	}
	return out
}
