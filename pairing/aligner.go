package pairing

import (
	"github.com/biogo/hts/sam"

	"github.com/dragen-os/dragen-os/align"
	"github.com/dragen-os/dragen-os/chain"
	"github.com/dragen-os/dragen-os/insertsize"
	"github.com/dragen-os/dragen-os/seed"
	"github.com/dragen-os/dragen-os/seedmap"
	"github.com/dragen-os/dragen-os/seq"
)

// ReadPairAligner drives one read pair (or single read) through the full
// §4.6 state machine: mapping each mate's seeds, building and filtering
// per-orientation chains, generating alignments from the surviving chains,
// and picking the best pair or single placement. One instance is reused
// across many read pairs by the pipeline's per-worker state; AlignPair keeps
// no per-read state in it, since chainsForRead gets fresh chain builders for
// each read from chain.FromPositions.
type ReadPairAligner struct {
	mapper *seedmap.Mapper
	gen    *align.Generator

	fwd1, rev1 *chain.Builder
	fwd2, rev2 *chain.Builder

	state State
}

// NewReadPairAligner constructs an aligner over a loaded mapper and
// alignment generator, owning its own chain builders.
func NewReadPairAligner(mapper *seedmap.Mapper, gen *align.Generator) *ReadPairAligner {
	return &ReadPairAligner{
		mapper: mapper,
		gen:    gen,
		fwd1:   chain.NewBuilder(), rev1: chain.NewBuilder(),
		fwd2: chain.NewBuilder(), rev2: chain.NewBuilder(),
	}
}

// Outcome is the result of aligning one pair (or single read): the picked
// pair, or independently picked single alignments, plus every candidate
// alignment generated so secondary/supplementary selection can see them.
type Outcome struct {
	State State

	Pair *Candidate

	Single1, Single2 *align.Alignment

	AllMate1, AllMate2 []*align.Alignment
}

func chainsForRead(mapper *seedmap.Mapper, read *seq.Read, primarySeedLen int) (fwd, rev *chain.Builder) {
	positions := mapper.Map(read)
	fwd, rev = chain.FromPositions(positions, primarySeedLen)
	return fwd, rev
}

// AlignPair runs the full pipeline for a mate pair, returning an Outcome
// whose State reflects how far the state machine got: AllUnmapped if
// neither mate produced any alignment, PickedBest if a pair (or, failing
// that, independent singles) was chosen.
func (a *ReadPairAligner) AlignPair(pair seq.Pair, params insertsize.Parameters, primarySeedLen int) Outcome {
	var mate1Aligns, mate2Aligns []*align.Alignment

	if pair[0] != nil {
		fwd, rev := chainsForRead(a.mapper, pair[0], primarySeedLen)
		mate1Aligns = append(mate1Aligns, a.gen.Generate(pair[0], seed.Forward, fwd.Chains(), 0)...)
		mate1Aligns = append(mate1Aligns, a.gen.Generate(pair[0], seed.ReverseComplement, rev.Chains(), 0)...)
	}
	if pair[1] != nil {
		fwd, rev := chainsForRead(a.mapper, pair[1], primarySeedLen)
		mate2Aligns = append(mate2Aligns, a.gen.Generate(pair[1], seed.Forward, fwd.Chains(), 0)...)
		mate2Aligns = append(mate2Aligns, a.gen.Generate(pair[1], seed.ReverseComplement, rev.Chains(), 0)...)
	}

	out := Outcome{AllMate1: mate1Aligns, AllMate2: mate2Aligns}

	if len(mate1Aligns) == 0 && len(mate2Aligns) == 0 {
		out.State = AllUnmapped
		markUnmapped(pair[0])
		markUnmapped(pair[1])
		return out
	}

	if len(mate1Aligns) > 0 && len(mate2Aligns) > 0 {
		cands := BuildCandidates(mate1Aligns, mate2Aligns, params)
		if len(cands) > 0 {
			best, second := PickBest(cands)
			Finalize(best, second, mate1Aligns, mate2Aligns)
			out.State = PickedBest
			out.Pair = best
			return out
		}
	}

	// No reference-id-compatible pairing exists (or one mate is unmapped):
	// fall back to picking each mate independently (§4.6's single-end path).
	out.State = PickedBest
	if len(mate1Aligns) > 0 {
		best, second := PickSingle(mate1Aligns)
		best.MAPQ = MAPQ(best.Score, second, readLenOf(best))
		best.XS = second
		best.Flags |= sam.Paired | sam.Read1 | sam.MateUnmapped
		markSecondary(mate1Aligns, best)
		out.Single1 = best
	} else {
		markUnmapped(pair[0])
	}
	if len(mate2Aligns) > 0 {
		best, second := PickSingle(mate2Aligns)
		best.MAPQ = MAPQ(best.Score, second, readLenOf(best))
		best.XS = second
		best.Flags |= sam.Paired | sam.Read2 | sam.MateUnmapped
		markSecondary(mate2Aligns, best)
		out.Single2 = best
	} else {
		markUnmapped(pair[1])
	}
	return out
}

func markUnmapped(r *seq.Read) {
	_ = r // the caller emits an unmapped record directly from the read; no Alignment is created for it (§6).
}
