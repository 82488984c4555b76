package align

import (
	"github.com/biogo/hts/sam"

	"github.com/dragen-os/dragen-os/align/striped"
	"github.com/dragen-os/dragen-os/align/wavefront"
	"github.com/dragen-os/dragen-os/chain"
	"github.com/dragen-os/dragen-os/refdir"
	"github.com/dragen-os/dragen-os/seed"
	"github.com/dragen-os/dragen-os/seq"
)

// Backend is the external contract both SW engines satisfy (§4.4: "Both
// backends satisfy the same external contract").
type Backend interface {
	Align(query, ref []byte) wavefront.Result
}

// Generator turns chains into Alignments by computing a reference window per
// chain, scoring it ungapped first, and invoking the configured SW backend
// for every non-perfect chain whose ungapped score falls short of the read's
// potential score (§4.5's "ungapped scoring first, potential-score bound,
// conditional SW invocation").
type Generator struct {
	ref     *refdir.Reference
	backend Backend
	scores  wavefront.Scores
	// flank is the extra reference padding added on each side of a chain's
	// read-span projection, absorbing indels the chain itself didn't see.
	flank int
}

// NewGenerator constructs a Generator. useStriped selects the vectorized
// striped backend (§4.4) in place of the wavefront reference implementation
// when the runtime CPU supports it; callers typically pass
// striped.Available() && wantStriped.
func NewGenerator(ref *refdir.Reference, cfg wavefront.Config, useStriped bool) *Generator {
	var backend Backend
	if useStriped && striped.Available() {
		backend = striped.New(cfg)
	} else {
		backend = wavefront.New(cfg)
	}
	return &Generator{ref: ref, backend: backend, scores: cfg.Scores, flank: cfg.Width}
}

// refWindow computes the genome-wide start offset and length of the
// reference interval a chain should be aligned against: the chain's
// diagonal projected across the full read length, padded by flank bases on
// each side to absorb indels beyond what the chain's seeds directly cover.
func (g *Generator) refWindow(c *chain.Chain, readLen int) (start uint64, length int) {
	d := c.Diagonal()
	lo := d - int64(g.flank)
	length = readLen + 2*g.flank
	if lo < 0 {
		length += int(lo)
		lo = 0
	}
	return uint64(lo), length
}

// ungappedScore scores query against ref base-for-base with no gaps, the
// cheap bound §4.5 uses before deciding whether a full SW pass is needed.
func ungappedScore(query, ref seq.Bases, sc wavefront.Scores) int {
	n := len(query)
	if len(ref) < n {
		n = len(ref)
	}
	total := 0
	for i := 0; i < n; i++ {
		switch {
		case query[i] == seq.BaseN || ref[i] == seq.BaseN:
			total += int(sc.NScore)
		case query[i] == ref[i]:
			total += int(sc.Match)
		default:
			total += int(sc.Mismatch)
		}
	}
	return total
}

// potentialScore returns the best score a chain could possibly achieve: a
// perfect match across the read's full length plus the unclip bonus at both
// ends, the bound used to decide
// whether an already-computed best alignment can be beaten (§4.5).
func potentialScore(readLen int, sc wavefront.Scores) int {
	return readLen*int(sc.Match) + 2*int(sc.UnclipScore)
}

// Generate builds one Alignment per (unfiltered) chain in chains, running SW
// only when the ungapped score over the chain's reference window falls
// short of the read's potential score. bestSoFar does not affect the result.
func (g *Generator) Generate(read *seq.Read, orient seed.Orientation, chains []*chain.Chain, bestSoFar int) []*Alignment {
	out := make([]*Alignment, 0, len(chains))
	query := read.Bases
	if orient == seed.ReverseComplement {
		query = query.ReverseComplement()
	}
	pot := potentialScore(read.Len(), g.scores)

	for _, c := range chains {
		if c.Filtered {
			continue
		}
		start, length := g.refWindow(c, read.Len())
		refView := g.ref.View(start, length, false)

		a := &Alignment{Orientation: orient, PotentialScore: pot, Perfect: c.Perfect}
		if name, _, err := g.ref.ContigCoord(start); err == nil {
			a.RefID = g.ref.SeqIndex(name)
		}
		a.Ineligible = g.ref.InHole(start) || g.ref.InHole(start+uint64(length)-1)

		if c.Perfect {
			a.Position = start + uint64(g.flank)
			a.Score = read.Len() * int(g.scores.Match)
			a.Cigar = sam.Cigar{sam.NewCigarOp(sam.CigarMatch, read.Len())}
			a.SmithWatermanDone = false
			out = append(out, a)
			continue
		}

		ug := ungappedScore(query, refView[g.flank:], g.scores)
		if ug >= pot {
			// The ungapped score already matches the achievable ceiling:
			// skip the SW pass (§4.5).
			a.Position = start + uint64(g.flank)
			a.Score = ug
			a.Cigar = sam.Cigar{sam.NewCigarOp(sam.CigarMatch, read.Len())}
			a.SmithWatermanDone = false
			out = append(out, a)
			continue
		}

		res := g.backend.Align(toBytes(query), toBytes(refView))
		a.Position = start + uint64(res.RefBegin)
		a.Score = res.Score
		a.Cigar = res.Cigar
		a.SmithWatermanDone = true
		a.Perfect = res.Perfect
		out = append(out, a)
	}
	return out
}

func toBytes(b seq.Bases) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = byte(v)
	}
	return out
}
