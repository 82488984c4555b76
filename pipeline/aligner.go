package pipeline

import (
	"sync"

	"github.com/grailbio/base/traverse"

	"github.com/dragen-os/dragen-os/pairing"
)

// Factory builds one ReadPairAligner with its own chain-builder scratch
// state (§4.5's reallocation-avoidance requirement: the aligner's internal
// buffers are reused across every pair it handles, but a single instance is
// never used by two goroutines at once).
type Factory func() *pairing.ReadPairAligner

// DefaultAligner aligns every pair in a block using traverse for
// within-block fan-out, drawing a per-goroutine ReadPairAligner from a pool
// so concurrently-processed pairs never share mutable scratch state.
type DefaultAligner struct {
	NewAligner     Factory
	PrimarySeedLen int

	pool sync.Pool
}

func (a *DefaultAligner) aligner() *pairing.ReadPairAligner {
	if v := a.pool.Get(); v != nil {
		return v.(*pairing.ReadPairAligner)
	}
	return a.NewAligner()
}

// AlignBlock implements Aligner, fanning the block's pairs out across
// traverse's worker pool.
func (a *DefaultAligner) AlignBlock(b *Block) {
	b.Outcomes = make([]pairing.Outcome, len(b.Pairs))
	traverse.Each(len(b.Pairs), func(i int) error {
		al := a.aligner()
		defer a.pool.Put(al)
		b.Outcomes[i] = al.AlignPair(b.Pairs[i], b.InsertParams, a.PrimarySeedLen)
		return nil
	})
}
