// Package pipeline implements the concurrent read-pair pipeline (§4.8):
// reads are grouped into fixed-size blocks, insert-size statistics are
// folded in strict block order, alignment runs with intra-block
// parallelism, and output records are emitted in the original input order.
//
// Blocks flow through three goroutines connected by channels — reader,
// align (which owns the insert-size estimator and so processes blocks
// strictly in order), and writer — the same channel-mediated worker shape
// mark_duplicates.go uses for its shard pipeline, generalized from one
// stage to three so reading, aligning, and emitting overlap across
// consecutive blocks while each stage's own within-block work can still use
// traverse for fan-out.
package pipeline

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/dragen-os/dragen-os/insertsize"
	"github.com/dragen-os/dragen-os/pairing"
	"github.com/dragen-os/dragen-os/seq"
)

// BlockSize is the number of read pairs grouped into one pipeline block
// (§4.8: "RECORDS_AT_A_TIME", typically 100000).
const BlockSize = 100000

// Block is one fixed-size group of read pairs carried through the
// pipeline's ordered stages.
type Block struct {
	Index int
	Pairs []seq.Pair

	InsertParams insertsize.Parameters
	Outcomes     []pairing.Outcome
}

// Source reads successive blocks of read pairs. A nil, nil return signals
// end of input.
type Source interface {
	NextBlock() (*Block, error)
}

// Sink emits a block's alignment outcomes. The pipeline guarantees blocks
// arrive at Emit in increasing Index order (§4.8's "emits output records in
// the original input order").
type Sink interface {
	Emit(b *Block) error
}

// Aligner aligns every pair in a block, given the insert-size parameters
// that applied when the block was read. Implementations are expected to
// parallelize across the pairs within one block (see DefaultAligner).
type Aligner interface {
	AlignBlock(b *Block)
}

// InsertSizeEstimator is the running estimator fed in block order so every
// block's insert-size pass sees a model built only from earlier blocks
// (§4.8: "computes insert statistics in FIFO order").
type InsertSizeEstimator interface {
	Snapshot() insertsize.Parameters
	Observe(b *Block)
}

// Pipeline wires a Source, an InsertSizeEstimator, an Aligner, and a Sink
// together with the concurrency and ordering guarantees of §4.8.
type Pipeline struct {
	Source    Source
	Estimator InsertSizeEstimator
	Aligner   Aligner
	Sink      Sink

	// QueueDepth bounds how many blocks may be read ahead of the alignment
	// stage, and how many aligned blocks may wait ahead of the writer. 0
	// picks a small default, giving enough slack to overlap I/O with
	// alignment without holding the whole input in memory.
	QueueDepth int
}

const defaultQueueDepth = 4

// Run drains Source to completion, returning the first error encountered by
// any stage. A failure in one stage is latched via errors.Once and causes
// the other two stages to drain and exit without doing further work,
// mirroring mark_duplicates.go's generatePAM error handling.
func (p *Pipeline) Run() error {
	depth := p.QueueDepth
	if depth <= 0 {
		depth = defaultQueueDepth
	}

	once := errors.Once{}
	toAlign := make(chan *Block, depth)
	toWrite := make(chan *Block, depth)
	done := make(chan struct{})

	go func() {
		defer close(toAlign)
		for {
			if once.Err() != nil {
				return
			}
			b, err := p.Source.NextBlock()
			if err != nil {
				once.Set(errors.E(err, "pipeline: reading block"))
				return
			}
			if b == nil {
				return
			}
			toAlign <- b
		}
	}()

	go func() {
		defer close(toWrite)
		for b := range toAlign {
			if once.Err() != nil {
				continue
			}
			b.InsertParams = p.Estimator.Snapshot()
			func() {
				defer func() {
					if r := recover(); r != nil {
						once.Set(errors.E("pipeline: alignment panic", r))
					}
				}()
				p.Aligner.AlignBlock(b)
			}()
			p.Estimator.Observe(b)
			toWrite <- b
		}
	}()

	go func() {
		defer close(done)
		for b := range toWrite {
			if once.Err() != nil {
				continue
			}
			if err := p.Sink.Emit(b); err != nil {
				once.Set(errors.E(err, fmt.Sprintf("pipeline: emitting block %d", b.Index)))
				continue
			}
			log.Debug.Printf("pipeline: emitted block %d (%d pairs)", b.Index, len(b.Pairs))
		}
	}()

	<-done
	return once.Err()
}
