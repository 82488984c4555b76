package pipeline

import "github.com/dragen-os/dragen-os/insertsize"

// Estimator adapts an insertsize.Estimator to the pipeline's
// InsertSizeEstimator interface, feeding it every properly-paired
// template length observed in a block once that block has been aligned.
type Estimator struct {
	inner *insertsize.Estimator
}

// NewEstimator wraps inner for use as a Pipeline's InsertSizeEstimator.
func NewEstimator(inner *insertsize.Estimator) *Estimator {
	return &Estimator{inner: inner}
}

// Snapshot implements InsertSizeEstimator.
func (e *Estimator) Snapshot() insertsize.Parameters { return e.inner.Snapshot() }

// Observe implements InsertSizeEstimator, folding every proper pair's
// template length from b's outcomes into the running model.
func (e *Estimator) Observe(b *Block) {
	for _, o := range b.Outcomes {
		if o.Pair == nil || !o.Pair.Proper {
			continue
		}
		e.inner.Add(o.Pair.Mate1.TemplateLen)
	}
}
