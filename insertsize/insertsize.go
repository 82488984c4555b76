// Package insertsize implements the running insert-size estimator (§4.7): a
// rolling mean/stddev of observed proper-pair template lengths, used by the
// pair builder to score candidate pairings and to derive the sigma-factor
// fixed-point constant that record.InsertSigmaFactor turns into the XI tag
// value.
package insertsize

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Parameters is the running model's current estimate, snapshotted for the
// pair builder to score candidate pairs against (§4.6's "running insert-size
// model").
type Parameters struct {
	Mean       float64
	StdDev     float64
	Confident  bool // enough observations accumulated to trust Mean/StdDev
	SigmaRange float64
}

// IsProper reports whether a template length of tlen falls within the
// confident model's "proper pair" window: within SigmaRange standard
// deviations of the mean (§4.7).
func (p Parameters) IsProper(tlen int) bool {
	if !p.Confident {
		return tlen > 0 && tlen < 2000 // a permissive default before the model converges
	}
	d := math.Abs(float64(tlen) - p.Mean)
	return d <= p.SigmaRange*p.StdDev
}

// Penalty returns the pair-score penalty for a template length outside the
// proper-pair window, growing linearly with how many standard deviations
// away tlen falls (§4.6).
func (p Parameters) Penalty(tlen int) int {
	if !p.Confident || p.StdDev == 0 {
		return 0
	}
	d := math.Abs(float64(tlen)-p.Mean) / p.StdDev
	return int(d * 2)
}

// sigmaFactorBase is the fixed-point numerator used to derive the
// sigma-factor constant surfaced to record emission: round(0x2F200 /
// stddev), saturating at 0xFFFF (§9's Open Question resolution: nearest,
// ties-to-even).
const sigmaFactorBase = 0x2F200

// SigmaFactor returns the fixed-point sigma-factor constant for the given
// standard deviation, rounding to nearest with ties-to-even and saturating
// at 0xFFFF.
func SigmaFactor(stddev float64) uint16 {
	if stddev <= 0 {
		return 0xFFFF
	}
	v := float64(sigmaFactorBase) / stddev
	r := math.RoundToEven(v)
	if r > 0xFFFF {
		return 0xFFFF
	}
	if r < 0 {
		return 0
	}
	return uint16(r)
}

// minConfidentSamples is the number of proper-pair observations the
// estimator requires before Confident flips true, giving the pipeline's
// early blocks a stable (if permissive) fallback window.
const minConfidentSamples = 10000

// maxSamples bounds the rolling window's memory footprint; once reached, the
// oldest third of samples is dropped to make room, approximating a sliding
// window without an unbounded slice (§4.7's "rolling" estimator).
const maxSamples = 100000

// Estimator accumulates observed template lengths and derives Parameters
// from them using gonum's mean/stddev, matching how a streaming QC tool
// reports rolling statistics rather than hand-rolling Welford's algorithm.
type Estimator struct {
	samples    []float64
	sigmaRange float64
}

// NewEstimator constructs an Estimator using sigmaRange standard deviations
// to define the "proper pair" window (§4.7 names no fixed default; 3.0
// matches common short-read aligner practice and the original's worked
// examples).
func NewEstimator(sigmaRange float64) *Estimator {
	if sigmaRange <= 0 {
		sigmaRange = 3.0
	}
	return &Estimator{sigmaRange: sigmaRange}
}

// Add records one observed template length from a confidently-proper pair
// (§4.7: "computes insert statistics in FIFO order" as the pipeline streams
// blocks through).
func (e *Estimator) Add(tlen int) {
	if tlen <= 0 {
		return
	}
	e.samples = append(e.samples, float64(tlen))
	if len(e.samples) > maxSamples {
		drop := len(e.samples) / 3
		e.samples = append(e.samples[:0], e.samples[drop:]...)
	}
}

// Snapshot returns the estimator's current Parameters.
func (e *Estimator) Snapshot() Parameters {
	if len(e.samples) < minConfidentSamples {
		return Parameters{SigmaRange: e.sigmaRange}
	}
	mean, std := stat.MeanStdDev(e.samples, nil)
	return Parameters{Mean: mean, StdDev: std, Confident: true, SigmaRange: e.sigmaRange}
}

// NumSamples returns how many observations have been folded into the
// estimator so far, used by the pipeline to decide when a block's pairing
// pass can trust Snapshot().
func (e *Estimator) NumSamples() int { return len(e.samples) }
