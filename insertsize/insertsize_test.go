package insertsize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProperBeforeConfidentUsesPermissiveWindow(t *testing.T) {
	p := Parameters{}
	assert.True(t, p.IsProper(500))
	assert.False(t, p.IsProper(0))
	assert.False(t, p.IsProper(-5))
}

func TestIsProperAfterConfidentUsesSigmaWindow(t *testing.T) {
	p := Parameters{Mean: 300, StdDev: 20, Confident: true, SigmaRange: 3}
	assert.True(t, p.IsProper(300))
	assert.True(t, p.IsProper(360)) // exactly 3 sigma away
	assert.False(t, p.IsProper(400))
}

func TestPenaltyGrowsWithDistance(t *testing.T) {
	p := Parameters{Mean: 300, StdDev: 20, Confident: true, SigmaRange: 3}
	near := p.Penalty(310)
	far := p.Penalty(500)
	assert.Less(t, near, far)
	assert.Equal(t, 0, p.Penalty(300))
}

func TestPenaltyZeroWhenNotConfident(t *testing.T) {
	p := Parameters{}
	assert.Equal(t, 0, p.Penalty(1000))
}

func TestSigmaFactorSaturatesAtZeroStdDev(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), SigmaFactor(0))
	assert.Equal(t, uint16(0xFFFF), SigmaFactor(-1))
}

func TestSigmaFactorDecreasesAsStdDevGrows(t *testing.T) {
	small := SigmaFactor(10)
	large := SigmaFactor(1000)
	assert.Greater(t, small, large)
}

func TestEstimatorRequiresMinimumSamplesBeforeConfident(t *testing.T) {
	e := NewEstimator(3.0)
	for i := 0; i < minConfidentSamples-1; i++ {
		e.Add(300)
	}
	assert.False(t, e.Snapshot().Confident)
	e.Add(300)
	assert.True(t, e.Snapshot().Confident)
}

func TestEstimatorIgnoresNonPositiveTemplateLengths(t *testing.T) {
	e := NewEstimator(3.0)
	e.Add(0)
	e.Add(-10)
	assert.Equal(t, 0, e.NumSamples())
}

func TestEstimatorSnapshotMeanMatchesConstantSamples(t *testing.T) {
	e := NewEstimator(3.0)
	for i := 0; i < minConfidentSamples; i++ {
		e.Add(400)
	}
	snap := e.Snapshot()
	assert.InDelta(t, 400.0, snap.Mean, 0.001)
	assert.InDelta(t, 0.0, snap.StdDev, 0.001)
}

func TestNewEstimatorDefaultsSigmaRange(t *testing.T) {
	e := NewEstimator(0)
	assert.Equal(t, 3.0, e.sigmaRange)
}
