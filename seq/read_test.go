package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReadForcesNQuality(t *testing.T) {
	bases := EncodeASCII([]byte("ACNGT"))
	quals := []byte{30, 30, 30, 30, 30}
	r := NewRead([]byte("r1"), bases, quals, 0, Mate1)
	assert.Equal(t, byte(QualSentinelN), r.Quals[2])
	assert.Equal(t, byte(30), r.Quals[0])
}

func TestNewReadLengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRead([]byte("r1"), EncodeASCII([]byte("ACGT")), []byte{1, 2, 3}, 0, Mate1)
	})
}

func TestTrimmedName(t *testing.T) {
	r := NewRead([]byte("read1 extra stuff"), EncodeASCII([]byte("AC")), []byte{30, 30}, 0, Mate1)
	assert.Equal(t, "read1", string(r.TrimmedName()))
}

func TestPairAverageLength(t *testing.T) {
	r1 := NewRead([]byte("a"), EncodeASCII([]byte("ACGT")), []byte{30, 30, 30, 30}, 0, Mate1)
	r2 := NewRead([]byte("a"), EncodeASCII([]byte("ACGTACGT")), make([]byte, 8), 0, Mate2)
	p := Pair{r1, r2}
	assert.Equal(t, 6.0, p.AverageLength())
}
