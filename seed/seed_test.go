package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dragen-os/dragen-os/seq"
)

func newRead(s string) *seq.Read {
	bases := seq.EncodeASCII([]byte(s))
	quals := make([]byte, len(s))
	for i := range quals {
		quals[i] = 30
	}
	return seq.NewRead([]byte("r"), bases, quals, 0, seq.Mate1)
}

func TestPrimaryDataCanonicalizesToSmallerWord(t *testing.T) {
	r := newRead("AAAAACGTACG")
	s := New(r, 0, r.Len())
	c := s.PrimaryData()
	fwd := packWord(r.Bases, 0, r.Len(), false)
	rev := packWord(r.Bases, 0, r.Len(), true)
	if fwd < rev {
		assert.Equal(t, Forward, c.Orientation)
		assert.Equal(t, fwd, c.Word)
	} else {
		assert.Equal(t, ReverseComplement, c.Orientation)
		assert.Equal(t, rev, c.Word)
	}
}

func TestExtendedDataFailsPastReadEnds(t *testing.T) {
	r := newRead("ACGTACGTAC")
	s := New(r, 0, 6)
	_, ok := s.ExtendedData(3)
	assert.False(t, ok, "extension past the read's start should fail")

	s2 := New(r, 2, 6)
	_, ok2 := s2.ExtendedData(2)
	assert.True(t, ok2)
}

func TestPlacementsSkipsNRuns(t *testing.T) {
	r := newRead("ACGTNNNNNNACGTACGTACGT")
	placements := Placements(r, 4, 1, 0x1, 0)
	for _, p := range placements {
		assert.False(t, r.Bases.HasN(p.Offset, p.Length))
	}
	assert.NotEmpty(t, placements)
}

func TestPlacementsForceLastN(t *testing.T) {
	r := newRead("ACGTACGTACGTACGTACGT")
	// An empty pattern selects no offset in the periodic sweep, so only the
	// forced trailing placements should appear.
	placements := Placements(r, 4, 1000000, 0x0, 2)
	assert.Len(t, placements, 2)
}
