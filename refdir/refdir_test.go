package refdir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dragen-os/dragen-os/hashtable"
	"github.com/dragen-os/dragen-os/seq"
)

func TestFromConfigPadsAndAligns(t *testing.T) {
	descs := []hashtable.SeqDescriptor{
		{Name: "chr1", Length: 10},
		{Name: "chr2", Length: 2000},
	}
	seqs := FromConfig(descs)
	assert.Len(t, seqs, 2)
	assert.Equal(t, uint64(0), seqs[0].Start%contigAlignment)
	assert.Equal(t, uint64(0), seqs[1].Start%contigAlignment)
	assert.Greater(t, seqs[1].Start, seqs[0].Start+seqs[0].Length)
}

func TestSeqIndexAndInHole(t *testing.T) {
	seqs := []Sequence{{Name: "chr1", Length: 100, Start: 1024}}
	ref := NewReference(make(seq.Bases, 2000), seqs)

	assert.Equal(t, 0, ref.SeqIndex("chr1"))
	assert.Equal(t, -1, ref.SeqIndex("chrX"))
	assert.True(t, ref.InHole(500))
	assert.False(t, ref.InHole(1024))
	assert.False(t, ref.InHole(1123))
	assert.True(t, ref.InHole(1124))
}

func TestContigCoord(t *testing.T) {
	seqs := []Sequence{{Name: "chr1", Length: 100, Start: 1024}}
	ref := NewReference(make(seq.Bases, 2000), seqs)

	name, off, err := ref.ContigCoord(1030)
	assert.NoError(t, err)
	assert.Equal(t, "chr1", name)
	assert.Equal(t, uint64(6), off)

	_, _, err = ref.ContigCoord(0)
	assert.Error(t, err)
}

func TestViewForwardAndReverseComplement(t *testing.T) {
	bases := seq.EncodeASCII([]byte("ACGT"))
	ref := NewReference(bases, nil)

	fwd := ref.View(0, 4, false)
	assert.Equal(t, "ACGT", string(fwd.ASCII()))

	rc := ref.View(0, 4, true)
	assert.Equal(t, "ACGT", string(rc.ASCII())) // ACGT is its own reverse complement
}

func TestViewPastArrayEndPadsWithBasePad(t *testing.T) {
	bases := seq.EncodeASCII([]byte("AC"))
	ref := NewReference(bases, nil)

	out := ref.View(0, 4, false)
	assert.Equal(t, seq.BasePad, out[2])
	assert.Equal(t, seq.BasePad, out[3])
}

func TestTotalPackedLength(t *testing.T) {
	assert.Equal(t, uint64(finalPad), TotalPackedLength(nil))
	seqs := []Sequence{{Name: "chr1", Length: 100, Start: 1024}}
	assert.Equal(t, uint64(1024+100+finalPad), TotalPackedLength(seqs))
}
