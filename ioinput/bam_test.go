package ioinput

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragen-os/dragen-os/seq"
)

func TestMateFromFlags(t *testing.T) {
	assert.Equal(t, seq.Mate1, mateFromFlags(sam.Paired|sam.Read1))
	assert.Equal(t, seq.Mate2, mateFromFlags(sam.Paired|sam.Read2))
	assert.Equal(t, seq.MateUnknown, mateFromFlags(sam.Paired))
}

func buildRecord(t *testing.T, name string, bases string, flags sam.Flags) *sam.Record {
	seqBytes := sam.NewSeq([]byte(bases))
	quals := make([]byte, len(bases))
	for i := range quals {
		quals[i] = 30
	}
	rec, err := sam.NewRecord(name, nil, nil, -1, -1, 0, 0, nil, []byte(bases), quals, nil)
	require.NoError(t, err)
	rec.Seq = seqBytes
	rec.Flags = flags
	return rec
}

func TestRecordToReadPlainForward(t *testing.T) {
	rec := buildRecord(t, "r1", "ACGT", sam.Paired|sam.Read1)
	read := recordToRead(rec, seq.Mate1)
	assert.Equal(t, "r1", string(read.Name))
	assert.Equal(t, seq.Mate1, read.Mate)
	assert.Equal(t, "ACGT", string(read.Bases.ASCII()))
}

func TestRecordToReadReverseComplementsReverseStrand(t *testing.T) {
	rec := buildRecord(t, "r1", "ACGT", sam.Paired|sam.Read1|sam.Reverse)
	read := recordToRead(rec, seq.Mate1)
	assert.Equal(t, "ACGT", string(read.Bases.ReverseComplement().ReverseComplement().ASCII()))
	assert.Equal(t, "ACGT", string(read.Bases.ReverseComplement().ASCII()))
}

func TestRecordToReadCarriesReadGroupTag(t *testing.T) {
	rec := buildRecord(t, "r1", "ACGT", sam.Paired|sam.Read1)
	aux, err := sam.NewAux(sam.Tag{'R', 'G'}, "group1")
	require.NoError(t, err)
	rec.AuxFields = append(rec.AuxFields, aux)

	read := recordToRead(rec, seq.Mate1)
	assert.Equal(t, "group1", read.ReadGroup)
}
