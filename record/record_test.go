package record

import (
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragen-os/dragen-os/align"
	"github.com/dragen-os/dragen-os/insertsize"
	"github.com/dragen-os/dragen-os/seed"
	"github.com/dragen-os/dragen-os/seq"
)

func testHeader(t *testing.T) *sam.Header {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	h, err := sam.NewHeader(nil, []*sam.Reference{ref})
	require.NoError(t, err)
	return h
}

func testRead(t *testing.T, s string) *seq.Read {
	bases := seq.EncodeASCII([]byte(s))
	quals := make([]byte, len(s))
	for i := range quals {
		quals[i] = 30
	}
	return seq.NewRead([]byte("query1"), bases, quals, 0, seq.Mate1)
}

func TestFromAlignmentFillsStandardFieldsAndTags(t *testing.T) {
	b := &Builder{Header: testHeader(t)}
	read := testRead(t, "ACGTACGT")
	a := &align.Alignment{
		RefID: 0, Position: 100, Orientation: seed.Forward,
		Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 8)},
		Score: 8, XS: 4, NM: 0, MAPQ: 42,
		MateRefID: -1, MatePosition: 0,
	}

	rec, err := b.FromAlignment(read, a)
	require.NoError(t, err)
	assert.Equal(t, "query1", rec.Name)
	assert.Equal(t, 100, rec.Pos)
	assert.Equal(t, byte(42), rec.MapQ)

	as, ok := rec.AuxFields.Get(tagAS).Value().(int8)
	require.True(t, ok)
	assert.Equal(t, int8(8), as)
}

func TestFromAlignmentReverseComplementsBasesForReverseOrientation(t *testing.T) {
	b := &Builder{Header: testHeader(t)}
	read := testRead(t, "ACGT")
	a := &align.Alignment{
		RefID: 0, Position: 0, Orientation: seed.ReverseComplement,
		Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 4)},
		Score: 4, MateRefID: -1,
	}

	rec, err := b.FromAlignment(read, a)
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(rec.Seq.Expand()))
}

func TestFromAlignmentOmitsXITagWhenSigmaFactorZero(t *testing.T) {
	b := &Builder{Header: testHeader(t), SigmaFactor: 0}
	read := testRead(t, "ACGT")
	a := &align.Alignment{RefID: 0, Position: 0, Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 4)}, MateRefID: -1}

	rec, err := b.FromAlignment(read, a)
	require.NoError(t, err)
	assert.Nil(t, rec.AuxFields.Get(tagXI))
}

func TestFromAlignmentIncludesXITagWhenSigmaFactorSet(t *testing.T) {
	b := &Builder{Header: testHeader(t), SigmaFactor: 500}
	read := testRead(t, "ACGT")
	a := &align.Alignment{RefID: 0, Position: 0, Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 4)}, MateRefID: -1}

	rec, err := b.FromAlignment(read, a)
	require.NoError(t, err)
	assert.NotNil(t, rec.AuxFields.Get(tagXI))
}

func TestFromAlignmentFormatsSATag(t *testing.T) {
	b := &Builder{Header: testHeader(t)}
	read := testRead(t, "ACGT")
	supp := &align.Alignment{
		RefID: 0, Position: 199, Orientation: seed.ReverseComplement,
		Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 4)},
		MAPQ:  30, NM: 1,
	}
	a := &align.Alignment{
		RefID: 0, Position: 0, Cigar: sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 4)},
		MateRefID: -1, SA: supp,
	}

	rec, err := b.FromAlignment(read, a)
	require.NoError(t, err)
	sa, ok := rec.AuxFields.Get(tagSA).Value().(string)
	require.True(t, ok)
	assert.Equal(t, "chr1,200,-,4M,30,1;", sa)
	assert.True(t, strings.HasSuffix(sa, ";"))
}

func TestFromUnmappedSetsUnmappedFlagAndNoReference(t *testing.T) {
	b := &Builder{Header: testHeader(t)}
	read := testRead(t, "ACGT")

	rec, err := b.FromUnmapped(read, sam.Paired|sam.Read1)
	require.NoError(t, err)
	assert.NotZero(t, rec.Flags&sam.Unmapped)
	assert.NotZero(t, rec.Flags&sam.Paired)
	assert.Nil(t, rec.Ref)
	assert.Equal(t, -1, rec.Pos)
}

func TestClampByte(t *testing.T) {
	assert.Equal(t, 0, clampByte(-5))
	assert.Equal(t, 255, clampByte(1000))
	assert.Equal(t, 60, clampByte(60))
}

func TestItoaMatchesStandardFormatting(t *testing.T) {
	assert.Equal(t, "0", itoa(0))
	assert.Equal(t, "42", itoa(42))
	assert.Equal(t, "-42", itoa(-42))
	assert.Equal(t, "123456", itoa(123456))
}

func TestInsertSigmaFactorZeroWhenNotConfident(t *testing.T) {
	assert.Equal(t, uint16(0), InsertSigmaFactor(insertsize.Parameters{Confident: false, StdDev: 10}))
}

func TestInsertSigmaFactorDelegatesWhenConfident(t *testing.T) {
	params := insertsize.Parameters{Confident: true, StdDev: 50}
	assert.Equal(t, insertsize.SigmaFactor(50), InsertSigmaFactor(params))
}
