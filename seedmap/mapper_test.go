package seedmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dragen-os/dragen-os/hash"
	"github.com/dragen-os/dragen-os/hashtable"
	"github.com/dragen-os/dragen-os/seq"
)

func testHasher() *hash.Hasher {
	poly := hash.NewPolynomial(32, []byte{0x1, 0xED, 0xB8, 0x83})
	return hash.NewHasher(poly)
}

func testRead(s string, mate seq.Mate) *seq.Read {
	bases := seq.EncodeASCII([]byte(s))
	quals := make([]byte, len(s))
	for i := range quals {
		quals[i] = 30
	}
	return seq.NewRead([]byte("r"), bases, quals, 0, mate)
}

func TestMapDirectHitEveryPlacementFindsSameBucket(t *testing.T) {
	table := &hashtable.Table{Records: make([]uint64, hashtable.RecordsPerBucket), AddrBits: 0, DigestBits: 10}
	table.Records[0] = hashtable.EncodeRecord(hashtable.Record{Type: hashtable.Hit, Position: 1000})

	h := testHasher()
	mapper := New(Config{
		PrimarySeedBases: 4, SeedPeriod: 1, SeedPattern: 0x1,
		MaxSeedFrequency: 16, ExtraIntervalSample: 2,
	}, table, &hashtable.ExtendTable{}, hashtable.Hasher{Primary: h, Secondary: h})

	read := testRead("ACGTACGT", seq.Mate1)
	positions := mapper.Map(read)

	assert.NotEmpty(t, positions)
	for _, p := range positions {
		assert.Equal(t, uint64(1000), p.RefPos)
		assert.False(t, p.IsRandomSample)
	}
}

func TestMapEnumeratesSmallInterval(t *testing.T) {
	ext := &hashtable.ExtendTable{Records: []uint64{
		hashtable.EncodeRecord(hashtable.Record{Type: hashtable.Hit, Position: 3000}),
		hashtable.EncodeRecord(hashtable.Record{Type: hashtable.Hit, Position: 3001}),
		hashtable.EncodeRecord(hashtable.Record{Type: hashtable.Hit, Position: 3002}),
	}}
	table := &hashtable.Table{Records: make([]uint64, hashtable.RecordsPerBucket), AddrBits: 0, DigestBits: 10}
	table.Records[0] = hashtable.EncodeRecord(hashtable.Record{Type: hashtable.IntervalSL, IntervalStart: 0, IntervalLength: 3})

	h := testHasher()
	mapper := New(Config{
		PrimarySeedBases: 4, SeedPeriod: 1000000, SeedPattern: 0x0, ForceLastNSeeds: 1,
		MaxSeedFrequency: 16, ExtraIntervalSample: 2,
	}, table, ext, hashtable.Hasher{Primary: h, Secondary: h})

	read := testRead("ACGTACGT", seq.Mate1)
	positions := mapper.Map(read)

	assert.Len(t, positions, 3)
	seen := map[uint64]bool{}
	for _, p := range positions {
		seen[p.RefPos] = true
	}
	assert.True(t, seen[3000] && seen[3001] && seen[3002])
}

func TestMapOverFrequencyIntervalFallsBackToSampling(t *testing.T) {
	recs := make([]uint64, 30)
	for i := range recs {
		recs[i] = hashtable.EncodeRecord(hashtable.Record{Type: hashtable.Hit, Position: uint64(4000 + i)})
	}
	ext := &hashtable.ExtendTable{Records: recs}
	table := &hashtable.Table{Records: make([]uint64, hashtable.RecordsPerBucket), AddrBits: 0, DigestBits: 10}
	table.Records[0] = hashtable.EncodeRecord(hashtable.Record{Type: hashtable.IntervalSL, IntervalStart: 0, IntervalLength: 30})

	h := testHasher()
	mapper := New(Config{
		PrimarySeedBases: 4, SeedPeriod: 1000000, SeedPattern: 0x0, ForceLastNSeeds: 1,
		MaxSeedFrequency: 16, ExtraIntervalSample: 2,
	}, table, ext, hashtable.Hasher{Primary: h, Secondary: h})

	read := testRead("ACGTACGT", seq.Mate1)
	positions := mapper.Map(read)

	assert.NotEmpty(t, positions, "a 30-record interval exceeds the enumerate ceiling but sampling should still find candidates")
	for _, p := range positions {
		assert.True(t, p.RefPos >= 4000 && p.RefPos < 4030)
		assert.True(t, p.IsRandomSample)
	}
}

func TestMapEmptyReadYieldsNoPositions(t *testing.T) {
	table := &hashtable.Table{Records: make([]uint64, hashtable.RecordsPerBucket)}
	h := testHasher()
	mapper := New(DefaultConfig(), table, &hashtable.ExtendTable{}, hashtable.Hasher{Primary: h, Secondary: h})
	read := testRead("ACG", seq.Mate1) // shorter than the default 21-base primary seed
	positions := mapper.Map(read)
	assert.Empty(t, positions)
}
