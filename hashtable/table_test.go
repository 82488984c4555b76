package hashtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildTable(numBuckets, addrBits, digestBits int) *Table {
	return &Table{
		Records:    make([]uint64, numBuckets*RecordsPerBucket),
		AddrBits:   addrBits,
		DigestBits: digestBits,
	}
}

func TestProbeFindsHitsInAddressedBucket(t *testing.T) {
	tbl := buildTable(4, 2, 10)
	addr, _ := tbl.split(0) // hash 0 always lands in bucket 0
	base := int(addr) * RecordsPerBucket
	tbl.Records[base] = EncodeRecord(Record{Type: Hit, Position: 42})
	tbl.Records[base+1] = EncodeRecord(Record{Type: Hit, Position: 99, ReverseComplement: true})

	res := tbl.Probe(0)
	assert.True(t, res.Found)
	assert.Len(t, res.Hits, 2)
	assert.Equal(t, uint64(42), res.Hits[0].Position)
	assert.True(t, res.Hits[1].ReverseComplement)
}

func TestProbeStopsAtEmptySlot(t *testing.T) {
	tbl := buildTable(2, 1, 10)
	tbl.Records[0] = EncodeRecord(Record{Type: Hit, Position: 1})
	// Records[1] stays Empty (zero value).
	tbl.Records[2] = EncodeRecord(Record{Type: Hit, Position: 2})

	res := tbl.Probe(0)
	assert.Len(t, res.Hits, 1, "scan should stop at the first empty slot in the bucket")
}

func TestProbeReturnsExtendAndStops(t *testing.T) {
	tbl := buildTable(1, 0, 10)
	tbl.Records[0] = EncodeRecord(Record{Type: Hit, Position: 7})
	tbl.Records[1] = EncodeRecord(Record{Type: Extend, ExtensionLength: 3, ExtensionID: 5})
	tbl.Records[2] = EncodeRecord(Record{Type: Hit, Position: 8})

	res := tbl.Probe(0)
	assert.NotNil(t, res.Extend)
	assert.Equal(t, 3, res.Extend.ExtensionLength)
	assert.Len(t, res.Hits, 1, "scan stops once an EXTEND record is hit")
}

func TestNumBuckets(t *testing.T) {
	tbl := buildTable(16, 4, 10)
	assert.Equal(t, 16, tbl.NumBuckets())
}

func TestExtendTableAt(t *testing.T) {
	et := &ExtendTable{Records: []uint64{EncodeRecord(Record{Type: Hit, Position: 55})}}
	rec := et.At(0)
	assert.Equal(t, uint64(55), rec.Position)
}
