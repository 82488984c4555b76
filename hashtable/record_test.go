package hashtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHitRecordRoundTrip(t *testing.T) {
	r := Record{Type: Hit, Position: 123456, ReverseComplement: true, AltLiftIncompatible: true}
	raw := EncodeRecord(r)
	got := DecodeRecord(raw)
	assert.Equal(t, r, got)
}

func TestExtendRecordRoundTrip(t *testing.T) {
	r := Record{Type: Extend, ExtensionLength: 5, ExtensionID: 0xABCDE}
	raw := EncodeRecord(r)
	got := DecodeRecord(raw)
	assert.Equal(t, r.Type, got.Type)
	assert.Equal(t, r.ExtensionLength, got.ExtensionLength)
	assert.Equal(t, r.ExtensionID, got.ExtensionID)
}

func TestIntervalSLRoundTrip(t *testing.T) {
	r := Record{Type: IntervalSL, IntervalStart: 99, IntervalLength: 4}
	raw := EncodeRecord(r)
	got := DecodeRecord(raw)
	assert.Equal(t, r.IntervalStart, got.IntervalStart)
	assert.Equal(t, r.IntervalLength, got.IntervalLength)
}

func TestEmptyRecordDecodesAsEmptyType(t *testing.T) {
	got := DecodeRecord(0)
	assert.Equal(t, Empty, got.Type)
}

func TestCombineIntervalRecords(t *testing.T) {
	recs := []Record{
		{Type: IntervalS, IntervalStart: 10},
		{Type: IntervalL, IntervalLength: 20},
	}
	iv := CombineIntervalRecords(recs)
	assert.Equal(t, uint64(10), iv.Start)
	assert.Equal(t, uint64(20), iv.Length)
}
