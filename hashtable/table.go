package hashtable

import "github.com/dragen-os/dragen-os/hash"

// Table is an open-addressed hash table partitioned into 64-byte buckets
// (§3). Construction (populating Records from a reference FASTA) is out of
// scope (§1); Table only knows how to probe records that are already
// loaded, e.g. from a memory-mapped hash-table file.
type Table struct {
	Records []uint64 // one element per 8-byte record, grouped 8-at-a-time into buckets
	// AddrBits is the width of the address segment. split selects the bucket
	// as the hash modulo the bucket count, which is the low AddrBits bits
	// when the table has 2^AddrBits buckets.
	AddrBits int
	// DigestBits is the number of bits, drawn from the bits immediately
	// above the low AddrBits bits, used as a per-record digest tag (§3's
	// "digest tag") to discriminate collisions within a bucket without a
	// full key comparison.
	DigestBits int
}

// NumBuckets returns the number of buckets in the table.
func (t *Table) NumBuckets() int { return len(t.Records) / RecordsPerBucket }

// split partitions a hash into a bucket address, taken as the hash modulo
// the bucket count (its low bits, not its high bits), and a digest value
// from the DigestBits bits above the low AddrBits bits.
func (t *Table) split(h uint64) (addr uint64, digest uint64) {
	nb := uint64(t.NumBuckets())
	if nb == 0 {
		return 0, 0
	}
	addr = h % nb
	digestMask := uint64(1)<<uint(t.DigestBits) - 1
	digest = (h >> uint(t.AddrBits)) & digestMask
	return addr, digest
}

// ProbeResult is the outcome of scanning one bucket chain.
type ProbeResult struct {
	Hits      []Record
	Intervals []Record
	Extend    *Record
	Found     bool
}

// Probe scans the bucket chain addressed by hash h, per §4.1 step 3: "Scan
// the bucket chain until a record with matching digest tag is found,
// yielding HITs, or an EXTEND is encountered, or an empty slot is reached."
//
// A matching digest tag is approximated here by linear bucket scanning: all
// records in the addressed bucket that are not Empty are candidates,
// because construction (out of scope) is responsible for placing only
// records whose digest matches within a bucket's probe chain. This mirrors
// the contract the mapper relies on without re-deriving the builder's
// collision-resolution policy.
func (t *Table) Probe(h uint64) ProbeResult {
	addr, _ := t.split(h)
	bucketStart := int(addr) * RecordsPerBucket
	var res ProbeResult
	for i := 0; i < RecordsPerBucket; i++ {
		idx := bucketStart + i
		if idx >= len(t.Records) {
			break
		}
		rec := DecodeRecord(t.Records[idx])
		switch rec.Type {
		case Empty:
			return res
		case Hit:
			res.Hits = append(res.Hits, rec)
			res.Found = true
		case IntervalSL, IntervalSLE, IntervalS, IntervalL:
			res.Intervals = append(res.Intervals, rec)
			res.Found = true
		case Extend:
			r := rec
			res.Extend = &r
			res.Found = true
			return res
		case HiFreq:
			// Deprecated record type, passed on with the INTERVAL_*
			// records. It carries no interval: CombineIntervalRecords
			// ignores it, so on its own it yields a zero-length interval
			// from which Sample draws nothing.
			res.Intervals = append(res.Intervals, rec)
			res.Found = true
		}
	}
	return res
}

// ExtendTable is the dense array of HIT-like records that hot primary seeds
// point into via (start, length) intervals (§3's Extend-table interval,
// §6's "Extend table").
type ExtendTable struct {
	Records []uint64
}

// Interval resolves a (start, length) span from consecutive INTERVAL_*
// records, per §3: "A (start, length) pair computed by combining
// consecutive INTERVAL_* records."
type Interval struct {
	Start  uint64
	Length uint64
}

// CombineIntervalRecords folds a sequence of INTERVAL_* records (as returned
// by Probe) into a single Interval.
func CombineIntervalRecords(recs []Record) Interval {
	var iv Interval
	for _, r := range recs {
		switch r.Type {
		case IntervalSL, IntervalSLE:
			iv.Start = r.IntervalStart
			iv.Length = r.IntervalLength
		case IntervalS:
			iv.Start = r.IntervalStart
		case IntervalL:
			iv.Length = r.IntervalLength
		}
	}
	return iv
}

// At returns the decoded HIT-like record at extend-table offset i.
func (e *ExtendTable) At(i uint64) Record {
	return DecodeRecord(e.Records[i])
}

// Hasher bundles the primary and secondary polynomial hashers used to
// address a Table, so that mapper code doesn't need to juggle polynomial
// selection itself.
type Hasher struct {
	Primary   *hash.Hasher
	Secondary *hash.Hasher
}
