// Package align implements alignment generation from chains (§4.5): the
// ungapped-then-gapped scoring pipeline, potential-score bound, and CIGAR
// bookkeeping shared by both Smith-Waterman backends.
package align

import "github.com/biogo/hts/sam"

// Builder accumulates CIGAR operations the way the wavefront and striped
// backtrace loops naturally produce them: one base (or one gap step) at a
// time, in reverse (from the alignment's end toward its start). Build()
// run-length-encodes and reverses them into a sam.Cigar, enforcing §3's
// CIGAR invariants (no zero-length runs, no adjacent equal ops).
type Builder struct {
	ops []sam.CigarOpType // one entry per base/gap step, in reverse order
}

// Push appends one more step (in reverse traversal order) of type t.
func (b *Builder) Push(t sam.CigarOpType) { b.ops = append(b.ops, t) }

// Reset empties the builder for reuse across reads (§4.5's buffer-reuse
// requirement).
func (b *Builder) Reset() { b.ops = b.ops[:0] }

// Build run-length-encodes the pushed steps into a sam.Cigar, un-reversing
// them back into alignment order.
func (b *Builder) Build() sam.Cigar {
	if len(b.ops) == 0 {
		return nil
	}
	var out sam.Cigar
	// ops were pushed from the alignment's end backward; emit them in
	// forward order by walking the slice in reverse.
	cur := b.ops[len(b.ops)-1]
	n := 1
	for i := len(b.ops) - 2; i >= 0; i-- {
		t := b.ops[i]
		if t == cur {
			n++
			continue
		}
		out = append(out, sam.NewCigarOp(cur, n))
		cur = t
		n = 1
	}
	out = append(out, sam.NewCigarOp(cur, n))
	return out
}

// ReferenceSpan returns the number of reference bases a CIGAR consumes,
// used for §3's "a.position + a.cigar.referenceSpan - 1 = a.endPosition"
// invariant.
func ReferenceSpan(c sam.Cigar) int {
	ref, _ := c.Lengths()
	return ref
}

// QuerySpan returns the number of query bases a CIGAR consumes (including
// soft clips, excluding hard clips), used for §8's "cigar consumes exactly
// |read| query bases" invariant.
func QuerySpan(c sam.Cigar) int {
	_, query := c.Lengths()
	return query
}

// ToHardClipped converts a primary CIGAR's soft clips to hard clips, per
// §4.6's secondary-alignment emission rule ("its CIGAR is converted to
// hard-clipped form").
func ToHardClipped(c sam.Cigar) sam.Cigar {
	out := make(sam.Cigar, len(c))
	copy(out, c)
	for i, op := range out {
		if op.Type() == sam.CigarSoftClipped {
			out[i] = sam.NewCigarOp(sam.CigarHardClipped, op.Len())
		}
	}
	return out
}
