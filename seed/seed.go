// Package seed implements the lightweight seed view over a read (§3) and
// the placement logic that turns a read into a set of candidate seed
// offsets (§4.1).
package seed

import "github.com/dragen-os/dragen-os/seq"

// Orientation of a seed match against the reference.
type Orientation uint8

const (
	Forward Orientation = iota
	ReverseComplement
)

// Seed is a view on a read: the read it comes from, the read offset the
// seed starts at, and its primary base length. It does not copy bases.
type Seed struct {
	Read   *seq.Read
	Offset int
	Length int
}

// New returns a Seed of the given primary length starting at offset within
// read.
func New(read *seq.Read, offset, length int) Seed {
	return Seed{Read: read, Offset: offset, Length: length}
}

// packWord packs length bases, starting at off, into a 64-bit word at 4 bits
// per base (2 bits/base would suffice for ACGT, but 4-bit codes stay
// N-aware), so at most 16 bases fit; bases are read in the given
// orientation.
func packWord(bases seq.Bases, off, length int, rc bool) uint64 {
	var w uint64
	if !rc {
		for i := 0; i < length; i++ {
			w = (w << 4) | uint64(bases[off+i]&15)
		}
		return w
	}
	for i := 0; i < length; i++ {
		b := bases[off+length-1-i].Complement()
		w = (w << 4) | uint64(b&15)
	}
	return w
}

// Canonical is a canonicalized seed word: the lexicographically smaller of
// the forward and reverse-complement encodings, plus the orientation that
// was chosen. Downstream probes carry this orientation so that a HIT
// record's reverse-complement bit can be interpreted relative to the read.
type Canonical struct {
	Word        uint64
	Orientation Orientation
}

// PrimaryData returns the canonical k-bit word for the seed's primary
// (unextended) bases, per §3's "Seed" definition: "canonicalization picks
// the lexicographically smaller of the forward word and the
// reverse-complement word; the chosen orientation flag travels with
// subsequent lookups."
func (s Seed) PrimaryData() Canonical {
	fwd := packWord(s.Read.Bases, s.Offset, s.Length, false)
	rev := packWord(s.Read.Bases, s.Offset, s.Length, true)
	if rev < fwd {
		return Canonical{Word: rev, Orientation: ReverseComplement}
	}
	return Canonical{Word: fwd, Orientation: Forward}
}

// ExtendedData returns the word extended by extBases flanking bases on each
// side of the primary seed, canonicalized the same way as PrimaryData. It
// reports ok=false if the extension would run past either end of the read
// (§4.1 extension-failure condition: "the seed would extend past the
// read").
//
// Flanks are not zero-padded: a flank shorter than extBases at a read
// boundary reports ok=false, as does an extBases larger than six.
func (s Seed) ExtendedData(extBases int) (Canonical, bool) {
	const halfWidth = 6
	if extBases > halfWidth {
		return Canonical{}, false
	}
	lo := s.Offset - extBases
	hi := s.Offset + s.Length + extBases
	if lo < 0 || hi > s.Read.Len() {
		return Canonical{}, false
	}
	totalLen := s.Length + 2*extBases
	fwd := packWord(s.Read.Bases, lo, totalLen, false)
	rev := packWord(s.Read.Bases, lo, totalLen, true)
	if rev < fwd {
		return Canonical{Word: rev, Orientation: ReverseComplement}, true
	}
	return Canonical{Word: fwd, Orientation: Forward}, true
}

// Placement describes one candidate seed offset produced by the placement
// sweep below.
type Placement struct {
	Offset int
	Length int
}

// Placements enumerates the read offsets a mapper should probe, per §4.1:
// offsets o such that o+k<=L, (o mod period) is selected by pattern, the
// seed bases contain no N, plus the final forceLastN placements if enabled
// and not already covered.
func Placements(read *seq.Read, k, period int, pattern uint64, forceLastN int) []Placement {
	L := read.Len()
	if k <= 0 || k > L {
		return nil
	}
	var out []Placement
	seen := make(map[int]bool)
	add := func(o int) {
		if o < 0 || o+k > L || seen[o] {
			return
		}
		if read.Bases.HasN(o, k) {
			return
		}
		seen[o] = true
		out = append(out, Placement{Offset: o, Length: k})
	}
	if period <= 0 {
		period = 1
	}
	for o := 0; o+k <= L; o++ {
		bit := uint(o % period)
		if bit < 64 && pattern&(1<<bit) != 0 {
			add(o)
		}
	}
	for i := 0; i < forceLastN; i++ {
		add(L - k - i)
	}
	return out
}
