// Package refdir models the reference directory described in §6: a packed
// 4-bit-per-base reference with padded, 1024-aligned contigs, addressed
// through a name/length/offset index in the same spirit as a FASTA .fai
// index (see encoding/fasta's indexedFasta in the teacher pack), plus the
// forward/reverse-complement interval view the aligner needs (§2's
// "Reference sequence view").
package refdir

import (
	"fmt"

	"github.com/dragen-os/dragen-os/hashtable"
	"github.com/dragen-os/dragen-os/seq"
)

// padBases is the minimum pad inserted around every contig (§6).
const padBases = 256

// contigAlignment is the alignment, in bases, each contig start is rounded
// up to (§6).
const contigAlignment = 1024

// finalPad is the pad appended after the last contig (§6).
const finalPad = 163840

// Sequence describes one reference contig's placement within the packed
// base array.
type Sequence struct {
	Name   string
	Length uint64
	// Start is the base offset (within Reference.Bases) of the first real
	// base of this contig, i.e. past its leading pad.
	Start uint64
}

// Reference is the packed 4-bit reference base array plus its contig index.
// Construction from a FASTA file is out of scope (§1); Reference is the
// consumer-side view over data that has already been packed and laid out by
// the (external) hash-table builder.
type Reference struct {
	Bases seq.Bases
	Seqs  []Sequence
	byName map[string]int
}

// NewReference builds a Reference from already-packed bases and contig
// descriptors. Descriptors must be in the same order the builder laid them
// out in Bases.
func NewReference(bases seq.Bases, seqs []Sequence) *Reference {
	r := &Reference{Bases: bases, Seqs: seqs, byName: make(map[string]int, len(seqs))}
	for i, s := range seqs {
		r.byName[s.Name] = i
	}
	return r
}

// SeqIndex returns the index of the named contig, or -1 if absent.
func (r *Reference) SeqIndex(name string) int {
	if i, ok := r.byName[name]; ok {
		return i
	}
	return -1
}

// InHole reports whether the 0-based genome-wide base offset pos falls
// within a pad/hole region rather than inside a real contig. The mapper
// marks an alignment ineligible (but still runs SW on it, per §9's
// beyondLastCfgSequence note) when its chain starts inside a hole.
func (r *Reference) InHole(pos uint64) bool {
	for _, s := range r.Seqs {
		if pos >= s.Start && pos < s.Start+s.Length {
			return false
		}
	}
	return true
}

// View returns length bases starting at genome-wide offset pos, in either
// forward or reverse-complement orientation, per §2's "forward and
// reverse-complement base access over arbitrary intervals". Positions that
// fall outside the packed array (e.g. before position 0, or past the final
// pad) return BasePad.
func (r *Reference) View(pos uint64, length int, reverseComplement bool) seq.Bases {
	out := make(seq.Bases, length)
	at := func(p uint64) seq.Base {
		if p < uint64(len(r.Bases)) {
			return r.Bases[p]
		}
		return seq.BasePad
	}
	if !reverseComplement {
		for i := 0; i < length; i++ {
			out[i] = at(pos + uint64(i))
		}
		return out
	}
	for i := 0; i < length; i++ {
		out[i] = at(pos + uint64(length-1-i)).Complement()
	}
	return out
}

// ContigCoord converts a genome-wide base offset into a (contig name,
// 0-based offset within contig) pair, for record emission (§6).
func (r *Reference) ContigCoord(pos uint64) (name string, offset uint64, err error) {
	for _, s := range r.Seqs {
		if pos >= s.Start && pos < s.Start+s.Length {
			return s.Name, pos - s.Start, nil
		}
	}
	return "", 0, fmt.Errorf("refdir: position %d falls outside any contig", pos)
}

// FromConfig builds the Sequence index from the hash-table config's sequence
// descriptors (§6), laying contigs out with the required pad and alignment.
func FromConfig(descs []hashtable.SeqDescriptor) []Sequence {
	seqs := make([]Sequence, 0, len(descs))
	cursor := uint64(padBases)
	for _, d := range descs {
		start := roundUp(cursor, contigAlignment)
		seqs = append(seqs, Sequence{Name: d.Name, Length: d.Length, Start: start})
		cursor = start + d.Length + padBases
	}
	return seqs
}

func roundUp(v, align uint64) uint64 {
	return (v + align - 1) / align * align
}

// TotalPackedLength returns the size, in bases, of the packed reference
// array implied by seqs, including the mandatory final pad (§6).
func TotalPackedLength(seqs []Sequence) uint64 {
	if len(seqs) == 0 {
		return finalPad
	}
	last := seqs[len(seqs)-1]
	return last.Start + last.Length + finalPad
}
