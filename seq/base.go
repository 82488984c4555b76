// Package seq implements the 4-bit nucleotide base encoding shared by the
// mapper, chain builder, and aligner, along with the immutable Read type
// that flows through the pipeline.
//
// The nibble layout (A=1, C=2, G=4, T=8, N=15, 0=pad) and the
// reverse-complement table below are the same ones used by the .bam
// seq-field encoding that biosimd's ReverseComp4 family operates on:
// reverse-complementing a base is a 4-bit bit-reversal.
package seq

// Base is a 4-bit nucleotide code.
type Base uint8

// Base codes. Zero is reserved as padding/sentinel.
const (
	BaseA   Base = 1
	BaseC   Base = 2
	BaseG   Base = 4
	BaseT   Base = 8
	BaseN   Base = 15
	BasePad Base = 0
)

// asciiToBase maps an upper- or lower-case ASCII base letter to its 4-bit
// code. Anything not in {A,C,G,T,N} (case-insensitive) maps to BaseN.
var asciiToBase [256]Base

// baseToASCII is the inverse of asciiToBase, used when rendering bases back
// to text (record emission, debugging).
var baseToASCII [16]byte

// revCompTable reverse-complements a single 4-bit base by reversing its four
// bits: A(0001)<->T(1000), C(0010)<->G(0100), N(1111)->N, pad(0000)->pad.
var revCompTable = [16]Base{0, 8, 4, 12, 2, 10, 6, 14, 1, 9, 5, 13, 3, 11, 7, 15}

func init() {
	for i := range asciiToBase {
		asciiToBase[i] = BaseN
	}
	asciiToBase['A'], asciiToBase['a'] = BaseA, BaseA
	asciiToBase['C'], asciiToBase['c'] = BaseC, BaseC
	asciiToBase['G'], asciiToBase['g'] = BaseG, BaseG
	asciiToBase['T'], asciiToBase['t'] = BaseT, BaseT
	asciiToBase['N'], asciiToBase['n'] = BaseN, BaseN
	baseToASCII[BaseA] = 'A'
	baseToASCII[BaseC] = 'C'
	baseToASCII[BaseG] = 'G'
	baseToASCII[BaseT] = 'T'
	baseToASCII[BaseN] = 'N'
	baseToASCII[BasePad] = '.'
}

// FromASCII converts an ASCII base letter to its 4-bit code.
func FromASCII(c byte) Base { return asciiToBase[c] }

// ASCII renders a 4-bit base code back to its ASCII letter.
func (b Base) ASCII() byte { return baseToASCII[b&15] }

// Complement returns the Watson-Crick complement of b, leaving N and pad
// unchanged in identity (N complements to N).
func (b Base) Complement() Base { return revCompTable[b&15] }

// Bases is a sequence of 4-bit-encoded nucleotides, one Base per slice
// element. Packing into 2-per-byte only happens at the hash/seed-word layer
// and at the hashtable/reference boundary; read-resident sequence stays
// unpacked for simplicity of indexing during seeding and SW.
type Bases []Base

// EncodeASCII converts an ASCII nucleotide string into Bases.
func EncodeASCII(s []byte) Bases {
	out := make(Bases, len(s))
	for i, c := range s {
		out[i] = FromASCII(c)
	}
	return out
}

// ASCII renders Bases back to an ASCII string, primarily for emission of
// unmapped reads and for debug output.
func (b Bases) ASCII() []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = v.ASCII()
	}
	return out
}

// ReverseComplement returns a new sequence that is the reverse complement
// of b.
func (b Bases) ReverseComplement() Bases {
	out := make(Bases, len(b))
	n := len(b)
	for i, v := range b {
		out[n-1-i] = v.Complement()
	}
	return out
}

// HasN reports whether the interval [off, off+length) contains any N base.
// This backs the seed-placement filter in §4.1: a seed cannot be placed over
// an N.
func (b Bases) HasN(off, length int) bool {
	for i := off; i < off+length; i++ {
		if b[i] == BaseN {
			return true
		}
	}
	return false
}
