// Package record converts aligned read pairs into sam.Record values (§6):
// it fills in the standard SAM fields and attaches the AS/XS/NM/XQ/SA/RG
// tags §9 names as supplemented features, using biogo/hts/sam the way the
// teacher pack's encoding/bam layer does.
package record

import (
	"github.com/biogo/hts/sam"

	"github.com/dragen-os/dragen-os/align"
	"github.com/dragen-os/dragen-os/insertsize"
	"github.com/dragen-os/dragen-os/pairing"
	"github.com/dragen-os/dragen-os/seq"
)

// Builder turns one read's alignment outcome into a sam.Record, given the
// header's reference list to resolve RefID ints into *sam.Reference.
type Builder struct {
	Header *sam.Header
	// SigmaFactor, when nonzero, is added as the XI tag to every record
	// FromAlignment builds (§9's sigma-factor supplement); InsertSigmaFactor
	// derives it from insert-size parameters.
	SigmaFactor uint16
}

// tags used beyond the standard SAM fields, named per §9's supplemented
// features.
var (
	tagAS = sam.Tag{'A', 'S'} // alignment score
	tagXS = sam.Tag{'X', 'S'} // best alternative score
	tagNM = sam.Tag{'N', 'M'} // edit distance
	tagXQ = sam.Tag{'X', 'Q'} // unclamped mapping quality
	tagSA = sam.Tag{'S', 'A'} // chimeric/supplementary linkage
	tagRG = sam.Tag{'R', 'G'} // read group
	tagXI = sam.Tag{'X', 'I'} // insert-size sigma-factor, fixed point
)

// FromAlignment builds a mapped record for read from a (already-finalized)
// alignment.
func (b *Builder) FromAlignment(read *seq.Read, a *align.Alignment) (*sam.Record, error) {
	bases := read.Bases
	quals := read.Quals
	if a.Orientation == 1 { // seed.ReverseComplement
		bases = bases.ReverseComplement()
		quals = seq.ReverseComplementQuals(quals)
	}

	var ref, mateRef *sam.Reference
	if a.RefID >= 0 && a.RefID < len(b.Header.Refs()) {
		ref = b.Header.Refs()[a.RefID]
	}
	mPos := -1
	if a.MateRefID >= 0 && a.MateRefID < len(b.Header.Refs()) {
		mateRef = b.Header.Refs()[a.MateRefID]
		mPos = int(a.MatePosition)
	}

	co := make([]sam.CigarOp, len(a.Cigar))
	copy(co, a.Cigar)

	rec, err := sam.NewRecord(string(read.TrimmedName()), ref, mateRef, int(a.Position), mPos, a.TemplateLen, byte(clampByte(a.MAPQ)), co, bases.ASCII(), quals, nil)
	if err != nil {
		return nil, err
	}
	rec.Flags = a.Flags

	aux := make(sam.AuxFields, 0, 7)
	if v, err := sam.NewAux(tagAS, a.Score); err == nil {
		aux = append(aux, v)
	}
	if v, err := sam.NewAux(tagXS, a.XS); err == nil {
		aux = append(aux, v)
	}
	if v, err := sam.NewAux(tagNM, a.NM); err == nil {
		aux = append(aux, v)
	}
	if v, err := sam.NewAux(tagXQ, pairing.XQ(a.Score, a.XS, align.QuerySpan(a.Cigar))); err == nil {
		aux = append(aux, v)
	}
	if read.ReadGroup != "" {
		if v, err := sam.NewAux(tagRG, read.ReadGroup); err == nil {
			aux = append(aux, v)
		}
	}
	if a.SA != nil {
		if v, err := sam.NewAux(tagSA, formatSA(b.Header, a.SA)); err == nil {
			aux = append(aux, v)
		}
	}
	if b.SigmaFactor != 0 {
		if v, err := sam.NewAux(tagXI, int(b.SigmaFactor)); err == nil {
			aux = append(aux, v)
		}
	}
	rec.AuxFields = aux
	return rec, nil
}

// FromUnmapped builds an unmapped record for read, per §6's "unmapped
// records use `*` reference/CIGAR" rule.
func (b *Builder) FromUnmapped(read *seq.Read, flags sam.Flags) (*sam.Record, error) {
	rec, err := sam.NewRecord(string(read.TrimmedName()), nil, nil, -1, -1, 0, 0, nil, read.Bases.ASCII(), read.Quals, nil)
	if err != nil {
		return nil, err
	}
	rec.Flags = flags | sam.Unmapped
	if read.ReadGroup != "" {
		if v, err := sam.NewAux(tagRG, read.ReadGroup); err == nil {
			rec.AuxFields = append(rec.AuxFields, v)
		}
	}
	return rec, nil
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func formatSA(h *sam.Header, a *align.Alignment) string {
	name := "*"
	if a.RefID >= 0 && a.RefID < len(h.Refs()) {
		name = h.Refs()[a.RefID].Name()
	}
	strand := byte('+')
	if a.Orientation == 1 {
		strand = '-'
	}
	return name + "," + itoa(int(a.Position)+1) + "," + string(strand) + "," + a.Cigar.String() + "," + itoa(a.MAPQ) + "," + itoa(a.NM) + ";"
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// InsertSigmaFactor computes the XI tag value for params, per §9's
// sigma-factor supplement.
func InsertSigmaFactor(params insertsize.Parameters) uint16 {
	if !params.Confident {
		return 0
	}
	return insertsize.SigmaFactor(params.StdDev)
}
