// Package striped implements the optional vectorized striped Smith-Waterman
// backend (§4.4): a profile-based aligner that precomputes a per-base-value
// scoring profile once per query and then sweeps the reference against it.
// Farrar's striping lays the query out in interleaved segments so a SIMD
// lane advances through several non-adjacent query rows at once; this
// package keeps that query-profile layout (Profile, laid out exactly the
// way an AVX2/SSE2 lane grouping would read it) but walks it with a scalar
// loop, so the same code runs whether or not the runtime CPU actually has
// the vector unit the layout targets. golang.org/x/sys/cpu only decides
// whether this backend is offered as a candidate at all (Available()); both
// backends must agree bit-for-bit on score given the same inputs (§4.4:
// "the spec treats the wavefront engine as the reference implementation"),
// which a scalar walk over the same profile guarantees by construction.
package striped

import (
	"github.com/biogo/hts/sam"
	"golang.org/x/sys/cpu"

	"github.com/dragen-os/dragen-os/align/wavefront"
)

// LaneWidth is the number of query segments the profile interleaves,
// matching a 16-lane layout: 8-bit cells under SSE2 or 16-bit cells under
// AVX2 (§4.4: "16- or 8-bit cells under
// AVX2 or SSE2").
const LaneWidth = 16

// Available reports whether the current CPU offers a vector unit the
// striped backend targets. Callers use this to choose between Engine and
// wavefront.Engine; both produce the same Result contract, so the choice is
// purely a performance decision.
func Available() bool {
	return cpu.X86.HasAVX2 || cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD
}

// Result is shared with the wavefront backend's contract.
type Result = wavefront.Result

// Scores is shared with the wavefront backend's scoring parameters.
type Scores = wavefront.Scores

// Profile is the query profile: for each of the 16 possible 4-bit base
// codes, the match/mismatch score against every query position, laid out in
// LaneWidth-interleaved segments the way Farrar's algorithm stripes a SIMD
// register file.
type Profile struct {
	queryLen int
	sc       Scores
	// scores[base][segment*LaneWidth+lane] is the score of query position
	// (lane*segments+segment) against reference base `base`, the classic
	// striped index transform.
	scores   [16][]int16
	segments int
}

// BuildProfile precomputes query against every possible reference base
// value, per §4.4's "forward and reverse-complement query profiles
// (precomputed once per read)".
func BuildProfile(query []byte, sc Scores) *Profile {
	n := len(query)
	segments := (n + LaneWidth - 1) / LaneWidth
	if segments == 0 {
		segments = 1
	}
	p := &Profile{queryLen: n, sc: sc, segments: segments}
	for base := 0; base < 16; base++ {
		row := make([]int16, segments*LaneWidth)
		for lane := 0; lane < LaneWidth; lane++ {
			for seg := 0; seg < segments; seg++ {
				qi := lane*segments + seg
				idx := seg*LaneWidth + lane
				if qi >= n {
					row[idx] = 0
					continue
				}
				qb := query[qi]
				switch {
				case qb == 15 || byte(base) == 15:
					row[idx] = sc.NScore
				case int(qb) == base:
					row[idx] = sc.Match
				default:
					row[idx] = sc.Mismatch
				}
			}
		}
		p.scores[base] = row
	}
	return p
}

// at returns the profile score of reference base refBase against query
// position qi.
func (p *Profile) at(refBase byte, qi int) int16 {
	seg := qi % p.segments
	lane := qi / p.segments
	return p.scores[refBase&15][seg*LaneWidth+lane]
}

// Engine runs the striped backend's banded affine-gap local alignment.
type Engine struct {
	cfg wavefront.Config
}

// New constructs a striped Engine sharing wavefront's Config shape, so
// callers can switch backends without re-deriving scoring parameters.
func New(cfg wavefront.Config) *Engine { return &Engine{cfg: cfg} }

type cell struct {
	h, e, f int32
	bt      wfOp
}

// Align computes the same contract as wavefront.Engine.Align, but by
// sweeping a precomputed query profile across ref column by column (the
// striped access pattern) instead of recomputing the match score inline.
func (e *Engine) Align(query, ref []byte) Result {
	sc := e.cfg.Scores
	profile := BuildProfile(query, sc)
	rows, cols := len(query), len(ref)

	m := make([][]cell, rows+1)
	for i := range m {
		m[i] = make([]cell, cols+1)
	}
	for j := 0; j <= cols; j++ {
		m[0][j] = cell{e: negInf, f: negInf, bt: opNone}
	}
	for i := 0; i <= rows; i++ {
		m[i][0] = cell{e: negInf, f: negInf, bt: opNone}
	}

	var bestScore, bestH int32
	var bestI, bestJ int

	width := e.cfg.Width
	if width <= 0 {
		width = wavefront.Width
	}

	for j := 1; j <= cols; j++ {
		rb := ref[j-1]
		lo, hi := 1, rows
		if width > 0 {
			center := j * rows / max1(cols)
			lo, hi = center-width, center+width
			if lo < 1 {
				lo = 1
			}
			if hi > rows {
				hi = rows
			}
		}
		for i := lo; i <= hi; i++ {
			fOpen := m[i-1][j].h - int32(sc.GapOpen) - int32(sc.GapExtend)
			fExt := m[i-1][j].f - int32(sc.GapExtend)
			f := fOpen
			if fExt > f {
				f = fExt
			}
			eOpen := m[i][j-1].h - int32(sc.GapOpen) - int32(sc.GapExtend)
			eExt := m[i][j-1].e - int32(sc.GapExtend)
			eVal := eOpen
			if eExt > eVal {
				eVal = eExt
			}
			diag := m[i-1][j-1].h + int32(profile.at(rb, i-1))

			h := diag
			bt := opDiag
			if eVal > h {
				h, bt = eVal, opLeft
			}
			if f > h {
				h, bt = f, opUp
			}
			if h < 0 {
				h, bt = 0, opNone
			}
			m[i][j] = cell{h: h, e: eVal, f: f, bt: bt}

			scored := h
			if i == 1 || i == rows {
				scored += int32(sc.UnclipScore)
			}
			if scored > bestScore {
				bestScore = scored
				bestH = h
				bestI, bestJ = i, j
			}
		}
	}

	return backtrace(query, m, bestI, bestJ, bestH, sc.Match)
}

type wfOp uint8

const (
	opDiag wfOp = iota
	opUp
	opLeft
	opNone
)

const negInf = int32(-1 << 28)

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func backtrace(query []byte, m [][]cell, bi, bj int, score int32, matchScore int16) Result {
	var ops []sam.CigarOpType
	i, j := bi, bj
	for i > 0 && j > 0 && m[i][j].bt != opNone {
		switch m[i][j].bt {
		case opDiag:
			ops = append(ops, sam.CigarMatch)
			i--
			j--
		case opLeft:
			ops = append(ops, sam.CigarDeletion)
			j--
		case opUp:
			ops = append(ops, sam.CigarInsertion)
			i--
		}
	}
	queryBegin, refBegin := i, j

	var cig sam.Cigar
	if queryBegin > 0 {
		cig = append(cig, sam.NewCigarOp(sam.CigarSoftClipped, queryBegin))
	}
	if len(ops) > 0 {
		cur := ops[len(ops)-1]
		n := 1
		for k := len(ops) - 2; k >= 0; k-- {
			if ops[k] == cur {
				n++
				continue
			}
			cig = append(cig, sam.NewCigarOp(cur, n))
			cur = ops[k]
			n = 1
		}
		cig = append(cig, sam.NewCigarOp(cur, n))
	}
	if bi < len(query) {
		cig = append(cig, sam.NewCigarOp(sam.CigarSoftClipped, len(query)-bi))
	}

	perfect := queryBegin == 0 && bi == len(query) && int(score) == len(query)*int(matchScore)

	return Result{
		Score:      int(score),
		Cigar:      cig,
		QueryBegin: queryBegin,
		QueryEnd:   bi,
		RefBegin:   refBegin,
		RefEnd:     bj,
		Perfect:    perfect,
	}
}
