// Package ioinput implements the FASTQ and BAM input readers the pipeline's
// Source draws blocks from. The FASTQ scanner is adapted from
// encoding/fastq's bufio.Scanner-based line reader (ID/Seq/Unk/Qual, the
// "+"-prefixed third line only checked, not retained); BAM input is adapted
// from biogo/hts/bam's Reader.
package ioinput

import (
	"bufio"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/dragen-os/dragen-os/seq"
)

var (
	// ErrShort is returned when a truncated FASTQ record is encountered.
	ErrShort = errors.New("ioinput: short FASTQ record")
	// ErrInvalid is returned when a FASTQ line fails its leading-character
	// check ('@' for the ID line, '+' for the separator line).
	ErrInvalid = errors.New("ioinput: invalid FASTQ record")
	// ErrDiscordant is returned when paired R1/R2 streams produce a
	// different number of records.
	ErrDiscordant = errors.New("ioinput: discordant FASTQ pair")
)

// FastqOffset selects the quality-encoding offset a FASTQ stream uses (§9's
// "fastq quality offset handling" supplement): Phred+33 is standard, Phred+64
// is still seen on older Illumina output.
type FastqOffset byte

const (
	Phred33 FastqOffset = 33
	Phred64 FastqOffset = 64
)

// Scanner reads successive Reads from a plain-text FASTQ stream. It does not
// decompress its input; Open handles gzip-compressed streams.
type Scanner struct {
	b         *bufio.Scanner
	offset    FastqOffset
	mate      seq.Mate
	readGroup string
	fragment  int64
	err       error
}

// Open wraps r in a gzip reader if it looks gzip-compressed, falling back to
// treating it as plaintext FASTQ otherwise.
func Open(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

// NewScanner constructs a Scanner over r (already decompressed by Open),
// tagging every Read it produces with mate and readGroup.
func NewScanner(r io.Reader, offset FastqOffset, mate seq.Mate, readGroup string) *Scanner {
	return &Scanner{b: bufio.NewScanner(r), offset: offset, mate: mate, readGroup: readGroup}
}

func (s *Scanner) scanLine() ([]byte, bool) {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = io.EOF
		}
		return nil, false
	}
	return s.b.Bytes(), true
}

// Scan reads the next four-line FASTQ record and returns it as a *seq.Read.
// It returns nil, false at end of stream or on error (check Err).
func (s *Scanner) Scan() (*seq.Read, bool) {
	if s.err != nil {
		return nil, false
	}
	id, ok := s.scanLine()
	if !ok {
		return nil, false
	}
	if len(id) == 0 || id[0] != '@' {
		s.err = ErrInvalid
		return nil, false
	}
	name := append([]byte(nil), id[1:]...)

	line, ok := s.scanLine()
	if !ok {
		s.err = ErrShort
		return nil, false
	}
	bases := seq.EncodeASCII(line)

	sep, ok := s.scanLine()
	if !ok {
		s.err = ErrShort
		return nil, false
	}
	if len(sep) == 0 || sep[0] != '+' {
		s.err = ErrInvalid
		return nil, false
	}

	qline, ok := s.scanLine()
	if !ok {
		s.err = ErrShort
		return nil, false
	}
	quals := make([]byte, len(qline))
	for i, c := range qline {
		quals[i] = c - byte(s.offset)
	}

	read := seq.NewRead(name, bases, quals, s.fragment, s.mate)
	read.ReadGroup = s.readGroup
	s.fragment++
	return read, true
}

// Err returns the scanning error, if any (io.EOF is not reported as an
// error).
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// PairScanner composes two Scanners (R1 and R2) into a seq.Pair stream.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner constructs a PairScanner from two already-opened,
// already-decompressed readers.
func NewPairScanner(r1, r2 io.Reader, offset FastqOffset, readGroup string) *PairScanner {
	return &PairScanner{
		r1: NewScanner(r1, offset, seq.Mate1, readGroup),
		r2: NewScanner(r2, offset, seq.Mate2, readGroup),
	}
}

// Scan reads the next read pair. It returns false at end of stream, or when
// one stream ends before the other (see Err).
func (p *PairScanner) Scan() (seq.Pair, bool) {
	a, ok1 := p.r1.Scan()
	b, ok2 := p.r2.Scan()
	if ok1 != ok2 {
		p.err = ErrDiscordant
		return seq.Pair{}, false
	}
	if !ok1 {
		return seq.Pair{}, false
	}
	return seq.Pair{a, b}, true
}

// Err returns the pair scanner's error, if any.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}
