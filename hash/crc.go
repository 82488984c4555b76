// Package hash implements the configurable CRC-style polynomial hash used
// to turn seed words into hash-table addresses (§3, §4.1), plus the
// CRC32C-based deterministic sampling primitive used for interval sampling.
//
// This is grounded on the original source's sequences/CrcPolynomial.hpp and
// CrcHasher.hpp: a polynomial is stored as up to 128 bits (16 little-endian
// bytes), and the hasher precomputes a 256-entry lookup table per input byte
// position so that hashing a key is one table lookup per byte of the
// polynomial's width (at most eight) XORed together, matching biosimd's
// table-driven style for per-byte operations.
package hash

import "hash/crc32"

// maxPolyBytes bounds polynomials to 128 bits, per spec §3.
const maxPolyBytes = 16

// Polynomial is a CRC polynomial of configurable bit width (<=128 bits),
// stored little-endian.
type Polynomial struct {
	bitCount int
	data     [maxPolyBytes]byte
}

// NewPolynomial builds a Polynomial from bitCount bits and a little-endian
// byte representation. Bits beyond bitCount in the top byte are masked off.
func NewPolynomial(bitCount int, data []byte) Polynomial {
	if bitCount <= 0 || bitCount > maxPolyBytes*8 {
		panic("hash: polynomial bit count out of range")
	}
	var p Polynomial
	p.bitCount = bitCount
	copy(p.data[:], data)
	topByte := (bitCount - 1) / 8
	topBitMask := byte(1) << uint((bitCount-1)%8)
	topByteMask := (topBitMask << 1) - 1
	p.data[topByte] &= topByteMask
	for i := topByte + 1; i < maxPolyBytes; i++ {
		p.data[i] = 0
	}
	return p
}

// ByteCount returns ceil(bitCount/8).
func (p Polynomial) ByteCount() int { return (p.bitCount + 7) / 8 }

// BitCount returns the configured polynomial width in bits.
func (p Polynomial) BitCount() int { return p.bitCount }

// crcHashSlow performs the bit-serial polynomial division described in
// CrcHasher.cpp: shift the remainder left one bit at a time, subtracting
// (XORing) the polynomial whenever the top bit would overflow.
func crcHashSlow(bitCount int, poly *[maxPolyBytes]byte, data []byte) [maxPolyBytes]byte {
	bytes := (bitCount + 7) / 8
	topByte := bytes - 1
	topBitMask := byte(1) << uint((bitCount+7)%8)
	topByteMask := (topBitMask << 1) - 1

	var hashBuf [maxPolyBytes]byte
	copy(hashBuf[:bytes], data[:bytes])

	for i := 0; i < bitCount; i++ {
		subtract := hashBuf[topByte]&topBitMask != 0
		for j := topByte; j > 0; j-- {
			hashBuf[j] = (hashBuf[j] << 1) | (hashBuf[j-1] >> 7)
		}
		hashBuf[0] <<= 1
		if subtract {
			for j := 0; j < bytes; j++ {
				hashBuf[j] ^= poly[j]
			}
		}
	}
	hashBuf[topByte] &= topByteMask
	return hashBuf
}

// Hasher evaluates a Polynomial against 64-bit keys via a precomputed
// per-byte-position lookup table, as described in §3: "The hasher
// precomputes a 256-entry byte-lookup table per input byte position and
// evaluates the hash by XOR-accumulating table lookups."
type Hasher struct {
	bitCount int
	// table[pos][b] holds the low 8 bytes (as uint64) of crcHashSlow applied
	// to a key with byte b placed at position pos and all other bytes zero.
	table [8][256]uint64
}

// NewHasher precomputes the lookup table for poly.
func NewHasher(poly Polynomial) *Hasher {
	h := &Hasher{bitCount: poly.BitCount()}
	var data [maxPolyBytes]byte
	for pos := 0; pos < 8; pos++ {
		for b := 0; b < 256; b++ {
			for i := range data {
				data[i] = 0
			}
			data[pos] = byte(b)
			out := crcHashSlow(poly.bitCount, &poly.data, data[:])
			h.table[pos][b] = bytesToUint64(out[:8])
		}
	}
	return h
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << uint(8*i)
	}
	return v
}

// Hash64 evaluates the polynomial hash of a little-endian key,
// XOR-accumulating the per-byte-position table lookups. Only the low
// ceil(bitCount/8) bytes of the key (at most eight) are looked up; higher
// bytes do not affect the result.
func (h *Hasher) Hash64(value uint64) uint64 {
	var hashVal uint64
	nBytes := (h.bitCount + 7) / 8
	if nBytes > 8 {
		nBytes = 8
	}
	for pos := 0; pos < nBytes; pos++ {
		b := byte(value >> uint(8*pos))
		hashVal ^= h.table[pos][b]
	}
	return hashVal
}

// Mask returns a mask covering exactly the configured bit width, for callers
// that need to validate a hash result fits in bitCount bits.
func (h *Hasher) Mask() uint64 {
	if h.bitCount >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(h.bitCount)) - 1
}

// CRC32C computes the Castagnoli CRC32 checksum, the deterministic sampling
// primitive required by §4.1's interval-sampling algorithm. It is a thin
// wrapper over the stdlib implementation: CRC32C is a named, bit-exact
// algorithm here (not a generic hash choice), so hash/crc32's Castagnoli
// table is the correct tool rather than a third-party general-purpose hash.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the Castagnoli CRC32 of b.
func CRC32C(b []byte) uint32 { return crc32.Checksum(b, crc32cTable) }

// CRC32CUpdate extends a running CRC32C state with a single byte, used by
// §4.1's "C_x = CRC32C(C_{x-1}, x)" recurrence.
func CRC32CUpdate(state uint32, x byte) uint32 {
	return crc32.Update(state, crc32cTable, []byte{x})
}

// CRC32CUpdateUint32 extends a running CRC32C state with a little-endian
// uint32, used for the "CRC32C(C_{x-1}, x)" step when x is iterated as a
// 32-bit round counter rather than a single byte.
func CRC32CUpdateUint32(state uint32, x uint32) uint32 {
	var b [4]byte
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
	return crc32.Update(state, crc32cTable, b[:])
}
