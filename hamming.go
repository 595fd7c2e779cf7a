package ebustl

// Bit-coding primitives for ETSI EN 300 706 §8.2: the Hamming 8/4 code
// protecting teletext header fields, the odd-parity code protecting
// display bytes, and a reverse-bit table for captures delivered
// MSB-first.

// hamming84Decode implements the extended (SECDED) Hamming 8/4 code.
// Bit layout (bit0 = first bit transmitted = LSB of b): c1 c2 d1 c3 d2 d3 d4 p0,
// where c1..c3 are the Hamming(7,4) check bits, d1..d4 are the data
// bits and p0 is the overall parity bit added to detect (without
// correcting) double-bit errors.
//
// Returns the 4-bit data nibble and ok=false when the byte carries an
// uncorrectable (double-bit) error.
func hamming84Decode(b byte) (nibble byte, ok bool) {
	c1 := b & 1
	c2 := (b >> 1) & 1
	d1 := (b >> 2) & 1
	c3 := (b >> 3) & 1
	d2 := (b >> 4) & 1
	d3 := (b >> 5) & 1
	d4 := (b >> 6) & 1
	p0 := (b >> 7) & 1

	syndrome := (c1 ^ d1 ^ d2 ^ d4) | ((c2 ^ d1 ^ d3 ^ d4) << 1) | ((c3 ^ d2 ^ d3 ^ d4) << 2)
	overall := c1 ^ c2 ^ d1 ^ c3 ^ d2 ^ d3 ^ d4 ^ p0

	nibble = d1 | (d2 << 1) | (d3 << 2) | (d4 << 3)

	switch {
	case syndrome == 0 && overall == 0:
		// No error.
		return nibble, true
	case syndrome == 0 && overall == 1:
		// Single-bit error in the overall parity bit itself; data unaffected.
		return nibble, true
	case syndrome != 0 && overall == 1:
		// Single-bit, correctable error among c1..c7; flip the offending bit.
		bits := []byte{c1, c2, d1, c3, d2, d3, d4}
		pos := syndrome - 1
		bits[pos] ^= 1
		nibble = bits[2] | (bits[4] << 1) | (bits[5] << 2) | (bits[6] << 3)
		return nibble, true
	default:
		// syndrome != 0 && overall == 0: double-bit, uncorrectable error.
		return 0, false
	}
}

// hamming84Encode is the inverse of hamming84Decode, used internally by
// tests and by synthetic packet builders; it is not part of the core
// decode path (no production caller ever needs to Hamming-encode a
// field it already holds in the clear).
func hamming84Encode(nibble byte) byte {
	d1 := nibble & 1
	d2 := (nibble >> 1) & 1
	d3 := (nibble >> 2) & 1
	d4 := (nibble >> 3) & 1

	c1 := d1 ^ d2 ^ d4
	c2 := d1 ^ d3 ^ d4
	c3 := d2 ^ d3 ^ d4

	b := c1 | (c2 << 1) | (d1 << 2) | (c3 << 3) | (d2 << 4) | (d3 << 5) | (d4 << 6)
	overall := popcount8(b)
	b |= (overall & 1) << 7
	return b
}

func popcount8(b byte) byte {
	var n byte
	for b != 0 {
		n += b & 1
		b >>= 1
	}
	return n
}

// oddParityStrip strips the parity bit used by teletext/STL display
// bytes. The 7 data bits are returned regardless of parity outcome;
// callers decide whether to act on a parity violation.
func oddParityStrip(b byte) (value byte, parityOK bool) {
	value = b & 0x7f
	parityOK = popcount8(b)%2 == 1
	return
}

// reverseBitsTable maps a byte to its bit-reversed form, for captures
// whose teletext bytes were stored MSB-first instead of the wire's
// native LSB-first order.
var reverseBitsTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		reverseBitsTable[i] = reverseBits(byte(i))
	}
}

func reverseBits(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// ReverseBits reverses the bit order of b using the precomputed table.
func ReverseBits(b byte) byte {
	return reverseBitsTable[b]
}
