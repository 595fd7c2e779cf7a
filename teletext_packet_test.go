package ebustl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// oddParityEncode is the test-only inverse of oddParityStrip: it sets
// bit 7 so the byte's total popcount is odd.
func oddParityEncode(v byte) byte {
	v &= 0x7f
	if popcount8(v)%2 == 0 {
		v |= 0x80
	}
	return v
}

func buildMRAG(magazine, row int) (lo, hi byte) {
	addr := byte(magazine&0x7) | byte(row&0x1f)<<3
	return hamming84Encode(addr & 0xf), hamming84Encode((addr >> 4) & 0xf)
}

func TestDecodePacketHeader(t *testing.T) {
	buf := make([]byte, packetPayloadLen)
	buf[0], buf[1] = buildMRAG(1, 0)

	buf[2] = hamming84Encode(5) // page units
	buf[3] = hamming84Encode(1) // page tens -> page 15
	buf[4] = hamming84Encode(0x8) // s1: C4 erase set
	buf[5] = hamming84Encode(0)   // s2
	buf[6] = hamming84Encode(0x8) // s3: C6 subtitle set
	buf[7] = hamming84Encode(0)   // s4
	buf[8] = hamming84Encode(0)   // C9-C11
	buf[9] = hamming84Encode(0)   // C12-C14: national option English

	for i := 10; i < packetPayloadLen; i++ {
		buf[i] = oddParityEncode(0x20)
	}

	pv, err := DecodePacket(buf, PacketDecodeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, PacketHeader, pv.Kind)
	assert.Equal(t, 1, pv.Magazine)
	assert.Equal(t, 0, pv.Row)
	assert.Equal(t, 15, pv.PageNumber)
	assert.True(t, pv.Control.Erase)
	assert.True(t, pv.Control.Subtitle)
	assert.Equal(t, NOEnglish, pv.Control.NationalOption)
	assert.Len(t, pv.Text, 32)
	assert.Equal(t, byte(0x20), pv.Text[0])
}

func TestDecodePacketDisplayRow(t *testing.T) {
	buf := make([]byte, packetPayloadLen)
	buf[0], buf[1] = buildMRAG(1, 1)
	for i := 2; i < packetPayloadLen; i++ {
		buf[i] = oddParityEncode('A')
	}

	pv, err := DecodePacket(buf, PacketDecodeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, PacketDisplay, pv.Kind)
	assert.Equal(t, 1, pv.Row)
	assert.Len(t, pv.Text, 40)
	for _, b := range pv.Text {
		assert.Equal(t, byte('A'), b)
	}
}

func TestDecodePacketParityViolationDegradesToSpace(t *testing.T) {
	buf := make([]byte, packetPayloadLen)
	buf[0], buf[1] = buildMRAG(1, 1)
	buf[2] = 0x03 // even popcount: violates odd parity
	for i := 3; i < packetPayloadLen; i++ {
		buf[i] = oddParityEncode(' ')
	}

	pv, err := DecodePacket(buf, PacketDecodeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, byte(0x20), pv.Text[0])
	assert.NotEmpty(t, pv.Diags)
	assert.Equal(t, SeverityWarning, pv.Diags[0].Severity)
}

func TestDecodePacketOnWireFraming(t *testing.T) {
	payload := make([]byte, packetPayloadLen)
	payload[0], payload[1] = buildMRAG(1, 1)
	for i := 2; i < packetPayloadLen; i++ {
		payload[i] = oddParityEncode(' ')
	}
	raw := make([]byte, packetOnWireLen)
	raw[0], raw[1] = 0x55, 0x55
	raw[framingCodeOffset] = framingCodeByte
	copy(raw[framingCodeOffset+1:], payload)

	pv, err := DecodePacket(raw, PacketDecodeOptions{})
	assert.NoError(t, err)
	assert.Equal(t, PacketDisplay, pv.Kind)
}

func TestDecodePacketTooShort(t *testing.T) {
	_, err := DecodePacket(make([]byte, 10), PacketDecodeOptions{})
	assert.ErrorIs(t, err, ErrInputTooShort)
}

func TestDecodePacketReverseBitOrder(t *testing.T) {
	buf := make([]byte, packetPayloadLen)
	lo, hi := buildMRAG(1, 1)
	buf[0], buf[1] = ReverseBits(lo), ReverseBits(hi)
	for i := 2; i < packetPayloadLen; i++ {
		buf[i] = ReverseBits(oddParityEncode(' '))
	}

	pv, err := DecodePacket(buf, PacketDecodeOptions{ReverseBitOrder: true})
	assert.NoError(t, err)
	assert.Equal(t, PacketDisplay, pv.Kind)
	assert.Equal(t, 1, pv.Row)
}
