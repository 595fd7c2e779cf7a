package ebustl

import "fmt"

// Packet framing and header decode for ETSI EN 300 706 teletext
// packets. A packet arrives to this package as a 42-byte payload
// (magazine/row address + 40 data bytes); DecodePacket also accepts the
// 45-byte on-wire form (2 clock-run-in bytes + 1 framing code byte +
// 42-byte payload) and strips the prefix itself, so callers demuxing
// straight off a PES payload don't need to know which form they have.

// PacketKind classifies a decoded packet for the page aggregator.
type PacketKind int

const (
	// PacketHeader is packet 0 of a page: carries the page number,
	// subcode and page-level control bits, plus the 32-byte header text.
	PacketHeader PacketKind = iota
	// PacketDisplay is a row-1..24 packet carrying 40 display bytes.
	PacketDisplay
	// PacketOther is any packet this package does not interpret
	// (packets 25-31: enhancement, fastext, DRCS and similar).
	PacketOther
)

// ControlBits are the page-level control flags carried by a header
// packet (ETSI EN 300 706 §9.3, C4..C14). Only the bits subtitle
// extraction actually needs are decoded into named fields; the rest
// are preserved in Raw for callers that need them.
type ControlBits struct {
	Erase          bool // C4: page is an update, clear previous contents first
	Newsflash      bool // C5
	Subtitle       bool // C6: page is a subtitle page, not a normal magazine page
	SuppressHeader bool // C7: don't display row 0 as a page header
	Update         bool // C8
	InhibitDisplay bool // C9
	Magazine       bool // C10: magazine serial/parallel transmission mode
	NationalOption NationalOption
	Raw            uint16
}

// PacketView is the decoded, Hamming/parity-resolved view of one
// teletext packet.
type PacketView struct {
	Magazine   int // 1..8 (header byte's 0 maps to magazine 8)
	Row        int // 0..31
	Kind       PacketKind
	PageNumber int // two BCD digits combined, header packets only
	Subcode    int // 10-bit subcode, header packets only
	Control    ControlBits
	Text       []byte // parity-stripped 7-bit display bytes, 32 (header) or 40 (display)
	Diags      []Diagnostic
}

// PacketDecodeOptions configures DecodePacket for non-default captures.
type PacketDecodeOptions struct {
	// ReverseBitOrder reverses every byte's bit order before decoding,
	// for captures stored MSB-first instead of teletext's native
	// LSB-first transmission order.
	ReverseBitOrder bool
}

const (
	packetPayloadLen  = 42
	packetOnWireLen   = 45
	framingCodeByte   = 0xe4
	framingCodeOffset = 2
)

// DecodePacket decodes one 42- or 45-byte raw teletext packet.
func DecodePacket(raw []byte, opts PacketDecodeOptions) (PacketView, error) {
	switch len(raw) {
	case packetOnWireLen:
		raw = raw[framingCodeOffset+1:]
	case packetPayloadLen:
		// already bare payload
	default:
		return PacketView{}, fmt.Errorf("ebustl: packet length %d: %w", len(raw), ErrInputTooShort)
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)
	if opts.ReverseBitOrder {
		for i, b := range buf {
			buf[i] = ReverseBits(b)
		}
	}

	var diags []Diagnostic

	mragLo, ok1 := hamming84Decode(buf[0])
	mragHi, ok2 := hamming84Decode(buf[1])
	if !ok1 || !ok2 {
		diags = append(diags, Diagnostic{Severity: SeverityError, Message: "uncorrectable MRAG Hamming error"})
		return PacketView{Diags: diags}, fmt.Errorf("ebustl: %s", diags[len(diags)-1].Message)
	}
	addr := uint8(mragLo) | uint8(mragHi)<<4
	magazine := int(addr & 0x7)
	if magazine == 0 {
		magazine = 8
	}
	row := int((addr >> 3) & 0x1f)

	pv := PacketView{Magazine: magazine, Row: row}

	switch {
	case row == 0:
		pv.Kind = PacketHeader
		if err := decodeHeader(buf, &pv, &diags); err != nil {
			pv.Diags = diags
			return pv, err
		}
	case row >= 1 && row <= 24:
		pv.Kind = PacketDisplay
		pv.Text = decodeDisplayBytes(buf[2:], &diags)
	default:
		pv.Kind = PacketOther
	}
	pv.Diags = diags
	return pv, nil
}

// decodeHeader decodes bytes 2..9 (page number, subcode, control bits)
// and the 32-byte header text in bytes 10..41.
func decodeHeader(buf []byte, pv *PacketView, diags *[]Diagnostic) error {
	nib := make([]byte, 8)
	for i := 0; i < 8; i++ {
		n, ok := hamming84Decode(buf[2+i])
		if !ok {
			*diags = append(*diags, Diagnostic{Severity: SeverityWarning,
				Message: fmt.Sprintf("uncorrectable header Hamming error at byte %d", 2+i)})
			n = 0
		}
		nib[i] = n
	}

	units, tens := nib[0], nib[1]&0xf
	pv.PageNumber = int(tens)*10 + int(units)

	s1, s2, s3, s4 := nib[2], nib[3], nib[4], nib[5]
	pv.Subcode = int(s1&0x7) | int(s2&0x7)<<3 | int(s3&0x3)<<6 | int(s4&0x3)<<8

	c4 := s1&0x8 != 0
	c5 := s2&0x8 != 0
	c6 := s3&0x8 != 0
	c7 := s4&0x4 != 0
	c8 := s4&0x8 != 0

	c9c11 := nib[6]
	c12c14 := nib[7]

	pv.Control = ControlBits{
		Erase:          c4,
		Newsflash:      c5,
		Subtitle:       c6,
		SuppressHeader: c7,
		Update:         c8,
		InhibitDisplay: c9c11&0x1 != 0,
		Magazine:       c9c11&0x2 != 0,
		NationalOption: nationalOptionFromHeaderCode(int(c12c14 & 0x7)),
		Raw:            uint16(c9c11) | uint16(c12c14)<<4,
	}

	pv.Text = decodeDisplayBytes(buf[10:42], diags)
	return nil
}

// decodeDisplayBytes odd-parity-strips each display byte, recording a
// diagnostic (but not failing the packet) on a parity violation; a bad
// display byte is replaced with a space, matching how a real decoder
// chip degrades rather than drops the row.
func decodeDisplayBytes(b []byte, diags *[]Diagnostic) []byte {
	out := make([]byte, len(b))
	badCount := 0
	for i, v := range b {
		stripped, ok := oddParityStrip(v)
		if !ok {
			badCount++
			stripped = 0x20
		}
		out[i] = stripped
	}
	if badCount > 0 {
		*diags = append(*diags, Diagnostic{Severity: SeverityWarning,
			Message: fmt.Sprintf("%d display byte(s) failed odd-parity check", badCount)})
	}
	return out
}
