package ebustl

import "io"

// WriteSTL serialization: splitting a Caption's styled text into the
// TF byte stream Tech 3264-E expects, in-line style codes and all, and
// chunking that stream across as many 128-byte TTI blocks as it takes,
// grounded on the teacher's stlStyler write-side handling of codes
// 0x80-0x85 but widened to the color/height/flash/conceal attributes
// this package's Caption model actually carries.

const (
	stlNewline     = 0x8a
	stlPadding     = 0x8f
	foregroundBase = 0x80 // 0x80..0x87: set foreground color 0..7 (teletext ordering)
	stlFlashOn     = 0x88
	stlFlashOff    = 0x89
	stlDoubleOn    = 0x8d
	stlDoubleOff   = 0x8c
	stlConcealOn   = 0x8e
)

var stlLatinReverse = buildReverseTable(stlLatinCodePage)

func buildReverseTable(m map[byte]rune) map[rune]byte {
	rev := make(map[rune]byte, len(m))
	for b, r := range m {
		if _, exists := rev[r]; !exists {
			rev[r] = b
		}
	}
	return rev
}

func encodeGlyph(r rune) byte {
	if b, ok := stlLatinReverse[r]; ok {
		return b
	}
	return ' '
}

// encodeStyleCode appends the control bytes needed to move from prev to
// next's style, returning the updated "in effect" style.
func encodeStyleCode(buf []byte, prev, next StyleAttributes) ([]byte, StyleAttributes) {
	if next.Color != prev.Color {
		buf = append(buf, byte(foregroundBase+int(next.Color)))
	}
	if next.DoubleHeight != prev.DoubleHeight {
		if next.DoubleHeight {
			buf = append(buf, stlDoubleOn)
		} else {
			buf = append(buf, stlDoubleOff)
		}
	}
	if next.Flash != prev.Flash {
		if next.Flash {
			buf = append(buf, stlFlashOn)
		} else {
			buf = append(buf, stlFlashOff)
		}
	}
	if next.Concealed && !prev.Concealed {
		buf = append(buf, stlConcealOn)
	}
	return buf, next
}

func encodeRunText(buf []byte, text string) []byte {
	for _, r := range text {
		if r == '\n' {
			buf = append(buf, stlNewline)
			continue
		}
		buf = append(buf, encodeGlyph(r))
	}
	return buf
}

// buildTFStream renders a Caption's Text/Style/Segments into the raw
// TF byte stream, before chunking into 112-byte blocks.
func buildTFStream(cap Caption) []byte {
	var buf []byte
	state := StyleAttributes{Color: ColorWhite}
	switch {
	case cap.Style != nil:
		buf, state = encodeStyleCode(buf, state, *cap.Style)
		buf = encodeRunText(buf, cap.Text)
	case len(cap.Segments) > 0:
		for _, seg := range cap.Segments {
			buf, state = encodeStyleCode(buf, state, seg.Style)
			buf = encodeRunText(buf, seg.Text)
		}
	default:
		buf = encodeRunText(buf, cap.Text)
	}
	return buf
}

// chunkTF splits a TF byte stream into 112-byte blocks, padding the
// final (possibly only) block with stlPadding.
func chunkTF(stream []byte) [][]byte {
	if len(stream) == 0 {
		block := make([]byte, ttiTextSize)
		for i := range block {
			block[i] = stlPadding
		}
		return [][]byte{block}
	}
	var blocks [][]byte
	for off := 0; off < len(stream); off += ttiTextSize {
		end := off + ttiTextSize
		if end > len(stream) {
			end = len(stream)
		}
		block := make([]byte, ttiTextSize)
		for i := range block {
			block[i] = stlPadding
		}
		copy(block, stream[off:end])
		blocks = append(blocks, block)
	}
	return blocks
}

// textAlignToJC is the inverse of captionLayout's JC mapping: absent
// (the zero value) encodes as JC=0, "unchanged".
func textAlignToJC(a TextAlign) byte {
	switch a {
	case AlignLeft:
		return 1
	case AlignCenter:
		return justifyCentre
	case AlignRight:
		return 3
	default:
		return 0
	}
}

// encodeCaptionBlocks renders one Caption into its sequence of TTI
// blocks, with SN fixed across every continuation block and EBN
// sequencing 1, 2, ... on intermediate blocks, ending in the 0xFF
// terminal marker. VP/JC come from cap.Layout when the caption carries
// one (round-tripping a caption read from an existing .stl file);
// otherwise a centred, mid-screen default is used.
func encodeCaptionBlocks(cap Caption, sn uint16, fr FrameRate) [][]byte {
	chunks := chunkTF(buildTFStream(cap))
	blocks := make([][]byte, 0, len(chunks))
	tci := formatDurationSTLBytes(USToSMPTE(cap.StartUS, fr))
	tco := formatDurationSTLBytes(USToSMPTE(cap.EndUS, fr))

	vp := byte(20)
	jc := byte(justifyCentre)
	if cap.Layout != nil {
		vp = byte(cap.Layout.VerticalPosition)
		jc = textAlignToJC(cap.Layout.TextAlign)
	}

	for i, chunk := range chunks {
		ebn := byte(i + 1)
		if i == len(chunks)-1 {
			ebn = ebnTerminal
		}
		h := ttiHeader{
			SGN: 0,
			SN:  sn,
			EBN: ebn,
			CS:  0,
			TCI: tci,
			TCO: tco,
			VP:  vp,
			JC:  jc,
			CF:  0,
		}
		block := make([]byte, 0, ttiBlockSize)
		block = append(block, h.encode()...)
		block = append(block, chunk...)
		blocks = append(blocks, block)
	}
	return blocks
}

// WriteSTL writes captions as a complete .stl file: one GSI block
// followed by each caption's TTI block(s), in input order. Each
// caption's Subtitle Number (SN) is its position in captions, wrapping modulo
// 2^16 as Tech 3264-E's 2-byte SN field requires.
func WriteSTL(w io.Writer, captions []Caption, opts ...WriterOption) error {
	if len(captions) == 0 {
		return ErrNoSubtitlesToWrite
	}
	cfg := newWriterConfig(opts)
	gsi := cfg.gsi

	var allBlocks [][]byte
	for i, cap := range captions {
		sn := uint16(i % 0x10000)
		allBlocks = append(allBlocks, encodeCaptionBlocks(cap, sn, gsi.FrameRate)...)
	}

	gsi.TotalTTIBlocks = len(allBlocks)
	gsi.TotalSubtitles = len(captions)
	if gsi.TotalSubtitleGroups == 0 {
		gsi.TotalSubtitleGroups = 1
	}

	if _, err := w.Write(gsi.encode()); err != nil {
		return err
	}
	for _, b := range allBlocks {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}
