package ebustl

import (
	"bytes"
	"fmt"
	"io"
)

// ReadSTL parses a complete .stl file into Captions, tolerating a
// truncated final TTI block and reassembling multi-block subtitles by
// Subtitle Number the way EBU Tech 3264-E's EBN/CS continuation
// protocol describes, grounded on the teacher's ReadFromSTL GSI/TTI
// walk but restructured around this package's Caption/Segment model
// instead of Subtitles/Item.
func ReadSTL(r io.Reader, opts ...ReaderOption) ([]Caption, []Diagnostic, error) {
	cfg := newReaderConfig(opts)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	if len(data) < gsiBlockSize {
		return nil, nil, fmt.Errorf("ebustl: file is %d bytes: %w", len(data), ErrInputTooShort)
	}

	gsi, err := decodeGSI(data[:gsiBlockSize])
	if err != nil {
		return nil, nil, err
	}
	if cfg.frameRateOverride != nil {
		gsi.FrameRate = *cfg.frameRateOverride
	} else {
		known := false
		for _, rate := range []string{"24", "25", "29", "30", "59"} {
			if bytes.Contains([]byte(gsi.DiskFormatCode), []byte(rate)) {
				known = true
			}
		}
		if !known {
			return nil, nil, fmt.Errorf("ebustl: disk format code %q: %w", gsi.DiskFormatCode, ErrUnrecognizedFrameRate)
		}
	}

	var programmeStartUS int64
	if !cfg.ignoreProgrammeStart {
		programmeStartUS = SMPTEToUS(parseDurationSTLBytes(gsi.StartOfProgramme, gsi.FrameRate), gsi.FrameRate)
	}

	rest := data[gsiBlockSize:]

	type group struct {
		headers []ttiHeader
		texts   [][]byte
	}
	groups := make(map[uint16]*group)
	var order []uint16

	var diags []Diagnostic

	for off := 0; off+ttiBlockSize <= len(rest); off += ttiBlockSize {
		raw := rest[off : off+ttiBlockSize]
		h := decodeTTIHeader(raw)
		text := raw[16 : 16+ttiTextSize]

		g, ok := groups[h.SN]
		if !ok {
			g = &group{}
			groups[h.SN] = g
			order = append(order, h.SN)
		}

		g.headers = append(g.headers, h)
		g.texts = append(g.texts, text)
	}

	if rem := len(rest) % ttiBlockSize; rem != 0 {
		diags = append(diags, Diagnostic{Severity: SeverityWarning,
			Message: fmt.Sprintf("%d trailing byte(s) after the last complete TTI block were ignored", rem)})
	}

	// Tech 3264-E's continuation protocol only binds a subtitle's own
	// blocks together; the first nine reassembled groups are a
	// reasonable structural spot-check for a corrupted or truncated
	// file without scanning every group before returning any captions.
	// An intermediate (non-terminal) block is anomalous when its EBN
	// falls outside 1..254 or its CS is non-zero.
	structuralAnomalies := 0
	for _, sn := range order[:min(9, len(order))] {
		for _, h := range groups[sn].headers {
			if h.EBN == ebnTerminal {
				continue
			}
			if h.EBN < 1 || h.EBN > 254 || h.CS != 0 {
				structuralAnomalies++
			}
		}
	}
	if structuralAnomalies > 0 {
		diags = append(diags, Diagnostic{Severity: SeverityWarning,
			Message: fmt.Sprintf("%d of first 9 TTI block(s) have intermediate EBN with invalid CS", structuralAnomalies)})
	}

	captions := make([]Caption, 0, len(order))
	for _, sn := range order {
		g := groups[sn]
		var full []byte
		for _, t := range g.texts {
			full = append(full, t...)
		}
		full = bytes.TrimRight(full, string([]byte{stlPadding}))

		dec := NewSTLCharacterDecoder(gsi.CharacterCodeTable)
		runs := decodeTFStream(full, dec)

		first := g.headers[0]
		startUS := SMPTEToUS(parseDurationSTLBytes(first.TCI, gsi.FrameRate), gsi.FrameRate) - programmeStartUS
		endUS := SMPTEToUS(parseDurationSTLBytes(first.TCO, gsi.FrameRate), gsi.FrameRate) - programmeStartUS

		captions = append(captions, Caption{
			Text:          classifyText(runs),
			Style:         classifyStyle(runs),
			Segments:      classifySegments(runs),
			Layout:        captionLayout(first),
			StartUS:       startUS,
			EndUS:         endUS,
			StartTimecode: USToSMPTE(startUS, gsi.FrameRate).String(),
			EndTimecode:   USToSMPTE(endUS, gsi.FrameRate).String(),
		})
	}

	return captions, diags, nil
}

// captionLayout derives a Caption's Layout from a TTI block's VP/JC
// fields: vertical_position comes directly from VP, text_align from JC
// (1 left, 2 centre, 3 right; 0 "unchanged" omits text_align entirely).
func captionLayout(h ttiHeader) *Layout {
	l := &Layout{VerticalPosition: int(h.VP)}
	switch h.JC {
	case 1:
		l.TextAlign = AlignLeft
	case justifyCentre:
		l.TextAlign = AlignCenter
	case 3:
		l.TextAlign = AlignRight
	}
	return l
}

// decodeTFStream is the read-side mirror of buildTFStream: it walks a
// reassembled TF byte stream, folding it into styledRuns the same way
// BuildCaption folds teletext cells, so the same classify* helpers
// decide the resulting Caption's Style/Segments shape either way.
func decodeTFStream(data []byte, dec *STLCharacterDecoder) []*styledRun {
	var runs []*styledRun
	style := StyleAttributes{Color: ColorWhite}
	current := &styledRun{style: style}

	// Mirrors BuildCaption's switchRun: push the current run only once it
	// holds text under its old style, and label the replacement with the
	// style already updated by the caller.
	switchRun := func() {
		if current.text.Len() > 0 {
			runs = append(runs, current)
			current = &styledRun{style: style}
		} else {
			current.style = style
		}
	}

	for _, b := range data {
		switch {
		case b == stlNewline:
			current.text.WriteByte('\n')
			if style.Color != ColorWhite {
				style.Color = ColorWhite
				switchRun()
			}
		case b >= foregroundBase && b <= foregroundBase+7:
			c := Color(b - foregroundBase)
			if style.Color != c {
				style.Color = c
				switchRun()
			}
		case b == stlFlashOn:
			if !style.Flash {
				style.Flash = true
				switchRun()
			}
		case b == stlFlashOff:
			if style.Flash {
				style.Flash = false
				switchRun()
			}
		case b == stlDoubleOn:
			if !style.DoubleHeight {
				style.DoubleHeight = true
				switchRun()
			}
		case b == stlDoubleOff:
			if style.DoubleHeight {
				style.DoubleHeight = false
				switchRun()
			}
		case b == stlConcealOn:
			if !style.Concealed {
				style.Concealed = true
				switchRun()
			}
		default:
			if r, ok := dec.Decode(b); ok {
				current.text.WriteRune(r)
			}
		}
	}
	runs = append(runs, current)
	return runs
}
