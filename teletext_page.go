package ebustl

// Page-level aggregation: turning a stream of decoded packets into
// complete subtitle pages with onset/clear times, grounded on the
// header-driven reassembly state machine asticode-go-astisub's
// open_subtitle.go uses to fold successive input rows into one
// in-progress item until a new item's start line is seen.

// DisplayRow is one decoded row (1..24) of a subtitle page, as a
// sequence of glyph/spacing/space cells in column order.
type DisplayRow struct {
	Row   int
	Cells []Cell
}

// SubtitlePage is one complete teletext subtitle page: its rows, and
// the [OnsetUS, ClearUS) interval it was on screen for.
type SubtitlePage struct {
	PageNumber int
	Rows       []DisplayRow
	OnsetUS    int64
	ClearUS    int64
}

// TimedPacket pairs a raw teletext packet with the PTS (in
// microseconds, relative to the start of the stream) it was delivered
// at; cmd/ts2stl produces these from an MPEG-TS PES stream.
type TimedPacket struct {
	PTS int64
	Raw []byte
}

// PageAggregator folds a sequence of TimedPacket into complete
// SubtitlePage values. It is not safe for concurrent use.
type PageAggregator struct {
	cfg     aggregatorConfig
	decoder *TeletextCharacterDecoder

	active     bool
	page       SubtitlePage
	rows       map[int]DisplayRow
	lockedPage int
}

// NewPageAggregator creates an aggregator. Without WithTeletextPage it
// locks onto the first header packet whose Control.Subtitle bit is set.
func NewPageAggregator(opts ...AggregatorOption) *PageAggregator {
	cfg := newAggregatorConfig(opts)
	decoder := NewTeletextCharacterDecoder()
	decoder.UpdateCharset(0, cfg.defaultOption)
	return &PageAggregator{
		cfg:        cfg,
		decoder:    decoder,
		lockedPage: cfg.pageFilter,
		rows:       make(map[int]DisplayRow),
	}
}

// Feed decodes one packet and folds it into the in-progress page,
// returning a completed SubtitlePage when this packet's header closes
// out the previous one. diags collects any packet-level anomalies
// regardless of whether a page was completed.
func (a *PageAggregator) Feed(tp TimedPacket) (page *SubtitlePage, diags []Diagnostic, err error) {
	pv, err := DecodePacket(tp.Raw, PacketDecodeOptions{ReverseBitOrder: a.cfg.reverseBits})
	if err != nil {
		return nil, pv.Diags, err
	}
	diags = pv.Diags

	switch pv.Kind {
	case PacketHeader:
		if a.lockedPage == 0 {
			if !pv.Control.Subtitle {
				return nil, diags, nil
			}
			a.lockedPage = pv.PageNumber
		} else if pv.PageNumber != a.lockedPage {
			return nil, diags, nil
		}

		a.decoder.UpdateCharset(0, pv.Control.NationalOption)

		var completed *SubtitlePage
		if a.active && (pv.Control.Erase || len(a.rows) > 0) {
			completed = a.finalizePage(tp.PTS)
		}
		a.active = true
		a.rows = make(map[int]DisplayRow)
		a.page = SubtitlePage{PageNumber: pv.PageNumber, OnsetUS: tp.PTS}
		return completed, diags, nil

	case PacketDisplay:
		if !a.active {
			return nil, diags, nil
		}
		a.rows[pv.Row] = DisplayRow{Row: pv.Row, Cells: decodeRowCells(pv.Text, a.decoder)}
		return nil, diags, nil

	default:
		return nil, diags, nil
	}
}

// Flush closes out whatever page is in progress, using clearUS as its
// clear time; it returns nil if no page was in progress.
func (a *PageAggregator) Flush(clearUS int64) *SubtitlePage {
	if !a.active {
		return nil
	}
	return a.finalizePage(clearUS)
}

func (a *PageAggregator) finalizePage(clearUS int64) *SubtitlePage {
	p := a.page
	p.ClearUS = clearUS
	for row := 1; row <= 24; row++ {
		if dr, ok := a.rows[row]; ok {
			p.Rows = append(p.Rows, dr)
		}
	}
	a.active = false
	a.rows = make(map[int]DisplayRow)
	return &p
}

// decodeRowCells turns 40 parity-stripped bytes into a Cell sequence.
// Mosaic/graphics control codes are recognized only to be treated as
// no-ops (a plain space cell): ETSI EN 300 706 reserves them for
// graphics pages, and subtitle pages never rely on them for text.
func decodeRowCells(text []byte, dec *TeletextCharacterDecoder) []Cell {
	cells := make([]Cell, 0, len(text))
	for _, b := range text {
		switch {
		case b <= 0x07:
			cells = append(cells, spacingCell(Attribute{Kind: AttrForeground, Color: Color(b)}))
		case b == 0x08:
			cells = append(cells, spacingCell(Attribute{Kind: AttrFlash}))
		case b == 0x09:
			cells = append(cells, spacingCell(Attribute{Kind: AttrSteady}))
		case b == 0x0a:
			cells = append(cells, spacingCell(Attribute{Kind: AttrEndBox}))
		case b == 0x0b:
			cells = append(cells, spacingCell(Attribute{Kind: AttrStartBox}))
		case b == 0x0c:
			cells = append(cells, spacingCell(Attribute{Kind: AttrNormalHeight}))
		case b == 0x0d:
			cells = append(cells, spacingCell(Attribute{Kind: AttrDoubleHeight}))
		case b >= 0x0e && b <= 0x17:
			cells = append(cells, spaceCell()) // mosaic/double-size/mosaic-color: ignored
		case b == 0x18:
			cells = append(cells, spacingCell(Attribute{Kind: AttrConceal}))
		case b == 0x19 || b == 0x1a || b == 0x1e || b == 0x1f:
			cells = append(cells, spaceCell()) // contiguous/separated mosaic, hold/release mosaic
		case b == 0x1b:
			cells = append(cells, spaceCell()) // ESC, not used by subtitle pages
		case b == 0x1c:
			cells = append(cells, spacingCell(Attribute{Kind: AttrBlackBackground}))
		case b == 0x1d:
			cells = append(cells, spacingCell(Attribute{Kind: AttrNewBackground}))
		case b == 0x20:
			cells = append(cells, spaceCell())
		default:
			cells = append(cells, glyphCell(dec.Decode(b)))
		}
	}
	return cells
}

// DecodePackets is the one-shot convenience wrapper around
// PageAggregator for callers who already have every packet (and its
// PTS) in hand: it feeds them all through a fresh aggregator and
// flushes at the final packet's timestamp.
func DecodePackets(packets []TimedPacket, opts ...AggregatorOption) ([]SubtitlePage, []Diagnostic, error) {
	agg := NewPageAggregator(opts...)
	var pages []SubtitlePage
	var diags []Diagnostic
	var lastPTS int64
	for _, tp := range packets {
		page, d, err := agg.Feed(tp)
		diags = append(diags, d...)
		if err != nil {
			return pages, diags, err
		}
		if page != nil {
			pages = append(pages, *page)
		}
		lastPTS = tp.PTS
	}
	if last := agg.Flush(lastPTS); last != nil {
		pages = append(pages, *last)
	}
	return pages, diags, nil
}
