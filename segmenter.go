package ebustl

import "strings"

// Turning a decoded SubtitlePage into a Caption: plain text, plus
// either a single unified Style, a list of styled Segments, or
// neither (plain, unstyled text) depending on how the page's spacing
// attributes actually varied. The run-building state machine below is
// the teletext analogue of open_subtitle.go's row-folding loop:
// consume cells left to right, start a new run whenever the active
// style changes, and fold finished runs into the caption as they close.

// StyleAttributes is the rendered style in effect for a run of text.
// The default is defaultStyle (white, non-double-height, steady,
// visible), the style a row starts in and returns its foreground color
// to after every line break; the zero value's Color is ColorBlack, not
// white.
type StyleAttributes struct {
	Color        Color `json:"color"`
	DoubleHeight bool  `json:"double_height,omitempty"`
	Flash        bool  `json:"flash,omitempty"`
	Concealed    bool  `json:"concealed,omitempty"`
}

// Segment is one contiguous run of same-styled text within a Caption.
type Segment struct {
	Text  string          `json:"text"`
	Style StyleAttributes `json:"style"`
}

// TextAlign is the horizontal alignment a caption's layout carries. The
// zero value means no alignment was specified (a TTI block's JC=0,
// "unchanged"), which Layout always omits from its encoded form.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Layout is a caption's screen placement: the row it renders on (a TTI
// block's VP, 0..23) and, when the source specified one, its horizontal
// alignment (a TTI block's JC). Only the EBU-STL reading path produces
// a Layout; teletext pages carry no placement fields of their own.
type Layout struct {
	VerticalPosition int       `json:"vertical_position"`
	TextAlign        TextAlign `json:"text_align,omitempty"`
}

// Caption is the fully decoded, styled text of one subtitle page.
//
// At most one of Style or Segments is populated, never both:
//   - Style is set when every non-blank run of the caption shares one
//     non-default style.
//   - Segments is set when styling varies across the caption.
//   - Style and Segments are both nil when every non-blank run has the
//     default style: the caption is plain, unstyled text.
type Caption struct {
	PageNumber    int              `json:"page_number,omitempty"`
	Text          string           `json:"text"`
	Style         *StyleAttributes `json:"style,omitempty"`
	Segments      []Segment        `json:"segments,omitempty"`
	Layout        *Layout          `json:"layout,omitempty"`
	StartUS       int64            `json:"start"`
	EndUS         int64            `json:"end"`
	StartTimecode string           `json:"start_timecode,omitempty"`
	EndTimecode   string           `json:"end_timecode,omitempty"`
}

type styledRun struct {
	style StyleAttributes
	text  strings.Builder
}

// BuildCaption converts one decoded SubtitlePage into a Caption.
func BuildCaption(page SubtitlePage) Caption {
	var runs []*styledRun
	style := StyleAttributes{Color: ColorWhite}
	current := &styledRun{style: style}

	// switchRun is called whenever `style` has just changed. A run
	// already holding text is pushed to runs and replaced by a fresh
	// one carrying the new style; an empty run simply relabels itself,
	// since nothing has been written under its old style yet.
	switchRun := func() {
		if current.text.Len() > 0 {
			runs = append(runs, current)
			current = &styledRun{style: style}
		} else {
			current.style = style
		}
	}

	for _, row := range page.Rows {
		insideBox := true
		for _, ri := range row.Cells {
			if ri.Kind == CellSpacing && ri.Attribute.Kind == AttrStartBox {
				insideBox = false
				break
			}
		}

		for _, cell := range row.Cells {
			switch cell.Kind {
			case CellSpacing:
				a := cell.Attribute
				switch a.Kind {
				case AttrForeground:
					if style.Color != a.Color {
						style.Color = a.Color
						switchRun()
					}
				case AttrDoubleHeight:
					if !style.DoubleHeight {
						style.DoubleHeight = true
						switchRun()
					}
				case AttrNormalHeight:
					if style.DoubleHeight {
						style.DoubleHeight = false
						switchRun()
					}
				case AttrFlash:
					if !style.Flash {
						style.Flash = true
						switchRun()
					}
				case AttrSteady:
					if style.Flash {
						style.Flash = false
						switchRun()
					}
				case AttrConceal:
					if !style.Concealed {
						style.Concealed = true
						switchRun()
					}
				case AttrStartBox:
					insideBox = true
				case AttrEndBox:
					insideBox = false
				}
				// A spacing attribute occupies a column on the wire but
				// carries no glyph of its own; the literal space byte
				// (0x20) already has its own CellSpace kind.
			case CellGlyph:
				if insideBox {
					current.text.WriteRune(cell.Glyph)
				}
			case CellSpace:
				if insideBox {
					current.text.WriteByte(' ')
				}
			}
		}

		current.text.WriteByte('\n')
		if style.Color != ColorWhite {
			style.Color = ColorWhite
			switchRun()
		}
	}
	runs = append(runs, current)

	return Caption{
		PageNumber: page.PageNumber,
		StartUS:    page.OnsetUS,
		EndUS:      page.ClearUS,
		Text:       classifyText(runs),
		Style:      classifyStyle(runs),
		Segments:   classifySegments(runs),
	}
}

func joinedText(runs []*styledRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.text.String())
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func classifyText(runs []*styledRun) string {
	return joinedText(runs)
}

func nonBlankRuns(runs []*styledRun) []*styledRun {
	var out []*styledRun
	for _, r := range runs {
		if strings.TrimSpace(r.text.String()) != "" {
			out = append(out, r)
		}
	}
	return out
}

var defaultStyle = StyleAttributes{Color: ColorWhite}

// classifyStyle returns a non-nil unified style only when every
// non-blank run shares one, non-default style.
func classifyStyle(runs []*styledRun) *StyleAttributes {
	nb := nonBlankRuns(runs)
	if len(nb) == 0 {
		return nil
	}
	first := nb[0].style
	if first == defaultStyle {
		return nil
	}
	for _, r := range nb[1:] {
		if r.style != first {
			return nil
		}
	}
	s := first
	return &s
}

// classifySegments returns the run list as Segments whenever styling
// varies across non-blank runs; it returns nil when all non-blank runs
// share one style (default or not), the two cases classifyStyle or the
// plain-text case already cover.
func classifySegments(runs []*styledRun) []Segment {
	nb := nonBlankRuns(runs)
	if len(nb) == 0 {
		return nil
	}
	first := nb[0].style
	allSame := true
	for _, r := range nb[1:] {
		if r.style != first {
			allSame = false
			break
		}
	}
	if allSame {
		return nil
	}
	segs := make([]Segment, 0, len(runs))
	for _, r := range runs {
		if r.text.Len() == 0 {
			continue
		}
		segs = append(segs, Segment{Text: r.text.String(), Style: r.style})
	}
	return segs
}
