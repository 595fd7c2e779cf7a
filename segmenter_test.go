package ebustl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ebustl "github.com/hauph/ebustl-utils"
)

func glyphs(s string) []ebustl.Cell {
	cells := make([]ebustl.Cell, 0, len(s))
	for _, r := range s {
		cells = append(cells, ebustl.Cell{Kind: ebustl.CellGlyph, Glyph: r})
	}
	return cells
}

func colorAttr(c ebustl.Color) ebustl.Cell {
	return ebustl.Cell{Kind: ebustl.CellSpacing, Attribute: ebustl.Attribute{Kind: ebustl.AttrForeground, Color: c}}
}

func TestBuildCaptionPlainText(t *testing.T) {
	page := ebustl.SubtitlePage{
		Rows: []ebustl.DisplayRow{
			{Row: 1, Cells: glyphs("HELLO")},
		},
	}
	c := ebustl.BuildCaption(page)
	assert.Equal(t, "HELLO", c.Text)
	assert.Nil(t, c.Style)
	assert.Nil(t, c.Segments)
}

func TestBuildCaptionUnifiedNonDefaultStyle(t *testing.T) {
	var cells []ebustl.Cell
	cells = append(cells, colorAttr(ebustl.ColorYellow))
	cells = append(cells, glyphs("WARNING")...)
	page := ebustl.SubtitlePage{Rows: []ebustl.DisplayRow{{Row: 1, Cells: cells}}}

	c := ebustl.BuildCaption(page)
	if assert.NotNil(t, c.Style) {
		assert.Equal(t, ebustl.ColorYellow, c.Style.Color)
	}
	assert.Nil(t, c.Segments)
}

func TestBuildCaptionMixedColorsProducesSegments(t *testing.T) {
	var cells []ebustl.Cell
	cells = append(cells, colorAttr(ebustl.ColorRed))
	cells = append(cells, glyphs("RED")...)
	cells = append(cells, colorAttr(ebustl.ColorCyan))
	cells = append(cells, glyphs("CYAN")...)
	page := ebustl.SubtitlePage{Rows: []ebustl.DisplayRow{{Row: 1, Cells: cells}}}

	c := ebustl.BuildCaption(page)
	assert.Nil(t, c.Style)
	if assert.Len(t, c.Segments, 2) {
		assert.Equal(t, ebustl.ColorRed, c.Segments[0].Style.Color)
		assert.Equal(t, ebustl.ColorCyan, c.Segments[1].Style.Color)
	}
}

func TestBuildCaptionNewlineResetsColorToWhite(t *testing.T) {
	row1 := append([]ebustl.Cell{colorAttr(ebustl.ColorRed)}, glyphs("ALERT")...)
	row2 := glyphs("details")
	page := ebustl.SubtitlePage{Rows: []ebustl.DisplayRow{
		{Row: 1, Cells: row1},
		{Row: 2, Cells: row2},
	}}

	c := ebustl.BuildCaption(page)
	assert.Equal(t, "ALERT\ndetails", c.Text)
	assert.Nil(t, c.Style)
	if assert.Len(t, c.Segments, 2) {
		assert.Equal(t, ebustl.ColorRed, c.Segments[0].Style.Color)
		assert.Equal(t, ebustl.ColorWhite, c.Segments[1].Style.Color)
	}
}

func TestBuildCaptionBoxingHidesOutsideText(t *testing.T) {
	cells := []ebustl.Cell{
		{Kind: ebustl.CellGlyph, Glyph: 'X'},
		{Kind: ebustl.CellSpacing, Attribute: ebustl.Attribute{Kind: ebustl.AttrStartBox}},
	}
	cells = append(cells, glyphs("SHOWN")...)
	cells = append(cells, ebustl.Cell{Kind: ebustl.CellSpacing, Attribute: ebustl.Attribute{Kind: ebustl.AttrEndBox}})
	cells = append(cells, glyphs("HIDDEN")...)
	page := ebustl.SubtitlePage{Rows: []ebustl.DisplayRow{{Row: 1, Cells: cells}}}

	c := ebustl.BuildCaption(page)
	assert.Equal(t, "SHOWN", c.Text)
}
