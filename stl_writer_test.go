package ebustl_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	ebustl "github.com/hauph/ebustl-utils"
)

func TestWriteSTLNoSubtitles(t *testing.T) {
	w := &bytes.Buffer{}
	err := ebustl.WriteSTL(w, nil)
	assert.ErrorIs(t, err, ebustl.ErrNoSubtitlesToWrite)
}

func TestWriteSTLThenReadSTLRoundTrip(t *testing.T) {
	captions := []ebustl.Caption{
		{Text: "HELLO WORLD", StartUS: 1_000_000, EndUS: 3_000_000},
	}

	w := &bytes.Buffer{}
	err := ebustl.WriteSTL(w, captions)
	assert.NoError(t, err)
	assert.Equal(t, 1024+128, w.Len())

	got, diags, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()))
	assert.NoError(t, err)
	assert.Empty(t, diags)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "HELLO WORLD", got[0].Text)
		assert.Nil(t, got[0].Style)
		assert.Nil(t, got[0].Segments)
	}
}

func TestWriteSTLSplitsLongTextAcrossBlocks(t *testing.T) {
	long := bytes.Repeat([]byte("A"), 200)
	captions := []ebustl.Caption{{Text: string(long), StartUS: 0, EndUS: 1_000_000}}

	w := &bytes.Buffer{}
	err := ebustl.WriteSTL(w, captions)
	assert.NoError(t, err)
	assert.Equal(t, 1024+128*2, w.Len())

	got, diags, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()))
	assert.NoError(t, err)
	assert.Empty(t, diags)
	if assert.Len(t, got, 1) {
		assert.Equal(t, string(long), got[0].Text)
	}
}

func TestWriteSTLPreservesUnifiedStyle(t *testing.T) {
	style := ebustl.StyleAttributes{Color: ebustl.ColorYellow}
	captions := []ebustl.Caption{{Text: "CAUTION", Style: &style, StartUS: 0, EndUS: 500_000}}

	w := &bytes.Buffer{}
	err := ebustl.WriteSTL(w, captions)
	assert.NoError(t, err)

	got, _, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()))
	assert.NoError(t, err)
	if assert.Len(t, got, 1) && assert.NotNil(t, got[0].Style) {
		assert.Equal(t, ebustl.ColorYellow, got[0].Style.Color)
		assert.Equal(t, "CAUTION", got[0].Text)
	}
}
