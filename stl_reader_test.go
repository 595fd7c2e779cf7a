package ebustl_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	ebustl "github.com/hauph/ebustl-utils"
)

func TestReadSTLTooShort(t *testing.T) {
	_, _, err := ebustl.ReadSTL(bytes.NewReader(make([]byte, 10)))
	assert.ErrorIs(t, err, ebustl.ErrInputTooShort)
}

func TestReadSTLReportsTrailingBytes(t *testing.T) {
	captions := []ebustl.Caption{{Text: "HI", StartUS: 0, EndUS: 1_000_000}}
	w := &bytes.Buffer{}
	assert.NoError(t, ebustl.WriteSTL(w, captions))

	truncated := append(w.Bytes(), 0x01, 0x02, 0x03)

	got, diags, err := ebustl.ReadSTL(bytes.NewReader(truncated))
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NotEmpty(t, diags)
}

func TestReadSTLIgnoreProgrammeStart(t *testing.T) {
	captions := []ebustl.Caption{{Text: "HI", StartUS: 2_000_000, EndUS: 3_000_000}}
	w := &bytes.Buffer{}
	assert.NoError(t, ebustl.WriteSTL(w, captions))

	withDefault, _, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()))
	assert.NoError(t, err)
	withIgnore, _, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()), ebustl.WithIgnoreProgrammeStart())
	assert.NoError(t, err)

	// The default GSI's start-of-programme timecode is zero, so both
	// reads agree; this exercises the option's plumbing rather than an
	// actual offset.
	assert.Equal(t, withDefault[0].StartUS, withIgnore[0].StartUS)
}

// rawTTIBlock builds a single-block TTI record with an arbitrary
// SN/EBN/CS, padded with STL padding bytes, for exercising structural
// validation directly at the byte level.
func rawTTIBlock(sn uint16, ebn, cs byte) []byte {
	b := make([]byte, 128)
	b[1] = byte(sn)
	b[2] = byte(sn >> 8)
	b[3] = ebn
	b[4] = cs
	for i := 16; i < 128; i++ {
		b[i] = 0x8f
	}
	return b
}

func TestReadSTLStructuralWarningCountsInvalidEBNOrCS(t *testing.T) {
	captions := []ebustl.Caption{{Text: "HI", StartUS: 0, EndUS: 1_000_000}}
	w := &bytes.Buffer{}
	assert.NoError(t, ebustl.WriteSTL(w, captions))
	data := w.Bytes()

	// Three additional single-block subtitles, each claiming (via a
	// non-terminal EBN) that more blocks follow when none do, and each
	// carrying a non-zero CS: both are structural violations of the
	// EBN/CS continuation protocol.
	data = append(data, rawTTIBlock(100, 1, 1)...)
	data = append(data, rawTTIBlock(101, 1, 1)...)
	data = append(data, rawTTIBlock(102, 1, 1)...)

	got, diags, err := ebustl.ReadSTL(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Len(t, got, 4)
	if assert.Len(t, diags, 1) {
		assert.Equal(t, "3 of first 9 TTI block(s) have intermediate EBN with invalid CS", diags[0].Message)
	}
}

func TestReadSTLDerivesLayoutFromVPAndJC(t *testing.T) {
	layout := ebustl.Layout{VerticalPosition: 7, TextAlign: ebustl.AlignRight}
	captions := []ebustl.Caption{{Text: "HI", Layout: &layout, StartUS: 0, EndUS: 1_000_000}}
	w := &bytes.Buffer{}
	assert.NoError(t, ebustl.WriteSTL(w, captions))

	got, _, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()))
	assert.NoError(t, err)
	if assert.Len(t, got, 1) && assert.NotNil(t, got[0].Layout) {
		assert.Equal(t, 7, got[0].Layout.VerticalPosition)
		assert.Equal(t, ebustl.AlignRight, got[0].Layout.TextAlign)
	}
}

func TestReadSTLPopulatesStartAndEndTimecode(t *testing.T) {
	captions := []ebustl.Caption{{Text: "HI", StartUS: 1_000_000, EndUS: 3_000_000}}
	w := &bytes.Buffer{}
	assert.NoError(t, ebustl.WriteSTL(w, captions))

	got, _, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()))
	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "00:00:01:00", got[0].StartTimecode)
		assert.Equal(t, "00:00:03:00", got[0].EndTimecode)
	}
}

func TestReadSTLFrameRateOverride(t *testing.T) {
	captions := []ebustl.Caption{{Text: "HI", StartUS: 1_000_000, EndUS: 2_000_000}}
	w := &bytes.Buffer{}
	assert.NoError(t, ebustl.WriteSTL(w, captions))

	got, _, err := ebustl.ReadSTL(bytes.NewReader(w.Bytes()), ebustl.WithFrameRateOverride(ebustl.FrameRate2997))
	assert.NoError(t, err)
	assert.Len(t, got, 1)
}
