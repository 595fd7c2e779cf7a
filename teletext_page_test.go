package ebustl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ebustl "github.com/hauph/ebustl-utils"
)

func headerPacket(t *testing.T, page int, erase, subtitle bool) []byte {
	t.Helper()
	buf := make([]byte, 42)
	lo, hi := testMRAG(1, 0)
	buf[0], buf[1] = lo, hi

	units := byte(page % 10)
	tens := byte((page / 10) % 10)
	buf[2] = testHammingEncode(units)
	buf[3] = testHammingEncode(tens)

	s1 := byte(0)
	if erase {
		s1 |= 0x8
	}
	s3 := byte(0)
	if subtitle {
		s3 |= 0x8
	}
	buf[4] = testHammingEncode(s1)
	buf[5] = testHammingEncode(0)
	buf[6] = testHammingEncode(s3)
	buf[7] = testHammingEncode(0)
	buf[8] = testHammingEncode(0)
	buf[9] = testHammingEncode(0)
	for i := 10; i < 42; i++ {
		buf[i] = testOddParity(0x20)
	}
	return buf
}

func displayPacket(t *testing.T, row int, text string) []byte {
	t.Helper()
	buf := make([]byte, 42)
	lo, hi := testMRAG(1, row)
	buf[0], buf[1] = lo, hi
	for i := 0; i < 40; i++ {
		b := byte(0x20)
		if i < len(text) {
			b = text[i]
		}
		buf[2+i] = testOddParity(b)
	}
	return buf
}

func TestPageAggregatorProducesOnePageOnNextHeader(t *testing.T) {
	agg := ebustl.NewPageAggregator()

	page, diags, err := agg.Feed(ebustl.TimedPacket{PTS: 0, Raw: headerPacket(t, 1, true, true)})
	assert.NoError(t, err)
	assert.Empty(t, diags)
	assert.Nil(t, page)

	page, _, err = agg.Feed(ebustl.TimedPacket{PTS: 100, Raw: displayPacket(t, 1, "HELLO")})
	assert.NoError(t, err)
	assert.Nil(t, page)

	page, _, err = agg.Feed(ebustl.TimedPacket{PTS: 5_000_000, Raw: headerPacket(t, 1, true, true)})
	assert.NoError(t, err)
	if assert.NotNil(t, page) {
		assert.Equal(t, int64(0), page.OnsetUS)
		assert.Equal(t, int64(5_000_000), page.ClearUS)
		assert.Len(t, page.Rows, 1)
	}
}

func TestPageAggregatorIgnoresOtherPages(t *testing.T) {
	agg := ebustl.NewPageAggregator(ebustl.WithTeletextPage(1))

	page, _, err := agg.Feed(ebustl.TimedPacket{Raw: headerPacket(t, 2, false, true)})
	assert.NoError(t, err)
	assert.Nil(t, page)

	page, _, err = agg.Feed(ebustl.TimedPacket{Raw: displayPacket(t, 1, "IGNORED")})
	assert.NoError(t, err)
	assert.Nil(t, page)
}

func TestDecodePacketsFlushesFinalPage(t *testing.T) {
	packets := []ebustl.TimedPacket{
		{PTS: 0, Raw: headerPacket(t, 1, true, true)},
		{PTS: 0, Raw: displayPacket(t, 1, "HI")},
		{PTS: 3_000_000, Raw: headerPacket(t, 1, true, true)},
		{PTS: 3_000_000, Raw: displayPacket(t, 1, "BYE")},
	}
	pages, _, err := ebustl.DecodePackets(packets)
	assert.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, int64(3_000_000), pages[0].ClearUS)
	assert.Equal(t, int64(3_000_000), pages[1].OnsetUS)
}
