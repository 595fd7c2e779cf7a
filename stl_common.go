package ebustl

import (
	"bytes"
	"fmt"
)

// EBU Tech 3264-E byte layouts: the 1024-byte GSI metadata block and
// the fixed-width fields of a 128-byte TTI block, adapted from the
// teacher's stl.go GSI/TTI handling and extended with the GSI fields
// it left at their zero value (publisher, editor, contact details).

const (
	gsiBlockSize = 1024
	ttiBlockSize = 128
	ttiTextSize  = 112
)

// GSI is the decoded General Subtitle Information block that precedes
// every TTI block in an .stl file.
type GSI struct {
	CodePageNumber         string // CPN, 3 bytes
	DiskFormatCode         string // DFC, 8 bytes, e.g. "STL25.01"
	DisplayStandardCode    byte   // DSC
	CharacterCodeTable     int    // CCT: 0 Latin, 1 Cyrillic, 2 Arabic, 3 Greek, 4 Hebrew
	LanguageCode           string // LC, 2 bytes
	OriginalProgramme      string // OPT
	OriginalEpisode        string // OET
	TranslatedProgramme    string // TPT
	TranslatedEpisode      string // TPD
	TranslatorName         string // TET
	TranslatorContact      string // TCD
	SubtitleListRef        string // SLR
	CreationDate           string // CD, 6 bytes YYMMDD
	RevisionDate           string // RD, 6 bytes YYMMDD
	RevisionNumber         string // RN
	TotalTTIBlocks         int    // TNB
	TotalSubtitles         int    // TNS
	TotalSubtitleGroups    int    // TNG
	MaxCharactersPerRow    int    // MNC
	MaxRows                int    // MNR
	TimeCodeStatus         byte   // TCS
	StartOfTransmission    [4]byte // binary hh/mm/ss/ff
	StartOfProgramme       [4]byte // TCP, binary hh/mm/ss/ff
	TotalDisks             int    // TND
	DiskSequenceNumber     int    // DSN
	CountryOfOrigin        string // CO
	Publisher              string // PUB
	Editor                 string // EN
	EditorContactDetails   string // ECD
	FrameRate              FrameRate
}

// defaultGSI is used by WriteSTL when the caller supplies no WithGSI
// option: a PAL (25fps), Latin, single-disk, single-group file.
func defaultGSI() GSI {
	return GSI{
		CodePageNumber:      "437",
		DiskFormatCode:      "STL25.01",
		CharacterCodeTable:  0,
		LanguageCode:        "09",
		SubtitleListRef:     "",
		TotalDisks:          1,
		DiskSequenceNumber:  1,
		MaxCharactersPerRow: 40,
		MaxRows:             23,
		FrameRate:           FrameRate25,
	}
}

func padRight(s string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
	return b
}

func trimmed(b []byte) string {
	return string(bytes.TrimRight(b, " \x00"))
}

func putInt(buf []byte, n, width int) {
	s := fmt.Sprintf("%0*d", width, n)
	copy(buf, s[:width])
}

func atoiOr(s string, def int) int {
	n := 0
	any := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		any = true
	}
	if !any {
		return def
	}
	return n
}

// encode serializes g into a 1024-byte GSI block.
func (g GSI) encode() []byte {
	buf := make([]byte, gsiBlockSize)
	copy(buf[0:3], padRight(g.CodePageNumber, 3))
	copy(buf[3:11], padRight(g.DiskFormatCode, 8))
	buf[11] = g.DisplayStandardCode
	putInt(buf[12:14], g.CharacterCodeTable, 2)
	copy(buf[14:16], padRight(g.LanguageCode, 2))
	copy(buf[16:48], padRight(g.OriginalProgramme, 32))
	copy(buf[48:80], padRight(g.OriginalEpisode, 32))
	copy(buf[80:112], padRight(g.TranslatedProgramme, 32))
	copy(buf[112:144], padRight(g.TranslatedEpisode, 32))
	copy(buf[144:176], padRight(g.TranslatorName, 32))
	copy(buf[176:208], padRight(g.TranslatorContact, 32))
	copy(buf[208:224], padRight(g.SubtitleListRef, 16))
	copy(buf[224:230], padRight(g.CreationDate, 6))
	copy(buf[230:236], padRight(g.RevisionDate, 6))
	copy(buf[236:238], padRight(g.RevisionNumber, 2))
	putInt(buf[238:243], g.TotalTTIBlocks, 5)
	putInt(buf[243:248], g.TotalSubtitles, 5)
	putInt(buf[248:251], g.TotalSubtitleGroups, 3)
	putInt(buf[251:253], g.MaxCharactersPerRow, 2)
	putInt(buf[253:255], g.MaxRows, 2)
	buf[255] = g.TimeCodeStatus
	copy(buf[256:264], g.StartOfTransmission[:])
	copy(buf[264:272], g.StartOfProgramme[:])
	putInt(buf[272:273], g.TotalDisks, 1)
	putInt(buf[273:274], g.DiskSequenceNumber, 1)
	copy(buf[274:277], padRight(g.CountryOfOrigin, 3))
	copy(buf[277:309], padRight(g.Publisher, 32))
	copy(buf[309:341], padRight(g.Editor, 32))
	copy(buf[341:373], padRight(g.EditorContactDetails, 32))
	for i := 373; i < gsiBlockSize; i++ {
		buf[i] = ' '
	}
	return buf
}

// decodeGSI parses a 1024-byte GSI block.
func decodeGSI(buf []byte) (GSI, error) {
	if len(buf) < gsiBlockSize {
		return GSI{}, fmt.Errorf("ebustl: GSI block %d bytes: %w", len(buf), ErrInputTooShort)
	}
	g := GSI{
		CodePageNumber:       trimmed(buf[0:3]),
		DiskFormatCode:       trimmed(buf[3:11]),
		DisplayStandardCode:  buf[11],
		CharacterCodeTable:   atoiOr(trimmed(buf[12:14]), 0),
		LanguageCode:         trimmed(buf[14:16]),
		OriginalProgramme:    trimmed(buf[16:48]),
		OriginalEpisode:      trimmed(buf[48:80]),
		TranslatedProgramme:  trimmed(buf[80:112]),
		TranslatedEpisode:    trimmed(buf[112:144]),
		TranslatorName:       trimmed(buf[144:176]),
		TranslatorContact:    trimmed(buf[176:208]),
		SubtitleListRef:      trimmed(buf[208:224]),
		CreationDate:         trimmed(buf[224:230]),
		RevisionDate:         trimmed(buf[230:236]),
		RevisionNumber:       trimmed(buf[236:238]),
		TotalTTIBlocks:       atoiOr(trimmed(buf[238:243]), 0),
		TotalSubtitles:       atoiOr(trimmed(buf[243:248]), 0),
		TotalSubtitleGroups:  atoiOr(trimmed(buf[248:251]), 0),
		MaxCharactersPerRow:  atoiOr(trimmed(buf[251:253]), 40),
		MaxRows:              atoiOr(trimmed(buf[253:255]), 23),
		TimeCodeStatus:       buf[255],
		TotalDisks:           atoiOr(trimmed(buf[272:273]), 1),
		DiskSequenceNumber:   atoiOr(trimmed(buf[273:274]), 1),
		CountryOfOrigin:      trimmed(buf[274:277]),
		Publisher:            trimmed(buf[277:309]),
		Editor:               trimmed(buf[309:341]),
		EditorContactDetails: trimmed(buf[341:373]),
	}
	copy(g.StartOfTransmission[:], buf[256:264])
	copy(g.StartOfProgramme[:], buf[264:272])

	dropFrame := false
	nominal := 25
	switch {
	case bytes.Contains([]byte(g.DiskFormatCode), []byte("24")):
		nominal = 24
	case bytes.Contains([]byte(g.DiskFormatCode), []byte("30")):
		nominal = 30
	case bytes.Contains([]byte(g.DiskFormatCode), []byte("29")):
		nominal = 30
		dropFrame = true
	case bytes.Contains([]byte(g.DiskFormatCode), []byte("59")):
		nominal = 60
		dropFrame = true
	}
	fr, err := DetectFrameRate(nominal, dropFrame)
	if err != nil {
		fr = FrameRate25
	}
	g.FrameRate = fr
	return g, nil
}

// parseDurationSTLBytes reads the 4 binary bytes a TTI's TCI/TCO field
// carries (hours, minutes, seconds, frames) into an SMPTETimecode.
func parseDurationSTLBytes(b [4]byte, fr FrameRate) SMPTETimecode {
	return SMPTETimecode{Hours: int(b[0]), Minutes: int(b[1]), Seconds: int(b[2]), Frames: int(b[3]), DropFrame: fr.DropFrame}
}

// formatDurationSTLBytes is the inverse of parseDurationSTLBytes.
func formatDurationSTLBytes(t SMPTETimecode) [4]byte {
	return [4]byte{byte(t.Hours), byte(t.Minutes), byte(t.Seconds), byte(t.Frames)}
}

// ttiHeader is the fixed part of a TTI block preceding its 112-byte
// text field.
type ttiHeader struct {
	SGN byte    // Subtitle Group Number
	SN  uint16  // Subtitle Number
	EBN byte    // Extension Block Number: 0xFF terminal, 1..254 more blocks follow
	CS  byte    // Cumulative Status: 0 not part of a cumulative set
	TCI [4]byte // Time Code In
	TCO [4]byte // Time Code Out
	VP  byte    // Vertical Position
	JC  byte    // Justification Code: 1 left, 2 centre, 3 right
	CF  byte    // Comment Flag
}

const (
	ebnTerminal   = 0xff
	justifyCentre = 2
)

func (h ttiHeader) encode() []byte {
	buf := make([]byte, 16)
	buf[0] = h.SGN
	buf[1] = byte(h.SN)
	buf[2] = byte(h.SN >> 8)
	buf[3] = h.EBN
	buf[4] = h.CS
	copy(buf[5:9], h.TCI[:])
	copy(buf[9:13], h.TCO[:])
	buf[13] = h.VP
	buf[14] = h.JC
	buf[15] = h.CF
	return buf
}

func decodeTTIHeader(buf []byte) ttiHeader {
	h := ttiHeader{
		SGN: buf[0],
		SN:  uint16(buf[1]) | uint16(buf[2])<<8,
		EBN: buf[3],
		CS:  buf[4],
		VP:  buf[13],
		JC:  buf[14],
		CF:  buf[15],
	}
	copy(h.TCI[:], buf[5:9])
	copy(h.TCO[:], buf[9:13])
	return h
}
