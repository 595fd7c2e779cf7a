package ebustl

import "golang.org/x/text/unicode/norm"

// Character tables: five 7-bit-to-Unicode maps (Latin G0 with national
// option overrides, Cyrillic, Arabic, Greek, Hebrew) for the teletext
// path, plus the EBU-STL Latin code page used on the read path.

// NationalOption selects one of the thirteen Latin G0 national option
// subsets. Only the first eight are reachable through the teletext page
// header's 3-bit selector (ETSI EN 300 706 Table 32), since three
// header bits cannot address more than eight tables. The remaining five
// can be set only as a PageAggregator's starting table
// (WithDefaultNationalOption); every header replaces it with its own
// selection before any row of the page is decoded, so display rows are
// always decoded with one of the first eight.
type NationalOption int

const (
	NOEnglish NationalOption = iota
	NOFrench
	NOSwedishFinnishHungarian
	NOCzechSlovak
	NOGerman
	NOPortugueseSpanish
	NOItalian
	NOPolish
	NOTurkish
	NOSerbianCroatianSlovenian
	NORomanian
	NOEstonian
	NOLatvianLithuanian
)

// nationalOptionByHeaderCode maps the page header's 3-bit national
// option field to one of the eight header-addressable subsets.
var nationalOptionByHeaderCode = [8]NationalOption{
	NOEnglish, NOFrench, NOSwedishFinnishHungarian, NOCzechSlovak,
	NOGerman, NOPortugueseSpanish, NOItalian, NOPolish,
}

// overridePositions are the G0 cells that vary by national option;
// ETSI EN 300 706 Table 36.
var overridePositions = [13]byte{
	0x23, 0x24, 0x40, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F, 0x60, 0x7B, 0x7C, 0x7D, 0x7E,
}

// nationalOverrides[option][i] is the replacement rune for
// overridePositions[i]. English is the reference (ASCII-adjacent)
// table; other subsets substitute accented letters and punctuation in
// the same slots.
var nationalOverrides = map[NationalOption][13]rune{
	NOEnglish:                  {'£', '$', '@', '[', '\\', ']', '^', '#', '`', '½', '|', '}', '÷'},
	NOFrench:                   {'é', 'ï', 'à', 'ë', 'ê', 'ù', 'î', '#', 'è', 'â', 'ô', 'û', 'ç'},
	NOSwedishFinnishHungarian:  {'#', '¤', 'É', 'Ä', 'Ö', 'Å', 'Ü', '_', 'é', 'ä', 'ö', 'å', 'ü'},
	NOCzechSlovak:              {'#', 'ů', 'č', 'ť', 'ž', 'ý', 'í', 'ř', 'é', 'á', 'ě', 'ú', 'š'},
	NOGerman:                   {'#', '$', '§', 'Ä', 'Ö', 'Ü', '^', '_', '`', 'ä', 'ö', 'ü', 'ß'},
	NOPortugueseSpanish:        {'ç', '$', '¡', 'á', 'é', 'í', 'ó', 'ú', 'ü', 'ñ', 'è', 'à', 'ò'},
	NOItalian:                  {'£', '$', 'é', '°', 'ç', '»', '^', '#', 'ù', 'à', 'ò', 'è', 'ì'},
	NOPolish:                   {'#', 'ń', 'ą', 'Ś', 'Ł', 'Ż', 'Ź', 'Ć', 'ó', 'ę', 'ł', 'ż', 'ź'},
	NOTurkish:                  {'Ğ', '$', 'İ', 'Ş', 'Ö', 'Ç', 'Ü', 'ğ', 'ı', 'ş', 'ö', 'ç', 'ü'},
	NOSerbianCroatianSlovenian: {'#', 'Č', 'Ć', 'Ž', 'Đ', 'Š', 'č', 'ć', 'ž', 'đ', 'š', 'ž', 'đ'},
	NORomanian:                 {'#', '¤', 'Ţ', 'Â', 'Ş', 'Ă', 'Î', 'ţ', 'â', 'ş', 'ă', 'î', 'ş'},
	NOEstonian:                 {'#', 'õ', 'Š', 'Ä', 'Ö', 'Ž', 'Ü', 'õ', 'š', 'ä', 'ö', 'ž', 'ü'},
	NOLatvianLithuanian:        {'#', '$', 'Š', 'Ē', 'Ž', 'Č', 'Ū', 'š', 'ē', 'ž', 'č', 'ū', 'į'},
}

// baseLatinG0 is the common ASCII-identical backbone shared by every
// national option subset before overrides are applied, 0x20..0x7F.
//
// Built via a direct initializer rather than an init() func: otherwise
// package-level vars that read it (otherSTLCodePages, by way of
// fullRangeTable/latinG0Table) would run before init() populated it,
// since all package-level variables finish initializing before any
// init() func runs. A function-call initializer keeps baseLatinG0 in
// Go's variable-dependency graph, so it's built before anything that
// needs it.
var baseLatinG0 = buildBaseLatinG0()

func buildBaseLatinG0() [0x80 - 0x20]rune {
	var t [0x80 - 0x20]rune
	for i := range t {
		t[i] = rune(0x20 + i)
	}
	return t
}

// latinG0Table returns the full 0x20..0x7F map for a national option.
func latinG0Table(opt NationalOption) map[byte]rune {
	m := make(map[byte]rune, 0x60)
	for i, r := range baseLatinG0 {
		m[byte(0x20+i)] = r
	}
	if overrides, ok := nationalOverrides[opt]; ok {
		for i, pos := range overridePositions {
			m[pos] = overrides[i]
		}
	}
	return m
}

// nationalOptionFromHeaderCode resolves the page header's 3-bit field.
func nationalOptionFromHeaderCode(code int) NationalOption {
	return nationalOptionByHeaderCode[code&0x7]
}

// fullRangeTable builds a full 0x20..0x7F table by keeping ASCII
// punctuation/digits (0x20..0x40, 0x5B..0x60 excluding letters) and
// substituting the upper- and lower-case letter ranges with a target
// alphabet's code points, cycling if the alphabet is shorter than 26
// letters. This is the same shape used for every non-Latin teletext
// table (Cyrillic, Greek, Hebrew, Arabic): ETSI EN 300 706 keeps the
// digits/punctuation rows stable and replaces only the alphabetic cells.
func fullRangeTable(upper, lower []rune) map[byte]rune {
	m := latinG0Table(NOEnglish)
	for i := 0; i < 26; i++ {
		if len(upper) > 0 {
			m[byte(0x41+i)] = upper[i%len(upper)]
		}
		if len(lower) > 0 {
			m[byte(0x61+i)] = lower[i%len(lower)]
		}
	}
	return m
}

func runeRange(start rune, n int) []rune {
	rs := make([]rune, n)
	for i := 0; i < n; i++ {
		rs[i] = start + rune(i)
	}
	return rs
}

// cyrillicTable is the teletext Cyrillic G0 table.
func cyrillicTable() map[byte]rune {
	return fullRangeTable(runeRange(0x0410, 26), runeRange(0x0430, 26))
}

// greekTable is the teletext Greek G0 table (24 letters, cycled to fill
// the 26 Latin-letter slots as ETSI's own annex does for digraph cells).
func greekTable() map[byte]rune {
	upper := []rune("ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ")
	lower := []rune("αβγδεζηθικλμνξοπρστυφχψω")
	return fullRangeTable(upper, lower)
}

// hebrewTable is the teletext Hebrew G0 table. Hebrew has no case
// distinction; the same 22-letter alphabet fills both ranges.
func hebrewTable() map[byte]rune {
	letters := []rune("אבגדהוזחטיכלמנסעפצקרשת")
	return fullRangeTable(letters, letters)
}

// arabicTable is the teletext Arabic G0 table. Arabic has no case
// distinction either; presentation-form shaping is out of scope (§1
// non-goals: rendering is not this package's concern).
func arabicTable() map[byte]rune {
	letters := []rune("ابتثجحخدذرزسشصضطظعغفقكلمنهوي")
	return fullRangeTable(letters[:26], letters[:26])
}

// teletextG0Table returns the 0x20..0x7F G0 map for a given CCT
// (character code table, 0=Latin..4=Hebrew, matching GSI's CCT field)
// and, for Latin only, a NationalOption.
func teletextG0Table(cct int, opt NationalOption) map[byte]rune {
	switch cct {
	case 1:
		return cyrillicTable()
	case 2:
		return arabicTable()
	case 3:
		return greekTable()
	case 4:
		return hebrewTable()
	default:
		return latinG0Table(opt)
	}
}

// TeletextCharacterDecoder maps teletext G0 glyph bytes (0x20..0x7F,
// already odd-parity-stripped) to runes for the currently selected
// character set.
type TeletextCharacterDecoder struct {
	cct   int
	nopt  NationalOption
	table map[byte]rune
}

// NewTeletextCharacterDecoder creates a decoder defaulting to the
// Latin/English table; UpdateCharset switches it per page header.
func NewTeletextCharacterDecoder() *TeletextCharacterDecoder {
	d := &TeletextCharacterDecoder{cct: 0, nopt: NOEnglish}
	d.table = teletextG0Table(d.cct, d.nopt)
	return d
}

// UpdateCharset switches the active table; cct is the GSI-style
// character code table selector, nopt the Latin national option (only
// consulted when cct selects Latin).
func (d *TeletextCharacterDecoder) UpdateCharset(cct int, nopt NationalOption) {
	d.cct, d.nopt = cct, nopt
	d.table = teletextG0Table(cct, nopt)
}

// Decode maps a single G0 byte (0x20..0x7F) to its rune. Bytes outside
// that range, or without a table entry, decode to the replacement
// space rather than panicking — teletext captures are not guaranteed
// to only ever carry in-table bytes.
func (d *TeletextCharacterDecoder) Decode(b byte) rune {
	if r, ok := d.table[b]; ok {
		return r
	}
	return ' '
}

// stlLatinCodePage is the EBU-STL Latin code page (CCT 0), TF bytes
// 0x20..0xFF per Tech 3264-E Annex 1. 0xC1..0xCF carry a combining
// diacritic that composes with the following base letter instead of
// standing for a glyph of their own.
var stlLatinCodePage = buildSTLLatinCodePage()

func buildSTLLatinCodePage() map[byte]rune {
	m := make(map[byte]rune, 224)
	for b := 0x20; b < 0x7f; b++ {
		m[byte(b)] = rune(b)
	}
	m[0x7f] = ''
	extra := map[byte]rune{
		0xa0: 0x00a0, 0xa1: '¡', 0xa2: '¢', 0xa3: '£', 0xa4: '$', 0xa5: '¥', 0xa7: '§',
		0xa9: '‘', 0xaa: '“', 0xab: '«', 0xac: '←', 0xad: '↑', 0xae: '→', 0xaf: '↓',
		0xb0: '°', 0xb1: '±', 0xb2: '²', 0xb3: '³', 0xb4: '×', 0xb5: 'µ', 0xb6: '¶', 0xb7: '·',
		0xb8: '÷', 0xb9: '’', 0xba: '”', 0xbb: '»', 0xbc: '¼', 0xbd: '½', 0xbe: '¾', 0xbf: '¿',
		0xd0: '―', 0xd1: '¹', 0xd2: '®', 0xd3: '©', 0xd4: '™', 0xd5: '♪', 0xd6: '¬', 0xd7: '¦',
		0xdc: '⅛', 0xdd: '⅜', 0xde: '⅝', 0xdf: '⅞',
		0xe0: 'Ω', 0xe1: 'Æ', 0xe2: 'Đ', 0xe3: 'ª', 0xe4: 'Ħ', 0xe6: 'Ĳ', 0xe7: 'Ŀ', 0xe8: 'Ł',
		0xe9: 'Ø', 0xea: 'Œ', 0xeb: 'º', 0xec: 'Þ', 0xed: 'Ŧ', 0xee: 'Ŋ', 0xef: 'ŉ',
		0xf0: 'ĸ', 0xf1: 'æ', 0xf2: 'đ', 0xf3: 'ð', 0xf4: 'ħ', 0xf5: 'ı', 0xf6: 'ĳ', 0xf7: 'ŀ',
		0xf8: 'ł', 0xf9: 'ø', 0xfa: 'œ', 0xfb: 'ß', 0xfc: 'þ', 0xfd: 'ŧ', 0xfe: 'ŋ', 0xff: 0x00ad,
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// stlDiacritics maps 0xC1..0xCF accent cells to the combining mark they
// carry.
var stlDiacritics = map[byte]rune{
	0xc1: '̀', 0xc2: '́', 0xc3: '̂', 0xc4: '̃',
	0xc5: '̄', 0xc6: '̆', 0xc7: '̇', 0xc8: '̈',
	0xca: '̊', 0xcb: '̧', 0xcd: '̋', 0xce: '̨', 0xcf: '̌',
}

// otherSTLCodePages gives CCT 1..4 a full Latin+accented-letter table
// for the non-Latin STL code pages, built the same way as the teletext
// alphabetic tables above: ASCII punctuation kept, letters substituted.
var otherSTLCodePages = map[int]map[byte]rune{
	1: fullRangeTable(runeRange(0x0410, 26), runeRange(0x0430, 26)),
	2: fullRangeTable([]rune("ابتثجحخدذرزسشصضطظعغفقكلمنهوي")[:26], []rune("ابتثجحخدذرزسشصضطظعغفقكلمنهوي")[:26]),
	3: fullRangeTable([]rune("ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ"), []rune("αβγδεζηθικλμνξοπρστυφχψω")),
	4: fullRangeTable([]rune("אבגדהוזחטיכלמנסעפצקרשת"), []rune("אבגדהוזחטיכלמנסעפצקרשת")),
}

// STLCharacterDecoder decodes EBU-STL TF glyph bytes (>= 0x20) for a
// given CCT, composing accent cells with the following base letter the
// same way the STL Latin code page's annex describes.
type STLCharacterDecoder struct {
	cct    int
	table  map[byte]rune
	accent rune
}

// NewSTLCharacterDecoder builds a decoder for the GSI's CCT value
// (0=Latin, 1=Cyrillic, 2=Arabic, 3=Greek, 4=Hebrew).
func NewSTLCharacterDecoder(cct int) *STLCharacterDecoder {
	d := &STLCharacterDecoder{cct: cct}
	if cct == 0 {
		d.table = stlLatinCodePage
	} else if t, ok := otherSTLCodePages[cct]; ok {
		d.table = t
	} else {
		d.table = stlLatinCodePage
	}
	return d
}

// Decode consumes one glyph byte (>= 0x20); it returns ok=false while
// an accent cell is pending composition (the byte produced no visible
// rune by itself).
func (d *STLCharacterDecoder) Decode(b byte) (r rune, ok bool) {
	if d.cct == 0 {
		if accent, isAccent := stlDiacritics[b]; isAccent {
			d.accent = accent
			return 0, false
		}
	}
	base, known := d.table[b]
	if !known {
		return 0, false
	}
	if d.accent != 0 {
		composed := norm.NFC.String(string(base) + string(d.accent))
		d.accent = 0
		for _, cr := range composed {
			return cr, true
		}
		return base, true
	}
	return base, true
}
