package x3270protocol

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// UTF8Name is the encoding name an emulator reports when it is already in
// UTF-8 mode.
const UTF8Name = "UTF-8"

// codePages maps Windows code page numbers, as reported in "CP<n>" names,
// to encodings.
var codePages = map[int]encoding.Encoding{
	37:    charmap.CodePage037,
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	855:   charmap.CodePage855,
	858:   charmap.CodePage858,
	860:   charmap.CodePage860,
	862:   charmap.CodePage862,
	863:   charmap.CodePage863,
	865:   charmap.CodePage865,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	932:   japanese.ShiftJIS,
	936:   simplifiedchinese.GBK,
	949:   korean.EUCKR,
	950:   traditionalchinese.Big5,
	1047:  charmap.CodePage1047,
	1140:  charmap.CodePage1140,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
	10007: charmap.MacintoshCyrillic,
	20866: charmap.KOI8R,
	20932: japanese.EUCJP,
	21866: charmap.KOI8U,
	28591: charmap.ISO8859_1,
	28592: charmap.ISO8859_2,
	28593: charmap.ISO8859_3,
	28594: charmap.ISO8859_4,
	28595: charmap.ISO8859_5,
	28596: charmap.ISO8859_6,
	28597: charmap.ISO8859_7,
	28598: charmap.ISO8859_8,
	28599: charmap.ISO8859_9,
	28603: charmap.ISO8859_13,
	28605: charmap.ISO8859_15,
	50220: japanese.ISO2022JP,
	54936: simplifiedchinese.GB18030,
	65001: unicode.UTF8,
}

// LookupEncoding resolves an encoding name as reported by
// Query(LocalEncoding). "CP<n>" names select Windows code page n; other
// names are looked up as registered IANA names, then as MIME names.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newArgumentError("encoding", name, "is empty")
	}
	if strings.EqualFold(name, UTF8Name) {
		return unicode.UTF8, nil
	}

	if n, ok := codePageNumber(name); ok {
		if enc, ok := codePages[n]; ok {
			return enc, nil
		}
		return nil, newArgumentError("encoding", name, "unsupported code page")
	}

	for _, index := range []*ianaindex.Index{ianaindex.IANA, ianaindex.MIME} {
		if enc, err := index.Encoding(name); err == nil && enc != nil {
			return enc, nil
		}
	}
	return nil, newArgumentError("encoding", name, "unknown encoding")
}

func codePageNumber(name string) (int, bool) {
	if len(name) < 3 || !strings.EqualFold(name[:2], "CP") {
		return 0, false
	}
	n, err := strconv.Atoi(name[2:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
