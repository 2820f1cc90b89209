// Package encoding resolves the encoding names that appear in XML
// declarations to golang.org/x/text decoders. It exists because the
// x/text package names ("unicode", for one) clash with the stdlib, and
// because XML encoding names need alias folding before lookup.
package encoding

import (
	"fmt"
	"strings"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var registry = make(map[string]enc.Encoding)

func register(e enc.Encoding, names ...string) {
	for _, name := range names {
		registry[name] = e
	}
}

func init() {
	register(unicode.UTF8, "utf-8", "utf8")
	register(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), "utf-16", "utf16")
	register(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), "utf-16le", "utf16le")
	register(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), "utf-16be", "utf16be")
	register(japanese.EUCJP, "euc-jp")
	register(japanese.ShiftJIS, "shift_jis", "shift-jis", "shiftjis", "cp932")
	register(japanese.ISO2022JP, "iso-2022-jp", "jis")
	register(korean.EUCKR, "euc-kr")
	register(traditionalchinese.Big5, "big5")
	register(simplifiedchinese.GBK, "gbk", "gb2312")
	register(simplifiedchinese.HZGB2312, "hz-gb2312")
	register(charmap.ISO8859_1, "iso-8859-1", "latin1")
	register(charmap.ISO8859_2, "iso-8859-2")
	register(charmap.ISO8859_3, "iso-8859-3")
	register(charmap.ISO8859_4, "iso-8859-4")
	register(charmap.ISO8859_5, "iso-8859-5")
	register(charmap.ISO8859_6, "iso-8859-6")
	register(charmap.ISO8859_7, "iso-8859-7")
	register(charmap.ISO8859_8, "iso-8859-8")
	register(charmap.ISO8859_10, "iso-8859-10")
	register(charmap.ISO8859_13, "iso-8859-13")
	register(charmap.ISO8859_14, "iso-8859-14")
	register(charmap.ISO8859_15, "iso-8859-15")
	register(charmap.ISO8859_16, "iso-8859-16")
	register(charmap.KOI8R, "koi8-r", "koi8r")
	register(charmap.KOI8U, "koi8-u", "koi8u")
	register(charmap.Macintosh, "macintosh")
	register(charmap.Windows1250, "windows-1250", "cp1250")
	register(charmap.Windows1251, "windows-1251", "cp1251")
	register(charmap.Windows1252, "windows-1252", "cp1252")
	register(charmap.Windows1253, "windows-1253", "cp1253")
	register(charmap.Windows1254, "windows-1254", "cp1254")
	register(charmap.Windows1255, "windows-1255", "cp1255")
	register(charmap.Windows1256, "windows-1256", "cp1256")
	register(charmap.Windows1257, "windows-1257", "cp1257")
	register(charmap.Windows1258, "windows-1258", "cp1258")
	register(charmap.Windows874, "windows-874", "cp874")
	register(charmap.CodePage437, "cp437")
	register(charmap.CodePage866, "cp866")
}

// Load returns the encoding registered under name, or nil when the name
// is not recognized. Lookup is case insensitive.
func Load(name string) enc.Encoding {
	return registry[strings.ToLower(name)]
}

// Recognized reports whether Load would succeed for name.
func Recognized(name string) bool {
	return Load(name) != nil
}

// Decode converts data from the named encoding to UTF-8.
func Decode(name string, data []byte) ([]byte, error) {
	e := Load(name)
	if e == nil {
		return nil, fmt.Errorf("encoding %q not supported", name)
	}
	return e.NewDecoder().Bytes(data)
}
