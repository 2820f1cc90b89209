package neon

import "unicode"

// isChar checks the codepoint against the Char production of the active
// XML version. XML 1.1 widens the low range to [#x1-#xD7FF].
func isChar(c rune, xml11 bool) bool {
	if xml11 {
		return (c >= 0x1 && c <= 0xd7ff) ||
			(c >= 0xe000 && c <= 0xfffd) ||
			(c >= 0x10000 && c <= 0x10ffff)
	}
	return c == 0x9 || c == 0xa || c == 0xd ||
		(c >= 0x20 && c <= 0xd7ff) ||
		(c >= 0xe000 && c <= 0xfffd) ||
		(c >= 0x10000 && c <= 0x10ffff)
}

func isBlankCh(c rune) bool {
	return c == 0x20 || (0x9 <= c && c <= 0xa) || c == 0xd
}

var ncNameStartRanges = []*unicode.RangeTable{
	unicode.Ll, unicode.Lu, unicode.Lo, unicode.Lt,
}

var ncNameExtraRanges = []*unicode.RangeTable{
	unicode.Mc, unicode.Me, unicode.Mn, unicode.Lm, unicode.Nd,
}

func isNCNameStartChar(c rune) bool {
	return c == '_' || unicode.IsOneOf(ncNameStartRanges, c)
}

func isNCNameChar(c rune) bool {
	if isNCNameStartChar(c) {
		return true
	}
	switch c {
	case '.', '-', 0xb7:
		return true
	}
	return unicode.IsOneOf(ncNameExtraRanges, c)
}

// isPubidChar checks against the PubidChar production [13]. The single
// quote is excluded by the caller when the literal itself is single
// quoted.
func isPubidChar(c rune) bool {
	switch {
	case c == 0x20 || c == 0xd || c == 0xa:
		return true
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '\'', '(', ')', '+', ',', '.', '/', ':', '=', '?', ';', '!', '*', '#', '@', '$', '_', '%':
		return true
	}
	return false
}

func isEncNameStartChar(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isEncNameChar(c rune) bool {
	return isEncNameStartChar(c) ||
		('0' <= c && c <= '9') ||
		c == '.' || c == '_' || c == '-'
}
