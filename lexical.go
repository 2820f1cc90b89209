package neon

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/neon/node"
)

// Lexical primitives. Everything here operates on the parser's reader and
// is shared between the markup tokenizer, the pull parser proper, and the
// DTD subset parser.

// skipBlanks consumes zero or more whitespace characters and reports
// whether any were consumed.
func (p *PullParser) skipBlanks() bool {
	seen := false
	for {
		c, ok := p.in.peek()
		if !ok || !isBlankCh(c) {
			return seen
		}
		if _, err := p.in.next(); err != nil {
			return seen
		}
		seen = true
	}
}

// requireBlanks consumes whitespace and fails against the given
// production when none was present.
func (p *PullParser) requireBlanks(prod string) error {
	if !p.skipBlanks() {
		return syntaxError(prod, ErrSpaceRequired)
	}
	return nil
}

// expect consumes the given character or fails against the given
// production.
func (p *PullParser) expect(want rune, prod string) error {
	c, ok := p.in.peek()
	if !ok {
		return syntaxError(prod, ErrPrematureEOF)
	}
	if c != want {
		return syntaxError(prod, fmt.Errorf("expected %q, got %q", want, c))
	}
	_, err := p.in.next()
	return err
}

func (p *PullParser) parseNCName() (string, error) {
	c, ok := p.in.peek()
	if !ok {
		return "", syntaxError("4", ErrPrematureEOF)
	}
	if !isNCNameStartChar(c) {
		return "", syntaxError("4", ErrInvalidName)
	}

	var sb strings.Builder
	for {
		c, ok := p.in.peek()
		if !ok || !isNCNameChar(c) {
			break
		}
		if _, err := p.in.next(); err != nil {
			return "", err
		}
		sb.WriteRune(c)
	}
	return sb.String(), nil
}

// parseQName reads NCName (':' NCName)?. The result carries no URI; the
// namespace resolver fills that in later.
func (p *PullParser) parseQName() (node.Name, error) {
	local, err := p.parseNCName()
	if err != nil {
		return node.Name{}, err
	}

	c, ok := p.in.peek()
	if !ok || c != ':' {
		return node.Name{Local: local}, nil
	}
	if _, err := p.in.next(); err != nil {
		return node.Name{}, err
	}

	rest, err := p.parseNCName()
	if err != nil {
		return node.Name{}, syntaxError("7", ErrInvalidName)
	}
	return node.Name{Prefix: local, Local: rest}, nil
}

// parseNmtoken reads one or more name characters.
func (p *PullParser) parseNmtoken() (string, error) {
	var sb strings.Builder
	for {
		c, ok := p.in.peek()
		if !ok || (!isNCNameChar(c) && c != ':') {
			break
		}
		if _, err := p.in.next(); err != nil {
			return "", err
		}
		sb.WriteRune(c)
	}
	if sb.Len() == 0 {
		return "", syntaxError("7", ErrInvalidName)
	}
	return sb.String(), nil
}

// parseQuoted reads a literal delimited by matching single or double
// quotes, validating each character with valid.
func (p *PullParser) parseQuoted(prod string, valid func(quote, c rune) bool) (string, error) {
	quote, ok := p.in.peek()
	if !ok {
		return "", syntaxError(prod, ErrPrematureEOF)
	}
	if quote != '"' && quote != '\'' {
		return "", syntaxError(prod, ErrValueRequired)
	}
	if _, err := p.in.next(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		c, err := p.in.next()
		if err != nil {
			return "", syntaxError(prod, ErrPrematureEOF)
		}
		if c == quote {
			return sb.String(), nil
		}
		if !valid(quote, c) {
			return "", syntaxError(prod, fmt.Errorf("character %q not allowed in literal", c))
		}
		sb.WriteRune(c)
	}
}

// parseSystemLiteral reads a SystemLiteral [11].
func (p *PullParser) parseSystemLiteral() (string, error) {
	return p.parseQuoted("11", func(_, _ rune) bool { return true })
}

// parsePubidLiteral reads a PubidLiteral [12]. A single quote is only
// allowed inside a double quoted literal.
func (p *PullParser) parsePubidLiteral() (string, error) {
	return p.parseQuoted("12", func(quote, c rune) bool {
		if c == '\'' && quote == '\'' {
			return false
		}
		return isPubidChar(c)
	})
}

// parseCharRefBody reads a CharRef [66] after the leading "&#" has been
// consumed. The denoted codepoint must be a valid character for the
// active XML version.
func (p *PullParser) parseCharRefBody() (rune, error) {
	var val int32
	hex := false
	if c, ok := p.in.peek(); ok && c == 'x' {
		if _, err := p.in.next(); err != nil {
			return 0, err
		}
		hex = true
	}

	digits := 0
	for {
		c, err := p.in.next()
		if err != nil {
			return 0, syntaxError("66", ErrPrematureEOF)
		}
		if c == ';' {
			break
		}
		if hex {
			val, err = accumulateHexCharRef(val, c)
		} else {
			val, err = accumulateDecimalCharRef(val, c)
		}
		if err != nil {
			return 0, syntaxError("66", err)
		}
		digits++
		if val > 0x10ffff {
			return 0, syntaxError("66", fmt.Errorf("character reference out of range"))
		}
	}
	if digits == 0 {
		return 0, syntaxError("66", ErrValueRequired)
	}
	if !isChar(rune(val), p.xml11) {
		return 0, syntaxError("66", fmt.Errorf("character reference to invalid character U+%04X", val))
	}
	return rune(val), nil
}

func accumulateDecimalCharRef(val int32, c rune) (int32, error) {
	if c >= '0' && c <= '9' {
		return val*10 + (c - '0'), nil
	}
	return 0, fmt.Errorf("invalid decimal CharRef digit %q", c)
}

func accumulateHexCharRef(val int32, c rune) (int32, error) {
	switch {
	case c >= '0' && c <= '9':
		return val*16 + (c - '0'), nil
	case c >= 'a' && c <= 'f':
		return val*16 + (c - 'a') + 10, nil
	case c >= 'A' && c <= 'F':
		return val*16 + (c - 'A') + 10, nil
	}
	return 0, fmt.Errorf("invalid hex CharRef digit %q", c)
}

// parseEntityRefName reads the name and terminating ';' of an entity
// reference [68], after the '&' has been consumed.
func (p *PullParser) parseEntityRefName() (string, error) {
	name, err := p.parseNCName()
	if err != nil {
		return "", syntaxError("68", ErrInvalidName)
	}
	if err := p.expect(';', "68"); err != nil {
		return "", syntaxError("68", ErrSemicolonRequired)
	}
	return name, nil
}
