package neon

import (
	"fmt"

	"github.com/lestrrat-go/neon/node"
)

// The markup tokenizer classifies the lexeme following a '<' that the
// caller has already consumed.

type tokenType int

const (
	startToken tokenType = iota + 1
	endToken
	piToken
	commentToken
	sectionToken
	declToken
)

type token struct {
	typ  tokenType
	name node.Name // start/end tag name
	text string    // comment body, declaration keyword, PI target, or section keyword
	pe   bool      // section keyword came from a parameter entity reference
}

// nextMarkupToken reads the markup construct opened by '<'. For start
// tags it stops after the name; for end tags it consumes through the
// closing '>'; for comments it consumes the whole comment; for PIs it
// stops after the target; for sections it consumes through the opening
// '['; for declarations it stops after the keyword.
func (p *PullParser) nextMarkupToken() (token, error) {
	c, ok := p.in.peek()
	if !ok {
		return token{}, syntaxError("1", ErrPrematureEOF)
	}

	switch c {
	case '/':
		if _, err := p.in.next(); err != nil {
			return token{}, err
		}
		return p.readEndToken()
	case '?':
		if _, err := p.in.next(); err != nil {
			return token{}, err
		}
		target, err := p.parseNCName()
		if err != nil {
			return token{}, syntaxError("16", ErrInvalidName)
		}
		return token{typ: piToken, text: target}, nil
	case '!':
		if _, err := p.in.next(); err != nil {
			return token{}, err
		}
		return p.readBangToken()
	}

	name, err := p.parseQName()
	if err != nil {
		return token{}, err
	}
	return token{typ: startToken, name: name}, nil
}

// readEndToken reads 'name S? >' of an end tag [42].
func (p *PullParser) readEndToken() (token, error) {
	name, err := p.parseQName()
	if err != nil {
		return token{}, syntaxError("42", ErrInvalidName)
	}
	p.skipBlanks()
	if err := p.expect('>', "42"); err != nil {
		return token{}, err
	}
	return token{typ: endToken, name: name}, nil
}

// readBangToken classifies what follows '<!': a comment, a section
// opener, or a markup declaration keyword.
func (p *PullParser) readBangToken() (token, error) {
	c, ok := p.in.peek()
	if !ok {
		return token{}, syntaxError("1", ErrPrematureEOF)
	}

	switch {
	case c == '-':
		if _, err := p.in.next(); err != nil {
			return token{}, err
		}
		if err := p.expect('-', "15"); err != nil {
			return token{}, err
		}
		body, err := p.readCommentBody()
		if err != nil {
			return token{}, err
		}
		return token{typ: commentToken, text: body}, nil
	case c == '[':
		if _, err := p.in.next(); err != nil {
			return token{}, err
		}
		return p.readSectionToken()
	case isNCNameStartChar(c):
		kw, err := p.parseNCName()
		if err != nil {
			return token{}, err
		}
		return token{typ: declToken, text: kw}, nil
	}
	return token{}, syntaxError("22", fmt.Errorf("unexpected character %q after \"<!\"", c))
}

// readSectionToken reads the keyword of '<![NAME[' or '<![%pe;['.
func (p *PullParser) readSectionToken() (token, error) {
	c, ok := p.in.peek()
	if !ok {
		return token{}, syntaxError("61", ErrPrematureEOF)
	}

	tok := token{typ: sectionToken}
	if c == '%' {
		if _, err := p.in.next(); err != nil {
			return token{}, err
		}
		name, err := p.parseNCName()
		if err != nil {
			return token{}, syntaxError("69", ErrInvalidName)
		}
		if err := p.expect(';', "69"); err != nil {
			return token{}, syntaxError("69", ErrSemicolonRequired)
		}
		tok.pe = true
		tok.text = name
		p.skipBlanks()
	} else {
		kw, err := p.parseNCName()
		if err != nil {
			return token{}, syntaxError("61", ErrInvalidName)
		}
		tok.text = kw
	}

	if err := p.expect('[', "61"); err != nil {
		return token{}, err
	}
	return tok, nil
}

// readCommentBody reads the comment content through the closing '-->'.
// The string '--' must not appear inside a comment [15].
func (p *PullParser) readCommentBody() (string, error) {
	var sb []rune
	for {
		c, err := p.in.next()
		if err != nil {
			return "", syntaxError("15", ErrCommentNotFinished)
		}
		switch c {
		case '-':
			n, ok := p.in.peek()
			if !ok {
				return "", syntaxError("15", ErrCommentNotFinished)
			}
			if n != '-' {
				sb = append(sb, '-')
				continue
			}
			if _, err := p.in.next(); err != nil {
				return "", err
			}
			if err := p.expect('>', "15"); err != nil {
				return "", syntaxError("15", ErrHyphenInComment)
			}
			return string(sb), nil
		case '\r':
			if n, ok := p.in.peek(); ok && n == '\n' {
				if _, err := p.in.next(); err != nil {
					return "", err
				}
			}
			sb = append(sb, '\n')
		default:
			sb = append(sb, c)
		}
	}
}

// readPIBody reads the data of a processing instruction through the
// closing '?>'. The target has already been read; data is separated from
// it by whitespace [16].
func (p *PullParser) readPIBody() (string, error) {
	c, ok := p.in.peek()
	if !ok {
		return "", syntaxError("16", ErrPrematureEOF)
	}
	if c == '?' {
		if _, err := p.in.next(); err != nil {
			return "", err
		}
		if err := p.expect('>', "16"); err != nil {
			return "", err
		}
		return "", nil
	}
	if err := p.requireBlanks("16"); err != nil {
		return "", err
	}

	var sb []rune
	for {
		c, err := p.in.next()
		if err != nil {
			return "", syntaxError("16", ErrPrematureEOF)
		}
		switch c {
		case '?':
			n, ok := p.in.peek()
			if ok && n == '>' {
				if _, err := p.in.next(); err != nil {
					return "", err
				}
				return string(sb), nil
			}
			sb = append(sb, '?')
		case '\r':
			if n, ok := p.in.peek(); ok && n == '\n' {
				if _, err := p.in.next(); err != nil {
					return "", err
				}
			}
			sb = append(sb, '\n')
		default:
			sb = append(sb, c)
		}
	}
}
