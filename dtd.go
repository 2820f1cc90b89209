package neon

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/pdebug"

	"github.com/lestrrat-go/neon/node"
)

// The DTD subset parser reads markup declarations inside the internal
// subset of a DOCTYPE declaration. Declarations are recorded; content
// models are never used to validate element content.

// parseInternalSubset reads the subset after the opening '[' through the
// closing ']'.
func (p *PullParser) parseInternalSubset(dtd *node.DTD) error {
	if pdebug.Enabled {
		g := pdebug.Marker("PullParser.parseInternalSubset")
		defer g.End()
	}

	for {
		p.skipBlanks()
		c, ok := p.in.peek()
		if !ok {
			return syntaxError("28", ErrPrematureEOF)
		}

		switch c {
		case ']':
			_, err := p.in.next()
			return err
		case '%':
			if _, err := p.in.next(); err != nil {
				return err
			}
			if err := p.parsePEReference(dtd); err != nil {
				return err
			}
		case '<':
			if _, err := p.in.next(); err != nil {
				return err
			}
			if err := p.parseMarkupDecl(dtd); err != nil {
				return err
			}
		default:
			return syntaxError("28", fmt.Errorf("unexpected character %q in internal subset", c))
		}
	}
}

// parsePEReference reads '%name;' [69]. The reference is only checked
// for syntax and skipped: it is neither recorded nor expanded into the
// declaration stream.
func (p *PullParser) parsePEReference(dtd *node.DTD) error {
	name, err := p.parseNCName()
	if err != nil {
		return syntaxError("69", ErrInvalidName)
	}
	if err := p.expect(';', "69"); err != nil {
		return syntaxError("69", ErrSemicolonRequired)
	}
	if pdebug.Enabled {
		pdebug.Printf("parameter entity reference %%%s;", name)
	}
	return nil
}

// parseMarkupDecl handles one construct after '<' inside the subset.
func (p *PullParser) parseMarkupDecl(dtd *node.DTD) error {
	tok, err := p.nextMarkupToken()
	if err != nil {
		return err
	}
	switch tok.typ {
	case declToken:
		switch tok.text {
		case "ELEMENT":
			return p.parseElementDecl(dtd)
		case "ATTLIST":
			return p.parseAttlistDecl(dtd)
		case "ENTITY":
			return p.parseEntityDecl(dtd)
		case "NOTATION":
			return p.parseNotationDecl(dtd)
		}
		return syntaxError("29", fmt.Errorf("unknown markup declaration <!%s", tok.text))
	case piToken:
		if strings.EqualFold(tok.text, "xml") {
			return syntaxError("17", ErrReservedPITarget)
		}
		body, err := p.readPIBody()
		if err != nil {
			return err
		}
		dtd.Decls = append(dtd.Decls, &node.PIDecl{Target: tok.text, Data: body})
		return nil
	case commentToken:
		return nil
	case sectionToken:
		return p.parseConditionalSect(dtd, tok)
	}
	return syntaxError("29", fmt.Errorf("unexpected markup in internal subset"))
}

// parseConditionalSect handles '<![INCLUDE[', '<![IGNORE[' and the
// parameter-entity spelled form '<![%kw;['. INCLUDE sections are parsed
// in place; IGNORE sections are skipped through their matching ']]>',
// honoring nested section openers.
func (p *PullParser) parseConditionalSect(dtd *node.DTD, tok token) error {
	kw := tok.text
	if tok.pe {
		pe, ok := dtd.ParameterEntity(tok.text)
		if !ok {
			return wfcError(WFCEntityDeclared, fmt.Errorf("parameter entity %q not declared", tok.text))
		}
		kw = strings.TrimSpace(flattenEntityValue(pe.Value))
	}

	switch kw {
	case "INCLUDE":
		return p.parseIncludeSect(dtd)
	case "IGNORE":
		return p.skipIgnoreSect()
	}
	return syntaxError("61", fmt.Errorf("unknown conditional section keyword %q", kw))
}

func (p *PullParser) parseIncludeSect(dtd *node.DTD) error {
	for {
		p.skipBlanks()
		c, ok := p.in.peek()
		if !ok {
			return syntaxError("62", ErrPrematureEOF)
		}
		switch c {
		case ']':
			if _, err := p.in.next(); err != nil {
				return err
			}
			if err := p.expect(']', "62"); err != nil {
				return err
			}
			return p.expect('>', "62")
		case '%':
			if _, err := p.in.next(); err != nil {
				return err
			}
			if err := p.parsePEReference(dtd); err != nil {
				return err
			}
		case '<':
			if _, err := p.in.next(); err != nil {
				return err
			}
			if err := p.parseMarkupDecl(dtd); err != nil {
				return err
			}
		default:
			return syntaxError("62", fmt.Errorf("unexpected character %q in conditional section", c))
		}
	}
}

// skipIgnoreSect consumes input through the ']]>' matching the current
// section. Nested '<![' openers are counted so that their terminators do
// not end the outer section [63].
func (p *PullParser) skipIgnoreSect() error {
	depth := 1
	for depth > 0 {
		c, err := p.in.next()
		if err != nil {
			return syntaxError("63", ErrPrematureEOF)
		}
		switch c {
		case '<':
			if n, ok := p.in.peek(); ok && n == '!' {
				if _, err := p.in.next(); err != nil {
					return err
				}
				if n, ok := p.in.peek(); ok && n == '[' {
					if _, err := p.in.next(); err != nil {
						return err
					}
					depth++
				}
			}
		case ']':
			if n, ok := p.in.peek(); ok && n == ']' {
				if _, err := p.in.next(); err != nil {
					return err
				}
				if n, ok := p.in.peek(); ok && n == '>' {
					if _, err := p.in.next(); err != nil {
						return err
					}
					depth--
				}
			}
		}
	}
	return nil
}

/* Parse an element declaration.
 *
 * [45] elementdecl ::= '<!ELEMENT' S Name S contentspec S? '>'
 * [46] contentspec ::= 'EMPTY' | 'ANY' | Mixed | children
 */
func (p *PullParser) parseElementDecl(dtd *node.DTD) error {
	if err := p.requireBlanks("45"); err != nil {
		return err
	}
	name, err := p.parseQName()
	if err != nil {
		return err
	}
	if err := p.requireBlanks("45"); err != nil {
		return err
	}

	var content node.ContentSpec
	c, ok := p.in.peek()
	if !ok {
		return syntaxError("46", ErrPrematureEOF)
	}
	if c == '(' {
		if _, err := p.in.next(); err != nil {
			return err
		}
		content, err = p.parseContentSpecParen()
		if err != nil {
			return err
		}
	} else {
		kw, err := p.parseNCName()
		if err != nil {
			return err
		}
		switch kw {
		case "EMPTY":
			content = node.ContentSpec{ContentType: node.EmptyContent}
		case "ANY":
			content = node.ContentSpec{ContentType: node.AnyContent}
		default:
			return syntaxError("46", fmt.Errorf("expected EMPTY, ANY or a group, got %q", kw))
		}
	}

	p.skipBlanks()
	if err := p.expect('>', "45"); err != nil {
		return syntaxError("45", ErrGtRequired)
	}
	dtd.Decls = append(dtd.Decls, &node.ElementDecl{Name: name, Content: content})
	return nil
}

// parseContentSpecParen parses the remainder of a content specification
// whose opening '(' has been consumed: either a Mixed model [51] or a
// children model [47].
func (p *PullParser) parseContentSpecParen() (node.ContentSpec, error) {
	p.skipBlanks()
	c, ok := p.in.peek()
	if !ok {
		return node.ContentSpec{}, syntaxError("46", ErrPrematureEOF)
	}
	if c == '#' {
		return p.parseMixed()
	}

	particle, err := p.parseParticleGroup()
	if err != nil {
		return node.ContentSpec{}, err
	}
	return node.ContentSpec{ContentType: node.ChildrenContent, Particle: particle}, nil
}

/* Parse a Mixed content model, after '(' and before '#PCDATA'.
 *
 * [51] Mixed ::= '(' S? '#PCDATA' (S? '|' S? Name)* S? ')*'
 *              | '(' S? '#PCDATA' S? ')'
 */
func (p *PullParser) parseMixed() (node.ContentSpec, error) {
	if _, err := p.in.next(); err != nil { // '#'
		return node.ContentSpec{}, err
	}
	if err := p.expectKeywordDTD("PCDATA", "51", ErrPCDATARequired); err != nil {
		return node.ContentSpec{}, err
	}

	spec := node.ContentSpec{ContentType: node.MixedContent}
	for {
		p.skipBlanks()
		c, ok := p.in.peek()
		if !ok {
			return node.ContentSpec{}, syntaxError("51", ErrPrematureEOF)
		}
		switch c {
		case ')':
			if _, err := p.in.next(); err != nil {
				return node.ContentSpec{}, err
			}
			if n, ok := p.in.peek(); ok && n == '*' {
				if _, err := p.in.next(); err != nil {
					return node.ContentSpec{}, err
				}
				spec.Repeat = true
			} else if len(spec.Names) > 0 {
				return node.ContentSpec{}, syntaxError("51", fmt.Errorf("mixed content with names must end with ')*'"))
			}
			return spec, nil
		case '|':
			if _, err := p.in.next(); err != nil {
				return node.ContentSpec{}, err
			}
			p.skipBlanks()
			name, err := p.parseQName()
			if err != nil {
				return node.ContentSpec{}, err
			}
			spec.Names = append(spec.Names, name)
		default:
			return node.ContentSpec{}, syntaxError("51", fmt.Errorf("unexpected character %q in mixed content", c))
		}
	}
}

/* Parse a children content particle group, after its '('.
 *
 * [47] children ::= (choice | seq) ('?' | '*' | '+')?
 * [49] choice   ::= '(' S? cp ( S? '|' S? cp )+ S? ')'
 * [50] seq      ::= '(' S? cp ( S? ',' S? cp )* S? ')'
 */
func (p *PullParser) parseParticleGroup() (*node.Particle, error) {
	group := &node.Particle{ParticleType: node.SeqParticle}
	var sep rune

	for {
		cp, err := p.parseContentParticle()
		if err != nil {
			return nil, err
		}
		group.Children = append(group.Children, cp)

		p.skipBlanks()
		c, ok := p.in.peek()
		if !ok {
			return nil, syntaxError("47", ErrPrematureEOF)
		}
		switch c {
		case ')':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			if sep == '|' {
				group.ParticleType = node.ChoiceParticle
			}
			group.Quantifier = p.readQuantifier()
			return group, nil
		case '|', ',':
			if sep != 0 && sep != c {
				return nil, syntaxError("47", fmt.Errorf("cannot mix '|' and ',' in one group"))
			}
			sep = c
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
		default:
			return nil, syntaxError("47", fmt.Errorf("unexpected character %q in content model", c))
		}
	}
}

// parseContentParticle parses one cp [48]: a name or a nested group,
// with an optional quantifier.
func (p *PullParser) parseContentParticle() (*node.Particle, error) {
	p.skipBlanks()
	c, ok := p.in.peek()
	if !ok {
		return nil, syntaxError("48", ErrPrematureEOF)
	}
	if c == '(' {
		if _, err := p.in.next(); err != nil {
			return nil, err
		}
		return p.parseParticleGroup()
	}

	name, err := p.parseQName()
	if err != nil {
		return nil, err
	}
	cp := &node.Particle{ParticleType: node.NameParticle, Name: name}
	cp.Quantifier = p.readQuantifier()
	return cp, nil
}

func (p *PullParser) readQuantifier() byte {
	c, ok := p.in.peek()
	if !ok {
		return 0
	}
	switch c {
	case '?', '*', '+':
		p.in.advance()
		return byte(c)
	}
	return 0
}

/* Parse an attribute list declaration.
 *
 * [52] AttlistDecl ::= '<!ATTLIST' S Name AttDef* S? '>'
 * [53] AttDef      ::= S Name S AttType S DefaultDecl
 */
func (p *PullParser) parseAttlistDecl(dtd *node.DTD) error {
	if err := p.requireBlanks("52"); err != nil {
		return err
	}
	elem, err := p.parseQName()
	if err != nil {
		return err
	}

	decl := &node.AttlistDecl{Element: elem}
	for {
		hadSpace := p.skipBlanks()
		c, ok := p.in.peek()
		if !ok {
			return syntaxError("52", ErrPrematureEOF)
		}
		if c == '>' {
			if _, err := p.in.next(); err != nil {
				return err
			}
			dtd.Decls = append(dtd.Decls, decl)
			return nil
		}
		if !hadSpace {
			return syntaxError("53", ErrSpaceRequired)
		}

		def, err := p.parseAttDef()
		if err != nil {
			return err
		}
		decl.Defs = append(decl.Defs, def)
	}
}

func (p *PullParser) parseAttDef() (node.AttDef, error) {
	name, err := p.parseQName()
	if err != nil {
		return node.AttDef{}, err
	}
	if err := p.requireBlanks("53"); err != nil {
		return node.AttDef{}, err
	}

	def := node.AttDef{Name: name}
	if err := p.parseAttType(&def); err != nil {
		return node.AttDef{}, err
	}
	if err := p.requireBlanks("53"); err != nil {
		return node.AttDef{}, err
	}
	if err := p.parseDefaultDecl(&def); err != nil {
		return node.AttDef{}, err
	}
	return def, nil
}

/* Parse an attribute type.
 *
 * [54] AttType       ::= StringType | TokenizedType | EnumeratedType
 * [57] EnumeratedType ::= NotationType | Enumeration
 */
func (p *PullParser) parseAttType(def *node.AttDef) error {
	c, ok := p.in.peek()
	if !ok {
		return syntaxError("54", ErrPrematureEOF)
	}
	if c == '(' {
		def.AttType = node.AttrEnumeration
		names, err := p.parseNameGroup(p.parseNmtoken)
		if err != nil {
			return err
		}
		def.Names = names
		return nil
	}

	kw, err := p.parseNCName()
	if err != nil {
		return err
	}
	switch kw {
	case "CDATA":
		def.AttType = node.AttrCDATA
	case "ID":
		def.AttType = node.AttrID
	case "IDREF":
		def.AttType = node.AttrIDRef
	case "IDREFS":
		def.AttType = node.AttrIDRefs
	case "ENTITY":
		def.AttType = node.AttrEntity
	case "ENTITIES":
		def.AttType = node.AttrEntities
	case "NMTOKEN":
		def.AttType = node.AttrNMToken
	case "NMTOKENS":
		def.AttType = node.AttrNMTokens
	case "NOTATION":
		def.AttType = node.AttrNotation
		if err := p.requireBlanks("58"); err != nil {
			return err
		}
		names, err := p.parseNameGroup(p.parseNCName)
		if err != nil {
			return err
		}
		def.Names = names
	default:
		return syntaxError("54", fmt.Errorf("unknown attribute type %q", kw))
	}
	return nil
}

// parseNameGroup reads '(' token ('|' token)* ')' with the given token
// reader.
func (p *PullParser) parseNameGroup(readToken func() (string, error)) ([]string, error) {
	if err := p.expect('(', "58"); err != nil {
		return nil, syntaxError("58", ErrOpenParenRequired)
	}

	var names []string
	for {
		p.skipBlanks()
		tok, err := readToken()
		if err != nil {
			return nil, err
		}
		names = append(names, tok)

		p.skipBlanks()
		c, ok := p.in.peek()
		if !ok {
			return nil, syntaxError("58", ErrPrematureEOF)
		}
		switch c {
		case ')':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			return names, nil
		case '|':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
		default:
			return nil, syntaxError("58", fmt.Errorf("unexpected character %q in name group", c))
		}
	}
}

/* Parse a default declaration.
 *
 * [60] DefaultDecl ::= '#REQUIRED' | '#IMPLIED' | (('#FIXED' S)? AttValue)
 */
func (p *PullParser) parseDefaultDecl(def *node.AttDef) error {
	c, ok := p.in.peek()
	if !ok {
		return syntaxError("60", ErrPrematureEOF)
	}
	if c == '#' {
		if _, err := p.in.next(); err != nil {
			return err
		}
		kw, err := p.parseNCName()
		if err != nil {
			return err
		}
		switch kw {
		case "REQUIRED":
			def.Default = node.AttrDefaultRequired
			return nil
		case "IMPLIED":
			def.Default = node.AttrDefaultImplied
			return nil
		case "FIXED":
			def.Default = node.AttrDefaultFixed
			if err := p.requireBlanks("60"); err != nil {
				return err
			}
		default:
			return syntaxError("60", fmt.Errorf("unknown default declaration #%s", kw))
		}
	}

	value, err := p.parseAttValue()
	if err != nil {
		return err
	}
	def.Value = value
	return nil
}

/* Parse an entity declaration.
 *
 * [71] GEDecl ::= '<!ENTITY' S Name S EntityDef S? '>'
 * [72] PEDecl ::= '<!ENTITY' S '%' S Name S PEDef S? '>'
 */
func (p *PullParser) parseEntityDecl(dtd *node.DTD) error {
	if err := p.requireBlanks("70"); err != nil {
		return err
	}

	ent := &node.Entity{}
	if c, ok := p.in.peek(); ok && c == '%' {
		if _, err := p.in.next(); err != nil {
			return err
		}
		if err := p.requireBlanks("72"); err != nil {
			return err
		}
		ent.Parameter = true
	}

	name, err := p.parseNCName()
	if err != nil {
		return err
	}
	ent.Name = name
	if err := p.requireBlanks("70"); err != nil {
		return err
	}

	c, ok := p.in.peek()
	if !ok {
		return syntaxError("70", ErrPrematureEOF)
	}
	if c == '"' || c == '\'' {
		value, err := p.parseEntityValue(dtd)
		if err != nil {
			return err
		}
		ent.Value = value
	} else {
		extID, err := p.parseExternalID(true)
		if err != nil {
			return err
		}
		ent.ExternalID = extID
		if !ent.Parameter {
			hadSpace := p.skipBlanks()
			if c, ok := p.in.peek(); ok && isNCNameStartChar(c) {
				if !hadSpace {
					return syntaxError("76", ErrSpaceRequired)
				}
				if err := p.expectKeywordDTD("NDATA", "76", ErrValueRequired); err != nil {
					return err
				}
				if err := p.requireBlanks("76"); err != nil {
					return err
				}
				ndata, err := p.parseNCName()
				if err != nil {
					return err
				}
				ent.NData = ndata
			}
		}
	}

	p.skipBlanks()
	if err := p.expect('>', "71"); err != nil {
		return syntaxError("71", ErrGtRequired)
	}
	dtd.Decls = append(dtd.Decls, ent)
	return nil
}

/* Parse an entity value.
 *
 * [9] EntityValue ::= '"' ([^%&"] | PEReference | Reference)* '"'
 *                   | "'" ([^%&'] | PEReference | Reference)* "'"
 *
 * General entity references stay unexpanded as chunks; parameter entity
 * references are expanded in place from the subset's own declarations.
 */
func (p *PullParser) parseEntityValue(dtd *node.DTD) ([]node.Node, error) {
	quote, err := p.in.next()
	if err != nil {
		return nil, err
	}

	var chunks []node.Node
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			chunks = append(chunks, &node.Text{Content: sb.String()})
			sb.Reset()
		}
	}

	for {
		c, err := p.in.next()
		if err != nil {
			return nil, syntaxError("9", ErrPrematureEOF)
		}
		if c == quote {
			flush()
			return chunks, nil
		}
		switch c {
		case '&':
			flush()
			if n, ok := p.in.peek(); ok && n == '#' {
				if _, err := p.in.next(); err != nil {
					return nil, err
				}
				r, err := p.parseCharRefBody()
				if err != nil {
					return nil, err
				}
				chunks = append(chunks, &node.CharRef{Value: r})
				continue
			}
			name, err := p.parseEntityRefName()
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, &node.EntityRef{Name: name})
		case '%':
			name, err := p.parseNCName()
			if err != nil {
				return nil, syntaxError("69", ErrInvalidName)
			}
			if err := p.expect(';', "69"); err != nil {
				return nil, syntaxError("69", ErrSemicolonRequired)
			}
			pe, ok := dtd.ParameterEntity(name)
			if !ok {
				return nil, wfcError(WFCEntityDeclared, fmt.Errorf("parameter entity %q not declared", name))
			}
			flush()
			chunks = append(chunks, pe.Value...)
		default:
			sb.WriteRune(c)
		}
	}
}

/* Parse a notation declaration.
 *
 * [82] NotationDecl ::= '<!NOTATION' S Name S (ExternalID | PublicID) S? '>'
 */
func (p *PullParser) parseNotationDecl(dtd *node.DTD) error {
	if err := p.requireBlanks("82"); err != nil {
		return err
	}
	name, err := p.parseNCName()
	if err != nil {
		return err
	}
	if err := p.requireBlanks("82"); err != nil {
		return err
	}

	extID, err := p.parseExternalID(false)
	if err != nil {
		return err
	}
	p.skipBlanks()
	if err := p.expect('>', "82"); err != nil {
		return syntaxError("82", ErrGtRequired)
	}
	dtd.Decls = append(dtd.Decls, &node.NotationDecl{Name: name, ExternalID: *extID})
	return nil
}

func (p *PullParser) expectKeywordDTD(want, prod string, errMissing error) error {
	kw, err := p.parseNCName()
	if err != nil {
		return syntaxError(prod, errMissing)
	}
	if kw != want {
		return syntaxError(prod, fmt.Errorf("expected %q, got %q", want, kw))
	}
	return nil
}

// flattenEntityValue renders internal replacement chunks as text.
// Unexpanded general entity references keep their lexical form.
func flattenEntityValue(chunks []node.Node) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		switch c := chunk.(type) {
		case *node.Text:
			sb.WriteString(c.Content)
		case *node.CharRef:
			sb.WriteRune(c.Value)
		case *node.EntityRef:
			sb.WriteString("&" + c.Name + ";")
		}
	}
	return sb.String()
}
