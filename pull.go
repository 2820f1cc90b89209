package neon

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/pdebug"

	"github.com/lestrrat-go/neon/internal/debug"
	"github.com/lestrrat-go/neon/node"
)

// docPosition tracks where in the document the parser is: before the XML
// declaration, between it and the DOCTYPE, between the DOCTYPE and the
// root element, inside the root, or after it.
type docPosition int

const (
	prolog0 docPosition = iota
	prolog1
	prolog2
	inBody
	postlog
)

// openTag is the in-flight state of a start tag. It outlives a single
// Next call only when a placeholder event suspends attribute reading.
type openTag struct {
	pos       Position
	name      node.Name
	attrs     []node.Attribute
	noSpaceOK bool
}

// PullParser produces XML events on demand. It is an iterator: each call
// to Next delivers the next event in document order, or the error that
// terminated the parse. A PullParser must not be used concurrently.
type PullParser struct {
	in       *reader
	state    docPosition
	depth    int
	partial  bool
	xml11    bool
	queued   []Event
	tag      *openTag
	doctype  *node.DTD
	started  bool
	finished bool
	failed   error
}

// NewPullParser creates a pull parser over the given source. Additional
// sources may be appended with Feed. With WithPartial(true), end of input
// at a templating point yields a placeholder event instead of failing.
func NewPullParser(src []byte, options ...PullOption) *PullParser {
	p := &PullParser{in: newReader(src)}
	for _, option := range options {
		switch option.Ident() {
		case identPartial{}:
			p.partial = option.Value().(bool)
		}
	}
	return p
}

// Feed appends an input source. Legal at any time; required to resume
// after a placeholder event.
func (p *PullParser) Feed(src []byte) {
	p.in.feed(src)
}

// Complete marks the input as complete. After the final source fragment
// has been fed, end of input no longer yields placeholder events.
func (p *PullParser) Complete() {
	p.partial = false
}

// Close releases the input sources. The parser delivers no further
// events.
func (p *PullParser) Close() error {
	p.in.close()
	p.queued = nil
	p.finished = true
	return nil
}

// DTD returns the document type recorded from the DOCTYPE declaration
// (name, external identifier, and any internal subset declarations), or
// nil when no DOCTYPE has been read.
func (p *PullParser) DTD() *node.DTD {
	return p.doctype
}

func (p *PullParser) pos() Position {
	return p.in.position()
}

// error wraps err with the reader's position at the moment of failure.
func (p *PullParser) error(err error) error {
	if _, ok := err.(ErrParseError); ok {
		return err
	}
	pos := p.pos()
	return ErrParseError{Err: err, LineNumber: pos.Line, Column: pos.Column}
}

// fail records the error, closes the input queue, and makes every
// subsequent Next return the same error.
func (p *PullParser) fail(err error) error {
	err = p.error(err)
	p.failed = err
	p.in.close()
	return err
}

// Next returns the next event. After EndDocument has been delivered it
// returns ErrEOF. A parse failure is terminal: the input queue is closed
// and the same error is returned on every subsequent call.
func (p *PullParser) Next() (Event, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("PullParser.Next")
		defer g.End()
	}

	if p.failed != nil {
		return nil, p.failed
	}

	if len(p.queued) > 0 {
		ev := p.queued[0]
		p.queued = p.queued[1:]
		if _, ok := ev.(*EndTag); ok {
			p.closeElement()
		}
		return ev, nil
	}

	if p.finished {
		return nil, ErrEOF
	}

	if !p.started {
		p.started = true
		return &StartDocument{Position: p.pos()}, nil
	}

	var ev Event
	var err error
	switch {
	case p.tag != nil:
		ev, err = p.resumeStartTag()
	case p.state == inBody:
		ev, err = p.parseContent()
	case p.state == postlog:
		ev, err = p.parseEpilogue()
	default:
		ev, err = p.parseProlog()
	}
	if err != nil {
		return nil, p.fail(err)
	}
	return ev, nil
}

func (p *PullParser) closeElement() {
	p.depth--
	if debug.Enabled {
		debug.Printf(" <-- close element (depth %d)", p.depth)
	}
	if p.depth == 0 {
		p.state = postlog
	}
}

// parseProlog handles the document positions before the root element:
// the XML declaration, the DOCTYPE, and any comments and processing
// instructions around them.
func (p *PullParser) parseProlog() (Event, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("PullParser.parseProlog")
		defer g.End()
	}

	p.skipBlanks()
	c, ok := p.in.peek()
	if !ok {
		if p.partial {
			return &ExpectNodes{Position: p.pos()}, nil
		}
		p.finished = true
		return &EndDocument{Position: p.pos()}, nil
	}
	if c != '<' {
		return nil, syntaxError("27", ErrContentOutsideRoot)
	}

	pos := p.pos()
	if _, err := p.in.next(); err != nil {
		return nil, err
	}
	tok, err := p.nextMarkupToken()
	if err != nil {
		return nil, err
	}

	switch tok.typ {
	case commentToken:
		return &Comment{Position: pos, Content: tok.text}, nil

	case piToken:
		if strings.EqualFold(tok.text, "xml") {
			if tok.text != "xml" {
				return nil, syntaxError("17", ErrReservedPITarget)
			}
			if p.state != prolog0 {
				return nil, syntaxError("23", ErrMisplacedXMLDecl)
			}
			decl, err := p.parseXMLDecl(pos)
			if err != nil {
				return nil, err
			}
			p.state = prolog1
			return decl, nil
		}
		body, err := p.readPIBody()
		if err != nil {
			return nil, err
		}
		return &PI{Position: pos, Target: tok.text, Data: body}, nil

	case declToken:
		if tok.text != "DOCTYPE" {
			return nil, syntaxError("22", fmt.Errorf("unexpected markup declaration <!%s", tok.text))
		}
		if p.state == prolog2 {
			return nil, syntaxError("28", fmt.Errorf("only one DOCTYPE declaration is allowed"))
		}
		dt, err := p.parseDoctype(pos)
		if err != nil {
			return nil, err
		}
		p.state = prolog2
		return dt, nil

	case startToken:
		p.state = inBody
		p.tag = &openTag{pos: pos, name: tok.name}
		return p.resumeStartTag()

	case endToken:
		return nil, syntaxError("22", ErrStartTagRequired)
	}
	return nil, syntaxError("22", fmt.Errorf("unexpected markup in prolog"))
}

// parseContent handles everything inside the root element.
func (p *PullParser) parseContent() (Event, error) {
	c, ok := p.in.peek()
	if !ok {
		if p.partial {
			return &ExpectNodes{Position: p.pos()}, nil
		}
		return nil, syntaxError("1", ErrPrematureEOF)
	}

	pos := p.pos()
	switch c {
	case '<':
		if _, err := p.in.next(); err != nil {
			return nil, err
		}
		tok, err := p.nextMarkupToken()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case startToken:
			p.tag = &openTag{pos: pos, name: tok.name}
			return p.resumeStartTag()
		case endToken:
			p.closeElement()
			return &EndTag{Position: pos, Name: tok.name}, nil
		case piToken:
			if strings.EqualFold(tok.text, "xml") {
				return nil, syntaxError("17", ErrReservedPITarget)
			}
			body, err := p.readPIBody()
			if err != nil {
				return nil, err
			}
			return &PI{Position: pos, Target: tok.text, Data: body}, nil
		case commentToken:
			return &Comment{Position: pos, Content: tok.text}, nil
		case sectionToken:
			if tok.pe || tok.text != "CDATA" {
				return nil, syntaxError("43", fmt.Errorf("section %q not allowed in content", tok.text))
			}
			return p.parseCDSect(pos)
		default:
			return nil, syntaxError("43", fmt.Errorf("markup declaration not allowed in content"))
		}

	case '&':
		if _, err := p.in.next(); err != nil {
			return nil, err
		}
		if n, ok := p.in.peek(); ok && n == '#' {
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			r, err := p.parseCharRefBody()
			if err != nil {
				return nil, err
			}
			return &CharRef{Position: pos, Value: r}, nil
		}
		name, err := p.parseEntityRefName()
		if err != nil {
			return nil, err
		}
		return &EntityRef{Position: pos, Name: name}, nil
	}

	return p.parseCharData(pos)
}

/* Parse a CharData section.
 *
 * The right angle bracket may appear literally, but not as part of the
 * string "]]>", which only marks the end of a CDATA section.
 *
 * [14] CharData ::= [^<&]* - ([^<&]* ']]>' [^<&]*)
 */
func (p *PullParser) parseCharData(pos Position) (Event, error) {
	var sb strings.Builder
	for {
		c, ok := p.in.peek()
		if !ok || c == '<' || c == '&' {
			break
		}
		if _, err := p.in.next(); err != nil {
			return nil, err
		}

		switch c {
		case '\r':
			if n, ok := p.in.peek(); ok && n == '\n' {
				if _, err := p.in.next(); err != nil {
					return nil, err
				}
			}
			sb.WriteByte('\n')
		case ']':
			brackets := 1
			for {
				n, ok := p.in.peek()
				if !ok || n != ']' {
					break
				}
				if _, err := p.in.next(); err != nil {
					return nil, err
				}
				brackets++
			}
			if n, ok := p.in.peek(); ok && n == '>' && brackets >= 2 {
				return nil, syntaxError("14", ErrMisplacedCDATAEnd)
			}
			for i := 0; i < brackets; i++ {
				sb.WriteByte(']')
			}
		default:
			sb.WriteRune(c)
		}
	}
	return &Text{Position: pos, Content: sb.String()}, nil
}

// parseCDSect reads a CDATA section after the tokenizer has consumed
// '<![CDATA['. CR and CR LF become LF, and the literal sequence "&gt;"
// is recognized and emitted as '>' for compatibility with producers that
// escape it even here.
func (p *PullParser) parseCDSect(pos Position) (Event, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("PullParser.parseCDSect")
		defer g.End()
	}

	var sb strings.Builder
	for {
		c, err := p.in.next()
		if err != nil {
			return nil, syntaxError("20", ErrPrematureEOF)
		}
		switch c {
		case ']':
			brackets := 1
			for {
				n, ok := p.in.peek()
				if !ok || n != ']' {
					break
				}
				if _, err := p.in.next(); err != nil {
					return nil, err
				}
				brackets++
			}
			if n, ok := p.in.peek(); ok && n == '>' && brackets >= 2 {
				if _, err := p.in.next(); err != nil {
					return nil, err
				}
				for i := 0; i < brackets-2; i++ {
					sb.WriteByte(']')
				}
				return &Text{Position: pos, Content: sb.String(), CDATA: true}, nil
			}
			for i := 0; i < brackets; i++ {
				sb.WriteByte(']')
			}
		case '&':
			sb.WriteString(p.readCDSectAmp())
		case '\r':
			if n, ok := p.in.peek(); ok && n == '\n' {
				if _, err := p.in.next(); err != nil {
					return nil, err
				}
			}
			sb.WriteByte('\n')
		default:
			sb.WriteRune(c)
		}
	}
}

// readCDSectAmp handles the "&gt;" workaround inside CDATA. Anything
// other than the full sequence stays literal.
func (p *PullParser) readCDSectAmp() string {
	consumed := "&"
	for _, want := range "gt;" {
		c, ok := p.in.peek()
		if !ok || c != want {
			return consumed
		}
		p.in.advance()
		consumed += string(c)
	}
	return ">"
}

// parseEpilogue handles the document position after the root element:
// only comments, processing instructions and whitespace may appear.
func (p *PullParser) parseEpilogue() (Event, error) {
	p.skipBlanks()
	c, ok := p.in.peek()
	if !ok {
		if p.partial {
			return &ExpectNodes{Position: p.pos()}, nil
		}
		p.finished = true
		return &EndDocument{Position: p.pos()}, nil
	}
	if c != '<' {
		return nil, syntaxError("27", ErrDocumentEnd)
	}

	pos := p.pos()
	if _, err := p.in.next(); err != nil {
		return nil, err
	}
	tok, err := p.nextMarkupToken()
	if err != nil {
		return nil, err
	}
	switch tok.typ {
	case commentToken:
		return &Comment{Position: pos, Content: tok.text}, nil
	case piToken:
		if strings.EqualFold(tok.text, "xml") {
			return nil, syntaxError("17", ErrReservedPITarget)
		}
		body, err := p.readPIBody()
		if err != nil {
			return nil, err
		}
		return &PI{Position: pos, Target: tok.text, Data: body}, nil
	}
	return nil, syntaxError("1", ErrDocumentEnd)
}

// resumeStartTag reads attributes until the tag closes. It is entered
// when a start tag opens and re-entered after each placeholder event.
func (p *PullParser) resumeStartTag() (Event, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("PullParser.resumeStartTag %s", p.tag.name)
		defer g.End()
	}

	t := p.tag
	for {
		hadSpace := p.skipBlanks()
		c, ok := p.in.peek()
		if !ok {
			if p.partial {
				attrs := t.attrs
				t.attrs = nil
				t.noSpaceOK = true
				return &ExpectAttributes{Position: p.pos(), Name: t.name, Attributes: attrs}, nil
			}
			return nil, syntaxError("40", ErrPrematureEOF)
		}

		switch c {
		case '>':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			return p.emitStartTag(false)
		case '/':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			if err := p.expect('>', "44"); err != nil {
				return nil, syntaxError("44", ErrGtRequired)
			}
			return p.emitStartTag(true)
		}

		if !hadSpace && !t.noSpaceOK {
			return nil, syntaxError("40", ErrSpaceRequired)
		}
		t.noSpaceOK = false

		aname, err := p.parseQName()
		if err != nil {
			return nil, err
		}
		p.skipBlanks()
		if err := p.expect('=', "41"); err != nil {
			return nil, syntaxError("41", ErrEqualSignRequired)
		}
		p.skipBlanks()

		if _, ok := p.in.peek(); !ok {
			// After the '=' but before the value delimiter: a templating
			// point.
			if p.partial {
				attrs := t.attrs
				t.attrs = nil
				t.noSpaceOK = true
				return &ExpectAttributeValue{
					Position:   p.pos(),
					Name:       t.name,
					Attributes: attrs,
					Attribute:  aname,
				}, nil
			}
			return nil, syntaxError("41", ErrPrematureEOF)
		}

		value, err := p.parseAttValue()
		if err != nil {
			return nil, err
		}
		t.attrs = append(t.attrs, node.Attribute{Name: aname, Children: value})
	}
}

func (p *PullParser) emitStartTag(empty bool) (Event, error) {
	t := p.tag
	p.tag = nil
	p.depth++
	if debug.Enabled {
		debug.Printf(" --> start tag %s (depth %d)", t.name, p.depth)
	}
	if empty {
		p.queued = append(p.queued, &EndTag{Position: t.pos, Name: t.name})
	}
	return &StartTag{Position: t.pos, Name: t.name, Attributes: t.attrs, Empty: empty}, nil
}

// parseAttValue reads a quoted attribute value [10] into an ordered
// sequence of text, character reference, and entity reference chunks.
// Whitespace normalization for non-CDATA values applies: CR LF and lone
// CR become a single space, and TAB and LF become spaces.
func (p *PullParser) parseAttValue() ([]node.Node, error) {
	quote, ok := p.in.peek()
	if !ok {
		return nil, syntaxError("10", ErrPrematureEOF)
	}
	if quote != '"' && quote != '\'' {
		return nil, syntaxError("10", ErrAttrValueNotStarted)
	}
	if _, err := p.in.next(); err != nil {
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
		c, ok := p.in.peek()
		if !ok {
			return nil, syntaxError("10", ErrPrematureEOF)
		}
		if c == quote {
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			break
		}

		switch c {
		case '<':
			return nil, syntaxError("10", fmt.Errorf("'<' not allowed in attribute value"))
		case '&':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
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
		case '\r':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			if n, ok := p.in.peek(); ok && n == '\n' {
				if _, err := p.in.next(); err != nil {
					return nil, err
				}
			}
			sb.WriteByte(' ')
		case '\t', '\n':
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			sb.WriteByte(' ')
		default:
			if _, err := p.in.next(); err != nil {
				return nil, err
			}
			sb.WriteRune(c)
		}
	}
	flush()
	return chunks, nil
}

// parseXMLDecl reads the XML declaration [23] after the tokenizer has
// read the 'xml' target: version, then optional encoding, then optional
// standalone, in that order.
func (p *PullParser) parseXMLDecl(pos Position) (*XMLDecl, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("PullParser.parseXMLDecl")
		defer g.End()
	}

	decl := &XMLDecl{Position: pos, Standalone: node.StandaloneImplicitNo}

	if err := p.requireBlanks("24"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("version", "24"); err != nil {
		return nil, err
	}
	version, err := p.parseNamedLiteral("24")
	if err != nil {
		return nil, err
	}
	if !validVersionNum(version) {
		return nil, syntaxError("26", ErrInvalidVersionNum)
	}
	decl.Version = version
	if version == "1.1" {
		p.xml11 = true
		p.in.xml11 = true
	}

	kw, err := p.xmlDeclKeyword()
	if err != nil {
		return nil, err
	}
	if kw == "encoding" {
		enc, err := p.parseNamedLiteral("80")
		if err != nil {
			return nil, err
		}
		if !validEncName(enc) {
			return nil, syntaxError("81", ErrInvalidEncodingName)
		}
		decl.Encoding = enc

		kw, err = p.xmlDeclKeyword()
		if err != nil {
			return nil, err
		}
	}
	if kw == "standalone" {
		sd, err := p.parseNamedLiteral("32")
		if err != nil {
			return nil, err
		}
		switch sd {
		case "yes":
			decl.Standalone = node.StandaloneExplicitYes
		case "no":
			decl.Standalone = node.StandaloneExplicitNo
		default:
			return nil, syntaxError("32", fmt.Errorf("standalone must be \"yes\" or \"no\""))
		}
		kw = ""
	}
	if kw != "" {
		return nil, syntaxError("23", fmt.Errorf("unexpected %q in XML declaration", kw))
	}

	p.skipBlanks()
	if err := p.expect('?', "23"); err != nil {
		return nil, syntaxError("23", ErrInvalidXMLDecl)
	}
	if err := p.expect('>', "23"); err != nil {
		return nil, syntaxError("23", ErrInvalidXMLDecl)
	}
	return decl, nil
}

// xmlDeclKeyword reads the next pseudo-attribute name in the XML
// declaration, or returns "" when the declaration is about to close.
func (p *PullParser) xmlDeclKeyword() (string, error) {
	hadSpace := p.skipBlanks()
	c, ok := p.in.peek()
	if !ok {
		return "", syntaxError("23", ErrPrematureEOF)
	}
	if !isNCNameStartChar(c) {
		return "", nil
	}
	if !hadSpace {
		return "", syntaxError("23", ErrSpaceRequired)
	}
	return p.parseNCName()
}

func (p *PullParser) expectKeyword(want, prod string) error {
	kw, err := p.parseNCName()
	if err != nil {
		return err
	}
	if kw != want {
		return syntaxError(prod, fmt.Errorf("expected %q, got %q", want, kw))
	}
	return nil
}

// parseNamedLiteral reads Eq and a quoted literal of a pseudo-attribute.
func (p *PullParser) parseNamedLiteral(prod string) (string, error) {
	p.skipBlanks()
	if err := p.expect('=', "25"); err != nil {
		return "", syntaxError("25", ErrEqualSignRequired)
	}
	p.skipBlanks()
	return p.parseQuoted(prod, func(_, _ rune) bool { return true })
}

// [26] VersionNum ::= '1.' [0-9]+
func validVersionNum(v string) bool {
	if !strings.HasPrefix(v, "1.") || len(v) < 3 {
		return false
	}
	for _, c := range v[2:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// [81] EncName ::= [A-Za-z] ([A-Za-z0-9._] | '-')*
func validEncName(v string) bool {
	if v == "" {
		return false
	}
	for i, c := range v {
		if i == 0 {
			if !isEncNameStartChar(c) {
				return false
			}
			continue
		}
		if !isEncNameChar(c) {
			return false
		}
	}
	return true
}

// parseDoctype reads a doctypedecl [28] after the tokenizer has read the
// DOCTYPE keyword. The internal subset, when present, is handed to the
// DTD subset parser.
func (p *PullParser) parseDoctype(pos Position) (Event, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("PullParser.parseDoctype")
		defer g.End()
	}

	if err := p.requireBlanks("28"); err != nil {
		return nil, err
	}
	name, err := p.parseQName()
	if err != nil {
		return nil, err
	}

	dtd := &node.DTD{Name: name.String()}
	hadSpace := p.skipBlanks()
	if c, ok := p.in.peek(); ok && isNCNameStartChar(c) {
		if !hadSpace {
			return nil, syntaxError("28", ErrSpaceRequired)
		}
		extID, err := p.parseExternalID(true)
		if err != nil {
			return nil, err
		}
		dtd.ExternalID = extID
		p.skipBlanks()
	}

	ev := &Doctype{Position: pos, Name: dtd.Name, ExternalID: dtd.ExternalID}
	if c, ok := p.in.peek(); ok && c == '[' {
		if _, err := p.in.next(); err != nil {
			return nil, err
		}
		if err := p.parseInternalSubset(dtd); err != nil {
			return nil, err
		}
		ev.Subset = dtd
		p.skipBlanks()
	}

	if err := p.expect('>', "28"); err != nil {
		return nil, syntaxError("28", ErrGtRequired)
	}
	p.doctype = dtd
	return ev, nil
}

// parseExternalID reads an ExternalID [75]. In notation declarations the
// system literal of a PUBLIC identifier is optional; everywhere else it
// is required.
func (p *PullParser) parseExternalID(systemRequired bool) (*node.ExternalID, error) {
	kw, err := p.parseNCName()
	if err != nil {
		return nil, err
	}
	switch kw {
	case "SYSTEM":
		if err := p.requireBlanks("75"); err != nil {
			return nil, err
		}
		sys, err := p.parseSystemLiteral()
		if err != nil {
			return nil, err
		}
		return &node.ExternalID{IDType: node.ExternalSystem, System: sys}, nil

	case "PUBLIC":
		if err := p.requireBlanks("75"); err != nil {
			return nil, err
		}
		pub, err := p.parsePubidLiteral()
		if err != nil {
			return nil, err
		}
		extID := &node.ExternalID{IDType: node.ExternalPublic, Public: pub}
		if systemRequired {
			if err := p.requireBlanks("75"); err != nil {
				return nil, err
			}
			sys, err := p.parseSystemLiteral()
			if err != nil {
				return nil, err
			}
			extID.System = sys
			return extID, nil
		}
		hadSpace := p.skipBlanks()
		if c, ok := p.in.peek(); ok && hadSpace && (c == '"' || c == '\'') {
			sys, err := p.parseSystemLiteral()
			if err != nil {
				return nil, err
			}
			extID.System = sys
		}
		return extID, nil
	}
	return nil, syntaxError("75", fmt.Errorf("expected SYSTEM or PUBLIC, got %q", kw))
}
