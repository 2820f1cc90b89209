package neon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/neon/node"
)

// collectEvents drains the parser through EndDocument.
func collectEvents(t *testing.T, src string) []Event {
	t.Helper()
	p := NewPullParser([]byte(src))
	defer p.Close()

	var events []Event
	for {
		ev, err := p.Next()
		require.NoError(t, err, "Next should succeed for %q", src)
		events = append(events, ev)
		if _, ok := ev.(*EndDocument); ok {
			return events
		}
	}
}

// parseUntilError drains the parser until it fails.
func parseUntilError(t *testing.T, src string) error {
	t.Helper()
	p := NewPullParser([]byte(src))
	defer p.Close()

	for {
		ev, err := p.Next()
		if err != nil {
			return err
		}
		if _, ok := ev.(*EndDocument); ok {
			t.Fatalf("expected a parse error for %q", src)
		}
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.EventType())
	}
	return types
}

func TestPullSimpleDocument(t *testing.T) {
	events := collectEvents(t, `<root a="1"/>`)
	require.Equal(t,
		[]EventType{StartDocumentEvent, StartTagEvent, EndTagEvent, EndDocumentEvent},
		eventTypes(events))

	st := events[1].(*StartTag)
	require.Equal(t, node.Name{Local: "root"}, st.Name)
	require.True(t, st.Empty, "tag is self closing")
	require.Equal(t, Position{Line: 1, Column: 1}, st.Pos())
	require.Equal(t, []node.Attribute{
		{Name: node.Name{Local: "a"}, Children: []node.Node{&node.Text{Content: "1"}}},
	}, st.Attributes)

	et := events[2].(*EndTag)
	require.Equal(t, st.Name, et.Name, "synthesized end tag carries the same name")
	require.Equal(t, st.Pos(), et.Pos(), "synthesized end tag carries the same position")
}

func TestPullWellBracketed(t *testing.T) {
	events := collectEvents(t, `<a><b><c/></b><b/></a>`)
	depth := 0
	for _, ev := range events {
		switch ev := ev.(type) {
		case *StartTag:
			depth++
		case *EndTag:
			depth--
			require.GreaterOrEqual(t, depth, 0, "end tag %s must not underflow", ev.Name)
		}
	}
	require.Equal(t, 0, depth, "every start tag has a matching end tag")
}

func TestPullCharDataAndReferences(t *testing.T) {
	events := collectEvents(t, `<r>a&amp;b&#x41;c</r>`)
	require.Equal(t,
		[]EventType{
			StartDocumentEvent, StartTagEvent,
			TextEvent, EntityRefEvent, TextEvent, CharRefEvent, TextEvent,
			EndTagEvent, EndDocumentEvent,
		},
		eventTypes(events))

	require.Equal(t, "a", events[2].(*Text).Content)
	require.Equal(t, "amp", events[3].(*EntityRef).Name)
	require.Equal(t, "b", events[4].(*Text).Content)
	require.Equal(t, rune(0x41), events[5].(*CharRef).Value)
	require.Equal(t, "c", events[6].(*Text).Content)
}

func TestPullSurrogateCharRef(t *testing.T) {
	events := collectEvents(t, `<r>&#x10000;</r>`)
	require.Equal(t, rune(0x10000), events[2].(*CharRef).Value,
		"a supplementary plane reference is a single event")
}

func TestPullCDATA(t *testing.T) {
	events := collectEvents(t, "<r><![CDATA[a]]b&gt;<x>]]></r>")
	text := events[2].(*Text)
	require.True(t, text.CDATA)
	require.Equal(t, "a]]b><x>", text.Content,
		"']]' without '>' stays, '&gt;' becomes '>', markup stays literal")
}

func TestPullCDATAEndInCharData(t *testing.T) {
	err := parseUntilError(t, `<r>a]]>b</r>`)
	require.True(t, errors.Is(err, ErrMisplacedCDATAEnd))

	var serr ErrSyntax
	require.True(t, errors.As(err, &serr))
	require.Equal(t, "14", serr.Production)
}

func TestPullNewlineNormalization(t *testing.T) {
	events := collectEvents(t, "<r>a\r\nb\rc</r>")
	require.Equal(t, "a\nb\nc", events[2].(*Text).Content,
		"CR LF and lone CR become LF in character data")

	events = collectEvents(t, "<r a=\"x\r\ny\tz\"/>")
	st := events[1].(*StartTag)
	require.Equal(t, "x y z", st.Attributes[0].Value(),
		"attribute values get whitespace normalization")
}

func TestPullProlog(t *testing.T) {
	events := collectEvents(t, "<?xml version=\"1.0\"?>\n<!-- c --><?pi body?><!DOCTYPE r>\n<r/> <!-- after -->")
	require.Equal(t,
		[]EventType{
			StartDocumentEvent, XMLDeclEvent, CommentEvent, PIEvent, DoctypeEvent,
			StartTagEvent, EndTagEvent, CommentEvent, EndDocumentEvent,
		},
		eventTypes(events))

	decl := events[1].(*XMLDecl)
	require.Equal(t, "1.0", decl.Version)
	require.Equal(t, node.StandaloneImplicitNo, decl.Standalone)

	pi := events[3].(*PI)
	require.Equal(t, "pi", pi.Target)
	require.Equal(t, "body", pi.Data)

	dt := events[4].(*Doctype)
	require.Equal(t, "r", dt.Name)
	require.Nil(t, dt.ExternalID)
	require.Nil(t, dt.Subset)
}

func TestPullDoctypeExternalID(t *testing.T) {
	events := collectEvents(t, `<!DOCTYPE r PUBLIC "-//EX//DTD r//EN" "r.dtd"><r/>`)
	dt := events[1].(*Doctype)
	require.Equal(t, &node.ExternalID{
		IDType: node.ExternalPublic,
		Public: "-//EX//DTD r//EN",
		System: "r.dtd",
	}, dt.ExternalID)

	events = collectEvents(t, `<!DOCTYPE r SYSTEM "r.dtd"><r/>`)
	dt = events[1].(*Doctype)
	require.Equal(t, &node.ExternalID{IDType: node.ExternalSystem, System: "r.dtd"}, dt.ExternalID)
}

func TestPullXMLDeclErrors(t *testing.T) {
	inputs := map[string]string{
		`<?xml version="2.0"?><r/>`:           "26",
		`<?xml encoding="utf-8"?><r/>`:        "24",
		`<?xml version="1.0" standalone="maybe"?><r/>`: "32",
		`<?xml version="1.0" encoding="3x"?><r/>`:      "81",
		`<r/><?xml version="1.0"?>`:           "17",
	}
	for input, prod := range inputs {
		err := parseUntilError(t, input)
		var serr ErrSyntax
		require.True(t, errors.As(err, &serr), "%q yields a syntax error", input)
		require.Equal(t, prod, serr.Production, "production for %q", input)
	}
}

func TestPullXMLVersionSelectsCharRange(t *testing.T) {
	events := collectEvents(t, "<?xml version=\"1.1\"?><r>&#x1;</r>")
	require.Equal(t, rune(0x1), events[3].(*CharRef).Value,
		"U+0001 may be referenced under XML 1.1")

	err := parseUntilError(t, `<r>&#x1;</r>`)
	var serr ErrSyntax
	require.True(t, errors.As(err, &serr))
	require.Equal(t, "66", serr.Production, "U+0001 may not be referenced under XML 1.0")
}

func TestPullReservedPITarget(t *testing.T) {
	err := parseUntilError(t, `<r><?XML x?></r>`)
	require.True(t, errors.Is(err, ErrReservedPITarget))
}

func TestPullCommentErrors(t *testing.T) {
	err := parseUntilError(t, `<r><!-- a -- b --></r>`)
	require.True(t, errors.Is(err, ErrHyphenInComment))
}

func TestPullContentOutsideRoot(t *testing.T) {
	err := parseUntilError(t, `x<r/>`)
	require.True(t, errors.Is(err, ErrContentOutsideRoot))

	err = parseUntilError(t, `<r/>x`)
	require.True(t, errors.Is(err, ErrDocumentEnd))

	err = parseUntilError(t, `<r/><x/>`)
	require.True(t, errors.Is(err, ErrDocumentEnd))
}

func TestPullEOFInsideElement(t *testing.T) {
	err := parseUntilError(t, `<r><a>text`)
	var perr ErrParseError
	require.True(t, errors.As(err, &perr), "failure carries a position")

	var serr ErrSyntax
	require.True(t, errors.As(err, &serr))
	require.Equal(t, "1", serr.Production)
}

func TestPullErrorIsSticky(t *testing.T) {
	p := NewPullParser([]byte(`<a></b x`))
	var first error
	for {
		_, err := p.Next()
		if err != nil {
			first = err
			break
		}
	}
	_, err := p.Next()
	require.Equal(t, first, err, "the same error is returned on every subsequent call")
}

func TestPullAfterEndDocument(t *testing.T) {
	p := NewPullParser([]byte(`<r/>`))
	for {
		ev, err := p.Next()
		require.NoError(t, err)
		if _, ok := ev.(*EndDocument); ok {
			break
		}
	}
	_, err := p.Next()
	require.True(t, errors.Is(err, ErrEOF))
}
