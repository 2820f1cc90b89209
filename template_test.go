package neon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/neon/node"
)

func TestTemplateAttributes(t *testing.T) {
	sources := [][]byte{
		[]byte(`<root `),
		[]byte(` c="v3" `),
		[]byte(` d="v4"/>`),
	}
	args := []interface{}{
		[]node.Attribute{
			node.NewAttribute(node.Name{Local: "a"}, "1"),
			node.NewAttribute(node.Name{Local: "b"}, "2"),
		},
		nil,
	}

	root, err := ParseParts(sources, args)
	require.NoError(t, err, "ParseParts should succeed")

	var got []string
	for _, attr := range root.Attributes {
		got = append(got, attr.Name.Local+"="+attr.Value())
	}
	require.Equal(t, []string{"a=1", "b=2", "c=v3", "d=v4"}, got,
		"injected attributes splice in at the placeholder's position")
}

func TestTemplateAttributeValue(t *testing.T) {
	sources := [][]byte{[]byte(`<root a=`), []byte(`/>`)}

	root, err := ParseParts(sources, []interface{}{"v1"})
	require.NoError(t, err)
	require.Equal(t, []node.Attribute{
		node.NewAttribute(node.Name{Local: "a"}, "v1"),
	}, root.Attributes)

	root, err = ParseParts(sources, []interface{}{42})
	require.NoError(t, err)
	require.Equal(t, "42", root.Attributes[0].Value(), "non-string arguments are stringified")
}

func TestTemplateNilAttributeValue(t *testing.T) {
	sources := [][]byte{[]byte(`<root a=`), []byte(`/>`)}

	root, err := ParseParts(sources, []interface{}{nil})
	require.NoError(t, err)
	require.Equal(t, &node.Element{Name: node.Name{Local: "root"}}, root,
		"a nil value drops the attribute entirely")
}

func TestTemplateNodes(t *testing.T) {
	sources := [][]byte{
		[]byte(`<r><![CDATA[X]]>`),
		[]byte(`<s>Y</s></r>`),
	}
	args := []interface{}{
		[]node.Node{
			&node.Comment{Content: "c"},
			&node.Element{Name: node.Name{Local: "e"}},
		},
	}

	root, err := ParseParts(sources, args)
	require.NoError(t, err)
	require.Equal(t, []node.Node{
		&node.CDATA{Content: "X"},
		&node.Comment{Content: "c"},
		&node.Element{Name: node.Name{Local: "e"}},
		&node.Element{
			Name:     node.Name{Local: "s"},
			Children: []node.Node{&node.Text{Content: "Y"}},
		},
	}, root.Children, "injected nodes splice in before the following content")
}

func TestTemplateEvents(t *testing.T) {
	// drive the placeholder protocol by hand
	p := NewPullParser([]byte(`<root x=`), WithPartial(true))
	defer p.Close()

	ev, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, StartDocumentEvent, ev.EventType())

	ev, err = p.Next()
	require.NoError(t, err)
	eav, ok := ev.(*ExpectAttributeValue)
	require.True(t, ok, "input ends after '=': ExpectAttributeValue")
	require.Equal(t, node.Name{Local: "root"}, eav.Name)
	require.Equal(t, node.Name{Local: "x"}, eav.Attribute)
	require.Empty(t, eav.Attributes)

	p.Feed([]byte(` y="2" `))
	ev, err = p.Next()
	require.NoError(t, err)
	ea, ok := ev.(*ExpectAttributes)
	require.True(t, ok, "input ends between attributes: ExpectAttributes")
	require.Equal(t, "y", ea.Attributes[0].Name.Local,
		"partial attributes are the ones read since the last placeholder")

	// hand over the rest of the tag and some character data
	p.Feed([]byte(`>text`))
	ev, err = p.Next()
	require.NoError(t, err)
	st, ok := ev.(*StartTag)
	require.True(t, ok)
	require.False(t, st.Empty)
	require.Empty(t, st.Attributes, "attributes already handed off via placeholders")

	ev, err = p.Next()
	require.NoError(t, err)
	require.Equal(t, TextEvent, ev.EventType())
	require.Equal(t, "text", ev.(*Text).Content)

	ev, err = p.Next()
	require.NoError(t, err)
	en, ok := ev.(*ExpectNodes)
	require.True(t, ok, "input ends in character data: ExpectNodes")
	_ = en

	p.Feed([]byte(`</root>`))
	p.Complete()
	ev, err = p.Next()
	require.NoError(t, err)
	require.Equal(t, EndTagEvent, ev.EventType())

	ev, err = p.Next()
	require.NoError(t, err)
	require.Equal(t, EndDocumentEvent, ev.EventType())
}

func TestTemplateMultipleRoots(t *testing.T) {
	sources := [][]byte{[]byte(``), []byte(``)}
	args := []interface{}{
		[]node.Node{
			&node.Element{Name: node.Name{Local: "a"}},
			&node.Element{Name: node.Name{Local: "b"}},
		},
	}
	_, err := ParseParts(sources, args)
	require.ErrorIs(t, err, ErrMultipleRootElements)

	var perr ErrParseError
	require.True(t, errors.As(err, &perr), "builder failures carry a position")
}

func TestTemplateArgumentMismatch(t *testing.T) {
	sources := [][]byte{[]byte(`<r `), []byte(`/>`)}

	_, err := ParseParts(sources, nil)
	require.Error(t, err, "a placeholder with no argument left fails")
	var perr ErrParseError
	require.True(t, errors.As(err, &perr), "failure carries a position")

	_, err = ParseParts(sources, []interface{}{"not attributes"})
	require.Error(t, err, "an attribute placeholder requires []node.Attribute")
	require.True(t, errors.As(err, &perr), "failure carries a position")
}
