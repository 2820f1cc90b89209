package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	require.Equal(t, Name{Local: "foo"}, ParseName("foo"))
	require.Equal(t, Name{Prefix: "ns", Local: "foo"}, ParseName("ns:foo"))
}

func TestNameString(t *testing.T) {
	require.Equal(t, "foo", Name{Local: "foo"}.String())
	require.Equal(t, "ns:foo", Name{Prefix: "ns", Local: "foo"}.String())
}

func TestNameEqual(t *testing.T) {
	// resolved names compare by local part and URI
	a := Name{Prefix: "x", Local: "n", URI: "urn:a"}
	b := Name{Prefix: "y", Local: "n", URI: "urn:a"}
	require.True(t, a.Equal(b), "prefix is irrelevant once resolved")

	c := Name{Prefix: "x", Local: "n", URI: "urn:b"}
	require.False(t, a.Equal(c), "different URIs differ")

	// unresolved names compare by local part and prefix
	d := Name{Prefix: "x", Local: "n"}
	e := Name{Prefix: "x", Local: "n"}
	require.True(t, d.Equal(e))

	f := Name{Prefix: "y", Local: "n"}
	require.False(t, d.Equal(f))

	// no-prefix names count as resolved
	g := Name{Local: "n"}
	h := Name{Local: "n", URI: ""}
	require.True(t, g.Equal(h))
}

func TestAttributeValue(t *testing.T) {
	attr := Attribute{
		Name: Name{Local: "a"},
		Children: []Node{
			&Text{Content: "x"},
			&CharRef{Value: 0x21},
			&EntityRef{Name: "amp"},
		},
	}
	require.Equal(t, "x!&amp;", attr.Value())
}

func TestDocumentRoot(t *testing.T) {
	doc := &Document{
		Children: []Node{
			&Comment{Content: "c"},
			&Element{Name: Name{Local: "r"}},
		},
	}
	require.Equal(t, doc.Children[1], Node(doc.Root()))

	empty := &Document{}
	require.Nil(t, empty.Root())
}
