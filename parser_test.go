package neon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/neon/node"
)

func TestParseEmptyRoot(t *testing.T) {
	root, err := Parse([]byte(`<r/>`))
	require.NoError(t, err, "Parse should succeed")
	require.Equal(t, &node.Element{Name: node.Name{Local: "r"}}, root)
}

func TestParseRootWithAttribute(t *testing.T) {
	root, err := Parse([]byte(`<root a="1"/>`))
	require.NoError(t, err)
	require.Equal(t, &node.Element{
		Name: node.Name{Local: "root"},
		Attributes: []node.Attribute{
			{Name: node.Name{Local: "a"}, Children: []node.Node{&node.Text{Content: "1"}}},
		},
	}, root)
}

func TestParseMixedContent(t *testing.T) {
	root, err := Parse([]byte(`<r><!--c--><?pi body?><![CDATA[<x>]]></r>`))
	require.NoError(t, err)
	require.Equal(t, []node.Node{
		&node.Comment{Content: "c"},
		&node.ProcessingInstruction{Target: "pi", Data: "body"},
		&node.CDATA{Content: "<x>"},
	}, root.Children)
}

func TestParseAttributeOrder(t *testing.T) {
	root, err := Parse([]byte(`<r b="2" a="1" c="3"/>`))
	require.NoError(t, err)

	var names []string
	for _, attr := range root.Attributes {
		names = append(names, attr.Name.Local)
	}
	require.Equal(t, []string{"b", "a", "c"}, names, "attribute order follows the source")
}

func TestParseXMLDecl(t *testing.T) {
	const content = `<root />`
	inputs := map[string]struct {
		version    string
		encoding   string
		standalone node.StandaloneType
	}{
		`<?xml version="1.0"?>` + content:                                   {"1.0", "", node.StandaloneImplicitNo},
		`<?xml version="1.0" encoding="euc-jp"?>` + content:                 {"1.0", "euc-jp", node.StandaloneImplicitNo},
		`<?xml version="1.0" encoding="cp932" standalone='yes'?>` + content: {"1.0", "cp932", node.StandaloneExplicitYes},
		`<?xml version="1.1" standalone="no"?>` + content:                   {"1.1", "", node.StandaloneExplicitNo},
		content: {"1.0", "", node.StandaloneNoXMLDecl},
	}

	for input, expect := range inputs {
		doc, err := ParseDocument([]byte(input))
		require.NoError(t, err, "Parse should succeed for '%s'", input)

		require.Equal(t, expect.version, doc.Version, "version matches for '%s'", input)
		require.Equal(t, expect.encoding, doc.Encoding, "encoding matches for '%s'", input)
		require.Equal(t, expect.standalone, doc.Standalone, "standalone matches for '%s'", input)
	}
}

func TestParseDocumentChildren(t *testing.T) {
	doc, err := ParseDocument([]byte("<!--before--><r/><?after x?>"))
	require.NoError(t, err)
	require.Len(t, doc.Children, 3, "top level comments and PIs are kept")
	require.Equal(t, &node.Comment{Content: "before"}, doc.Children[0])
	require.Equal(t, doc.Root(), doc.Children[1])
	require.Equal(t, &node.ProcessingInstruction{Target: "after", Data: "x"}, doc.Children[2])
}

func TestParseTagMismatch(t *testing.T) {
	_, err := Parse([]byte(`<a></b>`))
	require.Error(t, err)

	var werr ErrWellFormedness
	require.True(t, errors.As(err, &werr))
	require.Equal(t, WFCElementTypeMatch, werr.Violation)

	var perr ErrParseError
	require.True(t, errors.As(err, &perr), "failure carries a position")
	require.Equal(t, 1, perr.LineNumber)
	require.Equal(t, 4, perr.Column, "position of the offending end tag")
}

func TestParseMissingRoot(t *testing.T) {
	_, err := Parse([]byte(``))
	require.True(t, errors.Is(err, ErrMissingRootElement))

	_, err = Parse([]byte("  \n  "))
	require.True(t, errors.Is(err, ErrMissingRootElement))
}

func TestParseNestedElements(t *testing.T) {
	root, err := Parse([]byte(`<a><b>x</b><c/></a>`))
	require.NoError(t, err)
	require.Equal(t, &node.Element{
		Name: node.Name{Local: "a"},
		Children: []node.Node{
			&node.Element{
				Name:     node.Name{Local: "b"},
				Children: []node.Node{&node.Text{Content: "x"}},
			},
			&node.Element{Name: node.Name{Local: "c"}},
		},
	}, root)
}

func TestParseDoctypeRecorded(t *testing.T) {
	doc, err := ParseDocument([]byte(`<!DOCTYPE r [<!ENTITY e "v">]><r/>`))
	require.NoError(t, err)
	require.NotNil(t, doc.IntSubset)
	require.Equal(t, "r", doc.IntSubset.Name)

	e, ok := doc.IntSubset.Entity("e")
	require.True(t, ok)
	require.Equal(t, []node.Node{&node.Text{Content: "v"}}, e.Value)
}
