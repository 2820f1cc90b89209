package neon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/neon/node"
)

func TestNamespacePrefixResolution(t *testing.T) {
	root, err := Parse([]byte(`<ns:root xmlns:ns="urn:x"><ns:c/></ns:root>`))
	require.NoError(t, err, "Parse should succeed")

	require.Equal(t, node.Name{Prefix: "ns", Local: "root", URI: "urn:x"}, root.Name)
	require.Empty(t, root.Attributes, "the xmlns:ns declaration is not in the tree")

	c := root.Children[0].(*node.Element)
	require.Equal(t, node.Name{Prefix: "ns", Local: "c", URI: "urn:x"}, c.Name)
}

func TestNamespaceDefault(t *testing.T) {
	root, err := Parse([]byte(`<r xmlns="urn:d"><c at="1"/></r>`))
	require.NoError(t, err)

	require.Equal(t, "urn:d", root.Name.URI, "default namespace applies to elements")
	c := root.Children[0].(*node.Element)
	require.Equal(t, "urn:d", c.Name.URI, "default namespace is inherited")
	require.Equal(t, "", c.Attributes[0].Name.URI, "default namespace does not apply to attributes")
}

func TestNamespaceImplicitXMLPrefix(t *testing.T) {
	root, err := Parse([]byte(`<r xml:lang="en"/>`))
	require.NoError(t, err)
	require.Equal(t, XMLNamespaceURI, root.Attributes[0].Name.URI)
}

func TestNamespaceUndeclaredPrefix(t *testing.T) {
	_, err := Parse([]byte(`<x:r/>`))
	require.Error(t, err)

	var nerr ErrNamespace
	require.True(t, errors.As(err, &nerr))
	require.Equal(t, NSCPrefixDeclared, nerr.Constraint)
}

func TestNamespaceDuplicateAttributes(t *testing.T) {
	_, err := Parse([]byte(`<r xmlns:a="u" xmlns:b="u" a:x="1" b:x="2"/>`))
	require.Error(t, err, "attributes resolving to the same name are rejected")

	var nerr ErrNamespace
	require.True(t, errors.As(err, &nerr))
	require.Equal(t, NSCAttributesUnique, nerr.Constraint)
}

func TestNamespaceUndeclaring(t *testing.T) {
	// XML 1.0 forbids undeclaring a non-empty default namespace
	_, err := Parse([]byte(`<r xmlns="u"><c xmlns=""/></r>`))
	require.Error(t, err)
	var nerr ErrNamespace
	require.True(t, errors.As(err, &nerr))
	require.Equal(t, NSCNoPrefixUndeclaring, nerr.Constraint)

	// ... and undeclaring a prefix
	_, err = Parse([]byte(`<r xmlns:p="u"><c xmlns:p=""/></r>`))
	require.Error(t, err)
	require.True(t, errors.As(err, &nerr))
	require.Equal(t, NSCNoPrefixUndeclaring, nerr.Constraint)

	// XML 1.1 allows both
	root, err := Parse([]byte(`<?xml version="1.1"?><r xmlns="u"><c xmlns=""/></r>`))
	require.NoError(t, err, "XML 1.1 permits undeclaring the default namespace")
	c := root.Children[0].(*node.Element)
	require.Equal(t, "", c.Name.URI)

	// xmlns="" with no default in scope is a no-op under 1.0
	_, err = Parse([]byte(`<r xmlns=""/>`))
	require.NoError(t, err)
}

func TestNamespaceResolutionIdempotent(t *testing.T) {
	root, err := Parse([]byte(`<ns:r xmlns:ns="urn:x" a="1"><ns:c/><plain/></ns:r>`))
	require.NoError(t, err, "Parse should succeed")

	again, err := ResolveNamespaces(root)
	require.NoError(t, err, "resolving a resolved tree should succeed")
	require.Equal(t, root, again, "resolution is the identity on resolved trees")
}

func TestNamespaceDisabled(t *testing.T) {
	root, err := Parse([]byte(`<ns:r xmlns:ns="urn:x"/>`), WithNamespaceResolution(false))
	require.NoError(t, err)
	require.Equal(t, node.Name{Prefix: "ns", Local: "r"}, root.Name, "name stays unresolved")
	require.Len(t, root.Attributes, 1, "the xmlns declaration stays in the tree")
}
