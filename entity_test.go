package neon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/neon/node"
)

func TestResolvePredefinedEntities(t *testing.T) {
	root, err := Parse([]byte(`<r>a&amp;b&#x41;c</r>`), WithEntityResolution(true))
	require.NoError(t, err, "Parse should succeed")
	require.Equal(t, []node.Node{
		&node.Text{Content: "a"},
		&node.Text{Content: "&"},
		&node.Text{Content: "b"},
		&node.Text{Content: "A"},
		&node.Text{Content: "c"},
	}, root.Children, "references resolve in place, text is not merged")
}

func TestResolveLeavesReferencesWithoutOption(t *testing.T) {
	root, err := Parse([]byte(`<r>a&amp;b&#x41;c</r>`))
	require.NoError(t, err)
	require.Equal(t, []node.Node{
		&node.Text{Content: "a"},
		&node.EntityRef{Name: "amp"},
		&node.Text{Content: "b"},
		&node.CharRef{Value: 0x41},
		&node.Text{Content: "c"},
	}, root.Children)
}

func TestResolveDeclaredEntity(t *testing.T) {
	root, err := Parse(
		[]byte(`<!DOCTYPE r [<!ENTITY who "World">]><r>Hello &who;!</r>`),
		WithEntityResolution(true))
	require.NoError(t, err)
	require.Equal(t, []node.Node{
		&node.Text{Content: "Hello "},
		&node.Text{Content: "World"},
		&node.Text{Content: "!"},
	}, root.Children)
}

func TestResolveNestedEntity(t *testing.T) {
	root, err := Parse(
		[]byte(`<!DOCTYPE r [<!ENTITY inner "X"><!ENTITY outer "a&inner;b">]><r>&outer;</r>`),
		WithEntityResolution(true))
	require.NoError(t, err)
	require.Equal(t, []node.Node{&node.Text{Content: "aXb"}}, root.Children,
		"entity replacement text is expanded recursively")
}

func TestResolveUndeclaredEntity(t *testing.T) {
	_, err := Parse([]byte(`<r>&undeclared;</r>`), WithEntityResolution(true))
	require.Error(t, err)

	var werr ErrWellFormedness
	require.True(t, errors.As(err, &werr))
	require.Equal(t, WFCEntityDeclared, werr.Violation)
}

func TestResolveRecursiveEntity(t *testing.T) {
	_, err := Parse(
		[]byte(`<!DOCTYPE r [<!ENTITY a "&b;"><!ENTITY b "&a;">]><r>&a;</r>`),
		WithEntityResolution(true))
	require.Error(t, err)

	var werr ErrWellFormedness
	require.True(t, errors.As(err, &werr))
	require.Equal(t, WFCNoRecursion, werr.Violation)
}

func TestResolveAttributeValues(t *testing.T) {
	root, err := Parse([]byte(`<r a="x&amp;y&#x21;"/>`), WithEntityResolution(true))
	require.NoError(t, err)

	attr := root.Attributes[0]
	require.Equal(t, []node.Node{&node.Text{Content: "x&y!"}}, attr.Children,
		"attribute values are fully expanded and flattened")
	require.Equal(t, "x&y!", attr.Value())
}

func TestResolveAttributeEntityExpansion(t *testing.T) {
	root, err := Parse(
		[]byte(`<!DOCTYPE r [<!ENTITY sep " - ">]><r a="1&sep;2"/>`),
		WithEntityResolution(true))
	require.NoError(t, err)
	require.Equal(t, "1 - 2", root.Attributes[0].Value())
}

func TestResolveIdempotent(t *testing.T) {
	root, err := Parse(
		[]byte(`<!DOCTYPE r [<!ENTITY who "World">]><r a="&who;">Hi &who; &#x21;</r>`),
		WithEntityResolution(true))
	require.NoError(t, err)

	again, err := ResolveReferences(root, nil)
	require.NoError(t, err, "resolving a resolved tree should succeed")
	require.Equal(t, root, again, "resolution is idempotent")
}

func TestResolveUnparsedEntityReference(t *testing.T) {
	_, err := Parse(
		[]byte(`<!DOCTYPE r [<!NOTATION png PUBLIC "image/png"><!ENTITY pic SYSTEM "p.png" NDATA png>]><r>&pic;</r>`),
		WithEntityResolution(true))
	require.Error(t, err, "unparsed entities may not be referenced in content")
}
