package neon

import (
	"github.com/lestrrat-go/pdebug"

	"github.com/lestrrat-go/neon/node"
)

// Parser is the tree building facade over the pull parser. The zero
// configuration resolves namespaces and leaves character and entity
// references as chunks in the tree.
type Parser struct {
	resolveEntities   bool
	resolveNamespaces bool
}

// NewParser creates a parser with the given options.
func NewParser(options ...ParseOption) *Parser {
	p := &Parser{resolveNamespaces: true}
	for _, option := range options {
		switch option.Ident() {
		case identEntityResolution{}:
			p.resolveEntities = option.Value().(bool)
		case identNamespaceResolution{}:
			p.resolveNamespaces = option.Value().(bool)
		}
	}
	return p
}

// Parse parses a complete document and returns its root element.
func Parse(data []byte, options ...ParseOption) (*node.Element, error) {
	return NewParser(options...).Parse(data)
}

// ParseDocument parses a complete document and returns the Document
// wrapper carrying the XML declaration values.
func ParseDocument(data []byte, options ...ParseOption) (*node.Document, error) {
	return NewParser(options...).ParseDocument(data)
}

// ParseParts parses a templated document and returns its root element.
// sources and args interleave: k source fragments bracket k-1 arguments.
// Each argument fills the placeholder reached at the end of the
// preceding fragment: a []node.Attribute for an attribute position, any
// value (or nil, to drop the attribute) for an attribute value position,
// or a []node.Node for a content position.
func ParseParts(sources [][]byte, args []interface{}, options ...ParseOption) (*node.Element, error) {
	return NewParser(options...).ParseParts(sources, args)
}

// ParsePartsDocument is ParseParts returning the Document wrapper.
func ParsePartsDocument(sources [][]byte, args []interface{}, options ...ParseOption) (*node.Document, error) {
	return NewParser(options...).ParsePartsDocument(sources, args)
}

func (p *Parser) Parse(data []byte) (*node.Element, error) {
	doc, err := p.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.Root(), nil
}

func (p *Parser) ParseDocument(data []byte) (*node.Document, error) {
	return p.parseDocument([][]byte{data}, nil)
}

func (p *Parser) ParseParts(sources [][]byte, args []interface{}) (*node.Element, error) {
	doc, err := p.ParsePartsDocument(sources, args)
	if err != nil {
		return nil, err
	}
	return doc.Root(), nil
}

func (p *Parser) ParsePartsDocument(sources [][]byte, args []interface{}) (*node.Document, error) {
	return p.parseDocument(sources, args)
}

func (p *Parser) parseDocument(sources [][]byte, args []interface{}) (*node.Document, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Parser.parseDocument")
		defer g.End()
	}

	b := newTreeBuilder(sources, args)
	doc, err := b.build()
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if p.resolveNamespaces {
		resolved, err := ResolveNamespaces(root, WithXMLVersion(doc.Version))
		if err != nil {
			return nil, err
		}
		doc.Children = replaceRoot(doc.Children, root, resolved)
		root = resolved
	}
	if p.resolveEntities {
		resolved, err := ResolveReferences(root, doc.IntSubset)
		if err != nil {
			return nil, err
		}
		doc.Children = replaceRoot(doc.Children, root, resolved)
	}
	return doc, nil
}

func replaceRoot(children []node.Node, old, resolved *node.Element) []node.Node {
	out := make([]node.Node, len(children))
	for i, c := range children {
		if c == node.Node(old) {
			out[i] = resolved
			continue
		}
		out[i] = c
	}
	return out
}
