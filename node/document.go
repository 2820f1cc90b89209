package node

// StandaloneType represents the standalone status of a document
type StandaloneType int

const (
	StandaloneInvalidValue StandaloneType = -99
	StandaloneImplicitNo   StandaloneType = -2
	StandaloneNoXMLDecl    StandaloneType = -1
	StandaloneExplicitNo   StandaloneType = 0
	StandaloneExplicitYes  StandaloneType = 1
)

// Document wraps the root element with the values recorded from the XML
// declaration and the DOCTYPE declaration. Children holds the root element
// plus any top level comments and processing instructions, in document
// order.
type Document struct {
	Version    string
	Encoding   string
	Standalone StandaloneType
	IntSubset  *DTD
	Children   []Node
}

func (*Document) Type() Type {
	return DocumentNode
}

// Root returns the document element.
func (d *Document) Root() *Element {
	for _, c := range d.Children {
		if e, ok := c.(*Element); ok {
			return e
		}
	}
	return nil
}
