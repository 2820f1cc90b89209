package node

// Element is an XML element: a name, an ordered attribute list, and an
// ordered child list.
type Element struct {
	Name       Name
	Attributes []Attribute
	Children   []Node
}

func (*Element) Type() Type {
	return ElementNode
}

// Attribute returns the first attribute whose name equals the given name,
// per Name.Equal.
func (e *Element) Attribute(name Name) (Attribute, bool) {
	for _, attr := range e.Attributes {
		if attr.Name.Equal(name) {
			return attr, true
		}
	}
	return Attribute{}, false
}
