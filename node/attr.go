package node

// Attribute is an attribute of an element. Until references are resolved
// its value is an ordered sequence of Text, CharRef and EntityRef chunks,
// not a flat string.
type Attribute struct {
	Name     Name
	Children []Node
}

func (Attribute) Type() Type {
	return AttributeNode
}

// NewAttribute builds an attribute whose value is a single text chunk.
func NewAttribute(name Name, value string) Attribute {
	return Attribute{
		Name:     name,
		Children: []Node{&Text{Content: value}},
	}
}

// Value flattens the value chunks to a string. Character references are
// substituted; unresolved entity references are rendered in their lexical
// form. For fully resolved attributes this is the attribute value proper.
func (a Attribute) Value() string {
	var sb []byte
	for _, chunk := range a.Children {
		switch c := chunk.(type) {
		case *Text:
			sb = append(sb, c.Content...)
		case *CDATA:
			sb = append(sb, c.Content...)
		case *CharRef:
			sb = append(sb, string(c.Value)...)
		case *EntityRef:
			sb = append(sb, '&')
			sb = append(sb, c.Name...)
			sb = append(sb, ';')
		}
	}
	return string(sb)
}
