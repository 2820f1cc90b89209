package node

// Text is parsed character data.
type Text struct {
	Content string
}

func (*Text) Type() Type {
	return TextNode
}

// CDATA is the literal content of a CDATA section.
type CDATA struct {
	Content string
}

func (*CDATA) Type() Type {
	return CDATASectionNode
}

// CharRef is an unresolved numeric character reference.
type CharRef struct {
	Value rune
}

func (*CharRef) Type() Type {
	return CharRefNode
}

// EntityRef is an unresolved general entity reference.
type EntityRef struct {
	Name string
}

func (*EntityRef) Type() Type {
	return EntityRefNode
}
