package node

// Entity records an ENTITY declaration, general or parameter. An internal
// entity carries its replacement value as an ordered sequence of Text,
// CharRef and EntityRef chunks; an external one carries its external
// identifier and, for unparsed general entities, the notation name.
type Entity struct {
	Name       string
	Parameter  bool
	Value      []Node
	ExternalID *ExternalID
	NData      string
}

func (*Entity) decl() {}

// Internal reports whether the entity carries inline replacement text.
func (e *Entity) Internal() bool {
	return e.ExternalID == nil
}
