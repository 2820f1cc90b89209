package node

// AttributeType represents the declared type of an attribute
type AttributeType int

const (
	AttrInvalid AttributeType = iota
	AttrCDATA
	AttrID
	AttrIDRef
	AttrIDRefs
	AttrEntity
	AttrEntities
	AttrNMToken
	AttrNMTokens
	AttrEnumeration
	AttrNotation
)

// AttributeDefault represents the default declaration of an attribute
type AttributeDefault int

const (
	AttrDefaultNone AttributeDefault = iota
	AttrDefaultRequired
	AttrDefaultImplied
	AttrDefaultFixed
)

// AttDef is a single attribute definition inside an ATTLIST declaration.
// Names holds the notation names or enumeration tokens for AttrNotation
// and AttrEnumeration types. Value holds the default value chunks for
// AttrDefaultNone and AttrDefaultFixed.
type AttDef struct {
	Name    Name
	AttType AttributeType
	Names   []string
	Default AttributeDefault
	Value   []Node
}

// AttlistDecl records an ATTLIST declaration.
type AttlistDecl struct {
	Element Name
	Defs    []AttDef
}

func (*AttlistDecl) decl() {}
