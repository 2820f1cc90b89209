package node

// DTD holds the name, external identifier, and recorded markup
// declarations of a document type declaration. Content models are
// recorded but never enforced.
type DTD struct {
	Name       string
	ExternalID *ExternalID
	Decls      []Decl
}

// Decl is a markup declaration recorded from the internal subset.
type Decl interface {
	decl()
}

// Entity returns the first declared general entity with the given name.
// Per the XML recommendation, the first declaration of an entity is the
// one that binds.
func (d *DTD) Entity(name string) (*Entity, bool) {
	return d.entity(name, false)
}

// ParameterEntity returns the first declared parameter entity with the
// given name.
func (d *DTD) ParameterEntity(name string) (*Entity, bool) {
	return d.entity(name, true)
}

func (d *DTD) entity(name string, param bool) (*Entity, bool) {
	if d == nil {
		return nil, false
	}
	for _, decl := range d.Decls {
		e, ok := decl.(*Entity)
		if !ok {
			continue
		}
		if e.Parameter == param && e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// ExternalIDType discriminates SYSTEM identifiers from PUBLIC ones.
type ExternalIDType int

const (
	ExternalSystem ExternalIDType = iota + 1
	ExternalPublic
)

// ExternalID is an external identifier. System may be empty for PUBLIC
// identifiers in notation declarations.
type ExternalID struct {
	IDType ExternalIDType
	Public string
	System string
}

// ContentType represents the kind of an element content specification
type ContentType int

const (
	EmptyContent ContentType = iota + 1
	AnyContent
	MixedContent
	ChildrenContent
)

// ContentSpec is the content specification of an ELEMENT declaration.
// Names holds the optional name list of a Mixed model; Particle holds the
// content particle tree of a Children model.
type ContentSpec struct {
	ContentType ContentType
	Names       []Name
	Repeat      bool
	Particle    *Particle
}

// ParticleType represents the kind of a content particle
type ParticleType int

const (
	NameParticle ParticleType = iota + 1
	ChoiceParticle
	SeqParticle
)

// Particle is one node of a children content model. Quantifier is one of
// 0, '?', '*' or '+'.
type Particle struct {
	ParticleType ParticleType
	Name         Name
	Children     []*Particle
	Quantifier   byte
}

// ElementDecl records an ELEMENT declaration.
type ElementDecl struct {
	Name    Name
	Content ContentSpec
}

func (*ElementDecl) decl() {}

// NotationDecl records a NOTATION declaration.
type NotationDecl struct {
	Name       string
	ExternalID ExternalID
}

func (*NotationDecl) decl() {}

// PIDecl records a processing instruction that appeared inside the
// internal subset.
type PIDecl struct {
	Target string
	Data   string
}

func (*PIDecl) decl() {}
