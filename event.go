package neon

import "github.com/lestrrat-go/neon/node"

// EventType represents the type of an event emitted by the pull parser
type EventType int

const (
	StartDocumentEvent EventType = iota + 1
	EndDocumentEvent
	XMLDeclEvent
	DoctypeEvent
	StartTagEvent
	EndTagEvent
	TextEvent
	CharRefEvent
	EntityRefEvent
	CommentEvent
	PIEvent
	ExpectAttributesEvent
	ExpectAttributeValueEvent
	ExpectNodesEvent
)

func (t EventType) String() string {
	switch t {
	case StartDocumentEvent:
		return "start-document"
	case EndDocumentEvent:
		return "end-document"
	case XMLDeclEvent:
		return "xml-decl"
	case DoctypeEvent:
		return "doctype"
	case StartTagEvent:
		return "start-tag"
	case EndTagEvent:
		return "end-tag"
	case TextEvent:
		return "text"
	case CharRefEvent:
		return "char-ref"
	case EntityRefEvent:
		return "entity-ref"
	case CommentEvent:
		return "comment"
	case PIEvent:
		return "pi"
	case ExpectAttributesEvent:
		return "expect-attributes"
	case ExpectAttributeValueEvent:
		return "expect-attribute-value"
	case ExpectNodesEvent:
		return "expect-nodes"
	default:
		return "unknown"
	}
}

// Event is one item of the pull parser's output stream. Every event
// carries the position at which its construct started.
type Event interface {
	Pos() Position
	EventType() EventType
}

// StartDocument is delivered once, before any other event.
type StartDocument struct {
	Position
}

func (*StartDocument) EventType() EventType { return StartDocumentEvent }

// EndDocument is delivered once, after the epilogue is exhausted.
type EndDocument struct {
	Position
}

func (*EndDocument) EventType() EventType { return EndDocumentEvent }

// XMLDecl is the XML declaration. Encoding is empty when absent;
// Standalone is StandaloneImplicitNo when absent.
type XMLDecl struct {
	Position
	Version    string
	Encoding   string
	Standalone node.StandaloneType
}

func (*XMLDecl) EventType() EventType { return XMLDeclEvent }

// Doctype is the document type declaration. Subset is nil when no
// internal subset was present.
type Doctype struct {
	Position
	Name       string
	ExternalID *node.ExternalID
	Subset     *node.DTD
}

func (*Doctype) EventType() EventType { return DoctypeEvent }

// StartTag opens an element. When Empty is true the tag was self closing
// and the parser synthesizes the paired EndTag as the next event.
type StartTag struct {
	Position
	Name       node.Name
	Attributes []node.Attribute
	Empty      bool
}

func (*StartTag) EventType() EventType { return StartTagEvent }

// EndTag closes an element.
type EndTag struct {
	Position
	Name node.Name
}

func (*EndTag) EventType() EventType { return EndTagEvent }

// Text is character data. CDATA marks content of a CDATA section.
type Text struct {
	Position
	Content string
	CDATA   bool
}

func (*Text) EventType() EventType { return TextEvent }

// CharRef is a numeric character reference in element content.
type CharRef struct {
	Position
	Value rune
}

func (*CharRef) EventType() EventType { return CharRefEvent }

// EntityRef is a general entity reference in element content.
type EntityRef struct {
	Position
	Name string
}

func (*EntityRef) EventType() EventType { return EntityRefEvent }

// Comment is a comment, in any document position.
type Comment struct {
	Position
	Content string
}

func (*Comment) EventType() EventType { return CommentEvent }

// PI is a processing instruction.
type PI struct {
	Position
	Target string
	Data   string
}

func (*PI) EventType() EventType { return PIEvent }

// ExpectAttributes requests externally supplied attributes. It is emitted
// in partial mode when input ends inside a start tag, between attributes.
// Attributes holds the attributes read since the tag opened or since the
// previous placeholder.
type ExpectAttributes struct {
	Position
	Name       node.Name
	Attributes []node.Attribute
}

func (*ExpectAttributes) EventType() EventType { return ExpectAttributesEvent }

// ExpectAttributeValue requests an externally supplied attribute value.
// It is emitted in partial mode when input ends after an attribute name
// and its '=' but before the value delimiter.
type ExpectAttributeValue struct {
	Position
	Name       node.Name
	Attributes []node.Attribute
	Attribute  node.Name
}

func (*ExpectAttributeValue) EventType() EventType { return ExpectAttributeValueEvent }

// ExpectNodes requests externally supplied nodes. It is emitted in
// partial mode when input ends in element content, or anywhere in the
// prolog or epilogue.
type ExpectNodes struct {
	Position
}

func (*ExpectNodes) EventType() EventType { return ExpectNodesEvent }
