package neon

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/neon/node"
)

// The predefined entities are always present, whether or not the
// document declares anything.
var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": "\"",
}

func resolvePredefinedEntity(name string) (string, bool) {
	v, ok := predefinedEntities[name]
	return v, ok
}

// ResolveReferences returns a copy of el in which every character
// reference and general entity reference has been substituted with its
// replacement text, recursively. Attribute values are fully expanded and
// flattened to a single text chunk. dtd supplies declared general
// entities and may be nil.
//
// Resolution is idempotent: applying it to an already resolved tree
// returns an equal tree.
func ResolveReferences(el *node.Element, dtd *node.DTD) (*node.Element, error) {
	r := &refResolver{dtd: dtd, expanding: make(map[string]bool)}
	return r.resolveElement(el)
}

type refResolver struct {
	dtd       *node.DTD
	expanding map[string]bool
}

func (r *refResolver) resolveElement(el *node.Element) (*node.Element, error) {
	out := &node.Element{Name: el.Name}

	for _, attr := range el.Attributes {
		value, err := r.flattenChunks(attr.Children)
		if err != nil {
			return nil, err
		}
		out.Attributes = append(out.Attributes, node.Attribute{
			Name:     attr.Name,
			Children: []node.Node{&node.Text{Content: value}},
		})
	}

	for _, child := range el.Children {
		switch c := child.(type) {
		case *node.Element:
			resolved, err := r.resolveElement(c)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, resolved)
		case *node.CharRef:
			out.Children = append(out.Children, &node.Text{Content: string(c.Value)})
		case *node.EntityRef:
			text, err := r.expand(c.Name)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, &node.Text{Content: text})
		default:
			out.Children = append(out.Children, child)
		}
	}
	return out, nil
}

// flattenChunks expands an attribute value's chunk sequence to a string.
func (r *refResolver) flattenChunks(chunks []node.Node) (string, error) {
	var sb strings.Builder
	for _, chunk := range chunks {
		switch c := chunk.(type) {
		case *node.Text:
			sb.WriteString(c.Content)
		case *node.CDATA:
			sb.WriteString(c.Content)
		case *node.CharRef:
			sb.WriteRune(c.Value)
		case *node.EntityRef:
			text, err := r.expand(c.Name)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		default:
			return "", fmt.Errorf("unexpected %s node in attribute value", chunk.Type())
		}
	}
	return sb.String(), nil
}

// expand produces the replacement text of a general entity. Each entity
// is marked while its replacement is being expanded so that recursive
// references fail instead of looping.
func (r *refResolver) expand(name string) (string, error) {
	if v, ok := resolvePredefinedEntity(name); ok {
		return v, nil
	}

	ent, ok := r.dtd.Entity(name)
	if !ok {
		return "", wfcError(WFCEntityDeclared, fmt.Errorf("entity %q not declared", name))
	}
	if ent.NData != "" {
		return "", wfcError(WFCEntityDeclared, fmt.Errorf("entity %q: %s", name, ErrUnparsedEntity))
	}
	if !ent.Internal() {
		return "", fmt.Errorf("entity %q: %s", name, ErrExternalEntity)
	}
	if r.expanding[name] {
		return "", wfcError(WFCNoRecursion, fmt.Errorf("entity %q references itself", name))
	}

	r.expanding[name] = true
	defer delete(r.expanding, name)

	var sb strings.Builder
	for _, chunk := range ent.Value {
		switch c := chunk.(type) {
		case *node.Text:
			sb.WriteString(c.Content)
		case *node.CharRef:
			sb.WriteRune(c.Value)
		case *node.EntityRef:
			text, err := r.expand(c.Name)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}
