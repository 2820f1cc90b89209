package neon

import (
	"fmt"

	"github.com/lestrrat-go/neon/node"
)

// ResolveNamespaces returns a copy of el in which every element and
// attribute name carries its namespace URI. Namespace declaration
// attributes update the prefix environment and are stripped from the
// result. The default namespace applies to element names only.
//
// Under XML 1.1 (WithXMLVersion("1.1")) a declaration with an empty
// value undeclares its prefix; under XML 1.0 that is a namespace
// constraint violation, except that xmlns="" is accepted as a no-op
// when no default namespace is in scope.
//
// Resolution is idempotent: names that already carry a URI are kept.
func ResolveNamespaces(el *node.Element, options ...ResolveOption) (*node.Element, error) {
	var r nsResolver
	for _, option := range options {
		switch option.Ident() {
		case identXMLVersion{}:
			r.xml11 = option.Value().(string) == "1.1"
		}
	}
	env := map[string]string{"xml": XMLNamespaceURI}
	return r.resolveElement(el, env)
}

type nsResolver struct {
	xml11 bool
}

func (r *nsResolver) resolveElement(el *node.Element, env map[string]string) (*node.Element, error) {
	// A fresh scope is only materialized when this element declares
	// something; otherwise the parent scope is shared.
	scope := env
	forked := false
	fork := func() {
		if forked {
			return
		}
		scope = make(map[string]string, len(env)+1)
		for k, v := range env {
			scope[k] = v
		}
		forked = true
	}

	var attrs []node.Attribute
	for _, attr := range el.Attributes {
		prefix, local := attr.Name.Prefix, attr.Name.Local
		switch {
		case prefix == "" && local == "xmlns":
			uri := attr.Value()
			if uri == "" {
				if !r.xml11 {
					if scope[""] != "" {
						return nil, nsError(NSCNoPrefixUndeclaring, fmt.Errorf("cannot undeclare the default namespace under XML 1.0"))
					}
					continue
				}
				fork()
				delete(scope, "")
				continue
			}
			fork()
			scope[""] = uri
		case prefix == "xmlns":
			uri := attr.Value()
			if local == "xml" && uri != XMLNamespaceURI {
				return nil, nsError(NSCPrefixDeclared, fmt.Errorf("prefix \"xml\" must be bound to %q", XMLNamespaceURI))
			}
			if uri == "" {
				if !r.xml11 {
					return nil, nsError(NSCNoPrefixUndeclaring, fmt.Errorf("cannot undeclare prefix %q under XML 1.0", local))
				}
				fork()
				delete(scope, local)
				continue
			}
			fork()
			scope[local] = uri
		default:
			attrs = append(attrs, attr)
		}
	}

	name, err := r.resolveName(el.Name, scope, true)
	if err != nil {
		return nil, err
	}
	out := &node.Element{Name: name}

	// Attributes never take the default namespace, and their resolved
	// names must be unique within the element. The prefix does not
	// participate in the comparison: two prefixes bound to the same URI
	// still collide.
	seen := make(map[node.Name]struct{}, len(attrs))
	for _, attr := range attrs {
		aname, err := r.resolveName(attr.Name, scope, false)
		if err != nil {
			return nil, err
		}
		key := node.Name{Local: aname.Local, URI: aname.URI}
		if _, dup := seen[key]; dup {
			return nil, nsError(NSCAttributesUnique, fmt.Errorf("duplicate attribute %q", aname))
		}
		seen[key] = struct{}{}
		out.Attributes = append(out.Attributes, node.Attribute{Name: aname, Children: attr.Children})
	}

	for _, child := range el.Children {
		if e, ok := child.(*node.Element); ok {
			resolved, err := r.resolveElement(e, scope)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, resolved)
			continue
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

func (r *nsResolver) resolveName(name node.Name, scope map[string]string, useDefault bool) (node.Name, error) {
	if name.URI != "" {
		return name, nil
	}
	if name.Prefix == "" {
		if useDefault {
			name.URI = scope[""]
		}
		return name, nil
	}
	uri, ok := scope[name.Prefix]
	if !ok {
		return node.Name{}, nsError(NSCPrefixDeclared, fmt.Errorf("prefix %q not declared", name.Prefix))
	}
	name.URI = uri
	return name, nil
}
