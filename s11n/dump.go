// Package s11n serializes neon node trees back to XML. Attribute order
// is preserved, and namespace declarations are emitted exactly where a
// prefix (or default namespace) enters scope, so that reparsing the
// output yields a structurally equal tree. An element without a
// namespace URI gets no xmlns="" declaration, so a default namespace
// undeclared under XML 1.1 does not survive the round trip.
package s11n

import (
	"fmt"
	"io"
	"strings"

	"github.com/lestrrat-go/neon/node"
)

type Dumper struct{}

// DumpDocument writes the XML declaration, the doctype when present, and
// every top level node.
func (d *Dumper) DumpDocument(out io.Writer, doc *node.Document) error {
	_, _ = io.WriteString(out, `<?xml version="`)
	version := doc.Version
	if version == "" {
		version = "1.0"
	}
	_, _ = io.WriteString(out, version+`"`)
	if doc.Encoding != "" {
		_, _ = io.WriteString(out, ` encoding="`+doc.Encoding+`"`)
	}
	switch doc.Standalone {
	case node.StandaloneExplicitYes:
		_, _ = io.WriteString(out, ` standalone="yes"`)
	case node.StandaloneExplicitNo:
		_, _ = io.WriteString(out, ` standalone="no"`)
	}
	_, _ = io.WriteString(out, "?>\n")

	if doc.IntSubset != nil {
		if err := d.dumpDTD(out, doc.IntSubset); err != nil {
			return err
		}
	}

	for _, n := range doc.Children {
		if err := d.DumpNode(out, n); err != nil {
			return err
		}
		_, _ = io.WriteString(out, "\n")
	}
	return nil
}

// DumpNode serializes a single node and its descendants.
func (d *Dumper) DumpNode(out io.Writer, n node.Node) error {
	scope := map[string]string{"xml": "http://www.w3.org/XML/1998/namespace"}
	return d.dumpNode(out, n, scope)
}

func (d *Dumper) dumpNode(out io.Writer, n node.Node, scope map[string]string) error {
	switch n := n.(type) {
	case *node.Element:
		return d.dumpElement(out, n, scope)
	case *node.Text:
		_, _ = io.WriteString(out, escapeText(n.Content))
	case *node.CDATA:
		_, _ = io.WriteString(out, "<![CDATA["+n.Content+"]]>")
	case *node.Comment:
		_, _ = io.WriteString(out, "<!--"+n.Content+"-->")
	case *node.CharRef:
		_, _ = fmt.Fprintf(out, "&#x%X;", n.Value)
	case *node.EntityRef:
		_, _ = io.WriteString(out, "&"+n.Name+";")
	case *node.ProcessingInstruction:
		_, _ = io.WriteString(out, "<?"+n.Target)
		if n.Data != "" {
			_, _ = io.WriteString(out, " "+n.Data)
		}
		_, _ = io.WriteString(out, "?>")
	case *node.Document:
		return d.DumpDocument(out, n)
	default:
		return fmt.Errorf("cannot serialize %s node", n.Type())
	}
	return nil
}

func (d *Dumper) dumpElement(out io.Writer, el *node.Element, scope map[string]string) error {
	// Collect the namespace declarations this element must introduce.
	type decl struct {
		prefix string
		uri    string
	}
	var decls []decl
	local := scope
	need := func(name node.Name) {
		if name.URI == "" {
			return
		}
		if local[name.Prefix] == name.URI {
			return
		}
		// fork the scope lazily
		if len(decls) == 0 {
			forked := make(map[string]string, len(scope)+1)
			for k, v := range scope {
				forked[k] = v
			}
			local = forked
		}
		local[name.Prefix] = name.URI
		decls = append(decls, decl{prefix: name.Prefix, uri: name.URI})
	}
	need(el.Name)
	for _, attr := range el.Attributes {
		if attr.Name.Prefix != "" {
			need(attr.Name)
		}
	}

	_, _ = io.WriteString(out, "<"+el.Name.String())
	for _, dc := range decls {
		if dc.prefix == "" {
			_, _ = io.WriteString(out, ` xmlns="`+escapeAttr(dc.uri)+`"`)
			continue
		}
		_, _ = io.WriteString(out, ` xmlns:`+dc.prefix+`="`+escapeAttr(dc.uri)+`"`)
	}
	for _, attr := range el.Attributes {
		_, _ = io.WriteString(out, " "+attr.Name.String()+`="`)
		for _, chunk := range attr.Children {
			switch c := chunk.(type) {
			case *node.Text:
				_, _ = io.WriteString(out, escapeAttr(c.Content))
			case *node.CharRef:
				_, _ = fmt.Fprintf(out, "&#x%X;", c.Value)
			case *node.EntityRef:
				_, _ = io.WriteString(out, "&"+c.Name+";")
			default:
				return fmt.Errorf("cannot serialize %s chunk in attribute value", chunk.Type())
			}
		}
		_, _ = io.WriteString(out, `"`)
	}

	if len(el.Children) == 0 {
		_, _ = io.WriteString(out, "/>")
		return nil
	}

	_, _ = io.WriteString(out, ">")
	for _, child := range el.Children {
		if err := d.dumpNode(out, child, local); err != nil {
			return err
		}
	}
	_, _ = io.WriteString(out, "</"+el.Name.String()+">")
	return nil
}

func (d *Dumper) dumpDTD(out io.Writer, dtd *node.DTD) error {
	_, _ = io.WriteString(out, "<!DOCTYPE "+dtd.Name)
	if ext := dtd.ExternalID; ext != nil {
		_, _ = io.WriteString(out, " "+formatExternalID(ext))
	}
	if len(dtd.Decls) > 0 {
		_, _ = io.WriteString(out, " [\n")
		for _, dc := range dtd.Decls {
			if err := d.dumpDecl(out, dc); err != nil {
				return err
			}
			_, _ = io.WriteString(out, "\n")
		}
		_, _ = io.WriteString(out, "]")
	}
	_, _ = io.WriteString(out, ">\n")
	return nil
}

func (d *Dumper) dumpDecl(out io.Writer, dc node.Decl) error {
	switch dc := dc.(type) {
	case *node.ElementDecl:
		_, _ = io.WriteString(out, "<!ELEMENT "+dc.Name.String()+" "+formatContentSpec(dc.Content)+">")
	case *node.AttlistDecl:
		_, _ = io.WriteString(out, "<!ATTLIST "+dc.Element.String())
		for _, def := range dc.Defs {
			_, _ = io.WriteString(out, "\n  "+def.Name.String()+" "+formatAttType(def)+" "+formatDefault(def))
		}
		_, _ = io.WriteString(out, ">")
	case *node.Entity:
		_, _ = io.WriteString(out, "<!ENTITY ")
		if dc.Parameter {
			_, _ = io.WriteString(out, "% ")
		}
		_, _ = io.WriteString(out, dc.Name+" ")
		if dc.Internal() {
			_, _ = io.WriteString(out, `"`+escapeAttr(flattenValue(dc.Value))+`"`)
		} else {
			_, _ = io.WriteString(out, formatExternalID(dc.ExternalID))
			if dc.NData != "" {
				_, _ = io.WriteString(out, " NDATA "+dc.NData)
			}
		}
		_, _ = io.WriteString(out, ">")
	case *node.NotationDecl:
		_, _ = io.WriteString(out, "<!NOTATION "+dc.Name+" "+formatExternalID(&dc.ExternalID)+">")
	case *node.PIDecl:
		_, _ = io.WriteString(out, "<?"+dc.Target)
		if dc.Data != "" {
			_, _ = io.WriteString(out, " "+dc.Data)
		}
		_, _ = io.WriteString(out, "?>")
	default:
		return fmt.Errorf("cannot serialize markup declaration %T", dc)
	}
	return nil
}

func formatExternalID(ext *node.ExternalID) string {
	if ext.IDType == node.ExternalPublic {
		s := `PUBLIC "` + ext.Public + `"`
		if ext.System != "" {
			s += ` "` + ext.System + `"`
		}
		return s
	}
	return `SYSTEM "` + ext.System + `"`
}

func formatContentSpec(cs node.ContentSpec) string {
	switch cs.ContentType {
	case node.EmptyContent:
		return "EMPTY"
	case node.AnyContent:
		return "ANY"
	case node.MixedContent:
		if len(cs.Names) == 0 {
			if cs.Repeat {
				return "(#PCDATA)*"
			}
			return "(#PCDATA)"
		}
		parts := make([]string, 0, len(cs.Names)+1)
		parts = append(parts, "#PCDATA")
		for _, n := range cs.Names {
			parts = append(parts, n.String())
		}
		return "(" + strings.Join(parts, " | ") + ")*"
	case node.ChildrenContent:
		return formatParticle(cs.Particle)
	}
	return ""
}

func formatParticle(cp *node.Particle) string {
	var s string
	switch cp.ParticleType {
	case node.NameParticle:
		s = cp.Name.String()
	case node.ChoiceParticle, node.SeqParticle:
		sep := ", "
		if cp.ParticleType == node.ChoiceParticle {
			sep = " | "
		}
		parts := make([]string, 0, len(cp.Children))
		for _, c := range cp.Children {
			parts = append(parts, formatParticle(c))
		}
		s = "(" + strings.Join(parts, sep) + ")"
	}
	if cp.Quantifier != 0 {
		s += string(cp.Quantifier)
	}
	return s
}

func formatAttType(def node.AttDef) string {
	switch def.AttType {
	case node.AttrCDATA:
		return "CDATA"
	case node.AttrID:
		return "ID"
	case node.AttrIDRef:
		return "IDREF"
	case node.AttrIDRefs:
		return "IDREFS"
	case node.AttrEntity:
		return "ENTITY"
	case node.AttrEntities:
		return "ENTITIES"
	case node.AttrNMToken:
		return "NMTOKEN"
	case node.AttrNMTokens:
		return "NMTOKENS"
	case node.AttrNotation:
		return "NOTATION (" + strings.Join(def.Names, " | ") + ")"
	case node.AttrEnumeration:
		return "(" + strings.Join(def.Names, " | ") + ")"
	}
	return ""
}

func formatDefault(def node.AttDef) string {
	switch def.Default {
	case node.AttrDefaultRequired:
		return "#REQUIRED"
	case node.AttrDefaultImplied:
		return "#IMPLIED"
	case node.AttrDefaultFixed:
		return `#FIXED "` + escapeAttr(flattenValue(def.Value)) + `"`
	}
	return `"` + escapeAttr(flattenValue(def.Value)) + `"`
}

func flattenValue(chunks []node.Node) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		switch c := chunk.(type) {
		case *node.Text:
			sb.WriteString(c.Content)
		case *node.CharRef:
			sb.WriteRune(c.Value)
		case *node.EntityRef:
			sb.WriteString("&" + c.Name + ";")
		}
	}
	return sb.String()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
