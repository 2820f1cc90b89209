package neon

import (
	"fmt"

	"github.com/lestrrat-go/pdebug"
	"github.com/pkg/errors"

	"github.com/lestrrat-go/neon/internal/debug"
	"github.com/lestrrat-go/neon/internal/stack"
	"github.com/lestrrat-go/neon/node"
)

// treeBuilder consumes the pull parser's events and assembles the
// document tree. It maintains a stack of open start tags and a parallel
// stack of child-list builders; the bottom builder collects the root
// element along with any top level comments and processing instructions.
//
// In templating mode it also reacts to placeholder events: it splices
// the caller's arguments into its builders and feeds the parser the next
// source fragment.
type treeBuilder struct {
	p       *PullParser
	sources [][]byte
	args    []interface{}
	tags    stack.Stack[*StartTag]
	kids    stack.Stack[[]node.Node]
	attrBuf []node.Attribute
	doc     *node.Document
}

func newTreeBuilder(sources [][]byte, args []interface{}) *treeBuilder {
	b := &treeBuilder{
		p:       NewPullParser(sources[0], WithPartial(len(sources) > 1)),
		sources: sources[1:],
		args:    args,
	}
	b.kids.Push(nil)
	return b
}

// build drives the event loop to completion and returns the document.
func (b *treeBuilder) build() (*node.Document, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("treeBuilder.build")
		defer g.End()
	}

	b.doc = &node.Document{
		Version:    "1.0",
		Standalone: node.StandaloneNoXMLDecl,
	}

	for {
		ev, err := b.p.Next()
		if err != nil {
			return nil, err
		}
		done, err := b.dispatch(ev)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	doc, err := b.finish()
	if err != nil {
		return nil, err
	}
	if debug.Enabled {
		debug.Dump(doc)
	}
	return doc, nil
}

func (b *treeBuilder) dispatch(ev Event) (bool, error) {
	switch ev := ev.(type) {
	case *StartDocument:
		// nothing to record

	case *XMLDecl:
		b.doc.Version = ev.Version
		b.doc.Encoding = ev.Encoding
		b.doc.Standalone = ev.Standalone

	case *Doctype:
		b.doc.IntSubset = ev.Subset

	case *StartTag:
		attrs := ev.Attributes
		if len(b.attrBuf) > 0 {
			attrs = append(b.attrBuf, attrs...)
			b.attrBuf = nil
		}
		b.tags.Push(&StartTag{Position: ev.Position, Name: ev.Name, Attributes: attrs})
		b.kids.Push(nil)

	case *EndTag:
		open, ok := b.tags.Pop()
		if !ok {
			return false, ErrParseError{
				Err:        syntaxError("42", fmt.Errorf("end tag %q without start tag", ev.Name)),
				LineNumber: ev.Line,
				Column:     ev.Column,
			}
		}
		if !open.Name.Equal(ev.Name) {
			return false, ErrParseError{
				Err:        wfcError(WFCElementTypeMatch, fmt.Errorf("closing tag does not match ('%s' != '%s')", open.Name, ev.Name)),
				LineNumber: ev.Line,
				Column:     ev.Column,
			}
		}
		children, _ := b.kids.Pop()
		b.append(&node.Element{Name: open.Name, Attributes: open.Attributes, Children: children})

	case *Text:
		if ev.CDATA {
			b.append(&node.CDATA{Content: ev.Content})
		} else {
			b.append(&node.Text{Content: ev.Content})
		}

	case *CharRef:
		b.append(&node.CharRef{Value: ev.Value})

	case *EntityRef:
		b.append(&node.EntityRef{Name: ev.Name})

	case *Comment:
		b.append(&node.Comment{Content: ev.Content})

	case *PI:
		b.append(&node.ProcessingInstruction{Target: ev.Target, Data: ev.Data})

	case *ExpectAttributes:
		b.attrBuf = append(b.attrBuf, ev.Attributes...)
		arg, err := b.nextArg()
		if err != nil {
			return false, err
		}
		attrs, ok := arg.([]node.Attribute)
		if !ok && arg != nil {
			return false, b.error(errors.Errorf("template argument for attributes must be []node.Attribute, got %T", arg))
		}
		b.attrBuf = append(b.attrBuf, attrs...)
		return false, b.feedNext()

	case *ExpectAttributeValue:
		b.attrBuf = append(b.attrBuf, ev.Attributes...)
		arg, err := b.nextArg()
		if err != nil {
			return false, err
		}
		// A nil argument drops the attribute altogether.
		if arg != nil {
			b.attrBuf = append(b.attrBuf, node.NewAttribute(ev.Attribute, fmt.Sprintf("%v", arg)))
		}
		return false, b.feedNext()

	case *ExpectNodes:
		arg, err := b.nextArg()
		if err != nil {
			return false, err
		}
		nodes, ok := arg.([]node.Node)
		if !ok && arg != nil {
			return false, b.error(errors.Errorf("template argument for nodes must be []node.Node, got %T", arg))
		}
		for _, n := range nodes {
			b.append(n)
		}
		return false, b.feedNext()

	case *EndDocument:
		return true, nil
	}
	return false, nil
}

func (b *treeBuilder) append(n node.Node) {
	children, _ := b.kids.Pop()
	b.kids.Push(append(children, n))
}

// error attaches the reader's position at the moment of failure, so that
// builder-raised errors travel the same channel as parser ones.
func (b *treeBuilder) error(err error) error {
	return b.p.error(err)
}

func (b *treeBuilder) nextArg() (interface{}, error) {
	if len(b.args) == 0 {
		return nil, b.error(errors.New("not enough template arguments for source fragments"))
	}
	arg := b.args[0]
	b.args = b.args[1:]
	return arg, nil
}

// feedNext hands the parser the next source fragment, dropping partial
// mode along with the final one.
func (b *treeBuilder) feedNext() error {
	if len(b.sources) == 0 {
		return b.error(errors.New("no source fragment left to feed"))
	}
	src := b.sources[0]
	b.sources = b.sources[1:]
	b.p.Feed(src)
	if len(b.sources) == 0 {
		b.p.Complete()
	}
	return nil
}

// finish checks the end-of-stream conditions: no open tags, exactly one
// root element.
func (b *treeBuilder) finish() (*node.Document, error) {
	if b.tags.Len() != 0 {
		return nil, b.error(syntaxError("39", ErrPrematureEOF))
	}
	if len(b.sources) > 0 || len(b.args) > 0 {
		return nil, b.error(errors.Errorf("document ended with %d source fragments and %d arguments unused",
			len(b.sources), len(b.args)))
	}

	top, _ := b.kids.Pop()
	roots := 0
	for _, n := range top {
		if _, ok := n.(*node.Element); ok {
			roots++
		}
	}
	switch {
	case roots == 0:
		return nil, b.error(syntaxError("1", ErrMissingRootElement))
	case roots > 1:
		return nil, b.error(syntaxError("1", ErrMultipleRootElements))
	}

	b.doc.Children = top
	return b.doc, nil
}
