package neon

import "github.com/lestrrat-go/option"

type Option = option.Interface

type identPartial struct{}
type identEntityResolution struct{}
type identNamespaceResolution struct{}
type identXMLVersion struct{}

// PullOption configures a PullParser
type PullOption interface {
	Option
	pullOption()
}

type pullOption struct {
	Option
}

func (*pullOption) pullOption() {}

// WithPartial enables templated parsing: end of input at a templating
// point yields a placeholder event instead of failing.
func WithPartial(v bool) PullOption {
	return &pullOption{option.New(identPartial{}, v)}
}

// ParseOption configures the tree building facade
type ParseOption interface {
	Option
	parseOption()
}

type parseOption struct {
	Option
}

func (*parseOption) parseOption() {}

// WithEntityResolution makes Parse substitute character and entity
// references with their replacement text. Off by default; the tree then
// carries the references as chunks.
func WithEntityResolution(v bool) ParseOption {
	return &parseOption{option.New(identEntityResolution{}, v)}
}

// WithNamespaceResolution controls whether Parse resolves names against
// the namespace declarations in scope. On by default.
func WithNamespaceResolution(v bool) ParseOption {
	return &parseOption{option.New(identNamespaceResolution{}, v)}
}

// ResolveOption configures ResolveNamespaces
type ResolveOption interface {
	Option
	resolveOption()
}

type resolveOption struct {
	Option
}

func (*resolveOption) resolveOption() {}

// WithXMLVersion tells the namespace resolver which XML version governs
// undeclaring. The facade passes the version recorded from the XML
// declaration.
func WithXMLVersion(v string) ResolveOption {
	return &resolveOption{option.New(identXMLVersion{}, v)}
}
