// Package neon implements an XML 1.0/1.1 pull parser with optional
// templated parsing, plus the post-processing pipeline that turns its
// event stream into an immutable document tree.
//
// The pull parser consumes decoded characters and yields typed events on
// demand. In partial mode, end-of-input at certain well-defined points
// yields a placeholder event instead of failing; the caller supplies the
// missing attributes, attribute value, or nodes and feeds the next source
// fragment to resume. The tree builder consumes events, resolves
// namespaces and (optionally) references, and produces node trees.
package neon

// Version is the library version
const Version = "0.9.0"

// XMLNamespaceURI is the namespace bound to the implicit "xml" prefix.
const XMLNamespaceURI = "http://www.w3.org/XML/1998/namespace"
