package node

import "strings"

// Name is a qualified XML name. Prefix and URI may both be empty. A Name
// is resolved when it either has no prefix or carries a namespace URI.
type Name struct {
	Prefix string
	Local  string
	URI    string
}

// ParseName splits a lexical QName on the first colon. It performs no
// character validation; the parser validates names as it reads them.
func ParseName(s string) Name {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Name{Prefix: s[:i], Local: s[i+1:]}
	}
	return Name{Local: s}
}

func (n Name) Resolved() bool {
	return n.Prefix == "" || n.URI != ""
}

// Equal compares local part and URI when both names are resolved, and
// local part and prefix otherwise.
func (n Name) Equal(m Name) bool {
	if n.Resolved() && m.Resolved() {
		return n.Local == m.Local && n.URI == m.URI
	}
	return n.Local == m.Local && n.Prefix == m.Prefix
}

func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}
