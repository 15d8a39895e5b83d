package dom

import (
	"slices"
	"strings"
)

// Declaration is one inline style property.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered set of inline style declarations, as found in a style
// attribute. Setting an existing property keeps its position; new properties
// are appended.
type Style struct {
	decls []Declaration
}

// ParseStyle parses the contents of a style attribute. Malformed
// declarations (no colon, empty property) are skipped.
func ParseStyle(s string) *Style {
	st := &Style{}
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = NormalizeProperty(prop)
		val = strings.TrimSpace(val)
		if prop == "" {
			continue
		}
		st.Set(prop, val)
	}
	return st
}

// NormalizeProperty trims and lower-cases a CSS property name. Custom
// properties (--name) are case-sensitive and only trimmed.
func NormalizeProperty(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "--") {
		return p
	}
	return strings.ToLower(p)
}

// Len returns the number of declarations.
func (s *Style) Len() int {
	return len(s.decls)
}

// Get returns the value of a property.
func (s *Style) Get(prop string) (string, bool) {
	prop = NormalizeProperty(prop)
	for _, d := range s.decls {
		if d.Property == prop {
			return d.Value, true
		}
	}
	return "", false
}

// Set sets a property value.
func (s *Style) Set(prop, value string) {
	prop = NormalizeProperty(prop)
	for i, d := range s.decls {
		if d.Property == prop {
			s.decls[i].Value = value
			return
		}
	}
	s.decls = append(s.decls, Declaration{Property: prop, Value: value})
}

// Remove deletes a property and reports whether it was present.
func (s *Style) Remove(prop string) bool {
	prop = NormalizeProperty(prop)
	for i, d := range s.decls {
		if d.Property == prop {
			s.decls = slices.Delete(s.decls, i, i+1)
			return true
		}
	}
	return false
}

// Declarations returns a copy of the declarations in order.
func (s *Style) Declarations() []Declaration {
	return slices.Clone(s.decls)
}

// String serializes the declarations in style attribute form.
func (s *Style) String() string {
	parts := make([]string, len(s.decls))
	for i, d := range s.decls {
		parts[i] = d.Property + ": " + d.Value
	}
	return strings.Join(parts, "; ")
}

// StyleOf parses the style attribute of n.
func StyleOf(n *Node) *Style {
	v, _ := Attr(n, "style")
	return ParseStyle(v)
}

// SetStyle writes s to the style attribute of n. An empty style removes the
// attribute.
func SetStyle(n *Node, s *Style) {
	if s.Len() == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", s.String())
}
