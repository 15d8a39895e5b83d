package binding

import (
	"slices"

	"github.com/vango-dev/weave/pkg/dom"
)

// ClassList binds an ordered token list to the class attribute of a node.
type ClassList struct {
	node    *dom.Node
	current []string
}

// NewClassList creates a ClassList binding seeded from the node's classes.
func NewClassList(node *dom.Node) *ClassList {
	return &ClassList{node: node, current: dom.ClassList(node)}
}

// Kind returns KindClassList.
func (b *ClassList) Kind() Kind { return KindClassList }

// Node returns the bound node.
func (b *ClassList) Node() *dom.Node { return b.node }

// Current returns a copy of the tokens last applied, in order.
func (b *ClassList) Current() any {
	out := slices.Clone(b.current)
	if out == nil {
		out = []string{}
	}
	return out
}

// Update replaces the class attribute. newValue must be a []string or a
// []any whose elements are stringified; anything else is rejected with
// ErrInvalidValue and leaves the node untouched.
func (b *ClassList) Update(newValue, _ any) error {
	var tokens []string
	switch v := newValue.(type) {
	case []string:
		tokens = slices.Clone(v)
	case []any:
		tokens = make([]string, len(v))
		for i, t := range v {
			tokens[i] = stringify(t)
		}
	default:
		return &ValueError{Kind: KindClassList, Value: newValue, Want: "a list of class tokens"}
	}

	b.current = tokens
	dom.SetClassList(b.node, tokens)
	return nil
}
