package binding

import "github.com/vango-dev/weave/pkg/dom"

// Text binds a value to the text content of a node.
type Text struct {
	node    *dom.Node
	current string
}

// NewText creates a Text binding seeded from the node's text content.
func NewText(node *dom.Node) *Text {
	return &Text{node: node, current: dom.Text(node)}
}

// Kind returns KindText.
func (b *Text) Kind() Kind { return KindText }

// Node returns the bound node.
func (b *Text) Node() *dom.Node { return b.node }

// Current returns the text last applied.
func (b *Text) Current() any { return b.current }

// Update replaces the node's text content. Any value is accepted; nil
// becomes the empty string.
func (b *Text) Update(newValue, _ any) error {
	b.current = stringify(newValue)
	dom.SetText(b.node, b.current)
	return nil
}
