package binding

import "github.com/vango-dev/weave/pkg/dom"

// Markup binds a value to the raw inner markup of a node. Values are parsed
// as markup and never escaped, so they must come from a trusted source.
type Markup struct {
	node    *dom.Node
	current string
}

// NewMarkup creates a Markup binding seeded from the node's inner markup.
func NewMarkup(node *dom.Node) *Markup {
	return &Markup{node: node, current: dom.InnerHTML(node)}
}

// Kind returns KindMarkup.
func (b *Markup) Kind() Kind { return KindMarkup }

// Node returns the bound node.
func (b *Markup) Node() *dom.Node { return b.node }

// Current returns the markup string last applied, as given.
func (b *Markup) Current() any { return b.current }

// Update replaces the node's children with the parsed markup.
func (b *Markup) Update(newValue, _ any) error {
	markup := stringify(newValue)
	if err := dom.SetInnerHTML(b.node, markup); err != nil {
		return err
	}
	b.current = markup
	return nil
}
