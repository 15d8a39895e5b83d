package binding

import "github.com/vango-dev/weave/pkg/dom"

// Attribute binds a value to one named attribute of a node.
type Attribute struct {
	node    *dom.Node
	name    string
	current *string
}

// NewAttribute creates an Attribute binding for name, seeded from the
// attribute's current value (nil when absent).
func NewAttribute(node *dom.Node, name string) *Attribute {
	b := &Attribute{node: node, name: name}
	if v, ok := dom.Attr(node, name); ok {
		b.current = &v
	}
	return b
}

// Kind returns KindAttribute.
func (b *Attribute) Kind() Kind { return KindAttribute }

// Node returns the bound node.
func (b *Attribute) Node() *dom.Node { return b.node }

// Name returns the bound attribute name.
func (b *Attribute) Name() string { return b.name }

// Current returns the attribute value as a string, or nil when the
// attribute is absent.
func (b *Attribute) Current() any {
	if b.current == nil {
		return nil
	}
	return *b.current
}

// Update sets the attribute to the stringified value. nil removes it.
func (b *Attribute) Update(newValue, _ any) error {
	if newValue == nil {
		b.current = nil
		dom.RemoveAttr(b.node, b.name)
		return nil
	}

	v := stringify(newValue)
	b.current = &v
	dom.SetAttr(b.node, b.name, v)
	return nil
}
