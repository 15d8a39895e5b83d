package template

import (
	"slices"

	"github.com/vango-dev/weave/pkg/binding"
	"github.com/vango-dev/weave/pkg/dom"
)

// MarkerType classifies a Descriptor.
type MarkerType uint8

const (
	MarkerRef MarkerType = iota + 1
	MarkerBinding
	MarkerSlot
)

// String returns the string representation of the MarkerType.
func (m MarkerType) String() string {
	switch m {
	case MarkerRef:
		return "Ref"
	case MarkerBinding:
		return "Binding"
	case MarkerSlot:
		return "Slot"
	default:
		return "Unknown"
	}
}

// Descriptor is a marker found at compile time.
type Descriptor struct {
	Type MarkerType

	// Name is the ref name, the bound state key or the slot name.
	Name string

	// Kind and Attr describe binding markers.
	Kind binding.Kind
	Attr string

	// Path locates the marked node from the prototype root.
	Path []int
}

// Prototype is a compiled, immutable view prototype.
type Prototype struct {
	name        string
	root        *dom.Node
	descriptors []Descriptor
}

// Compile parses markup and records its markers. The first element of the
// markup becomes the prototype root.
func Compile(name, markup string) (*Prototype, error) {
	root, err := dom.Parse(markup)
	if err != nil {
		return nil, err
	}
	return &Prototype{name: name, root: root, descriptors: scan(root)}, nil
}

// scan walks root in document order. Element attributes are read in
// attribute order; slot anchors are comments and have no children.
func scan(root *dom.Node) []Descriptor {
	var out []Descriptor
	dom.Walk(root, func(n *dom.Node) bool {
		switch {
		case dom.IsComment(n):
			if name, ok := binding.SlotName(n.Data); ok {
				out = append(out, Descriptor{Type: MarkerSlot, Name: name, Path: dom.Path(root, n)})
			}
			return false
		case dom.IsElement(n):
			for _, a := range n.Attr {
				if binding.IsRef(a.Key) {
					out = append(out, Descriptor{Type: MarkerRef, Name: a.Val, Path: dom.Path(root, n)})
					continue
				}
				if kind, attr, ok := binding.Classify(a.Key); ok {
					out = append(out, Descriptor{
						Type: MarkerBinding,
						Name: a.Val,
						Kind: kind,
						Attr: attr,
						Path: dom.Path(root, n),
					})
				}
			}
			return true
		}
		return false
	})
	return out
}

// ShadowedSlots returns the names of slots anchored inside an element whose
// content belongs to a text or markup binding. The first update of that
// binding removes the anchor, after which the slot accepts no children.
func (p *Prototype) ShadowedSlots() []string {
	var out []string
	for _, sd := range p.descriptors {
		if sd.Type != MarkerSlot {
			continue
		}
		for _, bd := range p.descriptors {
			if bd.Type == MarkerBinding && (bd.Kind == binding.KindText || bd.Kind == binding.KindMarkup) &&
				len(bd.Path) < len(sd.Path) && slices.Equal(bd.Path, sd.Path[:len(bd.Path)]) {
				out = append(out, sd.Name)
				break
			}
		}
	}
	return out
}

// Name returns the registered name.
func (p *Prototype) Name() string {
	return p.name
}

// Descriptors returns a copy of the compiled markers.
func (p *Prototype) Descriptors() []Descriptor {
	out := make([]Descriptor, len(p.descriptors))
	for i, d := range p.descriptors {
		d.Path = slices.Clone(d.Path)
		out[i] = d
	}
	return out
}

// Clone returns an independent copy of the prototype root.
func (p *Prototype) Clone() *dom.Node {
	return dom.Clone(p.root)
}

// Bound is a binding together with the state key it is bound to.
type Bound struct {
	Name    string
	Binding binding.Binding
}

// Anchor is a slot anchor comment inside an instance.
type Anchor struct {
	Name string
	Node *dom.Node
}

// Instance is a cloned prototype with its markers resolved.
type Instance struct {
	Root     *dom.Node
	Refs     map[string]*dom.Node
	Bindings []Bound
	Slots    []Anchor
}

// Instantiate clones the prototype and resolves every descriptor against
// the clone. Bindings are created here, so they seed from the clone's
// ambient values.
func (p *Prototype) Instantiate() *Instance {
	root := p.Clone()
	inst := &Instance{
		Root: root,
		Refs: make(map[string]*dom.Node),
	}

	for _, d := range p.descriptors {
		n := dom.Resolve(root, d.Path)
		if n == nil {
			continue
		}
		switch d.Type {
		case MarkerRef:
			inst.Refs[d.Name] = n
		case MarkerSlot:
			inst.Slots = append(inst.Slots, Anchor{Name: d.Name, Node: n})
		case MarkerBinding:
			b, err := binding.New(d.Kind, n, d.Attr)
			if err != nil {
				// Descriptors come from Classify, which never yields an
				// unusable kind.
				continue
			}
			inst.Bindings = append(inst.Bindings, Bound{Name: d.Name, Binding: b})
		}
	}
	return inst
}
