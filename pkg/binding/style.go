package binding

import (
	"maps"
	"slices"

	"github.com/vango-dev/weave/pkg/dom"
)

// StyleMap binds a property→value mapping to the inline style of a node.
type StyleMap struct {
	node    *dom.Node
	applied *dom.Style
}

// NewStyleMap creates a StyleMap binding seeded from the node's inline
// style.
func NewStyleMap(node *dom.Node) *StyleMap {
	return &StyleMap{node: node, applied: dom.StyleOf(node)}
}

// Kind returns KindStyleMap.
func (b *StyleMap) Kind() Kind { return KindStyleMap }

// Node returns the bound node.
func (b *StyleMap) Node() *dom.Node { return b.node }

// Current returns a copy of the applied properties.
func (b *StyleMap) Current() any {
	out := make(map[string]string, b.applied.Len())
	for _, d := range b.applied.Declarations() {
		out[d.Property] = d.Value
	}
	return out
}

// Update merges newValue into the node's inline style. Properties currently
// applied but missing from newValue are removed; properties present are set.
// A nil map entry counts as missing, and a nil newValue clears every applied
// property. newValue must be a map[string]string, a map[string]any or nil.
func (b *StyleMap) Update(newValue, _ any) error {
	next, err := styleValues(newValue)
	if err != nil {
		return err
	}

	// Work on a fresh parse so declarations written by others survive.
	style := dom.StyleOf(b.node)

	keys := make([]string, 0, b.applied.Len()+len(next))
	for _, d := range b.applied.Declarations() {
		keys = append(keys, d.Property)
	}
	for _, k := range slices.Sorted(maps.Keys(next)) {
		if _, ok := b.applied.Get(k); !ok {
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		v, ok := next[k]
		if !ok {
			style.Remove(k)
			b.applied.Remove(k)
			continue
		}
		style.Set(k, v)
		b.applied.Set(k, v)
	}

	dom.SetStyle(b.node, style)
	return nil
}

func styleValues(v any) (map[string]string, error) {
	switch m := v.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[dom.NormalizeProperty(k)] = val
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			if val == nil {
				continue
			}
			out[dom.NormalizeProperty(k)] = stringify(val)
		}
		return out, nil
	default:
		return nil, &ValueError{Kind: KindStyleMap, Value: v, Want: "a property map or nil"}
	}
}
