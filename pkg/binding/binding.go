// Package binding links one state property to one presentation aspect of
// one view node.
//
// A binding seeds its baseline from the value already encoded in the markup
// (Current), and pushes new values into the node on Update. Five kinds
// exist:
//
//	Text       data-text="key"        visible text content
//	Markup     data-html="key"        raw inner markup, not escaped
//	ClassList  data-class="key"       class attribute from a token list
//	StyleMap   data-style="key"       inline style, three-way merged
//	Attribute  data-prop-<name>="key" a named attribute, nil removes it
//
// Update signatures match state.Listener so bindings can be subscribed to a
// store directly.
package binding

import (
	"errors"
	"fmt"

	"github.com/vango-dev/weave/pkg/dom"
)

// ErrInvalidValue is wrapped by every error returned for a value of the
// wrong shape.
var ErrInvalidValue = errors.New("weave: invalid binding value")

// Kind identifies the presentation aspect a binding controls.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindMarkup
	KindClassList
	KindStyleMap
	KindAttribute
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindMarkup:
		return "Markup"
	case KindClassList:
		return "ClassList"
	case KindStyleMap:
		return "StyleMap"
	case KindAttribute:
		return "Attribute"
	default:
		return "Unknown"
	}
}

// Binding is a live link between a state value and a view node.
type Binding interface {
	// Kind returns the binding kind.
	Kind() Kind

	// Node returns the bound view node.
	Node() *dom.Node

	// Current returns the last applied value. Slices and maps are copies.
	Current() any

	// Update applies newValue to the node. oldValue is the previous state
	// value and is informational only.
	Update(newValue, oldValue any) error
}

// ValueError describes a value a binding could not accept.
type ValueError struct {
	Kind  Kind
	Value any
	Want  string
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	return fmt.Sprintf("weave: %s binding accepts %s, got %T", e.Kind, e.Want, e.Value)
}

// Unwrap returns ErrInvalidValue.
func (e *ValueError) Unwrap() error {
	return ErrInvalidValue
}

// New creates a binding of the given kind on node. attr names the attribute
// for KindAttribute and is ignored otherwise.
func New(kind Kind, node *dom.Node, attr string) (Binding, error) {
	switch kind {
	case KindText:
		return NewText(node), nil
	case KindMarkup:
		return NewMarkup(node), nil
	case KindClassList:
		return NewClassList(node), nil
	case KindStyleMap:
		return NewStyleMap(node), nil
	case KindAttribute:
		if attr == "" {
			return nil, fmt.Errorf("weave: attribute binding needs an attribute name")
		}
		return NewAttribute(node, attr), nil
	default:
		return nil, fmt.Errorf("weave: unknown binding kind %d", kind)
	}
}

// stringify converts a state value to its presentation string.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		// fmt recovers from String and Error panics on typed nil pointers.
		return fmt.Sprint(x)
	}
}
