package dom

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is a view node in the rendering surface.
type Node = html.Node

// ErrNoElement is returned by Parse when the markup has no element to use as
// a root.
var ErrNoElement = errors.New("weave: markup contains no element")

// Parse parses markup as body content and returns its first element.
// Leading text and comments before that element are dropped.
func Parse(markup string) (*Node, error) {
	nodes, err := ParseFragment(markup, nil)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	return nil, ErrNoElement
}

// ParseFragment parses markup as the inner content of context. A nil context
// parses as body content. The returned nodes are detached.
func ParseFragment(markup string, context *Node) ([]*Node, error) {
	if context == nil || context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	return html.ParseFragment(strings.NewReader(markup), context)
}

// NewElement creates a detached element node.
func NewElement(tag string) *Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// NewComment creates a detached comment node.
func NewComment(data string) *Node {
	return &html.Node{Type: html.CommentNode, Data: data}
}

// Clone returns a deep structural copy of n. The copy shares nothing with n
// and has no parent or siblings.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Equal reports whether a and b are structurally equal: same node types,
// data, attributes (in order) and children.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Data != b.Data || a.Namespace != b.Namespace {
		return false
	}
	if !slices.Equal(a.Attr, b.Attr) {
		return false
	}
	ca, cb := a.FirstChild, b.FirstChild
	for ca != nil && cb != nil {
		if !Equal(ca, cb) {
			return false
		}
		ca, cb = ca.NextSibling, cb.NextSibling
	}
	return ca == nil && cb == nil
}

// Walk calls fn for n and every descendant in document order. Returning false
// from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		Walk(child, fn)
		child = next
	}
}

// Path returns the child indexes leading from root to n, or nil if n is not
// inside root. The path of root itself is empty and non-nil.
func Path(root, n *Node) []int {
	var path []int
	for cur := n; cur != root; cur = cur.Parent {
		if cur == nil {
			return nil
		}
		i := 0
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			i++
		}
		path = append(path, i)
	}
	slices.Reverse(path)
	if path == nil {
		path = []int{}
	}
	return path
}

// Resolve follows a path produced by Path. It returns nil when the path does
// not exist in root.
func Resolve(root *Node, path []int) *Node {
	cur := root
	for _, idx := range path {
		if cur == nil {
			return nil
		}
		child := cur.FirstChild
		for i := 0; i < idx && child != nil; i++ {
			child = child.NextSibling
		}
		cur = child
	}
	return cur
}

// AppendChild detaches n and appends it as the last child of parent.
func AppendChild(parent, n *Node) {
	Detach(n)
	parent.AppendChild(n)
}

// InsertAfter detaches n and inserts it immediately after ref. It reports
// false when ref has no parent or n is ref.
func InsertAfter(ref, n *Node) bool {
	if ref == nil || n == nil || ref == n || ref.Parent == nil {
		return false
	}
	Detach(n)
	ref.Parent.InsertBefore(n, ref.NextSibling)
	return true
}

// Detach removes n from its parent. It is a no-op for detached nodes.
func Detach(n *Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Text returns the concatenated text of n and its descendants.
func Text(n *Node) string {
	var b strings.Builder
	Walk(n, func(c *Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces the children of n with a single text node. An empty
// string leaves n without children.
func SetText(n *Node, text string) {
	RemoveChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// InnerHTML renders the children of n.
func InnerHTML(n *Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Rendering into a strings.Builder cannot fail.
		_ = html.Render(&b, c)
	}
	return b.String()
}

// SetInnerHTML parses markup in the context of n and replaces its children.
// The markup is inserted as-is; it is not escaped.
func SetInnerHTML(n *Node, markup string) error {
	nodes, err := ParseFragment(markup, n)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// Attr returns the value of the named attribute.
func Attr(n *Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, keeping its position if it already
// exists.
func SetAttr(n *Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes the named attribute and reports whether it was present.
func RemoveAttr(n *Node, key string) bool {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = slices.Delete(n.Attr, i, i+1)
			return true
		}
	}
	return false
}

// ClassList returns the class tokens of n in attribute order.
func ClassList(n *Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// SetClassList replaces the class attribute with the space-joined tokens.
func SetClassList(n *Node, tokens []string) {
	SetAttr(n, "class", strings.Join(tokens, " "))
}

// IsElement reports whether n is an element node.
func IsElement(n *Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsComment reports whether n is a comment node.
func IsComment(n *Node) bool {
	return n != nil && n.Type == html.CommentNode
}

// Render serializes n and its subtree.
func Render(n *Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
