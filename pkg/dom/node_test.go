package dom

import (
	"slices"
	"testing"
)

func mustParse(t *testing.T, markup string) *Node {
	t.Helper()
	n, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", markup, err)
	}
	return n
}

func mustRender(t *testing.T, n *Node) string {
	t.Helper()
	out, err := Render(n)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	return out
}

func TestParseFirstElement(t *testing.T) {
	n := mustParse(t, "  <!--lead--><section id=\"s\"><p>hi</p></section><div></div>")

	if n.Data != "section" {
		t.Fatalf("root = %q, want section", n.Data)
	}
	if got := mustRender(t, n); got != `<section id="s"><p>hi</p></section>` {
		t.Errorf("Render = %q", got)
	}
}

func TestParseNoElement(t *testing.T) {
	if _, err := Parse("just text"); err != ErrNoElement {
		t.Errorf("err = %v, want ErrNoElement", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := mustParse(t, `<div class="a"><span>x</span><!--slot:s--></div>`)
	c := Clone(orig)

	if c == orig {
		t.Fatal("Clone returned the same pointer")
	}
	if !Equal(orig, c) {
		t.Fatal("clone should be structurally equal")
	}

	SetAttr(c, "class", "b")
	SetText(c.FirstChild, "y")

	if got := mustRender(t, orig); got != `<div class="a"><span>x</span><!--slot:s--></div>` {
		t.Errorf("original mutated: %q", got)
	}
	if Equal(orig, c) {
		t.Error("mutated clone should differ")
	}
}

func TestPathResolve(t *testing.T) {
	root := mustParse(t, `<ul><li>a</li><li><b>b</b></li></ul>`)
	target := root.FirstChild.NextSibling.FirstChild

	path := Path(root, target)
	if !slices.Equal(path, []int{1, 0}) {
		t.Fatalf("Path = %v, want [1 0]", path)
	}
	if got := Resolve(Clone(root), path); got == nil || got.Data != "b" {
		t.Errorf("Resolve on clone = %v, want <b>", got)
	}
	if p := Path(root, root); p == nil || len(p) != 0 {
		t.Errorf("Path(root, root) = %v, want empty", p)
	}
	if p := Path(root, NewElement("i")); p != nil {
		t.Errorf("Path of foreign node = %v, want nil", p)
	}
	if got := Resolve(root, []int{5}); got != nil {
		t.Errorf("Resolve out of range = %v, want nil", got)
	}
}

func TestInsertAfterAndDetach(t *testing.T) {
	root := mustParse(t, `<div><!--a--></div>`)
	anchor := root.FirstChild

	one := NewElement("i")
	two := NewElement("b")
	InsertAfter(anchor, one)
	InsertAfter(anchor, two)

	if got := mustRender(t, root); got != `<div><!--a--><b></b><i></i></div>` {
		t.Errorf("Render = %q", got)
	}

	Detach(two)
	Detach(two)
	if got := mustRender(t, root); got != `<div><!--a--><i></i></div>` {
		t.Errorf("after detach = %q", got)
	}

	if InsertAfter(NewElement("p"), two) {
		t.Error("InsertAfter with a detached reference should fail")
	}
	if InsertAfter(one, one) {
		t.Error("InsertAfter of a node after itself should fail")
	}
	if got := mustRender(t, root); got != `<div><!--a--><i></i></div>` {
		t.Errorf("after self insert = %q", got)
	}
}

func TestTextAndInnerHTML(t *testing.T) {
	n := mustParse(t, `<p>Hello <b>world</b></p>`)

	if got := Text(n); got != "Hello world" {
		t.Errorf("Text = %q", got)
	}

	SetText(n, "<i>raw</i>")
	if got := InnerHTML(n); got != "&lt;i&gt;raw&lt;/i&gt;" {
		t.Errorf("InnerHTML after SetText = %q", got)
	}

	if err := SetInnerHTML(n, "<i>raw</i>"); err != nil {
		t.Fatal(err)
	}
	if got := InnerHTML(n); got != "<i>raw</i>" {
		t.Errorf("InnerHTML = %q", got)
	}

	SetText(n, "")
	if n.FirstChild != nil {
		t.Error("SetText(\"\") should leave no children")
	}
}

func TestAttributes(t *testing.T) {
	n := mustParse(t, `<a href="/x" class="one  two"></a>`)

	if v, ok := Attr(n, "href"); !ok || v != "/x" {
		t.Errorf("Attr(href) = %q, %v", v, ok)
	}
	if got := ClassList(n); !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("ClassList = %v", got)
	}

	SetAttr(n, "href", "/y")
	SetAttr(n, "title", "t")
	if !RemoveAttr(n, "class") {
		t.Error("RemoveAttr(class) = false")
	}
	if RemoveAttr(n, "class") {
		t.Error("second RemoveAttr(class) = true")
	}
	if got := mustRender(t, n); got != `<a href="/y" title="t"></a>` {
		t.Errorf("Render = %q", got)
	}
}
