package weavetest_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/pkg/weavetest"
)

// recorder captures assertion failures instead of failing the test.
type recorder struct {
	testing.TB
	failures []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func TestHarnessMountAndSettle(t *testing.T) {
	h := weavetest.NewHarness(t).
		Template("list", `<ul class="list"><!--slot:items--></ul>`).
		Template("item", `<li data-text="label"></li>`)

	list := h.Mount(weave.Definition{Name: "list"}, nil)
	list.Slot("items").Push(h.New(weave.Definition{Name: "item"}, map[string]any{"label": "a"}))
	list.Slot("items").Push(h.New(weave.Definition{Name: "item"}, map[string]any{"label": "b"}))

	if list.Ready() {
		t.Fatal("barrier completed before any frame")
	}
	h.Settle()
	if !list.Ready() {
		t.Fatal("barrier did not complete")
	}

	weavetest.ExpectHTML(t, h.Body(),
		`<body><ul class="list"><!--slot:items--><li data-text="label">a</li><li data-text="label">b</li></ul></body>`)
	weavetest.ExpectAttribute(t, list.View(), "class", "list")
	weavetest.ExpectText(t, list.View(), "ab")

	if !strings.Contains(h.Logs(), "component mounted") {
		t.Errorf("expected lifecycle debug logs, got:\n%s", h.Logs())
	}
}

func TestHarnessStep(t *testing.T) {
	h := weavetest.NewHarness(t).Template("p", `<p></p>`)
	c := h.Mount(weave.Definition{Name: "p"}, nil)

	h.Step()
	if c.Ready() {
		t.Fatal("ready after one frame")
	}
	h.Step()
	if !c.Ready() {
		t.Fatal("not ready after two frames")
	}
	if h.Scheduler().Frames() != 2 {
		t.Errorf("Frames() = %d", h.Scheduler().Frames())
	}
}

func TestHarnessDrop(t *testing.T) {
	h := weavetest.NewHarness(t).Drop("badge", `<b data-text="n"></b>`)

	d, err := h.Runtime().CreateDrop("badge", map[string]any{"n": 9})
	if err != nil {
		t.Fatal(err)
	}
	weavetest.ExpectHTML(t, d.Root, `<b data-text="n">9</b>`)
}

func TestAssertionsReportFailures(t *testing.T) {
	h := weavetest.NewHarness(t).Template("p", `<p class="x">hello</p>`)
	c := h.New(weave.Definition{Name: "p"}, nil)

	rec := &recorder{TB: t}
	weavetest.ExpectHTML(rec, c.View(), `<p>nope</p>`)
	weavetest.ExpectContains(rec, c.View(), "goodbye")
	weavetest.ExpectNotContains(rec, c.View(), "hello")
	weavetest.ExpectAttribute(rec, c.View(), "class", "y")
	weavetest.ExpectAttribute(rec, c.View(), "id", "z")
	weavetest.ExpectText(rec, c.View(), "bye")

	if len(rec.failures) != 6 {
		t.Errorf("failures = %d, want 6:\n%s", len(rec.failures), strings.Join(rec.failures, "\n"))
	}

	ok := &recorder{TB: t}
	weavetest.ExpectContains(ok, c.View(), "hello")
	weavetest.ExpectNotContains(ok, c.View(), "goodbye")
	weavetest.ExpectAttribute(ok, c.View(), "class", "x")
	if len(ok.failures) != 0 {
		t.Errorf("unexpected failures: %v", ok.failures)
	}
}
