package weavetest

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/frame"
)

// DefaultSettleFrames bounds Settle.
const DefaultSettleFrames = 64

// Harness owns a runtime driven by a manual scheduler.
type Harness struct {
	t         testing.TB
	runtime   *weave.Runtime
	scheduler *frame.Manual
	body      *dom.Node
	logs      *bytes.Buffer
}

// NewHarness creates a harness. Logs at debug level and above are captured
// and can be read with Logs.
func NewHarness(t testing.TB) *Harness {
	t.Helper()
	logs := &bytes.Buffer{}
	sched := frame.NewManual()
	return &Harness{
		t: t,
		runtime: weave.New(weave.Config{
			Scheduler: sched,
			Logger:    slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		}),
		scheduler: sched,
		body:      dom.NewElement("body"),
		logs:      logs,
	}
}

// Runtime returns the harness runtime.
func (h *Harness) Runtime() *weave.Runtime { return h.runtime }

// Scheduler returns the manual scheduler.
func (h *Harness) Scheduler() *frame.Manual { return h.scheduler }

// Body returns the document body components are mounted into.
func (h *Harness) Body() *dom.Node { return h.body }

// Logs returns everything logged so far.
func (h *Harness) Logs() string { return h.logs.String() }

// Template compiles and registers a template, failing the test on error.
func (h *Harness) Template(name, markup string) *Harness {
	h.t.Helper()
	if _, err := h.runtime.CompileTemplate(name, markup); err != nil {
		h.t.Fatalf("compile template %q: %v", name, err)
	}
	return h
}

// Drop registers a drop, failing the test on error.
func (h *Harness) Drop(name, markup string) *Harness {
	h.t.Helper()
	if err := h.runtime.RegisterDrop(name, markup); err != nil {
		h.t.Fatalf("register drop %q: %v", name, err)
	}
	return h
}

// New constructs a component without mounting it, failing the test on
// error.
func (h *Harness) New(def weave.Definition, props map[string]any) *weave.Component {
	h.t.Helper()
	c, err := h.runtime.NewComponent(def, props)
	if err != nil {
		h.t.Fatalf("construct %q: %v", def.Name, err)
	}
	return c
}

// Mount constructs a component and mounts it into Body. The mount barrier
// is still pending; call Settle to complete it.
func (h *Harness) Mount(def weave.Definition, props map[string]any) *weave.Component {
	h.t.Helper()
	c := h.New(def, props)
	if err := c.Mount(h.body); err != nil {
		h.t.Fatalf("mount %q: %v", def.Name, err)
	}
	return c
}

// Step advances one frame.
func (h *Harness) Step() {
	h.scheduler.Step()
}

// Settle advances frames until no callbacks are pending. The test fails if
// callbacks are still pending after DefaultSettleFrames frames.
func (h *Harness) Settle() {
	h.t.Helper()
	h.scheduler.Settle(DefaultSettleFrames)
	if n := h.scheduler.Pending(); n > 0 {
		h.t.Fatalf("frames did not settle: %d callbacks pending", n)
	}
}

// HTML renders Body.
func (h *Harness) HTML() string {
	h.t.Helper()
	return RenderToString(h.t, h.body)
}

// RenderToString renders n, failing the test on error.
func RenderToString(t testing.TB, n *dom.Node) string {
	t.Helper()
	out, err := dom.Render(n)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

// ExpectHTML asserts that n renders to exactly want.
func ExpectHTML(t testing.TB, n *dom.Node, want string) {
	t.Helper()
	if got := RenderToString(t, n); got != want {
		t.Errorf("rendered output mismatch\n got: %s\nwant: %s", got, want)
	}
}

// ExpectContains asserts that rendered output contains expected.
func ExpectContains(t testing.TB, n *dom.Node, expected string) {
	t.Helper()
	html := RenderToString(t, n)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain
// unexpected.
func ExpectNotContains(t testing.TB, n *dom.Node, unexpected string) {
	t.Helper()
	html := RenderToString(t, n)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectAttribute asserts that element n has attr set to value.
func ExpectAttribute(t testing.TB, n *dom.Node, attr, value string) {
	t.Helper()
	got, ok := dom.Attr(n, attr)
	if !ok {
		t.Errorf("expected attribute %s=%q, attribute is missing", attr, value)
		return
	}
	if got != value {
		t.Errorf("attribute %s = %q, want %q", attr, got, value)
	}
}

// ExpectText asserts the text content of n.
func ExpectText(t testing.TB, n *dom.Node, want string) {
	t.Helper()
	if got := dom.Text(n); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
