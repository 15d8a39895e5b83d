package manifest

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/binding"
	"github.com/vango-dev/weave/pkg/dom"
)

const shopManifest = `templates:
  card: <div class="card"><h2 data-text="title">?</h2><ul><!--slot:items--></ul></div>
  item: <li data-text="label" data-class="cls"></li>
drops:
  badge: <span data-text="n">0</span>
mount:
  - id: main
    component: card
    props:
      title: Hello
    slots:
      items:
        - component: item
          props: {label: one, cls: [a, b]}
        - component: item
          props: {label: two}
`

func weaveCode(err error) (string, *errors.WeaveError) {
	var we *errors.WeaveError
	if stderrors.As(err, &we) {
		return we.Code, we
	}
	return "", nil
}

func TestParseAndBuild(t *testing.T) {
	m, err := Parse([]byte(shopManifest), "weave.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Mount) != 1 || m.Mount[0].Line != 7 {
		t.Fatalf("mount = %+v", m.Mount)
	}
	if got := m.Mount[0].Slots["items"][1].Line; got != 14 {
		t.Errorf("second item line = %d, want 14", got)
	}

	rt := weave.New(weave.Config{})
	roots, err := m.Build(rt)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].ID != "main" {
		t.Fatalf("roots = %+v", roots)
	}
	if rt.GetTemplate("item") == nil {
		t.Error("templates not registered")
	}
	if d, _ := rt.CreateDrop("badge", map[string]any{"n": 3}); d == nil || dom.Text(d.Root) != "3" {
		t.Error("drop not registered")
	}

	body := dom.NewElement("body")
	roots[0].Component.Mount(body)
	out, _ := dom.Render(body)
	want := `<body><div class="card"><h2 data-text="title">Hello</h2><ul><!--slot:items-->` +
		`<li data-text="label" data-class="cls" class="a b">one</li>` +
		`<li data-text="label" data-class="cls">two</li></ul></div></body>`
	if out != want {
		t.Errorf("Render =\n%s\nwant\n%s", out, want)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		code     string
		line     int
	}{
		{
			name:     "unknown top-level template",
			manifest: "templates:\n  card: <div></div>\nmount:\n  - id: main\n    component: crad\n",
			code:     "E301",
			line:     4,
		},
		{
			name: "unknown nested template",
			manifest: "templates:\n  card: <div><!--slot:s--></div>\nmount:\n  - id: main\n    component: card\n" +
				"    slots:\n      s:\n        - component: nope\n",
			code: "E301",
			line: 8,
		},
		{
			name:     "missing id",
			manifest: "templates:\n  card: <div></div>\nmount:\n  - component: card\n",
			code:     "E305",
			line:     4,
		},
		{
			name:     "duplicate id",
			manifest: "templates:\n  card: <div></div>\nmount:\n  - id: a\n    component: card\n  - id: a\n    component: card\n",
			code:     "E305",
			line:     6,
		},
		{
			name:     "invalid yaml",
			manifest: "templates:\n  card: [unclosed\n",
			code:     "E302",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.manifest), "weave.yaml")
			code, we := weaveCode(err)
			if code != tt.code {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			if tt.line > 0 && (we.Location == nil || we.Location.Line != tt.line) {
				t.Errorf("location = %v, want line %d", we.Location, tt.line)
			}
		})
	}
}

func TestSuggestion(t *testing.T) {
	_, err := Parse([]byte("templates:\n  card: <div></div>\nmount:\n  - id: main\n    component: crad\n"), "weave.yaml")
	_, we := weaveCode(err)
	if we == nil || we.Suggestion != `Did you mean "card"?` {
		t.Errorf("suggestion = %+v", we)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		code     string
		is       error
	}{
		{
			name:     "unknown slot",
			manifest: "templates:\n  card: <div></div>\nmount:\n  - id: main\n    component: card\n    slots:\n      nope:\n        - component: card\n",
			code:     "E304",
		},
		{
			name:     "invalid prop",
			manifest: "templates:\n  card: <div data-class=\"c\"></div>\nmount:\n  - id: main\n    component: card\n    props: {c: 42}\n",
			code:     "E202",
			is:       binding.ErrInvalidValue,
		},
		{
			name:     "markup without element",
			manifest: "templates:\n  card: just text\n",
			code:     "E303",
			is:       dom.ErrNoElement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.manifest), "weave.yaml")
			if err != nil {
				t.Fatal(err)
			}
			_, err = m.Build(weave.New(weave.Config{}))
			if code, _ := weaveCode(err); code != tt.code {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			if tt.is != nil && !stderrors.Is(err, tt.is) {
				t.Errorf("err = %v, want wrapping %v", err, tt.is)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weave.yaml")
	if err := os.WriteFile(path, []byte(shopManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Path() != path || len(m.Templates) != 2 {
		t.Errorf("m = %+v", m)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name  string
		known []string
		want  string
	}{
		{"crad", []string{"card", "item"}, `Did you mean "card"?`},
		{"items", []string{"card", "item"}, `Did you mean "item"?`},
		{"zzzz", []string{"card"}, "Known templates: [card]"},
		{"card", nil, `Declare templates under "templates:" before mounting them`},
	}
	for _, tt := range tests {
		if got := suggest(tt.name, tt.known); got != tt.want {
			t.Errorf("suggest(%q, %v) = %q, want %q", tt.name, tt.known, got, tt.want)
		}
	}
}
