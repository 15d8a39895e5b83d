// Package manifest loads weave.yaml, the declarative description of a
// document: named templates, named drops and a tree of components to mount.
// Files ending in .hcl are read with ParseHCL instead.
//
//	templates:
//	  card: |
//	    <div class="card"><h2 data-text="title"></h2><!--slot:items--></div>
//	  item: <li data-text="label"></li>
//	drops:
//	  badge: <span data-text="n"></span>
//	mount:
//	  - id: main
//	    component: card
//	    props: {title: Hello}
//	    slots:
//	      items:
//	        - component: item
//	          props: {label: one}
package manifest

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/agext/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/weave/internal/errors"
)

// Manifest is a parsed weave.yaml.
type Manifest struct {
	Templates map[string]string `yaml:"templates"`
	Drops     map[string]string `yaml:"drops"`
	Mount     []ComponentSpec   `yaml:"mount"`

	path string
}

// ComponentSpec describes one component instance and the children it places
// in its slots.
type ComponentSpec struct {
	// ID names a top-level mount. Optional for slot children.
	ID        string                     `yaml:"id"`
	Component string                     `yaml:"component"`
	Props     map[string]any             `yaml:"props"`
	Slots     map[string][]ComponentSpec `yaml:"slots"`

	// Line and Column locate the entry in the manifest file.
	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

// UnmarshalYAML decodes the entry and records its position.
func (c *ComponentSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain ComponentSpec
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	c.Line, c.Column = value.Line, value.Column
	return nil
}

// SlotNames returns the names of the filled slots in sorted order.
func (c *ComponentSpec) SlotNames() []string {
	return slices.Sorted(maps.Keys(c.Slots))
}

// Load reads and parses the manifest at path. The format follows the file
// extension.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E302").
			WithDetail("Cannot read manifest " + path).
			Wrap(err)
	}
	if strings.HasSuffix(path, ".hcl") {
		return ParseHCL(data, path)
	}
	return Parse(data, path)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Parse decodes a manifest and checks it. path is used for error locations
// only.
func Parse(data []byte, path string) (*Manifest, error) {
	m := &Manifest{path: path}
	if err := yaml.Unmarshal(data, m); err != nil {
		we := errors.New("E302").Wrap(err)
		if match := yamlLine.FindStringSubmatch(err.Error()); match != nil {
			line, _ := strconv.Atoi(match[1])
			we.WithLocation(path, line, 0)
		}
		return nil, we
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Path returns the file the manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// Validate checks that every component names a declared template and that
// top-level ids are present and unique.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Mount))
	for i := range m.Mount {
		spec := &m.Mount[i]
		if spec.ID == "" {
			return m.errorAt("E305", spec).
				WithDetail(fmt.Sprintf("Mount entry %d has no id", i))
		}
		if seen[spec.ID] {
			return m.errorAt("E305", spec).
				WithDetail(fmt.Sprintf("Mount id %q is used more than once", spec.ID))
		}
		seen[spec.ID] = true

		if err := m.checkTemplates(spec); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manifest) checkTemplates(spec *ComponentSpec) error {
	if _, ok := m.Templates[spec.Component]; !ok {
		return m.errorAt("E301", spec).
			WithDetail(fmt.Sprintf("Template %q is not declared under templates", spec.Component)).
			WithSuggestion(suggest(spec.Component, slices.Sorted(maps.Keys(m.Templates))))
	}
	for _, name := range spec.SlotNames() {
		children := spec.Slots[name]
		for i := range children {
			if err := m.checkTemplates(&children[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manifest) errorAt(code string, spec *ComponentSpec) *errors.WeaveError {
	we := errors.New(code)
	if spec.Line > 0 {
		we.WithLocation(m.path, spec.Line, spec.Column)
	}
	return we
}

func suggest(name string, known []string) string {
	if len(known) == 0 {
		return "Declare templates under \"templates:\" before mounting them"
	}
	best, bestDist := "", len(name)/2+1
	for _, k := range known {
		if d := levenshtein.Distance(name, k, nil); d < bestDist {
			best, bestDist = k, d
		}
	}
	if best != "" {
		return fmt.Sprintf("Did you mean %q?", best)
	}
	return fmt.Sprintf("Known templates: %v", known)
}
