// Package template holds named view prototypes for weave components and
// drops.
//
// A Registry compiles markup once per name. Compiling parses the markup,
// keeps its first element as the prototype root and records every marker the
// runtime cares about (refs, bindings, slot anchors) as a Descriptor with a
// node path. Instantiating a prototype clones it and resolves the
// descriptors against the clone, so markup attributes are never rescanned
// per instance.
//
//	reg := template.NewRegistry()
//	reg.CompileTemplate("card", `<div><h2 data-text="title"></h2><!--slot:body--></div>`)
//
//	inst := reg.Instantiate("card")   // clone + resolved markers
//	view := reg.GetTemplate("card")   // bare clone
//
// # Drops
//
// A drop is a standalone fragment filled through the same markers without a
// component around it:
//
//	reg.RegisterDrop("badge", `<span class="badge" data-text="label"></span>`)
//	d, err := reg.CreateDrop("badge", map[string]any{"label": "new"})
//
// Registration is name-keyed and last-write-wins; re-registering a name logs
// a warning.
package template
