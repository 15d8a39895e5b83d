// Package dom is the rendering surface used by weave.
//
// Views are ordinary golang.org/x/net/html node trees. This package adds the
// operations the runtime needs on top of them: parsing a template root,
// deep cloning, text and markup content, attribute, class-list and inline
// style access, and insertion relative to an existing sibling.
//
// # Node Trees
//
// Node is an alias for html.Node so callers can walk trees with the usual
// FirstChild/NextSibling pointers:
//
//	root, err := dom.Parse(`<div class="card"><h2>Title</h2><!--slot:items--></div>`)
//	copy := dom.Clone(root)
//	dom.SetText(copy.FirstChild, "Other title")
//
// # Rendering
//
// Render serializes a node (and its subtree) back to markup, which is how the
// preview server and the CLI present documents:
//
//	html, _ := dom.Render(copy)
//
// Nothing in this package is safe for concurrent use. A view is owned by one
// goroutine at a time, normally the frame loop.
package dom
