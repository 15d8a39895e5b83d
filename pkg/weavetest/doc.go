// Package weavetest provides testing helpers for weave components.
//
// A Harness wires a runtime to a manual frame scheduler, an empty <body>
// and a log buffer, so a test can build components, step frames
// deterministically and assert on the rendered document.
//
// # Quick Start
//
//	func TestCard(t *testing.T) {
//	    h := weavetest.NewHarness(t).
//	        Template("card", `<div><h2 data-text="title"></h2></div>`)
//
//	    card := h.Mount(weave.Definition{Name: "card"}, map[string]any{"title": "Hi"})
//	    h.Settle()
//
//	    weavetest.ExpectHTML(t, card.View(), `<div><h2 data-text="title">Hi</h2></div>`)
//	}
//
// # Render Assertions
//
//	weavetest.ExpectContains(t, h.Body(), "Welcome")
//	weavetest.ExpectNotContains(t, h.Body(), "Error")
//	weavetest.ExpectAttribute(t, node, "class", "btn primary")
package weavetest
