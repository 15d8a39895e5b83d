// Package preview serves a live weave document over HTTP.
//
// The server owns a document whose body holds the mounted root components.
// All tree mutations run on a frame.Loop; HTTP handlers hand work to the
// loop with Do and wait for it. After every frame that changed the rendered
// document, a Snapshot is pushed to every websocket client as a msgpack
// binary message.
//
// Routes:
//
//	GET    /                        rendered document
//	GET    /components              JSON list of mounted components and their state
//	POST   /components/{id}/update  JSON object applied with Component.Update
//	DELETE /components/{id}         unmount and forget a component
//	GET    /ws                      snapshot stream
//	GET    /metrics                 Prometheus metrics, when a Gatherer is configured
//
// Example:
//
//	loop := frame.NewLoop(frame.Config{})
//	rt := weave.New(weave.Config{Scheduler: loop})
//	srv, err := preview.New(preview.Config{Runtime: rt, Loop: loop})
//	...
//	srv.Add(ctx, "main", card)
//	srv.ListenAndServe(ctx, "localhost:4000")
package preview
