// Package graph is the readiness engine of a compiled stream.
//
// A Graph is produced by stream.Builder.Construct and holds, for one run,
// a countdown of outstanding predecessors per node, the queue of nodes
// that may run right now, and the values forwarded along pipe edges.
//
// The protocol an executor follows is:
//
//	for g.IsActive() {
//		for _, n := range g.GetReady() {
//			out, err := n.Run(ctx, g.Received(n.ID()), args, kwargs)
//			// handle err
//			g.Send(n.ID(), out)
//			g.Done(n.ID())
//		}
//	}
//
// Send must precede Done so a successor made ready in the same step sees
// the forwarded value. Every graph compiled from the same builder has its
// own states, received values and copy of the edges, so runs never observe
// each other or later changes to the builder.
package graph
