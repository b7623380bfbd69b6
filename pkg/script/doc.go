// Package script applies ordered mutation scripts to a graph.
//
// Scripts are TOML documents with one [[op]] table per operation. Each op
// maps onto one public graph operation, so a script is a recorded editing
// session that can be replayed on any snapshot:
//
//	[[op]]
//	op = "add-node"
//	id = "start"
//	type = "circle"
//	x = 100
//	y = 100
//	text = "Start"
//
//	[[op]]
//	op = "add-edge"
//	source = "start"
//	target = "check"
//
//	[[op]]
//	op = "move-batch"
//	ids = ["start", "check"]
//	dx = 20
//
//	[[op]]
//	op = "z-index"
//	id = "check"
//	z_index = "top"
//
// Operations on missing elements are no-ops with a logged warning, matching
// the graph's own semantics. Unknown op names and element types abort the
// script at the failing op.
package script
