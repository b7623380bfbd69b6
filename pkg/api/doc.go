// Package api serves a single flowmodel graph over HTTP.
//
// The server owns one [model.Graph] and serializes every request against
// it with a mutex; the graph itself is not safe for concurrent use. Routes
// map one-to-one onto graph operations:
//
//	GET    /graph                       snapshot
//	PUT    /graph                       replace content from a document
//	DELETE /graph                       clear
//	POST   /nodes                       add node
//	GET    /nodes/{id}                  node snapshot
//	DELETE /nodes/{id}                  delete node and its edges
//	POST   /nodes/{id}/move             move by {dx, dy}
//	POST   /nodes/{id}/move-to          move to {x, y}
//	POST   /nodes/move                  batch move {ids, dx, dy}
//	POST   /edges                       add edge
//	GET    /edges/{id}                  edge snapshot
//	DELETE /edges/{id}                  delete edge
//	GET    /selection                   selected ids
//	DELETE /selection                   clear selection
//	POST   /elements/{id}/select        select {multiple}
//	POST   /elements/{id}/to-front      raise
//	PUT    /elements/{id}/z-index       {zIndex: "top" | "bottom" | n}
//	PUT    /elements/{id}/state         {state}
//	PATCH  /elements/{id}/properties    merge properties
//	PUT    /elements/{id}/text          {value}
//	POST   /script                      apply a TOML mutation script
//	GET    /render?format=svg           render through the pipeline
//	GET    /events                      WebSocket stream of graph events
//	GET    /snapshots                   list stored snapshots
//	PUT    /snapshots/{name}            save the graph under name
//	POST   /snapshots/{name}/load       replace the graph with a snapshot
//	DELETE /snapshots/{name}            delete a snapshot
//
// Errors are returned as JSON {"code", "message"} with the HTTP status
// derived from the error code.
package api
