// Package io provides JSON import and export for flowchart graphs.
//
// # JSON Format
//
// The format is the graph snapshot produced by [model.Graph.GraphData]:
//
//	{
//	  "nodes": [
//	    {"id": "start", "type": "circle", "x": 100, "y": 100, "properties": {}},
//	    {"id": "check", "type": "rect", "x": 300, "y": 100, "properties": {},
//	     "text": {"x": 300, "y": 100, "value": "valid?"}}
//	  ],
//	  "edges": [
//	    {"id": "e1", "type": "polyline", "sourceNodeId": "start", "targetNodeId": "check",
//	     "startPoint": {"x": 150, "y": 100}, "endPoint": {"x": 250, "y": 100},
//	     "pointsList": [{"x": 150, "y": 100}, {"x": 250, "y": 100}], "properties": {}}
//	  ]
//	}
//
// Text is present only for non-empty labels. zIndex is present only for
// graphs using the increase overlap mode.
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader. Both take the [model.Options] the new graph is built
// with, so custom types must be registered in opts.Registry beforehand:
//
//	g, err := io.ImportJSON("flow.json", model.Options{GridSize: 10})
//
// # Export
//
// Use [ExportJSON] to write a graph to a file, or [WriteJSON] to write to any
// io.Writer. Exporting then importing with the same options reproduces the
// same snapshot.
package io
