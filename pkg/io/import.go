package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowmodel/pkg/model"
)

// ReadDocument decodes a JSON graph document from r without building a graph.
func ReadDocument(r io.Reader) (model.GraphConfig, error) {
	var doc model.GraphConfig
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.GraphConfig{}, fmt.Errorf("decode: %w", err)
	}
	return doc, nil
}

// ReadJSON decodes a JSON snapshot from r into a new graph configured by opts.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "a", "type": "rect", "x": 100, "y": 100}],
//	  "edges": [{"id": "e", "type": "line", "sourceNodeId": "a", "targetNodeId": "a"}]
//	}
//
// Labels may be given as a bare string or as {"value", "x", "y"}. Edge
// geometry is optional; missing endpoints are derived from node anchors.
//
// ReadJSON returns an error if the JSON is malformed or an element names a
// type the registry in opts does not know. Node and edge ids that collide are
// regenerated, so the returned graph's ids may differ from the input.
// ReadJSON does not close r.
func ReadJSON(r io.Reader, opts model.Options) (*model.Graph, error) {
	doc, err := ReadDocument(r)
	if err != nil {
		return nil, err
	}
	g := model.New(opts)
	if err := g.Load(doc); err != nil {
		return nil, err
	}
	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
func ImportJSON(path string, opts model.Options) (*model.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, opts)
}
