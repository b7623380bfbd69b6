package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowmodel/pkg/model"
)

// WriteData encodes a graph snapshot as indented JSON and writes it to w.
func WriteData(data model.GraphData, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSON encodes the graph's snapshot as JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(g *model.Graph, w io.Writer) error {
	return WriteData(g.GraphData(), w)
}

// ExportJSON writes the graph's snapshot to a JSON file at path.
func ExportJSON(g *model.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
