package script

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/geometry"
	"github.com/matzehuels/flowmodel/pkg/model"
)

// Op names.
const (
	OpAddNode        = "add-node"
	OpAddEdge        = "add-edge"
	OpMove           = "move"
	OpMoveTo         = "move-to"
	OpMoveBatch      = "move-batch"
	OpSelect         = "select"
	OpClearSelection = "clear-selection"
	OpToFront        = "to-front"
	OpZIndex         = "z-index"
	OpSetState       = "set-state"
	OpSetProperties  = "set-properties"
	OpUpdateText     = "update-text"
	OpDeleteEdge     = "delete-edge"
	OpDeleteNode     = "delete-node"
	OpClear          = "clear"
)

// Op is one scripted operation. Fields not used by the op are ignored.
type Op struct {
	Op          string            `toml:"op"`
	ID          string            `toml:"id"`
	IDs         []string          `toml:"ids"`
	Type        string            `toml:"type"`
	X           float64           `toml:"x"`
	Y           float64           `toml:"y"`
	DX          float64           `toml:"dx"`
	DY          float64           `toml:"dy"`
	Width       float64           `toml:"width"`
	Height      float64           `toml:"height"`
	Text        *model.TextConfig `toml:"text"`
	Source      string            `toml:"source"`
	Target      string            `toml:"target"`
	Points      []geometry.Point  `toml:"points"`
	Properties  map[string]any    `toml:"properties"`
	Multiple    bool              `toml:"multiple"`
	IgnoreRules bool              `toml:"ignore_rules"`
	ZIndex      any               `toml:"z_index"`
	State       string            `toml:"state"`
	Value       string            `toml:"value"`
}

// Script is an ordered list of operations.
type Script struct {
	Ops []Op `toml:"op"`
}

// Parse decodes a TOML script from r.
func Parse(r io.Reader) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown script key %s", undecoded[0])
	}
	return &s, nil
}

// Load reads the script file at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Apply runs the operations in order against g. It returns the number of
// operations applied before the first error.
func (s *Script) Apply(g *model.Graph) (int, error) {
	for i, op := range s.Ops {
		if err := op.Apply(g); err != nil {
			return i, fmt.Errorf("op %d (%s): %w", i+1, op.Op, err)
		}
	}
	return len(s.Ops), nil
}

// Apply runs a single operation against g.
func (op Op) Apply(g *model.Graph) error {
	switch op.Op {
	case OpAddNode:
		_, err := g.AddNode(model.NodeConfig{
			ID:         op.ID,
			Type:       op.Type,
			X:          op.X,
			Y:          op.Y,
			Width:      op.Width,
			Height:     op.Height,
			Text:       op.Text,
			Properties: op.Properties,
		})
		return err
	case OpAddEdge:
		_, err := g.AddEdge(model.EdgeConfig{
			ID:           op.ID,
			Type:         op.Type,
			SourceNodeID: op.Source,
			TargetNodeID: op.Target,
			PointsList:   op.Points,
			Text:         op.Text,
			Properties:   op.Properties,
		})
		return err
	case OpMove:
		g.MoveNode(op.ID, op.DX, op.DY, op.IgnoreRules)
	case OpMoveTo:
		g.MoveNode2Coordinate(op.ID, op.X, op.Y, op.IgnoreRules)
	case OpMoveBatch:
		g.MoveNodes(op.IDs, op.DX, op.DY, op.IgnoreRules)
	case OpSelect:
		g.SelectElementByID(op.ID, op.Multiple)
	case OpClearSelection:
		g.ClearSelectElements()
	case OpToFront:
		g.ToFront(op.ID)
	case OpZIndex:
		z, err := parseZ(op.ZIndex)
		if err != nil {
			return err
		}
		g.SetElementZIndex(op.ID, z)
	case OpSetState:
		st, err := model.ParseElementState(op.State)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "state")
		}
		g.SetElementStateByID(op.ID, st, nil)
	case OpSetProperties:
		g.SetProperties(op.ID, op.Properties)
	case OpUpdateText:
		g.UpdateText(op.ID, op.Value)
	case OpDeleteEdge:
		g.DeleteEdgeByID(op.ID)
	case OpDeleteNode:
		g.DeleteNode(op.ID)
	case OpClear:
		g.ClearData()
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown op %q", op.Op)
	}
	return nil
}

func parseZ(v any) (model.ZIndex, error) {
	switch z := v.(type) {
	case int64:
		return model.ZAt(int(z)), nil
	case string:
		parsed, err := model.ParseZIndex(z)
		if err != nil {
			return model.ZIndex{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "z_index")
		}
		return parsed, nil
	}
	return model.ZIndex{}, errors.New(errors.ErrCodeInvalidInput, "z_index must be top, bottom or an integer, got %v", v)
}
