package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/event"
	"github.com/matzehuels/flowmodel/pkg/geometry"
)

type recorder struct {
	events []event.Event
}

func (r *recorder) types() []event.Type {
	out := make([]event.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) count(t event.Type) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func newTestGraph(t *testing.T, opts Options) (*Graph, *recorder) {
	t.Helper()
	g := New(opts)
	rec := &recorder{}
	g.On(event.Any, func(e event.Event) { rec.events = append(rec.events, e) })
	return g, rec
}

func mustNode(t *testing.T, g *Graph, cfg NodeConfig) *Node {
	t.Helper()
	n, err := g.AddNode(cfg)
	if err != nil {
		t.Fatalf("AddNode(%+v) error: %v", cfg, err)
	}
	return n
}

func mustEdge(t *testing.T, g *Graph, cfg EdgeConfig) *Edge {
	t.Helper()
	e, err := g.AddEdge(cfg)
	if err != nil {
		t.Fatalf("AddEdge(%+v) error: %v", cfg, err)
	}
	return e
}

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

// ===== Creation =====

func TestAddNodeSnapshot(t *testing.T) {
	g, rec := newTestGraph(t, Options{GridSize: 10})
	n := mustNode(t, g, NodeConfig{Type: "rect", X: 100, Y: 100})

	if n.X != 100 || n.Y != 100 {
		t.Errorf("position = (%v, %v), want (100, 100)", n.X, n.Y)
	}
	raw, err := json.Marshal(n.Data())
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "type", "x", "y", "properties"} {
		if _, ok := got[key]; !ok {
			t.Errorf("snapshot missing %q: %s", key, raw)
		}
	}
	for _, key := range []string{"text", "zIndex"} {
		if _, ok := got[key]; ok {
			t.Errorf("snapshot has unexpected %q: %s", key, raw)
		}
	}
	if props, ok := got["properties"].(map[string]any); !ok || len(props) != 0 {
		t.Errorf("properties = %v, want {}", got["properties"])
	}
	if got["type"] != "rect" {
		t.Errorf("type = %v, want rect", got["type"])
	}
	if rec.count(event.NodeAdd) != 1 {
		t.Errorf("node:add events = %d, want 1", rec.count(event.NodeAdd))
	}
}

func TestAddNodeSnapsToGrid(t *testing.T) {
	g := New(Options{GridSize: 20})
	n := mustNode(t, g, NodeConfig{Type: "rect", X: 33, Y: 9, Text: TextValue("hi")})

	if n.X != 40 || n.Y != 0 {
		t.Errorf("position = (%v, %v), want (40, 0)", n.X, n.Y)
	}
	if n.Text.X != 40 || n.Text.Y != 0 {
		t.Errorf("text position = (%v, %v), want (40, 0)", n.Text.X, n.Text.Y)
	}
}

func TestAddNodeUnknownType(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	mustNode(t, g, NodeConfig{Type: "rect"})
	before := len(rec.events)

	_, err := g.AddNode(NodeConfig{Type: "bogus"})
	if !errors.Is(err, errors.ErrCodeUnknownType) {
		t.Fatalf("AddNode(bogus) error = %v, want UNKNOWN_TYPE", err)
	}
	if len(g.Nodes()) != 1 {
		t.Errorf("len(Nodes) = %d, want 1", len(g.Nodes()))
	}
	if len(rec.events) != before {
		t.Errorf("unknown type emitted %d events", len(rec.events)-before)
	}
}

func TestAddNodeRejectsEdgeType(t *testing.T) {
	g := New(Options{})
	if _, err := g.AddNode(NodeConfig{Type: "line"}); !errors.Is(err, errors.ErrCodeUnknownType) {
		t.Errorf("AddNode(line) error = %v, want UNKNOWN_TYPE", err)
	}
	if _, err := g.AddEdge(EdgeConfig{Type: "rect"}); !errors.Is(err, errors.ErrCodeUnknownType) {
		t.Errorf("AddEdge(rect) error = %v, want UNKNOWN_TYPE", err)
	}
}

func TestUniqueIDs(t *testing.T) {
	g := New(Options{})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	dup := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	b := mustNode(t, g, NodeConfig{ID: "b", Type: "rect"})
	e := mustEdge(t, g, EdgeConfig{ID: "a", SourceNodeID: "a", TargetNodeID: "b"})

	seen := map[string]bool{}
	for _, id := range []string{a.ID, dup.ID, b.ID, e.ID} {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if a.ID != "a" {
		t.Errorf("first node id = %q, want a", a.ID)
	}
	if _, err := uuid.Parse(dup.ID); err != nil {
		t.Errorf("regenerated id %q is not a uuid: %v", dup.ID, err)
	}
}

type namedRect struct{ RectNode }

func (namedRect) CreateID(n *Node) string {
	name, _ := n.Properties["name"].(string)
	return "named-" + name
}

func TestIDPriority(t *testing.T) {
	calls := 0
	g := New(Options{IDGenerator: func(typ string) string {
		calls++
		return typ + "-gen"
	}})
	if err := g.RegisterType("named", namedRect{}); err != nil {
		t.Fatal(err)
	}

	custom := mustNode(t, g, NodeConfig{Type: "named", Properties: map[string]any{"name": "x"}})
	if custom.ID != "named-x" {
		t.Errorf("custom id = %q, want named-x", custom.ID)
	}
	generated := mustNode(t, g, NodeConfig{Type: "rect"})
	if generated.ID != "rect-gen" {
		t.Errorf("generated id = %q, want rect-gen", generated.ID)
	}
	// The generator's id is taken now, so a UUID is used.
	fallback := mustNode(t, g, NodeConfig{Type: "rect"})
	if _, err := uuid.Parse(fallback.ID); err != nil {
		t.Errorf("fallback id %q is not a uuid", fallback.ID)
	}
	if calls != 2 {
		t.Errorf("generator calls = %d, want 2", calls)
	}
}

func TestMalformedIDRegenerated(t *testing.T) {
	g := New(Options{})
	n := mustNode(t, g, NodeConfig{ID: "bad\nid", Type: "rect"})
	if _, err := uuid.Parse(n.ID); err != nil {
		t.Errorf("id = %q, want a generated uuid", n.ID)
	}
}

func TestRegisterTypeValidatesName(t *testing.T) {
	g := New(Options{})
	for _, name := range []string{"", "1rect", "has space"} {
		if err := g.RegisterType(name, RectNode{}); !errors.Is(err, errors.ErrCodeInvalidType) {
			t.Errorf("RegisterType(%q) error = %v, want INVALID_TYPE", name, err)
		}
	}
	if err := g.RegisterType("bpmn:task", RectNode{}); err != nil {
		t.Fatalf("RegisterType(bpmn:task): %v", err)
	}
	if _, ok := g.Registry().Lookup("bpmn:task"); !ok {
		t.Error("bpmn:task not registered")
	}
}

func TestAddEdgeDefaults(t *testing.T) {
	g := New(Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect", X: 0, Y: 0})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300, Y: 0})
	e := mustEdge(t, g, EdgeConfig{SourceNodeID: "a", TargetNodeID: "b"})

	if e.Type != "polyline" {
		t.Errorf("type = %q, want polyline", e.Type)
	}
	if e.StartPoint != pt(50, 0) || e.EndPoint != pt(250, 0) {
		t.Errorf("endpoints = %v -> %v, want (50,0) -> (250,0)", e.StartPoint, e.EndPoint)
	}
	if e.SourceAnchorID != "a_1" || e.TargetAnchorID != "b_3" {
		t.Errorf("anchors = %q, %q, want a_1, b_3", e.SourceAnchorID, e.TargetAnchorID)
	}
	if len(e.PointsList) != 2 {
		t.Errorf("PointsList = %v, want straight route", e.PointsList)
	}
	if e.Text.X != 150 || e.Text.Y != 0 {
		t.Errorf("text position = (%v, %v), want (150, 0)", e.Text.X, e.Text.Y)
	}
}

func TestAddEdgeOrthogonalRoute(t *testing.T) {
	g := New(Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect", X: 0, Y: 0})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300, Y: 200})
	e := mustEdge(t, g, EdgeConfig{SourceNodeID: "a", TargetNodeID: "b"})

	want := []geometry.Point{pt(50, 0), pt(150, 0), pt(150, 200), pt(250, 200)}
	if len(e.PointsList) != len(want) {
		t.Fatalf("PointsList = %v, want %v", e.PointsList, want)
	}
	for i := range want {
		if e.PointsList[i] != want[i] {
			t.Errorf("PointsList[%d] = %v, want %v", i, e.PointsList[i], want[i])
		}
	}
	if got := e.TextPosition(); got != pt(150, 100) {
		t.Errorf("TextPosition = %v, want (150,100)", got)
	}
}

func TestAddEdgeExplicitGeometry(t *testing.T) {
	g := New(Options{EdgeType: "line"})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	start, end := pt(1, 2), pt(3, 4)
	e := mustEdge(t, g, EdgeConfig{SourceNodeID: "a", TargetNodeID: "b", StartPoint: &start, EndPoint: &end})

	if e.Type != "line" {
		t.Errorf("type = %q, want line", e.Type)
	}
	if e.StartPoint != start || e.EndPoint != end {
		t.Errorf("endpoints = %v -> %v, want %v -> %v", e.StartPoint, e.EndPoint, start, end)
	}
	if e.Data().PointsList != nil {
		t.Errorf("line edge snapshot has pointsList")
	}
}

func TestEdgeGenerator(t *testing.T) {
	g := New(Options{EdgeGenerator: func(source, target NodeData, cur EdgeConfig) EdgeConfig {
		if source.Type == "circle" {
			cur.Type = "line"
		}
		return cur
	}})
	mustNode(t, g, NodeConfig{ID: "c", Type: "circle"})
	mustNode(t, g, NodeConfig{ID: "r", Type: "rect", X: 300})

	if e := mustEdge(t, g, EdgeConfig{SourceNodeID: "c", TargetNodeID: "r"}); e.Type != "line" {
		t.Errorf("generated type = %q, want line", e.Type)
	}
	if e := mustEdge(t, g, EdgeConfig{SourceNodeID: "r", TargetNodeID: "c"}); e.Type != "polyline" {
		t.Errorf("default type = %q, want polyline", e.Type)
	}
}

// ===== Movement =====

func TestMoveNodeConservation(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect", Text: TextValue("A")})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	e := mustEdge(t, g, EdgeConfig{Type: "line", SourceNodeID: "a", TargetNodeID: "b", Text: TextValue("hi")})

	g.MoveNode("a", 20, 10, false)

	if a.X != 20 || a.Y != 10 {
		t.Errorf("node = (%v, %v), want (20, 10)", a.X, a.Y)
	}
	if a.Text.X != 20 || a.Text.Y != 10 {
		t.Errorf("node text = (%v, %v), want (20, 10)", a.Text.X, a.Text.Y)
	}
	if e.StartPoint != pt(70, 10) {
		t.Errorf("start = %v, want (70,10)", e.StartPoint)
	}
	if e.EndPoint != pt(250, 0) {
		t.Errorf("end = %v, want unchanged (250,0)", e.EndPoint)
	}
	if e.Text.X != 170 || e.Text.Y != 10 {
		t.Errorf("edge text = (%v, %v), want (170, 10)", e.Text.X, e.Text.Y)
	}
	if rec.count(event.NodeMove) != 1 {
		t.Errorf("node:move events = %d, want 1", rec.count(event.NodeMove))
	}
}

func TestMoveNodeSelfLoop(t *testing.T) {
	g := New(Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	start, end := pt(0, -40), pt(50, 0)
	e := mustEdge(t, g, EdgeConfig{Type: "line", SourceNodeID: "a", TargetNodeID: "a", StartPoint: &start, EndPoint: &end, Text: TextValue("loop")})
	textBefore := e.Text

	g.MoveNode("a", 5, 5, false)

	if e.StartPoint != pt(5, -35) || e.EndPoint != pt(55, 5) {
		t.Errorf("endpoints = %v -> %v", e.StartPoint, e.EndPoint)
	}
	if e.Text.X != textBefore.X+5 || e.Text.Y != textBefore.Y+5 {
		t.Errorf("label moved to (%v, %v), want a single (5,5) translation", e.Text.X, e.Text.Y)
	}
}

func TestMoveNodeRules(t *testing.T) {
	tests := []struct {
		name        string
		rule        MoveRule
		ignoreRules bool
		wantX       float64
		wantY       float64
	}{
		{"veto", AllowMove(func(*Node, float64, float64) bool { return false }), false, 0, 0},
		{"veto ignored", AllowMove(func(*Node, float64, float64) bool { return false }), true, 10, 10},
		{"axis lock", AxisLock(true), false, 10, 0},
		{"clamp", func(_ *Node, dx, dy float64) (float64, float64) { return min(dx, 3), min(dy, 3) }, false, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, rec := newTestGraph(t, Options{})
			n := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
			mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
			e := mustEdge(t, g, EdgeConfig{Type: "line", SourceNodeID: "a", TargetNodeID: "b"})
			n.AddMoveRule(tt.rule)

			g.MoveNode("a", 10, 10, tt.ignoreRules)

			if n.X != tt.wantX || n.Y != tt.wantY {
				t.Errorf("node = (%v, %v), want (%v, %v)", n.X, n.Y, tt.wantX, tt.wantY)
			}
			if want := pt(50+tt.wantX, tt.wantY); e.StartPoint != want {
				t.Errorf("edge start = %v, want %v", e.StartPoint, want)
			}
			wantEvents := 1
			if tt.wantX == 0 && tt.wantY == 0 {
				wantEvents = 0
			}
			if rec.count(event.NodeMove) != wantEvents {
				t.Errorf("node:move events = %d, want %d", rec.count(event.NodeMove), wantEvents)
			}
		})
	}
}

func TestGraphMoveRule(t *testing.T) {
	g := New(Options{})
	n := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	g.AddNodeMoveRule(AxisLock(false))

	g.MoveNode("a", 10, 10, false)
	if n.X != 0 || n.Y != 10 {
		t.Errorf("node = (%v, %v), want (0, 10)", n.X, n.Y)
	}
}

func TestMoveNodeMissingWarns(t *testing.T) {
	var buf bytes.Buffer
	g := New(Options{Logger: log.New(&buf)})

	g.MoveNode("ghost", 1, 1, false)

	if !strings.Contains(buf.String(), "node not found") {
		t.Errorf("log = %q, want a node not found warning", buf.String())
	}
}

func TestMoveEdgeMissingNodeWarns(t *testing.T) {
	var buf bytes.Buffer
	g, rec := newTestGraph(t, Options{Logger: log.New(&buf)})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	e := mustEdge(t, g, EdgeConfig{ID: "ab", SourceNodeID: "a", TargetNodeID: "b"})
	start := e.StartPoint
	rec.events = nil

	g.MoveEdge("ghost", 5, 5)

	if !strings.Contains(buf.String(), "node not found") {
		t.Errorf("log = %q, want a node not found warning", buf.String())
	}
	if e.StartPoint != start || len(rec.events) != 0 {
		t.Errorf("edge changed or events emitted: %v %v", e.StartPoint, rec.types())
	}
}

func TestGraphsDoNotShareEventsByDefault(t *testing.T) {
	_, rec1 := newTestGraph(t, Options{})
	g2 := New(Options{})
	mustNode(t, g2, NodeConfig{Type: "rect"})
	if len(rec1.events) != 0 {
		t.Errorf("graph saw another graph's events: %v", rec1.types())
	}

	var shared int
	off := event.Default().On(event.NodeAdd, func(event.Event) { shared++ })
	defer off()
	g3 := New(Options{Emitter: event.Default()})
	mustNode(t, g3, NodeConfig{Type: "rect"})
	if shared != 1 {
		t.Errorf("default emitter received %d node:add events, want 1", shared)
	}
}

func TestMoveNode2Coordinate(t *testing.T) {
	g := New(Options{})
	n := mustNode(t, g, NodeConfig{ID: "a", Type: "rect", X: 10, Y: 10})

	g.MoveNode2Coordinate("a", 200, 150, false)
	if n.X != 200 || n.Y != 150 {
		t.Errorf("node = (%v, %v), want (200, 150)", n.X, n.Y)
	}
}

func isOrthogonal(points []geometry.Point) bool {
	for i := 1; i < len(points); i++ {
		if points[i].X != points[i-1].X && points[i].Y != points[i-1].Y {
			return false
		}
	}
	return true
}

func TestMoveEdgePolylineLabel(t *testing.T) {
	g := New(Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect", X: 0, Y: 0})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300, Y: 200})
	e := mustEdge(t, g, EdgeConfig{SourceNodeID: "a", TargetNodeID: "b", Text: TextValue("yes")})
	if e.Text.X != 150 || e.Text.Y != 100 {
		t.Fatalf("initial label = (%v, %v), want (150, 100)", e.Text.X, e.Text.Y)
	}

	g.MoveNode("b", 0, -150, false)

	if e.EndPoint != pt(250, 50) {
		t.Errorf("end = %v, want (250,50)", e.EndPoint)
	}
	if !isOrthogonal(e.PointsList) {
		t.Errorf("route lost orthogonality: %v", e.PointsList)
	}
	if e.PointsList[len(e.PointsList)-1] != e.EndPoint {
		t.Errorf("route end %v != EndPoint %v", e.PointsList[len(e.PointsList)-1], e.EndPoint)
	}
	if e.Text.X != 150 || e.Text.Y != 50 {
		t.Errorf("label = (%v, %v), want (150, 50)", e.Text.X, e.Text.Y)
	}
}

func TestMoveEdgeCustomTextPosition(t *testing.T) {
	g := New(Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	e := mustEdge(t, g, EdgeConfig{Type: "line", SourceNodeID: "a", TargetNodeID: "b", Text: TextValue("x")})
	e.SetTextPosition(-500, -500)

	g.MoveNode("b", 100, 0, false)

	if want := e.TextPosition(); e.Text.X != want.X || e.Text.Y != want.Y {
		t.Errorf("label = (%v, %v), want re-centered at %v", e.Text.X, e.Text.Y, want)
	}
}

func TestMoveNodesSharedEdge(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	mustNode(t, g, NodeConfig{ID: "A", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "B", Type: "rect", X: 300})
	e := mustEdge(t, g, EdgeConfig{Type: "line", SourceNodeID: "A", TargetNodeID: "B", Text: TextValue("label")})

	g.MoveNodes([]string{"A", "B"}, 5, 5, false)

	if e.StartPoint != pt(55, 5) || e.EndPoint != pt(255, 5) {
		t.Errorf("endpoints = %v -> %v, want (55,5) -> (255,5)", e.StartPoint, e.EndPoint)
	}
	if e.Text.X != 155 || e.Text.Y != 5 {
		t.Errorf("label = (%v, %v), want (155, 5)", e.Text.X, e.Text.Y)
	}
	if rec.count(event.NodesMove) != 1 {
		t.Fatalf("nodes:move events = %d, want 1", rec.count(event.NodesMove))
	}
	for _, ev := range rec.events {
		if ev.Type == event.NodesMove {
			if snaps := ev.Data.([]NodeData); len(snaps) != 2 {
				t.Errorf("nodes:move carried %d snapshots, want 2", len(snaps))
			}
		}
	}
}

func TestMoveNodesSkipsUnknownAndDuplicates(t *testing.T) {
	var buf bytes.Buffer
	g := New(Options{Logger: log.New(&buf)})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})

	g.MoveNodes([]string{"a", "ghost", "a"}, 5, 0, false)

	if a.X != 5 {
		t.Errorf("a.X = %v, want 5", a.X)
	}
	if !strings.Contains(buf.String(), "ghost") {
		t.Errorf("log = %q, want warning naming ghost", buf.String())
	}
}

// ===== Deletion =====

func TestDeleteEdgeMissing(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	mustEdge(t, g, EdgeConfig{SourceNodeID: "a", TargetNodeID: "b"})
	before := len(rec.events)

	g.DeleteEdgeByID("nonexistent")

	if len(g.Edges()) != 1 {
		t.Errorf("len(Edges) = %d, want 1", len(g.Edges()))
	}
	if len(rec.events) != before {
		t.Errorf("emitted %d events, want 0", len(rec.events)-before)
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	mustNode(t, g, NodeConfig{ID: "c", Type: "rect", X: 600})
	mustEdge(t, g, EdgeConfig{ID: "ab", SourceNodeID: "a", TargetNodeID: "b"})
	mustEdge(t, g, EdgeConfig{ID: "bc", SourceNodeID: "b", TargetNodeID: "c"})
	mustEdge(t, g, EdgeConfig{ID: "ac", SourceNodeID: "a", TargetNodeID: "c"})
	rec.events = nil

	if !g.DeleteNode("b") {
		t.Fatal("DeleteNode(b) = false")
	}
	if len(g.Edges()) != 1 || g.EdgeByID("ac") == nil {
		t.Errorf("remaining edges = %d, want only ac", len(g.Edges()))
	}
	want := []event.Type{event.EdgeDelete, event.EdgeDelete, event.NodeDelete}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if g.DeleteNode("b") {
		t.Error("second DeleteNode(b) = true")
	}
}

// ===== Selection and stacking =====

func TestSelectionExclusivity(t *testing.T) {
	g := New(Options{})
	for _, id := range []string{"a", "b", "c"} {
		mustNode(t, g, NodeConfig{ID: id, Type: "rect"})
	}
	g.SelectNodeByID("a", true)
	g.SelectNodeByID("b", true)
	if got := len(g.SelectElements()); got != 2 {
		t.Fatalf("selected = %d, want 2", got)
	}

	g.SelectNodeByID("c", false)

	sel := g.SelectElements()
	if len(sel) != 1 || sel[0].ID != "c" {
		t.Errorf("selection = %v, want [c]", sel)
	}
	for _, n := range g.Nodes() {
		if n.IsSelected != (n.ID == "c") {
			t.Errorf("%s.IsSelected = %v", n.ID, n.IsSelected)
		}
	}
}

func TestSelectEdgeAndMissing(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	mustEdge(t, g, EdgeConfig{ID: "ab", SourceNodeID: "a", TargetNodeID: "b"})

	g.SelectEdgeByID("ab", false)
	if sel := g.SelectElements(); len(sel) != 1 || sel[0].Kind() != KindEdge {
		t.Fatalf("selection = %v, want the edge", sel)
	}
	g.SelectNodeByID("ab", false)
	if len(g.SelectElements()) != 0 {
		t.Errorf("selecting an edge id as node kept a selection")
	}
	if rec.count(event.SelectionChange) != 2 {
		t.Errorf("selection:change events = %d, want 2", rec.count(event.SelectionChange))
	}
}

func TestToFrontDefaultMode(t *testing.T) {
	g := New(Options{})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	b := mustNode(t, g, NodeConfig{ID: "b", Type: "rect", X: 300})
	a.SetZIndex(5)

	g.ToFront("a")
	if a.ZIndex != MaxZIndex || g.TopElementID() != "a" {
		t.Fatalf("after ToFront(a): z = %d, top = %q", a.ZIndex, g.TopElementID())
	}
	g.ToFront("a")
	g.ToFront("b")
	if a.ZIndex != 5 {
		t.Errorf("a restored to %d, want 5", a.ZIndex)
	}
	if b.ZIndex != MaxZIndex {
		t.Errorf("b = %d, want %d", b.ZIndex, MaxZIndex)
	}

	g.ClearSelectElements()
	if b.ZIndex != 1 || g.TopElementID() != "" {
		t.Errorf("after clear: b = %d, top = %q", b.ZIndex, g.TopElementID())
	}
	if a.Data().ZIndex != nil {
		t.Errorf("default mode snapshot carries zIndex")
	}
}

func TestToFrontIncreaseMode(t *testing.T) {
	g := New(Options{OverlapMode: OverlapModeIncrease})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	b := mustNode(t, g, NodeConfig{ID: "b", Type: "rect"})
	c := mustNode(t, g, NodeConfig{ID: "c", Type: "rect"})
	if a.ZIndex != 1 || b.ZIndex != 2 || c.ZIndex != 3 {
		t.Fatalf("initial z = %d %d %d, want 1 2 3", a.ZIndex, b.ZIndex, c.ZIndex)
	}

	g.ToFront("a")
	g.ClearSelectElements()

	if a.ZIndex != 4 {
		t.Errorf("a = %d, want 4", a.ZIndex)
	}
	if z := a.Data().ZIndex; z == nil || *z != 4 {
		t.Errorf("snapshot zIndex = %v, want 4", z)
	}
}

func TestSetElementZIndex(t *testing.T) {
	g := New(Options{OverlapMode: OverlapModeIncrease})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect", ZIndex: 10})
	b := mustNode(t, g, NodeConfig{ID: "b", Type: "rect", ZIndex: 20})

	g.SetElementZIndex("a", ZTop)
	if a.ZIndex != 21 {
		t.Errorf("top: a = %d, want 21", a.ZIndex)
	}
	g.SetElementZIndex("b", ZBottom)
	if b.ZIndex != 19 {
		t.Errorf("bottom: b = %d, want 19", b.ZIndex)
	}
	g.SetElementZIndex("b", ZAt(7))
	if b.ZIndex != 7 {
		t.Errorf("literal: b = %d, want 7", b.ZIndex)
	}
}

func TestParseZIndex(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"top", "top", false},
		{"Bottom", "bottom", false},
		{"42", "42", false},
		{"-3", "-3", false},
		{"up", "", true},
	}
	for _, tt := range tests {
		z, err := ParseZIndex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseZIndex(%q) error = %v", tt.in, err)
			continue
		}
		if err == nil && z.String() != tt.want {
			t.Errorf("ParseZIndex(%q) = %s, want %s", tt.in, z, tt.want)
		}
	}
}

func TestSetElementStateByID(t *testing.T) {
	g := New(Options{})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	b := mustNode(t, g, NodeConfig{ID: "b", Type: "rect"})

	g.SetElementStateByID("a", StateTextEdit, nil)
	if a.State != StateTextEdit || b.State != StateDefault {
		t.Fatalf("states = %s, %s", a.State, b.State)
	}
	g.SetElementStateByID("b", StateTextEdit, nil)
	if a.State != StateDefault {
		t.Errorf("a = %s, want default", a.State)
	}
	if el := g.TextEditElement(); el == nil || el.ID != "b" {
		t.Errorf("TextEditElement = %v, want b", el)
	}
}

func TestDeletedTopElementIsForgotten(t *testing.T) {
	g := New(Options{})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	g.ToFront("a")
	g.DeleteNode("a")

	if g.TopElementID() != "" {
		t.Errorf("TopElementID = %q after delete", g.TopElementID())
	}
	g.ClearSelectElements()
}

// ===== Queries =====

func TestAreaElements(t *testing.T) {
	g := New(Options{})
	mustNode(t, g, NodeConfig{ID: "in", Type: "rect", X: 100, Y: 100})
	mustNode(t, g, NodeConfig{ID: "edge-of", Type: "rect", X: 190, Y: 100})
	mustNode(t, g, NodeConfig{ID: "out", Type: "rect", X: 500, Y: 500})

	ids := func(els []*Element) []string {
		var out []string
		for _, el := range els {
			out = append(out, el.ID)
		}
		return out
	}
	lt, rb := pt(0, 0), pt(200, 200)

	if got := ids(g.AreaElements(lt, rb, false, false)); len(got) != 2 {
		t.Errorf("center containment = %v, want [in edge-of]", got)
	}
	if got := ids(g.AreaElements(lt, rb, false, true)); len(got) != 1 || got[0] != "in" {
		t.Errorf("whole containment = %v, want [in]", got)
	}
}

func TestFakerNode(t *testing.T) {
	g := New(Options{})
	f, err := g.SetFakerNode(NodeConfig{ID: "preview", Type: "rect"})
	if err != nil {
		t.Fatal(err)
	}
	if !f.Virtual {
		t.Error("faker node is not virtual")
	}
	if g.NodeByID("preview") != f {
		t.Error("NodeByID does not find the faker node")
	}
	if len(g.Nodes()) != 0 || len(g.GraphData().Nodes) != 0 {
		t.Error("faker node leaked into the collection")
	}
	g.RemoveFakerNode()
	if g.NodeByID("preview") != nil {
		t.Error("faker node still reachable after removal")
	}
}

func TestIsConnectionAllowed(t *testing.T) {
	g := New(Options{})
	a := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})
	mustNode(t, g, NodeConfig{ID: "b", Type: "circle"})
	mustNode(t, g, NodeConfig{ID: "c", Type: "rect"})
	a.AddSourceRule(ConnectRule{
		Message: "rect may only connect to rect",
		Validate: func(_, target *Node, _, _ *Anchor, _ string) bool {
			return target.Type == "rect"
		},
	})

	if r := g.IsConnectionAllowed("a", "c", "", "", ""); !r.IsAllPass {
		t.Errorf("a->c rejected: %s", r.Message)
	}
	r := g.IsConnectionAllowed("a", "b", "", "", "")
	if r.IsAllPass || r.Message != "rect may only connect to rect" {
		t.Errorf("a->b = %+v, want rejection", r)
	}
}

func TestUpdateTextAndProperties(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	n := mustNode(t, g, NodeConfig{ID: "a", Type: "rect"})

	g.UpdateText("a", "hello")
	g.SetProperties("a", map[string]any{"owner": "ops"})

	if n.Text.Value != "hello" || n.Properties["owner"] != "ops" {
		t.Errorf("node = %+v", n.Data())
	}
	if d := n.Data(); d.Text == nil || d.Text.Value != "hello" {
		t.Errorf("snapshot text = %v", d.Text)
	}
	if rec.count(event.TextUpdate) != 1 || rec.count(event.PropertiesChange) != 1 {
		t.Errorf("events = %v", rec.types())
	}
}

func TestLoadRoundTrip(t *testing.T) {
	g := New(Options{OverlapMode: OverlapModeIncrease})
	mustNode(t, g, NodeConfig{ID: "a", Type: "rect", Width: 200, Height: 40, Text: TextValue("A")})
	mustNode(t, g, NodeConfig{ID: "b", Type: "circle", X: 300, Y: 200, Properties: map[string]any{"r": 30.0}})
	mustEdge(t, g, EdgeConfig{ID: "ab", SourceNodeID: "a", TargetNodeID: "b", Text: TextValue("go")})
	want, _ := json.Marshal(g.GraphData())

	// Through JSON, as stores and documents do.
	var data GraphData
	if err := json.Unmarshal(want, &data); err != nil {
		t.Fatal(err)
	}
	h := New(Options{OverlapMode: OverlapModeIncrease})
	if err := h.Load(data.Config()); err != nil {
		t.Fatal(err)
	}
	got, _ := json.Marshal(h.GraphData())
	if string(got) != string(want) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", got, want)
	}
	for _, id := range []string{"a", "b"} {
		before, after := g.NodeByID(id), h.NodeByID(id)
		if before.Width() != after.Width() || before.Height() != after.Height() {
			t.Errorf("%s size = %vx%v after reload, want %vx%v",
				id, after.Width(), after.Height(), before.Width(), before.Height())
		}
	}
	if a := h.NodeByID("a"); a.Width() != 200 || a.Height() != 40 {
		t.Errorf("rect size = %vx%v, want 200x40", a.Width(), a.Height())
	}
}

func TestRectSizeFollowsProperties(t *testing.T) {
	g := New(Options{})
	n := mustNode(t, g, NodeConfig{ID: "r", Type: "rect", X: 100, Y: 100, Width: 60, Height: 40})
	n.SetProperty("width", 120.0)
	if n.Width() != 120 || n.Height() != 40 {
		t.Fatalf("size = %vx%v, want 120x40", n.Width(), n.Height())
	}
	if a := n.Anchors()[1]; a.X != 160 {
		t.Errorf("right anchor x = %v, want 160", a.X)
	}
}

func TestLoadUnknownTypeClears(t *testing.T) {
	g := New(Options{})
	err := g.Load(GraphConfig{Nodes: []NodeConfig{{ID: "a", Type: "rect"}, {ID: "b", Type: "hexagon"}}})
	if !errors.Is(err, errors.ErrCodeUnknownType) {
		t.Fatalf("Load error = %v, want UNKNOWN_TYPE", err)
	}
	if len(g.Nodes()) != 0 {
		t.Errorf("graph kept %d nodes after failed load", len(g.Nodes()))
	}
}

func TestClearData(t *testing.T) {
	g, rec := newTestGraph(t, Options{})
	mustNode(t, g, NodeConfig{Type: "rect"})
	g.ClearData()
	if len(g.Nodes()) != 0 || rec.count(event.GraphClear) != 1 {
		t.Errorf("nodes = %d, graph:clear = %d", len(g.Nodes()), rec.count(event.GraphClear))
	}
}
