package model

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/event"
	"github.com/matzehuels/flowmodel/pkg/geometry"
)

// EdgeGenerator rewrites the config of an edge created without explicit
// geometry, e.g. to pick its type from the endpoint nodes.
type EdgeGenerator func(source, target NodeData, current EdgeConfig) EdgeConfig

// Options configures a [Graph]. The zero value is usable.
type Options struct {
	// GridSize snaps node positions on creation; values <= 1 disable snapping.
	GridSize float64
	// EdgeType is the type used when an edge config names none.
	// Defaults to "polyline".
	EdgeType string
	// OverlapMode selects the z-order policy.
	OverlapMode OverlapMode
	// IDGenerator produces ids from the element type when the behavior
	// supplies none. Falls back to random UUIDs.
	IDGenerator func(typ string) string
	// EdgeGenerator is applied to edges added without geometry.
	EdgeGenerator EdgeGenerator
	// Registry resolves element types. Defaults to [NewRegistry].
	Registry *Registry
	// Theme overrides the default styles.
	Theme *Theme
	// Emitter receives graph events. Each graph gets its own emitter unless
	// one is passed, so graphs in one process stay isolated; pass
	// [event.Default] to publish on the process-wide emitter.
	Emitter *event.Emitter
	// Logger receives warnings for no-op operations. Defaults to discarding.
	Logger *log.Logger
}

// Graph owns the element collections and enforces the consistency rules
// between them: unique ids, edges following nodes, selection and stacking.
type Graph struct {
	nodes []*Node
	edges []*Edge

	registry      *Registry
	theme         Theme
	emitter       *event.Emitter
	logger        *log.Logger
	gridSize      float64
	edgeType      string
	overlapMode   OverlapMode
	idGenerator   func(string) string
	edgeGenerator EdgeGenerator
	nodeMoveRules []MoveRule

	topElement  string
	topElementZ int
	fakerNode   *Node
}

// New creates an empty graph.
func New(opts Options) *Graph {
	g := &Graph{
		registry:      opts.Registry,
		theme:         DefaultTheme(),
		emitter:       opts.Emitter,
		logger:        opts.Logger,
		gridSize:      opts.GridSize,
		edgeType:      opts.EdgeType,
		overlapMode:   opts.OverlapMode,
		idGenerator:   opts.IDGenerator,
		edgeGenerator: opts.EdgeGenerator,
	}
	if g.registry == nil {
		g.registry = NewRegistry()
	}
	if opts.Theme != nil {
		g.theme = g.theme.Override(*opts.Theme)
	}
	if g.emitter == nil {
		g.emitter = event.New()
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	if g.edgeType == "" {
		g.edgeType = DefaultEdgeType
	}
	return g
}

// ===== Configuration =====

// Registry returns the graph's type registry.
func (g *Graph) Registry() *Registry { return g.registry }

// RegisterType binds a type name to a behavior, replacing any previous one.
// Names must start with a letter and may contain letters, digits and _:.-
func (g *Graph) RegisterType(name string, b Behavior) error {
	if err := errors.ValidateTypeName(name); err != nil {
		return err
	}
	g.registry.Register(name, b)
	return nil
}

// Emitter returns the emitter graph events are published on.
func (g *Graph) Emitter() *event.Emitter { return g.emitter }

// On subscribes fn to events of type t on the graph's emitter.
func (g *Graph) On(t event.Type, fn event.Handler) (off func()) { return g.emitter.On(t, fn) }

// Theme returns the resolved theme.
func (g *Graph) Theme() Theme { return g.theme }

// GridSize returns the snapping grid size.
func (g *Graph) GridSize() float64 { return g.gridSize }

// EdgeType returns the default edge type.
func (g *Graph) EdgeType() string { return g.edgeType }

// OverlapMode returns the z-order policy.
func (g *Graph) OverlapMode() OverlapMode { return g.overlapMode }

// TopElementID returns the element currently promoted by [Graph.ToFront]
// under [OverlapModeDefault], or "".
func (g *Graph) TopElementID() string { return g.topElement }

// AddNodeMoveRule appends a move rule applied to every node after its own rules.
func (g *Graph) AddNodeMoveRule(r MoveRule) { g.nodeMoveRules = append(g.nodeMoveRules, r) }

func (g *Graph) emit(t event.Type, data any) { g.emitter.Emit(t, data) }

// ===== Lookup =====

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

func (g *Graph) nodeIndex(id string) int {
	return slices.IndexFunc(g.nodes, func(n *Node) bool { return n.ID == id })
}

func (g *Graph) edgeIndex(id string) int {
	return slices.IndexFunc(g.edges, func(e *Edge) bool { return e.ID == id })
}

// NodeByID returns the node with the given id, including the faker node, or nil.
func (g *Graph) NodeByID(id string) *Node {
	if i := g.nodeIndex(id); i >= 0 {
		return g.nodes[i]
	}
	if g.fakerNode != nil && g.fakerNode.ID == id {
		return g.fakerNode
	}
	return nil
}

// EdgeByID returns the edge with the given id, or nil.
func (g *Graph) EdgeByID(id string) *Edge {
	if i := g.edgeIndex(id); i >= 0 {
		return g.edges[i]
	}
	return nil
}

// ElementByID returns the shared element record of the node or edge with the
// given id, or nil.
func (g *Graph) ElementByID(id string) *Element {
	if n := g.NodeByID(id); n != nil {
		return &n.Element
	}
	if e := g.EdgeByID(id); e != nil {
		return &e.Element
	}
	return nil
}

func (g *Graph) hasID(id string) bool {
	return g.nodeIndex(id) >= 0 || g.edgeIndex(id) >= 0
}

// NodeEdges returns the edges incident to the node.
func (g *Graph) NodeEdges(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.SourceNodeID == nodeID || e.TargetNodeID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// AreaElements returns the visible elements inside the rectangle spanned by
// leftTop and rightBottom. With wholeNode a node must fit entirely; otherwise
// its center suffices. With wholeEdge both endpoints must be inside;
// otherwise either one suffices.
func (g *Graph) AreaElements(leftTop, rightBottom geometry.Point, wholeEdge, wholeNode bool) []*Element {
	var out []*Element
	for _, n := range g.nodes {
		if !n.Visible {
			continue
		}
		inside := geometry.IsPointInArea(n.Position(), leftTop, rightBottom)
		if wholeNode {
			inside = true
			for _, c := range n.Bounds().Corners() {
				if !geometry.IsPointInArea(c, leftTop, rightBottom) {
					inside = false
					break
				}
			}
		}
		if inside {
			out = append(out, &n.Element)
		}
	}
	for _, e := range g.edges {
		if !e.Visible {
			continue
		}
		s := geometry.IsPointInArea(e.StartPoint, leftTop, rightBottom)
		t := geometry.IsPointInArea(e.EndPoint, leftTop, rightBottom)
		if (wholeEdge && s && t) || (!wholeEdge && (s || t)) {
			out = append(out, &e.Element)
		}
	}
	return out
}

// ===== Creation =====

// createID picks the first non-colliding candidate among the behavior's
// custom id, the graph generator and a random UUID.
func (g *Graph) createID(custom, typ string) string {
	if g.usableID(custom) {
		return custom
	}
	if g.idGenerator != nil {
		if id := g.idGenerator(typ); g.usableID(id) {
			return id
		}
	}
	for {
		if id := uuid.NewString(); !g.hasID(id) {
			return id
		}
	}
}

// usableID reports whether id is well formed and unused.
func (g *Graph) usableID(id string) bool {
	return errors.ValidateElementID(id) == nil && !g.hasID(id)
}

func (g *Graph) nextZIndex() int {
	z, ok := g.zExtent(true)
	if !ok {
		return 1
	}
	return z + 1
}

// zExtent returns the highest (or lowest) z-index among all elements.
func (g *Graph) zExtent(highest bool) (int, bool) {
	var (
		z     int
		found bool
	)
	visit := func(v int) {
		if !found || (highest && v > z) || (!highest && v < z) {
			z, found = v, true
		}
	}
	for _, n := range g.nodes {
		visit(n.ZIndex)
	}
	for _, e := range g.edges {
		visit(e.ZIndex)
	}
	return z, found
}

// AddNode creates a node and publishes [event.NodeAdd].
func (g *Graph) AddNode(cfg NodeConfig) (*Node, error) {
	return g.AddNodeWithEvent(cfg, event.NodeAdd)
}

// AddNodeWithEvent creates a node and publishes the given event type, e.g.
// [event.NodeDndAdd] for nodes dropped from a palette.
//
// A supplied id that is already taken is discarded and a fresh one generated.
// Position is snapped to the grid. Fails with UNKNOWN_TYPE when no node
// behavior is registered for cfg.Type, leaving the graph unchanged.
func (g *Graph) AddNodeWithEvent(cfg NodeConfig, t event.Type) (*Node, error) {
	n, err := g.buildNode(cfg)
	if err != nil {
		return nil, err
	}
	g.nodes = append(g.nodes, n)
	g.emit(t, n.Data())
	return n, nil
}

func (g *Graph) buildNode(cfg NodeConfig) (*Node, error) {
	if cfg.ID != "" && !g.usableID(cfg.ID) {
		g.logger.Debug("node id unusable, generating a new one", "id", cfg.ID)
		cfg.ID = ""
	}
	b, ok := g.registry.Lookup(cfg.Type)
	nb, isNode := b.(NodeBehavior)
	if !ok || !isNode {
		return nil, errors.New(errors.ErrCodeUnknownType, "no node type %q registered", cfg.Type)
	}
	pos := geometry.SnapPoint(geometry.Point{X: cfg.X, Y: cfg.Y}, g.gridSize)
	x, y := pos.X, pos.Y

	n := &Node{
		Element:       newElement(g, KindNode, cfg.Type, cfg.Properties),
		X:             x,
		Y:             y,
		AnchorsOffset: slices.Clone(cfg.AnchorsOffset),
		AutoToFront:   true,
		width:         DefaultNodeWidth,
		height:        DefaultNodeHeight,
		behavior:      nb,
	}
	n.self = n
	if cfg.Width > 0 {
		n.width = cfg.Width
		n.Properties["width"] = cfg.Width
	}
	if cfg.Height > 0 {
		n.height = cfg.Height
		n.Properties["height"] = cfg.Height
	}
	n.Text = buildText(cfg.Text, x, y)
	n.ZIndex = defaultNodeZIndex
	if g.overlapMode == OverlapModeIncrease {
		n.ZIndex = cfg.ZIndex
		if n.ZIndex == 0 {
			n.ZIndex = g.nextZIndex()
		}
	}
	n.ID = cfg.ID
	if n.ID == "" {
		n.ID = g.createID(nb.CreateID(n), cfg.Type)
	}
	nb.SetAttributes(n)
	return n, nil
}

// AddEdge creates an edge and publishes [event.EdgeAdd].
//
// The type defaults to the graph's edge type. Missing endpoints are taken
// from the endpoint nodes' anchors and polyline routes are generated
// axis-aligned. Fails with UNKNOWN_TYPE when no edge behavior is registered.
func (g *Graph) AddEdge(cfg EdgeConfig) (*Edge, error) {
	source := g.NodeByID(cfg.SourceNodeID)
	target := g.NodeByID(cfg.TargetNodeID)
	if g.edgeGenerator != nil && !cfg.hasGeometry() && source != nil && target != nil {
		cfg = g.edgeGenerator(source.Data(), target.Data(), cfg)
	}
	if cfg.Type == "" {
		cfg.Type = g.edgeType
	}
	if cfg.ID != "" && !g.usableID(cfg.ID) {
		g.logger.Debug("edge id unusable, generating a new one", "id", cfg.ID)
		cfg.ID = ""
	}
	b, ok := g.registry.Lookup(cfg.Type)
	eb, isEdge := b.(EdgeBehavior)
	if !ok || !isEdge {
		return nil, errors.New(errors.ErrCodeUnknownType, "no edge type %q registered", cfg.Type)
	}
	if source == nil || target == nil {
		g.logger.Warn("edge endpoint missing", "source", cfg.SourceNodeID, "target", cfg.TargetNodeID)
	}

	e := &Edge{
		Element:            newElement(g, KindEdge, cfg.Type, cfg.Properties),
		SourceNodeID:       cfg.SourceNodeID,
		TargetNodeID:       cfg.TargetNodeID,
		SourceAnchorID:     cfg.SourceAnchorID,
		TargetAnchorID:     cfg.TargetAnchorID,
		CustomTextPosition: cfg.CustomTextPosition,
		behavior:           eb,
	}
	e.self = e
	g.placeEdge(e, cfg, source, target)

	def := e.TextPosition()
	e.Text = buildText(cfg.Text, def.X, def.Y)
	e.ZIndex = defaultEdgeZIndex
	if g.overlapMode == OverlapModeIncrease {
		e.ZIndex = cfg.ZIndex
		if e.ZIndex == 0 {
			e.ZIndex = g.nextZIndex()
		}
	}
	e.ID = cfg.ID
	if e.ID == "" {
		e.ID = g.createID(eb.CreateID(e), cfg.Type)
	}
	eb.SetAttributes(e)

	g.edges = append(g.edges, e)
	g.emit(event.EdgeAdd, e.Data())
	return e, nil
}

// placeEdge resolves endpoints and route for a new edge.
func (g *Graph) placeEdge(e *Edge, cfg EdgeConfig, source, target *Node) {
	switch {
	case cfg.StartPoint != nil:
		e.StartPoint = *cfg.StartPoint
	case len(cfg.PointsList) > 0:
		e.StartPoint = cfg.PointsList[0]
	case source != nil:
		e.StartPoint = endpointAnchor(source, cfg.SourceAnchorID, target).Point()
	}
	switch {
	case cfg.EndPoint != nil:
		e.EndPoint = *cfg.EndPoint
	case len(cfg.PointsList) > 0:
		e.EndPoint = cfg.PointsList[len(cfg.PointsList)-1]
	case target != nil:
		e.EndPoint = endpointAnchor(target, cfg.TargetAnchorID, source).Point()
	}
	if e.SourceAnchorID == "" && source != nil && cfg.StartPoint == nil && len(cfg.PointsList) == 0 {
		e.SourceAnchorID = source.ClosestAnchor(e.EndPoint).ID
	}
	if e.TargetAnchorID == "" && target != nil && cfg.EndPoint == nil && len(cfg.PointsList) == 0 {
		e.TargetAnchorID = target.ClosestAnchor(e.StartPoint).ID
	}
	if !e.isPolyline() {
		return
	}
	if len(cfg.PointsList) >= 2 {
		e.PointsList = slices.Clone(cfg.PointsList)
		e.PointsList[0] = e.StartPoint
		e.PointsList[len(e.PointsList)-1] = e.EndPoint
		return
	}
	e.PointsList = orthogonalRoute(e.StartPoint, e.EndPoint)
}

// endpointAnchor returns the named anchor, or the anchor of n closest to the
// other endpoint's center.
func endpointAnchor(n *Node, anchorID string, other *Node) Anchor {
	if anchorID != "" {
		if a := n.AnchorByID(anchorID); a != nil {
			return *a
		}
	}
	if other == nil {
		return Anchor{ID: n.ID, X: n.X, Y: n.Y}
	}
	return n.ClosestAnchor(other.Position())
}

// ===== Deletion =====

// DeleteEdgeByID removes an edge and publishes [event.EdgeDelete]. Unknown
// ids are ignored.
func (g *Graph) DeleteEdgeByID(id string) {
	i := g.edgeIndex(id)
	if i < 0 {
		return
	}
	e := g.edges[i]
	g.edges = slices.Delete(g.edges, i, i+1)
	if g.topElement == id {
		g.topElement = ""
	}
	g.emit(event.EdgeDelete, e.Data())
}

// DeleteNode removes a node together with its incident edges. It reports
// whether the node existed.
func (g *Graph) DeleteNode(id string) bool {
	i := g.nodeIndex(id)
	if i < 0 {
		g.logger.Warn("delete: node not found", "id", id)
		return false
	}
	for _, e := range g.NodeEdges(id) {
		g.DeleteEdgeByID(e.ID)
	}
	n := g.nodes[g.nodeIndex(id)]
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x == n })
	if g.topElement == id {
		g.topElement = ""
	}
	g.emit(event.NodeDelete, n.Data())
	return true
}

// DeleteElement removes the node or edge with the given id.
func (g *Graph) DeleteElement(id string) bool {
	if g.nodeIndex(id) >= 0 {
		return g.DeleteNode(id)
	}
	if g.edgeIndex(id) >= 0 {
		g.DeleteEdgeByID(id)
		return true
	}
	g.logger.Warn("delete: element not found", "id", id)
	return false
}

// ===== Faker node =====

// SetFakerNode creates a transient preview node (e.g. while dragging from a
// palette). It is reachable through [Graph.NodeByID] but not part of
// [Graph.Nodes] or the snapshot.
func (g *Graph) SetFakerNode(cfg NodeConfig) (*Node, error) {
	n, err := g.buildNode(cfg)
	if err != nil {
		return nil, err
	}
	n.Virtual = true
	g.fakerNode = n
	return n, nil
}

// FakerNode returns the current preview node, or nil.
func (g *Graph) FakerNode() *Node { return g.fakerNode }

// RemoveFakerNode discards the preview node.
func (g *Graph) RemoveFakerNode() { g.fakerNode = nil }

// ===== Snapshot =====

// GraphData returns the serializable snapshot of all nodes and edges.
func (g *Graph) GraphData() GraphData {
	d := GraphData{
		Nodes: make([]NodeData, 0, len(g.nodes)),
		Edges: make([]EdgeData, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		d.Nodes = append(d.Nodes, n.Data())
	}
	for _, e := range g.edges {
		d.Edges = append(d.Edges, e.Data())
	}
	return d
}

// ClearData removes every element and publishes [event.GraphClear].
func (g *Graph) ClearData() {
	g.nodes = nil
	g.edges = nil
	g.topElement = ""
	g.fakerNode = nil
	g.emit(event.GraphClear, nil)
}

// Load replaces the graph's content with the elements of doc. Nodes are
// added before edges; the first failing element aborts the load with the
// graph cleared.
func (g *Graph) Load(doc GraphConfig) error {
	g.ClearData()
	for _, nc := range doc.Nodes {
		if _, err := g.AddNode(nc); err != nil {
			g.ClearData()
			return errors.Wrap(errors.GetCode(err), err, "load node %q", nc.ID)
		}
	}
	for _, ec := range doc.Edges {
		if _, err := g.AddEdge(ec); err != nil {
			g.ClearData()
			return errors.Wrap(errors.GetCode(err), err, "load edge %q", ec.ID)
		}
	}
	return nil
}

// UpdateText sets the label of the element with the given id.
func (g *Graph) UpdateText(id, value string) {
	el := g.ElementByID(id)
	if el == nil {
		g.logger.Warn("update text: element not found", "id", id)
		return
	}
	el.UpdateText(value)
}

// SetProperties merges props into the properties of the element with the
// given id.
func (g *Graph) SetProperties(id string, props map[string]any) {
	el := g.ElementByID(id)
	if el == nil {
		g.logger.Warn("set properties: element not found", "id", id)
		return
	}
	el.SetProperties(props)
}

// IsConnectionAllowed evaluates the source node's source rules and then the
// target node's target rules.
func (g *Graph) IsConnectionAllowed(sourceID, targetID, sourceAnchorID, targetAnchorID, edgeID string) ConnectRuleResult {
	source, target := g.NodeByID(sourceID), g.NodeByID(targetID)
	if source == nil || target == nil {
		return ConnectRuleResult{Message: "endpoint node not found"}
	}
	sa, ta := source.AnchorByID(sourceAnchorID), target.AnchorByID(targetAnchorID)
	if r := source.IsAllowConnectedAsSource(target, sa, ta, edgeID); !r.IsAllPass {
		return r
	}
	return target.IsAllowConnectedAsTarget(source, sa, ta, edgeID)
}
