package model

// ConnectRule validates a prospective connection. Rules are attached to a
// node as source rules (checked when it would be the edge's source) or
// target rules.
type ConnectRule struct {
	Message  string
	Validate func(source, target *Node, sourceAnchor, targetAnchor *Anchor, edgeID string) bool
}

// ConnectRuleResult is the outcome of evaluating a rule list.
type ConnectRuleResult struct {
	IsAllPass bool   `json:"isAllPass"`
	Message   string `json:"message,omitempty"`
}

// MoveRule adjusts or vetoes a proposed node displacement. It returns the
// displacement actually allowed; (0, 0) blocks the move.
type MoveRule func(n *Node, dx, dy float64) (float64, float64)

// AllowMove adapts a boolean predicate into a [MoveRule] that either passes
// the displacement through or blocks it entirely.
func AllowMove(fn func(n *Node, dx, dy float64) bool) MoveRule {
	return func(n *Node, dx, dy float64) (float64, float64) {
		if fn(n, dx, dy) {
			return dx, dy
		}
		return 0, 0
	}
}

// AxisLock returns a move rule that keeps the node on one axis.
func AxisLock(horizontal bool) MoveRule {
	return func(_ *Node, dx, dy float64) (float64, float64) {
		if horizontal {
			return dx, 0
		}
		return 0, dy
	}
}

func evalConnectRules(rules []ConnectRule, source, target *Node, sa, ta *Anchor, edgeID string) ConnectRuleResult {
	for _, r := range rules {
		if r.Validate != nil && !r.Validate(source, target, sa, ta, edgeID) {
			return ConnectRuleResult{IsAllPass: false, Message: r.Message}
		}
	}
	return ConnectRuleResult{IsAllPass: true}
}

func applyMoveRules(rules []MoveRule, n *Node, dx, dy float64) (float64, float64) {
	for _, rule := range rules {
		dx, dy = rule(n, dx, dy)
		if dx == 0 && dy == 0 {
			break
		}
	}
	return dx, dy
}
