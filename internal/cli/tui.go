package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowmodel/pkg/event"
	"github.com/matzehuels/flowmodel/pkg/model"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)

// eventLogSize is the number of recent events shown below the element list.
const eventLogSize = 8

// =============================================================================
// ExploreModel - Interactive graph editing
// =============================================================================

// eventLog collects the graph's events. It is shared by every copy of the
// bubbletea model, so it lives behind a pointer.
type eventLog struct {
	lines []string
	off   func()
}

func (l *eventLog) add(ev event.Event) {
	line := string(ev.Type)
	switch d := ev.Data.(type) {
	case model.NodeData:
		line += " " + d.ID
	case model.EdgeData:
		line += " " + d.ID
	case []model.NodeData:
		line += fmt.Sprintf(" (%d nodes)", len(d))
	}
	l.lines = append(l.lines, line)
	if len(l.lines) > eventLogSize {
		l.lines = l.lines[len(l.lines)-eventLogSize:]
	}
}

// ExploreModel is the bubbletea model for browsing and mutating a graph.
// Every key press goes through the graph's public mutation API, so edge
// endpoints, selection and stacking stay consistent.
type ExploreModel struct {
	Graph  *model.Graph
	Step   float64
	Cursor int
	Height int
	Offset int

	log *eventLog
}

// NewExploreModel creates an explore model over g and subscribes to its
// events. Call Close when done.
func NewExploreModel(g *model.Graph) ExploreModel {
	step := g.GridSize()
	if step <= 1 {
		step = 10
	}
	l := &eventLog{}
	l.off = g.On(event.Any, l.add)
	return ExploreModel{Graph: g, Step: step, Height: 15, log: l}
}

// Close unsubscribes from the graph's events.
func (m ExploreModel) Close() {
	if m.log != nil && m.log.off != nil {
		m.log.off()
	}
}

// Events returns the most recent event descriptions, oldest first.
func (m ExploreModel) Events() []string { return slices.Clone(m.log.lines) }

// elements returns nodes followed by edges in insertion order.
func (m ExploreModel) elements() []*model.Element {
	var out []*model.Element
	for _, n := range m.Graph.Nodes() {
		out = append(out, &n.Element)
	}
	for _, e := range m.Graph.Edges() {
		out = append(out, &e.Element)
	}
	return out
}

func (m ExploreModel) current() *model.Element {
	els := m.elements()
	if m.Cursor < 0 || m.Cursor >= len(els) {
		return nil
	}
	return els[m.Cursor]
}

// moveTargets returns the selected nodes, or the node under the cursor when
// nothing is selected.
func (m ExploreModel) moveTargets() []string {
	var ids []string
	for _, n := range m.Graph.SelectNodes() {
		ids = append(ids, n.ID)
	}
	if len(ids) == 0 {
		if el := m.current(); el != nil && el.Kind() == model.KindNode {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.elements())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if el := m.current(); el != nil {
				m.Graph.SelectElementByID(el.ID, false)
			}
		case "m":
			if el := m.current(); el != nil {
				m.Graph.SelectElementByID(el.ID, true)
			}
		case "esc":
			m.Graph.ClearSelectElements()
		case "f":
			if el := m.current(); el != nil {
				m.Graph.ToFront(el.ID)
			}
		case "b":
			if el := m.current(); el != nil {
				m.Graph.SetElementZIndex(el.ID, model.ZBottom)
			}
		case "W", "A", "S", "D":
			m.move(msg.String())
		case "x":
			m.delete()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8 - eventLogSize
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *ExploreModel) move(key string) {
	var dx, dy float64
	switch key {
	case "W":
		dy = -m.Step
	case "S":
		dy = m.Step
	case "A":
		dx = -m.Step
	case "D":
		dx = m.Step
	}
	ids := m.moveTargets()
	switch len(ids) {
	case 0:
	case 1:
		m.Graph.MoveNode(ids[0], dx, dy, false)
	default:
		m.Graph.MoveNodes(ids, dx, dy, false)
	}
}

func (m *ExploreModel) delete() {
	el := m.current()
	if el == nil {
		return
	}
	if el.Kind() == model.KindNode {
		m.Graph.DeleteNode(el.ID)
	} else {
		m.Graph.DeleteEdgeByID(el.ID)
	}
	if n := len(m.elements()); m.Cursor >= n && n > 0 {
		m.Cursor = n - 1
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  m multi-select  esc clear  f front  b back  W/A/S/D move  x delete  q quit"))
	b.WriteString("\n\n")

	els := m.elements()
	end := min(m.Offset+m.Height, len(els))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		el := els[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		sel := ""
		if el.IsSelected {
			sel = "●"
		}
		rows = append(rows, []string{cursor, el.ID, el.Kind().String(), el.Type, m.position(el), strconv.Itoa(el.ZIndex), sel})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "ID", "Kind", "Type", "Position", "Z", "Sel").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case idx < len(els) && els[idx].IsSelected:
				return styleCached
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(els)), len(els))))
	b.WriteString("\n\n")

	for _, line := range m.log.lines {
		b.WriteString(listDimStyle.Render("  › " + line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ExploreModel) position(el *model.Element) string {
	if el.Kind() == model.KindNode {
		n := m.Graph.NodeByID(el.ID)
		return formatCoord(n.X) + "," + formatCoord(n.Y)
	}
	e := m.Graph.EdgeByID(el.ID)
	return fmt.Sprintf("%s,%s → %s,%s",
		formatCoord(e.StartPoint.X), formatCoord(e.StartPoint.Y),
		formatCoord(e.EndPoint.X), formatCoord(e.EndPoint.Y))
}
