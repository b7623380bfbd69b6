package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmodel/pkg/model"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var scriptPath string

	cmd := &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Load a graph and print its nodes and edges",
		Long: `Load a graph document, optionally replay a mutation script on it, and
print the resulting nodes and edges as a table.

Use "-" to read the document from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], scriptPath)
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "mutation script (TOML) to apply first")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, scriptPath string) error {
	g, err := c.loadGraph(ctx, input, scriptPath)
	if err != nil {
		return err
	}

	nodes, edges := g.Nodes(), g.Edges()
	printKeyValue("Source", input)
	printKeyValue("Overlap", g.OverlapMode().String())
	printStats(len(nodes), len(edges), false)
	printNewline()

	fmt.Fprintln(uiOut, StyleTitle.Render("Nodes"))
	fmt.Fprintln(uiOut, nodeTable(nodes).Render())
	if len(edges) > 0 {
		printNewline()
		fmt.Fprintln(uiOut, StyleTitle.Render("Edges"))
		fmt.Fprintln(uiOut, edgeTable(edges).Render())
	}
	if sel := g.SelectElements(); len(sel) > 0 {
		printNewline()
		ids := make([]string, len(sel))
		for i, el := range sel {
			ids[i] = el.ID
		}
		printKeyValue("Selected", fmt.Sprint(ids))
	}
	return nil
}

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func nodeTable(nodes []*model.Node) *table.Table {
	t := newTable("ID", "Type", "X", "Y", "W×H", "Z", "Text")
	for _, n := range nodes {
		t.Row(
			n.ID,
			n.Type,
			formatCoord(n.X),
			formatCoord(n.Y),
			formatCoord(n.Width())+"×"+formatCoord(n.Height()),
			strconv.Itoa(n.ZIndex),
			n.Text.Value,
		)
	}
	return t
}

func edgeTable(edges []*model.Edge) *table.Table {
	t := newTable("ID", "Type", "From", "To", "Points", "Z", "Text")
	for _, e := range edges {
		t.Row(
			e.ID,
			e.Type,
			e.SourceNodeID,
			e.TargetNodeID,
			strconv.Itoa(len(e.Points())),
			strconv.Itoa(e.ZIndex),
			e.Text.Value,
		)
	}
	return t
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
