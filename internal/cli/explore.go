package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	flowio "github.com/matzehuels/flowmodel/pkg/io"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/store"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		scriptPath string
		output     string
		saveAs     string
	)

	cmd := &cobra.Command{
		Use:   "explore [graph.json]",
		Short: "Browse and edit a graph interactively",
		Long: `Open a graph in an interactive terminal view.

Select, move, restack and delete elements with the keyboard; the most
recent model events are shown below the element list. On exit the graph can
be written to a file (--output) or saved as a snapshot (--save).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], scriptPath, output, saveAs)
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "mutation script (TOML) to apply first")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited graph to this file on exit")
	cmd.Flags().StringVar(&saveAs, "save", "", "save the edited graph as a named snapshot on exit")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input, scriptPath, output, saveAs string) error {
	g, err := c.loadGraph(ctx, input, scriptPath)
	if err != nil {
		return err
	}

	m := NewExploreModel(g)
	defer m.Close()
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("explore: %w", err)
	}

	if output != "" {
		if err := flowio.ExportJSON(g, output); err != nil {
			return err
		}
		printSuccess("Wrote edited graph")
		printFile(output)
	}
	if saveAs != "" {
		return c.withStore(ctx, func(st store.Store) error {
			snap, err := st.Save(ctx, saveAs, g.GraphData())
			if err != nil {
				return err
			}
			printSuccess("Saved %s", StyleHighlight.Render(snap.Name))
			return nil
		})
	}
	printInfo("%s", exploreSummary(g))
	return nil
}

// exploreSummary describes the graph for the final status line.
func exploreSummary(g *model.Graph) string {
	return fmt.Sprintf("%d nodes, %d edges, %d selected", len(g.Nodes()), len(g.Edges()), len(g.SelectElements()))
}
