package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	flowio "github.com/matzehuels/flowmodel/pkg/io"
	"github.com/matzehuels/flowmodel/pkg/store"
)

// storeCommand creates the snapshot store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save and load named graph snapshots",
		Long: `Save and load named graph snapshots.

Snapshots live in ~/.local/share/flowmodel/snapshots by default, or in
MongoDB when store.backend = "mongo" is configured.`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeLoadCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	var scriptPath string

	cmd := &cobra.Command{
		Use:   "save [name] [graph.json]",
		Short: "Save a graph document under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, err := c.loadGraph(ctx, args[1], scriptPath)
			if err != nil {
				return err
			}
			return c.withStore(ctx, func(st store.Store) error {
				snap, err := st.Save(ctx, args[0], g.GraphData())
				if err != nil {
					return err
				}
				printSuccess("Saved %s", StyleHighlight.Render(snap.Name))
				printStats(snap.Nodes, snap.Edges, false)
				printDetail("hash %s", snap.Hash[:12])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "mutation script (TOML) to apply before saving")

	return cmd
}

func (c *CLI) storeLoadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load [name]",
		Short: "Write a stored snapshot as a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				snap, err := st.Load(ctx, args[0])
				if err != nil {
					return err
				}
				out, err := openOutput(output)
				if err != nil {
					return err
				}
				defer out.Close()
				if err := flowio.WriteData(snap.Data, out); err != nil {
					return err
				}
				if output != "" {
					printSuccess("Loaded %s", StyleHighlight.Render(snap.Name))
					printFile(output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				list, err := st.List(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No snapshots stored")
					return nil
				}
				t := newTable("Name", "Nodes", "Edges", "Saved", "Hash")
				for _, s := range list {
					t.Row(
						s.Name,
						fmt.Sprint(s.Nodes),
						fmt.Sprint(s.Edges),
						s.SavedAt.Local().Format("2006-01-02 15:04"),
						s.Hash[:12],
					)
				}
				fmt.Fprintln(uiOut, t.Render())
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				if err := st.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}
