package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	flowio "github.com/matzehuels/flowmodel/pkg/io"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/pipeline"
)

// applyCommand creates the apply command.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		scriptPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "apply [graph.json]",
		Short: "Apply a mutation script and write the resulting snapshot",
		Long: `Load a graph document, replay a TOML mutation script against it and
write the resulting snapshot as JSON.

A script is a list of [[op]] tables, applied in order:

  [[op]]
  op = "move"
  id = "task"
  dx = 40

  [[op]]
  op = "to-front"
  id = "task"

Operations before a failing one stay applied; the command reports how many
succeeded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptPath == "" {
				return fmt.Errorf("--script is required")
			}
			return c.runApply(cmd.Context(), args[0], scriptPath, output)
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "mutation script (TOML)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) runApply(ctx context.Context, input, scriptPath, output string) error {
	g, err := c.loadGraph(ctx, input, scriptPath)
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := flowio.WriteJSON(g, out); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if output != "" {
		printSuccess("Applied %s", scriptPath)
		printFile(output)
	}
	return nil
}

// loadGraph builds a graph from the document at input and replays the
// optional script on it.
func (c *CLI) loadGraph(ctx context.Context, input, scriptPath string) (*model.Graph, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := readDocument(input)
	if err != nil {
		return nil, err
	}
	sc, err := readScript(scriptPath)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(nil, nil, logger)
	g, err := runner.Load(ctx, pipeline.Options{
		Source:   input,
		Document: doc,
		Graph:    c.modelOptions(),
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	if sc == nil {
		return g, nil
	}

	n, err := runner.ApplyScript(ctx, g, sc)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %d of %d ops applied: %w", scriptPath, n, len(sc.Ops), err)
	}
	prog.done(fmt.Sprintf("Applied %d ops", n))
	return g, nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
