package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmodel/pkg/api"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		scriptPath string
		noCache    bool
		noStore    bool
	)

	cmd := &cobra.Command{
		Use:   "serve [graph.json]",
		Short: "Serve a graph over HTTP",
		Long: `Serve a graph over an HTTP API.

The graph starts empty, or from the given document (after the optional
--script). Clients mutate it through the REST routes and follow changes on
the /events WebSocket. Snapshots are saved to the configured store unless
--no-store is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runServe(cmd.Context(), input, scriptPath, addr, noCache, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "mutation script (TOML) to apply at startup")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable render caching")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable snapshot storage")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, scriptPath, addr string, noCache, noStore bool) error {
	var (
		g   *model.Graph
		err error
	)
	if input != "" {
		g, err = c.loadGraph(ctx, input, scriptPath)
	} else {
		g = model.New(c.modelOptions())
	}
	if err != nil {
		return err
	}
	off := observability.Observe(g.Emitter())
	defer off()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := api.Options{Graph: g, Runner: runner, Logger: c.Logger}
	if !noStore {
		st, err := c.newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		opts.Store = st
	}

	printInfo("Serving on %s", StyleLink.Render("http://"+addr))
	printNextStep("Follow events", "websocat ws://"+addr+"/events")

	err = api.New(opts).ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
