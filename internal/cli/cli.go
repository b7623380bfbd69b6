// Package cli implements the flowmodel command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowmodel/pkg/buildinfo"
	"github.com/matzehuels/flowmodel/pkg/cache"
	"github.com/matzehuels/flowmodel/pkg/config"
	flowio "github.com/matzehuels/flowmodel/pkg/io"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/pipeline"
	"github.com/matzehuels/flowmodel/pkg/script"
	"github.com/matzehuels/flowmodel/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowmodel"

	// defaultConfigName is looked up in the working directory when --config
	// is not given.
	defaultConfigName = "flowmodel.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowmodel edits and renders flowchart graphs",
		Long:         `Flowmodel is an in-memory flowchart graph model with a CLI, an HTTP API and an interactive explorer for loading, mutating, storing and rendering node/edge diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+defaultConfigName+" if present)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, falling back to
// ./flowmodel.toml and then the built-in defaults.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigName); err == nil {
			path = defaultConfigName
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.SetLevel(cfg.LogLevel())
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// modelOptions returns graph options from the config.
func (c *CLI) modelOptions() model.Options {
	return c.cfg.ModelOptions(c.Logger)
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.cfg.Cache.KeyPrefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.cfg.Cache.RedisURL)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newStore opens the configured snapshot store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.cfg.Store.Backend == config.BackendMongo {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.cfg.Store.MongoURI,
			Database:   c.cfg.Store.Database,
			Collection: c.cfg.Store.Collection,
		})
	}
	dir := c.cfg.Store.Dir
	if dir == "" {
		base, err := dataDir()
		if err != nil {
			return nil, fmt.Errorf("get data dir: %w", err)
		}
		dir = filepath.Join(base, "snapshots")
	}
	return store.NewFileStore(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/flowmodel/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/flowmodel/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readDocument reads a JSON graph document; "-" reads stdin.
func readDocument(path string) (model.GraphConfig, error) {
	if path == "-" {
		return flowio.ReadDocument(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return model.GraphConfig{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := flowio.ReadDocument(f)
	if err != nil {
		return model.GraphConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	return doc, nil
}

// readScript loads the script at path, or returns nil for an empty path.
func readScript(path string) (*script.Script, error) {
	if path == "" {
		return nil, nil
	}
	return script.Load(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
