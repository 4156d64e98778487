// Package cli implements the gmplayout command-line interface.
//
// The commands generate layouts from templates, room lists or free-text
// descriptions, check stored or generated layouts against a jurisdiction's
// rulebook, place additional rooms into existing layouts, render floor-plan
// sketches and serve the HTTP API. All commands share the configuration
// loaded by [config.Load] and a charmbracelet/log logger carried through the
// command context.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gmplayout/pkg/buildinfo"
	"github.com/matzehuels/gmplayout/pkg/config"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gmplayout"

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
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "gmplayout generates GMP-compliant cleanroom facility layouts",
		Long: `gmplayout arranges the rooms of a pharmaceutical manufacturing facility on a
2D canvas, respecting adjacency, flow and separation relationships, and checks
the result against EU GMP, FDA, WHO and PIC/S rules.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gmplayout/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig reads the configuration named by --config, falling back to the
// default path.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	ch, err := cfg.OpenCache(ctx, c.noCache)
	if err != nil {
		return nil, err
	}
	r, err := cfg.NewRunner(ch, loggerFromContext(ctx))
	if err != nil {
		ch.Close()
		return nil, err
	}
	return r, nil
}

// setup loads the configuration and builds a runner in one step.
func (c *CLI) setup(ctx context.Context) (*config.Config, *pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	r, err := c.newRunner(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, r, nil
}

// writeJSON writes v to w as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
