package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wudi/docforge/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "docforge",
		Short:         "Render one document as PDF, Word and slide files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override the log level (debug, info, warn, error, off)")

	root.AddCommand(renderCmd(g))
	root.AddCommand(inspectCmd(g))
	root.AddCommand(versionCmd())
	return root
}

// loadConfig applies the defaults, the config file, DOCFORGE_* variables
// and the --log-level flag, in that order.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.Load(g.configPath); err != nil {
			return nil, err
		}
	}
	cfg = config.FromEnvironment(cfg)
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("docforge version %s\n", version)
		},
	}
}
