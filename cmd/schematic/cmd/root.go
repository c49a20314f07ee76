// Package cmd holds the schematic command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-schematic/internal/config"
	"github.com/edp1096/toy-schematic/internal/logging"
)

// app is filled by the root command before any subcommand runs.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	logCfg, err := cfg.Logging()
	if err != nil {
		return err
	}
	if a.verbose {
		logCfg.Level = logging.LevelDebug
	}
	logCfg.Output = cmd.ErrOrStderr()

	a.cfg = cfg
	a.logger = logging.New(logCfg)
	return nil
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "schematic",
		Short: "Schematic editor backend and small-signal circuit analyzer",
		Long: `Edit schematics over HTTP and analyze linear circuits built from
resistors, capacitors, inductors, voltage sources and op-amps.

Examples:
  schematic serve --config schematic.yaml      # Start the HTTP API
  schematic run rc.cir                         # Run the deck's .op/.ac/.tf lines
  schematic tf rc.cir --output "V(out)"        # Symbolic transfer function
  schematic bode rc.cir -o rc.png              # Bode plot of the .tf function`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(a),
		newRunCmd(a),
		newTFCmd(a),
		newBodeCmd(a),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
