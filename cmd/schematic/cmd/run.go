package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-schematic/pkg/analysis"
	"github.com/edp1096/toy-schematic/pkg/netlist"
)

func readDeck(path string) (*netlist.NetlistData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading netlist file: %w", err)
	}
	data, err := netlist.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return data, nil
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <deck>",
		Short: "Run every analysis directive of a deck",
		Long: `Run the .op, .ac and .tf lines of a SPICE deck in order and print
their results as tables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDeck(args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("deck parsed", "title", data.Title, "elements", len(data.Elements), "analyses", len(data.Analyses))

			out := cmd.OutOrStdout()
			if len(data.Analyses) == 0 {
				fmt.Fprintln(out, "no analysis directive in deck")
				return nil
			}

			fmt.Fprintf(out, "Circuit: %s\n", data.Title)
			for _, typ := range data.Analyses {
				analyzer, err := analysis.Run(data, typ)
				if err != nil {
					return err
				}
				if tf, ok := analyzer.(*analysis.TransferAnalysis); ok {
					printTransfer(out, tf.Result())
					continue
				}
				printResults(out, typ, analyzer.GetResults())
			}
			return nil
		},
	}
}
