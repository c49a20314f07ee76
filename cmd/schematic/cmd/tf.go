package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-schematic/pkg/analysis"
	"github.com/edp1096/toy-schematic/pkg/netlist"
)

type tfFlags struct {
	output string
	input  string
}

func (f *tfFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.output, "output", "", `output probe, e.g. "V(out)" or "V(a,b)"; defaults to the deck's .tf`)
	cmd.Flags().StringVar(&f.input, "input", "", "input source name; defaults to the deck's .tf or its only source")
}

// param merges the flags over the deck's .tf line.
func (f *tfFlags) param(data *netlist.NetlistData) (netlist.TFParam, error) {
	param := data.TFParam
	if f.output != "" {
		out, ref, err := netlist.ParseProbe(f.output)
		if err != nil {
			return param, err
		}
		param.Output, param.Reference = out, ref
	}
	if f.input != "" {
		param.Input = f.input
	}
	if param.Output == "" {
		return param, fmt.Errorf("no output: add a .tf line or pass --output")
	}
	return param, nil
}

func newTFCmd(a *app) *cobra.Command {
	var flags tfFlags

	cmd := &cobra.Command{
		Use:   "tf <deck>",
		Short: "Print the symbolic transfer function of a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDeck(args[0])
			if err != nil {
				return err
			}
			param, err := flags.param(data)
			if err != nil {
				return err
			}

			tf, err := analysis.Transfer(data, param)
			if err != nil {
				return err
			}
			a.logger.Debug("transfer function", "output", tf.Output, "input", tf.Input, "poles", len(tf.Poles))
			printTransfer(cmd.OutOrStdout(), tf)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
