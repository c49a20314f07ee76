package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/toy-schematic/pkg/analysis"
	"github.com/edp1096/toy-schematic/pkg/bode"
	"github.com/edp1096/toy-schematic/pkg/netlist"
)

func newBodeCmd(a *app) *cobra.Command {
	var (
		flags  tfFlags
		out    string
		sweep  netlist.ACParam
		width  float64
		height float64
	)

	cmd := &cobra.Command{
		Use:   "bode <deck>",
		Short: "Draw the Bode plot of a deck's transfer function",
		Long: `Draw magnitude and phase of the deck's transfer function. The sweep
comes from the flags, then the deck's .ac line, then the config file. The
image format follows the output extension (.png or .svg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := bode.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
			if err != nil {
				return err
			}

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

			p := bodeSweep(a, data, sweep)
			freqs, err := analysis.GenerateFrequencies(p.Sweep, p.Points, p.FStart, p.FStop)
			if err != nil {
				return err
			}

			opts := bode.DefaultOptions()
			opts.Title = tf.String()
			opts.Format = format
			if width > 0 {
				opts.Width = vg.Length(width) * vg.Inch
			}
			if height > 0 {
				opts.Height = vg.Length(height) * vg.Inch
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := bode.Render(f, tf.Response(freqs), opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			a.logger.Debug("bode plot written", "file", out, "points", len(freqs))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nwrote %s (%d points, %s..%s)\n",
				tf.String(), out, len(freqs), netlist.FormatValue(p.FStart), netlist.FormatValue(p.FStop))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "bode.png", "output image, .png or .svg")
	cmd.Flags().StringVar(&sweep.Sweep, "sweep", "", "DEC, OCT or LIN")
	cmd.Flags().IntVar(&sweep.Points, "points", 0, "points per decade/octave, or total for LIN")
	cmd.Flags().Float64Var(&sweep.FStart, "fstart", 0, "start frequency in Hz")
	cmd.Flags().Float64Var(&sweep.FStop, "fstop", 0, "stop frequency in Hz")
	cmd.Flags().Float64Var(&width, "width", 0, "image width in inches")
	cmd.Flags().Float64Var(&height, "height", 0, "image height in inches")
	return cmd
}

// bodeSweep fills each sweep field from the flags, the deck or the config,
// in that order.
func bodeSweep(a *app, data *netlist.NetlistData, flags netlist.ACParam) netlist.ACParam {
	def := a.cfg.Analysis
	p := netlist.ACParam{Sweep: def.Sweep, Points: def.Points, FStart: def.FStart, FStop: def.FStop}
	if data.Has(netlist.AnalysisAC) {
		p = data.ACParam
	}
	if flags.Sweep != "" {
		p.Sweep = strings.ToUpper(flags.Sweep)
	}
	if flags.Points > 0 {
		p.Points = flags.Points
	}
	if flags.FStart > 0 {
		p.FStart = flags.FStart
	}
	if flags.FStop > 0 {
		p.FStop = flags.FStop
	}
	return p
}
